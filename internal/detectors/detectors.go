// Package detectors flags suspicious shapes in decoded CIL: branches into the middle of
// an instruction, branches that leave the method body and blocks that run off the data.
package detectors

import (
	"fmt"

	"cildis/internal/analysis"
	"cildis/internal/disasm"
)

// Finding kinds.
const (
	KindMisaligned = "misaligned"
	KindEscaping   = "escaping-branch"
	KindTruncated  = "truncated"
)

// Default returns the chain the CLI runs over every decoded method.
func Default() *analysis.DetectorChain {
	return analysis.NewDetectorChain(
		NewOverlapDetector(),
		NewEscapingBranchDetector(),
		NewTruncatedBlockDetector(),
	)
}

// OverlapDetector reports blocks that start inside another block's instruction. The same
// bytes then decode to two different instruction streams, a common obfuscation trick.
type OverlapDetector struct{}

// NewOverlapDetector creates a new overlap detector instance.
func NewOverlapDetector() *OverlapDetector {
	return &OverlapDetector{}
}

func (d *OverlapDetector) Detect(s analysis.Subject, findings []analysis.Finding) []analysis.Finding {
	for _, b := range s.Blocks {
		if len(b.Instructions) == 0 {
			continue
		}
		host, ok := hostOf(s.Blocks, b.RVA)
		if !ok {
			continue
		}
		findings = append(findings, analysis.Finding{
			Kind:    KindMisaligned,
			Subject: s.Name,
			Block:   b.ID,
			RVA:     b.RVA,
			Comment: fmt.Sprintf("block %d starts %d byte(s) into the instruction at 0x%08X",
				b.ID, b.RVA-host.RVA, host.RVA),
			Metadata: map[string]interface{}{
				"instruction_rva":  host.RVA,
				"instruction_size": host.Size,
				"mnemonic":         host.Mnemonic,
			},
		})
	}
	return findings
}

// hostOf returns an instruction that covers rva without starting at it.
func hostOf(blocks []disasm.BasicBlock, rva uint64) (disasm.Instruction, bool) {
	for _, b := range blocks {
		if rva <= b.RVA || rva >= b.End() {
			continue
		}
		for _, in := range b.Instructions {
			if in.RVA < rva && rva < in.Next() {
				return in, true
			}
		}
	}
	return disasm.Instruction{}, false
}

// EscapingBranchDetector reports branch targets outside the decoded region.
type EscapingBranchDetector struct{}

// NewEscapingBranchDetector creates a new escaping branch detector instance.
func NewEscapingBranchDetector() *EscapingBranchDetector {
	return &EscapingBranchDetector{}
}

func (d *EscapingBranchDetector) Detect(s analysis.Subject, findings []analysis.Finding) []analysis.Finding {
	if s.End <= s.Start {
		return findings
	}
	for _, b := range s.Blocks {
		for _, in := range b.Instructions {
			for _, target := range in.BranchTargets {
				if s.Contains(target) {
					continue
				}
				findings = append(findings, analysis.Finding{
					Kind:    KindEscaping,
					Subject: s.Name,
					Block:   b.ID,
					RVA:     in.RVA,
					Comment: fmt.Sprintf("%s at 0x%08X targets 0x%08X outside [0x%08X, 0x%08X)",
						in.Mnemonic, in.RVA, target, s.Start, s.End),
					Metadata: map[string]interface{}{
						"target":   target,
						"mnemonic": in.Mnemonic,
					},
				})
			}
		}
	}
	return findings
}

// TruncatedBlockDetector reports blocks that end without a control transfer, which happens
// when decoding runs off the end of the data.
type TruncatedBlockDetector struct{}

// NewTruncatedBlockDetector creates a new truncated block detector instance.
func NewTruncatedBlockDetector() *TruncatedBlockDetector {
	return &TruncatedBlockDetector{}
}

func (d *TruncatedBlockDetector) Detect(s analysis.Subject, findings []analysis.Finding) []analysis.Finding {
	for _, b := range s.Blocks {
		last, ok := b.Last()
		if !ok || b.Terminated() {
			continue
		}
		findings = append(findings, analysis.Finding{
			Kind:    KindTruncated,
			Subject: s.Name,
			Block:   b.ID,
			RVA:     last.RVA,
			Comment: fmt.Sprintf("block %d falls off the end of the code after %s", b.ID, describe(last)),
			Metadata: map[string]interface{}{
				"end":          b.End(),
				"instructions": len(b.Instructions),
			},
		})
	}
	return findings
}

func describe(in disasm.Instruction) string {
	if in.Operand.Kind == disasm.OperandKindNone {
		return in.Mnemonic
	}
	return in.Mnemonic + " " + in.Operand.String()
}
