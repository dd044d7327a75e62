// Package listing renders decoded blocks as text: a labelled disassembly listing, a tree of
// blocks and instructions, and a markdown report.
package listing

import (
	"fmt"
	"strings"

	"cildis/internal/analysis"
	"cildis/internal/disasm"
)

// LineKind distinguishes label lines from instruction lines.
type LineKind int

const (
	LineLabel LineKind = iota
	LineInstruction
)

// Line is one row of a listing.
type Line struct {
	Kind        LineKind
	Block       int
	RVA         uint64
	Instruction disasm.Instruction // zero for label lines
	Comments    []string
}

// Label returns the conventional name for the code at rva.
func Label(rva uint64) string {
	return fmt.Sprintf("loc_%08X", rva)
}

func (l Line) String() string {
	var b strings.Builder
	switch l.Kind {
	case LineLabel:
		b.WriteString(Label(l.RVA) + ":")
	default:
		in := l.Instruction
		op := ""
		if in.Operand.Kind != disasm.OperandKindNone {
			op = in.Operand.String()
		}
		fmt.Fprintf(&b, "    %08X  %-14s %s", in.RVA, in.Mnemonic, op)
	}
	if len(l.Comments) > 0 {
		s := strings.TrimRight(b.String(), " ")
		b.Reset()
		fmt.Fprintf(&b, "%-48s ; %s", s, strings.Join(l.Comments, ", "))
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines links the blocks and lays them out in address order, one label line per block
// followed by its instructions. Branch operands are annotated with the labels they reach.
func Lines(blocks []disasm.BasicBlock) []Line {
	linked := analysis.Canonical(analysis.Link(blocks))

	starts := make(map[uint64]bool, len(linked))
	for _, b := range linked {
		starts[b.RVA] = true
	}

	var out []Line
	for _, b := range linked {
		out = append(out, Line{
			Kind:     LineLabel,
			Block:    b.ID,
			RVA:      b.RVA,
			Comments: blockComments(b, blocks),
		})
		for _, in := range b.Instructions {
			line := Line{Kind: LineInstruction, Block: b.ID, RVA: in.RVA, Instruction: in}
			for _, t := range in.BranchTargets {
				if starts[t] {
					line.Comments = append(line.Comments, "-> "+Label(t))
				} else {
					line.Comments = append(line.Comments, fmt.Sprintf("-> 0x%08X (outside)", t))
				}
			}
			out = append(out, line)
		}
	}
	return out
}

func blockComments(b disasm.BasicBlock, all []disasm.BasicBlock) []string {
	var c []string
	if !b.IsEntry() {
		c = append(c, "from "+labels(b.Predecessors, all))
	}
	if len(b.Exceptions) > 0 {
		c = append(c, fmt.Sprintf("try %v", b.Exceptions))
	}
	if !b.Terminated() {
		c = append(c, "truncated")
	}
	return c
}

func labels(ids []int, all []disasm.BasicBlock) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(all) {
			names = append(names, Label(all[id].RVA))
		}
	}
	return strings.Join(names, " ")
}

// Text joins the listing lines.
func Text(blocks []disasm.BasicBlock) string {
	var b strings.Builder
	for _, l := range Lines(blocks) {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}
