package analysis

import (
	"cmp"
	"slices"

	"cildis/internal/disasm"
)

// Stats contains statistics about decoded blocks
type Stats struct {
	Instructions       int            // Total number of instructions
	Blocks             int            // Blocks that hold instructions
	Bytes              int            // Sum of block sizes
	Exits              int            // Blocks ending in ret or throw
	Truncated          int            // Blocks cut short by the end of the data
	Protected          int            // Blocks inside at least one try region
	OpcodeDistribution map[string]int // Distribution of mnemonics
	Categories         map[disasm.Category]int
}

// OpcodeCount is one entry of the opcode distribution.
type OpcodeCount struct {
	Mnemonic string
	Count    int
}

// Analyze returns statistics about blocks.
func Analyze(blocks []disasm.BasicBlock) *Stats {
	stats := &Stats{
		OpcodeDistribution: make(map[string]int),
		Categories:         make(map[disasm.Category]int),
	}

	for _, b := range blocks {
		if len(b.Instructions) == 0 {
			continue
		}
		stats.Blocks++
		stats.Bytes += b.Size
		if len(b.Exceptions) > 0 {
			stats.Protected++
		}

		for _, in := range b.Instructions {
			stats.Instructions++
			stats.OpcodeDistribution[in.Mnemonic]++
			stats.Categories[in.Category]++
		}

		last, _ := b.Last()
		switch {
		case last.Flow == disasm.FlowReturn || last.Flow == disasm.FlowThrow:
			stats.Exits++
		case !b.Terminated():
			stats.Truncated++
		}
	}
	return stats
}

// Merge adds o into s.
func (s *Stats) Merge(o *Stats) {
	s.Instructions += o.Instructions
	s.Blocks += o.Blocks
	s.Bytes += o.Bytes
	s.Exits += o.Exits
	s.Truncated += o.Truncated
	s.Protected += o.Protected
	for k, v := range o.OpcodeDistribution {
		s.OpcodeDistribution[k] += v
	}
	for k, v := range o.Categories {
		s.Categories[k] += v
	}
}

// TopOpcodes returns the n most frequent mnemonics, ties broken by name.
func (s *Stats) TopOpcodes(n int) []OpcodeCount {
	out := make([]OpcodeCount, 0, len(s.OpcodeDistribution))
	for m, c := range s.OpcodeDistribution {
		out = append(out, OpcodeCount{m, c})
	}
	slices.SortFunc(out, func(a, b OpcodeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Mnemonic, b.Mnemonic)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
