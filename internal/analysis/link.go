// Package analysis derives control-flow edges, statistics and coverage from decoded blocks,
// and runs detectors over them.
package analysis

import (
	"slices"

	"cildis/internal/disasm"
)

// Canonical returns the blocks that carry instructions, ordered by RVA. Blocks whose start
// was already expanded by an earlier block are empty and dropped.
func Canonical(blocks []disasm.BasicBlock) []disasm.BasicBlock {
	out := make([]disasm.BasicBlock, 0, len(blocks))
	for _, b := range blocks {
		if len(b.Instructions) > 0 {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b disasm.BasicBlock) int {
		switch {
		case a.RVA < b.RVA:
			return -1
		case a.RVA > b.RVA:
			return 1
		}
		return 0
	})
	return out
}

// Link returns a copy of blocks with successor and predecessor IDs filled in from the branch
// targets and fallthrough of each block's last instruction. Edges to an address resolve to
// the block that actually holds the instructions there; edges leaving the blocks are dropped.
func Link(blocks []disasm.BasicBlock) []disasm.BasicBlock {
	out := make([]disasm.BasicBlock, len(blocks))
	copy(out, blocks)

	owner := make(map[uint64]int, len(out))
	for _, b := range out {
		if _, ok := owner[b.RVA]; !ok || len(b.Instructions) > 0 && len(out[owner[b.RVA]].Instructions) == 0 {
			owner[b.RVA] = b.ID
		}
	}

	for i := range out {
		out[i].Successors = nil
		out[i].Predecessors = nil
	}

	for i := range out {
		last, ok := out[i].Last()
		if !ok {
			continue
		}

		var targets []uint64
		switch last.Flow {
		case disasm.FlowConditionalBranch:
			targets = append(slices.Clone(last.BranchTargets), last.Next())
		case disasm.FlowUnconditionalBranch, disasm.FlowSwitch:
			targets = last.BranchTargets
		case disasm.FlowReturn, disasm.FlowThrow:
		default:
			// ran into the start of another block
			targets = []uint64{last.Next()}
		}

		for _, t := range targets {
			id, ok := owner[t]
			if !ok || slices.Contains(out[i].Successors, id) {
				continue
			}
			out[i].Successors = append(out[i].Successors, id)
			out[id].Predecessors = append(out[id].Predecessors, out[i].ID)
		}
	}
	return out
}
