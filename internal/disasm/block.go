package disasm

// BasicBlock is a straight-line run of instructions with one entry and one exit.
// ID is the block's index in the slice that owns it.
type BasicBlock struct {
	ID           int
	RVA          uint64
	Offset       int
	Size         int
	Instructions []Instruction
	Predecessors []int
	Successors   []int
	Exceptions   []int // indices into the method's exception handlers
}

func newBlock(id int, rva uint64, offset int) BasicBlock {
	return BasicBlock{ID: id, RVA: rva, Offset: offset}
}

// First returns the first instruction, or false for an empty block.
func (b *BasicBlock) First() (Instruction, bool) {
	if len(b.Instructions) == 0 {
		return Instruction{}, false
	}
	return b.Instructions[0], true
}

// Last returns the last instruction, or false for an empty block.
func (b *BasicBlock) Last() (Instruction, bool) {
	if len(b.Instructions) == 0 {
		return Instruction{}, false
	}
	return b.Instructions[len(b.Instructions)-1], true
}

// IsEntry reports whether no linked block flows into b.
func (b *BasicBlock) IsEntry() bool {
	return len(b.Predecessors) == 0
}

// IsExit reports whether b has no linked successors.
func (b *BasicBlock) IsExit() bool {
	return len(b.Successors) == 0
}

// End returns the RVA just past the block.
func (b *BasicBlock) End() uint64 {
	return b.RVA + uint64(b.Size)
}

// Terminated reports whether the block ends in an instruction that leaves straight-line flow.
// Blocks cut short by the end of the data return false.
func (b *BasicBlock) Terminated() bool {
	last, ok := b.Last()
	if !ok {
		return false
	}
	return last.IsBranch() || last.Flow == FlowReturn || last.Flow == FlowThrow
}
