// Package disasm decodes CIL byte code into instructions and basic blocks.
package disasm

import (
	"cildis/internal/cilerrors"
	"cildis/internal/cursor"
)

// DecodeInstruction decodes one instruction at the cursor position. rva is the virtual
// address of that position. End-of-data errors from the cursor are returned as is.
func DecodeInstruction(c *cursor.Cursor, rva uint64) (Instruction, error) {
	start := c.Pos()

	first, err := c.ReadU8()
	if err != nil {
		return Instruction{}, err
	}

	var prefix, opcode byte = 0, first
	if first == EscapePrefix {
		second, err := c.ReadU8()
		if err != nil {
			return Instruction{}, err
		}
		prefix, opcode = EscapePrefix, second
	}

	op := Lookup(prefix, opcode)
	if op.Reserved() {
		if prefix != 0 {
			return Instruction{}, cilerrors.Malformed("reserved opcode %02X %02X", prefix, opcode)
		}
		return Instruction{}, cilerrors.Malformed("reserved opcode %02X", opcode)
	}

	operand, err := readOperand(c, op.Operand)
	if err != nil {
		return Instruction{}, err
	}

	size := uint64(c.Pos() - start)
	in := Instruction{
		RVA:      rva,
		Offset:   uint64(start),
		Size:     size,
		Opcode:   opcode,
		Prefix:   prefix,
		Mnemonic: op.Mnemonic,
		Category: op.Category,
		Flow:     op.Flow,
		Stack: StackBehavior{
			Pops:      op.Pops,
			Pushes:    op.Pushes,
			NetEffect: int8(op.Pushes) - int8(op.Pops),
		},
		Operand: operand,
	}

	// Targets use wrapping arithmetic; adversarial displacements must not fail here.
	next := rva + size
	switch in.Flow {
	case FlowConditionalBranch, FlowUnconditionalBranch:
		if operand.Kind == OperandKindImmediate {
			in.BranchTargets = []uint64{next + operand.Immediate.Uint64()}
		}
	case FlowSwitch:
		if operand.Kind == OperandKindSwitch {
			in.BranchTargets = make([]uint64, len(operand.Switch))
			for i, rel := range operand.Switch {
				in.BranchTargets[i] = next + uint64(rel)
			}
		}
	}

	return in, nil
}

func readOperand(c *cursor.Cursor, t OperandType) (Operand, error) {
	imm := func(v Immediate, err error) (Operand, error) {
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandKindImmediate, Immediate: v}, nil
	}

	switch t {
	case OperandNone:
		return Operand{}, nil
	case OperandInt8:
		v, err := c.ReadI8()
		return imm(ImmInt8(v), err)
	case OperandUInt8:
		v, err := c.ReadU8()
		return imm(ImmUInt8(v), err)
	case OperandInt16:
		v, err := c.ReadI16()
		return imm(ImmInt16(v), err)
	case OperandUInt16:
		v, err := c.ReadU16()
		return imm(ImmUInt16(v), err)
	case OperandInt32:
		v, err := c.ReadI32()
		return imm(ImmInt32(v), err)
	case OperandUInt32:
		v, err := c.ReadU32()
		return imm(ImmUInt32(v), err)
	case OperandInt64:
		v, err := c.ReadI64()
		return imm(ImmInt64(v), err)
	case OperandUInt64:
		v, err := c.ReadU64()
		return imm(ImmUInt64(v), err)
	case OperandFloat32:
		v, err := c.ReadF32()
		return imm(ImmFloat32(v), err)
	case OperandFloat64:
		v, err := c.ReadF64()
		return imm(ImmFloat64(v), err)
	case OperandToken:
		v, err := c.ReadU32()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandKindToken, Token: Token(v)}, nil
	case OperandSwitch:
		return readSwitch(c)
	}
	return Operand{}, cilerrors.Malformed("unknown operand type %d", t)
}

// readSwitch reads a u32 case count followed by that many u32 relative offsets.
// The count is checked against the remaining data before allocating.
func readSwitch(c *cursor.Cursor) (Operand, error) {
	count, err := c.ReadU32()
	if err != nil {
		return Operand{}, err
	}
	if remaining := uint64(c.Len() - c.Pos()); uint64(count)*4 > remaining {
		return Operand{}, cilerrors.OutOfBounds("switch table of %d cases, %d bytes left", count, remaining)
	}

	cases := make([]uint32, count)
	for i := range cases {
		if cases[i], err = c.ReadU32(); err != nil {
			return Operand{}, err
		}
	}
	return Operand{Kind: OperandKindSwitch, Switch: cases}, nil
}

// DecodeStream decodes instructions until the cursor runs out of data. No flow analysis is
// done. On error nothing is returned.
func DecodeStream(c *cursor.Cursor, rva uint64) ([]Instruction, error) {
	var out []Instruction
	for c.HasMoreData() {
		before := c.Pos()
		in, err := DecodeInstruction(c, rva)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
		rva += uint64(c.Pos() - before)
	}
	return out, nil
}
