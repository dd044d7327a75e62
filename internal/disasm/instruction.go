package disasm

import (
	"fmt"
	"math"
	"strings"
)

// Immediate is an inline constant operand. The value is kept as 64 raw bits: signed kinds
// are sign-extended, unsigned kinds zero-extended, floats hold their IEEE bit pattern.
type Immediate struct {
	Type OperandType
	raw  uint64
}

func ImmInt8(v int8) Immediate       { return Immediate{OperandInt8, uint64(int64(v))} }
func ImmUInt8(v uint8) Immediate     { return Immediate{OperandUInt8, uint64(v)} }
func ImmInt16(v int16) Immediate     { return Immediate{OperandInt16, uint64(int64(v))} }
func ImmUInt16(v uint16) Immediate   { return Immediate{OperandUInt16, uint64(v)} }
func ImmInt32(v int32) Immediate     { return Immediate{OperandInt32, uint64(int64(v))} }
func ImmUInt32(v uint32) Immediate   { return Immediate{OperandUInt32, uint64(v)} }
func ImmInt64(v int64) Immediate     { return Immediate{OperandInt64, uint64(v)} }
func ImmUInt64(v uint64) Immediate   { return Immediate{OperandUInt64, v} }
func ImmFloat32(v float32) Immediate { return Immediate{OperandFloat32, uint64(math.Float32bits(v))} }
func ImmFloat64(v float64) Immediate { return Immediate{OperandFloat64, math.Float64bits(v)} }

// Uint64 returns the raw 64-bit pattern. Branch displacements are added to an address with it.
func (i Immediate) Uint64() uint64 {
	return i.raw
}

// Int64 returns the value as a signed integer. Meaningless for float kinds.
func (i Immediate) Int64() int64 {
	return int64(i.raw)
}

// Float64 returns the value of a float kind.
func (i Immediate) Float64() float64 {
	switch i.Type {
	case OperandFloat32:
		return float64(math.Float32frombits(uint32(i.raw)))
	case OperandFloat64:
		return math.Float64frombits(i.raw)
	}
	return float64(i.Int64())
}

// IsFloat reports whether the immediate holds a floating point value.
func (i Immediate) IsFloat() bool {
	return i.Type == OperandFloat32 || i.Type == OperandFloat64
}

// Hex formats the immediate at its natural width, e.g. "FF" for int8(-1).
func (i Immediate) Hex() string {
	switch i.Type {
	case OperandInt8, OperandUInt8:
		return fmt.Sprintf("%02X", uint8(i.raw))
	case OperandInt16, OperandUInt16:
		return fmt.Sprintf("%04X", uint16(i.raw))
	case OperandInt32, OperandUInt32, OperandFloat32:
		return fmt.Sprintf("%08X", uint32(i.raw))
	}
	return fmt.Sprintf("%016X", i.raw)
}

func (i Immediate) String() string {
	if i.IsFloat() {
		return fmt.Sprintf("%g", i.Float64())
	}
	switch i.Type {
	case OperandUInt8, OperandUInt16, OperandUInt32, OperandUInt64:
		return fmt.Sprintf("%d", i.raw)
	}
	return fmt.Sprintf("%d", i.Int64())
}

// Token is an opaque metadata reference: table in the high byte, row in the low 24 bits.
type Token uint32

func (t Token) Value() uint32 { return uint32(t) }
func (t Token) Table() uint8  { return uint8(t >> 24) }
func (t Token) Row() uint32   { return uint32(t) & 0x00FFFFFF }

// OperandKind tags the active member of Operand.
type OperandKind uint8

const (
	OperandKindNone OperandKind = iota
	OperandKindImmediate
	OperandKindToken
	OperandKindSwitch
)

// Operand is the decoded payload of an instruction.
type Operand struct {
	Kind      OperandKind
	Immediate Immediate
	Token     Token
	Switch    []uint32 // relative case offsets, in table order
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandKindImmediate:
		return "0x" + o.Immediate.Hex()
	case OperandKindToken:
		return fmt.Sprintf("token:0x%08X", o.Token.Value())
	case OperandKindSwitch:
		var b strings.Builder
		fmt.Fprintf(&b, "switch[%d]:(", len(o.Switch))
		for i, c := range o.Switch {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "0x%08X", c)
			if i >= 5 && len(o.Switch) > 6 {
				fmt.Fprintf(&b, ", ...%d more", len(o.Switch)-6)
				break
			}
		}
		b.WriteString(")")
		return b.String()
	}
	return ""
}

// StackBehavior is the evaluation stack effect of one instruction.
type StackBehavior struct {
	Pops      uint8
	Pushes    uint8
	NetEffect int8
}

// Instruction is one decoded CIL instruction. It is never modified after decoding.
type Instruction struct {
	RVA           uint64
	Offset        uint64
	Size          uint64
	Opcode        byte
	Prefix        byte // EscapePrefix or 0
	Mnemonic      string
	Category      Category
	Flow          FlowType
	Stack         StackBehavior
	BranchTargets []uint64 // absolute RVAs
	Operand       Operand
}

// Next returns the RVA immediately after the instruction.
func (in Instruction) Next() uint64 {
	return in.RVA + in.Size
}

// IsBranch reports whether the instruction transfers control to explicit targets.
func (in Instruction) IsBranch() bool {
	switch in.Flow {
	case FlowConditionalBranch, FlowUnconditionalBranch, FlowSwitch:
		return true
	}
	return false
}

// IsTerminal reports whether the instruction can end a straight-line run.
func (in Instruction) IsTerminal() bool {
	switch in.Flow {
	case FlowConditionalBranch, FlowUnconditionalBranch, FlowReturn, FlowSwitch, FlowThrow, FlowLeave:
		return true
	}
	return false
}

// String renders the instruction in a single hex listing line.
func (in Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%016X - ", in.RVA)
	if in.Prefix != 0 {
		fmt.Fprintf(&b, "%02X:", in.Prefix)
	}
	fmt.Fprintf(&b, "%02X - %-12s", in.Opcode, in.Mnemonic)
	if op := in.Operand.String(); op != "" {
		b.WriteString(" " + op)
	}
	fmt.Fprintf(&b, " | %s", in.Category)
	if in.Flow != FlowSequential {
		fmt.Fprintf(&b, " | %s", in.Flow)
	}
	if in.Stack.NetEffect != 0 {
		fmt.Fprintf(&b, " | stack:%+d", in.Stack.NetEffect)
	}
	fmt.Fprintf(&b, " | size:%d", in.Size)
	if len(in.BranchTargets) > 0 {
		b.WriteString(" | targets:[")
		for i, t := range in.BranchTargets {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "0x%08X", t)
			if i >= 3 && len(in.BranchTargets) > 4 {
				fmt.Fprintf(&b, ", ...%d more", len(in.BranchTargets)-4)
				break
			}
		}
		b.WriteString("]")
	}
	return b.String()
}
