package disasm

// OperandType is the encoding of the bytes that follow an opcode.
type OperandType uint8

const (
	OperandNone OperandType = iota
	OperandInt8
	OperandUInt8
	OperandInt16
	OperandUInt16
	OperandInt32
	OperandUInt32
	OperandInt64
	OperandUInt64
	OperandFloat32
	OperandFloat64
	OperandToken
	OperandSwitch
)

var operandTypeNames = [...]string{
	OperandNone:    "none",
	OperandInt8:    "int8",
	OperandUInt8:   "uint8",
	OperandInt16:   "int16",
	OperandUInt16:  "uint16",
	OperandInt32:   "int32",
	OperandUInt32:  "uint32",
	OperandInt64:   "int64",
	OperandUInt64:  "uint64",
	OperandFloat32: "float32",
	OperandFloat64: "float64",
	OperandToken:   "token",
	OperandSwitch:  "switch",
}

func (t OperandType) String() string {
	if int(t) < len(operandTypeNames) {
		return operandTypeNames[t]
	}
	return "unknown"
}

// FlowType classifies how an instruction transfers control.
type FlowType uint8

const (
	FlowSequential FlowType = iota
	FlowConditionalBranch
	FlowUnconditionalBranch
	FlowCall
	FlowReturn
	FlowSwitch
	FlowThrow
	FlowEndFinally
	FlowLeave
)

var flowTypeNames = [...]string{
	FlowSequential:          "Sequential",
	FlowConditionalBranch:   "ConditionalBranch",
	FlowUnconditionalBranch: "UnconditionalBranch",
	FlowCall:                "Call",
	FlowReturn:              "Return",
	FlowSwitch:              "Switch",
	FlowThrow:               "Throw",
	FlowEndFinally:          "EndFinally",
	FlowLeave:               "Leave",
}

func (f FlowType) String() string {
	if int(f) < len(flowTypeNames) {
		return flowTypeNames[f]
	}
	return "Unknown"
}

// Category groups instructions by what they operate on.
type Category uint8

const (
	CategoryArithmetic Category = iota
	CategoryBitwise
	CategoryComparison
	CategoryControlFlow
	CategoryConversion
	CategoryLoadStore
	CategoryObjectModel
	CategoryPrefix
	CategoryMisc
)

var categoryNames = [...]string{
	CategoryArithmetic:  "Arithmetic",
	CategoryBitwise:     "BitwiseLogical",
	CategoryComparison:  "Comparison",
	CategoryControlFlow: "ControlFlow",
	CategoryConversion:  "Conversion",
	CategoryLoadStore:   "LoadStore",
	CategoryObjectModel: "ObjectModel",
	CategoryPrefix:      "Prefix",
	CategoryMisc:        "Misc",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// OpCode describes one slot of an opcode table. A slot with an empty Mnemonic is reserved.
type OpCode struct {
	Mnemonic string
	Operand  OperandType
	Category Category
	Pops     uint8
	Pushes   uint8
	Flow     FlowType
}

// Reserved reports whether the slot has no instruction assigned.
func (o OpCode) Reserved() bool {
	return o.Mnemonic == ""
}

// EscapePrefix selects the Extended table for the following byte.
const EscapePrefix = 0xFE

// Lookup returns the table slot for opcode, using the Extended table when prefix is EscapePrefix.
func Lookup(prefix, opcode byte) OpCode {
	if prefix == EscapePrefix {
		return Extended[opcode]
	}
	return Primary[opcode]
}

// Primary is the single-byte opcode table.
var Primary = [256]OpCode{
	0x00: {"nop", OperandNone, CategoryMisc, 0, 0, FlowSequential},
	0x01: {"break", OperandNone, CategoryMisc, 0, 0, FlowSequential},
	0x02: {"ldarg.0", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x03: {"ldarg.1", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x04: {"ldarg.2", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x05: {"ldarg.3", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x06: {"ldloc.0", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x07: {"ldloc.1", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x08: {"ldloc.2", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x09: {"ldloc.3", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x0A: {"stloc.0", OperandNone, CategoryLoadStore, 1, 0, FlowSequential},
	0x0B: {"stloc.1", OperandNone, CategoryLoadStore, 1, 0, FlowSequential},
	0x0C: {"stloc.2", OperandNone, CategoryLoadStore, 1, 0, FlowSequential},
	0x0D: {"stloc.3", OperandNone, CategoryLoadStore, 1, 0, FlowSequential},
	0x0E: {"ldarg.s", OperandInt8, CategoryLoadStore, 0, 1, FlowSequential},
	0x0F: {"ldarga.s", OperandInt8, CategoryLoadStore, 0, 1, FlowSequential},
	0x10: {"starg.s", OperandInt8, CategoryLoadStore, 1, 0, FlowSequential},
	0x11: {"ldloc.s", OperandInt8, CategoryLoadStore, 0, 1, FlowSequential},
	0x12: {"ldloca.s", OperandInt8, CategoryLoadStore, 0, 1, FlowSequential},
	0x13: {"stloc.s", OperandInt8, CategoryLoadStore, 1, 0, FlowSequential},
	0x14: {"ldnull", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x15: {"ldc.i4.m1", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x16: {"ldc.i4.0", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x17: {"ldc.i4.1", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x18: {"ldc.i4.2", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x19: {"ldc.i4.3", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1A: {"ldc.i4.4", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1B: {"ldc.i4.5", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1C: {"ldc.i4.6", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1D: {"ldc.i4.7", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1E: {"ldc.i4.8", OperandNone, CategoryLoadStore, 0, 1, FlowSequential},
	0x1F: {"ldc.i4.s", OperandInt8, CategoryLoadStore, 0, 1, FlowSequential},
	0x20: {"ldc.i4", OperandInt32, CategoryLoadStore, 0, 1, FlowSequential},
	0x21: {"ldc.i8", OperandInt64, CategoryLoadStore, 0, 1, FlowSequential},
	0x22: {"ldc.r4", OperandFloat32, CategoryLoadStore, 0, 1, FlowSequential},
	0x23: {"ldc.r8", OperandFloat64, CategoryLoadStore, 0, 1, FlowSequential},
	0x25: {"dup", OperandNone, CategoryMisc, 1, 2, FlowSequential},
	0x26: {"pop", OperandNone, CategoryMisc, 1, 0, FlowSequential},
	0x27: {"jmp", OperandToken, CategoryControlFlow, 0, 0, FlowCall},
	0x28: {"call", OperandToken, CategoryControlFlow, 0, 0, FlowCall},
	0x29: {"calli", OperandToken, CategoryControlFlow, 0, 0, FlowCall},
	0x2A: {"ret", OperandNone, CategoryControlFlow, 0, 0, FlowReturn},
	0x2B: {"br.s", OperandInt8, CategoryControlFlow, 0, 0, FlowUnconditionalBranch},
	0x2C: {"brfalse.s", OperandInt8, CategoryControlFlow, 1, 0, FlowConditionalBranch},
	0x2D: {"brtrue.s", OperandInt8, CategoryControlFlow, 1, 0, FlowConditionalBranch},
	0x2E: {"beq.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x2F: {"bge.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x30: {"bgt.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x31: {"ble.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x32: {"blt.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x33: {"bne.un.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x34: {"bge.un.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x35: {"bgt.un.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x36: {"ble.un.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x37: {"blt.un.s", OperandInt8, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x38: {"br", OperandInt32, CategoryControlFlow, 0, 0, FlowUnconditionalBranch},
	0x39: {"brfalse", OperandInt32, CategoryControlFlow, 1, 0, FlowConditionalBranch},
	0x3A: {"brtrue", OperandInt32, CategoryControlFlow, 1, 0, FlowConditionalBranch},
	0x3B: {"beq", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x3C: {"bge", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x3D: {"bgt", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x3E: {"ble", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x3F: {"blt", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x40: {"bne.un", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x41: {"bge.un", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x42: {"bgt.un", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x43: {"ble.un", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x44: {"blt.un", OperandInt32, CategoryControlFlow, 2, 0, FlowConditionalBranch},
	0x45: {"switch", OperandSwitch, CategoryControlFlow, 1, 0, FlowSwitch},
	0x46: {"ldind.i1", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x47: {"ldind.u1", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x48: {"ldind.i2", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x49: {"ldind.u2", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4A: {"ldind.i4", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4B: {"ldind.u4", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4C: {"ldind.i8", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4D: {"ldind.i", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4E: {"ldind.r4", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x4F: {"ldind.r8", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x50: {"ldind.ref", OperandNone, CategoryLoadStore, 1, 1, FlowSequential},
	0x51: {"stind.ref", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x52: {"stind.i1", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x53: {"stind.i2", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x54: {"stind.i4", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x55: {"stind.i8", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x56: {"stind.r4", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x57: {"stind.r8", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0x58: {"add", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x59: {"sub", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5A: {"mul", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5B: {"div", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5C: {"div.un", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5D: {"rem", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5E: {"rem.un", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0x5F: {"and", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x60: {"or", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x61: {"xor", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x62: {"shl", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x63: {"shr", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x64: {"shr.un", OperandNone, CategoryBitwise, 2, 1, FlowSequential},
	0x65: {"neg", OperandNone, CategoryArithmetic, 1, 1, FlowSequential},
	0x66: {"not", OperandNone, CategoryBitwise, 1, 1, FlowSequential},
	0x67: {"conv.i1", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x68: {"conv.i2", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x69: {"conv.i4", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6A: {"conv.i8", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6B: {"conv.r4", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6C: {"conv.r8", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6D: {"conv.u4", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6E: {"conv.u8", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x6F: {"callvirt", OperandToken, CategoryControlFlow, 0, 0, FlowCall},
	0x70: {"cpobj", OperandToken, CategoryObjectModel, 2, 0, FlowSequential},
	0x71: {"ldobj", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x72: {"ldstr", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0x73: {"newobj", OperandToken, CategoryObjectModel, 0, 1, FlowCall},
	0x74: {"castclass", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x75: {"isinst", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x76: {"conv.r.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x79: {"unbox", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x7A: {"throw", OperandNone, CategoryControlFlow, 1, 0, FlowThrow},
	0x7B: {"ldfld", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x7C: {"ldflda", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x7D: {"stfld", OperandToken, CategoryObjectModel, 2, 0, FlowSequential},
	0x7E: {"ldsfld", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0x7F: {"ldsflda", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0x80: {"stsfld", OperandToken, CategoryObjectModel, 1, 0, FlowSequential},
	0x81: {"stobj", OperandToken, CategoryObjectModel, 2, 0, FlowSequential},
	0x82: {"conv.ovf.i1.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x83: {"conv.ovf.i2.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x84: {"conv.ovf.i4.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x85: {"conv.ovf.i8.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x86: {"conv.ovf.u1.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x87: {"conv.ovf.u2.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x88: {"conv.ovf.u4.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x89: {"conv.ovf.u8.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x8A: {"conv.ovf.i.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x8B: {"conv.ovf.u.un", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0x8C: {"box", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x8D: {"newarr", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x8E: {"ldlen", OperandNone, CategoryObjectModel, 1, 1, FlowSequential},
	0x8F: {"ldelema", OperandToken, CategoryObjectModel, 2, 1, FlowSequential},
	0x90: {"ldelem.i1", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x91: {"ldelem.u1", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x92: {"ldelem.i2", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x93: {"ldelem.u2", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x94: {"ldelem.i4", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x95: {"ldelem.u4", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x96: {"ldelem.i8", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x97: {"ldelem.i", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x98: {"ldelem.r4", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x99: {"ldelem.r8", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x9A: {"ldelem.ref", OperandNone, CategoryObjectModel, 2, 1, FlowSequential},
	0x9B: {"stelem.i", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0x9C: {"stelem.i1", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0x9D: {"stelem.i2", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0x9E: {"stelem.i4", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0x9F: {"stelem.i8", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0xA0: {"stelem.r4", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0xA1: {"stelem.r8", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0xA2: {"stelem.ref", OperandNone, CategoryObjectModel, 3, 0, FlowSequential},
	0xA3: {"ldelem", OperandToken, CategoryObjectModel, 2, 1, FlowSequential},
	0xA4: {"stelem", OperandToken, CategoryObjectModel, 3, 0, FlowSequential},
	0xA5: {"unbox.any", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0xB3: {"conv.ovf.i1", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB4: {"conv.ovf.u1", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB5: {"conv.ovf.i2", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB6: {"conv.ovf.u2", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB7: {"conv.ovf.i4", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB8: {"conv.ovf.u4", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xB9: {"conv.ovf.i8", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xBA: {"conv.ovf.u8", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xC2: {"refanyval", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0xC3: {"ckfinite", OperandNone, CategoryMisc, 1, 1, FlowSequential},
	0xC6: {"mkrefany", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0xD0: {"ldtoken", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0xD1: {"conv.u2", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xD2: {"conv.u1", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xD3: {"conv.i", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xD4: {"conv.ovf.i", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xD5: {"conv.ovf.u", OperandNone, CategoryConversion, 1, 1, FlowSequential},
	0xD6: {"add.ovf", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xD7: {"add.ovf.un", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xD8: {"mul.ovf", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xD9: {"mul.ovf.un", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xDA: {"sub.ovf", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xDB: {"sub.ovf.un", OperandNone, CategoryArithmetic, 2, 1, FlowSequential},
	0xDC: {"endfinally", OperandNone, CategoryControlFlow, 0, 0, FlowEndFinally},
	0xDD: {"leave", OperandInt32, CategoryControlFlow, 0, 0, FlowLeave},
	0xDE: {"leave.s", OperandInt8, CategoryControlFlow, 0, 0, FlowLeave},
	0xDF: {"stind.i", OperandNone, CategoryLoadStore, 2, 0, FlowSequential},
	0xE0: {"conv.u", OperandNone, CategoryConversion, 1, 1, FlowSequential},
}

// Extended is the opcode table reached through EscapePrefix.
var Extended = [256]OpCode{
	0x00: {"arglist", OperandNone, CategoryMisc, 0, 1, FlowSequential},
	0x01: {"ceq", OperandNone, CategoryComparison, 2, 1, FlowSequential},
	0x02: {"cgt", OperandNone, CategoryComparison, 2, 1, FlowSequential},
	0x03: {"cgt.un", OperandNone, CategoryComparison, 2, 1, FlowSequential},
	0x04: {"clt", OperandNone, CategoryComparison, 2, 1, FlowSequential},
	0x05: {"clt.un", OperandNone, CategoryComparison, 2, 1, FlowSequential},
	0x06: {"ldftn", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0x07: {"ldvirtftn", OperandToken, CategoryObjectModel, 1, 1, FlowSequential},
	0x09: {"ldarg", OperandInt16, CategoryLoadStore, 0, 1, FlowSequential},
	0x0A: {"ldarga", OperandInt16, CategoryLoadStore, 0, 1, FlowSequential},
	0x0B: {"starg", OperandInt16, CategoryLoadStore, 1, 0, FlowSequential},
	0x0C: {"ldloc", OperandInt16, CategoryLoadStore, 0, 1, FlowSequential},
	0x0D: {"ldloca", OperandInt16, CategoryLoadStore, 0, 1, FlowSequential},
	0x0E: {"stloc", OperandInt16, CategoryLoadStore, 1, 0, FlowSequential},
	0x0F: {"localloc", OperandNone, CategoryMisc, 1, 1, FlowSequential},
	0x11: {"endfilter", OperandNone, CategoryControlFlow, 1, 0, FlowEndFinally},
	0x12: {"unaligned.", OperandInt8, CategoryPrefix, 0, 0, FlowSequential},
	0x13: {"volatile.", OperandNone, CategoryPrefix, 0, 0, FlowSequential},
	0x14: {"tail.", OperandNone, CategoryPrefix, 0, 0, FlowSequential},
	0x15: {"initobj", OperandToken, CategoryObjectModel, 1, 0, FlowSequential},
	0x16: {"constrained.", OperandToken, CategoryPrefix, 0, 0, FlowSequential},
	0x17: {"cpblk", OperandNone, CategoryMisc, 3, 0, FlowSequential},
	0x18: {"initblk", OperandNone, CategoryMisc, 3, 0, FlowSequential},
	0x1A: {"rethrow", OperandNone, CategoryControlFlow, 0, 0, FlowThrow},
	0x1C: {"sizeof", OperandToken, CategoryObjectModel, 0, 1, FlowSequential},
	0x1D: {"refanytype", OperandNone, CategoryObjectModel, 1, 1, FlowSequential},
	0x1E: {"readonly.", OperandNone, CategoryPrefix, 0, 0, FlowSequential},
}
