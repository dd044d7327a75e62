// Package methodbody parses CIL method body headers and their exception handling sections.
package methodbody

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"

	"cildis/internal/cilerrors"
	"cildis/internal/disasm"
)

// Header format and flags.
const (
	FormatTiny = 0x2
	FormatFat  = 0x3
	formatMask = 0x3

	FlagMoreSects  = 0x08
	FlagInitLocals = 0x10

	sectEHTable   = 0x01
	sectFatFormat = 0x40
	sectMoreSects = 0x80

	fatHeaderSize   = 12
	tinyMaxStack    = 8
	fatClauseSize   = 24
	smallClauseSize = 12
)

type fatHeader struct {
	FlagsAndSize   uint16
	MaxStack       uint16
	CodeSize       uint32
	LocalVarSigTok uint32
}

type fatClause struct {
	Flags         uint32
	TryOffset     uint32
	TryLength     uint32
	HandlerOffset uint32
	HandlerLength uint32
	ClassToken    uint32
}

type smallClause struct {
	Flags         uint16
	TryOffset     uint16
	TryLength     uint8
	HandlerOffset uint16
	HandlerLength uint8
	ClassToken    uint32
}

// Body is a parsed method body header. Handler offsets are relative to the first byte of code.
type Body struct {
	CodeSize         int
	HeaderSize       int
	MaxStack         int
	LocalVarSigToken uint32
	Fat              bool
	InitLocals       bool
	Handlers         []disasm.ExceptionHandler
}

// Size returns header plus code size, not counting extra data sections.
func (b *Body) Size() int {
	return b.HeaderSize + b.CodeSize
}

// HasExceptionData reports whether any exception handling clauses were found.
func (b *Body) HasExceptionData() bool {
	return len(b.Handlers) > 0
}

// Parse reads the body header at the start of data. data may extend past the body.
func Parse(data []byte) (*Body, error) {
	if len(data) == 0 {
		return nil, cilerrors.Malformed("empty method body")
	}

	switch data[0] & formatMask {
	case FormatTiny:
		code := int(data[0] >> 2)
		if code+1 > len(data) {
			return nil, cilerrors.OutOfBounds("tiny body of %d bytes, %d available", code+1, len(data))
		}
		return &Body{CodeSize: code, HeaderSize: 1, MaxStack: tinyMaxStack}, nil
	case FormatFat:
		return parseFat(data)
	}
	return nil, cilerrors.Malformed("method header is neither tiny nor fat: %02X", data[0])
}

func parseFat(data []byte) (*Body, error) {
	if len(data) < fatHeaderSize {
		return nil, cilerrors.OutOfBounds("fat header needs %d bytes, %d available", fatHeaderSize, len(data))
	}

	var h fatHeader
	if err := restruct.Unpack(data[:fatHeaderSize], binary.LittleEndian, &h); err != nil {
		return nil, cilerrors.Malformed("fat header: %v", err)
	}

	header := int(h.FlagsAndSize>>12) * 4
	if header < fatHeaderSize {
		return nil, cilerrors.Malformed("fat header size %d, need at least %d", header, fatHeaderSize)
	}
	if uint64(len(data)) < uint64(h.CodeSize)+uint64(header) {
		return nil, cilerrors.OutOfBounds("fat body of %d bytes, %d available", uint64(h.CodeSize)+uint64(header), len(data))
	}
	flags := h.FlagsAndSize & 0x0FFF

	b := &Body{
		CodeSize:         int(h.CodeSize),
		HeaderSize:       header,
		MaxStack:         int(h.MaxStack),
		LocalVarSigToken: h.LocalVarSigTok,
		Fat:              true,
		InitLocals:       flags&FlagInitLocals != 0,
	}
	if flags&FlagMoreSects != 0 {
		b.Handlers = parseSections(data, (b.Size()+3)&^3)
	}
	return b, nil
}

// parseSections walks the data sections following the code. A section that is not an
// exception table, or one that does not fit, ends the walk without an error.
func parseSections(data []byte, pos int) []disasm.ExceptionHandler {
	var out []disasm.ExceptionHandler

	for len(data) > pos+4 {
		kind := data[pos]
		if kind&sectEHTable == 0 {
			break
		}

		var size int
		if kind&sectFatFormat != 0 {
			size = int(binary.LittleEndian.Uint32(data[pos+1:pos+5]) & 0x00FFFFFF)
		} else {
			size = int(data[pos+1])
		}
		if size < 4 || len(data) < pos+size {
			break
		}

		clauses := data[pos+4 : pos+size]
		if kind&sectFatFormat != 0 {
			out = appendFatClauses(out, clauses)
		} else {
			out = appendSmallClauses(out, clauses)
		}
		pos += size

		if kind&sectMoreSects == 0 {
			break
		}
		pos = (pos + 3) &^ 3
	}
	return out
}

func appendFatClauses(out []disasm.ExceptionHandler, raw []byte) []disasm.ExceptionHandler {
	for len(raw) >= fatClauseSize {
		var c fatClause
		if err := restruct.Unpack(raw[:fatClauseSize], binary.LittleEndian, &c); err != nil {
			break
		}
		out = append(out, disasm.ExceptionHandler{
			Flags:         disasm.ExceptionFlags(c.Flags),
			TryOffset:     c.TryOffset,
			TryLength:     c.TryLength,
			HandlerOffset: c.HandlerOffset,
			HandlerLength: c.HandlerLength,
			ClassToken:    c.ClassToken,
		})
		raw = raw[fatClauseSize:]
	}
	return out
}

func appendSmallClauses(out []disasm.ExceptionHandler, raw []byte) []disasm.ExceptionHandler {
	for len(raw) >= smallClauseSize {
		var c smallClause
		if err := restruct.Unpack(raw[:smallClauseSize], binary.LittleEndian, &c); err != nil {
			break
		}
		out = append(out, disasm.ExceptionHandler{
			Flags:         disasm.ExceptionFlags(c.Flags),
			TryOffset:     uint32(c.TryOffset),
			TryLength:     uint32(c.TryLength),
			HandlerOffset: uint32(c.HandlerOffset),
			HandlerLength: uint32(c.HandlerLength),
			ClassToken:    c.ClassToken,
		})
		raw = raw[smallClauseSize:]
	}
	return out
}

// Rebase returns copies of handlers with try and handler offsets moved by base.
func Rebase(handlers []disasm.ExceptionHandler, base uint32) []disasm.ExceptionHandler {
	if len(handlers) == 0 {
		return nil
	}
	out := make([]disasm.ExceptionHandler, len(handlers))
	for i, h := range handlers {
		h.TryOffset += base
		h.HandlerOffset += base
		out[i] = h
	}
	return out
}
