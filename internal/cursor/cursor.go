// Package cursor implements a sequential little-endian reader over an in-memory byte slice.
package cursor

import (
	"encoding/binary"
	"math"

	"cildis/internal/cilerrors"
)

// Cursor reads fixed-width little-endian values from data, advancing pos.
// A failed read never moves the position.
type Cursor struct {
	data []byte
	pos  int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the total length of the underlying data.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// HasMoreData reports whether at least one byte remains.
func (c *Cursor) HasMoreData() bool {
	return c.pos < len(c.data)
}

// Seek moves to pos, which must address an existing byte.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos >= len(c.data) {
		return cilerrors.OutOfBounds("seek to %d, length %d", pos, len(c.data))
	}
	c.pos = pos
	return nil
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n > len(c.data)-c.pos {
		return nil, cilerrors.OutOfBounds("read %d bytes at %d, length %d", n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadF64() (float64, error) {
	v, err := c.ReadU64()
	return math.Float64frombits(v), err
}
