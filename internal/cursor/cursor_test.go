package cursor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/cilerrors"
)

func TestReadLittleEndian(t *testing.T) {
	c := New([]byte{
		0xFF,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01,
	})

	i8, err := c.ReadI8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	u16, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	u64, err := c.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), u64)

	assert.False(t, c.HasMoreData())
	assert.Equal(t, 15, c.Pos())
}

func TestReadFloat(t *testing.T) {
	// 42.0f and 100.0
	c := New([]byte{0x00, 0x00, 0x28, 0x42, 0, 0, 0, 0, 0, 0, 0x59, 0x40})

	f32, err := c.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(42.0), f32)

	f64, err := c.ReadF64()
	require.NoError(t, err)
	assert.Equal(t, 100.0, f64)
}

func TestShortReadDoesNotMove(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03})
	require.NoError(t, c.Seek(1))

	_, err := c.ReadU32()
	require.Error(t, err)
	assert.True(t, errors.Is(err, cilerrors.ErrOutOfBounds))
	assert.Equal(t, 1, c.Pos())

	v, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), v)
}

func TestSeek(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		pos     int
		wantErr bool
	}{
		{name: "start", size: 4, pos: 0},
		{name: "last byte", size: 4, pos: 3},
		{name: "at length", size: 4, pos: 4, wantErr: true},
		{name: "negative", size: 4, pos: -1, wantErr: true},
		{name: "empty", size: 0, pos: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(make([]byte, tt.size))
			err := c.Seek(tt.pos)
			if tt.wantErr {
				assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pos, c.Pos())
		})
	}
}

func TestEmpty(t *testing.T) {
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.HasMoreData())
	_, err := c.ReadU8()
	assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)
}
