package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/cilerrors"
	"cildis/internal/cursor"
	"cildis/internal/visitmap"
)

func mnemonics(b BasicBlock) []string {
	out := make([]string, len(b.Instructions))
	for i, in := range b.Instructions {
		out[i] = in.Mnemonic
	}
	return out
}

func totalSize(blocks []BasicBlock) int {
	n := 0
	for _, b := range blocks {
		n += b.Size
	}
	return n
}

func TestDecodeBlocksSimple(t *testing.T) {
	blocks, err := DecodeBlocks([]byte{0x00, 0x2A}, 0, 0x1000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 0, b.ID)
	assert.Equal(t, uint64(0x1000), b.RVA)
	assert.Equal(t, 2, b.Size)
	assert.Equal(t, []string{"nop", "ret"}, mnemonics(b))
	assert.True(t, b.Terminated())
	assert.Equal(t, uint64(0x1002), b.End())
}

func TestDecodeBlocksConditional(t *testing.T) {
	// nop; brfalse.s +2; ret; ret
	blocks, err := DecodeBlocks([]byte{0x00, 0x2C, 0x02, 0x2A, 0x2A}, 0, 0x1000, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(blocks), 2)

	assert.Equal(t, []string{"nop", "brfalse.s"}, mnemonics(blocks[0]))

	// the taken target sits at the end of the data, only the fallthrough survives
	require.Len(t, blocks, 2)
	assert.Equal(t, uint64(0x1003), blocks[1].RVA)
	assert.Equal(t, 3, blocks[1].Offset)
	assert.Equal(t, []string{"ret"}, mnemonics(blocks[1]))

	for i, b := range blocks {
		assert.Equal(t, i, b.ID)
	}
}

func TestDecodeBlocksBothSuccessors(t *testing.T) {
	// brtrue.s +1; ret; ret
	blocks, err := DecodeBlocks([]byte{0x2D, 0x01, 0x2A, 0x2A}, 0, 0x2000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, uint64(0x2003), blocks[1].RVA, "taken target is queued first")
	assert.Equal(t, uint64(0x2002), blocks[2].RVA, "fallthrough is queued last")
	for _, b := range blocks[1:] {
		assert.Equal(t, []string{"ret"}, mnemonics(b))
	}
}

func TestDecodeBlocksSwitch(t *testing.T) {
	code := []byte{
		0x45, 0x02, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x2A,       // case 0
		0x00, 0x2A, // case 1
	}
	blocks, err := DecodeBlocks(code, 0, 0x1000, 0)
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, []string{"switch"}, mnemonics(blocks[0]))
	assert.Equal(t, uint64(0x100D), blocks[1].RVA)
	assert.Equal(t, uint64(0x100E), blocks[2].RVA)
	assert.Equal(t, []string{"nop", "ret"}, mnemonics(blocks[2]))
}

func TestDecodeBlocksLoopTerminates(t *testing.T) {
	// nop; br.s -3 back to the nop
	blocks, err := DecodeBlocks([]byte{0x00, 0x2B, 0xFD}, 0, 0x1000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, uint64(0x1000), blocks[1].RVA)
	assert.Empty(t, blocks[1].Instructions, "revisited start is not expanded again")
}

func TestDecodeBlocksThrow(t *testing.T) {
	blocks, err := DecodeBlocks([]byte{0x14, 0x7A, 0x00, 0x2A}, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"ldnull", "throw"}, mnemonics(blocks[0]))
}

func TestDecodeBlocksTruncated(t *testing.T) {
	blocks, err := DecodeBlocks([]byte{0x00, 0x00, 0x00}, 0, 0x1000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Instructions, 3)
	assert.False(t, blocks[0].Terminated())

	// conditional branch as the last instruction: no fallthrough block
	blocks, err = DecodeBlocks([]byte{0x2C, 0x00}, 0, 0x1000, 0)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestDecodeBlocksLeaveContinues(t *testing.T) {
	blocks, err := DecodeBlocks([]byte{0xDE, 0x01, 0x00, 0x2A}, 0, 0x1000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"leave.s", "nop", "ret"}, mnemonics(blocks[0]))
}

func TestDecodeBlocksEscapingTargets(t *testing.T) {
	// br.s -16 lands before the data start, br.s +100 past its end
	blocks, err := DecodeBlocks([]byte{0x2B, 0xF0}, 0, 0x1000, 0)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)

	blocks, err = DecodeBlocks([]byte{0x2B, 0x64}, 0, 0x1000, 0)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestDecodeBlocksOffsetRebase(t *testing.T) {
	// start at offset 2; the backward branch resolves to offset 0
	blocks, err := DecodeBlocks([]byte{0x00, 0x2A, 0x2B, 0xFC}, 2, 0x1000, 0)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, 2, blocks[0].Offset)
	assert.Equal(t, uint64(2), blocks[0].Instructions[0].Offset)
	assert.Equal(t, uint64(0x0FFE), blocks[1].RVA)
	assert.Equal(t, 0, blocks[1].Offset)
	assert.Equal(t, []string{"nop", "ret"}, mnemonics(blocks[1]))
}

func TestDecodeBlocksErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		offset int
	}{
		{name: "empty", data: nil},
		{name: "empty slice", data: []byte{}},
		{name: "offset at length", data: []byte{0x00, 0x00, 0x00, 0x2A}, offset: 4},
		{name: "offset past length", data: []byte{0x00, 0x2A}, offset: 100},
		{name: "negative offset", data: []byte{0x00, 0x2A}, offset: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				blocks, err := DecodeBlocks(tt.data, tt.offset, 0x1000, 0)
				assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)
				assert.Nil(t, blocks)
			})
		})
	}
}

func TestDecodeBlocksReservedOpcode(t *testing.T) {
	_, err := DecodeBlocks([]byte{0x00, 0xA6}, 0, 0, 0)
	assert.ErrorIs(t, err, cilerrors.ErrMalformed)
}

func TestDecodeBlocksMaxSize(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		offset  int
		maxSize int
		want    int
	}{
		{name: "bounded", data: []byte{0x00, 0x00, 0x00, 0x2A}, maxSize: 2, want: 2},
		{name: "bound from offset", data: []byte{0x00, 0x00, 0x00, 0x00, 0x2A}, offset: 1, maxSize: 2, want: 2},
		{name: "bound larger than data", data: []byte{0x00, 0x2A}, maxSize: 100, want: 2},
		{name: "zero means unbounded", data: []byte{0x00, 0x00, 0x2A}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := DecodeBlocks(tt.data, tt.offset, 0x1000, tt.maxSize)
			require.NoError(t, err)
			assert.Equal(t, tt.want, totalSize(blocks))
		})
	}
}

func TestDecoderSharedVisitedIdempotent(t *testing.T) {
	code := []byte{0x00, 0x2C, 0x02, 0x00, 0x2A, 0x00, 0x2A}
	visited := visitmap.New(len(code))

	first, err := NewDecoder(cursor.New(code), 0, 0x1000, nil, visited)
	require.NoError(t, err)
	require.NoError(t, first.Run())
	assert.Positive(t, first.Processed())

	second, err := NewDecoder(cursor.New(code), 0, 0x1000, nil, visited)
	require.NoError(t, err)
	require.NoError(t, second.Run())
	assert.Zero(t, second.Processed())
	assert.Zero(t, totalSize(second.Blocks()))
}

func TestDecoderMarksVisited(t *testing.T) {
	code := []byte{0x00, 0x20, 1, 2, 3, 4, 0x2A, 0xFF, 0xFF}
	visited := visitmap.New(len(code))

	d, err := NewDecoder(cursor.New(code), 0, 0, nil, visited)
	require.NoError(t, err)
	require.NoError(t, d.Run())

	assert.Equal(t, 7, visited.Count())
	assert.False(t, visited.Get(7), "bytes after ret are never decoded")
}

func TestNewDecoderBounds(t *testing.T) {
	_, err := NewDecoder(cursor.New([]byte{0x00}), 2, 0, nil, visitmap.New(1))
	assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)

	// a start exactly at the end is accepted here and rejected when the block is processed
	d, err := NewDecoder(cursor.New([]byte{0x00}), 1, 0, nil, visitmap.New(1))
	require.NoError(t, err)
	assert.ErrorIs(t, d.Run(), cilerrors.ErrOutOfBounds)
}

func TestNewDecoderVisitedTooSmall(t *testing.T) {
	// 0x2000 stloc.0 ; 0x2001 br.s -2 back to itself
	code := []byte{0x0A, 0x2B, 0xFE}

	tests := []struct {
		name    string
		visited *visitmap.Map
	}{
		{"nil", nil},
		{"empty", visitmap.New(0)},
		{"shorter than data", visitmap.New(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(cursor.New(code), 0, 0x2000, nil, tt.visited)
			assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)
		})
	}

	d, err := NewDecoder(cursor.New(code), 0, 0x2000, nil, visitmap.New(len(code)))
	require.NoError(t, err)
	require.NoError(t, d.Run())
	assert.Len(t, d.Blocks(), 2)
	assert.Equal(t, 1, d.Processed(), "the loop target is already visited")
}

func TestExceptionAssociation(t *testing.T) {
	// 0x1000 brfalse.s +1 ; 0x1002 nop ; 0x1003 ret
	code := []byte{0x2C, 0x01, 0x00, 0x2A}
	handlers := []ExceptionHandler{
		{Flags: ClauseException, TryOffset: 0x1000, TryLength: 2},
		{Flags: ClauseFinally, TryOffset: 0x1003, TryLength: 1},
		{Flags: ClauseFault, TryOffset: 0x5000, TryLength: 10},
	}

	d, err := NewDecoder(cursor.New(code), 0, 0x1000, handlers, visitmap.New(len(code)))
	require.NoError(t, err)
	require.NoError(t, d.Run())

	blocks := d.Blocks()
	require.Len(t, blocks, 3)
	byRVA := map[uint64]BasicBlock{}
	for _, b := range blocks {
		byRVA[b.RVA] = b
	}

	assert.Equal(t, []int{0}, byRVA[0x1000].Exceptions)
	assert.Equal(t, []int{1}, byRVA[0x1003].Exceptions)
	// 0x1002 is one past the end of the first try region and still matches
	assert.Equal(t, []int{0}, byRVA[0x1002].Exceptions)
}

func TestExceptionHandlerCovers(t *testing.T) {
	h := ExceptionHandler{TryOffset: 0x10, TryLength: 4}
	tests := []struct {
		rva  uint64
		want bool
	}{
		{0x0F, false},
		{0x10, true},
		{0x13, true},
		{0x14, true},
		{0x15, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.Covers(tt.rva), "rva 0x%X", tt.rva)
	}
	assert.Equal(t, "finally", ClauseFinally.String())
}

func TestBasicBlockHelpers(t *testing.T) {
	var empty BasicBlock
	_, ok := empty.First()
	assert.False(t, ok)
	_, ok = empty.Last()
	assert.False(t, ok)
	assert.True(t, empty.IsEntry())
	assert.True(t, empty.IsExit())
	assert.False(t, empty.Terminated())

	blocks, err := DecodeBlocks([]byte{0x00, 0x16, 0x2A}, 0, 0x400, 0)
	require.NoError(t, err)
	first, ok := blocks[0].First()
	require.True(t, ok)
	assert.Equal(t, "nop", first.Mnemonic)
	last, ok := blocks[0].Last()
	require.True(t, ok)
	assert.Equal(t, "ret", last.Mnemonic)
}
