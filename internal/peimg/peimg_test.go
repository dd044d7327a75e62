package peimg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/cilerrors"
	"cildis/internal/peimg/petest"
)

func TestFromBytes(t *testing.T) {
	data, rvas := petest.Image(petest.Tiny(0x00, 0x2A))
	im, err := FromBytes("mem", data)
	require.NoError(t, err)
	defer im.Close()

	require.Len(t, im.Sections, 1)
	assert.Equal(t, ".text", im.Sections[0].Name)
	assert.Equal(t, uint32(petest.TextRVA), im.Sections[0].VA)
	assert.True(t, im.IsManaged())

	off, err := im.RVAToOffset(rvas[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0x0A), im.Data()[off])

	body, ok := im.SliceRVA(rvas[0], 3)
	require.True(t, ok)
	assert.Equal(t, []byte{0x0A, 0x00, 0x2A}, body)
}

func TestRVAToOffset(t *testing.T) {
	data, _ := petest.Image(petest.Tiny(0x2A))
	im, err := FromBytes("mem", data)
	require.NoError(t, err)

	tests := []struct {
		name    string
		rva     uint32
		want    int
		wantErr bool
	}{
		{name: "section start", rva: 0x2000, want: 0x200},
		{name: "inside", rva: 0x2010, want: 0x210},
		{name: "before sections", rva: 0x100, wantErr: true},
		{name: "after sections", rva: 0x8000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, err := im.RVAToOffset(tt.rva)
			if tt.wantErr {
				assert.ErrorIs(t, err, cilerrors.ErrOutOfBounds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, off)
		})
	}
}

func TestSliceRVA(t *testing.T) {
	data, _ := petest.Image()
	im, err := FromBytes("mem", data)
	require.NoError(t, err)

	b, ok := im.SliceRVA(0x2000, 0)
	assert.True(t, ok)
	assert.Empty(t, b)

	_, ok = im.SliceRVA(0x2000, 1<<20)
	assert.False(t, ok)

	_, ok = im.SliceRVA(0x9000, 4)
	assert.False(t, ok)

	tail, ok := im.TailRVA(0x2000)
	require.True(t, ok)
	assert.Len(t, tail, 0x200)
}

func TestCLIHeader(t *testing.T) {
	data, _ := petest.Image(petest.Tiny(0x2A))
	im, err := FromBytes("mem", data)
	require.NoError(t, err)

	h, err := im.CLIHeader()
	require.NoError(t, err)
	assert.Equal(t, uint32(72), h.Cb)
	assert.Equal(t, uint16(2), h.MajorRuntimeVersion)
	assert.Equal(t, uint16(5), h.MinorRuntimeVersion)
	assert.Equal(t, uint32(1), h.Flags)
	assert.Equal(t, uint32(0x06000001), h.EntryPointToken)
}

func TestOpen(t *testing.T) {
	data, rvas := petest.Image(petest.Tiny(0x00, 0x00, 0x2A))
	path := filepath.Join(t.TempDir(), "a.dll")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	im, err := Open(path)
	require.NoError(t, err)

	off, err := im.RVAToOffset(rvas[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0x0E), im.Data()[off])
	require.NoError(t, im.Close())
	assert.Nil(t, im.Data())
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.dll"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.dll")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.dll")
	require.NoError(t, os.WriteFile(junk, []byte("not a portable executable"), 0o644))
	_, err = Open(junk)
	assert.Error(t, err)
}
