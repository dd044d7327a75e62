package disasm

import (
	"math"

	"cildis/internal/cilerrors"
	"cildis/internal/cursor"
	"cildis/internal/visitmap"
)

// Method is a method whose body can be disassembled in place.
type Method interface {
	// RVA returns the body address; false for abstract and extern methods.
	RVA() (uint32, bool)
	// HeaderSize is the size of the body header preceding the code.
	HeaderSize() int
	ExceptionHandlers() []ExceptionHandler
	// SetBlocks stores the result once. Later calls return false and keep the first result.
	SetBlocks(blocks []BasicBlock) bool
}

// File resolves method addresses to raw bytes.
type File interface {
	RVAToOffset(rva uint32) (int, error)
	Data() []byte
}

// DecodeMethod disassembles the body of m and stores the blocks in m. visited should be
// shared by every method of the same file so overlapping bodies are expanded only once.
// Methods without a body are skipped. Losing the race to store blocks is not an error.
func DecodeMethod(m Method, f File, visited *visitmap.Map) error {
	rva, ok := m.RVA()
	if !ok {
		return nil
	}

	offset, err := f.RVAToOffset(rva)
	if err != nil {
		return err
	}
	data := f.Data()
	if offset < 0 || offset >= len(data) {
		return cilerrors.Malformed("method at rva 0x%08X: offset %d outside file of %d bytes", rva, offset, len(data))
	}

	header := m.HeaderSize()
	if header < 0 || header >= len(data) {
		return cilerrors.Malformed("method at rva 0x%08X: header size %d exceeds file size", rva, header)
	}
	if offset > math.MaxInt-header {
		return cilerrors.Malformed("method at rva 0x%08X: offset %d + header %d overflows", rva, offset, header)
	}

	d, err := NewDecoder(cursor.New(data), offset+header, uint64(rva)+uint64(header), m.ExceptionHandlers(), visited)
	if err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return err
	}

	m.SetBlocks(d.Blocks())
	return nil
}
