// Package peimg provides helpers for opening PE images, locating sections, and mapping relative virtual addresses to file offsets.
package peimg

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/go-restruct/restruct"

	"cildis/internal/cilerrors"
)

// DirectoryCLIHeader is the data directory index of the CLI (COR20) header.
const DirectoryCLIHeader = 14

type Image struct {
	Path     string
	File     *pe.File
	All      []byte
	Sections []Section
	CLIDir   Directory
	f        *os.File
}

type Section struct {
	Name            string
	VA, VSize       uint32
	Off, Size       uint32
	Characteristics uint32
}

type Directory struct {
	RVA, Size uint32
}

// CLIHeader is the fixed prefix of the runtime header of a managed image.
type CLIHeader struct {
	Cb                  uint32
	MajorRuntimeVersion uint16
	MinorRuntimeVersion uint16
	MetadataRVA         uint32
	MetadataSize        uint32
	Flags               uint32
	EntryPointToken     uint32
	ResourcesRVA        uint32
	ResourcesSize       uint32
	StrongNameRVA       uint32
	StrongNameSize      uint32
}

const cliHeaderSize = 72

// Open maps the file at path read-only and parses its section table.
func Open(path string) (*Image, error) {
	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if fi.Size() == 0 {
		of.Close()
		return nil, fmt.Errorf("open pe: %s is empty", path)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im, err := parse(path, all)
	if err != nil {
		syscall.Munmap(all)
		of.Close()
		return nil, err
	}
	im.f = of
	return im, nil
}

// FromBytes parses an in-memory image. Close is a no-op for such images.
func FromBytes(name string, data []byte) (*Image, error) {
	return parse(name, data)
}

func parse(name string, all []byte) (*Image, error) {
	f, err := pe.NewFile(bytes.NewReader(all))
	if err != nil {
		return nil, fmt.Errorf("open pe: %w", err)
	}

	im := &Image{Path: name, File: f, All: all}
	for _, s := range f.Sections {
		im.Sections = append(im.Sections, Section{
			Name:            s.Name,
			VA:              s.VirtualAddress,
			VSize:           s.VirtualSize,
			Off:             s.Offset,
			Size:            s.Size,
			Characteristics: s.Characteristics,
		})
	}

	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes > DirectoryCLIHeader {
			d := oh.DataDirectory[DirectoryCLIHeader]
			im.CLIDir = Directory{d.VirtualAddress, d.Size}
		}
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes > DirectoryCLIHeader {
			d := oh.DataDirectory[DirectoryCLIHeader]
			im.CLIDir = Directory{d.VirtualAddress, d.Size}
		}
	}
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.f != nil {
		if im.All != nil {
			err1 = syscall.Munmap(im.All)
		}
		err2 = im.f.Close()
		im.f = nil
	}
	im.All = nil
	if im.File != nil {
		if err3 := im.File.Close(); err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// Data returns the whole file.
func (im *Image) Data() []byte {
	return im.All
}

// SectionOf returns the section whose virtual range contains rva.
func (im *Image) SectionOf(rva uint32) (Section, bool) {
	for _, s := range im.Sections {
		span := s.VSize
		if span == 0 {
			span = s.Size
		}
		if rva >= s.VA && rva-s.VA < span {
			return s, true
		}
	}
	return Section{}, false
}

// RVAToOffset translates a relative virtual address into a file offset using the section
// table. Addresses in the zero-filled tail of a section have no file offset.
func (im *Image) RVAToOffset(rva uint32) (int, error) {
	s, ok := im.SectionOf(rva)
	if !ok {
		return 0, cilerrors.OutOfBounds("rva 0x%08X is not in any section", rva)
	}
	delta := rva - s.VA
	if delta >= s.Size {
		return 0, cilerrors.OutOfBounds("rva 0x%08X is past the raw data of %s", rva, s.Name)
	}
	return int(s.Off) + int(delta), nil
}

// SliceRVA returns a subslice of the file corresponding to [rva, rva+size).
// It returns (nil, false) if the RVA is unmapped or the range is out of bounds.
func (im *Image) SliceRVA(rva uint32, size int) ([]byte, bool) {
	off, err := im.RVAToOffset(rva)
	if err != nil || size < 0 {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end > len(im.All) || end < off {
		return nil, false
	}
	return im.All[off:end], true
}

// TailRVA returns the file bytes from rva to the end of its section's raw data.
func (im *Image) TailRVA(rva uint32) ([]byte, bool) {
	s, ok := im.SectionOf(rva)
	if !ok || rva-s.VA >= s.Size {
		return nil, false
	}
	return im.SliceRVA(rva, int(s.Size-(rva-s.VA)))
}

// IsManaged reports whether the image carries a CLI header directory.
func (im *Image) IsManaged() bool {
	return im.CLIDir.RVA != 0 && im.CLIDir.Size != 0
}

// CLIHeader reads the runtime header pointed to by data directory 14.
func (im *Image) CLIHeader() (*CLIHeader, error) {
	if !im.IsManaged() {
		return nil, cilerrors.Malformed("%s has no CLI header", im.Path)
	}
	raw, ok := im.SliceRVA(im.CLIDir.RVA, cliHeaderSize)
	if !ok {
		return nil, cilerrors.OutOfBounds("CLI header at rva 0x%08X", im.CLIDir.RVA)
	}

	var h CLIHeader
	if err := restruct.Unpack(raw, binary.LittleEndian, &h); err != nil {
		return nil, cilerrors.Malformed("CLI header: %v", err)
	}
	if h.Cb < cliHeaderSize {
		return nil, cilerrors.Malformed("CLI header size %d", h.Cb)
	}
	return &h, nil
}
