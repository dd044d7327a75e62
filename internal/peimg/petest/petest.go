// Package petest builds minimal managed PE images for tests.
package petest

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
)

const (
	TextRVA    = 0x2000
	textOffset = 0x200
	fileAlign  = 0x200
	cliSize    = 72
)

// Image returns a PE32 file with one .text section holding a CLI header followed by the
// given method bodies, each 4-byte aligned, and the RVA of every body.
func Image(bodies ...[]byte) ([]byte, []uint32) {
	var text bytes.Buffer
	text.Write(make([]byte, cliSize))

	rvas := make([]uint32, len(bodies))
	for i, b := range bodies {
		for text.Len()%4 != 0 {
			text.WriteByte(0)
		}
		rvas[i] = TextRVA + uint32(text.Len())
		text.Write(b)
	}

	raw := text.Bytes()
	cli := raw[:cliSize]
	binary.LittleEndian.PutUint32(cli[0:], cliSize)
	binary.LittleEndian.PutUint16(cli[4:], 2)
	binary.LittleEndian.PutUint16(cli[6:], 5)
	binary.LittleEndian.PutUint32(cli[16:], 1) // IL only
	if len(bodies) > 0 {
		binary.LittleEndian.PutUint32(cli[20:], 0x06000001)
	}

	rawSize := (len(raw) + fileAlign - 1) / fileAlign * fileAlign

	var out bytes.Buffer
	dos := make([]byte, 0x40)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3C:], 0x40)
	out.Write(dos)
	out.WriteString("PE\x00\x00")

	fh := pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(pe.OptionalHeader32{})),
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_DLL,
	}
	binary.Write(&out, binary.LittleEndian, fh)

	oh := pe.OptionalHeader32{
		Magic:               0x10B,
		SizeOfCode:          uint32(rawSize),
		BaseOfCode:          TextRVA,
		ImageBase:           0x10000000,
		SectionAlignment:    0x2000,
		FileAlignment:       fileAlign,
		SizeOfImage:         TextRVA + 0x2000,
		SizeOfHeaders:       textOffset,
		Subsystem:           pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
		NumberOfRvaAndSizes: 16,
	}
	oh.DataDirectory[14] = pe.DataDirectory{VirtualAddress: TextRVA, Size: cliSize}
	binary.Write(&out, binary.LittleEndian, oh)

	sh := pe.SectionHeader32{
		VirtualSize:      uint32(len(raw)),
		VirtualAddress:   TextRVA,
		SizeOfRawData:    uint32(rawSize),
		PointerToRawData: textOffset,
		Characteristics:  pe.IMAGE_SCN_CNT_CODE | pe.IMAGE_SCN_MEM_EXECUTE | pe.IMAGE_SCN_MEM_READ,
	}
	copy(sh.Name[:], ".text")
	binary.Write(&out, binary.LittleEndian, sh)

	out.Write(make([]byte, textOffset-out.Len()))
	out.Write(raw)
	out.Write(make([]byte, rawSize-len(raw)))

	return out.Bytes(), rvas
}

// Tiny returns a tiny-format method body wrapping code.
func Tiny(code ...byte) []byte {
	return append([]byte{byte(len(code))<<2 | 0x2}, code...)
}
