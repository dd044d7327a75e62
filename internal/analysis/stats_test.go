package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cildis/internal/disasm"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		code      []byte
		instrs    int
		blocks    int
		bytes     int
		exits     int
		truncated int
	}{
		{"diamond", diamond, 5, 3, 6, 2, 0},
		{"straight", []byte{0x00, 0x2A}, 2, 1, 2, 1, 0},
		{"runs off the end", []byte{0x00, 0x00}, 2, 1, 2, 0, 1},
		{"loop", []byte{0x00, 0x2B, 0xFD}, 2, 1, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Analyze(decode(t, tt.code))
			assert.Equal(t, tt.instrs, s.Instructions)
			assert.Equal(t, tt.blocks, s.Blocks)
			assert.Equal(t, tt.bytes, s.Bytes)
			assert.Equal(t, tt.exits, s.Exits)
			assert.Equal(t, tt.truncated, s.Truncated)
		})
	}
}

func TestAnalyzeDistribution(t *testing.T) {
	s := Analyze(decode(t, diamond))
	assert.Equal(t, map[string]int{
		"ldarg.0":   1,
		"brfalse.s": 1,
		"ret":       1,
		"ldnull":    1,
		"throw":     1,
	}, s.OpcodeDistribution)
	assert.Equal(t, 3, s.Categories[disasm.CategoryControlFlow])
	assert.Equal(t, 2, s.Categories[disasm.CategoryLoadStore])
}

func TestAnalyzeProtected(t *testing.T) {
	blocks := decode(t, diamond)
	blocks[1].Exceptions = []int{0}
	assert.Equal(t, 1, Analyze(blocks).Protected)
}

func TestStatsMerge(t *testing.T) {
	s := Analyze(decode(t, diamond))
	s.Merge(Analyze(decode(t, []byte{0x00, 0x2A})))

	assert.Equal(t, 7, s.Instructions)
	assert.Equal(t, 4, s.Blocks)
	assert.Equal(t, 2, s.OpcodeDistribution["ret"])
	assert.Equal(t, 1, s.OpcodeDistribution["nop"])
}

func TestTopOpcodes(t *testing.T) {
	s := &Stats{OpcodeDistribution: map[string]int{"ret": 2, "nop": 5, "add": 2, "ldnull": 1}}

	assert.Equal(t, []OpcodeCount{{"nop", 5}, {"add", 2}}, s.TopOpcodes(2))
	assert.Len(t, s.TopOpcodes(10), 4)
	assert.Len(t, s.TopOpcodes(-1), 4)
	assert.Empty(t, s.TopOpcodes(0))
}
