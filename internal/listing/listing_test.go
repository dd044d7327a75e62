package listing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/analysis"
	"cildis/internal/disasm"
)

// ldarg.0; brfalse.s +1; ret; ldnull; throw
var diamond = []byte{0x02, 0x2C, 0x01, 0x2A, 0x14, 0x7A}

func decode(t *testing.T, code []byte) []disasm.BasicBlock {
	t.Helper()
	blocks, err := disasm.DecodeBlocks(code, 0, 0x1000, 0)
	require.NoError(t, err)
	return blocks
}

func TestLines(t *testing.T) {
	lines := Lines(decode(t, diamond))
	require.Len(t, lines, 8)

	var got []string
	for _, l := range lines {
		got = append(got, l.String())
	}
	assert.Equal(t, "loc_00001000:", got[0])
	assert.Equal(t, "    00001000  ldarg.0", got[1])
	assert.True(t, strings.HasPrefix(got[2], "    00001001  brfalse.s      0x01"))
	assert.True(t, strings.HasSuffix(got[2], "; -> loc_00001004"))
	assert.True(t, strings.HasPrefix(got[3], "loc_00001003:"))
	assert.True(t, strings.HasSuffix(got[3], "; from loc_00001000"))
	assert.Equal(t, "    00001003  ret", got[4])
	assert.True(t, strings.HasPrefix(got[5], "loc_00001004:"))
	assert.Equal(t, "    00001005  throw", got[7])

	for _, l := range lines {
		if l.Kind == LineInstruction {
			assert.Equal(t, l.RVA, l.Instruction.RVA)
		}
	}
}

func TestLinesAnnotations(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want string
	}{
		{"outside target", []byte{0x2B, 0x10}, "-> 0x00001012 (outside)"},
		{"truncated block", []byte{0x00, 0x00}, "truncated"},
		{"loop", []byte{0x00, 0x2B, 0xFD}, "from loc_00001000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Text(decode(t, tt.code)), tt.want)
		})
	}
}

func TestLinesProtected(t *testing.T) {
	blocks := decode(t, diamond)
	blocks[2].Exceptions = []int{0}
	assert.Contains(t, Text(blocks), "try [0]")
}

func TestTree(t *testing.T) {
	out := Tree("method_00002048", decode(t, diamond))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "method_00002048", lines[0])
	assert.Contains(t, out, "[#0]  loc_00001000 size:2 succ:[1 2]")
	assert.Contains(t, out, "[00001005]  throw")
	assert.Contains(t, out, "[00001001]  brfalse.s 0x01")
}

func TestMarkdown(t *testing.T) {
	blocks := decode(t, diamond)
	findings := []analysis.Finding{{Kind: "escaping-branch", RVA: 0x1001, Comment: "leaves"}}

	md := Markdown("m", blocks, analysis.Analyze(blocks), findings)
	assert.True(t, strings.HasPrefix(md, "# m\n"))
	assert.Contains(t, md, "| blocks | 3 |")
	assert.Contains(t, md, "| instructions | 5 |")
	assert.Contains(t, md, "```\nloc_00001000:\n")
	assert.Contains(t, md, "- **escaping-branch** at `0x00001001`: leaves")
	assert.NotContains(t, md, "| truncated |")

	bare := Markdown("m", blocks, nil, nil)
	assert.NotContains(t, bare, "## Summary")
	assert.NotContains(t, bare, "## Findings")
}

func TestOverview(t *testing.T) {
	first := decode(t, diamond)
	second := decode(t, []byte{0x00, 0x2A})

	md := Overview("app.dll", []MethodSummary{
		{Name: "a", Blocks: first, Coverage: analysis.CoverageReport{Start: 0, End: 6, Decoded: 6}},
		{Name: "b", Blocks: second, Coverage: analysis.CoverageReport{Start: 6, End: 10, Decoded: 2}},
		{Name: "c", Err: errors.New("bad opcode")},
	})

	assert.True(t, strings.HasPrefix(md, "# app.dll\n"))
	assert.Contains(t, md, "| a | 3 | 5 | 100.0% |")
	assert.Contains(t, md, "| b | 1 | 2 | 50.0% |")
	assert.Contains(t, md, "| c | - | - | failed: bad opcode |")

	totals := md[strings.Index(md, "## Totals"):]
	assert.Contains(t, totals, "| blocks | 4 |")
	assert.Contains(t, totals, "| instructions | 7 |")
	assert.Contains(t, totals, "| bytes | 8 |")
	assert.Contains(t, totals, "| exits | 3 |")
}
