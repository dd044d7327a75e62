package colorize

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, line string) []chroma.Token {
	t.Helper()
	it, err := ListingLexer.Tokenise(nil, line)
	require.NoError(t, err)
	var out []chroma.Token
	for _, tok := range it.Tokens() {
		if tok.Type != chroma.TextWhitespace {
			out = append(out, tok)
		}
	}
	return out
}

func TestListingLexer(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []chroma.TokenType
	}{
		{"label", "loc_00001000:", []chroma.TokenType{chroma.NameLabel}},
		{"bare instruction", "    00001000  ldarg.0", []chroma.TokenType{chroma.CommentSpecial, chroma.NameFunction}},
		{
			"immediate with comment",
			"    00001001  brfalse.s      0x01    ; -> loc_00001004",
			[]chroma.TokenType{chroma.CommentSpecial, chroma.NameFunction, chroma.LiteralNumberHex, chroma.Comment},
		},
		{
			"token",
			"    00002050  call           token:0x0A000001",
			[]chroma.TokenType{chroma.CommentSpecial, chroma.NameFunction, chroma.KeywordType, chroma.Punctuation, chroma.LiteralNumberHex},
		},
		{"prefix mnemonic", "constrained.", []chroma.TokenType{chroma.NameFunction}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []chroma.TokenType
			for _, tok := range tokens(t, tt.line) {
				got = append(got, tok.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorizeDisabled(t *testing.T) {
	t.Setenv(NoColorEnv, "1")
	assert.False(t, Enabled())

	line := "    00001000  ret"
	assert.Equal(t, line, ColorizeLine(line))
	out, err := ColorizeListing(line)
	require.NoError(t, err)
	assert.Equal(t, line, out)
}

func TestColorizeLine(t *testing.T) {
	t.Setenv(NoColorEnv, "")

	line := "    00001001  brfalse.s      0x01    ; -> loc_00001004"
	out := ColorizeLine(line)
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, line, strings.TrimRight(StripANSI(out), "\n"))
	assert.Equal(t, len(line), VisibleWidth(strings.TrimRight(out, "\n")))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "ret", StripANSI("\x1b[38;2;255;255;255mret\x1b[0m"))
	assert.Equal(t, 3, VisibleWidth("\x1b[1mret\x1b[0m"))
	assert.Equal(t, "plain", StripANSI("plain"))
}

func TestStyleRegistered(t *testing.T) {
	assert.Equal(t, "cil-dark", getListingStyle().Name)
}
