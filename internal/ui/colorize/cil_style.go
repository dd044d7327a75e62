package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// ListingLexer tokenises disassembly listing lines: labels, addresses, mnemonics, operands
// and trailing comments.
var ListingLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "cil-listing",
		Aliases:   []string{"cil"},
		EnsureNL:  false,
		MimeTypes: []string{"text/x-cil-listing"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `;[^\n]*`, Type: chroma.Comment},
				{Pattern: `loc_[0-9A-F]{8}:`, Type: chroma.NameLabel},
				{Pattern: `0x[0-9A-Fa-f]+`, Type: chroma.LiteralNumberHex},
				{Pattern: `[0-9A-F]{8,16}\b`, Type: chroma.CommentSpecial},
				{Pattern: `token(?=:)`, Type: chroma.KeywordType},
				{Pattern: `switch\[\d+\]`, Type: chroma.Keyword},
				{Pattern: `[a-z][a-z0-9_]*(\.[a-z0-9_]+)*\.?`, Type: chroma.NameFunction},
				{Pattern: `\.\.\.\d+ more`, Type: chroma.Comment},
				{Pattern: `[(),:\[\]]`, Type: chroma.Punctuation},
				{Pattern: `\s+`, Type: chroma.TextWhitespace},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
)

func init() {
	// Register our custom listing style on package initialization
	_ = CILDark
}

// CILDark is the listing colour scheme
var CILDark = styles.Register(chroma.MustNewStyle("cil-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",    // Default text white
	chroma.Background:     "bg:#1e1e1e", // Dark background
	chroma.Comment:        "#6A9955",    // Annotations in green
	chroma.CommentSpecial: "#4F4F4F",    // Addresses in gray

	chroma.NameFunction: "#FFFFFF", // Mnemonics in white
	chroma.Keyword:      "#7C9C9D", // switch tables in teal
	chroma.KeywordType:  "#7C9C9D", // Metadata tokens in teal

	chroma.LiteralNumberHex: "#FF5F87", // Immediates in pink

	chroma.NameLabel:   "#FFD700", // Labels in gold
	chroma.Punctuation: "#FFFFFF",
}))
