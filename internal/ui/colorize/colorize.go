package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
)

// NoColorEnv disables all colouring when set to a non-empty value.
const NoColorEnv = "CILDIS_NO_COLOR"

// Enabled reports whether colour output is allowed.
func Enabled() bool {
	return os.Getenv(NoColorEnv) == ""
}

// Disable turns colouring off for the rest of the process.
func Disable() {
	os.Setenv(NoColorEnv, "1")
}

// getListingStyle returns the listing style with fallbacks
func getListingStyle() *chroma.Style {
	candidates := []string{"cil-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	// Try high-color first, then fallback
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ColorizeListing applies syntax highlighting to a whole listing.
func ColorizeListing(text string) (string, error) {
	if !Enabled() {
		return text, nil
	}

	iterator, err := ListingLexer.Tokenise(nil, text)
	if err != nil {
		return text, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getListingStyle(), iterator); err != nil {
		return text, err
	}
	return buf.String(), nil
}

// ColorizeLine colorizes a single listing line, returning it unchanged on any failure.
func ColorizeLine(line string) string {
	if !Enabled() {
		return line
	}
	out, err := ColorizeListing(line)
	if err != nil {
		return line
	}
	// the formatter may append a reset after the final newline
	return strings.TrimSuffix(out, "\n")
}

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// VisibleWidth returns the printed cell width of s.
func VisibleWidth(s string) int {
	return ansi.StringWidth(s)
}
