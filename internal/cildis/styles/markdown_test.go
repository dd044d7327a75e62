package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/ui/colorize"
)

func TestRender(t *testing.T) {
	out, err := Render("# method_00002048\n\n## Listing\n\n```\nloc_00002049:\n```\n", 80)
	require.NoError(t, err)

	plain := colorize.StripANSI(out)
	assert.Contains(t, plain, "method_00002048")
	assert.Contains(t, plain, "## Listing")
	assert.Contains(t, plain, "loc_00002049:")
}

func TestReportStyle(t *testing.T) {
	s := ReportStyle()
	require.NotNil(t, s.H1.Color)
	assert.Equal(t, Highlight, *s.H1.Color)
	assert.Equal(t, "## ", s.H2.Prefix)
	assert.Equal(t, uint(2), *s.CodeBlock.Margin)
}
