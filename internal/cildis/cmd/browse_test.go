package cmd

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cildis/internal/disasm"
	"cildis/internal/ui/colorize"
)

func loadedModel(t *testing.T) browseModel {
	t.Helper()
	blocks, err := disasm.DecodeBlocks([]byte{0x02, 0x2C, 0x01, 0x2A, 0x14, 0x7A}, 0, 0x1000, 0)
	require.NoError(t, err)

	m := newBrowseModel("test.dll")
	next, _ := m.Update(decodedMsg{methods: []decodedMethod{
		{Name: "method_00002048", RVA: 0x2048, Blocks: blocks},
		{Name: "method_00002050", RVA: 0x2050, Err: errors.New("malformed: reserved opcode")},
	}})
	return next.(browseModel)
}

func press(t *testing.T, m browseModel, key string) browseModel {
	t.Helper()
	next, _, handled := m.handleKey(key)
	require.True(t, handled, key)
	return next.(browseModel)
}

func TestBrowseLoading(t *testing.T) {
	m := newBrowseModel("test.dll")
	assert.Contains(t, m.View(), "Decoding test.dll")

	next, _ := m.Update(decodedMsg{err: errors.New("no CLI header")})
	assert.Contains(t, next.(browseModel).View(), "failed to decode test.dll: no CLI header")
}

func TestBrowseNavigation(t *testing.T) {
	m := loadedModel(t)
	assert.False(t, m.loading)
	assert.Len(t, m.methodsList.Items(), 2)
	assert.Contains(t, m.View(), "Enter: view listing")

	m = press(t, m, "enter")
	assert.Equal(t, viewListing, m.mode)
	assert.Equal(t, 0, m.current)
	assert.Contains(t, colorize.StripANSI(m.View()), "loc_00001000:")

	m = press(t, m, "r")
	assert.Equal(t, viewReport, m.mode)
	assert.Contains(t, colorize.StripANSI(m.View()), "method_00002048")

	m = press(t, m, "tab")
	assert.Equal(t, viewMethods, m.mode)

	m = press(t, m, "l")
	assert.Equal(t, viewListing, m.mode)
	m = press(t, m, "esc")
	assert.Equal(t, viewMethods, m.mode)
}

func TestBrowseErrorMethod(t *testing.T) {
	m := loadedModel(t)
	m.methodsList.Select(1)

	m = press(t, m, "enter")
	assert.Equal(t, 1, m.current)
	assert.Contains(t, m.View(), "reserved opcode")
}

func TestBrowseKeysBeforeSelection(t *testing.T) {
	m := loadedModel(t)
	for _, k := range []string{"r", "l", "tab"} {
		m = press(t, m, k)
		assert.Equal(t, viewMethods, m.mode, k)
	}

	_, _, handled := m.handleKey("x")
	assert.False(t, handled)

	_, cmd, handled := m.handleKey("q")
	assert.True(t, handled)
	assert.NotNil(t, cmd)
}

func TestBrowseResize(t *testing.T) {
	m := loadedModel(t)
	m = press(t, m, "enter")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	bm := next.(browseModel)
	assert.Equal(t, 100, bm.width)
	assert.Equal(t, 30, bm.height)
	assert.Contains(t, colorize.StripANSI(bm.View()), "loc_00001000:")
}
