package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHintIncludesKeyAndDesc(t *testing.T) {
	out := Hint("ctrl+g", "AI")
	assert.Contains(t, out, "AI")
	assert.Contains(t, out, "ctrl+g")
}

func TestStatusBarRendersHints(t *testing.T) {
	out := StatusBar([]string{Hint("q", "Quit")}, 0)
	assert.Contains(t, out, "Quit")
}

func TestWrapSegmentsWrapsWhenNarrow(t *testing.T) {
	rows := wrapSegments([]string{"123456", "abcdef", "ghijkl"}, 10)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.LessOrEqual(t, lipgloss.Width(row), 10)
	}
}

func TestStatusLinePinsRightText(t *testing.T) {
	out := StatusLine("3 notes", "saved 12:00", 30)
	assert.Equal(t, 30, lipgloss.Width(out))
	assert.True(t, strings.HasPrefix(out, "3 notes"))
	assert.True(t, strings.HasSuffix(out, "saved 12:00"))

	narrow := StatusLine(strings.Repeat("x", 40), "saved", 20)
	assert.Equal(t, 20, lipgloss.Width(narrow))
	assert.True(t, strings.HasSuffix(narrow, "saved"))
}
