package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/nebula-notes/internal/session"
	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

func loadedEditor(content string) EditorModel {
	m := NewEditorModel()
	m.SetSize(60, 20)
	m.Load(session.Buffer{Title: "T", Content: content, Tags: []string{"a", "b"}})
	return m
}

func TestCurrentLineSpans(t *testing.T) {
	m := loadedEditor("héllo\nwörld\n")
	// SetValue leaves the cursor at the end: the empty last line.
	assert.Equal(t, session.Span{Start: 12, End: 12}, m.CurrentLine())

	m.content.CursorUp()
	assert.Equal(t, session.Span{Start: 6, End: 11}, m.CurrentLine())

	m.content.CursorUp()
	assert.Equal(t, session.Span{Start: 0, End: 5}, m.CurrentLine())
}

func TestCurrentLineEmptyContent(t *testing.T) {
	m := loadedEditor("")
	assert.Equal(t, session.Span{}, m.CurrentLine())
}

func TestSyncKeepsFocusAndClampsChip(t *testing.T) {
	m := loadedEditor("body")
	m.Focus(fieldTags)
	m.chip = 1

	m.Sync(session.Buffer{Title: "New", Content: "body", Tags: []string{"a"}})

	assert.Equal(t, "New", m.title.Value())
	assert.Equal(t, 0, m.chip)
	assert.True(t, m.tagIn.Focused())
}

func TestTabCyclesFields(t *testing.T) {
	m := loadedEditor("")
	m.Focus(fieldTitle)

	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldTags, m.field)
	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldContent, m.field)
	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldTitle, m.field)
	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldContent, m.field)
	assert.True(t, m.content.Focused())
	assert.False(t, m.title.Focused())
}

func TestEnterInTitleMovesToContent(t *testing.T) {
	m := loadedEditor("")
	m.Focus(fieldTitle)
	m, edit, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, fieldContent, m.field)
	assert.Equal(t, editorEdit{}, edit)
}

func TestEditReportsChanges(t *testing.T) {
	m := loadedEditor("x")
	m.Focus(fieldContent)

	m, edit, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.True(t, edit.contentChanged)
	assert.Equal(t, "xy", m.content.Value())

	_, edit, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.False(t, edit.contentChanged)
}

func TestPreviewBlocksContentEdits(t *testing.T) {
	m := loadedEditor("# Heading")
	m.Focus(fieldContent)
	m.preview = true

	m, edit, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	assert.False(t, edit.contentChanged)
	assert.Equal(t, "# Heading", m.content.Value())

	out := components.SanitizeText(m.View(session.Buffer{Content: "# Heading"}, session.Clean, time.Time{}, newPreviewRenderer(40)))
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "preview")
}

func TestTagBackspaceRemovesLastWithoutChip(t *testing.T) {
	m := loadedEditor("")
	m.Focus(fieldTags)
	_, edit, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "b", edit.removeTag)
}

func TestTagChipCursorWraps(t *testing.T) {
	m := loadedEditor("")
	m.Focus(fieldTags)
	left := tea.KeyMsg{Type: tea.KeyLeft}
	right := tea.KeyMsg{Type: tea.KeyRight}

	m, _, _ = m.Update(left)
	assert.Equal(t, 1, m.chip)
	m, _, _ = m.Update(left)
	m, _, _ = m.Update(left)
	assert.Equal(t, 0, m.chip)
	m, _, _ = m.Update(right)
	m, _, _ = m.Update(right)
	assert.Equal(t, -1, m.chip)
}

func TestEditorViewStates(t *testing.T) {
	m := NewEditorModel()
	assert.Contains(t, m.View(session.Buffer{}, session.Clean, time.Time{}, nil), "No note selected")

	m = loadedEditor("one two three")
	out := components.SanitizeText(m.View(session.Buffer{Content: "one two three", Tags: []string{"a", "b"}}, session.Dirty, time.Time{}, nil))
	assert.Contains(t, out, "3 words")
	assert.Contains(t, out, "unsaved")
	assert.Contains(t, out, "a")
}

func TestSavedLabel(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, "", savedLabel(session.Clean, time.Time{}))
	assert.Contains(t, components.SanitizeText(savedLabel(session.Clean, at)), "saved 03:04:05")
	assert.Contains(t, components.SanitizeText(savedLabel(session.Committing, at)), "saving")
	assert.Contains(t, components.SanitizeText(savedLabel(session.Dirty, at)), "unsaved")
}

func TestUnloadClearsFields(t *testing.T) {
	m := loadedEditor("body")
	require.True(t, m.loaded)
	m.Unload()

	assert.False(t, m.loaded)
	assert.Empty(t, m.content.Value())
	assert.Empty(t, m.tags)
}
