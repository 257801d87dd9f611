package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/session"
	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

// --- Editor Fields ---

type editorField int

const (
	fieldTitle editorField = iota
	fieldTags
	fieldContent
	fieldCount
)

// EditorModel is the right-hand pane: title, tag chips and the content
// area of the selected note. It only holds widgets; the edit session owns
// the buffer.
type EditorModel struct {
	title   textinput.Model
	tagIn   textinput.Model
	content textarea.Model

	field   editorField
	tags    []string
	chip    int
	preview bool
	loaded  bool

	width  int
	height int
}

// NewEditorModel builds an empty editor.
func NewEditorModel() EditorModel {
	title := textinput.New()
	title.Placeholder = note.DefaultTitle
	title.Prompt = ""
	title.CharLimit = 200

	tagIn := textinput.New()
	tagIn.Placeholder = "add tag"
	tagIn.Prompt = ""
	tagIn.CharLimit = 64

	content := textarea.New()
	content.Placeholder = "Start writing..."
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.Prompt = ""

	return EditorModel{
		title:   title,
		tagIn:   tagIn,
		content: content,
		field:   fieldContent,
		chip:    -1,
	}
}

// Load replaces the widgets' values with buf and resets the tag cursor.
func (m *EditorModel) Load(buf session.Buffer) {
	m.title.SetValue(buf.Title)
	m.content.SetValue(buf.Content)
	m.tags = buf.Tags
	m.tagIn.Reset()
	m.chip = -1
	m.loaded = true
}

// Sync refreshes the widgets from buf after a change made outside the
// editor, such as an applied AI result, keeping focus.
func (m *EditorModel) Sync(buf session.Buffer) {
	if m.title.Value() != buf.Title {
		m.title.SetValue(buf.Title)
	}
	if m.content.Value() != buf.Content {
		m.content.SetValue(buf.Content)
	}
	m.tags = buf.Tags
	if m.chip >= len(m.tags) {
		m.chip = len(m.tags) - 1
	}
}

// Unload clears the editor when no note is selected.
func (m *EditorModel) Unload() {
	m.Load(session.Buffer{})
	m.loaded = false
	m.Blur()
}

// Focus gives keyboard focus to field.
func (m *EditorModel) Focus(field editorField) tea.Cmd {
	m.Blur()
	m.field = field
	switch field {
	case fieldTitle:
		return m.title.Focus()
	case fieldTags:
		return m.tagIn.Focus()
	default:
		return m.content.Focus()
	}
}

// Blur removes focus from every field.
func (m *EditorModel) Blur() {
	m.title.Blur()
	m.tagIn.Blur()
	m.content.Blur()
}

// SetSize lays the widgets out for a pane content area of width x height.
func (m *EditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.title.Width = max(width-8, 10)
	m.tagIn.Width = max(width/3, 10)
	m.content.SetWidth(max(width, 10))
	// title, tags, divider, divider, status
	m.content.SetHeight(max(height-5, 3))
}

// CurrentLine returns the rune span of the line holding the content cursor.
func (m EditorModel) CurrentLine() session.Span {
	lines := strings.Split(m.content.Value(), "\n")
	row := min(max(m.content.Line(), 0), len(lines)-1)
	start := 0
	for i := 0; i < row; i++ {
		start += len([]rune(lines[i])) + 1
	}
	return session.Span{Start: start, End: start + len([]rune(lines[row]))}
}

// editorEdit reports what a key did to the note.
type editorEdit struct {
	titleChanged   bool
	contentChanged bool
	addTag         string
	removeTag      string
}

// Update routes a key to the focused field.
func (m EditorModel) Update(msg tea.KeyMsg) (EditorModel, editorEdit, tea.Cmd) {
	var edit editorEdit
	var cmd tea.Cmd

	switch {
	case isNextField(msg):
		cmd = m.Focus((m.field + 1) % fieldCount)
		return m, edit, cmd
	case isPrevField(msg):
		cmd = m.Focus((m.field + fieldCount - 1) % fieldCount)
		return m, edit, cmd
	}

	switch m.field {
	case fieldTitle:
		if isEnter(msg) {
			cmd = m.Focus(fieldContent)
			return m, edit, cmd
		}
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		edit.titleChanged = m.title.Value() != before
	case fieldTags:
		return m.updateTags(msg)
	default:
		if m.preview {
			return m, edit, nil
		}
		before := m.content.Value()
		m.content, cmd = m.content.Update(msg)
		edit.contentChanged = m.content.Value() != before
	}
	return m, edit, cmd
}

func (m EditorModel) updateTags(msg tea.KeyMsg) (EditorModel, editorEdit, tea.Cmd) {
	var edit editorEdit
	empty := m.tagIn.Value() == ""

	switch {
	case isEnter(msg):
		edit.addTag = m.tagIn.Value()
		m.tagIn.Reset()
		return m, edit, nil
	case empty && isKey(msg, "left"):
		if len(m.tags) > 0 {
			if m.chip < 0 {
				m.chip = len(m.tags) - 1
			} else if m.chip > 0 {
				m.chip--
			}
		}
		return m, edit, nil
	case empty && isKey(msg, "right"):
		if m.chip >= 0 {
			m.chip++
			if m.chip >= len(m.tags) {
				m.chip = -1
			}
		}
		return m, edit, nil
	case empty && isKey(msg, "backspace", "delete"):
		if len(m.tags) == 0 {
			return m, edit, nil
		}
		idx := m.chip
		if idx < 0 {
			idx = len(m.tags) - 1
		}
		edit.removeTag = m.tags[idx]
		return m, edit, nil
	}

	m.chip = -1
	var cmd tea.Cmd
	m.tagIn, cmd = m.tagIn.Update(msg)
	return m, edit, cmd
}

// --- Rendering ---

func (m EditorModel) View(buf session.Buffer, state session.State, saved time.Time, renderer *glamour.TermRenderer) string {
	if !m.loaded {
		return MutedStyle.Render("No note selected.\n\nPress n to create one.")
	}
	var b strings.Builder

	b.WriteString(m.fieldLabel(fieldTitle, "Title "))
	b.WriteString(m.title.View())
	b.WriteString("\n")

	b.WriteString(m.fieldLabel(fieldTags, "Tags  "))
	b.WriteString(m.renderChips())
	if m.field == fieldTags || len(m.tags) == 0 {
		b.WriteString(" ")
		b.WriteString(m.tagIn.View())
	}
	b.WriteString("\n")

	rule := DividerStyle.Render(strings.Repeat("─", max(m.width, 1)))
	b.WriteString(rule + "\n")
	if m.preview {
		b.WriteString(m.renderPreview(buf.Content, renderer))
	} else {
		b.WriteString(m.content.View())
	}
	b.WriteString("\n" + rule + "\n")

	left := fmt.Sprintf("%d words", len(strings.Fields(buf.Content)))
	if m.preview {
		left += " · preview"
	}
	b.WriteString(components.StatusLine(left, savedLabel(state, saved), m.width))
	return b.String()
}

func (m EditorModel) fieldLabel(field editorField, label string) string {
	if m.field == field && (m.title.Focused() || m.tagIn.Focused() || m.content.Focused()) {
		return SelectedStyle.Render(label)
	}
	return LabelStyle.Render(label)
}

func (m EditorModel) renderChips() string {
	chips := make([]string, 0, len(m.tags))
	for i, tag := range m.tags {
		label := components.SanitizeOneLine(tag)
		if m.field == fieldTags && i == m.chip {
			chips = append(chips, TagChipActiveStyle.Render(label))
		} else {
			chips = append(chips, TagChipStyle.Render(label))
		}
	}
	return strings.Join(chips, " ")
}

func (m EditorModel) renderPreview(content string, renderer *glamour.TermRenderer) string {
	text := components.SanitizeText(content)
	if strings.TrimSpace(text) == "" {
		return MutedStyle.Render("Nothing to preview.")
	}
	if renderer != nil {
		if out, err := renderer.Render(text); err == nil {
			text = strings.Trim(out, "\n")
		}
	}
	lines := strings.Split(text, "\n")
	if h := m.content.Height(); h > 0 && len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

// savedLabel is the last-saved indicator.
func savedLabel(state session.State, saved time.Time) string {
	switch state {
	case session.Dirty:
		return WarningStyle.Render("● unsaved")
	case session.Committing:
		return WarningStyle.Render("saving...")
	}
	if saved.IsZero() {
		return ""
	}
	return SuccessStyle.Render("saved " + saved.Local().Format("15:04:05"))
}

// newPreviewRenderer builds the markdown renderer for the preview pane.
func newPreviewRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}
