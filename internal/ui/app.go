package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/session"
	"github.com/gravitrone/nebula-notes/internal/store"
	"github.com/gravitrone/nebula-notes/internal/textsvc"
	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

// --- Pane Constants ---

type pane int

const (
	paneList pane = iota
	paneEditor
)

const (
	commitBuffer   = 16
	toastDuration  = 2500 * time.Millisecond
	defaultTimeout = 60 * time.Second
)

// --- Messages ---

type clearToastMsg struct{ id int }

type appToast struct {
	id    int
	level string
	text  string
}

// Options configures NewApp. Store is required.
type Options struct {
	Store *store.Store
	// Text builds the AI text service on first use.
	Text TextFactory
	Log  *zap.Logger
	// Changes signals that the storage file was written by another process.
	Changes <-chan struct{}
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error

	Debounce        time.Duration
	DiscardOnSwitch bool
	RequestTimeout  time.Duration
}

// --- App Model ---

// App is the root TUI model: the note list on the left and the editor for
// the selected note on the right.
type App struct {
	store          *store.Store
	text           *textProvider
	log            *zap.Logger
	changes        <-chan struct{}
	commits        chan session.Commit
	copyText       func(string) error
	debounce       time.Duration
	discard        bool
	requestTimeout time.Duration

	notes    []note.Note
	visible  []note.Note
	selected string
	sess     *session.Session

	focus     pane
	searching bool
	search    textinput.Model
	list      *components.List[note.Note]
	editor    EditorModel
	renderer  *glamour.TermRenderer
	rendererW int

	tools         toolsMenu
	helpOpen      bool
	confirmDelete string
	busy          *session.Request
	busySince     time.Time
	spinner       spinner.Model

	toast   *appToast
	toastID int
	err     string

	width  int
	height int
}

// NewApp loads the collection and selects its first note.
func NewApp(ctx context.Context, opts Options) App {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	search := textinput.New()
	search.Placeholder = "search notes"
	search.Prompt = "/ "
	search.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = BusyStyle

	a := App{
		store:          opts.Store,
		text:           &textProvider{build: opts.Text},
		log:            log,
		changes:        opts.Changes,
		commits:        make(chan session.Commit, commitBuffer),
		copyText:       copyText,
		debounce:       opts.Debounce,
		discard:        opts.DiscardOnSwitch,
		requestTimeout: timeout,
		search:         search,
		list:           components.NewList[note.Note](12),
		editor:         NewEditorModel(),
		spinner:        spin,
	}
	a.notes = a.store.Load(ctx)
	a.layout()
	a.refreshList()
	if len(a.notes) > 0 {
		a.openNote(a.notes[0].ID)
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForCommit(a.commits)}
	if a.changes != nil {
		cmds = append(cmds, waitForChange(a.changes))
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case clearToastMsg:
		if a.toast != nil && a.toast.id == msg.id {
			a.toast = nil
		}
		return a, nil
	case commitMsg:
		return a.handleCommit(msg)
	case storageChangedMsg:
		return a.handleStorageChanged()
	case aiDoneMsg:
		return a.handleAIDone(msg)
	case spinner.TickMsg:
		if a.busy == nil {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if isQuit(msg) {
			a.Shutdown(context.Background())
			return a, tea.Quit
		}
		if a.busy != nil {
			// The overlay blocks input until the request finishes.
			return a, nil
		}
		if a.err != "" {
			a.err = ""
			if isBack(msg) || isEnter(msg) {
				return a, nil
			}
		}
		if a.confirmDelete != "" {
			return a.handleDeleteConfirm(msg)
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}
		if a.tools.open {
			return a.handleToolsKeys(msg)
		}
		if a.searching {
			return a.handleSearchKeys(msg)
		}
		if a.focus == paneEditor {
			return a.handleEditorKeys(msg)
		}
		return a.handleListKeys(msg)
	}
	return a, nil
}

func (a App) View() string {
	banner := RenderBanner(a.width)

	var body string
	switch {
	case a.busy != nil:
		body = centerBlock(a.renderBusy(), a.width)
	case a.confirmDelete != "":
		body = centerBlock(a.renderDeleteConfirm(), a.width)
	case a.helpOpen:
		body = centerBlock(a.renderHelp(), a.width)
	case a.tools.open:
		body = centerBlock(a.renderTools(), a.width)
	default:
		body = a.renderPanes()
	}

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n" + centerBlock(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n" + centerBlock(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n%s%s", banner, body, hints, feedback)
}

// Shutdown flushes pending edits. It is safe to call more than once.
func (a App) Shutdown(ctx context.Context) {
	if a.sess != nil {
		a.sess.Flush(ctx)
	}
}

// --- Layout ---

func (a App) paneWidths() (int, int) {
	if a.width <= 0 {
		return 36, 80
	}
	left := min(max(a.width*34/100, 28), 48)
	return left, max(a.width-left-1, 20)
}

func (a App) paneHeight() int {
	if a.height <= 0 {
		return 24
	}
	// banner(2) + hints(3) + spacing
	return max(a.height-7, 10)
}

func (a *App) layout() {
	_, right := a.paneWidths()
	h := a.paneHeight()
	// borders(2) + search(1) + count(1) + header(2)
	a.list.SetPageSize(h - 6)
	a.editor.SetSize(components.PaneContentWidth(right), h-2)
	if a.rendererW != right {
		a.renderer = newPreviewRenderer(components.PaneContentWidth(right))
		a.rendererW = right
	}
}

func (a App) renderPanes() string {
	leftW, rightW := a.paneWidths()
	left := components.PaneBox("Notes", a.renderList(components.PaneContentWidth(leftW)), leftW, a.focus == paneList)

	var buf session.Buffer
	var state session.State
	var saved time.Time
	title := "Editor"
	if a.sess != nil {
		buf = a.sess.Buffer()
		state = a.sess.State()
		saved = a.sess.LastSaved()
		title = components.ClampTextWidthEllipsis(displayTitle(buf.Title), max(rightW-12, 8))
	}
	right := components.PaneBox(title, a.editor.View(buf, state, saved, a.renderer), rightW, a.focus == paneEditor)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// --- Sessions ---

// openNote makes id the selected note. The previous session is flushed,
// or discarded when configured to.
func (a *App) openNote(id string) {
	if a.sess != nil {
		if a.sess.NoteID() == id {
			return
		}
		a.closeSession(!a.discard)
	}
	n, err := a.store.Get(id)
	if err != nil {
		a.selected = ""
		a.editor.Unload()
		return
	}
	a.selected = id
	a.sess = session.Open(n, a.store, session.Options{
		Debounce: a.debounce,
		Log:      a.log,
		OnCommit: a.notifyCommit,
	})
	a.editor.Load(a.sess.Buffer())
	a.editor.Blur()
}

func (a *App) closeSession(flush bool) {
	if a.sess == nil {
		return
	}
	a.sess.Close(context.Background(), flush)
	a.sess = nil
	a.selected = ""
	a.notes = a.store.Snapshot()
}

// notifyCommit runs on the committing goroutine. A full buffer drops the
// notification; the next one refreshes from the same snapshot.
func (a App) notifyCommit(c session.Commit) {
	select {
	case a.commits <- c:
	default:
	}
}

// --- List ---

// refreshList re-reads the snapshot and re-applies the search filter,
// keeping the cursor on the same note when it is still visible.
func (a *App) refreshList() {
	cursorID := ""
	if n, ok := a.list.Current(); ok {
		cursorID = n.ID
	}
	if a.store != nil {
		a.notes = a.store.Snapshot()
	}
	a.visible = note.Filter(a.notes, a.search.Value())
	a.list.SetItems(a.visible)
	if i := note.IndexOf(a.visible, cursorID); i >= 0 {
		a.list.Select(i)
	}
}

func (a App) cursorNote() (note.Note, bool) {
	return a.list.Current()
}

func (a App) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isDown(msg):
		a.list.Down()
	case isUp(msg):
		a.list.Up()
	case isEnter(msg):
		if n, ok := a.cursorNote(); ok {
			a.openNote(n.ID)
			a.focus = paneEditor
			return a, a.editor.Focus(fieldContent)
		}
	case isNextField(msg):
		if a.sess != nil {
			a.focus = paneEditor
			return a, a.editor.Focus(a.editor.field)
		}
	case isKey(msg, "n"):
		return a.createNote()
	case isKey(msg, "d"):
		if n, ok := a.cursorNote(); ok {
			a.confirmDelete = n.ID
		}
	case isKey(msg, "/"):
		a.searching = true
		return a, a.search.Focus()
	case isBack(msg):
		if a.search.Value() != "" {
			a.search.Reset()
			a.refreshList()
		}
	case isKey(msg, "y"):
		return a.copySelected()
	case isKey(msg, "?"):
		a.helpOpen = true
	case isKey(msg, "ctrl+g"):
		if a.sess != nil {
			a.tools.open = true
		}
	case isKey(msg, "ctrl+t"):
		return a.startAI(textsvc.ActionGenerateTitle, false)
	}
	return a, nil
}

func (a App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		a.search.Reset()
		a.search.Blur()
		a.searching = false
		a.refreshList()
		return a, nil
	case isEnter(msg), isDown(msg):
		a.search.Blur()
		a.searching = false
		return a, nil
	}
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != before {
		a.refreshList()
		a.list.Select(0)
	}
	return a, cmd
}

func (a App) createNote() (tea.Model, tea.Cmd) {
	id, _, err := a.store.Create(context.Background())
	var toast tea.Cmd
	if err != nil {
		toast = a.persistWarning(err)
	}
	if a.search.Value() != "" {
		a.search.Reset()
	}
	a.refreshList()
	a.openNote(id)
	a.list.Select(note.IndexOf(a.visible, id))
	a.focus = paneEditor
	return a, tea.Batch(a.editor.Focus(fieldTitle), toast)
}

func (a App) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isKey(msg, "y"):
		id := a.confirmDelete
		a.confirmDelete = ""
		return a.deleteNote(id)
	case isKey(msg, "n"), isBack(msg):
		a.confirmDelete = ""
	}
	return a, nil
}

// deleteNote removes id. The selection only moves when id was selected.
func (a App) deleteNote(id string) (tea.Model, tea.Cmd) {
	selected := a.selected
	if selected == id {
		a.closeSession(false)
	}
	remaining, err := a.store.Delete(context.Background(), id)
	var toast tea.Cmd
	if err != nil {
		toast = a.persistWarning(err)
	}
	next := note.SelectAfterDelete(remaining, id, selected)
	a.refreshList()
	if next != "" && next != a.selected {
		a.openNote(next)
	}
	if a.sess == nil {
		a.editor.Unload()
		a.focus = paneList
	}
	if toast == nil {
		toast = a.setToast("success", "Note deleted.")
	}
	return a, toast
}

func (a App) copySelected() (tea.Model, tea.Cmd) {
	if a.sess == nil {
		return a, nil
	}
	if err := a.copyText(a.sess.Buffer().Content); err != nil {
		return a, a.setError(fmt.Errorf("copy to clipboard: %w", err))
	}
	return a, a.setToast("success", "Copied note to clipboard.")
}

func (a App) renderList(width int) string {
	var b strings.Builder
	if a.searching || a.search.Value() != "" {
		b.WriteString(a.search.View())
	} else {
		b.WriteString(MutedStyle.Render("/ search"))
	}
	b.WriteString("\n")

	count := fmt.Sprintf("%d notes", len(a.notes))
	if q := strings.TrimSpace(a.search.Value()); q != "" {
		count = fmt.Sprintf("%d of %d notes", len(a.visible), len(a.notes))
	}
	b.WriteString(MutedStyle.Render(count) + "\n")

	if len(a.visible) == 0 {
		if len(a.notes) == 0 {
			b.WriteString(MutedStyle.Render("No notes yet. Press n."))
		} else {
			b.WriteString(MutedStyle.Render("No matches."))
		}
		return b.String()
	}

	updatedW := 11
	cols := []components.TableColumn{
		{Header: "Title", Width: max(width-updatedW-2, 8), Align: lipgloss.Left},
		{Header: "Updated", Width: updatedW, Align: lipgloss.Right},
	}
	visible := a.list.Visible()
	rows := make([][]string, 0, len(visible))
	active := -1
	for i, n := range visible {
		if a.list.IsSelected(a.list.RelToAbs(i)) {
			active = len(rows)
		}
		title := n.DisplayTitle()
		if n.ID == a.selected && a.sess != nil {
			title = "● " + displayTitle(a.sess.Buffer().Title)
		}
		rows = append(rows, []string{title, n.UpdatedAt.Local().Format("01-02 15:04")})
	}
	if a.focus != paneList {
		active = -1
	}
	b.WriteString(components.TableGrid(cols, rows, width, active))
	return b.String()
}

// --- Editor ---

func (a App) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.sess == nil {
		a.focus = paneList
		return a, nil
	}
	switch {
	case isBack(msg):
		a.focus = paneList
		a.editor.Blur()
		if i := note.IndexOf(a.visible, a.selected); i >= 0 {
			a.list.Select(i)
		}
		return a, nil
	case isKey(msg, "ctrl+g"):
		a.tools.open = true
		return a, nil
	case isKey(msg, "ctrl+t"):
		return a.startAI(textsvc.ActionGenerateTitle, false)
	case isKey(msg, "ctrl+p"):
		a.editor.preview = !a.editor.preview
		return a, nil
	case isKey(msg, "ctrl+s"):
		a.sess.Flush(context.Background())
		a.refreshList()
		return a, nil
	}

	var edit editorEdit
	var cmd tea.Cmd
	a.editor, edit, cmd = a.editor.Update(msg)

	var err error
	switch {
	case edit.titleChanged:
		err = a.sess.SetTitle(a.editor.title.Value())
	case edit.contentChanged:
		err = a.sess.SetContent(a.editor.content.Value())
	case edit.addTag != "":
		_, err = a.sess.AddTag(edit.addTag)
	case edit.removeTag != "":
		_, err = a.sess.RemoveTag(edit.removeTag)
	}
	if err != nil {
		return a, a.setError(err)
	}
	if edit.addTag != "" || edit.removeTag != "" {
		a.editor.Sync(a.sess.Buffer())
	}
	return a, cmd
}

// --- Events ---

func (a App) handleCommit(msg commitMsg) (tea.Model, tea.Cmd) {
	next := waitForCommit(a.commits)
	a.refreshList()
	if msg.Err != nil {
		return a, tea.Batch(next, a.persistWarning(msg.Err))
	}
	return a, next
}

// handleStorageChanged adopts a collection written by another process. A
// clean session on a changed note is reopened; a dirty one keeps its
// buffer and wins on its next commit.
func (a App) handleStorageChanged() (tea.Model, tea.Cmd) {
	next := waitForChange(a.changes)
	changed, err := a.store.Reload(context.Background())
	if err != nil {
		a.log.Warn("reload notes", zap.Error(err))
		return a, next
	}
	if !changed {
		return a, next
	}
	a.refreshList()
	if a.sess == nil {
		return a, tea.Batch(next, a.setToast("info", "Notes changed on disk."))
	}
	n, err := a.store.Get(a.sess.NoteID())
	switch {
	case err != nil:
		id := a.sess.NoteID()
		a.closeSession(false)
		a.editor.Unload()
		a.focus = paneList
		if nextID := note.SelectAfterDelete(a.notes, id, id); nextID != "" {
			a.openNote(nextID)
		}
	case a.sess.State() == session.Clean && a.busy == nil:
		a.closeSession(false)
		a.openNote(n.ID)
	}
	return a, tea.Batch(next, a.setToast("info", "Notes changed on disk."))
}

// --- Feedback ---

func (a *App) persistWarning(err error) tea.Cmd {
	a.log.Warn("persist failed", zap.Error(err))
	return a.setToast("warning", "Could not save notes: "+err.Error())
}

func (a *App) setError(err error) tea.Cmd {
	a.err = components.SanitizeOneLine(err.Error())
	return nil
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toastID++
	id := a.toastID
	a.toast = &appToast{
		id:    id,
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{id: id}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func (a App) renderDeleteConfirm() string {
	title := note.DefaultTitle
	if n, err := a.store.Get(a.confirmDelete); err == nil {
		title = n.DisplayTitle()
	}
	body := fmt.Sprintf("Delete %q? This cannot be undone.", components.ClampTextWidthEllipsis(title, 30))
	return components.ConfirmDialog("Delete note", body)
}

func (a App) statusHints() []string {
	switch {
	case a.busy != nil:
		return []string{components.Hint("ctrl+c", "Quit")}
	case a.confirmDelete != "":
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	case a.helpOpen:
		return []string{components.Hint("esc", "Back")}
	case a.tools.open:
		return []string{
			components.Hint("1-5", "Run"),
			components.Hint("tab", "Scope"),
			components.Hint("esc", "Close"),
		}
	case a.searching:
		return []string{
			components.Hint("enter", "Done"),
			components.Hint("esc", "Clear"),
		}
	case a.focus == paneEditor:
		return []string{
			components.Hint("tab", "Field"),
			components.Hint("ctrl+g", "AI"),
			components.Hint("ctrl+t", "Auto-title"),
			components.Hint("ctrl+p", "Preview"),
			components.Hint("ctrl+s", "Save"),
			components.Hint("esc", "List"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Scroll"),
		components.Hint("enter", "Open"),
		components.Hint("n", "New"),
		components.Hint("d", "Delete"),
		components.Hint("/", "Search"),
		components.Hint("y", "Copy"),
		components.Hint("?", "Help"),
		components.Hint("ctrl+c", "Quit"),
	}
}

func (a App) renderHelp() string {
	rows := []components.TableRow{
		{Label: "n", Value: "New note"},
		{Label: "enter", Value: "Open note under cursor"},
		{Label: "d", Value: "Delete note under cursor"},
		{Label: "/", Value: "Search titles, content and tags"},
		{Label: "y", Value: "Copy note content"},
		{Label: "tab", Value: "Next field (title, tags, content)"},
		{Label: "tags", Value: "enter adds, backspace removes, ←/→ pick"},
		{Label: "ctrl+g", Value: "AI tools menu"},
		{Label: "ctrl+t", Value: "Auto-title"},
		{Label: "ctrl+p", Value: "Markdown preview"},
		{Label: "ctrl+s", Value: "Save now"},
		{Label: "ctrl+c", Value: "Save and quit"},
	}
	return components.Table("Help", rows, a.width)
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return note.DefaultTitle
	}
	return title
}

func centerBlock(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
