package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/nebula-notes/internal/session"
)

type commitMsg struct{ session.Commit }

type storageChangedMsg struct{}

// waitForCommit delivers the next debounced commit to the update loop.
func waitForCommit(ch <-chan session.Commit) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return commitMsg{c}
	}
}

// waitForChange delivers the next storage change signal. A closed channel
// ends the listener.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storageChangedMsg{}
	}
}
