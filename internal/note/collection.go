package note

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Matches reports whether n contains query as a case-insensitive substring
// of its title, content, or any tag. A blank query matches every note.
func Matches(n Note, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Filter returns the notes matching query in collection order.
func Filter(notes []Note, query string) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if Matches(n, query) {
			out = append(out, n)
		}
	}
	return out
}

// IndexOf returns the position of id in notes, or -1.
func IndexOf(notes []Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// SelectAfterDelete returns the selection that should hold once deletedID is
// gone. remaining is the collection after the delete.
func SelectAfterDelete(remaining []Note, deletedID, selectedID string) string {
	if selectedID != deletedID {
		return selectedID
	}
	if len(remaining) == 0 {
		return ""
	}
	return remaining[0].ID
}

// Seed returns the welcome note used when nothing usable is persisted.
func Seed(now time.Time) []Note {
	n := New(now)
	n.Title = "Welcome to Nebula Notes"
	n.Content = "Start writing here. Press ctrl+g for AI tools, ctrl+t to generate a title.\n\n" +
		"Tags help you find notes later; add one below the title."
	n.Tags = []string{"welcome"}
	return []Note{n}
}

// ErrInvalidCollection is wrapped by Validate failures.
var ErrInvalidCollection = errors.New("invalid note collection")

// Validate checks the invariants a persisted collection must hold.
func Validate(notes []Note) error {
	seen := make(map[string]struct{}, len(notes))
	for i, n := range notes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("%w: note %d has no id", ErrInvalidCollection, i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCollection, n.ID)
		}
		seen[n.ID] = struct{}{}
		if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
			return fmt.Errorf("%w: note %q has no timestamps", ErrInvalidCollection, n.ID)
		}
		if n.UpdatedAt.Before(n.CreatedAt) {
			return fmt.Errorf("%w: note %q updated before created", ErrInvalidCollection, n.ID)
		}
		tags := make(map[string]struct{}, len(n.Tags))
		for _, t := range n.Tags {
			if _, dup := tags[t]; dup {
				return fmt.Errorf("%w: note %q repeats tag %q", ErrInvalidCollection, n.ID, t)
			}
			tags[t] = struct{}{}
		}
	}
	return nil
}
