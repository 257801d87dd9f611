// Package note holds the note record and the pure operations over a note
// collection: tag-set edits, filtering, and selection after delete.
package note

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is shown for notes whose title is empty.
const DefaultTitle = "Untitled Note"

// Note is one user-authored text entry.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewID returns a fresh note identifier.
func NewID() string {
	return "nt-" + uuid.NewString()
}

// New returns an empty note stamped with now for both timestamps.
func New(now time.Time) Note {
	return Note{
		ID:        NewID(),
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayTitle returns the title, or DefaultTitle when it is blank.
func (n Note) DisplayTitle() string {
	if strings.TrimSpace(n.Title) == "" {
		return DefaultTitle
	}
	return n.Title
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	out := n
	out.Tags = slices.Clone(n.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// HasTag reports whether tag is present (case-sensitive).
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// AddTag trims tag and appends it. It returns the new tag set and false when
// the tag is empty or already present, in which case tags is returned as is.
func AddTag(tags []string, tag string) ([]string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(tags, tag) {
		return tags, false
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag), true
}

// RemoveTag filters out an exact match. The bool is false when nothing was removed.
func RemoveTag(tags []string, tag string) ([]string, bool) {
	if !slices.Contains(tags, tag) {
		return tags, false
	}
	out := make([]string, 0, len(tags)-1)
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out, true
}

// MergeTags appends every tag from extra that passes AddTag.
func MergeTags(tags []string, extra []string) []string {
	out := tags
	for _, t := range extra {
		out, _ = AddTag(out, t)
	}
	return out
}
