package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Contains(t, id, "nt-")
	}
}

func TestNewStampsBothTimestamps(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := New(now)
	assert.Equal(t, now, n.CreatedAt)
	assert.Equal(t, now, n.UpdatedAt)
	assert.Empty(t, n.Title)
	assert.NotNil(t, n.Tags)
}

func TestDisplayTitleFallsBack(t *testing.T) {
	assert.Equal(t, DefaultTitle, Note{}.DisplayTitle())
	assert.Equal(t, DefaultTitle, Note{Title: "   "}.DisplayTitle())
	assert.Equal(t, "Groceries", Note{Title: "Groceries"}.DisplayTitle())
}

func TestAddTag(t *testing.T) {
	tags, ok := AddTag([]string{"a"}, "  b ")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags)

	same, ok := AddTag(tags, "a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, same)

	same, ok = AddTag(tags, "   ")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, same)

	cased, ok := AddTag(tags, "A")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "A"}, cased)
}

func TestAddTagDoesNotAliasInput(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "x"
	out, ok := AddTag(base, "y")
	require.True(t, ok)
	out[0] = "changed"
	assert.Equal(t, "x", base[0])
}

func TestRemoveTag(t *testing.T) {
	tags, ok := RemoveTag([]string{"a", "b", "c"}, "b")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, tags)

	same, ok := RemoveTag(tags, "zzz")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c"}, same)
}

func TestMergeTags(t *testing.T) {
	out := MergeTags([]string{"go"}, []string{"go", " cli ", "", "tui"})
	assert.Equal(t, []string{"go", "cli", "tui"}, out)
}

func TestCloneDetachesTags(t *testing.T) {
	n := Note{ID: "1", Tags: []string{"a"}}
	c := n.Clone()
	c.Tags[0] = "b"
	assert.Equal(t, "a", n.Tags[0])
}
