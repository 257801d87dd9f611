package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []Note {
	return []Note{
		{ID: "1", Title: "Alpha", Tags: []string{"x"}},
		{ID: "2", Title: "Beta", Content: "alpha inside"},
	}
}

func TestFilterMatchesTitleContentAnyCase(t *testing.T) {
	notes := filterFixture()
	for _, q := range []string{"alpha", "ALPHA", "AlPhA"} {
		got := Filter(notes, q)
		require.Len(t, got, 2, q)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "2", got[1].ID)
	}
	assert.Empty(t, Filter(notes, "zzz"))
}

func TestFilterMatchesTags(t *testing.T) {
	got := Filter(filterFixture(), "X")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterEmptyQueryReturnsAll(t *testing.T) {
	assert.Len(t, Filter(filterFixture(), ""), 2)
	assert.Len(t, Filter(filterFixture(), "   "), 2)
}

func TestSelectAfterDelete(t *testing.T) {
	remaining := []Note{{ID: "b"}, {ID: "c"}}
	assert.Equal(t, "b", SelectAfterDelete(remaining, "a", "a"))
	assert.Equal(t, "c", SelectAfterDelete(remaining, "a", "c"))
	assert.Equal(t, "", SelectAfterDelete(nil, "a", "a"))
	assert.Equal(t, "", SelectAfterDelete(remaining, "a", ""))
}

func TestValidate(t *testing.T) {
	now := time.Now()
	ok := []Note{{ID: "a", CreatedAt: now, UpdatedAt: now, Tags: []string{"x", "X"}}}
	require.NoError(t, Validate(ok))

	cases := map[string][]Note{
		"missing id":   {{CreatedAt: now, UpdatedAt: now}},
		"duplicate id": {{ID: "a", CreatedAt: now, UpdatedAt: now}, {ID: "a", CreatedAt: now, UpdatedAt: now}},
		"zero time":    {{ID: "a"}},
		"time order":   {{ID: "a", CreatedAt: now, UpdatedAt: now.Add(-time.Second)}},
		"dup tags":     {{ID: "a", CreatedAt: now, UpdatedAt: now, Tags: []string{"x", "x"}}},
	}
	for name, notes := range cases {
		err := Validate(notes)
		assert.ErrorIs(t, err, ErrInvalidCollection, name)
	}
}

func TestSeedIsValid(t *testing.T) {
	seed := Seed(time.Now())
	require.Len(t, seed, 1)
	assert.NoError(t, Validate(seed))
}
