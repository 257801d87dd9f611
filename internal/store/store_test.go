package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/storage"
)

var timeEqual = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := New(kv, nil, WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))
	s.Load(context.Background())
	return s
}

type failingKV struct {
	*storage.Memory
	failWrites bool
	failReads  bool
}

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failReads {
		return "", false, errors.New("storage unavailable")
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoadEmptyStorageSeeds(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	notes := s.Load(context.Background())
	require.Len(t, notes, 1)
	assert.Equal(t, "Welcome to Nebula Notes", notes[0].Title)
}

func TestLoadPersistsSeedOnce(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	first := New(kv, nil).Load(ctx)
	second := New(kv, nil).Load(ctx)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	_, ok, err := kv.Get(ctx, CollectionKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadKeepsUnreadableDataOnDisk(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, CollectionKey, "{{{"))
	New(kv, nil).Load(ctx)

	blob, _, err := kv.Get(ctx, CollectionKey)
	require.NoError(t, err)
	assert.Equal(t, "{{{", blob)
}

func TestLoadSeedPersistFailureStillSeeds(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory(), failWrites: true}
	notes := New(kv, nil).Load(context.Background())
	assert.Len(t, notes, 1)
}

func TestLoadMalformedDataSeeds(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"not json":    "{{{",
		"wrong shape": `{"id":"a"}`,
		"dup ids":     `[{"id":"a","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"},{"id":"a","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}]`,
		"no id":       `[{"title":"x","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}]`,
	} {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(ctx, CollectionKey, blob))
		notes := New(kv, nil).Load(ctx)
		require.Len(t, notes, 1, name)
		assert.Contains(t, notes[0].Tags, "welcome", name)
	}
}

func TestLoadReadErrorSeeds(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory(), failReads: true}
	notes := New(kv, nil).Load(context.Background())
	assert.Len(t, notes, 1)
}

func TestPersistLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)

	id, _, err := s.Create(ctx)
	require.NoError(t, err)
	n, err := s.Get(id)
	require.NoError(t, err)
	n.Title = "Shopping"
	n.Content = "milk\neggs"
	n.Tags = []string{"home", "todo"}
	n.UpdatedAt = s.Now()
	_, err = s.Update(ctx, n)
	require.NoError(t, err)
	_, _, err = s.Create(ctx)
	require.NoError(t, err)

	want := s.Snapshot()
	got := New(kv, nil).Load(ctx)
	if diff := cmp.Diff(want, got, timeEqual); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundtripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := newTestStore(t, db)
	_, _, err = s.Create(ctx)
	require.NoError(t, err)
	want := s.Snapshot()
	require.NoError(t, s.Close())

	db, err = storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	got := New(db, nil).Load(ctx)
	if diff := cmp.Diff(want, got, timeEqual); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyCollectionLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	seed := s.Snapshot()
	_, err := s.Delete(ctx, seed[0].ID)
	require.NoError(t, err)

	assert.Empty(t, New(kv, nil).Load(ctx))
}

func TestCreatePrependsWithUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	var ids []string
	for i := 0; i < 50; i++ {
		id, notes, err := s.Create(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, notes[0].ID)
		assert.Equal(t, notes[0].CreatedAt, notes[0].UpdatedAt)
		ids = append(ids, id)
	}
	seen := map[string]bool{}
	for _, n := range s.Snapshot() {
		require.False(t, seen[n.ID])
		seen[n.ID] = true
	}
	assert.Len(t, seen, 51)
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	before := s.Snapshot()
	after, err := s.Update(ctx, note.Note{ID: "missing", Title: "x"})
	require.NoError(t, err)
	if diff := cmp.Diff(before, after, timeEqual); diff != "" {
		t.Fatalf("collection changed:\n%s", diff)
	}
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	orig := s.Snapshot()[0]

	edit := orig.Clone()
	edit.CreatedAt = orig.CreatedAt.Add(time.Hour)
	edit.UpdatedAt = orig.CreatedAt.Add(-time.Hour)
	edit.Tags = []string{"a", "a", "b"}
	notes, err := s.Update(ctx, edit)
	require.NoError(t, err)

	assert.True(t, notes[0].CreatedAt.Equal(orig.CreatedAt))
	assert.False(t, notes[0].UpdatedAt.Before(notes[0].CreatedAt))
	assert.Equal(t, []string{"a", "b"}, notes[0].Tags)
}

func TestDeleteReturnsRemaining(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	idA, _, _ := s.Create(ctx)
	idB, _, _ := s.Create(ctx)

	notes, err := s.Delete(ctx, idB)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, idA, notes[0].ID)
	assert.Equal(t, idA, note.SelectAfterDelete(notes, idB, idB))

	_, err = s.Get(idB)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Memory: storage.NewMemory()}
	s := newTestStore(t, kv)
	kv.failWrites = true

	id, notes, err := s.Create(ctx)
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, id, notes[0].ID)
	assert.Len(t, s.Snapshot(), 2)
}

func TestReloadAdoptsExternalChanges(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	a := newTestStore(t, kv)
	changed, err := a.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	b := New(kv, nil)
	b.Load(ctx)
	id, _, err := b.Create(ctx)
	require.NoError(t, err)

	changed, err = a.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	_, err = a.Get(id)
	assert.NoError(t, err)

	require.NoError(t, kv.Set(ctx, CollectionKey, "garbage"))
	changed, err = a.Reload(ctx)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Len(t, a.Snapshot(), 2)
}

func TestInsertAssignsMissingFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	n, notes, err := s.Insert(ctx, note.Note{Title: "From CLI", Tags: []string{" a ", "a", ""}})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, []string{"a"}, n.Tags)
	assert.Equal(t, n.ID, notes[0].ID)
}
