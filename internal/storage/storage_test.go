package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v1"))
	require.NoError(t, m.Set(ctx, "k", "v2"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestSQLiteRoundtripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "notes.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, ok, err := db.Get(ctx, "collection")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, "collection", `[{"id":"a"}]`))
	require.NoError(t, db.Set(ctx, "collection", `[{"id":"b"}]`))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := db.Get(ctx, "collection")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"b"}]`, v)
	assert.Equal(t, path, db.Path())
}

func TestWatchSignalsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "notes.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	changes, err := Watch(ctx, path, 20*time.Millisecond, nil)
	require.NoError(t, err)

	other, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.Set(ctx, "collection", "[]"))

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change signal")
	}

	cancel()
	for range changes {
	}
}
