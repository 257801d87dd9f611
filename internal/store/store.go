// Package store owns the in-memory note collection and mirrors it to local
// storage after every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/storage"
)

// CollectionKey is the single storage key holding the serialized collection.
const CollectionKey = "nebula-notes.collection"

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("note not found")

// PersistError reports a storage write that failed after the in-memory
// mutation was applied. Callers should warn and keep going.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return "persist notes: " + e.Err.Error() }
func (e *PersistError) Unwrap() error { return e.Err }

// Store holds the ordered note collection. Safe for concurrent use.
type Store struct {
	kv  storage.KV
	key string
	log *zap.Logger
	now func() time.Time

	mu       sync.Mutex
	notes    []note.Note
	lastBlob string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKey overrides CollectionKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates a store over kv. Call Load before use.
func New(kv storage.KV, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		kv:  kv,
		key: CollectionKey,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// Load reads the persisted collection. Missing, unreadable, or invalid data
// yields the seeded welcome note; the cause is logged, never returned.
func (s *Store) Load(ctx context.Context) []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok, err := s.kv.Get(ctx, s.key)
	switch {
	case err != nil:
		s.log.Warn("read notes failed, using seed", zap.Error(err))
	case !ok:
		s.log.Debug("no persisted notes, using seed")
	default:
		notes, err := decode(blob)
		if err == nil {
			s.notes = notes
			s.lastBlob = blob
			s.log.Debug("notes loaded", zap.Int("count", len(notes)))
			return cloneAll(s.notes)
		}
		s.log.Warn("persisted notes rejected, using seed", zap.Error(err))
	}
	s.notes = note.Seed(s.now())
	s.lastBlob = ""
	if err == nil && !ok {
		// Written once so the seed keeps its id across runs.
		if err := s.persistLocked(ctx); err != nil {
			s.log.Warn("persist seed failed", zap.Error(err))
		}
	}
	return cloneAll(s.notes)
}

// Reload re-reads storage and adopts its collection when it differs from
// what this store last wrote or loaded. Invalid data leaves memory untouched.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("reload notes: %w", err)
	}
	if !ok || blob == s.lastBlob {
		return false, nil
	}
	notes, err := decode(blob)
	if err != nil {
		return false, fmt.Errorf("reload notes: %w", err)
	}
	s.notes = notes
	s.lastBlob = blob
	return true, nil
}

// Snapshot returns a copy of the collection.
func (s *Store) Snapshot() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.notes)
}

// Get returns a copy of the note with id.
func (s *Store) Get(id string) (note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := note.IndexOf(s.notes, id); i >= 0 {
		return s.notes[i].Clone(), nil
	}
	return note.Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create prepends an empty note and returns its id with the new collection.
func (s *Store) Create(ctx context.Context) (string, []note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := note.New(s.now())
	s.notes = append([]note.Note{n}, s.notes...)
	err := s.persistLocked(ctx)
	return n.ID, cloneAll(s.notes), err
}

// Insert prepends a fully formed note, assigning id and timestamps when unset.
func (s *Store) Insert(ctx context.Context, n note.Note) (note.Note, []note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n = n.Clone()
	if n.ID == "" || note.IndexOf(s.notes, n.ID) >= 0 {
		n.ID = note.NewID()
	}
	now := s.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	n.Tags = note.MergeTags([]string{}, n.Tags)
	s.notes = append([]note.Note{n}, s.notes...)
	err := s.persistLocked(ctx)
	return n.Clone(), cloneAll(s.notes), err
}

// Update replaces the note with the same id. Unknown ids are ignored.
// CreatedAt is kept from the stored note.
func (s *Store) Update(ctx context.Context, n note.Note) ([]note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := note.IndexOf(s.notes, n.ID)
	if i < 0 {
		s.log.Debug("update of unknown note ignored", zap.String("id", n.ID))
		return cloneAll(s.notes), nil
	}
	n = n.Clone()
	n.CreatedAt = s.notes[i].CreatedAt
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	n.Tags = dedupe(n.Tags)
	s.notes[i] = n
	err := s.persistLocked(ctx)
	return cloneAll(s.notes), err
}

// Delete removes the note with id and returns the remaining collection.
func (s *Store) Delete(ctx context.Context, id string) ([]note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := note.IndexOf(s.notes, id)
	if i < 0 {
		return cloneAll(s.notes), nil
	}
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
	err := s.persistLocked(ctx)
	return cloneAll(s.notes), err
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.notes)
	if err != nil {
		return &PersistError{Err: fmt.Errorf("encode: %w", err)}
	}
	blob := string(data)
	if err := s.kv.Set(ctx, s.key, blob); err != nil {
		s.log.Warn("persist notes failed", zap.Error(err))
		return &PersistError{Err: err}
	}
	s.lastBlob = blob
	return nil
}

func decode(blob string) ([]note.Note, error) {
	var notes []note.Note
	if err := json.Unmarshal([]byte(blob), &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if err := note.Validate(notes); err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	return notes, nil
}

func cloneAll(notes []note.Note) []note.Note {
	out := make([]note.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
