// Package session implements the edit buffer for the selected note: the
// debounced commit protocol, tag edits, and the single-flight gate for AI
// requests.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/gravitrone/nebula-notes/internal/note"
	"github.com/gravitrone/nebula-notes/internal/textsvc"
)

// DefaultDebounce is the quiet period before an edit is committed.
const DefaultDebounce = time.Second

var (
	// ErrBusy is returned when an AI request is already in flight.
	ErrBusy = errors.New("an AI request is already running for this note")
	// ErrStaleSession is returned when a result arrives for a session that
	// has been closed or replaced.
	ErrStaleSession = errors.New("note changed before the AI result arrived")
	// ErrClosed is returned by edits on a closed session.
	ErrClosed = errors.New("edit session closed")
)

// State is the commit-protocol state of a session.
type State int

const (
	Clean State = iota
	Dirty
	Committing
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Committing:
		return "committing"
	}
	return "unknown"
}

// Committer receives committed notes. *store.Store satisfies it.
type Committer interface {
	Update(ctx context.Context, n note.Note) ([]note.Note, error)
}

// Commit describes one write of the buffer to the committer.
type Commit struct {
	Generation uint64
	Note       note.Note
	Err        error
}

// Buffer is the editable part of a note.
type Buffer struct {
	Title   string
	Content string
	Tags    []string
}

// Options configures a session.
type Options struct {
	Debounce time.Duration
	Now      func() time.Time
	Log      *zap.Logger
	// OnCommit runs after every commit, on the committing goroutine.
	OnCommit func(Commit)
}

var generations atomic.Uint64

// Session is the edit buffer for one note. Safe for concurrent use.
type Session struct {
	generation uint64
	committer  Committer
	debounce   time.Duration
	now        func() time.Time
	log        *zap.Logger
	onCommit   func(Commit)
	ai         *semaphore.Weighted

	// commitMu serializes commits so Flush waits for a timer commit in flight.
	commitMu sync.Mutex

	mu        sync.Mutex
	base      note.Note
	buf       Buffer
	state     State
	timer     *time.Timer
	seq       uint64
	closed    bool
	lastSaved time.Time
	// aiSeq numbers AI requests; inflight is the one holding the gate, or 0.
	aiSeq    uint64
	inflight uint64
}

// Open starts a Clean session on n.
func Open(n note.Note, committer Committer, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	n = n.Clone()
	s := &Session{
		generation: generations.Add(1),
		committer:  committer,
		debounce:   opts.Debounce,
		now:        opts.Now,
		log:        opts.Log,
		onCommit:   opts.OnCommit,
		ai:         semaphore.NewWeighted(1),
		base:       n,
		buf:        Buffer{Title: n.Title, Content: n.Content, Tags: n.Tags},
		lastSaved:  n.UpdatedAt,
	}
	return s
}

// Generation identifies this session among all sessions in the process.
func (s *Session) Generation() uint64 { return s.generation }

// NoteID returns the id of the note being edited.
func (s *Session) NoteID() string { return s.base.ID }

// State returns the current commit-protocol state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Buffer returns a copy of the edit buffer.
func (s *Session) Buffer() Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buf
	b.Tags = slices.Clone(s.buf.Tags)
	return b
}

// LastSaved returns the UpdatedAt of the last committed version.
func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// SetTitle replaces the buffered title.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.buf.Title == title {
		return nil
	}
	s.buf.Title = title
	s.touchLocked()
	return nil
}

// SetContent replaces the buffered content.
func (s *Session) SetContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.buf.Content == content {
		return nil
	}
	s.buf.Content = content
	s.touchLocked()
	return nil
}

// AddTag appends a trimmed, non-empty, not yet present tag. It reports
// whether the tag set changed.
func (s *Session) AddTag(tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	tags, ok := note.AddTag(s.buf.Tags, tag)
	if !ok {
		return false, nil
	}
	s.buf.Tags = tags
	s.touchLocked()
	return true, nil
}

// RemoveTag removes an exact match. It reports whether the tag set changed.
func (s *Session) RemoveTag(tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	tags, ok := note.RemoveTag(s.buf.Tags, tag)
	if !ok {
		return false, nil
	}
	s.buf.Tags = tags
	s.touchLocked()
	return true, nil
}

// Flush commits pending edits now instead of waiting for the debounce.
func (s *Session) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.commit(ctx)
}

// Close ends the session. With flush, pending edits are committed first;
// without it they are dropped. Later results for this session are stale.
func (s *Session) Close(ctx context.Context, flush bool) {
	if flush {
		s.Flush(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.state == Dirty {
		s.log.Debug("discarding uncommitted edits", zap.String("id", s.base.ID))
	}
	s.closed = true
}

func (s *Session) touchLocked() {
	s.seq++
	if s.state != Committing {
		s.state = Dirty
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Session) onTimer() {
	s.commit(context.Background())
}

func (s *Session) commit(ctx context.Context) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.closed || s.state != Dirty {
		s.mu.Unlock()
		return
	}
	s.state = Committing
	seq := s.seq
	n := s.base.Clone()
	n.Title = s.buf.Title
	n.Content = s.buf.Content
	n.Tags = slices.Clone(s.buf.Tags)
	n.UpdatedAt = s.now()
	s.mu.Unlock()

	_, err := s.committer.Update(ctx, n)
	if err != nil {
		s.log.Warn("commit failed", zap.String("id", n.ID), zap.Error(err))
	}

	s.mu.Lock()
	s.base = n
	s.lastSaved = n.UpdatedAt
	if s.seq != seq {
		// Edited while committing; the reset timer picks it up.
		s.state = Dirty
	} else {
		s.state = Clean
	}
	s.mu.Unlock()

	if s.onCommit != nil {
		s.onCommit(Commit{Generation: s.generation, Note: n.Clone(), Err: err})
	}
}

// --- AI requests ---

// Request is an in-flight AI action captured against this session.
type Request struct {
	Generation uint64
	Seq        uint64
	NoteID     string
	Action     textsvc.Action
	Selection  Span
	Input      string
}

// Result carries what the text service returned for a Request.
type Result struct {
	Text string
	Tags []string
}

// BeginAI claims the session's AI gate and captures the input for action.
// Transforms use the selected span when one is given, else the whole
// content; title and tag generation always use the whole content.
func (s *Session) BeginAI(action textsvc.Action, sel Span) (Request, error) {
	if !s.ai.TryAcquire(1) {
		return Request{}, ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.ai.Release(1)
		return Request{}, ErrClosed
	}
	s.aiSeq++
	s.inflight = s.aiSeq
	req := Request{
		Generation: s.generation,
		Seq:        s.aiSeq,
		NoteID:     s.base.ID,
		Action:     action,
		Input:      s.buf.Content,
	}
	if action.IsTransform() {
		n := len([]rune(s.buf.Content))
		sel = sel.clamp(n)
		if !sel.Empty() && !(sel.Start == 0 && sel.End == n) {
			req.Selection = sel
			req.Input = Selected(s.buf.Content, sel)
		}
	}
	return req, nil
}

// Busy reports whether an AI request holds the gate.
func (s *Session) Busy() bool {
	if s.ai.TryAcquire(1) {
		s.ai.Release(1)
		return false
	}
	return true
}

// EndAI releases the gate without applying anything, e.g. after an error.
// Requests from other sessions, or already finished ones, are ignored.
func (s *Session) EndAI(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(req)
}

// releaseLocked frees the gate if req still holds it.
func (s *Session) releaseLocked(req Request) bool {
	if req.Generation != s.generation || req.Seq == 0 || req.Seq != s.inflight {
		return false
	}
	s.inflight = 0
	s.ai.Release(1)
	return true
}

// ApplyAI splices res into the buffer and releases the gate. Results for a
// closed or different session, or a request already applied or ended,
// return ErrStaleSession and change nothing.
func (s *Session) ApplyAI(req Request, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.releaseLocked(req) || s.closed {
		return ErrStaleSession
	}
	switch req.Action {
	case textsvc.ActionGenerateTitle:
		if s.buf.Title == res.Text {
			return nil
		}
		s.buf.Title = res.Text
	case textsvc.ActionGenerateTags:
		merged := note.MergeTags(s.buf.Tags, res.Tags)
		if len(merged) == len(s.buf.Tags) {
			return nil
		}
		s.buf.Tags = merged
	default:
		s.buf.Content = Splice(s.buf.Content, req.Selection, req.Action, res.Text)
	}
	s.touchLocked()
	return nil
}
