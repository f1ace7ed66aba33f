// Package session keeps one in-progress IDS document per MCP session and
// evicts documents whose sessions have gone idle. State lives only in
// memory; a server restart drops all drafts.
package session

import (
	"sync"
	"time"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
)

// Session is one client's draft document plus bookkeeping. The embedded
// mutex serializes operations on the same session so concurrent tool calls
// cannot interleave partial mutations.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastAccessed time.Time

	mu      sync.Mutex
	doc     *ids.Document
	evicted bool
}

// Document returns the draft. Callers only see it inside Store.With, where
// the session lock is held.
func (s *Session) Document() *ids.Document { return s.doc }

// SetDocument replaces the draft wholesale.
func (s *Session) SetDocument(doc *ids.Document) { s.doc = doc }

// Store maps session IDs to sessions. The store lock covers only map
// membership; per-session work happens under the session's own lock.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// clock is swappable for tests.
	clock func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		clock:    time.Now,
	}
}

func (st *Store) lookup(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		now := st.clock()
		s = &Session{
			ID:        id,
			CreatedAt: now,
			doc:       ids.NewDocument(ids.Info{}),
		}
		st.sessions[id] = s
	}
	s.LastAccessed = st.clock()
	return s
}

// With runs fn against the session's document under the session lock,
// creating the session (with an empty document) on first use. If the sweeper
// evicted the session between lookup and lock acquisition, the lookup is
// retried so fn never runs against an orphaned document.
func (st *Store) With(id string, fn func(doc *ids.Document) error) error {
	for {
		s := st.lookup(id)
		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}
		err := fn(s.doc)
		s.mu.Unlock()
		return err
	}
}

// Replace swaps the session's document, creating the session if needed.
func (st *Store) Replace(id string, doc *ids.Document) {
	for {
		s := st.lookup(id)
		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}
		s.doc = doc
		s.mu.Unlock()
		return
	}
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle longer than maxIdle and reports how many were
// removed. A session busy in an operation is skipped rather than waited on;
// the next sweep gets another look at it.
func (st *Store) Sweep(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.clock().Add(-maxIdle)
	evicted := 0
	for id, s := range st.sessions {
		if s.LastAccessed.After(cutoff) {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		s.evicted = true
		s.mu.Unlock()
		delete(st.sessions, id)
		evicted++
	}
	return evicted
}
