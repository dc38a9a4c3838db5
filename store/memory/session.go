package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dialwise/evalpipe/core"
)

// SessionStore is a volatile core.SessionStore keeping sessions in a process
// local map. Returned sessions are clones.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

var _ core.SessionStore = (*SessionStore)(nil)

// NewSessionStore constructs an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*core.Session)}
}

// Get returns a clone of the stored session or core.ErrSessionNotFound.
func (s *SessionStore) Get(_ context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Save stores a clone of the provided session snapshot, stamping Updated.
func (s *SessionStore) Save(_ context.Context, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := sess.Clone()
	clone.Updated = time.Now()
	s.sessions[sess.ID] = clone
	return nil
}

// Seed inserts a session directly, for tests and examples.
func (s *SessionStore) Seed(sess *core.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
}
