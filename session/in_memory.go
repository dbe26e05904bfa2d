package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentkit/core"
)

// InMemoryStore is a volatile SessionStore implementation storing sessions
// in a process local map. It is safe for concurrent access and best suited
// for tests or ephemeral demo servers. Returned sessions are clones.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create allocates a new session owned by endpointID.
func (s *InMemoryStore) Create(ctx context.Context, endpointID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := core.NewID()

	s.mu.Lock()
	s.sessions[id] = core.NewSession(id, endpointID)
	s.mu.Unlock()

	return id, nil
}

// Get returns a clone of the session.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	return sess.Clone(), nil
}

// Append adds turns in order under a single lock.
func (s *InMemoryStore) Append(ctx context.Context, id string, turns ...core.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	for _, t := range turns {
		sess.Turns = append(sess.Turns, t.Clone())
	}

	sess.UpdatedAt = time.Now()

	return nil
}

// Delete removes the session.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}

	delete(s.sessions, id)

	return nil
}

// Len returns the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
