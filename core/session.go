package core

import (
	"context"
	"time"
)

// Session is the conversation record of one or more runs against a single
// endpoint.
type Session struct {
	ID         string    `json:"id"`
	EndpointID string    `json:"endpoint_id"`
	Turns      []Turn    `json:"turns"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession creates an empty session.
func NewSession(id, endpointID string) *Session {
	now := time.Now()

	return &Session{
		ID:         id,
		EndpointID: endpointID,
		Turns:      []Turn{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s

	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t.Clone()
	}

	return &c
}

// History returns a copy of the ordered turns.
func (s *Session) History() []Turn {
	return s.Clone().Turns
}

// Len returns the number of turns.
func (s *Session) Len() int { return len(s.Turns) }

// SessionStore persists sessions across runs.
//
// Get, Append and Delete fail with ErrSessionNotFound for unknown or deleted
// ids. Append of several turns is atomic and preserves their order.
type SessionStore interface {
	Create(ctx context.Context, endpointID string) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Append(ctx context.Context, id string, turns ...Turn) error
	Delete(ctx context.Context, id string) error
}
