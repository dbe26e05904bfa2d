package testutil

import "github.com/hupe1980/agentkit/core"

// SessionBuilder constructs sessions with pre-populated turns.
type SessionBuilder struct {
	id         string
	endpointID string
	turns      []core.Turn
}

// NewSessionBuilder creates a builder for the given session id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, endpointID: "default"}
}

// Endpoint sets the owning endpoint id.
func (b *SessionBuilder) Endpoint(id string) *SessionBuilder { b.endpointID = id; return b }

// Turn appends a turn.
func (b *SessionBuilder) Turn(t core.Turn) *SessionBuilder {
	b.turns = append(b.turns, t)
	return b
}

// UserText appends a user turn.
func (b *SessionBuilder) UserText(text string) *SessionBuilder {
	return b.Turn(NewTurnBuilder().User(text).Build())
}

// AssistantText appends an assistant turn.
func (b *SessionBuilder) AssistantText(text string) *SessionBuilder {
	return b.Turn(NewTurnBuilder().Assistant(text).Build())
}

// Build returns the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id, b.endpointID)
	s.Turns = append(s.Turns, b.turns...)
	return s
}
