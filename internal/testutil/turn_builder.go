package testutil

import (
	"time"

	"github.com/hupe1980/agentkit/core"
)

// TurnBuilder provides a fluent helper for constructing turns in tests.
// Example:
//
//	turn := NewTurnBuilder().Assistant("").Action("a1", "get_weather", map[string]any{"location": "Berlin"}).Build()
type TurnBuilder struct {
	turn core.Turn
}

// NewTurnBuilder creates a builder for a user turn.
func NewTurnBuilder() *TurnBuilder {
	return &TurnBuilder{turn: core.Turn{Role: core.RoleUser}}
}

// User sets the role to user with the given text.
func (b *TurnBuilder) User(text string) *TurnBuilder {
	b.turn.Role = core.RoleUser
	b.turn.Text = text
	return b
}

// Assistant sets the role to assistant with the given text.
func (b *TurnBuilder) Assistant(text string) *TurnBuilder {
	b.turn.Role = core.RoleAssistant
	b.turn.Text = text
	return b
}

// Action appends a required action.
func (b *TurnBuilder) Action(id, tool string, args map[string]any) *TurnBuilder {
	b.turn.Actions = append(b.turn.Actions, core.RequiredAction{ID: id, ToolName: tool, Arguments: args})
	return b
}

// Result sets the role to tool and appends a performed action.
func (b *TurnBuilder) Result(id, tool string, output any, err error) *TurnBuilder {
	b.turn.Role = core.RoleTool

	pa := core.PerformedAction{ActionID: id, ToolName: tool, Output: output}
	if err != nil {
		pa.Error = err.Error()
	}

	b.turn.Results = append(b.turn.Results, pa)

	return b
}

// Build returns the turn, stamping CreatedAt when unset.
func (b *TurnBuilder) Build() core.Turn {
	t := b.turn
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return t
}
