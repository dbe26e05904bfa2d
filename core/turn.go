package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// RequiredAction is a tool invocation requested by the model.
type RequiredAction struct {
	// ID correlates the action with its PerformedAction.
	ID       string         `json:"id"`
	ToolName string         `json:"tool_name"`
	// Arguments holds the decoded argument object.
	Arguments map[string]any `json:"arguments,omitempty"`
	// RawArguments keeps the provider payload when it could not be decoded.
	RawArguments string `json:"raw_arguments,omitempty"`
}

// PerformedAction is the outcome of executing a RequiredAction.
type PerformedAction struct {
	ActionID string        `json:"action_id"`
	ToolName string        `json:"tool_name"`
	Output   any           `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the action produced an error result.
func (p PerformedAction) Failed() bool { return p.Error != "" }

// Turn is one entry of the conversation record. A turn is immutable once it
// has been appended to a session.
type Turn struct {
	Role      Role              `json:"role"`
	Text      string            `json:"text,omitempty"`
	Actions   []RequiredAction  `json:"actions,omitempty"`
	Results   []PerformedAction `json:"results,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewUserTurn creates a user turn with the given text.
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// NewAssistantTurn creates an assistant turn carrying text and any tool
// requests the model made.
func NewAssistantTurn(text string, actions []RequiredAction) Turn {
	return Turn{Role: RoleAssistant, Text: text, Actions: actions, CreatedAt: time.Now()}
}

// NewToolTurn creates the turn that reports tool results back to the model.
func NewToolTurn(results []PerformedAction) Turn {
	return Turn{Role: RoleTool, Results: results, CreatedAt: time.Now()}
}

// HasActions reports whether the turn requests tool execution.
func (t Turn) HasActions() bool { return len(t.Actions) > 0 }

// Clone returns a deep copy of the turn's slices and argument maps.
func (t Turn) Clone() Turn {
	c := t
	if t.Actions != nil {
		c.Actions = make([]RequiredAction, len(t.Actions))
		for i, a := range t.Actions {
			c.Actions[i] = a
			if a.Arguments != nil {
				args := make(map[string]any, len(a.Arguments))
				for k, v := range a.Arguments {
					args[k] = v
				}
				c.Actions[i].Arguments = args
			}
		}
	}

	if t.Results != nil {
		c.Results = append([]PerformedAction(nil), t.Results...)
	}

	return c
}

// NewID returns a new random identifier.
func NewID() string {
	return uuid.NewString()
}
