package model

import (
	"context"

	"github.com/hupe1980/agentkit/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// NewToolDefinition returns a function tool definition.
func NewToolDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Sampling holds optional generation parameters. Nil fields are unset and
// providers drop the ones they do not support.
type Sampling struct {
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
}

// Merge returns s with every unset field taken from fallback.
func (s Sampling) Merge(fallback Sampling) Sampling {
	if s.MaxTokens == nil {
		s.MaxTokens = fallback.MaxTokens
	}
	if s.Temperature == nil {
		s.Temperature = fallback.Temperature
	}
	if s.TopP == nil {
		s.TopP = fallback.TopP
	}
	if s.TopK == nil {
		s.TopK = fallback.TopK
	}
	if s.FrequencyPenalty == nil {
		s.FrequencyPenalty = fallback.FrequencyPenalty
	}
	return s
}

// Request is the input of one orchestration round.
type Request struct {
	EndpointID string `json:"endpoint_id"`
	// SessionID is forwarded verbatim on every round of a run.
	SessionID string `json:"session_id"`
	// Revision identifies the registration the request was built against.
	Revision     string           `json:"revision,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Turns        []core.Turn      `json:"turns"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Sampling     Sampling         `json:"sampling"`
}

// Response is the model's reply for one round.
type Response struct {
	Text    string                `json:"text"`
	Actions []core.RequiredAction `json:"actions,omitempty"`
	Usage   core.Usage            `json:"usage"`
	// FinishReason is the raw provider value ("stop", "tool_calls", ...).
	FinishReason string `json:"finish_reason"`
}

// HasActions reports whether the model requested tool execution.
func (r *Response) HasActions() bool { return len(r.Actions) > 0 }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Client is the model service collaborator. A returned error is fatal for
// the run; retries belong to the provider transport.
type Client interface {
	Chat(ctx context.Context, req *Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Registration is the configuration an agent pushes during setup.
type Registration struct {
	EndpointID   string           `json:"endpoint_id"`
	AgentName    string           `json:"agent_name"`
	Instructions string           `json:"instructions"`
	Tools        []ToolDefinition `json:"tools"`
	Revision     string           `json:"revision"`
}

// Registrar accepts agent registrations. Clients that implement it receive
// the agent's configuration on setup.
type Registrar interface {
	Register(ctx context.Context, reg Registration) error
}
