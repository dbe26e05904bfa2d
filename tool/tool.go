// Package tool implements the tool calling subsystem that lets agents invoke
// structured capabilities (APIs, computations, other agents) with schema
// validated arguments, consistent error handling and metadata for model
// guidance.
package tool

import (
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/model"
)

// Kind tags how a tool is executed.
type Kind string

const (
	// KindFunction is a local Go function.
	KindFunction Kind = "function"
	// KindAgent runs another agent.
	KindAgent Kind = "agent"
	// KindRemote queries an external service (knowledge base, API).
	KindRemote Kind = "remote"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a JSON schema for parameters
//   - Be safe for concurrent use; actions of one round run in parallel
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description is provided to the model to help it decide when to call the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Kind reports the tool variant.
	Kind() Kind

	// Call executes the tool with validated arguments.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Definition returns the model facing definition of t.
func Definition(t Tool) model.ToolDefinition {
	params := t.Parameters()
	if params == nil {
		params = util.ObjectSchema(map[string]any{})
	}

	return model.NewToolDefinition(t.Name(), t.Description(), params)
}
