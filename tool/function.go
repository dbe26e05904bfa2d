package tool

import (
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
)

// FunctionTool exposes a plain Go function as a tool.
//
// Arguments are validated by the Registry before Call runs. A FunctionTool
// has no mutable state after construction and is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	weather := NewFunctionTool(
//	  "get_weather",
//	  "Get the current weather for a location",
//	  util.ObjectSchema(map[string]any{
//	    "location": map[string]any{"type": "string"},
//	  }, "location"),
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return map[string]any{"location": args["location"], "temperature": 72, "unit": "F"}, nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	if parameters == nil {
		parameters = util.ObjectSchema(map[string]any{})
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewTypedTool derives the parameter schema from the argument struct T and
// decodes validated arguments into it before calling fn. Schema tags follow
// github.com/invopop/jsonschema:
//
//	type WeatherArgs struct {
//	  Location string `json:"location" jsonschema:"description=City name"`
//	}
//
// NewTypedTool panics if no schema can be reflected for T.
func NewTypedTool[T any](
	name, description string,
	fn func(toolCtx *core.ToolContext, args T) (any, error),
) *FunctionTool {
	schema, err := util.SchemaFor[T]()
	if err != nil {
		panic("tool: reflect schema for " + name + ": " + err.Error())
	}

	return NewFunctionTool(name, description, schema, func(tc *core.ToolContext, args map[string]any) (any, error) {
		typed, err := util.DecodeArguments[T](args)
		if err != nil {
			return nil, core.NewToolError(name, core.CodeInvalidArguments, "decode arguments: "+err.Error(), err)
		}

		return fn(tc, typed)
	})
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Kind implements Tool.
func (t *FunctionTool) Kind() Kind { return KindFunction }

// Call invokes the wrapped function.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "action_id", toolCtx.ActionID())

	result, err := t.fn(toolCtx, args)
	if err != nil {
		logger.Error("tool.call.error", "tool", t.name, "action_id", toolCtx.ActionID(), "error", err.Error())
		return nil, err
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
