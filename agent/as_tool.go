package agent

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/tool"
)

// AgentToolOptions configures an AgentTool.
type AgentToolOptions struct {
	// MaxSteps is the wrapped agent's round budget per call. Zero keeps the
	// wrapped agent's default.
	MaxSteps int
	// RunOptions are applied to every run of the wrapped agent.
	RunOptions []func(o *RunOptions)
}

// AgentTool exposes an agent as a tool so another agent can delegate to it.
type AgentTool struct {
	agent       *Agent
	name        string
	description string
	opts        AgentToolOptions
}

// AsTool wraps the agent as a tool. Empty name and description fall back to
// the agent's own.
func (a *Agent) AsTool(name, description string, optFns ...func(o *AgentToolOptions)) *AgentTool {
	opts := AgentToolOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		name = a.name
	}

	if description == "" {
		description = a.Description()
	}

	return &AgentTool{agent: a, name: name, description: description, opts: opts}
}

// Name returns the tool name.
func (t *AgentTool) Name() string { return t.name }

// Description returns the tool description.
func (t *AgentTool) Description() string { return t.description }

// Kind returns tool.KindAgent.
func (t *AgentTool) Kind() tool.Kind { return tool.KindAgent }

// Agent returns the wrapped agent.
func (t *AgentTool) Agent() *Agent { return t.agent }

// Parameters returns the argument schema: a required input and an optional
// session to continue.
func (t *AgentTool) Parameters() map[string]any {
	return util.ObjectSchema(map[string]any{
		"input": map[string]any{
			"type":        "string",
			"description": "The request for " + t.agent.name,
		},
		"session_id": map[string]any{
			"type":        "string",
			"description": "Optional session to continue",
		},
	}, "input")
}

// Call runs the wrapped agent with its own step budget and returns its
// final output text.
func (t *AgentTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	input, _ := args["input"].(string)
	sessionID, _ := args["session_id"].(string)

	runOpts := append([]func(o *RunOptions){}, t.opts.RunOptions...)
	runOpts = append(runOpts, func(o *RunOptions) {
		o.SessionID = sessionID
		if t.opts.MaxSteps > 0 {
			o.MaxSteps = t.opts.MaxSteps
		}
	})

	tc.LogDebug("agent.delegate.start", "caller", tc.AgentName(), "agent", t.agent.name, "action_id", tc.ActionID())

	resp, err := t.agent.Run(tc.Context(), input, runOpts...)
	if err != nil {
		return nil, fmt.Errorf("delegate to %s: %w", t.agent.name, err)
	}

	tc.LogDebug("agent.delegate.completed",
		"caller", tc.AgentName(),
		"agent", t.agent.name,
		"steps", resp.Steps,
		"finish_reason", resp.FinishReason,
	)

	return resp.Output, nil
}
