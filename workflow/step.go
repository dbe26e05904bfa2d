package workflow

import (
	"context"
	"fmt"
	"maps"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
)

// State is the key/value bag passed between steps.
type State map[string]any

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}

	return maps.Clone(s)
}

// String returns the value under key formatted as a string, or "".
func (s State) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}

	if str, ok := v.(string); ok {
		return str
	}

	return fmt.Sprint(v)
}

// Step is one unit of a workflow.
type Step interface {
	Name() string
	Execute(ctx context.Context, state State) (State, error)
}

// FuncStep adapts a function into a Step for non-agentic work.
type FuncStep struct {
	name string
	fn   func(ctx context.Context, state State) (State, error)
}

// NewFuncStep creates a FuncStep.
func NewFuncStep(name string, fn func(ctx context.Context, state State) (State, error)) *FuncStep {
	return &FuncStep{name: name, fn: fn}
}

// Name returns the step name.
func (s *FuncStep) Name() string { return s.name }

// Execute calls the wrapped function with a copy of the state.
func (s *FuncStep) Execute(ctx context.Context, state State) (State, error) {
	return s.fn(ctx, state.Clone())
}

// Runner is the part of an agent an AgentStep needs.
type Runner interface {
	Name() string
	Run(ctx context.Context, input string, optFns ...func(o *agent.RunOptions)) (*core.Response, error)
}

// AgentStepOptions configures an AgentStep.
type AgentStepOptions struct {
	// OutputKey receives the agent's output. Defaults to the step name.
	OutputKey string
	// SessionKey, when set, continues the session stored under that key and
	// writes the run's session id back.
	SessionKey string
	// RunOptions are applied to the agent run.
	RunOptions []func(o *agent.RunOptions)
}

// AgentStep runs an agent with a prompt rendered from the state.
type AgentStep struct {
	name   string
	runner Runner
	prompt string
	opts   AgentStepOptions
}

// NewAgentStep creates a step that renders prompt as a text/template against
// the state and runs it through runner.
func NewAgentStep(name string, runner Runner, prompt string, optFns ...func(o *AgentStepOptions)) *AgentStep {
	opts := AgentStepOptions{OutputKey: name}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &AgentStep{name: name, runner: runner, prompt: prompt, opts: opts}
}

// Name returns the step name.
func (s *AgentStep) Name() string { return s.name }

// Execute renders the prompt, runs the agent and stores its output.
func (s *AgentStep) Execute(ctx context.Context, state State) (State, error) {
	input, err := util.RenderTemplate(s.prompt, state)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	runOpts := append([]func(o *agent.RunOptions){}, s.opts.RunOptions...)
	if s.opts.SessionKey != "" {
		if sid := state.String(s.opts.SessionKey); sid != "" {
			runOpts = append(runOpts, func(o *agent.RunOptions) { o.SessionID = sid })
		}
	}

	resp, err := s.runner.Run(ctx, input, runOpts...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", s.runner.Name(), err)
	}

	out := state.Clone()
	out[s.opts.OutputKey] = resp.Output

	if s.opts.SessionKey != "" {
		out[s.opts.SessionKey] = resp.SessionID
	}

	return out, nil
}
