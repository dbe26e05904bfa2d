package core

import (
	"context"

	"github.com/hupe1980/agentkit/logging"
)

// ToolContext is the surface handed to a tool invocation.
type ToolContext struct {
	ctx       context.Context
	actionID  string
	toolName  string
	sessionID string
	agentName string

	*loggerAdapter
}

// ToolContextOptions configures a ToolContext.
type ToolContextOptions struct {
	ActionID  string
	ToolName  string
	SessionID string
	AgentName string
	Logger    logging.Logger
}

// NewToolContext constructs a tool context bound to ctx.
func NewToolContext(ctx context.Context, optFns ...func(o *ToolContextOptions)) *ToolContext {
	opts := ToolContextOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &ToolContext{
		ctx:           ctx,
		actionID:      opts.ActionID,
		toolName:      opts.ToolName,
		sessionID:     opts.SessionID,
		agentName:     opts.AgentName,
		loggerAdapter: newLoggerAdapter(opts.Logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// ActionID returns the correlation id of the action being performed.
func (tc *ToolContext) ActionID() string { return tc.actionID }

// ToolName returns the name of the invoked tool.
func (tc *ToolContext) ToolName() string { return tc.toolName }

// SessionID returns the session of the run that invoked the tool.
func (tc *ToolContext) SessionID() string { return tc.sessionID }

// AgentName returns the name of the invoking agent.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// WithAction returns a copy bound to another action and tool.
func (tc *ToolContext) WithAction(actionID, toolName string) *ToolContext {
	c := *tc
	c.actionID = actionID
	c.toolName = toolName

	return &c
}
