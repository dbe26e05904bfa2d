package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateToolName is returned when a tool name is registered twice.
	ErrDuplicateToolName = errors.New("duplicate tool name")

	// ErrInvalidArguments is returned when tool arguments do not match the
	// declared parameter schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrToolExecution is the root of every tool failure. Tool failures are
	// never fatal for a run; they are reported back to the model.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrSync is returned when agent setup could not be pushed to the endpoint.
	ErrSync = errors.New("agent sync failed")

	// ErrSessionNotFound is returned for unknown, deleted or foreign session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFatalRemote is returned when the model service fails during a run.
	ErrFatalRemote = errors.New("fatal remote error")

	// ErrSetupRequired is returned by Run when the agent was never set up or
	// was mutated since the last successful setup.
	ErrSetupRequired = errors.New("agent setup required")

	// ErrEndpointNotFound is returned when a request targets an endpoint with
	// no registration.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrStaleRegistration is returned when a request revision does not match
	// the endpoint's current registration.
	ErrStaleRegistration = errors.New("stale registration")
)

// Tool error codes.
const (
	CodeUnknownTool      = "UNKNOWN_TOOL"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeExecutionError   = "EXECUTION_ERROR"
	CodePanic            = "PANIC"
)

// ToolError carries structured information about a failed tool invocation.
type ToolError struct {
	Tool    string
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// NewToolError creates a ToolError. err may be nil.
func NewToolError(tool, code, message string, err error) *ToolError {
	return &ToolError{
		Tool:    tool,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetail attaches a detail key and returns the error for chaining.
func (e *ToolError) WithDetail(key string, value any) *ToolError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}

	e.Details[key] = value

	return e
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s [%s]: %s", e.Tool, e.Code, e.Message)
}

// Unwrap exposes ErrToolExecution and, when present, the cause. Argument
// failures additionally match ErrInvalidArguments.
func (e *ToolError) Unwrap() []error {
	errs := []error{ErrToolExecution}
	if e.Code == CodeInvalidArguments {
		errs = append(errs, ErrInvalidArguments)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// SyncError reports a failed setup push for an agent.
type SyncError struct {
	Agent string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync agent %s: %v", e.Agent, e.Err)
}

func (e *SyncError) Unwrap() []error { return []error{ErrSync, e.Err} }

// RemoteError reports a failed model round.
type RemoteError struct {
	Agent string
	Step  int
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("agent %s: remote call failed at step %d: %v", e.Agent, e.Step, e.Err)
}

func (e *RemoteError) Unwrap() []error { return []error{ErrFatalRemote, e.Err} }
