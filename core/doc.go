// Package core defines the domain contracts shared by every agentkit
// package.
//
// The package is intentionally free of provider and storage details. It
// contains:
//   - Turn, RequiredAction and PerformedAction: the conversation record
//   - Session and SessionStore: multi-turn state and its persistence contract
//   - Response, Usage and FinishReason: the result of one agent run
//   - StepLimiter: the per-run round budget
//   - ToolContext: the surface handed to a tool invocation
//   - the error taxonomy (sentinels plus typed errors usable with errors.As)
package core
