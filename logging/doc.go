// Package logging provides a minimal logging interface and adapters for agentkit.
//
// The Logger interface defines the logging methods (Debug, Info, Warn, Error)
// that agents, tools and providers use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - KitLogger with json, text and colored tint output plus domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "tint", false)
//	a := agent.New("assistant", client, sessions, func(o *agent.Options) { o.Logger = logger })
package logging
