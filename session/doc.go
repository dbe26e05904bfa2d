// Package session houses concrete implementations of core.SessionStore.
// The interface itself lives in core so higher level packages never depend
// on concrete storage.
//
// InMemoryStore lives here; the postgres and mongo subpackages provide
// durable backends. Only the wiring layer (config, agentkit.FromConfig)
// decides which implementation to instantiate.
package session
