// Package workflow composes agents and plain functions into deterministic
// multi-step pipelines.
//
// A Step transforms a State. Sequential runs steps one after another,
// Parallel fans out independent steps and merges their states, and Loop
// repeats a step until a condition holds. AgentStep renders a prompt from the
// state with text/template, runs an agent and stores its output back into the
// state.
package workflow
