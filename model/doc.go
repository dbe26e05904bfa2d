// Package model defines the provider-agnostic abstractions for talking to a
// model service.
//
// Core goals:
//   - A single synchronous Chat call per orchestration round
//   - Normalized tool definitions and tool requests (core.RequiredAction)
//   - Opaque sampling parameters passed through to the provider
//   - A Registrar channel through which agents push their configuration
//   - Lightweight scripted mocking for tests (MockClient)
//
// Providers live in subpackages (openai, anthropic, gemini, langchain) so
// agents stay decoupled from vendor SDKs.
package model
