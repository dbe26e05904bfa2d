package core

import (
	"fmt"
	"strings"
)

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// FinishReason explains why a run ended.
type FinishReason string

const (
	FinishCompleted         FinishReason = "completed"
	FinishStepLimitReached  FinishReason = "step-limit-reached"
	FinishToolErrorTerminal FinishReason = "tool-error-terminal"
	FinishOther             FinishReason = "other"
)

// Response is the result of one agent run.
type Response struct {
	Output       string            `json:"output"`
	FinishReason FinishReason      `json:"finish_reason"`
	Usage        Usage             `json:"usage"`
	SessionID    string            `json:"session_id"`
	Steps        int               `json:"steps"`
	Actions      []PerformedAction `json:"actions,omitempty"`
}

// Pretty renders the response for terminal output.
func (r *Response) Pretty() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Output: %s\n", r.Output)
	fmt.Fprintf(&b, "Finish reason: %s\n", r.FinishReason)
	fmt.Fprintf(&b, "Session: %s\n", r.SessionID)
	fmt.Fprintf(&b, "Steps: %d\n", r.Steps)
	fmt.Fprintf(&b, "Tokens: prompt=%d completion=%d total=%d\n",
		r.Usage.PromptTokens, r.Usage.CompletionTokens, r.Usage.TotalTokens)

	for _, a := range r.Actions {
		if a.Failed() {
			fmt.Fprintf(&b, "  - %s (%s) failed: %s\n", a.ToolName, a.ActionID, a.Error)
			continue
		}

		fmt.Fprintf(&b, "  - %s (%s) -> %v\n", a.ToolName, a.ActionID, a.Output)
	}

	return b.String()
}
