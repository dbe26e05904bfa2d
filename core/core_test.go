package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_CloneIsDeep(t *testing.T) {
	s := NewSession("s1", "ep")
	s.Turns = append(s.Turns,
		NewUserTurn("hi"),
		NewAssistantTurn("", []RequiredAction{{ID: "a1", ToolName: "get_weather", Arguments: map[string]any{"location": "Berlin"}}}),
	)

	clone := s.Clone()
	require.NotSame(t, s, clone)

	clone.Turns[1].Actions[0].Arguments["location"] = "Paris"
	clone.Turns[0].Text = "changed"

	assert.Equal(t, "Berlin", s.Turns[1].Actions[0].Arguments["location"])
	assert.Equal(t, "hi", s.Turns[0].Text)
}

func TestSession_HistoryIsCopied(t *testing.T) {
	s := NewSession("s2", "ep")
	s.Turns = append(s.Turns, NewUserTurn("one"), NewUserTurn("two"))

	h := s.History()
	require.Len(t, h, 2)

	h[0].Text = "mutated"
	assert.Equal(t, "one", s.History()[0].Text)
	assert.Equal(t, 2, s.Len())
}

func TestStepLimiter(t *testing.T) {
	l := NewStepLimiter(2)

	require.NoError(t, l.Increment())
	assert.False(t, l.Exhausted())
	require.NoError(t, l.Increment())
	assert.True(t, l.Exhausted())
	assert.Equal(t, 0, l.Remaining())
	assert.Error(t, l.Increment())
	assert.Equal(t, 2, l.Count())
}

func TestStepLimiter_Unlimited(t *testing.T) {
	l := NewStepLimiter(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Increment())
	}

	assert.False(t, l.Exhausted())
	assert.Equal(t, -1, l.Remaining())
}

func TestUsage_Add(t *testing.T) {
	u := Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3}
	u.Add(Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30})

	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33}, u)
}

func TestResponse_Pretty(t *testing.T) {
	r := &Response{
		Output:       "72F in Berlin",
		FinishReason: FinishCompleted,
		SessionID:    "s1",
		Steps:        2,
		Usage:        Usage{TotalTokens: 42},
		Actions: []PerformedAction{
			{ActionID: "a1", ToolName: "get_weather", Output: "72"},
			{ActionID: "a2", ToolName: "broken", Error: "boom", Duration: time.Millisecond},
		},
	}

	out := r.Pretty()
	assert.True(t, strings.Contains(out, "Output: 72F in Berlin"))
	assert.Contains(t, out, "Finish reason: completed")
	assert.Contains(t, out, "total=42")
	assert.Contains(t, out, "broken (a2) failed: boom")
}

func TestToolError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("division by zero")
	err := NewToolError("divide", CodeExecutionError, "failed", cause)

	assert.ErrorIs(t, err, ErrToolExecution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidArguments)

	invalid := NewToolError("divide", CodeInvalidArguments, "missing b", nil).WithDetail("field", "b")
	assert.ErrorIs(t, invalid, ErrInvalidArguments)
	assert.Equal(t, "b", invalid.Details["field"])

	var te *ToolError
	wrapped := fmt.Errorf("outer: %w", invalid)
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, "divide", te.Tool)
}

func TestSyncAndRemoteErrors(t *testing.T) {
	cause := errors.New("unavailable")

	assert.ErrorIs(t, &SyncError{Agent: "a", Err: cause}, ErrSync)
	assert.ErrorIs(t, &SyncError{Agent: "a", Err: cause}, cause)

	remote := &RemoteError{Agent: "a", Step: 3, Err: cause}
	assert.ErrorIs(t, remote, ErrFatalRemote)
	assert.Contains(t, remote.Error(), "step 3")
}

func TestToolContext_Defaults(t *testing.T) {
	tc := NewToolContext(nil, func(o *ToolContextOptions) {
		o.SessionID = "s1"
		o.AgentName = "weather"
	})

	require.NotNil(t, tc.Context())
	require.NotNil(t, tc.Logger())
	assert.Equal(t, "s1", tc.SessionID())

	bound := tc.WithAction("a1", "get_weather")
	assert.Equal(t, "a1", bound.ActionID())
	assert.Equal(t, "get_weather", bound.ToolName())
	assert.Equal(t, "weather", bound.AgentName())
	assert.Empty(t, tc.ActionID())
}
