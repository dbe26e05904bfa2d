package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

func TestBuildMessages_ToolResultsInUserMessage(t *testing.T) {
	turns := []core.Turn{
		core.NewUserTurn("2+3?"),
		core.NewAssistantTurn("", []core.RequiredAction{{ID: "tu_1", ToolName: "add", Arguments: map[string]any{"a": 2, "b": 3}}}),
		core.NewToolTurn([]core.PerformedAction{{ActionID: "tu_1", ToolName: "add", Output: 5.0}}),
	}

	msgs := buildMessages(turns)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
	require.Len(t, msgs[2].Content, 1)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "tu_1", msgs[2].Content[0].OfToolResult.ToolUseID)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{
		model.NewToolDefinition("get_weather", "Get weather", map[string]any{
			"type":       "object",
			"properties": map[string]any{"location": map[string]any{"type": "string"}},
			"required":   []any{"location"},
		}),
	})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "get_weather", tools[0].OfTool.Name)
	assert.Equal(t, []string{"location"}, tools[0].OfTool.InputSchema.Required)
}

func TestClient_Info(t *testing.T) {
	c := NewClient(func(o *Options) { o.APIKey = "test" })
	assert.Equal(t, "anthropic", c.Info().Provider)
}
