// Package langchain adapts any langchaingo llms.Model (Ollama, Mistral,
// OpenAI-compatible servers, ...) to model.Client.
package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// Options configures the adapter.
type Options struct {
	// Name is reported by Info.
	Name     string
	Provider string
}

// Client wraps an llms.Model.
type Client struct {
	llm  llms.Model
	opts Options
}

// NewClient wraps llm.
func NewClient(llm llms.Model, optFns ...func(o *Options)) *Client {
	opts := Options{Name: "langchain", Provider: "langchain"}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{llm: llm, opts: opts}
}

// NewOllamaClient creates a client for a local Ollama server. An empty
// serverURL uses the library default.
func NewOllamaClient(modelName, serverURL string) (*Client, error) {
	ollamaOpts := []ollama.Option{ollama.WithModel(modelName)}
	if serverURL != "" {
		ollamaOpts = append(ollamaOpts, ollama.WithServerURL(serverURL))
	}

	llm, err := ollama.New(ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("ollama init: %w", err)
	}

	return NewClient(llm, func(o *Options) {
		o.Name = modelName
		o.Provider = "ollama"
	}), nil
}

// Chat implements model.Client.
func (c *Client) Chat(ctx context.Context, req *model.Request) (*model.Response, error) {
	resp, err := c.llm.GenerateContent(ctx, buildMessages(req), callOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("langchain generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	ch := resp.Choices[0]

	out := &model.Response{
		Text:         ch.Content,
		FinishReason: ch.StopReason,
		Usage:        usageFrom(ch.GenerationInfo),
	}

	for _, tc := range ch.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}

		out.Actions = append(out.Actions, model.NewRequiredAction(tc.ID, tc.FunctionCall.Name, tc.FunctionCall.Arguments))
	}

	return out, nil
}

// Info implements model.Client.
func (c *Client) Info() model.Info {
	return model.Info{Name: c.opts.Name, Provider: c.opts.Provider, SupportsTools: true}
}

func buildMessages(req *model.Request) []llms.MessageContent {
	var msgs []llms.MessageContent

	if req.Instructions != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.Instructions))
	}

	for _, t := range req.Turns {
		switch t.Role {
		case core.RoleSystem:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, t.Text))
		case core.RoleUser:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, t.Text))
		case core.RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if t.Text != "" {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: t.Text})
			}

			for _, a := range t.Actions {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   a.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      a.ToolName,
						Arguments: model.EncodeArguments(a),
					},
				})
			}

			msgs = append(msgs, mc)
		case core.RoleTool:
			for _, r := range t.Results {
				msgs = append(msgs, llms.MessageContent{
					Role: llms.ChatMessageTypeTool,
					Parts: []llms.ContentPart{llms.ToolCallResponse{
						ToolCallID: r.ActionID,
						Name:       r.ToolName,
						Content:    model.EncodeOutput(r),
					}},
				})
			}
		}
	}

	return msgs
}

func callOptions(req *model.Request) []llms.CallOption {
	var opts []llms.CallOption

	if len(req.Tools) > 0 {
		tools := make([]llms.Tool, len(req.Tools))
		for i, d := range req.Tools {
			tools[i] = llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        d.Function.Name,
					Description: d.Function.Description,
					Parameters:  d.Function.Parameters,
				},
			}
		}

		opts = append(opts, llms.WithTools(tools))
	}

	s := req.Sampling
	if s.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*s.Temperature))
	}
	if s.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*s.MaxTokens))
	}
	if s.TopP != nil {
		opts = append(opts, llms.WithTopP(*s.TopP))
	}
	if s.TopK != nil && *s.TopK > 0 {
		opts = append(opts, llms.WithTopK(*s.TopK))
	}
	if s.FrequencyPenalty != nil {
		opts = append(opts, llms.WithFrequencyPenalty(*s.FrequencyPenalty))
	}

	return opts
}

// usageFrom reads token counts from generation info. Backends report them
// under differing keys.
func usageFrom(info map[string]any) core.Usage {
	get := func(keys ...string) int {
		for _, k := range keys {
			switch v := info[k].(type) {
			case int:
				return v
			case int64:
				return int(v)
			case float64:
				return int(v)
			}
		}
		return 0
	}

	u := core.Usage{
		PromptTokens:     get("PromptTokens", "prompt_tokens", "input_tokens"),
		CompletionTokens: get("CompletionTokens", "completion_tokens", "output_tokens"),
		TotalTokens:      get("TotalTokens", "total_tokens"),
	}

	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}

	return u
}
