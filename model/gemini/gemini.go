// Package gemini provides a model.Client for Google Gemini using function
// calling from github.com/google/generative-ai-go.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/model"
)

// Options configures the Gemini adapter.
type Options struct {
	Model string
	// APIKey defaults to GOOGLE_API_KEY, then GEMINI_API_KEY.
	APIKey        string
	ClientOptions []option.ClientOption
}

// Client wraps a genai client behind model.Client.
type Client struct {
	client *genai.Client
	opts   Options
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{Model: "gemini-1.5-flash"}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	clientOpts := append([]option.ClientOption(nil), opts.ClientOptions...)

	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	} else if len(clientOpts) == 0 {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	return &Client{client: client, opts: opts}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.client.Close() }

// Chat implements model.Client.
func (c *Client) Chat(ctx context.Context, req *model.Request) (*model.Response, error) {
	gm := c.client.GenerativeModel(c.opts.Model)

	if req.Instructions != "" {
		gm.SystemInstruction = genai.NewUserContent(genai.Text(req.Instructions))
	}

	s := req.Sampling
	if s.Temperature != nil {
		gm.SetTemperature(float32(*s.Temperature))
	}
	if s.TopP != nil {
		gm.SetTopP(float32(*s.TopP))
	}
	if s.TopK != nil && *s.TopK > 0 {
		gm.SetTopK(int32(*s.TopK))
	}
	if s.MaxTokens != nil {
		gm.SetMaxOutputTokens(int32(*s.MaxTokens))
	}

	if len(req.Tools) > 0 {
		gm.Tools = []*genai.Tool{buildTool(req.Tools)}
	}

	contents := buildContents(req.Turns)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no contents provided")
	}

	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	cand := resp.Candidates[0]

	out := &model.Response{FinishReason: cand.FinishReason.String()}

	if um := resp.UsageMetadata; um != nil {
		out.Usage = core.Usage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}

	for _, p := range cand.Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			out.Text += string(v)
		case genai.FunctionCall:
			raw, _ := json.Marshal(v.Args)
			out.Actions = append(out.Actions, model.NewRequiredAction("", v.Name, string(raw)))
		}
	}

	return out, nil
}

// Info returns metadata describing this Gemini client.
func (c *Client) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "gemini", SupportsTools: true}
}

// buildContents maps turns to Gemini contents. Function calls carry no ids,
// so results are matched by name in emission order.
func buildContents(turns []core.Turn) []*genai.Content {
	var contents []*genai.Content

	for _, t := range turns {
		switch t.Role {
		case core.RoleUser, core.RoleSystem:
			if t.Text != "" {
				contents = append(contents, genai.NewUserContent(genai.Text(t.Text)))
			}
		case core.RoleAssistant:
			c := &genai.Content{Role: "model"}
			if t.Text != "" {
				c.Parts = append(c.Parts, genai.Text(t.Text))
			}

			for _, a := range t.Actions {
				c.Parts = append(c.Parts, genai.FunctionCall{Name: a.ToolName, Args: a.Arguments})
			}

			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}
		case core.RoleTool:
			c := &genai.Content{Role: "function"}
			for _, r := range t.Results {
				c.Parts = append(c.Parts, genai.FunctionResponse{Name: r.ToolName, Response: responseMap(r)})
			}

			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}
		}
	}

	return contents
}

func responseMap(r core.PerformedAction) map[string]any {
	if r.Failed() {
		return map[string]any{"error": r.Error}
	}

	if m, ok := r.Output.(map[string]any); ok {
		return m
	}

	return map[string]any{"result": model.EncodeOutput(r)}
}

func buildTool(defs []model.ToolDefinition) *genai.Tool {
	tool := &genai.Tool{}

	for _, d := range defs {
		tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
			Name:        d.Function.Name,
			Description: d.Function.Description,
			Parameters:  toSchema(d.Function.Parameters),
		})
	}

	return tool
}

// toSchema converts a JSON schema map into a genai schema.
func toSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	s := &genai.Schema{}

	switch m["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
	}

	if d, ok := m["description"].(string); ok {
		s.Description = d
	}

	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			s.Enum = append(s.Enum, fmt.Sprintf("%v", e))
		}
	}

	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}

	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = toSchema(pm)
			}
		}
	}

	s.Required = util.RequiredFields(m)

	return s
}
