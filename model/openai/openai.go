// Package openai provides an implementation of model.Client using the OpenAI
// Chat Completions API with tool calling. It also serves Azure OpenAI
// deployments through the SDK's azure options.
package openai

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// Options configure the OpenAI client adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// RequestOptions are passed to the SDK client (base url, retries, ...).
	RequestOptions []option.RequestOption
}

// Client wraps the OpenAI Chat Completions API behind model.Client.
type Client struct {
	client *openai.Client
	opts   Options
}

// NewClient creates a client using the official SDK. The API key is read
// from OPENAI_API_KEY unless a request option overrides it.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	client := openai.NewClient(opts.RequestOptions...)

	return &Client{client: &client, opts: opts}
}

// NewClientFromSDK creates a client from an existing SDK client.
func NewClientFromSDK(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{client: client, opts: opts}
}

// AzureOptions configure an Azure OpenAI deployment.
type AzureOptions struct {
	Endpoint   string
	APIVersion string
	// APIKey selects key authentication; when empty the default Azure
	// credential chain (environment, managed identity, az login) is used.
	APIKey string
}

// NewAzureClient creates a client for an Azure OpenAI deployment. Model is
// the deployment name.
func NewAzureClient(azOpts AzureOptions, optFns ...func(o *Options)) (*Client, error) {
	if azOpts.Endpoint == "" {
		return nil, fmt.Errorf("azure openai endpoint is required")
	}

	if azOpts.APIVersion == "" {
		azOpts.APIVersion = "2024-10-21"
	}

	reqOpts := []option.RequestOption{azure.WithEndpoint(azOpts.Endpoint, azOpts.APIVersion)}

	if azOpts.APIKey != "" {
		reqOpts = append(reqOpts, azure.WithAPIKey(azOpts.APIKey))
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create azure credential: %w", err)
		}

		reqOpts = append(reqOpts, azure.WithTokenCredential(cred))
	}

	return NewClient(append(optFns, func(o *Options) {
		o.RequestOptions = append(reqOpts, o.RequestOptions...)
	})...), nil
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// Chat implements model.Client.
func (c *Client) Chat(ctx context.Context, req *model.Request) (*model.Response, error) {
	params := c.buildParams(req)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	ch0 := resp.Choices[0]

	out := &model.Response{
		Text:         ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: core.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	for _, tc := range ch0.Message.ToolCalls {
		out.Actions = append(out.Actions, model.NewRequiredAction(tc.ID, tc.Function.Name, tc.Function.Arguments))
	}

	return out, nil
}

// Info returns metadata describing this OpenAI client.
func (c *Client) Info() model.Info {
	return model.Info{
		Name:          c.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// buildMessages converts the conversation into chat messages. Tool results
// follow the assistant message that requested them.
func buildMessages(req *model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}

	for _, t := range req.Turns {
		switch t.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Text))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(t.Text))
		case core.RoleAssistant:
			if !t.HasActions() {
				messages = append(messages, openai.AssistantMessage(t.Text))
				continue
			}

			msg := &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: make([]openai.ChatCompletionMessageToolCallParam, 0, len(t.Actions)),
			}

			if t.Text != "" {
				msg.Content.OfString = openai.String(t.Text)
			}

			for _, a := range t.Actions {
				msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: a.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      a.ToolName,
						Arguments: model.EncodeArguments(a),
					},
				})
			}

			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: msg})
		case core.RoleTool:
			for _, r := range t.Results {
				messages = append(messages, openai.ToolMessage(model.EncodeOutput(r), r.ActionID))
			}
		}
	}

	return messages
}

// buildParams assembles the request parameters including tool definitions.
// Request sampling overrides the client defaults; top_k is not supported.
func (c *Client) buildParams(req *model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	s := req.Sampling
	if s.Temperature != nil {
		params.Temperature = openai.Float(*s.Temperature)
	}
	if s.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*s.MaxTokens))
	}
	if s.TopP != nil {
		params.TopP = openai.Float(*s.TopP)
	}
	if s.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*s.FrequencyPenalty)
	}

	if len(req.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}

	params.Tools = tools

	return params
}
