package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// ScriptFunc computes a reply from the request. It is consulted once the
// scripted responses are exhausted.
type ScriptFunc func(ctx context.Context, req *Request) (*Response, error)

// MockClient is a scripted in-memory Client useful for tests and offline
// examples. Every request is recorded.
type MockClient struct {
	mu        sync.Mutex
	info      Info
	responses []*Response
	errs      []error
	script    ScriptFunc
	requests  []*Request
	regs      []Registration
}

// NewMockClient constructs a MockClient with tool support enabled.
func NewMockClient(name string) *MockClient {
	return &MockClient{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// AddResponse queues a scripted reply.
func (m *MockClient) AddResponse(resp *Response) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = append(m.responses, resp)
	m.errs = append(m.errs, nil)

	return m
}

// AddText queues a final text reply.
func (m *MockClient) AddText(text string) *MockClient {
	return m.AddResponse(&Response{Text: text, FinishReason: "stop"})
}

// AddActions queues a reply requesting the given tool actions.
func (m *MockClient) AddActions(actions ...core.RequiredAction) *MockClient {
	return m.AddResponse(&Response{Actions: actions, FinishReason: "tool_calls"})
}

// AddError queues a failing round.
func (m *MockClient) AddError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)

	return m
}

// SetScript installs a fallback used after the queue is exhausted.
func (m *MockClient) SetScript(fn ScriptFunc) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.script = fn

	return m
}

// Chat implements Client.
func (m *MockClient) Chat(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, errors.New("nil request")
	}

	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))

	if len(m.responses) > 0 {
		resp, err := m.responses[0], m.errs[0]
		m.responses, m.errs = m.responses[1:], m.errs[1:]
		m.mu.Unlock()

		if err != nil {
			return nil, err
		}

		c := *resp
		if c.Usage.TotalTokens == 0 {
			c.Usage = core.Usage{PromptTokens: len(req.Turns), CompletionTokens: 1, TotalTokens: len(req.Turns) + 1}
		}

		return &c, nil
	}

	script := m.script
	m.mu.Unlock()

	if script != nil {
		return script(ctx, req)
	}

	return &Response{Text: fmt.Sprintf("Mock response to: %s", lastUserText(req.Turns)), FinishReason: "stop"}, nil
}

// Register implements Registrar and records the registration.
func (m *MockClient) Register(_ context.Context, reg Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.regs = append(m.regs, reg)

	return nil
}

// Info implements Client.
func (m *MockClient) Info() Info { return m.info }

// Requests returns the recorded requests.
func (m *MockClient) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*Request(nil), m.requests...)
}

// Calls returns the number of Chat calls made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// Registrations returns the recorded registrations.
func (m *MockClient) Registrations() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Registration(nil), m.regs...)
}

func cloneRequest(req *Request) *Request {
	c := *req

	c.Turns = make([]core.Turn, len(req.Turns))
	for i, t := range req.Turns {
		c.Turns[i] = t.Clone()
	}

	c.Tools = append([]ToolDefinition(nil), req.Tools...)

	return &c
}

func lastUserText(turns []core.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == core.RoleUser {
			return turns[i].Text
		}
	}
	return ""
}
