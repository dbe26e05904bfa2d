// Package endpoint provides the in-process model endpoint agents register
// with. It keeps one registration per endpoint id and forwards chat rounds to
// the wrapped model.Client with the registered instructions applied.
package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
)

// Options configures an Endpoint.
type Options struct {
	Logger logging.Logger
}

// Endpoint implements model.Client and model.Registrar.
type Endpoint struct {
	client model.Client
	logger logging.Logger

	mu   sync.RWMutex
	regs map[string]model.Registration
}

// New wraps client.
func New(client model.Client, optFns ...func(o *Options)) *Endpoint {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Endpoint{
		client: client,
		logger: opts.Logger,
		regs:   map[string]model.Registration{},
	}
}

// Register forwards reg to the wrapped client when it is a model.Registrar
// and then stores it, replacing any previous registration of the endpoint id.
func (e *Endpoint) Register(ctx context.Context, reg model.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if reg.EndpointID == "" {
		return fmt.Errorf("register agent %s: empty endpoint id", reg.AgentName)
	}

	reg.Tools = append([]model.ToolDefinition(nil), reg.Tools...)

	// A rejected forward leaves the previous registration in place.
	if r, ok := e.client.(model.Registrar); ok {
		if err := r.Register(ctx, reg); err != nil {
			return fmt.Errorf("forward registration: %w", err)
		}
	}

	e.mu.Lock()
	e.regs[reg.EndpointID] = reg
	e.mu.Unlock()

	e.logger.Info("endpoint.registered", "endpoint_id", reg.EndpointID, "agent", reg.AgentName, "tools", len(reg.Tools), "revision", reg.Revision)

	return nil
}

// Registration returns the current registration of an endpoint.
func (e *Endpoint) Registration(endpointID string) (model.Registration, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reg, ok := e.regs[endpointID]

	return reg, ok
}

// Chat validates the request against the registration and delegates.
func (e *Endpoint) Chat(ctx context.Context, req *model.Request) (*model.Response, error) {
	reg, ok := e.Registration(req.EndpointID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrEndpointNotFound, req.EndpointID)
	}

	if req.Revision != "" && req.Revision != reg.Revision {
		return nil, fmt.Errorf("%w: endpoint %s has revision %s, request has %s", core.ErrStaleRegistration, req.EndpointID, reg.Revision, req.Revision)
	}

	forwarded := *req
	forwarded.Instructions = reg.Instructions

	if len(forwarded.Tools) == 0 {
		forwarded.Tools = reg.Tools
	}

	return e.client.Chat(ctx, &forwarded)
}

// Info reports the wrapped client's info.
func (e *Endpoint) Info() model.Info { return e.client.Info() }
