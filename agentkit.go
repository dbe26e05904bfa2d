// Package agentkit wires a shared model endpoint, session store and logger
// into a Kit from which agents are created.
//
// Quick start:
//
//	kit, _ := agentkit.New(func(o *agentkit.Options) {
//		o.Client = openai.NewClient()
//	})
//	researcher, _ := kit.NewAgent("Researcher", func(o *agent.Options) {
//		o.Instructions = agent.NewInstructionFromText("You find trending topics.")
//		o.Tools = []tool.Registrable{trendsTool}
//	})
//	_ = researcher.Setup(ctx)
//	resp, _ := researcher.Run(ctx, "What is trending in AI?")
//	fmt.Println(resp.Pretty())
package agentkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/config"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/endpoint"
	"github.com/hupe1980/agentkit/httpapi"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/session"
)

// Options configures a Kit.
type Options struct {
	// Client is the model service. Defaults to a MockClient.
	Client model.Client
	// SessionStore defaults to an in-memory store.
	SessionStore core.SessionStore
	// Sampling and MaxSteps are the defaults for agents created by the kit.
	Sampling model.Sampling
	MaxSteps int
	Logger   logging.Logger
}

// Kit holds the collaborators shared by its agents.
type Kit struct {
	endpoint *endpoint.Endpoint
	sessions core.SessionStore
	logger   logging.Logger
	opts     Options

	mu      sync.RWMutex
	agents  map[string]*agent.Agent
	closers []config.CloseFunc
}

// New creates a Kit.
func New(optFns ...func(o *Options)) *Kit {
	opts := Options{
		MaxSteps: agent.DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Client == nil {
		opts.Client = model.NewMockClient("mock")
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	return &Kit{
		endpoint: endpoint.New(opts.Client, func(o *endpoint.Options) { o.Logger = opts.Logger }),
		sessions: opts.SessionStore,
		logger:   opts.Logger,
		opts:     opts,
		agents:   map[string]*agent.Agent{},
	}
}

// FromConfig builds a Kit from configuration: logger, model client and
// session store. Close releases what it opened.
func FromConfig(ctx context.Context, cfg config.Config, optFns ...func(o *Options)) (*Kit, error) {
	logger := cfg.NewLogger()

	client, err := cfg.NewModelClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	store, closeStore, err := cfg.NewSessionStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	kit := New(append([]func(o *Options){func(o *Options) {
		o.Client = client
		o.SessionStore = store
		o.Sampling = cfg.Sampling
		o.Logger = logger
	}}, optFns...)...)

	kit.closers = append(kit.closers, closeStore)

	if c, ok := client.(interface{ Close() error }); ok {
		kit.closers = append(kit.closers, func(context.Context) error { return c.Close() })
	}

	logger.Info("agentkit.configured",
		"provider", cfg.Provider,
		"model", client.Info().Name,
		"session_store", cfg.SessionStore,
	)

	return kit, nil
}

// NewAgent creates an agent bound to the kit's endpoint and session store.
// Kit defaults are applied before optFns.
func (k *Kit) NewAgent(name string, optFns ...func(o *agent.Options)) (*agent.Agent, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.agents[name]; exists {
		return nil, fmt.Errorf("agent %s already exists", name)
	}

	defaults := func(o *agent.Options) {
		o.Sampling = k.opts.Sampling
		o.MaxSteps = k.opts.MaxSteps
		o.Logger = k.logger
	}

	a, err := agent.New(name, k.endpoint, k.sessions, append([]func(o *agent.Options){defaults}, optFns...)...)
	if err != nil {
		return nil, err
	}

	k.agents[name] = a

	return a, nil
}

// Agent returns a previously created agent.
func (k *Kit) Agent(name string) (*agent.Agent, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	a, ok := k.agents[name]

	return a, ok
}

// Agents returns all agents sorted by name.
func (k *Kit) Agents() []*agent.Agent {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]*agent.Agent, 0, len(k.agents))
	for _, a := range k.agents {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })

	return out
}

// Setup sets up every agent of the kit.
func (k *Kit) Setup(ctx context.Context) error {
	var errs []error

	for _, a := range k.Agents() {
		if err := a.Setup(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Handler returns an HTTP handler serving the kit's agents.
func (k *Kit) Handler() http.Handler {
	return httpapi.NewServer(k.Agents(), func(o *httpapi.Options) { o.Logger = k.logger })
}

// Client returns the model client behind the endpoint.
func (k *Kit) Client() model.Client { return k.opts.Client }

// Endpoint returns the shared endpoint.
func (k *Kit) Endpoint() *endpoint.Endpoint { return k.endpoint }

// SessionStore returns the shared session store.
func (k *Kit) SessionStore() core.SessionStore { return k.sessions }

// Logger returns the kit's logger.
func (k *Kit) Logger() logging.Logger { return k.logger }

// Close releases resources opened by FromConfig.
func (k *Kit) Close(ctx context.Context) error {
	k.mu.Lock()
	closers := k.closers
	k.closers = nil
	k.mu.Unlock()

	var errs []error

	for _, c := range closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
