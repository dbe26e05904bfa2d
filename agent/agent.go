package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/tool"
)

// DefaultMaxSteps is the round budget used when neither the agent nor the
// run sets one.
const DefaultMaxSteps = 8

// Options configures an Agent.
//
// Use functional options with New to override defaults.
type Options struct {
	// Instructions are the system instructions pushed on setup.
	Instructions Instruction
	// Description is shown when the agent is exposed as a tool.
	Description string
	// EndpointID names the remote agent configuration. Defaults to the agent name.
	EndpointID string
	// Tools are registered at construction time.
	Tools []tool.Registrable
	// MaxSteps is the default round budget of a run. Values <= 0 fall back
	// to DefaultMaxSteps; a run is never unbounded.
	MaxSteps int
	// MaxParallelTools bounds concurrent tool execution within a round.
	// Zero or less runs every action of a round at once.
	MaxParallelTools int
	// Sampling holds default generation parameters.
	Sampling model.Sampling
	Logger   logging.Logger
}

// Agent is a named, configured participant that converses with a model
// service and executes tools on its behalf.
type Agent struct {
	name     string
	client   model.Client
	sessions core.SessionStore

	// setupMu serializes Setup so at most one sync is in flight.
	setupMu sync.Mutex

	mu               sync.RWMutex
	description      string
	endpointID       string
	instructions     Instruction
	registry         *tool.Registry
	maxSteps         int
	maxParallelTools int
	sampling         model.Sampling
	logger           logging.Logger

	// generation is bumped by every mutation; readyGen is the generation
	// the endpoint last accepted.
	generation uint64
	readyGen   uint64
	resolved   string
	revision   string
	toolDefs   []model.ToolDefinition
	readyTools *tool.Registry
}

// New creates an agent bound to a model client and a session store.
func New(name string, client model.Client, sessions core.SessionStore, optFns ...func(o *Options)) (*Agent, error) {
	if name == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	if client == nil {
		return nil, fmt.Errorf("agent %s: model client is required", name)
	}

	if sessions == nil {
		return nil, fmt.Errorf("agent %s: session store is required", name)
	}

	opts := Options{
		EndpointID: name,
		MaxSteps:   DefaultMaxSteps,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}

	registry := tool.NewRegistry()
	if err := registry.Register(opts.Tools...); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	return &Agent{
		name:             name,
		client:           client,
		sessions:         sessions,
		description:      opts.Description,
		endpointID:       opts.EndpointID,
		instructions:     opts.Instructions,
		registry:         registry,
		maxSteps:         opts.MaxSteps,
		maxParallelTools: opts.MaxParallelTools,
		sampling:         opts.Sampling,
		logger:           opts.Logger,
		generation:       1,
	}, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.description
}

// EndpointID returns the endpoint the agent is bound to.
func (a *Agent) EndpointID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.endpointID
}

// ToolNames returns the registered tool names in registration order.
func (a *Agent) ToolNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.registry.Names()
}

// Ready reports whether the current configuration has been set up.
func (a *Agent) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.readyGen == a.generation
}

// SetInstructions replaces the instructions. The agent must be set up again
// before the next run.
func (a *Agent) SetInstructions(inst Instruction) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.instructions = inst
	a.generation++
}

// AddTools registers additional tools or toolkits. Either all are added or,
// on a name collision, none is. The agent must be set up again before the
// next run.
func (a *Agent) AddTools(items ...tool.Registrable) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Runs in flight keep the registry they snapshotted.
	next := tool.NewRegistry()
	for _, t := range a.registry.Tools() {
		if err := next.Register(t); err != nil {
			return err
		}
	}

	if err := next.Register(items...); err != nil {
		return fmt.Errorf("agent %s: %w", a.name, err)
	}

	a.registry = next
	a.generation++

	return nil
}

// DeleteSession removes one of the agent's sessions. Unknown ids and
// sessions of other endpoints fail with core.ErrSessionNotFound.
func (a *Agent) DeleteSession(ctx context.Context, id string) error {
	if _, _, err := a.openSession(ctx, a.EndpointID(), id); err != nil {
		return err
	}

	if err := a.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("agent %s: delete session %s: %w", a.name, id, err)
	}

	a.logger.Info("agent.session.deleted", "agent", a.name, "session_id", id)

	return nil
}

type snapshot struct {
	endpointID       string
	instructions     string
	revision         string
	tools            []model.ToolDefinition
	registry         *tool.Registry
	maxSteps         int
	maxParallelTools int
	sampling         model.Sampling
}

func (a *Agent) snapshot() (snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.readyGen != a.generation {
		return snapshot{}, fmt.Errorf("agent %s: %w", a.name, core.ErrSetupRequired)
	}

	return snapshot{
		endpointID:       a.endpointID,
		instructions:     a.resolved,
		revision:         a.revision,
		tools:            a.toolDefs,
		registry:         a.readyTools,
		maxSteps:         a.maxSteps,
		maxParallelTools: a.maxParallelTools,
		sampling:         a.sampling,
	}, nil
}
