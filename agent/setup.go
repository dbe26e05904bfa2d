package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// Setup pushes the agent's instructions and tool schemas to the model
// endpoint. It is idempotent: setting up an unchanged agent again returns
// nil without contacting the endpoint. Concurrent calls are serialized.
//
// Failures are reported as *core.SyncError.
func (a *Agent) Setup(ctx context.Context) error {
	a.setupMu.Lock()
	defer a.setupMu.Unlock()

	a.mu.RLock()
	gen := a.generation
	upToDate := a.readyGen == gen
	inst := a.instructions
	registry := a.registry
	endpointID := a.endpointID
	a.mu.RUnlock()

	if upToDate {
		return nil
	}

	start := time.Now()

	text, err := inst.Resolve(ctx)
	if err != nil {
		a.logger.Error("agent.setup.failed", "agent", a.name, "error", err)
		return &core.SyncError{Agent: a.name, Err: err}
	}

	defs := registry.Describe()
	revision := revisionOf(text, registry.Fingerprint())

	if r, ok := a.client.(model.Registrar); ok {
		reg := model.Registration{
			EndpointID:   endpointID,
			AgentName:    a.name,
			Instructions: text,
			Tools:        defs,
			Revision:     revision,
		}

		if err := r.Register(ctx, reg); err != nil {
			a.logger.Error("agent.setup.failed", "agent", a.name, "endpoint_id", endpointID, "error", err)
			return &core.SyncError{Agent: a.name, Err: err}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.generation != gen {
		// Mutated while syncing; the next Setup pushes the newer state.
		a.logger.Warn("agent.setup.superseded", "agent", a.name, "revision", revision)
		return nil
	}

	a.readyGen = gen
	a.resolved = text
	a.revision = revision
	a.toolDefs = defs
	a.readyTools = registry

	a.logger.Info("agent.setup.completed",
		"agent", a.name,
		"endpoint_id", endpointID,
		"revision", revision,
		"tools", len(defs),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Revision returns the revision of the last successful setup, or "".
func (a *Agent) Revision() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.revision
}

func revisionOf(instructions, toolsFingerprint string) string {
	h := sha256.New()
	h.Write([]byte(instructions))
	h.Write([]byte{0})
	h.Write([]byte(toolsFingerprint))

	return hex.EncodeToString(h.Sum(nil))[:16]
}
