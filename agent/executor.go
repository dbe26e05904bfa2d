package agent

import (
	"context"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/tool"
)

// executor runs the tool actions of one round.
type executor struct {
	registry    *tool.Registry
	maxParallel int
	logger      logging.Logger
	agentName   string
	sessionID   string
}

// execute performs every action and returns the results in action order.
// Failures are captured per action; execute itself never fails.
func (e *executor) execute(ctx context.Context, actions []core.RequiredAction) []core.PerformedAction {
	start := time.Now()
	results := make([]core.PerformedAction, len(actions))

	base := core.NewToolContext(ctx, func(o *core.ToolContextOptions) {
		o.SessionID = e.sessionID
		o.AgentName = e.agentName
		o.Logger = e.logger
	})

	var g errgroup.Group
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}

	for i, action := range actions {
		g.Go(func() error {
			e.logger.Debug("agent.function.start", "agent", e.agentName, "function", action.ToolName, "action_id", action.ID)

			pa := e.registry.Perform(base, action)
			results[i] = pa

			e.logger.Debug("agent.function.executed",
				"agent", e.agentName,
				"function", action.ToolName,
				"action_id", action.ID,
				"failed", pa.Failed(),
				"duration_ms", pa.Duration.Milliseconds(),
			)

			return nil
		})
	}

	_ = g.Wait()

	failed := lo.CountBy(results, func(p core.PerformedAction) bool { return p.Failed() })

	e.logger.Info("agent.functions.batch.complete",
		"agent", e.agentName,
		"count", len(actions),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results
}
