package workflow

import (
	"context"
	"fmt"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentkit/logging"
)

// Parallel runs independent steps concurrently, each on its own copy of the
// input state. Results are merged in step order, so on key conflicts the
// later step wins.
type Parallel struct {
	name   string
	steps  []Step
	logger logging.Logger
}

// NewParallel creates a parallel fan-out.
func NewParallel(name string, steps []Step, optFns ...func(o *Options)) *Parallel {
	opts := newOptions(optFns)
	return &Parallel{name: name, steps: steps, logger: opts.Logger}
}

// Name returns the workflow name.
func (p *Parallel) Name() string { return p.name }

// Execute implements Step. The first failure cancels the remaining steps.
func (p *Parallel) Execute(ctx context.Context, state State) (State, error) {
	results := make([]State, len(p.steps))

	g, gctx := errgroup.WithContext(ctx)

	for i, step := range p.steps {
		g.Go(func() error {
			out, err := step.Execute(gctx, state.Clone())
			if err != nil {
				return fmt.Errorf("parallel execution failed for step %s: %w", step.Name(), err)
			}

			results[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Error("workflow.parallel.failed", "workflow", p.name, "error", err)
		return nil, err
	}

	merged := state.Clone()
	for _, r := range results {
		maps.Copy(merged, r)
	}

	p.logger.Info("workflow.parallel.completed", "workflow", p.name, "steps", len(p.steps))

	return merged, nil
}
