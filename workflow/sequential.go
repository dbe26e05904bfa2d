package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/logging"
)

// Options configures composite steps.
type Options struct {
	Logger logging.Logger
}

func newOptions(optFns []func(o *Options)) Options {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return opts
}

// Sequential runs its steps in order, feeding each step the state produced
// by the previous one. It stops at the first error.
type Sequential struct {
	name   string
	steps  []Step
	logger logging.Logger
}

// NewSequential creates a sequential workflow.
func NewSequential(name string, steps []Step, optFns ...func(o *Options)) *Sequential {
	opts := newOptions(optFns)
	return &Sequential{name: name, steps: steps, logger: opts.Logger}
}

// Name returns the workflow name.
func (s *Sequential) Name() string { return s.name }

// Execute implements Step.
func (s *Sequential) Execute(ctx context.Context, state State) (State, error) {
	current := state.Clone()

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()

		s.logger.Debug("workflow.step.start", "workflow", s.name, "step", step.Name(), "index", i)

		next, err := step.Execute(ctx, current)
		if err != nil {
			s.logger.Error("workflow.step.failed", "workflow", s.name, "step", step.Name(), "error", err)
			return nil, fmt.Errorf("sequential execution failed at step %s: %w", step.Name(), err)
		}

		s.logger.Info("workflow.step.completed",
			"workflow", s.name,
			"step", step.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		current = next
	}

	return current, nil
}

// Run executes the workflow from an initial state.
func (s *Sequential) Run(ctx context.Context, initial State) (State, error) {
	return s.Execute(ctx, initial)
}
