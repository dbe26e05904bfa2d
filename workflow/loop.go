package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/logging"
)

// DefaultMaxIterations bounds a Loop without an explicit limit.
const DefaultMaxIterations = 10

// LoopOptions configures a Loop.
type LoopOptions struct {
	MaxIterations int
	// Interval is waited between iterations.
	Interval time.Duration
	// Until stops the loop once it returns true for the latest state.
	Until  func(State) bool
	Logger logging.Logger
}

// Loop repeats a step, feeding each iteration the previous state.
type Loop struct {
	name string
	step Step
	opts LoopOptions
}

// NewLoop creates a loop around step.
func NewLoop(name string, step Step, optFns ...func(o *LoopOptions)) *Loop {
	opts := LoopOptions{MaxIterations: DefaultMaxIterations, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Loop{name: name, step: step, opts: opts}
}

// Name returns the loop name.
func (l *Loop) Name() string { return l.name }

// Execute implements Step.
func (l *Loop) Execute(ctx context.Context, state State) (State, error) {
	current := state.Clone()

	for i := 0; i < l.opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := l.step.Execute(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("loop iteration %d failed for step %s: %w", i+1, l.step.Name(), err)
		}

		current = next

		if l.opts.Until != nil && l.opts.Until(current) {
			l.opts.Logger.Debug("workflow.loop.done", "workflow", l.name, "iterations", i+1)
			return current, nil
		}

		if l.opts.Interval > 0 && i < l.opts.MaxIterations-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.opts.Interval):
			}
		}
	}

	l.opts.Logger.Debug("workflow.loop.exhausted", "workflow", l.name, "iterations", l.opts.MaxIterations)

	return current, nil
}
