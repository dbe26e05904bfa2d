package core

import (
	"fmt"
	"sync"
)

// StepLimiter enforces the maximum number of model rounds of a run.
type StepLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewStepLimiter creates a limiter allowing max rounds.
// If max <= 0, unlimited rounds are allowed.
func NewStepLimiter(max int) *StepLimiter {
	return &StepLimiter{max: max}
}

// Increment counts one round and returns an error if the budget is exceeded.
func (l *StepLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("exceeded max steps: %d", l.max)
	}

	l.count++

	return nil
}

// Exhausted reports whether no further round is allowed.
func (l *StepLimiter) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.max > 0 && l.count >= l.max
}

// Count returns the number of rounds taken.
func (l *StepLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Max returns the configured budget.
func (l *StepLimiter) Max() int { return l.max }

// Remaining returns how many rounds are left, or -1 when unlimited.
func (l *StepLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max <= 0 {
		return -1 // unlimited
	}

	return l.max - l.count
}
