package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
)

// RunOptions configures a single run.
type RunOptions struct {
	// SessionID continues an existing session. Empty starts a new one.
	SessionID string
	// MaxSteps overrides the agent's round budget. Zero keeps the agent default.
	MaxSteps int
	// OnFulfilledRequiredAction observes every executed tool action.
	OnFulfilledRequiredAction FulfilledRequiredActionHook
	// OnInvokedRemoteService observes every successful model round.
	OnInvokedRemoteService InvokedRemoteServiceHook
	// Sampling overrides the agent's generation parameters for this run.
	Sampling model.Sampling
	// StopOnToolError ends the run after a round in which any tool failed,
	// with finish reason tool-error-terminal. By default failures are fed
	// back to the model.
	StopOnToolError bool
}

type state int

const (
	stateAwaitingModel state = iota
	stateModelResponded
	stateExecutingTools
	stateDone
)

func (s state) String() string {
	switch s {
	case stateAwaitingModel:
		return "AWAITING_MODEL"
	case stateModelResponded:
		return "MODEL_RESPONDED"
	case stateExecutingTools:
		return "EXECUTING_TOOLS"
	case stateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Run sends input to the agent and drives the model/tool loop until the
// model answers without requesting tools or the round budget is spent.
//
// Errors: core.ErrSetupRequired if the agent is not set up for its current
// configuration, core.ErrSessionNotFound for an unknown or foreign session,
// *core.RemoteError when the model service fails. Tool failures never abort
// a run.
func (a *Agent) Run(ctx context.Context, input string, optFns ...func(o *RunOptions)) (*core.Response, error) {
	opts := RunOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	snap, err := a.snapshot()
	if err != nil {
		return nil, err
	}

	maxSteps := snap.maxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}

	sessionID, history, err := a.openSession(ctx, snap.endpointID, opts.SessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	a.logger.Info("agent.run.start",
		"agent", a.name,
		"session_id", sessionID,
		"max_steps", maxSteps,
		"revision", snap.revision,
	)

	r := &run{
		agent:     a,
		snap:      snap,
		opts:      opts,
		sessionID: sessionID,
		limiter:   core.NewStepLimiter(maxSteps),
		turns:     history,
		exec: &executor{
			registry:    snap.registry,
			maxParallel: snap.maxParallelTools,
			logger:      a.logger,
			agentName:   a.name,
			sessionID:   sessionID,
		},
		sampling: opts.Sampling.Merge(snap.sampling),
	}

	resp, err := r.loop(ctx, input)

	if err != nil {
		if opts.SessionID == "" && !r.persisted {
			a.discardSession(ctx, sessionID)
		}

		a.logger.Error("agent.run.failed",
			"agent", a.name,
			"session_id", sessionID,
			"steps", r.limiter.Count(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)

		return nil, err
	}

	a.logger.Info("agent.run.completed",
		"agent", a.name,
		"session_id", sessionID,
		"steps", resp.Steps,
		"finish_reason", resp.FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

// openSession resolves the session for a run. Sessions of another endpoint
// are reported as not found.
func (a *Agent) openSession(ctx context.Context, endpointID, id string) (string, []core.Turn, error) {
	if id == "" {
		newID, err := a.sessions.Create(ctx, endpointID)
		if err != nil {
			return "", nil, fmt.Errorf("agent %s: create session: %w", a.name, err)
		}

		return newID, nil, nil
	}

	sess, err := a.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return "", nil, fmt.Errorf("agent %s: session %s: %w", a.name, id, core.ErrSessionNotFound)
		}

		return "", nil, fmt.Errorf("agent %s: load session %s: %w", a.name, id, err)
	}

	if sess.EndpointID != "" && sess.EndpointID != endpointID {
		return "", nil, fmt.Errorf("agent %s: session %s: %w", a.name, id, core.ErrSessionNotFound)
	}

	return sess.ID, sess.History(), nil
}

// discardSession removes a session created by a run that failed before
// persisting any turn. The caller never learned its id.
func (a *Agent) discardSession(ctx context.Context, id string) {
	if err := a.sessions.Delete(context.WithoutCancel(ctx), id); err != nil {
		a.logger.Warn("agent.session.discard_failed", "agent", a.name, "session_id", id, "error", err)
		return
	}

	a.logger.Debug("agent.session.discarded", "agent", a.name, "session_id", id)
}

// run holds the state of one invocation of the loop.
type run struct {
	agent     *Agent
	snap      snapshot
	opts      RunOptions
	sessionID string
	limiter   *core.StepLimiter
	exec      *executor
	sampling  model.Sampling

	state state
	// turns is the full conversation sent to the model; pending holds the
	// turns of the current round not yet persisted.
	turns     []core.Turn
	pending   []core.Turn
	persisted bool
}

func (r *run) transition(to state) {
	r.agent.logger.Debug("agent.state.transition",
		"agent", r.agent.name,
		"session_id", r.sessionID,
		"from", r.state.String(),
		"to", to.String(),
		"step", r.limiter.Count(),
	)

	r.state = to
}

func (r *run) record(t core.Turn) {
	r.turns = append(r.turns, t)
	r.pending = append(r.pending, t)
}

// flush persists the pending turns atomically.
func (r *run) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	if err := r.agent.sessions.Append(ctx, r.sessionID, r.pending...); err != nil {
		return fmt.Errorf("agent %s: persist session %s: %w", r.agent.name, r.sessionID, err)
	}

	r.pending = nil
	r.persisted = true

	return nil
}

func (r *run) loop(ctx context.Context, input string) (*core.Response, error) {
	out := &core.Response{SessionID: r.sessionID}

	r.state = stateAwaitingModel
	r.record(core.NewUserTurn(input))

	var partial string

	for {
		if err := r.limiter.Increment(); err != nil {
			// Budget spent while the model still wanted tools.
			r.transition(stateDone)

			out.Output = partial
			out.FinishReason = core.FinishStepLimitReached
			out.Steps = r.limiter.Count()

			r.agent.logger.Warn("agent.run.step_limit",
				"agent", r.agent.name,
				"session_id", r.sessionID,
				"max_steps", r.limiter.Max(),
			)

			return out, nil
		}

		step := r.limiter.Count()

		req := &model.Request{
			EndpointID:   r.snap.endpointID,
			SessionID:    r.sessionID,
			Revision:     r.snap.revision,
			Instructions: r.snap.instructions,
			Turns:        cloneTurns(r.turns),
			Tools:        r.snap.tools,
			Sampling:     r.sampling,
		}

		start := time.Now()

		resp, err := r.agent.client.Chat(ctx, req)
		if err != nil {
			r.agent.logger.Error("model.call.failed",
				"agent", r.agent.name,
				"step", step,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)

			// Completed rounds are already persisted; the failed round is dropped.
			return nil, &core.RemoteError{Agent: r.agent.name, Step: step, Err: err}
		}

		r.agent.logger.Debug("model.call.completed",
			"agent", r.agent.name,
			"step", step,
			"actions", len(resp.Actions),
			"tokens", resp.Usage.TotalTokens,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		r.transition(stateModelResponded)

		out.Usage.Add(resp.Usage)

		if r.opts.OnInvokedRemoteService != nil {
			callHook(r.agent.logger, r.agent.name, "OnInvokedRemoteService", func() {
				r.opts.OnInvokedRemoteService(req, resp)
			})
		}

		if resp.Text != "" {
			partial = resp.Text
		}

		r.record(core.NewAssistantTurn(resp.Text, resp.Actions))

		if !resp.HasActions() {
			if err := r.flush(ctx); err != nil {
				return nil, err
			}

			r.transition(stateDone)

			out.Output = resp.Text
			out.FinishReason = finishReasonOf(resp.FinishReason)
			out.Steps = step

			return out, nil
		}

		r.transition(stateExecutingTools)

		results := r.exec.execute(ctx, resp.Actions)

		if r.opts.OnFulfilledRequiredAction != nil {
			for i, pa := range results {
				callHook(r.agent.logger, r.agent.name, "OnFulfilledRequiredAction", func() {
					r.opts.OnFulfilledRequiredAction(resp.Actions[i], pa)
				})
			}
		}

		out.Actions = append(out.Actions, results...)
		r.record(core.NewToolTurn(results))

		if err := r.flush(ctx); err != nil {
			return nil, err
		}

		if r.opts.StopOnToolError && lo.SomeBy(results, func(p core.PerformedAction) bool { return p.Failed() }) {
			r.transition(stateDone)

			out.Output = partial
			out.FinishReason = core.FinishToolErrorTerminal
			out.Steps = step

			return out, nil
		}

		r.transition(stateAwaitingModel)
	}
}

// finishReasonOf maps a provider finish reason of a final answer.
func finishReasonOf(raw string) core.FinishReason {
	lower := strings.ToLower(raw)

	switch {
	case lower == "", strings.Contains(lower, "stop"), strings.Contains(lower, "end_turn"), strings.Contains(lower, "tool"):
		return core.FinishCompleted
	default:
		return core.FinishOther
	}
}

func cloneTurns(turns []core.Turn) []core.Turn {
	out := make([]core.Turn, len(turns))
	for i, t := range turns {
		out[i] = t.Clone()
	}

	return out
}
