package tool

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/util"
	"github.com/hupe1980/agentkit/model"
)

// Registrable is anything the Registry accepts: a Tool or a tool group
// such as *Toolkit.
type Registrable interface {
	Name() string
}

type toolSet interface {
	Tools() []Tool
}

const maxSuggestions = 3

// Registry holds the uniquely named tools of an agent.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds tools and toolkits. Either every item is registered or,
// on a name collision, none is.
func (r *Registry) Register(items ...Registrable) error {
	var batch []Tool

	for _, item := range items {
		switch v := item.(type) {
		case toolSet:
			batch = append(batch, v.Tools()...)
		case Tool:
			batch = append(batch, v)
		default:
			return fmt.Errorf("register %q: unsupported type %T", item.Name(), item)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))

	for _, t := range batch {
		name := t.Name()
		if name == "" {
			return fmt.Errorf("register tool: empty name")
		}

		if _, exists := r.tools[name]; exists {
			return fmt.Errorf("%w: %s", core.ErrDuplicateToolName, name)
		}

		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s", core.ErrDuplicateToolName, name)
		}

		seen[name] = struct{}{}
	}

	for _, t := range batch {
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}

	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(name string, _ int) Tool { return r.tools[name] })
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Describe returns the tool definitions in registration order.
func (r *Registry) Describe() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(name string, _ int) model.ToolDefinition {
		return Definition(r.tools[name])
	})
}

// Fingerprint returns a stable hash of the schema payload.
func (r *Registry) Fingerprint() string {
	raw, err := json.Marshal(r.Describe())
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(raw)

	return hex.EncodeToString(sum[:])
}

// Invoke validates args and runs the named tool. Every failure is returned
// as a *core.ToolError; panics inside the tool are recovered.
func (r *Registry) Invoke(tc *core.ToolContext, name string, args map[string]any) (result any, err error) {
	t, ok := r.Get(name)
	if !ok {
		suggestions := r.Suggest(name)

		msg := fmt.Sprintf("unknown tool %q", name)
		if len(suggestions) > 0 {
			msg += fmt.Sprintf("; did you mean: %s?", strings.Join(suggestions, ", "))
		}

		return nil, core.NewToolError(name, core.CodeUnknownTool, msg, nil).WithDetail("suggestions", suggestions)
	}

	if args == nil {
		args = map[string]any{}
	}

	if verr := util.ValidateParameters(args, t.Parameters()); verr != nil {
		tc.Logger().Warn("tool.call.validation_failed", "tool", name, "error", verr.Error())
		return nil, core.NewToolError(name, core.CodeInvalidArguments, fmt.Sprintf("parameter validation failed: %v", verr), verr)
	}

	defer func() {
		if rec := recover(); rec != nil {
			tc.Logger().Error("tool.call.panic", "tool", name, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
			result = nil
			err = core.NewToolError(name, core.CodePanic, fmt.Sprintf("panic: %v", rec), nil)
		}
	}()

	result, err = t.Call(tc, args)
	if err != nil {
		if te, ok := err.(*core.ToolError); ok {
			return nil, te
		}

		return nil, core.NewToolError(name, core.CodeExecutionError, err.Error(), err)
	}

	return result, nil
}

// Perform executes a required action and reports the outcome as a
// PerformedAction. It never fails; errors become the action's error result.
func (r *Registry) Perform(tc *core.ToolContext, action core.RequiredAction) core.PerformedAction {
	start := time.Now()
	tc = tc.WithAction(action.ID, action.ToolName)

	pa := core.PerformedAction{ActionID: action.ID, ToolName: action.ToolName}

	var (
		out any
		err error
	)

	if action.Arguments == nil && action.RawArguments != "" {
		err = core.NewToolError(action.ToolName, core.CodeInvalidArguments, "arguments are not a JSON object", nil).
			WithDetail("raw", action.RawArguments)
	} else {
		out, err = r.Invoke(tc, action.ToolName, action.Arguments)
	}

	pa.Duration = time.Since(start)

	if err != nil {
		pa.Error = err.Error()
		return pa
	}

	pa.Output = out

	return pa
}

// Suggest returns registered names close to name, best match first.
func (r *Registry) Suggest(name string) []string {
	names := r.Names()

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	sort.Sort(ranks)

	out := lo.Map(ranks, func(rk fuzzy.Rank, _ int) string { return rk.Target })

	// typos that are not subsequences, e.g. transposed letters
	threshold := max(2, len(name)/3)
	for _, n := range names {
		if fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(n)) <= threshold {
			out = append(out, n)
		}
	}

	out = lo.Uniq(out)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}

	return out
}
