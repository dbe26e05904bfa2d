package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentkit/core"
)

// EncodeOutput renders a tool result the way providers expect tool
// messages: strings verbatim, everything else as JSON.
func EncodeOutput(pa core.PerformedAction) string {
	if pa.Failed() {
		b, _ := json.Marshal(map[string]string{"error": pa.Error})
		return string(b)
	}

	switch v := pa.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}

	b, err := json.Marshal(pa.Output)
	if err != nil {
		return fmt.Sprintf("%v", pa.Output)
	}

	return string(b)
}

// EncodeArguments renders action arguments as a JSON object string.
func EncodeArguments(a core.RequiredAction) string {
	if a.Arguments == nil && a.RawArguments != "" {
		return a.RawArguments
	}

	if a.Arguments == nil {
		return "{}"
	}

	b, err := json.Marshal(a.Arguments)
	if err != nil {
		return "{}"
	}

	return string(b)
}

// NewRequiredAction builds an action from a provider's raw JSON arguments.
// Undecodable payloads are kept in RawArguments so the tool layer can report
// them as invalid arguments.
func NewRequiredAction(id, name, rawArgs string) core.RequiredAction {
	if id == "" {
		id = core.NewID()
	}

	a := core.RequiredAction{ID: id, ToolName: name}

	raw := strings.TrimSpace(rawArgs)
	if raw == "" {
		a.Arguments = map[string]any{}
		return a
	}

	args := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		a.RawArguments = rawArgs
		return a
	}

	a.Arguments = args

	return a
}
