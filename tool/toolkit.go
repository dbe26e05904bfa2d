package tool

import (
	"fmt"

	"github.com/hupe1980/agentkit/core"
)

// Toolkit is a named group of tools registered together.
type Toolkit struct {
	name        string
	description string
	tools       []Tool
	index       map[string]struct{}
}

// NewToolkit creates a toolkit. Duplicate tool names are rejected.
func NewToolkit(name, description string, tools ...Tool) (*Toolkit, error) {
	tk := &Toolkit{name: name, description: description, index: map[string]struct{}{}}
	if err := tk.Add(tools...); err != nil {
		return nil, err
	}

	return tk, nil
}

// MustToolkit is like NewToolkit but panics on error.
func MustToolkit(name, description string, tools ...Tool) *Toolkit {
	tk, err := NewToolkit(name, description, tools...)
	if err != nil {
		panic(err)
	}

	return tk
}

// Add appends tools; nothing is added if any name collides.
func (tk *Toolkit) Add(tools ...Tool) error {
	seen := map[string]struct{}{}

	for _, t := range tools {
		if _, dup := tk.index[t.Name()]; dup {
			return fmt.Errorf("%w: %s in toolkit %s", core.ErrDuplicateToolName, t.Name(), tk.name)
		}

		if _, dup := seen[t.Name()]; dup {
			return fmt.Errorf("%w: %s in toolkit %s", core.ErrDuplicateToolName, t.Name(), tk.name)
		}

		seen[t.Name()] = struct{}{}
	}

	for _, t := range tools {
		tk.index[t.Name()] = struct{}{}
		tk.tools = append(tk.tools, t)
	}

	return nil
}

// Name returns the toolkit name.
func (tk *Toolkit) Name() string { return tk.name }

// Description returns the toolkit description.
func (tk *Toolkit) Description() string { return tk.description }

// Tools returns the tools in insertion order.
func (tk *Toolkit) Tools() []Tool {
	return append([]Tool(nil), tk.tools...)
}
