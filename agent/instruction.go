package agent

import (
	"context"

	"github.com/hupe1980/agentkit/internal/util"
)

// Provider supplies instruction text at setup time.
type Provider interface {
	Instruction(ctx context.Context) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context) (string, error) { return f(ctx) }

// Instruction is either a static string, a template rendered with fixed data
// or a dynamic provider.
type Instruction struct {
	text     string
	data     map[string]any
	template bool
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromTemplate creates an Instruction rendered with data
// using text/template syntax.
func NewInstructionFromTemplate(tmpl string, data map[string]any) Instruction {
	return Instruction{text: tmpl, data: data, template: true}
}

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil && !i.template }

// Resolve returns the instruction text, rendering or invoking the provider if needed.
func (i Instruction) Resolve(ctx context.Context) (string, error) {
	switch {
	case i.provider != nil:
		return i.provider.Instruction(ctx)
	case i.template:
		return util.RenderTemplate(i.text, i.data)
	default:
		return i.text, nil
	}
}
