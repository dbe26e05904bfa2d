package prebuilt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

func TestCalculatorToolkit(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, r.Register(CalculatorToolkit()))

	tc := core.NewToolContext(context.Background())

	tests := []struct {
		name string
		args map[string]any
		want any
	}{
		{"add", map[string]any{"a": 2.0, "b": 3.0}, 5.0},
		{"subtract", map[string]any{"a": 2.0, "b": 3.0}, -1.0},
		{"multiply", map[string]any{"a": 4.0, "b": 2.5}, 10.0},
		{"divide", map[string]any{"a": 9.0, "b": 3.0}, 3.0},
		{"power", map[string]any{"base": 2.0, "exponent": 10.0}, 1024.0},
		{"square_root", map[string]any{"n": 81.0}, 9.0},
		{"factorial", map[string]any{"n": 5.0}, 120.0},
		{"is_prime", map[string]any{"n": 13.0}, true},
		{"is_prime", map[string]any{"n": 12.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Invoke(tc, tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculatorToolkit_Errors(t *testing.T) {
	r := tool.NewRegistry()
	require.NoError(t, r.Register(CalculatorToolkit()))

	tc := core.NewToolContext(context.Background())

	_, err := r.Invoke(tc, "divide", map[string]any{"a": 1.0, "b": 0.0})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = r.Invoke(tc, "square_root", map[string]any{"n": -1.0})
	assert.ErrorIs(t, err, core.ErrToolExecution)

	_, err = r.Invoke(tc, "factorial", map[string]any{"n": 2.5})
	assert.Error(t, err)
}
