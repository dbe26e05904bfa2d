// Package prebuilt contains ready-made tools and toolkits.
package prebuilt

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

// ErrDivisionByZero is returned by the divide tool.
var ErrDivisionByZero = errors.New("division by zero")

type binaryArgs struct {
	A float64 `json:"a" jsonschema:"description=First operand"`
	B float64 `json:"b" jsonschema:"description=Second operand"`
}

type powerArgs struct {
	Base     float64 `json:"base" jsonschema:"description=The base"`
	Exponent float64 `json:"exponent" jsonschema:"description=The exponent"`
}

type unaryArgs struct {
	N float64 `json:"n" jsonschema:"description=The operand"`
}

// CalculatorToolkit returns basic arithmetic tools.
func CalculatorToolkit() *tool.Toolkit {
	return tool.MustToolkit("calculator", "Arithmetic operations",
		tool.NewTypedTool("add", "Add two numbers", func(_ *core.ToolContext, a binaryArgs) (any, error) {
			return a.A + a.B, nil
		}),
		tool.NewTypedTool("subtract", "Subtract b from a", func(_ *core.ToolContext, a binaryArgs) (any, error) {
			return a.A - a.B, nil
		}),
		tool.NewTypedTool("multiply", "Multiply two numbers", func(_ *core.ToolContext, a binaryArgs) (any, error) {
			return a.A * a.B, nil
		}),
		tool.NewTypedTool("divide", "Divide a by b", func(_ *core.ToolContext, a binaryArgs) (any, error) {
			if a.B == 0 {
				return nil, ErrDivisionByZero
			}
			return a.A / a.B, nil
		}),
		tool.NewTypedTool("power", "Raise base to the power of exponent", func(_ *core.ToolContext, a powerArgs) (any, error) {
			return math.Pow(a.Base, a.Exponent), nil
		}),
		tool.NewTypedTool("square_root", "Square root of n", func(_ *core.ToolContext, a unaryArgs) (any, error) {
			if a.N < 0 {
				return nil, fmt.Errorf("square root of negative number %v", a.N)
			}
			return math.Sqrt(a.N), nil
		}),
		tool.NewTypedTool("factorial", "Factorial of a non-negative integer n", func(_ *core.ToolContext, a unaryArgs) (any, error) {
			if a.N < 0 || a.N != math.Trunc(a.N) {
				return nil, fmt.Errorf("factorial requires a non-negative integer, got %v", a.N)
			}
			if a.N > 170 {
				return nil, fmt.Errorf("factorial of %v overflows", a.N)
			}

			result := 1.0
			for i := 2.0; i <= a.N; i++ {
				result *= i
			}

			return result, nil
		}),
		tool.NewTypedTool("is_prime", "Check whether n is a prime number", func(_ *core.ToolContext, a unaryArgs) (any, error) {
			n := int64(a.N)
			if float64(n) != a.N || n < 2 {
				return false, nil
			}

			for i := int64(2); i*i <= n; i++ {
				if n%i == 0 {
					return false, nil
				}
			}

			return true, nil
		}),
	)
}
