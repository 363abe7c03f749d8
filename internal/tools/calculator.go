package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/skiff-ai/skiff/internal/log"
)

// CalculatorInput defines input for the calculator tool.
type CalculatorInput struct {
	Expression string `json:"expression" jsonschema:"The mathematical expression to evaluate, e.g. 'sqrt(2) * sin(pi/4)'."`
}

// mathEnv is the evaluation environment: constants plus the usual
// scientific-calculator functions. The expression language itself supplies
// arithmetic, comparisons, ternaries, and list literals.
var mathEnv = map[string]any{
	"pi":  math.Pi,
	"e":   math.E,
	"inf": math.Inf(1),

	"abs":   math.Abs,
	"sqrt":  math.Sqrt,
	"cbrt":  math.Cbrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"pow":   math.Pow,
	"mod":   math.Mod,

	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,

	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"trunc": math.Trunc,

	"min": math.Min,
	"max": math.Max,
}

// NewCalculatorTool creates the calculator. Expressions are compiled and
// evaluated by the expr language against a pure math environment — no IO,
// no host access, so the safety gate has nothing to inspect here.
func NewCalculatorTool(logger log.Logger) (*Tool, error) {
	handler := func(ctx context.Context, in CalculatorInput) (string, error) {
		expression := strings.TrimSpace(in.Expression)
		if expression == "" {
			return "", fmt.Errorf("expression cannot be empty")
		}

		program, err := expr.Compile(expression, expr.Env(mathEnv))
		if err != nil {
			return "", fmt.Errorf("invalid expression: %w", err)
		}

		result, err := expr.Run(program, mathEnv)
		if err != nil {
			return "", fmt.Errorf("evaluating expression: %w", err)
		}

		logger.Debug("expression evaluated", "expression", expression)
		return fmt.Sprintf("%s = %s", expression, formatResult(result)), nil
	}

	return NewTool(
		"calculator",
		"Evaluate a mathematical expression. Supports arithmetic, trigonometry, logarithms, and constants pi and e.",
		handler,
	)
}

// formatResult renders an evaluation result. Floats that hold an integral
// value print without a trailing ".000000"; everything else falls back to
// the default formatting.
func formatResult(v any) string {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e15 {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return strconv.FormatFloat(n, 'g', 12, 64)
	case int:
		return strconv.Itoa(n)
	case []any:
		parts := make([]string, len(n))
		for i, item := range n {
			parts[i] = formatResult(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
