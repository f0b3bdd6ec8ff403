package expr

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// FailFunc aborts evaluation with the given message. Scripts use it to
// report a computation error from inside an expression.
var FailFunc = function.New(&function.Spec{
	Description: "Fails the evaluation with the given message.",
	Params: []function.Parameter{
		{Name: "message", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.NilVal, errors.New(args[0].AsString())
	},
})

var functions = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"floor":    stdlib.FloorFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"pow":      stdlib.PowFunc,
	"signum":   stdlib.SignumFunc,
	"log":      stdlib.LogFunc,
	"parseint": stdlib.ParseIntFunc,
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"split":    stdlib.SplitFunc,
	"concat":   stdlib.ConcatFunc,
	"length":   stdlib.LengthFunc,
	"coalesce": stdlib.CoalesceFunc,
	"fail":     FailFunc,
}

// Functions returns the functions available to expressions.
func Functions() map[string]function.Function {
	out := make(map[string]function.Function, len(functions))
	for k, v := range functions {
		out[k] = v
	}
	return out
}

// FunctionNames returns the names of the available functions, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for k := range functions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func checkFunctions(names []string) error {
	for _, n := range names {
		if _, ok := functions[n]; !ok {
			return fmt.Errorf("call to unknown function '%s'", n)
		}
	}
	return nil
}
