// builtins.go
package evalexpr

import (
	"fmt"
	"io"
	"math"
)

// seedBuiltins populates env with the fixed builtin set before any program
// code runs: the constants pi and e, a few unary math functions, and the
// variadic print function. out is where print writes.
func seedBuiltins(env *Env, out io.Writer) {
	env.Define("pi", Num(math.Pi))
	env.Define("e", Num(math.E))

	un1 := func(name string, f func(float64) float64) {
		env.Define(name, CallableVal(&Callable{
			Name: name,
			Fn: func(args []Value) (Value, error) {
				if len(args) != 1 {
					return Null, fmt.Errorf("expects 1 argument, got %d", len(args))
				}
				if !isNumber(args[0]) {
					return Null, fmt.Errorf("expects a number, got %s", args[0])
				}
				return Num(f(toFloat(args[0]))), nil
			},
		}))
	}
	un1("sin", math.Sin)
	un1("cos", math.Cos)
	un1("sqrt", math.Sqrt)

	env.Define("print", CallableVal(&Callable{
		Name: "print",
		Fn: func(args []Value) (Value, error) {
			for i, a := range args {
				if i > 0 {
					fmt.Fprint(out, " ")
				}
				fmt.Fprint(out, FormatValue(a))
			}
			fmt.Fprintln(out)
			return Null, nil
		},
	}))
}
