// env.go
package evalexpr

import "sort"

// Env is the single global mapping from variable name to Value shared by one
// program execution. The language has no lexical scoping, so there is no
// parent chain; the environment is owned by the Run call that receives it,
// never package state.
type Env struct {
	table map[string]Value
}

func newEnv() *Env { return &Env{table: make(map[string]Value)} }

// Define binds name to v, replacing any existing binding.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Get retrieves the binding for name.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.table[name]
	return v, ok
}

// Names returns all bound names in sorted order (REPL/introspection helper).
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.table))
	for k := range e.table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
