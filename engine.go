// engine.go — the public entry points: an Interpreter owning one builtin
// environment, plus the compile-and-run operation the CLI and REPL call.
//
// The interpreter receives raw source text and a display name, and produces
// either a final Value or a structured fault. It performs no I/O of its own;
// reading source files is the caller's job, and the only side channel is the
// print builtin's writer.
package evalexpr

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Version of the language implementation.
const Version = "0.3.0"

// Interpreter holds one builtin-seeded environment. Successive Eval calls
// share it, so assignments persist across lines (REPL semantics); one-shot
// callers create a fresh Interpreter per program.
type Interpreter struct {
	env   *Env
	out   io.Writer
	trace zerolog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout redirects the print builtin (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(ip *Interpreter) { ip.out = w }
}

// WithTrace attaches a logger that receives one trace event per executed
// instruction.
func WithTrace(l zerolog.Logger) Option {
	return func(ip *Interpreter) { ip.trace = l }
}

// NewInterpreter creates an interpreter with the builtin environment seeded.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		out:   os.Stdout,
		trace: zerolog.Nop(),
	}
	for _, o := range opts {
		o(ip)
	}
	ip.env = newEnv()
	seedBuiltins(ip.env, ip.out)
	return ip
}

// Env exposes the interpreter's environment (REPL introspection, tests).
func (ip *Interpreter) Env() *Env { return ip.env }

// EvalSource compiles and runs a full program. name is the display name used
// in fault messages. A compilation fault prevents execution: no partial tape
// is ever run.
func (ip *Interpreter) EvalSource(name, src string) (Value, error) {
	tape, err := Compile(name, src)
	if err != nil {
		return Null, err
	}
	return runTraced(tape, ip.env, ip.trace)
}
