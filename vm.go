// vm.go
package evalexpr

// The stack machine. It executes a finished tape against an explicit operand
// stack and a mutable environment, knowing nothing about syntax. Every
// instruction's net stack effect is fixed by its variant, so a well-formed
// tape never underflows; the defensive underflow and operand-kind checks
// exist for internal consistency and surface as MalformedTape faults.

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Run executes tape against env and returns the program's result: the sole
// stack value remaining when the program counter reaches the tape's length.
func Run(tape Tape, env *Env) (Value, error) {
	return runTraced(tape, env, zerolog.Nop())
}

func runTraced(tape Tape, env *Env, trace zerolog.Logger) (Value, error) {
	m := &machine{env: env, trace: trace}
	return m.run(tape)
}

type machine struct {
	env   *Env
	stack []Value
	trace zerolog.Logger
}

func (m *machine) push(v Value) {
	m.stack = append(m.stack, v)
}

func (m *machine) pop() (Value, error) {
	if len(m.stack) == 0 {
		return Null, &RuntimeError{Kind: MalformedTape, Msg: "stack underflow"}
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *machine) fail(format string, args ...interface{}) error {
	return &RuntimeError{Kind: MalformedTape, Msg: fmt.Sprintf(format, args...)}
}

func (m *machine) run(tape Tape) (Value, error) {
	pc := 0
	for pc < len(tape) {
		ins := tape[pc]
		m.trace.Trace().
			Int("pc", pc).
			Str("op", ins.Op.String()).
			Int("stack", len(m.stack)).
			Msg("exec")

		jumped := false
		switch ins.Op {

		case OpPushConst:
			m.push(ins.Const)

		case OpLoadVar:
			v, ok := m.env.Get(ins.Name)
			if !ok {
				return Null, &RuntimeError{Kind: NameError, Msg: fmt.Sprintf("undefined variable %q", ins.Name)}
			}
			m.push(v)

		case OpPushName:
			m.push(nameVal(ins.Name))

		case OpNegate:
			x, err := m.pop()
			if err != nil {
				return Null, err
			}
			switch x.Tag {
			case VTInt:
				m.push(Int(-x.Data.(int64)))
			case VTNum:
				m.push(Num(-x.Data.(float64)))
			default:
				return Null, m.fail("negation expects a number, got %s", x)
			}

		case OpBinary:
			y, err := m.pop()
			if err != nil {
				return Null, err
			}
			x, err := m.pop()
			if err != nil {
				return Null, err
			}
			v, err := m.binary(ins.Bin, x, y)
			if err != nil {
				return Null, err
			}
			m.push(v)

		case OpAssign:
			v, err := m.pop()
			if err != nil {
				return Null, err
			}
			name, err := m.pop()
			if err != nil {
				return Null, err
			}
			if name.Tag != vtName {
				return Null, m.fail("assignment target is not a name")
			}
			m.env.Define(name.Data.(string), v)
			m.push(v)

		case OpDiscard:
			if _, err := m.pop(); err != nil {
				return Null, err
			}

		case OpMakeList:
			m.push(List(nil))

		case OpJump:
			pc = ins.Target
			jumped = true

		case OpJumpIfFalse:
			v, err := m.pop()
			if err != nil {
				return Null, err
			}
			if !Truthy(v) {
				pc = ins.Target
				jumped = true
			}

		default:
			return Null, m.fail("unknown opcode %d", ins.Op)
		}

		if !jumped {
			pc++
		}
	}

	result, err := m.pop()
	if err != nil {
		return Null, err
	}
	return result, nil
}

// binary combines two operands; x was pushed first and is the left operand.
func (m *machine) binary(op BinOp, x, y Value) (Value, error) {
	switch op {
	case BinAdd, BinSub, BinMul, BinDiv:
		return m.arith(op, x, y)

	case BinLt, BinLe, BinGt, BinGe:
		if !isNumber(x) || !isNumber(y) {
			return Null, m.fail("'%s' expects numbers, got %s and %s", op, x, y)
		}
		if x.Tag == VTInt && y.Tag == VTInt {
			a, b := x.Data.(int64), y.Data.(int64)
			switch op {
			case BinLt:
				return Bool(a < b), nil
			case BinLe:
				return Bool(a <= b), nil
			case BinGt:
				return Bool(a > b), nil
			default:
				return Bool(a >= b), nil
			}
		}
		a, b := toFloat(x), toFloat(y)
		switch op {
		case BinLt:
			return Bool(a < b), nil
		case BinLe:
			return Bool(a <= b), nil
		case BinGt:
			return Bool(a > b), nil
		default:
			return Bool(a >= b), nil
		}

	case BinEq:
		return Bool(valuesEqual(x, y)), nil
	case BinNe:
		return Bool(!valuesEqual(x, y)), nil

	case BinListAppend:
		if x.Tag != VTList {
			return Null, m.fail("append expects a list, got %s", x)
		}
		xs := x.Data.([]Value)
		out := make([]Value, len(xs)+1)
		copy(out, xs)
		out[len(xs)] = y
		return List(out), nil

	case BinCall:
		if x.Tag != VTCallable {
			return Null, m.fail("call target is not callable: %s", x)
		}
		if y.Tag != VTList {
			return Null, m.fail("call arguments are not a list: %s", y)
		}
		fn := x.Data.(*Callable)
		res, err := fn.Fn(y.Data.([]Value))
		if err != nil {
			if _, ok := err.(*RuntimeError); ok {
				return Null, err
			}
			return Null, &RuntimeError{Kind: MalformedTape, Msg: fmt.Sprintf("%s: %v", fn.Name, err)}
		}
		return res, nil

	default:
		return Null, m.fail("unknown binary op %d", op)
	}
}

// arith implements +, -, * and /. Integer operands stay integral except for
// division, which always yields a floating quotient (true division, never
// truncating).
func (m *machine) arith(op BinOp, x, y Value) (Value, error) {
	if !isNumber(x) || !isNumber(y) {
		return Null, m.fail("'%s' expects numbers, got %s and %s", op, x, y)
	}
	if op == BinDiv {
		return Num(toFloat(x) / toFloat(y)), nil
	}
	if x.Tag == VTInt && y.Tag == VTInt {
		a, b := x.Data.(int64), y.Data.(int64)
		switch op {
		case BinAdd:
			return Int(a + b), nil
		case BinSub:
			return Int(a - b), nil
		default:
			return Int(a * b), nil
		}
	}
	a, b := toFloat(x), toFloat(y)
	switch op {
	case BinAdd:
		return Num(a + b), nil
	case BinSub:
		return Num(a - b), nil
	default:
		return Num(a * b), nil
	}
}
