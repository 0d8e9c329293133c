// value.go
package evalexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold. The tag determines
// which Go type Value.Data carries.
type ValueTag int

const (
	VTNull     ValueTag = iota // no payload
	VTBool                     // bool
	VTInt                      // int64
	VTNum                      // float64
	VTList                     // []Value
	VTCallable                 // *Callable
	vtName                     // string; assignment target, never observable by programs
)

// Value is the universal runtime carrier used by the virtual machine. It is
// a tagged union: all values (numbers, booleans, null, lists, callables)
// share one operand stack.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

func Bool(b bool) Value         { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value         { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value       { return Value{Tag: VTNum, Data: f} }
func List(xs []Value) Value     { return Value{Tag: VTList, Data: xs} }
func CallableVal(c *Callable) Value {
	return Value{Tag: VTCallable, Data: c}
}

func nameVal(s string) Value { return Value{Tag: vtName, Data: s} }

// Callable is a host-provided function bound in the environment before any
// program code runs.
type Callable struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

// Truthy reports how control flow tests a value: boolean false and null are
// falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	default:
		return true
	}
}

func isNumber(v Value) bool { return v.Tag == VTInt || v.Tag == VTNum }

func toFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

// valuesEqual is the deep equality used by == and !=. It is defined across
// all value kinds; integers and floats compare numerically, lists compare
// element-wise, callables compare by identity.
func valuesEqual(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		if a.Tag == VTInt && b.Tag == VTInt {
			return a.Data.(int64) == b.Data.(int64)
		}
		return toFloat(a) == toFloat(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTList:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !valuesEqual(ax[i], bx[i]) {
				return false
			}
		}
		return true
	case VTCallable:
		return a.Data.(*Callable) == b.Data.(*Callable)
	default:
		return false
	}
}

// FormatValue renders a human-readable representation, in the language's own
// notation. This is what print writes and what the REPL echoes.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return "NONE"
	case VTBool:
		if v.Data.(bool) {
			return "TRUE"
		}
		return "FALSE"
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTList:
		var b strings.Builder
		b.WriteByte('[')
		for i, x := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatValue(x))
		}
		b.WriteByte(']')
		return b.String()
	case VTCallable:
		return fmt.Sprintf("<callable %s>", v.Data.(*Callable).Name)
	default:
		return "<unknown>"
	}
}

// String renders a debug representation (used in fault messages and traces).
func (v Value) String() string {
	if v.Tag == vtName {
		return fmt.Sprintf("<name %s>", v.Data.(string))
	}
	return FormatValue(v)
}
