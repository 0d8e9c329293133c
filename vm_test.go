// vm_test.go
package evalexpr

import (
	"errors"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustRun(t *testing.T, tape Tape) Value {
	t.Helper()
	env := newEnv()
	seedBuiltins(env, discardWriter{})
	v, err := Run(tape, env)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return v
}

func wantRuntimeFault(t *testing.T, tape Tape, kind RuntimeErrorKind) *RuntimeError {
	t.Helper()
	_, err := Run(tape, newEnv())
	if err == nil {
		t.Fatalf("expected runtime fault, got none")
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if re.Kind != kind {
		t.Fatalf("want kind %d, got %d (%v)", kind, re.Kind, re)
	}
	return re
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// --- tests -----------------------------------------------------------------

func Test_VM_Arith_IntAndFloat(t *testing.T) {
	v := mustRun(t, Tape{
		{Op: OpPushConst, Const: Int(2)},
		{Op: OpPushConst, Const: Int(3)},
		{Op: OpBinary, Bin: BinMul},
	})
	wantInt(t, v, 6)

	// Any floating operand makes the result floating.
	v = mustRun(t, Tape{
		{Op: OpPushConst, Const: Int(2)},
		{Op: OpPushConst, Const: Num(0.5)},
		{Op: OpBinary, Bin: BinAdd},
	})
	wantNum(t, v, 2.5)
}

func Test_VM_Div_AlwaysFloat(t *testing.T) {
	v := mustRun(t, Tape{
		{Op: OpPushConst, Const: Int(7)},
		{Op: OpPushConst, Const: Int(2)},
		{Op: OpBinary, Bin: BinDiv},
	})
	wantNum(t, v, 3.5)
}

func Test_VM_Negate(t *testing.T) {
	v := mustRun(t, Tape{
		{Op: OpPushConst, Const: Int(5)},
		{Op: OpNegate},
	})
	wantInt(t, v, -5)
}

func Test_VM_Equality_AcrossKinds(t *testing.T) {
	eq := func(a, b Value) bool {
		v := mustRun(t, Tape{
			{Op: OpPushConst, Const: a},
			{Op: OpPushConst, Const: b},
			{Op: OpBinary, Bin: BinEq},
		})
		return v.Tag == VTBool && v.Data.(bool)
	}
	if !eq(Int(1), Num(1.0)) {
		t.Fatalf("1 == 1.0 should hold")
	}
	if eq(Int(1), Bool(true)) {
		t.Fatalf("1 == TRUE should not hold")
	}
	if !eq(Null, Null) {
		t.Fatalf("NONE == NONE should hold")
	}
	if !eq(List([]Value{Int(1), Int(2)}), List([]Value{Int(1), Int(2)})) {
		t.Fatalf("lists compare element-wise")
	}
}

func Test_VM_ListAppend_FreshList(t *testing.T) {
	env := newEnv()
	base := List([]Value{Int(1)})
	env.Define("xs", base)
	v, err := Run(Tape{
		{Op: OpLoadVar, Name: "xs"},
		{Op: OpPushConst, Const: Int(2)},
		{Op: OpBinary, Bin: BinListAppend},
	}, env)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := len(v.Data.([]Value)); got != 2 {
		t.Fatalf("want 2 elements, got %d", got)
	}
	if got := len(base.Data.([]Value)); got != 1 {
		t.Fatalf("append must not mutate the original list, it has %d elements now", got)
	}
}

func Test_VM_Assign_BindsAndYields(t *testing.T) {
	env := newEnv()
	v, err := Run(Tape{
		{Op: OpPushName, Name: "x"},
		{Op: OpPushConst, Const: Int(5)},
		{Op: OpAssign},
	}, env)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	wantInt(t, v, 5)
	bound, ok := env.Get("x")
	if !ok {
		t.Fatalf("assignment did not bind x")
	}
	wantInt(t, bound, 5)
}

func Test_VM_JumpIfFalse_Truthiness(t *testing.T) {
	// Pushes 1 when the condition is truthy, 2 otherwise.
	branch := func(cond Value) Value {
		return mustRun(t, Tape{
			{Op: OpPushConst, Const: cond},
			{Op: OpJumpIfFalse, Target: 4},
			{Op: OpPushConst, Const: Int(1)},
			{Op: OpJump, Target: 5},
			{Op: OpPushConst, Const: Int(2)},
		})
	}
	wantInt(t, branch(Bool(true)), 1)
	wantInt(t, branch(Bool(false)), 2)
	wantInt(t, branch(Null), 2)
	wantInt(t, branch(Int(0)), 1) // only FALSE and NONE are falsy
	wantInt(t, branch(List(nil)), 1)
}

func Test_VM_UnboundName_Fault(t *testing.T) {
	re := wantRuntimeFault(t, Tape{{Op: OpLoadVar, Name: "y"}}, NameError)
	if want := `undefined variable "y"`; re.Msg != want {
		t.Fatalf("want %q, got %q", want, re.Msg)
	}
}

func Test_VM_Underflow_Fault(t *testing.T) {
	wantRuntimeFault(t, Tape{{Op: OpDiscard}}, MalformedTape)
	wantRuntimeFault(t, Tape{{Op: OpNegate}}, MalformedTape)
	wantRuntimeFault(t, Tape{}, MalformedTape) // empty tape leaves no result
}

func Test_VM_BadOperands_Fault(t *testing.T) {
	wantRuntimeFault(t, Tape{
		{Op: OpPushConst, Const: Bool(true)},
		{Op: OpPushConst, Const: Int(1)},
		{Op: OpBinary, Bin: BinAdd},
	}, MalformedTape)

	wantRuntimeFault(t, Tape{
		{Op: OpPushConst, Const: Int(1)},
		{Op: OpMakeList},
		{Op: OpBinary, Bin: BinCall},
	}, MalformedTape)
}

func Test_VM_CallBuiltin(t *testing.T) {
	v := mustRun(t, Tape{
		{Op: OpLoadVar, Name: "sin"},
		{Op: OpMakeList},
		{Op: OpPushConst, Const: Int(0)},
		{Op: OpBinary, Bin: BinListAppend},
		{Op: OpBinary, Bin: BinCall},
	})
	if v.Tag != VTNum || v.Data.(float64) != 0 {
		t.Fatalf("sin(0) should be 0, got %v", v)
	}
}
