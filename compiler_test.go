// compiler_test.go
package evalexpr

import (
	"reflect"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustCompile(t *testing.T, src string) Tape {
	t.Helper()
	tape, err := Compile("test.ee", src)
	if err != nil {
		t.Fatalf("compile error for %q: %v", src, err)
	}
	return tape
}

func mustFailCompile(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := Compile("test.ee", src)
	if err == nil {
		t.Fatalf("expected syntax fault for %q, got none", src)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("want *ParseError, got %T: %v", err, err)
	}
	return pe
}

func wantOps(t *testing.T, tape Tape, ops ...Opcode) {
	t.Helper()
	if len(tape) != len(ops) {
		t.Fatalf("want %d instructions, got %d: %v", len(ops), len(tape), tape)
	}
	for i, op := range ops {
		if tape[i].Op != op {
			t.Fatalf("instruction %d: want %s, got %s", i, op, tape[i].Op)
		}
	}
}

// --- tests -----------------------------------------------------------------

func Test_Compiler_Deterministic(t *testing.T) {
	src := "i = 0; while i < 3 do i = i + 1 end; if i == 3 then print(i) end"
	a := mustCompile(t, src)
	b := mustCompile(t, src)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("compiling identical source twice yields different tapes:\n%v\n%v", a, b)
	}
}

func Test_Compiler_Arithmetic_Order(t *testing.T) {
	tape := mustCompile(t, "1 + 2 * 3")
	wantOps(t, tape, OpPushConst, OpPushConst, OpPushConst, OpBinary, OpBinary)
	if tape[3].Bin != BinMul || tape[4].Bin != BinAdd {
		t.Fatalf("precedence: want mul before add, got %s then %s", tape[3].Bin, tape[4].Bin)
	}
}

func Test_Compiler_LeadingSign_FirstTermOnly(t *testing.T) {
	// Negate applies to the first term only, and only for '-'.
	tape := mustCompile(t, "-1 + 2")
	wantOps(t, tape, OpPushConst, OpNegate, OpPushConst, OpBinary)

	tape = mustCompile(t, "+1 + 2")
	wantOps(t, tape, OpPushConst, OpPushConst, OpBinary)
}

func Test_Compiler_Assignment_Shape(t *testing.T) {
	tape := mustCompile(t, "x = 5")
	wantOps(t, tape, OpPushName, OpPushConst, OpAssign)
	if tape[0].Name != "x" {
		t.Fatalf("want name x, got %q", tape[0].Name)
	}

	// A bare identifier compiles as a load.
	tape = mustCompile(t, "x")
	wantOps(t, tape, OpLoadVar)
}

func Test_Compiler_ExprList_Discards(t *testing.T) {
	tape := mustCompile(t, "1; 2; 3")
	wantOps(t, tape, OpPushConst, OpDiscard, OpPushConst, OpDiscard, OpPushConst)
}

func Test_Compiler_Call_Shape(t *testing.T) {
	tape := mustCompile(t, "sin(0)")
	wantOps(t, tape, OpLoadVar, OpMakeList, OpPushConst, OpBinary, OpBinary)
	if tape[3].Bin != BinListAppend || tape[4].Bin != BinCall {
		t.Fatalf("want append then call, got %s then %s", tape[3].Bin, tape[4].Bin)
	}

	// Zero arguments: just the empty list and the call.
	tape = mustCompile(t, "f()")
	wantOps(t, tape, OpLoadVar, OpMakeList, OpBinary)

	// Chained argument lists call the previous result.
	tape = mustCompile(t, "f(1)(2)")
	wantOps(t, tape,
		OpLoadVar, OpMakeList, OpPushConst, OpBinary, OpBinary,
		OpMakeList, OpPushConst, OpBinary, OpBinary)
}

func Test_Compiler_If_Tape(t *testing.T) {
	// if c then 1 else 2 end
	tape := mustCompile(t, "if c then 1 else 2 end")
	wantOps(t, tape, OpLoadVar, OpJumpIfFalse, OpPushConst, OpJump, OpPushConst)
	if tape[1].Target != 4 {
		t.Fatalf("false-jump should land on the else branch (4), got %d", tape[1].Target)
	}
	if tape[3].Target != 5 {
		t.Fatalf("end-jump should land past the construct (5), got %d", tape[3].Target)
	}
}

func Test_Compiler_If_WithoutElse_PushesNull(t *testing.T) {
	tape := mustCompile(t, "if c then 1 end")
	wantOps(t, tape, OpLoadVar, OpJumpIfFalse, OpPushConst, OpJump, OpPushConst)
	if tape[4].Const.Tag != VTNull {
		t.Fatalf("absent else branch must push null, got %v", tape[4].Const)
	}
}

func Test_Compiler_While_Tape(t *testing.T) {
	tape := mustCompile(t, "while c do 1 end")
	wantOps(t, tape,
		OpPushConst,    // 0: loop value if the body never runs
		OpLoadVar,      // 1: condition (loop head)
		OpJumpIfFalse,  // 2: exit
		OpDiscard,      // 3: drop the previous iteration's value
		OpPushConst,    // 4: body
		OpJump)         // 5: back to head
	if tape[0].Const.Tag != VTNull {
		t.Fatalf("loop must push null up front, got %v", tape[0].Const)
	}
	if tape[5].Target != 1 {
		t.Fatalf("back-jump should land on the loop head (1), got %d", tape[5].Target)
	}
	if tape[2].Target != 6 {
		t.Fatalf("exit jump should land past the loop (6), got %d", tape[2].Target)
	}
}

func Test_Compiler_UnclosedParen_FaultsAtEOF(t *testing.T) {
	pe := mustFailCompile(t, "(1 + ")
	if !pe.AtEOF {
		t.Fatalf("fault should reference the end-of-input token: %+v", pe)
	}
	if pe.Line != 1 || pe.Col != 6 {
		t.Fatalf("want fault at 1:6, got %d:%d", pe.Line, pe.Col)
	}
	if !strings.Contains(pe.Error(), "test.ee:1:6:") {
		t.Fatalf("want file:row:col prefix, got %q", pe.Error())
	}
}

func Test_Compiler_ExpectationMessages(t *testing.T) {
	pe := mustFailCompile(t, "if 1 2")
	if !strings.Contains(pe.Msg, "'then'") {
		t.Fatalf("want expectation naming 'then', got %q", pe.Msg)
	}

	pe = mustFailCompile(t, "1 2")
	if !strings.Contains(pe.Msg, "end of input") {
		t.Fatalf("want expectation naming end of input, got %q", pe.Msg)
	}

	pe = mustFailCompile(t, "1 + *")
	if !strings.Contains(pe.Msg, "a number, a name or '('") {
		t.Fatalf("want factor expectation, got %q", pe.Msg)
	}
}

func Test_Compiler_AssignIsExpression(t *testing.T) {
	// Assignment nests inside larger expressions.
	tape := mustCompile(t, "1 + (x = 2)")
	wantOps(t, tape, OpPushConst, OpPushName, OpPushConst, OpAssign, OpBinary)
}
