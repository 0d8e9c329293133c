// instruction.go
package evalexpr

// The compiler emits a flat tape of instructions; the tape index is the
// program counter's address space. Jump targets are tape indices written in
// by back-patching (see compiler.go), never pointers into the slice, since
// append may relocate the backing array.

// Opcode enumerates the instruction variants.
type Opcode int

const (
	OpPushConst Opcode = iota // push Const
	OpLoadVar                 // push env[Name]; name fault if unbound
	OpPushName                // push Name itself (assignment target)
	OpNegate                  // pop x; push -x
	OpBinary                  // pop y, x; push x ⊗ y (⊗ = Bin)
	OpAssign                  // pop v, name; bind name→v; push v
	OpDiscard                 // pop and drop
	OpMakeList                // push a new empty list
	OpJump                    // pc = Target
	OpJumpIfFalse             // pop v; if falsy, pc = Target
)

func (op Opcode) String() string {
	switch op {
	case OpPushConst:
		return "PushConst"
	case OpLoadVar:
		return "LoadVar"
	case OpPushName:
		return "PushName"
	case OpNegate:
		return "Negate"
	case OpBinary:
		return "Binary"
	case OpAssign:
		return "Assign"
	case OpDiscard:
		return "Discard"
	case OpMakeList:
		return "MakeList"
	case OpJump:
		return "Jump"
	case OpJumpIfFalse:
		return "JumpIfFalse"
	default:
		return "Unknown"
	}
}

// BinOp enumerates the combinations performed by OpBinary.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinListAppend
	BinCall
)

func (b BinOp) String() string {
	switch b {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinListAppend:
		return "append"
	case BinCall:
		return "call"
	default:
		return "?"
	}
}

// Instruction is one tape element. Only the fields relevant to Op are
// meaningful: Const for OpPushConst, Name for OpLoadVar/OpPushName, Bin for
// OpBinary, Target for OpJump/OpJumpIfFalse.
type Instruction struct {
	Op     Opcode
	Const  Value
	Name   string
	Bin    BinOp
	Target int
}

// Tape is the compiled form of a program.
type Tape []Instruction
