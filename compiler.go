// compiler.go — recursive-descent compiler emitting a linear instruction tape.
//
// Grammar (each production validates structure and emits instructions as a
// side effect of recognition; no AST is retained — the tape is the compiled
// form):
//
//	program    := exprlist EOF
//	exprlist   := expr { ';' expr }
//	expr       := arexpr [ relop arexpr ]
//	arexpr     := [ '+' | '-' ] term { ('+'|'-') term }
//	term       := factor { ('*'|'/') factor }
//	factor     := primary { args } | NUMBER | '(' exprlist ')'
//	primary    := IDENT [ '=' expr ] | TRUE | FALSE | NONE | statement
//	statement  := 'if' expr 'then' exprlist [ 'else' exprlist ] 'end'
//	            | 'while' expr 'do' exprlist 'end'
//	args       := '(' [ expr { ',' expr } ] ')'
//
// Forward jumps (if/while exits) are emitted with a placeholder target; emit
// returns the instruction's tape index and patch writes the real target in
// once the destination is known. That back-patching is the only two-pass
// aspect of compilation.
package evalexpr

import "fmt"

// Compile turns source text into an instruction tape. name is the display
// name used in fault messages. A lexical or syntactic fault aborts
// compilation entirely; no partial tape is returned.
func Compile(name, src string) (Tape, error) {
	lx, err := NewLexer(name, src)
	if err != nil {
		return nil, err
	}
	c := &compiler{lx: lx}
	if err := c.program(); err != nil {
		return nil, err
	}
	return c.tape, nil
}

type compiler struct {
	lx   *Lexer
	tape Tape
}

// emit appends ins and returns its tape index (the back-patch handle).
func (c *compiler) emit(ins Instruction) int {
	c.tape = append(c.tape, ins)
	return len(c.tape) - 1
}

// patch completes a jump emitted earlier with its real target.
func (c *compiler) patch(at, target int) {
	c.tape[at].Target = target
}

func (c *compiler) tok() Token { return c.lx.Token() }

func (c *compiler) next() error { return c.lx.Next() }

// errExpected raises a syntax fault at the current token.
func (c *compiler) errExpected(what string) error {
	tok := c.tok()
	return &ParseError{
		File:  c.lx.File(),
		Line:  tok.Line,
		Col:   tok.Col,
		Msg:   fmt.Sprintf("expected %s, but got %s", what, describeToken(tok)),
		AtEOF: tok.Type == EOF,
	}
}

// expect consumes a token of type tt or raises a syntax fault.
func (c *compiler) expect(tt TokenType) error {
	if c.tok().Type != tt {
		return c.errExpected(describeTokenType(tt))
	}
	return c.next()
}

// program := exprlist EOF
func (c *compiler) program() error {
	if err := c.exprList(); err != nil {
		return err
	}
	return c.expect(EOF)
}

// exprlist := expr { ';' expr }
// Each sub-expression after the first is preceded by a Discard of the
// previous value; the list's value is that of its last sub-expression.
func (c *compiler) exprList() error {
	if err := c.expr(); err != nil {
		return err
	}
	for c.tok().Type == SEMICOLON {
		if err := c.next(); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpDiscard})
		if err := c.expr(); err != nil {
			return err
		}
	}
	return nil
}

func relOp(tt TokenType) (BinOp, bool) {
	switch tt {
	case LESS:
		return BinLt, true
	case LESS_EQ:
		return BinLe, true
	case GREATER:
		return BinGt, true
	case GREATER_EQ:
		return BinGe, true
	case EQ:
		return BinEq, true
	case NEQ:
		return BinNe, true
	default:
		return 0, false
	}
}

// expr := arexpr [ relop arexpr ]
func (c *compiler) expr() error {
	if err := c.arexpr(); err != nil {
		return err
	}
	if op, ok := relOp(c.tok().Type); ok {
		if err := c.next(); err != nil {
			return err
		}
		if err := c.arexpr(); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpBinary, Bin: op})
	}
	return nil
}

// arexpr := [ '+' | '-' ] term { ('+'|'-') term }
// A leading sign applies only to the first term; Negate is emitted only when
// the sign was '-'.
func (c *compiler) arexpr() error {
	negate := false
	if tt := c.tok().Type; tt == PLUS || tt == MINUS {
		negate = tt == MINUS
		if err := c.next(); err != nil {
			return err
		}
	}
	if err := c.term(); err != nil {
		return err
	}
	if negate {
		c.emit(Instruction{Op: OpNegate})
	}
	for {
		var op BinOp
		switch c.tok().Type {
		case PLUS:
			op = BinAdd
		case MINUS:
			op = BinSub
		default:
			return nil
		}
		if err := c.next(); err != nil {
			return err
		}
		if err := c.term(); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpBinary, Bin: op})
	}
}

// term := factor { ('*'|'/') factor }
func (c *compiler) term() error {
	if err := c.factor(); err != nil {
		return err
	}
	for {
		var op BinOp
		switch c.tok().Type {
		case MULT:
			op = BinMul
		case DIV:
			op = BinDiv
		default:
			return nil
		}
		if err := c.next(); err != nil {
			return err
		}
		if err := c.factor(); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpBinary, Bin: op})
	}
}

// factor := primary { args } | NUMBER | '(' exprlist ')'
func (c *compiler) factor() error {
	switch c.tok().Type {
	case NUMBER:
		switch lit := c.tok().Literal.(type) {
		case int64:
			c.emit(Instruction{Op: OpPushConst, Const: Int(lit)})
		case float64:
			c.emit(Instruction{Op: OpPushConst, Const: Num(lit)})
		}
		return c.next()

	case LROUND:
		if err := c.next(); err != nil {
			return err
		}
		if err := c.exprList(); err != nil {
			return err
		}
		return c.expect(RROUND)

	case ID, TRUE, FALSE, NONE, IF, WHILE:
		if err := c.primary(); err != nil {
			return err
		}
		// A primary result may be followed by any number of call-argument
		// lists.
		for c.tok().Type == LROUND {
			if err := c.args(); err != nil {
				return err
			}
		}
		return nil

	default:
		return c.errExpected("a number, a name or '('")
	}
}

// primary := IDENT [ '=' expr ] | TRUE | FALSE | NONE | statement
func (c *compiler) primary() error {
	switch c.tok().Type {
	case ID:
		name := c.tok().Literal.(string)
		if err := c.next(); err != nil {
			return err
		}
		if c.tok().Type == ASSIGN {
			if err := c.next(); err != nil {
				return err
			}
			c.emit(Instruction{Op: OpPushName, Name: name})
			if err := c.expr(); err != nil {
				return err
			}
			c.emit(Instruction{Op: OpAssign})
			return nil
		}
		c.emit(Instruction{Op: OpLoadVar, Name: name})
		return nil

	case TRUE:
		c.emit(Instruction{Op: OpPushConst, Const: Bool(true)})
		return c.next()
	case FALSE:
		c.emit(Instruction{Op: OpPushConst, Const: Bool(false)})
		return c.next()
	case NONE:
		c.emit(Instruction{Op: OpPushConst, Const: Null})
		return c.next()

	case IF:
		return c.ifStmt()
	case WHILE:
		return c.whileStmt()

	default:
		return c.errExpected("a number, a name or '('")
	}
}

// args := '(' [ expr { ',' expr } ] ')'
// Compiles a call: push an empty list, append each argument, then combine
// the callable (already on the stack) with the list.
func (c *compiler) args() error {
	if err := c.expect(LROUND); err != nil {
		return err
	}
	c.emit(Instruction{Op: OpMakeList})
	if c.tok().Type != RROUND {
		if err := c.expr(); err != nil {
			return err
		}
		c.emit(Instruction{Op: OpBinary, Bin: BinListAppend})
		for c.tok().Type == COMMA {
			if err := c.next(); err != nil {
				return err
			}
			if err := c.expr(); err != nil {
				return err
			}
			c.emit(Instruction{Op: OpBinary, Bin: BinListAppend})
		}
	}
	if err := c.expect(RROUND); err != nil {
		return err
	}
	c.emit(Instruction{Op: OpBinary, Bin: BinCall})
	return nil
}

// if_stmt := 'if' expr 'then' exprlist [ 'else' exprlist ] 'end'
// The construct always yields a value; an absent else branch pushes null.
func (c *compiler) ifStmt() error {
	if err := c.next(); err != nil { // consume 'if'
		return err
	}
	if err := c.expr(); err != nil {
		return err
	}
	if err := c.expect(THEN); err != nil {
		return err
	}
	jumpFalse := c.emit(Instruction{Op: OpJumpIfFalse})
	if err := c.exprList(); err != nil {
		return err
	}
	jumpEnd := c.emit(Instruction{Op: OpJump})
	c.patch(jumpFalse, len(c.tape))
	if c.tok().Type == ELSE {
		if err := c.next(); err != nil {
			return err
		}
		if err := c.exprList(); err != nil {
			return err
		}
	} else {
		c.emit(Instruction{Op: OpPushConst, Const: Null})
	}
	if err := c.expect(END); err != nil {
		return err
	}
	c.patch(jumpEnd, len(c.tape))
	return nil
}

// while_stmt := 'while' expr 'do' exprlist 'end'
// The null pushed up front is the loop's value if the body never runs; each
// iteration discards the previous value and leaves the body's. The exit jump
// is back-patched once the loop's extent is known.
func (c *compiler) whileStmt() error {
	if err := c.next(); err != nil { // consume 'while'
		return err
	}
	c.emit(Instruction{Op: OpPushConst, Const: Null})
	head := len(c.tape)
	if err := c.expr(); err != nil {
		return err
	}
	if err := c.expect(DO); err != nil {
		return err
	}
	jumpExit := c.emit(Instruction{Op: OpJumpIfFalse})
	c.emit(Instruction{Op: OpDiscard})
	if err := c.exprList(); err != nil {
		return err
	}
	c.emit(Instruction{Op: OpJump, Target: head})
	if err := c.expect(END); err != nil {
		return err
	}
	c.patch(jumpExit, len(c.tape))
	return nil
}
