// lexer.go
package evalexpr

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Literals & identifiers
	ID
	NUMBER

	// Punctuation & operators
	PLUS       // "+"
	MINUS      // "-"
	MULT       // "*"
	DIV        // "/"
	LROUND     // "("
	RROUND     // ")"
	ASSIGN     // "="
	SEMICOLON  // ";"
	COMMA      // ","
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="
	EQ         // "=="
	NEQ        // "!="

	// Keywords
	IF
	THEN
	ELSE
	END
	WHILE
	DO
	TRUE
	FALSE
	NONE
)

// Token is a lexical token. Line and Col are 1-based and point at the
// token's first character. Literal carries int64 or float64 for NUMBER
// (float iff the lexeme contains a decimal point) and the name for ID.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Col     int
}

// keywords map. Control keywords are lower-case; value keywords upper-case.
var keywords = map[string]TokenType{
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"end":   END,
	"while": WHILE,
	"do":    DO,
	"TRUE":  TRUE,
	"FALSE": FALSE,
	"NONE":  NONE,
}

// describeTokenType names a token type in fault messages.
func describeTokenType(tt TokenType) string {
	switch tt {
	case EOF:
		return "end of input"
	case ID:
		return "a name"
	case NUMBER:
		return "a number"
	case PLUS:
		return "'+'"
	case MINUS:
		return "'-'"
	case MULT:
		return "'*'"
	case DIV:
		return "'/'"
	case LROUND:
		return "'('"
	case RROUND:
		return "')'"
	case ASSIGN:
		return "'='"
	case SEMICOLON:
		return "';'"
	case COMMA:
		return "','"
	case LESS:
		return "'<'"
	case LESS_EQ:
		return "'<='"
	case GREATER:
		return "'>'"
	case GREATER_EQ:
		return "'>='"
	case EQ:
		return "'=='"
	case NEQ:
		return "'!='"
	case IF:
		return "'if'"
	case THEN:
		return "'then'"
	case ELSE:
		return "'else'"
	case END:
		return "'end'"
	case WHILE:
		return "'while'"
	case DO:
		return "'do'"
	case TRUE:
		return "'TRUE'"
	case FALSE:
		return "'FALSE'"
	case NONE:
		return "'NONE'"
	default:
		return "an unknown token"
	}
}

// describeToken names a concrete token in fault messages.
func describeToken(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case ID:
		return fmt.Sprintf("name %q", tok.Lexeme)
	case NUMBER:
		return fmt.Sprintf("number %s", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
}

// Lexer scans a source string into tokens, one at a time. The parser holds
// exactly the current token and advances by request: construction lexes the
// first token immediately, Next replaces it with the following one.
type Lexer struct {
	file string
	src  string
	cur  int
	line int // 1-based
	col  int // 1-based

	tok Token
}

// NewLexer creates a lexer for the given source and lexes the first token.
// file is the display name used in fault messages.
func NewLexer(file, src string) (*Lexer, error) {
	l := &Lexer{
		file: file,
		src:  src,
		line: 1,
		col:  1,
	}
	if err := l.Next(); err != nil {
		return nil, err
	}
	return l, nil
}

// Token returns the current token.
func (l *Lexer) Token() Token { return l.tok }

// File returns the display name of the source.
func (l *Lexer) File() string { return l.file }

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) skipWhitespace() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) err(msg string) error {
	return &LexError{File: l.file, Line: l.line, Col: l.col, Msg: msg}
}

// Next advances past the current token and lexes the following one.
func (l *Lexer) Next() error {
	l.skipWhitespace()

	startLine, startCol := l.line, l.col
	start := l.cur

	mk := func(tt TokenType, lit interface{}) {
		l.tok = Token{
			Type:    tt,
			Lexeme:  l.src[start:l.cur],
			Literal: lit,
			Line:    startLine,
			Col:     startCol,
		}
	}

	b, ok := l.peek()
	if !ok {
		mk(EOF, nil)
		return nil
	}

	// Identifiers / keywords: alphabetic-led, alphanumeric continuation.
	if isAlpha(b) {
		for {
			b, ok := l.peek()
			if !ok || !isAlphaNum(b) {
				break
			}
			l.advance()
		}
		lex := l.src[start:l.cur]
		if tt, ok := keywords[lex]; ok {
			mk(tt, nil)
		} else {
			mk(ID, lex)
		}
		return nil
	}

	// Numbers: digit-led, optional single decimal point, no exponent, no
	// sign (sign is grammar-level).
	if isDigit(b) {
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			l.advance()
		}
		isFloat := false
		if b, ok := l.peek(); ok && b == '.' {
			isFloat = true
			l.advance()
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
		lex := l.src[start:l.cur]
		if isFloat {
			f, convErr := strconv.ParseFloat(lex, 64)
			if convErr != nil {
				return &LexError{File: l.file, Line: startLine, Col: startCol, Msg: "invalid number literal"}
			}
			mk(NUMBER, f)
			return nil
		}
		n, convErr := strconv.ParseInt(lex, 10, 64)
		if convErr != nil {
			return &LexError{File: l.file, Line: startLine, Col: startCol, Msg: "invalid number literal"}
		}
		mk(NUMBER, n)
		return nil
	}

	// Two-character operators before their one-character prefixes.
	two := func(second byte, long, short TokenType) {
		l.advance()
		if nb, ok := l.peek(); ok && nb == second {
			l.advance()
			mk(long, nil)
			return
		}
		mk(short, nil)
	}

	switch b {
	case '<':
		two('=', LESS_EQ, LESS)
		return nil
	case '>':
		two('=', GREATER_EQ, GREATER)
		return nil
	case '=':
		two('=', EQ, ASSIGN)
		return nil
	case '!':
		l.advance()
		if nb, ok := l.peek(); ok && nb == '=' {
			l.advance()
			mk(NEQ, nil)
			return nil
		}
		return &LexError{File: l.file, Line: startLine, Col: startCol, Msg: "bad input '!' (did you mean '!='?)"}
	case '+':
		l.advance()
		mk(PLUS, nil)
		return nil
	case '-':
		l.advance()
		mk(MINUS, nil)
		return nil
	case '*':
		l.advance()
		mk(MULT, nil)
		return nil
	case '/':
		l.advance()
		mk(DIV, nil)
		return nil
	case '(':
		l.advance()
		mk(LROUND, nil)
		return nil
	case ')':
		l.advance()
		mk(RROUND, nil)
		return nil
	case ';':
		l.advance()
		mk(SEMICOLON, nil)
		return nil
	case ',':
		l.advance()
		mk(COMMA, nil)
		return nil
	}

	// Anything else is a fatal lexical fault carrying a short snippet of
	// the offending text.
	snip := l.src[l.cur:]
	if len(snip) > 3 {
		snip = snip[:3] + "..."
	}
	return l.err(fmt.Sprintf("bad input %q", snip))
}
