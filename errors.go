// errors.go: fault types and caret-snippet rendering
//
// Faults are returned to the caller as values; the core never terminates the
// process and never recovers silently. Lexical and syntactic faults carry the
// 1-based position of the first offending character and format as
// "<file>:<row>:<col>:<message>". Runtime faults carry a kind instead of a
// position (the tape has no source spans).
//
// WrapErrorWithSource upgrades a lex/parse fault into a multi-line snippet
// with a caret under the offending column, in the style
//
//	SYNTAX ERROR in prog.ee at 3:12: expected ')', but got ';'
//
//	   2 | x = (1 + 2
//	   3 |           ;
//	     |           ^
//
// Other errors pass through unchanged. The CLI prints the wrapped form; the
// raw types keep the colon format for embedding and tests.
package evalexpr

import (
	"fmt"
	"strings"
)

// LexError is an unrecognized character sequence.
type LexError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d:%s", e.File, e.Line, e.Col, e.Msg)
}

// ParseError is a token that cannot continue the current production, or a
// missing expected token. AtEOF marks faults whose offending token is the
// end of input, which a REPL can treat as "keep typing".
type ParseError struct {
	File  string
	Line  int
	Col   int
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d:%s", e.File, e.Line, e.Col, e.Msg)
}

// RuntimeErrorKind classifies execution faults.
type RuntimeErrorKind int

const (
	// NameError: a load or call referenced a name with no binding.
	NameError RuntimeErrorKind = iota
	// MalformedTape: an instruction had no defined stack effect at the
	// current state (underflow, operand of the wrong kind). Unreachable for
	// compiler-produced tapes; kept for defensive checking.
	MalformedTape
)

// RuntimeError aborts execution entirely; no partial result is returned.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Msg  string
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case NameError:
		return "name error: " + e.Msg
	default:
		return "malformed tape: " + e.Msg
	}
}

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src when err is a *LexError or *ParseError; any other error is
// returned unchanged. name is the display name of the source (may be empty).
func WrapErrorWithSource(err error, name, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEXICAL ERROR", name, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "SYNTAX ERROR", name, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// snippet builds the header plus up to one line of context either side, with
// a caret under the 1-based column. Out-of-range coordinates are clamped so
// rendering never fails.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
