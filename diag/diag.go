// Package diag defines the error kinds reported by the geel lexer, parser and
// interpreter, and renders them with a caret snippet of the source.
//
// Every failure surfaced to a user is a *Error carrying a Kind, a message and,
// when known, the 1-based source position it refers to. Runtime errors built
// from values without tokens have Line == 0.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	LexError Kind = iota + 1
	ParseError
	NameError
	ArityError
	TypeError
	ArithmeticError
	DepthError
	Interrupted
)

var kindNames = map[Kind]string{
	LexError:        "LexError",
	ParseError:      "ParseError",
	NameError:       "NameError",
	ArityError:      "ArityError",
	TypeError:       "TypeError",
	ArithmeticError: "ArithmeticError",
	DepthError:      "DepthError",
	Interrupted:     "Interrupted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a positioned diagnostic.
type Error struct {
	Kind Kind
	Msg  string
	Line int // 1-based; 0 when unknown
	Col  int // 1-based; 0 when unknown
}

// New returns an Error of the given kind without a position.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with fmt formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At returns a copy of e positioned at line and col. A position already set
// is kept, so the innermost location wins as an error bubbles up.
func (e *Error) At(line, col int) *Error {
	if e.Line > 0 {
		return e
	}
	c := *e
	c.Line, c.Col = line, col
	return &c
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

// Is reports whether err is, or wraps, a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Snippet renders err against the source it came from:
//
//	ParseError at 3:12: unexpected token ')'
//
//	   2 | x = (1 + 2
//	   3 | y = 4 )
//	     |       ^
//	   4 | qor(y)
//
// Errors that are not a positioned *Error render as err.Error().
func Snippet(err error, src string) string {
	var e *Error
	if !errors.As(err, &e) || e.Line < 1 {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	line, col := e.Line, e.Col
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", e.Kind, line, col, e.Msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, strings.TrimRight(lines[line-2], "\r"))
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, strings.TrimRight(lines[line-1], "\r"))
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, strings.TrimRight(lines[line], "\r"))
	}
	return b.String()
}
