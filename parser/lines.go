package parser

import (
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// Line is one logical source line with whitespace and comments removed.
type Line struct {
	Indent int         // characters of leading whitespace
	Tokens []ast.Token // significant tokens, never empty
	Number int         // 1-based line of the first token

	// Broken lines held an ILLEGAL token. The lexical error is already
	// reported; the semantic pass skips them together with their children.
	Broken bool
}

// GroupLines splits a token stream into lines. A newline ends the current line
// unless a '(' or '[' is still open. Blank and comment-only lines are dropped.
// Every ILLEGAL token is reported as a LexError.
func GroupLines(toks []ast.Token) ([]Line, []*diag.Error) {
	var (
		lines  []Line
		errs   []*diag.Error
		cur    Line
		indent int
		atBOL  = true // no significant token seen on this physical line yet
		depth  int
	)

	flush := func() {
		if len(cur.Tokens) > 0 {
			lines = append(lines, cur)
		}
		cur = Line{}
	}

	for _, t := range toks {
		switch t.Type {
		case ast.EOF:
			continue
		case ast.COMMENT:
			continue
		case ast.WHITESPACE:
			switch t.Literal {
			case "\n":
				if depth > 0 {
					continue
				}
				flush()
				indent, atBOL = 0, true
			case " ", "\t":
				if atBOL {
					indent++
				}
			}
			continue
		case ast.ILLEGAL:
			errs = append(errs, illegal(t))
			cur.Broken = true
		case ast.LPAREN, ast.LBRACKET:
			depth++
		case ast.RPAREN, ast.RBRACKET:
			if depth > 0 {
				depth--
			}
		}

		if len(cur.Tokens) == 0 {
			cur.Indent = indent
			cur.Number = t.Line
		}
		atBOL = false
		cur.Tokens = append(cur.Tokens, t)
	}
	flush()
	return lines, errs
}

func illegal(t ast.Token) *diag.Error {
	var msg string
	switch {
	case len(t.Literal) >= 2 && t.Literal[:2] == "/*":
		msg = "unterminated block comment"
	case len(t.Literal) >= 1 && (t.Literal[0] == '"' || t.Literal[0] == '\''):
		msg = "unterminated string"
	default:
		msg = "unrecognized character '" + t.Literal + "'"
	}
	return diag.New(diag.LexError, msg).At(t.Line, t.Col)
}
