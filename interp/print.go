package interp

import (
	"io"
	"strconv"
	"strings"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
)

// format renders a reduced value the way a program prints it. Strings are
// written bare; inside lists and tuples they are quoted.
func format(v ast.Expression) string {
	switch v := v.(type) {
	case *ast.Str:
		return v.Value
	case *ast.List:
		return bracketed(v.Items)
	case *ast.Tuple:
		return bracketed(v.Items)
	}
	return scalar(v)
}

// echoForm renders a call result echoed by the REPL. Strings are quoted so
// they can be told apart from numbers and words.
func echoForm(v ast.Expression) string {
	if s, ok := v.(*ast.Str); ok {
		return strconv.Quote(s.Value)
	}
	return format(v)
}

func bracketed(items []ast.Expression) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(echoForm(item))
	}
	b.WriteByte(']')
	return b.String()
}

func scalar(v ast.Expression) string {
	switch v := v.(type) {
	case *ast.Int:
		return v.Digits
	case *ast.Float:
		if v.Digits != "" {
			return v.Digits
		}
		return arith.FormatFloat(v.Value)
	case *ast.Bool:
		if v.Value {
			return ast.KeywordTrue
		}
		return ast.KeywordFalse
	case *ast.Null:
		return ast.KeywordNull
	case *ast.Function:
		return "Function " + v.Name + "()"
	}
	return v.String()
}

func (in *Interpreter) println(s string) {
	io.WriteString(in.out, s+in.newline)
}
