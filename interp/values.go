package interp

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// value reduces e to a runtime value: references are looked up, equations
// solved, calls made and list items reduced. Literals are returned as-is.
func (in *Interpreter) value(e ast.Expression) (ast.Expression, error) {
	switch e := e.(type) {
	case *ast.Reference:
		v, ok := in.env.Get(e.Name)
		if !ok {
			if _, isBuiltin := in.builtins[e.Name]; isBuiltin {
				return &ast.Function{Name: e.Name}, nil
			}
			return nil, undefined(e.Name).At(e.Token.Line, e.Token.Col)
		}
		if eq, ok := v.(*ast.Equation); ok {
			r, err := in.solveBinding(e.Name, eq)
			if de, ok := err.(*diag.Error); ok {
				return nil, de.At(e.Token.Line, e.Token.Col)
			}
			return r, err
		}
		return v, nil

	case *ast.Equation:
		f, err := in.solve(e)
		if err != nil {
			return nil, err
		}
		return arith.Classify(f), nil

	case *ast.FunctionCall:
		results, err := in.call(e)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return &ast.Null{Token: e.Token}, nil
		}
		return results[0], nil

	case *ast.List:
		out := &ast.List{Token: e.Token, Items: make([]ast.Expression, 0, len(e.Items))}
		for _, item := range e.Items {
			v, err := in.value(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, v)
		}
		return out, nil

	case *ast.Comparison:
		ok, err := in.compare(e)
		if err != nil {
			return nil, err
		}
		return &ast.Bool{Token: e.Operator, Value: ok}, nil
	}
	return e, nil
}

// ── Arithmetic ────────────────────────────────────────────────────────────────

func (in *Interpreter) solve(eq *ast.Equation) (float64, error) {
	e, err := arith.ParseDepth(eq.Tokens, in.maxDepth)
	if err != nil {
		return 0, err
	}
	return arith.Eval(e, in.resolve)
}

// solveBinding solves the equation bound to name, guarding against a chain of
// equations that leads back to name.
func (in *Interpreter) solveBinding(name string, eq *ast.Equation) (ast.Expression, error) {
	if in.solving[name] {
		return nil, diag.Newf(diag.ArithmeticError, "'%s' is defined in terms of itself", name)
	}
	in.solving[name] = true
	defer delete(in.solving, name)

	f, err := in.solve(eq)
	if err != nil {
		return nil, err
	}
	return arith.Classify(f), nil
}

// resolve is the variable lookup used while solving equations.
func (in *Interpreter) resolve(name string) (float64, error) {
	v, ok := in.env.Get(name)
	if !ok {
		if _, isBuiltin := in.builtins[name]; isBuiltin {
			return 0, diag.Newf(diag.TypeError, "'%s' is a function, not a number", name)
		}
		return 0, undefined(name)
	}
	if eq, ok := v.(*ast.Equation); ok {
		r, err := in.solveBinding(name, eq)
		if err != nil {
			return 0, err
		}
		v = r
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return 0, diag.Newf(diag.TypeError, "'%s' is %s, not a number", name, kindOf(v))
}

// number reduces e and requires the result to be numeric.
func (in *Interpreter) number(e ast.Expression) (float64, error) {
	if ref, ok := e.(*ast.Reference); ok {
		f, err := in.resolve(ref.Name)
		if de, ok := err.(*diag.Error); ok {
			return 0, de.At(ref.Token.Line, ref.Token.Col)
		}
		return f, err
	}
	v, err := in.value(e)
	if err != nil {
		return 0, err
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	terr := diag.Newf(diag.TypeError, "expected a number, got %s", kindOf(v))
	if tok, ok := tokenOf(e); ok {
		terr = terr.At(tok.Line, tok.Col)
	}
	return 0, terr
}

func toFloat(v ast.Expression) (float64, bool) {
	switch v := v.(type) {
	case *ast.Int:
		// Past float64 range ParseFloat gives ±Inf, which arithmetic reports
		// as a non-finite result.
		f, err := strconv.ParseFloat(v.Digits, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, true
	case *ast.Float:
		return v.Value, true
	}
	return 0, false
}

// integer returns the int64 behind an Int argument of fn.
func integer(fn string, v ast.Expression) (int64, error) {
	n, ok := v.(*ast.Int)
	if !ok {
		return 0, diag.Newf(diag.TypeError, "%s() expects integers, got %s", fn, kindOf(v))
	}
	i, err := n.Int64()
	if err != nil {
		return 0, diag.Newf(diag.ArithmeticError, "%s() integer %s is out of range", fn, n.Digits)
	}
	return i, nil
}

// ── Conditions ────────────────────────────────────────────────────────────────

// condition evaluates a disjunction of conjunctions. Both levels stop at the
// first term that decides the result.
func (in *Interpreter) condition(groups [][]ast.Expression) (bool, error) {
	for _, group := range groups {
		all := true
		for _, term := range group {
			ok, err := in.term(term)
			if err != nil {
				return false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return true, nil
		}
	}
	return false, nil
}

func (in *Interpreter) term(e ast.Expression) (bool, error) {
	switch e := e.(type) {
	case *ast.Comparison:
		return in.compare(e)
	case *ast.Bool:
		return e.Value, nil
	case *ast.Null:
		return false, nil
	case *ast.Reference:
		v, ok := in.env.Get(e.Name)
		if !ok {
			return false, undefined(e.Name).At(e.Token.Line, e.Token.Col)
		}
		switch v := v.(type) {
		case *ast.Bool:
			return v.Value, nil
		case *ast.Null:
			return false, nil
		}
		return false, diag.Newf(diag.TypeError, "condition '%s' is %s, not %s or %s",
			e.Name, kindOf(v), ast.KeywordTrue, ast.KeywordFalse).At(e.Token.Line, e.Token.Col)
	}
	return false, diag.Newf(diag.TypeError, "%s cannot be used as a condition", kindOf(e))
}

// compare sums each side of c and compares the totals.
func (in *Interpreter) compare(c *ast.Comparison) (bool, error) {
	left, err := in.sum(c.Left)
	if err != nil {
		return false, err
	}
	right, err := in.sum(c.Right)
	if err != nil {
		return false, err
	}

	switch c.Operator.Type {
	case ast.ASSIGN:
		return left == right, nil
	case ast.GT:
		return left > right, nil
	case ast.GTE:
		return left >= right, nil
	case ast.LT:
		return left < right, nil
	case ast.LTE:
		return left <= right, nil
	}
	return false, diag.Newf(diag.TypeError, "unknown comparison '%s'", c.Operator.Literal).
		At(c.Operator.Line, c.Operator.Col)
}

func (in *Interpreter) sum(terms []ast.Expression) (float64, error) {
	var total float64
	for _, t := range terms {
		f, err := in.number(t)
		if err != nil {
			return 0, err
		}
		total += f
	}
	return total, nil
}

// ── Calls ─────────────────────────────────────────────────────────────────────

// call invokes a built-in. Unknown names do nothing and return no results.
func (in *Interpreter) call(n *ast.FunctionCall) ([]ast.Expression, error) {
	b, ok := in.builtins[n.Name]
	if !ok {
		return nil, nil
	}

	args := make([]ast.Expression, 0, len(n.Params))
	for _, p := range n.Params {
		v, err := in.value(p)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if b.Arity >= 0 && len(args) != b.Arity {
		return nil, arityError(n.Name, b.Arity, len(args)).At(n.Token.Line, n.Token.Col)
	}
	results, err := b.Fn(in, args)
	if de, ok := err.(*diag.Error); ok {
		return nil, de.At(n.Token.Line, n.Token.Col)
	}
	return results, err
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func undefined(name string) *diag.Error {
	return diag.Newf(diag.NameError, "name '%s' is not defined", name)
}

func arityError(name string, want, got int) *diag.Error {
	noun := "arguments"
	if want == 1 {
		noun = "argument"
	}
	verb := "were"
	if got == 1 {
		verb = "was"
	}
	return diag.Newf(diag.ArityError, "%s() takes %d %s but %d %s given", name, want, noun, got, verb)
}

// kindOf names the kind of a value for error messages.
func kindOf(v ast.Expression) string {
	switch v.(type) {
	case *ast.Int:
		return "an integer"
	case *ast.Float:
		return "a float"
	case *ast.Str:
		return "a string"
	case *ast.Bool:
		return "a boolean"
	case *ast.Null:
		return ast.KeywordNull
	case *ast.List:
		return "a list"
	case *ast.Tuple:
		return "a tuple"
	case *ast.Function:
		return "a function"
	case *ast.Equation:
		return "an equation"
	}
	return fmt.Sprintf("%T", v)
}

// tokenOf returns the source token of nodes that carry one.
func tokenOf(e ast.Expression) (ast.Token, bool) {
	var t ast.Token
	switch e := e.(type) {
	case *ast.Int:
		t = e.Token
	case *ast.Float:
		t = e.Token
	case *ast.Str:
		t = e.Token
	case *ast.Bool:
		t = e.Token
	case *ast.Null:
		t = e.Token
	case *ast.Reference:
		t = e.Token
	case *ast.FunctionCall:
		t = e.Token
	case *ast.List:
		t = e.Token
	case *ast.Equation:
		if len(e.Tokens) > 0 {
			t = e.Tokens[0]
		}
	}
	return t, t.Line > 0
}
