// Package arith parses and evaluates the arithmetic runs captured in
// [ast.Equation] nodes.
//
// Grammar, loosest to tightest:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/" | "%") unary }
//	unary   = "-" unary | power
//	power   = primary [ "^" unary ]
//	primary = INT | FLOAT | WORD | "(" sum ")"
//
// so ^ is right-associative and binds tighter than unary minus (-2^2 is -4),
// and every other operator is left-associative.
package arith

import (
	"math"
	"strconv"
	"strings"

	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// Expr is a node of a parsed arithmetic expression.
type Expr interface {
	expr()
}

// Num is a numeric literal.
type Num struct {
	Value float64
}

// Var is a variable reference resolved at evaluation time.
type Var struct {
	Name  string
	Token ast.Token
}

// Neg is unary minus.
type Neg struct {
	X Expr
}

// Binary applies Op (one of + - * / % ^) to L and R.
type Binary struct {
	Op    ast.TokenType
	Token ast.Token
	L, R  Expr
}

func (Num) expr()    {}
func (Var) expr()    {}
func (Neg) expr()    {}
func (Binary) expr() {}

// Resolver returns the numeric value bound to a variable name.
type Resolver func(name string) (float64, error)

// ── Parsing ───────────────────────────────────────────────────────────────────

// DefaultMaxDepth bounds how deeply Parse nests parentheses, unary minus and
// exponents.
const DefaultMaxDepth = 256

type parser struct {
	toks     []ast.Token
	pos      int
	depth    int
	maxDepth int
}

// Parse builds an expression from toks. Whitespace and comment tokens are
// skipped; any other token outside the grammar is an ArithmeticError.
func Parse(toks []ast.Token) (Expr, error) {
	return ParseDepth(toks, DefaultMaxDepth)
}

// ParseDepth is Parse with a nesting limit of maxDepth. A maxDepth of zero or
// less means no limit.
func ParseDepth(toks []ast.Token, maxDepth int) (Expr, error) {
	p := &parser{maxDepth: maxDepth}
	for _, t := range toks {
		if !t.Type.IsTrivia() && t.Type != ast.EOF {
			p.toks = append(p.toks, t)
		}
	}
	if len(p.toks) == 0 {
		return nil, diag.New(diag.ArithmeticError, "empty expression")
	}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, diag.Newf(diag.ArithmeticError, "unexpected %q in expression", t.Literal).At(t.Line, t.Col)
	}
	return e, nil
}

func (p *parser) peek() (ast.Token, bool) {
	if p.pos >= len(p.toks) {
		return ast.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.Type != ast.PLUS && t.Type != ast.MINUS) {
			return left, nil
		}
		p.pos++
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.Type, Token: t, L: left, R: right}
	}
}

func (p *parser) product() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || (t.Type != ast.ASTERISK && t.Type != ast.SLASH && t.Type != ast.PERCENT) {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.Type, Token: t, L: left, R: right}
	}
}

// unary is on every recursive path of the grammar, so it is where depth is
// counted.
func (p *parser) unary() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		t, _ := p.peek()
		return nil, diag.Newf(diag.ArithmeticError, "expression nested deeper than %d levels", p.maxDepth).At(t.Line, t.Col)
	}

	if t, ok := p.peek(); ok && t.Type == ast.MINUS {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg{X: x}, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok && t.Type == ast.CARET {
		p.pos++
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Binary{Op: ast.CARET, Token: t, L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	t, ok := p.peek()
	if !ok {
		last := p.toks[len(p.toks)-1]
		return nil, diag.New(diag.ArithmeticError, "expression ends after an operator").At(last.Line, last.Col)
	}
	p.pos++
	switch t.Type {
	case ast.INT, ast.FLOAT:
		v, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, diag.Newf(diag.ArithmeticError, "bad number %q", t.Literal).At(t.Line, t.Col)
		}
		return Num{Value: v}, nil
	case ast.WORD:
		return Var{Name: t.Literal, Token: t}, nil
	case ast.LPAREN:
		inner, err := p.sum()
		if err != nil {
			return nil, err
		}
		if c, ok := p.peek(); !ok || c.Type != ast.RPAREN {
			return nil, diag.New(diag.ArithmeticError, "missing ')'").At(t.Line, t.Col)
		}
		p.pos++
		return inner, nil
	}
	return nil, diag.Newf(diag.ArithmeticError, "unexpected %q in expression", t.Literal).At(t.Line, t.Col)
}

// ── Evaluation ────────────────────────────────────────────────────────────────

// Eval computes e. Variable lookups go through resolve; a nil resolver makes
// every Var a NameError.
func Eval(e Expr, resolve Resolver) (float64, error) {
	v, err := eval(e, resolve)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, diag.New(diag.ArithmeticError, "result is not a finite number")
	}
	return v, nil
}

func eval(e Expr, resolve Resolver) (float64, error) {
	switch e := e.(type) {
	case Num:
		return e.Value, nil
	case Var:
		if resolve == nil {
			return 0, diag.Newf(diag.NameError, "name '%s' is not defined", e.Name).At(e.Token.Line, e.Token.Col)
		}
		v, err := resolve(e.Name)
		if err != nil {
			if de, ok := err.(*diag.Error); ok {
				return 0, de.At(e.Token.Line, e.Token.Col)
			}
			return 0, err
		}
		return v, nil
	case Neg:
		x, err := eval(e.X, resolve)
		return -x, err
	case Binary:
		l, err := eval(e.L, resolve)
		if err != nil {
			return 0, err
		}
		r, err := eval(e.R, resolve)
		if err != nil {
			return 0, err
		}
		return apply(e.Op, l, r, e.Token)
	}
	return 0, diag.New(diag.ArithmeticError, "unknown expression")
}

func apply(op ast.TokenType, l, r float64, at ast.Token) (float64, error) {
	switch op {
	case ast.PLUS:
		return l + r, nil
	case ast.MINUS:
		return l - r, nil
	case ast.ASTERISK:
		return l * r, nil
	case ast.SLASH:
		if r == 0 {
			return 0, diag.New(diag.ArithmeticError, "division by zero").At(at.Line, at.Col)
		}
		return l / r, nil
	case ast.PERCENT:
		if r == 0 {
			return 0, diag.New(diag.ArithmeticError, "modulo by zero").At(at.Line, at.Col)
		}
		return math.Mod(l, r), nil
	case ast.CARET:
		return math.Pow(l, r), nil
	}
	return 0, diag.Newf(diag.ArithmeticError, "unknown operator %s", op).At(at.Line, at.Col)
}

// Solve parses and evaluates toks in one step.
func Solve(toks []ast.Token, resolve Resolver) (float64, error) {
	e, err := Parse(toks)
	if err != nil {
		return 0, err
	}
	return Eval(e, resolve)
}

// Classify turns a result into a value node: Float when its shortest decimal
// text contains a '.', Int otherwise.
func Classify(v float64) ast.Expression {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	text := FormatFloat(v)
	if !strings.Contains(text, ".") {
		return &ast.Int{Digits: text}
	}
	return &ast.Float{Digits: text, Value: v}
}

// FormatFloat renders v as shortest decimal text without an exponent.
func FormatFloat(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
