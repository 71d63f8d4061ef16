// Package ast defines the token types and the syntax tree nodes for geel.
//
// Every source construct has a corresponding node type. The hierarchy is:
//
//	Node (interface)
//	  Statement (interface)
//	    Bind, CompoundBind, ForLoop, IfChain, Ignore
//	  Expression (interface)
//	    Int, Float, Str, Bool, Null, Reference, Equation
//	    FunctionCall, Comparison, List, Tuple, Function
//
// The interpreter stores and passes values as expression nodes, so Int, Float,
// Str, Bool, Null, List, Tuple and Function double as runtime values. Nodes
// built at runtime carry a zero Token.
package ast

import (
	"strconv"
	"strings"
)

// ── Interfaces ────────────────────────────────────────────────────────────────

// Node is the root interface for every element in the geel AST.
type Node interface {
	// TokenLiteral returns the literal string of the token that began this node.
	TokenLiteral() string
	// String returns a compact, source-like rendering of the node.
	// It is intended for debugging and test output.
	String() string
}

// Statement is a Node executed for its effect on the environment or control flow.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that reduces to a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node produced by the parser: the top-level statements
// of one source unit in order.
type Program struct {
	Statements []Node
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// String returns all statements one per line, useful for snapshot testing.
func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ── Literals ──────────────────────────────────────────────────────────────────

// Int is an integer literal or runtime integer value. Digits is kept as
// written ("007" stays "007") and is only parsed when a number is needed.
type Int struct {
	Token  Token
	Digits string
}

// NewInt returns the Int for v.
func NewInt(v int64) *Int { return &Int{Digits: strconv.FormatInt(v, 10)} }

func (n *Int) expressionNode()      {}
func (n *Int) TokenLiteral() string { return n.Token.Literal }
func (n *Int) String() string       { return n.Digits }

// Int64 parses Digits. It fails with strconv.ErrRange when the value does not
// fit in an int64.
func (n *Int) Int64() (int64, error) { return strconv.ParseInt(n.Digits, 10, 64) }

// Float keeps the digit text it was written or computed with, so printing
// reproduces the source form ("2.50" stays "2.50").
type Float struct {
	Token  Token
	Digits string
	Value  float64
}

func (n *Float) expressionNode()      {}
func (n *Float) TokenLiteral() string { return n.Token.Literal }
func (n *Float) String() string       { return n.Digits }

// Str is a string literal with its quotes stripped and escapes processed.
type Str struct {
	Token Token
	Value string
}

func (n *Str) expressionNode()      {}
func (n *Str) TokenLiteral() string { return n.Token.Literal }
func (n *Str) String() string       { return strconv.Quote(n.Value) }

// Bool is Run or Been.
type Bool struct {
	Token Token
	Value bool
}

func (n *Bool) expressionNode()      {}
func (n *Bool) TokenLiteral() string { return n.Token.Literal }
func (n *Bool) String() string {
	if n.Value {
		return KeywordTrue
	}
	return KeywordFalse
}

// Null is Waxba.
type Null struct {
	Token Token
}

func (n *Null) expressionNode()      {}
func (n *Null) TokenLiteral() string { return n.Token.Literal }
func (n *Null) String() string       { return KeywordNull }

// ── Names and bindings ────────────────────────────────────────────────────────

// Reference reads the current binding of Name.
type Reference struct {
	Token Token
	Name  string
}

func (n *Reference) expressionNode()      {}
func (n *Reference) TokenLiteral() string { return n.Token.Literal }
func (n *Reference) String() string       { return n.Name }

// Bind stores Value under Name, creating or overwriting the binding.
//
//	x = 5
type Bind struct {
	Token Token // the name token
	Name  string
	Value Expression
}

func (n *Bind) statementNode()       {}
func (n *Bind) TokenLiteral() string { return n.Token.Literal }
func (n *Bind) String() string       { return n.Name + " = " + n.Value.String() }

// BindOp selects the fold performed by a CompoundBind.
type BindOp int

const (
	BindAdd BindOp = iota + 1
	BindSubtract
)

func (op BindOp) String() string {
	switch op {
	case BindAdd:
		return "+"
	case BindSubtract:
		return "-"
	}
	return "?"
}

// CompoundBind folds Value into the existing numeric binding of Name.
//
//	x += 3
//	x -= 2
type CompoundBind struct {
	Token Token // the name token
	Name  string
	Op    BindOp
	Value Expression
}

func (n *CompoundBind) statementNode()       {}
func (n *CompoundBind) TokenLiteral() string { return n.Token.Literal }
func (n *CompoundBind) String() string {
	return n.Name + " " + n.Op.String() + "= " + n.Value.String()
}

// ── Computation ───────────────────────────────────────────────────────────────

// Equation is an unevaluated arithmetic token run. Whitespace and comments
// are already removed; evaluation is deferred to the interpreter.
//
//	2 + 3 * 4
type Equation struct {
	Tokens []Token
}

func (n *Equation) expressionNode() {}
func (n *Equation) TokenLiteral() string {
	if len(n.Tokens) > 0 {
		return n.Tokens[0].Literal
	}
	return ""
}

func (n *Equation) String() string {
	parts := make([]string, len(n.Tokens))
	for i, t := range n.Tokens {
		parts[i] = t.Literal
	}
	return strings.Join(parts, " ")
}

// References reports whether the equation mentions the variable name.
func (n *Equation) References(name string) bool {
	for _, t := range n.Tokens {
		if t.Is(name) {
			return true
		}
	}
	return false
}

// FunctionCall invokes a built-in with already-reduced parameters.
//
//	qor("salaan", x)
type FunctionCall struct {
	Token  Token // the function name token
	Name   string
	Params []Expression
}

func (n *FunctionCall) expressionNode()      {}
func (n *FunctionCall) TokenLiteral() string { return n.Token.Literal }
func (n *FunctionCall) String() string {
	return n.Name + "(" + joinNodes(n.Params) + ")"
}

// Comparison compares the sums of its two term sequences.
type Comparison struct {
	Operator Token // one of ASSIGN (equality), GT, GTE, LT, LTE
	Left     []Expression
	Right    []Expression
}

func (n *Comparison) expressionNode()      {}
func (n *Comparison) TokenLiteral() string { return n.Operator.Literal }
func (n *Comparison) String() string {
	op := n.Operator.Literal
	if n.Operator.Type == ASSIGN {
		op = "="
	}
	return joinSpaced(n.Left) + " " + op + " " + joinSpaced(n.Right)
}

// ── Collections and function values ───────────────────────────────────────────

// List is an ordered sequence such as a list literal or the result of faraq.
type List struct {
	Token Token // the '[' token
	Items []Expression
}

func (n *List) expressionNode()      {}
func (n *List) TokenLiteral() string { return n.Token.Literal }
func (n *List) String() string       { return "[" + joinNodes(n.Items) + "]" }

// Tuple is a fixed group of values, produced by qaybiyobaaq.
type Tuple struct {
	Items []Expression
}

func (n *Tuple) expressionNode()      {}
func (n *Tuple) TokenLiteral() string { return "" }
func (n *Tuple) String() string       { return "(" + joinNodes(n.Items) + ")" }

// Function is a function value: what a bare built-in name evaluates to.
type Function struct {
	Name string
}

func (n *Function) expressionNode()      {}
func (n *Function) TokenLiteral() string { return n.Name }
func (n *Function) String() string       { return "Function " + n.Name + "()" }

// ── Control flow ──────────────────────────────────────────────────────────────

// ForLoop binds Var to each item of Iterable in turn and runs Body.
//
//	i kastoo kujira faraq(0, 3):
//	    qor(i)
type ForLoop struct {
	Token    Token // the loop variable token
	Var      string
	Iterable Expression
	Body     []Node
}

func (n *ForLoop) statementNode()       {}
func (n *ForLoop) TokenLiteral() string { return n.Token.Literal }
func (n *ForLoop) String() string {
	return n.Var + " " + KeywordEach + " " + KeywordIn + " " + n.Iterable.String() +
		": {" + joinStatements(n.Body) + "}"
}

// IfBlock is one arm of an if-chain. Condition is a disjunction of
// conjunctions: the block is taken when every term of any one group holds.
type IfBlock struct {
	Condition [][]Expression
	Body      []Node
}

func (b IfBlock) String() string {
	groups := make([]string, len(b.Condition))
	for i, and := range b.Condition {
		terms := make([]string, len(and))
		for j, term := range and {
			terms[j] = term.String()
		}
		groups[i] = strings.Join(terms, " "+KeywordAnd+" ")
	}
	return strings.Join(groups, " "+KeywordOr+" ") + ": {" + joinStatements(b.Body) + "}"
}

// IfChain runs the body of the first block whose condition holds.
//
//	hadduu x > 1:
//	    qor("weyn")
//	kale:
//	    qor("yar")
type IfChain struct {
	Token  Token // the 'hadduu' token
	Blocks []IfBlock
}

func (n *IfChain) statementNode()       {}
func (n *IfChain) TokenLiteral() string { return n.Token.Literal }
func (n *IfChain) String() string {
	parts := make([]string, len(n.Blocks))
	for i, b := range n.Blocks {
		kw := KeywordElif
		if i == 0 {
			kw = KeywordIf
		}
		parts[i] = kw + " " + b.String()
	}
	return strings.Join(parts, " ")
}

// Ignore marks a position that produced nothing. It never reaches the interpreter.
type Ignore struct{}

func (n *Ignore) statementNode()       {}
func (n *Ignore) TokenLiteral() string { return "" }
func (n *Ignore) String() string       { return "" }

// ── Helpers ───────────────────────────────────────────────────────────────────

func joinNodes(nodes []Expression) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

func joinSpaced(nodes []Expression) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

func joinStatements(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, "; ")
}
