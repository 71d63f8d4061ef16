// Package interp executes geel programs by walking the syntax tree.
//
// An Interpreter owns one global [Environment] and a table of built-in
// functions. Statements run strictly in order; an error aborts the top-level
// statement it occurred in, is reported on the error writer, and execution
// resumes with the next top-level statement.
package interp

import (
	"io"
	"os"

	"github.com/tevino/abool/v2"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
	"github.com/metaphox/geel/parser"
)

// DefaultMaxDepth bounds the nesting of bodies executed inside each other.
const DefaultMaxDepth = 512

// interruptedMsg is what a stopped statement reports.
const interruptedMsg = "WaaLaJoojiyey"

// Interpreter runs statements against a persistent environment.
type Interpreter struct {
	env      *Environment
	builtins map[string]Builtin

	out     io.Writer
	errOut  io.Writer
	newline string

	maxDepth  int
	depth     int
	interrupt *abool.AtomicBool

	solving map[string]bool // names whose equations are being solved
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets where program output is written. Default os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithErrors sets where error messages are written. Default os.Stderr.
func WithErrors(w io.Writer) Option {
	return func(in *Interpreter) { in.errOut = w }
}

// WithNewline sets the line ending of every printed line. Default "\r\n".
func WithNewline(nl string) Option {
	return func(in *Interpreter) { in.newline = nl }
}

// WithMaxDepth sets the deepest body nesting before a DepthError.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// WithInterrupt shares a flag that aborts the running statement when set.
// The interpreter clears the flag once it has stopped.
func WithInterrupt(flag *abool.AtomicBool) Option {
	return func(in *Interpreter) { in.interrupt = flag }
}

// New returns an Interpreter with an empty environment and the standard
// built-in functions.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		env:      NewEnvironment(),
		builtins: make(map[string]Builtin),
		out:      os.Stdout,
		errOut:   os.Stderr,
		newline:  "\r\n",
		maxDepth: DefaultMaxDepth,
		solving:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(in)
	}
	registerStandard(in)
	return in
}

// Env exposes the interpreter's environment.
func (in *Interpreter) Env() *Environment {
	return in.env
}

// Eval parses src and runs every statement that parsed. Parse errors and
// runtime errors are reported on the error writer and returned together.
func (in *Interpreter) Eval(echo bool, src string) []error {
	prog, perrs := parser.Parse(src)
	var errs []error
	for _, e := range perrs {
		in.report(e)
		errs = append(errs, e)
	}
	return append(errs, in.Interpret(echo, prog.Statements)...)
}

// Interpret executes nodes in order. With echo set, the first result of a
// top-level function call is printed, as a REPL does.
func (in *Interpreter) Interpret(echo bool, nodes []ast.Node) []error {
	var errs []error
	for _, n := range nodes {
		in.depth = 0
		if err := in.exec(echo, n); err != nil {
			in.report(err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (in *Interpreter) report(err error) {
	io.WriteString(in.errOut, err.Error()+in.newline)
}

// ── Statements ────────────────────────────────────────────────────────────────

func (in *Interpreter) exec(echo bool, n ast.Node) error {
	if in.interrupt != nil && in.interrupt.IsSet() {
		in.interrupt.UnSet()
		return diag.New(diag.Interrupted, interruptedMsg)
	}

	switch n := n.(type) {
	case *ast.Ignore:
		return nil
	case *ast.FunctionCall:
		results, err := in.call(n)
		if err != nil {
			return err
		}
		if echo && len(results) > 0 {
			in.println(echoForm(results[0]))
		}
		return nil
	case *ast.Bind:
		return in.bind(n)
	case *ast.CompoundBind:
		return in.compoundBind(n)
	case *ast.ForLoop:
		return in.forLoop(n)
	case *ast.IfChain:
		return in.ifChain(echo, n)
	case ast.Expression:
		v, err := in.value(n)
		if err != nil {
			return err
		}
		in.println(format(v))
		return nil
	}
	return diag.Newf(diag.TypeError, "cannot execute %T", n)
}

// body runs a nested statement list one level deeper.
func (in *Interpreter) body(echo bool, nodes []ast.Node, at ast.Token) error {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.maxDepth {
		return diag.Newf(diag.DepthError, "bodies nested deeper than %d levels", in.maxDepth).At(at.Line, at.Col)
	}
	for _, n := range nodes {
		if err := in.exec(echo, n); err != nil {
			return err
		}
	}
	return nil
}

// bind stores a value under a name. Equations stay unevaluated unless they
// mention the name being bound, in which case they are solved against the
// old binding first.
func (in *Interpreter) bind(n *ast.Bind) error {
	var v ast.Expression
	if eq, ok := n.Value.(*ast.Equation); ok && !eq.References(n.Name) {
		v = eq
	} else {
		var err error
		if v, err = in.value(n.Value); err != nil {
			return err
		}
	}
	in.env.Set(n.Name, v)
	return nil
}

// compoundBind folds the new value into the existing numeric binding.
func (in *Interpreter) compoundBind(n *ast.CompoundBind) error {
	if _, ok := in.env.Get(n.Name); !ok {
		return diag.Newf(diag.NameError, "name '%s' is not defined", n.Name).At(n.Token.Line, n.Token.Col)
	}
	old, err := in.number(&ast.Reference{Token: n.Token, Name: n.Name})
	if err != nil {
		return err
	}
	delta, err := in.number(n.Value)
	if err != nil {
		return err
	}

	op := ast.PLUS
	if n.Op == ast.BindSubtract {
		op = ast.MINUS
	}
	sum, err := arith.Eval(arith.Binary{Op: op, Token: n.Token, L: arith.Num{Value: old}, R: arith.Num{Value: delta}}, nil)
	if err != nil {
		return err
	}
	in.env.Set(n.Name, arith.Classify(sum))
	return nil
}

func (in *Interpreter) forLoop(n *ast.ForLoop) error {
	iter, err := in.value(n.Iterable)
	if err != nil {
		return err
	}
	list, ok := iter.(*ast.List)
	if !ok {
		return diag.Newf(diag.TypeError, "cannot loop over %s", kindOf(iter)).At(n.Token.Line, n.Token.Col)
	}
	for _, item := range list.Items {
		in.env.Set(n.Var, item)
		if err := in.body(false, n.Body, n.Token); err != nil {
			return err
		}
	}
	return nil
}

// ifChain runs the first block whose condition holds.
func (in *Interpreter) ifChain(echo bool, n *ast.IfChain) error {
	for _, b := range n.Blocks {
		ok, err := in.condition(b.Condition)
		if err != nil {
			return err
		}
		if ok {
			return in.body(echo, b.Body, n.Token)
		}
	}
	return nil
}
