// Package interp_test exercises the interpreter end to end: source text goes
// through the lexer and parser and the printed output is compared.
//
// Test categories:
//   - Bindings:    assignment, compound assignment, lazy and self-referencing equations
//   - Arithmetic:  precedence, classification, division by zero, cycles
//   - Control:     if-chains, compound conditions, loops
//   - Built-ins:   qor, labaale, qaybiyobaaq, faraq, arity and unknown names
//   - Errors:      recovery, depth limit, interrupt
package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tevino/abool/v2"

	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
	"github.com/metaphox/geel/interp"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

type result struct {
	out    string
	errOut string
	errs   []error
}

// run evaluates src in a fresh interpreter with "\n" line endings.
func run(t *testing.T, echo bool, src string, opts ...interp.Option) result {
	t.Helper()
	var out, errOut bytes.Buffer
	opts = append([]interp.Option{
		interp.WithOutput(&out),
		interp.WithErrors(&errOut),
		interp.WithNewline("\n"),
	}, opts...)
	in := interp.New(opts...)
	errs := in.Eval(echo, src)
	return result{out: out.String(), errOut: errOut.String(), errs: errs}
}

// expectOutput runs src in script mode and requires it to succeed with want.
func expectOutput(t *testing.T, src, want string) {
	t.Helper()
	r := run(t, false, src)
	if len(r.errs) > 0 {
		t.Fatalf("unexpected errors for %q:\n%s", src, r.errOut)
	}
	if r.out != want {
		t.Errorf("output of %q:\ngot  %q\nwant %q", src, r.out, want)
	}
}

// expectError runs src and requires its first error to be of kind.
func expectError(t *testing.T, src string, kind diag.Kind) result {
	t.Helper()
	r := run(t, false, src)
	if len(r.errs) == 0 {
		t.Fatalf("expected %s for %q, got output %q", kind, src, r.out)
	}
	if !diag.Is(r.errs[0], kind) {
		t.Fatalf("expected %s for %q, got %v", kind, src, r.errs[0])
	}
	return r
}

// ── Bindings ──────────────────────────────────────────────────────────────────

func TestBind_RoundTrip(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = 5\nx", "5\n"},
		{"x = 2.50\nx", "2.50\n"},
		{"x = \"salaan\"\nx", "salaan\n"},
		{"x = Run\nx", "Run\n"},
		{"x = Been\nx", "Been\n"},
		{"x = Waxba\nx", "Waxba\n"},
		{"x = [1, \"a\", Run]\nx", "[1, \"a\", Run]\n"},
		{"x = 1\ny = x\nx = 2\ny", "1\n"},
		{"x = 007\nx", "007\n"},
		{"x = 99999999999999999999\nx", "99999999999999999999\n"},
		{"x = [007, 1]\nx", "[007, 1]\n"},
	}
	for _, tt := range tests {
		expectOutput(t, tt.src, tt.want)
	}
}

func TestCompoundBind(t *testing.T) {
	expectOutput(t, "x = 5\nx += 3\nx", "8\n")
	expectOutput(t, "x = 5\nx -= 2\nx", "3\n")
	expectOutput(t, "x = 1.5\nx += 1\nx", "2.5\n")
	expectOutput(t, "x = 0.5\nx += 0.5\nx", "1\n")
	expectOutput(t, "y = 2\nx = y * 3\nx += y\nx", "8\n")
	expectOutput(t, "x = 007\nx += 1\nx", "8\n")
	expectOutput(t, "x = 99999999999999999999\nx += 1\nx", "100000000000000000000\n")
}

func TestCompoundBind_Errors(t *testing.T) {
	expectError(t, "z += 1", diag.NameError)
	r := expectError(t, "s = \"a\"\ns += 1", diag.TypeError)
	if !strings.Contains(r.errOut, "'s' is a string, not a number") {
		t.Errorf("error text: got %q", r.errOut)
	}
}

func TestBind_LazyEquation(t *testing.T) {
	// The equation is stored unsolved and sees later bindings.
	expectOutput(t, "y = x * 2\nx = 10\ny\nx = 1\ny", "20\n2\n")
}

func TestBind_SelfReference(t *testing.T) {
	expectOutput(t, "x = 1\nx = x + 1\nx = x * 10\nx", "20\n")
}

func TestReference_Unbound(t *testing.T) {
	r := expectError(t, "nabad", diag.NameError)
	if want := "NameError: name 'nabad' is not defined\n"; r.errOut != want {
		t.Errorf("error text: got %q, want %q", r.errOut, want)
	}
	err := r.errs[0].(*diag.Error)
	if err.Line != 1 || err.Col != 1 {
		t.Errorf("position: got %d:%d, want 1:1", err.Line, err.Col)
	}
}

func TestReference_BuiltinName(t *testing.T) {
	expectOutput(t, "qor", "Function qor()\n")
	expectOutput(t, "f = faraq\nf", "Function faraq()\n")
}

// ── Arithmetic ────────────────────────────────────────────────────────────────

func TestEquation(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "14\n"},
		{"(2 + 3) * 4", "20\n"},
		{"10 / 4", "2.5\n"},
		{"10 / 5", "2\n"},
		{"7 % 3", "1\n"},
		{"2 ^ 10", "1024\n"},
		{"-3 + 1", "-2\n"},
		{"x = 4\nx * x - 1", "15\n"},
	}
	for _, tt := range tests {
		expectOutput(t, tt.src, tt.want)
	}
}

func TestEquation_Errors(t *testing.T) {
	expectError(t, "1 / 0", diag.ArithmeticError)
	expectError(t, "1 % 0", diag.ArithmeticError)
	expectError(t, "q + 1", diag.NameError)
	expectError(t, "s = \"a\"\ns + 1", diag.TypeError)
	expectError(t, "qor + 1", diag.TypeError)
}

func TestEquation_Cycle(t *testing.T) {
	r := expectError(t, "a = b + 1\nb = a + 1\na", diag.ArithmeticError)
	if !strings.Contains(r.errOut, "defined in terms of itself") {
		t.Errorf("error text: got %q", r.errOut)
	}
}

// ── Control flow ──────────────────────────────────────────────────────────────

func TestIfChain_FirstMatchWins(t *testing.T) {
	src := `hadduu x > 10:
    qor("weyn")
haddii x > 3:
    qor("dhexe")
haddii x > 1:
    qor("yar")
kale:
    qor("eber")
`
	tests := []struct {
		x    string
		want string
	}{
		{"20", "weyn\n"},
		{"5", "dhexe\n"},
		{"2", "yar\n"},
		{"0", "eber\n"},
	}
	for _, tt := range tests {
		expectOutput(t, "x = "+tt.x+"\n"+src, tt.want)
	}
}

func TestIfChain_NoMatch(t *testing.T) {
	expectOutput(t, "hadduu 1 > 2:\n    qor(\"no\")\nqor(\"done\")", "done\n")
}

func TestIfChain_Conditions(t *testing.T) {
	tests := []struct {
		name string
		cond string
		want string
	}{
		{"equality", "2 = 2", "haa\n"},
		{"double equals", "2 == 2", "haa\n"},
		{"greater or equal", "3 >= 3", "haa\n"},
		{"less or equal", "4 <= 3", ""},
		{"true literal", "Run", "haa\n"},
		{"false literal", "Been", ""},
		{"null literal", "Waxba", ""},
		{"bool reference", "a", "haa\n"},
		{"conjunction", "a iyo 1 < 2", "haa\n"},
		{"conjunction false", "a iyo b", ""},
		{"disjunction", "b ama a", "haa\n"},
		{"mixed", "b ama a iyo 1 < 2", "haa\n"},
		{"mixed false", "b ama a iyo 2 < 1", ""},
		{"summed sides", "n 1 > 5", "haa\n"},
		{"equation side", "n * 2 = 10", "haa\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "a = Run\nb = Been\nn = 5\nhadduu " + tt.cond + ":\n    qor(\"haa\")\n"
			expectOutput(t, src, tt.want)
		})
	}
}

func TestIfChain_ContinuedCondition(t *testing.T) {
	src := `x = 1
hadduu x > 10
ama x < 2:
    qor("bannaanka")
`
	expectOutput(t, src, "bannaanka\n")
}

func TestIfChain_ReferenceMustBeBool(t *testing.T) {
	expectError(t, "n = 3\nhadduu n:\n    qor(1)", diag.TypeError)
	expectError(t, "hadduu maqan:\n    qor(1)", diag.NameError)
}

func TestForLoop(t *testing.T) {
	src := `s = 0
count = 0
i kastoo kujira [1, 2, 3]:
    s += i
    count += 1
s
count
i
`
	expectOutput(t, src, "6\n3\n3\n")
}

func TestForLoop_OverCall(t *testing.T) {
	expectOutput(t, "i kastoo kujira faraq(1, 4): qor(i)", "1\n2\n3\n")
}

func TestForLoop_Nested(t *testing.T) {
	src := `i kastoo kujira [1, 2]:
    j kastoo kujira [10, 20]:
        qor(i, ":", j)
`
	expectOutput(t, src, "1:10\n1:20\n2:10\n2:20\n")
}

func TestForLoop_NotAList(t *testing.T) {
	expectError(t, "i kastoo kujira 5: qor(i)", diag.TypeError)
}

func TestForLoop_BodyDoesNotEcho(t *testing.T) {
	r := run(t, true, "i kastoo kujira [1, 2]: labaale(i)")
	if r.out != "" {
		t.Errorf("loop body echoed %q", r.out)
	}
}

// ── Built-ins ─────────────────────────────────────────────────────────────────

func TestBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`qor("salaan")`, "salaan\n"},
		{`qor("x = ", 5)`, "x = 5\n"},
		{`qor()`, "\n"},
		{`qor("a\tb")`, "a\tb\n"},
		{`qor(labaale(5))`, "0b101\n"},
		{`qor(labaale(-5))`, "-0b101\n"},
		{`qor(labaale(0))`, "0b0\n"},
		{`qor(qaybiyobaaq(7, 2))`, "[3, 1]\n"},
		{`qor(qaybiyobaaq(-7, 2))`, "[-3, -1]\n"},
		{`qor(qaybiyobaaq(7.0, 2.0))`, "[3.5, 1]\n"},
		{`qor(faraq(2, 5))`, "[2, 3, 4]\n"},
		{`qor(faraq(3, 3))`, "[]\n"},
		{`qor(faraq(5, 2))`, "[]\n"},
		{`qor([labaale(2), 1 + 1])`, "[\"0b10\", 2]\n"},
	}
	for _, tt := range tests {
		expectOutput(t, tt.src, tt.want)
	}
}

func TestBuiltins_Errors(t *testing.T) {
	r := expectError(t, "faraq(1)", diag.ArityError)
	if want := "ArityError: faraq() takes 2 arguments but 1 was given\n"; r.errOut != want {
		t.Errorf("error text: got %q, want %q", r.errOut, want)
	}
	expectError(t, "labaale(1, 2)", diag.ArityError)
	expectError(t, `labaale("x")`, diag.TypeError)
	expectError(t, "labaale(1.5)", diag.TypeError)
	expectError(t, "qaybiyobaaq(1, 0)", diag.ArithmeticError)
	expectError(t, "qaybiyobaaq(1.0, 0.0)", diag.ArithmeticError)
	expectError(t, `faraq("a", 2)`, diag.TypeError)

	r = expectError(t, "labaale(99999999999999999999)", diag.ArithmeticError)
	if want := "ArithmeticError: labaale() integer 99999999999999999999 is out of range\n"; r.errOut != want {
		t.Errorf("error text: got %q, want %q", r.errOut, want)
	}
	expectError(t, "faraq(0, 99999999999999999999)", diag.ArithmeticError)
	expectError(t, "qaybiyobaaq(99999999999999999999, 2)", diag.ArithmeticError)
}

func TestBuiltins_UnknownNameIsNoop(t *testing.T) {
	expectOutput(t, "sheeg(1, 2)\nqor(\"ok\")", "ok\n")
}

func TestEcho(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"labaale(5)", "\"0b101\"\n"},
		{"qaybiyobaaq(7, 2)", "[3, 1]\n"},
		{"qaybiyobaaq(7.0, 2.0)", "[3.5, 1]\n"},
		{"faraq(0, 2)", "[0, 1]\n"},
		{`qor("hi")`, "hi\n"},
		{"x = 5", ""},
	}
	for _, tt := range tests {
		r := run(t, true, tt.src)
		if r.out != tt.want {
			t.Errorf("echo of %q: got %q, want %q", tt.src, r.out, tt.want)
		}
	}

	if r := run(t, false, "labaale(5)"); r.out != "" {
		t.Errorf("script mode echoed %q", r.out)
	}
}

func TestRegister(t *testing.T) {
	var out bytes.Buffer
	in := interp.New(interp.WithOutput(&out), interp.WithNewline("\n"))
	in.Register("labo", interp.Builtin{Arity: 1, Fn: func(_ *interp.Interpreter, args []ast.Expression) ([]ast.Expression, error) {
		n, err := args[0].(*ast.Int).Int64()
		if err != nil {
			return nil, err
		}
		return []ast.Expression{ast.NewInt(n * 2)}, nil
	}})
	if errs := in.Eval(false, "qor(labo(21))"); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := out.String(); got != "42\n" {
		t.Errorf("got %q, want %q", got, "42\n")
	}
}

// ── Errors and limits ─────────────────────────────────────────────────────────

func TestErrors_ExecutionContinues(t *testing.T) {
	r := run(t, false, "qor(y)\nqor(\"kadib\")\n1 / 0\nqor(\"dhamaad\")")
	if r.out != "kadib\ndhamaad\n" {
		t.Errorf("output: got %q", r.out)
	}
	if len(r.errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(r.errs), r.errs)
	}
	if !diag.Is(r.errs[0], diag.NameError) || !diag.Is(r.errs[1], diag.ArithmeticError) {
		t.Errorf("error kinds: %v", r.errs)
	}
	lines := strings.Split(strings.TrimSuffix(r.errOut, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "NameError: name 'y' is not defined" {
		t.Errorf("error output: %q", r.errOut)
	}
}

func TestErrors_ParseErrorsReported(t *testing.T) {
	r := run(t, false, "x = = 1\nqor(\"ok\")")
	if r.out != "ok\n" {
		t.Errorf("output: got %q", r.out)
	}
	if len(r.errs) == 0 || !diag.Is(r.errs[0], diag.ParseError) {
		t.Errorf("expected a ParseError, got %v", r.errs)
	}
}

func TestErrors_DeepEquation(t *testing.T) {
	src := "x = " + strings.Repeat("(", 100000) + "1" + strings.Repeat(")", 100000) + "\nqor(\"kadib\")"
	r := run(t, false, src)
	if len(r.errs) != 1 || !diag.Is(r.errs[0], diag.ParseError) {
		t.Fatalf("expected one ParseError, got %v", r.errs)
	}
	if r.out != "kadib\n" {
		t.Errorf("output: got %q", r.out)
	}
}

func TestErrors_DepthLimit(t *testing.T) {
	src := `hadduu Run:
    hadduu Run:
        hadduu Run:
            qor("hoos")
qor("kor")
`
	r := run(t, false, src, interp.WithMaxDepth(2))
	if len(r.errs) != 1 || !diag.Is(r.errs[0], diag.DepthError) {
		t.Fatalf("expected one DepthError, got %v", r.errs)
	}
	if r.out != "kor\n" {
		t.Errorf("output: got %q", r.out)
	}

	if r := run(t, false, src, interp.WithMaxDepth(3)); r.out != "hoos\nkor\n" {
		t.Errorf("output within limit: got %q (%v)", r.out, r.errs)
	}
}

func TestErrors_Interrupt(t *testing.T) {
	flag := abool.New()
	flag.Set()
	r := run(t, false, "qor(1)\nqor(2)", interp.WithInterrupt(flag))
	if len(r.errs) != 1 || !diag.Is(r.errs[0], diag.Interrupted) {
		t.Fatalf("expected one Interrupted error, got %v", r.errs)
	}
	if r.out != "2\n" {
		t.Errorf("output: got %q", r.out)
	}
	if flag.IsSet() {
		t.Error("interrupt flag was not cleared")
	}
}

func TestNewline_Default(t *testing.T) {
	var out bytes.Buffer
	in := interp.New(interp.WithOutput(&out))
	in.Eval(false, "qor(1)")
	if got := out.String(); got != "1\r\n" {
		t.Errorf("got %q, want %q", got, "1\r\n")
	}
}

func TestEnvironment_Persists(t *testing.T) {
	var out bytes.Buffer
	in := interp.New(interp.WithOutput(&out), interp.WithNewline("\n"))
	in.Eval(false, "x = 5")
	in.Eval(false, "y = x + 1")
	in.Eval(false, "y")
	if got := out.String(); got != "6\n" {
		t.Errorf("got %q, want %q", got, "6\n")
	}
	names := in.Env().Names()
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Errorf("names: got %v", names)
	}
}
