package arith_test

import (
	"strings"
	"testing"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
	"github.com/metaphox/geel/lexer"
)

func solve(t *testing.T, src string, vars map[string]float64) (float64, error) {
	t.Helper()
	toks := lexer.Lex(src)
	return arith.Solve(toks, func(name string) (float64, error) {
		if v, ok := vars[name]; ok {
			return v, nil
		}
		return 0, diag.Newf(diag.NameError, "name '%s' is not defined", name)
	})
}

// TestSolve_Precedence covers every precedence level and associativity rule.
func TestSolve_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 - 4 - 3", 3},
		{"2 ^ 3 ^ 2", 512},
		{"-2 ^ 2", -4},
		{"2 ^ -1", 0.5},
		{"7 % 3 * 2", 2},
		{"5 - (2 + 1)", 2},
		{"--3", 3},
		{"1.5 * 2", 3},
		{"x * 2 + y", 13},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := solve(t, tt.src, map[string]float64{"x": 5, "y": 3})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.Kind
	}{
		{"1 / 0", diag.ArithmeticError},
		{"1 % 0", diag.ArithmeticError},
		{"1 +", diag.ArithmeticError},
		{"(1 + 2", diag.ArithmeticError},
		{"1 2", diag.ArithmeticError},
		{"* 3", diag.ArithmeticError},
		{"10 ^ 400", diag.ArithmeticError},
		{"z + 1", diag.NameError},
		{"", diag.ArithmeticError},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := solve(t, tt.src, nil)
			if !diag.Is(err, tt.kind) {
				t.Fatalf("got %v, want %s", err, tt.kind)
			}
		})
	}
}

// TestSolve_ErrorPosition checks that a resolver error is placed on the
// variable token.
func TestSolve_ErrorPosition(t *testing.T) {
	_, err := solve(t, "1 + zz", nil)
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("got %T, want *diag.Error", err)
	}
	if de.Line != 1 || de.Col != 5 {
		t.Fatalf("got %d:%d, want 1:5", de.Line, de.Col)
	}
}

func TestParseDepth(t *testing.T) {
	toks := lexer.Lex("((1))")
	if _, err := arith.ParseDepth(toks, 3); err != nil {
		t.Fatalf("depth 3: unexpected error %v", err)
	}
	if _, err := arith.ParseDepth(toks, 2); !diag.Is(err, diag.ArithmeticError) {
		t.Fatalf("depth 2: got %v, want ArithmeticError", err)
	}
	if _, err := arith.ParseDepth(lexer.Lex("- - - 1"), 3); err == nil {
		t.Error("unary chain: expected a depth error")
	}
	if _, err := arith.ParseDepth(lexer.Lex("2 ^ 2 ^ 2"), 0); err != nil {
		t.Errorf("no limit: unexpected error %v", err)
	}

	deep := strings.Repeat("(", 100000) + "1" + strings.Repeat(")", 100000)
	_, err := arith.Parse(lexer.Lex(deep))
	if err == nil || !strings.Contains(err.Error(), "nested deeper than 256 levels") {
		t.Errorf("deep parentheses: got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   float64
		want string
		int  bool
	}{
		{14, "14", true},
		{2.5, "2.5", false},
		{-0.0, "0", true},
		{1e21, "1000000000000000000000", true},
		{0.1 + 0.2, "0.30000000000000004", false},
		{-7, "-7", true},
	}
	for _, tt := range tests {
		got := arith.Classify(tt.in)
		switch n := got.(type) {
		case *ast.Int:
			if !tt.int {
				t.Errorf("Classify(%v) = Int, want Float", tt.in)
			}
		case *ast.Float:
			if tt.int {
				t.Errorf("Classify(%v) = Float %s, want Int", tt.in, n.Digits)
			}
		}
		if got.String() != tt.want {
			t.Errorf("Classify(%v).String() = %q, want %q", tt.in, got.String(), tt.want)
		}
	}
}
