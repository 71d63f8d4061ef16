package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// Variadic is the Arity of a built-in that accepts any number of arguments.
const Variadic = -1

// maxRange caps the number of items faraq will build.
const maxRange = 1 << 24

// BuiltinFunc implements a built-in. Arguments arrive fully reduced.
type BuiltinFunc func(in *Interpreter, args []ast.Expression) ([]ast.Expression, error)

// Builtin is an entry of the built-in function table.
type Builtin struct {
	// Arity is the exact argument count, or Variadic. The interpreter checks
	// it before calling Fn.
	Arity int
	Fn    BuiltinFunc
}

// Register adds or replaces the built-in called name.
func (in *Interpreter) Register(name string, b Builtin) {
	in.builtins[name] = b
}

func registerStandard(in *Interpreter) {
	in.Register("qor", Builtin{Arity: Variadic, Fn: builtinQor})
	in.Register("labaale", Builtin{Arity: 1, Fn: builtinLabaale})
	in.Register("qaybiyobaaq", Builtin{Arity: 2, Fn: builtinQaybiyobaaq})
	in.Register("faraq", Builtin{Arity: 2, Fn: builtinFaraq})
}

// qor(args...) prints its arguments back to back on one line.
func builtinQor(in *Interpreter, args []ast.Expression) ([]ast.Expression, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(format(a))
	}
	in.println(b.String())
	return nil, nil
}

// labaale(n) returns n in base 2: 0b101, -0b101.
func builtinLabaale(_ *Interpreter, args []ast.Expression) ([]ast.Expression, error) {
	n, err := integer("labaale", args[0])
	if err != nil {
		return nil, err
	}
	digits := strconv.FormatInt(n, 2)
	if strings.HasPrefix(digits, "-") {
		return []ast.Expression{&ast.Str{Value: "-0b" + digits[1:]}}, nil
	}
	return []ast.Expression{&ast.Str{Value: "0b" + digits}}, nil
}

// qaybiyobaaq(a, b) returns the quotient and remainder of a / b. Two integers
// divide with truncation; anything involving a float divides exactly.
func builtinQaybiyobaaq(_ *Interpreter, args []ast.Expression) ([]ast.Expression, error) {
	_, aInt := args[0].(*ast.Int)
	_, bInt := args[1].(*ast.Int)
	if aInt && bInt {
		a, err := integer("qaybiyobaaq", args[0])
		if err != nil {
			return nil, err
		}
		b, err := integer("qaybiyobaaq", args[1])
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, diag.New(diag.ArithmeticError, "integer division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return nil, diag.New(diag.ArithmeticError, "integer division overflows")
		}
		return []ast.Expression{&ast.Tuple{Items: []ast.Expression{
			ast.NewInt(a / b),
			ast.NewInt(a % b),
		}}}, nil
	}

	a, ok := toFloat(args[0])
	if !ok {
		return nil, diag.Newf(diag.TypeError, "qaybiyobaaq() expects numbers, got %s", kindOf(args[0]))
	}
	b, ok := toFloat(args[1])
	if !ok {
		return nil, diag.Newf(diag.TypeError, "qaybiyobaaq() expects numbers, got %s", kindOf(args[1]))
	}
	if b == 0 {
		return nil, diag.New(diag.ArithmeticError, "float division by zero")
	}
	q, r := a/b, math.Mod(a, b)
	return []ast.Expression{&ast.Tuple{Items: []ast.Expression{
		&ast.Float{Digits: arith.FormatFloat(q), Value: q},
		&ast.Float{Digits: arith.FormatFloat(r), Value: r},
	}}}, nil
}

// faraq(a, b) returns the integers a, a+1, ..., b-1.
func builtinFaraq(_ *Interpreter, args []ast.Expression) ([]ast.Expression, error) {
	lo, err := integer("faraq", args[0])
	if err != nil {
		return nil, err
	}
	hi, err := integer("faraq", args[1])
	if err != nil {
		return nil, err
	}

	list := &ast.List{}
	if hi <= lo {
		return []ast.Expression{list}, nil
	}
	if uint64(hi-lo) > maxRange {
		return nil, diag.Newf(diag.ArithmeticError, "faraq() range of %d to %d is too large", lo, hi)
	}
	list.Items = make([]ast.Expression, 0, hi-lo)
	for i := lo; i < hi; i++ {
		list.Items = append(list.Items, ast.NewInt(i))
	}
	return []ast.Expression{list}, nil
}
