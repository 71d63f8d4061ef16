package parser

import (
	"strconv"
	"strings"

	"github.com/metaphox/geel/arith"
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// ParseNode parses one statement from toks starting at pos and returns it
// with the position just past it. It works on any token slice, including
// one that still holds whitespace and comments, and leaves the parser's own
// token stream and error list untouched.
//
// An assignment consumes the rest of toks. Any other statement is a single
// value: a literal, reference, call, list or arithmetic run.
func (p *Parser) ParseNode(toks []ast.Token, pos int) (ast.Node, int, error) {
	pos = skipTrivia(toks, pos)
	if pos >= len(toks) || toks[pos].Type == ast.EOF {
		return &ast.Ignore{}, pos, nil
	}
	if eq := assignIndex(toks, pos); eq >= 0 {
		return p.parseAssign(toks, pos, eq)
	}
	v, next, err := p.parseValue(toks, pos)
	if err != nil {
		return nil, pos, err
	}
	return v, next, nil
}

// assignIndex returns the index of the first top-level '=' at or after pos
// that is not half of '==', or -1.
func assignIndex(toks []ast.Token, pos int) int {
	depth := 0
	for i := pos; i < len(toks); i++ {
		switch toks[i].Type {
		case ast.LPAREN, ast.LBRACKET:
			depth++
		case ast.RPAREN, ast.RBRACKET:
			depth--
		case ast.ASSIGN:
			if depth != 0 {
				continue
			}
			prev := prevSignificant(toks, i)
			next := skipTrivia(toks, i+1)
			if (prev >= 0 && toks[prev].Type == ast.ASSIGN) || (next < len(toks) && toks[next].Type == ast.ASSIGN) {
				continue
			}
			return i
		}
	}
	return -1
}

func prevSignificant(toks []ast.Token, i int) int {
	for i--; i >= 0 && toks[i].Type.IsTrivia(); i-- {
	}
	return i
}

// parseAssign parses `name = value`, `name += value` or `name -= value`.
func (p *Parser) parseAssign(toks []ast.Token, pos, eq int) (ast.Node, int, error) {
	var lhs []ast.Token
	for _, t := range toks[pos:eq] {
		if !t.Type.IsTrivia() {
			lhs = append(lhs, t)
		}
	}

	var op ast.BindOp
	if n := len(lhs); n > 0 {
		switch lhs[n-1].Type {
		case ast.PLUS:
			op, lhs = ast.BindAdd, lhs[:n-1]
		case ast.MINUS:
			op, lhs = ast.BindSubtract, lhs[:n-1]
		}
	}
	if len(lhs) != 1 || lhs[0].Type != ast.WORD {
		return nil, pos, parseErr(toks[pos], "left side of '=' must be a single name")
	}
	name := lhs[0]
	if ast.IsKeyword(name.Literal) {
		return nil, pos, parseErr(name, "cannot assign to reserved word '%s'", name.Literal)
	}

	start := skipTrivia(toks, eq+1)
	if start >= len(toks) || toks[start].Type == ast.EOF {
		return nil, pos, parseErr(toks[eq], "missing value after '='")
	}
	value, next, err := p.parseValue(toks, start)
	if err != nil {
		return nil, pos, err
	}
	if next = skipTrivia(toks, next); next < len(toks) && toks[next].Type != ast.EOF {
		return nil, pos, parseErr(toks[next], "unexpected %s after assigned value", describe(toks[next]))
	}

	if op != 0 {
		return &ast.CompoundBind{Token: name, Name: name.Literal, Op: op, Value: value}, len(toks), nil
	}
	return &ast.Bind{Token: name, Name: name.Literal, Value: value}, len(toks), nil
}

// ── Values ────────────────────────────────────────────────────────────────────

// parseValue reduces one value starting at pos.
func (p *Parser) parseValue(toks []ast.Token, pos int) (ast.Expression, int, error) {
	pos = skipTrivia(toks, pos)
	if pos >= len(toks) {
		last := ast.Token{}
		if len(toks) > 0 {
			last = toks[len(toks)-1]
		}
		return nil, pos, parseErr(last, "expected a value")
	}

	p.nest++
	defer func() { p.nest-- }()
	if p.MaxDepth > 0 && p.nest > p.MaxDepth {
		return nil, pos, parseErr(toks[pos], "expression nested deeper than %d levels", p.MaxDepth)
	}

	if startsEquation(toks, pos) {
		return p.parseEquation(toks, pos)
	}

	t := toks[pos]
	switch t.Type {
	case ast.INT:
		return &ast.Int{Token: t, Digits: t.Literal}, pos + 1, nil

	case ast.FLOAT:
		f, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, pos, parseErr(t, "bad float literal %s", t.Literal)
		}
		return &ast.Float{Token: t, Digits: t.Literal, Value: f}, pos + 1, nil

	case ast.STRING:
		return &ast.Str{Token: t, Value: unquote(t.Literal)}, pos + 1, nil

	case ast.LBRACKET:
		return p.parseList(toks, pos)

	case ast.WORD:
		switch t.Literal {
		case ast.KeywordTrue:
			return &ast.Bool{Token: t, Value: true}, pos + 1, nil
		case ast.KeywordFalse:
			return &ast.Bool{Token: t, Value: false}, pos + 1, nil
		case ast.KeywordNull:
			return &ast.Null{Token: t}, pos + 1, nil
		}
		if ast.IsKeyword(t.Literal) {
			return nil, pos, parseErr(t, "unexpected reserved word '%s'", t.Literal)
		}
		if next := skipTrivia(toks, pos+1); next < len(toks) && toks[next].Type == ast.LPAREN {
			return p.parseCall(toks, pos, next)
		}
		return &ast.Reference{Token: t, Name: t.Literal}, pos + 1, nil
	}
	return nil, pos, parseErr(t, "unexpected %s", describe(t))
}

// startsEquation reports whether an arithmetic run begins at pos: a '(' or
// unary '-', or a number or plain name followed by an arithmetic operator.
func startsEquation(toks []ast.Token, pos int) bool {
	t := toks[pos]
	switch t.Type {
	case ast.LPAREN, ast.MINUS:
		return true
	case ast.INT, ast.FLOAT:
	case ast.WORD:
		if ast.IsKeyword(t.Literal) {
			return false
		}
	default:
		return false
	}
	next := skipTrivia(toks, pos+1)
	return next < len(toks) && toks[next].Type.IsArithmetic()
}

// parseEquation captures the alternating operand/operator run at pos and
// checks it with the arithmetic parser.
func (p *Parser) parseEquation(toks []ast.Token, pos int) (ast.Expression, int, error) {
	var (
		run     []ast.Token
		depth   int
		operand = true // expecting an operand next
		end     = pos
	)
scan:
	for i := pos; i < len(toks); i++ {
		t := toks[i]
		if t.Type.IsTrivia() {
			continue
		}
		switch {
		case operand && t.Type == ast.MINUS:
		case operand && t.Type == ast.LPAREN:
			depth++
		case operand && (t.Type == ast.INT || t.Type == ast.FLOAT ||
			(t.Type == ast.WORD && !ast.IsKeyword(t.Literal))):
			operand = false
		case !operand && t.Type == ast.RPAREN && depth > 0:
			depth--
		case !operand && t.Type.IsArithmetic():
			operand = true
		default:
			break scan
		}
		run = append(run, t)
		end = i + 1
	}

	if _, err := arith.ParseDepth(run, p.MaxDepth); err != nil {
		if de, ok := err.(*diag.Error); ok {
			return nil, pos, &diag.Error{Kind: diag.ParseError, Msg: de.Msg, Line: de.Line, Col: de.Col}
		}
		return nil, pos, err
	}
	return &ast.Equation{Tokens: run}, end, nil
}

// parseCall parses `name(arg, ...)`. Arguments are split on commas at depth
// one. An argument that does not reduce to exactly one value is dropped.
func (p *Parser) parseCall(toks []ast.Token, pos, open int) (ast.Expression, int, error) {
	name := toks[pos]
	args, end, err := splitArgs(toks, open, ast.RPAREN)
	if err != nil {
		return nil, pos, err
	}

	call := &ast.FunctionCall{Token: name, Name: name.Literal}
	for _, arg := range args {
		if len(arg) == 0 {
			continue
		}
		v, next, err := p.parseValue(arg, 0)
		if err != nil || skipTrivia(arg, next) < len(arg) {
			continue
		}
		call.Params = append(call.Params, v)
	}
	return call, end, nil
}

// parseList parses `[item, ...]`. Unlike call arguments, a malformed item is
// an error.
func (p *Parser) parseList(toks []ast.Token, pos int) (ast.Expression, int, error) {
	items, end, err := splitArgs(toks, pos, ast.RBRACKET)
	if err != nil {
		return nil, pos, err
	}
	list := &ast.List{Token: toks[pos]}
	for i, item := range items {
		if len(item) == 0 {
			if i == len(items)-1 {
				continue // trailing comma or empty list
			}
			return nil, pos, parseErr(toks[pos], "empty list item")
		}
		v, next, err := p.parseValue(item, 0)
		if err != nil {
			return nil, pos, err
		}
		if next = skipTrivia(item, next); next < len(item) {
			return nil, pos, parseErr(item[next], "unexpected %s in list", describe(item[next]))
		}
		list.Items = append(list.Items, v)
	}
	return list, end, nil
}

// splitArgs scans from the opening bracket at open to its matching closer and
// splits the contents on commas at depth one. It returns the position just
// past the closer.
func splitArgs(toks []ast.Token, open int, closer ast.TokenType) ([][]ast.Token, int, error) {
	var (
		args  [][]ast.Token
		cur   []ast.Token
		depth int
	)
	for i := open; i < len(toks); i++ {
		t := toks[i]
		if t.Type.IsTrivia() {
			continue
		}
		switch t.Type {
		case ast.LPAREN, ast.LBRACKET:
			depth++
			if depth == 1 {
				continue
			}
		case ast.RPAREN, ast.RBRACKET:
			depth--
			if depth == 0 {
				if t.Type != closer {
					return nil, open, parseErr(t, "mismatched %s", describe(t))
				}
				return append(args, cur), i + 1, nil
			}
		case ast.COMMA:
			if depth == 1 {
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	return nil, open, parseErr(toks[open], "missing closing '%s'", closer)
}

// unquote strips the quote marks of a STRING literal and processes the
// escapes \n \t \r \\ \" and \'. Any other escape is kept as written.
func unquote(lit string) string {
	if len(lit) < 2 {
		return ""
	}
	body := lit[1 : len(lit)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteByte(body[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
