package parser

import (
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
)

// errBroken marks an arm that includes a line with a lexical error. That
// error is already recorded.
var errBroken = diag.New(diag.LexError, "line has a lexical error")

// parseIfChain parses the if-chain starting at blocks[0] and reports how many
// sibling blocks it consumed. The chain is:
//
//	hadduu <cond>:      first block
//	haddii <cond>:      any number of further blocks
//	kale:               optional final block, always taken
//
// A header without a colon continues on the following sibling lines headed
// by 'ama' or 'iyo'. A nil node means the chain had an error; the consumed
// count still covers the whole chain so the caller does not misread its arms.
func (p *Parser) parseIfChain(blocks []*Block, depth int) (ast.Node, int) {
	chain := &ast.IfChain{Token: blocks[0].Line.Tokens[0]}
	ok := true
	i := 0

	for i < len(blocks) {
		b := blocks[i]
		first := b.Line.Tokens[0]
		if i > 0 && !first.Is(ast.KeywordElif) && !first.Is(ast.KeywordElse) {
			break
		}
		if b.Line.Broken {
			ok = false
			i++
			continue
		}

		if first.Is(ast.KeywordElse) {
			block, err := p.elseBlock(b, depth)
			i++
			if err != nil {
				p.record(err)
				ok = false
				break
			}
			chain.Blocks = append(chain.Blocks, block)
			break
		}

		block, used, err := p.condBlock(blocks[i:], depth)
		i += used
		if err != nil {
			if err != errBroken {
				p.record(err)
			}
			ok = false
			continue
		}
		chain.Blocks = append(chain.Blocks, block)
	}

	if !ok {
		return nil, i
	}
	return chain, i
}

// condBlock parses one 'hadduu' or 'haddii' arm, including its continuation
// lines, and reports how many blocks it used.
func (p *Parser) condBlock(blocks []*Block, depth int) (ast.IfBlock, int, error) {
	head := blocks[0].Line.Tokens[0]
	toks := append([]ast.Token(nil), blocks[0].Line.Tokens[1:]...)
	children := blocks[0].Children
	used := 1

	colon := topLevel(toks, 0, ast.COLON)
	for colon < 0 {
		if len(children) > 0 {
			return ast.IfBlock{}, used, parseErr(children[0].Line.Tokens[0], "expected ':' before the indented body")
		}
		if used >= len(blocks) || !continuesCondition(blocks[used].Line.Tokens[0]) {
			last := head
			if len(toks) > 0 {
				last = toks[len(toks)-1]
			}
			return ast.IfBlock{}, used, parseErr(last, "expected ':' after the condition")
		}
		next := blocks[used]
		used++
		if next.Line.Broken {
			return ast.IfBlock{}, used, errBroken
		}
		toks = append(toks, next.Line.Tokens...)
		children = next.Children
		colon = topLevel(toks, 0, ast.COLON)
	}

	cond, err := p.parseCondition(toks[:colon], head)
	if err != nil {
		return ast.IfBlock{}, used, err
	}
	body := p.body(toks[colon+1:], children, depth)
	if len(body) == 0 {
		return ast.IfBlock{}, used, parseErr(toks[colon], "'%s' block has an empty body", head.Literal)
	}
	return ast.IfBlock{Condition: cond, Body: body}, used, nil
}

// elseBlock parses `kale: <body>`. Its condition is the single term Run.
func (p *Parser) elseBlock(b *Block, depth int) (ast.IfBlock, error) {
	toks := b.Line.Tokens
	if len(toks) < 2 || toks[1].Type != ast.COLON {
		return ast.IfBlock{}, parseErr(toks[0], "expected ':' after '%s'", ast.KeywordElse)
	}
	body := p.body(toks[2:], b.Children, depth)
	if len(body) == 0 {
		return ast.IfBlock{}, parseErr(toks[1], "'%s' block has an empty body", ast.KeywordElse)
	}
	always := []ast.Expression{&ast.Bool{Token: toks[0], Value: true}}
	return ast.IfBlock{Condition: [][]ast.Expression{always}, Body: body}, nil
}

func continuesCondition(t ast.Token) bool {
	return t.Is(ast.KeywordOr) || t.Is(ast.KeywordAnd)
}

// ── Conditions ────────────────────────────────────────────────────────────────

// parseCondition splits toks on top-level 'ama' and then on 'iyo', producing
// a disjunction of conjunctions.
func (p *Parser) parseCondition(toks []ast.Token, head ast.Token) ([][]ast.Expression, error) {
	if len(toks) == 0 {
		return nil, parseErr(head, "'%s' needs a condition", head.Literal)
	}
	var groups [][]ast.Expression
	for _, orPart := range splitWord(toks, ast.KeywordOr, head) {
		var and []ast.Expression
		for _, termToks := range splitWord(orPart.toks, ast.KeywordAnd, orPart.at) {
			term, err := p.parseTerm(termToks.toks, termToks.at)
			if err != nil {
				return nil, err
			}
			and = append(and, term)
		}
		groups = append(groups, and)
	}
	return groups, nil
}

// parseTerm parses one conjunction term: a comparison, a literal word, or a
// bare reference.
func (p *Parser) parseTerm(toks []ast.Token, at ast.Token) (ast.Expression, error) {
	if len(toks) == 0 {
		return nil, parseErr(at, "empty condition term")
	}

	if op, start, end := comparisonOp(toks); op >= 0 {
		left, err := p.operands(toks[:start], toks[op])
		if err != nil {
			return nil, err
		}
		right, err := p.operands(toks[end:], toks[op])
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Operator: toks[op], Left: left, Right: right}, nil
	}

	if len(toks) == 1 {
		t := toks[0]
		switch {
		case t.Is(ast.KeywordTrue), t.Is(ast.KeywordFalse), t.Is(ast.KeywordNull):
			v, _, err := p.parseValue(toks, 0)
			return v, err
		case t.Type == ast.WORD && !ast.IsKeyword(t.Literal):
			return &ast.Reference{Token: t, Name: t.Literal}, nil
		}
	}
	return nil, parseErr(toks[0], "expected a comparison")
}

// comparisonOp finds the first top-level comparison operator. It returns the
// operator index and the bounds of the operator text: '==' spans two tokens.
// op is -1 when there is none.
func comparisonOp(toks []ast.Token) (op, start, end int) {
	depth := 0
	for i, t := range toks {
		switch t.Type {
		case ast.LPAREN, ast.LBRACKET:
			depth++
		case ast.RPAREN, ast.RBRACKET:
			depth--
		case ast.GT, ast.GTE, ast.LT, ast.LTE:
			if depth == 0 {
				return i, i, i + 1
			}
		case ast.ASSIGN:
			if depth == 0 {
				if i+1 < len(toks) && toks[i+1].Type == ast.ASSIGN {
					return i, i, i + 2
				}
				return i, i, i + 1
			}
		}
	}
	return -1, 0, 0
}

// operands parses one comparison side as a sequence of value terms.
func (p *Parser) operands(toks []ast.Token, op ast.Token) ([]ast.Expression, error) {
	if len(toks) == 0 {
		return nil, parseErr(op, "comparison '%s' is missing an operand", op.Literal)
	}
	var out []ast.Expression
	for pos := 0; pos < len(toks); {
		v, next, err := p.parseValue(toks, pos)
		if err != nil {
			return nil, err
		}
		if next <= pos {
			return nil, parseErr(toks[pos], "unexpected %s in comparison", describe(toks[pos]))
		}
		out = append(out, v)
		pos = next
	}
	return out, nil
}

type segment struct {
	toks []ast.Token
	at   ast.Token // position to report when toks is empty
}

// splitWord cuts toks at every top-level WORD spelling word. Empty segments
// report at the separator before them, or at for the first.
func splitWord(toks []ast.Token, word string, at ast.Token) []segment {
	var (
		out   []segment
		start int
		depth int
	)
	for i, t := range toks {
		switch {
		case t.Type == ast.LPAREN || t.Type == ast.LBRACKET:
			depth++
		case t.Type == ast.RPAREN || t.Type == ast.RBRACKET:
			depth--
		case depth == 0 && t.Is(word):
			out = append(out, segment{toks: toks[start:i], at: at})
			start, at = i+1, t
		}
	}
	return append(out, segment{toks: toks[start:], at: at})
}

func parseErr(at ast.Token, format string, args ...any) *diag.Error {
	return diag.Newf(diag.ParseError, format, args...).At(at.Line, at.Col)
}
