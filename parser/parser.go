// Package parser turns geel tokens into an [ast.Program].
//
// Parsing runs in three phases:
//
//  1. [GroupLines] drops whitespace and comments and cuts the stream into
//     lines, each with its indentation.
//  2. [BuildBlocks] nests the lines by indentation into a block tree.
//  3. The semantic pass walks the tree: an if-chain or loop header takes its
//     children as a body; any other line is one statement, parsed by the
//     recursive-descent statement parser ([Parser.ParseNode]).
//
// Errors never stop the parser. Each is recorded, the statement it occurred in
// is dropped, and parsing resumes with the next statement. Collected errors
// are available via [Parser.Errors].
package parser

import (
	"github.com/metaphox/geel/ast"
	"github.com/metaphox/geel/diag"
	"github.com/metaphox/geel/lexer"
)

// DefaultMaxDepth bounds block nesting and nested list or call expressions.
const DefaultMaxDepth = 256

// Parser holds the token stream of one source unit and the errors found in it.
type Parser struct {
	tokens []ast.Token
	errors []*diag.Error

	// MaxDepth is the deepest nesting accepted before a ParseError.
	MaxDepth int

	nest int // current expression nesting
}

// New creates a Parser that reads every token from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{MaxDepth: DefaultMaxDepth}
	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == ast.EOF {
			break
		}
	}
	return p
}

// Parse is a convenience wrapper: lex and parse src in one call.
func Parse(src string) (*ast.Program, []*diag.Error) {
	p := New(lexer.New(src))
	prog := p.Parse()
	return prog, p.Errors()
}

// Errors returns every error collected so far, in source order of discovery.
func (p *Parser) Errors() []*diag.Error {
	return p.errors
}

// Parse parses the whole token stream. It always terminates and always
// returns a program; statements with errors are left out of it.
func (p *Parser) Parse() *ast.Program {
	lines, errs := GroupLines(p.tokens)
	p.errors = append(p.errors, errs...)
	return &ast.Program{Statements: p.parseBlocks(BuildBlocks(lines), 0)}
}

func (p *Parser) errorf(at ast.Token, format string, args ...any) {
	p.errors = append(p.errors, diag.Newf(diag.ParseError, format, args...).At(at.Line, at.Col))
}

func (p *Parser) record(err error) {
	if de, ok := err.(*diag.Error); ok {
		p.errors = append(p.errors, de)
		return
	}
	p.errors = append(p.errors, diag.New(diag.ParseError, err.Error()))
}

// ── Semantic pass ─────────────────────────────────────────────────────────────

// parseBlocks maps sibling blocks to statements.
func (p *Parser) parseBlocks(blocks []*Block, depth int) []ast.Node {
	if len(blocks) == 0 {
		return nil
	}
	if depth > p.MaxDepth {
		first := blocks[0].Line.Tokens[0]
		p.errorf(first, "blocks nested deeper than %d levels", p.MaxDepth)
		return nil
	}

	var out []ast.Node
	for i := 0; i < len(blocks); {
		b := blocks[i]
		first := b.Line.Tokens[0]
		if first.Is(ast.KeywordIf) {
			node, used := p.parseIfChain(blocks[i:], depth)
			if node != nil {
				out = append(out, node)
			}
			i += used
			continue
		}
		if b.Line.Broken {
			i++
			continue
		}

		switch {
		case len(b.Line.Tokens) > 1 && b.Line.Tokens[1].Is(ast.KeywordEach):
			if node := p.parseForLoop(b, depth); node != nil {
				out = append(out, node)
			}

		case first.Is(ast.KeywordElif), first.Is(ast.KeywordElse):
			p.errorf(first, "'%s' without a preceding '%s'", first.Literal, ast.KeywordIf)

		case first.Is(ast.KeywordOr), first.Is(ast.KeywordAnd):
			p.errorf(first, "'%s' continues a condition but no '%s' header is open", first.Literal, ast.KeywordIf)

		case len(b.Children) > 0:
			p.errorf(b.Children[0].Line.Tokens[0], "unexpected indent")

		default:
			if node := p.parseLine(b.Line.Tokens); node != nil {
				out = append(out, node)
			}
		}
		i++
	}
	return out
}

// parseLine parses toks as exactly one statement. It returns nil after
// recording an error.
func (p *Parser) parseLine(toks []ast.Token) ast.Node {
	node, pos, err := p.ParseNode(toks, 0)
	if err != nil {
		p.record(err)
		return nil
	}
	if pos < len(toks) {
		p.errorf(toks[pos], "unexpected %s", describe(toks[pos]))
		return nil
	}
	if _, ok := node.(*ast.Ignore); ok {
		return nil
	}
	return node
}

// body parses an inline statement after a header's colon followed by the
// header's children.
func (p *Parser) body(inline []ast.Token, children []*Block, depth int) []ast.Node {
	var out []ast.Node
	if len(inline) > 0 {
		if node := p.parseLine(inline); node != nil {
			out = append(out, node)
		}
	}
	return append(out, p.parseBlocks(children, depth+1)...)
}

// parseForLoop parses `<var> kastoo kujira <iterable>: <body>`.
func (p *Parser) parseForLoop(b *Block, depth int) ast.Node {
	toks := b.Line.Tokens
	name := toks[0]
	if name.Type != ast.WORD || ast.IsKeyword(name.Literal) {
		p.errorf(name, "loop variable must be a name, got %s", describe(name))
		return nil
	}
	if len(toks) < 3 || !toks[2].Is(ast.KeywordIn) {
		p.errorf(toks[1], "expected '%s' after '%s'", ast.KeywordIn, ast.KeywordEach)
		return nil
	}
	colon := topLevel(toks, 3, ast.COLON)
	if colon < 0 {
		p.errorf(toks[len(toks)-1], "expected ':' after the loop header")
		return nil
	}
	iterToks := toks[3:colon]
	if len(iterToks) == 0 {
		p.errorf(toks[colon], "missing iterable after '%s'", ast.KeywordIn)
		return nil
	}
	iter, pos, err := p.parseValue(iterToks, 0)
	if err != nil {
		p.record(err)
		return nil
	}
	if pos < len(iterToks) {
		p.errorf(iterToks[pos], "unexpected %s in loop iterable", describe(iterToks[pos]))
		return nil
	}

	bodyNodes := p.body(toks[colon+1:], b.Children, depth)
	if len(bodyNodes) == 0 {
		p.errorf(toks[colon], "loop has an empty body")
		return nil
	}
	return &ast.ForLoop{Token: name, Var: name.Literal, Iterable: iter, Body: bodyNodes}
}

// ── Token helpers ─────────────────────────────────────────────────────────────

// topLevel returns the index of the first token of type tt at bracket depth
// zero, searching from start, or -1.
func topLevel(toks []ast.Token, start int, tt ast.TokenType) int {
	depth := 0
	for i := start; i < len(toks); i++ {
		switch toks[i].Type {
		case ast.LPAREN, ast.LBRACKET:
			depth++
		case ast.RPAREN, ast.RBRACKET:
			depth--
		case tt:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipTrivia returns the first index at or after pos that holds a
// significant token.
func skipTrivia(toks []ast.Token, pos int) int {
	for pos < len(toks) && toks[pos].Type.IsTrivia() {
		pos++
	}
	return pos
}

func describe(t ast.Token) string {
	switch t.Type {
	case ast.EOF:
		return "end of input"
	case ast.WORD, ast.INT, ast.FLOAT, ast.STRING:
		return "'" + t.Literal + "'"
	}
	return "token '" + t.Literal + "'"
}
