// Package lexer implements the geel lexer (tokeniser).
//
// The lexer converts a geel source string into a flat stream of [ast.Token]
// values. Call [New] to create a lexer and then call [Lexer.NextToken]
// repeatedly until you receive a token with Type == [ast.EOF], or use [Lex] to
// collect the whole stream at once.
//
// Design notes:
//   - Single-pass, character-by-character scanning using a read position cursor.
//   - Every whitespace character is its own WHITESPACE token. The parser needs
//     the newline and the indentation run after it to recover block structure.
//   - Comments are emitted as COMMENT tokens rather than skipped, for the same
//     reason: a comment-only line must still be recognisable as a line.
//   - String literals keep their quote marks and backslashes; unescaping is the
//     parser's job.
//   - Line and column numbers are tracked for every token (1-based). Columns
//     count characters, not bytes.
package lexer

import (
	"unicode/utf8"

	"github.com/metaphox/geel/ast"
)

// Lexer holds all state required to tokenise a single geel source string.
// Create one with [New]; never copy a Lexer after first use.
type Lexer struct {
	input   string // the full source text
	pos     int    // current read position (index of ch)
	readPos int    // next read position (pos + 1)
	ch      byte   // current character under examination

	line int // 1-based line of ch
	col  int // 1-based column of ch
}

// New creates a [Lexer] that tokenises the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar() // prime: set l.ch = input[0]
	return l
}

// Lex tokenises src completely. The returned slice always ends with EOF.
func Lex(src string) []ast.Token {
	l := New(src)
	var toks []ast.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == ast.EOF {
			return toks
		}
	}
}

// NextToken returns the next token from the input. When the input is
// exhausted, NextToken returns a token with Type == [ast.EOF] on every
// subsequent call.
func (l *Lexer) NextToken() ast.Token {
	switch {
	case l.atEnd():
		return l.makeToken(ast.EOF, "")
	case isLetter(l.ch):
		return l.readWord()
	case isDigit(l.ch):
		return l.readNumber()
	case isWhitespace(l.ch):
		return l.single(ast.WHITESPACE)
	case l.ch == '/' && (l.peekChar() == '/' || l.peekChar() == '*'):
		return l.readComment()
	case l.ch == '"' || l.ch == '\'':
		return l.readString()
	}

	switch l.ch {
	// ── Single-character delimiters ─────────────────────────────────────────
	case '(':
		return l.single(ast.LPAREN)
	case ')':
		return l.single(ast.RPAREN)
	case '[':
		return l.single(ast.LBRACKET)
	case ']':
		return l.single(ast.RBRACKET)
	case '{':
		return l.single(ast.LBRACE)
	case '}':
		return l.single(ast.RBRACE)
	case ':':
		return l.single(ast.COLON)
	case ',':
		return l.single(ast.COMMA)

	// ── Operators ───────────────────────────────────────────────────────────
	case '=':
		return l.single(ast.ASSIGN)
	case '+':
		return l.single(ast.PLUS)
	case '-':
		return l.single(ast.MINUS)
	case '/':
		return l.single(ast.SLASH)
	case '*':
		return l.single(ast.ASTERISK)
	case '^':
		return l.single(ast.CARET)
	case '%':
		return l.single(ast.PERCENT)
	case '>':
		if l.peekChar() == '=' {
			return l.double(ast.GTE)
		}
		return l.single(ast.GT)
	case '<':
		if l.peekChar() == '=' {
			return l.double(ast.LTE)
		}
		return l.single(ast.LT)
	}

	return l.readIllegal()
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// readChar advances the lexer by one byte. Line and column describe the new
// l.ch; UTF-8 continuation bytes do not advance the column.
func (l *Lexer) readChar() {
	if l.readPos > 0 && !l.atEnd() && l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	if l.pos >= len(l.input) || l.ch&0xC0 != 0x80 {
		l.col++
	}
}

// peekChar returns the next character without consuming it.
// Returns 0 when the end of input has been reached.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// atEnd reports whether the cursor is past the last character. A NUL byte
// inside the input is not the end.
func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// makeToken constructs a token at the current source position.
// It does NOT advance the cursor.
func (l *Lexer) makeToken(tt ast.TokenType, literal string) ast.Token {
	return ast.Token{Type: tt, Literal: literal, Line: l.line, Col: l.col}
}

// single emits the current character as a token of type tt and advances.
func (l *Lexer) single(tt ast.TokenType) ast.Token {
	tok := l.makeToken(tt, string(l.ch))
	l.readChar()
	return tok
}

// double emits the current and next character as one token and advances past both.
func (l *Lexer) double(tt ast.TokenType) ast.Token {
	tok := l.makeToken(tt, l.input[l.pos:l.pos+2])
	l.readChar()
	l.readChar()
	return tok
}

// readWord scans a run of letters and underscores. Keywords are ordinary
// WORD tokens; the parser classifies them.
func (l *Lexer) readWord() ast.Token {
	tok := l.makeToken(ast.WORD, "")
	start := l.pos
	for !l.atEnd() && isLetter(l.ch) {
		l.readChar()
	}
	tok.Literal = l.input[start:l.pos]
	return tok
}

// readNumber scans digits with at most one '.'. Any '.' makes the
// token a FLOAT, including a trailing one ("5." is a FLOAT).
func (l *Lexer) readNumber() ast.Token {
	tok := l.makeToken(ast.INT, "")
	start := l.pos
	for !l.atEnd() {
		if l.ch == '.' && tok.Type == ast.INT {
			tok.Type = ast.FLOAT
		} else if !isDigit(l.ch) {
			break
		}
		l.readChar()
	}
	tok.Literal = l.input[start:l.pos]
	return tok
}

// readComment scans a line comment up to (not including) the newline, or a
// block comment through its closing "*/". An unterminated block comment is
// returned as ILLEGAL holding the consumed text.
func (l *Lexer) readComment() ast.Token {
	tok := l.makeToken(ast.COMMENT, "")
	start := l.pos
	block := l.peekChar() == '*'
	l.readChar()
	l.readChar()

	if !block {
		for !l.atEnd() && l.ch != '\n' {
			l.readChar()
		}
		tok.Literal = l.input[start:l.pos]
		return tok
	}

	for {
		if l.atEnd() {
			tok.Type = ast.ILLEGAL
			break
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			break
		}
		l.readChar()
	}
	tok.Literal = l.input[start:l.pos]
	return tok
}

// readString scans a string opened by ' or ". It closes only on the same
// quote character not preceded by a backslash. Strings may span lines.
// An unterminated string is returned as ILLEGAL holding the consumed text.
func (l *Lexer) readString() ast.Token {
	tok := l.makeToken(ast.STRING, "")
	start := l.pos
	quote := l.ch
	l.readChar()

	escaped := false
	for {
		if l.atEnd() {
			tok.Type = ast.ILLEGAL
			break
		}
		if l.ch == quote && !escaped {
			l.readChar()
			break
		}
		escaped = l.ch == '\\' && !escaped
		l.readChar()
	}
	tok.Literal = l.input[start:l.pos]
	return tok
}

// readIllegal consumes one whole UTF-8 character the lexer cannot classify.
func (l *Lexer) readIllegal() ast.Token {
	tok := l.makeToken(ast.ILLEGAL, "")
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	end := l.pos + size
	for l.pos < end {
		l.readChar()
	}
	tok.Literal = l.input[end-size : end]
	return tok
}

// isLetter reports whether b may appear in a word. geel words are [A-Za-z_]+.
func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b == '_'
}

// isDigit reports whether b is an ASCII decimal digit (0–9).
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
