// Package ast defines the token types and the syntax tree nodes shared by the
// geel lexer, parser and interpreter.
//
// Tokens are the smallest meaningful units of a geel source file. Every token
// carries its type, the exact literal text it was scanned from, and its source
// position (line + column). Position is 1-based: the first character of a file
// is Line 1, Col 1.
package ast

import "fmt"

// TokenType identifies the category of a scanned token.
type TokenType int

const (
	// ── Special ────────────────────────────────────────────────────────────────

	// ILLEGAL is a character the lexer could not classify, or the text of an
	// unterminated string or block comment.
	ILLEGAL TokenType = iota
	// EOF is the end-of-input sentinel. It is always the last token.
	EOF

	// ── Payload-carrying tokens ────────────────────────────────────────────────

	// INT is a run of digits, kept unparsed: 42
	INT
	// FLOAT is a run of digits containing one '.', kept unparsed: 3.14
	FLOAT
	// STRING is a quoted literal including its quote marks: "hi" or 'hi'
	STRING
	// COMMENT is a line (// …) or block (/* … */) comment including delimiters.
	COMMENT
	// WHITESPACE is exactly one of ' ', '\t', '\n', '\r'. Runs are not merged
	// so the parser can recover indentation by concatenating them.
	WHITESPACE
	// WORD is an identifier or keyword: [A-Za-z_]+
	WORD

	// ── Delimiters ─────────────────────────────────────────────────────────────

	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COLON    // :
	COMMA    // ,

	// ── Operators ──────────────────────────────────────────────────────────────

	// ASSIGN is '='. Equality in conditions is written '=' or '==' (two
	// adjacent ASSIGN tokens).
	ASSIGN
	PLUS     // +
	MINUS    // -
	SLASH    // /
	ASTERISK // *
	CARET    // ^
	PERCENT  // %
	GT       // >
	GTE      // >=
	LT       // <
	LTE      // <=
)

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	INT:        "INT",
	FLOAT:      "FLOAT",
	STRING:     "STRING",
	COMMENT:    "COMMENT",
	WHITESPACE: "WHITESPACE",
	WORD:       "WORD",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	LBRACE:     "{",
	RBRACE:     "}",
	COLON:      ":",
	COMMA:      ",",
	ASSIGN:     "=",
	PLUS:       "+",
	MINUS:      "-",
	SLASH:      "/",
	ASTERISK:   "*",
	CARET:      "^",
	PERCENT:    "%",
	GT:         ">",
	GTE:        ">=",
	LT:         "<",
	LTE:        "<=",
}

// String returns the symbol of punctuation tokens and the category name of
// every other token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsArithmetic reports whether tt is one of + - / * % ^.
func (tt TokenType) IsArithmetic() bool {
	switch tt {
	case PLUS, MINUS, SLASH, ASTERISK, PERCENT, CARET:
		return true
	}
	return false
}

// IsTrivia reports whether tokens of this type carry no syntax.
func (tt TokenType) IsTrivia() bool {
	return tt == WHITESPACE || tt == COMMENT
}

// Token is a single lexical unit produced by the geel lexer.
// Tokens are compared structurally with ==.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

// String returns the token's literal, or its type name when the literal is empty.
func (t Token) String() string {
	if t.Literal == "" {
		return t.Type.String()
	}
	return t.Literal
}

// Is reports whether t is a WORD spelling exactly word.
func (t Token) Is(word string) bool {
	return t.Type == WORD && t.Literal == word
}

// ── Keywords ──────────────────────────────────────────────────────────────────

// Control words and literal words of the language.
const (
	KeywordIf    = "hadduu"
	KeywordElif  = "haddii"
	KeywordElse  = "kale"
	KeywordOr    = "ama"
	KeywordAnd   = "iyo"
	KeywordEach  = "kastoo"
	KeywordIn    = "kujira"
	KeywordTrue  = "Run"
	KeywordFalse = "Been"
	KeywordNull  = "Waxba"
)

// keywords holds every reserved word. Built-in function names are deliberately
// absent: they are predeclared names that resolve to function values.
var keywords = map[string]bool{}

func init() {
	for _, w := range []string{
		"iyo", "maaha", "ama", "gudub", "booliyan", "jooji", "Run", "Been",
		"Waxba", "keen", "ka", "sida", "tijaabi", "qabo", "ugu", "dambeyn",
		"xaqiiji", "kayd", "qayb", "tir", "hadduu", "haddii", "kale", "kastoo",
		"caalami", "kujira", "waa", "laamda", "dhaaf", "Tus", "celi", "intuu",
		"isticmaal", "sii", "qiimahasugan", "kulli", "midkasta", "bool",
		"qaybkaydeed", "dhis", "qaamuus", "sifosheeg", "tiri", "qiimee", "bax",
		"kasooc", "tobanle", "hagaaji", "caalamiyaasha", "sifomaleeyahay",
		"caawimaad", "lixyatobaneyn", "lambarugaar", "weydii", "tirodhan",
		"midmid", "dherer", "aruur", "ugubadnaan", "uguyaraan", "wad", "wax",
		"siddeedid", "fur", "sifo", "muuqaal", "rogan", "tirobuuxin", "urur",
		"qaybi", "soocan", "qoraal", "iskudar", "dhaxal", "uruur", "nooc",
		"iskuxer", "hawl", "markuu",
		"KhaladAasaasi", "Khalad", "KhaladXisaabeed", "KhaladXaqiijin",
		"KhaladSifeed", "KhaladQoraalDhamaa", "KhaladTobanle", "KhaladKeenid",
		"KhaladJagaale", "WaaLaJoojiyey", "KhaladXasuuseed", "KhaladMagceed",
		"KhaladLamaSameyn", "KhaladCelcelis", "NoocKhaldan", "KhaladQiimeyn",
		"KhaladEberUQeybin", "KhaladXiriixLaGoo", "KhaladXiriixLaDiid",
		"KhaladOgolaansho", "DigniinKeenid",
	} {
		keywords[w] = true
	}
}

// IsKeyword reports whether word is reserved and therefore cannot name a variable.
func IsKeyword(word string) bool {
	return keywords[word]
}
