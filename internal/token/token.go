// Package token defines the lexical tokens of the workout language and the
// source positions attached to them.
package token

import (
	"fmt"
	"strings"
)

// Kind discriminates the lexical category of a token.
type Kind int

const (
	EOF Kind = iota
	Newline
	Ident
	String // double-quoted literal, lexeme excludes the quotes
	Number // integer or decimal, no unit suffix
	Time   // m:ss or mm:ss clock literal
	Value  // number with unit suffix and/or a top-level dual slash, raw lexeme
	Scheme // rep scheme such as 21-15-9
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Colon
	Comma
	Semicolon
	At
	Dollar
	Dot
	Star
	Slash
	Plus
	Equals
)

var kindNames = map[Kind]string{
	EOF:       "end of input",
	Newline:   "newline",
	Ident:     "identifier",
	String:    "string literal",
	Number:    "number",
	Time:      "time literal",
	Value:     "value literal",
	Scheme:    "rep scheme",
	LBrace:    "'{'",
	RBrace:    "'}'",
	LParen:    "'('",
	RParen:    "')'",
	LBracket:  "'['",
	RBracket:  "']'",
	Colon:     "':'",
	Comma:     "','",
	Semicolon: "';'",
	At:        "'@'",
	Dollar:    "'$'",
	Dot:       "'.'",
	Star:      "'*'",
	Slash:     "'/'",
	Plus:      "'+'",
	Equals:    "'='",
}

// String returns a human-readable name for the kind, suitable for use in
// expected-token lists.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Pos is a location in the source text. Line and Column are 1-based;
// Offset is the 0-based byte offset.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"-"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexeme with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

// String renders the token the way error messages refer to it.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Newline:
		return "newline"
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

// DescribeExpected joins an expected-token list into one message fragment.
func DescribeExpected(expected []string) string {
	switch len(expected) {
	case 0:
		return ""
	case 1:
		return expected[0]
	case 2:
		return expected[0] + " or " + expected[1]
	default:
		return strings.Join(expected[:len(expected)-1], ", ") + ", or " + expected[len(expected)-1]
	}
}
