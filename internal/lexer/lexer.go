// Package lexer turns workout language source text into a position-tagged
// token stream.
//
// The scanner is line-aware: newlines are significant inside component and
// score bodies, so they are emitted as tokens and the parser decides where
// they matter. Line comments (`//`) and block comments (`/* */`) are
// grammar-native and never reach the parser.
package lexer

import (
	"fmt"
	"strings"

	"github.com/vk/wodc/internal/token"
)

// units accepted as a suffix on a numeric literal, longest first so that
// "cal" is not cut short at "c".
var units = []string{"cal", "kg", "lb", "km", "cm", "in", "m", "s"}

// ScanError reports a lexical rejection with its source position.
type ScanError struct {
	Pos token.Pos
	Msg string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

type scanner struct {
	src    string
	off    int
	line   int
	col    int
	tokens []token.Token
}

// Lex scans the entire source and returns its token stream, terminated by an
// EOF token. Scanning stops at the first lexical error.
func Lex(src string) ([]token.Token, error) {
	s := &scanner{src: src, line: 1, col: 1}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		s.tokens = append(s.tokens, tok)
		if tok.Kind == token.EOF {
			return s.tokens, nil
		}
	}
}

func (s *scanner) pos() token.Pos {
	return token.Pos{Line: s.line, Column: s.col, Offset: s.off}
}

func (s *scanner) peek() byte {
	if s.off >= len(s.src) {
		return 0
	}
	return s.src[s.off]
}

func (s *scanner) peekAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *scanner) advance() byte {
	c := s.src[s.off]
	s.off++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) next() (token.Token, error) {
	for {
		switch c := s.peek(); {
		case c == 0:
			return token.Token{Kind: token.EOF, Pos: s.pos()}, nil
		case c == ' ' || c == '\t' || c == '\r':
			s.advance()
		case c == '/' && s.peekAt(1) == '/':
			for s.peek() != 0 && s.peek() != '\n' {
				s.advance()
			}
		case c == '/' && s.peekAt(1) == '*':
			if err := s.skipBlockComment(); err != nil {
				return token.Token{}, err
			}
		default:
			return s.scanToken()
		}
	}
}

func (s *scanner) skipBlockComment() error {
	start := s.pos()
	s.advance() // '/'
	s.advance() // '*'
	for {
		if s.peek() == 0 {
			return &ScanError{Pos: start, Msg: "unterminated block comment"}
		}
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return nil
		}
		s.advance()
	}
}

func (s *scanner) scanToken() (token.Token, error) {
	pos := s.pos()
	c := s.peek()

	switch {
	case c == '\n':
		s.advance()
		return token.Token{Kind: token.Newline, Lexeme: "\n", Pos: pos}, nil
	case c == '"':
		return s.scanString()
	case isDigit(c):
		return s.scanNumeric()
	case isIdentStart(c):
		return s.scanIdent(), nil
	}

	puncts := map[byte]token.Kind{
		'{': token.LBrace, '}': token.RBrace,
		'(': token.LParen, ')': token.RParen,
		'[': token.LBracket, ']': token.RBracket,
		':': token.Colon, ',': token.Comma, ';': token.Semicolon,
		'@': token.At, '$': token.Dollar, '.': token.Dot,
		'*': token.Star, '/': token.Slash, '+': token.Plus,
		'=': token.Equals,
	}
	if kind, ok := puncts[c]; ok {
		s.advance()
		return token.Token{Kind: kind, Lexeme: string(c), Pos: pos}, nil
	}

	return token.Token{}, &ScanError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", string(c))}
}

func (s *scanner) scanString() (token.Token, error) {
	pos := s.pos()
	s.advance() // opening quote
	var b strings.Builder
	for {
		c := s.peek()
		if c == 0 || c == '\n' {
			return token.Token{}, &ScanError{Pos: pos, Msg: "unterminated string literal"}
		}
		s.advance()
		if c == '"' {
			return token.Token{Kind: token.String, Lexeme: b.String(), Pos: pos}, nil
		}
		if c == '\\' {
			esc := s.peek()
			switch esc {
			case '"', '\\':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			default:
				return token.Token{}, &ScanError{Pos: pos, Msg: fmt.Sprintf("unknown escape \\%s", string(esc))}
			}
			s.advance()
			continue
		}
		b.WriteByte(c)
	}
}

func (s *scanner) scanIdent() token.Token {
	pos := s.pos()
	start := s.off
	for isIdentPart(s.peek()) {
		s.advance()
	}
	return token.Token{Kind: token.Ident, Lexeme: s.src[start:s.off], Pos: pos}
}

// scanNumeric handles every digit-led literal: plain numbers, clock times
// (7:00), rep schemes (21-15-9), and unit/dual value literals (95lb, 43/30kg,
// 15/12, 400m, 60%). Dual slashes only exist inside a single lexeme; a slash
// between spaced tokens stays a Slash token.
func (s *scanner) scanNumeric() (token.Token, error) {
	pos := s.pos()
	start := s.off
	s.scanNumber()

	switch {
	case s.peek() == ':' && isDigit(s.peekAt(1)):
		// Clock literal only when exactly two digits follow the colon;
		// anything else leaves the colon for the parser (EMOM slot labels,
		// score field declarations).
		if isDigit(s.peekAt(2)) && !isDigit(s.peekAt(3)) {
			s.advance() // ':'
			s.advance()
			s.advance()
			return token.Token{Kind: token.Time, Lexeme: s.src[start:s.off], Pos: pos}, nil
		}
		return token.Token{Kind: token.Number, Lexeme: s.src[start:s.off], Pos: pos}, nil

	case s.peek() == '-' && isDigit(s.peekAt(1)):
		for s.peek() == '-' && isDigit(s.peekAt(1)) {
			s.advance()
			s.scanDigits()
		}
		return token.Token{Kind: token.Scheme, Lexeme: s.src[start:s.off], Pos: pos}, nil

	case s.peek() == '/' && isDigit(s.peekAt(1)):
		s.advance()
		s.scanNumber()
		if err := s.scanUnitSuffix(pos); err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.Value, Lexeme: s.src[start:s.off], Pos: pos}, nil
	}

	hadUnit, err := s.scanOptionalUnit(pos)
	if err != nil {
		return token.Token{}, err
	}
	if hadUnit {
		// A dual may carry the unit on both sides: 43kg/30kg.
		if s.peek() == '/' && isDigit(s.peekAt(1)) {
			s.advance()
			s.scanNumber()
			if err := s.scanUnitSuffix(pos); err != nil {
				return token.Token{}, err
			}
		}
		return token.Token{Kind: token.Value, Lexeme: s.src[start:s.off], Pos: pos}, nil
	}
	return token.Token{Kind: token.Number, Lexeme: s.src[start:s.off], Pos: pos}, nil
}

func (s *scanner) scanNumber() {
	s.scanDigits()
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		s.scanDigits()
	}
}

func (s *scanner) scanDigits() {
	for isDigit(s.peek()) {
		s.advance()
	}
}

// scanUnitSuffix requires a unit after a dual literal: a bare dual like 15/12
// is still legal (dual reps), so only a trailing letter run is validated.
func (s *scanner) scanUnitSuffix(pos token.Pos) error {
	_, err := s.scanOptionalUnit(pos)
	return err
}

func (s *scanner) scanOptionalUnit(pos token.Pos) (bool, error) {
	if s.peek() == '%' {
		s.advance()
		return true, nil
	}
	if !isLetter(s.peek()) {
		return false, nil
	}
	rest := s.src[s.off:]
	for _, u := range units {
		if strings.HasPrefix(rest, u) && !isIdentPart(s.peekAt(len(u))) {
			for range u {
				s.advance()
			}
			return true, nil
		}
	}
	wordEnd := s.off
	for wordEnd < len(s.src) && isIdentPart(s.src[wordEnd]) {
		wordEnd++
	}
	return false, &ScanError{
		Pos: pos,
		Msg: fmt.Sprintf("invalid unit suffix %q (expected one of kg, lb, m, km, cm, in, s, cal, %%)", s.src[s.off:wordEnd]),
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_'
}
func isIdentPart(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
