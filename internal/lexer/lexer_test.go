package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wodc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexMovementLine(t *testing.T) {
	toks, err := Lex("10 Push_up @43/30kg SYNC\n")
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.Number, token.Ident, token.At, token.Value, token.Ident,
		token.Newline, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "43/30kg", toks[3].Lexeme)
}

func TestLexLiterals(t *testing.T) {
	testCases := []struct {
		name   string
		src    string
		kind   token.Kind
		lexeme string
	}{
		{name: "clock time", src: "7:00", kind: token.Time, lexeme: "7:00"},
		{name: "seconds value", src: "45s", kind: token.Value, lexeme: "45s"},
		{name: "pound load", src: "95lb", kind: token.Value, lexeme: "95lb"},
		{name: "dual reps", src: "15/12", kind: token.Value, lexeme: "15/12"},
		{name: "dual distance", src: "1.5/1km", kind: token.Value, lexeme: "1.5/1km"},
		{name: "dual load unit both sides", src: "43kg/30kg", kind: token.Value, lexeme: "43kg/30kg"},
		{name: "dual percent both sides", src: "60%/50%", kind: token.Value, lexeme: "60%/50%"},
		{name: "percent", src: "60%", kind: token.Value, lexeme: "60%"},
		{name: "rep scheme", src: "21-15-9", kind: token.Scheme, lexeme: "21-15-9"},
		{name: "plain int", src: "400", kind: token.Number, lexeme: "400"},
		{name: "decimal", src: "12.5", kind: token.Number, lexeme: "12.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Lex(tc.src)
			require.NoError(t, err)
			require.NotEmpty(t, toks)
			assert.Equal(t, tc.kind, toks[0].Kind)
			assert.Equal(t, tc.lexeme, toks[0].Lexeme)
		})
	}
}

func TestSlotLabelIsNotAClockLiteral(t *testing.T) {
	toks, err := Lex("1: 5 Thruster")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Number, token.Colon, token.Number, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestCommentsAreSkipped(t *testing.T) {
	toks, err := Lex("10 Push_up // tempo\n/* block\ncomment */ 5 Pull_up")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Number, token.Ident, token.Newline,
		token.Number, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestPositionsAreTracked(t *testing.T) {
	toks, err := Lex("wod AMRAP 7:00 {\n  10 Push_up\n}")
	require.NoError(t, err)

	require.Greater(t, len(toks), 5)
	assert.Equal(t, token.Pos{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	// "10" sits on line 2 after two spaces.
	assert.Equal(t, 2, toks[5].Pos.Line)
	assert.Equal(t, 3, toks[5].Pos.Column)
}

func TestLexErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "unknown unit suffix", src: "10 Run 400meters"},
		{name: "unterminated string", src: `session "Oops`},
		{name: "unterminated block comment", src: "/* never closed"},
		{name: "stray character", src: "wod ? {"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Lex(tc.src)
			require.Error(t, err)
			var scanErr *ScanError
			require.ErrorAs(t, err, &scanErr)
			assert.NotZero(t, scanErr.Pos.Line)
		})
	}
}
