package parser

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/vk/wodc/internal/token"
)

// SyntaxError is a grammar rejection. It carries the offending token, its
// position, and the expected-token set captured from parser state at the
// failure point, so suggestions are synthesized from what the parser was
// actually willing to accept rather than from error-message text.
type SyntaxError struct {
	Pos        token.Pos
	Token      token.Token
	Expected   []string
	Suggestion string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: unexpected %s", e.Pos, e.Token)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected %s", token.DescribeExpected(e.Expected))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (%s)", e.Suggestion)
	}
	return b.String()
}

// blockForms are the keywords a component header starts with; used for
// targeted suggestions.
var blockForms = []string{"AMRAP", "EMOM", "ForTime", "RFT", "CHIPPER", "TABATA", "INTERVAL"}

// suggestFor derives a targeted hint from the failure state. The rules are
// intentionally structural: they look at the offending token kind and the
// expected set, never at rendered error strings.
func suggestFor(tok token.Token, expected []string) string {
	expectsForm := false
	for _, e := range expected {
		if strings.Contains(e, "block form") {
			expectsForm = true
			break
		}
	}

	// A duration where a form keyword belongs: the author skipped the form.
	if expectsForm && tok.Kind == token.Time {
		return "expected a block form like AMRAP/EMOM/ForTime before a duration"
	}

	// A near-miss keyword: offer the closest expected keyword.
	if tok.Kind == token.Ident {
		if expectsForm {
			if best := closest(tok.Lexeme, blockForms); best != "" {
				return fmt.Sprintf("did you mean %q?", best)
			}
		}
		keywords := make([]string, 0, len(expected))
		for _, e := range expected {
			if k, ok := strings.CutPrefix(e, "'"); ok {
				keywords = append(keywords, strings.TrimSuffix(k, "'"))
			}
		}
		if best := closest(tok.Lexeme, keywords); best != "" {
			return fmt.Sprintf("did you mean %q?", best)
		}
	}

	return ""
}

// closest returns the candidate within levenshtein distance 2 of the input,
// or "" when nothing is close enough.
func closest(input string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if len(c) < 3 {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(input), strings.ToLower(c), nil)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
