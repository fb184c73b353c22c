package session

import "github.com/vk/wodc/internal/ast"

// builtinScoreFields is the score shape each scorable form produces when the
// module does not declare its own score block.
var builtinScoreFields = map[string][]string{
	"AMRAP":    {"rounds", "reps"},
	"EMOM":     {"completed", "reps"},
	"ForTime":  {"time", "reps"},
	"RFT":      {"time", "reps"},
	"CHIPPER":  {"time", "reps"},
	"TABATA":   {"reps"},
	"INTERVAL": {"reps"},
	"SETS":     {"load", "reps"},
}

// scoreTypeFor reports the score type a block produces, "" for unscored
// free-form blocks. declared holds the module's own score declarations by
// form name.
func scoreTypeFor(form *ast.Form, declared map[string][]string) string {
	if _, ok := declared[form.Name]; ok {
		return form.Name
	}
	if _, ok := builtinScoreFields[form.Name]; ok {
		return form.Name
	}
	return ""
}

func scoreFieldsFor(form *ast.Form, declared map[string][]string) map[string]bool {
	fields, ok := declared[form.Name]
	if !ok {
		fields = builtinScoreFields[form.Name]
	}
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}
