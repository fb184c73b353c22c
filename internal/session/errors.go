package session

import (
	"strings"

	"github.com/vk/wodc/internal/lint"
)

// ErrorKind classifies composition failures.
type ErrorKind string

const (
	// UnresolvedImport means a component reference could not be resolved.
	UnresolvedImport ErrorKind = "UnresolvedImport"
	// UnknownOverrideKey means an override names a variable the imported
	// module does not declare.
	UnknownOverrideKey ErrorKind = "UnknownOverrideKey"
	// OverrideTypeMismatch means an override value cannot be coerced to the
	// declared variable type.
	OverrideTypeMismatch ErrorKind = "OverrideTypeMismatch"
	// ConstraintViolation means a value landed outside a declared min/max
	// range, or the session structure itself is invalid.
	ConstraintViolation ErrorKind = "ConstraintViolation"
	// UnresolvedVariable means a module body references a variable it never
	// declares.
	UnresolvedVariable ErrorKind = "UnresolvedVariable"
	// DuplicateAlias means the session imports the same alias twice.
	DuplicateAlias ErrorKind = "DuplicateAlias"
	// InvalidCatalogDefault means the catalog's default load literal for a
	// movement does not parse as a load.
	InvalidCatalogDefault ErrorKind = "InvalidCatalogDefault"
	// UnknownScoringAlias means a scoring directive targets an alias the
	// session does not import.
	UnknownScoringAlias ErrorKind = "UnknownScoringAlias"
	// UnknownScoringField means a scoring directive selects a field the
	// component's score shape does not have.
	UnknownScoringField ErrorKind = "UnknownScoringField"
	// ImportCycle means module imports form a cycle.
	ImportCycle ErrorKind = "ImportCycle"
	// LintBlocked means an imported module has error-level lint findings and
	// is ineligible for compilation.
	LintBlocked ErrorKind = "LintBlocked"
)

// CompositionError is a fatal session compilation failure. Compilation is
// all-or-nothing: the first composition error aborts the run and no partial
// session is produced.
type CompositionError struct {
	Kind        ErrorKind
	Alias       string
	Ref         string
	Key         string
	Detail      string
	Cycle       []string
	Diagnostics []lint.Diagnostic
	Err         error
}

func (e *CompositionError) Error() string {
	parts := []string{string(e.Kind)}
	if e.Alias != "" {
		parts = append(parts, "component "+e.Alias)
	}
	if e.Ref != "" {
		parts = append(parts, e.Ref)
	}
	if e.Key != "" {
		parts = append(parts, "key "+e.Key)
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, strings.Join(e.Cycle, " -> "))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *CompositionError) Unwrap() error { return e.Err }
