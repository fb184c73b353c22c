package resolver

import (
	"fmt"
	"strings"
)

// ErrorKind classifies resolution failures.
type ErrorKind string

const (
	// NotFound means no strategy source defines the reference.
	NotFound ErrorKind = "NotFound"
	// AmbiguousVersion means more than one source defines the reference.
	AmbiguousVersion ErrorKind = "AmbiguousVersion"
	// ParseFailed means a source file exists but could not be parsed, or the
	// reference string itself is malformed.
	ParseFailed ErrorKind = "ParseFailed"
)

// ResolutionError is a reference that could not be resolved. Fatal to the
// session being compiled, never retried.
type ResolutionError struct {
	Kind ErrorKind
	Ref  string
	Err  error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolving %q: %s", e.Ref, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// CycleError is returned by Enter when a reference is already being
// resolved. Stack lists the in-flight references in entry order, ending with
// the repeated one.
type CycleError struct {
	Stack []string
}

func (e *CycleError) Error() string {
	return "import cycle: " + strings.Join(e.Stack, " -> ")
}
