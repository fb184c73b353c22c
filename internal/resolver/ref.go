// Package resolver resolves namespaced, versioned module references to
// parsed modules through a pluggable lookup strategy, with per-run caching
// and explicit in-flight tracking for import-cycle detection.
package resolver

import (
	"fmt"
	"regexp"
)

// refPattern matches "ns.name@v1" and decimal versions like "ns.name@v1.2".
var refPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)@(v\d+(?:\.\d+)?)$`)

// Ref is the structured form of a module reference.
type Ref struct {
	Name    string // dotted namespace name, e.g. "wod.block.a"
	Version string // "v1" or "v1.2"
}

// ParseRef parses the canonical reference string form.
func ParseRef(raw string) (Ref, error) {
	m := refPattern.FindStringSubmatch(raw)
	if m == nil {
		return Ref{}, fmt.Errorf("invalid module reference %q, want ns.name@vN", raw)
	}
	return Ref{Name: m[1], Version: m[2]}, nil
}

// String returns the normalized reference, the cache key.
func (r Ref) String() string {
	return r.Name + "@" + r.Version
}
