// Package lint checks parsed workout documents against the programming rule
// set and emits ordered, stably-coded diagnostics.
//
// Each rule is a pure function over one AST subtree: appending a clean
// subtree to a document can never introduce diagnostics about unrelated
// subtrees. Output order is source order, so linting is deterministic for a
// fixed (document, catalog) pair.
package lint

import (
	"fmt"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/token"
)

// Severity is the diagnostic level in wire format.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Diagnostic is one lint finding.
type Diagnostic struct {
	Level   Severity   `json:"level"`
	Code    string     `json:"code,omitempty"`
	Path    string     `json:"path"`
	Message string     `json:"message"`
	Pos     *token.Pos `json:"pos,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Level, d.Code, d.Path, d.Message)
}

// HasErrors reports whether any diagnostic is error-level. Documents with
// errors are ineligible for compilation and aggregation.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == SeverityError {
			return true
		}
	}
	return false
}

// Lint runs every rule over the file. The catalog is optional; catalog-bound
// rules (W001, W002, W050, I001) are skipped without one. Warnings and info
// findings never block compilation; promoting them is a caller policy, not a
// linter classification.
func Lint(file *ast.File, cat *catalog.Catalog) []Diagnostic {
	var diags []Diagnostic
	for _, m := range file.Modules {
		diags = append(diags, lintModule(m, cat)...)
	}
	return diags
}

func lintModule(m *ast.Module, cat *catalog.Catalog) []Diagnostic {
	var diags []Diagnostic
	for i, c := range m.Components {
		path := fmt.Sprintf("%s/%s[%d]", m.Ref(), c.Class, i)
		diags = append(diags, lintComponent(c, path, cat)...)
	}
	diags = append(diags, checkStrengthOnly(m)...)
	return diags
}

func lintComponent(c *ast.Component, path string, cat *catalog.Catalog) []Diagnostic {
	var diags []Diagnostic
	for i, st := range c.Stmts {
		stmtPath := fmt.Sprintf("%s.stmt[%d]", path, i)
		switch s := st.(type) {
		case *ast.Rest:
			diags = append(diags, checkRest(s, stmtPath)...)
		case *ast.Movement:
			diags = append(diags, checkMovement(s, stmtPath, cat)...)
		case *ast.Slot:
			diags = append(diags, checkMovement(s.Line, stmtPath, cat)...)
		}
	}
	diags = append(diags, checkEMOMFit(c, path)...)
	diags = append(diags, checkNoCardio(c, path, cat)...)
	return diags
}
