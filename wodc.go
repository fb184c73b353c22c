// Package wodc is the workout definition compiler: a parser, linter,
// session compiler, and exporter for a small language that describes
// training sessions as compositions of versioned, reusable workout modules.
//
// The typical pipeline is Parse (or Validate) over source text, Lint against
// a movement catalog, CompileSession against a resolver that knows where
// module sources live, and finally one of the exporters. Ranking submitted
// scores against a compiled session's scoring directives is a separate,
// pure step.
package wodc

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/export"
	"github.com/vk/wodc/internal/lint"
	"github.com/vk/wodc/internal/parser"
	"github.com/vk/wodc/internal/resolver"
	"github.com/vk/wodc/internal/results"
	"github.com/vk/wodc/internal/session"
)

// Commonly handled types, aliased so callers need only this package.
type (
	File             = ast.File
	SyntaxError      = parser.SyntaxError
	Diagnostic       = lint.Diagnostic
	Catalog          = catalog.Catalog
	Resolver         = resolver.Resolver
	CompositionError = session.CompositionError
	CompiledSession  = session.CompiledSession
	ScoringSpec      = session.ScoringSpec
	Record           = results.Record
	Aggregate        = results.Aggregate
)

// Parse parses source text into its syntax tree. On failure the error is a
// *SyntaxError carrying the offending position and the expected-token set.
func Parse(src string) (*File, error) {
	return parser.Parse(src)
}

// Validate reports whether the source parses.
func Validate(src string) error {
	_, err := parser.Parse(src)
	return err
}

// Format renders a parsed file back in canonical source form.
func Format(file *File) string {
	return ast.Format(file)
}

// LoadCatalog reads a movement catalog from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	return catalog.Load(path)
}

// Lint parses and lints source text. The catalog may be nil; catalog-bound
// rules are skipped then.
func Lint(src string, cat *Catalog) ([]Diagnostic, error) {
	file, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return lint.Lint(file, cat), nil
}

// FileResolver builds a resolver over filesystem search paths holding *.wod
// sources.
func FileResolver(searchPaths ...string) *Resolver {
	return resolver.New(resolver.NewFS(searchPaths...))
}

// MemoryResolver builds a resolver over in-memory sources, mainly for tests
// and embedded libraries.
func MemoryResolver(sources ...string) (*Resolver, error) {
	mem := resolver.NewMemory()
	for _, src := range sources {
		if err := mem.RegisterSource(src); err != nil {
			return nil, err
		}
	}
	return resolver.New(mem), nil
}

// CompileSession parses the source and compiles its first session against
// the resolver. Composition failures are *CompositionError values.
func CompileSession(ctx context.Context, src string, res *Resolver, cat *Catalog) (*CompiledSession, error) {
	file, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	if len(file.Sessions) == 0 {
		return nil, fmt.Errorf("source defines no session")
	}
	return session.Compile(ctx, file.Sessions[0], res, session.Options{Catalog: cat})
}

// ExportJSON renders a compiled session as indented JSON.
func ExportJSON(s *CompiledSession) ([]byte, error) {
	return export.JSON(s)
}

// ExportICS renders a compiled session as a single-event iCalendar document
// anchored at start. openEndedSeconds sets the assumed duration of
// open-ended blocks; zero selects the default of twenty minutes.
func ExportICS(s *CompiledSession, start time.Time, openEndedSeconds int) ([]byte, error) {
	return export.ICS(s, export.ICSOptions{Start: start, OpenEndedSeconds: openEndedSeconds})
}

// Rank orders submitted records under one of the session's scoring
// directives.
func Rank(records []Record, spec ScoringSpec) *Aggregate {
	return results.Rank(records, spec)
}
