// Package session compiles a parsed session into an executable plan.
//
// Compilation resolves each aliased import through the run's resolver,
// gates every resolved module on error-level lint findings, validates and
// applies overrides against the module's variable declarations, substitutes
// variables into copies of the module bodies, pins dual and variant values
// to the run's track and gender, and validates scoring directives last,
// once every alias is known. The result is a value: it holds
// no references back into the resolver or the source tree it was built from.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/ctxlog"
	"github.com/vk/wodc/internal/lint"
	"github.com/vk/wodc/internal/pace"
	"github.com/vk/wodc/internal/resolver"
	"github.com/vk/wodc/internal/value"
)

// Options configures one compilation run.
type Options struct {
	// Catalog enables the catalog-bound lint rules during the lint gate and
	// supplies default loads for loadless movements. Compilation works
	// without one; only the structural rules gate then.
	Catalog *catalog.Catalog
	// Gender picks the side of dual values; empty means Male.
	Gender value.Gender
	// Track picks variant load entries and catalog default loads; empty
	// means RX.
	Track value.Track
}

// CompiledSession is the executable plan for one session. Every dual and
// variant value is already pinned to the recorded track and gender.
type CompiledSession struct {
	Title      string               `json:"title"`
	Track      string               `json:"track"`
	Gender     string               `json:"gender"`
	Components []*CompiledComponent `json:"components"`
	Scoring    []ScoringSpec        `json:"scoring,omitempty"`
	Meta       map[string]string    `json:"meta,omitempty"`

	// MetaOrder preserves source declaration order for deterministic output.
	MetaOrder []string `json:"-"`
}

// CompiledComponent is one aliased import after flattening and substitution.
// Form, ScoreType, and the score fields come from the scoring block: the last
// block in the flattened module that produces a score.
type CompiledComponent struct {
	Alias            string           `json:"alias"`
	Ref              string           `json:"ref"`
	Form             *ast.Form        `json:"form,omitempty"`
	DurationSeconds  int              `json:"duration_seconds,omitempty"`
	EstimatedSeconds int              `json:"estimated_seconds,omitempty"`
	Blocks           []*CompiledBlock `json:"blocks"`
	ScoreType        string           `json:"score_type,omitempty"`

	scoreFields map[string]bool
}

// CompiledBlock is one component body with variables substituted.
// DurationSeconds is the declared running time; open-ended blocks declare
// none and carry a pace-model estimate instead.
type CompiledBlock struct {
	Class            string     `json:"class"`
	Form             *ast.Form  `json:"form"`
	Stmts            []ast.Stmt `json:"stmts"`
	DurationSeconds  int        `json:"duration_seconds,omitempty"`
	EstimatedSeconds int        `json:"estimated_seconds,omitempty"`
}

// ScoringSpec is one validated scoring directive.
type ScoringSpec struct {
	Alias  string   `json:"alias"`
	Type   string   `json:"type"`
	Fields []string `json:"fields"`
}

// Compile builds the executable plan for a session. Imports compile in
// declaration order and the first failure aborts the run.
func Compile(ctx context.Context, sess *ast.Session, res *resolver.Resolver, opts Options) (*CompiledSession, error) {
	log := ctxlog.FromContext(ctx)
	log.Debug("compiling session", "title", sess.Title, "imports", len(sess.Imports))

	gender, track := opts.Gender, opts.Track
	if gender == "" {
		gender = value.Male
	}
	if track == "" {
		track = value.TrackRX
	}

	c := &compiler{res: res, cat: opts.Catalog, gender: gender, track: track, linted: map[string]bool{}}
	out := &CompiledSession{
		Title: sess.Title, Track: string(track), Gender: string(gender),
		Meta: sess.Meta, MetaOrder: sess.MetaOrder,
	}

	seen := map[string]bool{}
	for _, imp := range sess.Imports {
		if seen[imp.Alias] {
			return nil, &CompositionError{
				Kind: DuplicateAlias, Alias: imp.Alias,
				Detail: "alias is imported more than once",
			}
		}
		seen[imp.Alias] = true

		cc, err := c.compileImport(ctx, imp)
		if err != nil {
			return nil, err
		}
		out.Components = append(out.Components, cc)
		log.Debug("component compiled", "alias", cc.Alias, "ref", cc.Ref, "duration_seconds", cc.DurationSeconds)
	}

	// Scoring directives validate last so every alias error reports against
	// the fully compiled component set.
	byAlias := map[string]*CompiledComponent{}
	for _, cc := range out.Components {
		byAlias[cc.Alias] = cc
	}
	for _, d := range sess.Scoring {
		cc, ok := byAlias[d.Alias]
		if !ok {
			return nil, &CompositionError{
				Kind: UnknownScoringAlias, Alias: d.Alias,
				Detail: fmt.Sprintf("session imports %s", aliasList(out.Components)),
			}
		}
		for _, f := range d.Fields {
			if !cc.scoreFields[f] {
				return nil, &CompositionError{
					Kind: UnknownScoringField, Alias: d.Alias, Ref: cc.Ref, Key: f,
					Detail: fmt.Sprintf("score type %q has fields %s", cc.ScoreType, fieldList(cc.scoreFields)),
				}
			}
		}
		out.Scoring = append(out.Scoring, ScoringSpec{Alias: d.Alias, Type: cc.ScoreType, Fields: d.Fields})
	}
	return out, nil
}

type compiler struct {
	res    *resolver.Resolver
	cat    *catalog.Catalog
	gender value.Gender
	track  value.Track
	linted map[string]bool
}

func (c *compiler) compileImport(ctx context.Context, imp *ast.Import) (*CompiledComponent, error) {
	m, err := c.resolve(ctx, imp.Alias, imp.Ref)
	if err != nil {
		return nil, err
	}
	bound, err := bindVars(m, imp)
	if err != nil {
		return nil, err
	}
	blocks, declared, err := c.expand(ctx, m, imp, bound)
	if err != nil {
		return nil, err
	}

	cc := &CompiledComponent{Alias: imp.Alias, Ref: m.Ref(), Blocks: blocks}
	for _, b := range blocks {
		cc.DurationSeconds += b.DurationSeconds
		cc.EstimatedSeconds += b.EstimatedSeconds
	}
	for i := len(blocks) - 1; i >= 0; i-- {
		if t := scoreTypeFor(blocks[i].Form, declared); t != "" {
			cc.Form = blocks[i].Form
			cc.ScoreType = t
			cc.scoreFields = scoreFieldsFor(blocks[i].Form, declared)
			break
		}
	}
	return cc, nil
}

// expand flattens a module into compiled blocks: imported modules first in
// declaration order, then the module's own components with variables bound.
// The resolver's in-flight stack turns re-entry into an ImportCycle.
func (c *compiler) expand(ctx context.Context, m *ast.Module, imp *ast.Import, bound map[string]binding) ([]*CompiledBlock, map[string][]string, error) {
	if err := c.res.Enter(m.Ref()); err != nil {
		var cyc *resolver.CycleError
		if errors.As(err, &cyc) {
			return nil, nil, &CompositionError{Kind: ImportCycle, Alias: imp.Alias, Ref: m.Ref(), Cycle: cyc.Stack}
		}
		return nil, nil, err
	}
	defer c.res.Exit()

	var blocks []*CompiledBlock
	declared := map[string][]string{}
	for _, ref := range m.Imports {
		sub, err := c.resolve(ctx, imp.Alias, ref)
		if err != nil {
			return nil, nil, err
		}
		subBound, err := bindVars(sub, &ast.Import{Alias: imp.Alias})
		if err != nil {
			return nil, nil, err
		}
		subBlocks, subDeclared, err := c.expand(ctx, sub, imp, subBound)
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, subBlocks...)
		for form, fields := range subDeclared {
			declared[form] = fields
		}
	}

	for _, decl := range m.Scores {
		fields := make([]string, len(decl.Fields))
		for i, f := range decl.Fields {
			fields[i] = f.Name
		}
		declared[decl.Form] = fields
	}
	for _, comp := range m.Components {
		sc, err := substituteComponent(comp, bound, imp.Alias, m.Ref())
		if err != nil {
			return nil, nil, err
		}
		stmts, err := c.resolveStmts(sc.Stmts, imp.Alias, m.Ref())
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, &CompiledBlock{
			Class:            sc.Class,
			Form:             sc.Form,
			Stmts:            stmts,
			DurationSeconds:  blockSeconds(sc.Form),
			EstimatedSeconds: estimateSeconds(sc.Form, stmts),
		})
	}
	return blocks, declared, nil
}

// resolve wraps resolver lookups as composition errors and runs the lint
// gate on first sight of each module.
func (c *compiler) resolve(ctx context.Context, alias, ref string) (*ast.Module, error) {
	m, err := c.res.Resolve(ctx, ref)
	if err != nil {
		return nil, &CompositionError{Kind: UnresolvedImport, Alias: alias, Ref: ref, Err: err}
	}
	if !c.linted[m.Ref()] {
		c.linted[m.Ref()] = true
		diags := lint.Lint(&ast.File{Modules: []*ast.Module{m}}, c.cat)
		if lint.HasErrors(diags) {
			return nil, &CompositionError{Kind: LintBlocked, Alias: alias, Ref: m.Ref(), Diagnostics: diags}
		}
	}
	return m, nil
}

// blockSeconds computes the block duration when the form declares one.
// Open-ended forms (uncapped ForTime, RFT, CHIPPER) report zero; downstream
// consumers decide their own placeholder policy.
func blockSeconds(f *ast.Form) int {
	switch f.Name {
	case "TABATA", "INTERVAL":
		return f.Sets * (f.WorkSeconds + f.RestSeconds)
	case "ForTime":
		return f.Cap
	default:
		return f.Seconds
	}
}

// estimateSeconds prices an open-ended block with the pace model. Blocks
// with a declared duration report zero: their running time is not an
// estimate.
func estimateSeconds(f *ast.Form, stmts []ast.Stmt) int {
	if blockSeconds(f) > 0 {
		return 0
	}
	switch f.Name {
	case "ForTime", "RFT", "CHIPPER":
		return pace.BlockSeconds(f, stmts)
	default:
		return 0
	}
}

func aliasList(components []*CompiledComponent) string {
	out := "no components"
	if len(components) == 0 {
		return out
	}
	names := make([]string, len(components))
	for i, cc := range components {
		names[i] = fmt.Sprintf("%q", cc.Alias)
	}
	return joinAnd(names)
}

func fieldList(fields map[string]bool) string {
	if len(fields) == 0 {
		return "no fields"
	}
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, fmt.Sprintf("%q", f))
	}
	sort.Strings(names)
	return joinAnd(names)
}

func joinAnd(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	default:
		out := names[0]
		for _, n := range names[1:] {
			out += ", " + n
		}
		return out
	}
}
