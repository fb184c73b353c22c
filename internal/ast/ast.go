// Package ast defines the canonical syntax tree of the workout language.
//
// Every node is a tagged variant: the Kind field discriminates the construct,
// children are only primitives or nested nodes, and no node holds a back
// reference. Cross-references (imports, scoring aliases) are identifiers
// resolved by lookup, never pointers, so the tree is serializable as-is.
package ast

import (
	"github.com/vk/wodc/internal/token"
	"github.com/vk/wodc/internal/value"
)

// Kind tags a node with its construct.
type Kind string

const (
	KindModule     Kind = "module"
	KindSession    Kind = "session"
	KindAnnotation Kind = "annotation"
	KindVar        Kind = "var"
	KindComponent  Kind = "component"
	KindMovement   Kind = "movement"
	KindRest       Kind = "rest"
	KindSlot       Kind = "slot"
	KindScore      Kind = "score"
	KindImport     Kind = "import"
	KindDirective  Kind = "directive"
)

// File is the root of a parsed source file: one or more top-level module and
// session constructs in source order.
type File struct {
	Modules  []*Module  `json:"modules,omitempty"`
	Sessions []*Session `json:"sessions,omitempty"`
}

// Module is a versioned, namespaced reusable definition. Immutable once
// parsed; the resolver hands out the same parsed value per reference.
type Module struct {
	Kind        Kind          `json:"kind"`
	Name        string        `json:"name"` // dotted namespace name
	Version     string        `json:"version"`
	Annotations []*Annotation `json:"annotations,omitempty"`
	Imports     []string      `json:"imports,omitempty"` // refs merged into this module
	Vars        []*VarDecl    `json:"vars,omitempty"`
	Components  []*Component  `json:"components"`
	Scores      []*ScoreDecl  `json:"scores,omitempty"`
	Pos         token.Pos     `json:"pos"`
}

// Ref returns the normalized reference string, e.g. "wod.block.a@v1".
func (m *Module) Ref() string { return m.Name + "@" + m.Version }

// Annotation is a module-level marker such as @intensity("high").
type Annotation struct {
	Kind Kind      `json:"kind"`
	Name string    `json:"name"`
	Args []string  `json:"args,omitempty"`
	Pos  token.Pos `json:"pos"`
}

// VarDecl declares a typed module variable with an optional default and
// min/max constraints. Default holds the raw literal; the session compiler
// coerces it against the declared type.
type VarDecl struct {
	Kind    Kind      `json:"kind"`
	Name    string    `json:"name"`
	Type    string    `json:"type"` // Int, Float, Duration, Load, String, Bool
	Unit    string    `json:"unit,omitempty"`
	Default string    `json:"default,omitempty"`
	Quoted  bool      `json:"quoted,omitempty"` // Default came from a string literal
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Pos     token.Pos `json:"pos"`
}

// Component is one body of a module: warmup, skill, strength, or wod.
type Component struct {
	Kind  Kind      `json:"kind"`
	Class string    `json:"class"` // warmup|skill|strength|wod
	Form  *Form     `json:"form"`
	Stmts []Stmt    `json:"stmts"`
	Pos   token.Pos `json:"pos"`
}

// Form is the execution shape of a component. Name selects the variant and
// only the fields that variant uses are populated:
//
//	AMRAP/EMOM      Seconds (or SecondsVar)
//	ForTime         Cap (0 when uncapped)
//	RFT             Rounds
//	CHIPPER         nothing
//	TABATA/INTERVAL Sets, WorkSeconds, RestSeconds
//	SETS            Sets, Reps (strength 5*5)
//	free forms      optional Seconds
type Form struct {
	Name        string `json:"name"`
	Seconds     int    `json:"seconds,omitempty"`
	SecondsVar  string `json:"seconds_var,omitempty"`
	Cap         int    `json:"cap,omitempty"`
	Rounds      int    `json:"rounds,omitempty"`
	Sets        int    `json:"sets,omitempty"`
	Reps        int    `json:"reps,omitempty"`
	WorkSeconds int    `json:"work_seconds,omitempty"`
	RestSeconds int    `json:"rest_seconds,omitempty"`
}

// Stmt is a body-level statement: a movement line, a REST pseudo-movement,
// or an EMOM slot line.
type Stmt interface {
	StmtKind() Kind
}

// Movement is one prescribed movement line.
type Movement struct {
	Kind     Kind            `json:"kind"`
	Quantity *value.Quantity `json:"quantity,omitempty"`
	Name     string          `json:"name"`
	Scheme   []int           `json:"scheme,omitempty"` // rep progression, e.g. 21-15-9
	Load     *value.Load     `json:"load,omitempty"`
	Sync     bool            `json:"sync,omitempty"`
	Shared   bool            `json:"shared,omitempty"`
	Each     bool            `json:"each,omitempty"`
	Note     string          `json:"note,omitempty"`
	Pos      token.Pos       `json:"pos"`
}

func (m *Movement) StmtKind() Kind { return KindMovement }

// Rest is the REST pseudo-movement.
type Rest struct {
	Kind    Kind      `json:"kind"`
	Seconds int       `json:"seconds"`
	Pos     token.Pos `json:"pos"`
}

func (r *Rest) StmtKind() Kind { return KindRest }

// Slot is an EMOM slot line: "2: 10 Push_up".
type Slot struct {
	Kind  Kind      `json:"kind"`
	Index int       `json:"index"`
	Line  *Movement `json:"line"`
	Pos   token.Pos `json:"pos"`
}

func (s *Slot) StmtKind() Kind { return KindSlot }

// ScoreDecl declares the score shape a component form produces.
type ScoreDecl struct {
	Kind   Kind         `json:"kind"`
	Form   string       `json:"form"`
	Fields []ScoreField `json:"fields"`
	Pos    token.Pos    `json:"pos"`
}

// ScoreField is one typed field of a score declaration.
type ScoreField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Session is a named composition of aliased module imports plus scoring
// selection. Compiled on demand, never persisted.
type Session struct {
	Kind      Kind              `json:"kind"`
	Title     string            `json:"title"`
	Imports   []*Import         `json:"imports"`
	Scoring   []*Directive      `json:"scoring,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	MetaOrder []string          `json:"-"`
	Pos       token.Pos         `json:"pos"`
}

// Import is one aliased component import with optional overrides.
type Import struct {
	Kind      Kind        `json:"kind"`
	Alias     string      `json:"alias"`
	Ref       string      `json:"ref"`
	Overrides []*Override `json:"overrides,omitempty"`
	Pos       token.Pos   `json:"pos"`
}

// Override is a raw key/value pair validated against the imported module's
// variable declarations at compile time.
type Override struct {
	Key    string    `json:"key"`
	Raw    string    `json:"raw"`
	Quoted bool      `json:"quoted,omitempty"`
	Pos    token.Pos `json:"pos"`
}

// Directive selects which fields of an aliased component score, and how they
// combine ("a: time+reps" yields Fields ["time","reps"]).
type Directive struct {
	Kind   Kind      `json:"kind"`
	Alias  string    `json:"alias"`
	Fields []string  `json:"fields"`
	Pos    token.Pos `json:"pos"`
}
