package session

import (
	"fmt"
	"strconv"

	"github.com/agext/levenshtein"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/value"
)

// binding is one resolved module variable: its declaration plus the effective
// value after defaults and overrides.
type binding struct {
	decl    *ast.VarDecl
	val     cty.Value
	raw     string
	seconds int // populated for Duration bindings
}

// ctyTypes maps the declared variable types onto the value model used for
// coercion. Duration coerces through seconds, Load stays a validated string.
var ctyTypes = map[string]cty.Type{
	"Int":      cty.Number,
	"Float":    cty.Number,
	"Duration": cty.Number,
	"Load":     cty.String,
	"String":   cty.String,
	"Bool":     cty.Bool,
}

// bindVars computes the variable bindings for one import: declaration
// defaults first, then the import's overrides, each coerced against the
// declared type and checked against declared min/max constraints.
func bindVars(m *ast.Module, imp *ast.Import) (map[string]binding, error) {
	decls := map[string]*ast.VarDecl{}
	bound := map[string]binding{}
	for _, d := range m.Vars {
		decls[d.Name] = d
		if d.Default == "" && !d.Quoted {
			continue
		}
		b, err := bindOne(d, d.Default, d.Quoted)
		if err != nil {
			return nil, &CompositionError{
				Kind: ConstraintViolation, Alias: imp.Alias, Ref: m.Ref(), Key: d.Name,
				Detail: fmt.Sprintf("default value: %v", err),
			}
		}
		bound[d.Name] = b
	}

	for _, ov := range imp.Overrides {
		d, ok := decls[ov.Key]
		if !ok {
			detail := fmt.Sprintf("module declares no variable %q", ov.Key)
			if s := closestVar(ov.Key, m.Vars); s != "" {
				detail += fmt.Sprintf(", did you mean %q?", s)
			}
			return nil, &CompositionError{
				Kind: UnknownOverrideKey, Alias: imp.Alias, Ref: m.Ref(), Key: ov.Key, Detail: detail,
			}
		}
		b, err := bindOne(d, ov.Raw, ov.Quoted)
		if err != nil {
			kind := OverrideTypeMismatch
			if _, isRange := err.(*rangeError); isRange {
				kind = ConstraintViolation
			}
			return nil, &CompositionError{
				Kind: kind, Alias: imp.Alias, Ref: m.Ref(), Key: ov.Key, Detail: err.Error(),
			}
		}
		bound[ov.Key] = b
	}
	return bound, nil
}

// rangeError separates constraint failures from type failures.
type rangeError struct{ msg string }

func (e *rangeError) Error() string { return e.msg }

func bindOne(d *ast.VarDecl, raw string, quoted bool) (binding, error) {
	target, ok := ctyTypes[d.Type]
	if !ok {
		return binding{}, fmt.Errorf("unsupported variable type %q", d.Type)
	}
	if quoted && d.Type != "String" {
		return binding{}, fmt.Errorf("cannot use string %q as %s", raw, d.Type)
	}

	b := binding{decl: d, raw: raw}
	switch d.Type {
	case "Duration":
		secs, err := value.ParseClockSeconds(raw)
		if err != nil || secs < 0 {
			return binding{}, fmt.Errorf("%q is not a duration", raw)
		}
		b.val = cty.NumberIntVal(int64(secs))
		b.seconds = secs
	case "Load":
		if _, err := value.ParseLoad(raw); err != nil {
			return binding{}, fmt.Errorf("%q is not a load: %v", raw, err)
		}
		b.val = cty.StringVal(raw)
	default:
		converted, err := convert.Convert(inferLiteral(raw, quoted), target)
		if err != nil {
			return binding{}, fmt.Errorf("cannot use %q as %s: %v", raw, d.Type, err)
		}
		b.val = converted
		if d.Type == "Int" && !b.val.AsBigFloat().IsInt() {
			return binding{}, fmt.Errorf("%q is not an integer", raw)
		}
	}
	if err := checkRange(d, b); err != nil {
		return binding{}, err
	}
	return b, nil
}

// inferLiteral maps a raw lexeme onto its natural value; convert.Convert
// decides whether that natural type fits the declaration.
func inferLiteral(raw string, quoted bool) cty.Value {
	if quoted {
		return cty.StringVal(raw)
	}
	if raw == "true" || raw == "false" {
		return cty.BoolVal(raw == "true")
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	return cty.StringVal(raw)
}

func checkRange(d *ast.VarDecl, b binding) error {
	if d.Min == nil && d.Max == nil {
		return nil
	}
	if b.val.Type() != cty.Number {
		return nil
	}
	f, _ := b.val.AsBigFloat().Float64()
	if d.Min != nil && f < *d.Min {
		return &rangeError{fmt.Sprintf("%v is below min %v", f, *d.Min)}
	}
	if d.Max != nil && f > *d.Max {
		return &rangeError{fmt.Sprintf("%v is above max %v", f, *d.Max)}
	}
	return nil
}

func closestVar(key string, decls []*ast.VarDecl) string {
	best, bestDist := "", 3
	for _, d := range decls {
		if dist := levenshtein.Distance(key, d.Name, nil); dist < bestDist {
			best, bestDist = d.Name, dist
		}
	}
	return best
}
