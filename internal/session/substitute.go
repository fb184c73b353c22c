package session

import (
	"fmt"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/value"
)

// substituteComponent returns a copy of the component with every variable
// reference replaced by its bound value. The source component is never
// mutated: resolved modules are shared through the run cache.
func substituteComponent(c *ast.Component, bound map[string]binding, alias, ref string) (*ast.Component, error) {
	out := *c
	form := *c.Form
	if form.SecondsVar != "" {
		b, ok := bound[form.SecondsVar]
		if !ok {
			return nil, undefinedVar(alias, ref, form.SecondsVar)
		}
		if b.decl.Type != "Duration" {
			return nil, &CompositionError{
				Kind: OverrideTypeMismatch, Alias: alias, Ref: ref, Key: form.SecondsVar,
				Detail: fmt.Sprintf("form duration needs a Duration variable, %q is %s", form.SecondsVar, b.decl.Type),
			}
		}
		form.Seconds, form.SecondsVar = b.seconds, ""
	}
	out.Form = &form

	stmts := make([]ast.Stmt, len(c.Stmts))
	for i, st := range c.Stmts {
		switch s := st.(type) {
		case *ast.Movement:
			m, err := substituteMovement(s, bound, alias, ref)
			if err != nil {
				return nil, err
			}
			stmts[i] = m
		case *ast.Slot:
			line, err := substituteMovement(s.Line, bound, alias, ref)
			if err != nil {
				return nil, err
			}
			slot := *s
			slot.Line = line
			stmts[i] = &slot
		default:
			stmts[i] = st
		}
	}
	out.Stmts = stmts
	return &out, nil
}

func substituteMovement(m *ast.Movement, bound map[string]binding, alias, ref string) (*ast.Movement, error) {
	if m.Quantity == nil || m.Quantity.Kind != value.QuantityVar {
		return m, nil
	}
	b, ok := bound[m.Quantity.Var]
	if !ok {
		return nil, undefinedVar(alias, ref, m.Quantity.Var)
	}

	out := *m
	switch b.decl.Type {
	case "Int", "Float":
		f, _ := b.val.AsBigFloat().Float64()
		out.Quantity = &value.Quantity{Kind: value.QuantityReps, Value: f}
	case "Duration":
		out.Quantity = &value.Quantity{Kind: value.QuantityHold, Value: float64(b.seconds), Unit: value.UnitSecond}
	default:
		return nil, &CompositionError{
			Kind: OverrideTypeMismatch, Alias: alias, Ref: ref, Key: m.Quantity.Var,
			Detail: fmt.Sprintf("a movement quantity needs an Int, Float, or Duration variable, %q is %s", m.Quantity.Var, b.decl.Type),
		}
	}
	return &out, nil
}

func undefinedVar(alias, ref, name string) error {
	return &CompositionError{
		Kind: UnresolvedVariable, Alias: alias, Ref: ref, Key: name,
		Detail: fmt.Sprintf("module references $%s but never declares it", name),
	}
}
