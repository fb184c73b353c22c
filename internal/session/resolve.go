package session

import (
	"fmt"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/value"
)

// resolveStmts pins every dual and variant value in a block body to the
// run's gender and track, and fills in catalog default loads for loadless
// movements. Statements can still be shared with a cached module, so a
// changed movement is always a copy.
func (c *compiler) resolveStmts(stmts []ast.Stmt, alias, ref string) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, len(stmts))
	for i, st := range stmts {
		switch s := st.(type) {
		case *ast.Movement:
			m, err := c.resolveMovement(s, alias, ref)
			if err != nil {
				return nil, err
			}
			out[i] = m
		case *ast.Slot:
			line, err := c.resolveMovement(s.Line, alias, ref)
			if err != nil {
				return nil, err
			}
			if line == s.Line {
				out[i] = st
				continue
			}
			slot := *s
			slot.Line = line
			out[i] = &slot
		default:
			out[i] = st
		}
	}
	return out, nil
}

func (c *compiler) resolveMovement(m *ast.Movement, alias, ref string) (*ast.Movement, error) {
	quantity := m.Quantity
	if quantity != nil && quantity.Dual {
		v, _ := quantity.Resolve(c.gender)
		q := *quantity
		q.Dual, q.Male, q.Female = false, 0, 0
		q.Value = v
		quantity = &q
	}

	load := m.Load
	if load == nil {
		def, err := c.catalogDefault(m, alias, ref)
		if err != nil {
			return nil, err
		}
		load = def
	}
	if load != nil && load.Kind != value.LoadSingle {
		res := load.Resolve(c.gender, c.track)
		load = &value.Load{Kind: value.LoadSingle, Value: res.Scalar}
	}

	if quantity == m.Quantity && load == m.Load {
		return m, nil
	}
	out := *m
	out.Quantity, out.Load = quantity, load
	return &out, nil
}

// catalogDefault looks up the configured default load for a loadless
// movement. Movements without a catalog entry, or whose entry declares no
// default for the run's track and gender, stay loadless.
func (c *compiler) catalogDefault(m *ast.Movement, alias, ref string) (*value.Load, error) {
	if c.cat == nil {
		return nil, nil
	}
	raw, ok := c.cat.DefaultLoad(m.Name, string(c.track), string(c.gender))
	if !ok {
		return nil, nil
	}
	l, err := value.ParseLoad(raw)
	if err != nil {
		return nil, &CompositionError{
			Kind: InvalidCatalogDefault, Alias: alias, Ref: ref, Key: m.Name,
			Detail: fmt.Sprintf("catalog default load %q", raw), Err: err,
		}
	}
	return l, nil
}
