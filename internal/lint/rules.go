package lint

import (
	"fmt"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/pace"
	"github.com/vk/wodc/internal/value"
)

// E010: a REST pseudo-movement must have a positive duration.
func checkRest(r *ast.Rest, path string) []Diagnostic {
	if r.Seconds > 0 {
		return nil
	}
	return []Diagnostic{{
		Level:   SeverityError,
		Code:    "E010",
		Path:    path,
		Message: "REST duration must be greater than zero",
		Pos:     &r.Pos,
	}}
}

// E020: an EMOM slot must structurally fit its movement lines in one minute
// at the pace model's floor rates.
func checkEMOMFit(c *ast.Component, path string) []Diagnostic {
	if c.Form == nil || c.Form.Name != "EMOM" {
		return nil
	}

	// Slot-addressed lines are grouped per slot; bare lines all run every
	// minute.
	slots := map[int][]*ast.Movement{}
	var every []*ast.Movement
	for _, st := range c.Stmts {
		switch s := st.(type) {
		case *ast.Slot:
			slots[s.Index] = append(slots[s.Index], s.Line)
		case *ast.Movement:
			every = append(every, s)
		}
	}

	var diags []Diagnostic
	check := func(lines []*ast.Movement, label string) {
		if len(lines) == 0 {
			return
		}
		total := pace.SecondsTransition * float64(len(lines)-1)
		for _, line := range lines {
			total += pace.LineSeconds(line)
		}
		if total > 60 {
			diags = append(diags, Diagnostic{
				Level: SeverityError,
				Code:  "E020",
				Path:  path,
				Message: fmt.Sprintf("EMOM %s cannot fit %d movement(s): at least %.0fs of work in a 60s slot",
					label, len(lines), total),
				Pos: &c.Pos,
			})
		}
	}

	check(every, "slot")
	// Deterministic slot order.
	for idx := 1; len(slots) > 0 && idx <= maxSlot(slots); idx++ {
		if lines, ok := slots[idx]; ok {
			check(lines, fmt.Sprintf("slot %d", idx))
		}
	}
	return diags
}

func maxSlot(slots map[int][]*ast.Movement) int {
	max := 0
	for idx := range slots {
		if idx > max {
			max = idx
		}
	}
	return max
}

// W001/W050: movement ids are checked against the catalog. Unknown ids warn
// (unresolved ids stay legal); alias hits warn with the canonical id.
func checkMovement(m *ast.Movement, path string, cat *catalog.Catalog) []Diagnostic {
	if cat == nil {
		return nil
	}
	var diags []Diagnostic
	canonical, _, ok, viaAlias := cat.Lookup(m.Name)
	switch {
	case !ok:
		msg := fmt.Sprintf("unknown movement %q", m.Name)
		if suggestion := cat.Suggest(m.Name); suggestion != "" {
			msg += fmt.Sprintf(", did you mean %q?", suggestion)
		}
		diags = append(diags, Diagnostic{
			Level: SeverityWarning, Code: "W001", Path: path, Message: msg, Pos: &m.Pos,
		})
	case viaAlias:
		diags = append(diags, Diagnostic{
			Level: SeverityWarning, Code: "W050", Path: path,
			Message: fmt.Sprintf("%q is an alias, prefer canonical id %q", m.Name, canonical),
			Pos:     &m.Pos,
		})
	}
	diags = append(diags, checkLoadBand(m, path, cat)...)
	return diags
}

// loadBands are sane physiological kilogram bands per movement category.
var loadBands = map[string][2]float64{
	"weightlifting": {10, 220},
	"gymnastics":    {0, 50},
	"conditioning":  {1, 20},
	"mono":          {0, 30},
}

// W002: a load magnitude outside the sane band for the movement's category.
func checkLoadBand(m *ast.Movement, path string, cat *catalog.Catalog) []Diagnostic {
	if m.Load == nil {
		return nil
	}
	category := cat.Category(m.Name)
	band, ok := loadBands[category]
	if !ok {
		return nil
	}

	heaviest, found := heaviestKg(m.Load)
	if !found {
		return nil
	}
	if heaviest >= band[0] && heaviest <= band[1] {
		return nil
	}
	return []Diagnostic{{
		Level: SeverityWarning,
		Code:  "W002",
		Path:  path,
		Message: fmt.Sprintf("load %s is outside the sane band %.0f-%.0fkg for %s movements",
			m.Load, band[0], band[1], category),
		Pos: &m.Pos,
	}}
}

func heaviestKg(l *value.Load) (float64, bool) {
	max, found := 0.0, false
	consider := func(s value.Scalar) {
		if kg, ok := s.Kg(); ok {
			if !found || kg > max {
				max, found = kg, true
			}
		}
	}
	switch l.Kind {
	case value.LoadSingle:
		consider(l.Value)
	case value.LoadDual:
		consider(l.Male)
		consider(l.Female)
	case value.LoadVariants:
		for _, s := range l.Variants {
			consider(s)
		}
	}
	return max, found
}

// I001: a wod with no cardio-tagged movement is structurally imbalanced.
func checkNoCardio(c *ast.Component, path string, cat *catalog.Catalog) []Diagnostic {
	if cat == nil || c.Class != "wod" {
		return nil
	}
	any := false
	for _, st := range c.Stmts {
		var m *ast.Movement
		switch s := st.(type) {
		case *ast.Movement:
			m = s
		case *ast.Slot:
			m = s.Line
		default:
			continue
		}
		switch cat.Category(m.Name) {
		case "mono", "cardio":
			any = true
		}
	}
	if any || len(c.Stmts) == 0 {
		return nil
	}
	return []Diagnostic{{
		Level:   SeverityInfo,
		Path:    path,
		Message: "wod has no cardio-tagged movement",
		Pos:     &c.Pos,
	}}
}

// I002: a module with strength work but no conditioning component at all.
func checkStrengthOnly(m *ast.Module) []Diagnostic {
	hasStrength, hasConditioning := false, false
	for _, c := range m.Components {
		switch c.Class {
		case "strength":
			hasStrength = true
		case "wod":
			hasConditioning = true
		}
	}
	if !hasStrength || hasConditioning {
		return nil
	}
	return []Diagnostic{{
		Level:   SeverityInfo,
		Path:    m.Ref(),
		Message: "strength-only module has no conditioning component",
		Pos:     &m.Pos,
	}}
}
