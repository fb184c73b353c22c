// Package pace estimates execution time for workout bodies from minimal
// execution-rate assumptions: the fastest plausible athlete still needs at
// least this long. The model prices open-ended blocks for planning and
// backs the structural fit checks.
package pace

import (
	"math"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/value"
)

// Floor rates in seconds.
const (
	SecondsPerRep      = 2.0
	SecondsPerCal      = 3.0
	SecondsPerMeter    = 0.25
	SecondsTransition  = 3.0
	SecondsUnknownLine = 2.0
)

// LineSeconds estimates the minimal seconds one movement line takes. A rep
// scheme line (21-15-9) sums its rounds; a dual quantity is bounded by its
// faster side.
func LineSeconds(m *ast.Movement) float64 {
	if len(m.Scheme) > 0 {
		reps := 0
		for _, r := range m.Scheme {
			reps += r
		}
		return float64(reps) * SecondsPerRep
	}

	q := m.Quantity
	if q == nil {
		return SecondsUnknownLine
	}
	amount := q.Value
	if q.Dual {
		amount = q.Female
		if q.Male < q.Female {
			amount = q.Male
		}
	}
	switch q.Kind {
	case value.QuantityReps:
		return amount * SecondsPerRep
	case value.QuantityCalories:
		return amount * SecondsPerCal
	case value.QuantityDistance:
		meters := amount
		if q.Unit == value.UnitKm {
			meters *= 1000
		}
		return meters * SecondsPerMeter
	case value.QuantityHold:
		return amount
	default:
		return SecondsUnknownLine
	}
}

// BlockSeconds estimates one open-ended block: every movement line at its
// floor rate, a transition between consecutive lines, REST at its declared
// duration, and the whole body multiplied by the RFT round count.
func BlockSeconds(form *ast.Form, stmts []ast.Stmt) int {
	total, lines := 0.0, 0
	for _, st := range stmts {
		switch s := st.(type) {
		case *ast.Movement:
			total += LineSeconds(s)
			lines++
		case *ast.Slot:
			total += LineSeconds(s.Line)
			lines++
		case *ast.Rest:
			total += float64(s.Seconds)
		}
	}
	if lines > 1 {
		total += SecondsTransition * float64(lines-1)
	}
	if form != nil && form.Name == "RFT" && form.Rounds > 1 {
		total *= float64(form.Rounds)
	}
	return int(math.Ceil(total))
}
