package value

import (
	"fmt"
	"strconv"
	"strings"
)

// QuantityKind discriminates the quantity variants.
type QuantityKind string

const (
	QuantityReps     QuantityKind = "reps"
	QuantityCalories QuantityKind = "cal"
	QuantityDistance QuantityKind = "distance"
	QuantityHold     QuantityKind = "hold"
	QuantityPercent  QuantityKind = "percent"
	QuantityVar      QuantityKind = "var"
)

// Quantity is a tagged prescription amount. A dual quantity carries both a
// male and a female side; a non-dual one carries only Value. QuantityVar
// defers to a module variable and is substituted at compile time.
type Quantity struct {
	Kind   QuantityKind `json:"kind"`
	Value  float64      `json:"value,omitempty"`
	Unit   Unit         `json:"unit,omitempty"`
	Dual   bool         `json:"dual,omitempty"`
	Male   float64      `json:"male,omitempty"`
	Female float64      `json:"female,omitempty"`
	Var    string       `json:"var,omitempty"`
}

// ParseQuantity normalizes a raw quantity lexeme. calSuffix marks a spaced
// "cal" word following the number, as in "15/12 cal".
func ParseQuantity(raw string, calSuffix bool) (*Quantity, error) {
	if strings.Contains(raw, ":") {
		secs, err := parseClock(raw)
		if err != nil {
			return nil, err
		}
		return &Quantity{Kind: QuantityHold, Value: secs, Unit: UnitSecond}, nil
	}

	left, right, dual := splitDual(raw)
	numL, unit := left, UnitNone
	var numR string
	if dual {
		var err error
		numL, numR, unit, err = splitDualUnits(raw, left, right)
		if err != nil {
			return nil, err
		}
	} else {
		numL, unit = splitUnit(left)
	}
	if calSuffix {
		if unit != UnitNone {
			return nil, fmt.Errorf("quantity %q already has unit %q, cannot add cal", raw, unit)
		}
		unit = UnitCal
	}

	kind, err := quantityKindForUnit(unit)
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", raw, err)
	}

	if dual {
		male, err := parseNumber(numL)
		if err != nil {
			return nil, err
		}
		female, err := parseNumber(numR)
		if err != nil {
			return nil, err
		}
		return &Quantity{Kind: kind, Unit: quantityUnit(kind, unit), Dual: true, Male: male, Female: female}, nil
	}

	v, err := parseNumber(numL)
	if err != nil {
		return nil, err
	}
	return &Quantity{Kind: kind, Unit: quantityUnit(kind, unit), Value: v}, nil
}

// VarQuantity builds a variable-reference quantity for "$name".
func VarQuantity(name string) *Quantity {
	return &Quantity{Kind: QuantityVar, Var: name}
}

func quantityKindForUnit(unit Unit) (QuantityKind, error) {
	switch unit {
	case UnitNone:
		return QuantityReps, nil
	case UnitCal:
		return QuantityCalories, nil
	case UnitMeter, UnitKm:
		return QuantityDistance, nil
	case UnitSecond:
		return QuantityHold, nil
	case UnitPercent:
		return QuantityPercent, nil
	default:
		return "", fmt.Errorf("unit %q is not a quantity unit", unit)
	}
}

// quantityUnit drops the pseudo-units that the kind already implies.
func quantityUnit(kind QuantityKind, unit Unit) Unit {
	switch kind {
	case QuantityReps, QuantityCalories, QuantityPercent:
		return UnitNone
	default:
		return unit
	}
}

func parseClock(raw string) (float64, error) {
	i := strings.IndexByte(raw, ':')
	mins, err := strconv.Atoi(raw[:i])
	if err != nil {
		return 0, fmt.Errorf("invalid time literal %q", raw)
	}
	secs, err := strconv.Atoi(raw[i+1:])
	if err != nil || secs > 59 {
		return 0, fmt.Errorf("invalid time literal %q", raw)
	}
	return float64(mins*60 + secs), nil
}

// ParseClockSeconds exposes clock parsing for time literals outside
// quantities (REST durations, form headers, caps).
func ParseClockSeconds(raw string) (int, error) {
	if strings.Contains(raw, ":") {
		v, err := parseClock(raw)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	}
	num, unit := splitUnit(raw)
	v, err := parseNumber(num)
	if err != nil {
		return 0, err
	}
	switch unit {
	case UnitSecond:
		return int(v), nil
	case UnitNone:
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid duration literal %q", raw)
	}
}

// Resolve picks one side of the quantity for the requested gender. For a
// non-dual quantity the stored value is used and the outcome reports
// OutcomeOnly so callers can distinguish "absent, used the only side" from
// "picked one of two".
func (q *Quantity) Resolve(g Gender) (float64, Outcome) {
	if !q.Dual {
		return q.Value, OutcomeOnly
	}
	if g == Female {
		return q.Female, OutcomeExact
	}
	return q.Male, OutcomeExact
}

// String renders the quantity back in canonical source form.
func (q *Quantity) String() string {
	switch q.Kind {
	case QuantityVar:
		return "$" + q.Var
	case QuantityHold:
		secs := int(q.Value)
		return fmt.Sprintf("%d:%02d", secs/60, secs%60)
	case QuantityCalories:
		if q.Dual {
			return fmt.Sprintf("%s/%s cal", formatNumber(q.Male), formatNumber(q.Female))
		}
		return formatNumber(q.Value) + " cal"
	case QuantityPercent:
		if q.Dual {
			return fmt.Sprintf("%s/%s%%", formatNumber(q.Male), formatNumber(q.Female))
		}
		return formatNumber(q.Value) + "%"
	default:
		if q.Dual {
			return fmt.Sprintf("%s/%s%s", formatNumber(q.Male), formatNumber(q.Female), q.Unit)
		}
		return formatNumber(q.Value) + string(q.Unit)
	}
}
