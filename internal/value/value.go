// Package value implements the typed value model of the workout language:
// quantities (reps, calories, distances, time holds, percent-of-max), loads
// (single, dual male/female, per-track variant maps), deterministic unit
// conversion, and track/gender resolution.
//
// Values are immutable once parsed. Conversion to other units happens lazily
// at render or resolve time and never mutates the stored original, so the
// same node always renders the same string.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LbToKg is the fixed pound-to-kilogram conversion constant.
const LbToKg = 0.45359237

// Unit is a measurement unit as written in source.
type Unit string

const (
	UnitNone    Unit = ""
	UnitKg      Unit = "kg"
	UnitLb      Unit = "lb"
	UnitMeter   Unit = "m"
	UnitKm      Unit = "km"
	UnitCm      Unit = "cm"
	UnitIn      Unit = "in"
	UnitSecond  Unit = "s"
	UnitCal     Unit = "cal"
	UnitPercent Unit = "%"
)

// Scalar is a single magnitude with its unit, exactly as authored.
type Scalar struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit,omitempty"`
}

// String renders the scalar in its original unit.
func (s Scalar) String() string {
	return formatNumber(s.Value) + string(s.Unit)
}

// Kg returns the magnitude in kilograms, rounded to one decimal place.
// The second return is false when the unit is not a weight.
func (s Scalar) Kg() (float64, bool) {
	switch s.Unit {
	case UnitKg:
		return s.Value, true
	case UnitLb:
		return math.Round(s.Value*LbToKg*10) / 10, true
	default:
		return 0, false
	}
}

// Render renders the scalar for display. Pound loads carry their approximate
// kilogram equivalent, computed on the fly: 95lb renders "95lb (~43.1kg)".
func (s Scalar) Render() string {
	if s.Unit == UnitLb {
		kg, _ := s.Kg()
		return fmt.Sprintf("%s (~%skg)", s.String(), formatNumber(kg))
	}
	return s.String()
}

// Meters returns the magnitude in meters for distance units.
func (s Scalar) Meters() (float64, bool) {
	switch s.Unit {
	case UnitMeter:
		return s.Value, true
	case UnitKm:
		return s.Value * 1000, true
	default:
		return 0, false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splitDual splits a raw literal on its single top-level slash. The slash of
// a dual literal always separates two numbers; a unit suffix never contains
// one, so splitting on the first slash is safe.
func splitDual(raw string) (left, right string, ok bool) {
	i := strings.IndexByte(raw, '/')
	if i < 0 {
		return raw, "", false
	}
	return raw[:i], raw[i+1:], true
}

// splitDualUnits splits the unit off both halves of a dual literal. The unit
// may sit on either side or both (43/30kg, 43kg/30kg); when both sides carry
// one they must agree.
func splitDualUnits(raw, left, right string) (numL, numR string, unit Unit, err error) {
	numL, unitL := splitUnit(left)
	numR, unitR := splitUnit(right)
	switch {
	case unitL != UnitNone && unitR != UnitNone && unitL != unitR:
		return "", "", UnitNone, fmt.Errorf("dual value %q mixes units %q and %q", raw, unitL, unitR)
	case unitR != UnitNone:
		unit = unitR
	default:
		unit = unitL
	}
	return numL, numR, unit, nil
}

// splitUnit separates the trailing unit letters (or percent sign) from a
// numeric prefix.
func splitUnit(raw string) (num string, unit Unit) {
	i := len(raw)
	for i > 0 {
		c := raw[i-1]
		if (c >= 'a' && c <= 'z') || c == '%' {
			i--
			continue
		}
		break
	}
	return raw[:i], Unit(raw[i:])
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
