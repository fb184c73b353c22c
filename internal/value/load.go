package value

import (
	"fmt"
	"sort"
	"strings"
)

// Gender selects one side of a dual value.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Track is the skill-level variant selector.
type Track string

const (
	TrackRX           Track = "RX"
	TrackIntermediate Track = "INTERMEDIATE"
	TrackScaled       Track = "SCALED"
)

// Outcome reports how a dual/variant value was resolved.
type Outcome string

const (
	// OutcomeOnly means the value had a single representation and it was used.
	OutcomeOnly Outcome = "only"
	// OutcomeExact means the requested side or track was present and picked.
	OutcomeExact Outcome = "exact"
	// OutcomeFallback means the requested track was absent and a substitute
	// entry was used instead.
	OutcomeFallback Outcome = "fallback"
)

// LoadKind discriminates the load representations. Exactly one representation
// is populated per Load.
type LoadKind string

const (
	LoadSingle   LoadKind = "single"
	LoadDual     LoadKind = "dual"
	LoadVariants LoadKind = "variants"
)

// Load is a prescribed external load: a single value, a male/female pair, or
// a per-track variant map. Percent-of-max loads are stored symbolically with
// UnitPercent; resolving a percentage against an athlete's actual max is out
// of scope for the core.
type Load struct {
	Kind     LoadKind          `json:"kind"`
	Value    Scalar            `json:"value,omitempty"`
	Male     Scalar            `json:"male,omitempty"`
	Female   Scalar            `json:"female,omitempty"`
	Variants map[string]Scalar `json:"variants,omitempty"`
	// Labels preserves variant declaration order for deterministic rendering.
	Labels []string `json:"-"`
}

// ParseLoad normalizes a raw load lexeme such as "43kg", "95lb", "60%", or
// "43/30kg". Variant maps are assembled by the parser via VariantLoad.
func ParseLoad(raw string) (*Load, error) {
	left, right, dual := splitDual(raw)
	if dual {
		numL, numR, unit, err := splitDualUnits(raw, left, right)
		if err != nil {
			return nil, err
		}
		if unit == UnitNone {
			return nil, fmt.Errorf("dual load %q is missing a unit", raw)
		}
		if err := checkLoadUnit(raw, unit); err != nil {
			return nil, err
		}
		male, err := parseNumber(numL)
		if err != nil {
			return nil, err
		}
		female, err := parseNumber(numR)
		if err != nil {
			return nil, err
		}
		return &Load{
			Kind:   LoadDual,
			Male:   Scalar{Value: male, Unit: unit},
			Female: Scalar{Value: female, Unit: unit},
		}, nil
	}

	num, unit := splitUnit(left)
	if unit == UnitNone {
		return nil, fmt.Errorf("load %q is missing a unit", raw)
	}
	if err := checkLoadUnit(raw, unit); err != nil {
		return nil, err
	}
	v, err := parseNumber(num)
	if err != nil {
		return nil, err
	}
	return &Load{Kind: LoadSingle, Value: Scalar{Value: v, Unit: unit}}, nil
}

// VariantLoad builds a per-track load from parsed label/scalar pairs.
func VariantLoad(labels []string, entries map[string]Scalar) *Load {
	return &Load{Kind: LoadVariants, Variants: entries, Labels: labels}
}

func checkLoadUnit(raw string, unit Unit) error {
	switch unit {
	case UnitKg, UnitLb, UnitPercent, UnitCm, UnitIn, UnitMeter, UnitKm:
		return nil
	default:
		return fmt.Errorf("load %q has non-load unit %q", raw, unit)
	}
}

// Resolution is the observable result of resolving a load for a gender and
// track. Outcome lets callers distinguish an exact hit from a fallback.
type Resolution struct {
	Scalar  Scalar
	Outcome Outcome
	// Track is the variant label actually used, set for variant loads.
	Track string
}

// Resolve picks the load entry for the requested gender and track.
//
// A variant map resolves by track and ignores gender; a missing track falls
// back to "RX" with OutcomeFallback, and when "RX" itself is absent the
// lexically-lowest label is used so resolution stays total and deterministic.
// A dual load resolves by gender. Resolution is pure: repeated calls with the
// same inputs always return the same result.
func (l *Load) Resolve(g Gender, tr Track) Resolution {
	switch l.Kind {
	case LoadVariants:
		if s, ok := l.Variants[string(tr)]; ok {
			return Resolution{Scalar: s, Outcome: OutcomeExact, Track: string(tr)}
		}
		if s, ok := l.Variants[string(TrackRX)]; ok {
			return Resolution{Scalar: s, Outcome: OutcomeFallback, Track: string(TrackRX)}
		}
		labels := make([]string, 0, len(l.Variants))
		for label := range l.Variants {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		label := labels[0]
		return Resolution{Scalar: l.Variants[label], Outcome: OutcomeFallback, Track: label}
	case LoadDual:
		if g == Female {
			return Resolution{Scalar: l.Female, Outcome: OutcomeExact}
		}
		return Resolution{Scalar: l.Male, Outcome: OutcomeExact}
	default:
		return Resolution{Scalar: l.Value, Outcome: OutcomeOnly}
	}
}

// String renders the load back in canonical source form, without the
// leading '@'.
func (l *Load) String() string {
	switch l.Kind {
	case LoadDual:
		return fmt.Sprintf("%s/%s%s", formatNumber(l.Male.Value), formatNumber(l.Female.Value), l.Male.Unit)
	case LoadVariants:
		parts := make([]string, 0, len(l.Labels))
		for _, label := range l.Labels {
			parts = append(parts, fmt.Sprintf("%s: %s", label, l.Variants[label]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return l.Value.String()
	}
}
