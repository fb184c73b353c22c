// Package results ranks submitted scores against a session's scoring
// directive.
//
// Ranking is a pure reduction: records are never mutated, ties keep their
// first-seen order, and records missing every scored field are carried
// through unranked instead of being dropped.
package results

import (
	"sort"

	"github.com/vk/wodc/internal/session"
)

// Record is one submitted score. Values holds the numeric score fields by
// name; time fields are seconds.
type Record struct {
	Athlete string             `json:"athlete"`
	Team    string             `json:"team,omitempty"`
	Values  map[string]float64 `json:"values"`
}

func (r Record) has(field string) bool {
	_, ok := r.Values[field]
	return ok
}

// Entry is one ranked record. Rank is nil for malformed records: ones
// carrying none of the directive's fields.
type Entry struct {
	Rank   *int   `json:"rank"`
	Record Record `json:"record"`
	// DNF marks a partially scored record, such as a capped athlete who
	// submitted reps but no finish time.
	DNF bool `json:"dnf,omitempty"`
}

// Aggregate is the ranked leaderboard for one scoring directive.
type Aggregate struct {
	Spec    session.ScoringSpec `json:"spec"`
	Entries []Entry             `json:"entries"`
}

// Rank orders records under the directive's field list. Fields compare
// lexicographically in directive order: time ascends, every other field
// descends. A record missing a field sorts after every record that has it,
// which puts capped athletes behind all finishers in time+reps scoring.
func Rank(records []Record, spec session.ScoringSpec) *Aggregate {
	scored := make([]Record, 0, len(records))
	var malformed []Record
	for _, r := range records {
		if hasAnyField(r, spec.Fields) {
			scored = append(scored, r)
		} else {
			malformed = append(malformed, r)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return compare(scored[i], scored[j], spec.Fields) < 0
	})

	agg := &Aggregate{Spec: spec, Entries: make([]Entry, 0, len(records))}
	for i, r := range scored {
		rank := i + 1
		if i > 0 && compare(scored[i-1], r, spec.Fields) == 0 {
			rank = *agg.Entries[i-1].Rank
		}
		rankVal := rank
		agg.Entries = append(agg.Entries, Entry{Rank: &rankVal, Record: r, DNF: isDNF(r, spec.Fields)})
	}
	for _, r := range malformed {
		agg.Entries = append(agg.Entries, Entry{Record: r})
	}
	return agg
}

func hasAnyField(r Record, fields []string) bool {
	for _, f := range fields {
		if r.has(f) {
			return true
		}
	}
	return false
}

func isDNF(r Record, fields []string) bool {
	for _, f := range fields {
		if !r.has(f) {
			return true
		}
	}
	return false
}

// compare returns a three-way ordering of two scored records: negative when
// a ranks ahead of b.
func compare(a, b Record, fields []string) int {
	for _, f := range fields {
		av, aok := a.Values[f]
		bv, bok := b.Values[f]
		switch {
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		case !aok && !bok:
			continue
		case av == bv:
			continue
		}
		better := av > bv
		if f == "time" {
			better = av < bv
		}
		if better {
			return -1
		}
		return 1
	}
	return 0
}

// TeamScore is one team's rollup: the sum of its members' ranks, lower is
// better. Unranked members are excluded and reported via Counted.
type TeamScore struct {
	Team    string `json:"team"`
	Points  int    `json:"points"`
	Counted int    `json:"counted"`
}

// Teams rolls the leaderboard up per team, ordered by points ascending with
// first-appearance tie order.
func (a *Aggregate) Teams() []TeamScore {
	order := []string{}
	totals := map[string]*TeamScore{}
	for _, e := range a.Entries {
		team := e.Record.Team
		if team == "" || e.Rank == nil {
			continue
		}
		ts, ok := totals[team]
		if !ok {
			ts = &TeamScore{Team: team}
			totals[team] = ts
			order = append(order, team)
		}
		ts.Points += *e.Rank
		ts.Counted++
	}

	out := make([]TeamScore, 0, len(order))
	for _, team := range order {
		out = append(out, *totals[team])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out
}
