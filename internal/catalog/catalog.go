// Package catalog loads the external movement catalog: a JSON lookup of
// canonical movement ids, their aliases, categories, and default loads per
// track and gender. The catalog is optional everywhere it is consumed;
// unresolved ids stay legal.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Entry describes one canonical movement.
type Entry struct {
	Preferred string   `json:"preferred"`
	Aliases   []string `json:"aliases,omitempty"`
	Category  string   `json:"category,omitempty"`
	// Defaults maps track -> gender -> load literal (e.g. "43kg").
	Defaults map[string]map[string]string `json:"defaults,omitempty"`
}

// Catalog is an immutable movement lookup built once from JSON.
type Catalog struct {
	entries map[string]Entry
	aliases map[string]string // normalized alias -> canonical id
	ids     []string          // sorted canonical ids, for deterministic suggestions
}

// Load reads a catalog JSON file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return FromJSON(data)
}

// FromJSON builds a catalog from raw JSON: an object mapping movement id to
// its entry.
func FromJSON(data []byte) (*Catalog, error) {
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		entries: make(map[string]Entry, len(raw)),
		aliases: make(map[string]string),
	}
	for id, entry := range raw {
		key := normalize(id)
		if entry.Preferred == "" {
			entry.Preferred = id
		}
		c.entries[key] = entry
		c.ids = append(c.ids, key)
		for _, alias := range entry.Aliases {
			c.aliases[normalize(alias)] = key
		}
	}
	sort.Strings(c.ids)
	return c, nil
}

// Len reports the number of canonical entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup resolves a movement id. viaAlias is true when the id matched an
// alias rather than the canonical id itself; canonical then names the id the
// author should have used.
func (c *Catalog) Lookup(id string) (canonical string, entry Entry, ok bool, viaAlias bool) {
	key := normalize(id)
	if e, found := c.entries[key]; found {
		return key, e, true, false
	}
	if canon, found := c.aliases[key]; found {
		return canon, c.entries[canon], true, true
	}
	return "", Entry{}, false, false
}

// Category returns the category of a movement, resolving aliases; empty when
// unknown.
func (c *Catalog) Category(id string) string {
	if _, e, ok, _ := c.Lookup(id); ok {
		return e.Category
	}
	return ""
}

// Suggest returns the canonical id closest to the unknown input, or "" when
// nothing is within editing distance 2. Ties break on lexical order because
// ids is sorted.
func (c *Catalog) Suggest(id string) string {
	input := normalize(id)
	best, bestDist := "", 3
	for _, candidate := range c.ids {
		d := levenshtein.Distance(input, candidate, nil)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// DefaultLoad returns the configured default load literal for a movement,
// track, and gender, if any.
func (c *Catalog) DefaultLoad(id, track, gender string) (string, bool) {
	_, e, ok, _ := c.Lookup(id)
	if !ok || e.Defaults == nil {
		return "", false
	}
	byGender, ok := e.Defaults[strings.ToLower(track)]
	if !ok {
		return "", false
	}
	load, ok := byGender[strings.ToLower(gender)]
	return load, ok
}

// normalize lowers ids so lookups are case-insensitive; the language writes
// movements like Push_up while catalogs key on push_up.
func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
