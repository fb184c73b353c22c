package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "pullups": {
    "preferred": "pullups",
    "aliases": ["pu", "pull_up"],
    "category": "gymnastics"
  },
  "wall_balls": {
    "preferred": "wall_balls",
    "aliases": ["wb", "wallball"],
    "category": "conditioning",
    "defaults": {
      "rx": {"male": "9kg", "female": "6kg"},
      "scaled": {"male": "6kg", "female": "4kg"}
    }
  },
  "thrusters": {
    "category": "weightlifting"
  }
}`

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := FromJSON([]byte(sampleJSON))
	require.NoError(t, err)
	return c
}

func TestLookup(t *testing.T) {
	c := mustCatalog(t)

	canon, entry, ok, viaAlias := c.Lookup("Pull_up")
	require.True(t, ok)
	assert.True(t, viaAlias)
	assert.Equal(t, "pullups", canon)
	assert.Equal(t, "gymnastics", entry.Category)

	_, _, ok, viaAlias = c.Lookup("wall_balls")
	require.True(t, ok)
	assert.False(t, viaAlias)

	_, _, ok, _ = c.Lookup("nonexistent_movement")
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	c := mustCatalog(t)
	assert.Equal(t, "pullups", c.Suggest("pullup"))
	assert.Equal(t, "", c.Suggest("completely_unrelated"))
}

func TestDefaultLoad(t *testing.T) {
	c := mustCatalog(t)

	load, ok := c.DefaultLoad("wb", "RX", "female")
	require.True(t, ok)
	assert.Equal(t, "6kg", load)

	_, ok = c.DefaultLoad("wall_balls", "INTERMEDIATE", "male")
	assert.False(t, ok)

	_, ok = c.DefaultLoad("pullups", "RX", "male")
	assert.False(t, ok)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte(`["not", "an", "object"]`))
	assert.Error(t, err)
}
