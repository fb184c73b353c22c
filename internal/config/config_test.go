package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "RX", cfg.Defaults.Track)
	assert.Equal(t, 20, cfg.Export.OpenEndedMinutes)
	assert.Equal(t, []string{"."}, cfg.Resolver.SearchPaths)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wodc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resolver:
  search_paths: [./library, ./archive]
catalog:
  path: ./movements.json
defaults:
  track: SCALED
  gender: female
export:
  open_ended_minutes: 15
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./library", "./archive"}, cfg.Resolver.SearchPaths)
	assert.Equal(t, "./movements.json", cfg.Catalog.Path)
	assert.Equal(t, "SCALED", cfg.Defaults.Track)
	assert.Equal(t, "female", cfg.Defaults.Gender)
	assert.Equal(t, 15, cfg.Export.OpenEndedMinutes)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("WODC_TRACK", "INTERMEDIATE")
	t.Setenv("WODC_SEARCH_PATHS", "/a:/b")
	t.Setenv("WODC_OPEN_ENDED_MINUTES", "25")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "INTERMEDIATE", cfg.Defaults.Track)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Resolver.SearchPaths)
	assert.Equal(t, 25, cfg.Export.OpenEndedMinutes)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("WODC_GENDER", "other")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaults.gender")
}
