package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wodc/internal/cli"
)

const librarySrc = `
module wod.block.a @v1 {
  wod AMRAP 7:00 {
    10 Push_up
    15 Air_squat
  }
}
`

const sessionSrc = `
session "Monday" {
  components {
    a import wod.block.a@v1
  }
  scoring {
    a: rounds+reps
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, invoke *cli.Config) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	err := New(&out, &logs, invoke).Run(context.Background())
	return out.String(), err
}

func TestCompileCommandResolvesFromSearchPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "library.wod", librarySrc)
	sessionPath := writeFile(t, dir, "monday.wod", sessionSrc)

	out, err := run(t, &cli.Config{Command: "compile", Path: sessionPath, SearchPaths: []string{dir}})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Monday", doc["title"])
}

func TestCompileCommandPrefersLocalModules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.wod", librarySrc+sessionSrc)

	out, err := run(t, &cli.Config{Command: "compile", Path: path, SearchPaths: []string{dir}})
	require.NoError(t, err)
	assert.Contains(t, out, `"wod.block.a@v1"`)
}

const secondSessionSrc = `
session "Tuesday" {
  components {
    a import wod.block.a@v1
  }
}
`

func TestCompileCommandSelectsSessionByTitle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "week.wod", librarySrc+sessionSrc+secondSessionSrc)

	out, err := run(t, &cli.Config{Command: "compile", Path: path, Session: "Tuesday"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Tuesday", doc["title"])

	_, err = run(t, &cli.Config{Command: "compile", Path: path, Session: "Friday"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, `"Friday"`)
	assert.Contains(t, exitErr.Message, `"Monday"`)
}

func TestCompileCommandWarnsOnMultipleSessions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "week.wod", librarySrc+sessionSrc+secondSessionSrc)

	var out, logs bytes.Buffer
	err := New(&out, &logs, &cli.Config{Command: "compile", Path: path}).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"title": "Monday"`)
	assert.Contains(t, logs.String(), "several sessions")
}

func TestCompileCommandUsesConfiguredDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.wod", `
module wod.dual @v1 {
  wod ForTime cap 10:00 {
    21 Thruster @43kg/30kg
  }
}

session "Duals" {
  components {
    a import wod.dual@v1
  }
}
`)
	cfgPath := writeFile(t, dir, "wodc.yaml", "defaults:\n  gender: female\n")

	out, err := run(t, &cli.Config{Command: "compile", Path: path, ConfigPath: cfgPath})
	require.NoError(t, err)
	assert.Contains(t, out, `"gender": "female"`)
	assert.Contains(t, out, `"kind": "single"`)
	assert.Contains(t, out, `"value": 30`)
}

func TestFmtCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "messy.wod", "module a.b @v1 {\n\n\n  wod   AMRAP 7:00 {\n    10   Push_up\n  }\n}\n")

	out, err := run(t, &cli.Config{Command: "fmt", Path: path})
	require.NoError(t, err)
	assert.Contains(t, out, "module a.b @v1 {")
	assert.Contains(t, out, "  wod AMRAP 7:00 {")
}

func TestLintCommandExitsNonZeroOnErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.wod", "module a.b @v1 {\n  wod ForTime {\n    10 Push_up\n    REST 0:00\n  }\n}\n")

	out, err := run(t, &cli.Config{Command: "lint", Path: path})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, out, "E010")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.wod", librarySrc+sessionSrc)

	out, err := run(t, &cli.Config{
		Command: "export", Path: path, SearchPaths: []string{dir},
		Start: "2026-03-02T17:00",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "DURATION:PT7M")
}

func TestRankCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.wod", librarySrc+sessionSrc)
	scores := writeFile(t, dir, "scores.json", `[
  {"athlete": "alex", "values": {"rounds": 6, "reps": 4}},
  {"athlete": "jo", "values": {"rounds": 7, "reps": 0}}
]`)

	out, err := run(t, &cli.Config{Command: "rank", Path: path, ScoresPath: scores, Alias: "a"})
	require.NoError(t, err)
	assert.Contains(t, out, `"athlete": "jo"`)
}
