package wodc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const library = `
module wod.block.a @v1 {
  vars {
    duration: Duration = 12:00 [min=300, max=1200]
  }
  wod AMRAP $duration {
    10 Push_up
    15 Air_squat
    10/8 cal Row
  }
}
`

const sessionSrc = `
session "Monday" {
  components {
    a import wod.block.a@v1 override { duration = 7:00 }
  }
  scoring {
    a: rounds+reps
  }
}
`

func TestEndToEndPipeline(t *testing.T) {
	res, err := MemoryResolver(library)
	require.NoError(t, err)

	compiled, err := CompileSession(context.Background(), sessionSrc, res, nil)
	require.NoError(t, err)
	assert.Equal(t, "Monday", compiled.Title)
	require.Len(t, compiled.Components, 1)
	assert.Equal(t, 420, compiled.Components[0].DurationSeconds)
	assert.Equal(t, "AMRAP", compiled.Components[0].ScoreType)

	raw, err := ExportJSON(compiled)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"wod.block.a@v1"`)

	ics, err := ExportICS(compiled, time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.Contains(t, string(ics), "DURATION:PT7M")

	agg := Rank([]Record{
		{Athlete: "alex", Values: map[string]float64{"rounds": 6, "reps": 4}},
		{Athlete: "jo", Values: map[string]float64{"rounds": 7, "reps": 0}},
	}, compiled.Scoring[0])
	assert.Equal(t, "jo", agg.Entries[0].Record.Athlete)
}

func TestValidateReportsSyntaxErrors(t *testing.T) {
	require.NoError(t, Validate(library))

	err := Validate("module broken {")
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.NotEmpty(t, synErr.Expected)
}

func TestFormatIsCanonical(t *testing.T) {
	file, err := Parse(library)
	require.NoError(t, err)

	formatted := Format(file)
	again, err := Parse(formatted)
	require.NoError(t, err)
	assert.Equal(t, formatted, Format(again))
}

func TestCompileSessionRequiresASession(t *testing.T) {
	res, err := MemoryResolver(library)
	require.NoError(t, err)
	_, err = CompileSession(context.Background(), library, res, nil)
	require.Error(t, err)
}

func TestCompositionErrorsSurfaceThroughFacade(t *testing.T) {
	res, err := MemoryResolver(library)
	require.NoError(t, err)

	_, err = CompileSession(context.Background(), `
session "X" {
  components {
    a import wod.block.a@v1 override { duration = 99:00 }
  }
}
`, res, nil)

	var ce *CompositionError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Detail, "above max")
}
