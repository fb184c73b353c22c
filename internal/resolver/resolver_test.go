package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockA = `
module wod.block.a @v1 {
  wod AMRAP 7:00 {
    10 Push_up
    15 Air_squat
  }
}
`

func TestParseRef(t *testing.T) {
	testCases := []struct {
		raw     string
		want    Ref
		wantErr bool
	}{
		{raw: "wod.block.a@v1", want: Ref{Name: "wod.block.a", Version: "v1"}},
		{raw: "strength.squat@v2.1", want: Ref{Name: "strength.squat", Version: "v2.1"}},
		{raw: "noversion", wantErr: true},
		{raw: "bad version@1", wantErr: true},
		{raw: "a@v1@v2", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseRef(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.raw, got.String())
		})
	}
}

func TestResolveCachesPerRun(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.RegisterSource(blockA))

	r := New(mem)
	first, err := r.Resolve(context.Background(), "wod.block.a@v1")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "wod.block.a@v1")
	require.NoError(t, err)

	// Same run, same parsed value.
	assert.Same(t, first, second)
}

func TestResolveNotFound(t *testing.T) {
	r := New(NewMemory())
	_, err := r.Resolve(context.Background(), "wod.block.missing@v1")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, NotFound, resErr.Kind)
	assert.Equal(t, "wod.block.missing@v1", resErr.Ref)
}

func TestResolveAmbiguousVersion(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.RegisterSource(blockA))
	require.NoError(t, mem.RegisterSource(blockA))

	_, err := New(mem).Resolve(context.Background(), "wod.block.a@v1")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, AmbiguousVersion, resErr.Kind)
}

func TestResolveMalformedRef(t *testing.T) {
	_, err := New(NewMemory()).Resolve(context.Background(), "not a ref")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ParseFailed, resErr.Kind)
}

func TestInFlightStackDetectsCycles(t *testing.T) {
	r := New(NewMemory())
	require.NoError(t, r.Enter("a.a@v1"))
	require.NoError(t, r.Enter("b.b@v1"))

	err := r.Enter("a.a@v1")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a.a@v1", "b.b@v1", "a.a@v1"}, cycle.Stack)

	// The rejected push leaves the stack intact.
	assert.Equal(t, []string{"a.a@v1", "b.b@v1"}, r.Active())

	r.Exit()
	r.Exit()
	assert.Empty(t, r.Active())
	require.NoError(t, r.Enter("a.a@v1"))
}

func TestChainFallsThroughOnNotFound(t *testing.T) {
	primary := NewMemory()
	fallback := NewMemory()
	require.NoError(t, fallback.RegisterSource(blockA))

	r := New(Chain(primary, fallback))
	m, err := r.Resolve(context.Background(), "wod.block.a@v1")
	require.NoError(t, err)
	assert.Equal(t, "wod.block.a@v1", m.Ref())

	_, err = r.Resolve(context.Background(), "wod.block.other@v1")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, NotFound, resErr.Kind)
}

func TestChainStopsOnAmbiguity(t *testing.T) {
	primary := NewMemory()
	require.NoError(t, primary.RegisterSource(blockA))
	require.NoError(t, primary.RegisterSource(blockA))
	fallback := NewMemory()
	require.NoError(t, fallback.RegisterSource(blockA))

	_, err := New(Chain(primary, fallback)).Resolve(context.Background(), "wod.block.a@v1")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, AmbiguousVersion, resErr.Kind)
}

func TestFSStrategyIndexesSearchPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocks.wod"), []byte(blockA), 0o644))

	r := New(NewFS(dir, filepath.Join(dir, "does-not-exist")))
	m, err := r.Resolve(context.Background(), "wod.block.a@v1")
	require.NoError(t, err)
	assert.Equal(t, "wod.block.a@v1", m.Ref())
	require.Len(t, m.Components, 1)
	assert.Equal(t, "AMRAP", m.Components[0].Form.Name)
}

func TestFSStrategySurfacesParseFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.wod"), []byte("module broken {"), 0o644))

	_, err := New(NewFS(dir)).Resolve(context.Background(), "wod.block.a@v1")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ParseFailed, resErr.Kind)
	assert.True(t, errors.Unwrap(resErr) != nil)
}
