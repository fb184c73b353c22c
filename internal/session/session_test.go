package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/catalog"
	"github.com/vk/wodc/internal/parser"
	"github.com/vk/wodc/internal/resolver"
	"github.com/vk/wodc/internal/value"
)

const blockModule = `
module wod.block.a @v1 {
  vars {
    duration: Duration = 12:00 [min=300, max=1200]
    reps: Int = 10 [min=1, max=50]
  }
  wod AMRAP $duration {
    $reps Push_up
    15 Air_squat
  }
}
`

func newRun(t *testing.T, modules ...string) *resolver.Resolver {
	t.Helper()
	mem := resolver.NewMemory()
	for _, m := range modules {
		require.NoError(t, mem.RegisterSource(m))
	}
	return resolver.New(mem)
}

func parseSessions(t *testing.T, src string) []*ast.Session {
	t.Helper()
	file, err := parser.Parse(src)
	require.NoError(t, err)
	require.NotEmpty(t, file.Sessions)
	return file.Sessions
}

func requireKind(t *testing.T, err error, kind ErrorKind) *CompositionError {
	t.Helper()
	var ce *CompositionError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, kind, ce.Kind)
	return ce
}

func TestCompileAppliesOverridesInOrder(t *testing.T) {
	sess := parseSessions(t, `
session "Monday" {
  components {
    a import wod.block.a@v1 override {
      duration = 7:00
      reps = 21
    }
  }
  scoring {
    a: rounds+reps
  }
  meta {
    coach = "Dana"
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	require.NoError(t, err)

	require.Len(t, out.Components, 1)
	cc := out.Components[0]
	assert.Equal(t, "a", cc.Alias)
	assert.Equal(t, "wod.block.a@v1", cc.Ref)
	assert.Equal(t, "AMRAP", cc.ScoreType)
	assert.Equal(t, 420, cc.DurationSeconds)

	require.Len(t, cc.Blocks, 1)
	first := cc.Blocks[0].Stmts[0].(*ast.Movement)
	assert.Equal(t, 21.0, first.Quantity.Value)

	require.Len(t, out.Scoring, 1)
	assert.Equal(t, ScoringSpec{Alias: "a", Type: "AMRAP", Fields: []string{"rounds", "reps"}}, out.Scoring[0])
	assert.Equal(t, "Dana", out.Meta["coach"])
}

func TestCompileNeverMutatesResolvedModules(t *testing.T) {
	sessions := parseSessions(t, `
session "With override" {
  components {
    a import wod.block.a@v1 override { reps = 21 }
  }
}
session "Defaults" {
  components {
    a import wod.block.a@v1
  }
}
`)
	run := newRun(t, blockModule)

	first, err := Compile(context.Background(), sessions[0], run, Options{})
	require.NoError(t, err)
	second, err := Compile(context.Background(), sessions[1], run, Options{})
	require.NoError(t, err)

	// Both compilations see the same cached module; the override from the
	// first run must not leak into the second.
	assert.Equal(t, 21.0, first.Components[0].Blocks[0].Stmts[0].(*ast.Movement).Quantity.Value)
	assert.Equal(t, 10.0, second.Components[0].Blocks[0].Stmts[0].(*ast.Movement).Quantity.Value)
	assert.Equal(t, 720, second.Components[0].DurationSeconds)
}

func TestCompileResolvesDualValuesForGender(t *testing.T) {
	mod := `
module wod.dual @v1 {
  wod AMRAP 10:00 {
    21 Thruster @43kg/30kg
    15/12 cal Row
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.dual@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, mod), Options{Gender: value.Female})
	require.NoError(t, err)
	assert.Equal(t, "female", out.Gender)
	assert.Equal(t, "RX", out.Track)

	stmts := out.Components[0].Blocks[0].Stmts
	thruster := stmts[0].(*ast.Movement)
	require.NotNil(t, thruster.Load)
	assert.Equal(t, value.LoadSingle, thruster.Load.Kind)
	assert.Equal(t, value.Scalar{Value: 30, Unit: value.UnitKg}, thruster.Load.Value)

	row := stmts[1].(*ast.Movement)
	assert.False(t, row.Quantity.Dual)
	assert.Equal(t, 12.0, row.Quantity.Value)

	// Without options the male side and the RX track are picked.
	out, err = Compile(context.Background(), sess, newRun(t, mod), Options{})
	require.NoError(t, err)
	assert.Equal(t, "male", out.Gender)
	assert.Equal(t, 43.0, out.Components[0].Blocks[0].Stmts[0].(*ast.Movement).Load.Value.Value)
}

func TestCompileVariantLoadPinsTrack(t *testing.T) {
	mod := `
module wod.variant @v1 {
  wod ForTime cap 10:00 {
    Thruster 21-15-9 @{RX: 43kg, SCALED: 30kg}
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.variant@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, mod), Options{Track: value.TrackScaled})
	require.NoError(t, err)
	assert.Equal(t, "SCALED", out.Track)

	load := out.Components[0].Blocks[0].Stmts[0].(*ast.Movement).Load
	require.NotNil(t, load)
	assert.Equal(t, value.LoadSingle, load.Kind)
	assert.Equal(t, value.Scalar{Value: 30, Unit: value.UnitKg}, load.Value)
}

func TestCompileAppliesCatalogDefaultLoads(t *testing.T) {
	cat, err := catalog.FromJSON([]byte(`{
  "thruster": {
    "category": "weightlifting",
    "defaults": {"rx": {"male": "43kg", "female": "30kg"}}
  },
  "push_up": {"category": "gymnastics"}
}`))
	require.NoError(t, err)

	mod := `
module wod.defaults @v1 {
  wod AMRAP 10:00 {
    10 Thruster
    10 Push_up
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.defaults@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, mod), Options{Catalog: cat, Gender: value.Female})
	require.NoError(t, err)

	stmts := out.Components[0].Blocks[0].Stmts
	thruster := stmts[0].(*ast.Movement)
	require.NotNil(t, thruster.Load)
	assert.Equal(t, value.Scalar{Value: 30, Unit: value.UnitKg}, thruster.Load.Value)

	// No default declared, the movement stays loadless.
	assert.Nil(t, stmts[1].(*ast.Movement).Load)
}

func TestCompileRejectsDuplicateAlias(t *testing.T) {
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1
    a import wod.block.a@v1
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	ce := requireKind(t, err, DuplicateAlias)
	assert.Equal(t, "a", ce.Alias)
}

func TestCompileEstimatesOpenEndedDurations(t *testing.T) {
	fran := `
module wod.fran @v1 {
  wod ForTime {
    Thruster 21-15-9 @43/30kg
    Pull_up 21-15-9
  }
}
`
	rft := `
module wod.rft @v1 {
  wod RFT 3 {
    10 Push_up
    200m Run
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    f import wod.fran@v1
    r import wod.rft@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, fran, rft), Options{})
	require.NoError(t, err)

	// 90 reps at the 2s floor per line, one 3s transition.
	franBlock := out.Components[0].Blocks[0]
	assert.Zero(t, franBlock.DurationSeconds)
	assert.Equal(t, 183, franBlock.EstimatedSeconds)
	assert.Equal(t, 183, out.Components[0].EstimatedSeconds)

	// (20 + 50 + 3) per round, three rounds.
	assert.Equal(t, 219, out.Components[1].Blocks[0].EstimatedSeconds)
}

func TestCompileUnknownOverrideKey(t *testing.T) {
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1 override { durration = 7:00 }
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	ce := requireKind(t, err, UnknownOverrideKey)
	assert.Equal(t, "durration", ce.Key)
	assert.Contains(t, ce.Detail, `"duration"`)
}

func TestCompileOverrideTypeMismatch(t *testing.T) {
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1 override { reps = "lots" }
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	ce := requireKind(t, err, OverrideTypeMismatch)
	assert.Equal(t, "reps", ce.Key)
}

func TestCompileConstraintViolation(t *testing.T) {
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1 override { duration = 1:00 }
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	ce := requireKind(t, err, ConstraintViolation)
	assert.Contains(t, ce.Detail, "below min")
}

func TestCompileUnresolvedImport(t *testing.T) {
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.missing@v3
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
	ce := requireKind(t, err, UnresolvedImport)
	assert.Equal(t, "wod.block.missing@v3", ce.Ref)

	var resErr *resolver.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, resolver.NotFound, resErr.Kind)
}

func TestCompileScoringValidatesLast(t *testing.T) {
	t.Run("unknown alias", func(t *testing.T) {
		sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1
  }
  scoring {
    b: rounds
  }
}
`)[0]
		_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
		ce := requireKind(t, err, UnknownScoringAlias)
		assert.Equal(t, "b", ce.Alias)
	})

	t.Run("unknown field", func(t *testing.T) {
		sess := parseSessions(t, `
session "X" {
  components {
    a import wod.block.a@v1
  }
  scoring {
    a: rounds+splits
  }
}
`)[0]
		_, err := Compile(context.Background(), sess, newRun(t, blockModule), Options{})
		ce := requireKind(t, err, UnknownScoringField)
		assert.Equal(t, "splits", ce.Key)
		assert.Contains(t, ce.Detail, `"rounds"`)
	})
}

func TestCompileModuleImportsFlattenInOrder(t *testing.T) {
	warmup := `
module prep.general @v1 {
  warmup FLOW {
    10 Jumping_jacks
  }
}
`
	main := `
module wod.day @v1 {
  import prep.general@v1
  wod AMRAP 10:00 {
    10 Push_up
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    a import wod.day@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, warmup, main), Options{})
	require.NoError(t, err)

	cc := out.Components[0]
	require.Len(t, cc.Blocks, 2)
	assert.Equal(t, "warmup", cc.Blocks[0].Class)
	assert.Equal(t, "wod", cc.Blocks[1].Class)
	// The free-form warmup never scores; the wod does.
	assert.Equal(t, "AMRAP", cc.ScoreType)
	assert.Equal(t, 600, cc.DurationSeconds)
}

func TestCompileDetectsImportCycles(t *testing.T) {
	a := `
module cyc.a @v1 {
  import cyc.b@v1
  wod AMRAP 5:00 { 5 Burpee }
}
`
	b := `
module cyc.b @v1 {
  import cyc.a@v1
  wod AMRAP 5:00 { 5 Sit_up }
}
`
	c := `
module cyc.c @v1 {
  import cyc.a@v1
  wod AMRAP 5:00 { 5 Lunge }
}
`
	t.Run("two modules", func(t *testing.T) {
		sess := parseSessions(t, `
session "X" {
  components {
    a import cyc.a@v1
  }
}
`)[0]
		_, err := Compile(context.Background(), sess, newRun(t, a, b), Options{})
		ce := requireKind(t, err, ImportCycle)
		assert.Equal(t, []string{"cyc.a@v1", "cyc.b@v1", "cyc.a@v1"}, ce.Cycle)
	})

	t.Run("three modules", func(t *testing.T) {
		bToC := `
module cyc.b @v1 {
  import cyc.c@v1
  wod AMRAP 5:00 { 5 Sit_up }
}
`
		sess := parseSessions(t, `
session "X" {
  components {
    a import cyc.a@v1
  }
}
`)[0]
		_, err := Compile(context.Background(), sess, newRun(t, a, bToC, c), Options{})
		ce := requireKind(t, err, ImportCycle)
		assert.Equal(t, []string{"cyc.a@v1", "cyc.b@v1", "cyc.c@v1", "cyc.a@v1"}, ce.Cycle)
	})
}

func TestCompileLintGateBlocksErrors(t *testing.T) {
	bad := `
module bad.rest @v1 {
  wod ForTime {
    10 Push_up
    REST 0:00
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    a import bad.rest@v1
  }
}
`)[0]

	_, err := Compile(context.Background(), sess, newRun(t, bad), Options{})
	ce := requireKind(t, err, LintBlocked)
	require.NotEmpty(t, ce.Diagnostics)
	assert.Equal(t, "E010", ce.Diagnostics[0].Code)
}

func TestCompileIntervalAndCapDurations(t *testing.T) {
	mod := `
module cond.mix @v1 {
  wod TABATA 8*(0:20 on / 0:10 off) {
    Air_squat
  }
}
`
	capped := `
module cond.cap @v1 {
  wod ForTime cap 12:00 {
    21 Thruster @43/30kg
    21 Pull_up
  }
}
`
	sess := parseSessions(t, `
session "X" {
  components {
    t import cond.mix@v1
    f import cond.cap@v1
  }
}
`)[0]

	out, err := Compile(context.Background(), sess, newRun(t, mod, capped), Options{})
	require.NoError(t, err)
	assert.Equal(t, 240, out.Components[0].DurationSeconds)
	assert.Equal(t, 720, out.Components[1].DurationSeconds)
	// Declared durations leave no room for an estimate.
	assert.Zero(t, out.Components[1].EstimatedSeconds)
}
