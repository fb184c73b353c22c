package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wodc/internal/ast"
	"github.com/vk/wodc/internal/parser"
)

func body(t *testing.T, src string) (*ast.Form, []ast.Stmt) {
	t.Helper()
	file, err := parser.Parse(src)
	require.NoError(t, err)
	c := file.Modules[0].Components[0]
	return c.Form, c.Stmts
}

func TestLineSeconds(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want float64
	}{
		{name: "reps", line: "10 Push_up", want: 20},
		{name: "calories", line: "15 cal Row", want: 45},
		{name: "meters", line: "400m Run", want: 100},
		{name: "kilometers", line: "1km Run", want: 250},
		{name: "hold", line: "0:45 Plank_hold", want: 45},
		{name: "scheme sums its rounds", line: "Thruster 21-15-9", want: 90},
		{name: "dual uses the faster side", line: "15/12 cal Row", want: 36},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stmts := body(t, "module p.x @v1 {\n  wod ForTime {\n    "+tc.line+"\n  }\n}\n")
			m := stmts[0].(*ast.Movement)
			assert.Equal(t, tc.want, LineSeconds(m))
		})
	}
}

func TestBlockSecondsSumsLinesAndTransitions(t *testing.T) {
	form, stmts := body(t, `
module p.fran @v1 {
  wod ForTime {
    Thruster 21-15-9
    Pull_up 21-15-9
  }
}
`)
	// 90 reps at the 2s floor plus one 3s transition between the lines.
	assert.Equal(t, 183, BlockSeconds(form, stmts))
}

func TestBlockSecondsMultipliesRFTRounds(t *testing.T) {
	form, stmts := body(t, `
module p.rft @v1 {
  wod RFT 3 {
    10 Push_up
    200m Run
  }
}
`)
	// (20 + 50 + 3) per round, three rounds.
	assert.Equal(t, 219, BlockSeconds(form, stmts))
}

func TestBlockSecondsCountsRest(t *testing.T) {
	form, stmts := body(t, `
module p.rest @v1 {
  wod ForTime {
    10 Push_up
    REST 1:00
  }
}
`)
	// REST counts its declared duration and is not a line transition.
	assert.Equal(t, 80, BlockSeconds(form, stmts))
}
