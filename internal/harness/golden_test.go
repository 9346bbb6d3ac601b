package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

func ptr[T any](v T) *T { return &v }

func goldenBasics() *Scenario {
	return &Scenario{
		Name:        "golden_basics",
		Description: "One query of every kind",
		Events: []spacetime.Event{
			{Label: "origin", T: 0, X: 0},
			{Label: "far", T: 1, X: 2},
		},
		WorldLines: []spacetime.WorldLine{
			{Label: "a", X0: -1, V: 1},
			{Label: "b", X0: 1, V: -1},
		},
		Queries: []Query{
			{Name: "separation", Op: OpClassify, From: "origin", To: "far"},
			{Name: "meeting", Op: OpIntersect, Lines: []string{"a", "b"}},
			{Name: "photon", Op: OpLightRest, From: "origin", RestX: ptr(5.0), Direction: ptr(1)},
			{
				Name:  "rendezvous",
				Op:    OpConditional,
				Lines: []string{"a", "b"},
				Grid:  ptr(engine.NewGrid(0, 2, 0.5)),
				When:  &Condition{Type: ConditionSeparationBelow, Value: 0.5},
			},
			{
				Name:        "emission",
				Op:          OpSpontaneous,
				Lines:       []string{"a"},
				Grid:        ptr(engine.NewGrid(0, 1, 0.5)),
				Probability: ptr(1.0),
			},
			{
				Name:        "broken",
				Op:          OpSpontaneous,
				Lines:       []string{"a"},
				Grid:        ptr(engine.NewGrid(0, 1, 0.5)),
				Probability: ptr(2.0),
				Expect:      &Expectation{Error: string(spacetime.CodeInvalidProbability)},
			},
		},
	}
}

func TestRunWithGolden_Basics(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Basics -update
	err := RunWithGolden(t, goldenBasics())
	require.NoError(t, err)
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario := goldenBasics()
	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	err = AssertGolden(t, scenario.Name, result)
	require.NoError(t, err)
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	first, err := Run(goldenBasics())
	require.NoError(t, err)
	second, err := Run(goldenBasics())
	require.NoError(t, err)

	a, err := MarshalTrace("golden_basics", first)
	require.NoError(t, err)
	b, err := MarshalTrace("golden_basics", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalTrace_OmitsEmptyError(t *testing.T) {
	result := NewResult()
	result.Record(TraceEvent{Query: "q", Op: OpIntersect, Outcome: "parallel"})

	data, err := MarshalTrace("s", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"s","trace":[{"events":[],"op":"intersect","outcome":"parallel","query":"q","seq":1}]}`,
		string(data))
}
