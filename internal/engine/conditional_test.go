package engine

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minkowski/internal/spacetime"
)

func quietStepper(opts ...StepperOption) *Stepper {
	base := []StepperOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunIDs(NewFixedGenerator("test-run")),
	}
	return New(append(base, opts...)...)
}

func approachingPair() []spacetime.WorldLine {
	return []spacetime.WorldLine{
		{X0: -1, V: 1, Label: "a"},
		{X0: 1, V: -1, Label: "b"},
	}
}

func separationBelow(limit float64) Predicate {
	return func(_ float64, events []spacetime.Event) bool {
		return math.Abs(events[0].X-events[1].X) < limit
	}
}

func TestConditional_IncludesMeetingStep(t *testing.T) {
	samples, err := quietStepper().Conditional(approachingPair(), NewGrid(0, 2, 0.1), separationBelow(0.2))
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	found := false
	for _, s := range samples {
		if math.Abs(s.T-1.0) <= spacetime.Epsilon {
			found = true
			assert.Equal(t, 10, s.Step)
			assert.InDelta(t, 0.0, s.Events[0].X, 1e-9)
			assert.InDelta(t, 0.0, s.Events[1].X, 1e-9)
		}
	}
	assert.True(t, found, "t=1.0 must be recorded")

	times := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.T
	}
	assert.True(t, slices.IsSorted(times), "samples must be ordered by t: %v", times)
}

func TestConditional_CoarseGridMatchesExactlyOneStep(t *testing.T) {
	pred := func(_ float64, events []spacetime.Event) bool {
		return math.Abs(events[0].X-events[1].X) <= 0.5
	}

	samples, err := quietStepper().Conditional(approachingPair(), NewGrid(0, 2, 0.5), pred)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].T)
	assert.Equal(t, 2, samples[0].Step)
}

func TestConditional_PredicateSeesEventsInInputOrder(t *testing.T) {
	var calls []float64
	pred := func(tm float64, events []spacetime.Event) bool {
		calls = append(calls, tm)
		require.Len(t, events, 2)
		assert.Equal(t, "a", events[0].Label)
		assert.Equal(t, "b", events[1].Label)
		assert.Equal(t, tm, events[0].T)
		return false
	}

	samples, err := quietStepper().Conditional(approachingPair(), NewGrid(0, 1, 0.25), pred)
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, calls)
}

func TestConditional_Restartable(t *testing.T) {
	s := quietStepper()
	grid := NewGrid(0, 2, 0.1)

	first, err := s.Conditional(approachingPair(), grid, separationBelow(0.5))
	require.NoError(t, err)
	second, err := s.Conditional(approachingPair(), grid, separationBelow(0.5))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConditionalSeq_StopsEarly(t *testing.T) {
	calls := 0
	pred := func(float64, []spacetime.Event) bool {
		calls++
		return true
	}

	seq, err := quietStepper().ConditionalSeq(approachingPair(), NewGrid(0, 100, 1), pred)
	require.NoError(t, err)

	var got []Sample
	for s := range seq {
		got = append(got, s)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
	assert.Equal(t, 2, calls)
}

func TestConditionalSeq_IsolatedFromCallerMutation(t *testing.T) {
	lines := approachingPair()
	seq, err := quietStepper().ConditionalSeq(lines, NewGrid(0, 0, 1), func(float64, []spacetime.Event) bool { return true })
	require.NoError(t, err)

	lines[0].X0 = 100

	for s := range seq {
		assert.Equal(t, -1.0, s.Events[0].X)
	}
}

func TestConditional_NoWorldLines(t *testing.T) {
	samples, err := quietStepper().Conditional(nil, NewGrid(0, 1, 0.5), func(_ float64, events []spacetime.Event) bool {
		return len(events) == 0
	})
	require.NoError(t, err)
	assert.Len(t, samples, 3)
	assert.Equal(t, spacetime.Event{T: 0.5, X: 0, Label: DefaultConditionalLabel}, samples[1].Centroid(""))
}

func TestConditional_InvalidConfigurationFailsBeforeCallbacks(t *testing.T) {
	called := false
	pred := func(float64, []spacetime.Event) bool {
		called = true
		return true
	}
	s := quietStepper()

	_, err := s.Conditional(approachingPair(), NewGrid(0, 1, 0), pred)
	assert.Equal(t, spacetime.CodeInvalidStep, spacetime.InvalidConfigCodeOf(err))

	_, err = s.Conditional(approachingPair(), NewGrid(0, 1, -0.1), pred)
	assert.Equal(t, spacetime.CodeInvalidRange, spacetime.InvalidConfigCodeOf(err))

	_, err = s.Conditional(approachingPair(), NewGrid(0, 1, 0.1), nil)
	assert.Equal(t, spacetime.CodeInvalidPredicate, spacetime.InvalidConfigCodeOf(err))

	_, err = s.Conditional([]spacetime.WorldLine{{X0: math.NaN()}}, NewGrid(0, 1, 0.1), pred)
	assert.Equal(t, spacetime.CodeNonFinite, spacetime.InvalidConfigCodeOf(err))

	assert.False(t, called)
}

func TestConditional_MaxStepsQuota(t *testing.T) {
	s := quietStepper(WithMaxSteps(10))
	_, err := s.Conditional(approachingPair(), NewGrid(0, 100, 1), separationBelow(1))
	assert.Equal(t, spacetime.CodeInvalidStep, spacetime.InvalidConfigCodeOf(err))

	s = quietStepper(WithMaxSteps(0))
	samples, err := s.Conditional(approachingPair(), NewGrid(0, 100, 1), separationBelow(1))
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestConditional_UnrepresentableGridRejectedWithoutQuota(t *testing.T) {
	s := quietStepper(WithMaxSteps(0))
	called := false
	pred := func(float64, []spacetime.Event) bool {
		called = true
		return true
	}

	for _, grid := range []Grid{NewGrid(0, 1e300, 1e-300), NewGrid(0, 1e12, 1)} {
		samples, err := s.Conditional(approachingPair(), grid, pred)
		require.Error(t, err)
		assert.Equal(t, spacetime.CodeInvalidStep, spacetime.InvalidConfigCodeOf(err))
		assert.Empty(t, samples)
	}
	assert.False(t, called)
}

func TestSample_Centroid(t *testing.T) {
	sample := Sample{
		Step: 3,
		T:    1.5,
		Events: []spacetime.Event{
			spacetime.NewEvent(1.5, -3),
			spacetime.NewEvent(1.5, 1),
		},
	}

	c := sample.Centroid("close-approach")
	assert.Equal(t, 1.5, c.T)
	assert.Equal(t, -1.0, c.X)
	assert.Equal(t, "close-approach", c.Label)

	centroids := Centroids([]Sample{sample}, "")
	require.Len(t, centroids, 1)
	assert.Equal(t, DefaultConditionalLabel, centroids[0].Label)
}

func TestConditional_LogsRunSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(WithLogger(logger), WithRunIDs(NewFixedGenerator("run-42")))

	lines := append(approachingPair(), spacetime.WorldLine{X0: 0, V: 2, Label: "tachyon"})
	_, err := s.Conditional(lines, NewGrid(0, 2, 0.5), func(float64, []spacetime.Event) bool { return false })
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "superluminal world line")
	assert.Contains(t, out, "label=tachyon")
	assert.Contains(t, out, "conditional simulation finished")
	assert.Contains(t, out, "run_id=run-42")
	assert.Contains(t, out, "steps=5")
	assert.Contains(t, out, "matches=0")
}

func TestConditionalSimulation_PackageLevel(t *testing.T) {
	samples, err := ConditionalSimulation(approachingPair(), 0, 2, 0.5, separationBelow(0.1))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].T)

	_, err = ConditionalSimulation(approachingPair(), 0, 2, 0, separationBelow(0.1))
	assert.True(t, spacetime.IsInvalidConfig(err))
}
