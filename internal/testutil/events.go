package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minkowski/internal/spacetime"
)

// AssertEventNear asserts both coordinates are within spacetime.Epsilon.
func AssertEventNear(t testing.TB, want, got spacetime.Event) bool {
	t.Helper()
	ok := assert.InDelta(t, want.T, got.T, spacetime.Epsilon, "t of %s", got)
	return assert.InDelta(t, want.X, got.X, spacetime.Epsilon, "x of %s", got) && ok
}

// RequireEventsNear requires equal lengths and pairwise closeness.
func RequireEventsNear(t testing.TB, want, got []spacetime.Event) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if !AssertEventNear(t, want[i], got[i]) {
			t.FailNow()
		}
	}
}

// Times extracts the t coordinate of each event.
func Times(events []spacetime.Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.T
	}
	return out
}
