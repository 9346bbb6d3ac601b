package engine

import (
	"fmt"
	"iter"
	"math"

	"github.com/roach88/minkowski/internal/spacetime"
)

// Boundary controls whether the end time is part of the grid.
type Boundary string

const (
	// Inclusive grids include t_end when it falls on a step (within tolerance).
	Inclusive Boundary = "inclusive"

	// Exclusive grids stop strictly before t_end.
	Exclusive Boundary = "exclusive"
)

// ParseBoundary converts a string into a Boundary. Empty means Inclusive.
func ParseBoundary(s string) (Boundary, error) {
	switch Boundary(s) {
	case "", Inclusive:
		return Inclusive, nil
	case Exclusive:
		return Exclusive, nil
	default:
		return "", fmt.Errorf("unknown boundary %q: must be %q or %q", s, Inclusive, Exclusive)
	}
}

// gridTolerance absorbs rounding in (end-start)/step, measured in steps.
const gridTolerance = 1e-9

// DefaultMaxSteps bounds the number of grid points a single run may visit.
const DefaultMaxSteps = 10_000_000

// hardMaxSteps is the largest step count Len can represent. It applies even
// when the step quota is disabled.
const hardMaxSteps = float64(math.MaxInt32)

// Grid is the time grid t_i = Start + i*Step.
//
// Step may be negative to walk backwards in time, provided End < Start.
type Grid struct {
	Start    float64  `json:"start" yaml:"start" toml:"start"`
	End      float64  `json:"end" yaml:"end" toml:"end"`
	Step     float64  `json:"step" yaml:"step" toml:"step"`
	Boundary Boundary `json:"boundary,omitempty" yaml:"boundary,omitempty" toml:"boundary,omitempty"`
}

// NewGrid creates a grid with no boundary set. An unset boundary walks as
// Inclusive unless a caller such as a scenario supplies its own default.
func NewGrid(start, end, step float64) Grid {
	return Grid{Start: start, End: end, Step: step}
}

// WithBoundary returns a copy of g using boundary b.
func (g Grid) WithBoundary(b Boundary) Grid {
	g.Boundary = b
	return g
}

// Validate checks the grid can be walked in a finite number of steps.
func (g Grid) Validate() error {
	return g.validate(DefaultMaxSteps)
}

func (g Grid) validate(maxSteps int) error {
	if math.IsNaN(g.Start) || math.IsInf(g.Start, 0) ||
		math.IsNaN(g.End) || math.IsInf(g.End, 0) ||
		math.IsNaN(g.Step) || math.IsInf(g.Step, 0) {
		return spacetime.NewInvalidConfigError(spacetime.CodeNonFinite, "grid",
			fmt.Sprintf("grid bounds must be finite (start=%v, end=%v, step=%v)", g.Start, g.End, g.Step))
	}
	if g.Step == 0 {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidStep, "dt", "dt must be non-zero")
	}
	if _, err := ParseBoundary(string(g.Boundary)); err != nil {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidRange, "boundary", err.Error())
	}

	q := (g.End - g.Start) / g.Step
	if q < -gridTolerance {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidRange, "dt",
			fmt.Sprintf("dt=%v points away from t_end=%v (t_start=%v)", g.Step, g.End, g.Start))
	}
	if q >= hardMaxSteps {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidStep, "dt",
			fmt.Sprintf("grid step count %v is not representable (dt=%v over [%v, %v])", q, g.Step, g.Start, g.End))
	}
	if maxSteps > 0 && q >= float64(maxSteps) {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidStep, "dt",
			fmt.Sprintf("grid needs more than %d steps (dt=%v over [%v, %v])", maxSteps, g.Step, g.Start, g.End))
	}
	return nil
}

// Len returns the number of grid points. The grid must be valid.
//
// Inclusive: i = 0 .. floor((end-start)/step). Exclusive: every i with
// t_i strictly before end.
func (g Grid) Len() int {
	q := (g.End - g.Start) / g.Step
	if g.Boundary == Exclusive {
		n := int(math.Ceil(q - gridTolerance))
		if n < 0 {
			return 0
		}
		return n
	}
	n := int(math.Floor(q+gridTolerance)) + 1
	if n < 0 {
		return 0
	}
	return n
}

// At returns t_i.
func (g Grid) At(i int) float64 {
	return g.Start + float64(i)*g.Step
}

// All yields (i, t_i) in grid order. The grid must be valid.
func (g Grid) All() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		n := g.Len()
		for i := 0; i < n; i++ {
			if !yield(i, g.At(i)) {
				return
			}
		}
	}
}

// Times returns every grid time. The grid must be valid.
func (g Grid) Times() []float64 {
	times := make([]float64, 0, g.Len())
	for _, t := range g.All() {
		times = append(times, t)
	}
	return times
}
