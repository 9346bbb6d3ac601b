package spacetime

import (
	"fmt"
	"math"
)

// Epsilon is the absolute tolerance used for every floating-point comparison in
// this package: null classification, parallel detection, coincidence and
// event closeness.
const Epsilon = 1e-9

// DefaultLightSpeed is the invariant speed in natural units.
const DefaultLightSpeed = 1.0

// Event is a point in spacetime.
//
// Label is diagnostic only and never participates in comparisons.
type Event struct {
	T     float64 `json:"t" yaml:"t" toml:"t"`
	X     float64 `json:"x" yaml:"x" toml:"x"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// NewEvent creates an unlabelled event.
func NewEvent(t, x float64) Event {
	return Event{T: t, X: x}
}

// WithLabel returns a copy of e carrying label.
func (e Event) WithLabel(label string) Event {
	e.Label = label
	return e
}

// ApproxEqual reports whether e and other lie within Epsilon of each other in
// both coordinates.
func (e Event) ApproxEqual(other Event) bool {
	return math.Abs(e.T-other.T) <= Epsilon && math.Abs(e.X-other.X) <= Epsilon
}

// IsFinite reports whether both coordinates are finite numbers.
func (e Event) IsFinite() bool {
	return isFinite(e.T) && isFinite(e.X)
}

// String renders the event as "label(t=.., x=..)".
func (e Event) String() string {
	if e.Label != "" {
		return fmt.Sprintf("%s(t=%g, x=%g)", e.Label, e.T, e.X)
	}
	return fmt.Sprintf("(t=%g, x=%g)", e.T, e.X)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
