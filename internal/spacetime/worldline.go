package spacetime

import (
	"fmt"
	"math"
)

// WorldLine is an inertial trajectory: x(t) = X0 + V*(t - T0), valid for all t.
//
// V is not bounded. |V| > c is physically meaningless but accepted; callers
// that care use IsSuperluminal.
type WorldLine struct {
	X0    float64 `json:"x0" yaml:"x0" toml:"x0"`
	V     float64 `json:"v" yaml:"v" toml:"v"`
	T0    float64 `json:"t0,omitempty" yaml:"t0,omitempty" toml:"t0,omitempty"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// NewWorldLine creates a world line through (T0=0, x0) with velocity v.
func NewWorldLine(x0, v float64) WorldLine {
	return WorldLine{X0: x0, V: v}
}

// Rest creates a stationary world line at x.
func Rest(x float64) WorldLine {
	return WorldLine{X0: x}
}

// Position returns the spatial coordinate at time t.
func (w WorldLine) Position(t float64) float64 {
	return w.X0 + w.V*(t-w.T0)
}

// PositionAt returns the event on the world line at time t, labelled with the
// world line's own label.
func (w WorldLine) PositionAt(t float64) Event {
	return Event{T: t, X: w.Position(t), Label: w.Label}
}

// EventAt is PositionAt with an explicit label. An empty label falls back to
// the world line's label.
func (w WorldLine) EventAt(t float64, label string) Event {
	if label == "" {
		label = w.Label
	}
	return Event{T: t, X: w.Position(t), Label: label}
}

// Intercept is the position at t = 0.
func (w WorldLine) Intercept() float64 {
	return w.X0 - w.V*w.T0
}

// IsSuperluminal reports whether |V| exceeds c by more than Epsilon.
func (w WorldLine) IsSuperluminal(c float64) bool {
	return math.Abs(w.V) > c+Epsilon
}

// Validate rejects non-finite parameters.
func (w WorldLine) Validate() error {
	if !isFinite(w.X0) || !isFinite(w.V) || !isFinite(w.T0) {
		return NewInvalidConfigError(CodeNonFinite, "world_line",
			fmt.Sprintf("world line %q has non-finite parameters (x0=%v, v=%v, t0=%v)", w.Label, w.X0, w.V, w.T0))
	}
	return nil
}

// IntersectionLabel labels the meeting event of a Crossing.
const IntersectionLabel = "interaction"

// Intersect solves X0a + Va(t-T0a) = X0b + Vb(t-T0b). A Crossing event is
// labelled IntersectionLabel.
//
// Velocities within Epsilon are parallel; parallel lines whose intercepts are
// within Epsilon are coincident.
func (w WorldLine) Intersect(other WorldLine) Intersection {
	dv := w.V - other.V
	if math.Abs(dv) <= Epsilon {
		if math.Abs(w.Intercept()-other.Intercept()) <= Epsilon {
			return Intersection{Kind: Coincident}
		}
		return Intersection{Kind: Parallel}
	}

	t := (other.Intercept() - w.Intercept()) / dv
	return Intersection{
		Kind:  Crossing,
		Event: Event{T: t, X: w.Position(t), Label: IntersectionLabel},
	}
}

// String renders the world line as "label[x(t)=x0+v(t-t0)]".
func (w WorldLine) String() string {
	return fmt.Sprintf("%s[x(t)=%g%+g(t-%g)]", w.Label, w.X0, w.V, w.T0)
}

// IntersectionKind tags the three possible results of intersecting two
// world lines.
type IntersectionKind int

const (
	// Crossing means the lines meet at exactly one event.
	Crossing IntersectionKind = iota + 1

	// Parallel means the lines never meet.
	Parallel

	// Coincident means the lines are the same trajectory and meet everywhere.
	Coincident
)

// String implements fmt.Stringer.
func (k IntersectionKind) String() string {
	switch k {
	case Crossing:
		return "crossing"
	case Parallel:
		return "parallel"
	case Coincident:
		return "coincident"
	default:
		return fmt.Sprintf("IntersectionKind(%d)", int(k))
	}
}

// Intersection is the result of WorldLine.Intersect. Event is only meaningful
// when Kind is Crossing.
type Intersection struct {
	Kind  IntersectionKind
	Event Event
}

// Point returns the meeting event and true for a Crossing, or the zero Event
// and false otherwise.
func (i Intersection) Point() (Event, bool) {
	if i.Kind != Crossing {
		return Event{}, false
	}
	return i.Event, true
}
