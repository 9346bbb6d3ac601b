package spacetime

import "fmt"

// Direction is the spatial direction of a light ray.
type Direction int

const (
	// Leftward rays move toward decreasing x.
	Leftward Direction = -1

	// Rightward rays move toward increasing x.
	Rightward Direction = 1
)

// Valid reports whether d is -1 or +1.
func (d Direction) Valid() bool {
	return d == Leftward || d == Rightward
}

// NullLine is a WorldLine constrained to |v| = c. It wraps the world line so
// all trajectory math stays in WorldLine.
type NullLine struct {
	line      WorldLine
	direction Direction
	c         float64
}

// NewNullLine creates a light ray leaving start in the given direction.
func NewNullLine(start Event, direction Direction, c float64) (NullLine, error) {
	return NullLineThrough(start, direction, c, start.Label)
}

// NullLineThrough creates a labelled light ray through event.
func NullLineThrough(event Event, direction Direction, c float64, label string) (NullLine, error) {
	if !direction.Valid() {
		return NullLine{}, NewInvalidConfigError(CodeInvalidDirection, "direction",
			fmt.Sprintf("direction must be -1 or +1, got %d", direction))
	}
	if err := ValidateLightSpeed(c); err != nil {
		return NullLine{}, err
	}
	if !event.IsFinite() {
		return NullLine{}, NewInvalidConfigError(CodeNonFinite, "start",
			fmt.Sprintf("start event must be finite, got %s", event))
	}
	return NullLine{
		line: WorldLine{
			X0:    event.X,
			V:     float64(direction) * c,
			T0:    event.T,
			Label: label,
		},
		direction: direction,
		c:         c,
	}, nil
}

// WorldLine returns the underlying inertial trajectory.
func (n NullLine) WorldLine() WorldLine { return n.line }

// Direction returns the ray's direction.
func (n NullLine) Direction() Direction { return n.direction }

// LightSpeed returns c.
func (n NullLine) LightSpeed() float64 { return n.c }

// Start returns the event the ray was emitted from.
func (n NullLine) Start() Event {
	return Event{T: n.line.T0, X: n.line.X0, Label: n.line.Label}
}

// PositionAt returns the event on the ray at time t.
func (n NullLine) PositionAt(t float64) Event {
	return n.line.PositionAt(t)
}

// Intersect intersects the ray's full trajectory with w. It does not restrict
// the result to the future of Start.
func (n NullLine) Intersect(w WorldLine) Intersection {
	return n.line.Intersect(w)
}

// Interaction is the outcome of a light ray meeting an object. Event is only
// meaningful when Met is true.
type Interaction struct {
	Met   bool
	Event Event
}

// LightInteractionLabel labels the meeting event produced by LightVsRest.
const LightInteractionLabel = "light-rest interaction"

// LightVsRest emits light from lightStart in the given direction and reports
// where it meets an object at rest at restX.
//
// A ray pointing away from restX met it only in the past; that is reported as
// Interaction{Met: false}, not as an error. Errors are reserved for invalid
// direction, light speed or non-finite input.
func LightVsRest(lightStart Event, restX float64, direction Direction, c float64) (Interaction, error) {
	ray, err := NullLineThrough(lightStart, direction, c, "photon")
	if err != nil {
		return Interaction{}, err
	}
	if !isFinite(restX) {
		return Interaction{}, NewInvalidConfigError(CodeNonFinite, "rest_x",
			fmt.Sprintf("rest position must be finite, got %v", restX))
	}

	rest := WorldLine{X0: restX, T0: lightStart.T, Label: "rest-object"}
	meet, ok := ray.Intersect(rest).Point()
	if !ok {
		return Interaction{}, nil
	}
	if meet.T < lightStart.T-Epsilon {
		return Interaction{}, nil
	}
	return Interaction{Met: true, Event: meet.WithLabel(LightInteractionLabel)}, nil
}
