package spacetime

import (
	"fmt"
	"math"
)

// IntervalType classifies the separation between two events.
type IntervalType string

const (
	// Timelike separation: one event can causally influence the other.
	Timelike IntervalType = "timelike"

	// Spacelike separation: no signal at or below c connects the events.
	Spacelike IntervalType = "spacelike"

	// Null separation: the events are connected by a light ray. Coincident
	// events are null as well.
	Null IntervalType = "null"
)

// ParseIntervalType converts a string into an IntervalType.
func ParseIntervalType(s string) (IntervalType, error) {
	switch IntervalType(s) {
	case Timelike, Spacelike, Null:
		return IntervalType(s), nil
	default:
		return "", fmt.Errorf("unknown interval type %q", s)
	}
}

// IntervalSquared computes the invariant s² = (cΔt)² − Δx² between a and b.
func IntervalSquared(a, b Event, c float64) float64 {
	dt := b.T - a.T
	dx := b.X - a.X
	return (c*dt)*(c*dt) - dx*dx
}

// ClassifyInterval classifies the separation between a and b using light
// speed c. The result does not depend on argument order.
func ClassifyInterval(a, b Event, c float64) IntervalType {
	s2 := IntervalSquared(a, b, c)
	if math.Abs(s2) <= Epsilon {
		return Null
	}
	if s2 > 0 {
		return Timelike
	}
	return Spacelike
}

// Classify is ClassifyInterval in natural units.
func Classify(a, b Event) IntervalType {
	return ClassifyInterval(a, b, DefaultLightSpeed)
}

// ValidateLightSpeed rejects non-positive or non-finite light speeds.
func ValidateLightSpeed(c float64) error {
	if !isFinite(c) {
		return NewInvalidConfigError(CodeNonFinite, "light_speed", fmt.Sprintf("light speed must be finite, got %v", c))
	}
	if c <= 0 {
		return NewInvalidConfigError(CodeInvalidLightSpeed, "light_speed", fmt.Sprintf("light speed must be > 0, got %v", c))
	}
	return nil
}
