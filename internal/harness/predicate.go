package harness

import (
	"fmt"
	"math"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// Condition types for conditional queries.
const (
	// ConditionSeparationBelow holds when the spread of sampled x values
	// (max - min) is strictly below Value.
	ConditionSeparationBelow = "separation_below"

	// ConditionSeparationAbove holds when the spread is strictly above Value.
	ConditionSeparationAbove = "separation_above"

	// ConditionWithin holds when every sampled x lies in [Min, Max].
	ConditionWithin = "within"
)

// Condition is a declarative conditional-simulation predicate.
type Condition struct {
	Type  string  `json:"type" yaml:"type" toml:"type"`
	Value float64 `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Min   float64 `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max   float64 `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

// BuildPredicate compiles a Condition into an engine.Predicate. A nil
// condition yields a nil predicate, which the engine rejects.
func BuildPredicate(c *Condition) (engine.Predicate, error) {
	if c == nil {
		return nil, nil
	}
	switch c.Type {
	case ConditionSeparationBelow:
		limit := c.Value
		return func(_ float64, events []spacetime.Event) bool {
			return Spread(events) < limit
		}, nil
	case ConditionSeparationAbove:
		limit := c.Value
		return func(_ float64, events []spacetime.Event) bool {
			return Spread(events) > limit
		}, nil
	case ConditionWithin:
		if c.Min > c.Max {
			return nil, fmt.Errorf("within: min %v greater than max %v", c.Min, c.Max)
		}
		lo, hi := c.Min, c.Max
		return func(_ float64, events []spacetime.Event) bool {
			for _, e := range events {
				if e.X < lo || e.X > hi {
					return false
				}
			}
			return true
		}, nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", c.Type)
	}
}

// Spread returns max(x) - min(x) over events, or 0 for fewer than two events.
func Spread(events []spacetime.Event) float64 {
	if len(events) < 2 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range events {
		lo = math.Min(lo, e.X)
		hi = math.Max(hi, e.X)
	}
	return hi - lo
}
