package engine

import (
	"fmt"
	"iter"

	"github.com/roach88/minkowski/internal/spacetime"
)

// DefaultConditionalLabel labels centroid events of conditional samples.
const DefaultConditionalLabel = "conditional"

// Predicate decides whether the world line events sampled at time t are
// recorded. events[i] is world line i at t. The slice belongs to the sample;
// a predicate may retain it but must not modify it.
type Predicate func(t float64, events []spacetime.Event) bool

// Sample is one recorded grid step of a conditional simulation.
type Sample struct {
	// Step is the grid index i, with T = start + i*step.
	Step int `json:"step"`

	// T is the grid time.
	T float64 `json:"t"`

	// Events holds one event per world line, in input order.
	Events []spacetime.Event `json:"events"`
}

// Centroid returns the event at T whose x is the mean x of Events.
// An empty label uses DefaultConditionalLabel.
func (s Sample) Centroid(label string) spacetime.Event {
	if label == "" {
		label = DefaultConditionalLabel
	}
	var sum float64
	for _, e := range s.Events {
		sum += e.X
	}
	n := len(s.Events)
	if n == 0 {
		n = 1
	}
	return spacetime.Event{T: s.T, X: sum / float64(n), Label: label}
}

// Centroids maps samples to their centroid events.
func Centroids(samples []Sample, label string) []spacetime.Event {
	out := make([]spacetime.Event, len(samples))
	for i, s := range samples {
		out[i] = s.Centroid(label)
	}
	return out
}

// Conditional samples every world line at every grid time and returns the
// steps where pred holds, in grid order.
func (s *Stepper) Conditional(lines []spacetime.WorldLine, grid Grid, pred Predicate) ([]Sample, error) {
	seq, err := s.ConditionalSeq(lines, grid, pred)
	if err != nil {
		return nil, err
	}

	var out []Sample
	for sample := range seq {
		out = append(out, sample)
	}
	return out, nil
}

// ConditionalSeq is the lazy form of Conditional. Validation happens before
// the sequence is returned; the caller may stop ranging early. Each range over
// the sequence is an independent run.
func (s *Stepper) ConditionalSeq(lines []spacetime.WorldLine, grid Grid, pred Predicate) (iter.Seq[Sample], error) {
	if pred == nil {
		return nil, spacetime.NewInvalidConfigError(spacetime.CodeInvalidPredicate, "predicate", "predicate is required")
	}
	if err := grid.validate(s.maxSteps); err != nil {
		return nil, fmt.Errorf("conditional simulation: %w", err)
	}
	if err := validateLines(lines...); err != nil {
		return nil, fmt.Errorf("conditional simulation: %w", err)
	}

	// Copy so later mutation of the caller's slice does not leak into a run.
	frozen := make([]spacetime.WorldLine, len(lines))
	copy(frozen, lines)

	return func(yield func(Sample) bool) {
		runID := s.runIDs.Generate()
		s.warnSuperluminal(runID, frozen...)

		steps, matches := 0, 0
		defer func() {
			s.logger.Debug("conditional simulation finished",
				"run_id", runID,
				"world_lines", len(frozen),
				"steps", steps,
				"matches", matches,
			)
		}()

		for i, t := range grid.All() {
			steps++
			events := make([]spacetime.Event, len(frozen))
			for j, w := range frozen {
				events[j] = w.PositionAt(t)
			}
			if !pred(t, events) {
				continue
			}
			matches++
			if !yield(Sample{Step: i, T: t, Events: events}) {
				return
			}
		}
	}, nil
}

// ConditionalSimulation runs Conditional on the grid [tStart, tEnd] (inclusive)
// with step dt using a default Stepper.
func ConditionalSimulation(lines []spacetime.WorldLine, tStart, tEnd, dt float64, pred Predicate) ([]Sample, error) {
	return New().Conditional(lines, NewGrid(tStart, tEnd, dt), pred)
}
