package engine

import (
	"fmt"
	"iter"
	"math"

	"github.com/roach88/minkowski/internal/spacetime"
)

// DefaultSpontaneousPrefix prefixes the labels of spontaneous events.
const DefaultSpontaneousPrefix = "spontaneous"

// SpontaneousOption configures a spontaneous run.
type SpontaneousOption func(*spontaneousConfig)

type spontaneousConfig struct {
	prefix string
}

// WithLabelPrefix labels emitted events "<prefix>-<n>", n counting emitted
// events from 0.
func WithLabelPrefix(prefix string) SpontaneousOption {
	return func(c *spontaneousConfig) {
		c.prefix = prefix
	}
}

// ValidateProbability rejects probabilities outside [0, 1].
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return spacetime.NewInvalidConfigError(spacetime.CodeInvalidProbability, "probability_per_step",
			fmt.Sprintf("probability_per_step must be in [0, 1], got %v", p))
	}
	return nil
}

// Spontaneous draws one sample from src per grid step and emits the world
// line's event at that step when the sample is below probability.
//
// A nil src, including a nil *rand.Rand, uses a non-deterministic source. probability 0 never emits;
// probability 1 emits at every step.
func (s *Stepper) Spontaneous(line spacetime.WorldLine, grid Grid, probability float64, src Source, opts ...SpontaneousOption) ([]spacetime.Event, error) {
	seq, err := s.SpontaneousSeq(line, grid, probability, src, opts...)
	if err != nil {
		return nil, err
	}

	var out []spacetime.Event
	for e := range seq {
		out = append(out, e)
	}
	return out, nil
}

// SpontaneousSeq is the lazy form of Spontaneous. Ranging twice over the
// sequence continues drawing from the same src.
func (s *Stepper) SpontaneousSeq(line spacetime.WorldLine, grid Grid, probability float64, src Source, opts ...SpontaneousOption) (iter.Seq[spacetime.Event], error) {
	if err := ValidateProbability(probability); err != nil {
		return nil, err
	}
	if err := grid.validate(s.maxSteps); err != nil {
		return nil, fmt.Errorf("spontaneous events: %w", err)
	}
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("spontaneous events: %w", err)
	}

	cfg := spontaneousConfig{prefix: DefaultSpontaneousPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	if isNilSource(src) {
		src = newDefaultSource()
	}

	return func(yield func(spacetime.Event) bool) {
		runID := s.runIDs.Generate()
		s.warnSuperluminal(runID, line)

		steps, emitted := 0, 0
		defer func() {
			s.logger.Debug("spontaneous events finished",
				"run_id", runID,
				"label", line.Label,
				"probability", probability,
				"steps", steps,
				"emitted", emitted,
			)
		}()

		for _, t := range grid.All() {
			steps++
			if src.Float64() >= probability {
				continue
			}
			e := line.EventAt(t, fmt.Sprintf("%s-%d", cfg.prefix, emitted))
			emitted++
			if !yield(e) {
				return
			}
		}
	}, nil
}

// SpontaneousEvents runs Spontaneous on the grid [tStart, tEnd] (inclusive)
// with step dt using a default Stepper.
func SpontaneousEvents(line spacetime.WorldLine, tStart, tEnd, dt, probability float64, src Source) ([]spacetime.Event, error) {
	return New().Spontaneous(line, NewGrid(tStart, tEnd, dt), probability, src)
}
