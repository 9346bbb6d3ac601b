package engine

import (
	"io"
	"log/slog"

	"github.com/roach88/minkowski/internal/spacetime"
)

// Stepper runs conditional and spontaneous simulations over a Grid.
//
// A Stepper is immutable after New and safe for concurrent use.
type Stepper struct {
	logger   *slog.Logger
	runIDs   RunIDGenerator
	c        float64
	maxSteps int
}

// StepperOption configures a Stepper.
type StepperOption func(*Stepper)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) StepperOption {
	return func(s *Stepper) {
		s.logger = logger
	}
}

// WithRunIDs sets the run id generator. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) StepperOption {
	return func(s *Stepper) {
		s.runIDs = gen
	}
}

// WithLightSpeed sets c, used only to warn about superluminal world lines.
// Default: spacetime.DefaultLightSpeed.
func WithLightSpeed(c float64) StepperOption {
	return func(s *Stepper) {
		s.c = c
	}
}

// WithMaxSteps sets the maximum number of grid points per run.
//
// Default: DefaultMaxSteps. Zero or negative disables the quota.
func WithMaxSteps(maxSteps int) StepperOption {
	return func(s *Stepper) {
		s.maxSteps = maxSteps
	}
}

// New creates a Stepper.
func New(opts ...StepperOption) *Stepper {
	s := &Stepper{
		logger:   slog.Default(),
		runIDs:   UUIDv7Generator{},
		c:        spacetime.DefaultLightSpeed,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.runIDs == nil {
		s.runIDs = UUIDv7Generator{}
	}
	return s
}

// warnSuperluminal logs world lines whose speed exceeds c. They are still
// simulated.
func (s *Stepper) warnSuperluminal(runID string, lines ...spacetime.WorldLine) {
	for _, w := range lines {
		if w.IsSuperluminal(s.c) {
			s.logger.Warn("superluminal world line",
				"run_id", runID,
				"label", w.Label,
				"v", w.V,
				"c", s.c,
			)
		}
	}
}

func validateLines(lines ...spacetime.WorldLine) error {
	for _, w := range lines {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}
