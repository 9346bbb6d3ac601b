package harness

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// Harness executes one scenario. It is created per Run and never reused.
type Harness struct {
	scenario *Scenario
	stepper  *engine.Stepper
	c        float64
	boundary engine.Boundary
	events   map[string]spacetime.Event
	lines    map[string]spacetime.WorldLine
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Validate the scenario and resolve events, world lines and null lines
//  2. Execute queries in order, recording one trace entry each
//  3. Check each query's expect clause
//  4. Evaluate assertions against the trace
//
// Run returns an error only when the scenario itself is malformed.
// Expectation and assertion failures are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with engine logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if err := Validate(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	h, err := newHarness(scenario, logger)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, q := range scenario.Queries {
		entry := result.Record(h.execute(q))
		for _, msg := range checkExpectation(q, entry) {
			result.AddError(msg)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(s *Scenario, logger *slog.Logger) (*Harness, error) {
	c := s.LightSpeed
	if c == 0 {
		c = spacetime.DefaultLightSpeed
	}
	boundary, err := engine.ParseBoundary(s.Boundary)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		scenario: s,
		stepper: engine.New(
			engine.WithLogger(logger),
			engine.WithRunIDs(engine.NewFixedGenerator(s.Name)),
			engine.WithLightSpeed(c),
		),
		c:        c,
		boundary: boundary,
		events:   make(map[string]spacetime.Event, len(s.Events)),
		lines:    make(map[string]spacetime.WorldLine, len(s.WorldLines)+len(s.NullLines)),
		logger:   logger,
	}

	for _, e := range s.Events {
		h.events[e.Label] = e
	}
	for _, w := range s.WorldLines {
		h.lines[w.Label] = w
	}
	for _, n := range s.NullLines {
		ray, err := spacetime.NullLineThrough(h.events[n.From], spacetime.Direction(n.Direction), c, n.Label)
		if err != nil {
			return nil, fmt.Errorf("null line %q: %w", n.Label, err)
		}
		h.lines[n.Label] = ray.WorldLine()
	}
	return h, nil
}

// rootSeed is the string every spontaneous source is derived from.
func (h *Harness) rootSeed() string {
	if h.scenario.Seed != nil {
		return strconv.FormatInt(*h.scenario.Seed, 10)
	}
	return h.scenario.Name
}

func (h *Harness) execute(q Query) TraceEvent {
	entry := TraceEvent{Query: q.Name, Op: q.Op}

	var err error
	switch q.Op {
	case OpClassify:
		from, to := h.events[q.From], h.events[q.To]
		entry.Outcome = string(spacetime.ClassifyInterval(from, to, h.c))
		entry.Events = []spacetime.Event{from, to}

	case OpIntersect:
		result := h.lines[q.Lines[0]].Intersect(h.lines[q.Lines[1]])
		entry.Outcome = result.Kind.String()
		if point, ok := result.Point(); ok {
			entry.Events = []spacetime.Event{point}
		}

	case OpLightRest:
		direction := spacetime.Rightward
		if q.Direction != nil {
			direction = spacetime.Direction(*q.Direction)
		}
		var hit spacetime.Interaction
		hit, err = spacetime.LightVsRest(h.events[q.From], *q.RestX, direction, h.c)
		if err == nil {
			entry.Outcome = OutcomeNoInteraction
			if hit.Met {
				entry.Outcome = OutcomeInteraction
				entry.Events = []spacetime.Event{hit.Event}
			}
		}

	case OpPosition:
		entry.Outcome = OutcomeEvents
		entry.Events = []spacetime.Event{h.lines[q.Lines[0]].PositionAt(*q.At)}

	case OpConditional:
		entry.Events, err = h.conditional(q)
		if err == nil {
			entry.Outcome = OutcomeEvents
		}

	case OpSpontaneous:
		entry.Events, err = h.spontaneous(q)
		if err == nil {
			entry.Outcome = OutcomeEvents
		}
	}

	if err != nil {
		entry.Outcome = OutcomeInvalid
		entry.Events = nil
		entry.Error = string(spacetime.InvalidConfigCodeOf(err))
		if entry.Error == "" {
			entry.Error = err.Error()
		}
		h.logger.Debug("query rejected", "scenario", h.scenario.Name, "query", q.Name, "error", err)
	}
	return entry
}

func (h *Harness) grid(q Query) engine.Grid {
	g := *q.Grid
	if g.Boundary == "" {
		g.Boundary = h.boundary
	}
	return g
}

func (h *Harness) conditional(q Query) ([]spacetime.Event, error) {
	pred, err := BuildPredicate(q.When)
	if err != nil {
		return nil, err
	}
	lines := make([]spacetime.WorldLine, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = h.lines[l]
	}
	samples, err := h.stepper.Conditional(lines, h.grid(q), pred)
	if err != nil {
		return nil, err
	}
	return engine.Centroids(samples, q.Label), nil
}

func (h *Harness) spontaneous(q Query) ([]spacetime.Event, error) {
	var opts []engine.SpontaneousOption
	if q.Label != "" {
		opts = append(opts, engine.WithLabelPrefix(q.Label))
	}
	src := engine.NewDeterministicSource(h.rootSeed(), q.Name)
	return h.stepper.Spontaneous(h.lines[q.Lines[0]], h.grid(q), *q.Probability, src, opts...)
}

// checkExpectation returns one message per mismatch between q.Expect and entry.
func checkExpectation(q Query, entry TraceEvent) []string {
	exp := q.Expect
	if exp == nil {
		if entry.Outcome == OutcomeInvalid {
			return []string{fmt.Sprintf("query %q: unexpected invalid configuration: %s", q.Name, entry.Error)}
		}
		return nil
	}

	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("query %q: ", q.Name)+fmt.Sprintf(format, args...))
	}

	if exp.Error != "" {
		if entry.Error != exp.Error {
			fail("expected error %s, got %q", exp.Error, entry.Error)
		}
	} else if entry.Outcome == OutcomeInvalid {
		fail("unexpected invalid configuration: %s", entry.Error)
	}

	if exp.Interval != "" && entry.Outcome != exp.Interval {
		fail("expected interval %s, got %s", exp.Interval, entry.Outcome)
	}
	if exp.Outcome != "" && entry.Outcome != exp.Outcome {
		fail("expected outcome %s, got %s", exp.Outcome, entry.Outcome)
	}
	if exp.Count != nil && len(entry.Events) != *exp.Count {
		fail("expected %d event(s), got %d", *exp.Count, len(entry.Events))
	}

	if exp.T != nil || exp.X != nil {
		if len(entry.Events) == 0 {
			fail("expected an event, got none")
		} else {
			first := entry.Events[0]
			if exp.T != nil && !near(first.T, *exp.T) {
				fail("expected t=%v, got t=%v", *exp.T, first.T)
			}
			if exp.X != nil && !near(first.X, *exp.X) {
				fail("expected x=%v, got x=%v", *exp.X, first.X)
			}
		}
	}

	if exp.Times != nil {
		if len(exp.Times) != len(entry.Events) {
			fail("expected times %v, got %d event(s)", exp.Times, len(entry.Events))
		} else {
			for i, want := range exp.Times {
				if !near(entry.Events[i].T, want) {
					fail("expected times[%d]=%v, got %v", i, want, entry.Events[i].T)
				}
			}
		}
	}
	return errs
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= spacetime.Epsilon
}
