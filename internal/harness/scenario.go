package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// Scenario defines a set of spacetime objects and the queries run over them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Description explains what this scenario validates.
	Description string `json:"description" yaml:"description" toml:"description"`

	// LightSpeed is c. Zero means natural units (1).
	LightSpeed float64 `json:"light_speed,omitempty" yaml:"light_speed,omitempty" toml:"light_speed,omitempty"`

	// Seed roots the random sources of spontaneous queries. When nil the
	// scenario name is used, so runs stay deterministic either way.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`

	// Boundary is the grid boundary policy for every query ("inclusive" or
	// "exclusive"). Empty means inclusive.
	Boundary string `json:"boundary,omitempty" yaml:"boundary,omitempty" toml:"boundary,omitempty"`

	Events     []spacetime.Event     `json:"events,omitempty" yaml:"events,omitempty" toml:"events,omitempty"`
	WorldLines []spacetime.WorldLine `json:"world_lines,omitempty" yaml:"world_lines,omitempty" toml:"world_lines,omitempty"`
	NullLines  []NullLineDef         `json:"null_lines,omitempty" yaml:"null_lines,omitempty" toml:"null_lines,omitempty"`

	// Queries run in order; each produces one trace entry.
	Queries []Query `json:"queries" yaml:"queries" toml:"queries"`

	// Assertions validate the final trace.
	Assertions []Assertion `json:"assertions,omitempty" yaml:"assertions,omitempty" toml:"assertions,omitempty"`
}

// NullLineDef declares a light ray leaving a named event.
type NullLineDef struct {
	Label     string `json:"label" yaml:"label" toml:"label"`
	From      string `json:"from" yaml:"from" toml:"from"`
	Direction int    `json:"direction" yaml:"direction" toml:"direction"`
}

// Query operations.
const (
	OpClassify    = "classify"
	OpIntersect   = "intersect"
	OpLightRest   = "light_rest"
	OpPosition    = "position"
	OpConditional = "conditional"
	OpSpontaneous = "spontaneous"
)

// Query is one operation over the scenario's objects.
type Query struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Op   string `json:"op" yaml:"op" toml:"op"`

	// From and To name events (classify; light_rest uses From).
	From string `json:"from,omitempty" yaml:"from,omitempty" toml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty"`

	// Lines names world lines or null lines.
	Lines []string `json:"lines,omitempty" yaml:"lines,omitempty" toml:"lines,omitempty"`

	// RestX and Direction parameterize light_rest. Direction defaults to +1.
	RestX     *float64 `json:"rest_x,omitempty" yaml:"rest_x,omitempty" toml:"rest_x,omitempty"`
	Direction *int     `json:"direction,omitempty" yaml:"direction,omitempty" toml:"direction,omitempty"`

	// At is the evaluation time for position.
	At *float64 `json:"at,omitempty" yaml:"at,omitempty" toml:"at,omitempty"`

	// Grid drives conditional and spontaneous queries.
	Grid *engine.Grid `json:"grid,omitempty" yaml:"grid,omitempty" toml:"grid,omitempty"`

	// Probability is the per-step emission probability for spontaneous.
	Probability *float64 `json:"probability,omitempty" yaml:"probability,omitempty" toml:"probability,omitempty"`

	// Label labels emitted events: the prefix of spontaneous events and the
	// label of conditional centroids.
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`

	// When is the conditional predicate.
	When *Condition `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty"`

	// Expect validates this query's trace entry. Nil means no validation.
	Expect *Expectation `json:"expect,omitempty" yaml:"expect,omitempty" toml:"expect,omitempty"`
}

// Expectation is a subset match over a query's trace entry. Only set fields
// are checked.
type Expectation struct {
	// Interval is the expected classification (classify only).
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty" toml:"interval,omitempty"`

	// Outcome is the expected outcome string.
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty" toml:"outcome,omitempty"`

	// T and X match the first recorded event within spacetime.Epsilon.
	T *float64 `json:"t,omitempty" yaml:"t,omitempty" toml:"t,omitempty"`
	X *float64 `json:"x,omitempty" yaml:"x,omitempty" toml:"x,omitempty"`

	// Count is the expected number of recorded events.
	Count *int `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`

	// Times lists the expected event times in order.
	Times []float64 `json:"times,omitempty" yaml:"times,omitempty" toml:"times,omitempty"`

	// Error is the expected invalid-configuration code.
	Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// Assertion validates the final trace.
type Assertion struct {
	// Type is one of outcome, event_count, time_ordered, trace_order.
	Type string `json:"type" yaml:"type" toml:"type"`

	// Query names the query (outcome, event_count, time_ordered).
	Query string `json:"query,omitempty" yaml:"query,omitempty" toml:"query,omitempty"`

	// Outcome is the expected outcome (outcome).
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty" toml:"outcome,omitempty"`

	// Count is the expected number of events (event_count).
	Count int `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`

	// Queries is the expected execution order (trace_order).
	Queries []string `json:"queries,omitempty" yaml:"queries,omitempty" toml:"queries,omitempty"`
}

// Assertion type constants.
const (
	AssertOutcome     = "outcome"
	AssertEventCount  = "event_count"
	AssertTimeOrdered = "time_ordered"
	AssertTraceOrder  = "trace_order"
)

// Scenario file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// FormatForPath maps a file extension to a scenario format. It returns ""
// for files the harness does not read.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return ""
	}
}

// LoadScenario reads, parses and validates a scenario file. Unknown fields
// are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	format := FormatForPath(path)
	if format == "" {
		return nil, fmt.Errorf("unsupported scenario file %q: want .yaml, .yml or .toml", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, format)
}

// ParseScenario decodes and validates scenario data in the given format.
func ParseScenario(data []byte, format string) (*Scenario, error) {
	var scenario Scenario
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown scenario format %q", format)
	}

	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Validate checks structure and references. Numeric parameters of queries
// (step, probability, direction) are left to the engine so that scenarios
// can assert on invalid-configuration outcomes.
func Validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}
	if s.LightSpeed != 0 {
		if err := spacetime.ValidateLightSpeed(s.LightSpeed); err != nil {
			return err
		}
	}
	if _, err := engine.ParseBoundary(s.Boundary); err != nil {
		return err
	}

	events := make(map[string]bool, len(s.Events))
	for i, e := range s.Events {
		if e.Label == "" {
			return fmt.Errorf("events[%d]: label is required", i)
		}
		if events[e.Label] {
			return fmt.Errorf("events[%d]: duplicate label %q", i, e.Label)
		}
		events[e.Label] = true
	}

	lines := make(map[string]bool, len(s.WorldLines)+len(s.NullLines))
	for i, w := range s.WorldLines {
		if w.Label == "" {
			return fmt.Errorf("world_lines[%d]: label is required", i)
		}
		if lines[w.Label] {
			return fmt.Errorf("world_lines[%d]: duplicate label %q", i, w.Label)
		}
		lines[w.Label] = true
	}
	for i, n := range s.NullLines {
		if n.Label == "" {
			return fmt.Errorf("null_lines[%d]: label is required", i)
		}
		if lines[n.Label] {
			return fmt.Errorf("null_lines[%d]: duplicate label %q", i, n.Label)
		}
		if !events[n.From] {
			return fmt.Errorf("null_lines[%d]: unknown event %q", i, n.From)
		}
		if !spacetime.Direction(n.Direction).Valid() {
			return fmt.Errorf("null_lines[%d]: direction must be -1 or +1, got %d", i, n.Direction)
		}
		lines[n.Label] = true
	}

	queries := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if queries[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		queries[q.Name] = true
		if err := validateQuery(q, events, lines); err != nil {
			return fmt.Errorf("query %q: %w", q.Name, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, queries); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateQuery(q Query, events, lines map[string]bool) error {
	requireEvent := func(field, label string) error {
		if label == "" {
			return fmt.Errorf("%s is required", field)
		}
		if !events[label] {
			return fmt.Errorf("%s: unknown event %q", field, label)
		}
		return nil
	}
	requireLines := func(min, max int) error {
		if len(q.Lines) < min || (max > 0 && len(q.Lines) > max) {
			if min == max {
				return fmt.Errorf("lines must name exactly %d line(s), got %d", min, len(q.Lines))
			}
			return fmt.Errorf("lines must name at least %d line(s), got %d", min, len(q.Lines))
		}
		for _, l := range q.Lines {
			if !lines[l] {
				return fmt.Errorf("lines: unknown line %q", l)
			}
		}
		return nil
	}

	switch q.Op {
	case OpClassify:
		if err := requireEvent("from", q.From); err != nil {
			return err
		}
		if err := requireEvent("to", q.To); err != nil {
			return err
		}
	case OpIntersect:
		if err := requireLines(2, 2); err != nil {
			return err
		}
	case OpLightRest:
		if err := requireEvent("from", q.From); err != nil {
			return err
		}
		if q.RestX == nil {
			return fmt.Errorf("rest_x is required")
		}
	case OpPosition:
		if err := requireLines(1, 1); err != nil {
			return err
		}
		if q.At == nil {
			return fmt.Errorf("at is required")
		}
	case OpConditional:
		if err := requireLines(1, 0); err != nil {
			return err
		}
		if q.Grid == nil {
			return fmt.Errorf("grid is required")
		}
		if q.When != nil {
			if _, err := BuildPredicate(q.When); err != nil {
				return err
			}
		}
	case OpSpontaneous:
		if err := requireLines(1, 1); err != nil {
			return err
		}
		if q.Grid == nil {
			return fmt.Errorf("grid is required")
		}
		if q.Probability == nil {
			return fmt.Errorf("probability is required")
		}
	default:
		return fmt.Errorf("unknown op %q", q.Op)
	}

	if q.Expect != nil && q.Expect.Interval != "" {
		if _, err := spacetime.ParseIntervalType(q.Expect.Interval); err != nil {
			return fmt.Errorf("expect: %w", err)
		}
	}
	return nil
}

func validateAssertion(a Assertion, queries map[string]bool) error {
	switch a.Type {
	case AssertOutcome, AssertEventCount, AssertTimeOrdered:
		if !queries[a.Query] {
			return fmt.Errorf("%s: unknown query %q", a.Type, a.Query)
		}
	case AssertTraceOrder:
		if len(a.Queries) < 2 {
			return fmt.Errorf("trace_order needs at least 2 queries")
		}
		for _, q := range a.Queries {
			if !queries[q] {
				return fmt.Errorf("trace_order: unknown query %q", q)
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
