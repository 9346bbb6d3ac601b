package compiler

import (
	"fmt"

	"github.com/roach88/minkowski/internal/harness"
	"github.com/roach88/minkowski/internal/spacetime"
)

// Lint finding codes (W100-W199). Findings never stop a scenario from
// running; they flag scenarios that probably do not test what they intend.
const (
	WarnSuperluminal     = "W101" // world line faster than light
	WarnUnusedEvent      = "W102" // event never referenced
	WarnUnusedLine       = "W103" // world or null line never referenced
	WarnUncheckedQuery   = "W104" // query with no expect clause and no assertion
	WarnDegenerateSpread = "W105" // separation condition over a single line
)

// ValidationError represents one lint finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Lint inspects a validated scenario for likely mistakes.
// Returns all findings (does not fail-fast), in a stable order.
func Lint(s *harness.Scenario) []ValidationError {
	var errs []ValidationError

	c := s.LightSpeed
	if c == 0 {
		c = spacetime.DefaultLightSpeed
	}

	// W101: superluminal world lines
	for i, w := range s.WorldLines {
		if w.IsSuperluminal(c) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("world_lines[%d].v", i),
				Message: fmt.Sprintf("world line %q moves at |v|=%g, faster than c=%g", w.Label, w.V, c),
				Code:    WarnSuperluminal,
			})
		}
	}

	usedEvents := make(map[string]bool)
	usedLines := make(map[string]bool)
	for _, n := range s.NullLines {
		usedEvents[n.From] = true
	}

	asserted := make(map[string]bool)
	for _, a := range s.Assertions {
		asserted[a.Query] = true
		for _, q := range a.Queries {
			asserted[q] = true
		}
	}

	for i, q := range s.Queries {
		usedEvents[q.From] = true
		usedEvents[q.To] = true
		for _, l := range q.Lines {
			usedLines[l] = true
		}

		// W104: nothing checks this query
		if q.Expect == nil && !asserted[q.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("queries[%d]", i),
				Message: fmt.Sprintf("query %q has no expect clause and no assertion", q.Name),
				Code:    WarnUncheckedQuery,
			})
		}

		// W105: the spread of one line is always 0
		if q.Op == harness.OpConditional && len(q.Lines) == 1 && q.When != nil &&
			(q.When.Type == harness.ConditionSeparationBelow || q.When.Type == harness.ConditionSeparationAbove) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("queries[%d].when", i),
				Message: fmt.Sprintf("%s over a single line always sees a separation of 0", q.When.Type),
				Code:    WarnDegenerateSpread,
			})
		}
	}

	// W102: unused events
	for i, e := range s.Events {
		if !usedEvents[e.Label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("events[%d]", i),
				Message: fmt.Sprintf("event %q is never referenced", e.Label),
				Code:    WarnUnusedEvent,
			})
		}
	}

	// W103: unused lines
	for i, w := range s.WorldLines {
		if !usedLines[w.Label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("world_lines[%d]", i),
				Message: fmt.Sprintf("world line %q is never referenced", w.Label),
				Code:    WarnUnusedLine,
			})
		}
	}
	for i, n := range s.NullLines {
		if !usedLines[n.Label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("null_lines[%d]", i),
				Message: fmt.Sprintf("null line %q is never referenced", n.Label),
				Code:    WarnUnusedLine,
			})
		}
	}

	return errs
}
