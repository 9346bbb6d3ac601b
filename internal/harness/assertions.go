package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s (%d event(s))\n",
			event.Seq, event.Op, event.Query, event.Outcome, len(event.Events))
	}

	return buf.String()
}

func findEntry(trace []TraceEvent, query string) (TraceEvent, bool) {
	for _, e := range trace {
		if e.Query == query {
			return e, true
		}
	}
	return TraceEvent{}, false
}

func missing(kind string, trace []TraceEvent, a Assertion) error {
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("query %s in trace", a.Query),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertOutcome checks the recorded outcome of a single query.
func assertOutcome(trace []TraceEvent, a Assertion) error {
	entry, ok := findEntry(trace, a.Query)
	if !ok {
		return missing(AssertOutcome, trace, a)
	}
	if entry.Outcome != a.Outcome {
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("%s outcome %s", a.Query, a.Outcome),
			Actual:   entry.Outcome,
			Trace:    trace,
		}
	}
	return nil
}

// assertEventCount checks the exact number of events a query produced.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	entry, ok := findEntry(trace, a.Query)
	if !ok {
		return missing(AssertEventCount, trace, a)
	}
	if len(entry.Events) != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d event(s) from %s", a.Count, a.Query),
			Actual:   fmt.Sprintf("%d event(s)", len(entry.Events)),
			Trace:    trace,
		}
	}
	return nil
}

// assertTimeOrdered checks that a query's events are strictly increasing in
// time for a positive step, or strictly decreasing for a negative one. Either
// strict direction is accepted since the grid direction is not recorded.
func assertTimeOrdered(trace []TraceEvent, a Assertion) error {
	entry, ok := findEntry(trace, a.Query)
	if !ok {
		return missing(AssertTimeOrdered, trace, a)
	}
	if len(entry.Events) < 2 {
		return nil
	}

	increasing := entry.Events[1].T > entry.Events[0].T
	for i := 1; i < len(entry.Events); i++ {
		prev, cur := entry.Events[i-1].T, entry.Events[i].T
		if (increasing && cur <= prev) || (!increasing && cur >= prev) {
			return &AssertionError{
				Type:     AssertTimeOrdered,
				Expected: fmt.Sprintf("%s events strictly ordered in t", a.Query),
				Actual:   fmt.Sprintf("events[%d].t=%v follows events[%d].t=%v", i, cur, i-1, prev),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceOrder checks that queries executed in the specified order.
// Queries don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int64, len(trace))
	for _, e := range trace {
		positions[e.Query] = e.Seq
	}

	var last int64
	for i, q := range a.Queries {
		seq, ok := positions[q]
		if !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("queries in order: %v", a.Queries),
				Actual:   fmt.Sprintf("query %s not found in trace", q),
				Trace:    trace,
			}
		}
		if seq <= last {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("queries in order: %v", a.Queries),
				Actual:   fmt.Sprintf("query %s (seq %d) ran before %s", q, seq, a.Queries[i-1]),
				Trace:    trace,
			}
		}
		last = seq
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOutcome:
			err = assertOutcome(result.Trace, assertion)
		case AssertEventCount:
			err = assertEventCount(result.Trace, assertion)
		case AssertTimeOrdered:
			err = assertTimeOrdered(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
