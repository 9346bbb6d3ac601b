package harness

import "github.com/roach88/minkowski/internal/spacetime"

// Outcomes recorded for queries that do not classify or intersect.
const (
	OutcomeEvents        = "events"
	OutcomeInteraction   = "interaction"
	OutcomeNoInteraction = "no_interaction"
	OutcomeInvalid       = "invalid"
)

// TraceEvent records one executed query.
type TraceEvent struct {
	Seq     int64             `json:"seq"`
	Query   string            `json:"query"`
	Op      string            `json:"op"`
	Outcome string            `json:"outcome"`
	Events  []spacetime.Event `json:"events"`
	Error   string            `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains one entry per query, in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Record appends a trace entry, stamping it with the next sequence number.
func (r *Result) Record(event TraceEvent) TraceEvent {
	event.Seq = int64(len(r.Trace) + 1)
	if event.Events == nil {
		event.Events = []spacetime.Event{}
	}
	r.Trace = append(r.Trace, event)
	return event
}

// Find returns the trace entry for the named query.
func (r *Result) Find(query string) (TraceEvent, bool) {
	for _, e := range r.Trace {
		if e.Query == query {
			return e, true
		}
	}
	return TraceEvent{}, false
}
