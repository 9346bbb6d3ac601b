package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/spacetime"
)

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	From            spacetime.Event        `json:"from"`
	To              spacetime.Event        `json:"to"`
	Interval        spacetime.IntervalType `json:"interval"`
	IntervalSquared float64                `json:"interval_squared"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <event> <event>",
		Short: "Classify the interval between two events",
		Long: `Classify the separation between two events as timelike, spacelike or null.

Events are written [label:]t,x. Prefix a label, or pass -- first, when a
coordinate is negative.

Examples:
  minkowski classify A:0,0 B:2,1
  minkowski classify 0,0 1,1 --light-speed 1
  minkowski classify -- 0,0 1,-3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(rootOpts, args, cmd)
		},
	}
}

func runClassify(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	a, err := parseEvent(args[0])
	if err != nil {
		return argError(f, err)
	}
	b, err := parseEvent(args[1])
	if err != nil {
		return argError(f, err)
	}

	c := opts.lightSpeed()
	if err := spacetime.ValidateLightSpeed(c); err != nil {
		return engineError(f, err)
	}
	for _, e := range []spacetime.Event{a, b} {
		if !e.IsFinite() {
			return engineError(f, spacetime.NewInvalidConfigError(spacetime.CodeNonFinite, "event",
				fmt.Sprintf("event %s has a non-finite coordinate", e)))
		}
	}

	result := ClassifyResult{
		From:            a,
		To:              b,
		Interval:        spacetime.ClassifyInterval(a, b, c),
		IntervalSquared: spacetime.IntervalSquared(a, b, c),
	}
	f.VerboseLog("s^2 = %g (c = %g)", result.IntervalSquared, c)

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Interval %s->%s: %s\n", eventName(a, "A"), eventName(b, "B"), result.Interval)
	return nil
}

func eventName(e spacetime.Event, fallback string) string {
	if e.Label != "" {
		return e.Label
	}
	return fallback
}
