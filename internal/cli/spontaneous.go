package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// SpontaneousOptions holds flags for the spontaneous command.
type SpontaneousOptions struct {
	*RootOptions
	gridFlags
	Probability float64
	Prefix      string
}

// SpontaneousResult is the output of the spontaneous command.
type SpontaneousResult struct {
	Line   string            `json:"line"`
	Count  int               `json:"count"`
	Events []spacetime.Event `json:"events"`
}

// NewSpontaneousCommand creates the spontaneous command.
func NewSpontaneousCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpontaneousOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "spontaneous <line>",
		Short: "Emit random events along a world line",
		Long: `Step along a world line and emit an event at each grid time with the
given probability.

Set --seed (or seed in the config file) for reproducible output.

Examples:
  minkowski spontaneous ship:0,0.4 --end 10 --step 0.5 --probability 0.2 --seed 42
  minkowski spontaneous 0,0.4 --probability 1 --prefix tick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpontaneous(opts, args[0], cmd)
		},
	}

	opts.register(cmd, 10, 0.5)
	cmd.Flags().Float64VarP(&opts.Probability, "probability", "p", 0.2, "per-step emission probability in [0,1]")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", engine.DefaultSpontaneousPrefix, "label prefix for emitted events")

	return cmd
}

func runSpontaneous(opts *SpontaneousOptions, arg string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	line, err := parseWorldLine(arg)
	if err != nil {
		return argError(f, err)
	}
	grid, err := opts.grid(opts.RootOptions)
	if err != nil {
		return argError(f, err)
	}

	runID := opts.newRunID()
	events, err := opts.stepper(runID).Spontaneous(line, grid, opts.Probability, opts.source(),
		engine.WithLabelPrefix(opts.Prefix))
	if err != nil {
		return engineError(f, err)
	}
	if events == nil {
		events = []spacetime.Event{}
	}

	result := SpontaneousResult{Line: lineName(line), Count: len(events), Events: events}
	if f.Format == "json" {
		return f.SuccessWithRunID(runID, result)
	}
	fmt.Fprintf(f.Writer, "Spontaneous events on %s: %d\n", result.Line, result.Count)
	for _, e := range events {
		fmt.Fprintf(f.Writer, "  %s\n", e)
	}
	return nil
}

func lineName(w spacetime.WorldLine) string {
	if w.Label != "" {
		return w.Label + " world line"
	}
	return "world line"
}
