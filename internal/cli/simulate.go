package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/harness"
	"github.com/roach88/minkowski/internal/spacetime"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	gridFlags
	Below  float64
	Above  float64
	Within []float64
	Label  string
}

// SimulateResult is the output of the simulate command.
type SimulateResult struct {
	Condition harness.Condition `json:"condition"`
	Count     int               `json:"count"`
	Samples   []engine.Sample   `json:"samples"`
	Centroids []spacetime.Event `json:"centroids"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <line>...",
		Short: "Record the grid steps where a condition holds",
		Long: `Sample every world line on a time grid and keep the steps where the
condition holds. Exactly one of --below, --above or --within is required.

  --below D     spread of positions strictly below D
  --above D     spread of positions strictly above D
  --within A,B  every position inside [A, B]

Examples:
  minkowski simulate chaser:-3,0.8 target:3,0 --end 10 --step 0.1 --below 0.5
  minkowski simulate a:0,0.5 --within 1,2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	opts.register(cmd, 10, 0.1)
	cmd.Flags().Float64Var(&opts.Below, "below", 0, "keep steps whose spread is below this distance")
	cmd.Flags().Float64Var(&opts.Above, "above", 0, "keep steps whose spread is above this distance")
	cmd.Flags().Float64SliceVar(&opts.Within, "within", nil, "keep steps where every position lies in [min,max]")
	cmd.Flags().StringVar(&opts.Label, "label", engine.DefaultConditionalLabel, "label for centroid events")
	cmd.MarkFlagsOneRequired("below", "above", "within")
	cmd.MarkFlagsMutuallyExclusive("below", "above", "within")

	return cmd
}

func runSimulate(opts *SimulateOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	lines, err := parseWorldLines(args)
	if err != nil {
		return argError(f, err)
	}
	cond, err := opts.condition(cmd)
	if err != nil {
		return argError(f, err)
	}
	pred, err := harness.BuildPredicate(&cond)
	if err != nil {
		return argError(f, err)
	}
	grid, err := opts.grid(opts.RootOptions)
	if err != nil {
		return argError(f, err)
	}

	runID := opts.newRunID()
	samples, err := opts.stepper(runID).Conditional(lines, grid, pred)
	if err != nil {
		return engineError(f, err)
	}
	if samples == nil {
		samples = []engine.Sample{}
	}

	result := SimulateResult{
		Condition: cond,
		Count:     len(samples),
		Samples:   samples,
		Centroids: engine.Centroids(samples, opts.Label),
	}
	if f.Format == "json" {
		return f.SuccessWithRunID(runID, result)
	}
	fmt.Fprintf(f.Writer, "Conditional %s samples: %d\n", opts.Label, result.Count)
	for _, c := range result.Centroids {
		fmt.Fprintf(f.Writer, "  %s\n", c)
	}
	return nil
}

func (o *SimulateOptions) condition(cmd *cobra.Command) (harness.Condition, error) {
	switch {
	case cmd.Flags().Changed("below"):
		return harness.Condition{Type: harness.ConditionSeparationBelow, Value: o.Below}, nil
	case cmd.Flags().Changed("above"):
		return harness.Condition{Type: harness.ConditionSeparationAbove, Value: o.Above}, nil
	}
	if len(o.Within) != 2 {
		return harness.Condition{}, fmt.Errorf("--within: want min,max, got %d value(s)", len(o.Within))
	}
	return harness.Condition{Type: harness.ConditionWithin, Min: o.Within[0], Max: o.Within[1]}, nil
}
