package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/engine"
)

// gridFlags are the time grid flags shared by the simulation commands.
type gridFlags struct {
	Start float64
	End   float64
	Step  float64
}

func (g *gridFlags) register(cmd *cobra.Command, end, step float64) {
	cmd.Flags().Float64Var(&g.Start, "start", 0, "first grid time")
	cmd.Flags().Float64Var(&g.End, "end", end, "last grid time")
	cmd.Flags().Float64Var(&g.Step, "step", step, "grid step (negative steps run backwards)")
}

// grid builds the grid using the configured boundary policy.
func (g *gridFlags) grid(opts *RootOptions) (engine.Grid, error) {
	b, err := opts.boundary()
	if err != nil {
		return engine.Grid{}, err
	}
	return engine.NewGrid(g.Start, g.End, g.Step).WithBoundary(b), nil
}
