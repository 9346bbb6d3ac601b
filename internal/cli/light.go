package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/spacetime"
)

// LightOptions holds flags for the light command.
type LightOptions struct {
	*RootOptions
	RestX     float64
	Direction string
}

// LightResult is the output of the light command.
type LightResult struct {
	Start spacetime.Event  `json:"start"`
	RestX float64          `json:"rest_x"`
	Met   bool             `json:"met"`
	Event *spacetime.Event `json:"event,omitempty"`
}

// NewLightCommand creates the light command.
func NewLightCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LightOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "light <event>",
		Short: "Send a light ray toward an object at rest",
		Long: `Emit light from an event and report where it meets an object at rest.

A ray pointing away from the object never meets it; that is reported as
no interaction, not as an error.

Examples:
  minkowski light 0,0 --rest-x 5
  minkowski light 0,0 --rest-x -5 --direction left`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLight(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.RestX, "rest-x", 0, "position of the object at rest")
	cmd.Flags().StringVar(&opts.Direction, "direction", "right", "ray direction (right|left)")
	_ = cmd.MarkFlagRequired("rest-x")

	return cmd
}

func runLight(opts *LightOptions, arg string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	start, err := parseEvent(arg)
	if err != nil {
		return argError(f, err)
	}
	dir, err := parseDirection(opts.Direction)
	if err != nil {
		return argError(f, err)
	}

	in, err := spacetime.LightVsRest(start, opts.RestX, dir, opts.lightSpeed())
	if err != nil {
		return engineError(f, err)
	}

	result := LightResult{Start: start, RestX: opts.RestX, Met: in.Met}
	if in.Met {
		result.Event = &in.Event
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	if in.Met {
		fmt.Fprintf(f.Writer, "Photon/rest interaction: %s\n", in.Event)
		return nil
	}
	fmt.Fprintln(f.Writer, "Photon/rest interaction: none")
	return nil
}
