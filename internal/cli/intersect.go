package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/spacetime"
)

// IntersectResult is the output of the intersect command.
type IntersectResult struct {
	Kind  string           `json:"kind"`
	Event *spacetime.Event `json:"event,omitempty"`
}

// NewIntersectCommand creates the intersect command.
func NewIntersectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "intersect <line> <line>",
		Short: "Find where two world lines meet",
		Long: `Intersect two straight world lines x(t) = x0 + v*(t - t0).

Lines are written [label:]x0,v[,t0]. The result is a crossing event,
parallel (never meet) or coincident (the same line).

Examples:
  minkowski intersect a:0,0.5 b:3,-0.5
  minkowski intersect rest:2,0 ship:0,0.4,1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntersect(rootOpts, args, cmd)
		},
	}
}

func runIntersect(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	lines, err := parseWorldLines(args)
	if err != nil {
		return argError(f, err)
	}
	for _, w := range lines {
		if err := w.Validate(); err != nil {
			return engineError(f, err)
		}
		if w.IsSuperluminal(opts.lightSpeed()) {
			opts.logger().Warn("world line exceeds light speed", "line", w.String(), "c", opts.lightSpeed())
		}
	}

	in := lines[0].Intersect(lines[1])
	result := IntersectResult{Kind: in.Kind.String()}
	if e, ok := in.Point(); ok {
		result.Event = &e
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	if result.Event != nil {
		fmt.Fprintf(f.Writer, "Intersection: %s at %s\n", result.Kind, result.Event)
		return nil
	}
	fmt.Fprintf(f.Writer, "Intersection: %s\n", result.Kind)
	return nil
}
