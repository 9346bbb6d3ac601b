package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// demoSeed seeds the spontaneous run when no --seed is configured.
const demoSeed = 42

// DemoResult is the output of the demo command.
type DemoResult struct {
	Interval          spacetime.IntervalType `json:"interval"`
	Photon            LightResult            `json:"photon"`
	SpontaneousEvents []spacetime.Event      `json:"spontaneous_events"`
	CloseApproach     []spacetime.Event      `json:"close_approach"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a short tour of the engine",
		Long: `Classify an interval, send a photon to an object at rest, emit
spontaneous events along a moving ship and record a chaser's close
approach to a target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, cmd)
		},
	}
}

func runDemo(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	c := opts.lightSpeed()

	a := spacetime.Event{T: 0, X: 0, Label: "A"}
	b := spacetime.Event{T: 2, X: 1, Label: "B"}
	if err := spacetime.ValidateLightSpeed(c); err != nil {
		return engineError(f, err)
	}
	result := DemoResult{Interval: spacetime.ClassifyInterval(a, b, c)}

	origin := spacetime.NewEvent(0, 0)
	hit, err := spacetime.LightVsRest(origin, 5, spacetime.Rightward, c)
	if err != nil {
		return engineError(f, err)
	}
	result.Photon = LightResult{Start: origin, RestX: 5, Met: hit.Met}
	if hit.Met {
		result.Photon.Event = &hit.Event
	}

	runID := opts.newRunID()
	stepper := opts.stepper(runID)

	seed := opts.Seed
	if seed == 0 {
		seed = demoSeed
	}
	ship := spacetime.WorldLine{X0: 0, V: 0.4, Label: "ship"}
	result.SpontaneousEvents, err = stepper.Spontaneous(ship, engine.NewGrid(0, 10, 0.5), 0.2, engine.NewSeededSource(seed))
	if err != nil {
		return engineError(f, err)
	}

	chaser := spacetime.WorldLine{X0: -3, V: 0.8, Label: "chaser"}
	target := spacetime.WorldLine{X0: 3, V: 0, Label: "target"}
	closeApproach := func(_ float64, events []spacetime.Event) bool {
		return math.Abs(events[0].X-events[1].X) < 0.5
	}
	samples, err := stepper.Conditional([]spacetime.WorldLine{chaser, target}, engine.NewGrid(0, 10, 0.1), closeApproach)
	if err != nil {
		return engineError(f, err)
	}
	result.CloseApproach = engine.Centroids(samples, "close-approach")

	if result.SpontaneousEvents == nil {
		result.SpontaneousEvents = []spacetime.Event{}
	}

	if f.Format == "json" {
		return f.SuccessWithRunID(runID, result)
	}
	w := f.Writer
	fmt.Fprintf(w, "Interval A->B: %s\n", result.Interval)
	if hit.Met {
		fmt.Fprintf(w, "Photon/rest interaction: %s\n", hit.Event)
	} else {
		fmt.Fprintln(w, "Photon/rest interaction: none")
	}
	fmt.Fprintf(w, "Spontaneous events on ship world line: %d\n", len(result.SpontaneousEvents))
	fmt.Fprintf(w, "Conditional close-approach samples: %d\n", len(result.CloseApproach))
	return nil
}
