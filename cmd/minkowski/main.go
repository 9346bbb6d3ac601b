// Command minkowski classifies intervals, intersects world lines and runs
// simple simulations in 1+1D Minkowski spacetime.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/minkowski/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
