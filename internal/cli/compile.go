package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/harness"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <scenario-file>",
		Short: "Compile a scenario to JSON",
		Long: `Check a scenario file (CUE, YAML or TOML) and emit it as JSON.

CUE scenarios are unified with the built-in schema, so type errors are
reported with file positions before anything runs.

Examples:
  minkowski compile scenarios/head_on.cue
  minkowski compile scenarios/head_on.cue -o head_on.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenario, err := LoadScenarioFile(path)
	if err != nil {
		return loadError(f, err)
	}
	f.VerboseLog("Compiled %s: %d event(s), %d world line(s), %d null line(s)",
		scenario.Name, len(scenario.Events), len(scenario.WorldLines), len(scenario.NullLines))

	if opts.Output != "" {
		if err := writeScenarioJSON(scenario, opts.Output); err != nil {
			_ = f.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	if f.Format == "json" {
		return f.Success(scenario)
	}
	fmt.Fprintf(f.Writer, "✓ Compiled %s: %d quer%s, %d assertion(s)\n",
		scenario.Name, len(scenario.Queries), plural(len(scenario.Queries), "y", "ies"), len(scenario.Assertions))
	if opts.Output != "" {
		fmt.Fprintf(f.Writer, "Wrote scenario JSON to %s\n", opts.Output)
	}
	return nil
}

func writeScenarioJSON(s *harness.Scenario, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// loadError reports a LoadScenarioFile failure with its code.
func loadError(f *OutputFormatter, err error) error {
	code := ErrCodeLoadFailed
	var le *LoadError
	if errors.As(err, &le) {
		code = le.Code
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load scenario", err)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
