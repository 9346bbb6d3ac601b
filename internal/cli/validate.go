package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/minkowski/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat lint warnings as failures
}

// FileValidation holds the validation result of one scenario file.
type FileValidation struct {
	File     string                     `json:"file"`
	Name     string                     `json:"name,omitempty"`
	Valid    bool                       `json:"valid"`
	Error    string                     `json:"error,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// ValidationResult holds validation results for every file.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario-file>...",
		Short: "Validate scenarios without running them",
		Long: `Load scenario files and report structural errors and lint warnings.

Warnings (unused events, superluminal world lines, unchecked queries) do
not fail validation unless --strict is set.

Exit codes:
  0 - All files valid
  1 - A file failed to load, or has warnings under --strict`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}

	for _, file := range files {
		fv := FileValidation{File: file, Valid: true}
		scenario, err := LoadScenarioFile(file)
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
		} else {
			fv.Name = scenario.Name
			fv.Warnings = compiler.Lint(scenario)
			if opts.Strict && len(fv.Warnings) > 0 {
				fv.Valid = false
			}
		}
		f.VerboseLog("Validated %s: valid=%t warnings=%d", file, fv.Valid, len(fv.Warnings))
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if f.Format == "json" {
		status := "ok"
		if !result.Valid {
			status = "error"
		}
		if err := json.NewEncoder(f.Writer).Encode(CLIResponse{Status: status, Data: result}); err != nil {
			return err
		}
	} else {
		outputValidateText(f, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	for _, fv := range result.Files {
		mark := "✓"
		if !fv.Valid {
			mark = "✗"
		}
		fmt.Fprintf(f.Writer, "%s %s\n", mark, fv.File)
		if fv.Error != "" {
			fmt.Fprintf(f.Writer, "  %s\n", fv.Error)
		}
		for _, w := range fv.Warnings {
			fmt.Fprintf(f.Writer, "  %s\n", w.Error())
		}
	}
}
