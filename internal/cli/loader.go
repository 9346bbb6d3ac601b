package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/minkowski/internal/compiler"
	"github.com/roach88/minkowski/internal/harness"
)

// scenarioExts lists the file extensions the CLI loads as scenarios.
var scenarioExts = []string{".yaml", ".yml", ".toml", ".cue"}

// LoadError reports a scenario file that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadScenarioFile loads a scenario from YAML, TOML or CUE. CUE files are
// checked against the embedded schema first.
func LoadScenarioFile(path string) (*harness.Scenario, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found", Err: err}
	}

	var (
		s   *harness.Scenario
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		s, err = compiler.CompileFile(path)
	} else {
		s, err = harness.LoadScenario(path)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: err.Error(), Err: err}
	}
	return s, nil
}

// isScenarioFile reports whether path has a scenario extension.
func isScenarioFile(path string) bool {
	return slices.Contains(scenarioExts, strings.ToLower(filepath.Ext(path)))
}

// findScenarioFiles finds all scenario files under dir, skipping golden
// directories. filter is a glob matched against the file name without its
// extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isScenarioFile(path) {
			return nil
		}

		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
