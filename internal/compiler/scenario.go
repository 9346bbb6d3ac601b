package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/minkowski/internal/harness"
)

//go:embed schema.cue
var schemaSource string

// SchemaFilename is the file name CUE reports for positions in the schema.
const SchemaFilename = "minkowski/schema.cue"

// Schema returns the #Scenario definition compiled in ctx.
func Schema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename(SchemaFilename))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Scenario")), nil
}

// CompileScenario unifies a CUE value with #Scenario and decodes it into a
// harness scenario. Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value should be the scenario struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`scenario: { name: "x", ... }`)
//	s, err := CompileScenario(v.LookupPath(cue.ParsePath("scenario")))
//
// Schema violations are returned as *CompileError with the offending
// position. The decoded scenario is then checked with harness.Validate for
// the cross-references CUE cannot express (unknown labels, duplicates).
func CompileScenario(v cue.Value) (*harness.Scenario, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   "scenario",
			Message: "scenario value does not exist",
		}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	schema, err := Schema(v.Context())
	if err != nil {
		return nil, err
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	var scenario harness.Scenario
	if err := unified.Decode(&scenario); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	if err := harness.Validate(&scenario); err != nil {
		return nil, &CompileError{
			Field:   "scenario",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return &scenario, nil
}

// CompileBytes compiles CUE source whose top level is a scenario.
func CompileBytes(filename string, src []byte) (*harness.Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}
	return CompileScenario(v)
}

// CompileFile reads and compiles a .cue scenario file.
func CompileFile(path string) (*harness.Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return CompileBytes(path, src)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts a CUE error into a *CompileError. The first error
// carries the report; fallback positions it when CUE recorded no position.
func formatCUEError(err error, fallback token.Pos) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error(), Pos: fallback}
	}

	firstErr := errs[0]
	pos := fallback
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		pos = positions[0]
	}
	return &CompileError{
		Field:   "cue",
		Message: firstErr.Error(),
		Pos:     pos,
	}
}
