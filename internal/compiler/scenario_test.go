package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/harness"
)

func compileScenario(t *testing.T, src string) (*harness.Scenario, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileScenario(v.LookupPath(cue.ParsePath("scenario")))
}

func TestCompileScenarioBasic(t *testing.T) {
	s, err := compileScenario(t, `
		scenario: {
			name:        "head_on"
			description: "Two bodies meeting at the origin"
			seed:        11
			events: [{label: "origin", t: 0, x: 0}]
			world_lines: [
				{label: "a", x0: -1, v: 1},
				{label: "b", x0: 1, v: -1},
			]
			null_lines: [{label: "photon", from: "origin", direction: -1}]
			queries: [
				{name: "meet", op: "intersect", lines: ["a", "b"], expect: {outcome: "crossing", t: 1, x: 0}},
				{
					name:  "close"
					op:    "conditional"
					lines: ["a", "b"]
					grid: {start: 0, end: 2, step: 0.5, boundary: "exclusive"}
					when: {type: "separation_below", value: 0.5}
				},
				{name: "burst", op: "spontaneous", lines: ["photon"], probability: 0.5, grid: {start: 0, end: 1, step: 0.1}},
			]
			assertions: [{type: "event_count", query: "close", count: 1}]
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, "head_on", s.Name)
	require.NotNil(t, s.Seed)
	assert.Equal(t, int64(11), *s.Seed)
	assert.Len(t, s.Events, 1)
	assert.Len(t, s.WorldLines, 2)
	assert.Equal(t, -1.0, s.WorldLines[0].X0)
	require.Len(t, s.NullLines, 1)
	assert.Equal(t, -1, s.NullLines[0].Direction)

	require.Len(t, s.Queries, 3)
	require.NotNil(t, s.Queries[0].Expect)
	require.NotNil(t, s.Queries[0].Expect.T)
	assert.Equal(t, 1.0, *s.Queries[0].Expect.T)

	close := s.Queries[1]
	require.NotNil(t, close.Grid)
	assert.Equal(t, engine.Grid{Start: 0, End: 2, Step: 0.5, Boundary: engine.Exclusive}, *close.Grid)
	require.NotNil(t, close.When)
	assert.Equal(t, harness.ConditionSeparationBelow, close.When.Type)
	assert.Equal(t, 0.5, close.When.Value)

	require.NotNil(t, s.Queries[2].Probability)
	assert.Equal(t, 0.5, *s.Queries[2].Probability)
	assert.Equal(t, 1, s.Assertions[0].Count)
}

func TestCompileScenarioRunsInHarness(t *testing.T) {
	s, err := compileScenario(t, `
		scenario: {
			name:        "compiled"
			description: "Compiled scenarios run like YAML ones"
			world_lines: [{label: "a", x0: 0, v: 0.5}, {label: "b", x0: 3, v: -1}]
			queries: [{name: "meet", op: "intersect", lines: ["a", "b"], expect: {t: 2, x: 1}}]
		}
	`)
	require.NoError(t, err)

	result, err := harness.Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestCompileScenarioSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
	}{
		{
			name: "probability above one",
			src: `scenario: {
				name: "p", description: "d"
				world_lines: [{label: "a", x0: 0, v: 0}]
				queries: [{name: "q", op: "spontaneous", lines: ["a"], probability: 1.5, grid: {start: 0, end: 1, step: 1}}]
			}`,
			contains: "out of bound",
		},
		{
			name: "negative light speed",
			src: `scenario: {
				name: "c", description: "d", light_speed: -2
				events: [{label: "o", t: 0, x: 0}]
				queries: [{name: "q", op: "classify", from: "o", to: "o"}]
			}`,
			contains: "out of bound",
		},
		{
			name: "unknown field",
			src: `scenario: {
				name: "u", description: "d", colour: "red"
				events: [{label: "o", t: 0, x: 0}]
				queries: [{name: "q", op: "classify", from: "o", to: "o"}]
			}`,
			contains: "not allowed",
		},
		{
			name: "zero step",
			src: `scenario: {
				name: "z", description: "d"
				world_lines: [{label: "a", x0: 0, v: 0}]
				queries: [{name: "q", op: "spontaneous", lines: ["a"], probability: 1, grid: {start: 0, end: 1, step: 0}}]
			}`,
			contains: "step",
		},
		{
			name: "bad direction",
			src: `scenario: {
				name: "d", description: "d"
				events: [{label: "o", t: 0, x: 0}]
				null_lines: [{label: "ray", from: "o", direction: 2}]
				queries: [{name: "q", op: "classify", from: "o", to: "o"}]
			}`,
			contains: "direction",
		},
		{
			name: "no queries",
			src: `scenario: {
				name: "n", description: "d"
				queries: []
			}`,
			contains: "queries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileScenario(t, tt.src)
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr), "error should be *CompileError, got %T", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCompileScenarioCrossReferenceErrors(t *testing.T) {
	_, err := compileScenario(t, `
		scenario: {
			name: "refs", description: "d"
			events: [{label: "o", t: 0, x: 0}]
			queries: [{name: "q", op: "classify", from: "o", to: "nowhere"}]
		}
	`)
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "scenario", compileErr.Field)
	assert.Contains(t, compileErr.Message, `unknown event "nowhere"`)
}

func TestCompileScenarioNonExistentPath(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`scenario: {name: "x"}`)
	require.NoError(t, v.Err())

	_, err := CompileScenario(v.LookupPath(cue.ParsePath("other")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCompileBytesInvalidSyntax(t *testing.T) {
	_, err := CompileBytes("broken.cue", []byte(`name: "x" this is not valid CUE`))
	require.Error(t, err)
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
name:        "from_file"
description: "Top-level scenario"
events: [{label: "o", t: 0, x: 0}, {label: "p", t: 1, x: 0.5}]
queries: [{name: "q", op: "classify", from: "o", to: "p", expect: interval: "timelike"}]
`), 0644))

	s, err := CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", s.Name)
	assert.Equal(t, "timelike", s.Queries[0].Expect.Interval)
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestCompileExampleScenario(t *testing.T) {
	s, err := CompileFile("../../testdata/scenarios/head_on.cue")
	require.NoError(t, err)

	result, err := harness.Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSchemaCompiles(t *testing.T) {
	schema, err := Schema(cuecontext.New())
	require.NoError(t, err)
	assert.True(t, schema.Exists())
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{
		Field:   "scenario",
		Message: "scenario value does not exist",
	}

	assert.Equal(t, "scenario: scenario value does not exist", err.Error())
}

func TestFormatCUEErrorWithoutPosition(t *testing.T) {
	var compileErr *CompileError

	err := formatCUEError(cueerrors.Newf(token.NoPos, "queries: incompatible list lengths"), token.NoPos)
	require.True(t, errors.As(err, &compileErr), "error should be *CompileError, got %T", err)
	assert.False(t, compileErr.Pos.IsValid())
	assert.Equal(t, "cue", compileErr.Field)
	assert.Contains(t, err.Error(), "incompatible list lengths")

	err = formatCUEError(fmt.Errorf("decode failed"), token.NoPos)
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "cue: decode failed", err.Error())

	assert.Nil(t, formatCUEError(nil, token.NoPos))
}
