package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minkowski/internal/harness"
)

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestCompileCommand_CUEToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "head_on.json")

	out, err := executeCommand(t, "compile", filepath.Join(scenarioDir, "head_on.cue"), "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled head_on")
	assert.Contains(t, out, "Wrote scenario JSON to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var s harness.Scenario
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "head_on", s.Name)
	assert.Len(t, s.WorldLines, 2)
	assert.Len(t, s.NullLines, 2)

	// The written JSON is itself a valid scenario.
	require.NoError(t, harness.Validate(&s))
}

func TestCompileCommand_YAMLAsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.yaml", passingScenario)

	out, err := executeCommand(t, "compile", path, "--format", "json")
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "tiny", data["name"])
}

func TestCompileCommand_SchemaError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", `
name:        "bad"
description: "light speed must be positive"
light_speed: -1
queries: [{name: "q", op: "classify", from: "o", to: "o"}]
events: [{label: "o", t: 0, x: 0}]
`)

	out, err := executeCommand(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeLoadFailed)
}

func TestCompileCommand_MissingFile(t *testing.T) {
	out, err := executeCommand(t, "compile", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}
