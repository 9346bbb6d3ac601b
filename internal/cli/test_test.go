package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: tiny
description: One classify query that holds
events:
  - { label: o, t: 0, x: 0 }
  - { label: p, t: 2, x: 1 }
queries:
  - name: sep
    op: classify
    from: o
    to: p
    expect: { interval: timelike }
`

const failingScenario = `
name: wrong
description: Expects the wrong interval
events:
  - { label: o, t: 0, x: 0 }
  - { label: p, t: 2, x: 1 }
queries:
  - name: sep
    op: classify
    from: o
    to: p
    expect: { interval: spacelike }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTestCommand_ShippedScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", scenarioDir)
	require.NoError(t, err, "output:\n%s", out)

	assert.Contains(t, out, "✓ light_cone")
	assert.Contains(t, out, "✓ head_on")
	assert.Contains(t, out, "✓ twin_paths")
	assert.Contains(t, out, "Test Summary: 8 passed, 0 failed, 8 total")
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := executeCommand(t, "test", scenarioDir, "--filter", "light*", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ tiny")
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "expected interval spacelike")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: [unclosed")

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_GoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)

	out, err := executeCommand(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tiny (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "tiny.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"tiny"`)

	// The golden directory is not scanned for scenarios.
	out, err = executeCommand(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"tiny","trace":[]}`), 0644))
	out, err = executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	_, err := executeCommand(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "head_on.golden"), goldenFilePath(filepath.Join("scenarios", "head_on.cue")))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.toml", "")
	writeFile(t, dir, "c.cue", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, "golden/a.golden", "")
	writeFile(t, dir, "nested/d.yml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, rel)
	}
	assert.ElementsMatch(t, []string{"a.yaml", "b.toml", "c.cue", filepath.Join("nested", "d.yml")}, names)

	files, err = findScenarioFiles(dir, "[ab]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
