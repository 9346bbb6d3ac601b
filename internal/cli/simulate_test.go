package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateCommand_CloseApproach(t *testing.T) {
	out, err := executeCommand(t, "simulate", "chaser:-3,0.8", "target:3,0",
		"--end", "10", "--step", "0.1", "--below", "0.5", "--label", "close-approach")
	require.NoError(t, err)
	assert.Contains(t, out, "Conditional close-approach samples: 13\n")
}

func TestSimulateCommand_WithinJSON(t *testing.T) {
	// x = 0.5t lies in [1, 2] for t in [2, 4].
	out, err := executeCommand(t, "simulate", "a:0,0.5",
		"--end", "4", "--step", "0.5", "--within", "1,2", "--format", "json")
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.NotEmpty(t, resp.RunID)
	assert.EqualValues(t, 5, data["count"])

	cond := data["condition"].(map[string]any)
	assert.Equal(t, "within", cond["type"])

	centroids := data["centroids"].([]any)
	require.Len(t, centroids, 5)
	first := centroids[0].(map[string]any)
	assert.InDelta(t, 2.0, first["t"], 1e-9)
	assert.InDelta(t, 1.0, first["x"], 1e-9)
	assert.Equal(t, "conditional", first["label"])

	samples := data["samples"].([]any)
	assert.EqualValues(t, 4, samples[0].(map[string]any)["step"])
}

func TestSimulateCommand_Above(t *testing.T) {
	// Spread |x_a - x_b| = 2t exceeds 3 only after t=1.5.
	out, err := executeCommand(t, "simulate", "a:0,1", "b:0,-1", "--end", "2", "--step", "1", "--above", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Conditional conditional samples: 1\n")
	assert.Contains(t, out, "conditional(t=2, x=0)")
}

func TestSimulateCommand_NoMatches(t *testing.T) {
	out, err := executeCommand(t, "simulate", "a:0,0", "b:10,0", "--end", "1", "--step", "1", "--below", "1", "--format", "json")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	assert.EqualValues(t, 0, data["count"])
	assert.Equal(t, []any{}, data["samples"])
}

func TestSimulateCommand_ConditionRequired(t *testing.T) {
	_, err := executeCommand(t, "simulate", "a:0,1")
	require.Error(t, err)
}

func TestSimulateCommand_ConditionsExclusive(t *testing.T) {
	_, err := executeCommand(t, "simulate", "a:0,1", "--below", "1", "--above", "2")
	require.Error(t, err)
}

func TestSimulateCommand_BadWithin(t *testing.T) {
	tests := []struct {
		name    string
		within  string
		wantErr string
	}{
		{"inverted", "2,1", "min 2 greater than max 1"},
		{"one value", "1", "want min,max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, "simulate", "a:0,1", "--within", tt.within)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantErr)
		})
	}
}

func TestSimulateCommand_NonFiniteLine(t *testing.T) {
	out, err := executeCommand(t, "simulate", "a:NaN,1", "--below", "1", "--format", "json")
	require.Error(t, err)

	resp, _ := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidConfig, resp.Error.Code)
}
