package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_PassingScenarios(t *testing.T) {
	out, _, err := execute(t, "test", filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ delay_slot\n")
	assert.Contains(t, out, "✓ delay_slot_trivial\n")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	out, _, err := execute(t, "test", filepath.Join("testdata", "scenarios"), "--filter", "*trivial")
	require.NoError(t, err)
	assert.NotContains(t, out, "✓ delay_slot\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTest_FailingScenario(t *testing.T) {
	out, _, err := execute(t, "test", filepath.Join("testdata", "failing", "adjacent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ adjacent")
	assert.Contains(t, out, "s not directly after l")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTest_FailingScenarioJSON(t *testing.T) {
	out, _, err := execute(t, "test", "--format", "json", filepath.Join("testdata", "failing"))
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
}

func TestTest_GoldenMismatchAndUpdate(t *testing.T) {
	dir := t.TempDir()
	routines := filepath.Join(dir, "routines")
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(routines, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(scenarios, "golden"), 0o755))

	data, err := os.ReadFile(routinePath("delay_slot.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(routines, "delay_slot.yaml"), data, 0o644))
	data, err = os.ReadFile(filepath.Join("testdata", "scenarios", "delay_slot.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "delay_slot.yaml"), data, 0o644))

	golden := filepath.Join(scenarios, "golden", "delay_slot.golden")
	require.NoError(t, os.WriteFile(golden, []byte("stale"), 0o644))

	out, _, err := execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "schedule does not match golden file")

	out, _, err = execute(t, "test", scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ delay_slot (golden updated)")

	updated, err := os.ReadFile(golden)
	require.NoError(t, err)
	expected, err := os.ReadFile(filepath.Join("testdata", "scenarios", "golden", "delay_slot.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(updated))

	_, _, err = execute(t, "test", scenarios)
	require.NoError(t, err)
}

func TestTest_NoScenarios(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTest_MissingPath(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTest_LoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("a", "b", "golden", "c.golden"),
		goldenFilePath(filepath.Join("a", "b", "c.yaml")))
}
