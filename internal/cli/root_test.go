package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sparcsched", cmd.Use)
	assert.Contains(t, cmd.Long, "delay slot")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"schedule", "validate", "trace", "schedulers", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "", logFlag.DefValue)
}

func TestScheduleCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	scheduleCmd, _, err := cmd.Find([]string{"schedule"})
	require.NoError(t, err)

	for flag, def := range map[string]string{
		"scheduler":       "sparc",
		"policy":          "filter",
		"reset-per-block": "false",
		"db":              "",
		"config":          "",
	} {
		f := scheduleCmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag %s", flag)
		assert.Equal(t, def, f.DefValue, "flag %s", flag)
	}
}

func TestTraceCommandRequiresDB(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"trace"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db" not set`)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"schedulers", "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSchedulersCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"schedulers"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "sparc\ntrivial\n", buf.String())
}

func TestSchedulersCommandJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"schedulers", "--format", "json"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Schedulers []string `json:"schedulers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"sparc", "trivial"}, resp.Data.Schedulers)
}

func TestExitError(t *testing.T) {
	base := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to store trace", base)
	assert.Equal(t, "failed to store trace: disk full", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
	assert.Equal(t, ExitFailure, GetExitCode(base))
}

func TestOutputFormatter_Text(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut, Verbose: true}

	require.NoError(t, f.Success("done"))
	require.NoError(t, f.Error(ErrCodeStore, "broken", "details here"))
	f.VerboseLog("step %d", 1)

	assert.Equal(t, "done\nError [E_STORE]: broken\nDetails: details here\n", out.String())
	assert.Equal(t, "step 1\n", errOut.String())
}

func TestOutputFormatter_FailJSON(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out}

	err := f.Fail(ExitFailure, ErrCodeInternal, "bad shape", errors.New("NOT_COMPARE"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "[E_INTERNAL] bad shape")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInternal, resp.Error.Code)
	assert.Equal(t, "NOT_COMPARE", resp.Error.Details)
}

func TestOutputFormatter_VerboseOff(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out}
	f.VerboseLog("hidden")
	assert.Empty(t, out.String())
}
