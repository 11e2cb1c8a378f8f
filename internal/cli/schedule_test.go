package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routinePath(name string) string {
	return filepath.Join("testdata", "routines", name)
}

// execute runs the root command with args and returns stdout, stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type scheduleResponse struct {
	Status string         `json:"status"`
	Data   ScheduleResult `json:"data"`
	Error  *CLIError      `json:"error"`
}

func scheduleJSON(t *testing.T, args ...string) scheduleResponse {
	t.Helper()
	out, _, err := execute(t, append([]string{"schedule", "--format", "json"}, args...)...)
	require.NoError(t, err)
	var resp scheduleResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestSchedule_Text(t *testing.T) {
	out, _, err := execute(t, "schedule", routinePath("delay_slot.yaml"))
	require.NoError(t, err)

	want := "routine delay_slot (sparc, policy filter)\n" +
		"  entry: k j\n" +
		"  body [cond c]: l a s c br\n" +
		"  else: r2\n" +
		"  then: r1\n" +
		"hazards: 4, fallbacks: 0\n"
	assert.Equal(t, want, out)
}

func TestSchedule_CUEMatchesYAML(t *testing.T) {
	yaml := scheduleJSON(t, routinePath("delay_slot.yaml"))
	cue := scheduleJSON(t, routinePath("delay_slot.cue"))
	assert.Equal(t, yaml.Data.Blocks, cue.Data.Blocks)
	assert.Equal(t, yaml.Data.RoutineHash, cue.Data.RoutineHash)
}

func TestSchedule_JSON(t *testing.T) {
	resp := scheduleJSON(t, routinePath("delay_slot.yaml"))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "delay_slot", resp.Data.Routine)
	assert.Equal(t, "sparc", resp.Data.Scheduler)
	assert.Equal(t, "filter", resp.Data.Policy)
	assert.NotEmpty(t, resp.Data.RoutineHash)
	assert.Empty(t, resp.Data.SessionID, "nothing stored without --db")

	require.Len(t, resp.Data.Blocks, 4)
	assert.Equal(t, ScheduledBlock{
		Block:           "body",
		BranchCondition: "c",
		Nodes:           []string{"l", "a", "s", "c", "br"},
	}, resp.Data.Blocks[1])
}

func TestSchedule_ObservePolicy(t *testing.T) {
	resp := scheduleJSON(t, routinePath("delay_slot.yaml"), "--policy", "observe")
	assert.Equal(t, "observe", resp.Data.Policy)
	assert.Equal(t, []string{"l", "s", "a", "c", "br"}, resp.Data.Blocks[1].Nodes)
	assert.Equal(t, 3, resp.Data.Fallbacks)
}

func TestSchedule_TrivialScheduler(t *testing.T) {
	resp := scheduleJSON(t, routinePath("delay_slot.yaml"), "--scheduler", "trivial")
	assert.Equal(t, "trivial", resp.Data.Scheduler)
	assert.Equal(t, []string{"l", "s", "a", "c", "br"}, resp.Data.Blocks[1].Nodes)
	assert.Empty(t, resp.Data.Blocks[1].BranchCondition)
	assert.Zero(t, resp.Data.Hazards)
}

func TestSchedule_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sched.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scheduler: sparc\npolicy: observe\nlog_level: error\n"), 0o644))

	resp := scheduleJSON(t, routinePath("delay_slot.yaml"), "--config", cfgPath)
	assert.Equal(t, "observe", resp.Data.Policy)

	// flags win over the file
	resp = scheduleJSON(t, routinePath("delay_slot.yaml"), "--config", cfgPath, "--policy", "filter")
	assert.Equal(t, "filter", resp.Data.Policy)
}

func TestSchedule_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sched.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("policy: greedy\n"), 0o644))

	_, _, err := execute(t, "schedule", routinePath("delay_slot.yaml"), "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeConfig)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "schedule", routinePath("delay_slot.yaml"), "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestSchedule_InvalidPolicyFlag(t *testing.T) {
	_, _, err := execute(t, "schedule", routinePath("delay_slot.yaml"), "--policy", "greedy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeConfig)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSchedule_UnknownScheduler(t *testing.T) {
	out, _, err := execute(t, "schedule", routinePath("delay_slot.yaml"), "--scheduler", "mips")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown scheduler "mips"`)
}

func TestSchedule_MissingRoutine(t *testing.T) {
	out, _, err := execute(t, "schedule", routinePath("nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "routine file not found")
}

func TestSchedule_CompileError(t *testing.T) {
	out, _, err := execute(t, "schedule", routinePath("bad_op.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCompile)
	assert.Contains(t, out, `blocks[0].nodes[0].op: unknown opcode "jmpl"`)
}

func TestSchedule_InternalError(t *testing.T) {
	out, _, err := execute(t, "schedule", "--format", "json", routinePath("not_compare.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, 1, strings.Count(err.Error(), "internal scheduler error"), err.Error())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInternal, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "NOT_COMPARE")
	assert.Nil(t, resp.Error.Details)
}

func TestSchedule_InternalErrorText(t *testing.T) {
	out, _, err := execute(t, "schedule", routinePath("not_compare.yaml"))
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(out, "internal scheduler error"), out)
	assert.True(t, strings.HasPrefix(out, "Error [E_INTERNAL]: internal scheduler error: NOT_COMPARE: "), out)
}

func TestSchedule_RejectsInvalidRoutine(t *testing.T) {
	tests := []struct {
		routine string
		code    string
		line    string
	}{
		{"cycle.yaml", "E201", "✗ [E201] block.entry: dependency cycle in block entry: a -> b -> a"},
		{"diamond.yaml", "E206", "✗ [E206] block.join.preds: critical edge f from block entry"},
		{"misplaced.yaml", "E207", "✗ [E207] block.then.t: projection of br must be declared in block entry"},
	}
	for _, tt := range tests {
		t.Run(tt.routine, func(t *testing.T) {
			out, _, err := execute(t, "schedule", routinePath(tt.routine))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, err.Error(), ErrCodeValidation)
			assert.NotContains(t, out, ErrCodeInternal)
			assert.NotContains(t, out, "hazards:")
			assert.Contains(t, out, tt.line)
		})
	}
}

func TestSchedule_InvalidRoutineJSON(t *testing.T) {
	out, _, err := execute(t, "schedule", "--format", "json", routinePath("diamond.yaml"))
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "E206", resp.Data.Errors[0].Code)
}

func TestSchedule_StoresTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")

	resp := scheduleJSON(t, routinePath("delay_slot.yaml"), "--db", db)
	require.NotEmpty(t, resp.Data.SessionID)

	out, _, err := execute(t, "schedule", routinePath("delay_slot.yaml"), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "session: ")

	list, _, err := execute(t, "trace", "--db", db, "--format", "json")
	require.NoError(t, err)
	var listResp struct {
		Data struct {
			Sessions []struct {
				ID string `json:"id"`
			} `json:"sessions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(list), &listResp))
	require.Len(t, listResp.Data.Sessions, 2)
	assert.Equal(t, resp.Data.SessionID, listResp.Data.Sessions[0].ID)
}

func TestSchedule_VerboseLogsDecisions(t *testing.T) {
	_, errOut, err := execute(t, "schedule", "-v", routinePath("delay_slot.yaml"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "Loaded routine delay_slot: 4 blocks, 12 nodes")
	assert.Contains(t, errOut, "PICK 6 from [5 6 7] hazards [5:load 7:branch]")
	assert.Contains(t, errOut, "load dependency found")
}
