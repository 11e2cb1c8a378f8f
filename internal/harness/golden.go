package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sparcsched/internal/ir"
)

// ScheduleSnapshot captures the outcome of a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type ScheduleSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Routine      string       `json:"routine"`
	Scheduler    string       `json:"scheduler"`
	Policy       string       `json:"policy,omitempty"`
	Blocks       []BlockOrder `json:"blocks"`
	Hazards      int          `json:"hazards"`
	Fallbacks    int          `json:"fallbacks"`
}

// NewScheduleSnapshot builds the snapshot of result under name.
func NewScheduleSnapshot(name string, result *Result) ScheduleSnapshot {
	return ScheduleSnapshot{
		ScenarioName: name,
		Routine:      result.Session.Routine,
		Scheduler:    result.Session.Scheduler,
		Policy:       result.Session.Policy,
		Blocks:       result.Blocks,
		Hazards:      result.Session.HazardCount(),
		Fallbacks:    result.Session.FallbackCount(),
	}
}

// toCanonicalMap converts the snapshot to a map[string]any, since
// ir.MarshalCanonical only handles primitives, slices and maps.
func (s *ScheduleSnapshot) toCanonicalMap() map[string]any {
	blocks := make([]any, len(s.Blocks))
	for i, b := range s.Blocks {
		nodes := make([]any, len(b.Nodes))
		for j, n := range b.Nodes {
			nodes[j] = n
		}
		blocks[i] = map[string]any{
			"block": b.Block,
			"nodes": nodes,
		}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"routine":       s.Routine,
		"scheduler":     s.Scheduler,
		"blocks":        blocks,
		"hazards":       s.Hazards,
		"fallbacks":     s.Fallbacks,
	}
	if s.Policy != "" {
		result["policy"] = s.Policy
	}
	return result
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *ScheduleSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result so callers can inspect assertion failures. A
// snapshot mismatch fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := NewScheduleSnapshot(name, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
