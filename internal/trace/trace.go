// Package trace records the diagnostic observations a scheduler makes while
// it works: which blocks it entered, which nodes were ready at each step,
// which hazards were detected against which nodes, and what was chosen.
//
// Observations are stamped with a logical sequence number, never with
// wall-clock time, so the same routine scheduled twice produces an
// identical trace.
package trace

// HazardKind names the pipeline hazard class a candidate would violate.
type HazardKind string

const (
	// HazardLoad: the candidate reads the result of the load issued in the
	// previous slot.
	HazardLoad HazardKind = "load"

	// HazardMulDiv: the candidate reads the result of the multiply/divide
	// issued in the previous slot.
	HazardMulDiv HazardKind = "muldiv"

	// HazardBranch: the candidate is the compare feeding the block's
	// conditional branch.
	HazardBranch HazardKind = "branch"
)

// Hazard is one detected hazard against one ready node.
type Hazard struct {
	Node int64      `json:"node"`
	Kind HazardKind `json:"kind"`
}

// BlockStart is recorded when a scheduler begins a block.
type BlockStart struct {
	Seq   int64 `json:"seq"`
	Block int64 `json:"block"`

	// BranchCondition is the ID of the compare feeding the block's
	// conditional branch, 0 when the block has none.
	BranchCondition int64 `json:"branch_condition,omitempty"`
}

// Decision is one selection step.
type Decision struct {
	Seq     int64    `json:"seq"`
	Block   int64    `json:"block"`
	Ready   []int64  `json:"ready"`
	Hazards []Hazard `json:"hazards,omitempty"`
	Chosen  int64    `json:"chosen"`

	// Fallback is set when every ready node carried a hazard (or the policy
	// ignores hazards) and the first ready node was taken.
	Fallback bool `json:"fallback,omitempty"`
}

// Session is the complete trace of scheduling one routine.
type Session struct {
	ID          string       `json:"id"`
	Routine     string       `json:"routine"`
	RoutineHash string       `json:"routine_hash"`
	Scheduler   string       `json:"scheduler"`
	Policy      string       `json:"policy,omitempty"`
	Blocks      []BlockStart `json:"blocks"`
	Decisions   []Decision   `json:"decisions"`
}

// HazardCount returns the number of hazards detected across all decisions.
func (s *Session) HazardCount() int {
	n := 0
	for _, d := range s.Decisions {
		n += len(d.Hazards)
	}
	return n
}

// FallbackCount returns the number of decisions that fell back to the first
// ready node.
func (s *Session) FallbackCount() int {
	n := 0
	for _, d := range s.Decisions {
		if d.Fallback {
			n++
		}
	}
	return n
}

// Recorder receives observations as they happen. Implementations assign Seq.
type Recorder interface {
	BeginBlock(b BlockStart)
	Decide(d Decision)
}

// Discard is a Recorder that drops everything.
type Discard struct{}

func (Discard) BeginBlock(BlockStart) {}
func (Discard) Decide(Decision)       {}
