package sparc

import (
	"log/slog"

	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/trace"
)

// Selection is the outcome of one selection step.
type Selection struct {
	// Node is the chosen ready node.
	Node *ir.Node

	// Hazards lists every hazard detected against any ready node, in ready
	// set order. Empty when the ready set had a single member.
	Hazards []trace.Hazard

	// Fallback is set when the first ready node was taken because no
	// hazard-free candidate was available or the policy ignores hazards.
	Fallback bool
}

// Choose picks the next node to issue from ready, which must be non-empty
// and ordered by ascending node ID. It does not update h.
//
// A sole candidate is taken without evaluating hazards. Otherwise every
// candidate is checked against all three hazards. Under PolicyFilter the
// first hazard-free candidate wins; under PolicyObserve hazards are only
// reported and the first candidate is always taken.
func Choose(ready []*ir.Node, h *HazardState, policy config.Policy) Selection {
	if len(ready) == 1 {
		return Selection{Node: ready[0]}
	}

	var sel Selection
	for _, n := range ready {
		kinds := h.Hazards(n)
		for _, k := range kinds {
			sel.Hazards = append(sel.Hazards, trace.Hazard{Node: n.ID, Kind: k})
		}
		if sel.Node == nil && len(kinds) == 0 && policy != config.PolicyObserve {
			sel.Node = n
		}
	}
	if sel.Node == nil {
		sel.Node = ready[0]
		sel.Fallback = true
	}
	return sel
}

// selector couples Choose with the session's hazard trackers, logging and
// trace recording.
type selector struct {
	logger   *slog.Logger
	recorder trace.Recorder
	policy   config.Policy
	hazards  *HazardState
}

// next chooses from ready, records the decision and updates the trackers.
func (s *selector) next(b *ir.Block, ready []*ir.Node) *ir.Node {
	ids := make([]int64, len(ready))
	for i, n := range ready {
		ids[i] = n.ID
	}
	s.logger.Debug("ready set", "block", b.ID, "size", len(ready), "nodes", ids)

	sel := Choose(ready, s.hazards, s.policy)
	for _, hz := range sel.Hazards {
		s.logger.Debug(hazardMessage(hz.Kind), "block", b.ID, "node", hz.Node)
	}
	if sel.Fallback && len(sel.Hazards) > 0 {
		s.logger.Debug("no hazard-free candidate", "block", b.ID, "chosen", sel.Node.ID)
	}

	s.recorder.Decide(trace.Decision{
		Block:    b.ID,
		Ready:    ids,
		Hazards:  sel.Hazards,
		Chosen:   sel.Node.ID,
		Fallback: sel.Fallback,
	})
	s.hazards.RecordSelection(sel.Node)
	return sel.Node
}

func hazardMessage(k trace.HazardKind) string {
	switch k {
	case trace.HazardLoad:
		return "load dependency found"
	case trace.HazardMulDiv:
		return "mul/div dependency found"
	case trace.HazardBranch:
		return "branch condition found"
	default:
		return "hazard found"
	}
}
