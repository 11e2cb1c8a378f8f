package sparc

import (
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/trace"
)

// HazardState tracks, for one scheduling session, the most recent node of
// each hazard-relevant class. Each field is nil or a single node: the hazard
// window is exactly the next issue slot.
type HazardState struct {
	// LastLoad is the node just scheduled if it was a load.
	LastLoad *ir.Node

	// LastMulDiv is the node just scheduled if it was a multiply/divide.
	LastMulDiv *ir.Node

	// LastBranchCondition is the compare feeding the current block's
	// conditional branch. Set once per block.
	LastBranchCondition *ir.Node
}

// Reset clears every tracker.
func (h *HazardState) Reset() {
	*h = HazardState{}
}

// RecordSelection updates the load and multiply/divide trackers after n was
// chosen. Both are assigned on every call, so a node of neither class
// clears both.
func (h *HazardState) RecordSelection(n *ir.Node) {
	h.LastLoad = nil
	if n.Op.IsLoad() {
		h.LastLoad = n
	}
	h.LastMulDiv = nil
	if n.Op.IsMulDiv() {
		h.LastMulDiv = n
	}
}

// HasLoadHazard reports whether n reads the result of LastLoad, directly or
// through one projection. The value operand of a store (position 0) is not
// checked: only address registers are needed in the slot after a load.
func (h *HazardState) HasLoadHazard(n *ir.Node) bool {
	if h.LastLoad == nil {
		return false
	}
	for i, pred := range n.In {
		if i == 0 && n.Op.IsStore() {
			continue
		}
		if pred == h.LastLoad {
			return true
		}
		if !pred.Op.IsProj() {
			continue
		}
		for _, pred2 := range pred.In {
			if pred2 == h.LastLoad {
				return true
			}
		}
	}
	return false
}

// HasMulDivHazard reports whether n reads LastMulDiv directly, with the
// same store value exclusion as HasLoadHazard.
func (h *HazardState) HasMulDivHazard(n *ir.Node) bool {
	if h.LastMulDiv == nil {
		return false
	}
	for i, pred := range n.In {
		if i == 0 && n.Op.IsStore() {
			continue
		}
		if pred == h.LastMulDiv {
			return true
		}
	}
	return false
}

// HasBranchHazard reports whether n is the compare feeding the block's
// conditional branch, which must not end up in the delay slot.
func (h *HazardState) HasBranchHazard(n *ir.Node) bool {
	return h.LastBranchCondition != nil && n == h.LastBranchCondition
}

// Hazards evaluates all three checks against n, in the order load, branch,
// multiply/divide.
func (h *HazardState) Hazards(n *ir.Node) []trace.HazardKind {
	var kinds []trace.HazardKind
	if h.HasLoadHazard(n) {
		kinds = append(kinds, trace.HazardLoad)
	}
	if h.HasBranchHazard(n) {
		kinds = append(kinds, trace.HazardBranch)
	}
	if h.HasMulDivHazard(n) {
		kinds = append(kinds, trace.HazardMulDiv)
	}
	return kinds
}
