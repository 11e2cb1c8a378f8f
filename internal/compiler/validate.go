package compiler

import (
	"fmt"

	"github.com/roach88/sparcsched/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrDependencyCycle     = "E201" // in-block dependency cycle
	ErrMultipleControlFlow = "E202" // more than one control-flow node in a block
	ErrUnreachableBlock    = "E203" // block not reachable from the entry
	ErrControlFlowOperand  = "E204" // a non-projection reads a control-flow node
	ErrEdgeNotControl      = "E205" // block edge produced by a non-control node
	ErrCriticalEdge        = "E206" // edge from a multi-exit block into a merge block
	ErrDetachedEdge        = "E207" // bicc projection outside the branching block
)

// ValidationError represents a structural problem in a compiled routine.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled routine for structure the scheduler cannot
// handle, or that suggests a mistake in the description. Returns every
// problem found (does not fail fast); nil means the routine is clean.
func Validate(r *ir.Routine) []ValidationError {
	var errs []ValidationError

	for _, c := range AnalyzeCycles(r) {
		errs = append(errs, ValidationError{
			Field:   "block." + c.Block,
			Message: c.Message,
			Code:    ErrDependencyCycle,
		})
	}

	reachable := reachableBlocks(r)
	for _, b := range r.Blocks {
		field := "block." + b.Name

		if !reachable[b] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "block is not reachable from the entry",
				Code:    ErrUnreachableBlock,
			})
		}

		var ctrl []*ir.Node
		for _, n := range b.Nodes {
			if n.Op.IsControlFlow() {
				ctrl = append(ctrl, n)
			}
			if n.Op.IsProj() {
				if br := branchOf(n); br != nil && br.Block != b {
					errs = append(errs, ValidationError{
						Field:   field + "." + nodeLabel(n),
						Message: fmt.Sprintf("projection of %s must be declared in block %s", nodeLabel(br), blockName(br.Block)),
						Code:    ErrDetachedEdge,
					})
				}
				continue
			}
			for _, op := range n.In {
				if op.Op.IsControlFlow() {
					errs = append(errs, ValidationError{
						Field:   field + "." + nodeLabel(n),
						Message: fmt.Sprintf("reads control-flow node %s", nodeLabel(op)),
						Code:    ErrControlFlowOperand,
					})
				}
			}
		}
		if len(ctrl) > 1 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%d control-flow nodes, at most one allowed", len(ctrl)),
				Code:    ErrMultipleControlFlow,
			})
		}

		for _, pred := range b.CfgPreds {
			if !isControlEdge(pred) {
				errs = append(errs, ValidationError{
					Field:   field + ".preds",
					Message: fmt.Sprintf("edge produced by %s, expected ba or a projection of bicc", nodeLabel(pred)),
					Code:    ErrEdgeNotControl,
				})
			}
			// The branch-condition lookup enters a successor through its
			// first edge, so a successor of a two-way block must have no
			// other predecessor.
			if len(b.CfgPreds) > 1 && pred.Block != nil && pred.Block.NumCfgOuts() > 1 {
				errs = append(errs, ValidationError{
					Field:   field + ".preds",
					Message: fmt.Sprintf("critical edge %s from block %s; route it through a block ending in ba", nodeLabel(pred), blockName(pred.Block)),
					Code:    ErrCriticalEdge,
				})
			}
		}
	}
	return errs
}

func isControlEdge(n *ir.Node) bool {
	if branchOf(n) != nil {
		return true
	}
	return n.Op == ir.OpBa
}

// branchOf returns the conditional branch n projects, or nil.
func branchOf(n *ir.Node) *ir.Node {
	if n.Op.IsProj() && len(n.In) == 1 && n.In[0].Op.IsCondBranch() {
		return n.In[0]
	}
	return nil
}

func blockName(b *ir.Block) string {
	if b == nil {
		return "?"
	}
	if b.Name != "" {
		return b.Name
	}
	return b.String()
}

func reachableBlocks(r *ir.Routine) map[*ir.Block]bool {
	r.AssureOuts()
	seen := make(map[*ir.Block]bool)
	if r.Entry == nil {
		return seen
	}
	work := []*ir.Block{r.Entry}
	seen[r.Entry] = true
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, s := range b.Succs() {
			if !seen[s] {
				seen[s] = true
				work = append(work, s)
			}
		}
	}
	return seen
}
