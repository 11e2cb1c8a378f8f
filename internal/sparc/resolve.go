package sparc

import "github.com/roach88/sparcsched/internal/ir"

// ResolveBranchCondition returns the compare whose result b's conditional
// branch consumes, or nil when b has fewer than two control-flow successors.
//
// The conditional branch is found through the first incoming edge of b's
// first successor: that edge is a projection of the branch. Critical edges
// must be split (compiler.Validate rejects them), so the successor is
// entered from b alone.
//
// Requires outs to be up to date. Any deviation from the expected
// bicc(cmp) shape is an *InternalError.
func ResolveBranchCondition(b *ir.Block) (*ir.Node, error) {
	if b.NumCfgOuts() < 2 {
		return nil, nil
	}

	succ := b.CfgOut(0)
	if len(succ.CfgPreds) == 0 {
		return nil, newShapeError(ErrCodeMissingCfgPred, b.ID, 0,
			"successor %s of two-way block has no control-flow predecessor", succ)
	}

	edge := succ.CfgPreds[0]
	if len(edge.In) == 0 {
		return nil, newShapeError(ErrCodeMissingBranch, b.ID, edge.ID,
			"control-flow edge %s into %s has no operand", edge, succ)
	}

	branch := edge.In[0]
	if !branch.Op.IsCondBranch() {
		return nil, newShapeError(ErrCodeNotBranch, b.ID, branch.ID,
			"expected conditional branch behind edge into %s, found %s", succ, branch.Op)
	}
	if branch.Block != b {
		return nil, newShapeError(ErrCodeForeignBranch, b.ID, branch.ID,
			"conditional branch %s belongs to %s", branch, branch.Block)
	}
	if branch.Arity() != 1 {
		return nil, newShapeError(ErrCodeBranchArity, b.ID, branch.ID,
			"conditional branch %s has %d operands, expected 1", branch, branch.Arity())
	}

	cond := branch.In[0]
	if !cond.Op.IsCompare() {
		return nil, newShapeError(ErrCodeNotCompare, b.ID, cond.ID,
			"branch condition %s is %s, expected %s", cond, cond.Op, ir.OpCmp)
	}
	return cond, nil
}
