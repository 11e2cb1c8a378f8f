package compiler

import (
	"fmt"

	"github.com/roach88/sparcsched/internal/ir"
)

// CompileRoutine turns a description into a routine. Node and block IDs are
// assigned in declaration order starting at 1, and the first block is the
// entry. Names are resolved in a second pass, so operands and control edges
// may point forward (loops).
//
// Returns a *CompileError for an empty routine, missing or duplicate names,
// unknown opcodes, unresolved references, and projections without exactly
// one operand.
func CompileRoutine(d *RoutineDesc) (*ir.Routine, error) {
	if d.Name == "" {
		return nil, fieldError("name", "routine name is required")
	}
	if len(d.Blocks) == 0 {
		return nil, fieldError("blocks", "at least one block is required")
	}

	r := ir.NewRoutine(d.Name)
	nodes := make(map[string]*ir.Node)
	blocks := make(map[string]bool)
	built := make([]*ir.Block, len(d.Blocks))

	// Pass 1: blocks and nodes, no edges.
	for bi, bd := range d.Blocks {
		bpath := fmt.Sprintf("blocks[%d]", bi)
		if bd.Name == "" {
			return nil, fieldError(bpath+".name", "block name is required")
		}
		if blocks[bd.Name] {
			return nil, fieldError(bpath+".name", "duplicate block %q", bd.Name)
		}
		blocks[bd.Name] = true
		blk := r.NewBlock(bd.Name)
		built[bi] = blk

		for ni, nd := range bd.Nodes {
			npath := fmt.Sprintf("%s.nodes[%d]", bpath, ni)
			if nd.Name == "" {
				return nil, fieldError(npath+".name", "node name is required")
			}
			if _, dup := nodes[nd.Name]; dup {
				return nil, fieldError(npath+".name", "duplicate node %q", nd.Name)
			}
			op, err := ir.ParseOp(nd.Op)
			if err != nil {
				return nil, fieldError(npath+".op", "%v", err)
			}
			if op.IsProj() && len(nd.In) != 1 {
				return nil, fieldError(npath+".in", "projection needs exactly one operand, got %d", len(nd.In))
			}
			n := r.NewNode(blk, op, nd.Name)
			n.Num = nd.Num
			nodes[nd.Name] = n
		}
	}

	// Pass 2: operands and control-flow edges.
	for bi, bd := range d.Blocks {
		bpath := fmt.Sprintf("blocks[%d]", bi)
		for ni, nd := range bd.Nodes {
			in := make([]*ir.Node, len(nd.In))
			for i, name := range nd.In {
				op, ok := nodes[name]
				if !ok {
					return nil, fieldError(fmt.Sprintf("%s.nodes[%d].in[%d]", bpath, ni, i), "unknown node %q", name)
				}
				in[i] = op
			}
			nodes[nd.Name].SetIn(in...)
		}
		for pi, name := range bd.Preds {
			ctrl, ok := nodes[name]
			if !ok {
				return nil, fieldError(fmt.Sprintf("%s.preds[%d]", bpath, pi), "unknown node %q", name)
			}
			r.AddCfgPred(built[bi], ctrl)
		}
	}

	r.AssureOuts()
	return r, nil
}
