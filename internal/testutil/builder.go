// Package testutil provides helpers shared by tests across packages.
package testutil

import (
	"fmt"

	"github.com/roach88/sparcsched/internal/ir"
)

// Builder constructs routines by name for tests.
//
//	b := testutil.NewBuilder("f")
//	b.Block("entry")
//	b.Node("l", ir.OpLd)
//	b.Proj("lv", "l", 0)
//	b.Node("s", ir.OpSt, "k", "lv")
//	r := b.Routine()
//
// Operands must be declared before they are referenced. Unknown names panic,
// failing the test at the offending line.
type Builder struct {
	r      *ir.Routine
	cur    *ir.Block
	nodes  map[string]*ir.Node
	blocks map[string]*ir.Block
}

// NewBuilder starts an empty routine.
func NewBuilder(name string) *Builder {
	return &Builder{
		r:      ir.NewRoutine(name),
		nodes:  make(map[string]*ir.Node),
		blocks: make(map[string]*ir.Block),
	}
}

// Block creates a block and makes it current. Control-producing nodes listed
// in preds become its incoming edges.
func (b *Builder) Block(name string, preds ...string) *ir.Block {
	if _, dup := b.blocks[name]; dup {
		panic(fmt.Sprintf("testutil: duplicate block %q", name))
	}
	blk := b.r.NewBlock(name)
	b.blocks[name] = blk
	b.cur = blk
	for _, p := range preds {
		b.r.AddCfgPred(blk, b.N(p))
	}
	return blk
}

// Edge adds an incoming edge to an existing block, for back edges whose
// control node is declared after the target block.
func (b *Builder) Edge(block, ctrl string) {
	b.r.AddCfgPred(b.B(block), b.N(ctrl))
}

// Node creates a node in the current block reading the named operands.
func (b *Builder) Node(name string, op ir.Op, in ...string) *ir.Node {
	if b.cur == nil {
		panic("testutil: Node before Block")
	}
	if _, dup := b.nodes[name]; dup {
		panic(fmt.Sprintf("testutil: duplicate node %q", name))
	}
	ops := make([]*ir.Node, len(in))
	for i, s := range in {
		ops[i] = b.N(s)
	}
	n := b.r.NewNode(b.cur, op, name, ops...)
	b.nodes[name] = n
	return n
}

// Proj creates projection num of the named node in the current block.
func (b *Builder) Proj(name, of string, num int) *ir.Node {
	n := b.Node(name, ir.OpProj, of)
	n.Num = num
	return n
}

// N returns the named node.
func (b *Builder) N(name string) *ir.Node {
	n, ok := b.nodes[name]
	if !ok {
		panic(fmt.Sprintf("testutil: unknown node %q", name))
	}
	return n
}

// B returns the named block.
func (b *Builder) B(name string) *ir.Block {
	blk, ok := b.blocks[name]
	if !ok {
		panic(fmt.Sprintf("testutil: unknown block %q", name))
	}
	return blk
}

// Routine returns the routine with outs computed.
func (b *Builder) Routine() *ir.Routine {
	b.r.AssureOuts()
	return b.r
}

// Names maps node IDs of a schedule back to builder names, for readable
// assertions.
func Names(nodes []*ir.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
