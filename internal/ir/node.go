package ir

import "fmt"

// Node is a single machine instruction (or projection) of a routine.
type Node struct {
	ID    int64   // unique within the routine
	Name  string  // optional display name from the routine description
	Op    Op      // operation
	In    []*Node // operands in position order
	Num   int     // projection number, meaningful for OpProj only
	Block *Block  // owning block
}

// Arity returns the number of operands.
func (n *Node) Arity() int {
	return len(n.In)
}

// SetIn replaces the operand list.
func (n *Node) SetIn(in ...*Node) {
	n.In = append([]*Node(nil), in...)
}

// String renders the node as name#id, or op#id when the node is unnamed.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s#%d", n.Name, n.ID)
	}
	return fmt.Sprintf("%s#%d", n.Op, n.ID)
}

// Block is a basic block. The order of Nodes carries no meaning before
// scheduling.
type Block struct {
	ID    int64
	Name  string
	Nodes []*Node

	// CfgPreds are the control-producing nodes, one per incoming
	// control-flow edge, each owned by the predecessor block.
	CfgPreds []*Node

	succs []*Block
}

// NumCfgOuts returns the number of outgoing control-flow edges. Valid only
// after Routine.AssureOuts.
func (b *Block) NumCfgOuts() int {
	return len(b.succs)
}

// CfgOut returns the i-th control-flow successor. Valid only after
// Routine.AssureOuts.
func (b *Block) CfgOut(i int) *Block {
	return b.succs[i]
}

// Succs returns a copy of the successor list.
func (b *Block) Succs() []*Block {
	return append([]*Block(nil), b.succs...)
}

// String renders the block as name#id, or block#id when unnamed.
func (b *Block) String() string {
	if b == nil {
		return "<nil>"
	}
	if b.Name != "" {
		return fmt.Sprintf("%s#%d", b.Name, b.ID)
	}
	return fmt.Sprintf("block#%d", b.ID)
}

// Routine is the unit of scheduling: one function body.
type Routine struct {
	Name   string
	Blocks []*Block
	Entry  *Block

	nodes     map[int64]*Node
	nextNode  int64
	nextBlock int64
	outsValid bool
}

// NewRoutine creates an empty routine.
func NewRoutine(name string) *Routine {
	return &Routine{
		Name:  name,
		nodes: make(map[int64]*Node),
	}
}

// NewBlock appends a block. The first block created becomes the entry.
func (r *Routine) NewBlock(name string) *Block {
	r.nextBlock++
	b := &Block{ID: r.nextBlock, Name: name}
	r.Blocks = append(r.Blocks, b)
	if r.Entry == nil {
		r.Entry = b
	}
	r.outsValid = false
	return b
}

// NewNode creates a node in block b with the given operands.
func (r *Routine) NewNode(b *Block, op Op, name string, in ...*Node) *Node {
	r.nextNode++
	n := &Node{ID: r.nextNode, Name: name, Op: op, Block: b}
	n.SetIn(in...)
	b.Nodes = append(b.Nodes, n)
	r.nodes[n.ID] = n
	return n
}

// AddCfgPred records an incoming control-flow edge of b produced by ctrl.
func (r *Routine) AddCfgPred(b *Block, ctrl *Node) {
	b.CfgPreds = append(b.CfgPreds, ctrl)
	r.outsValid = false
}

// Node looks a node up by ID.
func (r *Routine) Node(id int64) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// NumNodes returns the number of nodes in the routine.
func (r *Routine) NumNodes() int {
	return len(r.nodes)
}

// AssureOuts recomputes block successor lists if the control-flow edges
// changed since the last call. Successors are ordered by the declaration
// order of the successor blocks.
func (r *Routine) AssureOuts() {
	if r.outsValid {
		return
	}
	for _, b := range r.Blocks {
		b.succs = nil
	}
	for _, b := range r.Blocks {
		for _, pred := range b.CfgPreds {
			if pred == nil || pred.Block == nil {
				continue
			}
			pred.Block.succs = append(pred.Block.succs, b)
		}
	}
	r.outsValid = true
}
