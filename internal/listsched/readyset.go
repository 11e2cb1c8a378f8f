package listsched

import (
	"sort"

	"github.com/roach88/sparcsched/internal/ir"
)

// ReadySet is the set of nodes of the current block whose operands are all
// scheduled. Iteration order is ascending node ID.
//
// Only the Engine mutates a ReadySet; selectors read it and return one
// member.
type ReadySet struct {
	nodes []*ir.Node // sorted by ID
}

// Len returns the number of ready nodes.
func (rs *ReadySet) Len() int {
	return len(rs.nodes)
}

// Nodes returns the ready nodes in ID order. The slice is a copy.
func (rs *ReadySet) Nodes() []*ir.Node {
	return append([]*ir.Node(nil), rs.nodes...)
}

// First returns the ready node with the lowest ID, or nil when empty.
func (rs *ReadySet) First() *ir.Node {
	if len(rs.nodes) == 0 {
		return nil
	}
	return rs.nodes[0]
}

// IDs returns the IDs of the ready nodes in order.
func (rs *ReadySet) IDs() []int64 {
	ids := make([]int64, len(rs.nodes))
	for i, n := range rs.nodes {
		ids[i] = n.ID
	}
	return ids
}

func (rs *ReadySet) find(n *ir.Node) (int, bool) {
	i := sort.Search(len(rs.nodes), func(i int) bool { return rs.nodes[i].ID >= n.ID })
	return i, i < len(rs.nodes) && rs.nodes[i] == n
}

func (rs *ReadySet) add(n *ir.Node) {
	i, ok := rs.find(n)
	if ok {
		return
	}
	rs.nodes = append(rs.nodes, nil)
	copy(rs.nodes[i+1:], rs.nodes[i:])
	rs.nodes[i] = n
}

func (rs *ReadySet) remove(n *ir.Node) bool {
	i, ok := rs.find(n)
	if !ok {
		return false
	}
	rs.nodes = append(rs.nodes[:i], rs.nodes[i+1:]...)
	return true
}

func (rs *ReadySet) clear() {
	rs.nodes = nil
}
