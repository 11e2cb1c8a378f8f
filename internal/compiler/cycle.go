package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/sparcsched/internal/ir"
)

// Cycle is a data-dependency cycle among the nodes of one block. Such a
// block can never drain its ready set.
type Cycle struct {
	Block   string   `json:"block"`
	Path    []string `json:"path"` // ["a", "b", "a"]
	Message string   `json:"message"`
}

// AnalyzeCycles finds dependency cycles inside each block, looking through
// projections the way the list scheduler does. Operands from other blocks
// never form a cycle because they are available at block start.
//
// Strongly connected components are found with Tarjan's algorithm; every
// component with more than one node, or a single node reading itself, is
// reported. Nodes are visited in ID order so results are stable.
func AnalyzeCycles(r *ir.Routine) []Cycle {
	var cycles []Cycle
	for _, b := range r.Blocks {
		graph := blockGraph(b)
		for _, scc := range tarjanSCC(b.Nodes, graph) {
			if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
				cycles = append(cycles, sccToCycle(b, scc, graph))
			}
		}
	}
	return cycles
}

// dependencyGraph maps a node to the in-block producers it waits for.
type dependencyGraph map[*ir.Node][]*ir.Node

func blockGraph(b *ir.Block) dependencyGraph {
	graph := make(dependencyGraph)
	for _, n := range b.Nodes {
		if !n.Op.IsScheduled() {
			continue
		}
		graph[n] = nil
		for _, op := range n.In {
			p := producerOf(op)
			if p != nil && p.Block == b && p.Op.IsScheduled() {
				graph[n] = append(graph[n], p)
			}
		}
	}
	return graph
}

// producerOf follows projection chains back to the node that occupies a
// schedule slot. A chain that loops on itself yields nil.
func producerOf(n *ir.Node) *ir.Node {
	seen := make(map[*ir.Node]bool)
	for n != nil && n.Op.IsProj() {
		if seen[n] || len(n.In) == 0 {
			return nil
		}
		seen[n] = true
		n = n.In[0]
	}
	return n
}

func hasSelfLoop(n *ir.Node, graph dependencyGraph) bool {
	for _, m := range graph[n] {
		if m == n {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components of graph, visiting
// roots in the order of nodes.
func tarjanSCC(nodes []*ir.Node, graph dependencyGraph) [][]*ir.Node {
	var (
		index   = 0
		stack   []*ir.Node
		indices = make(map[*ir.Node]int)
		lowlink = make(map[*ir.Node]int)
		onStack = make(map[*ir.Node]bool)
		sccs    [][]*ir.Node
	)

	var strongConnect func(*ir.Node)
	strongConnect = func(v *ir.Node) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []*ir.Node
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, n := range nodes {
		if _, ok := graph[n]; !ok {
			continue
		}
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

func sccToCycle(b *ir.Block, scc []*ir.Node, graph dependencyGraph) Cycle {
	path := cyclePath(scc, graph)
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = nodeLabel(n)
	}
	return Cycle{
		Block:   b.Name,
		Path:    names,
		Message: fmt.Sprintf("dependency cycle in block %s: %s", b.Name, strings.Join(names, " -> ")),
	}
}

// cyclePath walks edges inside the component from its lowest-ID member until
// it returns to the start.
func cyclePath(scc []*ir.Node, graph dependencyGraph) []*ir.Node {
	members := make(map[*ir.Node]bool, len(scc))
	start := scc[0]
	for _, n := range scc {
		members[n] = true
		if n.ID < start.ID {
			start = n
		}
	}

	path := []*ir.Node{start}
	visited := map[*ir.Node]bool{start: true}
	current := start
	for {
		var next *ir.Node
		for _, m := range graph[current] {
			if members[m] && (!visited[m] || m == start) {
				next = m
				break
			}
		}
		if next == nil {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}

func nodeLabel(n *ir.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.String()
}
