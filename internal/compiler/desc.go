package compiler

// RoutineDesc is the file form of a routine. YAML, JSON and CUE sources all
// decode into it.
type RoutineDesc struct {
	Name   string      `yaml:"name" json:"name"`
	Blocks []BlockDesc `yaml:"blocks" json:"blocks"`
}

// BlockDesc describes one basic block. The first block is the entry.
type BlockDesc struct {
	Name string `yaml:"name" json:"name"`

	// Preds names the control-producing nodes, owned by predecessor blocks,
	// of this block's incoming edges. May reference nodes declared later.
	Preds []string `yaml:"preds,omitempty" json:"preds,omitempty"`

	Nodes []NodeDesc `yaml:"nodes" json:"nodes"`
}

// NodeDesc describes one node. Operands are referenced by name and may be
// declared anywhere in the routine.
type NodeDesc struct {
	Name string   `yaml:"name" json:"name"`
	Op   string   `yaml:"op" json:"op"`
	In   []string `yaml:"in,omitempty" json:"in,omitempty"`
	Num  int      `yaml:"num,omitempty" json:"num,omitempty"`
}
