package harness

import "github.com/roach88/sparcsched/internal/trace"

// BlockOrder is the final order of one block, by node name.
type BlockOrder struct {
	Block string   `json:"block"`
	Nodes []string `json:"nodes"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Blocks lists every block in the order it was scheduled.
	Blocks []BlockOrder `json:"blocks"`

	// Session is the decision trace as read back from the store.
	Session trace.Session `json:"session"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Blocks: []BlockOrder{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// locate returns the block and index of the named node.
func (r *Result) locate(name string) (block string, index int, ok bool) {
	for _, b := range r.Blocks {
		for i, n := range b.Nodes {
			if n == name {
				return b.Block, i, true
			}
		}
	}
	return "", 0, false
}

func (r *Result) block(name string) (BlockOrder, bool) {
	for _, b := range r.Blocks {
		if b.Block == name {
			return b, true
		}
	}
	return BlockOrder{}, false
}
