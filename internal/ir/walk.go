package ir

// BlockOrder returns every block of r exactly once: reverse post-order of a
// depth-first walk from the entry, followed by blocks unreachable from the
// entry in declaration order.
//
// Calls AssureOuts.
func BlockOrder(r *Routine) []*Block {
	r.AssureOuts()

	visited := make(map[*Block]bool, len(r.Blocks))
	post := make([]*Block, 0, len(r.Blocks))

	var visit func(b *Block)
	visit = func(b *Block) {
		visited[b] = true
		for _, s := range b.succs {
			if !visited[s] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	if r.Entry != nil {
		visit(r.Entry)
	}

	order := make([]*Block, 0, len(r.Blocks))
	for i := len(post) - 1; i >= 0; i-- {
		order = append(order, post[i])
	}
	for _, b := range r.Blocks {
		if !visited[b] {
			order = append(order, b)
		}
	}
	return order
}

// WalkBlocks calls fn for every block in BlockOrder. The walk stops at the
// first error, which is returned unchanged.
func WalkBlocks(r *Routine, fn func(b *Block) error) error {
	for _, b := range BlockOrder(r) {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}
