package ssa

// Postorder returns the function's blocks reachable from the entry in
// post-order.  The result is memoized on the function and recomputed after
// the next CFG edit; repeated calls return the identical slice until then.
func (f *Fun) Postorder() []*Block {
	if f.cachedPostorder == nil {
		f.cachedPostorder = postorder(f)
	}

	return f.cachedPostorder
}

// markKind is the state of a block during traversal.
type markKind uint8

const (
	notFound    markKind = iota // block has not been discovered yet
	notExplored                 // discovered, successors not processed
	explored                    // fully processed
)

// postorder computes a post-order traversal iteratively to keep deep graphs
// off the Go stack.
func postorder(f *Fun) []*Block {
	if f.Entry == nil {
		return nil
	}

	marks := make([]markKind, f.NumBlocks())
	order := make([]*Block, 0, len(f.Blocks))

	var stack []*Block
	stack = append(stack, f.Entry)
	marks[f.Entry.ID] = notExplored

	for len(stack) > 0 {
		b := stack[len(stack)-1]

		switch marks[b.ID] {
		case notExplored:
			marks[b.ID] = explored
			for _, c := range b.Succs {
				if marks[c.ID] == notFound {
					marks[c.ID] = notExplored
					stack = append(stack, c)
				}
			}

		case explored:
			stack = stack[:len(stack)-1]
			order = append(order, b)

		default:
			f.Fatalf("impossible traversal state for b%d", b.ID)
		}
	}

	return order
}
