package ssa

// SparseTreeNode is one block's slot in the dominator tree, carrying the
// pre-order enter/exit interval used for constant-time dominance queries.
type SparseTreeNode struct {
	child   *Block
	sibling *Block
	parent  *Block

	// entry and exit bound the node's subtree: x dominates y iff
	// entry(x) <= entry(y) and exit(y) <= exit(x).
	entry, exit int32
}

// SparseTree is the dominator tree, indexed by block ID.
type SparseTree []SparseTreeNode

// Sdom returns the function's dominator tree, built from Idom and memoized
// until the next CFG edit.
func (f *Fun) Sdom() SparseTree {
	if f.cachedSdom == nil {
		f.cachedSdom = newSparseTree(f, f.Idom())
	}

	return f.cachedSdom
}

// newSparseTree builds the tree whose root is the entry block and whose
// parent relation is idom, then numbers it.
func newSparseTree(f *Fun, idom []*Block) SparseTree {
	t := make(SparseTree, f.NumBlocks())

	for _, b := range f.Blocks {
		if p := idom[b.ID]; p != nil {
			n := &t[b.ID]
			n.parent = p
			n.sibling = t[p.ID].child
			t[p.ID].child = b
		}
	}

	t.numberSubtree(f.Entry)
	return t
}

// numberSubtree assigns enter/exit intervals in a pre-order walk.  Gaps of
// one are left around the numbers so strict ancestry remains expressible.
func (t SparseTree) numberSubtree(root *Block) {
	if root == nil {
		return
	}

	type frame struct {
		b        *Block
		entering bool
	}

	n := int32(0)
	stack := []frame{{b: root, entering: true}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.entering {
			n += 2
			t[fr.b.ID].entry = n

			stack = append(stack, frame{b: fr.b})
			for c := t[fr.b.ID].child; c != nil; c = t[c.ID].sibling {
				stack = append(stack, frame{b: c, entering: true})
			}
		} else {
			n += 2
			t[fr.b.ID].exit = n
		}
	}
}

// -----------------------------------------------------------------------------

// Parent returns the immediate dominator of b recorded in the tree.
func (t SparseTree) Parent(b *Block) *Block {
	return t[b.ID].parent
}

// IsAncestorEq reports whether x dominates y (reflexively).
func (t SparseTree) IsAncestorEq(x, y *Block) bool {
	if x == y {
		return true
	}

	xn, yn := &t[x.ID], &t[y.ID]
	return xn.entry <= yn.entry && yn.exit <= xn.exit
}

// IsAncestor reports whether x strictly dominates y.
func (t SparseTree) IsAncestor(x, y *Block) bool {
	if x == y {
		return false
	}

	return t.IsAncestorEq(x, y)
}
