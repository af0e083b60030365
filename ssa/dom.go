package ssa

// Idom returns the immediate dominator of every block, indexed by block ID.
// The entry block and unreachable blocks map to nil.  The result is
// memoized on the function until the next CFG edit.
func (f *Fun) Idom() []*Block {
	if f.cachedIdom == nil {
		f.cachedIdom = dominators(f)
	}

	return f.cachedIdom
}

// ltState carries the working state of the Lengauer-Tarjan computation.
// Blocks are addressed by DFS preorder number; 0 means "not visited".
type ltState struct {
	f *Fun

	// vertex maps DFS numbers to blocks.
	vertex []*Block

	// dfnum, parent, semi, ancestor, best are indexed by block ID.
	dfnum    []int32
	parent   []*Block
	semi     []*Block
	ancestor []*Block
	best     []*Block
}

// dominators computes immediate dominators with the Lengauer-Tarjan
// algorithm (simple path-compression variant).
func dominators(f *Fun) []*Block {
	lt := &ltState{
		f:        f,
		dfnum:    make([]int32, f.NumBlocks()),
		parent:   make([]*Block, f.NumBlocks()),
		semi:     make([]*Block, f.NumBlocks()),
		ancestor: make([]*Block, f.NumBlocks()),
		best:     make([]*Block, f.NumBlocks()),
	}

	// DFS numbering from the entry
	lt.dfs(f.Entry)

	idom := make([]*Block, f.NumBlocks())
	samedom := make([]*Block, f.NumBlocks())
	bucket := make(map[int32][]*Block)

	// process vertices in reverse DFS order, skipping the root
	for i := len(lt.vertex) - 1; i >= 1; i-- {
		b := lt.vertex[i]
		p := lt.parent[b.ID]

		// semidominator: the minimum, over all predecessors, of the
		// semidominator reached through DFS-tree ancestry
		var s *Block
		for _, pred := range b.Preds {
			if lt.dfnum[pred.ID] == 0 && pred != f.Entry {
				// unreachable predecessor
				continue
			}

			var sp *Block
			if lt.dfnum[pred.ID] <= lt.dfnum[b.ID] {
				sp = pred
			} else {
				sp = lt.semi[lt.ancestorWithLowestSemi(pred).ID]
			}

			if s == nil || lt.dfnum[sp.ID] < lt.dfnum[s.ID] {
				s = sp
			}
		}

		if s == nil {
			s = p
		}

		lt.semi[b.ID] = s
		bucket[s.ID] = append(bucket[s.ID], b)

		lt.link(p, b)

		// process the deferred bucket of the parent
		for _, v := range bucket[p.ID] {
			y := lt.ancestorWithLowestSemi(v)
			if lt.semi[y.ID] == lt.semi[v.ID] {
				idom[v.ID] = lt.semi[v.ID]
			} else {
				samedom[v.ID] = y
			}
		}
		delete(bucket, p.ID)
	}

	// final pass in DFS order resolves deferred equalities
	for i := 1; i < len(lt.vertex); i++ {
		b := lt.vertex[i]
		if samedom[b.ID] != nil {
			idom[b.ID] = idom[samedom[b.ID].ID]
		}
	}

	return idom
}

// dfs numbers blocks in depth-first preorder.
func (lt *ltState) dfs(entry *Block) {
	if entry == nil {
		return
	}

	type frame struct {
		b *Block
		p *Block
	}

	stack := []frame{{b: entry}}
	n := int32(0)

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if lt.dfnum[fr.b.ID] != 0 {
			continue
		}

		n++
		lt.dfnum[fr.b.ID] = n
		lt.parent[fr.b.ID] = fr.p
		lt.vertex = append(lt.vertex, fr.b)

		for i := len(fr.b.Succs) - 1; i >= 0; i-- {
			c := fr.b.Succs[i]
			if lt.dfnum[c.ID] == 0 {
				stack = append(stack, frame{b: c, p: fr.b})
			}
		}
	}

	// the entry has DFS number 1; make the zero check above unambiguous by
	// treating only number 0 as unvisited
}

// link attaches b under p in the DFS forest used for path compression.
func (lt *ltState) link(p, b *Block) {
	lt.ancestor[b.ID] = p
	lt.best[b.ID] = b
}

// ancestorWithLowestSemi finds, with path compression, the ancestor of v
// whose semidominator has the lowest DFS number.
func (lt *ltState) ancestorWithLowestSemi(v *Block) *Block {
	a := lt.ancestor[v.ID]
	if a == nil {
		return lt.best[v.ID]
	}

	if lt.ancestor[a.ID] != nil {
		b := lt.ancestorWithLowestSemi(a)
		lt.ancestor[v.ID] = lt.ancestor[a.ID]

		if lt.dfnum[lt.semi[b.ID].ID] < lt.dfnum[lt.semi[lt.best[v.ID].ID].ID] {
			lt.best[v.ID] = b
		}
	}

	return lt.best[v.ID]
}
