package ssa

// ReachableBlocks returns the set of blocks reachable from the entry,
// indexed by block ID.  First blocks contribute only their taken successor:
// the untaken side is dead unless reachable some other way.
func (f *Fun) ReachableBlocks() []bool {
	reachable := make([]bool, f.NumBlocks())
	if f.Entry == nil {
		return reachable
	}

	reachable[f.Entry.ID] = true
	work := []*Block{f.Entry}

	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]

		succs := b.Succs
		if b.Kind == BlockFirst {
			succs = b.Succs[:1]
		}

		for _, c := range succs {
			if !reachable[c.ID] {
				reachable[c.ID] = true
				work = append(work, c)
			}
		}
	}

	return reachable
}

// RemoveUnreachable sweeps blocks that cannot be reached from the entry,
// including the untaken successors of First blocks and their exclusive
// subgraphs.  First blocks collapse to Plain once their dead side is gone.
func (f *Fun) RemoveUnreachable() {
	reachable := f.ReachableBlocks()

	// drop edges from reachable blocks into unreachable ones, and all
	// edges of unreachable blocks
	for _, b := range f.Blocks {
		if !reachable[b.ID] {
			for len(b.Succs) > 0 {
				b.RemoveEdge(0)
			}
			continue
		}

		for i := 0; i < len(b.Succs); {
			if !reachable[b.Succs[i].ID] {
				b.RemoveEdge(i)
			} else {
				i++
			}
		}

		if b.Kind == BlockFirst && len(b.Succs) == 1 {
			b.Kind = BlockPlain
			if b.Control != nil {
				b.SetControl(nil)
			}
		}
	}

	// free the values of dead blocks; all uses inside the dead subgraph
	// must drop first
	for _, b := range f.Blocks {
		if reachable[b.ID] {
			continue
		}

		if b.Control != nil {
			b.SetControl(nil)
		}
		for _, v := range b.Values {
			v.ResetArgs()
		}
	}

	for _, b := range f.Blocks {
		if reachable[b.ID] {
			continue
		}

		for _, v := range b.Values {
			v.Uses = 0
			f.freeValue(v)
		}
		b.Values = b.Values[:0]
	}

	// compact the block list, keeping the entry at index 0
	i := 0
	for _, b := range f.Blocks {
		if reachable[b.ID] {
			f.Blocks[i] = b
			i++
		} else {
			f.freeBlock(b)
		}
	}

	for j := i; j < len(f.Blocks); j++ {
		f.Blocks[j] = nil
	}
	f.Blocks = f.Blocks[:i]

	f.invalidateCFG()
}
