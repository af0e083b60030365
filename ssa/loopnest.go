package ssa

// Loop is one natural loop: the blocks dominated by its header and reaching
// it along a back-edge.
type Loop struct {
	// Header is the loop's header block.
	Header *Block

	// Parent is the innermost enclosing loop, nil for outermost loops.
	Parent *Loop

	// Children lists the loops nested directly inside this one.
	Children []*Loop

	// Depth is the loop's nesting depth; outermost loops have depth 1.
	Depth int16

	// Blocks lists the blocks contained in the loop, header first.
	Blocks []*Block

	// Exits lists the blocks outside the loop that loop blocks branch to.
	Exits []*Block
}

// LoopNest is the forest of natural loops over the back-edges of the
// dominator tree.
type LoopNest struct {
	F *Fun

	// Loops lists every loop found.
	Loops []*Loop

	// B2l maps block IDs to their innermost containing loop, or nil.
	B2l []*Loop
}

// Loopnest computes the function's loop nest, memoized until the next CFG
// edit.
func (f *Fun) Loopnest() *LoopNest {
	if f.cachedLoopnest == nil {
		f.cachedLoopnest = loopnestFor(f)
	}

	return f.cachedLoopnest
}

func loopnestFor(f *Fun) *LoopNest {
	ln := &LoopNest{F: f, B2l: make([]*Loop, f.NumBlocks())}
	sdom := f.Sdom()
	po := f.Postorder()

	// find headers: a back-edge is an edge whose target dominates its
	// source
	headers := make(map[*Block]*Loop)
	for _, b := range po {
		for _, h := range b.Succs {
			if !sdom.IsAncestorEq(h, b) {
				continue
			}

			loop := headers[h]
			if loop == nil {
				loop = &Loop{Header: h}
				headers[h] = loop
				ln.Loops = append(ln.Loops, loop)
			}

			loop.addBackedgeSource(b)
		}
	}

	// fill each loop with the blocks that reach a back-edge source without
	// passing through the header
	for _, loop := range ln.Loops {
		loop.collectBlocks()
	}

	// assign innermost loops: smaller loops override larger ones
	for _, loop := range ln.Loops {
		for _, b := range loop.Blocks {
			if cur := ln.B2l[b.ID]; cur == nil || len(loop.Blocks) < len(cur.Blocks) {
				ln.B2l[b.ID] = loop
			}
		}
	}

	// parents: the innermost other loop containing the header
	for _, loop := range ln.Loops {
		var parent *Loop
		for _, other := range ln.Loops {
			if other == loop || !other.contains(loop.Header) {
				continue
			}

			if parent == nil || len(other.Blocks) < len(parent.Blocks) {
				parent = other
			}
		}

		loop.Parent = parent
		if parent != nil {
			parent.Children = append(parent.Children, loop)
		}
	}

	// depths, outermost first
	for _, loop := range ln.Loops {
		if loop.Parent == nil {
			setDepth(loop, 1)
		}
	}

	// exits: successors of loop blocks that fall outside the loop
	for _, loop := range ln.Loops {
		seen := make(map[*Block]bool)
		for _, b := range loop.Blocks {
			for _, c := range b.Succs {
				if !loop.contains(c) && !seen[c] {
					seen[c] = true
					loop.Exits = append(loop.Exits, c)
				}
			}
		}
	}

	return ln
}

func setDepth(loop *Loop, depth int16) {
	loop.Depth = depth
	for _, child := range loop.Children {
		setDepth(child, depth+1)
	}
}

// -----------------------------------------------------------------------------

// backedgeSources are seeded into Blocks before collection; the header is
// inserted at the front afterwards.
func (l *Loop) addBackedgeSource(b *Block) {
	for _, w := range l.Blocks {
		if w == b {
			return
		}
	}

	l.Blocks = append(l.Blocks, b)
}

// collectBlocks floods backwards from the back-edge sources, stopping at
// the header, to gather the loop body.
func (l *Loop) collectBlocks() {
	inLoop := make(map[*Block]bool)
	inLoop[l.Header] = true

	work := append([]*Block(nil), l.Blocks...)
	for _, b := range work {
		inLoop[b] = true
	}

	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]

		for _, p := range b.Preds {
			if !inLoop[p] {
				inLoop[p] = true
				l.Blocks = append(l.Blocks, p)
				work = append(work, p)
			}
		}
	}

	l.Blocks = append([]*Block{l.Header}, l.Blocks...)
}

// contains reports whether a block is part of the loop.
func (l *Loop) contains(b *Block) bool {
	for _, w := range l.Blocks {
		if w == b {
			return true
		}
	}

	return false
}

// LongString renders the loop for debugging output.
func (l *Loop) LongString() string {
	s := "loop " + l.Header.String()
	if l.Parent != nil {
		s += " within " + l.Parent.Header.String()
	}

	return s
}
