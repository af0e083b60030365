package ssa

import (
	"fmt"

	"cobalt/report"
)

// BlockKind is the kind of a block's outgoing control flow.
type BlockKind int8

// Enumeration of block kinds.
const (
	BlockInvalid BlockKind = iota
	BlockPlain             // one successor, unconditional
	BlockIf                // two successors, branch on control
	BlockRet               // no successors, returns
	BlockFirst             // two successors, always takes the first
)

func (k BlockKind) String() string {
	switch k {
	case BlockPlain:
		return "Plain"
	case BlockIf:
		return "If"
	case BlockRet:
		return "Ret"
	case BlockFirst:
		return "First"
	default:
		return "Invalid"
	}
}

// BranchPrediction is a three-valued branch hint.
type BranchPrediction int8

const (
	BranchUnlikely BranchPrediction = -1
	BranchUnknown  BranchPrediction = 0
	BranchLikely   BranchPrediction = 1
)

// Block is a basic block in a function's control-flow graph.
type Block struct {
	// ID is the block's function-unique identifier.
	ID int32

	// Kind is the block's control-flow kind.
	Kind BlockKind

	// Pos is the source position of the block's closing control statement.
	Pos report.Pos

	// Control is the value controlling an If block; nil for other kinds.
	// The control contributes one use.
	Control *Value

	// Succs and Preds are the successor and predecessor edges.  Edge order
	// is significant for If and First blocks.
	Succs []*Block
	Preds []*Block

	// Values lists the block's values, in no particular order before
	// scheduling.
	Values []*Value

	// Sealed marks a block that may not gain additional predecessors.
	Sealed bool

	// Likely is the branch hint for an If block.
	Likely BranchPrediction

	// Fun is the function this block belongs to.
	Fun *Fun

	succstorage [2]*Block
	predstorage [4]*Block
	valstorage  [8]*Value
}

func (b *Block) String() string {
	return fmt.Sprintf("b%d", b.ID)
}

// -----------------------------------------------------------------------------

// SetControl sets the block's control value, maintaining use counts on both
// the old and new controls.
func (b *Block) SetControl(v *Value) {
	if w := b.Control; w != nil {
		w.Uses--
	}

	b.Control = v
	if v != nil {
		v.Uses++
	}
}

// AddEdgeTo adds an edge from b to c.  Adding an edge to a sealed block is
// a diagnosed error and must not modify either side.
func (b *Block) AddEdgeTo(c *Block) {
	if c.Sealed {
		b.Fun.errorf(b.Pos, "edge added to sealed block b%d", c.ID)
		return
	}

	b.Succs = append(b.Succs, c)
	c.Preds = append(c.Preds, b)
	b.Fun.invalidateCFG()
}

// Seal marks the block as complete: no further predecessors may be added.
func (b *Block) Seal() {
	b.Sealed = true
}

// removePred removes the i'th predecessor edge.  The caller must maintain
// the corresponding successor side.
func (b *Block) removePred(i int) {
	n := len(b.Preds) - 1
	b.Preds[i] = b.Preds[n]
	b.Preds[n] = nil
	b.Preds = b.Preds[:n]

	b.Fun.invalidateCFG()
}

// removeSucc removes the i'th successor edge.  The caller must maintain the
// corresponding predecessor side.
func (b *Block) removeSucc(i int) {
	n := len(b.Succs) - 1
	b.Succs[i] = b.Succs[n]
	b.Succs[n] = nil
	b.Succs = b.Succs[:n]

	b.Fun.invalidateCFG()
}

// RemoveEdge removes the i'th outgoing edge from b, maintaining both sides.
func (b *Block) RemoveEdge(i int) {
	c := b.Succs[i]

	j := predIndex(c, b)
	b.removeSucc(i)
	c.removePred(j)
}

// predIndex finds the index of p in b's predecessor list.
func predIndex(b, p *Block) int {
	for i, pred := range b.Preds {
		if pred == p {
			return i
		}
	}

	b.Fun.Fatalf("block b%d is not a predecessor of b%d", p.ID, b.ID)
	return -1
}

// -----------------------------------------------------------------------------

// RemoveValue drops all occurrences of v from the block's value list and
// frees it.  Use counts are not changed here: v must already have no uses.
func (b *Block) RemoveValue(v *Value) {
	i := 0
	for _, w := range b.Values {
		if w != v {
			b.Values[i] = w
			i++
		}
	}

	for j := i; j < len(b.Values); j++ {
		b.Values[j] = nil
	}
	b.Values = b.Values[:i]

	b.Fun.freeValue(v)
}

// -----------------------------------------------------------------------------

// SetFirst rewrites an If block proven to always take the successor at
// index taken into a First block with that successor at index 0.  A later
// dead-code sweep removes the untaken successor and its exclusive subgraph.
func (b *Block) SetFirst(taken int) {
	if b.Kind != BlockIf {
		b.Fun.Fatalf("SetFirst on non-If block b%d", b.ID)
		return
	}

	if taken == 1 {
		b.Succs[0], b.Succs[1] = b.Succs[1], b.Succs[0]
		b.Likely = -b.Likely
	}

	b.Kind = BlockFirst
	b.Fun.invalidateCFG()
}
