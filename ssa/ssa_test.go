package ssa

import (
	"testing"

	"cobalt/report"
	"cobalt/types"
)

func testFun() *Fun {
	cfg, _ := ArchConfig("generic")
	rep := report.NewReporter(report.LogLevelSilent, nil)
	return NewFun(cfg, "test", nil, rep)
}

// checkUses verifies the use-count invariant: every value's Uses equals its
// appearances in other values' Args plus block controls.
func checkUses(t *testing.T, f *Fun) {
	t.Helper()

	counts := make(map[*Value]int32)
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			for _, a := range v.Args {
				counts[a]++
			}
		}
		if b.Control != nil {
			counts[b.Control]++
		}
	}

	for _, b := range f.Blocks {
		for _, v := range b.Values {
			if v.Uses != counts[v] {
				t.Errorf("v%d has Uses=%d, counted %d", v.ID, v.Uses, counts[v])
			}
		}
	}
}

// -----------------------------------------------------------------------------

func TestUseCounts(t *testing.T) {
	f := testFun()
	b := f.NewBlock(BlockPlain)

	c1 := f.ConstVal(types.PrimI64, 1)
	c2 := f.ConstVal(types.PrimI64, 2)
	add := b.NewValue2(report.NoPos, OpAdd, types.PrimI64, c1, c2)

	if c1.Uses != 1 || c2.Uses != 1 {
		t.Errorf("argument edges must contribute one use each")
	}

	checkUses(t, f)

	// replacing an argument moves the use
	add.SetArg(1, c1)
	if c1.Uses != 2 || c2.Uses != 0 {
		t.Errorf("SetArg must transfer uses, got c1=%d c2=%d", c1.Uses, c2.Uses)
	}

	checkUses(t, f)

	add.ResetArgs()
	if c1.Uses != 0 || len(add.Args) != 0 {
		t.Errorf("ResetArgs must drop all uses")
	}

	checkUses(t, f)
}

func TestControlUses(t *testing.T) {
	f := testFun()
	entry := f.NewBlock(BlockIf)

	cond := f.ConstBool(types.PrimBool, true)
	entry.SetControl(cond)

	if cond.Uses != 1 {
		t.Errorf("a block control contributes one use, got %d", cond.Uses)
	}

	other := f.ConstBool(types.PrimBool, false)
	entry.SetControl(other)

	if cond.Uses != 0 || other.Uses != 1 {
		t.Errorf("SetControl must transfer uses")
	}

	checkUses(t, f)
}

func TestAddArgSelfReference(t *testing.T) {
	f := testFun()
	b := f.NewBlock(BlockPlain)
	v := b.NewValue0(report.NoPos, OpPhi, types.PrimI64)

	defer func() {
		if recover() == nil {
			t.Errorf("self-reference must be rejected")
		}
	}()

	v.AddArg(v)
}

func TestReset(t *testing.T) {
	f := testFun()
	b := f.NewBlock(BlockPlain)

	c := f.ConstVal(types.PrimI64, 7)
	v := b.NewValue1(report.NoPos, OpCopy, types.PrimI64, c)
	v.AuxInt = 42
	v.Aux = "slot"

	v.Reset(OpNeg)

	if v.Op != OpNeg || v.AuxInt != 0 || v.Aux != nil || len(v.Args) != 0 {
		t.Errorf("Reset must clear op state")
	}

	if c.Uses != 0 {
		t.Errorf("Reset must release argument uses")
	}
}

func TestRemoveValue(t *testing.T) {
	f := testFun()
	b := f.NewBlock(BlockPlain)

	v := b.NewValue0(report.NoPos, OpArg, types.PrimI64)
	n := len(b.Values)

	b.RemoveValue(v)

	if len(b.Values) != n-1 {
		t.Errorf("value must be removed from the block list")
	}

	if v.Block != nil {
		t.Errorf("removed values must be freed")
	}
}

// -----------------------------------------------------------------------------

func TestConstInterning(t *testing.T) {
	f := testFun()
	f.NewBlock(BlockPlain)

	a := f.ConstVal(types.PrimI64, 42)
	b := f.ConstVal(types.PrimI64, 42)

	if a != b {
		t.Errorf("equal constants must be reference-identical")
	}

	if a.Block != f.Entry {
		t.Errorf("constants are anchored in the entry block")
	}

	c := f.ConstVal(types.PrimI32, 42)
	if a == c {
		t.Errorf("constants of different widths must not be shared")
	}

	d := f.ConstVal(types.PrimI64, 43)
	if a == d {
		t.Errorf("distinct values must not be shared")
	}

	if tr := f.ConstBool(types.PrimBool, true); tr.Op != OpConstBool {
		t.Errorf("boolean constants use ConstBool, got %s", tr.Op)
	}
}

func TestRematerializeable(t *testing.T) {
	f := testFun()
	b := f.NewBlock(BlockPlain)

	c := f.ConstVal(types.PrimI64, 1)
	if !c.Rematerializeable() {
		t.Errorf("constants are rematerializable")
	}

	sp := b.NewValue0(report.NoPos, OpSP, types.PrimUint)
	addr := b.NewValue1(report.NoPos, OpAddr, types.PrimUint, sp)
	if !addr.Rematerializeable() {
		t.Errorf("Addr over SP is rematerializable")
	}

	load := b.NewValue1(report.NoPos, OpLoad, types.PrimI64, addr)
	if load.Rematerializeable() {
		t.Errorf("loads are not rematerializable")
	}

	other := b.NewValue1(report.NoPos, OpAddr, types.PrimUint, load)
	if other.Rematerializeable() {
		t.Errorf("rematerializable ops with non-SP/SB args are not rematerializable")
	}
}

// -----------------------------------------------------------------------------

func TestSealedEdgeRejected(t *testing.T) {
	f := testFun()
	a := f.NewBlock(BlockPlain)
	b := f.NewBlock(BlockPlain)

	b.Seal()
	a.AddEdgeTo(b)

	if len(a.Succs) != 0 || len(b.Preds) != 0 {
		t.Errorf("edges to sealed blocks must not be added")
	}

	if f.rep.ErrorCount() != 1 {
		t.Errorf("a diagnostic must be emitted, got %d", f.rep.ErrorCount())
	}
}

func TestEdgeMaintenance(t *testing.T) {
	f := testFun()
	a := f.NewBlock(BlockPlain)
	b := f.NewBlock(BlockPlain)

	a.AddEdgeTo(b)
	if len(a.Succs) != 1 || len(b.Preds) != 1 {
		t.Fatalf("edge must be mutual")
	}

	a.RemoveEdge(0)
	if len(a.Succs) != 0 || len(b.Preds) != 0 {
		t.Errorf("RemoveEdge must maintain both sides")
	}
}
