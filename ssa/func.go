package ssa

import (
	"fmt"

	"cobalt/report"
	"cobalt/types"
)

// Fun is a single function in SSA form.  It owns its blocks, which own
// their values; freed objects must have zero uses, zero arguments, and no
// incoming control edges.  Block and value IDs only grow.
type Fun struct {
	// Config is the architecture configuration compiled against.
	Config *Config

	// Name is the function's name.
	Name string

	// Type is the function's signature type.
	Type types.Type

	// NArgs is the number of formal arguments.
	NArgs int32

	// Entry is the entry block; it is always Blocks[0].
	Entry *Block

	// Blocks lists the function's blocks.
	Blocks []*Block

	// NamedValues maps a local slot to the values stored in it.
	NamedValues map[LocalSlot][]*Value

	// RegAlloc is the register allocation attached by the back end; nil
	// before allocation.
	RegAlloc RegAlloc

	rep *report.Reporter

	bid int32
	vid int32

	// consts memoizes (op, constant) to the interned constant value,
	// anchored in the entry block.
	consts map[constKey]*Value

	// cached CFG analyses; invalidated together on any CFG edit
	cachedPostorder []*Block
	cachedIdom      []*Block
	cachedSdom      SparseTree
	cachedLoopnest  *LoopNest
}

// constKey keys the function's constant cache.
type constKey struct {
	op     Op
	auxint int64
}

// NewFun creates an empty function compiled against the given config.  The
// first block created becomes the entry block.
func NewFun(config *Config, name string, typ types.Type, rep *report.Reporter) *Fun {
	return &Fun{
		Config:      config,
		Name:        name,
		Type:        typ,
		NamedValues: make(map[LocalSlot][]*Value),
		rep:         rep,
		consts:      make(map[constKey]*Value),
	}
}

// NumBlocks returns an upper bound on block IDs in the function.
func (f *Fun) NumBlocks() int {
	return int(f.bid) + 1
}

// NumValues returns an upper bound on value IDs in the function.
func (f *Fun) NumValues() int {
	return int(f.vid) + 1
}

// -----------------------------------------------------------------------------

// NewBlock allocates a new block of the given kind.  The first block
// allocated becomes the function's entry.
func (f *Fun) NewBlock(kind BlockKind) *Block {
	f.bid++

	b := &Block{
		ID:   f.bid,
		Kind: kind,
		Fun:  f,
	}
	b.Succs = b.succstorage[:0]
	b.Preds = b.predstorage[:0]
	b.Values = b.valstorage[:0]

	f.Blocks = append(f.Blocks, b)
	if f.Entry == nil {
		f.Entry = b
	}

	f.invalidateCFG()
	return b
}

// newValue allocates a new value in block b.
func (f *Fun) newValue(op Op, t types.Type, b *Block, pos report.Pos) *Value {
	f.vid++

	v := &Value{
		ID:    f.vid,
		Op:    op,
		Type:  t,
		Block: b,
		Pos:   pos,
		Reg:   -1,
	}
	v.Args = v.argstorage[:0]

	b.Values = append(b.Values, v)
	return v
}

// NewValue0 allocates a new value with no arguments.
func (b *Block) NewValue0(pos report.Pos, op Op, t types.Type) *Value {
	return b.Fun.newValue(op, t, b, pos)
}

// NewValue0I allocates a new value with an integer aux operand.
func (b *Block) NewValue0I(pos report.Pos, op Op, t types.Type, auxint int64) *Value {
	v := b.Fun.newValue(op, t, b, pos)
	v.AuxInt = auxint
	return v
}

// NewValue1 allocates a new value with one argument.
func (b *Block) NewValue1(pos report.Pos, op Op, t types.Type, arg *Value) *Value {
	v := b.Fun.newValue(op, t, b, pos)
	v.AddArg(arg)
	return v
}

// NewValue2 allocates a new value with two arguments.
func (b *Block) NewValue2(pos report.Pos, op Op, t types.Type, arg0, arg1 *Value) *Value {
	v := b.Fun.newValue(op, t, b, pos)
	v.AddArg(arg0)
	v.AddArg(arg1)
	return v
}

// -----------------------------------------------------------------------------

// freeValue frees a value.  The value must be dead: zero uses and zero
// arguments.
func (f *Fun) freeValue(v *Value) {
	if v.Block == nil {
		f.Fatalf("value v%d already freed", v.ID)
	}
	if v.Uses != 0 {
		f.Fatalf("value v%d still has %d uses", v.ID, v.Uses)
	}

	v.ResetArgs()

	// drop it from the constant cache if it is interned there
	if isConstOp(v.Op) {
		delete(f.consts, constKey{v.Op, v.AuxInt})
	}

	v.Block = nil
	v.Aux = nil
}

// freeBlock frees a block.  The block must be dead: no values, no edges.
func (f *Fun) freeBlock(b *Block) {
	if b.Fun == nil {
		f.Fatalf("block b%d already freed", b.ID)
	}
	if len(b.Values) != 0 || len(b.Succs) != 0 || len(b.Preds) != 0 {
		f.Fatalf("block b%d is not dead", b.ID)
	}

	b.Fun = nil
}

// -----------------------------------------------------------------------------

// ConstVal returns the function-interned constant of the given type and
// value, creating it in the entry block on first use.  The result is
// reference-identical for equal (type-selected op, value) pairs.
func (f *Fun) ConstVal(t types.Type, c int64) *Value {
	op, ok := constOpFor(t)
	if !ok {
		f.Fatalf("no constant op for type %s", t.Repr())
		return nil
	}

	key := constKey{op, c}
	if v, ok := f.consts[key]; ok {
		return v
	}

	v := f.Entry.NewValue0I(report.NoPos, op, t, c)
	f.consts[key] = v
	return v
}

// ConstBool returns the interned boolean constant.
func (f *Fun) ConstBool(t types.Type, c bool) *Value {
	auxint := int64(0)
	if c {
		auxint = 1
	}
	return f.ConstVal(t, auxint)
}

// constOpFor selects the constant op for a type.
func constOpFor(t types.Type) (Op, bool) {
	pt, ok := types.Unalias(t).(types.PrimType)
	if !ok {
		return OpInvalid, false
	}

	switch pt {
	case types.PrimBool:
		return OpConstBool, true
	case types.PrimI8, types.PrimU8:
		return OpConstI8, true
	case types.PrimI16, types.PrimU16:
		return OpConstI16, true
	case types.PrimI32, types.PrimU32:
		return OpConstI32, true
	case types.PrimInt, types.PrimUint, types.PrimI64, types.PrimU64:
		return OpConstI64, true
	case types.PrimF32:
		return OpConstF32, true
	case types.PrimF64:
		return OpConstF64, true
	}

	return OpInvalid, false
}

func isConstOp(op Op) bool {
	return OpConstBool <= op && op <= OpConstF64
}

// -----------------------------------------------------------------------------

// invalidateCFG drops all cached control-flow analyses.  Every CFG edit
// calls it.
func (f *Fun) invalidateCFG() {
	f.cachedPostorder = nil
	f.cachedIdom = nil
	f.cachedSdom = nil
	f.cachedLoopnest = nil
}

// Fatalf reports an internal SSA inconsistency and panics.
func (f *Fun) Fatalf(msg string, args ...interface{}) {
	panic(fmt.Sprintf("ssa: %s: %s", f.Name, fmt.Sprintf(msg, args...)))
}

// errorf reports a diagnosable misuse of the IR without stopping.
func (f *Fun) errorf(pos report.Pos, msg string, args ...interface{}) {
	if f.rep != nil {
		f.rep.ErrorAt(report.KindConfig, pos, msg, args...)
		return
	}

	f.Fatalf(msg, args...)
}
