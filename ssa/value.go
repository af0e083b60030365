package ssa

import (
	"fmt"
	"strings"

	"cobalt/report"
	"cobalt/types"
)

// Value is a single three-address operation in SSA form.  Values are owned
// by their block, which is owned by a function; IDs are unique per function.
// Every entry in Args contributes exactly one use to its target; block
// controls contribute one use to the control value; the function root
// contributes none.
type Value struct {
	// ID is the value's function-unique identifier.
	ID int32

	// Op is the operation computing this value.
	Op Op

	// Type is the type of the value's result.
	Type types.Type

	// AuxInt is an integer auxiliary operand (constants, sizes, offsets).
	AuxInt int64

	// Aux is a non-integer auxiliary operand.
	Aux interface{}

	// Args lists the value's arguments in order.
	Args []*Value

	// Block is the block this value belongs to.
	Block *Block

	// Pos is the source position the value derives from.
	Pos report.Pos

	// Uses counts incoming edges from other values' Args and from block
	// controls.
	Uses int32

	// Reg is the register assigned by register allocation; -1 if none.
	Reg int16

	argstorage [3]*Value
}

// AddArg appends an argument, incrementing its use count.  Self-reference
// is forbidden.
func (v *Value) AddArg(w *Value) {
	if v == w {
		v.Fatalf("cannot add %v as an argument of itself", v)
	}

	v.Args = append(v.Args, w)
	w.Uses++
}

// SetArg replaces argument i, maintaining use counts on both the old and
// new targets.
func (v *Value) SetArg(i int, w *Value) {
	v.Args[i].Uses--
	v.Args[i] = w
	w.Uses++
}

// SetArgs1 resets the argument list to a single argument.
func (v *Value) SetArgs1(a *Value) {
	v.ResetArgs()
	v.AddArg(a)
}

// SetArgs2 resets the argument list to two arguments.
func (v *Value) SetArgs2(a, b *Value) {
	v.ResetArgs()
	v.AddArg(a)
	v.AddArg(b)
}

// ResetArgs decrements the use count of every argument and empties the
// argument list.
func (v *Value) ResetArgs() {
	for _, a := range v.Args {
		a.Uses--
	}

	v.argstorage[0] = nil
	v.argstorage[1] = nil
	v.argstorage[2] = nil
	v.Args = v.argstorage[:0]
}

// Reset repurposes the value for a new operation: the arguments are reset
// and the auxiliary operands cleared.
func (v *Value) Reset(op Op) {
	v.Op = op
	v.ResetArgs()
	v.AuxInt = 0
	v.Aux = nil
}

// Rematerializeable reports whether the value can be recomputed at its
// points of use: its op is flagged rematerializable and every argument is a
// stack or static base pointer operation.
func (v *Value) Rematerializeable() bool {
	if !opcodeTable[v.Op].rematerializable {
		return false
	}

	for _, a := range v.Args {
		if a.Op != OpSP && a.Op != OpSB {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("v%d", v.ID)
}

// LongString returns a detailed rendering of the value.
func (v *Value) LongString() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "v%d = %s", v.ID, v.Op)

	if v.Type != nil {
		sb.WriteString(" <" + v.Type.Repr() + ">")
	}

	switch v.Op {
	case OpConstBool, OpConstI8, OpConstI16, OpConstI32, OpConstI64, OpConstF32, OpConstF64:
		fmt.Fprintf(&sb, " [%d]", v.AuxInt)
	default:
		if v.Aux != nil {
			fmt.Fprintf(&sb, " {%v}", v.Aux)
		}
	}

	for _, a := range v.Args {
		sb.WriteString(" " + a.String())
	}

	return sb.String()
}

// Fatalf reports an internal SSA inconsistency through the owning function.
func (v *Value) Fatalf(msg string, args ...interface{}) {
	v.Block.Fun.Fatalf(msg, args...)
}
