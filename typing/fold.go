package typing

import (
	"cobalt/ast"
	"cobalt/report"
	"cobalt/types"
)

// FoldInt attempts to constant-fold an integer-valued expression.  Folding
// covers integer literals, arithmetic over them, and variables bound by
// immutable Ents whose declaration carries a constant right-hand side.
// Arithmetic is done in int64; division and remainder truncate toward zero.
func (r *Resolver) FoldInt(expr ast.Expr) (int64, bool) {
	switch expr := expr.(type) {
	case *ast.IntLit:
		if expr.Val > 0x7FFFFFFFFFFFFFFF {
			return 0, false
		}
		return int64(expr.Val), true

	case *ast.RuneLit:
		return int64(expr.Val), true

	case *ast.Ident:
		ent := expr.Ent
		if ent == nil || !ent.IsConst() {
			return 0, false
		}

		switch ent.Decl.(type) {
		case *ast.VarDecl, *ast.Assign:
			return r.FoldInt(ent.Value)
		}
		return 0, false

	case *ast.ConvExpr:
		return r.FoldInt(expr.Operand)

	case *ast.UnaryExpr:
		v, ok := r.FoldInt(expr.Operand)
		if !ok {
			return 0, false
		}
		switch expr.Op.Kind {
		case ast.OpNeg:
			return -v, true
		case ast.OpCompl:
			return ^v, true
		}
		return 0, false

	case *ast.BinaryExpr:
		lhs, ok := r.FoldInt(expr.Lhs)
		if !ok {
			return 0, false
		}
		rhs, ok := r.FoldInt(expr.Rhs)
		if !ok {
			return 0, false
		}
		return foldIntOp(expr.Op.Kind, lhs, rhs)
	}

	return 0, false
}

func foldIntOp(op int, lhs, rhs int64) (int64, bool) {
	switch op {
	case ast.OpAdd:
		return lhs + rhs, true
	case ast.OpSub:
		return lhs - rhs, true
	case ast.OpMul:
		return lhs * rhs, true
	case ast.OpDiv:
		if rhs == 0 {
			return 0, false
		}
		return lhs / rhs, true
	case ast.OpRem:
		if rhs == 0 {
			return 0, false
		}
		return lhs % rhs, true
	case ast.OpShl:
		if rhs < 0 || rhs > 63 {
			return 0, false
		}
		return lhs << uint(rhs), true
	case ast.OpShr:
		if rhs < 0 || rhs > 63 {
			return 0, false
		}
		return lhs >> uint(rhs), true
	case ast.OpAnd:
		return lhs & rhs, true
	case ast.OpOr:
		return lhs | rhs, true
	case ast.OpXor:
		return lhs ^ rhs, true
	case ast.OpAndNot:
		return lhs &^ rhs, true
	}

	return 0, false
}

// -----------------------------------------------------------------------------

// MaybeResolveTupleAccess constant-folds the index of a tuple access and
// assigns the element type.  It returns false if the operand is not a tuple
// or the index does not fold to a constant; an out-of-range constant index
// is reported and still counts as handled.
func (r *Resolver) MaybeResolveTupleAccess(ix *ast.IndexExpr) bool {
	tt, ok := types.Unalias(r.Resolve(ix.Operand)).(*types.TupleType)
	if !ok {
		return false
	}

	idx := ix.ConstIndex
	if idx < 0 {
		v, ok := r.FoldInt(ix.Index)
		if !ok {
			return false
		}
		idx = int(v)
	}

	if idx < 0 || idx >= len(tt.Elems) {
		r.rep.ErrorAt(report.KindType, ix.Pos(), "out-of-bounds tuple index %d", idx)
		ix.SetType(types.NewUnresolvedType(ix))
		return true
	}

	ix.ConstIndex = idx
	ix.SetType(tt.Elems[idx])
	return true
}

// TupleSlice constant-folds the bounds of a tuple slice and assigns the
// sliced tuple type.  Missing bounds default to the tuple's ends.  It
// returns false if the operand is not a tuple or a bound does not fold.
func (r *Resolver) TupleSlice(sl *ast.SliceExpr) bool {
	tt, ok := types.Unalias(r.Resolve(sl.Operand)).(*types.TupleType)
	if !ok {
		return false
	}

	lo, hi := int64(0), int64(len(tt.Elems))

	if sl.Lo != nil {
		v, ok := r.FoldInt(sl.Lo)
		if !ok {
			return false
		}
		lo = v
	}

	if sl.Hi != nil {
		v, ok := r.FoldInt(sl.Hi)
		if !ok {
			return false
		}
		hi = v
	}

	if lo < 0 || hi > int64(len(tt.Elems)) || lo > hi {
		r.rep.ErrorAt(report.KindType, sl.Pos(), "out-of-bounds tuple slice [%d:%d]", lo, hi)
		sl.SetType(types.NewUnresolvedType(sl))
		return true
	}

	sl.SetType(r.cache.GetTupleType(tt.Elems[lo:hi]))
	return true
}

// -----------------------------------------------------------------------------

func (r *Resolver) resolveIndex(ix *ast.IndexExpr) types.Type {
	opType := r.Resolve(ix.Operand)

	if ut := r.dependOn(ix, opType); ut != nil {
		return ut
	}

	switch t := types.Unalias(opType).(type) {
	case *types.TupleType:
		if !r.MaybeResolveTupleAccess(ix) {
			return r.errorType(ix, "tuple index must be a constant expression")
		}
		return ix.Type()

	case *types.ListType:
		return t.Elem

	case *types.StrType:
		return types.PrimU8
	}

	return r.errorType(ix, "cannot index value of type %s", opType.Repr())
}

func (r *Resolver) resolveSlice(sl *ast.SliceExpr) types.Type {
	opType := r.Resolve(sl.Operand)

	if ut := r.dependOn(sl, opType); ut != nil {
		return ut
	}

	switch types.Unalias(opType).(type) {
	case *types.TupleType:
		if !r.TupleSlice(sl) {
			return r.errorType(sl, "tuple slice bounds must be constant expressions")
		}
		return sl.Type()

	case *types.ListType:
		return opType

	case *types.StrType:
		if lo, hi, ok := r.foldSliceBounds(sl); ok {
			return r.cache.GetStrType(int(hi - lo))
		}
		return r.cache.GetStrType(-1)
	}

	return r.errorType(sl, "cannot slice value of type %s", opType.Repr())
}

// foldSliceBounds folds both bounds of a slice over a sized string.
func (r *Resolver) foldSliceBounds(sl *ast.SliceExpr) (int64, int64, bool) {
	st, _ := types.Unalias(r.Resolve(sl.Operand)).(*types.StrType)
	if st == nil || st.Len < 0 {
		return 0, 0, false
	}

	lo, hi := int64(0), int64(st.Len)

	if sl.Lo != nil {
		v, ok := r.FoldInt(sl.Lo)
		if !ok {
			return 0, 0, false
		}
		lo = v
	}

	if sl.Hi != nil {
		v, ok := r.FoldInt(sl.Hi)
		if !ok {
			return 0, 0, false
		}
		hi = v
	}

	if lo < 0 || hi < lo || hi > int64(st.Len) {
		return 0, 0, false
	}

	return lo, hi, true
}
