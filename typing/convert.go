package typing

import (
	"math"
	"strconv"

	"cobalt/ast"
	"cobalt/report"
	"cobalt/types"
)

// Convert returns an expression of dst's type equivalent to expr, or nil on
// incompatibility.  Literals are retyped in place; other expressions may be
// wrapped in a conversion node.  Convert does not report: callers decide how
// a failed conversion surfaces.
func (r *Resolver) Convert(dst types.Type, expr ast.Expr) ast.Expr {
	// an empty list literal takes its element type from the destination
	if le, ok := expr.(*ast.ListExpr); ok && len(le.Elems) == 0 && le.Type() == nil {
		if _, isList := types.Unalias(dst).(*types.ListType); isList {
			le.SetType(dst)
			return le
		}
	}

	src := r.Resolve(expr)

	if types.Equals(dst, src) {
		return expr
	}

	// literal retyping
	if isNumLit(expr) {
		if r.numLitFits(dst, expr) {
			expr.SetType(dst)
			return expr
		}
		return nil
	}

	udst := types.Unalias(dst)

	// optional wrapping: T converts to T?
	if ot, ok := udst.(*types.OptionalType); ok {
		if inner := r.Convert(ot.Inner, expr); inner != nil {
			return wrapConv(inner, dst)
		}
		return nil
	}

	// union admission: T converts to a union containing T
	if ut, ok := udst.(*types.UnionType); ok && ut.Contains(src) {
		return wrapConv(expr, dst)
	}

	// implicit numeric widening
	if types.IsNumeric(src) && types.IsNumeric(udst) && widens(src, udst) {
		return wrapConv(expr, dst)
	}

	return nil
}

// ConvertLossless converts expr to dst, additionally requiring that numeric
// literals fit bit-exactly in dst.  Failed literal conversions are reported
// through ConvNum; other failures return nil silently.
func (r *Resolver) ConvertLossless(dst types.Type, expr ast.Expr) ast.Expr {
	if isNumLit(expr) {
		if r.ConvNum(dst, expr) {
			return expr
		}
		return nil
	}

	return r.Convert(dst, expr)
}

// wrapConv wraps an expression in a conversion node of the given type.
func wrapConv(expr ast.Expr, dst types.Type) ast.Expr {
	conv := &ast.ConvExpr{
		ExprBase: ast.NewExprBase(expr.Pos(), expr.NodeScope()),
		Operand:  expr,
	}
	conv.SetType(dst)
	return conv
}

// widens reports whether src implicitly widens to dst: same arithmetic
// family, destination at least as wide, and signedness preserved (an
// unsigned source additionally widens into a strictly larger signed type).
func widens(src, dst types.Type) bool {
	if !types.SameFamily(src, dst) {
		return false
	}

	sb, db := types.BitSize(src), types.BitSize(dst)
	if db < sb {
		return false
	}

	if types.IsInteger(src) {
		if types.IsSigned(src) && !types.IsSigned(dst) {
			return false
		}
		if !types.IsSigned(src) && types.IsSigned(dst) && db == sb {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// ConvNum applies the numeric literal conversion policy to a literal,
// retyping it to dst when the value fits losslessly.  It reports overflow,
// truncation, or invalid-value diagnostics and returns false on failure.
func (r *Resolver) ConvNum(dst types.Type, lit ast.Expr) bool {
	udst := types.Unalias(dst)

	// booleans are left unchanged
	if udst == types.Type(types.PrimBool) {
		return true
	}

	// a rest destination unwraps to its element
	if rt, ok := udst.(*types.RestType); ok {
		return r.ConvNum(rt.Elem, lit)
	}

	src := r.Resolve(lit)

	if !types.IsNumeric(udst) {
		r.rep.ErrorAt(report.KindType, lit.Pos(), "invalid value %s for type %s", litRepr(lit), dst.Repr())
		return false
	}

	if r.numLitFits(udst, lit) {
		lit.SetType(dst)
		return true
	}

	if types.SameFamily(src, udst) {
		r.rep.ErrorAt(report.KindType, lit.Pos(), "constant %s overflows %s", litRepr(lit), dst.Repr())
	} else {
		r.rep.ErrorAt(report.KindType, lit.Pos(), "constant %s (type %s) truncated to %s",
			litRepr(lit), src.Repr(), dst.Repr())
	}

	return false
}

// numLitFits reports whether a numeric literal's value is bit-exactly
// representable in dst.
func (r *Resolver) numLitFits(dst types.Type, lit ast.Expr) bool {
	pt, ok := types.Unalias(dst).(types.PrimType)
	if !ok {
		return false
	}

	switch lit := lit.(type) {
	case *ast.IntLit:
		return uintFits(lit.Val, pt)
	case *ast.RuneLit:
		return uintFits(uint64(lit.Val), pt)
	case *ast.FloatLit:
		return floatFits(lit.Val, pt)
	}

	return false
}

func uintFits(v uint64, pt types.PrimType) bool {
	switch pt {
	case types.PrimI8:
		return v <= math.MaxInt8
	case types.PrimI16:
		return v <= math.MaxInt16
	case types.PrimI32:
		return v <= math.MaxInt32
	case types.PrimInt, types.PrimI64:
		return v <= math.MaxInt64
	case types.PrimU8:
		return v <= math.MaxUint8
	case types.PrimU16:
		return v <= math.MaxUint16
	case types.PrimU32:
		return v <= math.MaxUint32
	case types.PrimUint, types.PrimU64:
		return true
	case types.PrimF32:
		return uint64(float64(float32(v))) == v && v < 1<<63
	case types.PrimF64:
		return uint64(float64(v)) == v && v < 1<<63
	}

	return false
}

func floatFits(v float64, pt types.PrimType) bool {
	switch pt {
	case types.PrimF64:
		return true
	case types.PrimF32:
		return float64(float32(v)) == v
	case types.PrimI8, types.PrimI16, types.PrimI32, types.PrimI64, types.PrimInt,
		types.PrimU8, types.PrimU16, types.PrimU32, types.PrimU64, types.PrimUint:
		if math.Trunc(v) != v || v < 0 {
			return v == math.Trunc(v) && v >= math.MinInt64 && intInRange(int64(v), pt)
		}
		return v < math.MaxUint64 && uintFits(uint64(v), pt)
	}

	return false
}

func intInRange(v int64, pt types.PrimType) bool {
	switch pt {
	case types.PrimI8:
		return math.MinInt8 <= v && v <= math.MaxInt8
	case types.PrimI16:
		return math.MinInt16 <= v && v <= math.MaxInt16
	case types.PrimI32:
		return math.MinInt32 <= v && v <= math.MaxInt32
	case types.PrimInt, types.PrimI64:
		return true
	case types.PrimU8, types.PrimU16, types.PrimU32, types.PrimU64, types.PrimUint:
		return v >= 0 && uintFits(uint64(v), pt)
	}

	return false
}

// -----------------------------------------------------------------------------

func isNumLit(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.RuneLit:
		return true
	}

	return false
}

// litRepr renders a literal's value for diagnostics.
func litRepr(expr ast.Expr) string {
	switch lit := expr.(type) {
	case *ast.IntLit:
		if lit.Raw != "" {
			return lit.Raw
		}
		return utoa(lit.Val)
	case *ast.FloatLit:
		if lit.Raw != "" {
			return lit.Raw
		}
		return ftoa(lit.Val)
	case *ast.RuneLit:
		return "'" + string(lit.Val) + "'"
	}

	return "<value>"
}

func utoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
