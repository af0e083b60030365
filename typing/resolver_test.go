package typing

import (
	"strings"
	"testing"

	"cobalt/ast"
	"cobalt/report"
	"cobalt/types"
)

func newTestResolver() (*Resolver, *report.Reporter) {
	rep := report.NewReporter(report.LogLevelSilent, nil)
	return NewResolver(rep, types.NewCache()), rep
}

func intLit(v uint64) *ast.IntLit {
	return &ast.IntLit{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Val:      v,
		Signed:   v <= 1<<63-1,
	}
}

func floatLit(v float64) *ast.FloatLit {
	return &ast.FloatLit{ExprBase: ast.NewExprBase(report.NoPos, nil), Val: v}
}

func lastMessage(rep *report.Reporter) string {
	diags := rep.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	return diags[len(diags)-1].Message
}

// -----------------------------------------------------------------------------

func TestIntLitDefaultTypes(t *testing.T) {
	r, _ := newTestResolver()

	cases := []struct {
		val  uint64
		want types.Type
	}{
		{5, types.PrimInt},
		{0x7FFFFFFF, types.PrimInt},
		{0x80000000, types.PrimUint},
		{1 << 40, types.PrimI64},
		{1 << 63, types.PrimU64},
	}

	for _, c := range cases {
		if got := r.Resolve(intLit(c.val)); !types.Equals(got, c.want) {
			t.Errorf("literal %d typed %s, want %s", c.val, got.Repr(), c.want.Repr())
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	r, _ := newTestResolver()

	tup := &ast.TupleExpr{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Elems:    []ast.Expr{intLit(1), floatLit(2.3)},
	}

	first := r.Resolve(tup)
	second := r.Resolve(tup)

	if first != second {
		t.Errorf("Resolve must return the identical type object on repeat calls")
	}

	if first.Repr() != "(int, f64)" {
		t.Errorf("unexpected tuple type %s", first.Repr())
	}
}

// -----------------------------------------------------------------------------

func TestConvNumRetypesFittingLiteral(t *testing.T) {
	r, rep := newTestResolver()

	lit := intLit(100)
	if !r.ConvNum(types.PrimI8, lit) {
		t.Fatalf("100 must fit in i8")
	}

	if !types.Equals(lit.Type(), types.PrimI8) {
		t.Errorf("literal must be retyped to i8, got %s", lit.Type().Repr())
	}

	if rep.ErrorCount() != 0 {
		t.Errorf("no diagnostics expected")
	}
}

func TestConvNumOverflow(t *testing.T) {
	r, rep := newTestResolver()

	if r.ConvNum(types.PrimU8, intLit(300)) {
		t.Fatalf("300 must not fit in u8")
	}

	if msg := lastMessage(rep); msg != "constant 300 overflows u8" {
		t.Errorf("unexpected diagnostic %q", msg)
	}
}

func TestConvNumTruncation(t *testing.T) {
	r, rep := newTestResolver()

	if r.ConvNum(types.PrimI32, floatLit(2.5)) {
		t.Fatalf("2.5 must not convert to i32")
	}

	if msg := lastMessage(rep); msg != "constant 2.5 (type f64) truncated to i32" {
		t.Errorf("unexpected diagnostic %q", msg)
	}
}

func TestConvNumBoolPassthrough(t *testing.T) {
	r, rep := newTestResolver()

	lit := intLit(1)
	r.Resolve(lit)

	if !r.ConvNum(types.PrimBool, lit) {
		t.Fatalf("bool destinations leave the literal unchanged")
	}

	if !types.Equals(lit.Type(), types.PrimInt) {
		t.Errorf("literal type must be unchanged, got %s", lit.Type().Repr())
	}

	if rep.ErrorCount() != 0 {
		t.Errorf("no diagnostics expected")
	}
}

func TestConvNumRestUnwrap(t *testing.T) {
	r, _ := newTestResolver()

	lit := intLit(7)
	if !r.ConvNum(&types.RestType{Elem: types.PrimI64}, lit) {
		t.Fatalf("rest destination must unwrap to its element")
	}

	if !types.Equals(lit.Type(), types.PrimI64) {
		t.Errorf("literal must be retyped to the rest element, got %s", lit.Type().Repr())
	}
}

func TestConvNumInvalidDestination(t *testing.T) {
	r, rep := newTestResolver()

	if r.ConvNum(&types.ListType{Elem: types.PrimInt}, intLit(7)) {
		t.Fatalf("non-numeric destinations must fail")
	}

	if msg := lastMessage(rep); !strings.HasPrefix(msg, "invalid value 7 for type ") {
		t.Errorf("unexpected diagnostic %q", msg)
	}
}

func TestFloatNarrowing(t *testing.T) {
	r, _ := newTestResolver()

	lit := floatLit(0.5)
	if !r.ConvNum(types.PrimF32, lit) {
		t.Fatalf("0.5 narrows losslessly to f32")
	}

	r2, rep := newTestResolver()
	if r2.ConvNum(types.PrimF32, floatLit(1e300)) {
		t.Fatalf("1e300 must not fit in f32")
	}
	if rep.ErrorCount() != 1 {
		t.Errorf("expected one diagnostic")
	}
}

// -----------------------------------------------------------------------------

func TestFoldIntArithmetic(t *testing.T) {
	r, _ := newTestResolver()

	bin := func(op int, l, rr ast.Expr) *ast.BinaryExpr {
		return &ast.BinaryExpr{
			ExprBase: ast.NewExprBase(report.NoPos, nil),
			Op:       ast.Oper{Kind: op},
			Lhs:      l,
			Rhs:      rr,
		}
	}

	// ((1 + 1) / 2) + 1 folds to 2, with truncated integer division
	expr := bin(ast.OpAdd, bin(ast.OpDiv, bin(ast.OpAdd, intLit(1), intLit(1)), intLit(2)), intLit(1))

	v, ok := r.FoldInt(expr)
	if !ok || v != 2 {
		t.Errorf("fold = (%d, %v), want (2, true)", v, ok)
	}

	// truncated division: 7 / 2 == 3
	if v, ok := r.FoldInt(bin(ast.OpDiv, intLit(7), intLit(2))); !ok || v != 3 {
		t.Errorf("7/2 folded to %d", v)
	}

	// division by zero does not fold
	if _, ok := r.FoldInt(bin(ast.OpDiv, intLit(1), intLit(0))); ok {
		t.Errorf("division by zero must not fold")
	}

	// negation folds through unary ops
	neg := &ast.UnaryExpr{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Op:       ast.Oper{Kind: ast.OpNeg},
		Operand:  intLit(7),
	}
	if v, ok := r.FoldInt(bin(ast.OpDiv, neg, intLit(2))); !ok || v != -3 {
		t.Errorf("-7/2 folded to %d, want -3", v)
	}
}

func TestTupleAccessOutOfRange(t *testing.T) {
	r, rep := newTestResolver()

	tup := &ast.TupleExpr{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Elems:    []ast.Expr{intLit(1), floatLit(2.3)},
	}

	ix := &ast.IndexExpr{
		ExprBase:   ast.NewExprBase(report.NoPos, nil),
		Operand:    tup,
		ConstIndex: 4,
	}

	if !r.MaybeResolveTupleAccess(ix) {
		t.Fatalf("constant index must be handled")
	}

	if msg := lastMessage(rep); msg != "out-of-bounds tuple index 4" {
		t.Errorf("unexpected diagnostic %q", msg)
	}
}

func TestTupleSlice(t *testing.T) {
	r, _ := newTestResolver()

	tup := &ast.TupleExpr{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Elems:    []ast.Expr{intLit(1), floatLit(2.3), intLit(3)},
	}

	sl := &ast.SliceExpr{
		ExprBase: ast.NewExprBase(report.NoPos, nil),
		Operand:  tup,
		Lo:       intLit(1),
	}

	if !r.TupleSlice(sl) {
		t.Fatalf("constant bounds must be handled")
	}

	if sl.Type().Repr() != "(f64, int)" {
		t.Errorf("unexpected slice type %s", sl.Type().Repr())
	}
}
