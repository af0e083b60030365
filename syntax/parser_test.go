package syntax

import (
	"strings"
	"testing"

	"cobalt/ast"
	"cobalt/intern"
	"cobalt/report"
	"cobalt/types"
	"cobalt/typing"
)

// testCtx bundles the state of one parsed test source.
type testCtx struct {
	file     *ast.File
	pkgScope *ast.Scope
	rep      *report.Reporter
	res      *typing.Resolver
	in       *intern.Interner
}

func parseSource(t *testing.T, src string) *testCtx {
	t.Helper()

	fset := report.NewFileSet()
	rep := report.NewReporter(report.LogLevelSilent, fset)
	in := intern.NewInterner()
	res := typing.NewResolver(rep, types.NewCache())

	uni := ast.NewUniverse(in)
	pkgScope := ast.NewScope(uni, nil)

	file := fset.AddFile("test.co", len(src))
	lex := NewLexer(file, rep, []byte(src))
	p := NewParser(pkgScope, rep, in, res, lex)

	return &testCtx{
		file:     p.ParseFile("test.co"),
		pkgScope: pkgScope,
		rep:      rep,
		res:      res,
		in:       in,
	}
}

func (c *testCtx) lookup(t *testing.T, name string) *ast.Ent {
	t.Helper()

	ent := c.pkgScope.LookupLocal(c.in.GetStr(name))
	if ent == nil {
		t.Fatalf("`%s` not declared in package scope", name)
	}
	return ent
}

func (c *testCtx) entType(t *testing.T, name string) types.Type {
	t.Helper()
	return c.res.EntType(c.lookup(t, name), nil)
}

func (c *testCtx) hasDiag(substr, code string) bool {
	for _, d := range c.rep.Diagnostics() {
		if strings.Contains(d.Message, substr) && (code == "" || d.Code == code) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func TestTupleLiteralIndexing(t *testing.T) {
	c := parseSource(t, `
xs = (1, 2.3, true, "3")
b0 = xs.0
b1 = xs.1
b2 = xs.2
b3 = xs.3
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	want := map[string]string{
		"xs": "(int, f64, bool, str<1>)",
		"b0": "int",
		"b1": "f64",
		"b2": "bool",
		"b3": "str<1>",
	}

	for name, repr := range want {
		if got := c.entType(t, name).Repr(); got != repr {
			t.Errorf("%s typed %s, want %s", name, got, repr)
		}
	}
}

func TestTupleIndexOutOfBounds(t *testing.T) {
	c := parseSource(t, `
xs = (1, 2.3, true, "3")
b4 = xs.4
`)

	c.entType(t, "b4")

	if !c.hasDiag("out-of-bounds tuple index 4", "") {
		t.Errorf("expected out-of-bounds diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestConstantFoldedTupleIndex(t *testing.T) {
	c := parseSource(t, `
xs = (1, 2.3, 4.5)
z i64 = 1
y = z
a2 = xs[y + 1]
`)

	if got := c.entType(t, "a2").Repr(); got != "f64" {
		t.Errorf("a2 typed %s, want f64", got)
	}
}

func TestFoldedIndexWithDivision(t *testing.T) {
	// division inside the folded index uses the declared literal type's
	// truncated arithmetic
	c := parseSource(t, `
xs = (1, 2.3, 4.5)
z i64 = 1
y = z
a2 = xs[((y + 1) / 2) + 1]
`)

	if got := c.entType(t, "a2").Repr(); got != "f64" {
		t.Errorf("a2 typed %s, want f64", got)
	}
}

func TestTupleSliceExpr(t *testing.T) {
	c := parseSource(t, `
xs = (1, 2.3, true)
ys = xs[1:3]
zs = xs[:2]
`)

	if got := c.entType(t, "ys").Repr(); got != "(f64, bool)" {
		t.Errorf("ys typed %s, want (f64, bool)", got)
	}

	if got := c.entType(t, "zs").Repr(); got != "(int, f64)" {
		t.Errorf("zs typed %s, want (int, f64)", got)
	}
}

// -----------------------------------------------------------------------------

func TestImplicitReturnRewrite(t *testing.T) {
	c := parseSource(t, `fun f() i32 { 3 }`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	fn := c.lookup(t, "f").Value.(*ast.FunExpr)
	block := fn.Body.(*ast.Block)

	ret, ok := block.Stmts[len(block.Stmts)-1].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("last statement must be rewritten to a return")
	}

	if !types.Equals(ret.Value.Type(), types.PrimI32) {
		t.Errorf("return value typed %s, want i32", ret.Value.Type().Repr())
	}

	if !types.Equals(fn.Sig.Result, types.PrimI32) {
		t.Errorf("result typed %s, want i32", fn.Sig.Result.Repr())
	}
}

func TestVoidResultInference(t *testing.T) {
	c := parseSource(t, `fun g() { }`)

	fn := c.lookup(t, "g").Value.(*ast.FunExpr)
	if !types.Equals(fn.Sig.Result, types.PrimVoid) {
		t.Errorf("result typed %s, want void", fn.Sig.Result.Repr())
	}
}

func TestImplicitReturnMismatch(t *testing.T) {
	c := parseSource(t, `fun f() i8 { 300 }`)

	if c.rep.ErrorCount() == 0 {
		t.Errorf("expected a diagnostic for the unconvertible result")
	}
}

func TestArrowResultInference(t *testing.T) {
	c := parseSource(t, `fun double(x int) -> x + x`)

	fn := c.lookup(t, "double").Value.(*ast.FunExpr)
	if !types.Equals(fn.Sig.Result, types.PrimInt) {
		t.Errorf("result typed %s, want int", fn.Sig.Result.Repr())
	}
}

func TestReturnResultInference(t *testing.T) {
	c := parseSource(t, `
fun pick(c bool) {
	if c {
		return 1
	}
	return 2.5
}
`)

	fn := c.lookup(t, "pick").Value.(*ast.FunExpr)
	if _, ok := fn.Sig.Result.(*types.UnionType); !ok {
		t.Errorf("mixed returns infer a union, got %s", fn.Sig.Result.Repr())
	}
}

// -----------------------------------------------------------------------------

func TestUnusedVariableWarning(t *testing.T) {
	c := parseSource(t, `fun h { x = 1 }`)

	if !c.hasDiag("x declared and not used", report.CodeUnusedVar) {
		t.Errorf("expected unused-variable warning, got %v", c.rep.Diagnostics())
	}
}

func TestUnusedParameterWarning(t *testing.T) {
	c := parseSource(t, `fun p(a int) { return }`)

	if !c.hasDiag("parameter a declared and not used", report.CodeUnusedParam) {
		t.Errorf("expected unused-parameter warning, got %v", c.rep.Diagnostics())
	}
}

func TestStructFieldsExemptFromUnused(t *testing.T) {
	c := parseSource(t, `type Point { x f64; y f64 }`)

	if c.rep.WarningCount() != 0 {
		t.Errorf("struct fields must not warn, got %v", c.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestGroupedParameterTypes(t *testing.T) {
	c := parseSource(t, `fun add(a, b int) int { return a + b }`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	fn := c.lookup(t, "add").Value.(*ast.FunExpr)
	for _, param := range fn.Sig.Params {
		if !types.Equals(param.Typ, types.PrimInt) {
			t.Errorf("parameter typed %s, want int", param.Typ.Repr())
		}
	}
}

func TestAllTypedParameters(t *testing.T) {
	c := parseSource(t, `fun sig(int, f32) {}`)

	fn := c.lookup(t, "sig").Value.(*ast.FunExpr)
	if len(fn.Sig.Params) != 2 || fn.Sig.Params[0].Name != nil {
		t.Fatalf("expected two unnamed parameters")
	}

	if !types.Equals(fn.Sig.Params[1].Typ, types.PrimF32) {
		t.Errorf("second parameter typed %s, want f32", fn.Sig.Params[1].Typ.Repr())
	}
}

func TestMixedParametersError(t *testing.T) {
	c := parseSource(t, `fun bad(a int, f32) {}`)

	if !c.hasDiag("mixed named and unnamed parameters", "") {
		t.Errorf("expected mixed-parameters diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestRestParameterPlacement(t *testing.T) {
	c := parseSource(t, `fun v(xs ...int) { _ = xs }`)
	if c.rep.ErrorCount() != 0 {
		t.Fatalf("trailing rest parameter is legal: %v", c.rep.Diagnostics())
	}

	c = parseSource(t, `fun w(a ...int, b ...int) { _ = a; _ = b }`)
	if !c.hasDiag("rest parameter must be the last parameter", "") {
		t.Errorf("expected rest-placement diagnostic, got %v", c.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestParenDiscarded(t *testing.T) {
	c := parseSource(t, `y = (5)`)

	ent := c.lookup(t, "y")
	if _, isTuple := ent.Value.(*ast.TupleExpr); isTuple {
		t.Errorf("a parenthesized single element must not form a tuple")
	}

	if got := c.entType(t, "y").Repr(); got != "int" {
		t.Errorf("y typed %s, want int", got)
	}
}

func TestEmptyTuple(t *testing.T) {
	c := parseSource(t, `e = ()`)

	if got := c.entType(t, "e").Repr(); got != "()" {
		t.Errorf("e typed %s, want ()", got)
	}
}

func TestListElementWidening(t *testing.T) {
	c := parseSource(t, `l = [1, 2.5]`)

	if got := c.entType(t, "l").Repr(); got != "[f64]" {
		t.Errorf("l typed %s, want [f64]", got)
	}
}

func TestEmptyListNeedsContext(t *testing.T) {
	c := parseSource(t, `
m = []
n [int] = []
`)

	c.entType(t, "m")
	if !c.hasDiag("empty list literal requires a type context", "") {
		t.Errorf("expected context diagnostic, got %v", c.rep.Diagnostics())
	}

	if got := c.entType(t, "n").Repr(); got != "[int]" {
		t.Errorf("n typed %s, want [int]", got)
	}
}

// -----------------------------------------------------------------------------

func TestVarDeclConversion(t *testing.T) {
	c := parseSource(t, `z i64 = 1`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	ent := c.lookup(t, "z")
	if !types.Equals(ent.Type, types.PrimI64) {
		t.Errorf("z typed %s, want i64", ent.Type.Repr())
	}

	if !types.Equals(ent.Value.Type(), types.PrimI64) {
		t.Errorf("initializer must be retyped to i64")
	}
}

func TestVarDeclOverflow(t *testing.T) {
	c := parseSource(t, `b u8 = 300`)

	if !c.hasDiag("constant 300 overflows u8", "") {
		t.Errorf("expected overflow diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestVarDeclArityMismatch(t *testing.T) {
	c := parseSource(t, `a, b int = 1`)

	if !c.hasDiag("assignment count mismatch", "") {
		t.Errorf("expected arity diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestRedeclarationError(t *testing.T) {
	c := parseSource(t, `
fun d() {
	x int = 1
	x int = 2
	_ = x
}
`)

	if !c.hasDiag("redeclared in this scope", "") {
		t.Errorf("expected redeclaration diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestBlankNeverDeclared(t *testing.T) {
	c := parseSource(t, `
_ = 1
_ = 2
`)

	if c.rep.ErrorCount() != 0 {
		t.Errorf("`_` must be assignable repeatedly: %v", c.rep.Diagnostics())
	}

	if c.pkgScope.LookupLocal(c.in.GetStr("_")) != nil {
		t.Errorf("`_` must never be declared")
	}
}

// -----------------------------------------------------------------------------

func TestAssignmentPromotion(t *testing.T) {
	c := parseSource(t, `
fun outerScopes() {
	x = 1
	if x == 1 {
		x = 2
		y = 3
		_ = y
	}
	_ = x
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	fn := c.lookup(t, "outerScopes").Value.(*ast.FunExpr)
	block := fn.Body.(*ast.Block)

	// `x = 2` inside the if stores to the function-local x
	ife := block.Stmts[1].(*ast.IfExpr)
	inner := ife.Then.(*ast.Block)

	store := inner.Stmts[0].(*ast.Assign)
	if store.Decls[0] {
		t.Errorf("store to a function-local binding must not promote")
	}

	decl := inner.Stmts[1].(*ast.Assign)
	if !decl.Decls[0] {
		t.Errorf("assignment to an undeclared name must promote to a declaration")
	}
}

func TestInitStoresToPackageScope(t *testing.T) {
	c := parseSource(t, `
counter = 0
fun init {
	counter = 1
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	ent := c.lookup(t, "counter")
	if ent.NWrites != 1 {
		t.Errorf("init must store to the package-scope binding, writes = %d", ent.NWrites)
	}
}

func TestInitSignatureChecks(t *testing.T) {
	c := parseSource(t, `fun init(a int) { _ = a; return }`)

	if !c.hasDiag("init function must have no parameters", "") {
		t.Errorf("expected init diagnostic, got %v", c.rep.Diagnostics())
	}
}

func TestCompoundAssignLowering(t *testing.T) {
	c := parseSource(t, `
fun inc() {
	j = 0
	j += 2
	j++
	_ = j
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	fn := c.lookup(t, "inc").Value.(*ast.FunExpr)
	block := fn.Body.(*ast.Block)

	plus := block.Stmts[1].(*ast.Assign)
	if plus.Op != ast.OpAdd {
		t.Errorf("`+=` must lower to an add assignment")
	}

	incr := block.Stmts[2].(*ast.Assign)
	if incr.Op != ast.OpAdd {
		t.Errorf("`++` must lower to an add-by-one assignment")
	}
}

func TestIncOnNonMutable(t *testing.T) {
	c := parseSource(t, `fun i2() { 3++ }`)

	if !c.hasDiag("cannot increment or decrement a non-mutable target", "") {
		t.Errorf("expected mutability diagnostic, got %v", c.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestTemplateCallBacktracking(t *testing.T) {
	// with the type declared first, no binder is needed
	c := parseSource(t, `
type Pair<A, B> { a A; b B }
fun mk() {
	_ = Pair<int, f32>(1, 2.0)
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	fn := c.lookup(t, "mk").Value.(*ast.FunExpr)
	asg := fn.Body.(*ast.Block).Stmts[0].(*ast.Assign)
	call := asg.RHS[0].(*ast.CallExpr)

	if got := c.res.Resolve(call).Repr(); got != "{a:int; b:f32}" {
		t.Errorf("call typed %s, want {a:int; b:f32}", got)
	}
}

func TestComparisonNotTemplate(t *testing.T) {
	c := parseSource(t, `
fun cmp(a, b int) bool {
	return a < b
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("a comparison must not parse as a template call: %v", c.rep.Diagnostics())
	}
}

func TestComparisonChainNotTemplate(t *testing.T) {
	// a < b, d > 2 — the template alternative fails (no call parens) and
	// the comparison parse must win after rollback
	c := parseSource(t, `
fun cmp2(a, b, d int) {
	x, y = a < b, d > 2
	_ = x
	_ = y
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestUnresolvedInvariant(t *testing.T) {
	c := parseSource(t, `
known = 1
a = known
b = missing
`)

	if len(c.file.Unresolved) != 1 {
		t.Fatalf("expected exactly one unresolved identifier, got %d", len(c.file.Unresolved))
	}

	for id := range c.file.Unresolved {
		if id.Name.String() != "missing" {
			t.Errorf("unexpected unresolved identifier `%s`", id.Name)
		}
		if id.Ent != nil {
			t.Errorf("unresolved identifiers must have no binding")
		}
	}
}

func TestErrorRecovery(t *testing.T) {
	c := parseSource(t, `
fun r() {
	1 +
	return
}
ok = 5
`)

	if c.rep.ErrorCount() == 0 {
		t.Fatalf("expected at least one syntax error")
	}

	// the parser must keep going and still see the later declaration
	if got := c.entType(t, "ok").Repr(); got != "int" {
		t.Errorf("recovery lost the trailing declaration")
	}
}

func TestCommentsIgnoredByDefault(t *testing.T) {
	c := parseSource(t, `
// leading comment
x = 1 // trailing comment
/* block
comment */
y = x
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}

	if got := c.entType(t, "y").Repr(); got != "int" {
		t.Errorf("y typed %s, want int", got)
	}
}

func TestWhileAndForParse(t *testing.T) {
	c := parseSource(t, `
fun loops() {
	i = 0
	while i < 10 {
		i++
	}
	for j = 0; j < 3; j++ {
		i += j
	}
	_ = i
}
`)

	if c.rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", c.rep.Diagnostics())
	}
}
