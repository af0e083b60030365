package resolve

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"cobalt/ast"
	"cobalt/depm"
	"cobalt/intern"
	"cobalt/report"
	"cobalt/ssa"
	"cobalt/syntax"
	"cobalt/types"
	"cobalt/typing"
)

// testPkg bundles one parsed test package awaiting binding.
type testPkg struct {
	pkg *depm.CoPackage
	rep *report.Reporter
	res *typing.Resolver
	in  *intern.Interner
}

type srcFile struct {
	name string
	src  string
}

func parsePkg(t *testing.T, files ...srcFile) *testPkg {
	t.Helper()

	fset := report.NewFileSet()
	rep := report.NewReporter(report.LogLevelSilent, fset)
	in := intern.NewInterner()
	res := typing.NewResolver(rep, types.NewCache())

	uni := ast.NewUniverse(in)
	pkg := depm.NewPackage("main", "main", uni)

	for _, f := range files {
		file := fset.AddFile(f.name, len(f.src))
		lex := syntax.NewLexer(file, rep, []byte(f.src))
		p := syntax.NewParser(pkg.Scope, rep, in, res, lex)
		pkg.AddFile(p.ParseFile(f.name))
	}

	return &testPkg{pkg: pkg, rep: rep, res: res, in: in}
}

func (tp *testPkg) entType(t *testing.T, name string) types.Type {
	t.Helper()

	ent := tp.pkg.Scope.LookupLocal(tp.in.GetStr(name))
	if ent == nil {
		t.Fatalf("`%s` not declared in package scope", name)
	}

	return tp.res.EntType(ent, nil)
}

func (tp *testPkg) hasDiag(substr string) bool {
	for _, d := range tp.rep.Diagnostics() {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func TestLateBoundTupleType(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `
xs2 = (1, late_str)
v = xs2.1
late_str = "hello"
`})

	// before binding, the chain hangs off the forward reference
	if !types.IsUnresolved(tp.entType(t, "v")) {
		t.Fatalf("v must be unresolved before binding")
	}

	b := NewBinder(tp.pkg, tp.rep, tp.in, nil)
	if !b.Bind() {
		t.Fatalf("bind failed: %v", tp.rep.Diagnostics())
	}

	if got := tp.entType(t, "xs2").Repr(); got != "(int, str<5>)" {
		t.Errorf("xs2 typed %s, want (int, str<5>)", got)
	}

	if got := tp.entType(t, "v").Repr(); got != "str<5>" {
		t.Errorf("v typed %s, want str<5>", got)
	}
}

func TestForwardTemplate(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `
fun foo { _ = T1<int, f32>(1, 2.0) }
type T1<A, B> { a A; b B }
`})

	foo := tp.pkg.Scope.LookupLocal(tp.in.GetStr("foo"))
	fn := foo.Value.(*ast.FunExpr)
	asg := fn.Body.(*ast.Block).Stmts[0].(*ast.Assign)
	call := asg.RHS[0].(*ast.CallExpr)

	// resolving ahead of the binder leaves the chain unresolved
	if !types.IsUnresolved(tp.res.Resolve(call)) {
		t.Fatalf("call must be unresolved before binding")
	}

	b := NewBinder(tp.pkg, tp.rep, tp.in, nil)
	if !b.Bind() {
		t.Fatalf("bind failed: %v", tp.rep.Diagnostics())
	}

	if got := tp.res.Resolve(call).Repr(); got != "{a:int; b:f32}" {
		t.Errorf("call typed %s, want {a:int; b:f32}", got)
	}

	// the arguments keep their default literal types
	if got := tp.res.Resolve(call.Args[0]).Repr(); got != "int" {
		t.Errorf("first argument typed %s, want int", got)
	}
	if got := tp.res.Resolve(call.Args[1]).Repr(); got != "f64" {
		t.Errorf("second argument typed %s, want f64", got)
	}
}

func TestCrossFileResolution(t *testing.T) {
	tp := parsePkg(t,
		srcFile{"a.co", `a = shared + 1`},
		srcFile{"b.co", `shared = 41`},
	)

	b := NewBinder(tp.pkg, tp.rep, tp.in, nil)
	if !b.Bind() {
		t.Fatalf("bind failed: %v", tp.rep.Diagnostics())
	}

	if got := tp.entType(t, "a").Repr(); got != "int" {
		t.Errorf("a typed %s, want int", got)
	}
}

func TestUndefinedReported(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `q = missing2`})

	b := NewBinder(tp.pkg, tp.rep, tp.in, nil)
	if b.Bind() {
		t.Fatalf("bind must fail on undefined names")
	}

	found := false
	for _, d := range tp.rep.Diagnostics() {
		if d.Message == "missing2 undefined" && d.Code == report.CodeBind {
			found = true
		}
	}

	if !found {
		t.Errorf("expected `missing2 undefined` with code %s, got %v", report.CodeBind, tp.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestImportFanOut(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `
import "liba"
import lb "libb"
import _ "libc"
`})

	var mu sync.Mutex
	fetched := make(map[string]int)

	importer := func(imports map[string]*depm.CoPackage, path string) (*depm.CoPackage, error) {
		mu.Lock()
		defer mu.Unlock()

		fetched[path]++

		name := strings.TrimPrefix(path, "lib")
		pkg := depm.NewPackage("lib"+name, path, nil)
		imports[path] = pkg
		return pkg, nil
	}

	b := NewBinder(tp.pkg, tp.rep, tp.in, importer)
	if !b.Bind() {
		t.Fatalf("bind failed: %v", tp.rep.Diagnostics())
	}

	if len(fetched) != 3 {
		t.Errorf("expected 3 fetched paths, got %v", fetched)
	}

	fileScope := tp.pkg.Files[0].Scope()

	if fileScope.LookupLocal(tp.in.GetStr("liba")) == nil {
		t.Errorf("default import must bind under the package's own name")
	}

	if fileScope.LookupLocal(tp.in.GetStr("lb")) == nil {
		t.Errorf("named import must bind under the local name")
	}

	if fileScope.LookupLocal(tp.in.GetStr("libc")) != nil {
		t.Errorf("`_` import must not bind")
	}
}

func TestImportFailureSkipsResolution(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `
import "broken"
q = missing3
`})

	importer := func(imports map[string]*depm.CoPackage, path string) (*depm.CoPackage, error) {
		return nil, errors.New("no such package")
	}

	b := NewBinder(tp.pkg, tp.rep, tp.in, importer)
	if b.Bind() {
		t.Fatalf("bind must fail on import errors")
	}

	if !tp.hasDiag("cannot import `broken`") {
		t.Errorf("expected import diagnostic, got %v", tp.rep.Diagnostics())
	}

	// name resolution is skipped after an import failure
	if tp.hasDiag("missing3 undefined") {
		t.Errorf("name resolution must be skipped after import errors")
	}
}

func TestDotImportFailsLoudly(t *testing.T) {
	tp := parsePkg(t, srcFile{"a.co", `import . "lib"`})

	importer := func(imports map[string]*depm.CoPackage, path string) (*depm.CoPackage, error) {
		return depm.NewPackage("lib", path, nil), nil
	}

	b := NewBinder(tp.pkg, tp.rep, tp.in, importer)
	if b.Bind() {
		t.Fatalf("merge imports must not silently succeed")
	}

	if !tp.hasDiag("merge imports (`.`) are not supported") {
		t.Errorf("expected merge diagnostic, got %v", tp.rep.Diagnostics())
	}
}

// -----------------------------------------------------------------------------

func TestArchRegistryLookup(t *testing.T) {
	if _, err := ssa.ArchConfig("generic"); err != nil {
		t.Fatalf("generic config must be registered: %s", err)
	}

	if _, err := ssa.ArchConfig("pdp11"); err == nil {
		t.Errorf("unknown architectures must fail")
	}
}
