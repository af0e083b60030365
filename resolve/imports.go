package resolve

import (
	"sync"

	"cobalt/ast"
	"cobalt/depm"
	"cobalt/report"
)

// Importer fetches the package for an import path.  The imports map is an
// in/out parameter: the importer consults it for cache hits and inserts its
// own entry before returning.  Importers are invoked from multiple
// goroutines and must serialize their own map mutations.
type Importer func(imports map[string]*depm.CoPackage, path string) (*depm.CoPackage, error)

// importResult is one completed import fetch.
type importResult struct {
	file *ast.File
	imp  *ast.ImportDecl
	pkg  *depm.CoPackage
	err  error
}

// resolveImports resolves all import declarations of the package in
// parallel and binds the successful ones into their file scopes.  The join
// is an unordered barrier: if any import fails the binder records the error,
// completes all other outstanding imports, and returns false so that name
// resolution is skipped.
func (b *Binder) resolveImports() bool {
	var work []importResult
	for _, file := range b.pkg.Files {
		for _, imp := range file.Imports {
			work = append(work, importResult{file: file, imp: imp})
		}
	}

	if len(work) == 0 {
		return true
	}

	if b.importer == nil {
		for _, w := range work {
			b.rep.ErrorAt(report.KindImport, w.imp.Pos(), "no importer available for `%s`", w.imp.Path)
		}
		return false
	}

	// fetch all imports concurrently and join on the channel
	resultCh := make(chan importResult)
	var mu sync.Mutex

	for _, w := range work {
		go func(w importResult) {
			mu.Lock()
			cached, hit := b.imports[w.imp.Path]
			mu.Unlock()

			if hit {
				w.pkg = cached
			} else {
				pkg, err := b.importer(b.imports, w.imp.Path)
				if err != nil {
					w.err = err
				} else {
					w.pkg = pkg
					mu.Lock()
					b.imports[w.imp.Path] = pkg
					mu.Unlock()
				}
			}

			resultCh <- w
		}(w)
	}

	ok := true
	for range work {
		res := <-resultCh

		if res.err != nil {
			b.rep.ErrorAt(report.KindImport, res.imp.Pos(), "cannot import `%s`: %s", res.imp.Path, res.err.Error())
			ok = false
			continue
		}

		if !b.bindImport(res.file, res.imp, res.pkg) {
			ok = false
		}
	}

	close(resultCh)
	return ok
}

// bindImport binds a fetched package into the importing file's scope under
// the declaration's local name.
func (b *Binder) bindImport(file *ast.File, imp *ast.ImportDecl, pkg *depm.CoPackage) bool {
	imp.Pkg = pkg

	name := imp.LocalName
	if name == nil {
		name = b.in.GetStr(pkg.Name)
	}

	switch name.String() {
	case "_":
		// discarded import
		return true

	case ".":
		// reserved: merging the imported scope into the file scope is
		// specified but unimplemented; fail loudly rather than silently
		// accept the program
		b.rep.ErrorAt(report.KindImport, imp.Pos(), "merge imports (`.`) are not supported")
		return false
	}

	ent := &ast.Ent{Name: name, Decl: imp}
	if prev := file.Scope().Declare(ent); prev != ent {
		b.rep.ErrorAt(report.KindImport, imp.Pos(), "`%s` redeclared by import", name)
		return false
	}

	imp.Ent = ent
	return true
}
