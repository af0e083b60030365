package depm

import (
	"cobalt/ast"
)

// CoPackage is a single Cobalt package: the collection of files sharing one
// package scope.  The package scope sees all file-level top-level
// declarations; forward references across files are handled by the binder,
// not by parse order.
type CoPackage struct {
	// Name is the package's name.
	Name string

	// Path is the package's import path.
	Path string

	// Scope is the shared package scope.  Its outer scope is the universe.
	Scope *ast.Scope

	// Files lists the package's parsed files.
	Files []*ast.File
}

// NewPackage creates a package with a fresh package scope under the given
// universe scope.
func NewPackage(name, path string, universe *ast.Scope) *CoPackage {
	return &CoPackage{
		Name:  name,
		Path:  path,
		Scope: ast.NewScope(universe, nil),
	}
}

// AddFile records a parsed file as part of the package.
func (pkg *CoPackage) AddFile(file *ast.File) {
	pkg.Files = append(pkg.Files, file)
}

// Lookup finds a binding in the package scope, without walking outward.
func (pkg *CoPackage) Lookup(name string) *ast.Ent {
	for _, ent := range pkg.Scope.Decls() {
		if ent.Name.String() == name {
			return ent
		}
	}

	return nil
}
