package resolve

import (
	"cobalt/depm"
	"cobalt/intern"
	"cobalt/report"
	"cobalt/types"
)

// Binder links forward references and cross-file package references after
// all files of a package have been parsed.  Import resolution runs first
// (in parallel through the Importer); name resolution over the residual
// unresolved identifier sets runs second.
type Binder struct {
	pkg *depm.CoPackage
	rep *report.Reporter
	in  *intern.Interner

	importer Importer

	// imports is the shared import cache handed to the importer.
	imports map[string]*depm.CoPackage
}

// NewBinder creates a binder for a fully parsed package.  importer may be
// nil for packages without imports.
func NewBinder(pkg *depm.CoPackage, rep *report.Reporter, in *intern.Interner, importer Importer) *Binder {
	return &Binder{
		pkg:      pkg,
		rep:      rep,
		in:       in,
		importer: importer,
		imports:  make(map[string]*depm.CoPackage),
	}
}

// Bind runs import resolution then name resolution.  It returns a success
// flag; an errored bind still yields an AST safe to inspect.
func (b *Binder) Bind() bool {
	if !b.resolveImports() {
		// an import failure skips name resolution entirely
		return false
	}

	b.resolveNames()

	return b.rep.ShouldProceed()
}

// -----------------------------------------------------------------------------

// resolveNames resolves each file's residual unresolved identifiers against
// the file scope, which by now includes package-scope and imported names.
func (b *Binder) resolveNames() {
	for _, file := range b.pkg.Files {
		for id := range file.Unresolved {
			ent := id.NodeScope().Lookup(id.Name)
			if ent == nil {
				b.rep.Report(report.Diagnostic{
					Severity: report.SevError,
					Kind:     report.KindReference,
					Position: b.rep.Position(id.Pos()),
					Message:  id.Name.String() + " undefined",
					Code:     report.CodeBind,
				})
				continue
			}

			id.Ent = ent
			ent.NReads++
			delete(file.Unresolved, id)

			// rebind any types that were left hanging on this identifier
			if ut, ok := id.Type().(*types.UnresolvedType); ok {
				ut.Rebind()
			}
		}
	}
}
