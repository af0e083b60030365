package ssa

// Pkg is a package's worth of SSA functions.
type Pkg struct {
	// Funs maps function names to their SSA functions.
	Funs map[string]*Fun

	// Init is the package initializer, merged from the source-level init
	// functions; nil if the package has none.
	Init *Fun
}

// NewPkg creates an empty SSA package.
func NewPkg() *Pkg {
	return &Pkg{Funs: make(map[string]*Fun)}
}

// AddFun records a function in the package.
func (p *Pkg) AddFun(f *Fun) {
	p.Funs[f.Name] = f
}
