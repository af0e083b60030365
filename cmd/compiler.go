package cmd

import (
	"io/ioutil"
	"path/filepath"

	"cobalt/ast"
	"cobalt/common"
	"cobalt/depm"
	"cobalt/intern"
	"cobalt/report"
	"cobalt/resolve"
	"cobalt/ssa"
	"cobalt/syntax"
	"cobalt/types"
	"cobalt/typing"
)

// Compiler represents the global state of one compilation: the module being
// compiled, the shared caches, and the reporter.
type Compiler struct {
	// rootAbsPath is the absolute path to the compilation root.
	rootAbsPath string

	// profile is the current build profile of the compiler.
	profile *BuildProfile

	mod *depm.CoModule
	pkg *depm.CoPackage

	fset  *report.FileSet
	rep   *report.Reporter
	in    *intern.Interner
	cache *types.Cache
	res   *typing.Resolver

	// uni is the shared universe scope for the compilation.
	uni *ast.Scope

	// arch is the resolved architecture configuration.
	arch *ssa.Config
}

// NewCompiler creates a new compiler rooted at the given directory.
func NewCompiler(rootRelPath string, profile *BuildProfile, logLevel int) (*Compiler, error) {
	rootAbsPath, err := filepath.Abs(rootRelPath)
	if err != nil {
		return nil, err
	}

	fset := report.NewFileSet()
	in := intern.NewInterner()

	return &Compiler{
		rootAbsPath: rootAbsPath,
		profile:     profile,
		fset:        fset,
		rep:         report.NewReporter(logLevel, fset),
		in:          in,
		cache:       types.NewCache(),
		uni:         ast.NewUniverse(in),
	}, nil
}

// Reporter exposes the compiler's reporter for the driver.
func (c *Compiler) Reporter() *report.Reporter {
	return c.rep
}

// Package returns the compiled package; nil before Analyze.
func (c *Compiler) Package() *depm.CoPackage {
	return c.pkg
}

// Arch returns the resolved architecture configuration; nil before Analyze.
func (c *Compiler) Arch() *ssa.Config {
	return c.arch
}

// Analyze runs the analysis phase of the compiler: module loading, parsing,
// and binding.  It returns whether compilation should proceed.
func (c *Compiler) Analyze() bool {
	mod, ok := depm.LoadModule(c.rootAbsPath, c.rep)
	if !ok {
		return false
	}
	c.mod = mod

	// resolve the target architecture before doing any real work
	arch, err := ssa.ArchConfig(c.profile.TargetArch)
	if err != nil {
		c.rep.ErrorAt(report.KindConfig, report.NoPos, "%s", err.Error())
		return false
	}

	// the profile overlays the registered config without mutating it
	cfg := *arch
	cfg.Optimize = c.profile.Optimize
	cfg.LoopStats = c.profile.LoopStats
	c.arch = &cfg

	c.pkg = depm.NewPackage(mod.Name, mod.Name, c.uni)
	c.res = typing.NewResolver(c.rep, c.cache)

	if !c.parsePackage() {
		return false
	}

	b := resolve.NewBinder(c.pkg, c.rep, c.in, nil)
	b.Bind()

	return c.rep.ShouldProceed()
}

// parsePackage parses every source file in the package directory.
func (c *Compiler) parsePackage() bool {
	finfos, err := ioutil.ReadDir(c.rootAbsPath)
	if err != nil {
		c.rep.ErrorAt(report.KindConfig, report.NoPos,
			"failed to read directory of package `%s`: %s", c.mod.Name, err.Error())
		return false
	}

	for _, finfo := range finfos {
		if finfo.IsDir() || filepath.Ext(finfo.Name()) != common.CobaltFileExt {
			continue
		}

		fileAbsPath := filepath.Join(c.rootAbsPath, finfo.Name())

		src, err := ioutil.ReadFile(fileAbsPath)
		if err != nil {
			c.rep.ErrorAt(report.KindConfig, report.NoPos,
				"failed to open source file at `%s`: %s", fileAbsPath, err.Error())
			continue
		}

		file := c.fset.AddFile(finfo.Name(), len(src))
		c.rep.AddSource(finfo.Name(), src)

		lexer := syntax.NewLexer(file, c.rep, src)
		p := syntax.NewParser(c.pkg.Scope, c.rep, c.in, c.res, lexer)

		c.pkg.AddFile(p.ParseFile(finfo.Name()))
	}

	if len(c.pkg.Files) == 0 {
		c.rep.ErrorAt(report.KindConfig, report.NoPos,
			"package `%s` contains no compileable source files", c.mod.Name)
		return false
	}

	return true
}
