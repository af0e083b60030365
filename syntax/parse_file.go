package syntax

import (
	"cobalt/ast"
	"cobalt/report"
)

// NOTE: Parsing functions are commented with the EBNF notation of the
// grammar they parse as well as any semantic actions they perform.

// file = {SEMI | import_decl | top_decl}
//
// ParseFile parses one source file, producing its AST.  Top-level
// declarations land in the package scope; the file's unresolved identifier
// set is left for the binder.  A successful parse returns an AST even in the
// presence of errors; consumers should check the reporter's error count
// before proceeding.
func (p *Parser) ParseFile(name string) *ast.File {
	// move the parser onto the first token
	p.next()

	p.fileScope = ast.NewScope(p.pkgScope, nil)
	p.file = ast.NewFile(p.sc.Pos(), name, p.fileScope)
	p.scope = p.fileScope

	for !p.got(EOF) {
		switch {
		case p.got(SEMI):
			p.next()

		case p.got(IMPORT):
			if imp := p.parseImport(); imp != nil {
				p.file.Imports = append(p.file.Imports, imp)
			}

		default:
			if decl := p.parseTopDecl(); decl != nil {
				p.file.Decls = append(p.file.Decls, decl)
			}
		}
	}

	return p.file
}

// import_decl = 'import' [NAME | '.'] STRING SEMI
func (p *Parser) parseImport() *ast.ImportDecl {
	imp := &ast.ImportDecl{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}
	p.next()

	switch {
	case p.got(NAME):
		imp.LocalName = p.in.Get(p.sc.TakeByteValue())
		p.next()
	case p.got(DOT):
		imp.LocalName = p.in.GetStr(".")
		p.next()
	}

	if !p.got(STRING) {
		p.reject(STRING)
		p.advance(SEMI)
		return nil
	}

	imp.Path = string(p.sc.TakeByteValue())
	p.next()
	p.expect(SEMI)

	return imp
}

// top_decl = fun_decl | type_decl | multi_decl | simple_stmt SEMI
func (p *Parser) parseTopDecl() ast.Node {
	switch p.sc.Tok() {
	case FUN:
		return p.parseFun(true)

	case TYPE:
		return p.parseTypeDecl()

	case LPAREN:
		return p.parseMultiDecl()

	default:
		stmt := p.parseSimpleStmt()
		p.stmtEnd()
		return stmt
	}
}

// multi_decl = '(' {top_decl SEMI} ')'
func (p *Parser) parseMultiDecl() ast.Node {
	md := &ast.MultiDecl{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}
	p.next()

	for !p.got(RPAREN) && !p.got(EOF) {
		if p.got(SEMI) {
			p.next()
			continue
		}

		if decl := p.parseTopDecl(); decl != nil {
			md.Decls = append(md.Decls, decl)
		}
	}

	p.expect(RPAREN)
	return md
}

// badDecl produces a placeholder declaration node at the given position.
func (p *Parser) badDecl(pos report.Pos) ast.Node {
	return &ast.BadDecl{NodeBase: ast.NewNodeBase(pos, p.scope)}
}
