package syntax

import (
	"cobalt/ast"
	"cobalt/types"
)

// block = '{' {stmt SEMI} '}'
//
// parseBlock parses a block in a fresh nested scope.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}

	p.pushScope(nil)
	defer p.popScope()

	if !p.expect(LBRACE) {
		p.advance(RBRACE, SEMI)
		if p.got(RBRACE) {
			p.next()
		}
		return block
	}

	for !p.got(RBRACE) && !p.got(EOF) {
		if p.got(SEMI) {
			p.next()
			continue
		}

		if stmt := p.parseStmt(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	p.expect(RBRACE)
	return block
}

// stmt = return_stmt | branch_stmt | fun_decl | type_decl | if_expr
//
//	| while_expr | for_expr | simple_stmt
func (p *Parser) parseStmt() ast.Node {
	switch p.sc.Tok() {
	case RETURN:
		return p.parseReturn()

	case BREAK, CONTINUE:
		return p.parseBranch()

	case FUN:
		return p.parseFun(false)

	case TYPE:
		return p.parseTypeDecl()

	case IF:
		stmt := p.parseIf()
		p.stmtEnd()
		return stmt

	case WHILE:
		stmt := p.parseWhile()
		p.stmtEnd()
		return stmt

	case FOR:
		stmt := p.parseFor()
		p.stmtEnd()
		return stmt
	}

	stmt := p.parseSimpleStmt()
	p.stmtEnd()
	return stmt
}

// return_stmt = 'return' [expr] SEMI
//
// Each return registers its expression's type with the enclosing function
// for result inference.
func (p *Parser) parseReturn() ast.Node {
	ret := &ast.ReturnStmt{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}
	p.next()

	if !p.gotOneOf(SEMI, RBRACE, EOF) {
		ret.Value = p.parseExpr()
	}

	if p.fun == nil {
		p.errorf(ret.Pos(), "return outside of function")
	} else {
		if ret.Value != nil {
			p.fun.AddInferredReturnType(p.res.Resolve(ret.Value))
		} else {
			p.fun.AddInferredReturnType(types.PrimVoid)
		}
	}

	p.stmtEnd()
	return ret
}

// branch_stmt = ('break' | 'continue') SEMI
func (p *Parser) parseBranch() ast.Node {
	kind := ast.BranchBreak
	if p.got(CONTINUE) {
		kind = ast.BranchContinue
	}

	br := &ast.BranchStmt{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope), Tok: kind}
	p.next()
	p.stmtEnd()
	return br
}

// if_expr = 'if' expr block ['else' (if_expr | block)]
//
// The condition gets its own nested scope, shared with both branches.
func (p *Parser) parseIf() ast.Expr {
	ife := &ast.IfExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}
	p.next()

	p.pushScope(nil)
	defer p.popScope()

	ife.Cond = p.parseExpr()
	ife.Then = p.parseBlock()

	if p.got(ELSE) {
		p.next()
		if p.got(IF) {
			ife.Else = p.parseIf()
		} else {
			ife.Else = p.parseBlock()
		}
	}

	return ife
}

// while_expr = 'while' expr block
func (p *Parser) parseWhile() ast.Expr {
	we := &ast.WhileExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}
	p.next()

	p.pushScope(nil)
	defer p.popScope()

	we.Cond = p.parseExpr()
	we.Body = p.parseBlock()
	return we
}

// for_expr = 'for' [simple_stmt] ';' [expr] ';' [simple_stmt] block
func (p *Parser) parseFor() ast.Expr {
	fe := &ast.ForExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}
	p.next()

	p.pushScope(nil)
	defer p.popScope()

	if !p.got(SEMI) {
		fe.Init = p.parseSimpleStmt()
	}
	p.expect(SEMI)

	if !p.got(SEMI) {
		fe.Cond = p.parseExpr()
	}
	p.expect(SEMI)

	if !p.got(LBRACE) {
		fe.Post = p.parseSimpleStmt()
	}

	fe.Body = p.parseBlock()
	return fe
}

// -----------------------------------------------------------------------------

// simple_stmt = expr_list '=' expr_list
//
//	| expr_list type_expr ['=' expr_list]
//	| expr assign_op expr
//	| expr ('++' | '--')
//	| expr
func (p *Parser) parseSimpleStmt() ast.Node {
	lhs := p.parseExprList()

	switch {
	case p.got(ASSIGN):
		return p.parseAssign(lhs)

	case IsAssignOp(p.sc.Tok()):
		return p.parseCompoundAssign(lhs)

	case p.got(INC) || p.got(DEC):
		return p.parseIncDec(lhs)

	case p.typeStart():
		return p.parseVarDecl(lhs)
	}

	if len(lhs) > 1 {
		p.errorf(lhs[1].Pos(), "unexpected comma-separated expressions")
	}

	return lhs[0]
}

// typeStart reports whether the current token can begin a type expression
// following a declaration's name list.
func (p *Parser) typeStart() bool {
	switch p.sc.Tok() {
	case NAME, LBRACKET, LPAREN, ELLIPSIS:
		return true
	}

	return false
}

// var_decl = name_list [type_expr] ['=' expr_list]
//
// The LHS must be identifiers.  If both a type and values are given, each
// value is lossless-converted to the declared type.  The number of names
// must match the number of values.
func (p *Parser) parseVarDecl(lhs []ast.Expr) ast.Node {
	vd := &ast.VarDecl{NodeBase: ast.NewNodeBase(lhs[0].Pos(), p.scope)}

	for _, expr := range lhs {
		id, ok := expr.(*ast.Ident)
		if !ok {
			p.errorf(expr.Pos(), "left side of declaration must be a name")
			return p.badDecl(expr.Pos())
		}
		vd.Names = append(vd.Names, id)
	}

	vd.TypeX = p.parseTypeExpr()
	declType := p.res.ResolveTypeExpr(vd.TypeX)

	if p.got(ASSIGN) {
		p.next()
		vd.Values = p.parseExprList()
	}

	if len(vd.Values) > 0 && len(vd.Values) != len(vd.Names) {
		p.errorf(vd.Pos(), "assignment count mismatch: %d names but %d values",
			len(vd.Names), len(vd.Values))
	}

	for i, val := range vd.Values {
		if conv := p.res.ConvertLossless(declType, val); conv != nil {
			vd.Values[i] = conv
		} else if !types.IsUnresolved(declType) {
			p.errorf(val.Pos(), "cannot use value of type %s as %s in declaration",
				p.res.Resolve(val).Repr(), declType.Repr())
		}
	}

	// the uses already recorded for the names are retracted: these are
	// binding occurrences
	for i, id := range vd.Names {
		p.retractUse(id)

		var value ast.Expr
		if i < len(vd.Values) {
			value = vd.Values[i]
		}

		if ent := p.declare(p.declScope(), id, vd, value); ent != nil {
			ent.Type = declType
		}
	}

	return vd
}

// assign = expr_list '=' expr_list
//
// `=` stores to an existing binding if it is visible under the store rule;
// otherwise the left side is promoted to a new declaration.
func (p *Parser) parseAssign(lhs []ast.Expr) ast.Node {
	asg := &ast.Assign{
		NodeBase: ast.NewNodeBase(lhs[0].Pos(), p.scope),
		LHS:      lhs,
		Decls:    make([]bool, len(lhs)),
	}

	p.next()
	asg.RHS = p.parseExprList()

	if len(asg.RHS) != len(lhs) {
		p.errorf(asg.Pos(), "assignment count mismatch: %d targets but %d values",
			len(lhs), len(asg.RHS))
	}

	for i, target := range lhs {
		id, ok := target.(*ast.Ident)
		if !ok {
			// stores through indexes and selectors are never declarations
			continue
		}

		var value ast.Expr
		if i < len(asg.RHS) {
			value = asg.RHS[i]
		}

		asg.Decls[i] = p.assignTarget(id, value, asg)
	}

	return asg
}

// assignTarget binds one assignment target, returning whether the target
// was promoted to a new declaration.
func (p *Parser) assignTarget(id *ast.Ident, value ast.Expr, asg *ast.Assign) bool {
	if ast.IsBlank(id.Name) {
		return false
	}

	p.retractUse(id)

	if ent := id.NodeScope().Lookup(id.Name); ent != nil && p.storable(ent) {
		id.Ent = ent
		ent.NWrites++
		return false
	}

	p.declare(p.declScope(), id, asg, value)
	return true
}

// storable reports whether an assignment may store to the binding: the
// binding's scope is the current scope, a scope of the current function, or
// the package scope when inside an `init` function (or at the top level).
func (p *Parser) storable(ent *ast.Ent) bool {
	if ent.Scope == p.scope {
		return true
	}

	if p.fun != nil {
		for s := p.scope; s != nil; s = s.Outer {
			if s == ent.Scope {
				return true
			}
			if _, isFun := s.Context.(*ast.FunExpr); isFun {
				break
			}
		}

		if ent.Scope == p.pkgScope && p.fun.IsInit {
			return true
		}

		return false
	}

	return ent.Scope == p.pkgScope || ent.Scope == p.fileScope
}

// compound_assign = expr assign_op expr
//
// Compound assignment lowers to an assignment recording the corresponding
// binary operator.
func (p *Parser) parseCompoundAssign(lhs []ast.Expr) ast.Node {
	op := tokToOp(CompoundBase(p.sc.Tok()))

	if len(lhs) > 1 {
		p.errorf(lhs[1].Pos(), "compound assignment accepts a single target")
	}

	asg := &ast.Assign{
		NodeBase: ast.NewNodeBase(lhs[0].Pos(), p.scope),
		Op:       op,
		LHS:      lhs[:1],
		Decls:    make([]bool, 1),
	}

	p.next()
	asg.RHS = []ast.Expr{p.parseExpr()}

	if id, ok := lhs[0].(*ast.Ident); ok && id.Ent != nil {
		id.Ent.NWrites++
	}

	return asg
}

// inc_dec = expr ('++' | '--')
//
// `++` and `--` are legal only on mutable integer targets; they lower to a
// compound assignment by one.
func (p *Parser) parseIncDec(lhs []ast.Expr) ast.Node {
	op := ast.OpAdd
	if p.got(DEC) {
		op = ast.OpSub
	}

	pos := p.sc.Pos()
	p.next()

	if len(lhs) > 1 {
		p.errorf(lhs[1].Pos(), "cannot increment multiple targets")
	}

	target := lhs[0]
	id, isIdent := target.(*ast.Ident)
	if !isIdent {
		p.errorf(pos, "cannot increment or decrement a non-mutable target")
	} else {
		if id.Ent != nil {
			if !types.IsInteger(p.res.Resolve(id)) {
				p.errorf(pos, "`%s` is not an integer", id.Name)
			}
			id.Ent.NWrites++
		}
	}

	one := &ast.IntLit{ExprBase: ast.NewExprBase(pos, p.scope), Raw: "1", Val: 1, Signed: true}

	return &ast.Assign{
		NodeBase: ast.NewNodeBase(target.Pos(), p.scope),
		Op:       op,
		LHS:      []ast.Expr{target},
		RHS:      []ast.Expr{one},
		Decls:    make([]bool, 1),
	}
}

// retractUse removes a previously recorded use of an identifier: the parser
// discovered it is actually a binding occurrence.
func (p *Parser) retractUse(id *ast.Ident) {
	if id.Ent != nil {
		id.Ent.NReads--
		id.Ent = nil
	}

	if _, ok := p.file.Unresolved[id]; ok {
		delete(p.file.Unresolved, id)
		for i, u := range p.unresolvedList {
			if u == id {
				p.unresolvedList = append(p.unresolvedList[:i], p.unresolvedList[i+1:]...)
				break
			}
		}
	}
}
