package syntax

import (
	"cobalt/ast"
	"cobalt/report"
)

// expr_list = expr {',' expr}
func (p *Parser) parseExprList() []ast.Expr {
	exprs := []ast.Expr{p.parseExpr()}

	for p.got(COMMA) {
		p.next()
		exprs = append(exprs, p.parseExpr())
	}

	return exprs
}

// expr = binary_expr
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(1)
}

// binary_expr = unary_expr {binary_op binary_expr}
//
// parseBinaryExpr performs precedence-climbing over the monotone operator
// precedence table.
func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	lhs := p.parseUnaryExpr()

	for {
		prec := Precedence(p.sc.Tok())
		if prec < minPrec || prec == 0 {
			return lhs
		}

		op := ast.Oper{Kind: tokToOp(p.sc.Tok()), Pos: p.sc.Pos()}
		p.next()

		rhs := p.parseBinaryExpr(prec + 1)

		bin := &ast.BinaryExpr{
			ExprBase: ast.NewExprBase(lhs.Pos(), p.scope),
			Op:       op,
			Lhs:      lhs,
			Rhs:      rhs,
		}
		lhs = bin
	}
}

// unary_expr = ['-' | '!' | '~'] postfix_expr
func (p *Parser) parseUnaryExpr() ast.Expr {
	switch p.sc.Tok() {
	case MINUS, NOT, TILDE:
		op := ast.Oper{Kind: tokToOp(p.sc.Tok()), Pos: p.sc.Pos()}
		if p.got(MINUS) {
			op.Kind = ast.OpNeg
		}

		pos := p.sc.Pos()
		p.next()

		return &ast.UnaryExpr{
			ExprBase: ast.NewExprBase(pos, p.scope),
			Op:       op,
			Operand:  p.parseUnaryExpr(),
		}
	}

	return p.parsePostfixExpr()
}

// postfix_expr = operand {trailer}
// trailer = '.' (NAME | INT) | '[' slice_or_index ']' | '(' [expr_list] ')'
func (p *Parser) parsePostfixExpr() ast.Expr {
	expr := p.parseOperand()

	for {
		switch p.sc.Tok() {
		case DOT:
			expr = p.parseSelectorOrTupleIndex(expr)

		case LBRACKET:
			expr = p.parseIndexOrSlice(expr)

		case LPAREN:
			expr = p.parseCall(expr, nil)

		default:
			return expr
		}
	}
}

// parseSelectorOrTupleIndex parses `a.name` or the numeric tuple access
// `a.N`.
func (p *Parser) parseSelectorOrTupleIndex(operand ast.Expr) ast.Expr {
	p.next()

	switch p.sc.Tok() {
	case NAME:
		sel := &ast.SelectorExpr{
			ExprBase: ast.NewExprBase(operand.Pos(), p.scope),
			Operand:  operand,
			Name:     p.in.Get(p.sc.TakeByteValue()),
		}
		p.next()
		return sel

	case INT, INT_BIN, INT_OCT, INT_HEX:
		v, _ := p.sc.Int64Val()
		ix := &ast.IndexExpr{
			ExprBase:   ast.NewExprBase(operand.Pos(), p.scope),
			Operand:    operand,
			ConstIndex: int(v),
		}
		p.next()
		return ix
	}

	p.reject(NAME)
	return p.badExpr(p.sc.Pos())
}

// parseIndexOrSlice parses `a[i]`, `a[lo:hi]`, `a[:hi]`, `a[lo:]`, `a[:]`.
func (p *Parser) parseIndexOrSlice(operand ast.Expr) ast.Expr {
	pos := operand.Pos()
	p.next()

	var lo, hi ast.Expr
	isSlice := false

	if !p.got(COLON) {
		lo = p.parseExpr()
	}

	if p.got(COLON) {
		isSlice = true
		p.next()

		if !p.got(RBRACKET) {
			hi = p.parseExpr()
		}
	}

	p.expect(RBRACKET)

	if isSlice {
		return &ast.SliceExpr{
			ExprBase: ast.NewExprBase(pos, p.scope),
			Operand:  operand,
			Lo:       lo,
			Hi:       hi,
		}
	}

	return &ast.IndexExpr{
		ExprBase:   ast.NewExprBase(pos, p.scope),
		Operand:    operand,
		Index:      lo,
		ConstIndex: -1,
	}
}

// parseCall parses a call trailer on fun, with optional template arguments.
func (p *Parser) parseCall(fun ast.Expr, templateArgs []ast.Expr) ast.Expr {
	call := &ast.CallExpr{
		ExprBase:     ast.NewExprBase(fun.Pos(), p.scope),
		Fun:          fun,
		TemplateArgs: templateArgs,
	}

	p.next()
	if !p.got(RPAREN) {
		call.Args = p.parseExprList()
	}
	p.expect(RPAREN)

	return call
}

// -----------------------------------------------------------------------------

// operand = literal | NAME | NAME '<' type_list '>' '(' expr_list ')'
//
//	| '(' [expr_list] ')' | '[' expr_list ']' | fun_expr | if_expr
func (p *Parser) parseOperand() ast.Expr {
	pos := p.sc.Pos()

	switch p.sc.Tok() {
	case INT, INT_BIN, INT_OCT, INT_HEX:
		v, signed := p.sc.Int64Val()
		lit := &ast.IntLit{ExprBase: ast.NewExprBase(pos, p.scope), Val: v, Signed: signed}
		p.next()
		return lit

	case FLOAT:
		lit := &ast.FloatLit{ExprBase: ast.NewExprBase(pos, p.scope), Val: p.sc.FloatVal()}
		p.next()
		return lit

	case CHAR:
		v, _ := p.sc.Int32Val()
		lit := &ast.RuneLit{ExprBase: ast.NewExprBase(pos, p.scope), Val: rune(v)}
		p.next()
		return lit

	case STRING:
		lit := &ast.StringLit{ExprBase: ast.NewExprBase(pos, p.scope), Val: p.sc.TakeByteValue()}
		p.next()
		return lit

	case NAME, NAMEAT:
		id := ast.NewIdent(pos, p.scope, p.in.Get(p.sc.TakeByteValue()))
		p.next()
		p.resolveUse(id)

		// `Name<...>` is ambiguous between a template call and comparison;
		// backtracking decides
		if p.got(LSS) {
			return p.tryWithBacktracking(
				func() ast.Expr { return p.parseTemplateCall(id) },
				func() ast.Expr { return id },
			)
		}

		return id

	case LPAREN:
		return p.parseTupleOrParen()

	case LBRACKET:
		return p.parseListLit()

	case FUN:
		return p.parseFun(false)

	case IF:
		return p.parseIf()
	}

	p.errorf(pos, "unexpected %s in expression", TokenName(p.sc.Tok()))
	p.next()
	return p.badExpr(pos)
}

// parseTemplateCall parses `Name<T,U>(args)` after the name.  It is only
// run under the backtracking harness (except as a type expression, where the
// `<...>` form is unambiguous).
func (p *Parser) parseTemplateCall(name *ast.Ident) ast.Expr {
	inst := p.parseTemplateInst(name)

	if !p.got(LPAREN) {
		p.reject(LPAREN)
		return inst
	}

	return p.parseCall(inst, inst.Args)
}

// parseTemplateInst parses the `<type_list>` application on a named type.
func (p *Parser) parseTemplateInst(name *ast.Ident) *ast.TemplateInstExpr {
	inst := &ast.TemplateInstExpr{
		ExprBase: ast.NewExprBase(name.Pos(), p.scope),
		Name:     name,
	}

	p.expect(LSS)

	for {
		inst.Args = append(inst.Args, p.parseTypeExpr())

		if p.got(COMMA) {
			p.next()
		} else {
			break
		}
	}

	p.expect(GTR)
	return inst
}

// tupled_expr = '(' [expr {',' expr}] ')'
//
// Two or more elements form a tuple; a parenthesized single element is the
// element itself; `()` is the empty tuple.
func (p *Parser) parseTupleOrParen() ast.Expr {
	pos := p.sc.Pos()
	p.next()

	if p.got(RPAREN) {
		tup := &ast.TupleExpr{ExprBase: ast.NewExprBase(pos, p.scope)}
		p.next()
		return tup
	}

	exprs := p.parseExprList()
	p.expect(RPAREN)

	if len(exprs) == 1 {
		return exprs[0]
	}

	return &ast.TupleExpr{ExprBase: ast.NewExprBase(pos, p.scope), Elems: exprs}
}

// list_lit = '[' [expr {',' expr}] ']'
func (p *Parser) parseListLit() ast.Expr {
	list := &ast.ListExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}
	p.next()

	if !p.got(RBRACKET) {
		list.Elems = p.parseExprList()
	}

	p.expect(RBRACKET)
	return list
}

// -----------------------------------------------------------------------------

// type_expr = ['...'] type_term {'?'}
// type_term = NAME ['<' type_list '>'] | '[' type_expr ']'
//
//	| '(' type_expr {',' type_expr} ')'
func (p *Parser) parseTypeExpr() ast.Expr {
	pos := p.sc.Pos()

	if p.got(ELLIPSIS) {
		p.next()
		return &ast.RestTypeExpr{
			ExprBase: ast.NewExprBase(pos, p.scope),
			Elem:     p.parseTypeExpr(),
		}
	}

	var t ast.Expr

	switch p.sc.Tok() {
	case NAME:
		id := ast.NewIdent(pos, p.scope, p.in.Get(p.sc.TakeByteValue()))
		p.next()
		p.resolveUse(id)

		// in type positions `<...>` is always a type instantiation
		if p.got(LSS) {
			t = p.parseTemplateInst(id)
		} else {
			t = id
		}

	case LBRACKET:
		p.next()
		elem := p.parseTypeExpr()
		p.expect(RBRACKET)
		t = &ast.ListTypeExpr{ExprBase: ast.NewExprBase(pos, p.scope), Elem: elem}

	case LPAREN:
		p.next()
		var elems []ast.Expr
		if !p.got(RPAREN) {
			for {
				elems = append(elems, p.parseTypeExpr())
				if p.got(COMMA) {
					p.next()
				} else {
					break
				}
			}
		}
		p.expect(RPAREN)

		if len(elems) == 1 {
			t = elems[0]
		} else {
			t = &ast.TupleExpr{ExprBase: ast.NewExprBase(pos, p.scope), Elems: elems}
		}

	default:
		p.errorf(pos, "unexpected %s in type", TokenName(p.sc.Tok()))
		p.next()
		return p.badExpr(pos)
	}

	for p.got(QUESTION) {
		p.next()
		t = &ast.OptionalTypeExpr{ExprBase: ast.NewExprBase(pos, p.scope), Inner: t}
	}

	return t
}

// -----------------------------------------------------------------------------

// badExpr produces a placeholder expression node at the given position.
func (p *Parser) badExpr(pos report.Pos) ast.Expr {
	return &ast.BadExpr{ExprBase: ast.NewExprBase(pos, p.scope)}
}

// tokToOp maps an operator token kind to its AST operator kind.
func tokToOp(kind int) int {
	switch kind {
	case PLUS:
		return ast.OpAdd
	case MINUS:
		return ast.OpSub
	case STAR:
		return ast.OpMul
	case SLASH:
		return ast.OpDiv
	case PERCENT:
		return ast.OpRem
	case SHL:
		return ast.OpShl
	case SHR:
		return ast.OpShr
	case AMP:
		return ast.OpAnd
	case PIPE:
		return ast.OpOr
	case CARET:
		return ast.OpXor
	case ANDNOT:
		return ast.OpAndNot
	case LAND:
		return ast.OpLAnd
	case LOR:
		return ast.OpLOr
	case EQL:
		return ast.OpEq
	case NEQ:
		return ast.OpNe
	case LSS:
		return ast.OpLt
	case LEQ:
		return ast.OpLe
	case GTR:
		return ast.OpGt
	case GEQ:
		return ast.OpGe
	case NOT:
		return ast.OpNot
	case TILDE:
		return ast.OpCompl
	}

	return ast.OpNone
}
