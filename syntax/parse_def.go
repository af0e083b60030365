package syntax

import (
	"cobalt/ast"
	"cobalt/report"
	"cobalt/types"
)

// fun_decl = 'fun' [NAME] [params] [type_expr] (block | '->' expr)
//
// At the top level a name is required and declared in the package scope; in
// an expression the name is optional and decorative.  A file-level function
// named `init` is special: it must have no parameters and a void result, and
// is not declared (multiple inits are merged downstream).
func (p *Parser) parseFun(topLevel bool) ast.Expr {
	fn := &ast.FunExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}
	p.next()

	if p.got(NAME) {
		fn.Name = ast.NewIdent(p.sc.Pos(), p.scope, p.in.Get(p.sc.TakeByteValue()))
		p.next()
	} else if topLevel {
		p.errorf(fn.Pos(), "top-level function requires a name")
	}

	if topLevel && fn.Name != nil {
		if fn.Name.Name.String() == "init" {
			fn.IsInit = true
		} else {
			p.declare(p.pkgScope, fn.Name, fn, fn)
		}
	}

	outerFun := p.fun
	p.fun = fn

	p.pushScope(fn)
	defer func() {
		p.popScope()
		p.fun = outerFun
	}()

	fn.Sig = p.parseSignature()

	switch {
	case p.got(ARROW):
		p.next()
		fn.Arrow = true
		fn.Body = p.parseExpr()

	case p.got(LBRACE):
		fn.Body = p.parseBlock()

	default:
		p.reject(LBRACE)
		p.advance(SEMI)
	}

	p.inferResult(fn)

	if fn.IsInit {
		if len(fn.Sig.Params) > 0 {
			p.rep.ErrorAt(report.KindDeclaration, fn.Pos(), "init function must have no parameters")
		}
		if fn.Sig.Result != nil && !types.Equals(fn.Sig.Result, types.PrimVoid) {
			p.rep.ErrorAt(report.KindDeclaration, fn.Pos(), "init function must not return a value")
		}
	}

	return fn
}

// signature = ['(' [param_list] ')'] [type_expr]
func (p *Parser) parseSignature() *ast.FunSig {
	sig := &ast.FunSig{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}

	if p.got(LPAREN) {
		p.next()
		if !p.got(RPAREN) {
			sig.Params = p.parseParamList()
		}
		p.expect(RPAREN)
	}

	// the result type starts anywhere a type can; `{` and `->` begin the
	// body instead, leaving the result as auto
	if !p.gotOneOf(LBRACE, ARROW, SEMI, EOF) {
		sig.ResultX = p.parseTypeExpr()
		sig.Result = p.res.ResolveTypeExpr(sig.ResultX)
	}

	return sig
}

// param_list = param {',' param}
// param = NAME | NAME type_expr | type_expr
//
// Three modes are accepted, mutually exclusive within one list: all-typed
// with no names, all named with types, or named groups sharing a type
// (`a, b, c T`), where types propagate right-to-left until hitting an
// already-typed parameter.  Only the last parameter may have a rest type.
func (p *Parser) parseParamList() []*ast.Field {
	var fields []*ast.Field

	for {
		fields = append(fields, p.parseParam())

		if p.got(COMMA) {
			p.next()
		} else {
			break
		}
	}

	// decide between named and unnamed mode
	named := false
	for _, field := range fields {
		if field.Name != nil && field.TypeX != nil {
			named = true
			break
		}
	}

	if named {
		// grouped names share the type to their right
		var group ast.Expr
		for i := len(fields) - 1; i >= 0; i-- {
			field := fields[i]

			switch {
			case field.Name == nil:
				p.errorf(field.Pos(), "mixed named and unnamed parameters")
			case field.TypeX != nil:
				group = field.TypeX
			case group != nil:
				field.TypeX = group
			default:
				// a trailing bare name in a named list is an unnamed type
				// entry
				p.errorf(field.Pos(), "mixed named and unnamed parameters")
			}
		}
	} else {
		// all parameters are types: bare names are type references
		for _, field := range fields {
			if field.Name != nil {
				field.TypeX = field.Name
				field.Name = nil
				p.resolveUse(field.TypeX.(*ast.Ident))
			}
		}
	}

	for i, field := range fields {
		if field.TypeX != nil {
			field.Typ = p.res.ResolveTypeExpr(field.TypeX)
		}

		if _, isRest := field.TypeX.(*ast.RestTypeExpr); isRest && i != len(fields)-1 {
			p.errorf(field.Pos(), "rest parameter must be the last parameter")
		}

		if field.Name != nil {
			if ent := p.declare(p.scope, field.Name, field, nil); ent != nil {
				ent.Type = field.Typ
			}
		}
	}

	return fields
}

// parseParam parses one parameter entry without yet deciding whether a bare
// name is a parameter name or a type reference.
func (p *Parser) parseParam() *ast.Field {
	field := &ast.Field{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}

	if p.got(NAME) {
		// defer use-vs-binding resolution until the list mode is known
		field.Name = ast.NewIdent(p.sc.Pos(), p.scope, p.in.Get(p.sc.TakeByteValue()))
		p.next()

		if !p.gotOneOf(COMMA, RPAREN) {
			field.TypeX = p.parseTypeExpr()
		}

		return field
	}

	field.TypeX = p.parseTypeExpr()
	return field
}

// -----------------------------------------------------------------------------

// inferResult completes a function signature's result type:
//
//	(a) a block body with no observed return and no declared result is void;
//	(b) a block body with an explicit result has its last expression
//	    statement rewritten to a return, with a lossless conversion inserted
//	    when the types differ;
//	(c) an arrow body takes the sole recorded return type, the expression's
//	    type when no return was seen, or a union of all recorded types.
func (p *Parser) inferResult(fn *ast.FunExpr) {
	sig := fn.Sig

	if fn.Arrow {
		if sig.Result == nil && fn.Body != nil {
			rts := fn.InferredReturnTypes()
			switch len(rts) {
			case 0:
				sig.Result = p.res.Resolve(fn.Body)
			case 1:
				sig.Result = rts[0]
			default:
				sig.Result = unifyReturnTypes(rts)
			}
		}
		return
	}

	block, ok := fn.Body.(*ast.Block)
	if !ok {
		return
	}

	if sig.Result == nil {
		rts := fn.InferredReturnTypes()
		switch len(rts) {
		case 0:
			sig.Result = types.PrimVoid
		case 1:
			sig.Result = rts[0]
		default:
			sig.Result = unifyReturnTypes(rts)
		}
		return
	}

	if types.Equals(sig.Result, types.PrimVoid) {
		return
	}

	// explicit non-void result: rewrite the trailing expression statement
	// into a return
	if len(block.Stmts) > 0 {
		last := block.Stmts[len(block.Stmts)-1]

		if _, isRet := last.(*ast.ReturnStmt); isRet {
			return
		}

		if expr, isExpr := last.(ast.Expr); isExpr {
			conv := p.res.ConvertLossless(sig.Result, expr)
			if conv == nil {
				p.errorf(expr.Pos(), "cannot use value of type %s as result type %s",
					p.res.Resolve(expr).Repr(), sig.Result.Repr())
				return
			}

			block.Stmts[len(block.Stmts)-1] = &ast.ReturnStmt{
				NodeBase: ast.NewNodeBase(expr.Pos(), expr.NodeScope()),
				Value:    conv,
			}
			fn.AddInferredReturnType(sig.Result)
			return
		}
	}

	p.errorf(fn.Pos(), "missing return value of type %s", sig.Result.Repr())
}

// unifyReturnTypes collapses recorded return types to one type: the common
// type if all are equal, a union otherwise.
func unifyReturnTypes(rts []types.Type) types.Type {
	allEqual := true
	for _, t := range rts[1:] {
		if !types.Equals(rts[0], t) {
			allEqual = false
			break
		}
	}

	if allEqual {
		return rts[0]
	}

	members := make([]types.Type, 0, len(rts))
	for _, t := range rts {
		dup := false
		for _, m := range members {
			if types.Equals(m, t) {
				dup = true
				break
			}
		}
		if !dup {
			members = append(members, t)
		}
	}

	return &types.UnionType{Members: members}
}

// -----------------------------------------------------------------------------

// type_decl = 'type' NAME ['<' NAME {',' NAME} '>'] (struct_body | type_expr)
// struct_body = '{' {NAME type_expr SEMI} '}'
//
// The declared name lands in the package scope at the top level.  Template
// parameters are declared as type variables in a scope around the body.
func (p *Parser) parseTypeDecl() ast.Node {
	td := &ast.TypeDecl{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}
	p.next()

	if !p.got(NAME) {
		p.reject(NAME)
		p.advance(SEMI)
		return p.badDecl(td.Pos())
	}

	td.Name = ast.NewIdent(p.sc.Pos(), p.scope, p.in.Get(p.sc.TakeByteValue()))
	p.next()

	// declare before the body so the type can refer to itself
	var ent *ast.Ent
	if ent = p.declare(p.declScope(), td.Name, td, nil); ent != nil {
		ent.IsType = true
	}

	p.pushScope(td)
	defer p.popScope()

	if p.got(LSS) {
		p.next()
		for {
			if !p.got(NAME) {
				p.reject(NAME)
				break
			}

			v := ast.NewIdent(p.sc.Pos(), p.scope, p.in.Get(p.sc.TakeByteValue()))
			p.next()
			td.Vars = append(td.Vars, v)

			if varEnt := p.declare(p.scope, v, td, nil); varEnt != nil {
				varEnt.IsType = true
				varEnt.Type = &types.TypeVar{Name: v.Name.String()}
				// template parameters are exempt from unused warnings
				varEnt.NReads++
			}

			if p.got(COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.expect(GTR)
	}

	if p.got(LBRACE) {
		td.Body = p.parseStructBody()
	} else {
		td.Body = p.parseTypeExpr()
	}

	// plain declarations resolve eagerly; forward references stay lazy
	if ent != nil {
		if t := p.res.ResolveTypeDecl(td); !types.IsUnresolved(t) {
			ent.Type = t
		}
	}

	return td
}

// parseStructBody parses the brace-delimited field list of a struct type.
// Fields get their own scope so duplicate names are caught; the scope is
// exempt from unused-variable warnings.
func (p *Parser) parseStructBody() *ast.StructTypeExpr {
	body := &ast.StructTypeExpr{ExprBase: ast.NewExprBase(p.sc.Pos(), p.scope)}

	p.pushScope(body)
	defer p.popScope()

	p.expect(LBRACE)

	for !p.got(RBRACE) && !p.got(EOF) {
		if p.got(SEMI) {
			p.next()
			continue
		}

		if !p.got(NAME) {
			p.reject(NAME)
			p.advance(SEMI, RBRACE)
			continue
		}

		field := &ast.Field{NodeBase: ast.NewNodeBase(p.sc.Pos(), p.scope)}
		field.Name = ast.NewIdent(p.sc.Pos(), p.scope, p.in.Get(p.sc.TakeByteValue()))
		p.next()

		field.TypeX = p.parseTypeExpr()
		field.Typ = p.res.ResolveTypeExpr(field.TypeX)

		p.declare(p.scope, field.Name, field, nil)
		body.Fields = append(body.Fields, field)

		if !p.got(RBRACE) {
			p.expect(SEMI)
		}
	}

	p.expect(RBRACE)
	return body
}
