package typing

import (
	"cobalt/ast"
	"cobalt/report"
	"cobalt/types"
)

// Resolver lazily assigns every expression a type, memoizing the result on
// the node.  Resolution is idempotent: after the first call, further calls
// return the identical type object until an unresolved dependency is rebound.
type Resolver struct {
	rep   *report.Reporter
	cache *types.Cache
}

// NewResolver creates a resolver reporting through rep and canonicalizing
// through cache.
func NewResolver(rep *report.Reporter, cache *types.Cache) *Resolver {
	return &Resolver{rep: rep, cache: cache}
}

// Cache returns the resolver's type cache.
func (r *Resolver) Cache() *types.Cache {
	return r.cache
}

// Resolve returns the type of an expression, computing it on first call and
// caching it on the node.
func (r *Resolver) Resolve(expr ast.Expr) types.Type {
	if t := expr.Type(); t != nil {
		return t
	}

	t := r.resolve(expr)
	if t == nil {
		t = r.MarkUnresolved(expr)
	}

	expr.SetType(t)
	return t
}

// MarkUnresolved gives an expression a fresh unresolved type recording the
// expression, so a later definition of the referenced symbol can rebind it.
func (r *Resolver) MarkUnresolved(expr ast.Expr) *types.UnresolvedType {
	ut := types.NewUnresolvedType(expr)
	expr.SetType(ut)
	return ut
}

// errorType records a type error on a node: the node's type becomes
// unresolved so downstream code does not cascade errors.
func (r *Resolver) errorType(expr ast.Expr, msg string, args ...interface{}) types.Type {
	r.rep.ErrorAt(report.KindType, expr.Pos(), msg, args...)
	return types.NewUnresolvedType(expr)
}

// dependOn links an expression's resolution to the unresolved types among
// the given dependency types.  It returns the first unresolved dependency
// (with expr recorded as a referent), or nil if all are resolved.
func (r *Resolver) dependOn(expr ast.Expr, deps ...types.Type) types.Type {
	var first *types.UnresolvedType
	for _, dep := range deps {
		if ut, ok := types.Unalias(dep).(*types.UnresolvedType); ok {
			ut.AddRef(expr)
			if first == nil {
				first = ut
			}
		}
	}

	if first == nil {
		return nil
	}

	return first
}

// -----------------------------------------------------------------------------

func (r *Resolver) resolve(expr ast.Expr) types.Type {
	switch expr := expr.(type) {
	case *ast.Ident:
		return r.resolveIdent(expr)

	case *ast.IntLit:
		return intLitType(expr.Val)

	case *ast.FloatLit:
		return types.PrimF64

	case *ast.RuneLit:
		return types.PrimI32

	case *ast.StringLit:
		return r.cache.GetStrType(len(expr.Val))

	case *ast.TupleExpr:
		elems := make([]types.Type, len(expr.Elems))
		for i, elem := range expr.Elems {
			elems[i] = r.Resolve(elem)
		}
		if ut := r.dependOn(expr, elems...); ut != nil {
			return ut
		}
		return r.cache.GetTupleType(elems)

	case *ast.ListExpr:
		return r.resolveList(expr)

	case *ast.Block:
		return r.resolveBlock(expr)

	case *ast.IfExpr:
		return r.resolveIf(expr)

	case *ast.WhileExpr, *ast.ForExpr:
		return types.PrimVoid

	case *ast.CallExpr:
		return r.resolveCall(expr)

	case *ast.SelectorExpr:
		return r.resolveSelector(expr)

	case *ast.IndexExpr:
		return r.resolveIndex(expr)

	case *ast.SliceExpr:
		return r.resolveSlice(expr)

	case *ast.BinaryExpr:
		return r.resolveBinary(expr)

	case *ast.UnaryExpr:
		return r.resolveUnary(expr)

	case *ast.FunExpr:
		return r.resolveFun(expr)

	case *ast.TemplateInstExpr:
		return r.ResolveTypeExpr(expr)

	case *ast.ConvExpr:
		// conversion nodes are created with their type already set
		return expr.Type()

	case *ast.BadExpr:
		return types.NewUnresolvedType(expr)
	}

	return nil
}

// resolveIdent resolves an identifier through its binding.
func (r *Resolver) resolveIdent(id *ast.Ident) types.Type {
	if id.Ent == nil {
		// forward reference: the binder rebinds this later
		return types.NewUnresolvedType(id)
	}

	return r.EntType(id.Ent, id)
}

// EntType computes the type of a binding, memoizing it on the Ent once it
// resolves completely.  The use identifier (may be nil) is recorded as a
// referent of any unresolved dependency.
func (r *Resolver) EntType(ent *ast.Ent, use *ast.Ident) types.Type {
	if ent.Type != nil {
		return ent.Type
	}

	if ent.IsType {
		if td, ok := ent.Decl.(*ast.TypeDecl); ok {
			t := r.ResolveTypeDecl(td)
			if !types.IsUnresolved(t) {
				ent.Type = t
			}
			return t
		}
		if use != nil {
			return types.NewUnresolvedType(use)
		}
		return types.NewUnresolvedType(nil)
	}

	if ent.Value != nil {
		t := r.Resolve(ent.Value)
		if !types.IsUnresolved(t) {
			ent.Type = t
		} else if use != nil {
			r.dependOn(use, t)
		}
		return t
	}

	if use != nil {
		return types.NewUnresolvedType(use)
	}
	return types.NewUnresolvedType(nil)
}

// ResolveTypeDecl resolves a type declaration to the type it declares: a
// struct or alias type, wrapped in a Template when the declaration is
// parameterized.  The result is memoized once fully resolved.
func (r *Resolver) ResolveTypeDecl(td *ast.TypeDecl) types.Type {
	if td.Typ != nil {
		return td.Typ
	}

	name := td.Name.Name.String()

	var base types.Type
	if sb, ok := td.Body.(*ast.StructTypeExpr); ok {
		base = r.resolveStructBody(name, sb)
	} else {
		base = &types.AliasType{Name: name, Of: r.ResolveTypeExpr(td.Body)}
	}

	var t types.Type = base
	if len(td.Vars) > 0 {
		vars := make([]*types.TypeVar, len(td.Vars))
		for i, v := range td.Vars {
			if v.Ent != nil {
				if tv, ok := v.Ent.Type.(*types.TypeVar); ok {
					vars[i] = tv
					continue
				}
			}
			vars[i] = &types.TypeVar{Name: v.Name.String()}
		}
		t = &types.Template{Name: name, Vars: vars, Base: base}
	}

	if !types.IsUnresolved(types.Unalias(base)) && !structHasUnresolved(base) {
		td.Typ = t
	}

	return t
}

// structHasUnresolved reports whether a struct type still carries an
// unresolved field, in which case its declaration must not memoize yet.
func structHasUnresolved(t types.Type) bool {
	return firstUnresolvedIn(t) != nil
}

// firstUnresolvedIn returns the unresolved type a struct or plain type still
// depends on, or nil if it is complete.
func firstUnresolvedIn(t types.Type) *types.UnresolvedType {
	switch t := types.Unalias(t).(type) {
	case *types.UnresolvedType:
		return t
	case *types.StructType:
		for _, field := range t.Fields {
			if ut, ok := types.Unalias(field.Type).(*types.UnresolvedType); ok {
				return ut
			}
		}
	}

	return nil
}

// resolveList infers a list literal's element type: the arithmetically
// widest of the element types, with every element lossless-converted to it.
func (r *Resolver) resolveList(list *ast.ListExpr) types.Type {
	if len(list.Elems) == 0 {
		// an empty literal in a typed context is retyped by Convert before
		// it ever resolves; reaching here means there was no context type
		r.rep.ErrorAt(report.KindSyntax, list.Pos(), "empty list literal requires a type context")
		return types.NewUnresolvedType(list)
	}

	elemTypes := make([]types.Type, len(list.Elems))
	for i, elem := range list.Elems {
		elemTypes[i] = r.Resolve(elem)
	}

	if ut := r.dependOn(list, elemTypes...); ut != nil {
		return ut
	}

	elem := elemTypes[0]
	for _, t := range elemTypes[1:] {
		if types.IsNumeric(elem) && types.IsNumeric(t) {
			elem = types.Widest(elem, t)
		} else if !types.Equals(elem, t) {
			return r.errorType(list, "mixed element types %s and %s in list literal", elem.Repr(), t.Repr())
		}
	}

	for i, e := range list.Elems {
		if conv := r.ConvertLossless(elem, e); conv != nil {
			list.Elems[i] = conv
		}
	}

	return &types.ListType{Elem: elem}
}

// resolveBlock types a block by its final expression statement, or void.
func (r *Resolver) resolveBlock(b *ast.Block) types.Type {
	if len(b.Stmts) == 0 {
		return types.PrimVoid
	}

	switch last := b.Stmts[len(b.Stmts)-1].(type) {
	case *ast.ReturnStmt:
		if last.Value != nil {
			return r.Resolve(last.Value)
		}
		return types.PrimVoid
	case ast.Expr:
		return r.Resolve(last)
	}

	return types.PrimVoid
}

func (r *Resolver) resolveIf(e *ast.IfExpr) types.Type {
	thenType := r.Resolve(e.Then)

	if e.Else == nil {
		return types.PrimVoid
	}

	elseType := r.Resolve(e.Else)
	if ut := r.dependOn(e, thenType, elseType); ut != nil {
		return ut
	}

	if types.Equals(thenType, elseType) {
		return thenType
	}

	return &types.UnionType{Members: []types.Type{thenType, elseType}}
}

// resolveCall types a call: a function call yields the function's result,
// a type application (template or struct constructor) yields the type.
func (r *Resolver) resolveCall(call *ast.CallExpr) types.Type {
	funType := r.Resolve(call.Fun)

	for _, arg := range call.Args {
		r.Resolve(arg)
	}

	if ut := r.dependOn(call, funType); ut != nil {
		return ut
	}

	switch t := types.Unalias(funType).(type) {
	case *types.FunType:
		return t.Result
	case *types.StructType:
		// constructor application
		r.checkConstructorArgs(call, t)
		return funType
	}

	return r.errorType(call, "cannot call value of type %s", funType.Repr())
}

// checkConstructorArgs checks positional constructor arguments against the
// struct's field types.  Arguments keep their own (default) types: the check
// is non-mutating.
func (r *Resolver) checkConstructorArgs(call *ast.CallExpr, st *types.StructType) {
	if len(call.Args) > len(st.Fields) {
		r.rep.ErrorAt(report.KindType, call.Pos(), "too many arguments for %s", st.Repr())
		return
	}

	for i, arg := range call.Args {
		argType := r.Resolve(arg)
		fieldType := st.Fields[i].Type

		if types.IsUnresolved(argType) || types.IsUnresolved(fieldType) {
			continue
		}

		ok := types.Equals(argType, fieldType) ||
			(types.IsNumeric(argType) && types.IsNumeric(fieldType))
		if isNumLit(arg) {
			ok = r.numLitFits(fieldType, arg) || types.IsFloat(argType) && types.IsFloat(fieldType)
		}

		if !ok {
			r.rep.ErrorAt(report.KindType, arg.Pos(), "cannot use %s as %s in argument",
				argType.Repr(), fieldType.Repr())
		}
	}
}

func (r *Resolver) resolveSelector(sel *ast.SelectorExpr) types.Type {
	opType := r.Resolve(sel.Operand)

	if ut := r.dependOn(sel, opType); ut != nil {
		return ut
	}

	if st, ok := types.Unalias(opType).(*types.StructType); ok {
		if i := st.FieldIndex(sel.Name.String()); i >= 0 {
			return st.Fields[i].Type
		}
		return r.errorType(sel, "no field `%s` in %s", sel.Name, st.Repr())
	}

	return r.errorType(sel, "cannot select `%s` from value of type %s", sel.Name, opType.Repr())
}

func (r *Resolver) resolveBinary(b *ast.BinaryExpr) types.Type {
	lhs := r.Resolve(b.Lhs)
	rhs := r.Resolve(b.Rhs)

	if ut := r.dependOn(b, lhs, rhs); ut != nil {
		return ut
	}

	switch b.Op.Kind {
	case ast.OpLAnd, ast.OpLOr:
		return types.PrimBool

	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return types.PrimBool

	case ast.OpShl, ast.OpShr:
		return lhs
	}

	if !types.IsNumeric(lhs) || !types.IsNumeric(rhs) {
		if types.Equals(lhs, rhs) {
			return lhs
		}
		return r.errorType(b, "invalid operand types %s and %s for `%s`",
			lhs.Repr(), rhs.Repr(), ast.OpRepr(b.Op.Kind))
	}

	wide := types.Widest(lhs, rhs)
	if conv := r.Convert(wide, b.Lhs); conv != nil {
		b.Lhs = conv
	}
	if conv := r.Convert(wide, b.Rhs); conv != nil {
		b.Rhs = conv
	}

	return wide
}

func (r *Resolver) resolveUnary(u *ast.UnaryExpr) types.Type {
	opType := r.Resolve(u.Operand)

	if ut := r.dependOn(u, opType); ut != nil {
		return ut
	}

	switch u.Op.Kind {
	case ast.OpNot:
		return types.PrimBool
	default:
		// OpNeg, OpCompl
		return opType
	}
}

// resolveFun resolves a function expression to its function type.  This is
// permitted to complete even while the result is unresolved: the returned
// FunType's result records back-references for later rebinding.
func (r *Resolver) resolveFun(fn *ast.FunExpr) types.Type {
	params := make([]types.Type, len(fn.Sig.Params))
	for i, param := range fn.Sig.Params {
		if param.Typ == nil && param.TypeX != nil {
			param.Typ = r.ResolveTypeExpr(param.TypeX)
		}
		if param.Typ == nil {
			param.Typ = types.NewUnresolvedType(nil)
		}
		params[i] = param.Typ
	}

	result := fn.Sig.Result
	if result == nil {
		result = types.NewUnresolvedType(fn)
		fn.Sig.Result = result
	}

	return &types.FunType{Params: params, Result: result}
}

// -----------------------------------------------------------------------------

// ResolveTypeExpr resolves a type expression to the type it denotes.
func (r *Resolver) ResolveTypeExpr(expr ast.Expr) types.Type {
	if t := expr.Type(); t != nil {
		return t
	}

	t := r.resolveTypeExpr(expr)
	if t == nil {
		t = types.NewUnresolvedType(expr)
	}

	expr.SetType(t)
	return t
}

func (r *Resolver) resolveTypeExpr(expr ast.Expr) types.Type {
	switch expr := expr.(type) {
	case *ast.Ident:
		if expr.Ent == nil {
			return types.NewUnresolvedType(expr)
		}
		if !expr.Ent.IsType {
			return r.errorType(expr, "`%s` is not a type", expr.Name)
		}
		return r.EntType(expr.Ent, expr)

	case *ast.TupleExpr:
		elems := make([]types.Type, len(expr.Elems))
		for i, elem := range expr.Elems {
			elems[i] = r.ResolveTypeExpr(elem)
		}
		if ut := r.dependOn(expr, elems...); ut != nil {
			return ut
		}
		return r.cache.GetTupleType(elems)

	case *ast.ListTypeExpr:
		elem := r.ResolveTypeExpr(expr.Elem)
		if ut := r.dependOn(expr, elem); ut != nil {
			return ut
		}
		return &types.ListType{Elem: elem}

	case *ast.OptionalTypeExpr:
		inner := r.ResolveTypeExpr(expr.Inner)
		if ut := r.dependOn(expr, inner); ut != nil {
			return ut
		}
		return &types.OptionalType{Inner: inner}

	case *ast.RestTypeExpr:
		elem := r.ResolveTypeExpr(expr.Elem)
		if ut := r.dependOn(expr, elem); ut != nil {
			return ut
		}
		return &types.RestType{Elem: elem}

	case *ast.TemplateInstExpr:
		return r.resolveTemplateInst(expr)

	case *ast.StructTypeExpr:
		// anonymous struct bodies are resolved through their type decl;
		// reaching here means the body is used directly as a type
		return r.resolveStructBody("", expr)
	}

	return nil
}

// resolveTemplateInst applies type arguments to a template type.
func (r *Resolver) resolveTemplateInst(inst *ast.TemplateInstExpr) types.Type {
	base := r.ResolveTypeExpr(inst.Name)
	if ut := r.dependOn(inst, base); ut != nil {
		return ut
	}

	tpl, ok := types.Unalias(base).(*types.Template)
	if !ok {
		return r.errorType(inst, "`%s` is not a template type", inst.Name.Name)
	}

	// do not hash-cons instances of a template whose base is still
	// unresolved: wait for the binder to complete it.  The instance chains
	// onto the base's own unresolved type so one rebind clears the chain.
	if ut := firstUnresolvedIn(tpl.Base); ut != nil {
		ut.AddRef(inst)
		return ut
	}

	args := make([]types.Type, len(inst.Args))
	for i, arg := range inst.Args {
		args[i] = r.ResolveTypeExpr(arg)
	}
	if ut := r.dependOn(inst, args...); ut != nil {
		return ut
	}

	t, ok := r.cache.Instantiate(tpl, args)
	if !ok {
		return r.errorType(inst, "wrong number of type arguments for %s: expected %d, got %d",
			tpl.Repr(), len(tpl.Vars), len(args))
	}

	return t
}

// resolveStructBody resolves a struct body's fields into a struct type.
func (r *Resolver) resolveStructBody(name string, body *ast.StructTypeExpr) types.Type {
	fields := make([]types.StructField, len(body.Fields))
	deps := make([]types.Type, len(body.Fields))

	for i, field := range body.Fields {
		if field.Typ == nil && field.TypeX != nil {
			field.Typ = r.ResolveTypeExpr(field.TypeX)
		}

		fieldName := ""
		if field.Name != nil {
			fieldName = field.Name.Name.String()
		}

		fields[i] = types.StructField{Name: fieldName, Type: field.Typ}
		deps[i] = field.Typ
	}

	if ut := r.dependOn(body, deps...); ut != nil {
		return ut
	}

	return &types.StructType{Name: name, Fields: fields}
}

// -----------------------------------------------------------------------------

// intLitType returns the default type of an integer literal value: signed if
// the value fits, with 32-bit values preferring the platform int and uint.
func intLitType(v uint64) types.Type {
	switch {
	case v <= 0x7FFFFFFF:
		return types.PrimInt
	case v <= 0xFFFFFFFF:
		return types.PrimUint
	case v <= 0x7FFFFFFFFFFFFFFF:
		return types.PrimI64
	default:
		return types.PrimU64
	}
}
