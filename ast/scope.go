package ast

import (
	"cobalt/intern"
	"cobalt/types"
)

// Ent is a resolved binding: the record a scope holds for a name.  The scope
// owns the Ent; identifiers weakly point back at it once resolved.
type Ent struct {
	// Name is the interned binding name.
	Name *intern.ByteStr

	// Decl is the node that introduced the name: a variable declaration, a
	// parameter field, a type declaration, a function, or an import.  It is
	// nil for predeclared universe entities.
	Decl Node

	// Value is the binding's value expression, when one exists (the RHS of
	// the declaring assignment, or the function expression itself).
	Value Expr

	// Type is the binding's type once known.  For type bindings this is the
	// named type itself.
	Type types.Type

	// Scope is the single scope that owns this Ent.
	Scope *Scope

	// IsType marks bindings that name a type rather than a value.
	IsType bool

	// NReads and NWrites count observed references.  The declaring store is
	// not counted in NWrites: a binding with zero writes is immutable.
	NReads  int
	NWrites int
}

// IsConst reports whether the binding is immutable with a known constant
// value declaration: never re-assigned, and introduced by a declaration with
// a recorded value.
func (e *Ent) IsConst() bool {
	return e.NWrites == 0 && e.Value != nil
}

// -----------------------------------------------------------------------------

// Scope is a node in the lexical scope tree.  It has an outer parent, an
// optional owning context (the AST node whose body this scope is), and a
// mapping from interned name to Ent.
type Scope struct {
	// Outer is the enclosing scope; nil only for the universe scope.
	Outer *Scope

	// Context is the AST node whose body this scope is: a function, a
	// struct, a file.  Nil for plain block scopes.
	Context Node

	decls map[*intern.ByteStr]*Ent

	// order preserves declaration order for deterministic diagnostics.
	order []*Ent
}

// NewScope creates a new scope inside outer with the given context node.
func NewScope(outer *Scope, context Node) *Scope {
	return &Scope{
		Outer:   outer,
		Context: context,
		decls:   make(map[*intern.ByteStr]*Ent),
	}
}

// Declare declares a binding in this scope.  If the name is already declared
// here the existing Ent is returned and the new one is NOT inserted; the
// caller reports the redeclaration.  On success the new Ent is returned with
// its Scope field set.
func (s *Scope) Declare(ent *Ent) *Ent {
	if prev, ok := s.decls[ent.Name]; ok {
		return prev
	}

	ent.Scope = s
	s.decls[ent.Name] = ent
	s.order = append(s.order, ent)
	return ent
}

// LookupLocal looks a name up in this scope only.
func (s *Scope) LookupLocal(name *intern.ByteStr) *Ent {
	return s.decls[name]
}

// Lookup resolves a name by walking outer links from this scope, binding on
// the first hit.  It returns nil on a miss.
func (s *Scope) Lookup(name *intern.ByteStr) *Ent {
	for scope := s; scope != nil; scope = scope.Outer {
		if ent := scope.decls[name]; ent != nil {
			return ent
		}
	}

	return nil
}

// Decls returns the scope's bindings in declaration order.
func (s *Scope) Decls() []*Ent {
	return s.order
}

// Len returns the number of bindings declared in this scope.
func (s *Scope) Len() int {
	return len(s.decls)
}

// ContainsLocal reports whether an Ent is owned by this scope.
func (s *Scope) ContainsLocal(ent *Ent) bool {
	return ent != nil && ent.Scope == s
}

// FunContext returns the nearest enclosing function context of the scope, or
// nil if the scope is not inside a function body.
func (s *Scope) FunContext() *FunExpr {
	for scope := s; scope != nil; scope = scope.Outer {
		if fn, ok := scope.Context.(*FunExpr); ok {
			return fn
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// NewUniverse builds the universe scope holding the built-in types and
// predeclared identifiers.  It is initialized once per compilation and must
// be treated as read-only thereafter.
func NewUniverse(in *intern.Interner) *Scope {
	uni := NewScope(nil, nil)

	declType := func(name string, t types.Type) {
		uni.Declare(&Ent{
			Name:   in.GetStr(name),
			Type:   t,
			IsType: true,
		})
	}

	declType("bool", types.PrimBool)
	declType("int", types.PrimInt)
	declType("uint", types.PrimUint)
	declType("i8", types.PrimI8)
	declType("i16", types.PrimI16)
	declType("i32", types.PrimI32)
	declType("i64", types.PrimI64)
	declType("u8", types.PrimU8)
	declType("u16", types.PrimU16)
	declType("u32", types.PrimU32)
	declType("u64", types.PrimU64)
	declType("f32", types.PrimF32)
	declType("f64", types.PrimF64)
	declType("void", types.PrimVoid)
	declType("str", &types.StrType{Len: -1})

	uni.Declare(&Ent{Name: in.GetStr("true"), Type: types.PrimBool})
	uni.Declare(&Ent{Name: in.GetStr("false"), Type: types.PrimBool})
	uni.Declare(&Ent{Name: in.GetStr("nil")})

	return uni
}
