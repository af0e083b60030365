package types

// Ref is any node whose memoized type can be re-pointed once an unresolved
// type becomes known.  AST expressions implement it.
type Ref interface {
	Type() Type
	SetType(Type)
}

// UnresolvedType stands in for the type of an expression that references a
// symbol which has not been defined yet.  It records back-references to the
// nodes whose type points at it so that resolution can propagate once the
// symbol is defined.  The reference set is stable under appends.
type UnresolvedType struct {
	refs []Ref
}

// NewUnresolvedType creates a fresh unresolved type recording the given
// initial referent, which may be nil.
func NewUnresolvedType(ref Ref) *UnresolvedType {
	ut := &UnresolvedType{}
	if ref != nil {
		ut.refs = append(ut.refs, ref)
	}

	return ut
}

func (ut *UnresolvedType) Repr() string { return "unresolved" }

func (ut *UnresolvedType) equals(other Type) bool {
	return ut == other
}

// AddRef records another node whose type points at this unresolved type.
func (ut *UnresolvedType) AddRef(ref Ref) {
	for _, r := range ut.refs {
		if r == ref {
			return
		}
	}

	ut.refs = append(ut.refs, ref)
}

// Refs returns the recorded back-references.
func (ut *UnresolvedType) Refs() []Ref {
	return ut.refs
}

// Rebind clears the memoized type of every recorded referent whose type
// still points at this unresolved type, so the next resolution recomputes it
// against the now-known symbol.  Nodes whose type has already been replaced
// are left alone.
func (ut *UnresolvedType) Rebind() {
	for _, ref := range ut.refs {
		if ref.Type() == Type(ut) {
			ref.SetType(nil)
		}
	}
}

// IsUnresolved returns whether a type is (still) unresolved.
func IsUnresolved(t Type) bool {
	_, ok := Unalias(t).(*UnresolvedType)
	return ok
}
