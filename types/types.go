package types

import "strings"

// Type is the parent interface for all types in Cobalt.
type Type interface {
	// Repr returns a representative string of the type for purposes of error
	// reporting.
	Repr() string

	// equals is the internal, type-specific implementation of Equals.  It
	// should NEVER be called directly except by Equals: it does not handle
	// special cases like comparisons through aliases.
	equals(Type) bool
}

// Equals returns whether two types are equal.  Aliases are transparent: an
// alias compares equal to its underlying type (but is preserved in Repr for
// diagnostics).
func Equals(a, b Type) bool {
	a = Unalias(a)
	b = Unalias(b)

	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return a.equals(b)
}

// Unalias strips any alias wrappers from a type.
func Unalias(t Type) Type {
	for {
		if at, ok := t.(*AliasType); ok {
			t = at.Of
		} else {
			return t
		}
	}
}

// -----------------------------------------------------------------------------

// PrimType represents a primitive type.  It should be one of the enumerated
// primitive types.
type PrimType int

// Enumeration of primitive types.
const (
	PrimBool PrimType = iota
	PrimInt
	PrimUint
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimF32
	PrimF64
	PrimVoid
)

func (pt PrimType) Repr() string {
	switch pt {
	case PrimBool:
		return "bool"
	case PrimInt:
		return "int"
	case PrimUint:
		return "uint"
	case PrimI8:
		return "i8"
	case PrimI16:
		return "i16"
	case PrimI32:
		return "i32"
	case PrimI64:
		return "i64"
	case PrimU8:
		return "u8"
	case PrimU16:
		return "u16"
	case PrimU32:
		return "u32"
	case PrimU64:
		return "u64"
	case PrimF32:
		return "f32"
	case PrimF64:
		return "f64"
	default:
		// PrimVoid
		return "void"
	}
}

func (pt PrimType) equals(other Type) bool {
	if opt, ok := other.(PrimType); ok {
		return pt == opt
	}

	return false
}

// -----------------------------------------------------------------------------

// IntType is the type of an integer literal before it has been concretized
// to a sized integer type.
type IntType struct{}

func (it IntType) Repr() string { return "int literal" }

func (it IntType) equals(other Type) bool {
	_, ok := other.(IntType)
	return ok
}

// NumType is the type of a numeric literal whose integer/float family has
// not yet been determined.
type NumType struct{}

func (nt NumType) Repr() string { return "number" }

func (nt NumType) equals(other Type) bool {
	_, ok := other.(NumType)
	return ok
}

// -----------------------------------------------------------------------------

// StrType is a sized string type: `str<N>`.  A negative length means the
// length is unknown.
type StrType struct {
	Len int
}

func (st *StrType) Repr() string {
	if st.Len < 0 {
		return "str"
	}

	return "str<" + itoa(st.Len) + ">"
}

func (st *StrType) equals(other Type) bool {
	if ost, ok := other.(*StrType); ok {
		return st.Len == ost.Len
	}

	return false
}

// -----------------------------------------------------------------------------

// FunType represents a function type.
type FunType struct {
	// Params lists the parameter types in order.  A trailing rest parameter
	// keeps its RestType wrapper.
	Params []Type

	// Result is the result type.  It may be an *UnresolvedType while the
	// signature's result is still being inferred.
	Result Type
}

func (ft *FunType) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for i, param := range ft.Params {
		sb.WriteString(param.Repr())

		if i < len(ft.Params)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteString(") -> ")
	if ft.Result == nil {
		sb.WriteString("auto")
	} else {
		sb.WriteString(ft.Result.Repr())
	}

	return sb.String()
}

func (ft *FunType) equals(other Type) bool {
	oft, ok := other.(*FunType)
	if !ok || len(ft.Params) != len(oft.Params) {
		return false
	}

	for i, param := range ft.Params {
		if !Equals(param, oft.Params[i]) {
			return false
		}
	}

	return Equals(ft.Result, oft.Result)
}

// -----------------------------------------------------------------------------

// ListType represents a growable list type.  A list of lists is the
// two-dimensional list.
type ListType struct {
	Elem Type
}

func (lt *ListType) Repr() string {
	return "[" + lt.Elem.Repr() + "]"
}

func (lt *ListType) equals(other Type) bool {
	if olt, ok := other.(*ListType); ok {
		return Equals(lt.Elem, olt.Elem)
	}

	return false
}

// -----------------------------------------------------------------------------

// TupleType represents a structural tuple type.  Tuple types of length one
// never exist: they collapse to their element (see Cache.GetTupleType).
type TupleType struct {
	Elems []Type
}

func (tt *TupleType) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for i, elem := range tt.Elems {
		sb.WriteString(elem.Repr())

		if i < len(tt.Elems)-1 {
			sb.WriteString(", ")
		}
	}

	sb.WriteRune(')')
	return sb.String()
}

func (tt *TupleType) equals(other Type) bool {
	ott, ok := other.(*TupleType)
	if !ok || len(tt.Elems) != len(ott.Elems) {
		return false
	}

	for i, elem := range tt.Elems {
		if !Equals(elem, ott.Elems[i]) {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// StructField is a single field within a structure type.
type StructField struct {
	Name string
	Type Type
}

// StructType represents a named structure type.
type StructType struct {
	Name   string
	Fields []StructField
}

func (st *StructType) Repr() string {
	sb := strings.Builder{}
	sb.WriteRune('{')

	for i, field := range st.Fields {
		sb.WriteString(field.Name)
		sb.WriteRune(':')
		sb.WriteString(field.Type.Repr())

		if i < len(st.Fields)-1 {
			sb.WriteString("; ")
		}
	}

	sb.WriteRune('}')
	return sb.String()
}

// FieldIndex returns the index of the named field, or -1.
func (st *StructType) FieldIndex(name string) int {
	for i, field := range st.Fields {
		if field.Name == name {
			return i
		}
	}

	return -1
}

func (st *StructType) equals(other Type) bool {
	// structs are nominal: two struct types are equal only if they are the
	// same definition
	return st == other
}

// -----------------------------------------------------------------------------

// RestType marks a variadic final parameter `...T`.  For element purposes it
// unwraps to T.
type RestType struct {
	Elem Type
}

func (rt *RestType) Repr() string {
	return "..." + rt.Elem.Repr()
}

func (rt *RestType) equals(other Type) bool {
	if ort, ok := other.(*RestType); ok {
		return Equals(rt.Elem, ort.Elem)
	}

	return false
}

// -----------------------------------------------------------------------------

// UnionType represents a union of member types.
type UnionType struct {
	Members []Type
}

func (ut *UnionType) Repr() string {
	sb := strings.Builder{}

	for i, member := range ut.Members {
		sb.WriteString(member.Repr())

		if i < len(ut.Members)-1 {
			sb.WriteRune('|')
		}
	}

	return sb.String()
}

func (ut *UnionType) equals(other Type) bool {
	out, ok := other.(*UnionType)
	if !ok || len(ut.Members) != len(out.Members) {
		return false
	}

	for i, member := range ut.Members {
		if !Equals(member, out.Members[i]) {
			return false
		}
	}

	return true
}

// Contains returns whether the union has a member equal to t.
func (ut *UnionType) Contains(t Type) bool {
	for _, member := range ut.Members {
		if Equals(member, t) {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// OptionalType represents an optional type `T?`.
type OptionalType struct {
	Inner Type
}

func (ot *OptionalType) Repr() string {
	return ot.Inner.Repr() + "?"
}

func (ot *OptionalType) equals(other Type) bool {
	if oot, ok := other.(*OptionalType); ok {
		return Equals(ot.Inner, oot.Inner)
	}

	return false
}

// -----------------------------------------------------------------------------

// AliasType is a defined type alias.  It is transparent for type equality
// but preserved for diagnostics.
type AliasType struct {
	Name string
	Of   Type
}

func (at *AliasType) Repr() string {
	return at.Name
}

func (at *AliasType) equals(other Type) bool {
	return Equals(at.Of, other)
}

// -----------------------------------------------------------------------------

// TypeVar is a template parameter.
type TypeVar struct {
	Name string
}

func (tv *TypeVar) Repr() string {
	return tv.Name
}

func (tv *TypeVar) equals(other Type) bool {
	// type variables are equal only to themselves
	return tv == other
}

// -----------------------------------------------------------------------------

// Template is a user type parameterized over type variables.  Applying
// `<Arg1,...,ArgN>` substitutes the variables into Base and hash-conses the
// instance (see Cache.Instantiate).
type Template struct {
	Name string
	Vars []*TypeVar
	Base Type
}

func (t *Template) Repr() string {
	sb := strings.Builder{}
	sb.WriteString(t.Name)
	sb.WriteRune('<')

	for i, v := range t.Vars {
		sb.WriteString(v.Name)

		if i < len(t.Vars)-1 {
			sb.WriteRune(',')
		}
	}

	sb.WriteRune('>')
	return sb.String()
}

func (t *Template) equals(other Type) bool {
	return t == other
}

// -----------------------------------------------------------------------------

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}
