package types

import "strings"

// Cache canonicalizes structural types so equal types share one instance.
// It holds the tuple and string-length canonicalization tables as well as
// hash-consed template instances.  The tables are append-only: concurrent
// readers are safe, but mutation must be serialized by the embedder if it
// resolves multiple packages concurrently.
type Cache struct {
	tuples    map[string][]*TupleType
	strs      map[int]*StrType
	instances map[string]Type

	emptyTuple *TupleType
}

// NewCache creates a new, empty type cache.
func NewCache() *Cache {
	return &Cache{
		tuples:     make(map[string][]*TupleType),
		strs:       make(map[int]*StrType),
		instances:  make(map[string]Type),
		emptyTuple: &TupleType{},
	}
}

// GetTupleType returns the canonical tuple type over the given element
// types.  A single-element tuple collapses to its element; an empty element
// list yields the canonical empty tuple.
func (c *Cache) GetTupleType(elems []Type) Type {
	switch len(elems) {
	case 0:
		return c.emptyTuple
	case 1:
		return elems[0]
	}

	key := typeListKey(elems)
	for _, tt := range c.tuples[key] {
		if tt.equals(&TupleType{Elems: elems}) {
			return tt
		}
	}

	owned := make([]Type, len(elems))
	copy(owned, elems)

	tt := &TupleType{Elems: owned}
	c.tuples[key] = append(c.tuples[key], tt)
	return tt
}

// GetStrType returns the canonical sized string type of length n.
func (c *Cache) GetStrType(n int) *StrType {
	if st, ok := c.strs[n]; ok {
		return st
	}

	st := &StrType{Len: n}
	c.strs[n] = st
	return st
}

// -----------------------------------------------------------------------------

// Instantiate applies type arguments to a template, substituting the
// template's variables throughout its base type.  Instances are hash-consed:
// the same template applied to equal arguments yields the identical type.
// It returns false if the argument count does not match the template arity.
func (c *Cache) Instantiate(tpl *Template, args []Type) (Type, bool) {
	if len(args) != len(tpl.Vars) {
		return nil, false
	}

	key := tpl.Name + "<" + typeListKey(args) + ">"
	if inst, ok := c.instances[key]; ok {
		return inst, true
	}

	binding := make(map[*TypeVar]Type, len(tpl.Vars))
	for i, v := range tpl.Vars {
		binding[v] = args[i]
	}

	inst := c.substitute(tpl.Base, binding)
	c.instances[key] = inst
	return inst, true
}

// substitute rewrites t with every bound type variable replaced.  Nested
// template variables substitute structurally.
func (c *Cache) substitute(t Type, binding map[*TypeVar]Type) Type {
	switch t := t.(type) {
	case *TypeVar:
		if bound, ok := binding[t]; ok {
			return bound
		}
		return t
	case *TupleType:
		elems := make([]Type, len(t.Elems))
		for i, elem := range t.Elems {
			elems[i] = c.substitute(elem, binding)
		}
		return c.GetTupleType(elems)
	case *ListType:
		return &ListType{Elem: c.substitute(t.Elem, binding)}
	case *RestType:
		return &RestType{Elem: c.substitute(t.Elem, binding)}
	case *OptionalType:
		return &OptionalType{Inner: c.substitute(t.Inner, binding)}
	case *UnionType:
		members := make([]Type, len(t.Members))
		for i, member := range t.Members {
			members[i] = c.substitute(member, binding)
		}
		return &UnionType{Members: members}
	case *FunType:
		params := make([]Type, len(t.Params))
		for i, param := range t.Params {
			params[i] = c.substitute(param, binding)
		}
		return &FunType{Params: params, Result: c.substitute(t.Result, binding)}
	case *StructType:
		fields := make([]StructField, len(t.Fields))
		changed := false
		for i, field := range t.Fields {
			sub := c.substitute(field.Type, binding)
			fields[i] = StructField{Name: field.Name, Type: sub}
			changed = changed || sub != field.Type
		}
		if !changed {
			return t
		}
		return &StructType{Name: t.Name, Fields: fields}
	case *AliasType:
		return &AliasType{Name: t.Name, Of: c.substitute(t.Of, binding)}
	}

	return t
}

// -----------------------------------------------------------------------------

func typeListKey(elems []Type) string {
	sb := strings.Builder{}
	for i, elem := range elems {
		if elem != nil {
			sb.WriteString(elem.Repr())
		}

		if i < len(elems)-1 {
			sb.WriteRune(',')
		}
	}

	return sb.String()
}
