package types

import "testing"

func TestTupleCollapse(t *testing.T) {
	cache := NewCache()

	if got := cache.GetTupleType([]Type{PrimInt}); got != Type(PrimInt) {
		t.Errorf("single-element tuple must collapse to its element, got %s", got.Repr())
	}

	empty := cache.GetTupleType(nil)
	if empty != cache.GetTupleType([]Type{}) {
		t.Errorf("empty tuple must be canonical")
	}
}

func TestTupleCanonicalization(t *testing.T) {
	cache := NewCache()

	a := cache.GetTupleType([]Type{PrimInt, PrimF64})
	b := cache.GetTupleType([]Type{PrimInt, PrimF64})
	if a != b {
		t.Errorf("equal tuples must share one instance")
	}

	c := cache.GetTupleType([]Type{PrimF64, PrimInt})
	if a == c {
		t.Errorf("differently ordered tuples must not share an instance")
	}

	if a.Repr() != "(int, f64)" {
		t.Errorf("unexpected tuple repr %s", a.Repr())
	}
}

func TestStrTypeCanonicalization(t *testing.T) {
	cache := NewCache()

	a := cache.GetStrType(5)
	b := cache.GetStrType(5)
	if a != b {
		t.Errorf("equal string lengths must share one instance")
	}

	if a.Repr() != "str<5>" {
		t.Errorf("unexpected str repr %s", a.Repr())
	}

	if cache.GetStrType(-1).Repr() != "str" {
		t.Errorf("unknown-length strings render as bare str")
	}
}

func TestAliasTransparency(t *testing.T) {
	alias := &AliasType{Name: "size", Of: PrimI64}

	if !Equals(alias, PrimI64) || !Equals(PrimI64, alias) {
		t.Errorf("aliases must be transparent for equality")
	}

	if alias.Repr() != "size" {
		t.Errorf("aliases must be preserved in diagnostics, got %s", alias.Repr())
	}
}

func TestWidest(t *testing.T) {
	cases := []struct {
		a, b, want Type
	}{
		{PrimInt, PrimF64, PrimF64},
		{PrimI8, PrimI32, PrimI32},
		{PrimF32, PrimF64, PrimF64},
		{PrimI64, PrimI8, PrimI64},
	}

	for _, c := range cases {
		if got := Widest(c.a, c.b); !Equals(got, c.want) {
			t.Errorf("Widest(%s, %s) = %s, want %s", c.a.Repr(), c.b.Repr(), got.Repr(), c.want.Repr())
		}
	}
}

func TestTemplateInstantiate(t *testing.T) {
	cache := NewCache()

	va := &TypeVar{Name: "A"}
	vb := &TypeVar{Name: "B"}
	tpl := &Template{
		Name: "Pair",
		Vars: []*TypeVar{va, vb},
		Base: &StructType{Name: "Pair", Fields: []StructField{
			{Name: "a", Type: va},
			{Name: "b", Type: vb},
		}},
	}

	inst, ok := cache.Instantiate(tpl, []Type{PrimInt, PrimF32})
	if !ok {
		t.Fatalf("instantiation failed")
	}

	st, isStruct := inst.(*StructType)
	if !isStruct {
		t.Fatalf("expected struct instance, got %s", inst.Repr())
	}

	if st.Repr() != "{a:int; b:f32}" {
		t.Errorf("unexpected instance repr %s", st.Repr())
	}

	again, _ := cache.Instantiate(tpl, []Type{PrimInt, PrimF32})
	if again != inst {
		t.Errorf("instances must be hash-consed")
	}

	if _, ok := cache.Instantiate(tpl, []Type{PrimInt}); ok {
		t.Errorf("arity mismatch must fail")
	}
}

func TestUnresolvedRefs(t *testing.T) {
	ut := NewUnresolvedType(nil)

	a := &fakeRef{}
	a.t = ut
	ut.AddRef(a)
	ut.AddRef(a)

	if len(ut.Refs()) != 1 {
		t.Errorf("reference set must deduplicate")
	}

	ut.Rebind()
	if a.t != nil {
		t.Errorf("rebinding must clear referent types")
	}
}

type fakeRef struct {
	t Type
}

func (f *fakeRef) Type() Type     { return f.t }
func (f *fakeRef) SetType(t Type) { f.t = t }
