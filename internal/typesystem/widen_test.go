package typesystem

import "testing"

func TestLiteralType(t *testing.T) {
	cases := []struct {
		value    uint64
		negative bool
		want     string
	}{
		{0, false, "bool"},
		{1, false, "bool"},
		{2, false, "u8"},
		{255, false, "u8"},
		{256, false, "u16"},
		{70000, false, "u32"},
		{1 << 40, false, "u64"},
		{100, true, "i8"},
		{200, true, "i16"},
	}
	for _, c := range cases {
		got := LiteralType(c.value, c.negative)
		if got.String() != c.want {
			t.Errorf("LiteralType(%d, %v) = %s, want %s", c.value, c.negative, got, c.want)
		}
	}
}

func TestWidenSameFamily(t *testing.T) {
	w, ok := Widen(U(8), U(16))
	if !ok || w.String() != "u16" {
		t.Fatalf("Widen(u8,u16) = %v,%v, want u16", w, ok)
	}
	w, ok = Widen(I(32), I(8))
	if !ok || w.String() != "i32" {
		t.Fatalf("Widen(i32,i8) = %v,%v, want i32", w, ok)
	}
}

func TestWidenCrossFamilyRejected(t *testing.T) {
	if _, ok := Widen(U(8), I(8)); ok {
		t.Fatalf("Widen(u8,i8) should fail: families differ")
	}
	if _, ok := Widen(F32(), I(8)); ok {
		t.Fatalf("Widen(f32,i8) should fail: families differ")
	}
}

func TestJoinArrayElem(t *testing.T) {
	elems := []Primitive{U(8), U(8), U(8)}
	joined, ok := JoinArrayElem(elems)
	if !ok || joined.String() != "u8" {
		t.Fatalf("JoinArrayElem(u8,u8,u8) = %v,%v, want u8", joined, ok)
	}
	elems = []Primitive{U(8), U(16), U(8)}
	joined, ok = JoinArrayElem(elems)
	if !ok || joined.String() != "u16" {
		t.Fatalf("JoinArrayElem(u8,u16,u8) = %v,%v, want u16", joined, ok)
	}
}

func TestIsConcrete(t *testing.T) {
	if IsConcrete(TVar{Name: "t1"}) {
		t.Errorf("a bare TVar must not be concrete")
	}
	if !IsConcrete(U(8)) {
		t.Errorf("u8 must be concrete")
	}
	if IsConcrete(Primitive{Kind: KindUnsignedInt, Width: 0}) {
		t.Errorf("an unresolved-width integer must not be concrete")
	}
	arr := Array{Elem: U(8), Size: 3, Resolved: true}
	if !IsConcrete(arr) {
		t.Errorf("a resolved array of concrete elements must be concrete")
	}
	arr2 := Array{Elem: U(8), Resolved: false}
	if IsConcrete(arr2) {
		t.Errorf("an unresolved-size array must not be concrete")
	}
}
