package types

import "testing"

func TestPrimitiveEqual(t *testing.T) {
	if !I(32).Equal(I(32)) {
		t.Fatal("i32 should equal i32")
	}
	if I(32).Equal(U(32)) {
		t.Fatal("i32 should not equal u32")
	}
}

func TestVarApplySubst(t *testing.T) {
	v := Var{Name: "T"}
	s := Subst{"T": I(16)}
	got := v.Apply(s)
	if !got.Equal(I(16)) {
		t.Fatalf("expected i16, got %s", got.String())
	}
}

func TestNamedApplyPropagatesIntoArgs(t *testing.T) {
	n := Named{Name: "Box", Args: []Type{Var{Name: "T"}}}
	s := Subst{"T": Bool()}
	got := n.Apply(s).(Named)
	if !got.Args[0].Equal(Bool()) {
		t.Fatalf("expected Box<bool>, got %s", got.String())
	}
}

func TestIsConcrete(t *testing.T) {
	if IsConcrete(Var{Name: "T"}) {
		t.Fatal("type variable must not be concrete")
	}
	if !IsConcrete(I(8)) {
		t.Fatal("primitive must be concrete")
	}
	if !IsConcrete(Array{Elem: I(8), SizeKey: "4"}) {
		t.Fatal("array of concrete elem must be concrete")
	}
	if IsConcrete(Array{Elem: Var{Name: "T"}, SizeKey: "4"}) {
		t.Fatal("array of type var must not be concrete")
	}
}

func TestTypeSignatureKeyDeterministic(t *testing.T) {
	sig1 := TypeSignature{FuncName: "id", ArgTypes: []Type{U(8)}}
	sig2 := TypeSignature{FuncName: "id", ArgTypes: []Type{U(8)}}
	if sig1.Key() != sig2.Key() {
		t.Fatal("identical signatures must produce identical keys")
	}
	sig3 := TypeSignature{FuncName: "id", ArgTypes: []Type{I(16)}}
	if sig1.Key() == sig3.Key() {
		t.Fatal("different argument types must produce different keys")
	}
}

func TestTupleTypeName(t *testing.T) {
	name := TupleTypeName([]Type{I(32), Bool()})
	if name != "__tup2_i32_bool" {
		t.Fatalf("unexpected tuple type name: %s", name)
	}
}

func TestMaskAndSignExtend(t *testing.T) {
	if MaskToWidth(0xFF, 4) != 0xF {
		t.Fatal("mask to 4 bits failed")
	}
	// 0b1000 in 4 bits is -8 signed
	if SignExtend(0x8, 4) != -8 {
		t.Fatalf("expected -8, got %d", SignExtend(0x8, 4))
	}
	// 0b0111 in 4 bits is 7 signed
	if SignExtend(0x7, 4) != 7 {
		t.Fatalf("expected 7, got %d", SignExtend(0x7, 4))
	}
}

func TestFitsSigned(t *testing.T) {
	if !FitsSigned(127, 8) {
		t.Fatal("127 should fit in i8")
	}
	if FitsSigned(128, 8) {
		t.Fatal("128 should not fit in i8")
	}
	if !FitsSigned(-128, 8) {
		t.Fatal("-128 should fit in i8")
	}
}
