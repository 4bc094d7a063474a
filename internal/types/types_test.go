package types

import (
	"testing"

	"github.com/thrushlang/thrushc/internal/span"
)

func TestEqual_PrimitivesIgnoreSpan(t *testing.T) {
	a := S32().WithSpan(span.New(1, 0, 1))
	b := S32()
	if !Equal(a, b) {
		t.Error("Equal should ignore Span")
	}
}

func TestEqual_PtrNilVsTyped(t *testing.T) {
	s32 := S32()
	untyped := Ptr(nil)
	typed := Ptr(&s32)
	if Equal(untyped, typed) {
		t.Error("Ptr(nil) must not equal Ptr(s32)")
	}
	if !Equal(Ptr(nil), Ptr(nil)) {
		t.Error("Ptr(nil) must equal Ptr(nil)")
	}
}

func TestEqual_StructSameFields(t *testing.T) {
	a := Struct("P", []StructField{{Name: "x", Type: S32()}, {Name: "y", Type: S32()}}, StructModificator{})
	b := Struct("P", []StructField{{Name: "x", Type: S32()}, {Name: "y", Type: S32()}}, StructModificator{})
	if !Equal(a, b) {
		t.Error("identical structs should be equal")
	}
}

func TestNarrowing(t *testing.T) {
	tests := []struct {
		in   Type
		want Kind
	}{
		{U8(), KindS8}, {U16(), KindS16}, {U32(), KindS32}, {U64(), KindS64}, {S32(), KindS32},
	}
	for _, tt := range tests {
		if got := tt.in.Narrowing().Kind; got != tt.want {
			t.Errorf("Narrowing(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsIntegerIsFloat(t *testing.T) {
	if !S32().IsInteger() || S32().IsFloat() {
		t.Error("s32 should be integer, not float")
	}
	if !F64().IsFloat() || F64().IsInteger() {
		t.Error("f64 should be float, not integer")
	}
	if Bool().IsInteger() || Bool().IsFloat() {
		t.Error("bool is neither integer nor float")
	}
}

func TestUnwrapMutConst(t *testing.T) {
	wrapped := MutOf(ConstOf(S32()))
	inner, isConst, isMut := wrapped.Unwrap()
	if inner.Kind != KindS32 || !isConst || !isMut {
		t.Errorf("Unwrap() = (%v, %v, %v), want (s32, true, true)", inner, isConst, isMut)
	}
}

func TestDuplicateFieldNames(t *testing.T) {
	dup := []StructField{{Name: "x", Type: S32()}, {Name: "x", Type: S32()}, {Name: "y", Type: S32()}}
	if uniq := DuplicateFieldNames(dup); len(uniq) == len(dup) {
		t.Fatalf("expected a repeated field name to collapse, got %v", uniq)
	}

	clean := []StructField{{Name: "x", Type: S32()}, {Name: "y", Type: S32()}}
	if uniq := DuplicateFieldNames(clean); len(uniq) != len(clean) {
		t.Fatalf("expected distinct field names to survive unchanged, got %v", uniq)
	}
}

func TestStringRendering(t *testing.T) {
	s32 := S32()
	tests := []struct {
		in   Type
		want string
	}{
		{S32(), "s32"},
		{Ptr(&s32), "ptr[s32]"},
		{Ptr(nil), "ptr"},
		{FixedArray(S32(), 4), "[s32; 4]"},
		{Array(S32()), "array[s32]"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
