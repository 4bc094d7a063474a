// Package types implements the Type sum of spec section 3.3: primitive
// numeric kinds, Str, Void, Ptr, Addr, fixed/dynamic arrays, nominal
// structs, function references, and the Const/Mut qualifiers. Types carry
// their declaration span for diagnostics; equality ignores it.
package types

import (
	"github.com/samber/lo"

	"github.com/thrushlang/thrushc/internal/span"
)

// Kind discriminates the Type sum.
type Kind int

const (
	KindS8 Kind = iota
	KindS16
	KindS32
	KindS64
	KindSSize
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindUSize
	KindF32
	KindF64
	KindF128
	KindFX8680
	KindFPPC128
	KindBool
	KindChar
	KindStr
	KindVoid
	KindPtr
	KindAddr
	KindFixedArray
	KindArray
	KindStruct
	KindFn
	KindConst
	KindMut
)

// StructModificator carries per-target backend layout hints for a struct
// type: packing and alignment overrides.
type StructModificator struct {
	Packed bool
	Align  int
}

// FnModificator carries per-target hints for a function-reference type,
// notably C-style variadic call sites (spec section 4.3.2's @ignore rule).
type FnModificator struct {
	Variadic bool
}

// Type is the sum over every source-level type. Fields are populated
// according to Kind; Span records the declaration site for diagnostics and
// is ignored by Equal.
type Type struct {
	Kind Kind
	Span span.Span

	// KindPtr: nil Elem means an untyped ("void*"-like") pointer.
	// KindFixedArray, KindArray: Elem is the element type.
	// KindConst, KindMut: Elem is the wrapped type.
	Elem *Type

	// KindFixedArray only.
	Length uint32

	// KindStruct only.
	Name       string
	Fields     []StructField
	StructMeta StructModificator

	// KindFn only.
	Params []Type
	Ret    *Type
	FnMeta FnModificator
}

// StructField is one named, typed member of a KindStruct type.
type StructField struct {
	Name string
	Type Type
}

// DuplicateFieldNames returns fields' names with repeats collapsed; callers
// compare the result's length against len(fields) to detect a struct
// declaration that repeats a field name (spec section 4.2.5).
func DuplicateFieldNames(fields []StructField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return lo.Uniq(names)
}

// Primitive constructors. Each returns a fresh Type value; callers attach a
// Span themselves via WithSpan when the type came from source.
func S8() Type      { return Type{Kind: KindS8} }
func S16() Type     { return Type{Kind: KindS16} }
func S32() Type     { return Type{Kind: KindS32} }
func S64() Type     { return Type{Kind: KindS64} }
func SSize() Type   { return Type{Kind: KindSSize} }
func U8() Type      { return Type{Kind: KindU8} }
func U16() Type     { return Type{Kind: KindU16} }
func U32() Type     { return Type{Kind: KindU32} }
func U64() Type     { return Type{Kind: KindU64} }
func U128() Type    { return Type{Kind: KindU128} }
func USize() Type   { return Type{Kind: KindUSize} }
func F32() Type     { return Type{Kind: KindF32} }
func F64() Type     { return Type{Kind: KindF64} }
func F128() Type    { return Type{Kind: KindF128} }
func Bool() Type    { return Type{Kind: KindBool} }
func Char() Type    { return Type{Kind: KindChar} }
func Str() Type     { return Type{Kind: KindStr} }
func Void() Type    { return Type{Kind: KindVoid} }
func Addr() Type    { return Type{Kind: KindAddr} }

// Ptr builds a (possibly untyped) pointer type. elem == nil yields Ptr(None).
func Ptr(elem *Type) Type { return Type{Kind: KindPtr, Elem: elem} }

// FixedArray builds a statically sized array type.
func FixedArray(elem Type, length uint32) Type {
	return Type{Kind: KindFixedArray, Elem: &elem, Length: length}
}

// Array builds a dynamically sized array type, runtime-represented as
// { ptr, length }.
func Array(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// Struct builds a nominal struct type.
func Struct(name string, fields []StructField, meta StructModificator) Type {
	return Type{Kind: KindStruct, Name: name, Fields: fields, StructMeta: meta}
}

// Fn builds a function-reference type.
func Fn(params []Type, ret Type, meta FnModificator) Type {
	return Type{Kind: KindFn, Params: params, Ret: &ret, FnMeta: meta}
}

// ConstOf wraps t in the read-only qualifier.
func ConstOf(t Type) Type { return Type{Kind: KindConst, Elem: &t} }

// MutOf wraps t in the writable-reference qualifier. Per spec section 3.3's
// invariant, Mut may only legally wrap at the top level of a parameter or
// local binding; that rule is enforced by the parser/type checker, not by
// this constructor.
func MutOf(t Type) Type { return Type{Kind: KindMut, Elem: &t} }

// WithSpan returns a copy of t carrying sp as its declaration span.
func (t Type) WithSpan(sp span.Span) Type {
	t.Span = sp
	return t
}

// Unwrap strips any number of Const/Mut qualifiers, returning the
// underlying type and whether it was const- and/or mut-qualified anywhere
// in the chain.
func (t Type) Unwrap() (inner Type, isConst, isMut bool) {
	cur := t
	for {
		switch cur.Kind {
		case KindConst:
			isConst = true
			cur = *cur.Elem
		case KindMut:
			isMut = true
			cur = *cur.Elem
		default:
			return cur, isConst, isMut
		}
	}
}

// IsInteger reports whether t (after unwrapping qualifiers) is any signed
// or unsigned integer width.
func (t Type) IsInteger() bool {
	k, _, _ := t.Unwrap()
	switch k.Kind {
	case KindS8, KindS16, KindS32, KindS64, KindSSize,
		KindU8, KindU16, KindU32, KindU64, KindU128, KindUSize:
		return true
	}
	return false
}

// IsSigned reports whether an integer type t is signed. It returns false
// for any type that is not a signed integer, including non-integer types.
func (t Type) IsSigned() bool {
	k, _, _ := t.Unwrap()
	switch k.Kind {
	case KindS8, KindS16, KindS32, KindS64, KindSSize:
		return true
	}
	return false
}

// IsFloat reports whether t (after unwrapping) is a floating-point type.
func (t Type) IsFloat() bool {
	k, _, _ := t.Unwrap()
	switch k.Kind {
	case KindF32, KindF64, KindF128, KindFX8680, KindFPPC128:
		return true
	}
	return false
}

// IsNumeric reports whether t is an integer or float type.
func (t Type) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

// IsPointerLike reports whether t is a Ptr or Addr type.
func (t Type) IsPointerLike() bool {
	k, _, _ := t.Unwrap()
	return k.Kind == KindPtr || k.Kind == KindAddr
}

// BitWidth returns the bit width of an integer or float type, or 0 for
// non-numeric types.
func (t Type) BitWidth() int {
	k, _, _ := t.Unwrap()
	switch k.Kind {
	case KindS8, KindU8:
		return 8
	case KindS16, KindU16:
		return 16
	case KindS32, KindU32, KindF32:
		return 32
	case KindS64, KindU64, KindSSize, KindUSize, KindF64:
		return 64
	case KindU128, KindF128, KindFX8680, KindFPPC128:
		return 128
	case KindBool, KindChar:
		return 8
	}
	return 0
}

// Narrowing implements spec section 4.3.2's unary '-' narrowing table:
// u8 -> s8, u16 -> s16, and so on; signed types and non-integers are
// returned unchanged.
func (t Type) Narrowing() Type {
	k, _, _ := t.Unwrap()
	switch k.Kind {
	case KindU8:
		return S8()
	case KindU16:
		return S16()
	case KindU32:
		return S32()
	case KindU64, KindUSize:
		return S64()
	case KindU128:
		return S64()
	default:
		return k
	}
}

// Equal compares two types structurally, ignoring Span (spec section 3.3).
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPtr:
		if (a.Elem == nil) != (b.Elem == nil) {
			return false
		}
		if a.Elem == nil {
			return true
		}
		return Equal(*a.Elem, *b.Elem)
	case KindFixedArray:
		return a.Length == b.Length && Equal(*a.Elem, *b.Elem)
	case KindArray, KindConst, KindMut:
		return Equal(*a.Elem, *b.Elem)
	case KindStruct:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindFn:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(*a.Ret, *b.Ret)
	default:
		return true
	}
}

// String renders t for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case KindS8:
		return "s8"
	case KindS16:
		return "s16"
	case KindS32:
		return "s32"
	case KindS64:
		return "s64"
	case KindSSize:
		return "ssize"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindUSize:
		return "usize"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindF128:
		return "f128"
	case KindFX8680:
		return "fx8680"
	case KindFPPC128:
		return "fppc128"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindVoid:
		return "void"
	case KindAddr:
		return "addr"
	case KindPtr:
		if t.Elem == nil {
			return "ptr"
		}
		return "ptr[" + t.Elem.String() + "]"
	case KindFixedArray:
		return "[" + t.Elem.String() + "; " + itoa(int(t.Length)) + "]"
	case KindArray:
		return "array[" + t.Elem.String() + "]"
	case KindStruct:
		return t.Name
	case KindFn:
		s := "fnref["
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + "] -> " + t.Ret.String()
	case KindConst:
		return "const " + t.Elem.String()
	case KindMut:
		return "mut " + t.Elem.String()
	default:
		return "?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
