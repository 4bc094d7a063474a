package ast

import (
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/types"
)

// --- Literals ---

type Integer struct {
	exprBase
	Value   int64
	Unsigned bool
}

type Float struct {
	exprBase
	Value float64
}

type Boolean struct {
	exprBase
	Value bool
}

type CharLit struct {
	exprBase
	Value byte
}

type StrLit struct {
	exprBase
	Bytes []byte
}

type NullPtr struct{ exprBase }

// --- Names ---

// Reference is a use of a bound name. Metadata.IsAllocated drives whether
// codegen emits a load (spec section 3.5).
type Reference struct {
	exprBase
	Name     string
	Metadata ReferenceMetadata
}

// DirectRef is an address-of a Reference: `&name`.
type DirectRef struct {
	exprBase
	Expr Expr
}

// --- Operators ---

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpAssign
	OpAddAssign
	OpSubAssign
)

type BinaryOp struct {
	exprBase
	Operator BinaryOperator
	Left     Expr
	Right    Expr
}

type UnaryOperator int

const (
	UnaryNeg UnaryOperator = iota
	UnaryNot
	UnaryBitNot
	UnaryIncrement
	UnaryDecrement
)

type UnaryOp struct {
	exprBase
	Operator   UnaryOperator
	Expression Expr
	IsPre      bool
}

// Group is a parenthesized expression, kept as its own node so codegen can
// distinguish `(a, b)` groupings from bare subexpressions when needed.
type Group struct {
	exprBase
	Inner Expr
}

// As is an explicit cast expression: `expr as type`.
type As struct {
	exprBase
	Expr   Expr
	CastTo types.Type
}

// --- Aggregates ---

type FixedArrayLit struct {
	exprBase
	Elements []Expr
}

type ArrayLit struct {
	exprBase
	Elements []Expr
}

// ConstructorField is one `name: expr` pair inside a `new T{...}` literal,
// resolved to its declared field type and struct index by the type checker.
type ConstructorField struct {
	FieldName string
	Value     Expr
	FieldType types.Type
	Index     int
}

type Constructor struct {
	exprBase
	StructName string
	Fields     []ConstructorField
}

// PropertyIndex is one step of a navigated field-access chain: the field's
// type and its index within the enclosing struct.
type PropertyIndex struct {
	Type  types.Type
	Index uint32
}

// Property is a navigated `.field` access chain. Names holds the
// source-order field names as written; the type checker resolves each into
// an Indexes entry once the source's struct type is known.
type Property struct {
	exprBase
	Source  Expr
	Names   []string
	Indexes []PropertyIndex
}

// IndexKind distinguishes element access on a value vs. an allocated/pointer
// source, which determines whether codegen emits a GEP or an extract_value.
type IndexKind int

const (
	IndexOnValue IndexKind = iota
	IndexOnPointer
)

type Index struct {
	exprBase
	Source  Expr
	Indexes []Expr
	Kind    IndexKind
}

// --- Calls ---

type Call struct {
	exprBase
	Callee string
	Args   []Expr
}

// Indirect is a call through a function-reference value.
type Indirect struct {
	exprBase
	Function     Expr
	FunctionType types.Type
	Args         []Expr
}

// BuiltinKind enumerates the sizeof/alignof/memcpy/memmove/memset family.
type BuiltinKind int

const (
	BuiltinSizeOf BuiltinKind = iota
	BuiltinAlignOf
	BuiltinMemcpy
	BuiltinMemmove
	BuiltinMemset
)

type Builtin struct {
	exprBase
	Which     BuiltinKind
	TypeArg   *types.Type
	Args      []Expr
}

// AsmValue is an inline-assembly expression: raw assembly text plus operand
// constraints, evaluating to a value of its declared Type.
type AsmValue struct {
	exprBase
	Assembly    string
	Constraints string
	Args        []Expr
}

// --- Memory LLI ---

type Alloc struct {
	exprBase
	AllocatedType types.Type
	Heap          bool
}

type Load struct {
	exprBase
	Source Expr
}

type Write struct {
	exprBase
	Target Expr
	Value  Expr
}

type Address struct {
	exprBase
	Base    Expr
	Offsets []Expr
}

type Deref struct {
	exprBase
	Source Expr
}

// --- constructors ---

func NewInteger(sp span.Span, t types.Type, v int64, unsigned bool) *Integer {
	return &Integer{exprBase: NewExprBase(sp, t), Value: v, Unsigned: unsigned}
}

func NewFloat(sp span.Span, t types.Type, v float64) *Float {
	return &Float{exprBase: NewExprBase(sp, t), Value: v}
}

func NewBoolean(sp span.Span, v bool) *Boolean {
	return &Boolean{exprBase: NewExprBase(sp, types.Bool()), Value: v}
}

func NewReference(sp span.Span, name string, meta ReferenceMetadata) *Reference {
	return &Reference{exprBase: NewExprBase(sp, types.Type{}), Name: name, Metadata: meta}
}
