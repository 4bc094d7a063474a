package ast

import (
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/types"
)

// Attribute is the sum of spec section 3.6's compiler attributes. Each
// variant is distinguished by Kind; payload-bearing kinds (Extern,
// Convention, Linkage, AsmSyntax) use Payload.
type AttributeKind int

const (
	AttrExtern AttributeKind = iota
	AttrConvention
	AttrLinkage
	AttrPublic
	AttrIgnore
	AttrHot
	AttrAlwaysInline
	AttrInlineHint
	AttrNoInline
	AttrMinSize
	AttrSafeStack
	AttrWeakStack
	AttrStrongStack
	AttrPreciseFloats
	AttrPacked
	AttrNoUnwind
	AttrStack
	AttrHeap
	AttrAsmAlignStack
	AttrAsmThrow
	AttrAsmSideEffects
	AttrAsmSyntax
	AttrOptFuzzing
	AttrConstructor
	AttrDestructor
)

type Attribute struct {
	Kind    AttributeKind
	Payload string
	Span    span.Span
}

type AttributeList []Attribute

// Has reports whether the list carries an attribute of the given kind.
func (l AttributeList) Has(k AttributeKind) bool {
	for _, a := range l {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// Find returns the first attribute of kind k, if present.
func (l AttributeList) Find(k AttributeKind) (Attribute, bool) {
	for _, a := range l {
		if a.Kind == k {
			return a, true
		}
	}
	return Attribute{}, false
}

// FunctionParameter is one parameter of a Function/AssemblerFunction/
// Intrinsic declaration.
type FunctionParameter struct {
	base
	Name     string
	Type     types.Type
	Position int
	Metadata FunctionParameterMetadata
}

func (p *FunctionParameter) node() {}

// Function is a full function declaration: `fn name(params) ret attrs body?`.
type Function struct {
	base
	Name       string
	Parameters []*FunctionParameter
	ReturnType types.Type
	Attributes AttributeList
	Body       *Block // nil for a bodyless @extern declaration
	IsEntry    bool   // true for `fn main`
}

// AssemblerFunction is like Function, but its body is inline-asm text plus
// an operand constraint string instead of a statement block.
type AssemblerFunction struct {
	base
	Name        string
	Parameters  []*FunctionParameter
	ReturnType  types.Type
	Attributes  AttributeList
	Assembly    string
	Constraints string
}

// Intrinsic is `intrinsic("external_name") name(params) ret_type;` — no
// body, bound directly to a named external symbol.
type Intrinsic struct {
	base
	ExternalName string
	Name         string
	Parameters   []*FunctionParameter
	ReturnType   types.Type
}

// StructDecl is `struct name attrs { field: type, ... }`.
type StructDecl struct {
	base
	Name       string
	Fields     []types.StructField
	Attributes AttributeList
}

// EnumVariant is one named, typed constant of an Enum declaration.
type EnumVariant struct {
	Name  string
	Type  types.Type
	Value Expr // nil for an implicit, auto-incremented integer value
}

type EnumDecl struct {
	base
	Name     string
	Variants []EnumVariant
}

// Static is `static [mut] name: type [attrs] (= expr | ;)`.
type Static struct {
	base
	Name       string
	Type       types.Type
	Value      Expr // nil when IsUndefined
	Attributes AttributeList
	Metadata   StaticMetadata
}

// ConstDecl is `const name: type [attrs] = expr;` — always initialized,
// always constant.
type ConstDecl struct {
	base
	Name       string
	Type       types.Type
	Value      Expr
	Attributes AttributeList
	Metadata   ConstantMetadata
}

// CustomType is `type name = type_expr;`. HeaderPath is set only when this
// alias was produced by `import "header.h" as name;` (spec section 4.2.8);
// no compiler stage reads it to load the header's declarations.
type CustomType struct {
	base
	Name       string
	Underlying types.Type
	HeaderPath string
}

// Local is a block-scoped `let`-style binding: `name: type = expr;` (or
// uninitialized when Value is nil).
type Local struct {
	base
	Name     string
	Type     types.Type
	Value    Expr
	Metadata LocalMetadata
}

func (f *Function) node()          {}
func (f *AssemblerFunction) node() {}
func (i *Intrinsic) node()         {}
func (s *StructDecl) node()        {}
func (e *EnumDecl) node()          {}
func (s *Static) node()            {}
func (c *ConstDecl) node()         {}
func (c *CustomType) node()        {}
func (l *Local) node()             {}
