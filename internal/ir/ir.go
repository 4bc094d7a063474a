// Package ir implements a pure-Go SSA/CFG intermediate representation:
// modules, functions, basic blocks, instructions and values, matching the
// shape spec section 6.3 describes for the backend this compiler lowers
// to. No cgo LLVM binding in the example pack reaches a stability level
// usable here, so this package is the backend itself rather than a thin
// wrapper: internal/codegen builds one of these per compiled unit and
// internal/optdriver transforms it in place before the printer renders it
// to the textual form spec section 6.3 specifies.
package ir

import "fmt"

// Type is the IR's own lowered type representation, one level below
// internal/types.Type: by the time codegen builds IR, qualifiers
// (const/mut) have already been stripped and aggregate layouts resolved.
type Type struct {
	Kind   TypeKind
	Elem   *Type   // Array
	Length uint32  // Array
	Fields []Type  // Struct
	Params []Type  // Function
	Ret    *Type   // Function
}

type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeI1
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeI128
	TypeF32
	TypeF64
	TypeF128
	TypePtr
	TypeArray
	TypeStruct
	TypeFunc
	TypeLabel
)

func (t Type) String() string {
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeI1:
		return "i1"
	case TypeI8:
		return "i8"
	case TypeI16:
		return "i16"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeI128:
		return "i128"
	case TypeF32:
		return "float"
	case TypeF64:
		return "double"
	case TypeF128:
		return "fp128"
	case TypePtr:
		return "ptr"
	case TypeArray:
		return fmt.Sprintf("[%d x %s]", t.Length, t.Elem.String())
	case TypeStruct:
		s := "{ "
		for i, f := range t.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.String()
		}
		return s + " }"
	case TypeFunc:
		s := t.Ret.String() + " ("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ")"
	case TypeLabel:
		return "label"
	default:
		return "?"
	}
}

// Pointer is the IR's single opaque pointer type; it carries no pointee,
// matching the opaque-pointer convention spec section 6.3 assumes.
func Pointer() Type { return Type{Kind: TypePtr} }

func ArrayOf(elem Type, length uint32) Type { return Type{Kind: TypeArray, Elem: &elem, Length: length} }

func StructOf(fields ...Type) Type { return Type{Kind: TypeStruct, Fields: fields} }

func FuncOf(ret Type, params ...Type) Type { return Type{Kind: TypeFunc, Ret: &ret, Params: params} }

// Value is anything an instruction can consume: a constant, a named
// instruction result, a parameter, or a global reference.
type Value interface {
	ValueType() Type
	String() string
}

// ConstInt is an integer constant of a given width.
type ConstInt struct {
	Typ Type
	Val int64
}

func (c ConstInt) ValueType() Type { return c.Typ }
func (c ConstInt) String() string  { return fmt.Sprintf("%s %d", c.Typ, c.Val) }

// ConstFloat is a floating-point constant.
type ConstFloat struct {
	Typ Type
	Val float64
}

func (c ConstFloat) ValueType() Type { return c.Typ }
func (c ConstFloat) String() string  { return fmt.Sprintf("%s %g", c.Typ, c.Val) }

// ConstNull is the null pointer constant.
type ConstNull struct{ Typ Type }

func (c ConstNull) ValueType() Type { return c.Typ }
func (c ConstNull) String() string  { return fmt.Sprintf("%s null", c.Typ) }

// ConstArray is an aggregate array constant, used for string literal
// lowering and fixed-array initializers.
type ConstArray struct {
	Typ      Type
	Elements []Value
}

func (c ConstArray) ValueType() Type { return c.Typ }
func (c ConstArray) String() string {
	s := c.Typ.String() + " ["
	for i, e := range c.Elements {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

// GlobalRef references a module-level global or function by name.
type GlobalRef struct {
	Typ  Type
	Name string
}

func (g GlobalRef) ValueType() Type { return g.Typ }
func (g GlobalRef) String() string  { return "@" + g.Name }

// Param is a function parameter, referenced by position inside the
// function's entry block.
type Param struct {
	Typ  Type
	Name string
}

func (p Param) ValueType() Type { return p.Typ }
func (p Param) String() string  { return "%" + p.Name }

// Global is a module-level variable, with an optional initializer.
type Global struct {
	Name        string
	Typ         Type
	Init        Value // nil for a tentative/external definition
	Constant    bool
	Linkage     Linkage
	ThreadLocal bool
	Volatile    bool
	UnnamedAddr bool
}

// Linkage mirrors the subset of LLVM linkage kinds spec section 6.3 names.
type Linkage int

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkagePrivate
	LinkageWeak
)

func (l Linkage) String() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkagePrivate:
		return "linker_private"
	case LinkageWeak:
		return "weak"
	default:
		return ""
	}
}

// GlobalRef returns a reference value to g usable as an operand.
func (g *Global) GlobalRef() GlobalRef { return GlobalRef{Typ: Pointer(), Name: g.Name} }

// Attribute is a function- or parameter-level attribute lowered from
// spec section 3.6's attribute sum (e.g. noinline, alwaysinline, hot).
type Attribute string

const (
	AttrAlwaysInline Attribute = "alwaysinline"
	AttrInlineHint   Attribute = "inlinehint"
	AttrNoInline     Attribute = "noinline"
	AttrMinSize      Attribute = "minsize"
	AttrHot          Attribute = "hot"
	AttrCold         Attribute = "cold"
	AttrNoUnwind     Attribute = "nounwind"
	AttrSafeStack    Attribute = "safestack"
	AttrSSPStrong    Attribute = "sspstrong"
	AttrSSPWeak      Attribute = "ssp"
	AttrOptNone      Attribute = "optnone"
	AttrNoFuzzing    Attribute = "nosanitize_fuzzer"
)

// Function is one defined or declared function in a Module.
type Function struct {
	Name       string
	ParamTypes []Type
	ParamNames []string
	RetType    Type
	Blocks     []*BasicBlock
	Attributes []Attribute
	Convention string // "", "fastcc", "coldcc"
	Linkage    Linkage
	Variadic   bool

	// Assembly and Constraints hold an assembler function's inline-asm
	// body and operand constraint string (spec section 3.4); set only
	// for functions lowered from an AssemblerFunction declaration, which
	// never gain Blocks.
	Assembly    string
	Constraints string

	nextTemp int
	nextBB   int
}

// IsDeclaration reports whether fn has no body (spec section 4.4's
// extern/intrinsic functions lower to bodyless declarations).
func (fn *Function) IsDeclaration() bool { return len(fn.Blocks) == 0 && fn.Assembly == "" }

// Param returns a reference value to the name'd parameter.
func (fn *Function) Param(name string) Param {
	for i, n := range fn.ParamNames {
		if n == name {
			return Param{Typ: fn.ParamTypes[i], Name: n}
		}
	}
	return Param{}
}

// NewBlock appends and returns a fresh basic block, auto-naming it when
// label is empty.
func (fn *Function) NewBlock(label string) *BasicBlock {
	if label == "" {
		label = fmt.Sprintf("bb%d", fn.nextBB)
	}
	fn.nextBB++
	bb := &BasicBlock{Label: label, Fn: fn}
	fn.Blocks = append(fn.Blocks, bb)
	return bb
}

func (fn *Function) nextName() string {
	fn.nextTemp++
	return fmt.Sprintf("t%d", fn.nextTemp-1)
}

// Module is one compiled translation unit's IR: its functions, globals,
// and named struct types, plus the target triple/data layout codegen
// stamped it with (spec section 6.3's module metadata).
type Module struct {
	Name       string
	Triple     string
	DataLayout string
	Functions  []*Function
	Globals    []*Global
	StructDefs map[string]Type
}

// NewModule returns an empty module ready for codegen to populate.
func NewModule(name, triple, dataLayout string) *Module {
	return &Module{Name: name, Triple: triple, DataLayout: dataLayout, StructDefs: make(map[string]Type)}
}

// NewFunction declares (and, once blocks are appended, defines) a
// function in m.
func (m *Module) NewFunction(name string, ret Type, paramTypes []Type, paramNames []string) *Function {
	fn := &Function{Name: name, RetType: ret, ParamTypes: paramTypes, ParamNames: paramNames}
	m.Functions = append(m.Functions, fn)
	return fn
}

// NewGlobal declares a module-level global variable.
func (m *Module) NewGlobal(name string, t Type, init Value, constant bool) *Global {
	g := &Global{Name: name, Typ: t, Init: init, Constant: constant}
	m.Globals = append(m.Globals, g)
	return g
}

// FindFunction returns the named function, if declared.
func (m *Module) FindFunction(name string) (*Function, bool) {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// FindGlobal returns the named global variable, if declared.
func (m *Module) FindGlobal(name string) (*Global, bool) {
	for _, g := range m.Globals {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}
