// Package token defines the closed set of lexical token kinds produced by
// the lexer and consumed by the parser, mirroring spec section 3.2.
package token

import "github.com/thrushlang/thrushc/internal/span"

// Kind is a closed enumeration over every lexical category the language
// recognizes: punctuation, operators, delimiters, literals, keywords
// (including every type keyword), control-flow keywords, declaration
// keywords, attribute keywords, and LLI keywords.
type Kind int

const (
	Illegal Kind = iota
	Eof

	// Literals.
	Integer
	Float
	Str
	Char
	True
	False
	NullPtr
	Identifier

	// Punctuation / delimiters.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Colon
	SemiColon
	Dot
	Arrow // ->

	// Arithmetic operators.
	Plus
	Minus
	Star
	Slash
	Percent
	PlusPlus
	MinusMinus
	PlusEqual
	MinusEqual
	Equal

	// Comparison operators.
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual

	// Logical operators.
	AndAnd
	OrOr
	Bang

	// Bitwise / shift operators.
	Amp
	Pipe
	Caret
	Tilde
	ShiftLeft
	ShiftRight

	// Address-of / cast keyword.
	Ampersand
	As

	// Type keywords.
	KwS8
	KwS16
	KwS32
	KwS64
	KwSSize
	KwU8
	KwU16
	KwU32
	KwU64
	KwU128
	KwUSize
	KwF32
	KwF64
	KwF128
	KwBool
	KwChar
	KwStr
	KwVoid
	KwPtr
	KwAddr
	KwArray
	KwConst
	KwFnRef
	KwMut

	// Declaration keywords.
	KwFn
	KwStruct
	KwEnum
	KwType
	KwStatic
	KwIntrinsic
	KwAsm
	KwImport
	KwNew
	KwFixed

	// Control-flow keywords.
	KwIf
	KwElif
	KwElse
	KwFor
	KwWhile
	KwLoop
	KwBreak
	KwContinue
	KwReturn
	KwPass
	KwUnreachable
	KwLazyThread
	KwVolatile
	KwAtomic
	KwThreadMode

	// LLI (low-level intrinsic) keywords.
	KwAlloc
	KwLoad
	KwWrite
	KwAddress
	KwDeref
	KwSizeOf
	KwAlignOf
	KwMemcpy
	KwMemmove
	KwMemset
	KwHalloc

	// Attribute keywords (lexed with a leading '@').
	AttrPublic
	AttrExtern
	AttrIgnore
	AttrHot
	AttrInline
	AttrAlwaysInline
	AttrNoInline
	AttrMinSize
	AttrSafeStack
	AttrWeakStack
	AttrStrongStack
	AttrPreciseFp
	AttrPacked
	AttrNoUnwind
	AttrConvention
	AttrLinkage
	AttrAsmSyntax
	AttrAsmThrow
	AttrAsmSideEffects
	AttrAsmAlignStack
	AttrStack
	AttrHeap
	AttrConstructor
	AttrDestructor
	AttrOptFuzzing
)

// Token is the atomic lexical unit produced by the lexer: a kind, the raw
// lexeme, its ASCII-folded form (identical to lexeme for pure-ASCII
// identifiers), its span, and, for string/char literals, the processed byte
// content after escape handling.
type Token struct {
	Kind   Kind
	Lexeme string
	ASCII  string
	Span   span.Span
	Bytes  []byte
}

// Keywords maps every reserved word (including the LLI keywords) to its
// Kind; attribute names live in the separate Attributes map. Built once at process start and never mutated,
// per spec section 9's note on the reference's lazily-initialized keyword
// table: here it is a read-only interned table instead.
var Keywords = map[string]Kind{
	"s8": KwS8, "s16": KwS16, "s32": KwS32, "s64": KwS64, "ssize": KwSSize,
	"u8": KwU8, "u16": KwU16, "u32": KwU32, "u64": KwU64, "u128": KwU128, "usize": KwUSize,
	"f32": KwF32, "f64": KwF64, "f128": KwF128,
	"bool": KwBool, "char": KwChar, "str": KwStr, "void": KwVoid,
	"ptr": KwPtr, "addr": KwAddr, "array": KwArray, "const": KwConst,
	"fnref": KwFnRef, "mut": KwMut,

	"fn": KwFn, "struct": KwStruct, "enum": KwEnum, "type": KwType,
	"static": KwStatic, "intrinsic": KwIntrinsic, "asm": KwAsm, "import": KwImport,
	"new": KwNew, "fixed": KwFixed,

	"if": KwIf, "elif": KwElif, "else": KwElse, "for": KwFor, "while": KwWhile,
	"loop": KwLoop, "break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"pass": KwPass, "unreachable": KwUnreachable,
	"lazythread": KwLazyThread, "volatile": KwVolatile, "atomic": KwAtomic,
	"threadmode": KwThreadMode,

	"alloc": KwAlloc, "load": KwLoad, "write": KwWrite, "address": KwAddress,
	"deref": KwDeref, "sizeof": KwSizeOf, "alignof": KwAlignOf,
	"memcpy": KwMemcpy, "memmove": KwMemmove, "memset": KwMemset, "halloc": KwHalloc,

	"true": True, "false": False, "nullptr": NullPtr,
	"as": As,
}

// Attributes maps attribute names (without the leading '@') to their Kind.
var Attributes = map[string]Kind{
	"public": AttrPublic, "extern": AttrExtern, "ignore": AttrIgnore,
	"hot": AttrHot, "inline": AttrInline, "alwaysinline": AttrAlwaysInline,
	"noinline": AttrNoInline, "minsize": AttrMinSize, "safestack": AttrSafeStack,
	"weakstack": AttrWeakStack, "strongstack": AttrStrongStack,
	"precisefp": AttrPreciseFp, "packed": AttrPacked, "nounwind": AttrNoUnwind,
	"convention": AttrConvention, "linkage": AttrLinkage, "asmsyntax": AttrAsmSyntax,
	"asmthrow": AttrAsmThrow, "asmsideeffects": AttrAsmSideEffects,
	"asmalignstack": AttrAsmAlignStack, "stack": AttrStack, "heap": AttrHeap,
	"constructor": AttrConstructor, "destructor": AttrDestructor,
	"optfuzzing": AttrOptFuzzing,
}

// IsTypeKeyword reports whether k introduces a primitive type in type
// position (spec section 4.2.3's primitive_kw production).
func IsTypeKeyword(k Kind) bool {
	switch k {
	case KwS8, KwS16, KwS32, KwS64, KwSSize,
		KwU8, KwU16, KwU32, KwU64, KwU128, KwUSize,
		KwF32, KwF64, KwF128, KwBool, KwChar, KwStr, KwVoid:
		return true
	}
	return false
}

// String renders a Kind for diagnostics and test failure messages.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindNames = func() map[Kind]string {
	names := map[Kind]string{
		Illegal: "illegal", Eof: "eof", Integer: "integer", Float: "float",
		Str: "string", Char: "char", True: "true", False: "false",
		NullPtr: "nullptr", Identifier: "identifier",
		LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
		LeftBracket: "[", RightBracket: "]", Comma: ",", Colon: ":",
		SemiColon: ";", Dot: ".", Arrow: "->",
		Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
		PlusPlus: "++", MinusMinus: "--", PlusEqual: "+=", MinusEqual: "-=",
		Equal: "=", EqualEqual: "==", BangEqual: "!=", Less: "<", LessEqual: "<=",
		Greater: ">", GreaterEqual: ">=", AndAnd: "&&", OrOr: "||", Bang: "!",
		Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
		ShiftLeft: "<<", ShiftRight: ">>", As: "as",
	}
	for name, kind := range Keywords {
		if _, exists := names[kind]; !exists {
			names[kind] = name
		}
	}
	for name, kind := range Attributes {
		names[kind] = "@" + name
	}
	return names
}()
