// Package cimport implements `import "header.h" as name;` (spec section
// 4.2.8): parsing a C header with modernc.org/cc/v4 and turning its
// function prototypes into callable declarations, generalizing the
// teacher's own `TranslateUnit.parseSource`/`convertFunction`/
// `convertFunctionParameters` (main.go) from "extract one translation
// unit's function definitions to stub out in Go" to "extract every
// prototype a header declares so this compiler can call it directly".
package cimport

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/thrushlang/thrushc/internal/types"
	"modernc.org/cc/v4"
)

// Declaration is one extern function prototype imported from a C header.
type Declaration struct {
	Name       string
	ReturnType types.Type
	Params     []Param
	Variadic   bool
	Line       int
}

type Param struct {
	Name string
	Type types.Type
}

// cTypeTable maps the C type-specifier spellings the teacher's own
// `supportedTypes` set already recognizes (main.go) into this compiler's
// own Type sum, extended with the handful of additional C primitives a
// general header is likely to declare (char, short, unsigned variants)
// that the teacher's narrower NEON/SIMD-stub use case never needed.
var cTypeTable = map[string]types.Type{
	"void":           types.Void(),
	"_Bool":          types.Bool(),
	"bool":           types.Bool(),
	"char":           types.S8(),
	"signed char":    types.S8(),
	"unsigned char":  types.U8(),
	"short":          types.S16(),
	"unsigned short": types.U16(),
	"int":            types.S32(),
	"unsigned int":   types.U32(),
	"unsigned":       types.U32(),
	"int32_t":        types.S32(),
	"uint32_t":       types.U32(),
	"long":           types.S64(),
	"unsigned long":  types.U64(),
	"int64_t":        types.S64(),
	"uint64_t":       types.U64(),
	"float":          types.F32(),
	"double":         types.F64(),
}

// Import parses the header at path, returning every function prototype it
// declares (both bodyless declarations and definitions), generalizing the
// teacher's parseSource which only kept function definitions matching the
// translated file itself.
func Import(path string, includePaths []string) ([]Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := cc.NewConfig("linux", "amd64")
	if err != nil {
		return nil, err
	}
	if len(includePaths) > 0 {
		cfg.SysIncludePaths = append(includePaths, cfg.SysIncludePaths...)
	}

	ast, err := cc.Parse(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: path, Value: f},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse header %v: %w", path, err)
	}

	var decls []Declaration
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed.Position().Filename != path {
			continue
		}
		switch ed.Case {
		case cc.ExternalDeclarationFuncDef:
			if d, ok := convertFuncDef(ed.FunctionDefinition); ok {
				decls = append(decls, d)
			}
		case cc.ExternalDeclarationDecl:
			decls = append(decls, convertDecl(ed.Declaration)...)
		}
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Line < decls[j].Line })
	return decls, nil
}

func convertFuncDef(fd *cc.FunctionDefinition) (Declaration, bool) {
	spec := fd.DeclarationSpecifiers
	if spec.Case != cc.DeclarationSpecifiersTypeSpec {
		return Declaration{}, false
	}
	retType := lookupCType(spec.TypeSpecifier.Token.SrcStr())
	dd := fd.Declarator.DirectDeclarator
	if dd.Case != cc.DirectDeclaratorFuncParam {
		return Declaration{}, false
	}
	params, variadic := convertParams(dd.ParameterTypeList)
	return Declaration{
		Name: dd.DirectDeclarator.Token.SrcStr(), ReturnType: retType,
		Params: params, Variadic: variadic, Line: dd.Position().Line,
	}, true
}

func convertDecl(d *cc.Declaration) []Declaration {
	if d == nil || d.DeclarationSpecifiers == nil || d.InitDeclaratorList == nil {
		return nil
	}
	var retType types.Type
	if d.DeclarationSpecifiers.Case == cc.DeclarationSpecifiersTypeSpec {
		retType = lookupCType(d.DeclarationSpecifiers.TypeSpecifier.Token.SrcStr())
	}
	var out []Declaration
	for idl := d.InitDeclaratorList; idl != nil; idl = idl.InitDeclaratorList {
		decl := idl.InitDeclarator.Declarator
		if decl == nil || decl.DirectDeclarator == nil {
			continue
		}
		dd := decl.DirectDeclarator
		if dd.Case != cc.DirectDeclaratorFuncParam {
			continue
		}
		params, variadic := convertParams(dd.ParameterTypeList)
		out = append(out, Declaration{
			Name: dd.DirectDeclarator.Token.SrcStr(), ReturnType: retType,
			Params: params, Variadic: variadic, Line: dd.Position().Line,
		})
	}
	return out
}

func convertParams(list *cc.ParameterTypeList) ([]Param, bool) {
	if list == nil {
		return nil, false
	}
	variadic := list.Case == cc.ParameterTypeListDots
	var params []Param
	for pl := list.ParameterList; pl != nil; pl = pl.ParameterList {
		pd := pl.ParameterDeclaration
		if pd == nil || pd.Declarator == nil || pd.Declarator.DirectDeclarator == nil {
			continue
		}
		var typeName string
		if pd.DeclarationSpecifiers.Case == cc.DeclarationSpecifiersTypeQual {
			typeName = pd.DeclarationSpecifiers.DeclarationSpecifiers.TypeSpecifier.Token.SrcStr()
		} else {
			typeName = pd.DeclarationSpecifiers.TypeSpecifier.Token.SrcStr()
		}
		t := lookupCType(typeName)
		if pd.Declarator.Pointer != nil {
			t = types.Ptr(&t)
		}
		params = append(params, Param{Name: pd.Declarator.DirectDeclarator.Token.SrcStr(), Type: t})
	}
	return params, variadic
}

func lookupCType(name string) types.Type {
	if t, ok := cTypeTable[name]; ok {
		return t
	}
	return types.Ptr(nil)
}

// EmitHeader writes decls out as C prototypes, implementing the export
// half of spec section 4.2.8 (`@public`/`@extern` functions become
// callable from C). It mirrors the teacher's own `generateGoStubs`
// string-builder approach to code emission.
func EmitHeader(decls []Declaration, guard string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	for _, d := range decls {
		fmt.Fprintf(&b, "%s %s(", cReturnSpelling(d.ReturnType), d.Name)
		for i, p := range d.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", cParamSpelling(p.Type), p.Name)
		}
		if d.Variadic {
			b.WriteString(", ...")
		}
		if len(d.Params) == 0 {
			b.WriteString("void")
		}
		b.WriteString(");\n")
	}
	b.WriteString("\n#endif\n")
	return b.String()
}

func cReturnSpelling(t types.Type) string { return cParamSpelling(t) }

func cParamSpelling(t types.Type) string {
	u, _, _ := t.Unwrap()
	if u.IsPointerLike() {
		if u.Elem == nil {
			return "void*"
		}
		return cParamSpelling(*u.Elem) + "*"
	}
	switch u.Kind {
	case types.KindVoid:
		return "void"
	case types.KindBool:
		return "_Bool"
	case types.KindS8:
		return "int8_t"
	case types.KindU8:
		return "uint8_t"
	case types.KindS16:
		return "int16_t"
	case types.KindU16:
		return "uint16_t"
	case types.KindS32:
		return "int32_t"
	case types.KindU32:
		return "uint32_t"
	case types.KindS64, types.KindSSize:
		return "int64_t"
	case types.KindU64, types.KindUSize:
		return "uint64_t"
	case types.KindF32:
		return "float"
	case types.KindF64:
		return "double"
	case types.KindStr:
		return "const char*"
	default:
		return "void*"
	}
}
