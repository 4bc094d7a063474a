package cimport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thrushlang/thrushc/internal/types"
)

func TestEmitHeader_VoidParamlessFunction(t *testing.T) {
	decls := []Declaration{{Name: "init", ReturnType: types.Void()}}
	out := EmitHeader(decls, "GUARD_H")

	if !strings.Contains(out, "#ifndef GUARD_H") || !strings.Contains(out, "#define GUARD_H") {
		t.Fatalf("expected an include guard, got %q", out)
	}
	if !strings.Contains(out, "void init(void);") {
		t.Fatalf("expected a void-param prototype, got %q", out)
	}
}

func TestEmitHeader_ParamsAndVariadic(t *testing.T) {
	s32 := types.S32()
	decls := []Declaration{{
		Name:       "logf",
		ReturnType: types.S32(),
		Params:     []Param{{Name: "level", Type: s32}},
		Variadic:   true,
	}}
	out := EmitHeader(decls, "LOG_H")

	if !strings.Contains(out, "int32_t logf(int32_t level, ...);") {
		t.Fatalf("expected a variadic prototype, got %q", out)
	}
}

func TestEmitHeader_PointerParam(t *testing.T) {
	elem := types.S8()
	decls := []Declaration{{
		Name:       "puts",
		ReturnType: types.S32(),
		Params:     []Param{{Name: "s", Type: types.Ptr(&elem)}},
	}}
	out := EmitHeader(decls, "PUTS_H")

	if !strings.Contains(out, "int32_t puts(int8_t* s);") {
		t.Fatalf("expected a pointer-param prototype, got %q", out)
	}
}

func TestCParamSpelling_PrimitiveKinds(t *testing.T) {
	cases := []struct {
		in   types.Type
		want string
	}{
		{types.Void(), "void"},
		{types.Bool(), "_Bool"},
		{types.S8(), "int8_t"},
		{types.U8(), "uint8_t"},
		{types.S32(), "int32_t"},
		{types.U32(), "uint32_t"},
		{types.S64(), "int64_t"},
		{types.U64(), "uint64_t"},
		{types.F32(), "float"},
		{types.F64(), "double"},
		{types.Str(), "const char*"},
	}
	for _, c := range cases {
		if got := cParamSpelling(c.in); got != c.want {
			t.Errorf("cParamSpelling(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCParamSpelling_NilElemPointerIsVoidStar(t *testing.T) {
	if got := cParamSpelling(types.Ptr(nil)); got != "void*" {
		t.Fatalf("expected a nil-elem pointer to spell as void*, got %q", got)
	}
}

func TestLookupCType_UnknownNameFallsBackToVoidPointer(t *testing.T) {
	got := lookupCType("FILE")
	want := types.Ptr(nil)
	if got.Kind != want.Kind {
		t.Fatalf("expected an unknown C type name to fall back to a void pointer, got %s", got)
	}
}

func TestLookupCType_KnownPrimitives(t *testing.T) {
	cases := map[string]types.Type{
		"int":      types.S32(),
		"long":     types.S64(),
		"double":   types.F64(),
		"_Bool":    types.Bool(),
		"uint32_t": types.U32(),
	}
	for name, want := range cases {
		if got := lookupCType(name); got.Kind != want.Kind {
			t.Errorf("lookupCType(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestImport_ParsesFunctionPrototypes(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "greet.h")
	src := "int add(int a, int b);\nvoid greet(const char* name);\n"
	if err := os.WriteFile(header, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	decls, err := Import(header, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d: %#v", len(decls), decls)
	}

	byName := map[string]Declaration{}
	for _, d := range decls {
		byName[d.Name] = d
	}

	add, ok := byName["add"]
	if !ok {
		t.Fatal("expected an 'add' declaration")
	}
	if add.ReturnType.Kind != types.KindS32 || len(add.Params) != 2 {
		t.Fatalf("got add declaration %#v", add)
	}

	greet, ok := byName["greet"]
	if !ok {
		t.Fatal("expected a 'greet' declaration")
	}
	if greet.ReturnType.Kind != types.KindVoid || len(greet.Params) != 1 {
		t.Fatalf("got greet declaration %#v", greet)
	}
}

func TestImport_DeclarationsOrderedBySourceLine(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "ordered.h")
	src := "void second(void);\n\nvoid first_decl_is_actually_first(void);\n"
	if err := os.WriteFile(header, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	decls, err := Import(header, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Line > decls[1].Line {
		t.Fatalf("expected declarations sorted by source line, got %+v", decls)
	}
}

func TestImport_MissingFileReturnsError(t *testing.T) {
	if _, err := Import("/nonexistent/does-not-exist.h", nil); err == nil {
		t.Fatal("expected an error for a missing header file")
	}
}
