package ir

import (
	"strings"
	"testing"
)

func TestBuilder_SimpleFunction(t *testing.T) {
	m := NewModule("test", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("add", Type{Kind: TypeI32}, []Type{{Kind: TypeI32}, {Kind: TypeI32}}, []string{"a", "b"})
	b := NewBuilder()
	entry := fn.NewBlock("entry")
	b.PositionAtEnd(entry)

	sum := b.CreateAdd(fn.Param("a"), fn.Param("b"))
	b.CreateRet(sum)

	if !entry.IsTerminated() {
		t.Fatal("expected entry block to be terminated after CreateRet")
	}
	if len(entry.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(entry.Instructions))
	}
}

func TestBuilder_CondBrTerminates(t *testing.T) {
	m := NewModule("test", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("f", Type{Kind: TypeVoid}, nil, nil)
	b := NewBuilder()
	entry := fn.NewBlock("")
	thenBB := fn.NewBlock("")
	elseBB := fn.NewBlock("")

	b.PositionAtEnd(entry)
	cond := b.CreateICmp(ICmpEQ, ConstInt{Typ: Type{Kind: TypeI32}, Val: 1}, ConstInt{Typ: Type{Kind: TypeI32}, Val: 1})
	b.CreateCondBr(cond, thenBB, elseBB)

	if !entry.IsTerminated() {
		t.Fatal("expected entry to be terminated by CreateCondBr")
	}
	if thenBB.IsTerminated() {
		t.Fatal("thenBB should not be terminated yet")
	}
}

func TestPrint_RendersFunctionSignature(t *testing.T) {
	m := NewModule("mod", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("main", Type{Kind: TypeI32}, nil, nil)
	b := NewBuilder()
	bb := fn.NewBlock("entry")
	b.PositionAtEnd(bb)
	b.CreateRet(ConstInt{Typ: Type{Kind: TypeI32}, Val: 0})

	out := Print(m)
	if !strings.Contains(out, "define i32 @main()") {
		t.Errorf("expected printed IR to declare main, got:\n%s", out)
	}
	if !strings.Contains(out, "ret i32 0") {
		t.Errorf("expected printed IR to contain ret i32 0, got:\n%s", out)
	}
}

func TestLinkage_PrivateRendersAsLinkerPrivate(t *testing.T) {
	if got := LinkagePrivate.String(); got != "linker_private" {
		t.Fatalf("expected LinkagePrivate to render %q, got %q", "linker_private", got)
	}
}

func TestPrint_PrivateFunctionCarriesLinkageKeyword(t *testing.T) {
	m := NewModule("mod", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("__fn_ab12cd34_helper", Type{Kind: TypeI32}, nil, nil)
	fn.Linkage = LinkagePrivate
	b := NewBuilder()
	bb := fn.NewBlock("entry")
	b.PositionAtEnd(bb)
	b.CreateRet(ConstInt{Typ: Type{Kind: TypeI32}, Val: 0})

	out := Print(m)
	if !strings.Contains(out, "linker_private") {
		t.Errorf("expected printed IR to carry the linker_private keyword, got:\n%s", out)
	}
}

func TestPrint_GlobalRendersThreadLocalAndVolatileAndUnnamedAddr(t *testing.T) {
	m := NewModule("mod", "x86_64-unknown-linux-gnu", "")
	g := m.NewGlobal("counter", Type{Kind: TypeI64}, ConstInt{Typ: Type{Kind: TypeI64}, Val: 0}, false)
	g.ThreadLocal = true
	g.Volatile = true
	g.UnnamedAddr = true

	out := Print(m)
	for _, want := range []string{"thread_local", "volatile", "unnamed_addr"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected printed global to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFunction_AssemblyBodyIsNotADeclaration(t *testing.T) {
	m := NewModule("mod", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("syscall3", Type{Kind: TypeI64}, nil, nil)
	fn.Assembly = "syscall"
	fn.Constraints = "={rax}"

	if fn.IsDeclaration() {
		t.Fatal("expected a function carrying an assembly body to not be a bare declaration")
	}
	out := Print(m)
	if !strings.Contains(out, `asm "syscall", "={rax}"`) {
		t.Errorf("expected printed IR to render the asm clause, got:\n%s", out)
	}
}

func TestBuilder_CreateInlineAsmEmitsInstruction(t *testing.T) {
	m := NewModule("test", "x86_64-unknown-linux-gnu", "")
	fn := m.NewFunction("f", Type{Kind: TypeI64}, nil, nil)
	b := NewBuilder()
	entry := fn.NewBlock("entry")
	b.PositionAtEnd(entry)

	val := b.CreateInlineAsm(Type{Kind: TypeI64}, "rdtsc", "={rax}", nil)
	b.CreateRet(val)

	asmInstr, ok := entry.Instructions[0].(InlineAsm)
	if !ok {
		t.Fatalf("expected first instruction to be InlineAsm, got %T", entry.Instructions[0])
	}
	if asmInstr.Assembly != "rdtsc" || asmInstr.Constraints != "={rax}" {
		t.Fatalf("expected asm/constraints to carry through, got %+v", asmInstr)
	}
}

func TestPrint_DeclarationHasNoBody(t *testing.T) {
	m := NewModule("mod", "x86_64-unknown-linux-gnu", "")
	m.NewFunction("puts", Type{Kind: TypeI32}, []Type{Pointer()}, []string{"s"})

	out := Print(m)
	if !strings.Contains(out, "declare i32 @puts(ptr %s)") {
		t.Errorf("expected declare line for puts, got:\n%s", out)
	}
	if strings.Contains(out, "puts") && strings.Contains(out, "{") {
		t.Error("declaration should not emit a body")
	}
}
