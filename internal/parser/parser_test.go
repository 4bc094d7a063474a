package parser

import (
	"testing"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/lexer"
	"github.com/thrushlang/thrushc/internal/types"
)

func parseSource(t *testing.T, src string) (Program, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	toks := lexer.Lex([]byte(src), sink)
	p := New(toks, sink)
	return p.Parse(), sink
}

func TestParse_SimpleFunction(t *testing.T) {
	prog, sink := parseSource(t, `fn add(a: s32, b: s32) s32 { return a + b; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(prog.Declarations) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Declarations))
	}
	fn, ok := prog.Declarations[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", prog.Declarations[0])
	}
	if fn.Name != "add" || len(fn.Parameters) != 2 {
		t.Fatalf("got name %q with %d parameters", fn.Name, len(fn.Parameters))
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Statements))
	}
	ret, ok := fn.Body.Statements[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body.Statements[0])
	}
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Operator != ast.OpAdd {
		t.Fatalf("expected a + binary op, got %#v", ret.Value)
	}
}

func TestParse_VoidFunctionHasImplicitVoidReturnType(t *testing.T) {
	prog, sink := parseSource(t, `fn nop() { pass; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	if fn.ReturnType.Kind != types.KindVoid {
		t.Fatalf("expected implicit void return type, got %s", fn.ReturnType)
	}
}

func TestParse_StructDecl(t *testing.T) {
	prog, sink := parseSource(t, `struct Point { x: s32, y: s32 }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	decl, ok := prog.Declarations[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("expected *ast.StructDecl, got %T", prog.Declarations[0])
	}
	if decl.Name != "Point" || len(decl.Fields) != 2 {
		t.Fatalf("got name %q with %d fields", decl.Name, len(decl.Fields))
	}
}

func TestParse_IfElseChain(t *testing.T) {
	src := `fn classify(x: s32) s32 {
		if x < 0 {
			return 0 - 1;
		} elif x == 0 {
			return 0;
		} else {
			return 1;
		}
	}`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	ifStmt, ok := fn.Body.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Statements[0])
	}
	if len(ifStmt.Elifs) != 1 {
		t.Fatalf("expected 1 elif arm, got %d", len(ifStmt.Elifs))
	}
	if ifStmt.Else == nil {
		t.Fatal("expected an else arm")
	}
}

func TestParse_WhileLoop(t *testing.T) {
	src := `fn countdown(n: s32) {
		while n > 0 {
			n = n - 1;
		}
	}`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	w, ok := fn.Body.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", fn.Body.Statements[0])
	}
	if len(w.Body.Statements) != 1 {
		t.Fatalf("expected 1 statement in while body, got %d", len(w.Body.Statements))
	}
}

func TestParse_ForLoop(t *testing.T) {
	src := `fn sum(n: s32) s32 {
		total: s32 = 0;
		for (i: s32 = 0; i < n; i++) {
			total = total + i;
		}
		return total;
	}`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	forStmt, ok := fn.Body.Statements[1].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", fn.Body.Statements[1])
	}
	if forStmt.Init == nil || forStmt.Init.Name != "i" {
		t.Fatalf("expected an init local named i, got %#v", forStmt.Init)
	}
	if forStmt.UnaryActionIsPre {
		// the for-loop's UnaryActionIsPre flag only looks at whether the
		// action *starts* with ++/--; the postfix i++ starts with the
		// identifier, so the flag stays false.
		t.Fatalf("expected UnaryActionIsPre to be false for the postfix i++ action")
	}
}

func TestParse_BreakOutsideLoopReportsError(t *testing.T) {
	_, sink := parseSource(t, `fn f() { break; }`)
	if !hasCode(sink, "E0250") {
		t.Fatalf("expected E0250 for break outside a loop, got %v", sink.All())
	}
}

func TestParse_ReturnOutsideFunctionReportsError(t *testing.T) {
	// A bare return can only appear inside a function body; parsing one
	// at the top level is a syntax error before the return-context check
	// is ever reached, so this exercises parseTopLevelDeclaration's
	// recovery path instead.
	_, sink := parseSource(t, `return 1;`)
	if !sink.HasErrors() {
		t.Fatal("expected an error for a top-level return statement")
	}
}

func TestParse_ForwardReferenceRegistersCallBeforeDefinition(t *testing.T) {
	src := `fn caller() s32 { return callee(); }
	fn callee() s32 { return 1; }`
	_, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("expected the forward pass to register callee before caller is parsed, got %v", sink.All())
	}
}

func TestParse_UndeclaredIdentifierReportsError(t *testing.T) {
	_, sink := parseSource(t, `fn f() s32 { return nonexistent; }`)
	if !hasCode(sink, "E0264") {
		t.Fatalf("expected E0264 for an undeclared identifier, got %v", sink.All())
	}
}

func TestParse_ConstructorLiteral(t *testing.T) {
	src := `struct Point { x: s32, y: s32 }
	fn origin() Point { return new Point{ x: 0, y: 0 }; }`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[1].(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.Return)
	ctor, ok := ret.Value.(*ast.Constructor)
	if !ok {
		t.Fatalf("expected *ast.Constructor, got %T", ret.Value)
	}
	if ctor.StructName != "Point" || len(ctor.Fields) != 2 {
		t.Fatalf("got struct %q with %d fields", ctor.StructName, len(ctor.Fields))
	}
}

func TestParse_PropertyChainRecordsFieldNames(t *testing.T) {
	src := `struct Point { x: s32, y: s32 }
	fn getX(p: Point) s32 { return p.x; }`
	prog, sink := parseSource(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[1].(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.Return)
	prop, ok := ret.Value.(*ast.Property)
	if !ok {
		t.Fatalf("expected *ast.Property, got %T", ret.Value)
	}
	if len(prop.Names) != 1 || prop.Names[0] != "x" {
		t.Fatalf("expected property chain [x], got %v", prop.Names)
	}
}

func TestParse_ConstDecl(t *testing.T) {
	prog, sink := parseSource(t, `const Max: s32 = 100;`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	decl, ok := prog.Declarations[0].(*ast.ConstDecl)
	if !ok {
		t.Fatalf("expected *ast.ConstDecl, got %T", prog.Declarations[0])
	}
	if decl.Name != "Max" {
		t.Fatalf("got name %q", decl.Name)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	prog, sink := parseSource(t, `fn f() s32 { return 1 + 2 * 3; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinaryOp)
	if !ok || top.Operator != ast.OpAdd {
		t.Fatalf("expected top-level '+', got %#v", ret.Value)
	}
	if _, ok := top.Left.(*ast.Integer); !ok {
		t.Fatalf("expected left operand to be the literal 1, got %T", top.Left)
	}
	rhs, ok := top.Right.(*ast.BinaryOp)
	if !ok || rhs.Operator != ast.OpMul {
		t.Fatalf("expected right operand to be '2 * 3', got %#v", top.Right)
	}
}

func hasCode(sink *diagnostics.Sink, code string) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestParse_ResolvedStructsAccessor(t *testing.T) {
	sink := diagnostics.NewSink()
	toks := lexer.Lex([]byte(`struct Point { x: s32, y: s32 }`), sink)
	p := New(toks, sink)
	p.Parse()

	structs := p.ResolvedStructs()
	if _, ok := structs["Point"]; !ok {
		t.Fatalf("expected Point to be resolved, got %v", structs)
	}
}

func TestParse_AttributesOnFunction(t *testing.T) {
	prog, sink := parseSource(t, `fn helper() s32 @inline { return 1; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	if !fn.Attributes.Has(ast.AttrInlineHint) {
		t.Fatalf("expected @inline to set AttrInlineHint, got %v", fn.Attributes)
	}
}

func TestParse_IntrinsicStripsQuotesFromExternalName(t *testing.T) {
	prog, sink := parseSource(t, `intrinsic("puts") println(s: ptr) s32;`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	intr, ok := prog.Declarations[0].(*ast.Intrinsic)
	if !ok {
		t.Fatalf("expected *ast.Intrinsic, got %T", prog.Declarations[0])
	}
	if intr.ExternalName != "puts" {
		t.Fatalf("expected external name %q without quotes, got %q", "puts", intr.ExternalName)
	}
	if intr.Name != "println" {
		t.Fatalf("expected source name %q, got %q", "println", intr.Name)
	}
}

func TestParse_AssemblerFunctionCapturesAssemblyAndConstraints(t *testing.T) {
	prog, sink := parseSource(t, `asm fn syscall3(a: s64) s64 { "syscall", "={rax},{rax}" }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn, ok := prog.Declarations[0].(*ast.AssemblerFunction)
	if !ok {
		t.Fatalf("expected *ast.AssemblerFunction, got %T", prog.Declarations[0])
	}
	if fn.Assembly != "syscall" {
		t.Fatalf("expected assembly text %q without quotes, got %q", "syscall", fn.Assembly)
	}
	if fn.Constraints != "={rax},{rax}" {
		t.Fatalf("expected constraints without quotes, got %q", fn.Constraints)
	}
}

func TestParse_AsmValueExpressionCapturesAssemblyWithoutQuotes(t *testing.T) {
	prog, sink := parseSource(t, `fn f() s32 { return asm{"nop", ""}; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.Return)
	asmVal, ok := ret.Value.(*ast.AsmValue)
	if !ok {
		t.Fatalf("expected *ast.AsmValue, got %T", ret.Value)
	}
	if asmVal.Assembly != "nop" {
		t.Fatalf("expected assembly text %q without quotes, got %q", "nop", asmVal.Assembly)
	}
}

func TestParse_ExternFunctionHasNoBody(t *testing.T) {
	prog, sink := parseSource(t, `fn puts(s: str) s32 @extern("puts");`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := prog.Declarations[0].(*ast.Function)
	if fn.Body != nil {
		t.Fatal("expected an @extern declaration to have a nil body")
	}
}
