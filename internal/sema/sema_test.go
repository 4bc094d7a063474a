package sema

import (
	"testing"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/types"
)

func block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{Statements: stmts}
}

func intLit(v int64) *ast.Integer {
	return ast.NewInteger(span.Zero, types.S32(), v, false)
}

func ret(e ast.Expr) *ast.Return {
	return &ast.Return{Value: e}
}

func newFn(name string, ret types.Type, body *ast.Block) *ast.Function {
	return &ast.Function{Name: name, ReturnType: ret, Body: body}
}

func TestAnalyze_MissingReturnPathReportsE0400(t *testing.T) {
	sink := diagnostics.NewSink()
	fn := newFn("f", types.S32(), block(&ast.Pass{}))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0400") {
		t.Fatalf("expected E0400, got %v", sink.All())
	}
}

func TestAnalyze_EveryPathReturnsIsClean(t *testing.T) {
	sink := diagnostics.NewSink()
	fn := newFn("f", types.S32(), block(ret(intLit(1))))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if sink.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", sink.All())
	}
}

func TestAnalyze_IfWithElseOnEveryPathIsClean(t *testing.T) {
	sink := diagnostics.NewSink()
	cond := ast.NewBoolean(span.Zero, true)
	ifStmt := &ast.If{
		Condition: cond,
		Then:      block(ret(intLit(1))),
		Else:      block(ret(intLit(0))),
	}
	fn := newFn("f", types.S32(), block(ifStmt))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if sink.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", sink.All())
	}
}

func TestAnalyze_IfWithoutElseMissesAPath(t *testing.T) {
	sink := diagnostics.NewSink()
	cond := ast.NewBoolean(span.Zero, true)
	ifStmt := &ast.If{
		Condition: cond,
		Then:      block(ret(intLit(1))),
	}
	fn := newFn("f", types.S32(), block(ifStmt))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0400") {
		t.Fatalf("expected E0400 for a dangling path, got %v", sink.All())
	}
}

func TestAnalyze_NonBoolConditionReportsE0403(t *testing.T) {
	sink := diagnostics.NewSink()
	ifStmt := &ast.If{
		Condition: intLit(1),
		Then:      block(ret(intLit(1))),
		Else:      block(ret(intLit(0))),
	}
	fn := newFn("f", types.S32(), block(ifStmt))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0403") {
		t.Fatalf("expected E0403 for a non-bool condition, got %v", sink.All())
	}
}

func TestAnalyze_ReturnTypeMismatchReportsE0402(t *testing.T) {
	sink := diagnostics.NewSink()
	fn := newFn("f", types.Bool(), block(ret(intLit(1))))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0402") {
		t.Fatalf("expected E0402 for a return type mismatch, got %v", sink.All())
	}
}

func TestAnalyze_LocalInitMismatchReportsE0401(t *testing.T) {
	sink := diagnostics.NewSink()
	local := &ast.Local{Name: "x", Type: types.Bool(), Value: intLit(1)}
	fn := newFn("f", types.Void(), block(local, &ast.Return{}))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0401") {
		t.Fatalf("expected E0401 for a local init mismatch, got %v", sink.All())
	}
}

func TestAnalyze_UndeclaredCallReportsE0421(t *testing.T) {
	sink := diagnostics.NewSink()
	call := &ast.Call{Callee: "missing"}
	fn := newFn("f", types.Void(), block(&ast.ExprStmt{Expr: call}, &ast.Return{}))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0421") {
		t.Fatalf("expected E0421 for a call to an undeclared function, got %v", sink.All())
	}
}

func TestAnalyze_CallArityMismatchReportsE0420(t *testing.T) {
	sink := diagnostics.NewSink()
	callee := newFn("callee", types.Void(), block(&ast.Return{}))
	callee.Parameters = []*ast.FunctionParameter{{Name: "a", Type: types.S32()}}
	call := &ast.Call{Callee: "callee", Args: nil}
	caller := newFn("caller", types.Void(), block(&ast.ExprStmt{Expr: call}, &ast.Return{}))

	New(sink, nil, nil).Analyze([]ast.Node{callee, caller})

	if !hasCode(sink, "E0420") {
		t.Fatalf("expected E0420 for a call arity mismatch, got %v", sink.All())
	}
}

func TestAnalyze_ForwardReferencedCallResolves(t *testing.T) {
	sink := diagnostics.NewSink()
	call := &ast.Call{Callee: "later"}
	caller := newFn("caller", types.Void(), block(&ast.ExprStmt{Expr: call}, &ast.Return{}))
	later := newFn("later", types.Void(), block(&ast.Return{}))

	// Declared after its only caller; the two-pass signature collection
	// must still resolve it.
	New(sink, nil, nil).Analyze([]ast.Node{caller, later})

	if sink.HasErrors() {
		t.Fatalf("expected forward reference to resolve cleanly, got %v", sink.All())
	}
}

func TestAnalyze_PropertyResolvesFieldIndex(t *testing.T) {
	sink := diagnostics.NewSink()
	pointType := types.Struct("Point", []types.StructField{
		{Name: "x", Type: types.S32()},
		{Name: "y", Type: types.S32()},
	}, types.StructModificator{})
	structs := map[string]types.Type{"Point": pointType}

	param := &ast.FunctionParameter{Name: "p", Type: pointType}
	prop := &ast.Property{
		Source: ast.NewReference(span.Zero, "p", ast.ReferenceMetadata{}),
		Names:  []string{"y"},
	}
	fn := newFn("f", types.S32(), block(ret(prop)))
	fn.Parameters = []*ast.FunctionParameter{param}

	New(sink, nil, structs).Analyze([]ast.Node{fn})

	if sink.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", sink.All())
	}
	if len(prop.Indexes) != 1 || prop.Indexes[0].Index != 1 {
		t.Fatalf("expected property to resolve to field index 1, got %+v", prop.Indexes)
	}
}

func TestAnalyze_UnknownFieldReportsE0410(t *testing.T) {
	sink := diagnostics.NewSink()
	pointType := types.Struct("Point", []types.StructField{
		{Name: "x", Type: types.S32()},
	}, types.StructModificator{})
	structs := map[string]types.Type{"Point": pointType}

	param := &ast.FunctionParameter{Name: "p", Type: pointType}
	prop := &ast.Property{
		Source: ast.NewReference(span.Zero, "p", ast.ReferenceMetadata{}),
		Names:  []string{"z"},
	}
	fn := newFn("f", types.S32(), block(ret(prop)))
	fn.Parameters = []*ast.FunctionParameter{param}

	New(sink, nil, structs).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0410") {
		t.Fatalf("expected E0410 for an unknown field, got %v", sink.All())
	}
}

func TestAnalyze_UnconditionalLoopWithNoBreakSatisfiesReturn(t *testing.T) {
	sink := diagnostics.NewSink()
	loop := &ast.Loop{Body: block(&ast.Pass{})}
	fn := newFn("f", types.S32(), block(loop))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if sink.HasErrors() {
		t.Fatalf("expected an infinite loop with no break to satisfy return-on-every-path, got %v", sink.All())
	}
}

func TestAnalyze_LoopWithBreakMissesReturnPath(t *testing.T) {
	sink := diagnostics.NewSink()
	loop := &ast.Loop{Body: block(&ast.Break{})}
	fn := newFn("f", types.S32(), block(loop))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0400") {
		t.Fatalf("expected E0400 since a break lets execution fall through, got %v", sink.All())
	}
}

func TestAnalyze_BinaryOperandMismatchReportsE0430(t *testing.T) {
	sink := diagnostics.NewSink()
	cmp := &ast.BinaryOp{Operator: ast.OpLt, Left: intLit(1), Right: ast.NewBoolean(span.Zero, true)}
	fn := newFn("f", types.Void(), block(&ast.ExprStmt{Expr: cmp}, &ast.Return{}))
	New(sink, nil, nil).Analyze([]ast.Node{fn})

	if !hasCode(sink, "E0430") {
		t.Fatalf("expected E0430 for mismatched comparison operands, got %v", sink.All())
	}
}

func TestAnalyze_DuplicateStructFieldReportsE0404(t *testing.T) {
	sink := diagnostics.NewSink()
	decl := &ast.StructDecl{
		Name: "Point",
		Fields: []types.StructField{
			{Name: "x", Type: types.S32()},
			{Name: "x", Type: types.S32()},
		},
	}
	New(sink, nil, nil).Analyze([]ast.Node{decl})

	if !hasCode(sink, "E0404") {
		t.Fatalf("expected E0404 for a duplicate field name, got %v", sink.All())
	}
}

func TestAnalyze_DistinctStructFieldsAreClean(t *testing.T) {
	sink := diagnostics.NewSink()
	decl := &ast.StructDecl{
		Name: "Point",
		Fields: []types.StructField{
			{Name: "x", Type: types.S32()},
			{Name: "y", Type: types.S32()},
		},
	}
	New(sink, nil, nil).Analyze([]ast.Node{decl})

	if sink.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", sink.All())
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
