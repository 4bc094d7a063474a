// Package codegen lowers a type-checked program into internal/ir, per spec
// section 4.4: type lowering, expression and statement codegen, function
// two-phase declare/define, and attribute/module-metadata emission. It
// consumes internal/target for the triple/data-layout/calling-convention
// that stamp the emitted module, and internal/ir as its sole backend.
package codegen

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/ir"
	"github.com/thrushlang/thrushc/internal/parser"
	"github.com/thrushlang/thrushc/internal/target"
	"github.com/thrushlang/thrushc/internal/types"
)

// obfuscationAlphabet is the ascii range spec section 4.4.4's
// `__fn_<random>_<ascii>` naming draws its random component from.
const obfuscationAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generator walks a parsed, analyzed Program and emits one ir.Module.
type Generator struct {
	sink    *diagnostics.Sink
	target  target.Target
	structs map[string]types.Type
	mod     *ir.Module
	b       *ir.Builder

	fn      *ir.Function
	locals  map[string]anchor
	strings int

	// globals maps every Static/ConstDecl name to its lowered type, letting
	// genExpr's Reference case (expressions.go) tell a module-level
	// allocated slot apart from a local or a function name.
	globals map[string]ir.Type

	// funcSymbols maps a source-level function name to the backend symbol
	// name it was registered under (spec section 4.4.4's "register in the
	// codegen symbol table"): a private function's backend name is
	// obfuscated, so call sites must resolve through this table rather
	// than assume the two names coincide.
	funcSymbols map[string]string

	obfuscation *rand.Rand

	breakTarget    *ir.BasicBlock
	continueTarget *ir.BasicBlock
}

// anchor pairs an expression's loaded value with the address it was
// loaded from, when the expression designates an addressable location
// (a local, a property, an index). Assignment and `&expr` lowering both
// need the address; arithmetic only needs the loaded Value, so every
// expression-lowering function returns one of these instead of a bare
// ir.Value, and callers pick whichever half they need.
type anchor struct {
	Value ir.Value
	Addr  ir.Value // nil when the expression has no addressable location
}

// New returns a Generator targeting tgt, with structs providing every
// resolved struct layout the parser collected (parser.Parser.ResolvedStructs).
// The obfuscation suffix generator is seeded rather than time- or
// crypto-sourced, so that re-running codegen over the same program emits
// byte-identical private-symbol names (spec section 8's `-O0` no-op
// invariant depends on this).
func New(sink *diagnostics.Sink, tgt target.Target, structs map[string]types.Type) *Generator {
	return &Generator{
		sink: sink, target: tgt, structs: structs,
		locals:      make(map[string]anchor),
		globals:     make(map[string]ir.Type),
		funcSymbols: make(map[string]string),
		obfuscation: rand.New(rand.NewSource(1)),
	}
}

// Generate lowers prog into a fresh module named name, built for goos.
func (g *Generator) Generate(name, goos string, prog parser.Program) *ir.Module {
	g.mod = ir.NewModule(name, g.target.Triple(goos), g.target.DataLayout())
	g.b = ir.NewBuilder()

	for _, decl := range prog.Declarations {
		switch n := decl.(type) {
		case *ast.StructDecl:
			g.declareStruct(n)
		}
	}
	for _, decl := range prog.Declarations {
		switch n := decl.(type) {
		case *ast.Function:
			g.declareFunction(n)
		case *ast.AssemblerFunction:
			g.declareAssemblerFunction(n)
		case *ast.Intrinsic:
			g.declareIntrinsic(n)
		case *ast.Static:
			g.genStatic(n)
		case *ast.ConstDecl:
			g.genConst(n)
		}
	}
	for _, decl := range prog.Declarations {
		if fn, ok := decl.(*ast.Function); ok && fn.Body != nil {
			g.genFunctionBody(fn)
		}
	}
	return g.mod
}

func (g *Generator) declareStruct(n *ast.StructDecl) {
	fields := make([]ir.Type, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = g.lowerType(f.Type)
	}
	g.mod.StructDefs[n.Name] = ir.StructOf(fields...)
}

// lowerType implements spec section 4.4's type-lowering table, converting
// internal/types.Type into the IR's own representation.
func (g *Generator) lowerType(t types.Type) ir.Type {
	u, _, _ := t.Unwrap()
	switch u.Kind {
	case types.KindS8, types.KindU8:
		return ir.Type{Kind: ir.TypeI8}
	case types.KindS16, types.KindU16:
		return ir.Type{Kind: ir.TypeI16}
	case types.KindS32, types.KindU32:
		return ir.Type{Kind: ir.TypeI32}
	case types.KindS64, types.KindU64, types.KindSSize, types.KindUSize:
		return ir.Type{Kind: ir.TypeI64}
	case types.KindU128:
		return ir.Type{Kind: ir.TypeI128}
	case types.KindF32:
		return ir.Type{Kind: ir.TypeF32}
	case types.KindF64:
		return ir.Type{Kind: ir.TypeF64}
	case types.KindF128, types.KindFX8680, types.KindFPPC128:
		return ir.Type{Kind: ir.TypeF128}
	case types.KindBool:
		return ir.Type{Kind: ir.TypeI1}
	case types.KindChar:
		return ir.Type{Kind: ir.TypeI8}
	case types.KindStr:
		return ir.Pointer()
	case types.KindVoid:
		return ir.Type{Kind: ir.TypeVoid}
	case types.KindPtr, types.KindAddr:
		return ir.Pointer()
	case types.KindFixedArray:
		return ir.ArrayOf(g.lowerType(*u.Elem), u.Length)
	case types.KindArray:
		// Dynamically sized arrays are runtime-represented as
		// { ptr, i64 } (pointer plus element count).
		return ir.StructOf(ir.Pointer(), ir.Type{Kind: ir.TypeI64})
	case types.KindStruct:
		if def, ok := g.mod.StructDefs[u.Name]; ok {
			return def
		}
		fields := make([]ir.Type, len(u.Fields))
		for i, f := range u.Fields {
			fields[i] = g.lowerType(f.Type)
		}
		return ir.StructOf(fields...)
	case types.KindFn:
		params := make([]ir.Type, len(u.Params))
		for i, p := range u.Params {
			params[i] = g.lowerType(p)
		}
		return ir.FuncOf(g.lowerType(*u.Ret), params...)
	default:
		return ir.Type{Kind: ir.TypeVoid}
	}
}

func lowerConvention(c target.CallingConvention) string {
	switch c {
	case target.ConventionFast:
		return "fastcc"
	case target.ConventionCold:
		return "coldcc"
	default:
		return ""
	}
}

func (g *Generator) convention(attrs ast.AttributeList) string {
	if a, ok := attrs.Find(ast.AttrConvention); ok {
		switch a.Payload {
		case "fast":
			return "fastcc"
		case "cold":
			return "coldcc"
		}
	}
	return lowerConvention(g.target.DefaultCallingConvention())
}

func (g *Generator) lowerAttributes(attrs ast.AttributeList) []ir.Attribute {
	var out []ir.Attribute
	add := func(kind ast.AttributeKind, irAttr ir.Attribute) {
		if attrs.Has(kind) {
			out = append(out, irAttr)
		}
	}
	add(ast.AttrAlwaysInline, ir.AttrAlwaysInline)
	add(ast.AttrInlineHint, ir.AttrInlineHint)
	add(ast.AttrNoInline, ir.AttrNoInline)
	add(ast.AttrMinSize, ir.AttrMinSize)
	add(ast.AttrHot, ir.AttrHot)
	add(ast.AttrNoUnwind, ir.AttrNoUnwind)
	add(ast.AttrSafeStack, ir.AttrSafeStack)
	add(ast.AttrStrongStack, ir.AttrSSPStrong)
	add(ast.AttrWeakStack, ir.AttrSSPWeak)
	add(ast.AttrOptFuzzing, ir.AttrNoFuzzing)
	return out
}

// obfuscatedSuffix draws spec section 4.4.4's `<random>` component of a
// private function's `__fn_<random>_<ascii>` backend name.
func (g *Generator) obfuscatedSuffix() string {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = obfuscationAlphabet[g.obfuscation.Intn(len(obfuscationAlphabet))]
	}
	return string(buf)
}

// functionSymbol implements spec section 4.4.4's three-way backend-name
// rule: `@extern("X")` keeps exactly X; `@public` keeps the source ASCII
// name; otherwise the name is obfuscated and given linker-private linkage
// so that same-named private symbols across units never collide.
func (g *Generator) functionSymbol(name string, attrs ast.AttributeList) (string, ir.Linkage) {
	if a, ok := attrs.Find(ast.AttrExtern); ok {
		return a.Payload, ir.LinkageExternal
	}
	if attrs.Has(ast.AttrPublic) {
		return name, ir.LinkageExternal
	}
	return fmt.Sprintf("__fn_%s_%s", g.obfuscatedSuffix(), name), ir.LinkagePrivate
}

func (g *Generator) declareFunction(n *ast.Function) {
	paramTypes := make([]ir.Type, len(n.Parameters))
	paramNames := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		paramTypes[i] = g.lowerType(p.Type)
		paramNames[i] = p.Name
	}

	name := n.Name
	retType := g.lowerType(n.ReturnType)
	linkage := ir.LinkageExternal
	convention := g.convention(n.Attributes)

	if n.IsEntry {
		// build_entrypoint (spec section 4.2.5): `fn main` pins the C
		// entry convention and an i32 return regardless of what was
		// declared, and is never obfuscated or renamed.
		retType = ir.Type{Kind: ir.TypeI32}
		convention = lowerConvention(target.ConventionC)
	} else {
		name, linkage = g.functionSymbol(n.Name, n.Attributes)
	}
	g.funcSymbols[n.Name] = name

	fn := g.mod.NewFunction(name, retType, paramTypes, paramNames)
	fn.Attributes = g.lowerAttributes(n.Attributes)
	fn.Convention = convention
	fn.Linkage = linkage
	if n.Body == nil {
		fn.Linkage = ir.LinkageExternal
	}
}

func (g *Generator) declareAssemblerFunction(n *ast.AssemblerFunction) {
	paramTypes := make([]ir.Type, len(n.Parameters))
	paramNames := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		paramTypes[i] = g.lowerType(p.Type)
		paramNames[i] = p.Name
	}
	g.funcSymbols[n.Name] = n.Name
	fn := g.mod.NewFunction(n.Name, g.lowerType(n.ReturnType), paramTypes, paramNames)
	fn.Assembly = n.Assembly
	fn.Constraints = n.Constraints
}

func (g *Generator) declareIntrinsic(n *ast.Intrinsic) {
	paramTypes := make([]ir.Type, len(n.Parameters))
	paramNames := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		paramTypes[i] = g.lowerType(p.Type)
		paramNames[i] = p.Name
	}
	g.funcSymbols[n.Name] = n.ExternalName
	fn := g.mod.NewFunction(n.ExternalName, g.lowerType(n.ReturnType), paramTypes, paramNames)
	fn.Linkage = ir.LinkageExternal
}

// globalLinkage implements spec section 4.4.3's static/const linkage rule:
// internal by default, external when the declaration carries @public.
func globalLinkage(attrs ast.AttributeList) ir.Linkage {
	if attrs.Has(ast.AttrPublic) {
		return ir.LinkageExternal
	}
	return ir.LinkageInternal
}

func (g *Generator) genStatic(n *ast.Static) {
	t := g.lowerType(n.Type)
	var init ir.Value
	if n.Value != nil {
		init = g.constValue(n.Value)
	}
	glob := g.mod.NewGlobal(n.Name, t, init, false)
	glob.Linkage = globalLinkage(n.Attributes)
	glob.ThreadLocal = n.Metadata.ThreadLocal
	glob.Volatile = n.Metadata.IsVolatile
	glob.UnnamedAddr = true
	g.globals[n.Name] = t
}

func (g *Generator) genConst(n *ast.ConstDecl) {
	t := g.lowerType(n.Type)
	glob := g.mod.NewGlobal(n.Name, t, g.constValue(n.Value), true)
	glob.Linkage = globalLinkage(n.Attributes)
	glob.ThreadLocal = n.Metadata.ThreadLocal
	glob.UnnamedAddr = true
	g.globals[n.Name] = t
}

// constValue lowers a compile-time-constant initializer expression; codegen
// only reaches this for Static/ConstDecl initializers, which the type
// checker restricts to literal forms.
func (g *Generator) constValue(e ast.Expr) ir.Value {
	switch n := e.(type) {
	case *ast.Integer:
		return ir.ConstInt{Typ: g.lowerType(e.Type()), Val: n.Value}
	case *ast.Float:
		return ir.ConstFloat{Typ: g.lowerType(e.Type()), Val: n.Value}
	case *ast.Boolean:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI1}, Val: v}
	case *ast.NullPtr:
		return ir.ConstNull{Typ: ir.Pointer()}
	default:
		g.sink.FrontendBugf(e.Span(), "internal/codegen/codegen.go", 0, "unsupported constant initializer %T", e)
		return ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}}
	}
}

func (g *Generator) genFunctionBody(decl *ast.Function) {
	backendName, ok := g.funcSymbols[decl.Name]
	if !ok {
		return
	}
	fn, ok := g.mod.FindFunction(backendName)
	if !ok {
		return
	}
	g.fn = fn
	g.locals = make(map[string]anchor)
	entry := fn.NewBlock("entry")
	g.b.PositionAtEnd(entry)

	for i, p := range decl.Parameters {
		addr := g.b.CreateAlloca(fn.ParamTypes[i])
		g.b.CreateStore(fn.Param(p.Name), addr)
		g.locals[p.Name] = anchor{Addr: addr}
	}

	g.genBlock(decl.Body)

	if !g.b.Current().IsTerminated() {
		if decl.ReturnType.Kind == types.KindVoid {
			g.b.CreateRetVoid()
		} else {
			g.b.CreateUnreachable()
		}
	}
}

func (g *Generator) genBlock(b *ast.Block) {
	for _, stmt := range b.Statements {
		if g.b.Current().IsTerminated() {
			return
		}
		g.genStmt(stmt)
	}
}

func (g *Generator) genStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.Local:
		t := g.lowerType(s.Type)
		addr := g.b.CreateAlloca(t)
		g.locals[s.Name] = anchor{Addr: addr}
		if s.Value != nil {
			val := g.genExpr(s.Value).Value
			g.b.CreateStore(val, addr)
		}
	case *ast.Block:
		g.genBlock(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.Loop:
		g.genLoop(s)
	case *ast.For:
		g.genFor(s)
	case *ast.Return:
		if s.Value == nil {
			g.b.CreateRetVoid()
		} else {
			g.b.CreateRet(g.genExpr(s.Value).Value)
		}
	case *ast.Break:
		if g.breakTarget != nil {
			g.b.CreateBr(g.breakTarget)
		}
	case *ast.Continue:
		if g.continueTarget != nil {
			g.b.CreateBr(g.continueTarget)
		}
	case *ast.Unreachable:
		g.b.CreateUnreachable()
	case *ast.ExprStmt:
		g.genExpr(s.Expr)
	case *ast.Pass:
		// no-op
	}
}

func (g *Generator) genIf(n *ast.If) {
	cond := g.genExpr(n.Condition).Value
	thenBB := g.fn.NewBlock("if.then")
	contBB := g.fn.NewBlock("if.cont")

	var nextBB *ir.BasicBlock
	if len(n.Elifs) > 0 || n.Else != nil {
		nextBB = g.fn.NewBlock("if.else")
	} else {
		nextBB = contBB
	}
	g.b.CreateCondBr(cond, thenBB, nextBB)

	g.b.PositionAtEnd(thenBB)
	g.genBlock(n.Then)
	if !g.b.Current().IsTerminated() {
		g.b.CreateBr(contBB)
	}

	for i, elif := range n.Elifs {
		g.b.PositionAtEnd(nextBB)
		elifCond := g.genExpr(elif.Condition).Value
		elifThen := g.fn.NewBlock("elif.then")

		var afterElif *ir.BasicBlock
		hasMore := i < len(n.Elifs)-1 || n.Else != nil
		if hasMore {
			afterElif = g.fn.NewBlock("elif.else")
		} else {
			afterElif = contBB
		}
		g.b.CreateCondBr(elifCond, elifThen, afterElif)

		g.b.PositionAtEnd(elifThen)
		g.genBlock(elif.Body)
		if !g.b.Current().IsTerminated() {
			g.b.CreateBr(contBB)
		}
		nextBB = afterElif
	}

	if n.Else != nil {
		g.b.PositionAtEnd(nextBB)
		g.genBlock(n.Else)
		if !g.b.Current().IsTerminated() {
			g.b.CreateBr(contBB)
		}
	}

	g.b.PositionAtEnd(contBB)
}

func (g *Generator) genWhile(n *ast.While) {
	condBB := g.fn.NewBlock("while.cond")
	bodyBB := g.fn.NewBlock("while.body")
	contBB := g.fn.NewBlock("while.end")

	g.b.CreateBr(condBB)
	g.b.PositionAtEnd(condBB)
	cond := g.genExpr(n.Condition).Value
	g.b.CreateCondBr(cond, bodyBB, contBB)

	g.withLoopTargets(contBB, condBB, func() {
		g.b.PositionAtEnd(bodyBB)
		g.genBlock(n.Body)
		if !g.b.Current().IsTerminated() {
			g.b.CreateBr(condBB)
		}
	})

	g.b.PositionAtEnd(contBB)
}

func (g *Generator) genLoop(n *ast.Loop) {
	bodyBB := g.fn.NewBlock("loop.body")
	contBB := g.fn.NewBlock("loop.end")

	g.b.CreateBr(bodyBB)
	g.withLoopTargets(contBB, bodyBB, func() {
		g.b.PositionAtEnd(bodyBB)
		g.genBlock(n.Body)
		if !g.b.Current().IsTerminated() {
			g.b.CreateBr(bodyBB)
		}
	})

	g.b.PositionAtEnd(contBB)
}

func (g *Generator) genFor(n *ast.For) {
	if n.Init != nil {
		g.genStmt(n.Init)
	}
	condBB := g.fn.NewBlock("for.cond")
	bodyBB := g.fn.NewBlock("for.body")
	actionBB := g.fn.NewBlock("for.action")
	contBB := g.fn.NewBlock("for.end")

	g.b.CreateBr(condBB)
	g.b.PositionAtEnd(condBB)
	cond := g.genExpr(n.Condition).Value
	g.b.CreateCondBr(cond, bodyBB, contBB)

	g.withLoopTargets(contBB, actionBB, func() {
		g.b.PositionAtEnd(bodyBB)
		if n.UnaryActionIsPre {
			if expr, ok := n.Action.(ast.Expr); ok {
				g.genExpr(expr)
			}
		}
		g.genBlock(n.Body)
		if !g.b.Current().IsTerminated() {
			g.b.CreateBr(actionBB)
		}
	})

	g.b.PositionAtEnd(actionBB)
	if expr, ok := n.Action.(ast.Expr); ok && !n.UnaryActionIsPre {
		g.genExpr(expr)
	}
	if !g.b.Current().IsTerminated() {
		g.b.CreateBr(condBB)
	}

	g.b.PositionAtEnd(contBB)
}

func (g *Generator) withLoopTargets(brk, cont *ir.BasicBlock, fn func()) {
	prevBreak, prevCont := g.breakTarget, g.continueTarget
	g.breakTarget, g.continueTarget = brk, cont
	fn()
	g.breakTarget, g.continueTarget = prevBreak, prevCont
}

// GlobalNames returns every declared Static/ConstDecl name, in no
// particular order.
func (g *Generator) GlobalNames() []string {
	return lo.Keys(g.globals)
}

func (g *Generator) stringGlobal(bytes []byte) ir.Value {
	name := fmt.Sprintf(".str.%d", g.strings)
	g.strings++
	elemTy := ir.Type{Kind: ir.TypeI8}
	arrTy := ir.ArrayOf(elemTy, uint32(len(bytes)+1))
	elems := make([]ir.Value, len(bytes)+1)
	for i, by := range bytes {
		elems[i] = ir.ConstInt{Typ: elemTy, Val: int64(by)}
	}
	elems[len(bytes)] = ir.ConstInt{Typ: elemTy, Val: 0}
	glob := g.mod.NewGlobal(name, arrTy, ir.ConstArray{Typ: arrTy, Elements: elems}, true)
	glob.UnnamedAddr = true
	return ir.GlobalRef{Typ: ir.Pointer(), Name: name}
}
