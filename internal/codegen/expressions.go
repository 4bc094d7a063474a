package codegen

import (
	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/ir"
	"github.com/thrushlang/thrushc/internal/types"
)

// genExpr lowers e, returning both the loaded value and (when e designates
// an addressable location) the pointer it was loaded from — the
// "PointerAnchor" spec section 4.4 describes: an assignment's left-hand
// side calls genExpr once and reuses Addr instead of re-deriving the
// address from scratch, and `&expr` reads Addr directly without emitting a
// load at all.
func (g *Generator) genExpr(e ast.Expr) anchor {
	switch n := e.(type) {
	case *ast.Integer:
		return anchor{Value: ir.ConstInt{Typ: g.lowerType(e.Type()), Val: n.Value}}
	case *ast.Float:
		return anchor{Value: ir.ConstFloat{Typ: g.lowerType(e.Type()), Val: n.Value}}
	case *ast.Boolean:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return anchor{Value: ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI1}, Val: v}}
	case *ast.CharLit:
		return anchor{Value: ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI8}, Val: int64(n.Value)}}
	case *ast.StrLit:
		return anchor{Value: g.stringGlobal(n.Bytes)}
	case *ast.NullPtr:
		return anchor{Value: ir.ConstNull{Typ: ir.Pointer()}}

	case *ast.Reference:
		if a, ok := g.locals[n.Name]; ok {
			val := g.b.CreateLoad(g.lowerType(e.Type()), a.Addr)
			return anchor{Value: val, Addr: a.Addr}
		}
		if backendName, ok := g.funcSymbols[n.Name]; ok {
			return anchor{Value: ir.GlobalRef{Typ: ir.Pointer(), Name: backendName}}
		}
		if t, ok := g.globals[n.Name]; ok {
			addr := ir.GlobalRef{Typ: ir.Pointer(), Name: n.Name}
			if !n.Metadata.IsAllocated {
				return anchor{Value: addr}
			}
			val := g.b.CreateLoad(t, addr)
			return anchor{Value: val, Addr: addr}
		}
		return anchor{Value: ir.GlobalRef{Typ: ir.Pointer(), Name: n.Name}}

	case *ast.DirectRef:
		inner := g.genExpr(n.Expr)
		return anchor{Value: inner.Addr}

	case *ast.Group:
		return g.genExpr(n.Inner)

	case *ast.As:
		return anchor{Value: g.genCast(n)}

	case *ast.UnaryOp:
		return anchor{Value: g.genUnary(n)}

	case *ast.BinaryOp:
		return g.genBinary(n)

	case *ast.Call:
		return anchor{Value: g.genCall(n)}

	case *ast.Indirect:
		return anchor{Value: g.genIndirect(n)}

	case *ast.Property:
		return g.genProperty(n)

	case *ast.Index:
		return g.genIndex(n)

	case *ast.Constructor:
		return anchor{Value: g.genConstructor(n)}

	case *ast.Load:
		src := g.genExpr(n.Source)
		return anchor{Value: g.b.CreateLoad(g.lowerType(e.Type()), src.Value)}

	case *ast.Write:
		target := g.genExpr(n.Target)
		val := g.genExpr(n.Value)
		g.b.CreateStore(val.Value, target.Value)
		return anchor{Value: val.Value}

	case *ast.Address:
		base := g.genExpr(n.Base)
		idx := make([]ir.Value, len(n.Offsets))
		for i, off := range n.Offsets {
			idx[i] = g.genExpr(off).Value
		}
		return anchor{Value: g.b.CreateGEP(g.lowerType(n.Base.Type()), base.Value, idx)}

	case *ast.Deref:
		src := g.genExpr(n.Source)
		return anchor{Value: g.b.CreateLoad(g.lowerType(e.Type()), src.Value), Addr: src.Value}

	case *ast.Alloc:
		return anchor{Value: g.b.CreateAlloca(g.lowerType(n.AllocatedType))}

	case *ast.Builtin:
		return anchor{Value: g.genBuiltin(n)}

	case *ast.AsmValue:
		args := make([]ir.Value, len(n.Args))
		for i, arg := range n.Args {
			args[i] = g.genExpr(arg).Value
		}
		return anchor{Value: g.b.CreateInlineAsm(g.lowerType(e.Type()), n.Assembly, n.Constraints, args)}

	case *ast.FixedArrayLit:
		return anchor{Value: g.genArrayLit(e.Type(), n.Elements)}

	case *ast.ArrayLit:
		return anchor{Value: g.genArrayLit(e.Type(), n.Elements)}

	default:
		g.sink.FrontendBugf(e.Span(), "internal/codegen/expressions.go", 0, "unhandled expression kind %T", e)
		return anchor{Value: ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}}}
	}
}

func (g *Generator) genCast(n *ast.As) ir.Value {
	v := g.genExpr(n.Expr)
	from := n.Expr.Type()
	to := n.CastTo
	toIR := g.lowerType(to)
	fromIR := g.lowerType(from)

	switch {
	case from.IsInteger() && to.IsInteger():
		fromW, toW := from.BitWidth(), to.BitWidth()
		switch {
		case toW > fromW && from.IsSigned():
			return g.b.CreateSExt(toIR, v.Value)
		case toW > fromW:
			return g.b.CreateZExt(toIR, v.Value)
		case toW < fromW:
			return g.b.CreateTrunc(toIR, v.Value)
		default:
			return v.Value
		}
	case from.IsInteger() && to.IsFloat():
		if from.IsSigned() {
			return g.b.CreateSIToFP(toIR, v.Value)
		}
		return g.b.CreateUIToFP(toIR, v.Value)
	case from.IsFloat() && to.IsInteger():
		if to.IsSigned() {
			return g.b.CreateFPToSI(toIR, v.Value)
		}
		return g.b.CreateFPToUI(toIR, v.Value)
	case from.IsFloat() && to.IsFloat():
		if to.BitWidth() > from.BitWidth() {
			return g.b.CreateFPExt(toIR, v.Value)
		}
		return g.b.CreateFPTrunc(toIR, v.Value)
	case from.IsPointerLike() && to.IsPointerLike():
		return g.b.CreateBitcast(toIR, v.Value)
	case from.IsPointerLike() && to.IsInteger():
		return g.b.CreatePtrToInt(toIR, v.Value)
	case from.IsInteger() && to.IsPointerLike():
		return g.b.CreateIntToPtr(toIR, v.Value)
	default:
		_ = fromIR
		return v.Value
	}
}

func (g *Generator) genUnary(n *ast.UnaryOp) ir.Value {
	v := g.genExpr(n.Expression).Value
	switch n.Operator {
	case ast.UnaryNeg:
		if n.Expression.Type().IsFloat() {
			return g.b.CreateFSub(ir.ConstFloat{Typ: v.ValueType(), Val: 0}, v)
		}
		return g.b.CreateSub(ir.ConstInt{Typ: v.ValueType(), Val: 0}, v)
	case ast.UnaryNot:
		return g.b.CreateXor(v, ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI1}, Val: 1})
	case ast.UnaryBitNot:
		return g.b.CreateXor(v, ir.ConstInt{Typ: v.ValueType(), Val: -1})
	default:
		return v
	}
}

func (g *Generator) genBinary(n *ast.BinaryOp) anchor {
	if isAssignOp(n.Operator) {
		return g.genAssign(n)
	}
	l := g.genExpr(n.Left).Value
	r := g.genExpr(n.Right).Value
	isFloat := n.Left.Type().IsFloat()
	isSigned := n.Left.Type().IsSigned()

	switch n.Operator {
	case ast.OpAdd:
		if isFloat {
			return anchor{Value: g.b.CreateFAdd(l, r)}
		}
		return anchor{Value: g.b.CreateAdd(l, r)}
	case ast.OpSub:
		if isFloat {
			return anchor{Value: g.b.CreateFSub(l, r)}
		}
		return anchor{Value: g.b.CreateSub(l, r)}
	case ast.OpMul:
		if isFloat {
			return anchor{Value: g.b.CreateFMul(l, r)}
		}
		return anchor{Value: g.b.CreateMul(l, r)}
	case ast.OpDiv:
		if isFloat {
			return anchor{Value: g.b.CreateFDiv(l, r)}
		}
		if isSigned {
			return anchor{Value: g.b.CreateSDiv(l, r)}
		}
		return anchor{Value: g.b.CreateUDiv(l, r)}
	case ast.OpMod:
		if isSigned {
			return anchor{Value: g.b.CreateSRem(l, r)}
		}
		return anchor{Value: g.b.CreateURem(l, r)}
	case ast.OpShl:
		return anchor{Value: g.b.CreateShl(l, r)}
	case ast.OpShr:
		if isSigned {
			return anchor{Value: g.b.CreateAShr(l, r)}
		}
		return anchor{Value: g.b.CreateLShr(l, r)}
	case ast.OpBitAnd:
		return anchor{Value: g.b.CreateAnd(l, r)}
	case ast.OpBitOr:
		return anchor{Value: g.b.CreateOr(l, r)}
	case ast.OpBitXor:
		return anchor{Value: g.b.CreateXor(l, r)}
	case ast.OpAnd:
		return anchor{Value: g.b.CreateAnd(l, r)}
	case ast.OpOr:
		return anchor{Value: g.b.CreateOr(l, r)}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		return anchor{Value: g.genCompare(n.Operator, l, r, isFloat, isSigned)}
	default:
		return anchor{Value: l}
	}
}

func isAssignOp(op ast.BinaryOperator) bool {
	return op == ast.OpAssign || op == ast.OpAddAssign || op == ast.OpSubAssign
}

func (g *Generator) genAssign(n *ast.BinaryOp) anchor {
	target := g.genExpr(n.Left)
	rhs := g.genExpr(n.Right).Value
	val := rhs
	switch n.Operator {
	case ast.OpAddAssign:
		if n.Left.Type().IsFloat() {
			val = g.b.CreateFAdd(target.Value, rhs)
		} else {
			val = g.b.CreateAdd(target.Value, rhs)
		}
	case ast.OpSubAssign:
		if n.Left.Type().IsFloat() {
			val = g.b.CreateFSub(target.Value, rhs)
		} else {
			val = g.b.CreateSub(target.Value, rhs)
		}
	}
	if target.Addr != nil {
		g.b.CreateStore(val, target.Addr)
	}
	return anchor{Value: val, Addr: target.Addr}
}

func (g *Generator) genCompare(op ast.BinaryOperator, l, r ir.Value, isFloat, isSigned bool) ir.Value {
	if isFloat {
		pred := map[ast.BinaryOperator]ir.FCmpPred{
			ast.OpLt: ir.FCmpOLT, ast.OpLe: ir.FCmpOLE, ast.OpGt: ir.FCmpOGT,
			ast.OpGe: ir.FCmpOGE, ast.OpEq: ir.FCmpOEQ, ast.OpNe: ir.FCmpONE,
		}[op]
		return g.b.CreateFCmp(pred, l, r)
	}
	var pred ir.ICmpPred
	if isSigned {
		pred = map[ast.BinaryOperator]ir.ICmpPred{
			ast.OpLt: ir.ICmpSLT, ast.OpLe: ir.ICmpSLE, ast.OpGt: ir.ICmpSGT,
			ast.OpGe: ir.ICmpSGE, ast.OpEq: ir.ICmpEQ, ast.OpNe: ir.ICmpNE,
		}[op]
	} else {
		pred = map[ast.BinaryOperator]ir.ICmpPred{
			ast.OpLt: ir.ICmpULT, ast.OpLe: ir.ICmpULE, ast.OpGt: ir.ICmpUGT,
			ast.OpGe: ir.ICmpUGE, ast.OpEq: ir.ICmpEQ, ast.OpNe: ir.ICmpNE,
		}[op]
	}
	return g.b.CreateICmp(pred, l, r)
}

func (g *Generator) genCall(n *ast.Call) ir.Value {
	args := make([]ir.Value, len(n.Args))
	for i, arg := range n.Args {
		args[i] = g.genExpr(arg).Value
	}
	retType := g.lowerType(n.Type())
	callee := n.Callee
	if backendName, ok := g.funcSymbols[n.Callee]; ok {
		callee = backendName
	}
	var calleeType ir.Type
	convention := ""
	if fn, ok := g.mod.FindFunction(callee); ok {
		calleeType = ir.FuncOf(fn.RetType, fn.ParamTypes...)
		convention = fn.Convention
	}
	return g.b.CreateCall(callee, calleeType, retType, args, convention)
}

func (g *Generator) genIndirect(n *ast.Indirect) ir.Value {
	fnVal := g.genExpr(n.Function).Value
	args := make([]ir.Value, len(n.Args))
	for i, arg := range n.Args {
		args[i] = g.genExpr(arg).Value
	}
	retType := g.lowerType(n.Type())
	return g.b.CreateCall(fnVal.String(), g.lowerType(n.FunctionType), retType, args, "")
}

func (g *Generator) genProperty(n *ast.Property) anchor {
	src := g.genExpr(n.Source)
	addr := src.Addr
	if addr == nil {
		addr = src.Value
	}
	baseType := n.Source.Type()
	for _, idx := range n.Indexes {
		lowered := g.lowerType(baseType)
		indices := []ir.Value{
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: int64(idx.Index)},
		}
		addr = g.b.CreateGEP(lowered, addr, indices)
		baseType = idx.Type
	}
	val := g.b.CreateLoad(g.lowerType(n.Type()), addr)
	return anchor{Value: val, Addr: addr}
}

func (g *Generator) genIndex(n *ast.Index) anchor {
	src := g.genExpr(n.Source)
	addr := src.Addr
	if addr == nil {
		addr = src.Value
	}
	elemType := g.lowerType(n.Type())
	for _, idxExpr := range n.Indexes {
		idx := g.genExpr(idxExpr).Value
		indices := []ir.Value{ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0}, idx}
		addr = g.b.CreateGEP(elemType, addr, indices)
	}
	val := g.b.CreateLoad(elemType, addr)
	return anchor{Value: val, Addr: addr}
}

func (g *Generator) genConstructor(n *ast.Constructor) ir.Value {
	structType, ok := g.structs[n.StructName]
	if !ok {
		return ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}}
	}
	lowered := g.lowerType(structType)
	addr := g.b.CreateAlloca(lowered)
	for _, f := range n.Fields {
		val := g.genExpr(f.Value).Value
		indices := []ir.Value{
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: int64(f.Index)},
		}
		fieldAddr := g.b.CreateGEP(lowered, addr, indices)
		g.b.CreateStore(val, fieldAddr)
	}
	return g.b.CreateLoad(lowered, addr)
}

// genArrayLit allocates a stack array sized to arrType's element count,
// stores every element expression at its index, and loads the aggregate
// back the same way genConstructor does for struct literals. A dynamically
// sized (`types.KindArray`) literal instead wraps that backing storage in
// the { ptr, i64 } pair lowerType gives it, length included.
func (g *Generator) genArrayLit(arrType types.Type, elements []ast.Expr) ir.Value {
	u, _, _ := arrType.Unwrap()
	if u.Kind != types.KindArray {
		lowered := g.lowerType(arrType)
		addr := g.b.CreateAlloca(lowered)
		for i, elem := range elements {
			val := g.genExpr(elem).Value
			elemAddr := g.b.CreateGEP(lowered, addr, []ir.Value{
				ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
				ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: int64(i)},
			})
			g.b.CreateStore(val, elemAddr)
		}
		return g.b.CreateLoad(lowered, addr)
	}

	elemIR := g.lowerType(*u.Elem)
	backingType := ir.ArrayOf(elemIR, uint32(len(elements)))
	backing := g.b.CreateAlloca(backingType)
	for i, elem := range elements {
		val := g.genExpr(elem).Value
		elemAddr := g.b.CreateGEP(backingType, backing, []ir.Value{
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
			ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: int64(i)},
		})
		g.b.CreateStore(val, elemAddr)
	}

	fatType := g.lowerType(arrType)
	fatAddr := g.b.CreateAlloca(fatType)
	ptrField := g.b.CreateGEP(fatType, fatAddr, []ir.Value{
		ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
		ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
	})
	g.b.CreateStore(backing, ptrField)
	lenField := g.b.CreateGEP(fatType, fatAddr, []ir.Value{
		ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 0},
		ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI32}, Val: 1},
	})
	g.b.CreateStore(ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI64}, Val: int64(len(elements))}, lenField)
	return g.b.CreateLoad(fatType, fatAddr)
}

func (g *Generator) genBuiltin(n *ast.Builtin) ir.Value {
	switch n.Which {
	case ast.BuiltinSizeOf, ast.BuiltinAlignOf:
		var t types.Type
		if n.TypeArg != nil {
			t = *n.TypeArg
		}
		return ir.ConstInt{Typ: ir.Type{Kind: ir.TypeI64}, Val: int64(t.BitWidth() / 8)}
	default:
		args := make([]ir.Value, len(n.Args))
		for i, a := range n.Args {
			args[i] = g.genExpr(a).Value
		}
		name := map[ast.BuiltinKind]string{
			ast.BuiltinMemcpy: "llvm.memcpy.p0.p0.i64", ast.BuiltinMemmove: "llvm.memmove.p0.p0.i64",
			ast.BuiltinMemset: "llvm.memset.p0.i64",
		}[n.Which]
		return g.b.CreateCall(name, ir.Type{}, ir.Type{Kind: ir.TypeVoid}, args, "")
	}
}
