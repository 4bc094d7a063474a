// Package sema implements the semantic analyzer and type checker of spec
// sections 4.3.1 and 4.3.2: name/type resolution over the parser's typed
// AST and the arithmetic/comparison/assignment/call/cast type rules
// (attribute mutual-exclusion is checked earlier, in internal/parser). It runs after internal/parser and before
// internal/codegen, reporting into the same diagnostics.Sink the earlier
// stages used so one compilation reports every problem it finds.
package sema

import (
	"github.com/samber/lo"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/symbols"
	"github.com/thrushlang/thrushc/internal/types"
)

// scope is a single lexical level of local-variable types, chained to its
// parent for name resolution during the analysis walk.
type scope struct {
	parent *scope
	vars   map[string]types.Type
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]types.Type)}
}

func (s *scope) declare(name string, t types.Type) { s.vars[name] = t }

func (s *scope) lookup(name string) (types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// Analyzer walks a parsed program, resolving every expression's Type and
// reporting type errors (spec section 4.3.2) and semantic errors (spec
// section 4.3.1).
type Analyzer struct {
	sink     *diagnostics.Sink
	table    *symbols.ParserTable
	structs  map[string]types.Type
	funcs    map[string]*ast.Function
	intrins  map[string]*ast.Intrinsic
	asmFuncs map[string]*ast.AssemblerFunction
	cur      *scope
	retType  types.Type
	inLoop   int
}

// New returns an Analyzer over table's declarations, reporting into sink.
// structs maps every struct name to its fully resolved Type, as collected
// by the parser's forward/main passes.
func New(sink *diagnostics.Sink, table *symbols.ParserTable, structs map[string]types.Type) *Analyzer {
	return &Analyzer{
		sink: sink, table: table, structs: structs,
		funcs: make(map[string]*ast.Function), intrins: make(map[string]*ast.Intrinsic),
		asmFuncs: make(map[string]*ast.AssemblerFunction), cur: newScope(nil),
	}
}

// Analyze walks every top-level declaration, resolving function bodies in
// a second pass so forward-referenced calls see every signature regardless
// of declaration order (spec section 8 scenario 6).
func (a *Analyzer) Analyze(decls []ast.Node) {
	funcDecls := lo.Filter(decls, func(d ast.Node, _ int) bool {
		_, ok := d.(*ast.Function)
		return ok
	})
	for _, fn := range lo.Map(funcDecls, func(d ast.Node, _ int) *ast.Function {
		return d.(*ast.Function)
	}) {
		a.funcs[fn.Name] = fn
	}
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.Intrinsic:
			a.intrins[n.Name] = n
		case *ast.AssemblerFunction:
			a.asmFuncs[n.Name] = n
		}
	}
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.Function:
			a.analyzeFunction(n)
		case *ast.ConstDecl:
			a.exprType(n.Value)
		case *ast.Static:
			if n.Value != nil {
				a.exprType(n.Value)
			}
		case *ast.StructDecl:
			a.checkStructFields(n)
		}
	}
}

// checkStructFields reports spec section 4.2.5's duplicate-field-name rule:
// a struct cannot declare the same field twice.
func (a *Analyzer) checkStructFields(n *ast.StructDecl) {
	if uniq := types.DuplicateFieldNames(n.Fields); len(uniq) != len(n.Fields) {
		a.sink.Errorf("E0404", n.Sp, "struct %q declares a duplicate field name", n.Name)
	}
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	if fn.Body == nil {
		return
	}
	prevRet := a.retType
	a.retType = fn.ReturnType
	a.cur = newScope(a.cur)
	for _, param := range fn.Parameters {
		a.cur.declare(param.Name, param.Type)
	}
	a.analyzeBlock(fn.Body)
	if !types.Equal(types.Void(), underlyingOf(fn.ReturnType)) && !a.blockReturnsOnEveryPath(fn.Body) {
		a.sink.Errorf("E0400", fn.Sp, "function %q does not return a value on every path", fn.Name)
	}
	a.cur = a.cur.parent
	a.retType = prevRet
}

func underlyingOf(t types.Type) types.Type {
	u, _, _ := t.Unwrap()
	return u
}

// blockReturnsOnEveryPath implements spec section 4.3.1's control-flow
// completeness check: a block returns on every path if its last statement
// does (a Return, Unreachable, or an If whose every arm does).
func (a *Analyzer) blockReturnsOnEveryPath(b *ast.Block) bool {
	if b == nil || len(b.Statements) == 0 {
		return false
	}
	return a.stmtReturnsOnEveryPath(b.Statements[len(b.Statements)-1])
}

func (a *Analyzer) stmtReturnsOnEveryPath(n ast.Node) bool {
	switch s := n.(type) {
	case *ast.Return:
		return true
	case *ast.Unreachable:
		return true
	case *ast.Block:
		return a.blockReturnsOnEveryPath(s)
	case *ast.If:
		if s.Else == nil {
			return false
		}
		if !a.blockReturnsOnEveryPath(s.Then) || !a.blockReturnsOnEveryPath(s.Else) {
			return false
		}
		for _, e := range s.Elifs {
			if !a.blockReturnsOnEveryPath(e.Body) {
				return false
			}
		}
		return true
	case *ast.Loop:
		// An unconditional loop with no reachable `break` never falls
		// through, so the function after it is unreachable regardless.
		return !containsBreak(s.Body)
	default:
		return false
	}
}

func containsBreak(n ast.Node) bool {
	switch s := n.(type) {
	case *ast.Break:
		return true
	case *ast.Block:
		for _, st := range s.Statements {
			if containsBreak(st) {
				return true
			}
		}
	case *ast.If:
		if containsBreak(s.Then) {
			return true
		}
		for _, e := range s.Elifs {
			if containsBreak(e.Body) {
				return true
			}
		}
		if s.Else != nil && containsBreak(s.Else) {
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeBlock(b *ast.Block) {
	a.cur = newScope(a.cur)
	defer func() { a.cur = a.cur.parent }()
	for _, stmt := range b.Statements {
		a.analyzeStmt(stmt)
	}
}

func (a *Analyzer) analyzeStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.Local:
		if s.Value != nil {
			vt := a.exprType(s.Value)
			if !assignable(s.Type, vt) {
				a.sink.Errorf("E0401", s.Sp, "cannot initialize %q of type %s with value of type %s", s.Name, s.Type, vt)
			}
		}
		a.cur.declare(s.Name, s.Type)
	case *ast.Block:
		a.analyzeBlock(s)
	case *ast.If:
		a.checkBool(a.exprType(s.Condition), s.Condition.Span())
		a.analyzeBlock(s.Then)
		for _, e := range s.Elifs {
			a.checkBool(a.exprType(e.Condition), e.Condition.Span())
			a.analyzeBlock(e.Body)
		}
		if s.Else != nil {
			a.analyzeBlock(s.Else)
		}
	case *ast.For:
		a.cur = newScope(a.cur)
		if s.Init != nil {
			a.analyzeStmt(s.Init)
		}
		a.checkBool(a.exprType(s.Condition), s.Condition.Span())
		a.exprTypeOfNode(s.Action)
		a.inLoop++
		a.analyzeBlock(s.Body)
		a.inLoop--
		a.cur = a.cur.parent
	case *ast.While:
		a.checkBool(a.exprType(s.Condition), s.Condition.Span())
		a.inLoop++
		a.analyzeBlock(s.Body)
		a.inLoop--
	case *ast.Loop:
		a.inLoop++
		a.analyzeBlock(s.Body)
		a.inLoop--
	case *ast.Return:
		if s.Value != nil {
			vt := a.exprType(s.Value)
			if !assignable(a.retType, vt) {
				a.sink.Errorf("E0402", s.Sp, "return type mismatch: expected %s, got %s", a.retType, vt)
			}
		}
	case *ast.ExprStmt:
		a.exprType(s.Expr)
	case *ast.Break, *ast.Continue, *ast.Pass, *ast.Unreachable:
		// No nested expressions to resolve.
	}
}

func (a *Analyzer) exprTypeOfNode(n ast.Node) {
	if e, ok := n.(ast.Expr); ok {
		a.exprType(e)
	}
}

func (a *Analyzer) checkBool(t types.Type, sp span.Span) {
	if !types.Equal(underlyingOf(t), types.Bool()) {
		a.sink.Errorf("E0403", sp, "condition must be bool, got %s", t)
	}
}

// assignable reports whether a value of type from can initialize or assign
// to a binding of type to, per spec section 4.3.2: identical types always
// are; an untyped pointer literal/nullptr may assign to any pointer type.
func assignable(to, from types.Type) bool {
	toU, _, _ := to.Unwrap()
	fromU, _, _ := from.Unwrap()
	if types.Equal(toU, fromU) {
		return true
	}
	if toU.IsPointerLike() && fromU.Kind == types.KindPtr && fromU.Elem == nil {
		return true
	}
	return false
}

// exprType resolves and caches the static type of e, recursing into its
// subexpressions and reporting any type error along the way (spec section
// 4.3.2). It always returns e's resolved type even after reporting an
// error, so callers above it can keep checking without cascading panics.
func (a *Analyzer) exprType(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Integer, *ast.Float, *ast.Boolean, *ast.CharLit, *ast.StrLit, *ast.NullPtr:
		return e.Type()

	case *ast.Reference:
		if t, ok := a.cur.lookup(n.Name); ok {
			n.SetType(t)
			return t
		}
		return e.Type()

	case *ast.DirectRef:
		inner := a.exprType(n.Expr)
		t := types.Ptr(&inner)
		n.SetType(t)
		return t

	case *ast.Group:
		t := a.exprType(n.Inner)
		n.SetType(t)
		return t

	case *ast.As:
		a.exprType(n.Expr)
		return n.CastTo

	case *ast.UnaryOp:
		return a.unaryType(n)

	case *ast.BinaryOp:
		return a.binaryType(n)

	case *ast.Call:
		return a.callType(n)

	case *ast.Indirect:
		fnType := a.exprType(n.Function)
		for _, arg := range n.Args {
			a.exprType(arg)
		}
		n.FunctionType = fnType
		u, _, _ := fnType.Unwrap()
		if u.Kind == types.KindFn {
			n.SetType(*u.Ret)
			return *u.Ret
		}
		return e.Type()

	case *ast.Property:
		return a.propertyType(n)

	case *ast.Index:
		srcType := a.exprType(n.Source)
		for _, idx := range n.Indexes {
			a.exprType(idx)
		}
		u, _, _ := srcType.Unwrap()
		if u.Elem != nil {
			n.SetType(*u.Elem)
			return *u.Elem
		}
		return e.Type()

	case *ast.Constructor:
		if t, ok := a.structs[n.StructName]; ok {
			u, _, _ := t.Unwrap()
			for i := range n.Fields {
				for _, f := range u.Fields {
					if f.Name == n.Fields[i].FieldName {
						n.Fields[i].FieldType = f.Type
						break
					}
				}
				a.exprType(n.Fields[i].Value)
			}
			n.SetType(t)
			return t
		}
		return e.Type()

	case *ast.FixedArrayLit:
		var elemType types.Type
		for _, el := range n.Elements {
			elemType = a.exprType(el)
		}
		n.SetType(types.FixedArray(elemType, uint32(len(n.Elements))))
		return n.Type()

	case *ast.ArrayLit:
		var elemType types.Type
		for _, el := range n.Elements {
			elemType = a.exprType(el)
		}
		n.SetType(types.Array(elemType))
		return n.Type()

	case *ast.Alloc, *ast.Load, *ast.Write, *ast.Address, *ast.Deref, *ast.Builtin, *ast.AsmValue:
		a.walkMemoryLLI(n)
		return e.Type()

	default:
		return e.Type()
	}
}

func (a *Analyzer) walkMemoryLLI(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Load:
		n.SetType(a.exprType(n.Source))
	case *ast.Write:
		a.exprType(n.Target)
		a.exprType(n.Value)
	case *ast.Address:
		a.exprType(n.Base)
		for _, off := range n.Offsets {
			a.exprType(off)
		}
	case *ast.Deref:
		srcType := a.exprType(n.Source)
		u, _, _ := srcType.Unwrap()
		if u.Elem != nil {
			n.SetType(*u.Elem)
		}
	case *ast.Builtin:
		for _, arg := range n.Args {
			a.exprType(arg)
		}
	case *ast.AsmValue:
		for _, arg := range n.Args {
			a.exprType(arg)
		}
	}
}

// propertyType resolves a `.field` chain's Names into Indexes now that
// every struct's field layout is known (deferred from the parser per
// DESIGN.md's Open Questions entry).
func (a *Analyzer) propertyType(n *ast.Property) types.Type {
	cur := a.exprType(n.Source)
	n.Indexes = n.Indexes[:0]
	for _, name := range n.Names {
		u, _, _ := cur.Unwrap()
		found := false
		for idx, f := range u.Fields {
			if f.Name == name {
				n.Indexes = append(n.Indexes, ast.PropertyIndex{Type: f.Type, Index: uint32(idx)})
				cur = f.Type
				found = true
				break
			}
		}
		if !found {
			a.sink.Errorf("E0410", n.Sp, "type %s has no field %q", u, name)
			n.SetType(types.Void())
			return types.Void()
		}
	}
	n.SetType(cur)
	return cur
}

func (a *Analyzer) callType(n *ast.Call) types.Type {
	for _, arg := range n.Args {
		a.exprType(arg)
	}
	if fn, ok := a.funcs[n.Callee]; ok {
		n.SetType(fn.ReturnType)
		if len(n.Args) != len(fn.Parameters) {
			a.sink.Errorf("E0420", n.Sp, "call to %q expects %d arguments, got %d", n.Callee, len(fn.Parameters), len(n.Args))
		}
		return fn.ReturnType
	}
	if intr, ok := a.intrins[n.Callee]; ok {
		n.SetType(intr.ReturnType)
		return intr.ReturnType
	}
	if asmFn, ok := a.asmFuncs[n.Callee]; ok {
		n.SetType(asmFn.ReturnType)
		return asmFn.ReturnType
	}
	a.sink.Errorf("E0421", n.Sp, "call to undeclared function %q", n.Callee)
	return n.Type()
}

func (a *Analyzer) unaryType(n *ast.UnaryOp) types.Type {
	inner := a.exprType(n.Expression)
	switch n.Operator {
	case ast.UnaryNeg:
		t := inner.Narrowing()
		n.SetType(t)
		return t
	case ast.UnaryNot:
		n.SetType(types.Bool())
		return types.Bool()
	default:
		n.SetType(inner)
		return inner
	}
}

func (a *Analyzer) binaryType(n *ast.BinaryOp) types.Type {
	left := a.exprType(n.Left)
	right := a.exprType(n.Right)

	switch n.Operator {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe, ast.OpAnd, ast.OpOr:
		if !types.Equal(underlyingOf(left), underlyingOf(right)) {
			a.sink.Errorf("E0430", n.Sp, "mismatched operand types %s and %s", left, right)
		}
		n.SetType(types.Bool())
		return types.Bool()
	case ast.OpAssign, ast.OpAddAssign, ast.OpSubAssign:
		if !assignable(left, right) {
			a.sink.Errorf("E0431", n.Sp, "cannot assign %s to %s", right, left)
		}
		n.SetType(left)
		return left
	default:
		if !left.IsNumeric() || !right.IsNumeric() {
			a.sink.Errorf("E0432", n.Sp, "arithmetic requires numeric operands, got %s and %s", left, right)
		}
		n.SetType(left)
		return left
	}
}
