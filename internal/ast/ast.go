// Package ast defines the single tagged sum of grammatical forms the parser
// produces (spec section 3.4). Go has no native sum types, so the sum is
// modeled as a Node interface implemented by one concrete struct per
// variant; every visitor (semantic analyzer, type checker, codegen) matches
// over the concrete type with a type switch. A variant missing from a
// switch does not panic: codegen's expression switch reports a frontend-bug
// diagnostic, sema's expression switch falls back to the node's own Type(),
// and the statement switches have no default arm, so an unknown statement
// is skipped.
package ast

import (
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/types"
)

// Node is implemented by every AST variant.
type Node interface {
	Span() span.Span
	node()
}

// Expr is implemented by every Node that produces a value and therefore
// carries a resolved Type (spec section 3.4: "every expression-like node
// has kind: Type").
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
}

// base embeds into every Node to provide its Span.
type base struct {
	Sp span.Span
}

func (b base) Span() span.Span { return b.Sp }
func (base) node()             {}

// exprBase embeds into every Expr to provide its resolved Type.
type exprBase struct {
	base
	Typ types.Type
}

func (e exprBase) Type() types.Type   { return e.Typ }
func (e *exprBase) SetType(t types.Type) { e.Typ = t }

// NewBase and NewExprBase let constructors outside this package build the
// embedded fields without reaching into unexported members directly.
func NewBase(sp span.Span) base { return base{Sp: sp} }

func NewExprBase(sp span.Span, t types.Type) exprBase {
	return exprBase{base: base{Sp: sp}, Typ: t}
}
