package parser

import (
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/symbols"
)

// symbolKind is a local alias kept short for readability in forward.go's
// dense declaration-skipping logic.
type symbolKind = symbols.Kind

const (
	symbolsKindStruct      = symbols.KindStruct
	symbolsKindFunction    = symbols.KindFunction
	symbolsKindAsmFunction = symbols.KindAsmFunction
	symbolsKindIntrinsic   = symbols.KindIntrinsic
	symbolsKindEnum        = symbols.KindEnum
	symbolsKindStatic      = symbols.KindStatic
	symbolsKindConst       = symbols.KindConstant
	symbolsKindCustomType  = symbols.KindCustomType
	symbolsKindParameter   = symbols.KindParameter
	symbolsKindLLI         = symbols.KindLLI
	symbolsKindLocal       = symbols.KindLocal
)

// declareForward registers name in the current scope, reporting a
// duplicate-declaration diagnostic without aborting the pass (spec section
// 4.2.1).
func (p *Parser) declareForward(name string, k symbolKind, sp span.Span) {
	if dup := p.table.Declare(name, k, sp); dup {
		p.sink.Errorf("E0100", sp, "duplicate declaration of %q in this scope", name)
	}
}
