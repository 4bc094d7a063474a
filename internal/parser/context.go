package parser

import "github.com/thrushlang/thrushc/internal/types"

// SyncPosition is the parser's current expectation of what synchronizing
// token category to skip to on error (spec section 4.2.7). A stack of these
// lets nested expressions inside statements inside declarations each keep
// their own recovery target, rather than the reference's single-value field
// (spec section 9's design note).
type SyncPosition int

const (
	SyncNoRelevant SyncPosition = iota
	SyncDeclaration
	SyncStatement
	SyncExpression
)

// ControlContext tracks the parser's position within the grammar: whether
// we are inside a function body, inside a loop, how deep into an
// expression we are, and the error-recovery sync stack (spec section 4.2).
type ControlContext struct {
	InsideFunction int // depth counter; >0 means inside at least one function
	InsideLoop     int
	ExpressionDepth int
	syncStack      []SyncPosition
	ForceAbort     bool
	ExpectedReturn *types.Type
}

// NewControlContext returns a fresh context at file (global) scope.
func NewControlContext() *ControlContext {
	return &ControlContext{syncStack: []SyncPosition{SyncDeclaration}}
}

func (c *ControlContext) PushSync(p SyncPosition) { c.syncStack = append(c.syncStack, p) }

func (c *ControlContext) PopSync() {
	if len(c.syncStack) > 1 {
		c.syncStack = c.syncStack[:len(c.syncStack)-1]
	}
}

func (c *ControlContext) CurrentSync() SyncPosition {
	return c.syncStack[len(c.syncStack)-1]
}

func (c *ControlContext) EnterFunction(ret *types.Type) func() {
	c.InsideFunction++
	prevRet := c.ExpectedReturn
	c.ExpectedReturn = ret
	return func() {
		c.InsideFunction--
		c.ExpectedReturn = prevRet
	}
}

func (c *ControlContext) EnterLoop() func() {
	c.InsideLoop++
	return func() { c.InsideLoop-- }
}
