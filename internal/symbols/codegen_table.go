package symbols

import "github.com/thrushlang/thrushc/internal/types"

// SymbolAllocated is the codegen symbol table's value: the backend pointer
// value bound to a name, its source type, and whether that pointer must be
// loaded through a typed GEP before use or is itself the usable value (spec
// section 3.7). Value is `any` here rather than a concrete IR type so this
// package stays independent of internal/ir — codegen is the only consumer
// that knows the concrete backend value representation.
type SymbolAllocated struct {
	Value       any
	Type        types.Type
	NeedsGEPLoad bool
}

// FunctionAllocated records everything codegen needs to call or declare a
// function again later: its backend value, return/parameter types, calling
// convention, and whether it is variadic.
type FunctionAllocated struct {
	Value      any
	ReturnType types.Type
	ParamTypes []types.Type
	CallConv   string
	Variadic   bool
}

// CodegenTable mirrors ParserTable's scope discipline (push on `{`, pop on
// `}`, push on function/loop boundaries) but maps names to allocated
// backend values instead of declaration kinds.
type CodegenTable struct {
	scopes    []map[string]SymbolAllocated
	functions map[string]FunctionAllocated
	globals   map[string]SymbolAllocated
}

// NewCodegenTable returns an empty table with the global scope pushed.
func NewCodegenTable() *CodegenTable {
	return &CodegenTable{
		scopes:    []map[string]SymbolAllocated{make(map[string]SymbolAllocated)},
		functions: make(map[string]FunctionAllocated),
		globals:   make(map[string]SymbolAllocated),
	}
}

func (t *CodegenTable) BeginScope() {
	t.scopes = append(t.scopes, make(map[string]SymbolAllocated))
}

func (t *CodegenTable) EndScope() {
	if len(t.scopes) <= 1 {
		panic("symbols: cannot pop the global codegen scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Bind registers name in the current (innermost) scope.
func (t *CodegenTable) Bind(name string, sym SymbolAllocated) {
	t.scopes[len(t.scopes)-1][name] = sym
}

// BindGlobal registers name as a module-level global (static/const),
// visible from every scope even after the declaring scope's EndScope —
// spec section 8's "a lookup after that point for a shadowed global
// resolves to the global" invariant.
func (t *CodegenTable) BindGlobal(name string, sym SymbolAllocated) {
	t.globals[name] = sym
}

// Lookup resolves name from the innermost scope outward, falling back to
// the global table.
func (t *CodegenTable) Lookup(name string) (SymbolAllocated, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	sym, ok := t.globals[name]
	return sym, ok
}

// BindFunction registers a function's codegen metadata, keyed by its
// source name (not its possibly-obfuscated backend symbol name).
func (t *CodegenTable) BindFunction(name string, fn FunctionAllocated) {
	t.functions[name] = fn
}

// LookupFunction resolves a function's codegen metadata by source name.
func (t *CodegenTable) LookupFunction(name string) (FunctionAllocated, bool) {
	fn, ok := t.functions[name]
	return fn, ok
}
