// Package symbols implements the two symbol tables of spec section 3.7: the
// parser's forward-declaration table (built in the two-pass parse) and the
// codegen's allocation table (built during lowering). They are intentionally
// separate types — the parser table answers "does this name exist and what
// kind of thing is it", the codegen table answers "what backend value does
// this name resolve to" — and each begins empty at the start of one
// compilation unit and is discarded at the end of it.
package symbols

import (
	"github.com/samber/lo"

	"github.com/thrushlang/thrushc/internal/span"
)

// Kind tags every declaration the parser's forward pass can register.
type Kind int

const (
	KindStruct Kind = iota
	KindFunction
	KindAsmFunction
	KindIntrinsic
	KindEnum
	KindStatic
	KindConstant
	KindCustomType
	KindParameter
	KindLLI
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindAsmFunction:
		return "asm_function"
	case KindIntrinsic:
		return "intrinsic"
	case KindEnum:
		return "enum"
	case KindStatic:
		return "static"
	case KindConstant:
		return "constant"
	case KindCustomType:
		return "custom_type"
	case KindParameter:
		return "parameter"
	case KindLLI:
		return "lli"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Record is one entry registered in a ParserTable scope.
type Record struct {
	Name  string
	Kind  Kind
	Scope int
	Span  span.Span
}

// entryRef names a found record by name and scope index, mirroring the
// reference's index-not-reference design (spec section 9): symbol-table
// growth never invalidates a previously returned FoundSymbolId.
type entryRef struct {
	Name  string
	Scope int
}

// FoundSymbolId is the 11-tuple lookup result of spec section 3.7: one
// Option<(name, scope)> slot per Kind, letting a single lookup answer every
// "is this a struct / function / local / ..." question at once.
type FoundSymbolId struct {
	found [11]*entryRef
}

func (f FoundSymbolId) get(k Kind) *entryRef { return f.found[k] }

// IsStruct, IsFunction, ... report whether the lookup found a symbol of
// that specific kind.
func (f FoundSymbolId) IsStruct() bool     { return f.found[KindStruct] != nil }
func (f FoundSymbolId) IsFunction() bool   { return f.found[KindFunction] != nil }
func (f FoundSymbolId) IsAsmFunction() bool { return f.found[KindAsmFunction] != nil }
func (f FoundSymbolId) IsIntrinsic() bool  { return f.found[KindIntrinsic] != nil }
func (f FoundSymbolId) IsEnum() bool       { return f.found[KindEnum] != nil }
func (f FoundSymbolId) IsStatic() bool     { return f.found[KindStatic] != nil }
func (f FoundSymbolId) IsConstant() bool   { return f.found[KindConstant] != nil }
func (f FoundSymbolId) IsCustomType() bool { return f.found[KindCustomType] != nil }
func (f FoundSymbolId) IsParameter() bool  { return f.found[KindParameter] != nil }
func (f FoundSymbolId) IsLLI() bool        { return f.found[KindLLI] != nil }
func (f FoundSymbolId) IsLocal() bool      { return f.found[KindLocal] != nil }

// IsAny reports whether the lookup found a symbol of any kind at all.
func (f FoundSymbolId) IsAny() bool {
	for _, e := range f.found {
		if e != nil {
			return true
		}
	}
	return false
}

// Expected returns the (name, scope) pair for kind k, or an error carrying
// sp if no symbol of that kind was found — the "expected_X(span) ->
// Result<(&str, usize)>" helper of spec section 3.7.
func (f FoundSymbolId) Expected(k Kind, sp span.Span) (string, int, error) {
	if e := f.found[k]; e != nil {
		return e.Name, e.Scope, nil
	}
	return "", 0, &NotFoundError{Kind: k, Span: sp}
}

// NotFoundError reports that Expected's requested kind was absent.
type NotFoundError struct {
	Kind Kind
	Span span.Span
}

func (e *NotFoundError) Error() string {
	return "expected a " + e.Kind.String() + " symbol"
}

// ParserTable is the forward-declaration symbol table: a stack of scopes,
// globals at scope 0. Populated during the forward pass before bodies are
// parsed, and again (for locals) during the main parse.
type ParserTable struct {
	scopes []map[string]Record
}

// NewParserTable returns a table with the single global scope (scope 0)
// already pushed.
func NewParserTable() *ParserTable {
	return &ParserTable{scopes: []map[string]Record{make(map[string]Record)}}
}

// BeginScope pushes a new, empty scope (called on `{` and on function/loop
// boundaries).
func (t *ParserTable) BeginScope() {
	t.scopes = append(t.scopes, make(map[string]Record))
}

// EndScope pops the innermost scope (called on the matching `}`). Popping
// the global scope is a programmer error and panics.
func (t *ParserTable) EndScope() {
	if len(t.scopes) <= 1 {
		panic("symbols: cannot pop the global scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the current scope nesting depth (0 == global only).
func (t *ParserTable) Depth() int { return len(t.scopes) - 1 }

// Declare registers name as kind k in the current scope. It reports
// (duplicate bool) rather than an error directly: per spec section 4.2.1,
// a duplicate name is recorded by the caller as a diagnostic but must not
// abort the forward pass.
func (t *ParserTable) Declare(name string, k Kind, sp span.Span) (duplicate bool) {
	scopeIdx := len(t.scopes) - 1
	scope := t.scopes[scopeIdx]
	if _, exists := scope[name]; exists {
		return true
	}
	scope[name] = Record{Name: name, Kind: k, Scope: scopeIdx, Span: sp}
	return false
}

// Lookup walks the scope stack from innermost to global (scope 0) and
// returns a FoundSymbolId answering every kind question for name in one
// pass, per spec section 3.7.
func (t *ParserTable) Lookup(name string) FoundSymbolId {
	var found FoundSymbolId
	for i := len(t.scopes) - 1; i >= 0; i-- {
		rec, ok := t.scopes[i][name]
		if !ok {
			continue
		}
		if found.found[rec.Kind] == nil {
			found.found[rec.Kind] = &entryRef{Name: rec.Name, Scope: rec.Scope}
		}
	}
	return found
}

// LookupRecord is like Lookup but returns the full Record of the innermost
// match regardless of kind, or false if name is unbound anywhere in scope.
func (t *ParserTable) LookupRecord(name string) (Record, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if rec, ok := t.scopes[i][name]; ok {
			return rec, true
		}
	}
	return Record{}, false
}

// GlobalNames returns every name declared in the global scope, in no
// particular order, without re-walking the declaration list. Codegen keeps
// its own list (codegen.Generator.GlobalNames) and does not call this.
func (t *ParserTable) GlobalNames() []string {
	return lo.Keys(t.scopes[0])
}

// Reset discards all scopes above global and clears the global scope too.
// The parser does not call it: the forward pass's declarations are kept for
// the main parse.
func (t *ParserTable) Reset() {
	t.scopes = []map[string]Record{make(map[string]Record)}
}
