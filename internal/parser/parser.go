// Package parser implements the recursive-descent, Pratt-style parser of
// spec section 4.2: a forward-declaration pre-pass that populates the
// symbol table before any body is parsed, followed by a main parse that
// builds the typed AST, with stack-based error recovery so one run reports
// many diagnostics instead of halting on the first malformed construct.
package parser

import (
	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/diagnostics"
	"github.com/thrushlang/thrushc/internal/span"
	"github.com/thrushlang/thrushc/internal/symbols"
	"github.com/thrushlang/thrushc/internal/token"
	"github.com/thrushlang/thrushc/internal/types"
)

// Parser holds the full parse state for one compilation unit.
type Parser struct {
	tokens  []token.Token
	current int
	table   *symbols.ParserTable
	ctx     *ControlContext
	sink    *diagnostics.Sink

	resolvedStructs     map[string]types.Type
	resolvedCustomTypes map[string]types.Type
}

// New returns a Parser over tokens, reporting into sink. The returned
// parser owns a fresh ParserTable; there is no way to share one table
// across translation units (none need to at this layer — spec section 5
// says externals resolve at link time).
func New(tokens []token.Token, sink *diagnostics.Sink) *Parser {
	return &Parser{
		tokens: tokens, table: symbols.NewParserTable(), ctx: NewControlContext(), sink: sink,
		resolvedStructs:     make(map[string]types.Type),
		resolvedCustomTypes: make(map[string]types.Type),
	}
}

// Table exposes the populated symbol table after Parse returns.
func (p *Parser) Table() *symbols.ParserTable { return p.table }

// ResolvedStructs exposes every struct type resolved during the parse, by
// name, for internal/sema and internal/codegen to consume after Parse
// returns.
func (p *Parser) ResolvedStructs() map[string]types.Type { return p.resolvedStructs }

// Program is the parser's output: the ordered top-level declarations and
// the symbol table the forward pass and main parse both populated.
type Program struct {
	Declarations []ast.Node
	Table        *symbols.ParserTable
}

// Parse runs the two-pass parse of spec section 4.2.1 and returns the
// resulting Program. Parse errors are accumulated into the sink and do not
// stop the parse unless a diagnostic's recovery hits ForceAbort.
func (p *Parser) Parse() Program {
	p.forwardPass()
	p.current = 0

	var decls []ast.Node
	for !p.check(token.Eof) {
		if p.ctx.ForceAbort {
			break
		}
		decl := p.parseTopLevelDeclaration()
		if decl != nil {
			decls = append(decls, decl)
		}
	}
	return Program{Declarations: decls, Table: p.table}
}

// --- token stream primitives ---

func (p *Parser) peek() token.Token { return p.tokens[p.current] }

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atEnd() bool { return p.peek().Kind == token.Eof }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of kind k or records a diagnostic and returns the
// current token unconsumed, letting the caller decide whether to abort the
// current production or synchronize.
func (p *Parser) expect(k token.Kind, code, message string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.sink.Errorf(code, p.peek().Span, "%s (got %q)", message, p.peek().Lexeme)
	return p.peek(), false
}

func (p *Parser) spanFrom(start token.Token) span.Span {
	return span.Merge(start.Span, p.previous().Span)
}

// stripQuotes removes the surrounding double quotes a Str token's Lexeme
// still carries (unlike its Bytes, which the lexer already decodes).
func stripQuotes(lexeme string) string {
	if len(lexeme) >= 2 {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
