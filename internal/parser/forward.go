package parser

import "github.com/thrushlang/thrushc/internal/token"

// forwardPass sweeps the entire token stream once to register every
// top-level declaration (struct, enum, type, fn, asm fn, intrinsic, const,
// static) in the symbol table without parsing bodies, tracking brace depth
// to skip over function/struct bodies (spec section 4.2.1). Duplicate names
// at the same scope are recorded as diagnostics but never abort the sweep,
// so out-of-order references (spec section 8 scenario 6) are visible to the
// main parse regardless of source order.
func (p *Parser) forwardPass() {
	for !p.atEnd() {
		tok := p.peek()
		switch tok.Kind {
		case token.KwFn:
			p.forwardFunction()
		case token.KwAsm:
			p.forwardAssemblerFunction()
		case token.KwIntrinsic:
			p.forwardIntrinsic()
		case token.KwStruct:
			p.forwardStruct()
		case token.KwEnum:
			p.forwardEnum()
		case token.KwType:
			p.forwardCustomType()
		case token.KwConst:
			p.forwardNamed(token.KwConst, symbolsKindConst)
		case token.KwStatic:
			p.forwardNamed(token.KwStatic, symbolsKindStatic)
		default:
			p.advance()
		}
	}
}

// forwardFunction registers `fn name(...)`'s name, then skips attributes
// and the body by brace-depth tracking (or a terminating `;` for a bodyless
// @extern declaration).
func (p *Parser) forwardFunction() {
	p.advance() // 'fn'
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindFunction, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardAssemblerFunction() {
	p.advance() // 'asm'
	if p.check(token.KwFn) {
		p.advance()
	}
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindAsmFunction, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardIntrinsic() {
	p.advance() // 'intrinsic'
	// intrinsic("external_name") name(params) ret;
	if p.check(token.LeftParen) {
		p.skipBalanced(token.LeftParen, token.RightParen)
	}
	if !p.check(token.Identifier) {
		p.skipToBodyOrSemicolon()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindIntrinsic, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardStruct() {
	p.advance() // 'struct'
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindStruct, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardEnum() {
	p.advance() // 'enum'
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindEnum, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardCustomType() {
	p.advance() // 'type'
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, symbolsKindCustomType, name.Span)
	p.skipToBodyOrSemicolon()
}

func (p *Parser) forwardNamed(introducer token.Kind, kind symbolKind) {
	p.advance() // introducer keyword
	// skip qualifier keywords (mut, lazythread, volatile, atomic, threadmode)
	for p.check(token.KwMut) || p.check(token.KwLazyThread) || p.check(token.KwVolatile) ||
		p.check(token.KwAtomic) || p.check(token.KwThreadMode) {
		p.advance()
	}
	if !p.check(token.Identifier) {
		p.advance()
		return
	}
	name := p.advance()
	p.declareForward(name.Lexeme, kind, name.Span)
	p.skipToBodyOrSemicolon()
}

// skipToBodyOrSemicolon advances past whatever remains of the current
// top-level declaration: a balanced `{ ... }` body if one follows, or up to
// and including a terminating `;`.
func (p *Parser) skipToBodyOrSemicolon() {
	for !p.atEnd() && !p.check(token.LeftBrace) && !p.check(token.SemiColon) {
		p.advance()
	}
	if p.check(token.LeftBrace) {
		p.skipBalanced(token.LeftBrace, token.RightBrace)
		return
	}
	if p.check(token.SemiColon) {
		p.advance()
	}
}

// skipBalanced advances past a balanced open/close token pair, tracking
// nesting depth so inner braces/parens inside a body don't terminate early.
func (p *Parser) skipBalanced(open, close token.Kind) {
	if !p.check(open) {
		return
	}
	depth := 0
	for !p.atEnd() {
		if p.check(open) {
			depth++
		} else if p.check(close) {
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
