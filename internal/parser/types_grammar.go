package parser

import (
	"github.com/thrushlang/thrushc/internal/token"
	"github.com/thrushlang/thrushc/internal/types"
)

// parseType implements spec section 4.2.3's type grammar: qualifiers,
// primitives, recursive pointer types, fixed/dynamic arrays, function
// references, and custom-type/struct-name resolution through the symbol
// table.
func (p *Parser) parseType() types.Type {
	start := p.peek()

	if p.match(token.KwMut) {
		inner := p.parseType()
		return types.MutOf(inner).WithSpan(p.spanFrom(start))
	}
	if p.match(token.KwConst) {
		inner := p.parseType()
		return types.ConstOf(inner).WithSpan(p.spanFrom(start))
	}

	if token.IsTypeKeyword(p.peek().Kind) {
		return p.parsePrimitiveType()
	}

	switch {
	case p.match(token.KwPtr):
		if p.match(token.LeftBracket) {
			inner := p.parseType()
			p.expect(token.RightBracket, "E0200", "expected ']' to close pointer element type")
			return types.Ptr(&inner).WithSpan(p.spanFrom(start))
		}
		return types.Ptr(nil).WithSpan(p.spanFrom(start))

	case p.match(token.KwAddr):
		return types.Addr().WithSpan(p.spanFrom(start))

	case p.match(token.KwArray):
		p.expect(token.LeftBracket, "E0201", "expected '[' after 'array'")
		inner := p.parseType()
		p.expect(token.RightBracket, "E0202", "expected ']' to close array element type")
		return types.Array(inner).WithSpan(p.spanFrom(start))

	case p.match(token.LeftBracket):
		inner := p.parseType()
		p.expect(token.SemiColon, "E0203", "expected ';' in fixed array type")
		lenTok, _ := p.expect(token.Integer, "E0204", "expected an integer array length")
		length := parseUintLiteral(lenTok.Lexeme)
		p.expect(token.RightBracket, "E0205", "expected ']' to close fixed array type")
		return types.FixedArray(inner, length).WithSpan(p.spanFrom(start))

	case p.match(token.KwFnRef):
		p.expect(token.LeftBracket, "E0206", "expected '[' after 'fnref'")
		var params []types.Type
		for !p.check(token.RightBracket) && !p.atEnd() {
			params = append(params, p.parseType())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RightBracket, "E0207", "expected ']' to close fnref parameter list")
		p.expect(token.Arrow, "E0208", "expected '->' before fnref return type")
		ret := p.parseType()
		return types.Fn(params, ret, types.FnModificator{}).WithSpan(p.spanFrom(start))

	case p.check(token.Identifier):
		return p.parseIdentifierType(start)

	default:
		p.sink.Errorf("E0209", p.peek().Span, "expected a type, got %q", p.peek().Lexeme)
		p.advance()
		return types.Void().WithSpan(p.spanFrom(start))
	}
}

func (p *Parser) parsePrimitiveType() types.Type {
	tok := p.advance()
	var t types.Type
	switch tok.Kind {
	case token.KwS8:
		t = types.S8()
	case token.KwS16:
		t = types.S16()
	case token.KwS32:
		t = types.S32()
	case token.KwS64:
		t = types.S64()
	case token.KwSSize:
		t = types.SSize()
	case token.KwU8:
		t = types.U8()
	case token.KwU16:
		t = types.U16()
	case token.KwU32:
		t = types.U32()
	case token.KwU64:
		t = types.U64()
	case token.KwU128:
		t = types.U128()
	case token.KwUSize:
		t = types.USize()
	case token.KwF32:
		t = types.F32()
	case token.KwF64:
		t = types.F64()
	case token.KwF128:
		t = types.F128()
	case token.KwBool:
		t = types.Bool()
	case token.KwChar:
		t = types.Char()
	case token.KwStr:
		t = types.Str()
	case token.KwVoid:
		t = types.Void()
	}
	return t.WithSpan(tok.Span)
}

// parseIdentifierType resolves a bare identifier in type position: a
// matching struct binds to Type::Struct, a matching custom type expands in
// place, otherwise it's an unresolved-type error (spec section 4.2.3).
func (p *Parser) parseIdentifierType(start token.Token) types.Type {
	name := p.advance()
	found := p.table.Lookup(name.Lexeme)
	switch {
	case found.IsStruct():
		if t, ok := p.resolvedStructs[name.Lexeme]; ok {
			return t.WithSpan(p.spanFrom(start))
		}
		// Forward-referenced struct body not yet recorded: return an opaque
		// named placeholder; the type checker re-resolves named structs by
		// name once every struct body has been visited.
		return types.Struct(name.Lexeme, nil, types.StructModificator{}).WithSpan(p.spanFrom(start))
	case found.IsCustomType():
		if t, ok := p.resolvedCustomTypes[name.Lexeme]; ok {
			return t.WithSpan(p.spanFrom(start))
		}
		return types.Void().WithSpan(p.spanFrom(start))
	default:
		p.sink.Errorf("E0210", name.Span, "unresolved type name %q", name.Lexeme)
		return types.Void().WithSpan(p.spanFrom(start))
	}
}

func parseUintLiteral(lexeme string) uint32 {
	var v uint32
	for i := 0; i < len(lexeme); i++ {
		c := lexeme[i]
		if c < '0' || c > '9' {
			continue
		}
		v = v*10 + uint32(c-'0')
	}
	return v
}
