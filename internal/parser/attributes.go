package parser

import (
	"strings"

	"github.com/samber/lo"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/token"
)

// unitAttributes maps an attribute keyword with no payload to its
// ast.AttributeKind, for the common case in buildAttributes's loop.
var unitAttributes = map[token.Kind]ast.AttributeKind{
	token.AttrPublic:         ast.AttrPublic,
	token.AttrIgnore:         ast.AttrIgnore,
	token.AttrHot:            ast.AttrHot,
	token.AttrInline:         ast.AttrInlineHint,
	token.AttrAlwaysInline:   ast.AttrAlwaysInline,
	token.AttrNoInline:       ast.AttrNoInline,
	token.AttrMinSize:        ast.AttrMinSize,
	token.AttrSafeStack:      ast.AttrSafeStack,
	token.AttrWeakStack:      ast.AttrWeakStack,
	token.AttrStrongStack:    ast.AttrStrongStack,
	token.AttrPreciseFp:      ast.AttrPreciseFloats,
	token.AttrPacked:         ast.AttrPacked,
	token.AttrNoUnwind:       ast.AttrNoUnwind,
	token.AttrStack:          ast.AttrStack,
	token.AttrHeap:           ast.AttrHeap,
	token.AttrAsmAlignStack:  ast.AttrAsmAlignStack,
	token.AttrAsmThrow:       ast.AttrAsmThrow,
	token.AttrAsmSideEffects: ast.AttrAsmSideEffects,
	token.AttrConstructor:    ast.AttrConstructor,
	token.AttrDestructor:     ast.AttrDestructor,
	token.AttrOptFuzzing:     ast.AttrOptFuzzing,
}

// payloadAttributes maps a payload-bearing attribute keyword
// (`@extern("name")`, `@convention("name")`, `@linkage("name")`,
// `@asmsyntax("Intel"|"AT&T")`) to its ast.AttributeKind.
var payloadAttributes = map[token.Kind]ast.AttributeKind{
	token.AttrExtern:    ast.AttrExtern,
	token.AttrConvention: ast.AttrConvention,
	token.AttrLinkage:    ast.AttrLinkage,
	token.AttrAsmSyntax:  ast.AttrAsmSyntax,
}

// buildAttributes loops while the peek token is not in limitTokens,
// recognizing attribute keywords and their payloads (spec section 4.2.4).
// Unknown tokens end the loop without consuming them, letting the caller's
// grammar continue (e.g. into a function body's `{`).
func (p *Parser) buildAttributes(limitTokens ...token.Kind) ast.AttributeList {
	var attrs ast.AttributeList
	for !p.atEnd() && !lo.Contains(limitTokens, p.peek().Kind) {
		tok := p.peek()

		if kind, ok := unitAttributes[tok.Kind]; ok {
			p.advance()
			attrs = append(attrs, ast.Attribute{Kind: kind, Span: tok.Span})
			continue
		}
		if kind, ok := payloadAttributes[tok.Kind]; ok {
			p.advance()
			payload := p.parseAttributePayload(tok)
			attrs = append(attrs, ast.Attribute{Kind: kind, Payload: payload, Span: p.spanFrom(tok)})
			continue
		}
		// Not a recognized attribute keyword: stop without consuming it.
		break
	}
	p.lintAttributes(attrs)
	return attrs
}

// parseAttributePayload parses the `("literal")` payload following a
// payload-bearing attribute keyword. A missing or malformed payload is an
// error (spec section 4.2.4); parsing continues with an empty payload.
func (p *Parser) parseAttributePayload(owner token.Token) string {
	if _, ok := p.expect(token.LeftParen, "E0300", "expected '(' after @"+strings.TrimPrefix(owner.Lexeme, "@")); !ok {
		return ""
	}
	str, ok := p.expect(token.Str, "E0301", "expected a string literal attribute payload")
	p.expect(token.RightParen, "E0302", "expected ')' to close attribute payload")
	if !ok {
		return ""
	}
	return stripQuotes(str.Lexeme)
}

// lintAttributes implements spec section 4.3.3's cross-attribute
// consistency checks: mutually exclusive attribute combinations are
// reported as warnings (never fatal).
func (p *Parser) lintAttributes(attrs ast.AttributeList) {
	exclusivePairs := [][2]ast.AttributeKind{
		{ast.AttrAlwaysInline, ast.AttrNoInline},
		{ast.AttrInlineHint, ast.AttrNoInline},
		{ast.AttrAlwaysInline, ast.AttrMinSize},
		{ast.AttrHot, ast.AttrMinSize},
		{ast.AttrSafeStack, ast.AttrStrongStack},
		{ast.AttrWeakStack, ast.AttrStrongStack},
		{ast.AttrWeakStack, ast.AttrSafeStack},
	}
	for _, pair := range exclusivePairs {
		if attrs.Has(pair[0]) && attrs.Has(pair[1]) {
			a, _ := attrs.Find(pair[0])
			p.sink.Warnf("W0400", a.Span, "mutually exclusive attributes used together")
		}
	}
}
