package parser

import (
	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/token"
	"github.com/thrushlang/thrushc/internal/types"
)

// parseTopLevelDeclaration dispatches on the current token to build one
// top-level declaration (spec section 4.2.5). Names were already registered
// in the forward pass; this pass builds bodies and wires each declaration's
// full type.
func (p *Parser) parseTopLevelDeclaration() ast.Node {
	switch p.peek().Kind {
	case token.KwFn:
		return p.parseFunction()
	case token.KwAsm:
		return p.parseAssemblerFunction()
	case token.KwIntrinsic:
		return p.parseIntrinsic()
	case token.KwStruct:
		return p.parseStructDecl()
	case token.KwEnum:
		return p.parseEnumDecl()
	case token.KwType:
		return p.parseCustomTypeDecl()
	case token.KwConst:
		return p.parseConstDecl()
	case token.KwStatic:
		return p.parseStaticDecl()
	case token.KwImport:
		return p.parseImportDecl()
	default:
		p.sink.Errorf("E0110", p.peek().Span, "expected a top-level declaration, got %q", p.peek().Lexeme)
		p.synchronize(SyncDeclaration)
		return nil
	}
}

func (p *Parser) parseFunction() ast.Node {
	start := p.advance() // 'fn'
	name, _ := p.expect(token.Identifier, "E0111", "expected a function name")

	params := p.parseParameterList()
	retType := p.parseReturnTypeOrVoid()
	attrs := p.buildAttributes(token.LeftBrace, token.SemiColon)

	fn := &ast.Function{
		Name: name.Lexeme, Parameters: params, ReturnType: retType,
		Attributes: attrs, IsEntry: name.Lexeme == "main",
	}

	if p.match(token.SemiColon) {
		fn.Sp = p.spanFrom(start)
		return fn
	}

	restore := p.ctx.EnterFunction(&retType)
	fn.Body = p.parseBlock(params)
	restore()
	fn.Sp = p.spanFrom(start)
	return fn
}

func (p *Parser) parseAssemblerFunction() ast.Node {
	start := p.advance() // 'asm'
	p.match(token.KwFn)
	name, _ := p.expect(token.Identifier, "E0112", "expected an assembler function name")

	params := p.parseParameterList()
	retType := p.parseReturnTypeOrVoid()
	attrs := p.buildAttributes(token.LeftBrace)

	p.expect(token.LeftBrace, "E0113", "expected '{' to open assembler function body")
	asmTok, _ := p.expect(token.Str, "E0114", "expected the assembly text as a string literal")
	p.match(token.Comma)
	var constraints string
	if p.check(token.Str) {
		constraints = stripQuotes(p.advance().Lexeme)
	}
	p.expect(token.RightBrace, "E0115", "expected '}' to close assembler function body")

	asmFn := &ast.AssemblerFunction{
		Name: name.Lexeme, Parameters: params, ReturnType: retType, Attributes: attrs,
		Assembly: stripQuotes(asmTok.Lexeme), Constraints: constraints,
	}
	asmFn.Sp = p.spanFrom(start)
	return asmFn
}

func (p *Parser) parseIntrinsic() ast.Node {
	start := p.advance() // 'intrinsic'
	var external string
	if p.match(token.LeftParen) {
		if p.check(token.Str) {
			external = stripQuotes(p.advance().Lexeme)
		}
		p.expect(token.RightParen, "E0116", "expected ')' after intrinsic external name")
	}
	name, _ := p.expect(token.Identifier, "E0117", "expected an intrinsic name")
	params := p.parseParameterList()
	retType := p.parseReturnTypeOrVoid()
	p.expect(token.SemiColon, "E0118", "expected ';' after intrinsic declaration")

	intr := &ast.Intrinsic{
		ExternalName: external, Name: name.Lexeme, Parameters: params, ReturnType: retType,
	}
	intr.Sp = p.spanFrom(start)
	return intr
}

func (p *Parser) parseParameterList() []*ast.FunctionParameter {
	p.expect(token.LeftParen, "E0120", "expected '(' to open parameter list")
	var params []*ast.FunctionParameter
	for !p.check(token.RightParen) && !p.atEnd() {
		pStart := p.peek()
		mutable := p.match(token.KwMut)
		pname, _ := p.expect(token.Identifier, "E0121", "expected a parameter name")
		p.expect(token.Colon, "E0122", "expected ':' before parameter type")
		ptype := p.parseType()
		param := &ast.FunctionParameter{
			Name: pname.Lexeme, Type: ptype, Position: len(params),
			Metadata: ast.FunctionParameterMetadata{IsMutable: mutable},
		}
		param.Sp = p.spanFrom(pStart)
		params = append(params, param)
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightParen, "E0123", "expected ')' to close parameter list")
	return params
}

// parseReturnTypeOrVoid parses the return-type expression following a
// parameter list. Per spec section 4.2.5, an immediate `{`, `;`, or
// attribute keyword means no explicit return type was written, and the
// declaration returns void.
func (p *Parser) parseReturnTypeOrVoid() types.Type {
	if p.isAttributeStart(p.peek().Kind) || p.check(token.LeftBrace) || p.check(token.SemiColon) {
		return types.Void()
	}
	return p.parseType()
}

// isAttributeStart reports whether k begins an attribute keyword, letting
// callers that look ahead past an optional return type treat it as absent.
func (p *Parser) isAttributeStart(k token.Kind) bool {
	if _, ok := unitAttributes[k]; ok {
		return true
	}
	_, ok := payloadAttributes[k]
	return ok
}

func (p *Parser) parseStructDecl() ast.Node {
	start := p.advance() // 'struct'
	name, _ := p.expect(token.Identifier, "E0130", "expected a struct name")
	attrs := p.buildAttributes(token.LeftBrace)
	p.expect(token.LeftBrace, "E0131", "expected '{' to open struct body")

	var fields []types.StructField
	for !p.check(token.RightBrace) && !p.atEnd() {
		fname, _ := p.expect(token.Identifier, "E0132", "expected a field name")
		p.expect(token.Colon, "E0133", "expected ':' before field type")
		ftype := p.parseType()
		fields = append(fields, types.StructField{Name: fname.Lexeme, Type: ftype})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightBrace, "E0134", "expected '}' to close struct body")

	meta := types.StructModificator{Packed: attrs.Has(ast.AttrPacked)}
	p.resolvedStructs[name.Lexeme] = types.Struct(name.Lexeme, fields, meta)

	decl := &ast.StructDecl{
		Name: name.Lexeme, Fields: fields, Attributes: attrs,
	}
	decl.Sp = p.spanFrom(start)
	return decl
}

func (p *Parser) parseEnumDecl() ast.Node {
	start := p.advance() // 'enum'
	name, _ := p.expect(token.Identifier, "E0140", "expected an enum name")
	p.expect(token.LeftBrace, "E0141", "expected '{' to open enum body")

	var variants []ast.EnumVariant
	for !p.check(token.RightBrace) && !p.atEnd() {
		vname, _ := p.expect(token.Identifier, "E0142", "expected an enum variant name")
		vtype := types.S32()
		if p.match(token.Colon) {
			vtype = p.parseType()
		}
		var value ast.Expr
		if p.match(token.Equal) {
			value = p.parseExpression()
		}
		variants = append(variants, ast.EnumVariant{Name: vname.Lexeme, Type: vtype, Value: value})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightBrace, "E0143", "expected '}' to close enum body")

	enumDecl := &ast.EnumDecl{Name: name.Lexeme, Variants: variants}
	enumDecl.Sp = p.spanFrom(start)
	return enumDecl
}

func (p *Parser) parseCustomTypeDecl() ast.Node {
	start := p.advance() // 'type'
	name, _ := p.expect(token.Identifier, "E0150", "expected a type name")
	p.expect(token.Equal, "E0151", "expected '=' in type alias declaration")
	underlying := p.parseType()
	p.expect(token.SemiColon, "E0152", "expected ';' after type alias declaration")

	p.resolvedCustomTypes[name.Lexeme] = underlying

	custom := &ast.CustomType{Name: name.Lexeme, Underlying: underlying}
	custom.Sp = p.spanFrom(start)
	return custom
}

func (p *Parser) parseConstDecl() ast.Node {
	start := p.advance() // 'const'
	threadLocal := p.match(token.KwLazyThread)
	name, _ := p.expect(token.Identifier, "E0160", "expected a constant name")
	p.expect(token.Colon, "E0161", "expected ':' before constant type")
	ctype := p.parseType()
	attrs := p.buildAttributes(token.Equal, token.SemiColon)
	p.expect(token.Equal, "E0162", "expected '=' in constant declaration")
	value := p.parseExpression()
	p.expect(token.SemiColon, "E0163", "expected ';' after constant declaration")

	constDecl := &ast.ConstDecl{
		Name: name.Lexeme, Type: ctype, Value: value, Attributes: attrs,
		Metadata: ast.ConstantMetadata{ThreadLocal: threadLocal},
	}
	constDecl.Sp = p.spanFrom(start)
	return constDecl
}

func (p *Parser) parseStaticDecl() ast.Node {
	start := p.advance() // 'static'
	mutable := p.match(token.KwMut)
	threadLocal := p.match(token.KwLazyThread)
	volatile := p.match(token.KwVolatile)
	atomic := p.match(token.KwAtomic)

	var threadMode ast.ThreadMode
	if p.match(token.KwThreadMode) {
		p.expect(token.LeftParen, "E0170", "expected '(' after threadmode")
		mtok, _ := p.expect(token.Str, "E0171", "expected a thread mode string literal")
		threadMode = parseThreadMode(mtok.Lexeme)
		p.expect(token.RightParen, "E0172", "expected ')' to close threadmode")
	}

	name, _ := p.expect(token.Identifier, "E0173", "expected a static name")
	p.expect(token.Colon, "E0174", "expected ':' before static type")
	stype := p.parseType()
	attrs := p.buildAttributes(token.Equal, token.SemiColon)

	var value ast.Expr
	undefined := true
	if p.match(token.Equal) {
		value = p.parseExpression()
		undefined = false
	}
	p.expect(token.SemiColon, "E0175", "expected ';' after static declaration")

	order := ast.AtomicNone
	if atomic {
		order = ast.AtomicSeqCst
	}

	staticDecl := &ast.Static{
		Name: name.Lexeme, Type: stype, Value: value, Attributes: attrs,
		Metadata: ast.StaticMetadata{
			IsGlobal: true, IsMutable: mutable, IsUndefined: undefined,
			ThreadLocal: threadLocal, IsVolatile: volatile,
			IsExternal: attrs.Has(ast.AttrExtern), AtomicOrder: order, ThreadMode: threadMode,
		},
	}
	staticDecl.Sp = p.spanFrom(start)
	return staticDecl
}

// parseImportDecl parses `import "header.h" as name;` (spec section 4.2.8's
// C header import). The parsed path and alias are recorded as a CustomType
// placeholder; no later stage reads the header, so its declarations are not
// brought into scope (internal/cimport.Import is not called by the parser
// or the driver).
func (p *Parser) parseImportDecl() ast.Node {
	start := p.advance() // 'import'
	pathTok, _ := p.expect(token.Str, "E0180", "expected a header path string literal")
	p.expect(token.As, "E0181", "expected 'as' after header path")
	alias, _ := p.expect(token.Identifier, "E0182", "expected an import alias name")
	p.expect(token.SemiColon, "E0183", "expected ';' after import declaration")

	p.declareForward(alias.Lexeme, symbolsKindCustomType, alias.Span)
	imported := &ast.CustomType{Name: alias.Lexeme, Underlying: types.Void(), HeaderPath: stripQuotes(pathTok.Lexeme)}
	imported.Sp = p.spanFrom(start)
	return imported
}

func parseThreadMode(lexeme string) ast.ThreadMode {
	switch stripQuotes(lexeme) {
	case "localdynamic":
		return ast.ThreadModeLocalDynamic
	case "initialexec":
		return ast.ThreadModeInitialExec
	case "localexec":
		return ast.ThreadModeLocalExec
	default:
		return ast.ThreadModeNone
	}
}
