package parser

import (
	"strconv"
	"strings"

	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/lexer"
	"github.com/thrushlang/thrushc/internal/token"
	"github.com/thrushlang/thrushc/internal/types"
)

// parseExpression is the grammar's entry point: assignment has the lowest
// precedence (spec section 4.2.2).
func (p *Parser) parseExpression() ast.Expr {
	p.ctx.ExpressionDepth++
	defer func() { p.ctx.ExpressionDepth-- }()
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	start := p.peek()
	left := p.parseLogicalOr()

	var op ast.BinaryOperator
	switch {
	case p.match(token.Equal):
		op = ast.OpAssign
	case p.match(token.PlusEqual):
		op = ast.OpAddAssign
	case p.match(token.MinusEqual):
		op = ast.OpSubAssign
	default:
		return left
	}
	right := p.parseAssignment()
	return p.newBinary(start, op, left, right)
}

func (p *Parser) parseLogicalOr() ast.Expr {
	start := p.peek()
	left := p.parseLogicalAnd()
	for p.match(token.OrOr) {
		right := p.parseLogicalAnd()
		left = p.newBinary(start, ast.OpOr, left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	start := p.peek()
	left := p.parseBitOr()
	for p.match(token.AndAnd) {
		right := p.parseBitOr()
		left = p.newBinary(start, ast.OpAnd, left, right)
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expr {
	start := p.peek()
	left := p.parseBitXor()
	for p.match(token.Pipe) {
		right := p.parseBitXor()
		left = p.newBinary(start, ast.OpBitOr, left, right)
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	start := p.peek()
	left := p.parseBitAnd()
	for p.match(token.Caret) {
		right := p.parseBitAnd()
		left = p.newBinary(start, ast.OpBitXor, left, right)
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	start := p.peek()
	left := p.parseEquality()
	for p.match(token.Amp) {
		right := p.parseEquality()
		left = p.newBinary(start, ast.OpBitAnd, left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	start := p.peek()
	left := p.parseComparison()
	for {
		var op ast.BinaryOperator
		switch {
		case p.match(token.EqualEqual):
			op = ast.OpEq
		case p.match(token.BangEqual):
			op = ast.OpNe
		default:
			return left
		}
		right := p.parseComparison()
		left = p.newBinary(start, op, left, right)
	}
}

func (p *Parser) parseComparison() ast.Expr {
	start := p.peek()
	left := p.parseShift()
	for {
		var op ast.BinaryOperator
		switch {
		case p.match(token.Less):
			op = ast.OpLt
		case p.match(token.LessEqual):
			op = ast.OpLe
		case p.match(token.Greater):
			op = ast.OpGt
		case p.match(token.GreaterEqual):
			op = ast.OpGe
		default:
			return left
		}
		right := p.parseShift()
		left = p.newBinary(start, op, left, right)
	}
}

func (p *Parser) parseShift() ast.Expr {
	start := p.peek()
	left := p.parseAdditive()
	for {
		var op ast.BinaryOperator
		switch {
		case p.match(token.ShiftLeft):
			op = ast.OpShl
		case p.match(token.ShiftRight):
			op = ast.OpShr
		default:
			return left
		}
		right := p.parseAdditive()
		left = p.newBinary(start, op, left, right)
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	start := p.peek()
	left := p.parseMultiplicative()
	for {
		var op ast.BinaryOperator
		switch {
		case p.match(token.Plus):
			op = ast.OpAdd
		case p.match(token.Minus):
			op = ast.OpSub
		default:
			return left
		}
		right := p.parseMultiplicative()
		left = p.newBinary(start, op, left, right)
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	start := p.peek()
	left := p.parseCast()
	for {
		var op ast.BinaryOperator
		switch {
		case p.match(token.Star):
			op = ast.OpMul
		case p.match(token.Slash):
			op = ast.OpDiv
		case p.match(token.Percent):
			op = ast.OpMod
		default:
			return left
		}
		right := p.parseCast()
		left = p.newBinary(start, op, left, right)
	}
}

// parseCast handles the postfix `expr as type` cast (spec section 4.2.2).
func (p *Parser) parseCast() ast.Expr {
	start := p.peek()
	expr := p.parseUnary()
	for p.match(token.As) {
		castTo := p.parseType()
		as := &ast.As{Expr: expr, CastTo: castTo}
		as.Sp = p.spanFrom(start)
		as.SetType(castTo)
		expr = as
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.peek()
	switch {
	case p.match(token.Minus):
		inner := p.parseUnary()
		u := &ast.UnaryOp{Operator: ast.UnaryNeg, Expression: inner}
		u.Sp = p.spanFrom(start)
		return u
	case p.match(token.Bang):
		inner := p.parseUnary()
		u := &ast.UnaryOp{Operator: ast.UnaryNot, Expression: inner}
		u.Sp = p.spanFrom(start)
		u.SetType(types.Bool())
		return u
	case p.match(token.Tilde):
		inner := p.parseUnary()
		u := &ast.UnaryOp{Operator: ast.UnaryBitNot, Expression: inner}
		u.Sp = p.spanFrom(start)
		return u
	case p.match(token.PlusPlus):
		inner := p.parseUnary()
		u := &ast.UnaryOp{Operator: ast.UnaryIncrement, Expression: inner, IsPre: true}
		u.Sp = p.spanFrom(start)
		return u
	case p.match(token.MinusMinus):
		inner := p.parseUnary()
		u := &ast.UnaryOp{Operator: ast.UnaryDecrement, Expression: inner, IsPre: true}
		u.Sp = p.spanFrom(start)
		return u
	case p.match(token.Amp):
		inner := p.parseUnary()
		ref := &ast.DirectRef{Expr: inner}
		ref.Sp = p.spanFrom(start)
		return ref
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.peek()
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(token.PlusPlus):
			u := &ast.UnaryOp{Operator: ast.UnaryIncrement, Expression: expr, IsPre: false}
			u.Sp = p.spanFrom(start)
			expr = u
		case p.match(token.MinusMinus):
			u := &ast.UnaryOp{Operator: ast.UnaryDecrement, Expression: expr, IsPre: false}
			u.Sp = p.spanFrom(start)
			expr = u
		case p.check(token.Dot):
			expr = p.parsePropertyChain(start, expr)
		case p.check(token.LeftBracket):
			expr = p.parseIndexChain(start, expr)
		default:
			return expr
		}
	}
}

// parsePropertyChain consumes one or more `.field` steps. The type checker
// resolves each PropertyIndex's Type/Index once the source's struct type is
// known; the parser records only the field names in Names and leaves
// Indexes empty.
func (p *Parser) parsePropertyChain(start token.Token, source ast.Expr) ast.Expr {
	prop := &ast.Property{Source: source}
	for p.match(token.Dot) {
		fname, _ := p.expect(token.Identifier, "E0260", "expected a field name after '.'")
		prop.Names = append(prop.Names, fname.Lexeme)
	}
	prop.Sp = p.spanFrom(start)
	return prop
}

func (p *Parser) parseIndexChain(start token.Token, source ast.Expr) ast.Expr {
	idx := &ast.Index{Source: source, Kind: ast.IndexOnValue}
	for p.match(token.LeftBracket) {
		e := p.parseExpression()
		idx.Indexes = append(idx.Indexes, e)
		p.expect(token.RightBracket, "E0261", "expected ']' to close index expression")
	}
	idx.Sp = p.spanFrom(start)
	return idx
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Integer:
		p.advance()
		return p.parseIntegerLiteral(tok)
	case token.Float:
		p.advance()
		v, _ := strconv.ParseFloat(strings.ReplaceAll(tok.Lexeme, "_", ""), 64)
		return ast.NewFloat(tok.Span, types.F64(), v)
	case token.True:
		p.advance()
		return ast.NewBoolean(tok.Span, true)
	case token.False:
		p.advance()
		return ast.NewBoolean(tok.Span, false)
	case token.NullPtr:
		p.advance()
		n := &ast.NullPtr{}
		n.Sp = tok.Span
		n.SetType(types.Ptr(nil))
		return n
	case token.Str:
		p.advance()
		s := &ast.StrLit{Bytes: tok.Bytes}
		s.Sp = tok.Span
		s.SetType(types.Ptr(nil))
		return s
	case token.Char:
		p.advance()
		var b byte
		if len(tok.Bytes) > 0 {
			b = tok.Bytes[0]
		}
		c := &ast.CharLit{Value: b}
		c.Sp = tok.Span
		c.SetType(types.Char())
		return c
	case token.LeftParen:
		p.advance()
		inner := p.parseExpression()
		p.expect(token.RightParen, "E0262", "expected ')' to close a parenthesized expression")
		g := &ast.Group{Inner: inner}
		g.Sp = p.spanFrom(tok)
		g.SetType(inner.Type())
		return g
	case token.LeftBracket:
		return p.parseArrayLiteral(tok)
	case token.KwNew:
		return p.parseConstructor(tok)
	case token.KwAlloc:
		return p.parseAlloc(tok)
	case token.KwLoad:
		return p.parseLoadExpr(tok)
	case token.KwWrite:
		return p.parseWriteExpr(tok)
	case token.KwAddress:
		return p.parseAddressExpr(tok)
	case token.KwDeref:
		return p.parseDerefExpr(tok)
	case token.KwSizeOf:
		return p.parseBuiltinType(tok, ast.BuiltinSizeOf)
	case token.KwAlignOf:
		return p.parseBuiltinType(tok, ast.BuiltinAlignOf)
	case token.KwMemcpy:
		return p.parseBuiltinArgs(tok, ast.BuiltinMemcpy, 3)
	case token.KwMemmove:
		return p.parseBuiltinArgs(tok, ast.BuiltinMemmove, 3)
	case token.KwMemset:
		return p.parseBuiltinArgs(tok, ast.BuiltinMemset, 3)
	case token.KwAsm:
		return p.parseAsmValue(tok)
	case token.Identifier:
		p.advance()
		if p.check(token.LeftParen) {
			return p.parseCallOrIndirect(tok)
		}
		return p.parseReferenceExpr(tok)
	default:
		p.sink.Errorf("E0263", tok.Span, "expected an expression, got %q", tok.Lexeme)
		p.advance()
		placeholder := &ast.NullPtr{}
		placeholder.Sp = tok.Span
		placeholder.SetType(types.Void())
		return placeholder
	}
}

func (p *Parser) parseReferenceExpr(name token.Token) ast.Expr {
	found := p.table.Lookup(name.Lexeme)
	meta := ast.ReferenceMetadata{
		IsAllocated: found.IsLocal() || found.IsParameter() || found.IsStatic() || found.IsLLI(),
	}
	if !found.IsAny() {
		p.sink.Errorf("E0264", name.Span, "undeclared identifier %q", name.Lexeme)
	}
	return ast.NewReference(name.Span, name.Lexeme, meta)
}

func (p *Parser) parseCallOrIndirect(name token.Token) ast.Expr {
	found := p.table.Lookup(name.Lexeme)
	args := p.parseArgList()

	if found.IsFunction() || found.IsAsmFunction() || found.IsIntrinsic() {
		call := &ast.Call{Callee: name.Lexeme, Args: args}
		call.Sp = p.spanFrom(name)
		return call
	}
	if !found.IsAny() {
		p.sink.Errorf("E0265", name.Span, "undeclared function %q", name.Lexeme)
	}
	ref := ast.NewReference(name.Span, name.Lexeme, ast.ReferenceMetadata{IsAllocated: true})
	indirect := &ast.Indirect{Function: ref, Args: args}
	indirect.Sp = p.spanFrom(name)
	return indirect
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(token.LeftParen, "E0266", "expected '(' to open argument list")
	var args []ast.Expr
	for !p.check(token.RightParen) && !p.atEnd() {
		args = append(args, p.parseExpression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightParen, "E0267", "expected ')' to close argument list")
	return args
}

func (p *Parser) parseArrayLiteral(start token.Token) ast.Expr {
	p.advance() // '['
	fixed := p.check(token.KwFixed)
	if fixed {
		p.advance()
	}
	var elems []ast.Expr
	for !p.check(token.RightBracket) && !p.atEnd() {
		elems = append(elems, p.parseExpression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightBracket, "E0268", "expected ']' to close an array literal")
	if fixed {
		f := &ast.FixedArrayLit{Elements: elems}
		f.Sp = p.spanFrom(start)
		return f
	}
	a := &ast.ArrayLit{Elements: elems}
	a.Sp = p.spanFrom(start)
	return a
}

func (p *Parser) parseConstructor(start token.Token) ast.Expr {
	p.advance() // 'new'
	name, _ := p.expect(token.Identifier, "E0270", "expected a struct name after 'new'")
	p.expect(token.LeftBrace, "E0271", "expected '{' to open a constructor literal")

	var fields []ast.ConstructorField
	for !p.check(token.RightBrace) && !p.atEnd() {
		fname, _ := p.expect(token.Identifier, "E0272", "expected a field name")
		p.expect(token.Colon, "E0273", "expected ':' after constructor field name")
		value := p.parseExpression()
		fields = append(fields, ast.ConstructorField{FieldName: fname.Lexeme, Value: value, Index: len(fields)})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RightBrace, "E0274", "expected '}' to close a constructor literal")

	ctor := &ast.Constructor{StructName: name.Lexeme, Fields: fields}
	ctor.Sp = p.spanFrom(start)
	if t, ok := p.resolvedStructs[name.Lexeme]; ok {
		ctor.SetType(t)
	}
	return ctor
}

func (p *Parser) parseAlloc(start token.Token) ast.Expr {
	p.advance() // 'alloc'
	p.expect(token.LeftBracket, "E0280", "expected '[' after 'alloc'")
	allocType := p.parseType()
	p.expect(token.RightBracket, "E0281", "expected ']' after alloc's type argument")
	heap := p.match(token.KwHalloc)

	alloc := &ast.Alloc{AllocatedType: allocType, Heap: heap}
	alloc.Sp = p.spanFrom(start)
	alloc.SetType(types.Ptr(&allocType))
	return alloc
}

func (p *Parser) parseLoadExpr(start token.Token) ast.Expr {
	p.advance() // 'load'
	p.expect(token.LeftParen, "E0282", "expected '(' after 'load'")
	source := p.parseExpression()
	p.expect(token.RightParen, "E0283", "expected ')' to close 'load'")

	load := &ast.Load{Source: source}
	load.Sp = p.spanFrom(start)
	return load
}

func (p *Parser) parseWriteExpr(start token.Token) ast.Expr {
	p.advance() // 'write'
	p.expect(token.LeftParen, "E0284", "expected '(' after 'write'")
	target := p.parseExpression()
	p.expect(token.Comma, "E0285", "expected ',' between 'write' operands")
	value := p.parseExpression()
	p.expect(token.RightParen, "E0286", "expected ')' to close 'write'")

	write := &ast.Write{Target: target, Value: value}
	write.Sp = p.spanFrom(start)
	write.SetType(types.Void())
	return write
}

func (p *Parser) parseAddressExpr(start token.Token) ast.Expr {
	p.advance() // 'address'
	p.expect(token.LeftParen, "E0287", "expected '(' after 'address'")
	base := p.parseExpression()
	var offsets []ast.Expr
	for p.match(token.Comma) {
		offsets = append(offsets, p.parseExpression())
	}
	p.expect(token.RightParen, "E0288", "expected ')' to close 'address'")

	addr := &ast.Address{Base: base, Offsets: offsets}
	addr.Sp = p.spanFrom(start)
	addr.SetType(types.Addr())
	return addr
}

func (p *Parser) parseDerefExpr(start token.Token) ast.Expr {
	p.advance() // 'deref'
	p.expect(token.LeftParen, "E0289", "expected '(' after 'deref'")
	source := p.parseExpression()
	p.expect(token.RightParen, "E0290", "expected ')' to close 'deref'")

	deref := &ast.Deref{Source: source}
	deref.Sp = p.spanFrom(start)
	return deref
}

func (p *Parser) parseBuiltinType(start token.Token, which ast.BuiltinKind) ast.Expr {
	p.advance()
	p.expect(token.LeftBracket, "E0291", "expected '[' after builtin keyword")
	t := p.parseType()
	p.expect(token.RightBracket, "E0292", "expected ']' after builtin's type argument")

	b := &ast.Builtin{Which: which, TypeArg: &t}
	b.Sp = p.spanFrom(start)
	b.SetType(types.USize())
	return b
}

func (p *Parser) parseBuiltinArgs(start token.Token, which ast.BuiltinKind, arity int) ast.Expr {
	p.advance()
	args := p.parseArgList()
	if len(args) != arity {
		p.sink.Errorf("E0293", start.Span, "expected %d arguments to this builtin, got %d", arity, len(args))
	}

	b := &ast.Builtin{Which: which, Args: args}
	b.Sp = p.spanFrom(start)
	b.SetType(types.Void())
	return b
}

func (p *Parser) parseAsmValue(start token.Token) ast.Expr {
	p.advance() // 'asm'
	p.expect(token.LeftBrace, "E0294", "expected '{' to open an asm expression")
	asmTok, _ := p.expect(token.Str, "E0295", "expected assembly text as a string literal")
	var constraints string
	if p.match(token.Comma) {
		ctok, _ := p.expect(token.Str, "E0296", "expected operand constraints as a string literal")
		constraints = stripQuotes(ctok.Lexeme)
	}
	var args []ast.Expr
	for p.match(token.Comma) {
		args = append(args, p.parseExpression())
	}
	p.expect(token.RightBrace, "E0297", "expected '}' to close an asm expression")

	asmVal := &ast.AsmValue{Assembly: stripQuotes(asmTok.Lexeme), Constraints: constraints, Args: args}
	asmVal.Sp = p.spanFrom(start)
	return asmVal
}

func (p *Parser) newBinary(start token.Token, op ast.BinaryOperator, left, right ast.Expr) ast.Expr {
	bin := &ast.BinaryOp{Operator: op, Left: left, Right: right}
	bin.Sp = p.spanFrom(start)
	switch op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe, ast.OpAnd, ast.OpOr:
		bin.SetType(types.Bool())
	}
	return bin
}

// parseIntegerLiteral classifies an integer token's smallest containing
// width using the same table the lexer exposes (spec section 4.1), so the
// literal's static type is fixed at parse time rather than deferred.
func (p *Parser) parseIntegerLiteral(tok token.Token) ast.Expr {
	lexeme := strings.ReplaceAll(tok.Lexeme, "_", "")
	base := 10
	digits := lexeme
	switch {
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		base, digits = 16, lexeme[2:]
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		base, digits = 2, lexeme[2:]
	case strings.HasPrefix(lexeme, "0o") || strings.HasPrefix(lexeme, "0O"):
		base, digits = 8, lexeme[2:]
	}

	v, err := strconv.ParseInt(digits, base, 64)
	unsigned := false
	if err != nil {
		if uv, uerr := strconv.ParseUint(digits, base, 64); uerr == nil {
			v, unsigned = int64(uv), true
		}
	}

	width := lexer.ClassifyWidth(v, unsigned)
	return ast.NewInteger(tok.Span, widthType(width), v, unsigned)
}

func widthType(width string) types.Type {
	switch width {
	case "s8":
		return types.S8()
	case "s16":
		return types.S16()
	case "s32":
		return types.S32()
	case "s64":
		return types.S64()
	case "u8":
		return types.U8()
	case "u16":
		return types.U16()
	case "u32":
		return types.U32()
	default:
		return types.U64()
	}
}
