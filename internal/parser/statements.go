package parser

import (
	"github.com/thrushlang/thrushc/internal/ast"
	"github.com/thrushlang/thrushc/internal/token"
)

// parseBlock parses `{ statement* }`, pushing a fresh scope onto both the
// symbol table and (when params is non-nil) declaring each parameter as a
// local of that scope before any statement is parsed (spec section 4.2.6).
func (p *Parser) parseBlock(params []*ast.FunctionParameter) *ast.Block {
	start, _ := p.expect(token.LeftBrace, "E0220", "expected '{' to open a block")
	p.table.BeginScope()
	defer p.table.EndScope()

	for _, param := range params {
		p.declareForward(param.Name, symbolsKindParameter, param.Sp)
	}

	var stmts []ast.Node
	for !p.check(token.RightBrace) && !p.atEnd() {
		if p.ctx.ForceAbort {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RightBrace, "E0221", "expected '}' to close a block")

	block := &ast.Block{Statements: stmts}
	block.Sp = p.spanFrom(start)
	return block
}

// parseStatement dispatches on the current token to build one statement
// (spec section 4.2.6). A bare expression statement is the fallback case.
func (p *Parser) parseStatement() ast.Node {
	switch p.peek().Kind {
	case token.LeftBrace:
		return p.parseBlock(nil)
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwLoop:
		return p.parseLoop()
	case token.KwBreak:
		return p.parseBreak()
	case token.KwContinue:
		return p.parseContinue()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwPass:
		return p.parsePass()
	case token.KwUnreachable:
		return p.parseUnreachable()
	case token.Identifier:
		if p.isLocalDeclaration() {
			return p.parseLocal()
		}
		return p.parseExprStatement()
	case token.KwMut:
		return p.parseLocal()
	default:
		return p.parseExprStatement()
	}
}

// isLocalDeclaration peeks past a bare identifier to see whether it
// introduces `name: type (= expr)?;`, distinguishing a local declaration
// from an expression statement starting with a reference or call.
func (p *Parser) isLocalDeclaration() bool {
	return p.peekAt(1).Kind == token.Colon
}

func (p *Parser) parseLocal() ast.Node {
	start := p.peek()
	mutable := p.match(token.KwMut)
	name, _ := p.expect(token.Identifier, "E0230", "expected a local name")
	p.expect(token.Colon, "E0231", "expected ':' before local type")
	ltype := p.parseType()

	var value ast.Expr
	undefined := true
	if p.match(token.Equal) {
		value = p.parseExpression()
		undefined = false
	}
	p.expect(token.SemiColon, "E0232", "expected ';' after local declaration")

	p.declareForward(name.Lexeme, symbolsKindLocal, name.Span)

	local := &ast.Local{
		Name: name.Lexeme, Type: ltype, Value: value,
		Metadata: ast.LocalMetadata{IsMutable: mutable, IsUndefined: undefined},
	}
	local.Sp = p.spanFrom(start)
	return local
}

func (p *Parser) parseIf() ast.Node {
	start := p.advance() // 'if'
	cond := p.parseExpression()
	then := p.parseBlock(nil)

	ifStmt := &ast.If{Condition: cond, Then: then}
	for p.check(token.KwElif) {
		elifStart := p.advance()
		elifCond := p.parseExpression()
		elifBody := p.parseBlock(nil)
		elif := &ast.Elif{Condition: elifCond, Body: elifBody}
		elif.Sp = p.spanFrom(elifStart)
		ifStmt.Elifs = append(ifStmt.Elifs, elif)
	}
	if p.match(token.KwElse) {
		ifStmt.Else = p.parseBlock(nil)
	}
	ifStmt.Sp = p.spanFrom(start)
	return ifStmt
}

// parseFor parses the C-style `for (init; cond; action) { body }`. Action
// may be a prefix or postfix increment/decrement, or an assignment
// expression; UnaryActionIsPre records which (spec section 4.2.2).
func (p *Parser) parseFor() ast.Node {
	start := p.advance() // 'for'
	p.expect(token.LeftParen, "E0240", "expected '(' after 'for'")

	p.table.BeginScope()
	defer p.table.EndScope()

	initLocal, _ := p.parseLocal().(*ast.Local)
	cond := p.parseExpression()
	p.expect(token.SemiColon, "E0241", "expected ';' after for condition")

	isPre := p.check(token.PlusPlus) || p.check(token.MinusMinus)
	action := p.parseExpression()
	p.expect(token.RightParen, "E0242", "expected ')' to close for clauses")

	restore := p.ctx.EnterLoop()
	body := p.parseBlock(nil)
	restore()

	forStmt := &ast.For{
		Init: initLocal, Condition: cond, Action: action,
		UnaryActionIsPre: isPre, Body: body,
	}
	forStmt.Sp = p.spanFrom(start)
	return forStmt
}

func (p *Parser) parseWhile() ast.Node {
	start := p.advance() // 'while'
	cond := p.parseExpression()
	restore := p.ctx.EnterLoop()
	body := p.parseBlock(nil)
	restore()

	whileStmt := &ast.While{Condition: cond, Body: body}
	whileStmt.Sp = p.spanFrom(start)
	return whileStmt
}

func (p *Parser) parseLoop() ast.Node {
	start := p.advance() // 'loop'
	restore := p.ctx.EnterLoop()
	body := p.parseBlock(nil)
	restore()

	loopStmt := &ast.Loop{Body: body}
	loopStmt.Sp = p.spanFrom(start)
	return loopStmt
}

func (p *Parser) parseBreak() ast.Node {
	start := p.advance()
	if p.ctx.InsideLoop == 0 {
		p.sink.Errorf("E0250", start.Span, "'break' outside a loop")
	}
	p.expect(token.SemiColon, "E0251", "expected ';' after 'break'")
	brk := &ast.Break{}
	brk.Sp = p.spanFrom(start)
	return brk
}

func (p *Parser) parseContinue() ast.Node {
	start := p.advance()
	if p.ctx.InsideLoop == 0 {
		p.sink.Errorf("E0252", start.Span, "'continue' outside a loop")
	}
	p.expect(token.SemiColon, "E0253", "expected ';' after 'continue'")
	cont := &ast.Continue{}
	cont.Sp = p.spanFrom(start)
	return cont
}

func (p *Parser) parseReturn() ast.Node {
	start := p.advance()
	if p.ctx.InsideFunction == 0 {
		p.sink.Errorf("E0254", start.Span, "'return' outside a function")
	}
	var value ast.Expr
	if !p.check(token.SemiColon) {
		value = p.parseExpression()
	}
	p.expect(token.SemiColon, "E0255", "expected ';' after 'return'")
	ret := &ast.Return{Value: value}
	ret.Sp = p.spanFrom(start)
	return ret
}

func (p *Parser) parsePass() ast.Node {
	start := p.advance()
	p.expect(token.SemiColon, "E0256", "expected ';' after 'pass'")
	pass := &ast.Pass{}
	pass.Sp = p.spanFrom(start)
	return pass
}

func (p *Parser) parseUnreachable() ast.Node {
	start := p.advance()
	p.expect(token.SemiColon, "E0257", "expected ';' after 'unreachable'")
	unreach := &ast.Unreachable{}
	unreach.Sp = p.spanFrom(start)
	return unreach
}

func (p *Parser) parseExprStatement() ast.Node {
	start := p.peek()
	expr := p.parseExpression()
	p.expect(token.SemiColon, "E0258", "expected ';' after expression statement")
	stmt := &ast.ExprStmt{Expr: expr}
	stmt.Sp = p.spanFrom(start)
	return stmt
}
