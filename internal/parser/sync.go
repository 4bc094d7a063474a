package parser

import "github.com/thrushlang/thrushc/internal/token"

// declarationStarts are the tokens that can legally begin a new top-level
// declaration; synchronize(SyncDeclaration) skips to the next one of these.
var declarationStarts = map[token.Kind]bool{
	token.KwFn: true, token.KwAsm: true, token.KwIntrinsic: true,
	token.KwStruct: true, token.KwEnum: true, token.KwType: true,
	token.KwConst: true, token.KwStatic: true, token.KwImport: true,
}

// statementStarts are the tokens that can legally begin a new statement
// inside a block; synchronize(SyncStatement) skips to the next one of these
// or to the enclosing `}`.
var statementStarts = map[token.Kind]bool{
	token.KwIf: true, token.KwFor: true, token.KwWhile: true, token.KwLoop: true,
	token.KwBreak: true, token.KwContinue: true, token.KwReturn: true,
	token.KwPass: true, token.KwUnreachable: true, token.LeftBrace: true,
}

// synchronize implements spec section 4.2.7's error recovery: after a
// production reports a diagnostic, advance tokens until one plausibly starts
// a new construct at the given sync position, so one parse reports many
// diagnostics instead of aborting at the first.
func (p *Parser) synchronize(pos SyncPosition) {
	p.advance()
	for !p.atEnd() {
		if p.previous().Kind == token.SemiColon {
			return
		}
		switch pos {
		case SyncDeclaration:
			if declarationStarts[p.peek().Kind] {
				return
			}
		case SyncStatement:
			if statementStarts[p.peek().Kind] || declarationStarts[p.peek().Kind] {
				return
			}
		case SyncExpression:
			if p.peek().Kind == token.SemiColon || p.peek().Kind == token.RightParen ||
				p.peek().Kind == token.RightBrace {
				return
			}
		}
		p.advance()
	}
}
