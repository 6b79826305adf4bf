package parser

import (
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// parseBlock: [{, statements, }].
func (p *Parser) parseBlock() *syntax.Green {
	open := p.expect(token.LBrace)
	var stmts []*syntax.Green
	for !p.at_or(token.RBrace, token.EOF) {
		before := p.pos
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
		// нет прогресса - пропускаем токен, чтобы не зациклиться
		if p.pos == before {
			p.skip()
		}
	}
	closeTok := p.expect(token.RBrace)
	return syntax.NewNode(syntax.KindBlock, open, syntax.List(stmts...), closeTok)
}

// parseStatement парсит один statement внутри блока
func (p *Parser) parseStatement() *syntax.Green {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		return syntax.NewNode(syntax.KindEmptyStmt, p.advance())
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		kw := p.advance()
		open := p.expect(token.LParen)
		cond := p.parseExpr()
		closeTok := p.expect(token.RParen)
		return syntax.NewNode(syntax.KindWhileStmt, kw, open, cond, closeTok, p.parseEmbedded())
	case token.KwForeach:
		return p.parseForeachStmt()
	case token.KwReturn:
		return p.parseKeywordExprStmt(syntax.KindReturnStmt)
	case token.KwThrow:
		return p.parseKeywordExprStmt(syntax.KindThrowStmt)
	case token.KwBreak:
		kw := p.advance()
		return syntax.NewNode(syntax.KindBreakStmt, kw, p.expect(token.Semicolon))
	case token.KwContinue:
		kw := p.advance()
		return syntax.NewNode(syntax.KindContinueStmt, kw, p.expect(token.Semicolon))
	case token.KwConst:
		return p.parseLocalDecl()
	case token.KwFor, token.KwDo, token.KwSwitch, token.KwTry, token.KwLock, token.KwUsing,
		token.KwFixed:
		return p.parseOpaqueStmt()
	case token.KwUnsafe, token.KwUnchecked:
		if p.peekAt(1).Kind == token.LBrace {
			return p.parseOpaqueStmt()
		}
	case token.Ident:
		if (tok.Text == "yield" || tok.Text == "checked") && p.peekAt(1).Kind.IsKeyword() ||
			tok.Text == "checked" && p.peekAt(1).Kind == token.LBrace {
			return p.parseOpaqueStmt()
		}
	case token.RBrace, token.EOF:
		return nil
	}
	if p.isLocalDeclaration() {
		return p.parseLocalDecl()
	}
	expr := p.parseExpr()
	return syntax.NewNode(syntax.KindExprStmt, expr, p.expect(token.Semicolon))
}

// parseEmbedded parses the body of if/while/foreach. A missing statement
// becomes an empty statement with a missing ';'.
func (p *Parser) parseEmbedded() *syntax.Green {
	if s := p.parseStatement(); s != nil {
		return s
	}
	return syntax.NewNode(syntax.KindEmptyStmt, p.expect(token.Semicolon))
}

// parseIfStmt: [if, (, cond, ), stmt, ElseClause?] with ElseClause [else, stmt].
func (p *Parser) parseIfStmt() *syntax.Green {
	kw := p.advance()
	open := p.expect(token.LParen)
	cond := p.parseExpr()
	closeTok := p.expect(token.RParen)
	body := p.parseEmbedded()
	var elseClause *syntax.Green
	if p.at(token.KwElse) {
		elseKw := p.advance()
		elseClause = syntax.NewNode(syntax.KindElseClause, elseKw, p.parseEmbedded())
	}
	return syntax.NewNode(syntax.KindIfStmt, kw, open, cond, closeTok, body, elseClause)
}

// parseForeachStmt: [foreach, (, type, ident, in, expr, ), stmt].
func (p *Parser) parseForeachStmt() *syntax.Green {
	kw := p.advance()
	open := p.expect(token.LParen)
	t := p.parseType()
	id := p.expectIdent()
	in := p.expect(token.KwIn)
	expr := p.parseExpr()
	closeTok := p.expect(token.RParen)
	return syntax.NewNode(syntax.KindForeachStmt, kw, open, t, id, in, expr, closeTok, p.parseEmbedded())
}

// parseKeywordExprStmt: [keyword, expr?, ;] for return and throw.
func (p *Parser) parseKeywordExprStmt(kind syntax.Kind) *syntax.Green {
	kw := p.advance()
	var expr *syntax.Green
	if !p.at(token.Semicolon) && canStartExpression(p.peek().Kind) {
		expr = p.parseExpr()
	}
	return syntax.NewNode(kind, kw, expr, p.expect(token.Semicolon))
}

// isLocalDeclaration looks ahead for "Type name" followed by '=', ';' or ','.
func (p *Parser) isLocalDeclaration() bool {
	tok := p.peek()
	if tok.IsContextual("await") && canStartExpression(p.peekAt(1).Kind) {
		return false
	}
	end, ok := p.scanType(p.pos)
	if !ok || p.tokAt(end).Kind != token.Ident {
		return false
	}
	switch p.tokAt(end + 1).Kind {
	case token.Assign, token.Semicolon, token.Comma:
		return true
	}
	return false
}

// parseLocalDecl: [modifiers, VariableDecl, ;].
func (p *Parser) parseLocalDecl() *syntax.Green {
	var mods []*syntax.Green
	for p.at(token.KwConst) {
		mods = append(mods, p.advance())
	}
	decl := p.parseVariableDecl()
	return syntax.NewNode(syntax.KindLocalDeclStmt, syntax.List(mods...), decl, p.expect(token.Semicolon))
}

// parseVariableDecl: [type, declarators & commas].
func (p *Parser) parseVariableDecl() *syntax.Green {
	t := p.parseType()
	return syntax.NewNode(syntax.KindVariableDecl, t, p.parseDeclarators())
}

func (p *Parser) parseDeclarators() *syntax.Green {
	var items []*syntax.Green
	for {
		items = append(items, p.parseDeclarator())
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	return syntax.List(items...)
}

// parseDeclarator: [ident, EqualsValue?].
func (p *Parser) parseDeclarator() *syntax.Green {
	id := p.expectIdent()
	return syntax.NewNode(syntax.KindVariableDeclarator, id, p.parseEqualsValue())
}

// parseEqualsValue: [=, expr], or nil when no '=' follows.
func (p *Parser) parseEqualsValue() *syntax.Green {
	if !p.at(token.Assign) {
		return nil
	}
	eq := p.advance()
	return syntax.NewNode(syntax.KindEqualsValue, eq, p.parseExpr())
}

// parseOpaqueStmt keeps statements the rules never look inside (for, do,
// switch, try and friends) as a flat OpaqueStmt of their tokens. No
// diagnostic is reported: the input is valid, the tree just does not model it.
func (p *Parser) parseOpaqueStmt() *syntax.Green {
	startsWithDo := p.at(token.KwDo)
	var toks []*syntax.Green
	depth := 0
	for !p.at(token.EOF) {
		tok := p.peek()
		switch tok.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.RBrace:
			if depth == 0 {
				return syntax.NewNode(syntax.KindOpaqueStmt, toks...)
			}
			depth--
		}
		toks = append(toks, p.advance())
		if depth > 0 {
			continue
		}
		switch tok.Kind {
		case token.Semicolon:
			if startsWithDo && p.at(token.KwWhile) {
				continue
			}
			return syntax.NewNode(syntax.KindOpaqueStmt, toks...)
		case token.RBrace:
			next := p.peek()
			switch {
			case next.Kind == token.KwElse, next.Kind == token.KwCatch, next.Kind == token.KwFinally:
			case next.Kind == token.KwWhile && startsWithDo:
			default:
				return syntax.NewNode(syntax.KindOpaqueStmt, toks...)
			}
		}
	}
	return syntax.NewNode(syntax.KindOpaqueStmt, toks...)
}
