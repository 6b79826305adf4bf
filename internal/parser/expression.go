package parser

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() *syntax.Green {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a = b = c.
func (p *Parser) parseAssignment() *syntax.Green {
	left := p.parseConditional()
	if kind, ok := syntax.AssignmentKindOf(p.peek().Kind); ok {
		op := p.advance()
		right := p.parseAssignment()
		return syntax.NewNode(kind, left, op, right)
	}
	return left
}

// parseConditional: [cond, ?, whenTrue, :, whenFalse].
func (p *Parser) parseConditional() *syntax.Green {
	cond := p.parseBinaryExpr(0)
	if !p.at(token.Question) {
		return cond
	}
	q := p.advance()
	whenTrue := p.parseExpr()
	colon := p.expect(token.Colon)
	whenFalse := p.parseExpr()
	return syntax.NewNode(syntax.KindConditionalExpr, cond, q, whenTrue, colon, whenFalse)
}

// parseBinaryExpr реализует Pratt parsing для бинарных операторов
// minPrec - минимальный приоритет для текущего уровня
func (p *Parser) parseBinaryExpr(minPrec int) *syntax.Green {
	left := p.parseUnaryExpr()

	for {
		// '>>' приходит из лексера как два '>' подряд
		if p.atRightShift() {
			if precShift < minPrec {
				break
			}
			op := p.advanceRightShift()
			right := p.parseBinaryExpr(precShift + 1)
			left = syntax.NewNode(syntax.KindRightShiftExpr, left, op, right)
			continue
		}

		tok := p.peek()
		prec, isRightAssoc := p.getBinaryOperatorPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			break // приоритет слишком низкий
		}
		op := p.advance()

		switch tok.Kind {
		case token.KwIs:
			left = syntax.NewNode(syntax.KindIsPatternExpr, left, op, p.parsePattern())
			continue
		case token.KwAs:
			left = syntax.NewNode(syntax.KindAsExpr, left, op, p.parseTypeMode(true))
			continue
		}

		nextMinPrec := prec + 1
		if isRightAssoc {
			nextMinPrec = prec
		}
		right := p.parseBinaryExpr(nextMinPrec)
		kind, _ := syntax.BinaryKindOf(tok.Kind)
		left = syntax.NewNode(kind, left, op, right)
	}

	return left
}

func (p *Parser) atRightShift() bool {
	a, b := p.peek(), p.peekAt(1)
	return a.Kind == token.Gt && b.Kind == token.Gt && a.Span.End == b.Span.Start
}

// advanceRightShift merges two adjacent '>' tokens into one ">>" token.
func (p *Parser) advanceRightShift() *syntax.Green {
	first := p.advance()
	second := p.peek()
	p.pos++
	p.lastSpan = second.Span
	return syntax.TokWithTrivia(token.Gt, ">>", first.LeadingTrivia(), syntax.TriviaOf(second.Trailing))
}

// advanceQuestionDot splits "?." into a '?' operator token and the '.' of the
// member binding that follows it.
func (p *Parser) advanceQuestionDot() (*syntax.Green, *syntax.Green) {
	tok := p.advance()
	q := syntax.TokWithTrivia(token.Question, "?", tok.LeadingTrivia(), nil)
	dot := syntax.TokWithTrivia(token.Dot, ".", nil, tok.TrailingTrivia())
	return q, dot
}

// parsePattern handles the patterns of an 'is' expression: constants
// (including null), 'not' patterns, type patterns and declaration patterns.
func (p *Parser) parsePattern() *syntax.Green {
	tok := p.peek()
	if tok.IsContextual("not") && p.peekAt(1).Kind != token.Dot {
		kw := p.advance()
		return syntax.NewNode(syntax.KindNotPattern, kw, p.parsePattern())
	}
	if tok.IsLiteral() || tok.Kind == token.Minus || tok.Kind == token.LParen {
		return syntax.NewNode(syntax.KindConstantPattern, p.parseBinaryExpr(precShift))
	}
	if end, ok := p.scanType(p.pos); ok {
		if next := p.tokAt(end); next.Kind == token.Ident && !isPatternCombinator(next.Text) {
			t := p.parseTypeMode(true)
			return syntax.NewNode(syntax.KindDeclarationPattern, t, p.advance())
		}
		return syntax.NewNode(syntax.KindTypePattern, p.parseTypeMode(true))
	}
	return syntax.NewNode(syntax.KindConstantPattern, p.parseBinaryExpr(precShift))
}

func isPatternCombinator(text string) bool {
	return text == "and" || text == "or" || text == "when"
}

// parseUnaryExpr обрабатывает унарные операторы (префиксы)
func (p *Parser) parseUnaryExpr() *syntax.Green {
	tok := p.peek()
	if kind, ok := p.getUnaryOperator(tok.Kind); ok {
		op := p.advance()
		return syntax.NewNode(kind, op, p.parseUnaryExpr())
	}
	if tok.IsContextual("await") && canStartExpression(p.peekAt(1).Kind) {
		op := p.advance()
		return syntax.NewNode(syntax.KindAwaitExpr, op, p.parseUnaryExpr())
	}
	if tok.Kind == token.LParen {
		if cast := p.tryParseCast(); cast != nil {
			return cast
		}
	}
	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

// tryParseCast parses "(T)operand" when the lookahead says it is a cast and
// returns nil otherwise without consuming anything.
func (p *Parser) tryParseCast() *syntax.Green {
	end, ok := p.scanType(p.pos + 1)
	if !ok || p.tokAt(end).Kind != token.RParen {
		return nil
	}
	next := p.tokAt(end + 1)
	predefined := p.tokAt(p.pos + 1).Kind.IsPredefinedType()
	switch {
	case predefined && canStartExpression(next.Kind):
	case next.Kind == token.Ident, next.IsLiteral(), next.Kind.IsPredefinedType():
	case next.Kind == token.KwThis, next.Kind == token.KwBase, next.Kind == token.KwNew,
		next.Kind == token.KwTypeof, next.Kind == token.KwDefault, next.Kind == token.LParen,
		next.Kind == token.Tilde:
	default:
		return nil
	}
	open := p.advance()
	t := p.parseType()
	closeTok := p.expect(token.RParen)
	return syntax.NewNode(syntax.KindCastExpr, open, t, closeTok, p.parseUnaryExpr())
}

func (p *Parser) parsePrimaryExpr() *syntax.Green {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit, token.RealLit:
		return syntax.NewNode(syntax.KindNumericLiteral, p.advance())
	case token.StringLit:
		return syntax.NewNode(syntax.KindStringLiteral, p.advance())
	case token.InterpolatedStringLit:
		return syntax.NewNode(syntax.KindInterpolatedString, p.advance())
	case token.CharLit:
		return syntax.NewNode(syntax.KindCharLiteral, p.advance())
	case token.KwTrue:
		return syntax.NewNode(syntax.KindTrueLiteral, p.advance())
	case token.KwFalse:
		return syntax.NewNode(syntax.KindFalseLiteral, p.advance())
	case token.KwNull:
		return syntax.NewNode(syntax.KindNullLiteral, p.advance())
	case token.KwThis:
		return syntax.NewNode(syntax.KindThisExpr, p.advance())
	case token.KwBase:
		return syntax.NewNode(syntax.KindBaseExpr, p.advance())
	case token.KwDefault:
		if p.peekAt(1).Kind == token.LParen {
			return p.parseTypeOperand(syntax.KindDefaultExpr)
		}
		return syntax.NewNode(syntax.KindDefaultLiteral, p.advance())
	case token.KwTypeof:
		return p.parseTypeOperand(syntax.KindTypeofExpr)
	case token.KwNew:
		return p.parseObjectCreation()
	case token.LParen:
		open := p.advance()
		inner := p.parseExpr()
		closeTok := p.expect(token.RParen)
		return syntax.NewNode(syntax.KindParenExpr, open, inner, closeTok)
	case token.Ident:
		return p.parseSimpleName(false)
	}
	if tok.Kind.IsPredefinedType() {
		return syntax.NewNode(syntax.KindPredefinedType, p.advance())
	}
	p.err(diag.CSInvalidExpressionTerm, "Invalid expression term '"+tok.Text+"'")
	return syntax.NewNode(syntax.KindIdentifierName, syntax.MissingTok(token.Ident))
}

// parseTypeOperand: [keyword, (, type, )] for default(T) and typeof(T).
func (p *Parser) parseTypeOperand(kind syntax.Kind) *syntax.Green {
	kw := p.advance()
	open := p.expect(token.LParen)
	t := p.parseType()
	closeTok := p.expect(token.RParen)
	return syntax.NewNode(kind, kw, open, t, closeTok)
}

// parseObjectCreation: [new, type, ArgumentList?].
func (p *Parser) parseObjectCreation() *syntax.Green {
	kw := p.advance()
	t := p.parseType()
	var args *syntax.Green
	if p.at(token.LParen) {
		args = p.parseArgumentList()
	}
	return syntax.NewNode(syntax.KindObjectCreationExpr, kw, t, args)
}

// parsePostfixExpr applies member access, conditional access, invocation,
// element access and postfix operators to expr.
func (p *Parser) parsePostfixExpr(expr *syntax.Green) *syntax.Green {
	for {
		switch p.peek().Kind {
		case token.Dot:
			dot := p.advance()
			expr = syntax.NewNode(syntax.KindMemberAccessExpr, expr, dot, p.parseSimpleName(false))
		case token.QuestionDot:
			// a?.b.c() is ConditionalAccess(a, MemberBinding(b).c()): the rest of
			// the chain belongs to the whenNotNull part.
			op, dot := p.advanceQuestionDot()
			binding := syntax.NewNode(syntax.KindMemberBindingExpr, dot, p.parseSimpleName(false))
			return syntax.NewNode(syntax.KindConditionalAccessExpr, expr, op, p.parsePostfixExpr(binding))
		case token.Question:
			next := p.peekAt(1)
			if next.Kind != token.LBracket || next.Span.Start != p.peek().Span.End {
				return expr
			}
			op := p.advance()
			binding := syntax.NewNode(syntax.KindElementBindingExpr, p.parseBracketedArgumentList())
			return syntax.NewNode(syntax.KindConditionalAccessExpr, expr, op, p.parsePostfixExpr(binding))
		case token.LParen:
			expr = syntax.NewNode(syntax.KindInvocationExpr, expr, p.parseArgumentList())
		case token.LBracket:
			expr = syntax.NewNode(syntax.KindElementAccessExpr, expr, p.parseBracketedArgumentList())
		case token.PlusPlus:
			expr = syntax.NewNode(syntax.KindPostIncrementExpr, expr, p.advance())
		case token.MinusMinus:
			expr = syntax.NewNode(syntax.KindPostDecrementExpr, expr, p.advance())
		case token.Bang:
			if canStartExpression(p.peekAt(1).Kind) {
				return expr
			}
			expr = syntax.NewNode(syntax.KindSuppressNullableWarningExpr, expr, p.advance())
		default:
			return expr
		}
	}
}

// parseArgumentList: [(, arguments & commas, )].
func (p *Parser) parseArgumentList() *syntax.Green {
	open := p.expect(token.LParen)
	list := p.parseArguments(token.RParen)
	closeTok := p.expect(token.RParen)
	return syntax.NewNode(syntax.KindArgumentList, open, list, closeTok)
}

// parseBracketedArgumentList: [[, arguments & commas, ]].
func (p *Parser) parseBracketedArgumentList() *syntax.Green {
	open := p.advance()
	list := p.parseArguments(token.RBracket)
	closeTok := p.expect(token.RBracket)
	return syntax.NewNode(syntax.KindBracketedArgumentList, open, list, closeTok)
}

func (p *Parser) parseArguments(closing token.Kind) *syntax.Green {
	var items []*syntax.Green
	if p.at(closing) {
		return syntax.List()
	}
	for {
		items = append(items, syntax.NewNode(syntax.KindArgument, p.parseExpr()))
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	return syntax.List(items...)
}
