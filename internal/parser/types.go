package parser

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// parseType: predefined type, simple/generic/qualified name, then
// nullable '?' and array '[]' suffixes.
func (p *Parser) parseType() *syntax.Green {
	return p.parseTypeMode(false)
}

// parseTypeMode with inExpr set reads "T ? a : b" as a conditional rather
// than a nullable type, as after 'is' and 'as'.
func (p *Parser) parseTypeMode(inExpr bool) *syntax.Green {
	var t *syntax.Green
	switch {
	case p.peek().Kind.IsPredefinedType():
		t = syntax.NewNode(syntax.KindPredefinedType, p.advance())
	case p.at(token.Ident):
		t = p.parseName()
	default:
		p.err(diag.CSTypeExpected, "Type expected")
		return syntax.NewNode(syntax.KindIdentifierName, syntax.MissingTok(token.Ident))
	}
	for {
		switch {
		case p.at(token.Question) && !(inExpr && canStartExpression(p.peekAt(1).Kind)):
			t = syntax.NewNode(syntax.KindNullableType, t, p.advance())
		case p.at(token.LBracket) && p.peekAt(1).Kind == token.RBracket:
			open := p.advance()
			t = syntax.NewNode(syntax.KindArrayType, t, open, p.advance())
		default:
			return t
		}
	}
}

// parseName: Ident, Ident<T...>, and dotted qualifications of those.
func (p *Parser) parseName() *syntax.Green {
	left := p.parseSimpleName(true)
	for p.at(token.Dot) && p.peekAt(1).Kind == token.Ident {
		dot := p.advance()
		right := p.parseSimpleName(true)
		left = syntax.NewNode(syntax.KindQualifiedName, left, dot, right)
	}
	return left
}

// parseSimpleName parses an identifier and, when inType is set or the
// lookahead confirms it, a type argument list.
func (p *Parser) parseSimpleName(inType bool) *syntax.Green {
	id := p.expectIdent()
	if p.at(token.Lt) {
		end, ok := p.scanTypeArgumentList(p.pos)
		if ok && (inType || isGenericFollower(p.toks[end].Kind)) {
			return syntax.NewNode(syntax.KindGenericName, id, p.parseTypeArgumentList())
		}
	}
	return syntax.NewNode(syntax.KindIdentifierName, id)
}

// parseTypeArgumentList: [<, types & commas, >].
func (p *Parser) parseTypeArgumentList() *syntax.Green {
	open := p.advance()
	var items []*syntax.Green
	for {
		items = append(items, p.parseType())
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	closeTok := p.expect(token.Gt)
	return syntax.NewNode(syntax.KindTypeArgumentList, open, syntax.List(items...), closeTok)
}

// isGenericFollower decides "F<T>(x)" versus "a < b > c": after a candidate
// type argument list only these tokens keep the generic reading.
func isGenericFollower(k token.Kind) bool {
	switch k {
	case token.LParen, token.RParen, token.RBracket, token.RBrace, token.Colon, token.Semicolon,
		token.Comma, token.Dot, token.Question, token.EqEq, token.BangEq, token.Pipe, token.Caret,
		token.AndAnd, token.OrOr, token.Amp, token.LBracket, token.QuestionDot, token.EOF:
		return true
	}
	return false
}

// scanType checks without consuming whether a type starts at token index i
// and returns the index just past it.
func (p *Parser) scanType(i int) (int, bool) {
	k := p.tokAt(i).Kind
	switch {
	case k.IsPredefinedType():
		i++
	case k == token.Ident:
		var ok bool
		i, ok = p.scanName(i)
		if !ok {
			return i, false
		}
	default:
		return i, false
	}
	for {
		switch {
		case p.tokAt(i).Kind == token.Question:
			i++
		case p.tokAt(i).Kind == token.LBracket && p.tokAt(i+1).Kind == token.RBracket:
			i += 2
		default:
			return i, true
		}
	}
}

func (p *Parser) scanName(i int) (int, bool) {
	for {
		if p.tokAt(i).Kind != token.Ident {
			return i, false
		}
		i++
		if p.tokAt(i).Kind == token.Lt {
			end, ok := p.scanTypeArgumentList(i)
			if !ok {
				return i, true
			}
			i = end
		}
		if p.tokAt(i).Kind != token.Dot || p.tokAt(i+1).Kind != token.Ident {
			return i, true
		}
		i++
	}
}

// scanTypeArgumentList expects '<' at i and returns the index past '>'.
func (p *Parser) scanTypeArgumentList(i int) (int, bool) {
	i++
	for {
		end, ok := p.scanType(i)
		if !ok {
			return i, false
		}
		i = end
		switch p.tokAt(i).Kind {
		case token.Comma:
			i++
		case token.Gt:
			return i + 1, true
		default:
			return i, false
		}
	}
}

func (p *Parser) tokAt(i int) token.Token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
