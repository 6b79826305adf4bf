package parser

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// atMemberStart reports whether the next token can begin a type or member
// declaration.
func (p *Parser) atMemberStart() bool {
	tok := p.peek()
	switch tok.Kind {
	case token.LBracket, token.KwClass, token.KwStruct, token.KwInterface, token.KwEnum, token.Ident:
		return true
	}
	return tok.Kind.IsModifier() || tok.Kind.IsPredefinedType()
}

// parseAttributeLists: attribute lists [[, attributes & commas, ]], each
// attribute [name, ArgumentList?].
func (p *Parser) parseAttributeLists() *syntax.Green {
	var lists []*syntax.Green
	for p.at(token.LBracket) {
		open := p.advance()
		var items []*syntax.Green
		for {
			name := p.parseName()
			var args *syntax.Green
			if p.at(token.LParen) {
				args = p.parseArgumentList()
			}
			items = append(items, syntax.NewNode(syntax.KindAttribute, name, args))
			if !p.at(token.Comma) {
				break
			}
			items = append(items, p.advance())
		}
		closeTok := p.expect(token.RBracket)
		lists = append(lists, syntax.NewNode(syntax.KindAttributeList, open, syntax.List(items...), closeTok))
	}
	return syntax.List(lists...)
}

// parseModifiers collects modifier keywords and the contextual 'async' and
// 'partial' when a declaration follows them.
func (p *Parser) parseModifiers() *syntax.Green {
	var mods []*syntax.Green
	for {
		tok := p.peek()
		switch {
		case tok.Kind.IsModifier():
			mods = append(mods, p.advance())
		case (tok.IsContextual("async") || tok.IsContextual("partial")) && p.contextualModifierFollows():
			mods = append(mods, p.advance())
		default:
			return syntax.List(mods...)
		}
	}
}

func (p *Parser) contextualModifierFollows() bool {
	next := p.peekAt(1)
	switch next.Kind {
	case token.Ident, token.KwClass, token.KwStruct, token.KwInterface, token.KwEnum:
		return true
	}
	return next.Kind.IsModifier() || next.Kind.IsPredefinedType()
}

// parseMemberDecl parses a type or member declaration. typeName is the name
// of the enclosing type and identifies constructors. It returns nil when
// nothing was consumed.
func (p *Parser) parseMemberDecl(typeName string) *syntax.Green {
	attrs := p.parseAttributeLists()
	mods := p.parseModifiers()

	switch p.peek().Kind {
	case token.KwClass:
		return p.parseTypeDecl(syntax.KindClassDecl, attrs, mods)
	case token.KwStruct:
		return p.parseTypeDecl(syntax.KindStructDecl, attrs, mods)
	case token.KwInterface:
		return p.parseTypeDecl(syntax.KindInterfaceDecl, attrs, mods)
	case token.KwEnum:
		return p.parseEnumDecl(attrs, mods)
	}

	if tok := p.peek(); tok.Kind == token.Ident && tok.Text == typeName && p.peekAt(1).Kind == token.LParen {
		id := p.advance()
		params := p.parseParameterList()
		body, arrow, semi := p.parseBody()
		return syntax.NewNode(syntax.KindConstructorDecl, attrs, mods, id, params, body, arrow, semi)
	}

	if _, ok := p.scanType(p.pos); !ok {
		p.err(diag.CSSyntaxError, "Invalid token '"+p.peek().Text+"' in class, record, struct, or interface member declaration")
		if attrs.SlotCount() > 0 || mods.SlotCount() > 0 {
			return syntax.NewNode(syntax.KindError, attrs, mods)
		}
		return nil
	}

	t := p.parseType()
	if p.at(token.Ident) {
		switch p.peekAt(1).Kind {
		case token.LParen, token.Lt:
			return p.parseMethodDecl(attrs, mods, t)
		case token.LBrace, token.FatArrow:
			return p.parsePropertyDecl(attrs, mods, t)
		}
	}
	decl := syntax.NewNode(syntax.KindVariableDecl, t, p.parseDeclarators())
	semi := p.expect(token.Semicolon)
	return syntax.NewNode(syntax.KindFieldDecl, attrs, mods, decl, semi)
}

// parseTypeDecl: [attrs, mods, keyword, ident, TypeParameterList?, BaseList?,
// {, members, }, ;?].
func (p *Parser) parseTypeDecl(kind syntax.Kind, attrs, mods *syntax.Green) *syntax.Green {
	kw := p.advance()
	id := p.expectIdent()
	tpl := p.parseTypeParameterList()
	base := p.parseBaseList()
	open := p.expect(token.LBrace)
	name := id.TokenText()
	var members []*syntax.Green
	for !p.at_or(token.RBrace, token.EOF) {
		before := p.pos
		if m := p.parseMemberDecl(name); m != nil {
			members = append(members, m)
		}
		if p.pos == before {
			p.skip()
		}
	}
	closeTok := p.expect(token.RBrace)
	var semi *syntax.Green
	if p.at(token.Semicolon) {
		semi = p.advance()
	}
	return syntax.NewNode(kind, attrs, mods, kw, id, tpl, base, open, syntax.List(members...), closeTok, semi)
}

// parseEnumDecl: [attrs, mods, enum, ident, BaseList?, {, members & commas, }, ;?].
func (p *Parser) parseEnumDecl(attrs, mods *syntax.Green) *syntax.Green {
	kw := p.advance()
	id := p.expectIdent()
	base := p.parseBaseList()
	open := p.expect(token.LBrace)
	var items []*syntax.Green
	for !p.at_or(token.RBrace, token.EOF) {
		memberAttrs := p.parseAttributeLists()
		if !p.at(token.Ident) {
			p.err(diag.CSIdentifierExpected, "Identifier expected")
			p.skip()
			continue
		}
		name := p.advance()
		items = append(items, syntax.NewNode(syntax.KindEnumMember, memberAttrs, name, p.parseEqualsValue()))
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	closeTok := p.expect(token.RBrace)
	var semi *syntax.Green
	if p.at(token.Semicolon) {
		semi = p.advance()
	}
	return syntax.NewNode(syntax.KindEnumDecl, attrs, mods, kw, id, base, open, syntax.List(items...), closeTok, semi)
}

// parseMethodDecl: [attrs, mods, type, ident, TypeParameterList?,
// ParameterList, Block?, ArrowBody?, ;?].
func (p *Parser) parseMethodDecl(attrs, mods, returnType *syntax.Green) *syntax.Green {
	id := p.advance()
	tpl := p.parseTypeParameterList()
	params := p.parseParameterList()
	body, arrow, semi := p.parseBody()
	return syntax.NewNode(syntax.KindMethodDecl, attrs, mods, returnType, id, tpl, params, body, arrow, semi)
}

// parseBody reads a block body, an expression body "=> expr;", or the ';' of
// an abstract or interface member.
func (p *Parser) parseBody() (body, arrow, semi *syntax.Green) {
	switch {
	case p.at(token.LBrace):
		body = p.parseBlock()
	case p.at(token.FatArrow):
		arrow = p.parseArrowBody()
		semi = p.expect(token.Semicolon)
	default:
		semi = p.expect(token.Semicolon)
	}
	return body, arrow, semi
}

// parseArrowBody: [=>, expr].
func (p *Parser) parseArrowBody() *syntax.Green {
	op := p.advance()
	return syntax.NewNode(syntax.KindArrowBody, op, p.parseExpr())
}

// parsePropertyDecl: [attrs, mods, type, ident, AccessorList?, ArrowBody?,
// EqualsValue?, ;?].
func (p *Parser) parsePropertyDecl(attrs, mods, t *syntax.Green) *syntax.Green {
	id := p.advance()
	var accessors, arrow, init, semi *syntax.Green
	if p.at(token.FatArrow) {
		arrow = p.parseArrowBody()
		semi = p.expect(token.Semicolon)
		return syntax.NewNode(syntax.KindPropertyDecl, attrs, mods, t, id, accessors, arrow, init, semi)
	}
	accessors = p.parseAccessorList()
	if init = p.parseEqualsValue(); init != nil {
		semi = p.expect(token.Semicolon)
	}
	return syntax.NewNode(syntax.KindPropertyDecl, attrs, mods, t, id, accessors, arrow, init, semi)
}

// parseAccessorList: [{, accessors, }] with Accessor [attrs, mods, keyword,
// Block?, ArrowBody?, ;?].
func (p *Parser) parseAccessorList() *syntax.Green {
	open := p.advance()
	var items []*syntax.Green
	for !p.at_or(token.RBrace, token.EOF) {
		attrs := p.parseAttributeLists()
		mods := p.parseModifiers()
		tok := p.peek()
		if !(tok.IsContextual("get") || tok.IsContextual("set") || tok.IsContextual("init")) {
			p.err(diag.CSSyntaxError, "A get or set accessor expected")
			if attrs.SlotCount() == 0 && mods.SlotCount() == 0 {
				p.skip()
			} else {
				items = append(items, syntax.NewNode(syntax.KindError, attrs, mods))
			}
			continue
		}
		kw := p.advance()
		body, arrow, semi := p.parseBody()
		items = append(items, syntax.NewNode(syntax.KindAccessor, attrs, mods, kw, body, arrow, semi))
	}
	closeTok := p.expect(token.RBrace)
	return syntax.NewNode(syntax.KindAccessorList, open, syntax.List(items...), closeTok)
}

// parseParameterList: [(, parameters & commas, )] with Parameter [attrs,
// mods, type, ident, EqualsValue?].
func (p *Parser) parseParameterList() *syntax.Green {
	open := p.expect(token.LParen)
	var items []*syntax.Green
	for !p.at_or(token.RParen, token.EOF) {
		attrs := p.parseAttributeLists()
		var mods []*syntax.Green
		for p.at_or(token.KwRef, token.KwOut, token.KwIn, token.KwParams, token.KwThis) {
			mods = append(mods, p.advance())
		}
		t := p.parseType()
		id := p.expectIdent()
		items = append(items, syntax.NewNode(syntax.KindParameter, attrs, syntax.List(mods...), t, id, p.parseEqualsValue()))
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	closeTok := p.expect(token.RParen)
	return syntax.NewNode(syntax.KindParameterList, open, syntax.List(items...), closeTok)
}

// parseTypeParameterList: [<, idents & commas, >], or nil.
func (p *Parser) parseTypeParameterList() *syntax.Green {
	if !p.at(token.Lt) {
		return nil
	}
	open := p.advance()
	var items []*syntax.Green
	for {
		items = append(items, p.expectIdent())
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	closeTok := p.expect(token.Gt)
	return syntax.NewNode(syntax.KindTypeParameterList, open, syntax.List(items...), closeTok)
}

// parseBaseList: [:, types & commas], or nil.
func (p *Parser) parseBaseList() *syntax.Green {
	if !p.at(token.Colon) {
		return nil
	}
	colon := p.advance()
	var items []*syntax.Green
	for {
		items = append(items, p.parseType())
		if !p.at(token.Comma) {
			break
		}
		items = append(items, p.advance())
	}
	return syntax.NewNode(syntax.KindBaseList, colon, syntax.List(items...))
}
