package semantic

import (
	"codefix/internal/syntax"
)

// bindBodies binds initializers, accessor and method bodies of one type
// declaration.
func (b *binder) bindBodies(d typeDecl) {
	b.enterType(d.sym)
	n := d.node
	b.m.contexts = append(b.m.contexts, memberContext{span: n.Span(), typ: d.sym, imports: d.sym.imports})
	b.bindAttributeArgs(n.Child(0))
	if d.sym.TypeKind == TypeEnum {
		for _, em := range syntax.Elements(n.Child(6)) {
			b.bindAttributeArgs(em.Child(0))
		}
		return
	}
	for _, m := range syntax.Elements(n.Child(7)) {
		b.bindAttributeArgs(m.Child(0))
		switch m.Kind() {
		case syntax.KindFieldDecl:
			for _, v := range syntax.Elements(m.Child(2).Child(1)) {
				f := b.m.declared[v]
				if f == nil || f.IsConst() || v.Child(1) == nil {
					continue
				}
				b.enterMember(d.sym, f, v, nil)
				expr := v.Child(1).Child(1)
				b.convert(expr, b.bindExpr(expr), f.Type)
				b.enterType(d.sym)
			}
		case syntax.KindMethodDecl:
			s := b.m.declared[m]
			if s == nil {
				continue
			}
			b.bindParamDefaults(s)
			b.bindMethodBody(d.sym, s, m, m.Child(6), m.Child(7), b.returnTypeOf(s))
		case syntax.KindConstructorDecl:
			s := b.m.declared[m]
			if s == nil {
				continue
			}
			b.bindParamDefaults(s)
			b.bindMethodBody(d.sym, s, m, m.Child(4), m.Child(5), s.Type)
		case syntax.KindPropertyDecl:
			b.bindProperty(d.sym, m)
		}
	}
}

func (b *binder) bindAttributeArgs(lists *syntax.Node) {
	for _, list := range syntax.Elements(lists) {
		for _, a := range syntax.Elements(list.Child(1)) {
			if args := a.Child(1); args != nil {
				saved := b.save()
				b.scope = &localScope{span: a.Span()}
				b.bindArguments(args)
				b.restore(saved)
			}
		}
	}
}

// enterMember prepares the binder for a member body spanning node.
func (b *binder) enterMember(t, member *Symbol, node *syntax.Node, ret *Symbol) {
	b.enterType(t)
	b.member = member
	b.returnType = ret
	b.scope = &localScope{span: node.Span()}
	b.opaque = opaqueIdentifiers(node)
	for _, p := range member.Params {
		b.scope.declare(p)
		p.visible = node.Span()
	}
	b.m.contexts = append(b.m.contexts, memberContext{
		span:       node.Span(),
		typ:        t,
		member:     member,
		imports:    t.imports,
		returnType: ret,
		params:     member.Params,
		opaque:     b.opaque,
	})
}

// returnTypeOf gives the type return statements convert to: the task
// result type for async methods.
func (b *binder) returnTypeOf(m *Symbol) *Symbol {
	t := m.Type
	if !m.IsAsync() || t == nil {
		return t
	}
	switch t.FullName() {
	case "System.Threading.Tasks.Task", "System.Threading.Tasks.ValueTask":
		return b.env.special(SpecialVoid)
	case "System.Threading.Tasks.Task`1", "System.Threading.Tasks.ValueTask`1":
		return t.TypeArgs[0]
	}
	return t
}

func (b *binder) bindParamDefaults(s *Symbol) {
	for _, p := range s.Params {
		ev := p.Decl.Child(4)
		if ev == nil {
			continue
		}
		b.enterMember(s.Containing, s, p.Decl, nil)
		expr := ev.Child(1)
		op := b.convert(expr, b.bindExpr(expr), p.Type)
		if op.hasConst {
			p.Constant, p.hasConst = op.constant, true
		}
	}
	b.enterType(s.Containing)
}

func (b *binder) bindMethodBody(t, s *Symbol, node, body, arrow *syntax.Node, ret *Symbol) {
	b.enterMember(t, s, node, ret)
	defer b.enterType(t)
	if body != nil {
		b.bindStmt(body)
	}
	if arrow != nil {
		b.bindArrowBody(arrow.Child(1), ret)
	}
}

// bindArrowBody binds an expression body. A void body only evaluates the
// expression.
func (b *binder) bindArrowBody(expr *syntax.Node, ret *Symbol) {
	op := b.bindExpr(expr)
	if ret != nil && ret.Special != SpecialVoid {
		b.convert(expr, op, ret)
	}
}

func (b *binder) bindProperty(t *Symbol, m *syntax.Node) {
	s := b.m.declared[m]
	if s == nil {
		return
	}
	defer b.enterType(t)
	if arrow := m.Child(5); arrow != nil {
		b.enterMember(t, s, arrow, s.Type)
		b.bindArrowBody(arrow.Child(1), s.Type)
	}
	if acc := m.Child(4); acc != nil {
		for _, a := range syntax.Elements(acc.Child(1)) {
			if a.Child(3) == nil && a.Child(4) == nil {
				continue
			}
			ret := s.Type
			b.enterMember(t, s, a, ret)
			if kw := a.Child(2).TokenText(); kw == "set" || kw == "init" {
				ret = b.env.special(SpecialVoid)
				b.returnType = ret
				b.m.contexts[len(b.m.contexts)-1].returnType = ret
				value := &Symbol{Kind: SymbolParameter, Name: "value", Type: s.Type, Containing: s, Flags: s.Flags & FlagMetadata, visible: a.Span()}
				b.scope.declare(value)
				b.m.contexts[len(b.m.contexts)-1].params = []*Symbol{value}
			}
			b.bindAttributeArgs(a.Child(0))
			if body := a.Child(3); body != nil {
				b.bindStmt(body)
			}
			if arrow := a.Child(4); arrow != nil {
				b.bindArrowBody(arrow.Child(1), ret)
			}
		}
	}
	if ev := m.Child(6); ev != nil {
		b.enterMember(t, s, ev, nil)
		b.convert(ev.Child(1), b.bindExpr(ev.Child(1)), s.Type)
	}
}

// bindStmt binds one statement.
func (b *binder) bindStmt(n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case syntax.KindBlock:
		b.pushScope(n.Span())
		for _, s := range syntax.Elements(n.Child(1)) {
			b.bindStmt(s)
		}
		b.popScope()
	case syntax.KindLocalDeclStmt:
		b.bindLocalDecl(n.Child(1), syntax.HasModifier(n.Child(0), "const"))
	case syntax.KindExprStmt:
		b.bindExpr(n.Child(0))
	case syntax.KindIfStmt:
		b.bindCondition(n.Child(2))
		b.bindEmbedded(n.Child(4))
		if e := n.Child(5); e != nil {
			b.bindEmbedded(e.Child(1))
		}
	case syntax.KindWhileStmt:
		b.pushScope(n.Span())
		b.bindCondition(n.Child(2))
		b.bindEmbedded(n.Child(4))
		b.popScope()
	case syntax.KindForeachStmt:
		b.bindForeach(n)
	case syntax.KindReturnStmt:
		expr := n.Child(1)
		if expr == nil {
			return
		}
		op := b.bindExpr(expr)
		if b.returnType != nil && b.returnType.Special != SpecialVoid {
			b.convert(expr, op, b.returnType)
		}
	case syntax.KindThrowStmt:
		if expr := n.Child(1); expr != nil {
			b.bindExpr(expr)
		}
	}
}

// bindEmbedded binds the body of if, else, while and foreach. A non-block
// statement gets its own scope.
func (b *binder) bindEmbedded(n *syntax.Node) {
	if n == nil {
		return
	}
	if n.Is(syntax.KindBlock) {
		b.bindStmt(n)
		return
	}
	b.pushScope(n.Span())
	b.bindStmt(n)
	b.popScope()
}

func (b *binder) bindCondition(n *syntax.Node) {
	if n == nil {
		return
	}
	b.convert(n, b.bindExpr(n), b.env.special(SpecialBoolean))
}

// isVarType reports whether n is the contextual keyword var with no type of
// that name in scope.
func (b *binder) isVarType(n *syntax.Node) bool {
	return n.Is(syntax.KindIdentifierName) && n.Child(0).TokenText() == "var" && b.lookupType("var", 0) == nil
}

func (b *binder) bindLocalDecl(vd *syntax.Node, isConst bool) {
	typeNode := vd.Child(0)
	isVar := b.isVarType(typeNode)
	var declared *Symbol
	if !isVar {
		declared = b.resolveType(typeNode)
	}
	for _, d := range syntax.Elements(vd.Child(1)) {
		name := d.Child(0).TokenText()
		local := &Symbol{Kind: SymbolLocal, Name: name, Containing: b.member, Decl: d}
		if isConst {
			local.Flags |= FlagConst
		}
		t := declared
		if init := d.Child(1); init != nil {
			expr := init.Child(1)
			op := b.bindExpr(expr)
			if isVar {
				t = op.typ
				if t.IsError() || t.Special == SpecialVoid || !op.isValue() {
					t = errorType
				}
				b.record(typeNode, typeOperand(t))
			} else {
				op = b.convert(expr, op, t)
			}
			if isConst && op.hasConst {
				local.Constant, local.hasConst = op.constant, true
			}
		} else if isVar {
			t = errorType
		}
		local.Type = t
		if name != "" {
			b.declareLocal(local, d)
		}
	}
}

func (b *binder) bindForeach(n *syntax.Node) {
	coll := b.bindExpr(n.Child(5))
	elem := b.elementType(coll.typ)
	b.pushScope(n.Span())
	defer b.popScope()
	typeNode := n.Child(2)
	t := elem
	if b.isVarType(typeNode) {
		b.record(typeNode, typeOperand(t))
	} else {
		t = b.resolveType(typeNode)
	}
	if name := n.Child(3).TokenText(); name != "" {
		b.declareLocal(&Symbol{Kind: SymbolLocal, Name: name, Type: t, Containing: b.member, Decl: n}, n)
	}
	b.bindEmbedded(n.Child(7))
}

// elementType is the iteration type of a collection.
func (b *binder) elementType(t *Symbol) *Symbol {
	switch {
	case isBad(t) || t.TypeKind == TypeNull:
		return errorType
	case t.TypeKind == TypeArray:
		return t.Element
	case isString(t):
		return b.env.special(SpecialChar)
	case t.FullName() == "System.Collections.Generic.List`1":
		return t.TypeArgs[0]
	}
	return b.env.special(SpecialObject)
}
