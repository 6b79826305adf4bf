package semantic

import (
	"strings"

	"codefix/internal/diag"
	"codefix/internal/syntax"
)

// typeDecl is one syntactic declaration of a type. Partial types have
// several.
type typeDecl struct {
	sym  *Symbol
	node *syntax.Node
}

// declareUnit runs the declaration phases over a compilation unit: type
// symbols, then headers (attributes, bases), then members, then constant
// values. It returns the type declarations in source order.
func (b *binder) declareUnit(root *syntax.Node) []typeDecl {
	var decls []typeDecl
	top := &importScope{}
	b.collectUsings(root.Child(0), top)
	b.collectNamespaceMembers(root.Child(1), top, b.tbl.namespace(""), &decls)
	for _, u := range b.usings {
		b.checkUsing(u)
	}
	for _, d := range decls {
		b.declareHeader(d)
	}
	for _, d := range decls {
		b.declareMembers(d)
	}
	for _, d := range decls {
		b.evalConstants(d)
	}
	return decls
}

func (b *binder) collectUsings(list *syntax.Node, scope *importScope) {
	for _, u := range syntax.Elements(list) {
		if !u.Is(syntax.KindUsingDirective) || u.Child(2) == nil {
			continue
		}
		name := nameString(u.Child(2))
		if u.Child(1) != nil {
			scope.static = append(scope.static, name)
		} else {
			scope.usings = append(scope.usings, name)
		}
		b.usings = append(b.usings, usingRef{node: u, scope: scope})
	}
}

// checkUsing validates a using directive once every namespace is known.
func (b *binder) checkUsing(u usingRef) {
	saved := b.save()
	defer b.restore(saved)
	b.imports = u.scope.outer
	if b.imports == nil {
		b.imports = &importScope{}
	}
	name := u.node.Child(2)
	if u.node.Child(1) != nil {
		b.resolveType(name)
		return
	}
	full := nameString(name)
	if ns := b.env.namespaceByName(full); ns != nil {
		b.record(name, operand{sym: ns, isNS: true})
		return
	}
	b.errorf(diag.CSTypeOrNamespaceNotFound, name,
		"The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", full)
}

func (b *binder) collectNamespaceMembers(list *syntax.Node, scope *importScope, ns *Symbol, decls *[]typeDecl) {
	for _, n := range syntax.Elements(list) {
		switch n.Kind() {
		case syntax.KindNamespaceDecl, syntax.KindFileScopedNamespaceDecl:
			inner, sym := scope, ns
			for _, part := range strings.Split(nameString(n.Child(1)), ".") {
				full := qualify(inner.ns, strings.TrimSpace(part))
				sym = b.tbl.namespace(full)
				inner = &importScope{ns: full, outer: inner}
			}
			b.declare(n, sym)
			b.collectUsings(n.Child(3), inner)
			b.collectNamespaceMembers(n.Child(4), inner, sym, decls)
		case syntax.KindClassDecl, syntax.KindStructDecl, syntax.KindInterfaceDecl, syntax.KindEnumDecl:
			b.declareType(n, scope, ns, decls)
		}
	}
}

var typeKinds = map[syntax.Kind]TypeKind{
	syntax.KindClassDecl:     TypeClass,
	syntax.KindStructDecl:    TypeStruct,
	syntax.KindInterfaceDecl: TypeInterface,
	syntax.KindEnumDecl:      TypeEnum,
}

func (b *binder) declareType(n *syntax.Node, scope *importScope, container *Symbol, decls *[]typeDecl) {
	name := n.Child(3).TokenText()
	if name == "" {
		return
	}
	var tpl *syntax.Node
	if !n.Is(syntax.KindEnumDecl) {
		tpl = n.Child(4)
	}
	params := typeParameterNames(tpl)
	full := metadataName(container, name, len(params))
	flags, access := modifierFlags(n.Child(1))

	sym := b.tbl.types[full]
	if sym == nil || !sym.Is(FlagPartial) || flags&FlagPartial == 0 {
		sym = &Symbol{
			Kind:       SymbolType,
			Name:       name,
			Flags:      flags,
			Access:     defaultAccess(access, container),
			Containing: container,
			TypeKind:   typeKinds[n.Kind()],
			Decl:       n,
			fullName:   full,
			imports:    scope,
		}
		if b.tbl.metadata {
			sym.Flags |= FlagMetadata
			sym.Special = specialByMetadata[full]
		}
		for i, p := range params {
			sym.TypeParams = append(sym.TypeParams, &Symbol{
				Kind:       SymbolType,
				TypeKind:   TypeParameter,
				Name:       p.TokenText(),
				Containing: sym,
				Ordinal:    i,
				Flags:      sym.Flags & FlagMetadata,
				Decl:       p,
			})
		}
		if _, dup := b.tbl.types[full]; !dup {
			b.tbl.types[full] = sym
		}
	}
	b.declare(n, sym)
	*decls = append(*decls, typeDecl{sym: sym, node: n})
	if n.Is(syntax.KindEnumDecl) {
		return
	}
	for _, m := range syntax.Elements(n.Child(7)) {
		if _, ok := typeKinds[m.Kind()]; ok {
			b.declareType(m, scope, sym, decls)
		}
	}
}

func typeParameterNames(tpl *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for t := range tpl.Child(1).Children() {
		if t.IsToken() && t.TokenText() != "," {
			out = append(out, t)
		}
	}
	return out
}

func modifierFlags(mods *syntax.Node) (SymbolFlags, Accessibility) {
	var flags SymbolFlags
	access := AccessNotApplicable
	for m := range mods.Children() {
		switch m.TokenText() {
		case "public":
			access = AccessPublic
		case "private":
			if access == AccessNotApplicable {
				access = AccessPrivate
			}
		case "protected":
			access = AccessProtected
		case "internal":
			if access != AccessProtected {
				access = AccessInternal
			}
		case "static":
			flags |= FlagStatic
		case "abstract":
			flags |= FlagAbstract
		case "virtual":
			flags |= FlagVirtual
		case "override":
			flags |= FlagOverride
		case "sealed":
			flags |= FlagSealed
		case "async":
			flags |= FlagAsync
		case "const":
			flags |= FlagConst | FlagStatic
		case "readonly":
			flags |= FlagReadOnly
		case "partial":
			flags |= FlagPartial
		}
	}
	return flags, access
}

// defaultAccess applies C# defaults: internal for top level types, public
// inside interfaces, private elsewhere.
func defaultAccess(a Accessibility, container *Symbol) Accessibility {
	switch {
	case a != AccessNotApplicable:
		return a
	case container == nil || container.Kind == SymbolNamespace:
		return AccessInternal
	case container.TypeKind == TypeInterface || container.TypeKind == TypeEnum:
		return AccessPublic
	}
	return AccessPrivate
}

// declareHeader binds attributes, the base list and the enum underlying
// type of one declaration.
func (b *binder) declareHeader(d typeDecl) {
	b.enterType(d.sym)
	t, n := d.sym, d.node
	t.Attributes = append(t.Attributes, b.bindAttributes(n.Child(0))...)

	baseSlot := 5
	if t.TypeKind == TypeEnum {
		baseSlot = 4
	}
	var bases []*Symbol
	if bl := n.Child(baseSlot); bl != nil {
		for _, bn := range syntax.Elements(bl.Child(1)) {
			bases = append(bases, b.resolveType(bn))
		}
	}
	switch t.TypeKind {
	case TypeEnum:
		if len(bases) > 0 && isIntegral(bases[0]) && bases[0].Special != SpecialChar {
			t.Underlying = bases[0]
		} else if t.Underlying == nil {
			t.Underlying = b.env.special(SpecialInt32)
		}
		t.Base = b.env.special(SpecialEnum)
	case TypeClass:
		if len(bases) > 0 && bases[0].TypeKind == TypeClass {
			t.Base, bases = bases[0], bases[1:]
		}
		if t.Base == nil && t.Special != SpecialObject {
			t.Base = b.env.special(SpecialObject)
		}
		t.Interfaces = append(t.Interfaces, interfacesOnly(bases)...)
	case TypeStruct:
		if t.Special != SpecialValueType {
			t.Base = b.env.special(SpecialValueType)
		}
		t.Interfaces = append(t.Interfaces, interfacesOnly(bases)...)
	case TypeInterface:
		t.Interfaces = append(t.Interfaces, interfacesOnly(bases)...)
	}
	if t.Base.IsError() {
		t.Base = nil
	}
}

func interfacesOnly(ts []*Symbol) []*Symbol {
	var out []*Symbol
	for _, t := range ts {
		if t.TypeKind == TypeInterface {
			out = append(out, t)
		}
	}
	return out
}

// bindAttributes resolves attribute names, trying the Attribute suffix
// first the way the compiler does.
func (b *binder) bindAttributes(lists *syntax.Node) []*Symbol {
	var out []*Symbol
	for _, list := range syntax.Elements(lists) {
		for _, a := range syntax.Elements(list.Child(1)) {
			name := a.Child(0)
			t := b.attributeType(name)
			if t.IsError() {
				b.errorf(diag.CSTypeOrNamespaceNotFound, name,
					"The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", nameString(name))
			} else {
				b.record(name, typeOperand(t))
				b.reference(name, t)
				out = append(out, t)
			}
		}
	}
	return out
}

func (b *binder) attributeType(name *syntax.Node) *Symbol {
	switch name.Kind() {
	case syntax.KindIdentifierName:
		text := name.Child(0).TokenText()
		if t := b.lookupType(text+"Attribute", 0); t != nil {
			return t
		}
		if t := b.lookupType(text, 0); t != nil {
			return t
		}
	case syntax.KindQualifiedName:
		left := b.resolveTypeOrNamespace(name.Child(0), false)
		if left.IsError() {
			return errorType
		}
		text := name.Child(2).Child(0).TokenText()
		for _, candidate := range []string{text + "Attribute", text} {
			var t *Symbol
			if left.Kind == SymbolNamespace {
				t = b.env.typeByName(metadataName(left, candidate, 0))
			} else {
				t = b.nestedType(left, candidate, 0)
			}
			if t != nil {
				return t
			}
		}
	}
	return errorType
}

// declareMembers creates field, method, constructor, property and enum
// member symbols of one declaration.
func (b *binder) declareMembers(d typeDecl) {
	b.enterType(d.sym)
	t, n := d.sym, d.node
	meta := t.Flags & FlagMetadata
	add := func(m *Symbol, node *syntax.Node) {
		m.Flags |= meta
		m.Containing = t
		t.members = append(t.members, m)
		b.declare(node, m)
	}
	if t.TypeKind == TypeEnum {
		ordinal := len(t.members)
		for _, em := range syntax.Elements(n.Child(6)) {
			name := em.Child(1).TokenText()
			if name == "" {
				continue
			}
			add(&Symbol{
				Kind:       SymbolField,
				Name:       name,
				Flags:      FlagStatic | FlagConst,
				Access:     AccessPublic,
				Type:       t,
				Attributes: b.bindAttributes(em.Child(0)),
				Ordinal:    ordinal,
				Decl:       em,
			}, em)
			ordinal++
		}
		return
	}
	for _, m := range syntax.Elements(n.Child(7)) {
		flags, access := modifierFlags(m.Child(1))
		access = defaultAccess(access, t)
		if t.TypeKind == TypeInterface {
			access = AccessPublic
		}
		switch m.Kind() {
		case syntax.KindFieldDecl:
			vd := m.Child(2)
			ft := b.resolveType(vd.Child(0))
			attrs := b.bindAttributes(m.Child(0))
			for _, v := range syntax.Elements(vd.Child(1)) {
				name := v.Child(0).TokenText()
				if name == "" {
					continue
				}
				add(&Symbol{Kind: SymbolField, Name: name, Flags: flags, Access: access, Type: ft, Attributes: attrs, Decl: v}, v)
			}
		case syntax.KindMethodDecl:
			name := m.Child(3).TokenText()
			if name == "" {
				continue
			}
			s := &Symbol{Kind: SymbolMethod, Name: name, Flags: flags, Access: access, Containing: t, Decl: m}
			for i, p := range typeParameterNames(m.Child(4)) {
				s.TypeParams = append(s.TypeParams, &Symbol{
					Kind:       SymbolType,
					TypeKind:   TypeParameter,
					Name:       p.TokenText(),
					Containing: s,
					Ordinal:    i,
					Flags:      meta,
					Decl:       p,
				})
			}
			if t.TypeKind == TypeInterface && m.Child(6) == nil && m.Child(7) == nil {
				s.Flags |= FlagAbstract
			}
			b.member = s
			s.Type = b.resolveType(m.Child(2))
			s.Params = b.declareParams(m.Child(5), s)
			s.Attributes = b.bindAttributes(m.Child(0))
			b.member = nil
			add(s, m)
		case syntax.KindConstructorDecl:
			s := &Symbol{
				Kind:   SymbolMethod,
				Name:   ".ctor",
				Flags:  flags | FlagConstructor,
				Access: access,
				Type:   b.env.special(SpecialVoid),
				Decl:   m,
			}
			s.Containing = t
			s.Params = b.declareParams(m.Child(3), s)
			add(s, m)
		case syntax.KindPropertyDecl:
			name := m.Child(3).TokenText()
			if name == "" {
				continue
			}
			s := &Symbol{Kind: SymbolProperty, Name: name, Flags: flags, Access: access, Type: b.resolveType(m.Child(2)), Decl: m}
			s.Attributes = b.bindAttributes(m.Child(0))
			if m.Child(5) != nil {
				s.Flags |= FlagGetter
			}
			if acc := m.Child(4); acc != nil {
				for _, a := range syntax.Elements(acc.Child(1)) {
					switch a.Child(2).TokenText() {
					case "get":
						s.Flags |= FlagGetter
					case "set", "init":
						s.Flags |= FlagSetter
					}
				}
			}
			add(s, m)
		default:
			if _, ok := typeKinds[m.Kind()]; ok {
				if nested, ok := b.m.declared[m]; ok && nested.Containing == t {
					t.members = append(t.members, nested)
				}
			}
		}
	}
}

func (b *binder) declareParams(list *syntax.Node, owner *Symbol) []*Symbol {
	if list == nil {
		return nil
	}
	var out []*Symbol
	for i, p := range syntax.Elements(list.Child(1)) {
		var flags SymbolFlags
		for m := range p.Child(1).Children() {
			switch m.TokenText() {
			case "ref", "in":
				flags |= FlagRef
			case "out":
				flags |= FlagOut
			case "params":
				flags |= FlagParams
			}
		}
		if p.Child(4) != nil {
			flags |= FlagOptional
		}
		s := &Symbol{
			Kind:       SymbolParameter,
			Name:       p.Child(3).TokenText(),
			Flags:      flags | owner.Flags&FlagMetadata,
			Containing: owner,
			Type:       b.resolveType(p.Child(2)),
			Ordinal:    i,
			Decl:       p,
		}
		b.declare(p, s)
		out = append(out, s)
	}
	return out
}

// evalConstants computes the values of const fields and enum members.
func (b *binder) evalConstants(d typeDecl) {
	for _, m := range d.sym.members {
		if m.Kind == SymbolField && m.IsConst() {
			b.constValue(m)
		}
	}
}

// constValue returns the value of a constant field, evaluating it on first
// use. Cycles yield no value.
func (b *binder) constValue(f *Symbol) (any, bool) {
	def := f.Definition()
	if def.hasConst || def.Decl == nil || def.Decl.Tree() != b.tree || !def.IsConst() {
		return f.ConstantValue()
	}
	switch b.constState[def] {
	case constStateDone:
		return def.ConstantValue()
	case constStateVisiting:
		return nil, false
	}
	b.constState[def] = constStateVisiting
	saved := b.save()
	receivers := b.receivers
	b.receivers = nil
	if ct := def.ContainingType(); ct != nil {
		b.enterType(ct)
	}
	v, ok := b.evalConstInit(def)
	b.restore(saved)
	b.receivers = receivers
	b.constState[def] = constStateDone
	if ok {
		def.Constant, def.hasConst = v, true
	}
	return v, ok
}

func (b *binder) evalConstInit(f *Symbol) (any, bool) {
	if f.Decl.Is(syntax.KindEnumMember) {
		return b.evalEnumMember(f)
	}
	init := f.Decl.Child(1)
	if init == nil {
		return nil, false
	}
	expr := init.Child(1)
	op := b.convert(expr, b.bindExpr(expr), f.Type)
	if !op.hasConst {
		return nil, false
	}
	return op.constant, true
}

func (b *binder) evalEnumMember(f *Symbol) (any, bool) {
	enum := f.Containing
	st := constSpecial(enum)
	if init := f.Decl.Child(2); init != nil {
		expr := init.Child(1)
		op := b.bindExpr(expr)
		target := enum.Underlying
		if SameType(op.typ, enum) {
			target = enum
		}
		op = b.convert(expr, op, target)
		if !op.hasConst {
			return nil, false
		}
		return convertConst(op.constant, st, true)
	}
	if f.Ordinal == 0 {
		return convertConst(int64(0), st, true)
	}
	var prev *Symbol
	for _, m := range enum.members {
		if m.Ordinal == f.Ordinal-1 && m.Kind == SymbolField {
			prev = m
		}
	}
	pv, ok := b.constValue(prev)
	if !ok {
		return nil, false
	}
	i, u, ok := IntegerValue(pv)
	if !ok {
		return nil, false
	}
	if isUnsigned(st) {
		if u == 1<<64-1 {
			return nil, false
		}
		return convertConst(u+1, st, true)
	}
	if i == 1<<63-1 {
		return nil, false
	}
	return convertConst(i+1, st, true)
}
