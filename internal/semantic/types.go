package semantic

import (
	"strings"

	"codefix/internal/diag"
	"codefix/internal/syntax"
)

// Sentinel types. They carry no members and compare equal only to
// themselves.
var (
	errorType   = &Symbol{Kind: SymbolType, TypeKind: TypeError, Name: "?"}
	nullType    = &Symbol{Kind: SymbolType, TypeKind: TypeNull, Name: "<null>"}
	defaultType = &Symbol{Kind: SymbolType, TypeKind: TypeNull, Name: "default"}
)

// arrayOf builds T[]. Arrays are structural: two arrays of the same element
// type are the same type under SameType.
func arrayOf(elem *Symbol) *Symbol {
	return &Symbol{
		Kind:     SymbolType,
		TypeKind: TypeArray,
		Name:     elem.Name + "[]",
		Element:  elem,
		Access:   AccessPublic,
	}
}

// typeMap pairs type parameters with their arguments.
func typeMap(params, args []*Symbol) map[*Symbol]*Symbol {
	if len(params) == 0 || len(params) != len(args) {
		return nil
	}
	m := make(map[*Symbol]*Symbol, len(params))
	for i, p := range params {
		m[p] = args[i]
	}
	return m
}

// construct instantiates a generic type definition. Members are produced on
// first use with the type arguments substituted.
func construct(def *Symbol, args []*Symbol) *Symbol {
	def = def.Definition()
	tm := typeMap(def.TypeParams, args)
	c := &Symbol{
		Kind:       SymbolType,
		Name:       def.Name,
		Flags:      def.Flags,
		Access:     def.Access,
		Containing: def.Containing,
		TypeKind:   def.TypeKind,
		TypeParams: def.TypeParams,
		TypeArgs:   args,
		Original:   def,
		Attributes: def.Attributes,
		Decl:       def.Decl,
		imports:    def.imports,
	}
	c.Base = substitute(def.Base, tm)
	for _, it := range def.Interfaces {
		c.Interfaces = append(c.Interfaces, substitute(it, tm))
	}
	c.build = func() []*Symbol {
		src := def.Members()
		out := make([]*Symbol, 0, len(src))
		for _, m := range src {
			out = append(out, substituteMember(m, c, tm))
		}
		return out
	}
	return c
}

// substituteMember copies a member of a generic definition into a
// constructed owner.
func substituteMember(m, owner *Symbol, tm map[*Symbol]*Symbol) *Symbol {
	if m.Kind == SymbolType {
		return m
	}
	s := &Symbol{
		Kind:       m.Kind,
		Name:       m.Name,
		Flags:      m.Flags,
		Access:     m.Access,
		Containing: owner,
		Type:       substitute(m.Type, tm),
		TypeParams: m.TypeParams,
		Original:   m,
		Attributes: m.Attributes,
		Constant:   m.Constant,
		hasConst:   m.hasConst,
		Ordinal:    m.Ordinal,
		Decl:       m.Decl,
	}
	s.Params = substituteParams(m.Params, s, tm)
	return s
}

func substituteParams(params []*Symbol, owner *Symbol, tm map[*Symbol]*Symbol) []*Symbol {
	if len(params) == 0 {
		return nil
	}
	out := make([]*Symbol, len(params))
	for i, p := range params {
		out[i] = &Symbol{
			Kind:       SymbolParameter,
			Name:       p.Name,
			Flags:      p.Flags,
			Containing: owner,
			Type:       substitute(p.Type, tm),
			Original:   p,
			Ordinal:    p.Ordinal,
			Decl:       p.Decl,
		}
	}
	return out
}

// instantiateMethod applies method type arguments to a generic method.
func instantiateMethod(m *Symbol, args []*Symbol) *Symbol {
	tm := typeMap(m.TypeParams, args)
	s := &Symbol{
		Kind:       SymbolMethod,
		Name:       m.Name,
		Flags:      m.Flags,
		Access:     m.Access,
		Containing: m.Containing,
		Type:       substitute(m.Type, tm),
		TypeParams: m.TypeParams,
		TypeArgs:   args,
		Original:   m,
		Attributes: m.Attributes,
		Decl:       m.Decl,
	}
	s.Params = substituteParams(m.Params, s, tm)
	return s
}

// substitute replaces type parameters inside t.
func substitute(t *Symbol, tm map[*Symbol]*Symbol) *Symbol {
	if t == nil || len(tm) == 0 {
		return t
	}
	switch {
	case t.TypeKind == TypeParameter:
		if r, ok := tm[t]; ok {
			return r
		}
		return t
	case t.TypeKind == TypeArray:
		if e := substitute(t.Element, tm); e != t.Element {
			return arrayOf(e)
		}
		return t
	case len(t.TypeArgs) > 0:
		changed := false
		args := make([]*Symbol, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = substitute(a, tm)
			changed = changed || args[i] != a
		}
		if changed {
			return construct(t.Original, args)
		}
	}
	return t
}

// nullableOf builds Nullable<T>.
func (b *binder) nullableOf(t *Symbol) *Symbol {
	def := b.env.typeByName("System.Nullable`1")
	if def == nil || t.IsError() {
		return errorType
	}
	return construct(def, []*Symbol{t})
}

// resolveType binds a node in type position. Unknown names are reported as
// CS0246 and yield the error type.
func (b *binder) resolveType(n *syntax.Node) *Symbol {
	t := b.resolveTypeOrNamespace(n, true)
	if t == nil || t.Kind != SymbolType {
		if t != nil {
			b.errorf(diag.CSTypeExpected, n, "'%s' is a namespace but is used like a type", t.fullName)
		}
		return errorType
	}
	return t
}

// resolveTypeOrNamespace resolves a type syntax node to a type or a
// namespace. With report unset, failures yield the error type silently.
func (b *binder) resolveTypeOrNamespace(n *syntax.Node, report bool) *Symbol {
	var t *Symbol
	switch n.Kind() {
	case syntax.KindPredefinedType:
		t = b.env.typeByName(keywordTypes[n.Child(0).TokenText()])
		if t == nil {
			t = errorType
		}
	case syntax.KindNullableType:
		inner := b.resolveType(n.Child(0))
		switch {
		case inner.IsError():
			t = errorType
		case inner.IsValueType() && !inner.IsNullable():
			t = b.nullableOf(inner)
		default:
			t = inner
		}
	case syntax.KindArrayType:
		inner := b.resolveType(n.Child(0))
		if inner.IsError() {
			t = errorType
		} else {
			t = arrayOf(inner)
		}
	case syntax.KindIdentifierName, syntax.KindGenericName:
		name := n.Child(0).TokenText()
		if name == "" {
			return errorType
		}
		args := b.typeArguments(n)
		t = b.lookupType(name, len(args))
		if t == nil {
			if ns := b.lookupNamespace(name); ns != nil && len(args) == 0 {
				b.record(n, operand{sym: ns, isNS: true})
				return ns
			}
			if report {
				b.errorf(diag.CSTypeOrNamespaceNotFound, n,
					"The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", name)
			}
			return errorType
		}
		if len(args) > 0 {
			t = construct(t, args)
		}
	case syntax.KindQualifiedName:
		left := b.resolveTypeOrNamespace(n.Child(0), report)
		if left == nil || left.IsError() {
			return errorType
		}
		right := n.Child(2)
		name := right.Child(0).TokenText()
		args := b.typeArguments(right)
		if left.Kind == SymbolNamespace {
			full := qualify(left.fullName, name)
			if found := b.env.typeByName(metadataName(left, name, len(args))); found != nil {
				t = found
			} else if ns := b.env.namespaceByName(full); ns != nil && len(args) == 0 {
				b.record(right, operand{sym: ns, isNS: true})
				b.record(n, operand{sym: ns, isNS: true})
				return ns
			}
		} else {
			t = b.nestedType(left, name, len(args))
		}
		if t == nil {
			if report {
				b.errorf(diag.CSTypeOrNamespaceNotFound, right,
					"The type or namespace name '%s' does not exist in '%s'", name, displayName(left))
			}
			return errorType
		}
		if len(args) > 0 {
			t = construct(t, args)
		}
		b.record(right, operand{sym: t, typ: t, isType: true})
	default:
		if report {
			b.errorf(diag.CSTypeExpected, n, "Type expected")
		}
		return errorType
	}
	b.record(n, operand{sym: t, typ: t, isType: true})
	return t
}

func (b *binder) typeArguments(n *syntax.Node) []*Symbol {
	if !n.Is(syntax.KindGenericName) {
		return nil
	}
	nodes := syntax.GenericName{Node: n}.TypeArguments()
	args := make([]*Symbol, len(nodes))
	for i, a := range nodes {
		args[i] = b.resolveType(a)
	}
	return args
}

// lookupType finds a type by simple name and arity from the current context:
// type parameters of the member and enclosing types, nested types of
// enclosing types and their bases, then the namespace chain with its usings.
func (b *binder) lookupType(name string, arity int) *Symbol {
	if arity == 0 {
		for _, tp := range b.member.typeParamsOrNil() {
			if tp.Name == name {
				return tp
			}
		}
	}
	for t := b.typ; t != nil; t = t.ContainingType() {
		if arity == 0 {
			for _, tp := range t.TypeParams {
				if tp.Name == name {
					return tp
				}
			}
		}
		if nt := b.nestedType(t, name, arity); nt != nil {
			return nt
		}
	}
	for s := b.imports; s != nil; s = s.outer {
		if t := b.env.typeByName(qualifyArity(s.ns, name, arity)); t != nil {
			return t
		}
		var found *Symbol
		for _, u := range s.usings {
			if t := b.env.typeByName(qualifyArity(u, name, arity)); t != nil && found == nil {
				found = t
			}
		}
		if found != nil {
			return found
		}
	}
	return nil
}

func qualifyArity(ns, name string, arity int) string {
	return metadataName(&Symbol{Kind: SymbolNamespace, fullName: ns}, name, arity)
}

func (s *Symbol) typeParamsOrNil() []*Symbol {
	if s == nil || s.Kind != SymbolMethod {
		return nil
	}
	return s.TypeParams
}

// nestedType looks for a nested type in t and its base types.
func (b *binder) nestedType(t *Symbol, name string, arity int) *Symbol {
	for cur := t.Definition(); cur != nil; cur = cur.Base.Definition() {
		if nt := b.env.typeByName(metadataName(cur, name, arity)); nt != nil {
			return nt
		}
	}
	return nil
}

// lookupNamespace resolves a simple name as a namespace, relative to the
// enclosing namespaces first.
func (b *binder) lookupNamespace(name string) *Symbol {
	for s := b.imports; s != nil; s = s.outer {
		if ns := b.env.namespaceByName(qualify(s.ns, name)); ns != nil {
			return ns
		}
	}
	return b.env.namespaceByName(name)
}

// nameString renders a (qualified) name node as dotted text.
func nameString(n *syntax.Node) string {
	switch n.Kind() {
	case syntax.KindIdentifierName, syntax.KindGenericName:
		return n.Child(0).TokenText()
	case syntax.KindQualifiedName:
		return nameString(n.Child(0)) + "." + nameString(n.Child(2))
	}
	return strings.TrimSpace(n.Text())
}

func displayName(s *Symbol) string {
	if s.Kind == SymbolNamespace {
		return s.fullName
	}
	return s.String()
}
