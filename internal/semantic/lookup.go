package semantic

import (
	"slices"

	"codefix/internal/syntax"
)

// lookupMembers finds members called name in t and its base types. A
// non-method member hides everything below it; methods are collected from
// every level, with overrides and hidden signatures dropped.
func (b *binder) lookupMembers(t *Symbol, name string) []*Symbol {
	var out []*Symbol
	for _, cur := range b.lookupChain(t) {
		found := cur.MembersNamed(name)
		if len(found) == 0 {
			continue
		}
		if found[0].Kind != SymbolMethod {
			if len(out) == 0 {
				return found
			}
			return out
		}
		for _, m := range found {
			if m.Is(FlagConstructor) {
				continue
			}
			if !slices.ContainsFunc(out, func(o *Symbol) bool { return sameSignature(o, m) }) {
				out = append(out, m)
			}
		}
	}
	return out
}

// lookupChain lists the types whose members are visible through t, most
// derived first.
func (b *binder) lookupChain(t *Symbol) []*Symbol {
	if t == nil || t.IsError() {
		return nil
	}
	var chain []*Symbol
	seen := make(map[*Symbol]bool)
	var add func(*Symbol)
	add = func(s *Symbol) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		chain = append(chain, s)
	}
	switch t.TypeKind {
	case TypeArray:
		add(b.env.typeByName("System.Array"))
	case TypeParameter:
	default:
		for cur := t; cur != nil; cur = cur.Base {
			add(cur)
		}
		if t.TypeKind == TypeInterface {
			var walk func(*Symbol)
			walk = func(s *Symbol) {
				for _, it := range s.Interfaces {
					add(it)
					walk(it)
				}
			}
			walk(t)
		}
	}
	for _, s := range chain {
		if s.Special == SpecialObject {
			return chain
		}
	}
	add(b.env.special(SpecialObject))
	return chain
}

func sameSignature(a, c *Symbol) bool {
	if len(a.Params) != len(c.Params) || len(a.TypeParams) != len(c.TypeParams) {
		return false
	}
	for i := range a.Params {
		if !SameType(a.Params[i].Type, c.Params[i].Type) && !bothTypeParams(a.Params[i].Type, c.Params[i].Type) {
			return false
		}
	}
	return true
}

func bothTypeParams(a, c *Symbol) bool {
	return a != nil && c != nil && a.TypeKind == TypeParameter && c.TypeKind == TypeParameter && a.Ordinal == c.Ordinal
}

// constructors returns the instance constructors of t, synthesizing the
// default one when a class or struct declares none.
func constructors(t *Symbol) []*Symbol {
	var out []*Symbol
	for _, m := range t.Members() {
		if m.Is(FlagConstructor) && !m.IsStatic() {
			out = append(out, m)
		}
	}
	if len(out) == 0 || t.TypeKind == TypeStruct {
		out = append(out, &Symbol{
			Kind:       SymbolMethod,
			Name:       ".ctor",
			Flags:      FlagConstructor | t.Flags&FlagMetadata,
			Access:     AccessPublic,
			Containing: t,
			Type:       t,
		})
	}
	return out
}

// argument is a bound call argument.
type argument struct {
	node *syntax.Node
	op   operand
}

// candidate is a method considered by overload resolution, after type
// inference, with the parameter type each argument is matched against.
type candidate struct {
	method   *Symbol
	targets  []*Symbol
	expanded bool
}

// applicable checks arity and argument conversions of m, inferring method
// type arguments when needed. arityOK reports whether the argument count
// fits at all.
func (b *binder) applicable(m *Symbol, args []argument) (c candidate, arityOK, ok bool) {
	if len(m.TypeParams) > 0 && len(m.TypeArgs) == 0 {
		inferred, ok := b.inferTypeArgs(m, args)
		if !ok {
			return candidate{}, b.arityFits(m, len(args)), false
		}
		m = instantiateMethod(m, inferred)
	}
	if targets, ok := b.normalTargets(m, len(args)); ok {
		arityOK = true
		if b.argsConvert(args, targets) {
			return candidate{method: m, targets: targets}, true, true
		}
	}
	if targets, ok := b.expandedTargets(m, len(args)); ok {
		arityOK = true
		if b.argsConvert(args, targets) {
			return candidate{method: m, targets: targets, expanded: true}, true, true
		}
	}
	return candidate{method: m}, arityOK, false
}

func (b *binder) arityFits(m *Symbol, n int) bool {
	_, normal := b.normalTargets(m, n)
	_, expanded := b.expandedTargets(m, n)
	return normal || expanded
}

func (b *binder) normalTargets(m *Symbol, n int) ([]*Symbol, bool) {
	if n > len(m.Params) {
		return nil, false
	}
	for _, p := range m.Params[n:] {
		if !p.Is(FlagOptional) && !p.Is(FlagParams) {
			return nil, false
		}
	}
	targets := make([]*Symbol, n)
	for i := range n {
		targets[i] = m.Params[i].Type
	}
	return targets, true
}

func (b *binder) expandedTargets(m *Symbol, n int) ([]*Symbol, bool) {
	k := len(m.Params)
	if k == 0 || !m.Params[k-1].Is(FlagParams) || m.Params[k-1].Type.TypeKind != TypeArray || n < k-1 {
		return nil, false
	}
	targets := make([]*Symbol, n)
	for i := range n {
		if i < k-1 {
			targets[i] = m.Params[i].Type
		} else {
			targets[i] = m.Params[k-1].Type.Element
		}
	}
	return targets, true
}

func (b *binder) argsConvert(args []argument, targets []*Symbol) bool {
	for i, a := range args {
		if !b.implicitConversion(a.op.typ, targets[i], a.op.constant, a.op.hasConst) {
			return false
		}
	}
	return true
}

// inferTypeArgs infers method type arguments from argument types by
// structural matching of parameter types.
func (b *binder) inferTypeArgs(m *Symbol, args []argument) ([]*Symbol, bool) {
	inferred := make(map[*Symbol]*Symbol)
	for i, a := range args {
		if i >= len(m.Params) {
			break
		}
		unify(m.Params[i].Type, a.op.typ, inferred)
	}
	out := make([]*Symbol, len(m.TypeParams))
	for i, tp := range m.TypeParams {
		t, ok := inferred[tp]
		if !ok || t.IsError() {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func unify(param, arg *Symbol, inferred map[*Symbol]*Symbol) {
	if param == nil || arg == nil || arg.IsError() {
		return
	}
	switch {
	case param.TypeKind == TypeParameter:
		if _, ok := inferred[param]; !ok {
			inferred[param] = arg
		}
	case param.TypeKind == TypeArray && arg.TypeKind == TypeArray:
		unify(param.Element, arg.Element, inferred)
	case len(param.TypeArgs) > 0 && len(arg.TypeArgs) == len(param.TypeArgs) && param.Original == arg.Original:
		for i := range param.TypeArgs {
			unify(param.TypeArgs[i], arg.TypeArgs[i], inferred)
		}
	}
}

// resolveOverload picks the best applicable candidate. It returns the
// applicable set size so callers can tell "no overload" from "ambiguous".
func (b *binder) resolveOverload(group []*Symbol, args []argument) (best candidate, anyArity bool, found bool) {
	var ok []candidate
	for _, m := range group {
		c, arityOK, applicable := b.applicable(m, args)
		anyArity = anyArity || arityOK
		if applicable {
			ok = append(ok, c)
		}
	}
	if len(ok) == 0 {
		return candidate{}, anyArity, false
	}
	best = ok[0]
	for _, c := range ok[1:] {
		if b.better(c, best, args) {
			best = c
		}
	}
	return best, true, true
}

// better implements the betterness rules: per-argument better conversion
// targets, then normal form over expanded form, then non-generic over
// generic.
func (b *binder) better(x, y candidate, args []argument) bool {
	xBetter, yBetter := false, false
	for i, a := range args {
		tx, ty := x.targets[i], y.targets[i]
		if SameType(tx, ty) {
			continue
		}
		switch {
		case SameType(a.op.typ, tx):
			xBetter = true
		case SameType(a.op.typ, ty):
			yBetter = true
		case b.betterConversionTarget(tx, ty):
			xBetter = true
		case b.betterConversionTarget(ty, tx):
			yBetter = true
		}
	}
	if xBetter != yBetter {
		return xBetter
	}
	if x.expanded != y.expanded {
		return !x.expanded
	}
	if xg, yg := len(x.method.TypeArgs) > 0, len(y.method.TypeArgs) > 0; xg != yg {
		return !xg
	}
	return len(x.method.Params) < len(y.method.Params)
}
