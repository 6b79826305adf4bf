package semantic

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// bindExpr binds an expression and records the result for n.
func (b *binder) bindExpr(n *syntax.Node) operand {
	if n == nil {
		return operand{typ: errorType}
	}
	op := b.bindExprInner(n)
	if op.typ == nil && op.isValue() {
		op.typ = errorType
	}
	b.record(n, op)
	return op
}

func (b *binder) bindExprInner(n *syntax.Node) operand {
	kind := n.Kind()
	switch {
	case kind.IsBinaryExpr():
		return b.bindBinary(n)
	case kind.IsAssignment():
		return b.bindAssignment(n)
	}
	switch kind {
	case syntax.KindNumericLiteral:
		return b.bindNumber(n)
	case syntax.KindStringLiteral:
		s, _ := unquoteString(n.Child(0).TokenText())
		return operand{typ: b.env.special(SpecialString), constant: s, hasConst: true}
	case syntax.KindInterpolatedString:
		return operand{typ: b.env.special(SpecialString)}
	case syntax.KindCharLiteral:
		r, ok := unquoteChar(n.Child(0).TokenText())
		return operand{typ: b.env.special(SpecialChar), constant: r, hasConst: ok}
	case syntax.KindTrueLiteral, syntax.KindFalseLiteral:
		return operand{typ: b.env.special(SpecialBoolean), constant: kind == syntax.KindTrueLiteral, hasConst: true}
	case syntax.KindNullLiteral:
		return operand{typ: nullType, hasConst: true}
	case syntax.KindDefaultLiteral:
		return operand{typ: defaultType}
	case syntax.KindIdentifierName, syntax.KindGenericName:
		return b.bindSimpleName(n)
	case syntax.KindQualifiedName:
		return b.bindMember(b.bindExpr(n.Child(0)), n.Child(2))
	case syntax.KindPredefinedType, syntax.KindNullableType, syntax.KindArrayType:
		return typeOperand(b.resolveType(n))
	case syntax.KindParenExpr:
		return b.bindExpr(n.Child(1))
	case syntax.KindMemberAccessExpr:
		return b.bindMember(b.bindExpr(n.Child(0)), n.Child(2))
	case syntax.KindMemberBindingExpr:
		return b.bindMember(operand{typ: b.receiver()}, n.Child(1))
	case syntax.KindElementBindingExpr:
		return b.bindElementAccess(b.receiver(), n.Child(0))
	case syntax.KindConditionalAccessExpr:
		return b.bindConditionalAccess(n)
	case syntax.KindInvocationExpr:
		return b.bindInvocation(n)
	case syntax.KindElementAccessExpr:
		return b.bindElementAccess(b.bindExpr(n.Child(0)).typ, n.Child(1))
	case syntax.KindObjectCreationExpr:
		return b.bindObjectCreation(n)
	case syntax.KindThisExpr:
		if b.typ == nil {
			return operand{typ: errorType}
		}
		return operand{typ: b.typ}
	case syntax.KindBaseExpr:
		if b.typ == nil || b.typ.Base == nil {
			return operand{typ: errorType}
		}
		return operand{typ: b.typ.Base}
	case syntax.KindTypeofExpr:
		b.resolveType(n.Child(2))
		return operand{typ: b.typeByNameOrError("System.Type")}
	case syntax.KindDefaultExpr:
		t := b.resolveType(n.Child(2))
		op := operand{typ: t}
		if v, ok := defaultConst(t); ok {
			op.constant, op.hasConst = v, true
		}
		return op
	case syntax.KindConditionalExpr:
		return b.bindConditional(n)
	case syntax.KindCastExpr:
		t := b.resolveType(n.Child(1))
		op := b.bindExpr(n.Child(3))
		out := operand{typ: t}
		if op.hasConst {
			if v, ok := convertConst(op.constant, constSpecial(t), false); ok {
				out.constant, out.hasConst = v, true
			}
		}
		return out
	case syntax.KindIsPatternExpr:
		l := b.bindExpr(n.Child(0))
		b.bindPattern(n.Child(2), l.typ)
		return operand{typ: b.env.special(SpecialBoolean)}
	case syntax.KindAwaitExpr:
		return b.bindAwait(n)
	case syntax.KindSuppressNullableWarningExpr:
		return b.bindExpr(n.Child(0))
	case syntax.KindUnaryMinusExpr:
		if lit := syntax.WalkDownParentheses(n.Child(1)); lit.Is(syntax.KindNumericLiteral) {
			if op, ok := b.negativeLiteralEdge(n, lit); ok {
				return op
			}
		}
	}
	if kind.IsPrefixUnary() || kind.IsPostfixUnary() {
		return b.bindUnary(n)
	}
	return operand{typ: errorType}
}

func (b *binder) typeByNameOrError(meta string) *Symbol {
	if t := b.env.typeByName(meta); t != nil {
		return t
	}
	return errorType
}

func (b *binder) receiver() *Symbol {
	if len(b.receivers) == 0 {
		return errorType
	}
	return b.receivers[len(b.receivers)-1]
}

func defaultConst(t *Symbol) (any, bool) {
	switch {
	case t.IsReferenceType():
		return nil, true
	case isBool(t):
		return false, true
	case isNumeric(t) || isEnum(t):
		return convertConst(int64(0), constSpecial(t), false)
	}
	return nil, false
}

// bindNumber binds a numeric literal. Integers too large for ulong are
// reported as CS1021.
func (b *binder) bindNumber(n *syntax.Node) operand {
	tok := n.Child(0)
	text := tok.TokenText()
	if tok.TokenKind() == token.RealLit {
		v, st, ok := parseRealLiteral(text)
		if !ok {
			return operand{typ: errorType}
		}
		c, _ := convertConst(v, st, false)
		return operand{typ: b.env.special(st), constant: c, hasConst: true}
	}
	v, st, ok := parseIntegerLiteral(text)
	if !ok {
		b.errorf(diag.CSIntegralTooLarge, n, "Integral constant is too large")
		return operand{typ: errorType}
	}
	c, _ := convertConst(v, st, false)
	return operand{typ: b.env.special(st), constant: c, hasConst: true}
}

// negativeLiteralEdge handles -2147483648 and -9223372036854775808, whose
// magnitude alone only fits the unsigned type.
func (b *binder) negativeLiteralEdge(n, lit *syntax.Node) (operand, bool) {
	if lit.Child(0).TokenKind() != token.IntLit {
		return operand{}, false
	}
	v, st, ok := parseIntegerLiteral(lit.Child(0).TokenText())
	if !ok {
		return operand{}, false
	}
	var out operand
	switch {
	case st == SpecialUInt32 && v == 1<<31:
		out = operand{typ: b.env.special(SpecialInt32), constant: int32(-1 << 31), hasConst: true}
	case st == SpecialUInt64 && v == 1<<63:
		out = operand{typ: b.env.special(SpecialInt64), constant: int64(-1 << 63), hasConst: true}
	default:
		return operand{}, false
	}
	b.bindExpr(n.Child(1))
	return out, true
}

// bindSimpleName resolves an identifier: locals and parameters, members of
// the enclosing types, types, namespaces, then static imports.
func (b *binder) bindSimpleName(n *syntax.Node) operand {
	name := n.Child(0).TokenText()
	if name == "" {
		return operand{typ: errorType}
	}
	var typeArgs []*Symbol
	if n.Is(syntax.KindGenericName) {
		typeArgs = b.typeArguments(n)
	}
	if len(typeArgs) == 0 {
		if s := b.scope.lookup(name); s != nil {
			b.reference(n, s)
			return valueOf(s)
		}
	}
	for t := b.typ; t != nil; t = t.ContainingType() {
		if ms := b.lookupMembers(t, name); len(ms) > 0 {
			return b.memberOperand(n, ms, typeArgs)
		}
	}
	if t := b.lookupType(name, len(typeArgs)); t != nil {
		if len(typeArgs) > 0 {
			t = construct(t, typeArgs)
		}
		b.reference(n, t)
		return typeOperand(t)
	}
	if len(typeArgs) == 0 {
		if ns := b.lookupNamespace(name); ns != nil {
			return operand{sym: ns, isNS: true}
		}
	}
	for s := b.imports; s != nil; s = s.outer {
		for _, st := range s.static {
			t := b.env.typeByName(st)
			if t == nil {
				continue
			}
			if ms := b.lookupMembers(t, name); len(ms) > 0 && ms[0].IsStatic() {
				return b.memberOperand(n, ms, typeArgs)
			}
		}
	}
	if b.opaque[name] {
		return operand{typ: errorType}
	}
	b.errorf(diag.CSNameNotFound, n, "The name '%s' does not exist in the current context", name)
	return operand{typ: errorType}
}

// methodsOfKind keeps the static or the instance methods of a method group
// when there are any.
func methodsOfKind(ms []*Symbol, static bool) []*Symbol {
	if ms[0].Kind != SymbolMethod {
		return ms
	}
	var out []*Symbol
	for _, m := range ms {
		if m.IsStatic() == static {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return ms
	}
	return out
}

// memberOperand turns a lookup result into an operand.
func (b *binder) memberOperand(n *syntax.Node, ms []*Symbol, typeArgs []*Symbol) operand {
	s := ms[0]
	switch s.Kind {
	case SymbolMethod:
		return operand{group: ms, typeArgs: typeArgs}
	case SymbolType:
		t := s
		if len(typeArgs) > 0 {
			t = construct(t, typeArgs)
		}
		b.reference(n, t)
		return typeOperand(t)
	}
	b.reference(n, s)
	op := valueOf(s)
	if s.IsConst() && !op.hasConst {
		op.constant, op.hasConst = b.constValue(s)
	}
	// Inside an enum body sibling members have the underlying type.
	if isEnum(s.Containing) && b.typ == s.Containing && s.Containing.Underlying != nil {
		op.typ = s.Containing.Underlying
	}
	return op
}

// bindMember binds the right side of a member access or member binding.
func (b *binder) bindMember(left operand, nameNode *syntax.Node) operand {
	name := nameNode.Child(0).TokenText()
	if name == "" {
		return operand{typ: errorType}
	}
	var typeArgs []*Symbol
	if nameNode.Is(syntax.KindGenericName) {
		typeArgs = b.typeArguments(nameNode)
	}
	var op operand
	switch {
	case left.isNS:
		ns := left.sym
		if t := b.env.typeByName(metadataName(ns, name, len(typeArgs))); t != nil {
			if len(typeArgs) > 0 {
				t = construct(t, typeArgs)
			}
			b.reference(nameNode, t)
			op = typeOperand(t)
		} else if sub := b.env.namespaceByName(qualify(ns.fullName, name)); sub != nil && len(typeArgs) == 0 {
			op = operand{sym: sub, isNS: true}
		} else {
			b.errorf(diag.CSTypeOrNamespaceNotFound, nameNode,
				"The type or namespace name '%s' does not exist in the namespace '%s' (are you missing an assembly reference?)", name, ns.fullName)
			return operand{typ: errorType}
		}
	case left.isType:
		t := left.sym
		ms := b.lookupMembers(t, name)
		if len(ms) == 0 {
			if nt := b.nestedType(t, name, len(typeArgs)); nt != nil {
				ms = []*Symbol{nt}
			}
		}
		if len(ms) == 0 {
			if !isBad(t) {
				b.errorf(diag.CSTypeHasNoMember, nameNode, "'%s' does not contain a definition for '%s'", t, name)
			}
			return operand{typ: errorType}
		}
		op = b.memberOperand(nameNode, methodsOfKind(ms, true), typeArgs)
	case left.group != nil:
		return operand{typ: errorType}
	default:
		t := left.typ
		if isBad(t) || t.TypeKind == TypeNull {
			return operand{typ: errorType}
		}
		ms := b.lookupMembers(t, name)
		if len(ms) == 0 {
			b.errorf(diag.CSNoMemberOnType, nameNode,
				"'%s' does not contain a definition for '%s' and no accessible extension method '%s' accepting a first argument of type '%s' could be found (are you missing a using directive or an assembly reference?)",
				t, name, name, t)
			return operand{typ: errorType}
		}
		op = b.memberOperand(nameNode, methodsOfKind(ms, false), typeArgs)
	}
	b.record(nameNode, op)
	return op
}

func (b *binder) bindConditionalAccess(n *syntax.Node) operand {
	recv := b.bindExpr(n.Child(0))
	t := recv.typ
	switch {
	case !recv.isValue() || isBad(t) || t.TypeKind == TypeNull:
		t = errorType
	case t.IsValueType() && !t.IsNullable():
		b.errorf(diag.CSBadUnaryOperand, n, "Operator '?' cannot be applied to operand of type '%s'", t)
		t = errorType
	default:
		t = t.NullableUnderlying()
	}
	b.receivers = append(b.receivers, t)
	inner := b.bindExpr(n.Child(2))
	b.receivers = b.receivers[:len(b.receivers)-1]
	rt := inner.typ
	if rt.IsValueType() && !rt.IsNullable() {
		rt = b.nullableOf(rt)
	}
	return operand{typ: rt, sym: inner.sym}
}

func (b *binder) bindArguments(list *syntax.Node) []argument {
	if list == nil {
		return nil
	}
	var out []argument
	for _, a := range syntax.Elements(list.Child(1)) {
		expr := a.Child(0)
		out = append(out, argument{node: expr, op: b.bindExpr(expr)})
	}
	return out
}

// calleeName returns the name node a callee expression ends in.
func calleeName(n *syntax.Node) *syntax.Node {
	n = syntax.WalkDownParentheses(n)
	switch n.Kind() {
	case syntax.KindMemberAccessExpr:
		return n.Child(2)
	case syntax.KindMemberBindingExpr:
		return n.Child(1)
	}
	return n
}

func (b *binder) bindInvocation(n *syntax.Node) operand {
	callee := n.Child(0)
	if callee.Is(syntax.KindIdentifierName) && callee.Child(0).TokenText() == "nameof" && b.scope.lookup("nameof") == nil {
		if op, ok := b.bindNameof(n); ok {
			return op
		}
	}
	target := b.bindExpr(callee)
	args := b.bindArguments(n.Child(1))
	if target.group == nil {
		return operand{typ: errorType}
	}
	return b.invoke(calleeName(callee), callee, target, args)
}

// bindNameof binds nameof(x) to the constant name of x.
func (b *binder) bindNameof(n *syntax.Node) (operand, bool) {
	args := syntax.InvocationExpr{Node: n}.Arguments()
	if len(args) != 1 {
		return operand{}, false
	}
	expr := syntax.ArgumentExpr(args[0])
	if op := b.bindExpr(expr); op.group != nil {
		b.reference(calleeName(expr), op.group[0])
	}
	name := syntax.NameText(calleeName(expr))
	return operand{typ: b.env.special(SpecialString), constant: name, hasConst: true}, true
}

func (b *binder) invoke(nameNode, callee *syntax.Node, target operand, args []argument) operand {
	group := target.group
	if len(target.typeArgs) > 0 {
		var inst []*Symbol
		for _, m := range group {
			if len(m.TypeParams) == len(target.typeArgs) {
				inst = append(inst, instantiateMethod(m, target.typeArgs))
			}
		}
		group = inst
	}
	name := target.group[0].Name
	best, anyArity, ok := b.resolveOverload(group, args)
	if !ok {
		for _, a := range args {
			if isBad(a.op.typ) {
				return operand{typ: errorType}
			}
		}
		if !anyArity {
			b.errorf(diag.CSNoOverload, nameNode, "No overload for method '%s' takes %d arguments", name, len(args))
		} else {
			b.reportBadArgument(group, args)
		}
		return operand{typ: errorType}
	}
	m := best.method
	for i, a := range args {
		b.setConverted(a.node, best.targets[i])
	}
	op := operand{sym: m}
	b.record(nameNode, op)
	if callee != nameNode {
		b.record(callee, op)
	}
	b.reference(nameNode, m)
	op.typ = m.Type
	if op.typ == nil {
		op.typ = b.env.special(SpecialVoid)
	}
	return op
}

// reportBadArgument reports CS1503 on the first argument that fails to
// convert for the first candidate accepting the argument count.
func (b *binder) reportBadArgument(group []*Symbol, args []argument) {
	for _, m := range group {
		c, arityOK, _ := b.applicable(m, args)
		if !arityOK {
			continue
		}
		targets, ok := b.normalTargets(c.method, len(args))
		if !ok {
			targets, _ = b.expandedTargets(c.method, len(args))
		}
		for i, a := range args {
			if !b.implicitConversion(a.op.typ, targets[i], a.op.constant, a.op.hasConst) {
				b.errorf(diag.CSBadArgument, a.node, "Argument %d: cannot convert from '%s' to '%s'", i+1, a.op.typ, targets[i])
				return
			}
		}
		return
	}
}

func (b *binder) bindObjectCreation(n *syntax.Node) operand {
	t := b.resolveType(n.Child(1))
	args := b.bindArguments(n.Child(2))
	if isBad(t) || t.TypeKind == TypeParameter || t.TypeKind == TypeInterface {
		return operand{typ: t}
	}
	best, _, ok := b.resolveOverload(constructors(t), args)
	if !ok {
		b.errorf(diag.CSNoConstructor, n.Child(1), "'%s' does not contain a constructor that takes %d arguments", t, len(args))
		return operand{typ: t}
	}
	for i, a := range args {
		b.setConverted(a.node, best.targets[i])
	}
	b.reference(n.Child(1), best.method)
	return operand{typ: t, sym: best.method}
}

// bindElementAccess binds indexing into arrays, strings and lists.
func (b *binder) bindElementAccess(t *Symbol, list *syntax.Node) operand {
	args := b.bindArguments(list)
	intType := b.env.special(SpecialInt32)
	var elem *Symbol
	switch {
	case isBad(t) || t.TypeKind == TypeNull:
		return operand{typ: errorType}
	case t.TypeKind == TypeArray:
		elem = t.Element
	case isString(t):
		elem = b.env.special(SpecialChar)
	case t.FullName() == "System.Collections.Generic.List`1":
		elem = t.TypeArgs[0]
	default:
		return operand{typ: errorType}
	}
	for _, a := range args {
		b.convert(a.node, a.op, intType)
	}
	return operand{typ: elem}
}

func (b *binder) bindAwait(n *syntax.Node) operand {
	op := b.bindExpr(n.Child(1))
	t := op.typ
	if isBad(t) {
		return operand{typ: errorType}
	}
	switch t.FullName() {
	case "System.Threading.Tasks.Task", "System.Threading.Tasks.ValueTask":
		return operand{typ: b.env.special(SpecialVoid)}
	case "System.Threading.Tasks.Task`1", "System.Threading.Tasks.ValueTask`1":
		return operand{typ: t.TypeArgs[0]}
	}
	b.errorf(diag.CSBadAwait, n, "Cannot await '%s'", t)
	return operand{typ: errorType}
}

func (b *binder) bindConditional(n *syntax.Node) operand {
	cond := b.bindExpr(n.Child(0))
	b.convert(n.Child(0), cond, b.env.special(SpecialBoolean))
	x := b.bindExpr(n.Child(2))
	y := b.bindExpr(n.Child(4))
	var t *Symbol
	switch {
	case isBad(x.typ) || isBad(y.typ):
		return operand{typ: errorType}
	case SameType(x.typ, y.typ):
		t = x.typ
	case b.implicitConversion(x.typ, y.typ, x.constant, x.hasConst) && !b.implicitConversion(y.typ, x.typ, y.constant, y.hasConst):
		t = y.typ
	case b.implicitConversion(y.typ, x.typ, y.constant, y.hasConst):
		t = x.typ
	default:
		return operand{typ: errorType}
	}
	b.setConverted(n.Child(2), t)
	b.setConverted(n.Child(4), t)
	out := operand{typ: t}
	if c, ok := cond.constant.(bool); ok && cond.hasConst {
		pick := y
		if c {
			pick = x
		}
		if pick.hasConst {
			out.constant, out.hasConst = convertConst(pick.constant, constSpecial(t), false)
		}
	}
	return out
}

// bindPattern binds an is-pattern against a value of type input.
func (b *binder) bindPattern(p *syntax.Node, input *Symbol) {
	switch p.Kind() {
	case syntax.KindNotPattern:
		b.bindPattern(p.Child(1), input)
	case syntax.KindTypePattern:
		b.resolveType(p.Child(0))
	case syntax.KindDeclarationPattern:
		t := input
		if !b.isVarType(p.Child(0)) {
			t = b.resolveType(p.Child(0))
		}
		if name := p.Child(1).TokenText(); name != "" {
			b.declareLocal(&Symbol{Kind: SymbolLocal, Name: name, Type: t, Containing: b.member, Decl: p}, p)
		}
	case syntax.KindConstantPattern:
		expr := p.Child(0)
		op := b.bindExpr(expr)
		if !op.isValue() || isBad(input) {
			return
		}
		if op.typ == nullType {
			return
		}
		b.convert(expr, op, input)
	}
}
