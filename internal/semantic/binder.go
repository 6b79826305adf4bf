package semantic

import (
	"fmt"

	"codefix/internal/diag"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// operand is the result of binding an expression or name.
type operand struct {
	typ      *Symbol
	sym      *Symbol
	group    []*Symbol // method group, set for names that denote methods
	typeArgs []*Symbol // explicit method type arguments of a generic name
	isType   bool
	isNS     bool
	constant any
	hasConst bool
}

func valueOf(s *Symbol) operand {
	op := operand{sym: s, typ: s.Type}
	op.constant, op.hasConst = s.ConstantValue()
	return op
}

func typeOperand(t *Symbol) operand { return operand{sym: t, typ: t, isType: true} }

// isValue reports whether op denotes a value rather than a type, namespace
// or method group.
func (op operand) isValue() bool { return !op.isType && !op.isNS && op.group == nil }

// binder walks one compilation and fills a Model. A fresh binder state is
// saved and restored around each member, constant and speculative bind.
type binder struct {
	m        *Model
	env      env
	tbl      *table
	tree     *syntax.Tree
	reporter diag.Reporter

	imports    *importScope
	typ        *Symbol
	member     *Symbol
	scope      *localScope
	returnType *Symbol   // nil when return values are not checked
	receivers  []*Symbol // conditional access receivers, innermost last
	opaque     map[string]bool

	constState  map[*Symbol]constEvalState
	usings      []usingRef
	speculative bool
}

type usingRef struct {
	node  *syntax.Node
	scope *importScope
}

// bindState is the part of binder state that changes per member.
type bindState struct {
	imports    *importScope
	typ        *Symbol
	member     *Symbol
	scope      *localScope
	returnType *Symbol
	opaque     map[string]bool
}

func newBinder(m *Model, tbl *table, r diag.Reporter) *binder {
	return &binder{
		m:          m,
		env:        m.env,
		tbl:        tbl,
		tree:       m.tree,
		reporter:   r,
		constState: make(map[*Symbol]constEvalState),
	}
}

func (b *binder) save() bindState {
	return bindState{b.imports, b.typ, b.member, b.scope, b.returnType, b.opaque}
}

func (b *binder) restore(c bindState) {
	b.imports, b.typ, b.member, b.scope, b.returnType, b.opaque = c.imports, c.typ, c.member, c.scope, c.returnType, c.opaque
	b.receivers = b.receivers[:0]
}

func (b *binder) enterType(t *Symbol) {
	b.typ = t
	b.imports = t.imports
	b.member = nil
	b.scope = nil
	b.returnType = nil
	b.opaque = nil
}

// record stores the binding of n, keeping a converted type set earlier.
func (b *binder) record(n *syntax.Node, op operand) {
	if n == nil {
		return
	}
	prev := b.m.info[n]
	b.m.info[n] = bound{
		sym:       op.sym,
		typ:       op.typ,
		converted: prev.converted,
		constant:  op.constant,
		hasConst:  op.hasConst,
	}
}

func (b *binder) setConverted(n *syntax.Node, t *Symbol) {
	if n == nil {
		return
	}
	info := b.m.info[n]
	info.converted = t
	b.m.info[n] = info
}

// reference remembers that name node n refers to a source symbol.
func (b *binder) reference(n *syntax.Node, s *Symbol) {
	if b.speculative || s == nil || !s.IsFromSource() {
		return
	}
	def := s.Definition()
	b.m.refs[def] = append(b.m.refs[def], n)
}

func (b *binder) declare(n *syntax.Node, s *Symbol) {
	if !b.speculative {
		b.m.declared[n] = s
	}
}

// errorf reports a host compiler error at n.
func (b *binder) errorf(code diag.Code, n *syntax.Node, format string, args ...any) {
	if b.speculative || n == nil {
		return
	}
	d := diag.New(diag.SevError, code, n.Span(), fmt.Sprintf(format, args...))
	b.m.diags = append(b.m.diags, d)
	diag.Emit(b.reporter, d)
}

// convert checks that op converts implicitly to target and records target as
// the converted type of n.
func (b *binder) convert(n *syntax.Node, op operand, target *Symbol) operand {
	if target == nil || target.TypeKind == TypeError {
		return op
	}
	b.setConverted(n, target)
	if !op.isValue() {
		return operand{typ: target}
	}
	if !b.implicitConversion(op.typ, target, op.constant, op.hasConst) {
		b.errorf(diag.CSNoConversion, n, "Cannot implicitly convert type '%s' to '%s'", op.typ, target)
		return operand{typ: target}
	}
	out := operand{typ: target}
	if op.hasConst {
		if v, ok := convertConst(op.constant, constSpecial(target), false); ok {
			out.constant, out.hasConst = v, true
		}
	}
	return out
}

// constSpecial returns the representation type of constants of t: the
// underlying type for enums.
func constSpecial(t *Symbol) SpecialType {
	if isEnum(t) {
		if t.Underlying != nil {
			return t.Underlying.Special
		}
		return SpecialInt32
	}
	if t.IsNullable() {
		return t.NullableUnderlying().Special
	}
	return t.Special
}

func isBad(t *Symbol) bool { return t == nil || t.TypeKind == TypeError }

// pushScope opens a block scope visible over sp.
func (b *binder) pushScope(sp source.Span) {
	b.scope = &localScope{outer: b.scope, span: sp}
}

func (b *binder) popScope() {
	if b.scope != nil {
		b.scope = b.scope.outer
	}
}

// declareLocal adds a local or parameter to the innermost scope.
func (b *binder) declareLocal(s *Symbol, declNode *syntax.Node) {
	if b.scope == nil {
		b.scope = &localScope{}
	}
	s.visible = b.scope.span
	b.scope.declare(s)
	b.declare(declNode, s)
	if !b.speculative && s.Kind == SymbolLocal {
		b.m.locals = append(b.m.locals, s)
	}
}

// opaqueIdentifiers collects identifier tokens inside statements the tree
// keeps as raw tokens and inside interpolated strings. Names that only
// appear there are not reported as unknown.
func opaqueIdentifiers(n *syntax.Node) map[string]bool {
	var out map[string]bool
	add := func(name string) {
		if out == nil {
			out = make(map[string]bool)
		}
		out[name] = true
	}
	for d := range n.DescendantNodesAndSelf(nil) {
		switch d.Kind() {
		case syntax.KindOpaqueStmt:
			for t := range d.DescendantTokens() {
				add(t.TokenText())
			}
		case syntax.KindInterpolatedString:
			for _, w := range identifierWords(d.Text()) {
				add(w)
			}
		}
	}
	return out
}

func identifierWords(s string) []string {
	var out []string
	start := -1
	for i, r := range s + " " {
		word := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' && start >= 0
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}
