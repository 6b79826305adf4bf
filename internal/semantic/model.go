package semantic

import (
	"context"
	"slices"

	"codefix/internal/diag"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// Facade is the semantic query surface rule code consumes. *Model
// implements it; tests may substitute their own.
type Facade interface {
	SymbolInfo(n *syntax.Node) *Symbol
	TypeOf(n *syntax.Node) *Symbol
	ConvertedTypeOf(n *syntax.Node) *Symbol
	DeclaredSymbol(n *syntax.Node) *Symbol
	ConstantValue(n *syntax.Node) (any, bool)
	TypeByMetadataName(name string) *Symbol
	SpeculativeSymbol(pos uint32, expr *syntax.Green) *Symbol
	SpeculativeType(pos uint32, expr *syntax.Green) *Symbol
	References(s *Symbol) []*syntax.Node
}

var _ Facade = (*Model)(nil)

type bound struct {
	sym       *Symbol
	typ       *Symbol
	converted *Symbol
	constant  any
	hasConst  bool
}

// memberContext is the binding context of a type or member body, kept so
// speculative binding can resume at any position inside it.
type memberContext struct {
	span       source.Span
	typ        *Symbol
	member     *Symbol
	imports    *importScope
	returnType *Symbol
	params     []*Symbol
	opaque     map[string]bool
}

// Model is the bound form of one syntax tree. It is read-only once Bind
// returns and safe for concurrent use.
type Model struct {
	tree     *syntax.Tree
	env      env
	info     map[*syntax.Node]bound
	declared map[*syntax.Node]*Symbol
	refs     map[*Symbol][]*syntax.Node
	locals   []*Symbol
	contexts []memberContext
	diags    []diag.Diagnostic
}

func newModel(tree *syntax.Tree, e env) *Model {
	return &Model{
		tree:     tree,
		env:      e,
		info:     make(map[*syntax.Node]bound),
		declared: make(map[*syntax.Node]*Symbol),
		refs:     make(map[*Symbol][]*syntax.Node),
	}
}

// Options configure Bind.
type Options struct {
	Reporter diag.Reporter // receives host compiler errors; may be nil
}

// Bind declares and binds every declaration of tree against the core
// library. Only cancellation makes it fail.
func Bind(ctx context.Context, tree *syntax.Tree, opts Options) (*Model, error) {
	lib := coreLibrary()
	tbl := newTable(false)
	m := newModel(tree, env{tbl, lib})
	b := newBinder(m, tbl, opts.Reporter)
	decls := b.declareUnit(tree.Root())
	for _, d := range decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.bindBodies(d)
	}
	return m, nil
}

func (m *Model) Tree() *syntax.Tree { return m.tree }

// SymbolInfo returns the symbol a name, member access, invocation, object
// creation or operator expression binds to.
func (m *Model) SymbolInfo(n *syntax.Node) *Symbol {
	if n == nil {
		return nil
	}
	return m.info[n].sym
}

// TypeOf returns the natural type of an expression, or nil when it has none
// or does not bind.
func (m *Model) TypeOf(n *syntax.Node) *Symbol {
	if n == nil {
		return nil
	}
	if t := m.info[n].typ; !t.IsError() {
		return t
	}
	return nil
}

// ConvertedTypeOf returns the type an expression is implicitly converted to
// by its context, falling back to its natural type.
func (m *Model) ConvertedTypeOf(n *syntax.Node) *Symbol {
	if n == nil {
		return nil
	}
	info := m.info[n]
	if info.converted != nil && !info.converted.IsError() {
		return info.converted
	}
	return m.TypeOf(n)
}

// DeclaredSymbol returns the symbol declared by a declaration node: types,
// methods, constructors, properties, variable declarators, parameters,
// enum members, foreach variables and declaration patterns.
func (m *Model) DeclaredSymbol(n *syntax.Node) *Symbol {
	if n == nil {
		return nil
	}
	if n.IsToken() {
		n = n.Parent()
	}
	return m.declared[n]
}

// ConstantValue returns the compile-time value of an expression.
func (m *Model) ConstantValue(n *syntax.Node) (any, bool) {
	if n == nil {
		return nil, false
	}
	info := m.info[n]
	return info.constant, info.hasConst
}

// TypeByMetadataName finds a source or core library type by metadata
// name, like "System.Threading.Tasks.Task`1".
func (m *Model) TypeByMetadataName(name string) *Symbol {
	return m.env.typeByName(name)
}

// SpecialType returns the core library type with the given role.
func (m *Model) SpecialType(st SpecialType) *Symbol {
	if t := m.env.special(st); !t.IsError() {
		return t
	}
	return nil
}

// References returns the name nodes that refer to a source symbol, in
// source order.
func (m *Model) References(s *Symbol) []*syntax.Node {
	if s == nil {
		return nil
	}
	refs := slices.Clone(m.refs[s.Definition()])
	slices.SortFunc(refs, func(a, c *syntax.Node) int {
		return int(a.SpanStart()) - int(c.SpanStart())
	})
	return refs
}

// Diagnostics returns the host compiler errors found while binding, sorted
// by position.
func (m *Model) Diagnostics() []diag.Diagnostic {
	out := slices.Clone(m.diags)
	slices.SortStableFunc(out, func(a, c diag.Diagnostic) int {
		switch {
		case a.Less(&c):
			return -1
		case c.Less(&a):
			return 1
		}
		return 0
	})
	return out
}

// SpeculativeSymbol binds expr as if it appeared at pos and returns the
// symbol it refers to.
func (m *Model) SpeculativeSymbol(pos uint32, expr *syntax.Green) *Symbol {
	op := m.speculate(pos, expr)
	if op.sym == nil || op.isNS {
		return nil
	}
	return op.sym
}

// SpeculativeType binds expr as if it appeared at pos and returns its type.
func (m *Model) SpeculativeType(pos uint32, expr *syntax.Green) *Symbol {
	op := m.speculate(pos, expr)
	if op.typ.IsError() {
		return nil
	}
	return op.typ
}

// speculate binds a detached expression in the scope at pos. Nothing is
// recorded in m.
func (m *Model) speculate(pos uint32, expr *syntax.Green) operand {
	tree := syntax.NewTree(expr, m.tree.File(), m.tree.Path())
	spec := newModel(tree, m.env)
	b := newBinder(spec, nil, nil)
	b.speculative = true
	if c := m.contextAt(pos); c != nil {
		b.typ, b.member, b.imports, b.returnType, b.opaque = c.typ, c.member, c.imports, c.returnType, c.opaque
		b.scope = &localScope{span: c.span}
		for _, p := range c.params {
			b.scope.declare(p)
		}
	} else {
		b.imports = &importScope{}
	}
	var inner *localScope
	for _, l := range m.locals {
		if l.visible.Contains(pos) && l.Decl != nil && l.Decl.SpanStart() < pos {
			if inner == nil {
				inner = &localScope{outer: b.scope}
			}
			inner.declare(l)
		}
	}
	if inner != nil {
		b.scope = inner
	}
	return b.bindExpr(tree.Root())
}

// contextAt returns the innermost member or type context containing pos.
func (m *Model) contextAt(pos uint32) *memberContext {
	var best *memberContext
	for i := range m.contexts {
		c := &m.contexts[i]
		if c.span.Start > pos || pos > c.span.End {
			continue
		}
		if best == nil || c.span.End-c.span.Start <= best.span.End-best.span.Start {
			best = c
		}
	}
	return best
}
