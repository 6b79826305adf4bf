package semantic

import (
	"strconv"
	"strings"

	"codefix/internal/source"
)

// table indexes the namespaces and types declared by one compilation
// (a source document or the core library). Keys are metadata names.
type table struct {
	namespaces map[string]*Symbol
	types      map[string]*Symbol
	metadata   bool
}

func newTable(metadata bool) *table {
	t := &table{
		namespaces: make(map[string]*Symbol),
		types:      make(map[string]*Symbol),
		metadata:   metadata,
	}
	t.namespaces[""] = &Symbol{Kind: SymbolNamespace}
	return t
}

// namespace returns the namespace symbol for a dotted name, creating it and
// its parents on first use.
func (t *table) namespace(full string) *Symbol {
	if ns, ok := t.namespaces[full]; ok {
		return ns
	}
	parent, name := "", full
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		parent, name = full[:i], full[i+1:]
	}
	ns := &Symbol{Kind: SymbolNamespace, Name: name, fullName: full, Containing: t.namespace(parent)}
	if t.metadata {
		ns.Flags |= FlagMetadata
	}
	t.namespaces[full] = ns
	return ns
}

// env is the ordered list of tables visible to a binder: the document's own
// declarations first, then the core library.
type env []*table

func (e env) typeByName(meta string) *Symbol {
	for _, t := range e {
		if s, ok := t.types[meta]; ok {
			return s
		}
	}
	return nil
}

func (e env) namespaceByName(full string) *Symbol {
	for _, t := range e {
		if s, ok := t.namespaces[full]; ok {
			return s
		}
	}
	return nil
}

// special returns the core type for a special role.
func (e env) special(st SpecialType) *Symbol {
	if t := e.typeByName(metadataBySpecial[st]); t != nil {
		return t
	}
	return errorType
}

var metadataBySpecial = func() map[SpecialType]string {
	m := make(map[SpecialType]string, len(specialByMetadata))
	for meta, st := range specialByMetadata {
		m[st] = meta
	}
	return m
}()

// metadataName builds "Ns.Name`arity" or "Outer+Name`arity".
func metadataName(container *Symbol, name string, arity int) string {
	if arity > 0 {
		name += "`" + strconv.Itoa(arity)
	}
	if container == nil {
		return name
	}
	sep := "."
	if container.Kind == SymbolType {
		sep = "+"
	}
	if container.fullName == "" {
		return name
	}
	return container.fullName + sep + name
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// importScope is the name resolution context of a type declaration: its
// namespace, the namespaces imported by using directives in effect there,
// and the enclosing namespace scope.
type importScope struct {
	ns     string
	usings []string
	static []string // types imported by 'using static'
	outer  *importScope
}

// localScope holds locals and parameters declared in one block.
type localScope struct {
	names map[string]*Symbol
	outer *localScope
	span  source.Span
}

func (s *localScope) lookup(name string) *Symbol {
	if s == nil {
		return nil
	}
	for cur := s; cur != nil; cur = cur.outer {
		if sym, ok := cur.names[name]; ok {
			return sym
		}
	}
	return nil
}

func (s *localScope) declare(sym *Symbol) {
	if s.names == nil {
		s.names = make(map[string]*Symbol)
	}
	s.names[sym.Name] = sym
}
