package rules

import (
	"codefix/internal/codefix"
	"codefix/internal/semantic"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// replaceIn rebuilds root with old, a descendant or root itself, swapped
// for repl.
func replaceIn(root, old *syntax.Node, repl *syntax.Green) *syntax.Green {
	g := repl
	for n := old; n != root; n = n.Parent() {
		g = n.Parent().Green().WithSlot(n.IndexInParent(), g)
	}
	return g
}

// renamed returns the simple name n spelled as name, keeping its trivia.
func renamed(n *syntax.Node, name string) *syntax.Green {
	return syntax.WithTriviaFrom(syntax.IdentifierName(name), n.Green())
}

// withoutArgument drops the argument at index i from an ArgumentList,
// taking the adjacent comma with it.
func withoutArgument(argList *syntax.Node, i int) *syntax.Green {
	list := syntax.ArgumentListView{Node: argList}.List()
	kids := make([]*syntax.Green, 0, list.SlotCount())
	for k := range list.Children() {
		kids = append(kids, k.Green())
	}
	// elements sit at even slots, separators at odd ones
	at := 2 * i
	switch {
	case at+1 < len(kids):
		kids = append(kids[:at], kids[at+2:]...)
	case at > 0:
		kids = kids[:at-1]
	default:
		kids = kids[:0]
	}
	if at == 0 && len(kids) > 0 {
		kids[0] = syntax.WithLeadingTrivia(kids[0], nil)
	}
	return syntax.ArgumentListFrom(argList.Green(), syntax.List(kids...))
}

// nodeAt returns the innermost node of one of kinds whose span contains sp.
func nodeAt(doc *codefix.Document, sp source.Span, kinds ...syntax.Kind) *syntax.Node {
	for n := doc.Tree.Root().FindNode(sp, false); n != nil; n = n.Parent() {
		if n.Is(kinds...) {
			return n
		}
	}
	return nil
}

// isEmptyString matches "" and string.Empty.
func isEmptyString(n *syntax.Node, f semantic.Facade) bool {
	n = syntax.WalkDownParentheses(n)
	if v, ok := f.ConstantValue(n); ok {
		s, isString := v.(string)
		return isString && s == ""
	}
	sym := f.SymbolInfo(n)
	return sym != nil && sym.Kind == semantic.SymbolField && sym.Name == "Empty" &&
		sym.Containing != nil && sym.Containing.Special == semantic.SpecialString
}

// isPublicStaticNonGeneric is the shape every optimised BCL call shares.
func isPublicStaticNonGeneric(s *semantic.Symbol, name string) bool {
	return s != nil && s.Kind == semantic.SymbolMethod && s.Name == name &&
		s.Access == semantic.AccessPublic && s.IsStatic() && len(s.TypeParams) == 0
}

func returnsVoid(s *semantic.Symbol) bool {
	return s.Type == nil || s.Type.Special == semantic.SpecialVoid
}

func allParamsAre(params []*semantic.Symbol, st semantic.SpecialType) bool {
	for _, p := range params {
		if p.Type == nil || p.Type.Special != st {
			return false
		}
	}
	return true
}
