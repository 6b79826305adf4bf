package syntax

import (
	"slices"

	"codefix/internal/token"
)

// ReplaceNode returns a new tree in which old is replaced by repl. Only the
// green nodes on the path from old to the root are copied; every other
// subtree is shared with t.
func (t *Tree) ReplaceNode(old *Node, repl *Green) *Tree {
	if old.tree != t {
		panic("syntax: ReplaceNode with a node from another tree")
	}
	g := repl
	for n := old; n.parent != nil; n = n.parent {
		g = n.parent.g.WithSlot(n.index, g)
	}
	return NewTree(g, t.file, t.path)
}

// Replacement pairs a node of a tree with its new green form.
type Replacement struct {
	Old *Node
	New *Green
}

// ReplaceNodes applies several replacements at once. When one replaced node
// contains another, the outer replacement wins.
func (t *Tree) ReplaceNodes(reps []Replacement) *Tree {
	if len(reps) == 0 {
		return t
	}
	byNode := make(map[*Node]*Green, len(reps))
	onPath := make(map[*Node]bool)
	for _, r := range reps {
		byNode[r.Old] = r.New
		for p := range r.Old.Ancestors() {
			onPath[p] = true
		}
	}
	var rebuild func(n *Node) *Green
	rebuild = func(n *Node) *Green {
		if g, ok := byNode[n]; ok {
			return g
		}
		if !onPath[n] {
			return n.g
		}
		kids := slices.Clone(n.g.kids)
		for i, k := range n.kids {
			if k != nil {
				kids[i] = rebuild(k)
			}
		}
		return NewNode(n.g.kind, kids...)
	}
	return NewTree(rebuild(t.root), t.file, t.path)
}

// RemoveListElement returns a new tree without the element at index i of a
// separated List node, removing the adjacent separator as well.
func (t *Tree) RemoveListElement(list *Node, i int) *Tree {
	kids := slices.Clone(list.g.kids)
	switch {
	case i+1 < len(kids):
		kids = slices.Delete(kids, i, i+2)
	case i > 0:
		kids = slices.Delete(kids, i-1, i+1)
	default:
		kids = kids[:0]
	}
	return t.ReplaceNode(list, NewNode(KindList, kids...))
}

// replaceFirstToken rebuilds g with its first token transformed by fn.
func replaceFirstToken(g *Green, fn func(*Green) *Green) *Green {
	if g == nil {
		return nil
	}
	if g.kind == KindToken {
		return fn(g)
	}
	for i, k := range g.kids {
		if k.FirstToken() != nil {
			return g.WithSlot(i, replaceFirstToken(k, fn))
		}
	}
	return g
}

func replaceLastToken(g *Green, fn func(*Green) *Green) *Green {
	if g == nil {
		return nil
	}
	if g.kind == KindToken {
		return fn(g)
	}
	for i := len(g.kids) - 1; i >= 0; i-- {
		if g.kids[i].LastToken() != nil {
			return g.WithSlot(i, replaceLastToken(g.kids[i], fn))
		}
	}
	return g
}

// WithLeadingTrivia returns g with the leading trivia of its first token replaced.
func WithLeadingTrivia(g *Green, ts []Trivia) *Green {
	return replaceFirstToken(g, func(tok *Green) *Green {
		return newGreenToken(tok.tok, tok.text, slices.Clone(ts), tok.trail, tok.IsMissing())
	})
}

// WithTrailingTrivia returns g with the trailing trivia of its last token replaced.
func WithTrailingTrivia(g *Green, ts []Trivia) *Green {
	return replaceLastToken(g, func(tok *Green) *Green {
		return newGreenToken(tok.tok, tok.text, tok.lead, slices.Clone(ts), tok.IsMissing())
	})
}

// WithTriviaFrom transplants the outer leading and trailing trivia of from onto g.
func WithTriviaFrom(g, from *Green) *Green {
	return WithTrailingTrivia(WithLeadingTrivia(g, from.LeadingTrivia()), from.TrailingTrivia())
}

// WithoutTrivia strips the outer trivia of g.
func WithoutTrivia(g *Green) *Green {
	return WithTrailingTrivia(WithLeadingTrivia(g, nil), nil)
}

// AppendTrailingTrivia adds ts after the existing trailing trivia of g.
func AppendTrailingTrivia(g *Green, ts ...Trivia) *Green {
	return WithTrailingTrivia(g, append(slices.Clone(g.TrailingTrivia()), ts...))
}

// PrependLeadingTrivia adds ts before the existing leading trivia of g.
func PrependLeadingTrivia(g *Green, ts ...Trivia) *Green {
	return WithLeadingTrivia(g, append(slices.Clone(ts), g.LeadingTrivia()...))
}

// TriviaOf converts lexer trivia into position-free trivia.
func TriviaOf(ts []token.Trivia) []Trivia {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Trivia, len(ts))
	for i, t := range ts {
		out[i] = Trivia{Kind: t.Kind, Text: t.Text}
	}
	return out
}

// TrimWhitespace drops leading and trailing whitespace-only trivia entries
// while keeping comments and directives.
func TrimWhitespace(ts []Trivia) []Trivia {
	start, end := 0, len(ts)
	for start < end && ts[start].IsWhitespace() {
		start++
	}
	for end > start && ts[end-1].IsWhitespace() {
		end--
	}
	return ts[start:end]
}
