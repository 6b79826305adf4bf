package syntax

import (
	"iter"

	"codefix/internal/source"
	"codefix/internal/token"
)

// Tree is an immutable syntax tree for one document. The red layer (Node) is
// built eagerly so a Tree can be read from many goroutines without locking.
type Tree struct {
	root *Node
	file source.FileID
	path string
	text string
}

// Node is a positioned view of a Green node. Two nodes of the same tree are
// the same node iff their pointers are equal; across trees, a node is
// identified by (Green, FullSpan).
type Node struct {
	g      *Green
	parent *Node
	tree   *Tree
	pos    uint32
	index  int
	kids   []*Node
}

// NewTree wraps root into a positioned tree.
func NewTree(root *Green, file source.FileID, path string) *Tree {
	t := &Tree{file: file, path: path}
	t.text = root.FullText()
	t.root = t.build(root, nil, 0, 0)
	return t
}

func (t *Tree) build(g *Green, parent *Node, pos uint32, index int) *Node {
	n := &Node{g: g, parent: parent, tree: t, pos: pos, index: index}
	if len(g.kids) > 0 {
		n.kids = make([]*Node, len(g.kids))
		off := pos
		for i, k := range g.kids {
			if k == nil {
				continue
			}
			n.kids[i] = t.build(k, n, off, i)
			off += k.width
		}
	}
	return n
}

func (t *Tree) Root() *Node             { return t.root }
func (t *Tree) File() source.FileID     { return t.file }
func (t *Tree) Path() string            { return t.path }
func (t *Tree) FullText() string        { return t.text }
func (t *Tree) Len() uint32             { return t.root.g.width }
func (t *Tree) HasErrors() bool         { return t.root.g.ContainsErrors() }
func (t *Tree) WithRoot(g *Green) *Tree { return NewTree(g, t.file, t.path) }

// Span builds a span in this tree's file.
func (t *Tree) Span(start, end uint32) source.Span {
	return source.Span{File: t.file, Start: start, End: end}
}

func (n *Node) Kind() Kind {
	if n == nil {
		return KindNone
	}
	return n.g.kind
}

func (n *Node) Green() *Green      { return n.g }
func (n *Node) Tree() *Tree        { return n.tree }
func (n *Node) Parent() *Node      { return n.parent }
func (n *Node) IndexInParent() int { return n.index }
func (n *Node) IsToken() bool      { return n != nil && n.g.kind == KindToken }
func (n *Node) IsMissing() bool    { return n != nil && n.g.IsMissing() }

// Is reports whether n is non-nil and of one of kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.g.kind == k {
			return true
		}
	}
	return false
}

// TokenKind returns the lexical kind of a token node, token.Invalid otherwise.
func (n *Node) TokenKind() token.Kind {
	if !n.IsToken() {
		return token.Invalid
	}
	return n.g.tok
}

// TokenText returns the text of a token node without trivia.
func (n *Node) TokenText() string {
	if !n.IsToken() {
		return ""
	}
	return n.g.text
}

// Child returns slot i or nil when the slot is absent.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.kids) {
		return nil
	}
	return n.kids[i]
}

func (n *Node) SlotCount() int { return len(n.kids) }

// Children yields non-nil children in slot order, tokens included.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		for _, k := range n.kids {
			if k != nil && !yield(k) {
				return
			}
		}
	}
}

// FullSpan covers n including leading and trailing trivia.
func (n *Node) FullSpan() source.Span {
	return source.Span{File: n.tree.file, Start: n.pos, End: n.pos + n.g.width}
}

// Span covers n without the leading trivia of its first token and the
// trailing trivia of its last token.
func (n *Node) Span() source.Span {
	start := n.pos + uint32(triviaWidth(n.g.LeadingTrivia()))
	end := n.pos + n.g.width - uint32(triviaWidth(n.g.TrailingTrivia()))
	if end < start {
		end = start
	}
	return source.Span{File: n.tree.file, Start: start, End: end}
}

// SpanStart is Span().Start.
func (n *Node) SpanStart() uint32 { return n.Span().Start }

func (n *Node) FullText() string {
	sp := n.FullSpan()
	return n.tree.text[sp.Start:sp.End]
}

func (n *Node) Text() string {
	sp := n.Span()
	return n.tree.text[sp.Start:sp.End]
}

func (n *Node) LeadingTrivia() []Trivia  { return n.g.LeadingTrivia() }
func (n *Node) TrailingTrivia() []Trivia { return n.g.TrailingTrivia() }

// FirstToken returns the first token under n (n itself for tokens).
func (n *Node) FirstToken() *Node {
	if n == nil {
		return nil
	}
	if n.IsToken() {
		return n
	}
	for _, k := range n.kids {
		if t := k.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Node) LastToken() *Node {
	if n == nil {
		return nil
	}
	if n.IsToken() {
		return n
	}
	for i := len(n.kids) - 1; i >= 0; i-- {
		if t := n.kids[i].LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// Ancestors yields parents from the nearest outwards.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// FirstAncestor returns the nearest ancestor of one of kinds.
func (n *Node) FirstAncestor(kinds ...Kind) *Node {
	for p := range n.Ancestors() {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// DescendantNodes yields interior nodes below n in pre-order. Tokens and
// List wrappers are skipped but list elements are visited. descend may be nil;
// when it returns false for a node, that node is yielded but its subtree is not.
func (n *Node) DescendantNodes(descend func(*Node) bool) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(descend, yield)
	}
}

// DescendantNodesAndSelf is DescendantNodes with n yielded first.
func (n *Node) DescendantNodesAndSelf(descend func(*Node) bool) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if !n.IsToken() && n.g.kind != KindList {
			if !yield(n) {
				return
			}
			if descend != nil && !descend(n) {
				return
			}
		}
		n.walk(descend, yield)
	}
}

func (n *Node) walk(descend func(*Node) bool, yield func(*Node) bool) bool {
	for _, k := range n.kids {
		if k == nil || k.IsToken() {
			continue
		}
		if k.g.kind != KindList {
			if !yield(k) {
				return false
			}
			if descend != nil && !descend(k) {
				continue
			}
		}
		if !k.walk(descend, yield) {
			return false
		}
	}
	return true
}

// DescendantTokens yields all tokens under n in text order.
func (n *Node) DescendantTokens() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walkTokens(yield)
	}
}

func (n *Node) walkTokens(yield func(*Node) bool) bool {
	if n.IsToken() {
		return yield(n)
	}
	for _, k := range n.kids {
		if k != nil && !k.walkTokens(yield) {
			return false
		}
	}
	return true
}

// ContainsDirectives reports whether any trivia under n, including its outer
// leading trivia, is a preprocessor directive.
func (n *Node) ContainsDirectives() bool { return n.g.ContainsDirectives() }

// SpanContainsDirectives reports whether a directive lies strictly inside
// Span(), i.e. anywhere except the outer leading/trailing trivia.
func (n *Node) SpanContainsDirectives() bool {
	if !n.g.ContainsDirectives() {
		return false
	}
	first := true
	for tok := range n.DescendantTokens() {
		if !first && hasDirective(tok.g.lead) {
			return true
		}
		first = false
	}
	return false
}

// SpanContainsDirectivesIn is SpanContainsDirectives restricted to sp.
func (n *Node) SpanContainsDirectivesIn(sp source.Span) bool {
	if !n.g.ContainsDirectives() {
		return false
	}
	for tok := range n.DescendantTokens() {
		off := tok.pos
		for _, tv := range tok.g.lead {
			if tv.Kind == token.TriviaDirective && off >= sp.Start && off < sp.End {
				return true
			}
			off += uint32(len(tv.Text))
		}
	}
	return false
}

func hasDirective(ts []Trivia) bool {
	for _, t := range ts {
		if t.Kind == token.TriviaDirective {
			return true
		}
	}
	return false
}

// FindToken returns the token whose full span contains pos; the EOF token
// for pos at the end of the text.
func (n *Node) FindToken(pos uint32) *Node {
	cur := n
	for !cur.IsToken() {
		var next *Node
		for _, k := range cur.kids {
			if k == nil {
				continue
			}
			if pos >= k.pos && pos < k.pos+k.g.width {
				next = k
				break
			}
		}
		if next == nil {
			return cur.LastToken()
		}
		cur = next
	}
	return cur
}

// FindNode returns the innermost interior node whose Span contains sp. With
// outermost set, the result is widened to the outermost ancestor that has
// exactly the same Span.
func (n *Node) FindNode(sp source.Span, outermost bool) *Node {
	if !n.Span().ContainsSpan(sp) {
		return nil
	}
	cur := n
	for {
		var next *Node
		for _, k := range cur.kids {
			if k == nil || k.IsToken() {
				continue
			}
			if k.Span().ContainsSpan(sp) {
				next = k
				break
			}
		}
		if next == nil {
			break
		}
		cur = next
	}
	for cur.g.kind == KindList && cur.parent != nil {
		cur = cur.parent
	}
	if outermost {
		best := cur
		for p := cur.parent; p != nil && p.Span() == best.Span(); p = p.parent {
			if p.g.kind != KindList {
				best = p
			}
		}
		cur = best
	}
	return cur
}

// Equivalent compares n to other ignoring trivia.
func (n *Node) Equivalent(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return Equivalent(n.g, other.g)
}
