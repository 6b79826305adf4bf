// Package testkit holds invariant checks shared by the front-end tests and
// fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"codefix/internal/syntax"
	"codefix/internal/token"
)

// CheckTreeInvariants verifies a parsed tree against its source text:
// 1) the tree reproduces content byte for byte
// 2) children tile their parent's full span in slot order
// 3) every node's span lies within its full span
func CheckTreeInvariants(tree *syntax.Tree, content string) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	if got := tree.FullText(); got != content {
		return fmt.Errorf("tree text differs from source: %d bytes vs %d", len(got), len(content))
	}
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	if tree.Len() != size {
		return fmt.Errorf("tree width %d, source %d", tree.Len(), size)
	}
	for n := range tree.Root().DescendantNodesAndSelf(nil) {
		full := n.FullSpan()
		sp := n.Span()
		if sp.Start < full.Start || sp.End > full.End {
			return fmt.Errorf("%s: span %v outside full span %v", n.Kind(), sp, full)
		}
		if sp.File != tree.File() {
			return fmt.Errorf("%s: span in file %d, tree is %d", n.Kind(), sp.File, tree.File())
		}
		next := full.Start
		for c := range n.Children() {
			cf := c.FullSpan()
			if cf.Start != next {
				// дыра или перекрытие между соседями
				return fmt.Errorf("%s: child %s starts at %d, want %d", n.Kind(), c.Kind(), cf.Start, next)
			}
			next = cf.End
		}
		if n.SlotCount() > 0 && next != full.End {
			return fmt.Errorf("%s: children end at %d, node at %d", n.Kind(), next, full.End)
		}
	}
	return nil
}

// CheckTokenStream verifies that the full spans of toks, EOF included, tile
// [0, size) without gaps and that every token's text matches content.
func CheckTokenStream(toks []token.Token, content string) error {
	var next uint32
	for i, tok := range toks {
		full := tok.FullSpan()
		if full.Start != next {
			return fmt.Errorf("token %d (%s) starts at %d, want %d", i, tok.Kind, full.Start, next)
		}
		if tok.Span.End > uint32(len(content)) {
			return fmt.Errorf("token %d (%s) ends past the source: %v", i, tok.Kind, tok.Span)
		}
		if tok.Kind != token.EOF && content[tok.Span.Start:tok.Span.End] != tok.Text {
			return fmt.Errorf("token %d (%s) text %q, source %q", i, tok.Kind, tok.Text, content[tok.Span.Start:tok.Span.End])
		}
		next = full.End
	}
	if int(next) != len(content) {
		return fmt.Errorf("tokens cover %d of %d bytes", next, len(content))
	}
	return nil
}
