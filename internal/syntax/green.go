package syntax

import (
	"strings"

	"codefix/internal/token"
)

// Trivia is position-free trivia stored in green tokens.
type Trivia struct {
	Kind token.TriviaKind
	Text string
}

// Directive parses the trivia as a preprocessor line.
func (t Trivia) Directive() (token.Directive, bool) {
	if t.Kind != token.TriviaDirective {
		return token.Directive{}, false
	}
	return token.ParseDirective(t.Text)
}

func (t Trivia) IsComment() bool {
	return t.Kind == token.TriviaLineComment || t.Kind == token.TriviaBlockComment || t.Kind == token.TriviaDocLine
}

func (t Trivia) IsWhitespace() bool {
	return t.Kind == token.TriviaSpace || t.Kind == token.TriviaNewline
}

type greenFlags uint8

const (
	flagMissing      greenFlags = 1 << iota // token inserted by error recovery, empty text
	flagHasDirective                        // some trivia below is a directive
	flagHasError                            // an Error node or missing token below
	flagHasComment                          // some trivia below is a comment
)

// Green is an immutable, position-free node. Green nodes are shared between
// trees: replacing a node copies only the path from it to the root.
//
// Children are fixed slots whose meaning depends on Kind; optional slots hold
// nil. Tokens (KindToken) have no children and carry text and trivia.
type Green struct {
	kind  Kind
	tok   token.Kind
	text  string
	lead  []Trivia
	trail []Trivia
	kids  []*Green
	width uint32 // full width, trivia included
	flags greenFlags
}

func newGreenToken(tk token.Kind, text string, lead, trail []Trivia, missing bool) *Green {
	g := &Green{kind: KindToken, tok: tk, text: text, lead: lead, trail: trail}
	if missing {
		g.flags |= flagMissing | flagHasError
	}
	g.width = uint32(len(text))
	for _, t := range lead {
		g.width += uint32(len(t.Text))
		g.flags |= triviaFlags(t)
	}
	for _, t := range trail {
		g.width += uint32(len(t.Text))
		g.flags |= triviaFlags(t)
	}
	return g
}

func triviaFlags(t Trivia) greenFlags {
	switch {
	case t.Kind == token.TriviaDirective:
		return flagHasDirective
	case t.Kind == token.TriviaSkipped:
		return flagHasError
	case t.IsComment():
		return flagHasComment
	}
	return 0
}

// NewNode builds an interior green node. kids may contain nil for absent
// optional slots.
func NewNode(kind Kind, kids ...*Green) *Green {
	g := &Green{kind: kind, kids: kids}
	if kind == KindError {
		g.flags |= flagHasError
	}
	for _, k := range kids {
		if k == nil {
			continue
		}
		g.width += k.width
		g.flags |= k.flags &^ flagMissing
	}
	return g
}

func (g *Green) Kind() Kind            { return g.kind }
func (g *Green) TokenKind() token.Kind { return g.tok }
func (g *Green) IsToken() bool         { return g.kind == KindToken }
func (g *Green) IsMissing() bool       { return g.flags&flagMissing != 0 }
func (g *Green) Width() uint32         { return g.width }
func (g *Green) SlotCount() int        { return len(g.kids) }
func (g *Green) Slot(i int) *Green {
	if g == nil || i < 0 || i >= len(g.kids) {
		return nil
	}
	return g.kids[i]
}

// TokenText is the token text without trivia; "" for interior nodes.
func (g *Green) TokenText() string { return g.text }

func (g *Green) LeadingTrivia() []Trivia {
	if t := g.FirstToken(); t != nil {
		return t.lead
	}
	return nil
}

func (g *Green) TrailingTrivia() []Trivia {
	if t := g.LastToken(); t != nil {
		return t.trail
	}
	return nil
}

// ContainsDirectives reports whether any trivia under g is a preprocessor directive.
func (g *Green) ContainsDirectives() bool { return g.flags&flagHasDirective != 0 }

// ContainsErrors reports whether g contains error nodes or missing tokens.
func (g *Green) ContainsErrors() bool { return g.flags&flagHasError != 0 }

// ContainsComments reports whether any trivia under g is a comment.
func (g *Green) ContainsComments() bool { return g.flags&flagHasComment != 0 }

// FirstToken returns the first non-nil token under g, missing tokens included.
func (g *Green) FirstToken() *Green {
	if g == nil {
		return nil
	}
	if g.kind == KindToken {
		return g
	}
	for _, k := range g.kids {
		if t := k.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

func (g *Green) LastToken() *Green {
	if g == nil {
		return nil
	}
	if g.kind == KindToken {
		return g
	}
	for i := len(g.kids) - 1; i >= 0; i-- {
		if t := g.kids[i].LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// FullText renders g including all trivia.
func (g *Green) FullText() string {
	var b strings.Builder
	b.Grow(int(g.width))
	g.writeTo(&b, true, true)
	return b.String()
}

// Text renders g without the leading trivia of its first token and the
// trailing trivia of its last token.
func (g *Green) Text() string {
	full := g.FullText()
	lead := triviaWidth(g.LeadingTrivia())
	trail := triviaWidth(g.TrailingTrivia())
	if lead+trail > len(full) {
		return ""
	}
	return full[lead : len(full)-trail]
}

func (g *Green) writeTo(b *strings.Builder, lead, trail bool) {
	if g == nil {
		return
	}
	if g.kind == KindToken {
		if lead {
			for _, t := range g.lead {
				b.WriteString(t.Text)
			}
		}
		b.WriteString(g.text)
		if trail {
			for _, t := range g.trail {
				b.WriteString(t.Text)
			}
		}
		return
	}
	for _, k := range g.kids {
		k.writeTo(b, lead, trail)
	}
}

func triviaWidth(ts []Trivia) int {
	n := 0
	for _, t := range ts {
		n += len(t.Text)
	}
	return n
}

// WithSlot returns a copy of g with slot i replaced.
func (g *Green) WithSlot(i int, child *Green) *Green {
	kids := make([]*Green, len(g.kids))
	copy(kids, g.kids)
	kids[i] = child
	return NewNode(g.kind, kids...)
}

// WithKind returns a copy of g with a different kind and the same slots.
// Used for operator swaps such as == to != where the shape is unchanged.
func (g *Green) WithKind(kind Kind) *Green {
	return NewNode(kind, g.kids...)
}

// Equivalent reports whether a and b have the same kinds, token kinds and
// token texts, ignoring trivia.
func Equivalent(a, b *Green) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if a.kind == KindToken {
		return a.tok == b.tok && a.text == b.text
	}
	if len(a.kids) != len(b.kids) {
		return false
	}
	for i := range a.kids {
		if !Equivalent(a.kids[i], b.kids[i]) {
			return false
		}
	}
	return true
}
