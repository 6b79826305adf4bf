package syntax

import (
	"testing"

	"codefix/internal/token"
)

// a == true;
func sampleTree() *Tree {
	left := WithTrailingTrivia(IdentifierName("a"), []Trivia{Space})
	cmp := Binary(KindEqualsExpr, left, TrueLiteral())
	stmt := NewNode(KindExprStmt, cmp, TokWithTrivia(token.Semicolon, ";", nil, []Trivia{LineFeed}))
	root := NewNode(KindCompilationUnit, List(), List(stmt), Tok(token.EOF))
	return NewTree(root, 1, "a.cs")
}

func TestFullTextRoundTrip(t *testing.T) {
	tree := sampleTree()
	if got, want := tree.FullText(), "a == true;\n"; got != want {
		t.Fatalf("FullText = %q, want %q", got, want)
	}
	if tree.Len() != uint32(len(tree.FullText())) {
		t.Fatalf("Len = %d, want %d", tree.Len(), len(tree.FullText()))
	}
}

func TestNodeSpans(t *testing.T) {
	tree := sampleTree()
	stmt := tree.Root().Child(1).Child(0)
	if stmt.Kind() != KindExprStmt {
		t.Fatalf("kind = %s", stmt.Kind())
	}
	cmp := BinaryExpr{stmt.Child(0)}
	tests := []struct {
		name string
		n    *Node
		text string
	}{
		{"stmt", stmt, "a == true;"},
		{"binary", cmp.Node, "a == true"},
		{"left", cmp.Left(), "a"},
		{"right", cmp.Right(), "true"},
		{"op", cmp.OperatorToken(), "=="},
	}
	for _, tt := range tests {
		if got := tt.n.Text(); got != tt.text {
			t.Errorf("%s: Text = %q, want %q", tt.name, got, tt.text)
		}
	}
	if sp := cmp.Right().Span(); sp.Start != 5 || sp.End != 9 {
		t.Errorf("right span = %v", sp)
	}
}

func TestReplaceNodeSharesUntouchedSubtrees(t *testing.T) {
	tree := sampleTree()
	cmp := BinaryExpr{tree.Root().Child(1).Child(0).Child(0)}
	left := cmp.Left()

	next := tree.ReplaceNode(cmp.Right(), FalseLiteral())
	if got, want := next.FullText(), "a == false;\n"; got != want {
		t.Fatalf("FullText = %q, want %q", got, want)
	}
	newCmp := next.Root().Child(1).Child(0).Child(0)
	if newCmp.Child(0).Green() != left.Green() {
		t.Error("left operand green node was copied")
	}
	if next.Root().Child(0).Green() != tree.Root().Child(0).Green() {
		t.Error("usings list was copied")
	}
	if tree.FullText() != "a == true;\n" {
		t.Error("original tree mutated")
	}
}

func TestReplaceNodesOuterWins(t *testing.T) {
	tree := sampleTree()
	stmt := tree.Root().Child(1).Child(0)
	cmp := stmt.Child(0)
	next := tree.ReplaceNodes([]Replacement{
		{Old: cmp.Child(2), New: FalseLiteral()},
		{Old: cmp, New: IdentifierName("b")},
	})
	if got, want := next.FullText(), "b;\n"; got != want {
		t.Fatalf("FullText = %q, want %q", got, want)
	}
}

func TestTriviaHelpers(t *testing.T) {
	comment := Trivia{Kind: token.TriviaBlockComment, Text: "/*x*/"}
	g := WithLeadingTrivia(IdentifierName("a"), []Trivia{comment, Space})
	g = WithTrailingTrivia(g, []Trivia{Space})
	if got := g.FullText(); got != "/*x*/ a " {
		t.Fatalf("FullText = %q", got)
	}
	if !g.ContainsComments() {
		t.Error("comment flag not propagated")
	}
	moved := WithTriviaFrom(IdentifierName("b"), g)
	if got := moved.FullText(); got != "/*x*/ b " {
		t.Errorf("WithTriviaFrom = %q", got)
	}
	if got := WithoutTrivia(moved).FullText(); got != "b" {
		t.Errorf("WithoutTrivia = %q", got)
	}
	if got := TrimWhitespace([]Trivia{Space, comment, LineFeed}); len(got) != 1 || got[0] != comment {
		t.Errorf("TrimWhitespace = %v", got)
	}
}

func TestFactoryText(t *testing.T) {
	x := IdentifierName("x")
	tests := []struct {
		name string
		g    *Green
		want string
	}{
		{"not ident", LogicalNot(x), "!x"},
		{"not binary", LogicalNot(Binary(KindLogicalAndExpr, x, IdentifierName("y"))), "!(x && y)"},
		{"member", MemberAccess(x, IdentifierName("Length")), "x.Length"},
		{"conditional access", ConditionalAccess(x, MemberBinding(IdentifierName("P"))), "x?.P"},
		{"invocation", Invocation(x, ArgumentList(Argument(NumericLiteral(1)), Argument(StringLiteral("s")))), `x(1, "s")`},
		{"equals value", NewNode(KindEnumMember, List(), Identifier("A"), EqualsValue(NumericLiteral(2))), "A = 2"},
		{"semicolon", Tok(token.Semicolon), ";"},
		{"end of file", Tok(token.EOF), ""},
	}
	for _, tt := range tests {
		if got := tt.g.FullText(); got != tt.want {
			t.Errorf("%s: %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFindNode(t *testing.T) {
	tree := sampleTree()
	root := tree.Root()
	n := root.FindNode(tree.Span(5, 9), false)
	if n.Kind() != KindTrueLiteral {
		t.Fatalf("innermost = %s", n.Kind())
	}
	n = root.FindNode(tree.Span(0, 9), true)
	if n.Kind() != KindEqualsExpr {
		t.Fatalf("outermost = %s", n.Kind())
	}
	if tok := root.FindToken(2); tok.TokenKind() != token.EqEq {
		t.Fatalf("FindToken(2) = %s", tok.TokenKind())
	}
}

func TestSpanContainsDirectives(t *testing.T) {
	dir := Trivia{Kind: token.TriviaDirective, Text: "#if DEBUG\n"}
	inner := WithLeadingTrivia(TrueLiteral(), []Trivia{dir})
	outer := WithLeadingTrivia(IdentifierName("a"), []Trivia{dir})

	withInner := NewTree(Binary(KindEqualsExpr, IdentifierName("a"), inner), 1, "")
	if !withInner.Root().SpanContainsDirectives() {
		t.Error("directive before right operand not detected")
	}
	withOuter := NewTree(Binary(KindEqualsExpr, outer, TrueLiteral()), 1, "")
	if withOuter.Root().SpanContainsDirectives() {
		t.Error("leading directive counted as inside the span")
	}
	if !withOuter.Root().ContainsDirectives() {
		t.Error("ContainsDirectives missed the leading directive")
	}
}

func TestEquivalentIgnoresTrivia(t *testing.T) {
	a := Binary(KindAddExpr, IdentifierName("a"), IdentifierName("b"))
	b := WithLeadingTrivia(NewNode(KindAddExpr, IdentifierName("a"), Tok(token.Plus), IdentifierName("b")), []Trivia{LineFeed})
	if !Equivalent(a, b) {
		t.Fatal("expected equivalent")
	}
	if Equivalent(a, a.WithKind(KindSubtractExpr)) {
		t.Fatal("different kinds reported equivalent")
	}
}

func TestNegatedComparison(t *testing.T) {
	for _, k := range []Kind{KindEqualsExpr, KindLessThanExpr, KindGreaterThanOrEqualExpr} {
		neg, ok := NegatedComparison(k)
		if !ok {
			t.Fatalf("%s has no negation", k)
		}
		back, _ := NegatedComparison(neg)
		if back != k {
			t.Errorf("double negation of %s = %s", k, back)
		}
	}
}
