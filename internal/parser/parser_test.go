package parser_test

import (
	"strings"
	"testing"

	"codefix/internal/diag"
	"codefix/internal/parser"
	"codefix/internal/source"
	"codefix/internal/syntax"
	"codefix/internal/testkit"
)

func parseSource(t *testing.T, src string) (*syntax.Tree, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte(src))
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs, id, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return res.Tree, bag
}

// shape renders the node kinds below n, skipping tokens and flattening lists.
func shape(n *syntax.Node) string {
	var parts []string
	var collect func(c *syntax.Node)
	collect = func(c *syntax.Node) {
		switch {
		case c == nil || c.IsToken():
		case c.Kind() == syntax.KindList:
			for cc := range c.Children() {
				collect(cc)
			}
		default:
			parts = append(parts, shape(c))
		}
	}
	for c := range n.Children() {
		collect(c)
	}
	if len(parts) == 0 {
		return n.Kind().String()
	}
	return n.Kind().String() + "(" + strings.Join(parts, " ") + ")"
}

// firstOfKind returns the first node of kind k in document order.
func firstOfKind(root *syntax.Node, k syntax.Kind) *syntax.Node {
	for n := range root.DescendantNodesAndSelf(nil) {
		if n.Kind() == k {
			return n
		}
	}
	return nil
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"class C { }\n",
		"using System;\nnamespace N;\n\npublic class C\n{\n    // comment\n    public int X { get; set; } = 1;\n}\n",
		"class C { void M() { int x = 1 } }",
		"class C { void M() { for (int i = 0; i < 10; i++) { x++; } } }",
		"class C { void M() { do { x++; } while (x < 3); try { } catch { } finally { } } }",
		"#if DEBUG\nclass A {}\n#endif\n",
		"class C { @@ }",
		"}",
		"enum E { A, B = 2, C, }",
		"class C<T> : Base, I { C() { } T F<U>(U u) => default; }",
		"class C { async Task<int> GetAsync() { return await Task.FromResult(1); } }",
		"class C { void M() { var s = x?.Name?.ToString(); if (a == true) { } else if (!b) return; } }",
		"class C { int M() => a >> 2 + b << 1; }",
		"class C { void M() { /* unterminated",
	}
	for _, src := range inputs {
		tree, _ := parseSource(t, src)
		if got := tree.FullText(); got != src {
			t.Errorf("round trip mismatch\nwant: %q\n got: %q", src, got)
		}
		if got := tree.Root().FullText(); got != src {
			t.Errorf("root text mismatch for %q: %q", src, got)
		}
		if err := testkit.CheckTreeInvariants(tree, src); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
}

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a == true", "EqualsExpr(IdentifierName TrueLiteral)"},
		{"a + b * c", "AddExpr(IdentifierName MultiplyExpr(IdentifierName IdentifierName))"},
		{"a - b - c", "SubtractExpr(SubtractExpr(IdentifierName IdentifierName) IdentifierName)"},
		{"x = y = 1", "SimpleAssignExpr(IdentifierName SimpleAssignExpr(IdentifierName NumericLiteral))"},
		{"x = a >> 2", "SimpleAssignExpr(IdentifierName RightShiftExpr(IdentifierName NumericLiteral))"},
		{"a ?? b ?? c", "CoalesceExpr(IdentifierName CoalesceExpr(IdentifierName IdentifierName))"},
		{"F<int>(x)", "InvocationExpr(GenericName(TypeArgumentList(PredefinedType)) ArgumentList(Argument(IdentifierName)))"},
		{"F(a < b, c > d)", "InvocationExpr(IdentifierName ArgumentList(Argument(LessThanExpr(IdentifierName IdentifierName)) Argument(GreaterThanExpr(IdentifierName IdentifierName))))"},
		{"a?.B.C()", "ConditionalAccessExpr(IdentifierName InvocationExpr(MemberAccessExpr(MemberBindingExpr(IdentifierName) IdentifierName) ArgumentList))"},
		{"a?[0]", "ConditionalAccessExpr(IdentifierName ElementBindingExpr(BracketedArgumentList(Argument(NumericLiteral))))"},
		{"(int)x", "CastExpr(PredefinedType IdentifierName)"},
		{"(a) + b", "AddExpr(ParenExpr(IdentifierName) IdentifierName)"},
		{"x is null", "IsPatternExpr(IdentifierName ConstantPattern(NullLiteral))"},
		{"x is not string s", "IsPatternExpr(IdentifierName NotPattern(DeclarationPattern(PredefinedType)))"},
		{"await Task.Delay(1)", "AwaitExpr(InvocationExpr(MemberAccessExpr(IdentifierName IdentifierName) ArgumentList(Argument(NumericLiteral))))"},
		{"b ? 1 : 2", "ConditionalExpr(IdentifierName NumericLiteral NumericLiteral)"},
		{"!flag", "LogicalNotExpr(IdentifierName)"},
		{"new List<int>()", "ObjectCreationExpr(GenericName(TypeArgumentList(PredefinedType)) ArgumentList)"},
		{"s.ToString().Length", "MemberAccessExpr(InvocationExpr(MemberAccessExpr(IdentifierName IdentifierName) ArgumentList) IdentifierName)"},
		{"x as string", "AsExpr(IdentifierName PredefinedType)"},
		{"i++", "PostIncrementExpr(IdentifierName)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			tree, bag := parseSource(t, "class C { void M() { "+tt.expr+"; } }")
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Items())
			}
			stmt := firstOfKind(tree.Root(), syntax.KindExprStmt)
			if stmt == nil {
				t.Fatalf("no expression statement in %q", tree.FullText())
			}
			if got := shape(stmt.Child(0)); got != tt.want {
				t.Errorf("shape = %s\nwant    %s", got, tt.want)
			}
		})
	}
}

func TestDeclarationShapes(t *testing.T) {
	src := `namespace N
{
    [Flags]
    public enum E : byte { A = 1, B }
    public class C : Base
    {
        private int _x, _y = 2;
        public C(int x) { _x = x; }
        public string Name { get; private set; }
        public int Twice => _x * 2;
        public async Task RunAsync(CancellationToken ct = default) { await Task.Delay(1, ct); }
    }
}
`
	tree, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	enum := firstOfKind(tree.Root(), syntax.KindEnumDecl)
	if enum == nil {
		t.Fatal("enum not parsed")
	}
	ev := syntax.EnumDecl{Node: enum}
	if got := ev.Identifier().TokenText(); got != "E" {
		t.Errorf("enum name = %q", got)
	}
	if got := len(ev.Members()); got != 2 {
		t.Errorf("enum members = %d, want 2", got)
	}
	if len(ev.AttributeLists()) != 1 || ev.BaseList() == nil {
		t.Errorf("enum attributes or base list missing")
	}

	class := firstOfKind(tree.Root(), syntax.KindClassDecl)
	td := syntax.TypeDecl{Node: class}
	var kinds []string
	for _, m := range td.Members() {
		kinds = append(kinds, m.Kind().String())
	}
	want := "FieldDecl ConstructorDecl PropertyDecl PropertyDecl MethodDecl"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("members = %s, want %s", got, want)
	}

	method := syntax.MethodDecl{Node: firstOfKind(class, syntax.KindMethodDecl)}
	if !syntax.HasModifier(method.Modifiers(), "async") {
		t.Errorf("async modifier not recorded")
	}
	if got := method.Identifier().TokenText(); got != "RunAsync" {
		t.Errorf("method name = %q", got)
	}
	params := method.Parameters()
	if len(params) != 1 {
		t.Fatalf("parameters = %d, want 1", len(params))
	}
	if got := (syntax.Parameter{Node: params[0]}).Identifier().TokenText(); got != "ct" {
		t.Errorf("parameter name = %q", got)
	}
}

func TestMissingSemicolonCarriesFix(t *testing.T) {
	src := "class C { void M() { int x = 1 } }"
	tree, bag := parseSource(t, src)
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", items)
	}
	d := items[0]
	if d.Code != diag.CSSemicolonExpected {
		t.Fatalf("code = %v, want %v", d.Code, diag.CSSemicolonExpected)
	}
	if want := uint32(strings.Index(src, "1") + 1); d.Primary.Start != want {
		t.Errorf("diagnostic at %d, want %d", d.Primary.Start, want)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 || d.Fixes[0].Edits[0].NewText != ";" {
		t.Fatalf("fix = %+v", d.Fixes)
	}
	decl := firstOfKind(tree.Root(), syntax.KindLocalDeclStmt)
	if decl == nil || !decl.Child(2).IsMissing() {
		t.Errorf("local declaration should end with a missing ';'")
	}
}

func TestErrorRecovery(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unclosed class", "class C { void M() { }", diag.CSCloseBraceExpected},
		{"garbage member", "class C { @@ }", diag.CSUnexpectedCharacter},
		{"bad expression", "class C { void M() { x = ; } }", diag.CSInvalidExpressionTerm},
		{"field without name", "class C { int; }", diag.CSIdentifierExpected},
		{"top level junk", ") class C { }", diag.CSSyntaxError},
		{"missing endif", "#if DEBUG\nclass C { }\n", diag.CSEndifExpected},
		{"stray endif", "class C { }\n#endif\n", diag.CSUnexpectedPreprocessor},
		{"unknown directive", "#frobnicate\nclass C { }\n", diag.CSUnexpectedPreprocessor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, bag := parseSource(t, tt.src)
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %v among %v", tt.code, bag.Items())
			}
			if tree.FullText() != tt.src {
				t.Errorf("round trip lost text: %q", tree.FullText())
			}
		})
	}
}

func TestOpaqueStatements(t *testing.T) {
	src := "class C { void M() { for (;;) { if (a) break; } do x++; while (x < 3); a = b == true; } }"
	tree, bag := parseSource(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	block := syntax.Block{Node: firstOfKind(tree.Root(), syntax.KindBlock)}
	var kinds []string
	for _, s := range block.Statements() {
		kinds = append(kinds, s.Kind().String())
	}
	if got, want := strings.Join(kinds, " "), "OpaqueStmt OpaqueStmt ExprStmt"; got != want {
		t.Errorf("statements = %s, want %s", got, want)
	}
	if tree.HasErrors() {
		t.Errorf("opaque statements must not mark the tree as erroneous")
	}
}

func TestMaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cs", []byte("class C { void M() { a = ; b = ; c = ; } }"))
	bag := diag.NewBag(0)
	parser.ParseFile(fs, id, parser.Options{MaxErrors: 1, Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 1 {
		t.Errorf("expected exactly one diagnostic, got %d", bag.Len())
	}
}

func TestParseText(t *testing.T) {
	res := parser.ParseText(7, "virtual.cs", "class C { }", parser.Options{})
	if res.Tree.Path() != "virtual.cs" || res.Tree.File() != 7 {
		t.Errorf("tree identity = %q/%d", res.Tree.Path(), res.Tree.File())
	}
	if res.Bag != nil {
		t.Errorf("no reporter should yield no bag")
	}
}
