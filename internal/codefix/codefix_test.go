package codefix_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

var trueDescriptor = &analysis.Descriptor{
	ID:               diag.RuleSimplifyBooleanComparison,
	MessageFormat:    "Remove '== true'",
	DefaultSeverity:  diag.SevInfo,
	EnabledByDefault: true,
}

// trueAnalyzer reports "e == true" unless a directive lies inside it.
type trueAnalyzer struct{}

func (trueAnalyzer) Descriptors() []*analysis.Descriptor { return []*analysis.Descriptor{trueDescriptor} }

func (trueAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		if (syntax.BinaryExpr{Node: ctx.Node}).Right().Is(syntax.KindTrueLiteral) && !ctx.Node.SpanContainsDirectives() {
			ctx.Report(trueDescriptor, ctx.Node)
		}
	}, syntax.KindEqualsExpr)
}

// trueProvider replaces "e == true" with e, or with replacement when set.
type trueProvider struct{ replacement string }

func (trueProvider) FixableCodes() []diag.Code { return []diag.Code{diag.RuleSimplifyBooleanComparison} }

func (p trueProvider) RegisterFixes(c *codefix.FixContext) {
	n := c.Node()
	if !n.Is(syntax.KindEqualsExpr) {
		return
	}
	c.Register(codefix.NewAction("Remove comparison", "RemoveTrue", func(ctx context.Context) (*codefix.Document, error) {
		repl := syntax.BinaryExpr{Node: n}.Left().Green()
		if p.replacement != "" {
			repl = syntax.IdentifierName(p.replacement)
		}
		return c.Document.ReplaceNode(ctx, n, syntax.WithTriviaFrom(repl, n.Green()))
	}))
}

func parse(t *testing.T, text string) *codefix.Document {
	t.Helper()
	doc, err := codefix.Parse(context.Background(), 1, "t.cs", text)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func analyze(t *testing.T, doc *codefix.Document) []diag.Diagnostic {
	t.Helper()
	ds, err := analysis.NewEngine(analysis.Options{}, trueAnalyzer{}).Run(context.Background(), doc.Tree, doc.Model)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestActionsVerifyAndApply(t *testing.T) {
	doc := parse(t, "class C\n{\n    bool M(bool a) => a == true; // keep\n}\n")
	ds := analyze(t, doc)
	if len(ds) != 1 {
		t.Fatalf("diagnostics = %v", ds)
	}
	actions, err := codefix.Actions(context.Background(), doc, ds[0], []codefix.Provider{trueProvider{}})
	if err != nil || len(actions) != 1 {
		t.Fatalf("Actions = %v, %v", actions, err)
	}
	after, err := actions[0].Apply(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := "class C\n{\n    bool M(bool a) => a; // keep\n}\n"
	if after.Text() != want {
		t.Fatalf("after:\n%s\nwant:\n%s", after.Text(), want)
	}
	if len(analyze(t, after)) != 0 {
		t.Fatal("fixed document still reports")
	}
	fix, err := codefix.Fix(context.Background(), doc, ds[0], actions[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(fix.Edits) != 1 || fix.Edits[0].OldText != " == true" || fix.Edits[0].NewText != "" {
		t.Fatalf("edits = %+v", fix.Edits)
	}
}

func TestActionsRejectNewErrors(t *testing.T) {
	doc := parse(t, "class C\n{\n    bool M(bool a) => a == true;\n}\n")
	ds := analyze(t, doc)
	actions, err := codefix.Actions(context.Background(), doc, ds[0], []codefix.Provider{trueProvider{replacement: "missing"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 0 {
		t.Fatalf("action introducing CS0103 was offered: %q", actions[0].Title)
	}

	after, err := doc.WithText(context.Background(), strings.Replace(doc.Text(), "a == true", "missing", 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := codefix.Verify(doc, after); !errors.Is(err, codefix.ErrFixRejected) {
		t.Fatalf("Verify = %v, want ErrFixRejected", err)
	}
}

func TestVerifyToleratesExistingErrors(t *testing.T) {
	before := parse(t, "class C\n{\n    bool M(bool a) => a == true && nope;\n}\n")
	if len(before.Errors()) == 0 {
		t.Fatal("expected a binding error in the input")
	}
	after, err := before.WithText(context.Background(), strings.Replace(before.Text(), "a == true", "a", 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := codefix.Verify(before, after); err != nil {
		t.Fatalf("Verify = %v", err)
	}
}

func TestActionsWithholdDirectiveRewrites(t *testing.T) {
	doc := parse(t, "class C\n{\n    bool M(bool a) => a ==\n#if DEBUG\n        true;\n#endif\n}\n")
	if ds := analyze(t, doc); len(ds) != 0 {
		t.Fatalf("diagnostic reported across #if: %v", ds)
	}
	// a diagnostic from elsewhere still must not get a fix that drops the directive
	var eq *syntax.Node
	for n := range doc.Tree.Root().DescendantNodes(nil) {
		if n.Is(syntax.KindEqualsExpr) {
			eq = n
			break
		}
	}
	if eq == nil {
		t.Fatal("no == in the input")
	}
	d := diag.New(diag.SevInfo, diag.RuleSimplifyBooleanComparison, eq.Span(), "Remove '== true'")
	actions, err := codefix.Actions(context.Background(), doc, d, []codefix.Provider{trueProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 0 {
		t.Fatalf("fix across #if offered for %v", d.Primary)
	}
}

func TestFixAll(t *testing.T) {
	doc := parse(t, "class C\n{\n    bool M(bool a, bool b) => (a == true) == true || b == true;\n}\n")
	engine := analysis.NewEngine(analysis.Options{}, trueAnalyzer{})
	fixed, res, err := codefix.FixAll(context.Background(), doc, engine, []codefix.Provider{trueProvider{}}, diag.RuleSimplifyBooleanComparison, codefix.FixAllOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := "class C\n{\n    bool M(bool a, bool b) => (a) || b;\n}\n"
	if fixed.Text() != want {
		t.Fatalf("fixed:\n%s\nwant:\n%s", fixed.Text(), want)
	}
	if res.Applied != 3 || res.Iterations != 2 || len(res.Remaining) != 0 || res.EquivalenceKey != "RemoveTrue" {
		t.Fatalf("result = %+v", res)
	}
}

func TestFixAllIterationBound(t *testing.T) {
	doc := parse(t, "class C\n{\n    bool M(bool a) => ((a == true) == true) == true;\n}\n")
	engine := analysis.NewEngine(analysis.Options{}, trueAnalyzer{})
	_, res, err := codefix.FixAll(context.Background(), doc, engine, []codefix.Provider{trueProvider{}}, diag.RuleSimplifyBooleanComparison, codefix.FixAllOptions{MaxIterations: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 1 || res.Applied != 1 || len(res.Remaining) != 2 {
		t.Fatalf("result = %+v", res)
	}
}

func TestTextChanges(t *testing.T) {
	tests := []struct {
		before, after string
		start, end    uint32
		newText       string
	}{
		{"a == true;", "a;", 1, 9, ""},
		{"x.ToString()", "x", 1, 12, ""},
		{"abc", "abXc", 2, 2, "X"},
		{"s = \"é\";", "s = \"è\";", 5, 7, "è"},
	}
	for _, tt := range tests {
		edits := codefix.TextChanges(1, tt.before, tt.after)
		if len(edits) != 1 {
			t.Fatalf("%q -> %q: %d edits", tt.before, tt.after, len(edits))
		}
		e := edits[0]
		if e.Span != (source.Span{File: 1, Start: tt.start, End: tt.end}) || e.NewText != tt.newText {
			t.Errorf("%q -> %q: edit %+v", tt.before, tt.after, e)
		}
		if got := tt.before[:e.Span.Start] + e.NewText + tt.before[e.Span.End:]; got != tt.after {
			t.Errorf("%q -> %q: applying edit gives %q", tt.before, tt.after, got)
		}
	}
	if codefix.TextChanges(1, "same", "same") != nil {
		t.Error("equal texts produced edits")
	}
}
