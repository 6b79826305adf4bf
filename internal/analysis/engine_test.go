package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"codefix/internal/analysis"
	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/parser"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

const src = `using System;

class A
{
    bool M(string s) => s == null;
    void N() { var x = 1 == 2; }
}

class B
{
#pragma warning disable RCS1049
    bool P(int i) => i == 3;
#pragma warning restore RCS1049
    bool Q(int i) => i == 4;
}
`

func load(t *testing.T, text string) (*syntax.Tree, *semantic.Model) {
	t.Helper()
	res := parser.ParseText(1, "t.cs", text, parser.Options{})
	m, err := semantic.Bind(context.Background(), res.Tree, semantic.Options{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return res.Tree, m
}

var equalsDescriptor = &analysis.Descriptor{
	ID:               diag.RuleSimplifyBooleanComparison,
	Title:            "equality",
	MessageFormat:    "Equality '%s'",
	Category:         "Test",
	DefaultSeverity:  diag.SevInfo,
	EnabledByDefault: true,
}

// equalsAnalyzer reports every == expression and records the kinds it saw.
type equalsAnalyzer struct {
	mu    sync.Mutex
	kinds map[syntax.Kind]int
}

func (a *equalsAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{equalsDescriptor}
}

func (a *equalsAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		a.mu.Lock()
		if a.kinds == nil {
			a.kinds = make(map[syntax.Kind]int)
		}
		a.kinds[ctx.Node.Kind()]++
		a.mu.Unlock()
		ctx.Report(equalsDescriptor, ctx.Node, ctx.Node.Text())
	}, syntax.KindEqualsExpr)
}

var panicDescriptor = &analysis.Descriptor{
	ID:               diag.RuleUseConditionalAccess,
	MessageFormat:    "never",
	DefaultSeverity:  diag.SevInfo,
	EnabledByDefault: true,
}

type panicAnalyzer struct{}

func (panicAnalyzer) Descriptors() []*analysis.Descriptor { return []*analysis.Descriptor{panicDescriptor} }

func (panicAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		if (syntax.MethodDecl{Node: ctx.Node}).Identifier().TokenText() == "N" {
			panic("boom")
		}
	}, syntax.KindMethodDecl)
}

var gatedDescriptor = &analysis.Descriptor{
	ID:               diag.RuleAsyncMethodNameShouldEndWithAsync,
	MessageFormat:    "method",
	DefaultSeverity:  diag.SevInfo,
	EnabledByDefault: true,
}

// gatedAnalyzer registers its node action only when a type exists.
type gatedAnalyzer struct{ typeName string }

func (gatedAnalyzer) Descriptors() []*analysis.Descriptor { return []*analysis.Descriptor{gatedDescriptor} }

func (a gatedAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterCompilationStart(func(sc *analysis.StartContext) {
		if sc.TypeByMetadataName(a.typeName) == nil {
			return
		}
		sc.RegisterNodeAction(func(ctx *analysis.NodeContext) {
			ctx.Report(gatedDescriptor, ctx.Node)
		}, syntax.KindClassDecl)
	})
}

func codes(ds []diag.Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestRunDispatchAndPragmas(t *testing.T) {
	tree, m := load(t, src)
	a := &equalsAnalyzer{}
	e := analysis.NewEngine(analysis.Options{Jobs: 2}, a)
	ds, err := e.Run(context.Background(), tree, m)
	if err != nil {
		t.Fatal(err)
	}
	var msgs []string
	for _, d := range ds {
		msgs = append(msgs, d.Message)
	}
	want := []string{"Equality 's == null'", "Equality '1 == 2'", "Equality 'i == 4'"}
	if strings.Join(msgs, "|") != strings.Join(want, "|") {
		t.Fatalf("messages = %q, want %q", msgs, want)
	}
	for k := range a.kinds {
		if k != syntax.KindEqualsExpr {
			t.Errorf("action invoked for unregistered kind %s", k)
		}
	}
}

func TestRunConfiguration(t *testing.T) {
	tree, m := load(t, src)
	var rules config.Rules
	rules.Set(diag.RuleSimplifyBooleanComparison, config.RuleSetting{State: config.RuleEnabled, Severity: diag.SevError, HasSeverity: true})
	ds, err := analysis.NewEngine(analysis.Options{Rules: rules}, &equalsAnalyzer{}).Run(context.Background(), tree, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 3 || ds[0].Severity != diag.SevError {
		t.Fatalf("diagnostics = %+v", ds)
	}

	a := &equalsAnalyzer{}
	rules = config.Rules{DisableAll: true}
	ds, err = analysis.NewEngine(analysis.Options{Rules: rules}, a).Run(context.Background(), tree, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 0 || len(a.kinds) != 0 {
		t.Fatalf("disabled rule ran: %v, %v", ds, a.kinds)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	tree, m := load(t, src)
	e := analysis.NewEngine(analysis.Options{}, panicAnalyzer{}, &equalsAnalyzer{})
	ds, err := e.Run(context.Background(), tree, m)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(codes(ds), ",")
	if got != "RCS1049,CFX0001,RCS1049,RCS1049" {
		t.Fatalf("codes = %s", got)
	}
	if !strings.Contains(ds[1].Message, "RCS1146") || !strings.Contains(ds[1].Message, "boom") {
		t.Fatalf("failure message = %q", ds[1].Message)
	}
}

func TestCompilationStartGating(t *testing.T) {
	tree, m := load(t, src)
	for _, tt := range []struct {
		typeName string
		want     int
	}{
		{"System.String", 2},
		{"System.Threading.Tasks.Missing", 0},
	} {
		ds, err := analysis.NewEngine(analysis.Options{}, gatedAnalyzer{tt.typeName}).Run(context.Background(), tree, m)
		if err != nil {
			t.Fatal(err)
		}
		if len(ds) != tt.want {
			t.Errorf("%s: %d diagnostics, want %d", tt.typeName, len(ds), tt.want)
		}
	}
}

func TestRestrict(t *testing.T) {
	tree, m := load(t, src)
	e := analysis.NewEngine(analysis.Options{}, &equalsAnalyzer{}, gatedAnalyzer{"System.String"})
	ds, err := e.Restrict(diag.RuleAsyncMethodNameShouldEndWithAsync).Run(context.Background(), tree, m)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(codes(ds), ","); got != "RCS1046,RCS1046" {
		t.Fatalf("codes = %s", got)
	}
	if _, on := e.Effective(diag.RuleSimplifyBooleanComparison); !on {
		t.Fatal("Restrict changed the original engine")
	}
}

func TestRunCanceled(t *testing.T) {
	tree, m := load(t, src)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.NewEngine(analysis.Options{}, gatedAnalyzer{"System.String"}).Run(ctx, tree, m)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDuplicateDescriptorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate descriptor accepted")
		}
	}()
	analysis.NewEngine(analysis.Options{}, &equalsAnalyzer{}, &equalsAnalyzer{})
}

func TestDescriptorFormat(t *testing.T) {
	d := &analysis.Descriptor{MessageFormat: "Rename '%s' to '%s'"}
	if got := d.Format("Get", "GetAsync"); got != "Rename 'Get' to 'GetAsync'" {
		t.Fatalf("Format = %q", got)
	}
	plain := &analysis.Descriptor{MessageFormat: "Use conditional access"}
	if got := plain.Format("ignored"); got != "Use conditional access" {
		t.Fatalf("Format = %q", got)
	}
}

type buffer struct{ items []int }

func (b *buffer) Reset() { b.items = b.items[:0] }

func TestPoolResets(t *testing.T) {
	var p analysis.Pool[buffer, *buffer]
	b := p.Get()
	b.items = append(b.items, 1, 2, 3)
	p.Put(b)
	if len(b.items) != 0 {
		t.Fatal("Put did not reset")
	}
	if got := p.Get(); len(got.items) != 0 {
		t.Fatal("Get returned stale state")
	}
}
