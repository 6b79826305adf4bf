package rules_test

import (
	"context"
	"strings"
	"testing"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/rules"
)

const prelude = "using System;\nusing System.Diagnostics;\nusing System.Threading.Tasks;\n\n"

// inClass wraps members in class C after the usual usings.
func inClass(members string) string {
	return prelude + "class C\n{\n" + members + "\n}\n"
}

func parse(t *testing.T, text string) *codefix.Document {
	t.Helper()
	doc, err := codefix.Parse(context.Background(), 1, "t.cs", text)
	if err != nil {
		t.Fatal(err)
	}
	if errs := doc.Errors(); len(errs) != 0 {
		t.Fatalf("input has errors: %v", errs)
	}
	return doc
}

// engine runs every analyzer with code enabled whatever its default.
func engine(code diag.Code) *analysis.Engine {
	var rs config.Rules
	rs.Set(code, config.RuleSetting{State: config.RuleEnabled})
	return analysis.NewEngine(analysis.Options{Rules: rs}, rules.Analyzers()...)
}

func diagnostics(t *testing.T, doc *codefix.Document, code diag.Code) []diag.Diagnostic {
	t.Helper()
	ds, err := engine(code).Restrict(code).Run(context.Background(), doc.Tree, doc.Model)
	if err != nil {
		t.Fatal(err)
	}
	var out []diag.Diagnostic
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

type fixCase struct {
	name   string
	before string // class members
	after  string // class members after fixing every diagnostic
}

// checkFixes asserts that each case reports code and that fixing all of
// its diagnostics gives after, which reports nothing.
func checkFixes(t *testing.T, code diag.Code, tests []fixCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, inClass(tt.before))
			if len(diagnostics(t, doc, code)) == 0 {
				t.Fatalf("no %s diagnostic", code.ID())
			}
			fixed, res, err := codefix.FixAll(context.Background(), doc, engine(code), rules.Providers(), code, codefix.FixAllOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if want := inClass(tt.after); fixed.Text() != want {
				t.Fatalf("fixed:\n%s\nwant:\n%s", fixed.Text(), want)
			}
			if len(res.Remaining) != 0 {
				t.Fatalf("remaining diagnostics: %v", res.Remaining)
			}
		})
	}
}

// checkNoDiagnostics asserts that none of the sources report code.
func checkNoDiagnostics(t *testing.T, code diag.Code, sources []string) {
	t.Helper()
	for _, src := range sources {
		doc := parse(t, inClass(src))
		if ds := diagnostics(t, doc, code); len(ds) != 0 {
			t.Errorf("%s reported for\n%s\n%v", code.ID(), src, ds)
		}
	}
}

func TestOptimizeMethodCall(t *testing.T) {
	checkFixes(t, diag.RuleOptimizeMethodCall, []fixCase{
		{
			name:   "compare equals zero",
			before: "    bool M(string x, string y) => string.Compare(x, y, StringComparison.Ordinal) == 0;",
			after:  "    bool M(string x, string y) => string.Equals(x, y, StringComparison.Ordinal);",
		},
		{
			name:   "compare not equals zero",
			before: "    bool M(string x, string y) => string.Compare(x, y, StringComparison.OrdinalIgnoreCase) != 0;",
			after:  "    bool M(string x, string y) => !string.Equals(x, y, StringComparison.OrdinalIgnoreCase);",
		},
		{
			name:   "zero on the left",
			before: "    bool M(string x, string y) => 0 == string.Compare(x, y, StringComparison.CurrentCulture);",
			after:  "    bool M(string x, string y) => string.Equals(x, y, StringComparison.CurrentCulture);",
		},
		{
			name:   "ordinal compare",
			before: "    int M(string x, string y) => string.Compare(x, y, StringComparison.Ordinal);",
			after:  "    int M(string x, string y) => string.CompareOrdinal(x, y);",
		},
		{
			name:   "assert false with message",
			before: "    void M()\n    {\n        Debug.Assert(false, \"message\");\n    }",
			after:  "    void M()\n    {\n        Debug.Fail(\"message\");\n    }",
		},
		{
			name:   "assert false with detail",
			before: "    void M()\n    {\n        Debug.Assert(false, \"message\", \"detail\");\n    }",
			after:  "    void M()\n    {\n        Debug.Fail(\"message\", \"detail\");\n    }",
		},
		{
			name:   "assert false alone",
			before: "    void M()\n    {\n        Debug.Assert(false);\n    }",
			after:  "    void M()\n    {\n        Debug.Fail(\"\");\n    }",
		},
		{
			name:   "join with empty separator",
			before: "    string M(string[] values) => string.Join(\"\", values);",
			after:  "    string M(string[] values) => string.Concat(values);",
		},
		{
			name:   "join with string.Empty",
			before: "    string M(object a, object b) => string.Join(string.Empty, a, b);",
			after:  "    string M(object a, object b) => string.Concat(a, b);",
		},
	})
	checkNoDiagnostics(t, diag.RuleOptimizeMethodCall, []string{
		"    int M(string x, string y) => string.Compare(x, y, StringComparison.CurrentCulture);",
		"    bool M(string x, string y) => string.Compare(x, y) == 0;",
		"    bool M(string x, string y) => string.Compare(x, y, StringComparison.InvariantCulture) == 1;",
		"    void M(bool b)\n    {\n        Debug.Assert(b, \"message\");\n    }",
		"    string M(string[] values) => string.Join(\",\", values);",
	})
}

func TestOptimizeMethodCallSpan(t *testing.T) {
	src := inClass("    bool M(string x, string y) => string.Compare(x, y, StringComparison.Ordinal) == 0;")
	doc := parse(t, src)
	ds := diagnostics(t, doc, diag.RuleOptimizeMethodCall)
	if len(ds) != 1 {
		t.Fatalf("diagnostics = %v", ds)
	}
	want := "string.Compare(x, y, StringComparison.Ordinal) == 0"
	if got := src[ds[0].Primary.Start:ds[0].Primary.End]; got != want {
		t.Fatalf("span covers %q, want %q", got, want)
	}
	if ds[0].Message != "Optimize method call 'Compare'" {
		t.Fatalf("message = %q", ds[0].Message)
	}
}

func TestUseConditionalAccess(t *testing.T) {
	checkFixes(t, diag.RuleUseConditionalAccess, []fixCase{
		{
			name:   "reference type",
			before: "    void M(C x)\n    {\n        if (x != null && x.Equals(x)) { }\n    }",
			after:  "    void M(C x)\n    {\n        if (x?.Equals(x) == true) { }\n    }",
		},
		{
			name:   "negated",
			before: "    bool M(C x) => x != null && !x.Equals(x);",
			after:  "    bool M(C x) => x?.Equals(x) == false;",
		},
		{
			name:   "null or",
			before: "    bool M(C x) => x == null || x.Equals(x);",
			after:  "    bool M(C x) => x?.Equals(x) != false;",
		},
		{
			name:   "comparison with constant",
			before: "    bool M(string s) => s != null && s.ToLower() == \"a\";",
			after:  "    bool M(string s) => s?.ToLower() == \"a\";",
		},
		{
			name:   "relational",
			before: "    bool M(string s) => s != null && s.Length > 1;",
			after:  "    bool M(string s) => s?.Length > 1;",
		},
		{
			name:   "if statement",
			before: "    void M(C x)\n    {\n        if (x != null)\n            x.N();\n    }\n\n    void N() { }",
			after:  "    void M(C x)\n    {\n        x?.N();\n    }\n\n    void N() { }",
		},
		{
			name:   "last operands of a chain",
			before: "    bool M(bool f, C x) => f && x != null && x.Equals(x);",
			after:  "    bool M(bool f, C x) => f && x?.Equals(x) == true;",
		},
	})
	checkNoDiagnostics(t, diag.RuleUseConditionalAccess, []string{
		"    bool M(C x, C y) => x != null && y.Equals(x);",
		"    bool M(C x) => x != null || x.Equals(x);",
		"    bool M(string s) => s == null || s.Length > 1;",
		"    bool M(string s) => s != null && s.ToLower() == null;",
		"    bool M(int i, C x) => x != null && i > 0;",
	})
}

func TestRemoveRedundantToStringCall(t *testing.T) {
	checkFixes(t, diag.RuleRemoveRedundantToStringCall, []fixCase{
		{
			name:   "string receiver",
			before: "    string M(string s) => s.ToString();",
			after:  "    string M(string s) => s;",
		},
		{
			name:   "concatenation",
			before: "    string M(object o) => \"a\" + o.ToString();",
			after:  "    string M(object o) => \"a\" + o;",
		},
		{
			name:   "concatenation on the left",
			before: "    string M(C c) => c.ToString() + \"a\";\n\n    public override string ToString() => \"c\";",
			after:  "    string M(C c) => c + \"a\";\n\n    public override string ToString() => \"c\";",
		},
	})
	checkNoDiagnostics(t, diag.RuleRemoveRedundantToStringCall, []string{
		"    string M(int i) => \"a\" + i.ToString();",
		"    string M(object o) => o.ToString();",
		"    string M(C c) => \"a\" + c.ToString();\n\n    public new string ToString() => \"c\";",
	})
}

func TestSimplifyBooleanComparison(t *testing.T) {
	checkFixes(t, diag.RuleSimplifyBooleanComparison, []fixCase{
		{"equals true", "    bool M(bool a) => a == true;", "    bool M(bool a) => a;"},
		{"equals false", "    bool M(bool a) => a == false;", "    bool M(bool a) => !a;"},
		{"not equals true", "    bool M(bool a) => a != true;", "    bool M(bool a) => !a;"},
		{"not equals false", "    bool M(bool a) => a != false;", "    bool M(bool a) => a;"},
		{"literal on the left", "    bool M(bool a) => false == a;", "    bool M(bool a) => !a;"},
		{"negated operand", "    bool M(bool a) => !a == false;", "    bool M(bool a) => a;"},
		{"binary operand", "    bool M(int i) => (i > 1) == false;", "    bool M(int i) => !(i > 1);"},
	})
	checkNoDiagnostics(t, diag.RuleSimplifyBooleanComparison, []string{
		"    bool M(bool? a) => a == true;",
		"    bool M() => true == false;",
		"    bool M(int i) => i == 1;",
	})
}

func TestAsyncMethodNames(t *testing.T) {
	checkFixes(t, diag.RuleAsyncMethodNameShouldEndWithAsync, []fixCase{
		{
			name:   "rename with references",
			before: "    Task Foo() => Task.CompletedTask;\n\n    async Task Run() => await Foo();",
			after:  "    Task FooAsync() => Task.CompletedTask;\n\n    async Task RunAsync() => await FooAsync();",
		},
	})
	checkFixes(t, diag.RuleNonAsyncMethodNameShouldNotEndWithAsync, []fixCase{
		{
			name:   "strip suffix",
			before: "    void FooAsync() { }\n\n    void M() => FooAsync();",
			after:  "    void Foo() { }\n\n    void M() => Foo();",
		},
	})
	checkNoDiagnostics(t, diag.RuleAsyncMethodNameShouldEndWithAsync, []string{
		"    Task FooAsync() => Task.CompletedTask;",
		"    void Foo() { }",
		"    Task Foo() { }",
		"    static Task Main() => Task.CompletedTask;",
	})
	checkNoDiagnostics(t, diag.RuleNonAsyncMethodNameShouldNotEndWithAsync, []string{
		"    Task FooAsync() => Task.CompletedTask;",
		"    async void RunAsync() => await Task.Delay(1);",
	})
}

func TestDirectivesInsideSpan(t *testing.T) {
	const region = "\n#region r\n#endregion\n        "
	tests := []struct {
		name   string
		code   diag.Code
		source string
	}{
		{"compare equals zero", diag.RuleOptimizeMethodCall,
			"    bool M(string x, string y) => string.Compare(x, y, StringComparison.Ordinal)" + region + "== 0;"},
		{"ordinal compare", diag.RuleOptimizeMethodCall,
			"    int M(string x, string y) => string.Compare(x, y," + region + "StringComparison.Ordinal);"},
		{"assert false", diag.RuleOptimizeMethodCall,
			"    void M()\n    {\n        Debug.Assert(false," + region + "\"message\");\n    }"},
		{"join", diag.RuleOptimizeMethodCall,
			"    string M(string[] values) => string" + region + ".Join(\"\", values);"},
		{"conditional access", diag.RuleUseConditionalAccess,
			"    bool M(C x) => x != null" + region + "&& x.Equals(x);"},
		{"conditional access statement", diag.RuleUseConditionalAccess,
			"    void M(C x)\n    {\n        if (x != null)" + region + "x.N();\n    }\n\n    void N() { }"},
		{"tostring before dot", diag.RuleRemoveRedundantToStringCall,
			"    string M(string s) => s" + region + ".ToString();"},
		{"tostring in arguments", diag.RuleRemoveRedundantToStringCall,
			"    string M(object o) => \"a\" + o.ToString(" + region + ");"},
		{"boolean comparison", diag.RuleSimplifyBooleanComparison,
			"    bool M(bool a) => a" + region + "== true;"},
		{"boolean comparison with if", diag.RuleSimplifyBooleanComparison,
			"    bool M(bool a) => a ==\n#if DEBUG\n#endif\n        true;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, inClass(tt.source))
			if ds := diagnostics(t, doc, tt.code); len(ds) != 0 {
				t.Fatalf("%s reported: %v", tt.code.ID(), ds)
			}
			fixed, _, err := codefix.FixAll(context.Background(), doc, engine(tt.code), rules.Providers(), tt.code, codefix.FixAllOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if fixed.Text() != doc.Text() {
				t.Fatalf("text changed:\n%s", fixed.Text())
			}
		})
	}
}

func TestFixesKeepSurroundingTrivia(t *testing.T) {
	tests := []struct {
		code diag.Code
		fixCase
	}{
		{diag.RuleOptimizeMethodCall, fixCase{
			"compare",
			"    bool M(string x, string y) => /* lead */ string.Compare(x, y, StringComparison.Ordinal) == 0 /* trail */;",
			"    bool M(string x, string y) => /* lead */ string.Equals(x, y, StringComparison.Ordinal) /* trail */;",
		}},
		{diag.RuleUseConditionalAccess, fixCase{
			"conditional access",
			"    bool M(C x) => /* lead */ x != null && x.Equals(x) /* trail */;",
			"    bool M(C x) => /* lead */ x?.Equals(x) == true /* trail */;",
		}},
		{diag.RuleRemoveRedundantToStringCall, fixCase{
			"tostring",
			"    string M(string s) => /* lead */ s.ToString() /* trail */;",
			"    string M(string s) => /* lead */ s /* trail */;",
		}},
		{diag.RuleSimplifyBooleanComparison, fixCase{
			"line comment",
			"    // before\n    bool M(bool a) => a == true; // after",
			"    // before\n    bool M(bool a) => a; // after",
		}},
		{diag.RuleSimplifyBooleanComparison, fixCase{
			"directives outside the span",
			"#region r\n    bool M(bool a) => a == false;\n#endregion",
			"#region r\n    bool M(bool a) => !a;\n#endregion",
		}},
	}
	for _, tt := range tests {
		checkFixes(t, tt.code, []fixCase{tt.fixCase})
	}
}

func TestAsyncSuffixDisabledByDefault(t *testing.T) {
	doc := parse(t, inClass("    Task Foo() => Task.CompletedTask;"))
	ds, err := analysis.NewEngine(analysis.Options{}, rules.Analyzers()...).Run(context.Background(), doc.Tree, doc.Model)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 0 {
		t.Fatalf("diagnostics = %v", ds)
	}
}

func refactorings(t *testing.T, src, at string) []*codefix.CodeAction {
	t.Helper()
	doc := parse(t, src)
	pos := uint32(strings.Index(src, at))
	actions, err := codefix.Refactorings(context.Background(), doc, doc.Tree.Span(pos, pos), rules.Refactorings())
	if err != nil {
		t.Fatal(err)
	}
	return actions
}

func TestGenerateEnumValues(t *testing.T) {
	src := "using System;\n\n[Flags]\nenum Foo\n{\n    None = 0,\n    A,\n    B,\n    C,\n}\n"
	actions := refactorings(t, src, "C,")
	if len(actions) != 1 || actions[0].EquivalenceKey != "RR0057" {
		t.Fatalf("actions = %+v", actions)
	}
	after, err := actions[0].Apply(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := "using System;\n\n[Flags]\nenum Foo\n{\n    None = 0,\n    A = 1,\n    B = 2,\n    C = 4,\n}\n"
	if after.Text() != want {
		t.Fatalf("after:\n%s\nwant:\n%s", after.Text(), want)
	}
}

func TestGenerateEnumValuesFromHighest(t *testing.T) {
	src := "using System;\n\n[Flags]\nenum Foo : byte\n{\n    A = 1,\n    B,\n    C = 8,\n    D\n}\n"
	actions := refactorings(t, src, "enum Foo")
	if len(actions) != 2 {
		t.Fatalf("actions = %+v", actions)
	}
	tests := []struct {
		title, key, want string
	}{
		{
			"Generate enum values", "RR0057",
			"using System;\n\n[Flags]\nenum Foo : byte\n{\n    A = 1,\n    B = 2,\n    C = 8,\n    D = 4\n}\n",
		},
		{
			"Generate enum values (starting from 16)", "RR0057.StartFromHighestExistingValue",
			"using System;\n\n[Flags]\nenum Foo : byte\n{\n    A = 1,\n    B = 16,\n    C = 8,\n    D = 32\n}\n",
		},
	}
	for i, tt := range tests {
		a := actions[i]
		if a.Title != tt.title || a.EquivalenceKey != tt.key {
			t.Errorf("action %d = %q (%s), want %q (%s)", i, a.Title, a.EquivalenceKey, tt.title, tt.key)
			continue
		}
		after, err := a.Apply(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if after.Text() != tt.want {
			t.Errorf("%s:\n%s\nwant:\n%s", tt.title, after.Text(), tt.want)
		}
	}
}

func TestGenerateEnumValuesNotOffered(t *testing.T) {
	tests := []struct {
		name, src string
	}{
		{"not flags", "enum Foo\n{\n    A,\n    B,\n}\n"},
		{"all explicit", "using System;\n\n[Flags]\nenum Foo\n{\n    A = 1,\n    B = 2,\n}\n"},
		{"underlying type full", "using System;\n\n[Flags]\nenum Foo : byte\n{\n    A = 1, B = 2, C = 4, D = 8, E = 16, F = 32, G = 64, H = 128,\n    I,\n}\n"},
	}
	for _, tt := range tests {
		if actions := refactorings(t, tt.src, "enum Foo"); len(actions) != 0 {
			t.Errorf("%s: actions = %+v", tt.name, actions)
		}
	}
}

func TestUniquePowerOfTwo(t *testing.T) {
	tests := []struct {
		values      []uint64
		fromHighest bool
		hi          uint64
		want        uint64
		ok          bool
	}{
		{nil, false, 1<<31 - 1, 1, true},
		{[]uint64{0, 1, 2}, false, 1<<31 - 1, 4, true},
		{[]uint64{1, 8}, false, 255, 2, true},
		{[]uint64{1, 8}, true, 255, 16, true},
		{[]uint64{128}, true, 255, 0, false},
		{[]uint64{1 << 63}, true, 1<<64 - 1, 0, false},
		{[]uint64{1, 2}, false, 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := rules.UniquePowerOfTwo(tt.values, tt.fromHighest, tt.hi)
		if got != tt.want || ok != tt.ok {
			t.Errorf("UniquePowerOfTwo(%v, %v, %d) = %d, %v; want %d, %v", tt.values, tt.fromHighest, tt.hi, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalog(t *testing.T) {
	var ids []string
	for _, e := range rules.Catalog() {
		ids = append(ids, e.Code.ID())
		if e.HelpURI == "" || e.Title == "" {
			t.Errorf("%s: incomplete entry %+v", e.Code.ID(), e)
		}
	}
	want := "RCS1046,RCS1047,RCS1049,RCS1097,RCS1146,RCS1238,RR0057"
	if got := strings.Join(ids, ","); got != want {
		t.Fatalf("catalog = %s, want %s", got, want)
	}
	e, ok := rules.Lookup(diag.RuleAsyncMethodNameShouldEndWithAsync)
	if !ok || e.EnabledByDefault || !e.Fixable {
		t.Fatalf("RCS1046 = %+v", e)
	}
	if e, ok := rules.Lookup(diag.RefactorGenerateEnumValues); !ok || !e.Refactoring {
		t.Fatalf("RR0057 = %+v", e)
	}
}
