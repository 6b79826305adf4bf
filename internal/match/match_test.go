package match_test

import (
	"context"
	"testing"

	"codefix/internal/match"
	"codefix/internal/parser"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

const header = "using System;\n\nclass C\n{\n    string s;\n    int? n;\n    C c;\n    bool M(C x) => true;\n    void Run()\n    {\n        var r = "

// exprOf parses expr as the initializer of a local and returns it together
// with the bound model.
func exprOf(t *testing.T, expr string) (*syntax.Node, *semantic.Model) {
	t.Helper()
	src := header + expr + ";\n    }\n}\n"
	res := parser.ParseText(1, "m.cs", src, parser.Options{})
	if res.Bag != nil && res.Bag.HasErrors() {
		t.Fatalf("parse %q: %v", expr, res.Bag.Items())
	}
	m, err := semantic.Bind(context.Background(), res.Tree, semantic.Options{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	for n := range res.Tree.Root().DescendantNodes(nil) {
		if n.Is(syntax.KindVariableDeclarator) && n.Child(0).TokenText() == "r" {
			return syntax.VariableDeclarator{Node: n}.Initializer(), m
		}
	}
	t.Fatalf("no declarator in %q", src)
	return nil, nil
}

func TestSimpleMemberInvocation(t *testing.T) {
	tests := []struct {
		expr string
		ok   bool
		name string
		args int
	}{
		{"s.Equals(s)", true, "Equals", 1},
		{"string.Compare(s, s, StringComparison.Ordinal)", true, "Compare", 3},
		{"c.M(c)", true, "M", 1},
		{"M(c)", false, "", 0},
		{"s?.Equals(s)", false, "", 0},
		{"s.Length", false, "", 0},
	}
	for _, tt := range tests {
		n, _ := exprOf(t, tt.expr)
		info := match.SimpleMemberInvocation(n)
		if info.Success != tt.ok {
			t.Fatalf("%s: Success = %v, want %v", tt.expr, info.Success, tt.ok)
		}
		if !tt.ok {
			if info != (match.SimpleMemberInvocationInfo{}) {
				t.Errorf("%s: failed match is not the zero value", tt.expr)
			}
			continue
		}
		if info.NameText() != tt.name || len(info.Arguments()) != tt.args {
			t.Errorf("%s: name %q with %d args", tt.expr, info.NameText(), len(info.Arguments()))
		}
	}
}

func TestMemberInvocationConditional(t *testing.T) {
	n, _ := exprOf(t, "s?.ToString()")
	ca := syntax.ConditionalAccessExpr{Node: n}
	info := match.MemberInvocation(ca.WhenNotNull())
	if !info.Success || !info.Conditional {
		t.Fatalf("MemberInvocation(s?.ToString()) = %+v", info)
	}
	if info.Expression.Text() != "s" || info.NameText() != "ToString" || info.OperatorToken.TokenText() != "?" {
		t.Fatalf("receiver %q name %q op %q", info.Expression.Text(), info.NameText(), info.OperatorToken.TokenText())
	}

	n, _ = exprOf(t, "s.ToString()")
	if info := match.MemberInvocation(n); !info.Success || info.Conditional || info.OperatorToken.TokenText() != "." {
		t.Fatalf("MemberInvocation(s.ToString()) = %+v", info)
	}
}

func TestNullCheck(t *testing.T) {
	tests := []struct {
		expr    string
		allowed match.NullCheckStyles
		ok      bool
		target  string
		notNull bool
	}{
		{"c != null", match.AllNullChecks, true, "c", true},
		{"null != c", match.AllNullChecks, true, "c", true},
		{"(c) == null", match.AllNullChecks, true, "c", false},
		{"c is null", match.AllNullChecks, true, "c", false},
		{"c is not null", match.AllNullChecks, true, "c", true},
		{"!(c is null)", match.AllNullChecks, true, "c", true},
		{"n.HasValue", match.AllNullChecks, true, "n", true},
		{"!n.HasValue", match.AllNullChecks, true, "n", false},
		{"c != null", match.EqualsToNull, false, "", false},
		{"c is null", match.ComparisonToNull, false, "", false},
		{"s.Length == 0", match.AllNullChecks, false, "", false},
		{"null == null", match.AllNullChecks, false, "", false},
	}
	for _, tt := range tests {
		n, m := exprOf(t, tt.expr)
		info := match.NullCheck(n, m, tt.allowed)
		if info.Success != tt.ok {
			t.Errorf("%s: Success = %v, want %v", tt.expr, info.Success, tt.ok)
			continue
		}
		if !tt.ok {
			continue
		}
		if info.Expression.Text() != tt.target {
			t.Errorf("%s: Expression = %q, want %q", tt.expr, info.Expression.Text(), tt.target)
		}
		if info.IsCheckingNotNull() != tt.notNull || info.IsCheckingNull() == tt.notNull {
			t.Errorf("%s: checking not-null = %v, want %v", tt.expr, info.IsCheckingNotNull(), tt.notNull)
		}
	}
}

func TestNullCheckHasValueNeedsModel(t *testing.T) {
	n, _ := exprOf(t, "n.HasValue")
	if match.NullCheck(n, nil, match.AllNullChecks).Success {
		t.Fatal("HasValue matched without a semantic model")
	}
}

func TestBinary(t *testing.T) {
	n, _ := exprOf(t, "((s.Length)) + (1)")
	info := match.Binary(n, syntax.KindAddExpr)
	if !info.Success || info.Left.Text() != "s.Length" || info.Right.Text() != "1" {
		t.Fatalf("Binary = %+v", info)
	}
	if info.Other(info.Left) != info.Right || info.Other(n) != nil {
		t.Fatal("Other picked the wrong operand")
	}
	if match.Binary(n, syntax.KindSubtractExpr).Success {
		t.Fatal("kind filter ignored")
	}
}

func TestStringConcat(t *testing.T) {
	n, m := exprOf(t, `"a" + s + n + "b"`)
	info := match.StringConcat(n, m)
	if !info.Success {
		t.Fatal("not a string concatenation")
	}
	var got []string
	for _, e := range info.Expressions {
		got = append(got, e.Text())
	}
	want := []string{`"a"`, "s", "n", `"b"`}
	if len(got) != len(want) {
		t.Fatalf("Expressions = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expressions = %q, want %q", got, want)
		}
	}

	n, m = exprOf(t, "1 + 2")
	if match.StringConcat(n, m).Success {
		t.Fatal("numeric addition matched as concatenation")
	}
}

func TestParenthesesWalk(t *testing.T) {
	n, _ := exprOf(t, "((c))")
	inner := match.WalkDownParentheses(n)
	if inner.Text() != "c" {
		t.Fatalf("WalkDownParentheses = %q", inner.Text())
	}
	if match.WalkUpParentheses(inner) != n {
		t.Fatal("WalkUpParentheses did not reach the outer parentheses")
	}
}

func TestIsDirectiveFree(t *testing.T) {
	src := "class C\n{\n    bool M(string s)\n    {\n        return s != null\n#if DEBUG\n            && s.Length > 0\n#endif\n            ;\n    }\n    bool N(string s) => s != null;\n}\n"
	res := parser.ParseText(1, "d.cs", src, parser.Options{})
	var withDirective, clean *syntax.Node
	for n := range res.Tree.Root().DescendantNodes(nil) {
		switch {
		case n.Is(syntax.KindReturnStmt):
			withDirective = n
		case n.Is(syntax.KindArrowBody):
			clean = n
		}
	}
	if withDirective == nil || clean == nil {
		t.Fatal("statements not found")
	}
	if match.IsDirectiveFree(withDirective) {
		t.Error("return statement with #if reported directive free")
	}
	if !match.IsDirectiveFree(clean) {
		t.Error("arrow body reported as containing directives")
	}
}
