package rules

import (
	"context"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/match"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

const stringComparisonName = "System.StringComparison"

// optimizeMethodCallAnalyzer reports BCL calls that have a cheaper or more
// direct equivalent:
//
//	string.Compare(a, b, comparison) == 0       -> string.Equals(a, b, comparison)
//	string.Compare(a, b, StringComparison.Ordinal) -> string.CompareOrdinal(a, b)
//	Debug.Assert(false, msg)                    -> Debug.Fail(msg)
//	string.Join("", values)                     -> string.Concat(values)
type optimizeMethodCallAnalyzer struct{}

func (optimizeMethodCallAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{OptimizeMethodCall}
}

func (optimizeMethodCallAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(analyzeOptimizeMethodCall, syntax.KindInvocationExpr)
}

func analyzeOptimizeMethodCall(ctx *analysis.NodeContext) {
	info := match.SimpleMemberInvocation(ctx.Node)
	if !info.Success {
		return
	}
	switch info.NameText() {
	case "Compare":
		if n := optimizableCompare(info, ctx.Model); n != nil {
			ctx.Report(OptimizeMethodCall, n, "Compare")
		}
	case "Assert":
		if replaceableAssert(info, ctx.Model) {
			ctx.Report(OptimizeMethodCall, info.Name, "Assert")
		}
	case "Join":
		if replaceableJoin(info, ctx.Model) {
			ctx.Report(OptimizeMethodCall, info.Name, "Join")
		}
	}
}

// optimizableCompare returns the node to report for a three-argument
// string.Compare: the enclosing "== 0" or "!= 0" comparison, or the
// invocation itself when the comparison is ordinal. Nothing is reported
// when a directive lies inside that node.
func optimizableCompare(info match.SimpleMemberInvocationInfo, f semantic.Facade) *syntax.Node {
	m := f.SymbolInfo(info.Invocation)
	if m == nil || m.Kind != semantic.SymbolMethod || m.Containing == nil || m.Containing.Special != semantic.SpecialString {
		return nil
	}
	if len(m.Params) != 3 ||
		m.Params[0].Type == nil || m.Params[0].Type.Special != semantic.SpecialString ||
		m.Params[1].Type == nil || m.Params[1].Type.Special != semantic.SpecialString ||
		m.Params[2].Type.FullName() != stringComparisonName {
		return nil
	}
	outer := syntax.WalkUpParentheses(info.Invocation)
	if eq := match.Binary(outer.Parent(), syntax.KindEqualsExpr, syntax.KindNotEqualsExpr); eq.Success {
		if other := eq.Other(info.Invocation); other.Is(syntax.KindNumericLiteral) && other.Text() == "0" {
			return directiveFree(eq.Node)
		}
	}
	args := info.Arguments()
	if len(args) == 3 && isOrdinal(syntax.ArgumentExpr(args[2]), f) {
		return directiveFree(info.Invocation)
	}
	return nil
}

func directiveFree(n *syntax.Node) *syntax.Node {
	if !match.IsDirectiveFree(n) {
		return nil
	}
	return n
}

func isOrdinal(n *syntax.Node, f semantic.Facade) bool {
	s := f.SymbolInfo(syntax.WalkDownParentheses(n))
	return s != nil && s.Kind == semantic.SymbolField && s.Name == "Ordinal" &&
		s.Containing.FullName() == stringComparisonName
}

// replaceableAssert matches Debug.Assert(false, ...) when Debug has a Fail
// overload taking the remaining messages.
func replaceableAssert(info match.SimpleMemberInvocationInfo, f semantic.Facade) bool {
	args := info.Arguments()
	if len(args) < 1 || len(args) > 3 || info.Invocation.SpanContainsDirectives() {
		return false
	}
	if !syntax.ArgumentExpr(args[0]).Is(syntax.KindFalseLiteral) {
		return false
	}
	m := f.SymbolInfo(info.Invocation)
	if !isPublicStaticNonGeneric(m, "Assert") || m.Containing.FullName() != "System.Diagnostics.Debug" || !returnsVoid(m) {
		return false
	}
	if len(m.Params) == 0 || m.Params[0].Type == nil || m.Params[0].Type.Special != semantic.SpecialBoolean ||
		!allParamsAre(m.Params[1:], semantic.SpecialString) {
		return false
	}
	want := len(m.Params) - 1
	if want == 0 {
		want = 1
	}
	for _, fail := range m.Containing.MembersNamed("Fail") {
		if isPublicStaticNonGeneric(fail, "Fail") && returnsVoid(fail) &&
			len(fail.Params) == want && allParamsAre(fail.Params, semantic.SpecialString) {
			return true
		}
	}
	return false
}

// replaceableJoin matches string.Join with an empty separator and a params
// array of strings or objects.
func replaceableJoin(info match.SimpleMemberInvocationInfo, f semantic.Facade) bool {
	args := info.Arguments()
	if len(args) < 2 {
		return false
	}
	if info.MemberAccess.ContainsDirectives() || (syntax.ArgumentListView{Node: info.ArgumentList}).OpenToken().ContainsDirectives() ||
		args[0].ContainsDirectives() {
		return false
	}
	m := f.SymbolInfo(info.Invocation)
	if !isPublicStaticNonGeneric(m, "Join") || m.Containing == nil || m.Containing.Special != semantic.SpecialString ||
		!semantic.ReturnsSpecial(m, semantic.SpecialString) || len(m.Params) != 2 {
		return false
	}
	if m.Params[0].Type == nil || m.Params[0].Type.Special != semantic.SpecialString {
		return false
	}
	values := m.Params[1]
	if !values.Is(semantic.FlagParams) || values.Type == nil || values.Type.TypeKind != semantic.TypeArray {
		return false
	}
	switch values.Type.Element.Special {
	case semantic.SpecialString, semantic.SpecialObject:
	default:
		return false
	}
	return isEmptyString(syntax.ArgumentExpr(args[0]), f)
}

type optimizeMethodCallProvider struct{}

func (optimizeMethodCallProvider) FixableCodes() []diag.Code {
	return []diag.Code{diag.RuleOptimizeMethodCall}
}

func (optimizeMethodCallProvider) RegisterFixes(c *codefix.FixContext) {
	doc := c.Document
	key := diag.RuleOptimizeMethodCall.ID()
	n := nodeAt(doc, c.Span(), syntax.KindInvocationExpr, syntax.KindEqualsExpr, syntax.KindNotEqualsExpr)
	if n == nil {
		return
	}
	if n.Is(syntax.KindEqualsExpr, syntax.KindNotEqualsExpr) {
		eq := match.Binary(n)
		inv := eq.Left
		if !inv.Is(syntax.KindInvocationExpr) {
			inv = eq.Right
		}
		info := match.SimpleMemberInvocation(inv)
		if !info.Success || optimizableCompare(info, doc.Model) != n {
			return
		}
		c.Register(codefix.NewAction("Call 'Equals' instead of 'Compare'", key, func(ctx context.Context) (*codefix.Document, error) {
			call := replaceIn(inv, info.Name, renamed(info.Name, "Equals"))
			call = syntax.WithoutTrivia(call)
			if n.Is(syntax.KindNotEqualsExpr) {
				call = syntax.LogicalNot(call)
			}
			return doc.ReplaceNode(ctx, n, syntax.WithTriviaFrom(call, n.Green()))
		}))
		return
	}

	info := match.SimpleMemberInvocation(n)
	if !info.Success {
		return
	}
	switch info.NameText() {
	case "Compare":
		if optimizableCompare(info, doc.Model) != n {
			return
		}
		c.Register(codefix.NewAction("Call 'CompareOrdinal' instead of 'Compare'", key, func(ctx context.Context) (*codefix.Document, error) {
			ma := replaceIn(info.MemberAccess, info.Name, renamed(info.Name, "CompareOrdinal"))
			call := syntax.Invocation(ma, withoutArgument(info.ArgumentList, 2))
			return doc.ReplaceNode(ctx, n, call)
		}))
	case "Assert":
		if !replaceableAssert(info, doc.Model) {
			return
		}
		c.Register(codefix.NewAction("Call 'Fail' instead of 'Assert'", key, func(ctx context.Context) (*codefix.Document, error) {
			ma := replaceIn(info.MemberAccess, info.Name, renamed(info.Name, "Fail"))
			args := withoutArgument(info.ArgumentList, 0)
			if len(info.Arguments()) == 1 {
				args = syntax.ArgumentListFrom(info.ArgumentList.Green(),
					syntax.List(syntax.Argument(syntax.Literal(syntax.KindStringLiteral, token.StringLit, `""`))))
			}
			return doc.ReplaceNode(ctx, n, syntax.Invocation(ma, args))
		}))
	case "Join":
		if !replaceableJoin(info, doc.Model) {
			return
		}
		c.Register(codefix.NewAction("Call 'Concat' instead of 'Join'", key, func(ctx context.Context) (*codefix.Document, error) {
			ma := replaceIn(info.MemberAccess, info.Name, renamed(info.Name, "Concat"))
			return doc.ReplaceNode(ctx, n, syntax.Invocation(ma, withoutArgument(info.ArgumentList, 0)))
		}))
	}
}
