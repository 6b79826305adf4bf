package rules

import (
	"context"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/match"
	"codefix/internal/semantic"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// redundantToStringAnalyzer reports ToString() on a string, and ToString()
// on an operand of string concatenation where the concatenation would
// convert the value anyway.
type redundantToStringAnalyzer struct{}

func (redundantToStringAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{RemoveRedundantToStringCall}
}

func (redundantToStringAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		info := match.SimpleMemberInvocation(ctx.Node)
		if !info.Success || !match.IsDirectiveFree(info.Invocation) || !redundantToString(info, ctx.Model) {
			return
		}
		ctx.ReportSpan(RemoveRedundantToStringCall, toStringSpan(info))
	}, syntax.KindInvocationExpr)
}

// toStringSpan runs from the dot to the closing parenthesis.
func toStringSpan(info match.SimpleMemberInvocationInfo) source.Span {
	dot := syntax.MemberAccessExpr{Node: info.MemberAccess}.DotToken()
	return info.Invocation.Tree().Span(dot.SpanStart(), info.Invocation.Span().End)
}

func redundantToString(info match.SimpleMemberInvocationInfo, f semantic.Facade) bool {
	if info.NameText() != "ToString" || len(info.Arguments()) != 0 || info.Name.Is(syntax.KindGenericName) {
		return false
	}
	m := f.SymbolInfo(info.Invocation)
	if !semantic.IsPublicInstanceMethod(m, "ToString") || len(m.Params) != 0 || !semantic.ReturnsSpecial(m, semantic.SpecialString) {
		return false
	}
	owner := m.Containing
	if !owner.IsReferenceType() || owner.Special == semantic.SpecialEnum {
		return false
	}
	if owner.Special == semantic.SpecialString {
		return true
	}
	// an override of object.ToString, not a hiding "new" method
	if owner.Special != semantic.SpecialObject && !m.IsOverride() {
		return false
	}
	expr := syntax.WalkUpParentheses(info.Invocation)
	add := expr.Parent()
	if !add.Is(syntax.KindAddExpr) || add.Green().ContainsErrors() {
		return false
	}
	b := syntax.BinaryExpr{Node: add}
	other := b.Left()
	if other == expr {
		other = b.Right()
	}
	if t := f.TypeOf(other); t == nil || t.Special != semantic.SpecialString {
		return false
	}
	// the concatenation must still bind to string + string-or-object
	spec := replaceIn(add, expr, info.Expression.Green())
	return match.IsStringConcatOperator(f.SpeculativeSymbol(add.SpanStart(), spec))
}

type redundantToStringProvider struct{}

func (redundantToStringProvider) FixableCodes() []diag.Code {
	return []diag.Code{diag.RuleRemoveRedundantToStringCall}
}

func (redundantToStringProvider) RegisterFixes(c *codefix.FixContext) {
	doc := c.Document
	n := nodeAt(doc, c.Span(), syntax.KindInvocationExpr)
	info := match.SimpleMemberInvocation(n)
	if !info.Success || toStringSpan(info) != c.Span() || !match.IsDirectiveFree(info.Invocation) || !redundantToString(info, doc.Model) {
		return
	}
	c.Register(codefix.NewAction("Remove redundant 'ToString' call", diag.RuleRemoveRedundantToStringCall.ID(), func(ctx context.Context) (*codefix.Document, error) {
		repl := syntax.WithTrailingTrivia(info.Expression.Green(), n.TrailingTrivia())
		return doc.ReplaceNode(ctx, n, repl)
	}))
}
