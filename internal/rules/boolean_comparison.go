package rules

import (
	"context"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/match"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

type booleanComparisonAnalyzer struct{}

func (booleanComparisonAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{SimplifyBooleanComparison}
}

func (booleanComparisonAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		if _, _, ok := booleanComparison(ctx.Node, ctx.Model); ok {
			ctx.Report(SimplifyBooleanComparison, ctx.Node)
		}
	}, syntax.KindEqualsExpr, syntax.KindNotEqualsExpr)
}

// booleanComparison matches "b == true" and friends with b a non-nullable
// bool. It returns b and whether the result must be negated.
func booleanComparison(n *syntax.Node, f semantic.Facade) (operand *syntax.Node, negate bool, ok bool) {
	bin := match.Binary(n, syntax.KindEqualsExpr, syntax.KindNotEqualsExpr)
	if !bin.Success || n.SpanContainsDirectives() {
		return nil, false, false
	}
	lit, other := bin.Right, bin.Left
	if !isBoolLiteral(lit) {
		lit, other = bin.Left, bin.Right
	}
	if !isBoolLiteral(lit) || isBoolLiteral(other) {
		return nil, false, false
	}
	if t := f.TypeOf(other); t == nil || t.Special != semantic.SpecialBoolean {
		return nil, false, false
	}
	value := lit.Is(syntax.KindTrueLiteral)
	return other, value != n.Is(syntax.KindEqualsExpr), true
}

func isBoolLiteral(n *syntax.Node) bool {
	return n.Is(syntax.KindTrueLiteral, syntax.KindFalseLiteral)
}

type booleanComparisonProvider struct{}

func (booleanComparisonProvider) FixableCodes() []diag.Code {
	return []diag.Code{diag.RuleSimplifyBooleanComparison}
}

func (booleanComparisonProvider) RegisterFixes(c *codefix.FixContext) {
	doc := c.Document
	n := nodeAt(doc, c.Span(), syntax.KindEqualsExpr, syntax.KindNotEqualsExpr)
	if n == nil || n.Span() != c.Span() {
		return
	}
	operand, negate, ok := booleanComparison(n, doc.Model)
	if !ok {
		return
	}
	c.Register(codefix.NewAction("Simplify boolean comparison", diag.RuleSimplifyBooleanComparison.ID(), func(ctx context.Context) (*codefix.Document, error) {
		repl := syntax.WithoutTrivia(operand.Green())
		if negate {
			if operand.Is(syntax.KindLogicalNotExpr) {
				repl = syntax.WithoutTrivia(syntax.PrefixUnaryExpr{Node: operand}.Operand().Green())
			} else {
				repl = syntax.LogicalNot(repl)
			}
		}
		return doc.ReplaceNode(ctx, n, syntax.WithTriviaFrom(repl, n.Green()))
	}))
}
