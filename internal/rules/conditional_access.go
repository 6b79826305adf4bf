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

// accessForm is the shape of the operand guarded by the null check.
type accessForm uint8

const (
	formBool      accessForm = iota // x.M()
	formNot                         // !x.M()
	formCompare                     // x.P == "a", x.P != null, x.P.Length > 1
	formIs                          // x.P is T
	formStatement                   // if (x != null) x.M();
)

// conditionalAccess is a null check followed by a member chain on the checked
// expression that "?." can express.
type conditionalAccess struct {
	node    *syntax.Node // logical expression or if statement being replaced
	check   *syntax.Node // the null check operand as written
	right   *syntax.Node // the guarded operand as written
	rest    *syntax.Node // right, parentheses stripped
	chain   *syntax.Node // member chain rooted at target
	anchor  *syntax.Node // first access on target inside chain
	target  *syntax.Node
	form    accessForm
	logical syntax.Kind // KindLogicalAndExpr or KindLogicalOrExpr
	span    source.Span
}

type conditionalAccessAnalyzer struct{}

func (conditionalAccessAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{UseConditionalAccess}
}

func (conditionalAccessAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		if ca, ok := logicalConditionalAccess(ctx.Node, ctx.Model); ok {
			ctx.ReportSpan(UseConditionalAccess, ca.span)
		}
	}, syntax.KindLogicalAndExpr, syntax.KindLogicalOrExpr)
	c.RegisterNodeAction(func(ctx *analysis.NodeContext) {
		if ca, ok := statementConditionalAccess(ctx.Node, ctx.Model); ok {
			ctx.ReportSpan(UseConditionalAccess, ca.span)
		}
	}, syntax.KindIfStmt)
}

// logicalConditionalAccess matches "x != null && x.M()" and
// "x == null || x.M()". The check may be the last operand of a longer chain
// of the same operator: in "f && x != null && x.M()" only the last two
// operands take part.
func logicalConditionalAccess(n *syntax.Node, f semantic.Facade) (conditionalAccess, bool) {
	b := syntax.BinaryExpr{Node: n}
	left, right := b.Left(), b.Right()
	if left == nil || right == nil || n.SpanContainsDirectives() {
		return conditionalAccess{}, false
	}
	check := left
	if inner := syntax.WalkDownParentheses(left); inner.Is(n.Kind()) && !left.Is(syntax.KindParenExpr) {
		check = syntax.BinaryExpr{Node: inner}.Right()
	}
	styles := match.CheckingNotNull
	if n.Is(syntax.KindLogicalOrExpr) {
		styles = match.CheckingNull
	}
	nc := match.NullCheck(check, f, styles)
	if !nc.Success || !builtinNullCheck(nc, f) {
		return conditionalAccess{}, false
	}
	ca := conditionalAccess{
		node:    n,
		check:   check,
		right:   right,
		rest:    syntax.WalkDownParentheses(right),
		target:  nc.Expression,
		logical: n.Kind(),
	}
	t := f.TypeOf(nc.Expression)
	if t == nil || !t.IsReferenceType() && !t.IsNullable() {
		return conditionalAccess{}, false
	}
	if !ca.classify(f, t.IsNullable()) {
		return conditionalAccess{}, false
	}
	ca.span = syntax.WalkDownParentheses(check).Span().Cover(ca.rest.Span())
	return ca, true
}

// builtinNullCheck rejects comparisons bound to a user-defined operator.
func builtinNullCheck(nc match.NullCheckInfo, f semantic.Facade) bool {
	if !nc.Node.Is(syntax.KindEqualsExpr, syntax.KindNotEqualsExpr) {
		return true
	}
	op := f.SymbolInfo(nc.Node)
	return op == nil || !op.IsFromSource()
}

// classify decides the form of ca.rest and locates the chain in it.
func (ca *conditionalAccess) classify(f semantic.Facade, nullable bool) bool {
	and := ca.logical == syntax.KindLogicalAndExpr
	rest := ca.rest
	switch {
	case rest.Is(syntax.KindLogicalNotExpr):
		ca.form = formNot
		ca.chain = syntax.WalkDownParentheses(syntax.PrefixUnaryExpr{Node: rest}.Operand())
		if !isBoolean(f.TypeOf(ca.chain)) {
			return false
		}
	case rest.Is(syntax.KindIsPatternExpr):
		pat := syntax.IsPatternExpr{Node: rest}.Pattern()
		if !and || !pat.Is(syntax.KindTypePattern, syntax.KindDeclarationPattern) {
			return false
		}
		ca.form = formIs
		ca.chain = syntax.IsPatternExpr{Node: rest}.Expression()
	case rest.Kind().IsBinaryExpr():
		if !and {
			return false
		}
		bin := syntax.BinaryExpr{Node: rest}
		ca.form = formCompare
		ca.chain = bin.Left()
		if !comparable(rest, syntax.WalkDownParentheses(bin.Right()), f.TypeOf(ca.chain), f) {
			return false
		}
	default:
		ca.form = formBool
		ca.chain = rest
		if !isBoolean(f.TypeOf(rest)) {
			return false
		}
	}
	ca.anchor = chainAnchor(ca.chain, ca.target, nullable)
	return ca.anchor != nil
}

// comparable reports whether "chain op other" keeps its meaning when chain
// becomes null: only comparisons that are false for null qualify.
func comparable(cmp, other *syntax.Node, chainType *semantic.Symbol, f semantic.Facade) bool {
	switch cmp.Kind() {
	case syntax.KindEqualsExpr:
		v, ok := f.ConstantValue(other)
		return ok && v != nil
	case syntax.KindNotEqualsExpr:
		return other.Is(syntax.KindNullLiteral) && chainType != nil && (chainType.IsReferenceType() || chainType.IsNullable())
	case syntax.KindLessThanExpr, syntax.KindLessThanOrEqualExpr, syntax.KindGreaterThanExpr, syntax.KindGreaterThanOrEqualExpr:
		return isNumeric(chainType)
	}
	return false
}

func isBoolean(t *semantic.Symbol) bool {
	return t != nil && t.Special == semantic.SpecialBoolean
}

func isNumeric(t *semantic.Symbol) bool {
	if t == nil {
		return false
	}
	switch t.Special {
	case semantic.SpecialSByte, semantic.SpecialByte, semantic.SpecialInt16, semantic.SpecialUInt16,
		semantic.SpecialInt32, semantic.SpecialUInt32, semantic.SpecialInt64, semantic.SpecialUInt64,
		semantic.SpecialSingle, semantic.SpecialDouble, semantic.SpecialDecimal, semantic.SpecialChar:
		return true
	}
	return false
}

// chainAnchor walks the receivers of chain down to target and returns the
// member or element access applied to it. For a Nullable<T> target the
// access must go through ".Value", which the conditional access drops.
func chainAnchor(chain, target *syntax.Node, nullable bool) *syntax.Node {
	for n := chain; n != nil; {
		r := receiver(n)
		if r == nil {
			return nil
		}
		if n.Is(syntax.KindMemberAccessExpr, syntax.KindElementAccessExpr) {
			if !nullable && r.Equivalent(target) {
				return n
			}
			if nullable && r.Is(syntax.KindMemberAccessExpr) {
				ma := syntax.MemberAccessExpr{Node: r}
				if syntax.NameText(ma.Name()) == "Value" && ma.Expression().Equivalent(target) {
					return n
				}
			}
		}
		n = r
	}
	return nil
}

func receiver(n *syntax.Node) *syntax.Node {
	switch n.Kind() {
	case syntax.KindMemberAccessExpr, syntax.KindInvocationExpr, syntax.KindElementAccessExpr,
		syntax.KindConditionalAccessExpr, syntax.KindSuppressNullableWarningExpr:
		return n.Child(0)
	}
	return nil
}

// statementConditionalAccess matches "if (x != null) x.M();" with the call
// as the only statement and no else clause.
func statementConditionalAccess(n *syntax.Node, f semantic.Facade) (conditionalAccess, bool) {
	v := syntax.IfStmt{Node: n}
	if v.ElseClause() != nil || n.SpanContainsDirectives() {
		return conditionalAccess{}, false
	}
	stmt := v.Statement()
	if stmt.Is(syntax.KindBlock) {
		stmts := syntax.Block{Node: stmt}.Statements()
		if len(stmts) != 1 {
			return conditionalAccess{}, false
		}
		stmt = stmts[0]
	}
	if !stmt.Is(syntax.KindExprStmt) {
		return conditionalAccess{}, false
	}
	call := stmt.Child(0)
	if !call.Is(syntax.KindInvocationExpr) {
		return conditionalAccess{}, false
	}
	nc := match.NullCheck(v.Condition(), f, match.CheckingNotNull)
	if !nc.Success || !builtinNullCheck(nc, f) {
		return conditionalAccess{}, false
	}
	t := f.TypeOf(nc.Expression)
	if t == nil || !t.IsReferenceType() && !t.IsNullable() {
		return conditionalAccess{}, false
	}
	anchor := chainAnchor(call, nc.Expression, t.IsNullable())
	if anchor == nil {
		return conditionalAccess{}, false
	}
	return conditionalAccess{
		node:   n,
		check:  v.Condition(),
		right:  stmt,
		rest:   stmt,
		chain:  call,
		anchor: anchor,
		target: nc.Expression,
		form:   formStatement,
		span:   n.Span(),
	}, true
}

// access builds "target?.rest-of-chain" without outer trivia.
func (ca conditionalAccess) access() *syntax.Green {
	var binding *syntax.Green
	if ca.anchor.Is(syntax.KindElementAccessExpr) {
		binding = syntax.NewNode(syntax.KindElementBindingExpr, syntax.ElementAccessExpr{Node: ca.anchor}.ArgumentList().Green())
	} else {
		ma := syntax.MemberAccessExpr{Node: ca.anchor}
		binding = syntax.NewNode(syntax.KindMemberBindingExpr, ma.DotToken().Green(), ma.Name().Green())
	}
	whenNotNull := syntax.WithoutTrivia(replaceIn(ca.chain, ca.anchor, binding))
	return syntax.ConditionalAccess(syntax.WithoutTrivia(ca.target.Green()), whenNotNull)
}

// rewrite returns the replacement for ca.node.
func (ca conditionalAccess) rewrite() *syntax.Green {
	acc := ca.access()
	if ca.form == formStatement {
		stmt := replaceIn(ca.rest, ca.chain, acc)
		return syntax.WithTriviaFrom(syntax.WithoutTrivia(stmt), ca.node.Green())
	}
	and := ca.logical == syntax.KindLogicalAndExpr
	var expr *syntax.Green
	switch ca.form {
	case formBool:
		if and {
			expr = syntax.Binary(syntax.KindEqualsExpr, acc, syntax.TrueLiteral())
		} else {
			expr = syntax.Binary(syntax.KindNotEqualsExpr, acc, syntax.FalseLiteral())
		}
	case formNot:
		if and {
			expr = syntax.Binary(syntax.KindEqualsExpr, acc, syntax.FalseLiteral())
		} else {
			expr = syntax.Binary(syntax.KindNotEqualsExpr, acc, syntax.TrueLiteral())
		}
	default:
		lead := ca.chain.LeadingTrivia()
		expr = replaceIn(ca.rest, ca.chain, syntax.WithLeadingTrivia(syntax.WithTrailingTrivia(acc, ca.chain.TrailingTrivia()), lead))
		expr = syntax.WithoutTrivia(expr)
	}
	if ca.right.Is(syntax.KindParenExpr) {
		expr = syntax.Paren(expr)
	}
	expr = syntax.WithTrailingTrivia(syntax.WithLeadingTrivia(expr, ca.check.LeadingTrivia()), ca.right.TrailingTrivia())
	b := syntax.BinaryExpr{Node: ca.node}
	if b.Left() == ca.check {
		return expr
	}
	// "a && check && rest": keep "a &&" and replace the last two operands
	inner := syntax.WalkDownParentheses(b.Left())
	return inner.Green().WithSlot(2, expr)
}

type conditionalAccessProvider struct{}

func (conditionalAccessProvider) FixableCodes() []diag.Code {
	return []diag.Code{diag.RuleUseConditionalAccess}
}

func (conditionalAccessProvider) RegisterFixes(c *codefix.FixContext) {
	doc := c.Document
	for n := doc.Tree.Root().FindNode(c.Span(), false); n != nil; n = n.Parent() {
		var (
			ca conditionalAccess
			ok bool
		)
		switch n.Kind() {
		case syntax.KindLogicalAndExpr, syntax.KindLogicalOrExpr:
			ca, ok = logicalConditionalAccess(n, doc.Model)
		case syntax.KindIfStmt:
			ca, ok = statementConditionalAccess(n, doc.Model)
		default:
			continue
		}
		if !ok || ca.span != c.Span() {
			continue
		}
		c.Register(codefix.NewAction("Use conditional access", diag.RuleUseConditionalAccess.ID(), func(ctx context.Context) (*codefix.Document, error) {
			return doc.ReplaceNode(ctx, ca.node, ca.rewrite())
		}))
		return
	}
}
