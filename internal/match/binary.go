package match

import (
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

// BinaryInfo describes "left op right" with both operands present.
type BinaryInfo struct {
	Node    *syntax.Node
	Left    *syntax.Node // parentheses stripped
	Right   *syntax.Node // parentheses stripped
	Kind    syntax.Kind
	Success bool
}

// Binary matches a binary expression of one of kinds, or of any binary kind
// when kinds is empty.
func Binary(n *syntax.Node, kinds ...syntax.Kind) BinaryInfo {
	n = syntax.WalkDownParentheses(n)
	k := n.Kind()
	if !k.IsBinaryExpr() || len(kinds) > 0 && !n.Is(kinds...) {
		return BinaryInfo{}
	}
	b := syntax.BinaryExpr{Node: n}
	left, right := syntax.WalkDownParentheses(b.Left()), syntax.WalkDownParentheses(b.Right())
	if left == nil || right == nil || left.IsMissing() || right.IsMissing() {
		return BinaryInfo{}
	}
	return BinaryInfo{Node: n, Left: left, Right: right, Kind: k, Success: true}
}

// Other returns the operand that is not side, or nil when side is neither.
func (i BinaryInfo) Other(side *syntax.Node) *syntax.Node {
	switch side {
	case i.Left:
		return i.Right
	case i.Right:
		return i.Left
	}
	return nil
}

// StringConcatInfo describes a chain of string '+' operations.
type StringConcatInfo struct {
	Node        *syntax.Node
	Expressions []*syntax.Node // operands in source order
	Success     bool
}

// StringConcat matches a left-nested chain of '+' whose every operator binds
// to string concatenation.
func StringConcat(n *syntax.Node, f semantic.Facade) StringConcatInfo {
	n = syntax.WalkDownParentheses(n)
	if !IsStringConcat(n, f) {
		return StringConcatInfo{}
	}
	var exprs []*syntax.Node
	cur := n
	for IsStringConcat(cur, f) {
		b := syntax.BinaryExpr{Node: cur}
		exprs = append(exprs, b.Right())
		cur = syntax.WalkDownParentheses(b.Left())
	}
	exprs = append(exprs, cur)
	for i, j := 0, len(exprs)-1; i < j; i, j = i+1, j-1 {
		exprs[i], exprs[j] = exprs[j], exprs[i]
	}
	return StringConcatInfo{Node: n, Expressions: exprs, Success: true}
}

// IsStringConcat reports whether n is a '+' bound to string concatenation.
func IsStringConcat(n *syntax.Node, f semantic.Facade) bool {
	if !n.Is(syntax.KindAddExpr) || f == nil {
		return false
	}
	return IsStringConcatOperator(f.SymbolInfo(n))
}

// IsStringConcatOperator reports whether op is the predefined string '+'.
func IsStringConcatOperator(op *semantic.Symbol) bool {
	return op != nil && op.Is(semantic.FlagOperator) && op.Name == "op_Addition" &&
		op.Containing != nil && op.Containing.Special == semantic.SpecialString
}

// WalkUpParentheses returns the outermost parenthesized expression around n.
func WalkUpParentheses(n *syntax.Node) *syntax.Node { return syntax.WalkUpParentheses(n) }

// WalkDownParentheses strips parentheses around n.
func WalkDownParentheses(n *syntax.Node) *syntax.Node { return syntax.WalkDownParentheses(n) }

// IsDirectiveFree reports whether no preprocessor directive lies inside the
// span of n. Directives in the outer leading trivia of n do not count.
func IsDirectiveFree(n *syntax.Node) bool {
	return n != nil && !n.SpanContainsDirectives()
}
