package match

import (
	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

// NullCheckStyles selects the spellings of a null check NullCheck accepts.
type NullCheckStyles uint8

const (
	EqualsToNull    NullCheckStyles = 1 << iota // x == null
	NotEqualsToNull                             // x != null
	IsNull                                      // x is null
	NotIsNull                                   // !(x is null), x is not null
	HasValue                                    // x.HasValue
	NotHasValue                                 // !x.HasValue

	ComparisonToNull = EqualsToNull | NotEqualsToNull
	IsPattern        = IsNull | NotIsNull
	HasValueProperty = HasValue | NotHasValue
	CheckingNull     = EqualsToNull | IsNull | NotHasValue
	CheckingNotNull  = NotEqualsToNull | NotIsNull | HasValue
	AllNullChecks    = CheckingNull | CheckingNotNull
)

// NullCheckInfo describes a null or not-null test of Expression.
type NullCheckInfo struct {
	Node       *syntax.Node // the whole check, parentheses stripped
	Expression *syntax.Node // the tested expression, parentheses stripped
	Style      NullCheckStyles
	Success    bool
}

// IsCheckingNull reports whether the check is true when Expression is null.
func (i NullCheckInfo) IsCheckingNull() bool { return i.Success && i.Style&CheckingNull != 0 }

// IsCheckingNotNull reports whether the check is true when Expression is not null.
func (i NullCheckInfo) IsCheckingNotNull() bool { return i.Success && i.Style&CheckingNotNull != 0 }

// NullCheck matches a null check in one of the allowed styles. The HasValue
// styles need f to confirm that the property belongs to Nullable<T>; with a
// nil f they never match.
func NullCheck(n *syntax.Node, f semantic.Facade, allowed NullCheckStyles) NullCheckInfo {
	n = syntax.WalkDownParentheses(n)
	switch n.Kind() {
	case syntax.KindEqualsExpr:
		return comparisonToNull(n, EqualsToNull, allowed)
	case syntax.KindNotEqualsExpr:
		return comparisonToNull(n, NotEqualsToNull, allowed)
	case syntax.KindIsPatternExpr:
		return isNullPattern(n, allowed)
	case syntax.KindMemberAccessExpr:
		if allowed&HasValue == 0 {
			return NullCheckInfo{}
		}
		if expr := hasValueReceiver(n, f); expr != nil {
			return NullCheckInfo{Node: n, Expression: expr, Style: HasValue, Success: true}
		}
	case syntax.KindLogicalNotExpr:
		operand := syntax.WalkDownParentheses(syntax.PrefixUnaryExpr{Node: n}.Operand())
		switch operand.Kind() {
		case syntax.KindIsPatternExpr:
			if allowed&NotIsNull == 0 {
				return NullCheckInfo{}
			}
			if inner := isNullPattern(operand, IsNull); inner.Success {
				return NullCheckInfo{Node: n, Expression: inner.Expression, Style: NotIsNull, Success: true}
			}
		case syntax.KindMemberAccessExpr:
			if allowed&NotHasValue == 0 {
				return NullCheckInfo{}
			}
			if expr := hasValueReceiver(operand, f); expr != nil {
				return NullCheckInfo{Node: n, Expression: expr, Style: NotHasValue, Success: true}
			}
		}
	}
	return NullCheckInfo{}
}

func comparisonToNull(n *syntax.Node, style, allowed NullCheckStyles) NullCheckInfo {
	if allowed&style == 0 {
		return NullCheckInfo{}
	}
	b := syntax.BinaryExpr{Node: n}
	left, right := syntax.WalkDownParentheses(b.Left()), syntax.WalkDownParentheses(b.Right())
	switch {
	case left == nil || right == nil:
		return NullCheckInfo{}
	case right.Is(syntax.KindNullLiteral) && !left.Is(syntax.KindNullLiteral):
		return NullCheckInfo{Node: n, Expression: left, Style: style, Success: true}
	case left.Is(syntax.KindNullLiteral) && !right.Is(syntax.KindNullLiteral):
		return NullCheckInfo{Node: n, Expression: right, Style: style, Success: true}
	}
	return NullCheckInfo{}
}

// isNullPattern matches "x is null" and "x is not null".
func isNullPattern(n *syntax.Node, allowed NullCheckStyles) NullCheckInfo {
	v := syntax.IsPatternExpr{Node: n}
	expr := syntax.WalkDownParentheses(v.Expression())
	pat := v.Pattern()
	if expr == nil {
		return NullCheckInfo{}
	}
	style := IsNull
	if pat.Is(syntax.KindNotPattern) {
		style = NotIsNull
		pat = pat.Child(1)
	}
	if allowed&style == 0 || !pat.Is(syntax.KindConstantPattern) {
		return NullCheckInfo{}
	}
	if !syntax.WalkDownParentheses(pat.Child(0)).Is(syntax.KindNullLiteral) {
		return NullCheckInfo{}
	}
	return NullCheckInfo{Node: n, Expression: expr, Style: style, Success: true}
}

// hasValueReceiver returns x for "x.HasValue" when x is a Nullable<T>.
func hasValueReceiver(n *syntax.Node, f semantic.Facade) *syntax.Node {
	if f == nil {
		return nil
	}
	ma := syntax.MemberAccessExpr{Node: n}
	if syntax.NameText(ma.Name()) != "HasValue" || ma.Expression() == nil {
		return nil
	}
	if t := f.TypeOf(ma.Expression()); t == nil || !t.IsNullable() {
		return nil
	}
	return syntax.WalkDownParentheses(ma.Expression())
}
