package syntax

import (
	"strconv"

	"codefix/internal/token"
)

// Frequently used trivia.
var (
	Space      = Trivia{Kind: token.TriviaSpace, Text: " "}
	LineFeed   = Trivia{Kind: token.TriviaNewline, Text: "\n"}
	spaceOnly  = []Trivia{Space}
	binaryOps  = map[Kind]token.Kind{}
	binaryKind = map[token.Kind]Kind{
		token.Plus:             KindAddExpr,
		token.Minus:            KindSubtractExpr,
		token.Star:             KindMultiplyExpr,
		token.Slash:            KindDivideExpr,
		token.Percent:          KindModuloExpr,
		token.Shl:              KindLeftShiftExpr,
		token.Lt:               KindLessThanExpr,
		token.LtEq:             KindLessThanOrEqualExpr,
		token.Gt:               KindGreaterThanExpr,
		token.GtEq:             KindGreaterThanOrEqualExpr,
		token.EqEq:             KindEqualsExpr,
		token.BangEq:           KindNotEqualsExpr,
		token.Amp:              KindBitwiseAndExpr,
		token.Caret:            KindExclusiveOrExpr,
		token.Pipe:             KindBitwiseOrExpr,
		token.AndAnd:           KindLogicalAndExpr,
		token.OrOr:             KindLogicalOrExpr,
		token.QuestionQuestion: KindCoalesceExpr,
		token.KwAs:             KindAsExpr,
	}
	assignKind = map[token.Kind]Kind{
		token.Assign:                 KindSimpleAssignExpr,
		token.PlusAssign:             KindAddAssignExpr,
		token.MinusAssign:            KindSubtractAssignExpr,
		token.StarAssign:             KindMultiplyAssignExpr,
		token.SlashAssign:            KindDivideAssignExpr,
		token.PercentAssign:          KindModuloAssignExpr,
		token.AmpAssign:              KindAndAssignExpr,
		token.PipeAssign:             KindOrAssignExpr,
		token.CaretAssign:            KindExclusiveOrAssignExpr,
		token.ShlAssign:              KindLeftShiftAssignExpr,
		token.QuestionQuestionAssign: KindCoalesceAssignExpr,
	}
)

func init() {
	for tk, k := range binaryKind {
		binaryOps[k] = tk
	}
}

// BinaryKindOf maps an operator token to its binary expression kind.
// '>>' is reported by the parser directly as KindRightShiftExpr.
func BinaryKindOf(tk token.Kind) (Kind, bool) {
	k, ok := binaryKind[tk]
	return k, ok
}

// AssignmentKindOf maps an assignment operator token to its expression kind.
func AssignmentKindOf(tk token.Kind) (Kind, bool) {
	k, ok := assignKind[tk]
	return k, ok
}

// OperatorOf returns the operator token kind for a binary expression kind.
func OperatorOf(k Kind) (token.Kind, bool) {
	tk, ok := binaryOps[k]
	return tk, ok
}

// NegatedComparison maps == to != and the relational operators to their negation.
func NegatedComparison(k Kind) (Kind, bool) {
	switch k {
	case KindEqualsExpr:
		return KindNotEqualsExpr, true
	case KindNotEqualsExpr:
		return KindEqualsExpr, true
	case KindLessThanExpr:
		return KindGreaterThanOrEqualExpr, true
	case KindLessThanOrEqualExpr:
		return KindGreaterThanExpr, true
	case KindGreaterThanExpr:
		return KindLessThanOrEqualExpr, true
	case KindGreaterThanOrEqualExpr:
		return KindLessThanExpr, true
	}
	return KindNone, false
}

// Tok builds a token with its canonical spelling and no trivia. The end of
// file token has no text.
func Tok(tk token.Kind) *Green {
	if tk == token.EOF {
		return newGreenToken(tk, "", nil, nil, false)
	}
	return newGreenToken(tk, tk.String(), nil, nil, false)
}

// TokWithText builds a token with explicit text.
func TokWithText(tk token.Kind, text string) *Green {
	return newGreenToken(tk, text, nil, nil, false)
}

// TokWithTrivia builds a token carrying lexer trivia.
func TokWithTrivia(tk token.Kind, text string, lead, trail []Trivia) *Green {
	return newGreenToken(tk, text, lead, trail, false)
}

// MissingTok builds a zero-width token inserted by error recovery.
func MissingTok(tk token.Kind) *Green {
	return newGreenToken(tk, "", nil, nil, true)
}

// spaced returns a token with one space of leading and trailing trivia.
func spaced(tk token.Kind) *Green {
	return newGreenToken(tk, tk.String(), spaceOnly, spaceOnly, false)
}

func trailingSpace(tk token.Kind) *Green {
	return newGreenToken(tk, tk.String(), nil, spaceOnly, false)
}

// Identifier builds an identifier token.
func Identifier(name string) *Green { return TokWithText(token.Ident, name) }

// List builds a List node.
func List(items ...*Green) *Green { return NewNode(KindList, items...) }

// SeparatedList interleaves items with comma tokens followed by a space.
func SeparatedList(items ...*Green) *Green {
	kids := make([]*Green, 0, 2*len(items))
	for i, it := range items {
		if i > 0 {
			kids = append(kids, trailingSpace(token.Comma))
		}
		kids = append(kids, it)
	}
	return NewNode(KindList, kids...)
}

// IdentifierName builds a simple name expression.
func IdentifierName(name string) *Green {
	return NewNode(KindIdentifierName, Identifier(name))
}

// PredefinedType builds "string", "int" and friends.
func PredefinedType(kw token.Kind) *Green {
	return NewNode(KindPredefinedType, Tok(kw))
}

// Literal builds a literal expression from its text.
func Literal(kind Kind, tk token.Kind, text string) *Green {
	return NewNode(kind, TokWithText(tk, text))
}

func TrueLiteral() *Green  { return NewNode(KindTrueLiteral, Tok(token.KwTrue)) }
func FalseLiteral() *Green { return NewNode(KindFalseLiteral, Tok(token.KwFalse)) }
func NullLiteral() *Green  { return NewNode(KindNullLiteral, Tok(token.KwNull)) }

// BoolLiteral builds true or false.
func BoolLiteral(v bool) *Green {
	if v {
		return TrueLiteral()
	}
	return FalseLiteral()
}

// NumericLiteral builds an integer literal.
func NumericLiteral(v uint64) *Green {
	return Literal(KindNumericLiteral, token.IntLit, strconv.FormatUint(v, 10))
}

// StringLiteral builds a regular string literal with Go-compatible escapes.
func StringLiteral(v string) *Green {
	return Literal(KindStringLiteral, token.StringLit, strconv.Quote(v))
}

// Binary builds "left op right" with single spaces around the operator.
// The left operand keeps its trailing trivia; when it already ends with
// whitespace no extra space is inserted.
func Binary(kind Kind, left, right *Green) *Green {
	tk, ok := binaryOps[kind]
	if !ok {
		if kind == KindRightShiftExpr {
			op := newGreenToken(token.Gt, ">>", spaceOnly, spaceOnly, false)
			return NewNode(kind, left, op, right)
		}
		panic("syntax: Binary with non-binary kind " + kind.String())
	}
	op := spaced(tk)
	if endsWithWhitespace(left) {
		op = trailingSpace(tk)
	}
	return NewNode(kind, left, op, WithLeadingTrivia(right, TrimWhitespace(right.LeadingTrivia())))
}

func endsWithWhitespace(g *Green) bool {
	tr := g.TrailingTrivia()
	return len(tr) > 0 && tr[len(tr)-1].IsWhitespace()
}

// LogicalNot builds "!operand", parenthesizing operands that bind looser than unary.
func LogicalNot(operand *Green) *Green {
	return NewNode(KindLogicalNotExpr, Tok(token.Bang), ParenthesizeIfNeeded(operand))
}

// Paren builds "(expr)".
func Paren(expr *Green) *Green {
	return NewNode(KindParenExpr, Tok(token.LParen), expr, Tok(token.RParen))
}

// ParenthesizeIfNeeded wraps expr unless it is primary or already unary.
func ParenthesizeIfNeeded(expr *Green) *Green {
	if IsPrimaryOrUnary(expr.kind) {
		return expr
	}
	return WithTriviaFrom(Paren(WithoutTrivia(expr)), expr)
}

// IsPrimaryOrUnary reports whether an expression of kind k can be an operand
// of a unary operator without parentheses.
func IsPrimaryOrUnary(k Kind) bool {
	switch {
	case k.IsLiteral(), k.IsPrefixUnary(), k.IsPostfixUnary():
		return true
	}
	switch k {
	case KindIdentifierName, KindGenericName, KindQualifiedName, KindPredefinedType, KindParenExpr,
		KindMemberAccessExpr, KindConditionalAccessExpr, KindInvocationExpr, KindElementAccessExpr,
		KindThisExpr, KindBaseExpr, KindObjectCreationExpr, KindDefaultExpr, KindTypeofExpr, KindCastExpr:
		return true
	}
	return false
}

// MemberAccess builds "expr.name".
func MemberAccess(expr, name *Green) *Green {
	return NewNode(KindMemberAccessExpr, expr, Tok(token.Dot), name)
}

// MemberBinding builds ".name" used inside conditional access.
func MemberBinding(name *Green) *Green {
	return NewNode(KindMemberBindingExpr, Tok(token.Dot), name)
}

// ConditionalAccess builds "expr?.whenNotNull".
func ConditionalAccess(expr, whenNotNull *Green) *Green {
	return NewNode(KindConditionalAccessExpr, expr, Tok(token.Question), whenNotNull)
}

// Invocation builds "expr(args)".
func Invocation(expr, args *Green) *Green {
	return NewNode(KindInvocationExpr, expr, args)
}

// ArgumentList builds "(a, b)" from argument nodes.
func ArgumentList(args ...*Green) *Green {
	return NewNode(KindArgumentList, Tok(token.LParen), SeparatedList(args...), Tok(token.RParen))
}

// ArgumentListFrom keeps the parentheses of an existing argument list and
// replaces its elements.
func ArgumentListFrom(orig *Green, list *Green) *Green {
	return orig.WithSlot(1, list)
}

// Argument wraps an expression as an argument.
func Argument(expr *Green) *Green {
	return NewNode(KindArgument, expr)
}

// EqualsValue builds " = value" for declarators and enum members.
func EqualsValue(value *Green) *Green {
	return NewNode(KindEqualsValue, spaced(token.Assign), value)
}
