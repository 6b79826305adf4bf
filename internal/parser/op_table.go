package parser

import (
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precCoalesce       = 1  // ??
	precLogicalOr      = 2  // ||
	precLogicalAnd     = 3  // &&
	precBitwiseOr      = 4  // |
	precBitwiseXor     = 5  // ^
	precBitwiseAnd     = 6  // &
	precEquality       = 7  // == !=
	precRelational     = 8  // < <= > >= is as
	precShift          = 9  // << >>
	precAdditive       = 10 // + -
	precMultiplicative = 11 // * / %
)

// getBinaryOperatorPrec возвращает приоритет и ассоциативность оператора
// Возвращает (приоритет, правоассоциативный). Assignment and ?: are parsed
// above this table.
func (p *Parser) getBinaryOperatorPrec(kind token.Kind) (int, bool) {
	switch kind {
	case token.QuestionQuestion:
		return precCoalesce, true

	// Логические операторы
	case token.OrOr:
		return precLogicalOr, false
	case token.AndAnd:
		return precLogicalAnd, false

	// Битовые операторы
	case token.Pipe:
		return precBitwiseOr, false
	case token.Caret:
		return precBitwiseXor, false
	case token.Amp:
		return precBitwiseAnd, false

	// Операторы равенства
	case token.EqEq, token.BangEq:
		return precEquality, false

	// Операторы сравнения
	case token.Lt, token.LtEq, token.Gt, token.GtEq, token.KwIs, token.KwAs:
		return precRelational, false

	// Сдвиги
	case token.Shl:
		return precShift, false

	// Арифметические операторы
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false

	default:
		return -1, false // не бинарный оператор
	}
}

// getUnaryOperator возвращает вид префиксного выражения для токена
func (p *Parser) getUnaryOperator(kind token.Kind) (syntax.Kind, bool) {
	switch kind {
	case token.Bang:
		return syntax.KindLogicalNotExpr, true
	case token.Minus:
		return syntax.KindUnaryMinusExpr, true
	case token.Plus:
		return syntax.KindUnaryPlusExpr, true
	case token.Tilde:
		return syntax.KindBitwiseNotExpr, true
	case token.PlusPlus:
		return syntax.KindPreIncrementExpr, true
	case token.MinusMinus:
		return syntax.KindPreDecrementExpr, true
	default:
		return syntax.KindNone, false // не унарный оператор
	}
}

// canStartExpression reports whether k can begin an expression.
func canStartExpression(k token.Kind) bool {
	switch k {
	case token.Ident, token.IntLit, token.RealLit, token.StringLit, token.InterpolatedStringLit, token.CharLit,
		token.KwTrue, token.KwFalse, token.KwNull, token.KwThis, token.KwBase, token.KwNew, token.KwDefault,
		token.KwTypeof, token.LParen, token.Bang, token.Minus, token.Plus, token.Tilde, token.PlusPlus,
		token.MinusMinus:
		return true
	}
	return k.IsPredefinedType()
}
