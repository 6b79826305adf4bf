package lexer

import (
	"codefix/internal/diag"
	"codefix/internal/token"
)

// scanOperatorOrPunct is greedy: 3-byte operators first, then 2-byte, then single bytes.
// '>>' is never produced; the parser treats a shift as two '>' so that nested
// generic arguments close correctly.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	switch {
	case lx.accept("??="):
		return lx.emit(token.QuestionQuestionAssign, start)
	case lx.accept("<<="):
		return lx.emit(token.ShlAssign, start)
	}

	// "?." is conditional access unless a digit follows (a ? .5 : b).
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '?' && b1 == '.' && !isDec(lx.cursor.PeekAt(2)) {
		lx.cursor.Off += 2
		return lx.emit(token.QuestionDot, start)
	}

	switch {
	case lx.accept("??"):
		return lx.emit(token.QuestionQuestion, start)
	case lx.accept("=>"):
		return lx.emit(token.FatArrow, start)
	case lx.accept("->"):
		return lx.emit(token.Arrow, start)
	case lx.accept("::"):
		return lx.emit(token.ColonColon, start)
	case lx.accept("&&"):
		return lx.emit(token.AndAnd, start)
	case lx.accept("||"):
		return lx.emit(token.OrOr, start)
	case lx.accept("=="):
		return lx.emit(token.EqEq, start)
	case lx.accept("!="):
		return lx.emit(token.BangEq, start)
	case lx.accept("<="):
		return lx.emit(token.LtEq, start)
	case lx.accept(">="):
		return lx.emit(token.GtEq, start)
	case lx.accept("<<"):
		return lx.emit(token.Shl, start)
	case lx.accept("++"):
		return lx.emit(token.PlusPlus, start)
	case lx.accept("--"):
		return lx.emit(token.MinusMinus, start)
	case lx.accept("+="):
		return lx.emit(token.PlusAssign, start)
	case lx.accept("-="):
		return lx.emit(token.MinusAssign, start)
	case lx.accept("*="):
		return lx.emit(token.StarAssign, start)
	case lx.accept("/="):
		return lx.emit(token.SlashAssign, start)
	case lx.accept("%="):
		return lx.emit(token.PercentAssign, start)
	case lx.accept("&="):
		return lx.emit(token.AmpAssign, start)
	case lx.accept("|="):
		return lx.emit(token.PipeAssign, start)
	case lx.accept("^="):
		return lx.emit(token.CaretAssign, start)
	}

	var kind token.Kind
	switch lx.cursor.Bump() {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '=':
		kind = token.Assign
	case '!':
		kind = token.Bang
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case '&':
		kind = token.Amp
	case '|':
		kind = token.Pipe
	case '^':
		kind = token.Caret
	case '~':
		kind = token.Tilde
	case '?':
		kind = token.Question
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	default:
		// keep the whole rune so the token text stays valid UTF-8
		lx.cursor.Reset(start)
		lx.bumpRune()
		if lx.cursor.Off == uint32(start) {
			lx.cursor.Bump()
		}
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.CSUnexpectedCharacter, tok.Span, "unexpected character '"+tok.Text+"'")
		return tok
	}
	return lx.emit(kind, start)
}
