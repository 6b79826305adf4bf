package lexer

import (
	"codefix/internal/token"
)

// scanNumber handles 123, 0x1F, 0b1010, 1_000, 1.5, .5, 1e-3 and the suffixes
// u, l, ul, lu, f, d, m (any case). "1.ToString()" stays an integer followed by '.'.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			lx.cursor.Off += 2
			for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			lx.scanIntSuffix()
			return lx.emit(kind, start)
		case 'b', 'B':
			lx.cursor.Off += 2
			for b := lx.cursor.Peek(); b == '0' || b == '1' || b == '_'; b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.scanIntSuffix()
			return lx.emit(kind, start)
		}
	}

	lx.scanDigits()
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.RealLit
		lx.cursor.Bump()
		lx.scanDigits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		b1 := lx.cursor.PeekAt(1)
		if isDec(b1) || ((b1 == '+' || b1 == '-') && isDec(lx.cursor.PeekAt(2))) {
			kind = token.RealLit
			lx.cursor.Off += 2
			lx.scanDigits()
		}
	}
	switch lx.cursor.Peek() {
	case 'f', 'F', 'd', 'D', 'm', 'M':
		kind = token.RealLit
		lx.cursor.Bump()
	default:
		if kind == token.IntLit {
			lx.scanIntSuffix()
		}
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) scanDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) scanIntSuffix() {
	for range 2 {
		switch lx.cursor.Peek() {
		case 'u', 'U', 'l', 'L':
			lx.cursor.Bump()
		default:
			return
		}
	}
}
