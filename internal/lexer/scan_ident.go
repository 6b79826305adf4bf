package lexer

import (
	"codefix/internal/token"
)

// scanIdentOrKeyword scans an identifier (optionally '@'-prefixed) and checks
// it against the reserved keywords. A verbatim identifier is never a keyword.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	verbatim := lx.cursor.Eat('@')

	if r, sz := lx.peekRune(); sz == 0 || !isIdentStart(r) {
		lx.cursor.Reset(start)
		return lx.scanOperatorOrPunct()
	}
	for {
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentPart(r) {
			break
		}
		lx.cursor.Off += uint32(sz)
	}

	tok := lx.emit(token.Ident, start)
	if !verbatim {
		if k, ok := token.LookupKeyword(tok.Text); ok {
			tok.Kind = k
		}
	}
	return tok
}
