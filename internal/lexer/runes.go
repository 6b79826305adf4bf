package lexer

import (
	"strings"
	"unicode/utf8"
)

// peekRune decodes the rune at the cursor; size is 0 at the end of input.
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	if b := lx.cursor.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
}

func (lx *Lexer) bumpRune() {
	_, size := lx.peekRune()
	lx.cursor.Off += uint32(size)
}

// accept consumes lit when the input continues with it.
func (lx *Lexer) accept(lit string) bool {
	rest := lx.file.Content[lx.cursor.Off:lx.cursor.Limit]
	if len(rest) < len(lit) || !strings.HasPrefix(string(rest[:len(lit)]), lit) {
		return false
	}
	lx.cursor.Off += uint32(len(lit))
	return true
}

// numberAfterDot matches ".5": a dot directly followed by a digit.
func (lx *Lexer) numberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}
