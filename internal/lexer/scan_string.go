package lexer

import (
	"codefix/internal/diag"
	"codefix/internal/token"
)

// scanString scans "..." with backslash escapes. A newline before the closing
// quote is reported; the token ends before the newline so no text is lost.
func (lx *Lexer) scanString() token.Token {
	return lx.scanQuoted('"', token.StringLit)
}

// scanChar scans 'x' and '\n' style literals.
func (lx *Lexer) scanChar() token.Token {
	return lx.scanQuoted('\'', token.CharLit)
}

func (lx *Lexer) scanQuoted(quote byte, kind token.Kind) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case quote:
			lx.cursor.Bump()
			return lx.emit(kind, start)
		case '\\':
			lx.cursor.Bump()
			if lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			continue
		case '\n':
			tok := lx.emit(kind, start)
			lx.errLex(diag.CSNewlineInConstant, tok.Span, "newline in constant")
			return tok
		}
		lx.cursor.Bump()
	}
	tok := lx.emit(kind, start)
	lx.errLex(diag.CSNewlineInConstant, tok.Span, "unterminated literal")
	return tok
}

// scanVerbatimString scans @"..." where "" is an escaped quote and newlines are allowed.
func (lx *Lexer) scanVerbatimString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Off += 2 // @"
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '"' {
			if lx.cursor.Peek() == '"' {
				lx.cursor.Bump()
				continue
			}
			return lx.emit(token.StringLit, start)
		}
	}
	tok := lx.emit(token.StringLit, start)
	lx.errLex(diag.CSNewlineInConstant, tok.Span, "unterminated verbatim string")
	return tok
}

// scanInterpolatedString scans $"..." and $@"..."/@$"..." as a single token.
// Holes may contain nested braces and string literals.
func (lx *Lexer) scanInterpolatedString() token.Token {
	start := lx.cursor.Mark()
	verbatim := false
	for lx.cursor.Peek() == '$' || lx.cursor.Peek() == '@' {
		if lx.cursor.Bump() == '@' {
			verbatim = true
		}
	}
	lx.cursor.Bump() // opening quote

	depth := 0
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case depth == 0 && b == '"':
			lx.cursor.Bump()
			if verbatim && lx.cursor.Peek() == '"' {
				lx.cursor.Bump()
				continue
			}
			return lx.emit(token.InterpolatedStringLit, start)
		case depth == 0 && b == '\\' && !verbatim:
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		case depth == 0 && b == '\n' && !verbatim:
			tok := lx.emit(token.InterpolatedStringLit, start)
			lx.errLex(diag.CSNewlineInConstant, tok.Span, "newline in constant")
			return tok
		case b == '{':
			if depth == 0 && lx.cursor.PeekAt(1) == '{' {
				lx.cursor.Off += 2
				continue
			}
			depth++
		case b == '}':
			if depth == 0 && lx.cursor.PeekAt(1) == '}' {
				lx.cursor.Off += 2
				continue
			}
			if depth > 0 {
				depth--
			}
		case depth > 0 && (b == '"' || b == '\''):
			// nested literal inside a hole
			lx.scanQuoted(b, token.StringLit)
			continue
		}
		lx.cursor.Bump()
	}
	tok := lx.emit(token.InterpolatedStringLit, start)
	lx.errLex(diag.CSNewlineInConstant, tok.Span, "unterminated interpolated string")
	return tok
}
