package lexer

import (
	"codefix/internal/diag"
	"codefix/internal/token"
)

// collectLeadingTrivia gathers trivia before a significant token into lx.hold.
//   - runs of ' ', '\t' and '\r' coalesce into one TriviaSpace
//   - runs of '\n' coalesce into one TriviaNewline
//   - // ... and /// ... up to (not including) '\n'
//   - /* ... */ (unterminated comments are reported and cut at EOF)
//   - '#' as the first non-blank byte of a line starts a TriviaDirective
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isBlank(b):
			lx.hold = append(lx.hold, lx.scanSpace())
		case b == '\n':
			start := lx.cursor.Mark()
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.hold = append(lx.hold, lx.trivia(token.TriviaNewline, start))
			lx.atLineStart = true
		case b == '/' && lx.isCommentStart():
			lx.hold = append(lx.hold, lx.scanComment())
		case b == '#' && lx.atLineStart:
			lx.hold = append(lx.hold, lx.scanDirective())
		default:
			return
		}
	}
}

// collectTrailingTrivia gathers spaces and comments after a token up to and
// including the first newline.
func (lx *Lexer) collectTrailingTrivia() []token.Trivia {
	var out []token.Trivia
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isBlank(b):
			out = append(out, lx.scanSpace())
		case b == '/' && lx.isCommentStart():
			out = append(out, lx.scanComment())
		case b == '\n':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			out = append(out, lx.trivia(token.TriviaNewline, start))
			lx.atLineStart = true
			return out
		default:
			return out
		}
	}
	return out
}

func (lx *Lexer) trivia(kind token.TriviaKind, start Mark) token.Trivia {
	sp := lx.cursor.SpanFrom(start)
	return token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanSpace() token.Trivia {
	start := lx.cursor.Mark()
	for isBlank(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return lx.trivia(token.TriviaSpace, start)
}

func (lx *Lexer) isCommentStart() bool {
	b1 := lx.cursor.PeekAt(1)
	return b1 == '/' || b1 == '*'
}

// scanComment handles //, /// and /* */. Block comments do not nest.
func (lx *Lexer) scanComment() token.Trivia {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'
	if lx.cursor.Bump() == '/' {
		kind := token.TriviaLineComment
		if lx.cursor.Peek() == '/' && lx.cursor.PeekAt(1) != '/' {
			kind = token.TriviaDocLine
		}
		lx.cursor.SkipLine()
		return lx.trivia(kind, start)
	}

	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return lx.trivia(token.TriviaBlockComment, start)
		}
		lx.cursor.Bump()
	}
	tv := lx.trivia(token.TriviaBlockComment, start)
	lx.errLex(diag.CSEndOfFileInComment, tv.Span, "end-of-file found, '*/' expected")
	return tv
}

// scanDirective consumes a preprocessor line without its newline.
func (lx *Lexer) scanDirective() token.Trivia {
	start := lx.cursor.Mark()
	lx.cursor.SkipLine()
	tv := lx.trivia(token.TriviaDirective, start)
	if d, ok := token.ParseDirective(tv.Text); ok {
		tv.Directive = &d
	}
	return tv
}
