package lexer

import (
	"codefix/internal/source"
	"codefix/internal/token"
)

type Lexer struct {
	file        *source.File
	cursor      Cursor
	opts        Options
	look        *token.Token   // 1 элементный буфер для токена
	hold        []token.Trivia // накопленные leading trivia
	atLineStart bool           // only whitespace seen since the last newline
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:        file,
		cursor:      NewCursor(file),
		opts:        opts,
		atLineStart: true,
	}
}

// Next returns the next significant token with Leading and Trailing trivia
// attached. After EOF it keeps returning EOF; the EOF token carries whatever
// trivia remained at the end of the file as Leading.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{Kind: token.EOF, Span: lx.emptySpan(), Leading: lx.hold}
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '@':
		b1 := lx.cursor.PeekAt(1)
		switch {
		case b1 == '"':
			tok = lx.scanVerbatimString()
		case b1 == '$' && lx.cursor.PeekAt(2) == '"':
			tok = lx.scanInterpolatedString()
		case mayStartIdent(b1):
			tok = lx.scanIdentOrKeyword()
		default:
			tok = lx.scanOperatorOrPunct()
		}

	case ch == '$' && lx.cursor.PeekAt(1) == '"':
		tok = lx.scanInterpolatedString()

	case mayStartIdent(ch):
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && lx.numberAfterDot():
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString()

	case ch == '\'':
		tok = lx.scanChar()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	lx.atLineStart = false
	tok.Trailing = lx.collectTrailingTrivia()
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// Tokenize lexes the whole file. The last element is always EOF.
func (lx *Lexer) Tokenize() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
}
