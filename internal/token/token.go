package token

import (
	"codefix/internal/source"
)

// Token represents a single source token with its location and trivia.
// Trailing trivia runs up to and including the first newline after the token;
// everything after that belongs to the next token's Leading list.
type Token struct {
	Kind     Kind
	Span     source.Span
	Text     string
	Leading  []Trivia
	Trailing []Trivia
}

// IsLiteral reports whether the token is a literal, including true, false and null.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, RealLit, StringLit, InterpolatedStringLit, CharLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool { return t.Kind.IsPunctOrOp() }

// IsKeyword reports whether the token is a reserved keyword.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsContextual reports whether the token is the identifier text, used for
// contextual keywords such as async or await.
func (t Token) IsContextual(text string) bool { return t.Kind == Ident && t.Text == text }

// FullSpan covers the token together with its leading and trailing trivia.
func (t Token) FullSpan() source.Span {
	sp := t.Span
	if len(t.Leading) > 0 {
		sp = sp.Cover(t.Leading[0].Span)
	}
	if n := len(t.Trailing); n > 0 {
		sp = sp.Cover(t.Trailing[n-1].Span)
	}
	return sp
}
