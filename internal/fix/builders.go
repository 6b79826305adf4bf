package fix

import (
	"fmt"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// Option adjusts a fix while it is built.
type Option func(*diag.Fix)

func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) { f.Kind = kind }
}

// Preferred marks the fix as the one editors offer first.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// WithEquivalenceKey groups fixes of the same shape for fix-all.
func WithEquivalenceKey(key string) Option {
	return func(f *diag.Fix) { f.EquivalenceKey = key }
}

// MakeFixID builds a deterministic id from a code and the span it applies to.
func MakeFixID(code diag.Code, sp source.Span) string {
	return fmt.Sprintf("%s-%d-%d-%d", code.ID(), sp.File, sp.Start, sp.End)
}

// FromEdits wraps precomputed edits, typically the text changes of a
// syntax tree rewrite. The fix is an always-safe quick fix unless opts
// say otherwise.
func FromEdits(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         edits,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ReplaceSpan replaces the text covered by span. A non-empty expect guards
// the edit: it is skipped when the file no longer holds that text.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return FromEdits(title, []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}

// InsertText inserts text at the empty span at.
func InsertText(title string, at source.Span, text, guard string, opts ...Option) diag.Fix {
	return ReplaceSpan(title, at, text, guard, opts...)
}

// DeleteSpan removes the text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return ReplaceSpan(title, span, "", expect, opts...)
}
