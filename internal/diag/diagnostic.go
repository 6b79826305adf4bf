package diag

import (
	"codefix/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces Span with NewText. A non-empty OldText must match the
// current content of Span or the edit is rejected.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixKind is a coarse classification used by UIs.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindRefactor:
		return "refactor"
	case FixKindRewrite:
		return "rewrite"
	default:
		return "quickfix"
	}
}

// FixApplicability states how confident the producer is in a fix.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	default:
		return "always-safe"
	}
}

// Fix is a materialised code action.
type Fix struct {
	ID             string
	Title          string
	EquivalenceKey string
	Kind           FixKind
	Applicability  FixApplicability
	IsPreferred    bool
	Edits          []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Less orders diagnostics by span, then severity (errors first), then code.
func (d *Diagnostic) Less(other *Diagnostic) bool {
	if c := d.Primary.Compare(other.Primary); c != 0 {
		return c < 0
	}
	if d.Severity != other.Severity {
		return d.Severity > other.Severity
	}
	if d.Code != other.Code {
		return d.Code < other.Code
	}
	return d.Message < other.Message
}
