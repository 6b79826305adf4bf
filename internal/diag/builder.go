package diag

import (
	"slices"

	"codefix/internal/source"
)

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with a secondary span attached.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns a copy of d offering f.
func (d Diagnostic) WithFix(f Fix) Diagnostic {
	d.Fixes = append(slices.Clip(d.Fixes), f)
	return d
}
