package fix

import (
	"testing"

	"codefix/internal/diag"
	"codefix/internal/source"
)

func TestReplaceSpanCarriesGuard(t *testing.T) {
	span := source.Span{File: 1, Start: 0, End: 4}
	f := ReplaceSpan("Use string.Equals", span, "Equals", "Comp")
	if len(f.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(f.Edits))
	}
	edit := f.Edits[0]
	if edit.NewText != "Equals" || edit.OldText != "Comp" {
		t.Errorf("unexpected edit %+v", edit)
	}
	if f.Kind != diag.FixKindQuickFix {
		t.Errorf("default kind = %s", f.Kind)
	}
	if f.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Errorf("default applicability = %s", f.Applicability)
	}
}

func TestDeleteSpan(t *testing.T) {
	span := source.Span{File: 1, Start: 9, End: 20}
	f := DeleteSpan("Remove ToString call", span, ".ToString()")
	if got := f.Edits[0]; got.NewText != "" || got.OldText != ".ToString()" {
		t.Errorf("unexpected edit %+v", got)
	}
}

func TestMultipleOptions(t *testing.T) {
	span := source.Span{File: 1}
	f := InsertText(
		"Insert semicolon",
		span,
		";",
		"",
		WithID("custom-id"),
		WithKind(diag.FixKindRefactor),
		WithApplicability(diag.FixApplicabilityManualReview),
		WithEquivalenceKey("semi"),
		Preferred(),
		nil,
	)
	if f.ID != "custom-id" {
		t.Errorf("ID = %q", f.ID)
	}
	if f.Kind != diag.FixKindRefactor {
		t.Errorf("Kind = %s", f.Kind)
	}
	if f.Applicability != diag.FixApplicabilityManualReview {
		t.Errorf("Applicability = %s", f.Applicability)
	}
	if f.EquivalenceKey != "semi" || !f.IsPreferred {
		t.Errorf("unexpected fix %+v", f)
	}
}

func TestFromEditsKeepsOrder(t *testing.T) {
	edits := []diag.TextEdit{
		{Span: source.Span{File: 1, Start: 2, End: 2}, NewText: "("},
		{Span: source.Span{File: 1, Start: 5, End: 5}, NewText: ")"},
	}
	f := FromEdits("Parenthesize", edits, WithKind(diag.FixKindRefactor))
	if len(f.Edits) != 2 || f.Edits[0].NewText != "(" || f.Edits[1].NewText != ")" {
		t.Fatalf("edits = %+v", f.Edits)
	}
	if f.Kind != diag.FixKindRefactor || f.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Errorf("unexpected fix %+v", f)
	}
}

func TestMakeFixID(t *testing.T) {
	got := MakeFixID(diag.RuleSimplifyBooleanComparison, source.Span{File: 3, Start: 10, End: 19})
	if want := "RCS1049-3-10-19"; got != want {
		t.Errorf("MakeFixID = %q, want %q", got, want)
	}
}
