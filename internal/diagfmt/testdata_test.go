package diagfmt

import (
	"testing"

	"codefix/internal/diag"
	"codefix/internal/source"
)

const sampleSource = "class C\n{\n\tbool M(bool b) => b == true;\n}\n"

// sample returns a FileSet with one virtual file and a bag holding an
// RCS1049 warning on "b == true" with a preferred fix.
func sample(t *testing.T) (*source.FileSet, *diag.Bag, source.Span) {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/C.cs", []byte(sampleSource))

	start := uint32(len("class C\n{\n\tbool M(bool b) => "))
	sp := source.Span{File: id, Start: start, End: start + uint32(len("b == true"))}
	d := diag.New(diag.SevWarning, diag.RuleSimplifyBooleanComparison, sp, "Simplify boolean comparison")
	d = d.WithNote(sp, "operand is a non-nullable bool")
	d.Fixes = []diag.Fix{{
		ID:             "RCS1049:RCS1049:29",
		Title:          "Simplify boolean comparison",
		EquivalenceKey: "RCS1049",
		IsPreferred:    true,
		Edits:          []diag.TextEdit{{Span: sp, NewText: "b", OldText: "b == true"}},
	}}

	bag := diag.NewBag(0)
	bag.Add(d)
	bag.Add(diag.New(diag.SevHidden, diag.EngineTimings, source.Span{File: id}, "timings"))
	return fs, bag, sp
}

func bagOf(ds ...diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(0)
	for _, d := range ds {
		bag.Add(d)
	}
	return bag
}
