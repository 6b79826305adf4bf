package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/fix"
	"codefix/internal/rules"
	"codefix/internal/source"
	"codefix/internal/trace"
)

// ErrOffsetOutOfRange is returned when a refactoring position lies outside
// the file.
var ErrOffsetOutOfRange = errors.New("offset out of range")

// RefactorOptions locates the span refactorings are computed for.
type RefactorOptions struct {
	BaseDir string
	Offset  uint32
	Length  uint32
	// Apply names the action to commit: an equivalence key or a 1-based
	// index into the offered actions. Empty only lists them.
	Apply  string
	DryRun bool
}

// RefactorResult lists the actions offered at a span.
type RefactorResult struct {
	FileSet *source.FileSet
	Path    string
	Span    source.Span
	// Actions holds one hidden diagnostic per offered action, in order,
	// each carrying the action as its only fix.
	Actions []diag.Diagnostic
	Apply   *fix.ApplyResult
}

// Refactor computes the refactorings offered at a span of one file and,
// when opts.Apply is set, commits the chosen one.
func Refactor(ctx context.Context, path string, opts RefactorOptions) (*RefactorResult, error) {
	span, ctx := trace.Start(trace.WithFile(ctx, path), trace.ScopePass, "refactor")
	defer span.End("")

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, err
	}
	file := fileSet.Get(id)
	end := uint64(opts.Offset) + uint64(opts.Length)
	if end > uint64(len(file.Content)) {
		return nil, fmt.Errorf("%w: %d+%d in %s (%d bytes)", ErrOffsetOutOfRange, opts.Offset, opts.Length, path, len(file.Content))
	}
	doc, err := codefix.Parse(ctx, id, path, string(file.Content))
	if err != nil {
		return nil, err
	}
	sp := source.Span{File: id, Start: opts.Offset, End: uint32(end)}
	actions, err := codefix.Refactorings(ctx, doc, sp, rules.Refactorings())
	if err != nil {
		return nil, err
	}

	res := &RefactorResult{FileSet: fileSet, Path: path, Span: sp}
	var chosen *diag.Diagnostic
	for _, a := range actions {
		d := refactorDiagnostic(sp, a)
		f, err := codefix.Fix(ctx, doc, d, a)
		if err != nil {
			return nil, err
		}
		f.ID = a.EquivalenceKey + ":" + strconv.FormatUint(uint64(sp.Start), 10)
		f.Kind = diag.FixKindRefactor
		d.Fixes = []diag.Fix{f}
		res.Actions = append(res.Actions, d)
		if opts.Apply != "" && chosen == nil && selects(opts.Apply, len(res.Actions), f) {
			chosen = &d
		}
	}
	if opts.Apply == "" {
		return res, nil
	}
	if chosen == nil {
		return res, fmt.Errorf("%w: no refactoring %q at %s", fix.ErrNoFixes, opts.Apply, sp)
	}
	res.Apply, err = fix.Apply(fileSet, []diag.Diagnostic{*chosen}, fix.ApplyOptions{
		Mode:     fix.ApplyModeID,
		TargetID: chosen.Fixes[0].ID,
		DryRun:   opts.DryRun,
	})
	return res, err
}

// refactorDiagnostic is the hidden diagnostic a refactoring's fix hangs
// off. Its code comes from the equivalence key prefix.
func refactorDiagnostic(sp source.Span, a *codefix.CodeAction) diag.Diagnostic {
	id, _, _ := strings.Cut(a.EquivalenceKey, ".")
	code, ok := diag.ParseCode(id)
	if !ok {
		code = diag.UnknownCode
	}
	return diag.New(diag.SevHidden, code, sp, a.Title)
}

// selects reports whether sel names the n-th action (1-based) or its key.
func selects(sel string, n int, f diag.Fix) bool {
	if i, err := strconv.Atoi(sel); err == nil {
		return i == n
	}
	return f.EquivalenceKey == sel
}
