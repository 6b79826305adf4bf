package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/fix"
	"codefix/internal/rules"
	"codefix/internal/trace"
)

// FixOptions selects which fixes a Fix run commits.
type FixOptions struct {
	Options
	Mode fix.ApplyMode
	// TargetID is a rule id (RCS1049), an equivalence key or a fix id. A
	// rule id fixes every occurrence of that rule; the others pick single
	// fixes by key or id.
	TargetID string
	DryRun   bool
}

// FileFix reports what the fix-all loop did for one rule in one file.
type FileFix struct {
	Path string
	Code diag.Code
	codefix.FixAllResult
}

// FixResult is the outcome of a Fix run.
type FixResult struct {
	*Result
	// FixAll is filled by the all and rule-id modes.
	FixAll []FileFix
	Apply  *fix.ApplyResult
}

// Fix analyses the files under paths and rewrites them.
//
// In the all and rule-id modes every file is driven to a fixed point with
// codefix.FixAll and its whole rewrite is committed as one fix. The once
// and key modes attach every offered fix to its diagnostic and let
// fix.Apply choose. fix.ErrNoFixes is returned when nothing applied.
func Fix(ctx context.Context, paths []string, opts FixOptions) (*FixResult, error) {
	res, err := Load(ctx, paths, opts.Options)
	if err != nil {
		return nil, err
	}
	// fixes need documents and the cache keeps none
	if err := analyzeLoaded(ctx, res, opts.Options, nil); err != nil {
		return &FixResult{Result: res}, err
	}
	out := &FixResult{Result: res}

	mode := opts.Mode
	var only diag.Code
	if mode == fix.ApplyModeID {
		if code, ok := diag.ParseCode(opts.TargetID); ok {
			only = code
			mode = fix.ApplyModeAll
		}
	}

	span, ctx := trace.Start(ctx, trace.ScopePass, "fix")
	engine := opts.engine(len(res.Files))
	providers := rules.Providers()
	maxIter := opts.config().Fix.MaxIterations
	perFile := make([][]FileFix, len(res.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(max(1, len(res.Files))))
	for i := range res.Files {
		fr := &res.Files[i]
		if fr.Document == nil {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			emit(opts.Progress, Event{File: fr.Path, Stage: StageFix, Status: StatusWorking})
			var err error
			if mode == fix.ApplyModeAll {
				perFile[i], err = fixAllFile(gctx, fr, engine, providers, only, maxIter)
			} else {
				err = attachFixes(gctx, fr, providers)
			}
			if err != nil {
				emit(opts.Progress, Event{File: fr.Path, Stage: StageFix, Status: StatusError, Err: err})
				return err
			}
			emit(opts.Progress, Event{File: fr.Path, Stage: StageFix, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return out, err
	}
	for _, ff := range perFile {
		out.FixAll = append(out.FixAll, ff...)
	}

	applyOpts := fix.ApplyOptions{Mode: mode, TargetID: opts.TargetID, DryRun: opts.DryRun}
	if only != diag.UnknownCode {
		applyOpts.TargetID = ""
	}
	out.Apply, err = fix.Apply(res.FileSet, res.Diagnostics(), applyOpts)
	if out.Apply != nil {
		span.WithExtra("applied", fmt.Sprint(len(out.Apply.Applied)))
	}
	span.End("")
	return out, err
}

// fixableCodes lists the rules with a provider that the engine runs, or just
// only when it is set.
func fixableCodes(engine *analysis.Engine, providers []codefix.Provider, only diag.Code) []diag.Code {
	var codes []diag.Code
	for _, p := range providers {
		for _, code := range p.FixableCodes() {
			if only != diag.UnknownCode && code != only {
				continue
			}
			if _, on := engine.Effective(code); on && !slices.Contains(codes, code) {
				codes = append(codes, code)
			}
		}
	}
	slices.Sort(codes)
	return codes
}

// fixAllFile runs the fix-all loop for each fixable rule in turn, threading
// the document through. The accumulated rewrite becomes one fix on a
// CFX diagnostic that replaces the file's rule diagnostics.
func fixAllFile(ctx context.Context, fr *FileResult, engine *analysis.Engine, providers []codefix.Provider, only diag.Code, maxIter int) ([]FileFix, error) {
	present := make(map[diag.Code]bool)
	for _, d := range fr.Diagnostics {
		present[d.Code] = true
	}
	orig := fr.Document
	cur := orig
	var done []FileFix
	var titles []string
	for _, code := range fixableCodes(engine, providers, only) {
		if !present[code] {
			continue
		}
		next, r, err := codefix.FixAll(ctx, cur, engine, providers, code, codefix.FixAllOptions{MaxIterations: maxIter})
		if err != nil {
			return done, err
		}
		done = append(done, FileFix{Path: fr.Path, Code: code, FixAllResult: r})
		if r.Applied == 0 {
			continue
		}
		cur = next
		titles = append(titles, fmt.Sprintf("%s x%d", code.ID(), r.Applied))
	}
	if cur == orig {
		return done, nil
	}
	edits := codefix.TextChanges(orig.File(), orig.Text(), cur.Text())
	if len(edits) == 0 {
		return done, nil
	}
	d := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     done[0].Code,
		Message:  "fix all: " + strings.Join(titles, ", "),
		Primary:  edits[0].Span,
	}
	d.Fixes = []diag.Fix{fix.FromEdits("Fix all in "+fr.Path, edits,
		fix.WithID("fixall:"+fr.Path),
		fix.WithEquivalenceKey("fixall"),
		fix.WithApplicability(diag.FixApplicabilityAlwaysSafe),
		fix.Preferred(),
	)}
	for _, ff := range done {
		if ff.Applied > 0 {
			d.Code = ff.Code
			break
		}
	}
	fr.Diagnostics = []diag.Diagnostic{d}
	fr.Document = cur
	return done, nil
}

// attachFixes materialises every action offered for the file's diagnostics
// as diag.Fix values. The first action of each diagnostic is preferred.
func attachFixes(ctx context.Context, fr *FileResult, providers []codefix.Provider) error {
	for i := range fr.Diagnostics {
		d := &fr.Diagnostics[i]
		if d.Code.IsHostError() {
			continue
		}
		actions, err := codefix.Actions(ctx, fr.Document, *d, providers)
		if err != nil {
			return err
		}
		for j, a := range actions {
			f, err := codefix.Fix(ctx, fr.Document, *d, a)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				continue
			}
			f.IsPreferred = j == 0
			if len(f.Edits) > 0 {
				d.Fixes = append(d.Fixes, f)
			}
		}
	}
	return nil
}
