package codefix

import (
	"context"
	"math"
	"strconv"

	"codefix/internal/analysis"
	"codefix/internal/diag"
	"codefix/internal/trace"
)

// DefaultMaxIterations bounds FixAll when the options leave it unset.
const DefaultMaxIterations = 8

type FixAllOptions struct {
	// EquivalenceKey selects which fixes to apply. Empty means the key of
	// the first fix offered.
	EquivalenceKey string
	MaxIterations  int
}

type FixAllResult struct {
	EquivalenceKey string
	Applied        int
	Iterations     int
	// Remaining are the diagnostics of the rule left in the final document.
	Remaining []diag.Diagnostic
}

// FixAll applies every fix for code in doc. Each iteration analyses the
// current document and applies fixes back to front; a diagnostic whose span
// reaches into text already rewritten in this iteration waits for the next
// one. It stops at a fixed point, when an iteration applies nothing, or
// after MaxIterations.
func FixAll(ctx context.Context, doc *Document, engine *analysis.Engine, providers []Provider, code diag.Code, opts FixAllOptions) (*Document, FixAllResult, error) {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	span, ctx := trace.Start(trace.WithRule(trace.WithFile(ctx, doc.Path), code.ID()), trace.ScopeFile, "fixall")
	res := FixAllResult{EquivalenceKey: opts.EquivalenceKey}
	eng := engine.Restrict(code)
	cur := doc

	for {
		ds, err := eng.Run(ctx, cur.Tree, cur.Model)
		if err != nil {
			span.End("canceled")
			return nil, res, err
		}
		ds = onlyCode(ds, code)
		if len(ds) == 0 || res.Iterations == maxIter {
			res.Remaining = ds
			break
		}
		res.Iterations++
		applied := 0
		limit := uint32(math.MaxUint32)
		for i := len(ds) - 1; i >= 0; i-- {
			d := ds[i]
			if d.Primary.End > limit {
				continue
			}
			actions, err := Actions(ctx, cur, d, providers)
			if err != nil {
				span.End("canceled")
				return nil, res, err
			}
			a := pick(actions, &res.EquivalenceKey)
			if a == nil {
				continue
			}
			next, err := a.Apply(ctx)
			if err != nil {
				continue
			}
			for _, e := range TextChanges(cur.File(), cur.Text(), next.Text()) {
				limit = min(limit, e.Span.Start)
			}
			cur = next
			applied++
		}
		res.Applied += applied
		if applied == 0 {
			res.Remaining = ds
			break
		}
	}
	span.WithExtra("applied", strconv.Itoa(res.Applied)).
		WithExtra("iterations", strconv.Itoa(res.Iterations)).
		End("")
	return cur, res, nil
}

func onlyCode(ds []diag.Diagnostic, code diag.Code) []diag.Diagnostic {
	out := ds[:0]
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// pick returns the action matching *key, fixing *key to the first action's
// key when it is empty.
func pick(actions []*CodeAction, key *string) *CodeAction {
	for _, a := range actions {
		if *key == "" {
			*key = a.EquivalenceKey
			return a
		}
		if a.EquivalenceKey == *key {
			return a
		}
	}
	return nil
}

// Fix materialises an action as a diag.Fix of text edits against doc.
func Fix(ctx context.Context, doc *Document, d diag.Diagnostic, a *CodeAction) (diag.Fix, error) {
	after, err := a.Apply(ctx)
	if err != nil {
		return diag.Fix{}, err
	}
	return diag.Fix{
		ID:             d.Code.ID() + ":" + a.EquivalenceKey + ":" + strconv.FormatUint(uint64(d.Primary.Start), 10),
		Title:          a.Title,
		EquivalenceKey: a.EquivalenceKey,
		Kind:           a.Kind,
		Applicability:  diag.FixApplicabilityAlwaysSafe,
		Edits:          TextChanges(doc.File(), doc.Text(), after.Text()),
	}, nil
}
