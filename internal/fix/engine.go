// Package fix commits the text edits carried by diagnostics to files on
// disk. It is the last step of "codefix fix": the fix engine in
// internal/codefix computes edits from tree rewrites, this package picks
// which of them to apply and writes the results.
package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines which of the offered fixes are applied.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first always-safe fix, or the first fix
	// when none is always safe.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every always-safe fix that does not conflict
	// with one applied before it.
	ApplyModeAll
	// ApplyModeID applies the fixes matching ApplyOptions.TargetID.
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode ApplyMode
	// TargetID selects fixes for ApplyModeID. It matches a fix id, an
	// equivalence key or a diagnostic id such as RCS1049.
	TargetID string
	// DryRun computes the new contents without writing files.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix is a fix that was offered but not applied, with the reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises the new content of one file.
type FileChange struct {
	Path      string
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag diag.Diagnostic
	fix  diag.Fix
}

// Apply selects fixes from diagnostics according to opts and applies them.
// Each fix is atomic: either all of its edits land or the fix is skipped.
// ErrNoFixes is returned when nothing was applied.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     []AppliedFix{},
		Skipped:     []SkippedFix{},
		FileChanges: []FileChange{},
	}
	if fs == nil {
		return result, errors.New("fix: FileSet is nil")
	}

	candidates, skipped := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, skipped...)
	sortCandidates(candidates)
	selected, skipped := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, skipped...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	ws := newWorkspace(fs, opts.DryRun)
	for _, cand := range selected {
		n, reason := ws.stage(cand.fix.Edits)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: cand.fix.ID, Title: cand.fix.Title, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   ws.displayPath(cand.diag.Primary.File),
			EditCount:     n,
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	changes, err := ws.commit()
	result.FileChanges = append(result.FileChanges, changes...)
	return result, err
}

// gatherCandidates flattens the fixes attached to diagnostics.
//
// Fixes without edits and fixes whose id was already seen are skipped. A fix
// with an empty id gets one derived from the diagnostic code, its primary
// span and the fix index.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		cands []candidate
		skips []SkippedFix
	)
	seen := make(map[string]bool)
	for _, d := range diagnostics {
		for i, f := range d.Fixes {
			switch {
			case len(f.Edits) == 0:
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "fix has no edits"})
				continue
			case f.ID == "":
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, i)
			}
			if seen[f.ID] {
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "duplicate fix id"})
				continue
			}
			seen[f.ID] = true
			cands = append(cands, candidate{diag: d, fix: f})
		}
	}
	return cands, skips
}

// sortCandidates orders candidates by file and primary span, then code and
// preference. Ties keep the order the fixes were offered in.
func sortCandidates(candidates []candidate) {
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		return cmp.Or(
			cmp.Compare(pa.File, pb.File),
			cmp.Compare(pa.Start, pb.Start),
			cmp.Compare(pa.End, pb.End),
			cmp.Compare(a.diag.Code, b.diag.Code),
			preferredFirst(a.fix, b.fix),
		)
	})
}

func preferredFirst(a, b diag.Fix) int {
	switch {
	case a.IsPreferred == b.IsPreferred:
		return 0
	case a.IsPreferred:
		return -1
	default:
		return 1
	}
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	if len(candidates) == 0 {
		return nil, nil
	}
	switch opts.Mode {
	case ApplyModeID:
		selected := slices.DeleteFunc(slices.Clone(candidates), func(c candidate) bool {
			return !matchesTarget(c, opts.TargetID)
		})
		if len(selected) == 0 {
			return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
		}
		return selected, nil
	case ApplyModeAll:
		var selected []candidate
		var skipped []SkippedFix
		for _, c := range candidates {
			if c.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
				selected = append(selected, c)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     c.fix.ID,
				Title:  c.fix.Title,
				Reason: "applicability is " + c.fix.Applicability.String(),
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		i := slices.IndexFunc(candidates, func(c candidate) bool {
			return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe
		})
		return []candidate{candidates[max(i, 0)]}, nil
	default:
		return nil, nil
	}
}

func matchesTarget(c candidate, target string) bool {
	if target == "" {
		return false
	}
	return c.fix.ID == target || c.fix.EquivalenceKey == target || c.diag.Code.ID() == target
}
