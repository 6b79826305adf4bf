package diagfmt

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"codefix/internal/diag"
	"codefix/internal/source"
)

// Report is the document JSON writes.
type Report struct {
	Diagnostics []DiagnosticEntry `json:"diagnostics"`
	Count       int               `json:"count"`
	// Summary counts the listed diagnostics per lower-case severity.
	Summary map[string]int `json:"summary"`
}

// Position is a 1-based line and byte column.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Location is a byte span of a file; From and To are set with IncludePositions.
type Location struct {
	File  string    `json:"file"`
	Start uint32    `json:"start"`
	End   uint32    `json:"end"`
	From  *Position `json:"from,omitempty"`
	To    *Position `json:"to,omitempty"`
}

type NoteEntry struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

type EditEntry struct {
	Location Location `json:"location"`
	NewText  string   `json:"new_text"`
	OldText  string   `json:"old_text,omitempty"`
	Before   []string `json:"before_lines,omitempty"`
	After    []string `json:"after_lines,omitempty"`
}

type FixEntry struct {
	ID             string      `json:"id,omitempty"`
	Title          string      `json:"title"`
	EquivalenceKey string      `json:"equivalence_key,omitempty"`
	Kind           string      `json:"kind"`
	Applicability  string      `json:"applicability"`
	IsPreferred    bool        `json:"is_preferred,omitempty"`
	Edits          []EditEntry `json:"edits,omitempty"`
}

type DiagnosticEntry struct {
	Severity string      `json:"severity"`
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Location Location    `json:"location"`
	Notes    []NoteEntry `json:"notes,omitempty"`
	Fixes    []FixEntry  `json:"fixes,omitempty"`
}

// locator turns spans into Locations for one output.
type locator struct {
	fs        *source.FileSet
	mode      PathMode
	positions bool
}

func (l locator) at(span source.Span) Location {
	loc := Location{Start: span.Start, End: span.End}
	f := l.fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(l.fs, f, l.mode)
	if l.positions {
		from, to := l.fs.Resolve(span)
		loc.From = &Position{Line: from.Line, Col: from.Col}
		loc.To = &Position{Line: to.Line, Col: to.Col}
	}
	return loc
}

// BuildReport assembles the JSON document without encoding it.
//
// Hidden diagnostics are dropped unless IncludeHidden is set, except the
// timings report, which always goes out together with its notes.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	loc := locator{fs: fs, mode: opts.PathMode, positions: opts.IncludePositions}
	report := Report{Diagnostics: []DiagnosticEntry{}, Summary: map[string]int{}}
	for _, d := range bag.Items() {
		if opts.Max > 0 && len(report.Diagnostics) == opts.Max {
			break
		}
		timings := d.Code == diag.EngineTimings
		if d.Severity == diag.SevHidden && !opts.IncludeHidden && !timings {
			continue
		}
		entry := DiagnosticEntry{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: loc.at(d.Primary),
		}
		if opts.IncludeNotes || timings {
			for _, n := range d.Notes {
				entry.Notes = append(entry.Notes, NoteEntry{Message: n.Msg, Location: loc.at(n.Span)})
			}
		}
		if opts.IncludeFixes {
			entry.Fixes = fixEntries(d.Fixes, loc, opts.IncludePreviews)
		}
		report.Diagnostics = append(report.Diagnostics, entry)
		report.Summary[strings.ToLower(entry.Severity)]++
	}
	report.Count = len(report.Diagnostics)
	return report
}

// fixEntries lists the preferred fix first, then safer fixes before riskier ones.
func fixEntries(fixes []diag.Fix, loc locator, previews bool) []FixEntry {
	if len(fixes) == 0 {
		return nil
	}
	fixes = slices.Clone(fixes)
	slices.SortStableFunc(fixes, func(a, b diag.Fix) int {
		return cmp.Or(
			preferredFirst(a, b),
			cmp.Compare(a.Applicability, b.Applicability),
			cmp.Compare(a.Title, b.Title),
			cmp.Compare(a.ID, b.ID),
		)
	})

	out := make([]FixEntry, len(fixes))
	for i, f := range fixes {
		out[i] = FixEntry{
			ID:             f.ID,
			Title:          f.Title,
			EquivalenceKey: f.EquivalenceKey,
			Kind:           f.Kind.String(),
			Applicability:  f.Applicability.String(),
			IsPreferred:    f.IsPreferred,
		}
		for _, e := range f.Edits {
			edit := EditEntry{Location: loc.at(e.Span), NewText: e.NewText, OldText: e.OldText}
			if previews {
				if p, err := buildFixEditPreview(loc.fs, e); err == nil {
					edit.Before, edit.After = p.before, p.after
				}
			}
			out[i].Edits = append(out[i].Edits, edit)
		}
	}
	return out
}

func preferredFirst(a, b diag.Fix) int {
	switch {
	case a.IsPreferred == b.IsPreferred:
		return 0
	case a.IsPreferred:
		return -1
	}
	return 1
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
