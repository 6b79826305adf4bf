// Package rules is the catalog of analyzers, fix providers and refactorings
// codefix ships with.
//
// Each rule lives in its own file: the analyzer that recognises the pattern,
// the provider that rewrites it and the descriptor the engine reports with.
// Providers re-derive the match from the tree instead of trusting the
// diagnostic alone, so a fix computed on a stale diagnostic is dropped
// rather than applied to the wrong node.
package rules

import (
	"slices"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
)

// Analyzers returns a fresh instance of every analyzer, ordered by rule id.
func Analyzers() []analysis.Analyzer {
	return []analysis.Analyzer{
		asyncNameAnalyzer{},
		booleanComparisonAnalyzer{},
		redundantToStringAnalyzer{},
		conditionalAccessAnalyzer{},
		optimizeMethodCallAnalyzer{},
	}
}

// Providers returns every fix provider.
func Providers() []codefix.Provider {
	return []codefix.Provider{
		asyncNameProvider{},
		booleanComparisonProvider{},
		redundantToStringProvider{},
		conditionalAccessProvider{},
		optimizeMethodCallProvider{},
	}
}

// Refactorings returns every span-driven refactoring.
func Refactorings() []codefix.Refactoring {
	return []codefix.Refactoring{
		generateEnumValues{},
	}
}

// Entry is one row of the catalog as the rules command prints it.
type Entry struct {
	Code             diag.Code
	Title            string
	Category         string
	DefaultSeverity  diag.Severity
	EnabledByDefault bool
	Fixable          bool
	Refactoring      bool
	HelpURI          string
}

// Catalog lists every rule and refactoring ordered by id.
func Catalog() []Entry {
	fixable := make(map[diag.Code]bool)
	for _, p := range Providers() {
		for _, c := range p.FixableCodes() {
			fixable[c] = true
		}
	}
	var out []Entry
	for _, a := range Analyzers() {
		for _, d := range a.Descriptors() {
			out = append(out, Entry{
				Code:             d.ID,
				Title:            d.Title,
				Category:         d.Category,
				DefaultSeverity:  d.DefaultSeverity,
				EnabledByDefault: d.EnabledByDefault,
				Fixable:          fixable[d.ID],
				HelpURI:          d.HelpURI,
			})
		}
	}
	for _, r := range Refactorings() {
		out = append(out, Entry{
			Code:             r.Code(),
			Title:            r.Code().Title(),
			Category:         "Refactoring",
			DefaultSeverity:  diag.SevHidden,
			EnabledByDefault: true,
			Fixable:          true,
			Refactoring:      true,
			HelpURI:          helpURI(r.Code()),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return int(a.Code) - int(b.Code) })
	return out
}

// Lookup finds a catalog entry by code.
func Lookup(code diag.Code) (Entry, bool) {
	for _, e := range Catalog() {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}
