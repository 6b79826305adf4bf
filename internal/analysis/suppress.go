package analysis

import (
	"codefix/internal/diag"
	"codefix/internal/syntax"
)

// pragmaRange is a region between "#pragma warning disable" and the matching
// restore (or the end of file). all marks a disable without ids.
type pragmaRange struct {
	code       diag.Code
	all        bool
	start, end uint32
}

// pragmas are the #pragma warning regions of one document.
type pragmas struct {
	ranges []pragmaRange
}

// collectPragmas scans every directive in tree. Ids that are not codefix
// codes are ignored.
func collectPragmas(tree *syntax.Tree) pragmas {
	root := tree.Root()
	if !root.ContainsDirectives() {
		return pragmas{}
	}
	var (
		ps      pragmas
		open    = make(map[diag.Code]uint32)
		allOpen = false
		allFrom uint32
	)
	closeRange := func(code diag.Code, at uint32) {
		if from, ok := open[code]; ok {
			ps.ranges = append(ps.ranges, pragmaRange{code: code, start: from, end: at})
			delete(open, code)
		}
	}
	visit := func(tr syntax.Trivia, pos uint32) {
		d, ok := tr.Directive()
		if !ok {
			return
		}
		act, ids, ok := d.IsPragmaWarning()
		if !ok {
			return
		}
		switch {
		case act == "disable" && len(ids) == 0:
			if !allOpen {
				allOpen, allFrom = true, pos
			}
		case act == "disable":
			for _, id := range ids {
				if code, ok := diag.ParseCode(id); ok {
					if _, already := open[code]; !already {
						open[code] = pos
					}
				}
			}
		case len(ids) == 0:
			for code := range open {
				closeRange(code, pos)
			}
			if allOpen {
				ps.ranges = append(ps.ranges, pragmaRange{all: true, start: allFrom, end: pos})
				allOpen = false
			}
		default:
			for _, id := range ids {
				if code, ok := diag.ParseCode(id); ok {
					closeRange(code, pos)
				}
			}
		}
	}
	for tok := range root.DescendantTokens() {
		if !tok.Green().ContainsDirectives() {
			continue
		}
		pos := tok.FullSpan().Start
		for _, tr := range tok.LeadingTrivia() {
			visit(tr, pos)
			pos += uint32(len(tr.Text))
		}
		pos = tok.Span().End
		for _, tr := range tok.TrailingTrivia() {
			visit(tr, pos)
			pos += uint32(len(tr.Text))
		}
	}
	end := tree.Len()
	for code := range open {
		closeRange(code, end)
	}
	if allOpen {
		ps.ranges = append(ps.ranges, pragmaRange{all: true, start: allFrom, end: end})
	}
	return ps
}

// suppressed reports whether code is disabled by a pragma at pos.
func (p pragmas) suppressed(code diag.Code, pos uint32) bool {
	for _, r := range p.ranges {
		if (r.all || r.code == code) && pos >= r.start && pos < r.end {
			return true
		}
	}
	return false
}
