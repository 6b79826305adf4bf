package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"codefix/internal/source"
)

// FormatShortDiagnostics renders one line per diagnostic:
//
//	warning RCS1238 path/to/file.cs:3:13 message
//
// Entries are sorted by path, line, column, severity and code. Notes are
// rendered as "note" lines when includeNotes is set.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	type line struct {
		path      string
		line, col uint32
		text      string
	}
	var rows []line
	add := func(sev, code string, sp source.Span, msg string) {
		path, lc, ok := resolveSpan(fs, sp)
		if !ok {
			return
		}
		rows = append(rows, line{
			path: path, line: lc.Line, col: lc.Col,
			text: fmt.Sprintf("%s %s %s:%d:%d %s", sev, code, path, lc.Line, lc.Col, sanitizeMessage(msg)),
		})
	}
	for i := range diags {
		d := &diags[i]
		add(severityLabel(d.Severity), d.Code.ID(), d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code.ID(), n.Span, n.Msg)
			}
		}
	}

	slices.SortStableFunc(rows, func(a, b line) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
		)
	})

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.text)
	}
	return b.String()
}

func resolveSpan(fs *source.FileSet, span source.Span) (path string, lc source.LineCol, ok bool) {
	if int(span.File) >= fs.Len() {
		return "", source.LineCol{}, false
	}
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return normalizePath(file.FormatPath("relative", fs.BaseDir())), start, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevHidden:
		return "hidden"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
