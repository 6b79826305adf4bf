package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codefix/internal/diag"
	"codefix/internal/source"
)

const tabWidth = 4

type palette struct {
	sev     map[diag.Severity]*color.Color
	path    *color.Color
	gutter  *color.Color
	caret   *color.Color
	note    *color.Color
	fix     *color.Color
	added   *color.Color
	removed *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevHidden:  color.New(color.Faint),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
		},
		path:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
	all := []*color.Color{p.path, p.gutter, p.caret, p.note, p.fix, p.added, p.removed}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатается
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строки контекста с подчёркиванием ^~~~ по Span, заметки и фиксы.
// Ожидается, что bag уже отсортирован.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevHidden && !opts.ShowHidden {
			continue
		}
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.sev[d.Severity].Sprint(d.Severity), d.Code.ID(), d.Message)
			continue
		}
		start, end := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", formatPath(fs, f, opts.PathMode), start.Line, start.Col),
			p.sev[d.Severity].Sprint(d.Severity),
			d.Code.ID(),
			d.Message,
		)
		writeSnippet(w, p, f, start, end, int(opts.Context))

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nf := fs.Get(n.Span.File)
				if nf == nil {
					continue
				}
				ns, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
			}
		}
		if opts.ShowFixes {
			for _, fx := range d.Fixes {
				marker := "fix:"
				if fx.IsPreferred {
					marker = "fix*:"
				}
				fmt.Fprintf(w, "  %s %s (%s)\n", p.fix.Sprint(marker), fx.Title, fx.Applicability)
				if !opts.ShowPreview {
					continue
				}
				for _, edit := range fx.Edits {
					preview, err := buildFixEditPreview(fs, edit)
					if err != nil {
						continue
					}
					for _, line := range preview.before {
						fmt.Fprintf(w, "    %s\n", p.removed.Sprint("- "+expandTabs(line)))
					}
					for _, line := range preview.after {
						fmt.Fprintf(w, "    %s\n", p.added.Sprint("+ "+expandTabs(line)))
					}
				}
			}
		}
	}
}

// writeSnippet prints the context lines and the primary line with an
// underline. A span over several lines is underlined to the end of its
// first line.
func writeSnippet(w io.Writer, p palette, f *source.File, start, end source.LineCol, context int) {
	first := max(1, int(start.Line)-context)
	gutterWidth := len(fmt.Sprint(start.Line))
	for ln := first; ln <= int(start.Line); ln++ {
		text := expandTabs(f.GetLine(uint32(ln)))
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
	}

	line := f.GetLine(start.Line)
	startCol := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(int(end.Col)-1, len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol]))
	width := max(1, runewidth.StringWidth(expandTabs(line[:endCol]))-pad)
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), p.caret.Sprint(underline))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
