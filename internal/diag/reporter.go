package diag

import (
	"sync"

	"codefix/internal/source"
)

// Reporter receives diagnostics as producers find them.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Emit reports d to r. A nil r drops it.
func Emit(r Reporter, d Diagnostic) {
	if r != nil {
		r.Report(d)
	}
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

type reportKey struct {
	code Code
	span source.Span
	msg  string
}

// DedupReporter forwards only the first report of each (code, span, message).
// Parser recovery can report the same position more than once.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[reportKey]bool
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[reportKey]bool)}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := reportKey{code: d.Code, span: d.Primary, msg: d.Message}
	r.mu.Lock()
	dup := r.seen[key]
	r.seen[key] = true
	r.mu.Unlock()
	if !dup {
		Emit(r.next, d)
	}
}
