package diag

import (
	"slices"
	"sync"

	"codefix/internal/source"
)

// Bag accumulates diagnostics up to a cap. All methods are safe for
// concurrent use.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
	max   int
}

// NewBag returns a bag that keeps at most limit diagnostics; limit <= 0 means no cap.
func NewBag(limit int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, min(max(limit, 0), 256)),
		max:   limit,
	}
}

// Add appends d unless the cap is reached. It reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic has Severity >= Error.
func (b *Bag) HasErrors() bool {
	return b.any(func(d *Diagnostic) bool { return d.Severity >= SevError })
}

// HasWarnings reports whether any diagnostic has Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	return b.any(func(d *Diagnostic) bool { return d.Severity >= SevWarning })
}

func (b *Bag) any(pred func(*Diagnostic) bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if pred(&b.items[i]) {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the stored diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Merge appends all diagnostics of other, growing the cap if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items)+len(items) > b.max {
		b.max = len(b.items) + len(items)
	}
	b.items = append(b.items, items...)
}

// Sort orders diagnostics by file, start, end, severity (desc) and code so
// output does not depend on scheduling.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	SortDiagnostics(b.items)
}

// SortDiagnostics sorts ds in place using Diagnostic.Less.
func SortDiagnostics(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		switch {
		case a.Less(&b):
			return -1
		case b.Less(&a):
			return 1
		}
		return 0
	})
}

// Dedup drops diagnostics with the same code and primary span, keeping the first.
func (b *Bag) Dedup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	type key struct {
		code Code
		span source.Span
	}
	seen := make(map[key]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, d.Primary}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}
