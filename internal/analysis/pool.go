package analysis

import (
	"sync"

	"codefix/internal/syntax"
)

// Resettable is the constraint of pooled values: a pointer whose Reset
// clears everything a previous user left behind.
type Resettable[T any] interface {
	*T
	Reset()
}

// Pool hands out reusable scratch values. Put resets the value before it is
// returned to the pool, so Get never sees stale state. The zero value is
// ready for use.
type Pool[T any, P Resettable[T]] struct {
	p sync.Pool
}

func (p *Pool[T, P]) Get() P {
	if v, ok := p.p.Get().(P); ok {
		return v
	}
	return P(new(T))
}

func (p *Pool[T, P]) Put(v P) {
	if v == nil {
		return
	}
	v.Reset()
	p.p.Put(v)
}

// Scratch is the per-visit buffer NodeContext.Scratch hands to actions.
type Scratch struct {
	Nodes   []*syntax.Node
	Greens  []*syntax.Green
	Values  []uint64
	Strings []string
	Seen    map[string]bool
}

func (s *Scratch) Reset() {
	clear(s.Nodes)
	clear(s.Greens)
	s.Nodes = s.Nodes[:0]
	s.Greens = s.Greens[:0]
	s.Values = s.Values[:0]
	s.Strings = s.Strings[:0]
	clear(s.Seen)
}

// Mark records key in Seen and reports whether it was new.
func (s *Scratch) Mark(key string) bool {
	if s.Seen == nil {
		s.Seen = make(map[string]bool)
	}
	if s.Seen[key] {
		return false
	}
	s.Seen[key] = true
	return true
}
