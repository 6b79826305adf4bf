package trace

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64

	now = time.Now
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open begin/end pair. A disabled tracer yields an inert Span
// whose methods do nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	attrs   attrs
	started time.Time
	extra   map[string]string
	ended   atomic.Bool
}

var inert = &Span{tracer: Nop}

func begin(t Tracer, scope Scope, name string, a attrs, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		attrs:   a,
		started: now(),
	}
	open.add(s)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      nextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		File:     s.attrs.file,
		Rule:     s.attrs.rule,
		Detail:   detail,
	}
}

// End emits the end event and returns the span's duration. Only the first
// call counts.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || !s.ended.CompareAndSwap(false, true) {
		return 0
	}
	open.remove(s.id)
	at := now()
	ev := s.event(KindSpanEnd, at, detail)
	ev.Elapsed = at.Sub(s.started)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return ev.Elapsed
}

// WithExtra adds a key-value pair to the end event. It must be called from
// the goroutine that ends the span.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// label renders the span for heartbeats: "analyze src/A.cs [RCS1049]".
func (s *Span) label() string {
	var b strings.Builder
	b.WriteString(s.name)
	if s.attrs.file != "" {
		b.WriteByte(' ')
		b.WriteString(s.attrs.file)
	}
	if s.attrs.rule != "" {
		fmt.Fprintf(&b, " [%s]", s.attrs.rule)
	}
	return b.String()
}

// openSpans tracks spans that have begun and not ended.
type openSpans struct {
	mu    sync.Mutex
	spans map[uint64]*Span
}

var open = &openSpans{spans: make(map[uint64]*Span)}

func (o *openSpans) add(s *Span) {
	o.mu.Lock()
	o.spans[s.id] = s
	o.mu.Unlock()
}

func (o *openSpans) remove(id uint64) {
	o.mu.Lock()
	delete(o.spans, id)
	o.mu.Unlock()
}

// oldest returns the number of open spans and labels of the n longest
// running ones, oldest first.
func (o *openSpans) oldest(n int, at time.Time) (int, []string) {
	o.mu.Lock()
	spans := make([]*Span, 0, len(o.spans))
	for _, s := range o.spans {
		spans = append(spans, s)
	}
	o.mu.Unlock()
	slices.SortFunc(spans, func(a, b *Span) int { return a.started.Compare(b.started) })
	if len(spans) > n {
		spans = spans[:n]
	}
	labels := make([]string, len(spans))
	for i, s := range spans {
		labels[i] = fmt.Sprintf("%s %s", s.label(), at.Sub(s.started).Round(time.Millisecond))
	}
	return len(o.spans), labels
}
