package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
	attrKey   struct{}
)

// attrs name the document and rule the work in a context is about.
type attrs struct {
	file string
	rule string
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; nil attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// WithFile marks ctx as working on the document at path. Spans and points
// started from it carry the path.
func WithFile(ctx context.Context, path string) context.Context {
	a := attrsOf(ctx)
	a.file = path
	return context.WithValue(ctx, attrKey{}, a)
}

// WithRule marks ctx as running rule id (or the action with that key).
func WithRule(ctx context.Context, id string) context.Context {
	a := attrsOf(ctx)
	a.rule = id
	return context.WithValue(ctx, attrKey{}, a)
}

func attrsOf(ctx context.Context) attrs {
	if ctx == nil {
		return attrs{}
	}
	a, _ := ctx.Value(attrKey{}).(attrs)
	return a
}

// CurrentSpan returns the id of the span carried by ctx, 0 if none.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// Start begins a span parented to the span carried by ctx and returns a
// context carrying the new one. With tracing off or the scope filtered out,
// the span is inert and ctx is returned unchanged.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	a := attrsOf(ctx)
	sp := begin(FromContext(ctx), scope, name, a, CurrentSpan(ctx))
	if sp.id == 0 {
		return sp, ctx
	}
	return sp, context.WithValue(ctx, spanKey{}, sp.id)
}

// Point emits an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	a := attrsOf(ctx)
	t.Emit(&Event{
		Time:     now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: CurrentSpan(ctx),
		Name:     name,
		File:     a.file,
		Rule:     a.rule,
		Detail:   detail,
	})
}
