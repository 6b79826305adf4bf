package analysis

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"codefix/internal/diag"
	"codefix/internal/semantic"
	"codefix/internal/source"
	"codefix/internal/syntax"
	"codefix/internal/trace"
)

// cancelCheckEvery is how many nodes a walker visits between context checks.
const cancelCheckEvery = 256

// Engine holds the registered analyzers and their dispatch table. It is
// immutable after NewEngine and may run several documents concurrently.
type Engine struct {
	analyzers []Analyzer
	descs     [][]*Descriptor // by analyzer index
	owner     map[diag.Code]int
	byCode    map[diag.Code]*Descriptor
	table     [][]action // by syntax.Kind
	starts    []startAction
	opts      Options
	only      map[diag.Code]bool
}

// NewEngine initializes every analyzer. Two analyzers declaring the same
// diagnostic id is a programming error and panics.
func NewEngine(opts Options, analyzers ...Analyzer) *Engine {
	e := &Engine{
		analyzers: analyzers,
		descs:     make([][]*Descriptor, len(analyzers)),
		owner:     make(map[diag.Code]int),
		byCode:    make(map[diag.Code]*Descriptor),
		table:     make([][]action, syntax.NumKinds),
		opts:      opts,
	}
	for i, a := range analyzers {
		for _, d := range a.Descriptors() {
			if prev, dup := e.owner[d.ID]; dup {
				panic(fmt.Sprintf("analysis: %s declared by analyzers %d and %d", d.ID.ID(), prev, i))
			}
			e.owner[d.ID] = i
			e.byCode[d.ID] = d
			e.descs[i] = append(e.descs[i], d)
		}
		ic := &InitContext{index: i, actions: e.table}
		a.Initialize(ic)
		e.starts = append(e.starts, ic.starts...)
	}
	return e
}

// Restrict returns an engine that reports only the given codes. Fix-all
// uses it to re-analyse one rule between iterations.
func (e *Engine) Restrict(codes ...diag.Code) *Engine {
	cp := *e
	cp.only = make(map[diag.Code]bool, len(codes))
	for _, c := range codes {
		cp.only[c] = true
	}
	return &cp
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Descriptors lists every descriptor ordered by id.
func (e *Engine) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(e.byCode))
	for _, ds := range e.descs {
		out = append(out, ds...)
	}
	slices.SortFunc(out, func(a, b *Descriptor) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Descriptor looks a descriptor up by code.
func (e *Engine) Descriptor(code diag.Code) (*Descriptor, bool) {
	d, ok := e.byCode[code]
	return d, ok
}

// Effective returns the severity code reports with and whether it is
// enabled under the engine's configuration.
func (e *Engine) Effective(code diag.Code) (diag.Severity, bool) {
	return e.effective(code)
}

func (e *Engine) effective(code diag.Code) (diag.Severity, bool) {
	d, ok := e.byCode[code]
	if !ok {
		return diag.SevHidden, false
	}
	if e.only != nil && !e.only[code] {
		return d.DefaultSeverity, false
	}
	return e.opts.Rules.Effective(code, d.DefaultSeverity, d.EnabledByDefault)
}

func (e *Engine) analyzerEnabled(i int) bool {
	for _, d := range e.descs[i] {
		if _, ok := e.effective(d.ID); ok {
			return true
		}
	}
	return false
}

// run is the state of one Engine.Run.
type run struct {
	engine  *Engine
	tree    *syntax.Tree
	model   semantic.Facade
	pragmas pragmas
	bag     *diag.Bag
	table   [][]action
	owned   bool // table was cloned from engine.table
	active  []bool
}

func (r *run) addAction(a action, kinds []syntax.Kind) {
	if !r.owned {
		r.table = slices.Clone(r.table)
		r.owned = true
	}
	for _, k := range kinds {
		if int(k) < len(r.table) {
			r.table[k] = append(slices.Clip(r.table[k]), a)
		}
	}
}

// enabledAt applies configuration and pragmas to code at pos.
func (r *run) enabledAt(code diag.Code, pos uint32) (diag.Severity, bool) {
	sev, ok := r.engine.effective(code)
	if !ok || r.pragmas.suppressed(code, pos) {
		return sev, false
	}
	return sev, true
}

// gate is the suppression check made before an action sees a node.
func (r *run) gate(analyzer int, n *syntax.Node) bool {
	if !r.active[analyzer] {
		return false
	}
	if len(r.pragmas.ranges) == 0 {
		return true
	}
	pos := n.SpanStart()
	for _, d := range r.engine.descs[analyzer] {
		if _, ok := r.enabledAt(d.ID, pos); ok {
			return true
		}
	}
	return false
}

// Run analyses one document and returns its diagnostics ordered by span,
// then code. Only cancellation makes it fail.
func (e *Engine) Run(ctx context.Context, tree *syntax.Tree, model semantic.Facade) ([]diag.Diagnostic, error) {
	span, ctx := trace.Start(trace.WithFile(ctx, tree.Path()), trace.ScopeFile, "rules")
	r := &run{
		engine:  e,
		tree:    tree,
		model:   model,
		pragmas: collectPragmas(tree),
		bag:     diag.NewBag(e.opts.MaxDiagnostics),
		table:   e.table,
		active:  make([]bool, len(e.analyzers)),
	}
	for i := range e.analyzers {
		r.active[i] = e.analyzerEnabled(i)
	}
	for _, s := range e.starts {
		if !r.active[s.analyzer] {
			continue
		}
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return nil, err
		}
		r.start(ctx, s)
	}

	var units []*syntax.Node
	for n := range tree.Root().DescendantNodesAndSelf(isNotUnit) {
		if isUnit(n) {
			units = append(units, n)
			continue
		}
		r.visit(ctx, n)
	}

	jobs := e.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for _, u := range units {
		g.Go(func() error { return r.walk(gctx, u) })
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return nil, err
	}

	out := r.bag.Items()
	sortBySpan(out)
	span.WithExtra("diagnostics", strconv.Itoa(len(out))).End("")
	return out, nil
}

// Top-level type declarations are the units visited in parallel.
func isUnit(n *syntax.Node) bool    { return n.Kind().IsTypeDecl() }
func isNotUnit(n *syntax.Node) bool { return !isUnit(n) }

func (r *run) walk(ctx context.Context, unit *syntax.Node) error {
	seen := 0
	for n := range unit.DescendantNodesAndSelf(nil) {
		if seen++; seen%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r.visit(ctx, n)
	}
	return ctx.Err()
}

func (r *run) visit(ctx context.Context, n *syntax.Node) {
	for _, a := range r.table[n.Kind()] {
		if r.gate(a.analyzer, n) {
			r.invoke(ctx, a, n)
		}
	}
}

func (r *run) invoke(ctx context.Context, a action, n *syntax.Node) {
	nc := nodeContexts.Get()
	nc.Node, nc.Model, nc.Options = n, r.model, &r.engine.opts
	nc.ctx, nc.run, nc.analyzer = ctx, r, a.analyzer
	defer func() {
		if rec := recover(); rec != nil {
			r.failure(ctx, a.analyzer, n.Span(), n.Kind().String(), rec)
		}
		nodeContexts.Put(nc)
	}()
	a.fn(nc)
}

func (r *run) start(ctx context.Context, s startAction) {
	sc := &StartContext{
		ctx:     ctx,
		run:     r,
		index:   s.analyzer,
		Model:   r.model,
		Tree:    r.tree,
		Options: &r.engine.opts,
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.failure(ctx, s.analyzer, r.tree.Span(0, 0), "compilation start", rec)
		}
	}()
	s.fn(sc)
}

// failure turns a recovered panic into CFX0001. The analyzer stays active
// for the remaining nodes.
func (r *run) failure(ctx context.Context, analyzer int, sp source.Span, where string, rec any) {
	ids := make([]string, 0, len(r.engine.descs[analyzer]))
	for _, d := range r.engine.descs[analyzer] {
		ids = append(ids, d.ID.ID())
	}
	rule := strings.Join(ids, ",")
	msg := fmt.Sprintf("rule %s failed on %s: %v", rule, where, rec)
	trace.Point(trace.WithRule(ctx, rule), trace.ScopeRule, "rule-failure", msg)
	r.bag.Add(diag.New(diag.SevWarning, diag.EngineRuleFailure, sp, msg))
}

// sortBySpan orders diagnostics by span, then code, then message. Unlike
// diag.SortDiagnostics severity does not take part.
func sortBySpan(ds []diag.Diagnostic) {
	slices.SortStableFunc(ds, func(a, b diag.Diagnostic) int {
		if c := a.Primary.Compare(b.Primary); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.Message, b.Message)
	})
}
