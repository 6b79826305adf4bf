package analysis

import (
	"context"

	"codefix/internal/assert"
	"codefix/internal/config"
	"codefix/internal/diag"
	"codefix/internal/semantic"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// Options configure an Engine.
type Options struct {
	Rules          config.Rules
	Jobs           int // parallel member visits; 0 means GOMAXPROCS
	MaxDiagnostics int // 0 means unlimited
}

// NodeContext is handed to a NodeAction for one node. Contexts are pooled:
// an action must not keep a reference after it returns.
type NodeContext struct {
	Node    *syntax.Node
	Model   semantic.Facade
	Options *Options

	ctx      context.Context
	run      *run
	analyzer int
	scratch  *Scratch
}

var nodeContexts Pool[NodeContext, *NodeContext]

var scratches Pool[Scratch, *Scratch]

func (c *NodeContext) Reset() {
	if c.scratch != nil {
		scratches.Put(c.scratch)
	}
	*c = NodeContext{}
}

func (c *NodeContext) Context() context.Context { return c.ctx }

// Scratch returns a reset buffer that lives until the action returns.
func (c *NodeContext) Scratch() *Scratch {
	if c.scratch == nil {
		c.scratch = scratches.Get()
	}
	return c.scratch
}

// IsEnabled reports whether d is enabled by configuration and not disabled
// by a pragma at the current node.
func (c *NodeContext) IsEnabled(d *Descriptor) bool {
	_, ok := c.run.enabledAt(d.ID, c.Node.SpanStart())
	return ok
}

// Report records a diagnostic for d spanning n.
func (c *NodeContext) Report(d *Descriptor, n *syntax.Node, args ...any) {
	if n == nil {
		return
	}
	c.ReportSpan(d, n.Span(), args...)
}

// ReportSpan records a diagnostic for d at sp. It is dropped when d is
// disabled at sp.Start.
func (c *NodeContext) ReportSpan(d *Descriptor, sp source.Span, args ...any) {
	if !assert.Thatf(c.run.engine.owner[d.ID] == c.analyzer, "%s reported by an analyzer that does not own it", d.ID.ID()) {
		return
	}
	sev, ok := c.run.enabledAt(d.ID, sp.Start)
	if !ok {
		return
	}
	c.run.bag.Add(diag.New(sev, d.ID, sp, d.Format(args...)))
}
