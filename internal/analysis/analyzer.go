package analysis

import (
	"context"

	"codefix/internal/semantic"
	"codefix/internal/syntax"
)

// Analyzer is one rule (or a family of rules sharing a matcher).
type Analyzer interface {
	Descriptors() []*Descriptor
	Initialize(c *InitContext)
}

// NodeAction inspects one node. It must not retain ctx after returning.
type NodeAction func(ctx *NodeContext)

type action struct {
	fn       NodeAction
	analyzer int // index into Engine.analyzers
}

// InitContext collects the registrations of one analyzer.
type InitContext struct {
	index   int
	actions [][]action // by kind
	starts  []startAction
}

type startAction struct {
	fn       func(*StartContext)
	analyzer int
}

// RegisterNodeAction asks for fn to run on every node of the given kinds.
func (c *InitContext) RegisterNodeAction(fn NodeAction, kinds ...syntax.Kind) {
	register(c.actions, action{fn: fn, analyzer: c.index}, kinds)
}

// RegisterCompilationStart runs fn once per document before the walk.
func (c *InitContext) RegisterCompilationStart(fn func(*StartContext)) {
	c.starts = append(c.starts, startAction{fn: fn, analyzer: c.index})
}

func register(table [][]action, a action, kinds []syntax.Kind) {
	for _, k := range kinds {
		if int(k) < len(table) {
			table[k] = append(table[k], a)
		}
	}
}

// StartContext is handed to compilation-start callbacks.
type StartContext struct {
	ctx     context.Context
	run     *run
	index   int
	Model   semantic.Facade
	Tree    *syntax.Tree
	Options *Options
}

func (c *StartContext) Context() context.Context { return c.ctx }

// RegisterNodeAction registers fn for the current document only.
func (c *StartContext) RegisterNodeAction(fn NodeAction, kinds ...syntax.Kind) {
	c.run.addAction(action{fn: fn, analyzer: c.index}, kinds)
}

// TypeByMetadataName looks a type up by its full metadata name.
func (c *StartContext) TypeByMetadataName(name string) *semantic.Symbol {
	if c.Model == nil {
		return nil
	}
	return c.Model.TypeByMetadataName(name)
}

// IsEnabled reports whether d is enabled by configuration.
func (c *StartContext) IsEnabled(d *Descriptor) bool {
	_, ok := c.run.engine.effective(d.ID)
	return ok
}
