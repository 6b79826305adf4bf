package codefix

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"codefix/internal/diag"
	"codefix/internal/source"
	"codefix/internal/syntax"
	"codefix/internal/trace"
)

// CodeAction is a named, deferred document change.
type CodeAction struct {
	Title          string
	EquivalenceKey string
	Kind           diag.FixKind

	apply  func(ctx context.Context) (*Document, error)
	result *Document
}

// NewAction wraps apply. The function runs at most once per verification
// and must not mutate its inputs.
func NewAction(title, key string, apply func(ctx context.Context) (*Document, error)) *CodeAction {
	return &CodeAction{Title: title, EquivalenceKey: key, apply: apply}
}

// Apply returns the changed document. A verified action returns the
// document computed during verification.
func (a *CodeAction) Apply(ctx context.Context) (*Document, error) {
	if a.result != nil {
		return a.result, nil
	}
	return a.apply(ctx)
}

// Provider offers fixes for the diagnostics of some rules.
type Provider interface {
	FixableCodes() []diag.Code
	RegisterFixes(c *FixContext)
}

// Refactoring offers span-driven code actions that have no diagnostic.
type Refactoring interface {
	Code() diag.Code
	ComputeRefactorings(c *RefactorContext)
}

// FixContext is handed to Provider.RegisterFixes for one diagnostic.
type FixContext struct {
	Document   *Document
	Diagnostic diag.Diagnostic

	ctx     context.Context
	actions []*CodeAction
}

func (c *FixContext) Context() context.Context { return c.ctx }
func (c *FixContext) Span() source.Span        { return c.Diagnostic.Primary }

// Node returns the outermost node whose span is the diagnostic span, or
// the innermost node containing it.
func (c *FixContext) Node() *syntax.Node {
	return c.Document.Tree.Root().FindNode(c.Span(), true)
}

func (c *FixContext) Register(a *CodeAction) {
	if a != nil {
		c.actions = append(c.actions, a)
	}
}

// RefactorContext is handed to Refactoring.ComputeRefactorings.
type RefactorContext struct {
	Document *Document
	Span     source.Span

	ctx     context.Context
	actions []*CodeAction
}

func (c *RefactorContext) Context() context.Context { return c.ctx }

// Node returns the innermost node containing the span.
func (c *RefactorContext) Node() *syntax.Node {
	return c.Document.Tree.Root().FindNode(c.Span, false)
}

func (c *RefactorContext) Register(a *CodeAction) {
	if a != nil {
		c.actions = append(c.actions, a)
	}
}

// Actions lists the verified fixes the providers offer for d.
func Actions(ctx context.Context, doc *Document, d diag.Diagnostic, providers []Provider) ([]*CodeAction, error) {
	fc := &FixContext{Document: doc, Diagnostic: d, ctx: ctx}
	for _, p := range providers {
		if !slices.Contains(p.FixableCodes(), d.Code) {
			continue
		}
		p.RegisterFixes(fc)
	}
	return verifyAll(ctx, doc, fc.actions)
}

// Refactorings lists the verified refactorings available at sp.
func Refactorings(ctx context.Context, doc *Document, sp source.Span, refactorings []Refactoring) ([]*CodeAction, error) {
	rc := &RefactorContext{Document: doc, Span: sp, ctx: ctx}
	for _, r := range refactorings {
		r.ComputeRefactorings(rc)
	}
	for _, a := range rc.actions {
		if a.Kind == diag.FixKindQuickFix {
			a.Kind = diag.FixKindRefactor
		}
	}
	return verifyAll(ctx, doc, rc.actions)
}

// verifyAll applies every action and keeps those whose result passes
// Verify. Cancellation is the only error.
func verifyAll(ctx context.Context, doc *Document, actions []*CodeAction) ([]*CodeAction, error) {
	out := actions[:0]
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		after, err := a.apply(ctx)
		if err == nil {
			err = Verify(doc, after)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			trace.Point(trace.WithRule(ctx, a.EquivalenceKey), trace.ScopeRule, "fix-rejected", fmt.Sprintf("%s: %v", a.Title, err))
			continue
		}
		a.result = after
		out = append(out, a)
	}
	return out, nil
}
