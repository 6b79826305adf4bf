// Package codefix turns diagnostics into code actions and applies them.
//
// A code action is deferred: it carries a title, an equivalence key and a
// function that builds a new Document. Actions are verified before they are
// offered. Verification re-parses and re-binds the result and rejects it if
// the host compiler reports any error the original did not have, or if the
// rewritten text region contains a preprocessor directive.
//
// FixAll repeatedly analyses a document for one rule and applies the fixes
// sharing an equivalence key, back to front, until nothing is left or the
// iteration bound is hit.
package codefix

import (
	"context"

	"codefix/internal/diag"
	"codefix/internal/parser"
	"codefix/internal/semantic"
	"codefix/internal/source"
	"codefix/internal/syntax"
)

// Document is an immutable parsed and bound source file.
type Document struct {
	Path   string
	Tree   *syntax.Tree
	Model  *semantic.Model
	Syntax []diag.Diagnostic // lexer and parser errors
}

// Parse builds a document from text.
func Parse(ctx context.Context, file source.FileID, path, text string) (*Document, error) {
	bag := diag.NewBag(0)
	res := parser.ParseText(file, path, text, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	m, err := semantic.Bind(ctx, res.Tree, semantic.Options{})
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Tree: res.Tree, Model: m, Syntax: bag.Items()}, nil
}

func (d *Document) File() source.FileID { return d.Tree.File() }
func (d *Document) Text() string        { return d.Tree.FullText() }

// WithText re-parses and re-binds the document with new content.
func (d *Document) WithText(ctx context.Context, text string) (*Document, error) {
	return Parse(ctx, d.File(), d.Path, text)
}

// WithTree returns the document for tree. The tree is round-tripped through
// its text so the result is exactly what the parser makes of the rewrite.
func (d *Document) WithTree(ctx context.Context, tree *syntax.Tree) (*Document, error) {
	return d.WithText(ctx, tree.FullText())
}

// ReplaceNode swaps old for repl and rebinds.
func (d *Document) ReplaceNode(ctx context.Context, old *syntax.Node, repl *syntax.Green) (*Document, error) {
	return d.WithTree(ctx, d.Tree.ReplaceNode(old, repl))
}

// ReplaceNodes applies several non-overlapping replacements at once.
func (d *Document) ReplaceNodes(ctx context.Context, reps []syntax.Replacement) (*Document, error) {
	return d.WithTree(ctx, d.Tree.ReplaceNodes(reps))
}

// Errors returns the host compiler errors of the document: syntax errors
// first, then binding errors.
func (d *Document) Errors() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, ds := range [][]diag.Diagnostic{d.Syntax, d.Model.Diagnostics()} {
		for _, x := range ds {
			if x.Severity == diag.SevError && x.Code.IsHostError() {
				out = append(out, x)
			}
		}
	}
	return out
}
