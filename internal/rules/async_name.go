package rules

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"codefix/internal/analysis"
	"codefix/internal/codefix"
	"codefix/internal/diag"
	"codefix/internal/semantic"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

const asyncSuffix = "Async"

// asyncNameAnalyzer checks the Async suffix against the return type. It
// only runs when the document can see System.Threading.Tasks.Task.
type asyncNameAnalyzer struct{}

func (asyncNameAnalyzer) Descriptors() []*analysis.Descriptor {
	return []*analysis.Descriptor{AsyncMethodNameShouldEndWithAsync, NonAsyncMethodNameShouldNotEndWithAsync}
}

func (asyncNameAnalyzer) Initialize(c *analysis.InitContext) {
	c.RegisterCompilationStart(func(start *analysis.StartContext) {
		if start.TypeByMetadataName("System.Threading.Tasks.Task") == nil {
			return
		}
		if !start.IsEnabled(AsyncMethodNameShouldEndWithAsync) && !start.IsEnabled(NonAsyncMethodNameShouldNotEndWithAsync) {
			return
		}
		start.RegisterNodeAction(analyzeAsyncName, syntax.KindMethodDecl)
	})
}

func analyzeAsyncName(ctx *analysis.NodeContext) {
	d, ok := asyncNameViolation(ctx.Node, ctx.Model)
	if !ok {
		return
	}
	id := syntax.MethodDecl{Node: ctx.Node}.Identifier()
	ctx.Report(d, id, id.TokenText())
}

// asyncNameViolation returns the descriptor a method declaration violates.
func asyncNameViolation(decl *syntax.Node, f semantic.Facade) (*analysis.Descriptor, bool) {
	v := syntax.MethodDecl{Node: decl}
	name := v.Identifier().TokenText()
	m := f.DeclaredSymbol(decl)
	if m == nil || m.Kind != semantic.SymbolMethod {
		return nil, false
	}
	if strings.HasSuffix(name, asyncSuffix) {
		if m.IsAsync() || semantic.IsAwaitable(m.Type) {
			return nil, false
		}
		return NonAsyncMethodNameShouldNotEndWithAsync, true
	}
	if m.IsOverride() {
		return nil, false
	}
	if body := v.Body(); body != nil && len(syntax.Block{Node: body}.Statements()) == 0 {
		return nil, false
	}
	if m.IsStatic() && name == "Main" {
		return nil, false
	}
	if !semantic.IsAwaitable(m.Type) {
		return nil, false
	}
	return AsyncMethodNameShouldEndWithAsync, true
}

type asyncNameProvider struct{}

func (asyncNameProvider) FixableCodes() []diag.Code {
	return []diag.Code{diag.RuleAsyncMethodNameShouldEndWithAsync, diag.RuleNonAsyncMethodNameShouldNotEndWithAsync}
}

func (asyncNameProvider) RegisterFixes(c *codefix.FixContext) {
	doc := c.Document
	decl := nodeAt(doc, c.Span(), syntax.KindMethodDecl)
	if decl == nil {
		return
	}
	id := syntax.MethodDecl{Node: decl}.Identifier()
	if id.Span() != c.Span() {
		return
	}
	d, ok := asyncNameViolation(decl, doc.Model)
	if !ok || d.ID != c.Diagnostic.Code {
		return
	}
	name := id.TokenText()
	newName := name + asyncSuffix
	if d == NonAsyncMethodNameShouldNotEndWithAsync {
		newName = strings.TrimSuffix(name, asyncSuffix)
	}
	if !isIdentifier(newName) {
		return
	}
	title := fmt.Sprintf("Rename '%s' to '%s'", name, newName)
	c.Register(codefix.NewAction(title, d.ID.ID(), func(ctx context.Context) (*codefix.Document, error) {
		return renameMethod(ctx, doc, decl, newName)
	}))
}

// renameMethod renames a method declaration and every reference to it in
// the document.
func renameMethod(ctx context.Context, doc *codefix.Document, decl *syntax.Node, newName string) (*codefix.Document, error) {
	tokens := []*syntax.Node{syntax.MethodDecl{Node: decl}.Identifier()}
	for _, ref := range doc.Model.References(doc.Model.DeclaredSymbol(decl)) {
		switch {
		case ref.IsToken():
			tokens = append(tokens, ref)
		case ref.Is(syntax.KindIdentifierName, syntax.KindGenericName):
			tokens = append(tokens, ref.Child(0))
		}
	}
	reps := make([]syntax.Replacement, 0, len(tokens))
	for _, tok := range tokens {
		reps = append(reps, syntax.Replacement{
			Old: tok,
			New: syntax.TokWithTrivia(token.Ident, newName, tok.LeadingTrivia(), tok.TrailingTrivia()),
		})
	}
	return doc.ReplaceNodes(ctx, reps)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if _, kw := token.LookupKeyword(s); kw {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
