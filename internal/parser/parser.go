package parser

import (
	"slices"

	"codefix/internal/diag"
	"codefix/internal/lexer"
	"codefix/internal/source"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree *syntax.Tree
	Bag  *diag.Bag
}

// Parser holds the state for one file. Tokens are lexed up front so the
// parser can look ahead arbitrarily when telling declarations from
// expressions.
type Parser struct {
	toks     []token.Token
	pos      int
	file     source.FileID
	opts     Options
	lastSpan source.Span     // span of the last consumed token, for diagnostics
	skipped  []syntax.Trivia // tokens dropped by recovery, attached to the next token
}

// ParseFile parses a file registered in fs.
func ParseFile(fs *source.FileSet, id source.FileID, opts Options) Result {
	return parse(fs.Get(id), opts)
}

// ParseText parses text as the content of file id without registering it in
// a FileSet. Fix verification uses it to re-parse rewritten documents.
func ParseText(id source.FileID, path, text string, opts Options) Result {
	return parse(&source.File{ID: id, Path: path, Content: []byte(text)}, opts)
}

func parse(f *source.File, opts Options) Result {
	lx := lexer.New(f, lexer.Options{Reporter: opts.Reporter})
	p := Parser{
		toks:     lx.Tokenize(),
		file:     f.ID,
		opts:     opts,
		lastSpan: source.Span{File: f.ID},
	}
	root := p.parseCompilationUnit()
	p.checkDirectives()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{
		Tree: syntax.NewTree(root, f.ID, f.Path),
		Bag:  bag,
	}
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

// peekAt returns the token n positions ahead; EOF past the end.
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atContextual reports whether the next token is the identifier text, as used
// for contextual keywords like async, await and get.
func (p *Parser) atContextual(text string) bool {
	return p.peek().IsContextual(text)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseCompilationUnit: [usings, members, EOF].
func (p *Parser) parseCompilationUnit() *syntax.Green {
	usings := p.parseUsings()
	var members []*syntax.Green
	for !p.at(token.EOF) {
		before := p.pos
		if m := p.parseNamespaceMember(); m != nil {
			members = append(members, m)
		}
		if p.pos == before {
			p.resyncTop()
		}
	}
	eof := p.advance()
	return syntax.NewNode(syntax.KindCompilationUnit, usings, syntax.List(members...), eof)
}

func (p *Parser) parseUsings() *syntax.Green {
	var usings []*syntax.Green
	for p.at(token.KwUsing) && !p.usingIsStatement() {
		usings = append(usings, p.parseUsingDirective())
	}
	return syntax.List(usings...)
}

func (p *Parser) usingIsStatement() bool {
	next := p.peekAt(1)
	return next.Kind == token.LParen || next.IsContextual("var")
}

// parseUsingDirective: [using, static?, name, ;].
func (p *Parser) parseUsingDirective() *syntax.Green {
	kw := p.advance()
	var static *syntax.Green
	if p.at(token.KwStatic) {
		static = p.advance()
	}
	name := p.parseName()
	semi := p.expect(token.Semicolon)
	return syntax.NewNode(syntax.KindUsingDirective, kw, static, name, semi)
}

// parseNamespaceMember parses a namespace or a type declaration. It returns
// nil without consuming input when nothing could be parsed.
func (p *Parser) parseNamespaceMember() *syntax.Green {
	if p.at(token.KwNamespace) {
		return p.parseNamespace()
	}
	if !p.atMemberStart() {
		p.err(diag.CSSyntaxError, "Type or namespace definition, or end-of-file expected")
		return nil
	}
	return p.parseMemberDecl("")
}

// parseNamespace handles both block and file-scoped namespaces:
// NamespaceDecl [namespace, name, {, usings, members, }, ;?],
// FileScopedNamespaceDecl [namespace, name, ;, usings, members].
func (p *Parser) parseNamespace() *syntax.Green {
	kw := p.advance()
	name := p.parseName()
	if p.at(token.Semicolon) {
		semi := p.advance()
		usings := p.parseUsings()
		var members []*syntax.Green
		for !p.at(token.EOF) {
			before := p.pos
			if m := p.parseNamespaceMember(); m != nil {
				members = append(members, m)
			}
			if p.pos == before {
				p.resyncTop()
			}
		}
		return syntax.NewNode(syntax.KindFileScopedNamespaceDecl, kw, name, semi, usings, syntax.List(members...))
	}
	open := p.expect(token.LBrace)
	usings := p.parseUsings()
	var members []*syntax.Green
	for !p.at_or(token.RBrace, token.EOF) {
		before := p.pos
		if m := p.parseNamespaceMember(); m != nil {
			members = append(members, m)
		}
		if p.pos == before {
			p.resyncTop()
		}
	}
	closeTok := p.expect(token.RBrace)
	var semi *syntax.Green
	if p.at(token.Semicolon) {
		semi = p.advance()
	}
	return syntax.NewNode(syntax.KindNamespaceDecl, kw, name, open, usings, syntax.List(members...), closeTok, semi)
}

// resyncTop drops one token so the member loop makes progress.
func (p *Parser) resyncTop() {
	if !p.at(token.EOF) {
		p.skip()
	}
}
