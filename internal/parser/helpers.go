package parser

import (
	"codefix/internal/diag"
	"codefix/internal/fix"
	"codefix/internal/source"
	"codefix/internal/syntax"
	"codefix/internal/token"
)

// advance — съедает следующий токен и обновляет lastSpan. Tokens dropped by
// recovery since the previous call become leading trivia of this one.
func (p *Parser) advance() *syntax.Green {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	lead := syntax.TriviaOf(tok.Leading)
	if len(p.skipped) > 0 {
		lead = append(p.skipped, lead...)
		p.skipped = nil
	}
	return syntax.TokWithTrivia(tok.Kind, tok.Text, lead, syntax.TriviaOf(tok.Trailing))
}

// skip drops the next token into skipped-token trivia. The text survives in
// the tree, so FullText still round-trips.
func (p *Parser) skip() {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return
	}
	p.pos++
	p.lastSpan = tok.Span
	p.skipped = append(p.skipped, syntax.TriviaOf(tok.Leading)...)
	p.skipped = append(p.skipped, syntax.Trivia{Kind: token.TriviaSkipped, Text: tok.Text})
	p.skipped = append(p.skipped, syntax.TriviaOf(tok.Trailing)...)
}

// getDiagnosticSpan — возвращает лучший span для диагностики: the next
// token, or the end of the last consumed token at EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.afterLast()
	}
	return peek.Span
}

func (p *Parser) afterLast() source.Span {
	return source.Span{File: p.file, Start: p.lastSpan.End, End: p.lastSpan.End}
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем
// missing token, so the node keeps its fixed shape.
func (p *Parser) expect(k token.Kind) *syntax.Green {
	if p.at(k) {
		return p.advance()
	}
	switch k {
	case token.Semicolon:
		sp := p.afterLast()
		p.reportWithFix(diag.CSSemicolonExpected, sp, "; expected",
			fix.InsertText("insert ';'", sp, ";", "",
				fix.WithID(fix.MakeFixID(diag.CSSemicolonExpected, sp))))
	case token.RBrace:
		sp := p.afterLast()
		p.reportWithFix(diag.CSCloseBraceExpected, sp, "} expected",
			fix.InsertText("insert '}' to close block", sp, "}", "",
				fix.WithID(fix.MakeFixID(diag.CSCloseBraceExpected, sp)),
				fix.WithApplicability(diag.FixApplicabilitySafeWithHeuristics)))
	case token.Ident:
		p.err(diag.CSIdentifierExpected, "Identifier expected")
	default:
		p.err(diag.CSSyntaxError, "Syntax error, '"+k.String()+"' expected")
	}
	return syntax.MissingTok(k)
}

// expectIdent accepts an identifier; contextual keywords are identifiers.
func (p *Parser) expectIdent() *syntax.Green {
	return p.expect(token.Ident)
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

// reportWithFix reports an error that carries a text fix suggestion.
func (p *Parser) reportWithFix(code diag.Code, sp source.Span, msg string, f diag.Fix) {
	full := p.opts.Enough()
	p.opts.CurrentErrors++
	if full {
		return
	}
	diag.Emit(p.opts.Reporter, diag.NewError(code, sp, msg).WithFix(f))
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter != nil {
		full := p.opts.Enough()
		if sev == diag.SevError {
			p.opts.CurrentErrors++
		}
		if !full {
			p.opts.Reporter.Report(diag.New(sev, code, sp, msg))
			return true
		}
		return false // достигли максимального количества ошибок
	}
	return false // нет reporter - ничего не записали
}
