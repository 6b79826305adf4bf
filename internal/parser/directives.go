package parser

import (
	"codefix/internal/diag"
	"codefix/internal/token"
)

var knownDirectives = map[string]bool{
	"if": true, "elif": true, "else": true, "endif": true,
	"region": true, "endregion": true, "pragma": true,
	"define": true, "undef": true, "nullable": true,
	"warning": true, "error": true, "line": true,
}

// checkDirectives validates the preprocessor lines kept as trivia: unknown
// names, stray #elif/#else/#endif, and #if blocks left open at end of file.
// Conditional sections are not evaluated; both branches stay in the tree.
func (p *Parser) checkDirectives() {
	depth := 0
	var lastIf token.Trivia
	visit := func(ts []token.Trivia) {
		for _, tv := range ts {
			if tv.Kind != token.TriviaDirective || tv.Directive == nil {
				continue
			}
			switch name := tv.Directive.Name; {
			case !knownDirectives[name]:
				p.report(diag.CSUnexpectedPreprocessor, diag.SevError, tv.Span, "Preprocessor directive expected")
			case name == "if":
				depth++
				lastIf = tv
			case name == "elif", name == "else":
				if depth == 0 {
					p.report(diag.CSUnexpectedPreprocessor, diag.SevError, tv.Span, "Unexpected preprocessor directive")
				}
			case name == "endif":
				if depth == 0 {
					p.report(diag.CSUnexpectedPreprocessor, diag.SevError, tv.Span, "Unexpected preprocessor directive")
					continue
				}
				depth--
			}
		}
	}
	for _, tok := range p.toks {
		visit(tok.Leading)
		visit(tok.Trailing)
	}
	if depth > 0 {
		p.report(diag.CSEndifExpected, diag.SevError, lastIf.Span, "#endif directive expected")
	}
}
