package lexer

import (
	"codefix/internal/diag"
	"codefix/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil: ошибки игнорируются, лексинг продолжается
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	diag.Emit(lx.opts.Reporter, diag.NewError(code, sp, msg))
}
