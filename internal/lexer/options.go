package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/source"
)

type Options struct {
	// Reporter может быть nil: тогда ошибки игнорируем, но продолжаем лексить.
	Reporter diag.Reporter
	// KeepTrivia attaches whitespace and comments to Token.Leading.
	// Record splitting and value parsing do not need them.
	KeepTrivia bool
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func (lx *Lexer) warnLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevWarning, sp, msg, nil)
	}
}
