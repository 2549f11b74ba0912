package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/token"
)

// scanNumber: [+-]? digits [. digits*] [E [+-]? digits].
// Целое без точки и экспоненты -> Integer, иначе Real.
// ".5" и "-.5" не входят в стандарт, но принимаются как Real.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.Integer

	if b := lx.cursor.Peek(); b == '+' || b == '-' {
		lx.cursor.Bump()
	}

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		kind = token.Real
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if b := lx.cursor.Peek(); b == 'E' || b == 'e' {
		kind = token.Real
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			tok := lx.emit(token.Invalid, start)
			lx.warnLex(diag.LexBadNumber, tok.Span, "expected digit after exponent")
			return tok
		}
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	// "12AB" - число, прилипшее к имени
	if isKeywordStartByte(lx.cursor.Peek()) {
		for isKeywordContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexBadNumber, tok.Span, "malformed number")
		return tok
	}

	return lx.emit(kind, start)
}
