package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/token"
)

// scanKeyword сканирует стандартное ключевое слово [A-Z_][A-Z0-9_]*.
// ISO-10303-21 и END-ISO-10303-21 содержат дефисы и распознаются отдельно.
func (lx *Lexer) scanKeyword() token.Token {
	start := lx.cursor.Mark()

	switch {
	case lx.cursor.HasPrefix(token.BeginMarker):
		lx.cursor.Skip(uint32(len(token.BeginMarker)))
		return lx.emit(token.MarkerBegin, start)
	case lx.cursor.HasPrefix(token.EndMarker):
		lx.cursor.Skip(uint32(len(token.EndMarker)))
		return lx.emit(token.MarkerEnd, start)
	}

	lx.cursor.Bump()
	for isKeywordContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return lx.emit(token.Keyword, start)
}

// scanUserKeyword сканирует "!NAME".
func (lx *Lexer) scanUserKeyword() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '!'
	if !isKeywordStartByte(lx.cursor.Peek()) {
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexUnknownChar, tok.Span, "expected a name after '!'")
		return tok
	}
	for isKeywordContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return lx.emit(token.UserKeyword, start)
}
