package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/token"
)

// scanString сканирует '...'. Кавычка внутри удваивается: ''.
// Строка может переноситься на следующие строки файла.
// Управляющие последовательности (\X2\, \S\ ...) не декодируются здесь.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '\'' {
			lx.cursor.Bump()
			if lx.cursor.Peek() == '\'' {
				lx.cursor.Bump()
				continue
			}
			return lx.emit(token.String, start)
		}
		lx.bumpRune()
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanBinary сканирует "hex". Первая цифра - число неиспользуемых бит (0..3).
func (lx *Lexer) scanBinary() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening "
	first := lx.cursor.Peek()
	for isHex(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	closed := lx.cursor.Eat('"')
	if !closed {
		// до закрывающей кавычки или конца строки
		for !lx.cursor.EOF() && lx.cursor.Peek() != '"' && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		lx.cursor.Eat('"')
	}
	if !closed || first < '0' || first > '3' {
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexBadBinary, tok.Span, "malformed binary literal")
		return tok
	}
	return lx.emit(token.Binary, start)
}
