package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/token"
)

// scanEnum сканирует .NAME. ; точка без имени - ошибка.
func (lx *Lexer) scanEnum() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '.'
	if !isKeywordStartByte(lx.cursor.Peek()) {
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexBadEnum, tok.Span, "expected enumeration name after '.'")
		return tok
	}
	for isKeywordContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if !lx.cursor.Eat('.') {
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexBadEnum, tok.Span, "enumeration is not closed by '.'")
		return tok
	}
	return lx.emit(token.Enum, start)
}

// scanInstanceName сканирует #123 (entity) и @123 / @NAME (value instance).
func (lx *Lexer) scanInstanceName() token.Token {
	start := lx.cursor.Mark()
	sigil := lx.cursor.Bump()
	kind := token.Ref
	if sigil == '@' {
		kind = token.ValueRef
	}

	switch {
	case isDec(lx.cursor.Peek()):
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	case isKeywordStartByte(lx.cursor.Peek()):
		// #NAME - константы экземпляров (Ed.3)
		for isKeywordContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	default:
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexBadReference, tok.Span, "expected digits after '"+string(sigil)+"'")
		return tok
	}
	return lx.emit(kind, start)
}

// scanAnchor сканирует <uri> из секций ANCHOR/REFERENCE.
func (lx *Lexer) scanAnchor() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '<'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '>' {
			lx.cursor.Bump()
			return lx.emit(token.Anchor, start)
		}
		if b == '\n' || b == ';' {
			break
		}
		lx.bumpRune()
	}
	tok := lx.emit(token.Invalid, start)
	lx.warnLex(diag.LexUnknownChar, tok.Span, "anchor name is not closed by '>'")
	return tok
}

func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Peek()
	lx.bumpRune()
	switch ch {
	case '(':
		return lx.emit(token.LParen, start)
	case ')':
		return lx.emit(token.RParen, start)
	case ',':
		return lx.emit(token.Comma, start)
	case ';':
		return lx.emit(token.Semicolon, start)
	case '=':
		return lx.emit(token.Equals, start)
	case '$':
		return lx.emit(token.Dollar, start)
	case '*':
		return lx.emit(token.Star, start)
	case '/':
		return lx.emit(token.Slash, start)
	default:
		tok := lx.emit(token.Invalid, start)
		lx.warnLex(diag.LexUnknownChar, tok.Span, "unknown character")
		return tok
	}
}
