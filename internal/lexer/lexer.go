package lexer

import (
	"stepscan/internal/source"
	"stepscan/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
}

// New lexes the whole file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// NewRange lexes only the bytes covered by span. Spans keep file offsets.
func NewRange(file *source.File, span source.Span, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewRangeCursor(file, span),
		opts:   opts,
	}
}

// Next возвращает следующий значимый токен.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{
			Kind: token.EOF,
			Span: lx.emptySpan(),
		}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isKeywordStartByte(ch):
		tok = lx.scanKeyword()

	case ch == '!':
		tok = lx.scanUserKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case (ch == '+' || ch == '-') && lx.isNumberAfterSign():
		tok = lx.scanNumber()

	case ch == '.':
		if isDec(lx.cursor.PeekAt(1)) {
			tok = lx.scanNumber()
		} else {
			tok = lx.scanEnum()
		}

	case ch == '\'':
		tok = lx.scanString()

	case ch == '"':
		tok = lx.scanBinary()

	case ch == '#' || ch == '@':
		tok = lx.scanInstanceName()

	case ch == '<':
		tok = lx.scanAnchor()

	default:
		tok = lx.scanPunct()
	}

	if lx.opts.KeepTrivia && len(lx.hold) > 0 {
		tok.Leading = lx.hold
		lx.hold = nil
	}
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

// Offset returns the position right after the last consumed token
// (or after the peeked one when a lookahead is buffered).
func (lx *Lexer) Offset() uint32 {
	return lx.cursor.Off
}

// File returns the file being lexed.
func (lx *Lexer) File() *source.File {
	return lx.file
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) emit(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
