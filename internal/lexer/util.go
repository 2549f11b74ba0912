package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// bumpRune съедает одну руну (или один байт невалидного UTF-8).
func (lx *Lexer) bumpRune() {
	if lx.cursor.EOF() {
		return
	}
	if b := lx.cursor.Peek(); b < utf8.RuneSelf {
		lx.cursor.Bump()
		return
	}
	_, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Skip(usz)
}

// Standard keywords are upper case in Part 21; lower case is accepted since
// some exporters write it.
func isKeywordStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isKeywordContinueByte(b byte) bool {
	return isKeywordStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'f') ||
		(b >= 'A' && b <= 'F')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v'
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// "+1", "-.5", "-3."
func (lx *Lexer) isNumberAfterSign() bool {
	next := lx.cursor.PeekAt(1)
	return isDec(next) || (next == '.' && isDec(lx.cursor.PeekAt(2)))
}
