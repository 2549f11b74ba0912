package lexer

import (
	"stepscan/internal/diag"
	"stepscan/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - пробелы, табы, \r, \f, \v коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - /* ... */ -> TriviaComment (без вложенности; если не закрыт - репорт и обрезаем на EOF)
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)

		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)

		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.scanComment()
			lx.pushTrivia(token.TriviaComment, start)

		default:
			return
		}
	}
}

// scanComment съедает /* ... */. Комментарии не вкладываются:
// первая "*/" закрывает комментарий.
func (lx *Lexer) scanComment() {
	start := lx.cursor.Mark()
	lx.cursor.Skip(2)
	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Skip(2)
			return
		}
		lx.cursor.Bump()
	}
	lx.errLex(diag.LexUnterminatedComment, lx.cursor.SpanFrom(start), "unterminated comment")
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	if !lx.opts.KeepTrivia {
		return
	}
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}
