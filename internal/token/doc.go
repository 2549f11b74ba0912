// Package token defines lexical token kinds and trivia for ISO-10303-21 exchange files.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Begin..End).
//   - Signs belong to numeric literals: "-1.5" is one Real token.
//   - Section keywords (HEADER, DATA, ENDSEC, ...) are plain Keyword tokens;
//     the record splitter decides by position whether they open a section.
//   - Comments and whitespace are never in the main stream, only in Token.Leading.
package token
