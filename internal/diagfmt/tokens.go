package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"stepscan/internal/source"
	"stepscan/internal/token"
)

// TokenOutput is one token of the tokenize command in JSON form.
type TokenOutput struct {
	Kind    string         `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Line    uint32         `json:"line"`
	Col     uint32         `json:"col"`
	Span    source.Span    `json:"span"`
	Leading []TriviaOutput `json:"leading,omitempty"`
}

// TriviaOutput keeps comment text; whitespace is reported by kind only.
type TriviaOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// tokenRows stops at the first EOF token.
func tokenRows(tokens []token.Token, fs *source.FileSet) []TokenOutput {
	rows := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		row := TokenOutput{Kind: tok.Kind.String(), Text: tok.Text, Span: tok.Span}
		if validSpan(fs, tok.Span) {
			pos, _ := fs.Resolve(tok.Span)
			row.Line, row.Col = pos.Line, pos.Col
		}
		for _, tr := range tok.Leading {
			out := TriviaOutput{Kind: tr.Kind.String()}
			if tr.Kind == token.TriviaComment {
				out.Text = tr.Text
			}
			row.Leading = append(row.Leading, out)
		}
		rows = append(rows, row)
		if tok.Kind == token.EOF {
			break
		}
	}
	return rows
}

// FormatTokensPretty печатает по токену на строку: номер, позиция, вид, текст
// и ведущие trivia, в конце итог.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	rows := tokenRows(tokens, fs)
	comments := 0
	for i, row := range rows {
		if _, err := fmt.Fprintf(w, "%5d  %-9s %-13s", i+1, fmt.Sprintf("%d:%d", row.Line, row.Col), row.Kind); err != nil {
			return err
		}
		if row.Text != "" {
			fmt.Fprintf(w, " %q", row.Text)
		}
		if len(row.Leading) > 0 {
			kinds := make([]string, len(row.Leading))
			for j, tr := range row.Leading {
				kinds[j] = tr.Kind
				if tr.Text != "" {
					comments++
				}
			}
			fmt.Fprintf(w, "  (leading: %s)", strings.Join(kinds, ", "))
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "%d tokens, %d comments\n", len(rows), comments)
	return err
}

func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	return WriteJSON(w, tokenRows(tokens, fs))
}
