package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stepscan/internal/diag"
	"stepscan/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, pal)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s\n", pal.note.Sprintf("... %d more diagnostics not shown", n))
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	sev := pal.severity(d.Severity).Sprint(d.Severity.String())
	code := pal.code.Sprint(d.Code.ID())
	if !validSpan(fs, d.Primary) {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
		return
	}
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", formatPath(f, fs, opts.PathMode), start.Line, start.Col, sev, code, d.Message)
	writeSnippet(w, f, d.Primary, start.Line, opts, pal)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if !validSpan(fs, n.Span) {
			fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
			continue
		}
		nf := fs.Get(n.Span.File)
		pos, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), formatPath(nf, fs, opts.PathMode), pos.Line, pos.Col, n.Msg)
	}
}

func writeSnippet(w io.Writer, f *source.File, span source.Span, line uint32, opts PrettyOpts, pal palette) {
	if len(f.Content) == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if line > ctx {
		first = line - ctx
	}
	last := min(line+ctx, max(lineCount(f), line))
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := clip(expandTabs(f.GetLine(ln)), opts.Width)
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != line {
			continue
		}
		lineStart := lineStartOffset(f, ln)
		lineEnd := lineEndOffset(f, ln)
		from := min(max(span.Start, lineStart), lineEnd)
		to := min(max(span.End, from), lineEnd)
		indent := runewidth.StringWidth(expandTabs(string(f.Content[lineStart:from])))
		width := max(runewidth.StringWidth(expandTabs(string(f.Content[from:to]))), 1)
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", indent), pal.caret.Sprint(marker))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
