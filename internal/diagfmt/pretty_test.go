package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"stepscan/internal/diag"
	"stepscan/internal/source"
)

const sample = "ISO-10303-21;\nHEADER;\nFILE_NAME('x);\nENDSEC;\n"

// строка 3 начинается со смещения 22, строка открывается на 32
var stringSpan = func(id source.FileID) source.Span { return source.Span{File: id, Start: 32, End: 36} }

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/parts/test.stp", []byte(sample))
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, stringSpan(fileID), "Unterminated string literal"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/parts/test.stp"},
		{"Relative path", PathModeRelative, "parts/test.stp:3:11"},
		{"Basename only", PathModeBasename, "test.stp:3:11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			for _, want := range []string{"ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.stp", "test.stp:"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.stp", "\nfile.stp:"},
		{"Remote object - as is", "s3://bucket/some/nested/prefix/that/is/long/file.stp", "s3://bucket/some/nested/prefix/that/is/long/file.stp:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte(sample))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: 0, End: 1}, "Test warning"))

			var buf bytes.Buffer
			buf.WriteString("\n")
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.stp", []byte(sample))
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, stringSpan(fileID), "unterminated string"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	want := "test.stp:3:11: ERROR LEX1002: unterminated string\n" +
		"2 | HEADER;\n" +
		"3 | FILE_NAME('x);\n" +
		"  |           ^~~~\n" +
		"4 | ENDSEC;\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyEmptySpanGetsOneCaret(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.stp", []byte(sample))
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevWarning, diag.RecMissingEnd, source.Span{File: fileID, Start: 13, End: 13}, "missing end"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if !strings.Contains(buf.String(), "  |              ^\n") {
		t.Fatalf("expected a single caret under column 14, got:\n%s", buf.String())
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.stp", []byte(sample))

	d := diag.New(diag.SevWarning, diag.HdrBadEntity, source.Span{File: fileID, Start: 22, End: 36}, "FILE_NAME has 1 attribute")
	d = d.WithNote(source.Span{File: fileID, Start: 14, End: 20}, "header starts here")
	bag := diag.NewBag(4)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	if !strings.Contains(buf.String(), "note: test.stp:2:1: header starts here") {
		t.Fatalf("expected note with location, got:\n%s", buf.String())
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyColorAndDropped(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.stp", []byte(sample))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, stringSpan(fileID), "first"))
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString, stringSpan(fileID), "second"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true, PathMode: PathModeBasename})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI escapes with Color, got:\n%q", out)
	}
	if !strings.Contains(out, "1 more diagnostics not shown") {
		t.Fatalf("dropped diagnostics not reported:\n%s", out)
	}
}

func TestPrettyWidthClipsLines(t *testing.T) {
	fs := source.NewFileSet()
	long := "#1 = CARTESIAN_POINT('" + strings.Repeat("a", 200) + "',(0.,0.,0.));\n"
	fileID := fs.AddVirtual("long.stp", []byte(long))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.AttrInfo, source.Span{File: fileID, Start: 0, End: 2}, "info"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Width: 40})
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "1 | ") && len(line) > 44 {
			t.Fatalf("line not clipped: %q", line)
		}
	}
}
