package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover across files = %v, want %v", got, a)
	}
}

func TestSpanContainsAndInner(t *testing.T) {
	s := Span{Start: 4, End: 10}
	if !s.Contains(Span{Start: 5, End: 10}) {
		t.Error("Expected span to contain its suffix")
	}
	if s.Contains(Span{Start: 3, End: 5}) {
		t.Error("Span must not contain a range starting before it")
	}
	if got := s.Inner(1); got != (Span{Start: 5, End: 9}) {
		t.Errorf("Inner(1) = %v", got)
	}
	if got := (Span{Start: 4, End: 5}).Inner(1); !got.Empty() {
		t.Errorf("Inner on short span = %v, want empty", got)
	}
}

func TestFileText(t *testing.T) {
	f := &File{Content: []byte("#1=POINT();")}
	if got := f.Text(Span{Start: 3, End: 8}); got != "POINT" {
		t.Errorf("Text = %q", got)
	}
	if got := f.Text(Span{Start: 3, End: 80}); got != "" {
		t.Errorf("Text out of range = %q", got)
	}
}
