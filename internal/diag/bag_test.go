package diag

import (
	"testing"

	"stepscan/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 4; i++ {
		b.Add(NewWarning(AttrParseFailed, source.Span{Start: uint32(i)}, "bad"))
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	if b.Dropped() != 2 {
		t.Fatalf("Dropped = %d, want 2", b.Dropped())
	}
	if b.HasErrors() {
		t.Fatal("warnings must not count as errors")
	}
	if !b.HasWarnings() {
		t.Fatal("expected warnings")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning(HdrUnknownEntity, source.Span{Start: 10, End: 12}, "x"))
	b.Add(NewError(AttrParseFailed, source.Span{Start: 2, End: 4}, "y"))
	b.Add(NewError(AttrParseFailed, source.Span{Start: 2, End: 4}, "y"))
	b.Add(NewWarning(LexUnknownChar, source.Span{Start: 2, End: 4}, "z"))

	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("Len after Dedup = %d, want 3", b.Len())
	}
	b.Sort()
	items := b.Items()
	if items[0].Code != AttrParseFailed || items[1].Code != LexUnknownChar || items[2].Code != HdrUnknownEntity {
		t.Fatalf("unexpected order: %v, %v, %v", items[0].Code, items[1].Code, items[2].Code)
	}
	if b.Count(SevError) != 1 {
		t.Fatalf("Count(SevError) = %d", b.Count(SevError))
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{LexUnterminatedString, "LEX1002"},
		{RecUnbalancedParens, "REC2005"},
		{AttrParseFailed, "ATT3001"},
		{GraphDuplicateID, "GRF4001"},
		{HdrMissingEntity, "HDR5001"},
		{PmiPartialPolyline, "PMI6002"},
		{IOLoadFailed, "IO7001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(1999).Title() != "Unknown error" {
		t.Errorf("unknown code title = %q", Code(1999).Title())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, RecMissingEquals, source.Span{}, "missing '='").
		WithNote(source.Span{Start: 1, End: 2}, "instance name here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	if len(b.Items()[0].Notes) != 1 {
		t.Fatalf("notes = %d", len(b.Items()[0].Notes))
	}
}

func TestSeverityLabels(t *testing.T) {
	want := map[Severity][2]string{
		SevInfo:    {"INFO", "info"},
		SevWarning: {"WARNING", "warning"},
		SevError:   {"ERROR", "error"},
		Severity(9): {"UNKNOWN", "unknown"},
	}
	for sev, names := range want {
		if sev.String() != names[0] || sev.Label() != names[1] {
			t.Errorf("%d: got %s/%s, want %s/%s", sev, sev.String(), sev.Label(), names[0], names[1])
		}
	}
	if len(Severities) != 3 || Severities[0] != SevInfo || Severities[2] != SevError {
		t.Errorf("Severities = %v", Severities)
	}
}
