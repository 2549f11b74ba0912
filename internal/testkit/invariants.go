// Package testkit holds structural checks shared by package tests and fuzz
// targets.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"stepscan/internal/graph"
	"stepscan/internal/parser"
	"stepscan/internal/source"
	"stepscan/internal/value"
)

// CheckExchangeInvariants runs a minimal set of span invariants on a split file:
// 1) every record span is non-empty and within file content bounds
// 2) ArgsSpan lies inside the record span
// 3) DATA records have a positive id and statements come in file order
// 4) SectionIndex points into Sections or is -1
func CheckExchangeInvariants(x *parser.Exchange, sf *source.File) error {
	if x == nil || sf == nil {
		return fmt.Errorf("nil exchange or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	groups := []struct {
		name string
		recs []parser.RawRecord
	}{
		{"header", x.Header},
		{"data", x.Data},
		{"other", x.Other},
		{"unknown", x.Unknown},
	}
	for _, g := range groups {
		var prev uint32
		for i := range g.recs {
			r := &g.recs[i]
			sp := r.Span
			if sp.End <= sp.Start {
				return fmt.Errorf("%s record %d: empty span %v", g.name, i, sp)
			}
			if sp.File != sf.ID {
				return fmt.Errorf("%s record %d: span file mismatch: got=%d want=%d", g.name, i, sp.File, sf.ID)
			}
			if sp.End > lenContent {
				return fmt.Errorf("%s record %d: span end beyond content: %d > %d", g.name, i, sp.End, lenContent)
			}
			if sp.Start < prev {
				return fmt.Errorf("%s record %d: out of file order", g.name, i)
			}
			prev = sp.Start
			if !r.ArgsSpan.Empty() && !sp.Contains(r.ArgsSpan) {
				return fmt.Errorf("%s record %d: args span %v outside record span %v", g.name, i, r.ArgsSpan, sp)
			}
			if r.SectionIndex < -1 || r.SectionIndex >= len(x.Sections) {
				return fmt.Errorf("%s record %d: section index %d out of range", g.name, i, r.SectionIndex)
			}
			if g.name == "data" && r.ID == 0 {
				return fmt.Errorf("data record %d has no instance id", i)
			}
		}
	}
	return nil
}

// CheckTableInvariants verifies that table holds exactly the DATA records of x:
// 1) one entity per distinct instance id, in file order
// 2) every entity resolves to itself
// 3) serialized attributes parse back and serialize to the same text
func CheckTableInvariants(table *graph.Table, x *parser.Exchange) error {
	if table == nil || x == nil {
		return fmt.Errorf("nil table or exchange")
	}
	seen := make(map[uint64]bool, len(x.Data))
	for i := range x.Data {
		seen[x.Data[i].ID] = true
	}
	if table.Len() > len(seen) {
		return fmt.Errorf("table has %d entities, file has %d distinct ids", table.Len(), len(seen))
	}

	var prev uint32
	for i, e := range table.Entities() {
		if !seen[e.ID] {
			return fmt.Errorf("entity #%d is not a DATA record", e.ID)
		}
		if i > 0 && e.Span.Start < prev {
			return fmt.Errorf("entity #%d out of file order", e.ID)
		}
		prev = e.Span.Start
		got, err := table.Resolve(e.ID)
		if err != nil || got != e {
			return fmt.Errorf("entity #%d does not resolve to itself: %v", e.ID, err)
		}
		if e.IsComplex() {
			continue
		}
		text := value.Format(e.Attrs)
		back, err := value.ParseText(text)
		if err != nil {
			return fmt.Errorf("entity #%d: %q does not parse back: %w", e.ID, text, err)
		}
		if len(back) != len(e.Attrs) {
			return fmt.Errorf("entity #%d: %d attributes after round trip, want %d", e.ID, len(back), len(e.Attrs))
		}
		if again := value.Format(back); again != text {
			return fmt.Errorf("entity #%d: serialization is not stable: %q != %q", e.ID, again, text)
		}
	}
	return nil
}
