package pmi

import (
	"fmt"
	"strings"

	"stepscan/internal/diag"
	"stepscan/internal/graph"
	"stepscan/internal/source"
)

// Diagnose reports degraded records and associations, partial polylines
// and cut cycles as warnings.
func Diagnose(res *Result, table *graph.Table, r diag.Reporter) {
	if r == nil {
		return
	}
	span := func(id uint64) source.Span {
		if e, ok := table.Get(id); ok {
			return e.Span
		}
		return source.Span{File: table.File().ID}
	}
	for i := range res.Records {
		rec := &res.Records[i]
		if !rec.Degraded {
			continue
		}
		diag.ReportWarning(r, diag.PmiDegradedRecord, span(rec.EntityID),
			fmt.Sprintf("%s #%d is incomplete: %s", rec.Kind, rec.EntityID, strings.Join(rec.Issues, "; "))).Emit()
	}
	for i := range res.Polylines {
		p := &res.Polylines[i]
		if !p.Partial {
			continue
		}
		msg := fmt.Sprintf("polyline #%d: %d of %d points do not resolve", p.EntityID, p.Missing, p.Missing+len(p.Points))
		if len(p.Issues) > 0 {
			msg = fmt.Sprintf("polyline #%d is incomplete: %s", p.EntityID, strings.Join(p.Issues, "; "))
		}
		diag.ReportWarning(r, diag.PmiPartialPolyline, span(p.EntityID), msg).Emit()
	}
	for i := range res.Associations {
		a := &res.Associations[i]
		if !a.Degraded {
			continue
		}
		diag.ReportWarning(r, diag.PmiDegradedRecord, span(a.EntityID),
			fmt.Sprintf("association #%d is incomplete: %s", a.EntityID, strings.Join(a.Issues, "; "))).Emit()
	}
	if res.Stats.Cycles > 0 {
		diag.ReportWarning(r, diag.PmiCycle, source.Span{File: table.File().ID},
			fmt.Sprintf("%d reference cycles cut while walking annotations", res.Stats.Cycles)).Emit()
	}
}
