package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"stepscan/internal/graph"
	"stepscan/internal/header"
	"stepscan/internal/pmi"
	"stepscan/internal/value"
)

// HeaderOutput is the JSON form of the header command.
type HeaderOutput struct {
	Header  *header.Info   `json:"header"`
	Summary header.Summary `json:"summary"`
}

// FormatHeaderPretty prints the classified HEADER and the section summary.
func FormatHeaderPretty(w io.Writer, info *header.Info, sum header.Summary) {
	fmt.Fprintf(w, "Marker: %s\n", info.Marker)
	if d := info.Description; d != nil {
		fmt.Fprintf(w, "├─ FILE_DESCRIPTION\n")
		for _, line := range d.Description {
			fmt.Fprintf(w, "│  ├─ %s\n", line)
		}
		fmt.Fprintf(w, "│  └─ implementation level: %s\n", d.Level)
	}
	if n := info.Name; n != nil {
		fmt.Fprintf(w, "├─ FILE_NAME %q\n", n.Name)
		fmt.Fprintf(w, "│  ├─ time stamp: %s\n", n.TimeStamp)
		fmt.Fprintf(w, "│  ├─ author: %s\n", strings.Join(n.Author, ", "))
		fmt.Fprintf(w, "│  ├─ organization: %s\n", strings.Join(n.Organization, ", "))
		fmt.Fprintf(w, "│  ├─ preprocessor: %s\n", n.PreprocessorVersion)
		fmt.Fprintf(w, "│  ├─ originating system: %s\n", n.OriginatingSystem)
		fmt.Fprintf(w, "│  └─ authorization: %s\n", n.Authorization)
	}
	if s := info.Schema; s != nil {
		fmt.Fprintf(w, "├─ FILE_SCHEMA %s\n", strings.Join(s.Schemas, ", "))
	}
	for _, p := range info.Populations {
		fmt.Fprintf(w, "├─ FILE_POPULATION %s (%s) %s\n", p.GoverningSchema, p.DeterminationMethod, strings.Join(p.GovernedSections, ", "))
	}
	if l := info.Language; l != nil {
		fmt.Fprintf(w, "├─ SECTION_LANGUAGE %s %s\n", sectionLabel(l.Section), l.Language)
	}
	for _, c := range info.Contexts {
		fmt.Fprintf(w, "├─ SECTION_CONTEXT %s %s\n", sectionLabel(c.Section), strings.Join(c.Context, ", "))
	}
	for _, u := range info.Unknown {
		fmt.Fprintf(w, "├─ %s(%s)\n", u.Name, u.Raw)
	}
	for _, d := range info.DataSections {
		fmt.Fprintf(w, "├─ DATA %q %s\n", d.Name, strings.Join(d.Schemas, ", "))
	}

	st := sum.Statements
	fmt.Fprintf(w, "└─ %d sections: header %d, data %d, anchor %d, reference %d, signature %d, unknown %d\n",
		sum.Sections, st.Header, st.Data, st.Anchor, st.Reference, st.Signature, st.Unknown)
	if len(sum.UnknownSections) > 0 {
		fmt.Fprintf(w, "   unknown sections: %s\n", strings.Join(sum.UnknownSections, ", "))
	}
	fmt.Fprintf(w, "   %d entities\n", sum.Entities)
	for _, tc := range sum.Types {
		fmt.Fprintf(w, "   %8d  %s\n", tc.Count, tc.Type)
	}
}

func sectionLabel(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// EntityOutput is one entity in the JSON form of the entities command.
type EntityOutput struct {
	ID         uint64   `json:"id"`
	Type       string   `json:"type"`
	Parts      []string `json:"parts,omitempty"`
	Attributes string   `json:"attributes"`
	Refs       []uint64 `json:"refs,omitempty"`
}

func EntityOutputs(entities []*graph.Entity) []EntityOutput {
	out := make([]EntityOutput, 0, len(entities))
	for _, e := range entities {
		var refs []uint64
		for _, a := range e.Attrs {
			refs = append(refs, a.Refs()...)
		}
		out = append(out, EntityOutput{
			ID:         e.ID,
			Type:       e.Type,
			Parts:      e.Parts,
			Attributes: value.Format(e.Attrs),
			Refs:       refs,
		})
	}
	return out
}

// FormatEntitiesPretty prints entities in exchange syntax, one per line.
func FormatEntitiesPretty(w io.Writer, entities []*graph.Entity) {
	for _, e := range entities {
		if e.IsComplex() {
			parts := make([]string, len(e.Attrs))
			for i, a := range e.Attrs {
				parts[i] = a.String()
			}
			fmt.Fprintf(w, "#%d = (%s);\n", e.ID, strings.Join(parts, " "))
			continue
		}
		fmt.Fprintf(w, "#%d = %s(%s);\n", e.ID, e.Type, value.Format(e.Attrs))
	}
}

// PMIOutput is the JSON form of the pmi command.
type PMIOutput struct {
	*pmi.Result
	Groups     []pmi.Group     `json:"groups,omitempty"`
	GroupTypes []pmi.TypeCount `json:"group_types,omitempty"`
}

// FormatPMIPretty prints semantic records, polyline counts and stats.
// groups adds the polyline grouping by annotation name.
func FormatPMIPretty(w io.Writer, res *pmi.Result, groups bool) {
	st := res.Stats
	fmt.Fprintf(w, "Semantic PMI: %d records (%d degraded)\n", st.Records, st.Degraded)
	for _, k := range pmi.Kinds() {
		if n := st.Count(k); n > 0 {
			fmt.Fprintf(w, "  %-22s %d\n", k, n)
		}
	}
	for i := range res.Records {
		r := &res.Records[i]
		fmt.Fprintf(w, "├─ #%d %s %s", r.EntityID, r.Kind, r.TypeName)
		if r.Name != "" {
			fmt.Fprintf(w, " %q", r.Name)
		}
		if r.Value != nil {
			fmt.Fprintf(w, " = %g", r.Value.Value)
			if r.Value.Unit != "" {
				fmt.Fprintf(w, " %s", r.Value.Unit)
			}
		}
		if t := r.Tolerance; t != nil {
			if t.Type != pmi.ToleranceUnknown {
				fmt.Fprintf(w, " [%s]", t.Type)
			}
			for _, d := range t.Datums {
				fmt.Fprintf(w, " %s:%s", d.Precedence, d.Label)
			}
		}
		if r.Datum != nil && r.Datum.Label != "" {
			fmt.Fprintf(w, " datum %s", r.Datum.Label)
		}
		fmt.Fprintln(w)
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "│  └─ degraded: %s\n", issue)
		}
	}

	fmt.Fprintf(w, "Presentation PMI: %d polylines (%d partial, %d points skipped), %d annotated, %d annotation entities\n",
		st.Polylines, st.PartialPolylines, st.SkippedPoints, st.Annotated, res.AnnotationCount)
	fmt.Fprintf(w, "Associations: %d (%d degraded)\n", st.Associations, st.DegradedAssociations)
	if st.Cycles > 0 {
		fmt.Fprintf(w, "Reference cycles: %d\n", st.Cycles)
	}

	if !groups {
		return
	}
	gs := pmi.Groups(res.Polylines)
	fmt.Fprintf(w, "Groups: %d\n", len(gs))
	for _, g := range gs {
		fmt.Fprintf(w, "  %5d  %s\n", g.Count, g.Name)
	}
	for _, tc := range pmi.GroupTypes(gs) {
		fmt.Fprintf(w, "  type %-30s %d groups\n", tc.Type, tc.Groups)
	}
}
