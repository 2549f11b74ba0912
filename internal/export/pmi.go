package export

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"stepscan/internal/pmi"
)

var PMISchema = arrow.NewSchema([]arrow.Field{
	{Name: "entity_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "kind", Type: arrow.BinaryTypes.String},
	{Name: "family", Type: arrow.BinaryTypes.String},
	{Name: "type_name", Type: arrow.BinaryTypes.String},
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "unit", Type: arrow.BinaryTypes.String},
	{Name: "tolerance_type", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "datums", Type: arrow.BinaryTypes.String},
	{Name: "degraded", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "issues", Type: arrow.BinaryTypes.String},
}, nil)

var PolylineSchema = arrow.NewSchema([]arrow.Field{
	{Name: "entity_id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "strip", Type: arrow.PrimitiveTypes.Int32},
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "points", Type: arrow.PrimitiveTypes.Int32},
	{Name: "missing", Type: arrow.PrimitiveTypes.Int32},
	{Name: "occurrence_id", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "xyz", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
}, nil)

// WritePMI writes one row per semantic record.
func WritePMI(w io.Writer, res *pmi.Result) error {
	bw, err := newBatchWriter(w, PMISchema)
	if err != nil {
		return err
	}
	ids := bw.b.Field(0).(*array.Uint64Builder)
	kinds := bw.b.Field(1).(*array.StringBuilder)
	families := bw.b.Field(2).(*array.StringBuilder)
	typeNames := bw.b.Field(3).(*array.StringBuilder)
	names := bw.b.Field(4).(*array.StringBuilder)
	values := bw.b.Field(5).(*array.Float64Builder)
	units := bw.b.Field(6).(*array.StringBuilder)
	tolTypes := bw.b.Field(7).(*array.StringBuilder)
	datums := bw.b.Field(8).(*array.StringBuilder)
	degraded := bw.b.Field(9).(*array.BooleanBuilder)
	issues := bw.b.Field(10).(*array.StringBuilder)

	for i := range res.Records {
		r := &res.Records[i]
		ids.Append(r.EntityID)
		kinds.Append(r.Kind.String())
		families.Append(r.Family.String())
		typeNames.Append(r.TypeName)
		names.Append(r.Name)
		if r.Value != nil {
			values.Append(r.Value.Value)
			units.Append(r.Value.Unit)
		} else {
			values.AppendNull()
			units.Append("")
		}
		if r.Tolerance != nil {
			tolTypes.Append(r.Tolerance.Type.String())
			labels := make([]string, 0, len(r.Tolerance.Datums))
			for _, d := range r.Tolerance.Datums {
				labels = append(labels, d.Label)
			}
			datums.Append(strings.Join(labels, "|"))
		} else {
			tolTypes.AppendNull()
			datums.Append("")
		}
		degraded.Append(r.Degraded)
		issues.Append(strings.Join(r.Issues, "; "))
		if err := bw.row(); err != nil {
			_ = bw.close()
			return err
		}
	}
	return bw.close()
}

// WritePolylines writes one row per polyline; xyz holds the flattened points.
func WritePolylines(w io.Writer, res *pmi.Result) error {
	bw, err := newBatchWriter(w, PolylineSchema)
	if err != nil {
		return err
	}
	ids := bw.b.Field(0).(*array.Uint64Builder)
	strips := bw.b.Field(1).(*array.Int32Builder)
	names := bw.b.Field(2).(*array.StringBuilder)
	points := bw.b.Field(3).(*array.Int32Builder)
	missing := bw.b.Field(4).(*array.Int32Builder)
	occurrences := bw.b.Field(5).(*array.Uint64Builder)
	xyz := bw.b.Field(6).(*array.ListBuilder)
	coords := xyz.ValueBuilder().(*array.Float64Builder)

	for i := range res.Polylines {
		p := &res.Polylines[i]
		counts, err := int32s(p.Strip, len(p.Points), p.Missing)
		if err != nil {
			_ = bw.close()
			return fmt.Errorf("polyline #%d: %w", p.EntityID, err)
		}
		ids.Append(p.EntityID)
		strips.Append(counts[0])
		names.Append(p.Name)
		points.Append(counts[1])
		missing.Append(counts[2])
		if p.Annotation != nil {
			occurrences.Append(p.Annotation.OccurrenceID)
		} else {
			occurrences.AppendNull()
		}
		xyz.Append(true)
		for _, pt := range p.Points {
			coords.Append(pt.X)
			coords.Append(pt.Y)
			coords.Append(pt.Z)
		}
		if err := bw.row(); err != nil {
			_ = bw.close()
			return err
		}
	}
	return bw.close()
}

func int32s(vals ...int) ([3]int32, error) {
	var out [3]int32
	for i, v := range vals {
		c, err := safecast.Conv[int32](v)
		if err != nil {
			return out, err
		}
		out[i] = c
	}
	return out, nil
}
