package export

import (
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"

	"stepscan/internal/graph"
	"stepscan/internal/value"
)

// EntitySchema has one row per DATA instance in file order.
var EntitySchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "type", Type: arrow.BinaryTypes.String},
	{Name: "complex", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "attributes", Type: arrow.BinaryTypes.String},
	{Name: "refs", Type: arrow.ListOf(arrow.PrimitiveTypes.Uint64)},
	{Name: "offset", Type: arrow.PrimitiveTypes.Uint32},
}, nil)

// WriteEntities writes table as an Arrow IPC file. Attributes are stored in
// their exchange text form.
func WriteEntities(w io.Writer, table *graph.Table) error {
	bw, err := newBatchWriter(w, EntitySchema)
	if err != nil {
		return err
	}
	ids := bw.b.Field(0).(*array.Uint64Builder)
	types := bw.b.Field(1).(*array.StringBuilder)
	complexes := bw.b.Field(2).(*array.BooleanBuilder)
	attrs := bw.b.Field(3).(*array.StringBuilder)
	refs := bw.b.Field(4).(*array.ListBuilder)
	refValues := refs.ValueBuilder().(*array.Uint64Builder)
	offsets := bw.b.Field(5).(*array.Uint32Builder)

	for _, e := range table.Entities() {
		ids.Append(e.ID)
		types.Append(e.TypeLabel())
		complexes.Append(e.IsComplex())
		attrs.Append(value.Format(e.Attrs))
		refs.Append(true)
		for _, a := range e.Attrs {
			refValues.AppendValues(a.Refs(), nil)
		}
		offsets.Append(e.Span.Start)
		if err := bw.row(); err != nil {
			_ = bw.close()
			return err
		}
	}
	return bw.close()
}
