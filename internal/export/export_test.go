package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepscan/internal/driver"
)

const part = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.));
#2 = CARTESIAN_POINT('',(10.,0.,0.));
#3 = POLYLINE('Linear Size.1',(#1,#2,#99));
#4 = DATUM('A','',#5,.F.,'A');
#5 = PRODUCT_DEFINITION_SHAPE('','',$);
ENDSEC;
END-ISO-10303-21;
`

func load(t *testing.T) *driver.Document {
	t.Helper()
	doc, err := driver.LoadBytes(context.Background(), "part.stp", []byte(part), driver.DefaultOptions())
	require.NoError(t, err)
	return doc
}

func readAll(t *testing.T, data []byte) (*arrow.Schema, []arrow.Record) {
	t.Helper()
	r, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	recs := make([]arrow.Record, 0, r.NumRecords())
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		require.NoError(t, err)
		rec.Retain()
		t.Cleanup(rec.Release)
		recs = append(recs, rec)
	}
	return r.Schema(), recs
}

func TestWriteEntities(t *testing.T) {
	doc := load(t)
	var buf bytes.Buffer
	require.NoError(t, WriteEntities(&buf, doc.Table))

	schema, recs := readAll(t, buf.Bytes())
	assert.True(t, schema.Equal(EntitySchema))
	require.Len(t, recs, 1)
	rec := recs[0]
	require.EqualValues(t, 5, rec.NumRows())

	ids := rec.Column(0).(*array.Uint64)
	types := rec.Column(1).(*array.String)
	attrs := rec.Column(3).(*array.String)
	assert.Equal(t, uint64(3), ids.Value(2))
	assert.Equal(t, "POLYLINE", types.Value(2))
	assert.Equal(t, "'Linear Size.1',(#1,#2,#99)", attrs.Value(2))

	refs := rec.Column(4).(*array.List)
	start, end := refs.ValueOffsets(2)
	values := refs.ListValues().(*array.Uint64)
	var got []uint64
	for i := start; i < end; i++ {
		got = append(got, values.Value(int(i)))
	}
	assert.Equal(t, []uint64{1, 2, 99}, got)
}

func TestWritePMIAndPolylines(t *testing.T) {
	doc := load(t)
	require.NotNil(t, doc.PMI)

	var buf bytes.Buffer
	require.NoError(t, WritePMI(&buf, doc.PMI))
	_, recs := readAll(t, buf.Bytes())
	require.Len(t, recs, 1)
	rows := recs[0]
	require.EqualValues(t, len(doc.PMI.Records), rows.NumRows())
	assert.True(t, rows.Column(5).IsNull(0), "a datum has no value")

	buf.Reset()
	require.NoError(t, WritePolylines(&buf, doc.PMI))
	_, recs = readAll(t, buf.Bytes())
	require.Len(t, recs, 1)
	lines := recs[0]
	require.EqualValues(t, 1, lines.NumRows())
	assert.Equal(t, int32(2), lines.Column(3).(*array.Int32).Value(0))
	assert.Equal(t, int32(1), lines.Column(4).(*array.Int32).Value(0))
	assert.True(t, lines.Column(5).IsNull(0))
	xyz := lines.Column(6).(*array.List)
	start, end := xyz.ValueOffsets(0)
	assert.EqualValues(t, 6, end-start)
}

func TestWriteDir(t *testing.T) {
	doc := load(t)
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteDir(dir, "part", doc.Table, doc.PMI)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "part"+EntitiesSuffix),
		filepath.Join(dir, "part"+PMISuffix),
		filepath.Join(dir, "part"+PolylinesSuffix),
	}, paths)
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}

	paths, err = WriteDir(dir, "bare", doc.Table, nil)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
