package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stepscan/internal/graph"
	"stepscan/internal/parser"
	"stepscan/internal/source"
)

const part = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('part.stp','2024-01-15T10:30:00',(''),(''),'','','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('origin',(0.,0.,0.));
#2 = DIRECTION('z',(0.,0.,1.));
#3 = AXIS2_PLACEMENT_3D('',#1,#2,$);
#4 = ( LENGTH_UNIT() NAMED_UNIT(*) SI_UNIT(.MILLI.,.METRE.) );
#5 = PRODUCT('it''s','\X2\00C4\X0\',*,(#3));
ENDSEC;
END-ISO-10303-21;
`

func load(t *testing.T, content string) (*parser.Exchange, *source.File, *graph.Table) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("part.stp", []byte(content)))
	x, err := parser.ParseFile(context.Background(), file, parser.Options{})
	require.NoError(t, err)
	table, err := graph.Build(context.Background(), file, x.Data, graph.Options{SkipBadEntities: true})
	require.NoError(t, err)
	return x, file, table
}

func TestInvariantsHold(t *testing.T) {
	x, file, table := load(t, part)
	require.NoError(t, CheckExchangeInvariants(x, file))
	require.NoError(t, CheckTableInvariants(table, x))
}

func TestExchangeInvariantsCatchBadSpan(t *testing.T) {
	x, file, _ := load(t, part)
	x.Data[0].Span.End = file.Len() + 10
	require.ErrorContains(t, CheckExchangeInvariants(x, file), "beyond content")
}

func TestExchangeInvariantsCatchOrder(t *testing.T) {
	x, file, _ := load(t, part)
	x.Data[0], x.Data[1] = x.Data[1], x.Data[0]
	require.ErrorContains(t, CheckExchangeInvariants(x, file), "file order")
}

func TestTableInvariantsCatchForeignEntity(t *testing.T) {
	x, _, table := load(t, part)
	x.Data = x.Data[:2]
	require.Error(t, CheckTableInvariants(table, x))
}

func TestNilInputs(t *testing.T) {
	require.Error(t, CheckExchangeInvariants(nil, nil))
	require.Error(t, CheckTableInvariants(nil, nil))
}
