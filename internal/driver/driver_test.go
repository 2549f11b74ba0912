package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepscan/internal/diag"
	"stepscan/internal/graph"
	"stepscan/internal/parser"
	"stepscan/internal/token"
)

const part = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('bracket'),'2;1');
FILE_NAME('bracket.stp','2024-01-15T10:30:00',('author'),('org'),'pre 1.0','sys','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.));
#2 = DIRECTION('',(0.,0.,1.));
#3 = VECTOR('',#2,10.);
ENDSEC;
END-ISO-10303-21;
`

const unbalanced = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.);
ENDSEC;
END-ISO-10303-21;
`

const duplicated = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.));
#1 = DIRECTION('',(0.,0.,1.));
ENDSEC;
END-ISO-10303-21;
`

func TestLoadBytes(t *testing.T) {
	var events []PhaseEvent
	opts := DefaultOptions()
	opts.Observer = func(ev PhaseEvent) { events = append(events, ev) }

	doc, err := LoadBytes(context.Background(), "bracket.stp", []byte(part), opts)
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Table.Len())
	assert.Equal(t, []string{"AUTOMOTIVE_DESIGN"}, doc.Header.Schemas())
	assert.Equal(t, 3, doc.Summary.Entities)
	assert.Zero(t, doc.Bag.Count(diag.SevError))
	require.NotNil(t, doc.PMI)
	assert.Empty(t, doc.PMI.Records)

	require.Len(t, doc.Timing.Phases, 4)
	names := make([]string, 0, 4)
	for _, p := range doc.Timing.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{PhaseRecords, PhaseAttributes, PhaseHeader, PhasePMI}, names)

	require.Len(t, events, 8)
	for i := 0; i < len(events); i += 2 {
		assert.Equal(t, PhaseStart, events[i].Status)
		assert.Equal(t, PhaseEnd, events[i+1].Status)
		assert.Equal(t, events[i].Name, events[i+1].Name)
	}

	vec, err := doc.Table.ResolveTyped(3, "VECTOR")
	require.NoError(t, err)
	dir, err := doc.Table.Deref(vec.Attrs[1], "DIRECTION")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), dir.ID)
}

func TestLoadSkipPMI(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipPMI = true
	doc, err := LoadBytes(context.Background(), "bracket.stp", []byte(part), opts)
	require.NoError(t, err)
	assert.Nil(t, doc.PMI)
	assert.Len(t, doc.Timing.Phases, 3)
}

func TestLoadFatalErrors(t *testing.T) {
	_, err := LoadBytes(context.Background(), "bad.stp", []byte(unbalanced), DefaultOptions())
	var mre *parser.MalformedRecordError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, uint64(1), mre.ID)

	_, err = LoadBytes(context.Background(), "dup.stp", []byte(duplicated), DefaultOptions())
	var dup *graph.DuplicateInstanceIDError
	require.ErrorAs(t, err, &dup)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc, err := LoadBytes(ctx, "bracket.stp", []byte(part), DefaultOptions())
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.stp"), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromDisk(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bracket.stp", part)
	doc, err := Load(context.Background(), path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Table.Len())
	assert.Same(t, doc.File, doc.FileSet.Get(doc.File.ID))
}

func TestTokenize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bracket.stp", part)
	res, err := Tokenize(path, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Tokens)
	assert.Equal(t, token.EOF, res.Tokens[len(res.Tokens)-1].Kind)
	assert.Zero(t, res.Bag.Len())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
