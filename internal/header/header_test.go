package header

import (
	"context"
	"reflect"
	"testing"

	"stepscan/internal/diag"
	"stepscan/internal/graph"
	"stepscan/internal/parser"
	"stepscan/internal/source"
)

func load(t *testing.T, content string) (*parser.Exchange, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("h.stp", []byte(content)))
	x, err := parser.ParseFile(context.Background(), file, parser.Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return x, file
}

func classify(t *testing.T, content string) (*Info, *diag.Bag) {
	t.Helper()
	x, file := load(t, content)
	bag := diag.NewBag(0)
	return Classify(x, file, diag.BagReporter{Bag: bag}), bag
}

const fullHeader = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('simple part','second line'),'2;1');
FILE_NAME('part.stp','2024-01-15T10:30:00',('author'),('org','dept'),'pre 1.0','sys','');
FILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF { 1 0 10303 442 1 1 4 }'));
FILE_POPULATION('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF','',('shape'));
FILE_POPULATION('AP214','',$);
SECTION_LANGUAGE('ENGLISH');
SECTION_CONTEXT('shape',('manufacturing'));
VENDOR_EXTENSION('x',1);
ENDSEC;
DATA('shape',('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));
#1 = CARTESIAN_POINT('',(0.,0.,0.));
#2 = CARTESIAN_POINT('',(1.,0.,0.));
#3 = DIRECTION('',(0.,0.,1.));
ENDSEC;
DATA;
#4 = CARTESIAN_POINT('',(1.,1.,0.));
ENDSEC;
VENDOR_NOTES;
FOO(1);
ENDSEC;
END-ISO-10303-21;
`

func TestClassifyFullHeader(t *testing.T) {
	info, bag := classify(t, fullHeader)

	if info.Marker != "ISO-10303-21" {
		t.Errorf("marker = %q", info.Marker)
	}
	if info.Description == nil {
		t.Fatal("FILE_DESCRIPTION missing")
	}
	if want := []string{"simple part", "second line"}; !reflect.DeepEqual(info.Description.Description, want) {
		t.Errorf("description = %q", info.Description.Description)
	}
	lvl := info.Description.Level
	if !lvl.Valid || lvl.FileEdition != 2 || lvl.MinEdition != 1 {
		t.Errorf("level = %+v", lvl)
	}

	name := info.Name
	if name == nil || name.Name != "part.stp" || name.TimeStamp != "2024-01-15T10:30:00" {
		t.Fatalf("FILE_NAME = %+v", name)
	}
	if !reflect.DeepEqual(name.Organization, []string{"org", "dept"}) || name.Authorization != "" {
		t.Errorf("FILE_NAME = %+v", name)
	}
	if got := info.Schemas(); len(got) != 1 || got[0] != "AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF { 1 0 10303 442 1 1 4 }" {
		t.Errorf("schemas = %q", got)
	}

	if len(info.Populations) != 2 {
		t.Fatalf("populations = %+v", info.Populations)
	}
	if !reflect.DeepEqual(info.Populations[0].GovernedSections, []string{"shape"}) || info.Populations[1].GovernedSections != nil {
		t.Errorf("populations = %+v", info.Populations)
	}
	if info.Language == nil || info.Language.Language != "ENGLISH" || info.Language.Section != "" {
		t.Errorf("language = %+v", info.Language)
	}
	if len(info.Contexts) != 1 || info.Contexts[0].Section != "shape" || info.Contexts[0].Context[0] != "manufacturing" {
		t.Errorf("contexts = %+v", info.Contexts)
	}
	if len(info.Unknown) != 1 || info.Unknown[0].Name != "VENDOR_EXTENSION" || info.Unknown[0].Raw != "'x',1" {
		t.Errorf("unknown = %+v", info.Unknown)
	}
	if len(info.DataSections) != 1 || info.DataSections[0].Name != "shape" {
		t.Errorf("data sections = %+v", info.DataSections)
	}

	// единственное замечание - неизвестная запись заголовка
	if bag.Len() != 1 || bag.Items()[0].Code != diag.HdrUnknownEntity {
		t.Errorf("diagnostics = %+v", bag.Items())
	}
}

func TestOptionalEntitiesAbsent(t *testing.T) {
	info, bag := classify(t, `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));
ENDSEC;
DATA;
ENDSEC;
END-ISO-10303-21;
`)
	if info.Populations != nil || info.Language != nil || info.Contexts != nil || info.Unknown != nil {
		t.Errorf("optional parts must be absent: %+v", info)
	}
	if lvl := info.Description.Level; lvl.FileEdition != 1 || lvl.MinEdition != 1 {
		t.Errorf("level = %+v", lvl)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestMissingRequiredEntitiesWarn(t *testing.T) {
	info, bag := classify(t, `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
ENDSEC;
DATA;
ENDSEC;
END-ISO-10303-21;
`)
	if info.Name != nil || info.Schema != nil || info.Schemas() != nil {
		t.Errorf("FILE_NAME/FILE_SCHEMA must be nil: %+v", info)
	}
	if bag.Len() != 2 || bag.HasErrors() {
		t.Fatalf("want 2 warnings, got %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.HdrMissingEntity || d.Severity != diag.SevWarning {
			t.Errorf("diagnostic = %+v", d)
		}
	}
}

func TestBadHeaderEntities(t *testing.T) {
	_, bag := classify(t, `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'two;one');
FILE_NAME('a','b');
FILE_SCHEMA((1 2));
ENDSEC;
DATA;
ENDSEC;
END-ISO-10303-21;
`)
	codes := map[diag.Code]int{}
	for _, d := range bag.Items() {
		codes[d.Code]++
	}
	if codes[diag.HdrBadImplementationLevel] != 1 {
		t.Errorf("bad level not reported: %+v", bag.Items())
	}
	// FILE_NAME arity + FILE_SCHEMA parse error
	if codes[diag.HdrBadEntity] != 2 {
		t.Errorf("bad entities = %d: %+v", codes[diag.HdrBadEntity], bag.Items())
	}
	// FILE_SCHEMA не разобрался, значит он отсутствует
	if codes[diag.HdrMissingEntity] != 1 {
		t.Errorf("missing = %d", codes[diag.HdrMissingEntity])
	}
}

func TestParseImplementationLevel(t *testing.T) {
	tests := []struct {
		in         string
		file, min  int
		valid      bool
		stringForm string
	}{
		{"2;1", 2, 1, true, "Edition 2 (min: 1)"},
		{"1", 1, 1, true, "Edition 1 (min: 1)"},
		{" 3;1 ", 3, 1, true, "Edition 3 (min: 1)"},
		{"", 0, 0, false, ""},
		{"2;", 0, 0, false, "2;"},
		{"-1", 0, 0, false, "-1"},
		{"+2;1", 0, 0, false, "+2;1"},
		{"4.0", 0, 0, false, "4.0"},
	}
	for _, tt := range tests {
		got := ParseImplementationLevel(tt.in)
		if got.Valid != tt.valid || got.FileEdition != tt.file || got.MinEdition != tt.min {
			t.Errorf("ParseImplementationLevel(%q) = %+v", tt.in, got)
		}
		if got.String() != tt.stringForm {
			t.Errorf("String(%q) = %q, want %q", tt.in, got.String(), tt.stringForm)
		}
	}
}

func TestSummarize(t *testing.T) {
	x, file := load(t, fullHeader)
	table, err := graph.Build(context.Background(), file, x.Data, graph.Options{SkipBadEntities: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := Summarize(x, table)
	want := SectionCounts{Header: 8, Data: 4, Unknown: 1}
	if s.Statements != want {
		t.Errorf("statements = %+v, want %+v", s.Statements, want)
	}
	if s.Sections != 4 || !reflect.DeepEqual(s.UnknownSections, []string{"VENDOR_NOTES"}) {
		t.Errorf("sections = %d %q", s.Sections, s.UnknownSections)
	}
	if s.Entities != 4 {
		t.Errorf("entities = %d", s.Entities)
	}
	if len(s.Types) != 2 || s.Types[0] != (graph.TypeCount{Type: "CARTESIAN_POINT", Count: 3}) {
		t.Errorf("types = %+v", s.Types)
	}

	if s := Summarize(x, nil); s.Entities != 0 || s.Types != nil {
		t.Errorf("summary without table = %+v", s)
	}
}
