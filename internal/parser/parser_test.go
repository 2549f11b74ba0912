package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stepscan/internal/diag"
	"stepscan/internal/source"
)

const sampleFile = `ISO-10303-21;
HEADER;
/* generated by a test */
FILE_DESCRIPTION(('simple part'),'2;1');
FILE_NAME('part.stp','2024-01-15T10:30:00',('author'),('org'),'pre','sys','');
FILE_SCHEMA(('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('NONE',(1.0,2.0,3.0));
#3 = DIRECTION('NONE',
  (0.0,0.0,-1.0));
#66 = VECTOR('NONE',#3,50.0);
#70 = ( LENGTH_UNIT() NAMED_UNIT(*) SI_UNIT(.MILLI.,.METRE.) );
#71 = PRODUCT('a;b','it''s (not) a paren','',(#72));
ENDSEC;
END-ISO-10303-21;
`

func parseString(t *testing.T, content string) (*Exchange, *diag.Bag, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.stp", []byte(content))
	bag := diag.NewBag(64)
	x, err := ParseFile(context.Background(), fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return x, bag, err
}

func TestParseWellFormed(t *testing.T) {
	x, bag, err := parseString(t, sampleFile)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if x.Marker != "ISO-10303-21" {
		t.Errorf("Marker = %q", x.Marker)
	}
	if len(x.Sections) != 2 || x.Sections[0].Kind != SectionHeader || x.Sections[1].Kind != SectionData {
		t.Fatalf("sections = %+v", x.Sections)
	}
	if x.Sections[1].Statements != 5 {
		t.Errorf("DATA statements = %d, want 5", x.Sections[1].Statements)
	}

	if len(x.Header) != 3 {
		t.Fatalf("header records = %d, want 3", len(x.Header))
	}
	if x.Header[0].TypeName != "FILE_DESCRIPTION" || x.Header[0].RawArgs != "('simple part'),'2;1'" {
		t.Errorf("header[0] = %+v", x.Header[0])
	}
	if x.Header[0].ID != 0 {
		t.Errorf("header records are positional, got id %d", x.Header[0].ID)
	}

	if len(x.Data) != 5 {
		t.Fatalf("data records = %d, want 5", len(x.Data))
	}
	first := x.Data[0]
	if first.ID != 1 || first.TypeName != "CARTESIAN_POINT" || first.RawArgs != "'NONE',(1.0,2.0,3.0)" {
		t.Errorf("data[0] = %+v", first)
	}
	if x.Data[1].RawArgs != "'NONE',\n  (0.0,0.0,-1.0)" {
		t.Errorf("multi-line args = %q", x.Data[1].RawArgs)
	}
	complexRec := x.Data[3]
	if !complexRec.Complex || complexRec.TypeName != "LENGTH_UNIT" || complexRec.ID != 70 {
		t.Errorf("complex record = %+v", complexRec)
	}
	if x.Data[4].RawArgs != "'a;b','it''s (not) a paren','',(#72)" {
		t.Errorf("string contents must not affect splitting: %q", x.Data[4].RawArgs)
	}
	for _, rec := range x.Data {
		if rec.Section != SectionData || rec.SectionIndex != 1 {
			t.Errorf("record #%d section = %v/%d", rec.ID, rec.Section, rec.SectionIndex)
		}
	}
}

func TestParseEdition3Sections(t *testing.T) {
	content := `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'3;1');
ENDSEC;
ANCHOR;
<first_point> = #1;
ENDSEC;
REFERENCE;
#20 = <other.stp#5>;
ENDSEC;
DATA('shape', ('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF'));
#1 = CARTESIAN_POINT('',(0.,0.,0.));
ENDSEC;
SIGNATURE;
aGVsbG8gd29ybGQ= + /x
ENDSEC;
END-ISO-10303-21;
`
	x, bag, err := parseString(t, content)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("raw sections must not produce lexer diagnostics: %v", bag.Items())
	}
	if got := x.SectionCount(SectionData); got != 1 {
		t.Errorf("DATA sections = %d", got)
	}
	data := x.Sections[3]
	if data.Params != "'shape', ('AP242_MANAGED_MODEL_BASED_3D_ENGINEERING_MIM_LF')" {
		t.Errorf("DATA params = %q", data.Params)
	}
	if len(x.Other) != 3 {
		t.Fatalf("other statements = %d, want 3: %+v", len(x.Other), x.Other)
	}
	if x.Other[0].RawArgs != "<first_point> = #1;" || x.Other[0].Section != SectionAnchor {
		t.Errorf("anchor = %+v", x.Other[0])
	}
	if x.Other[2].Section != SectionSignature || !strings.HasPrefix(x.Other[2].RawArgs, "aGVsbG8gd29ybGQ") {
		t.Errorf("signature = %+v", x.Other[2])
	}
	if len(x.Data) != 1 {
		t.Errorf("data = %d", len(x.Data))
	}
}

func TestUnknownSectionPreserved(t *testing.T) {
	content := `ISO-10303-21;
HEADER;
ENDSEC;
VENDOR_EXTRA;
#5 = THING(1);
NOTE('x');
ENDSEC;
DATA;
#1 = A();
ENDSEC;
END-ISO-10303-21;
`
	x, bag, err := parseString(t, content)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(x.Data) != 1 {
		t.Errorf("data = %d, want 1", len(x.Data))
	}
	if len(x.Unknown) != 2 || x.Unknown[0].ID != 5 || x.Unknown[1].TypeName != "NOTE" {
		t.Fatalf("unknown = %+v", x.Unknown)
	}
	if names := x.UnknownSections(); len(names) != 1 || names[0] != "VENDOR_EXTRA" {
		t.Errorf("UnknownSections = %v", names)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.RecUnknownSection {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestStatementOutsideSection(t *testing.T) {
	content := "ISO-10303-21;\n#9 = STRAY();\nDATA;\nENDSEC;\nEND-ISO-10303-21;\n"
	x, bag, err := parseString(t, content)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(x.Unknown) != 1 || x.Unknown[0].SectionIndex != -1 {
		t.Fatalf("unknown = %+v", x.Unknown)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.RecOutsideSection {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestMalformed(t *testing.T) {
	wrap := func(data string) string {
		return "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n" + data + "\nENDSEC;\nEND-ISO-10303-21;\n"
	}
	tests := []struct {
		name    string
		content string
		code    diag.Code
		line    uint32
		id      uint64
	}{
		{"missing begin", "HEADER;\nENDSEC;\nEND-ISO-10303-21;", diag.RecMissingBegin, 1, 0},
		{"missing end", "ISO-10303-21;\nDATA;\nENDSEC;\n", diag.RecMissingEnd, 4, 0},
		{"missing equals", wrap("#1 CARTESIAN_POINT('',(0.,0.,0.));"), diag.RecMissingEquals, 5, 1},
		{"zero id", wrap("#0 = A();"), diag.RecBadInstanceID, 5, 0},
		{"negative id", wrap("#-4 = A();"), diag.RecBadInstanceID, 5, 0},
		{"named id", wrap("#ABC = A();"), diag.RecBadInstanceID, 5, 0},
		{"unterminated string", wrap("#1 = A('abc);"), diag.LexUnterminatedString, 5, 1},
		{"unclosed paren", wrap("#1 = A();\n#2 = B((1,2);"), diag.RecUnbalancedParens, 6, 2},
		{"extra paren", wrap("#7 = B(1));"), diag.RecUnbalancedParens, 5, 7},
		{"unclosed at eof", "ISO-10303-21;\nDATA;\n#3 = B((1,2),\n", diag.RecUnbalancedParens, 3, 3},
		{"unterminated section", "ISO-10303-21;\nDATA;\n#1 = A();\nEND-ISO-10303-21;\n", diag.RecUnterminatedSection, 2, 0},
		{"unterminated comment", wrap("/* oops"), diag.LexUnterminatedComment, 5, 0},
		{"stray endsec", "ISO-10303-21;\nENDSEC;\nEND-ISO-10303-21;\n", diag.RecUnexpectedToken, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, _, err := parseString(t, tt.content)
			if err == nil {
				t.Fatal("expected MalformedRecordError")
			}
			if x != nil {
				t.Error("no partial exchange may be returned")
			}
			var mre *MalformedRecordError
			if !errors.As(err, &mre) {
				t.Fatalf("error %T is not *MalformedRecordError: %v", err, err)
			}
			if mre.Code != tt.code {
				t.Errorf("code = %v, want %v (%v)", mre.Code, tt.code, err)
			}
			if mre.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", mre.Line, tt.line, err)
			}
			if mre.ID != tt.id {
				t.Errorf("id = %d, want %d", mre.ID, tt.id)
			}
			if !strings.Contains(mre.Error(), "test.stp:") {
				t.Errorf("message lacks location: %q", mre.Error())
			}
		})
	}
}

func TestUnbalancedReportsRecordOffset(t *testing.T) {
	content := "ISO-10303-21;\nDATA;\n#1 = A();\n#22 = B((1,2);\nENDSEC;\nEND-ISO-10303-21;\n"
	_, _, err := parseString(t, content)
	var mre *MalformedRecordError
	if !errors.As(err, &mre) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	want := uint32(strings.Index(content, "#22"))
	if mre.Offset != want || mre.Column != 1 {
		t.Errorf("offset = %d col %d, want %d col 1", mre.Offset, mre.Column, want)
	}
}

func TestTrailingContentWarns(t *testing.T) {
	_, bag, err := parseString(t, "ISO-10303-21;\nEND-ISO-10303-21;\ngarbage 'x\n")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.RecTrailingContent {
		t.Errorf("diagnostics = %v", bag.Items())
	}
}

func TestLowerCaseNamesNormalized(t *testing.T) {
	x, _, err := parseString(t, "ISO-10303-21;\ndata;\n#1 = cartesian_point('',(0.,0.,0.));\nendsec;\nend-iso-10303-21;\n")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(x.Data) != 1 || x.Data[0].TypeName != "CARTESIAN_POINT" {
		t.Fatalf("data = %+v", x.Data)
	}
}

func TestParseCanceled(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("c.stp", []byte(sampleFile))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseFile(ctx, fs.Get(id), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
