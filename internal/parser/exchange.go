package parser

import (
	"stepscan/internal/source"
)

// SectionKind classifies a top-level section of an exchange structure.
type SectionKind uint8

const (
	SectionUnknown SectionKind = iota
	SectionHeader
	SectionData
	SectionAnchor
	SectionReference
	SectionSignature
)

func (k SectionKind) String() string {
	switch k {
	case SectionHeader:
		return "HEADER"
	case SectionData:
		return "DATA"
	case SectionAnchor:
		return "ANCHOR"
	case SectionReference:
		return "REFERENCE"
	case SectionSignature:
		return "SIGNATURE"
	default:
		return "UNKNOWN"
	}
}

func sectionKindOf(keyword string) SectionKind {
	switch keyword {
	case "HEADER":
		return SectionHeader
	case "DATA":
		return SectionData
	case "ANCHOR":
		return SectionAnchor
	case "REFERENCE":
		return SectionReference
	case "SIGNATURE":
		return SectionSignature
	default:
		return SectionUnknown
	}
}

// Section is one HEADER; ... ENDSEC; block.
type Section struct {
	Kind SectionKind
	// Name is the keyword as written. It differs from Kind.String() only for unknown sections.
	Name string
	// Params holds the raw text of Ed.3 DATA('name',('SCHEMA')) parameters, without the outer parentheses.
	Params     string
	ParamsSpan source.Span
	Span       source.Span
	Statements int
}

// RawRecord is one statement of a section, split but not yet interpreted.
//
// DATA records carry their positive instance id. HEADER records are positional
// and have ID == 0. ANCHOR, REFERENCE and SIGNATURE statements keep their whole
// text in RawArgs with an empty TypeName.
type RawRecord struct {
	ID       uint64
	TypeName string
	// RawArgs is the text between the outermost parentheses.
	// For complex instances it is the list of partial types: "A(1)B(2)".
	RawArgs  string
	ArgsSpan source.Span
	Span     source.Span
	Section  SectionKind
	// SectionIndex points into Exchange.Sections; -1 outside any section.
	SectionIndex int
	Complex      bool
}

// Exchange is the split form of one exchange file.
type Exchange struct {
	File source.FileID
	// Marker is the opening marker text, normally "ISO-10303-21".
	Marker   string
	Sections []Section
	Header   []RawRecord
	Data     []RawRecord
	// Other holds ANCHOR, REFERENCE and SIGNATURE statements.
	Other []RawRecord
	// Unknown holds statements of unknown sections and statements outside any section.
	Unknown []RawRecord
}

// SectionCount returns how many sections of kind the file has.
func (x *Exchange) SectionCount(kind SectionKind) int {
	n := 0
	for i := range x.Sections {
		if x.Sections[i].Kind == kind {
			n++
		}
	}
	return n
}

// UnknownSections returns the names of unknown sections in file order.
func (x *Exchange) UnknownSections() []string {
	var out []string
	for i := range x.Sections {
		if x.Sections[i].Kind == SectionUnknown {
			out = append(out, x.Sections[i].Name)
		}
	}
	return out
}
