package header

import (
	"stepscan/internal/graph"
	"stepscan/internal/parser"
)

// SectionCounts counts statements per section kind.
type SectionCounts struct {
	Header    int `json:"header" msgpack:"header"`
	Data      int `json:"data" msgpack:"data"`
	Anchor    int `json:"anchor" msgpack:"anchor"`
	Reference int `json:"reference" msgpack:"reference"`
	Signature int `json:"signature" msgpack:"signature"`
	Unknown   int `json:"unknown" msgpack:"unknown"`
}

// Summary is the section overview of one file.
type Summary struct {
	Marker          string            `json:"marker" msgpack:"marker"`
	Sections        int               `json:"sections" msgpack:"sections"`
	Statements      SectionCounts     `json:"statements" msgpack:"statements"`
	UnknownSections []string          `json:"unknown_sections,omitempty" msgpack:"unknown_sections,omitempty"`
	Entities        int               `json:"entities" msgpack:"entities"`
	Types           []graph.TypeCount `json:"types,omitempty" msgpack:"types,omitempty"`
}

// Summarize counts statements of x. table may be nil when the graph was not built.
func Summarize(x *parser.Exchange, table *graph.Table) Summary {
	s := Summary{
		Marker:          x.Marker,
		Sections:        len(x.Sections),
		UnknownSections: x.UnknownSections(),
	}
	s.Statements.Header = len(x.Header)
	s.Statements.Data = len(x.Data)
	s.Statements.Unknown = len(x.Unknown)
	for i := range x.Other {
		switch x.Other[i].Section {
		case parser.SectionAnchor:
			s.Statements.Anchor++
		case parser.SectionReference:
			s.Statements.Reference++
		case parser.SectionSignature:
			s.Statements.Signature++
		}
	}
	if table != nil {
		s.Entities = table.Len()
		s.Types = table.TypeCounts()
	}
	return s
}
