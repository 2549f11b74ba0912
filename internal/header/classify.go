package header

import (
	"fmt"

	"stepscan/internal/diag"
	"stepscan/internal/parser"
	"stepscan/internal/source"
	"stepscan/internal/value"
)

const (
	entFileDescription = "FILE_DESCRIPTION"
	entFileName        = "FILE_NAME"
	entFileSchema      = "FILE_SCHEMA"
	entFilePopulation  = "FILE_POPULATION"
	entSectionLanguage = "SECTION_LANGUAGE"
	entSectionContext  = "SECTION_CONTEXT"
)

type classifier struct {
	file     *source.File
	reporter diag.Reporter
	info     *Info
}

// Classify builds Info from the HEADER records of x. It never fails:
// malformed or missing entities are reported as warnings.
func Classify(x *parser.Exchange, file *source.File, reporter diag.Reporter) *Info {
	c := &classifier{
		file:     file,
		reporter: reporter,
		info:     &Info{Marker: x.Marker},
	}
	for i := range x.Header {
		c.record(&x.Header[i])
	}
	c.requireEntities(x)
	for i := range x.Sections {
		if s := &x.Sections[i]; s.Kind == parser.SectionData && s.Params != "" {
			c.dataSection(s)
		}
	}
	return c.info
}

func (c *classifier) warn(code diag.Code, sp source.Span, msg string) {
	if c.reporter == nil {
		return
	}
	diag.ReportWarning(c.reporter, code, sp, msg).Emit()
}

func (c *classifier) requireEntities(x *parser.Exchange) {
	at := source.Span{File: c.file.ID}
	for i := range x.Sections {
		if x.Sections[i].Kind == parser.SectionHeader {
			at = x.Sections[i].Span
			break
		}
	}
	if c.info.Description == nil {
		c.warn(diag.HdrMissingEntity, at, "HEADER has no FILE_DESCRIPTION")
	}
	if c.info.Name == nil {
		c.warn(diag.HdrMissingEntity, at, "HEADER has no FILE_NAME")
	}
	if c.info.Schema == nil {
		c.warn(diag.HdrMissingEntity, at, "HEADER has no FILE_SCHEMA")
	}
}

func (c *classifier) record(rec *parser.RawRecord) {
	switch rec.TypeName {
	case entFileDescription, entFileName, entFileSchema,
		entFilePopulation, entSectionLanguage, entSectionContext:
	default:
		c.info.Unknown = append(c.info.Unknown, Unknown{Name: rec.TypeName, Raw: rec.RawArgs})
		c.warn(diag.HdrUnknownEntity, rec.Span, fmt.Sprintf("unknown header entity %s kept as is", rec.TypeName))
		return
	}

	args, err := value.Parse(c.file, rec.ArgsSpan, value.Options{})
	if err != nil {
		c.warn(diag.HdrBadEntity, rec.Span, fmt.Sprintf("%s: %v", rec.TypeName, err))
		return
	}
	f := fields{name: rec.TypeName, args: args}

	switch rec.TypeName {
	case entFileDescription:
		if c.info.Description != nil {
			c.warn(diag.HdrBadEntity, rec.Span, "repeated FILE_DESCRIPTION ignored")
			return
		}
		d := &FileDescription{Description: f.strings(0)}
		d.Level = ParseImplementationLevel(f.string(1))
		if !d.Level.Valid {
			c.warn(diag.HdrBadImplementationLevel, rec.Span,
				fmt.Sprintf("implementation level %q is not of the form N;M or N", d.Level.Raw))
		}
		c.info.Description = d
		f.arity(c, rec, 2)

	case entFileName:
		if c.info.Name != nil {
			c.warn(diag.HdrBadEntity, rec.Span, "repeated FILE_NAME ignored")
			return
		}
		c.info.Name = &FileName{
			Name:                f.string(0),
			TimeStamp:           f.string(1),
			Author:              f.strings(2),
			Organization:        f.strings(3),
			PreprocessorVersion: f.string(4),
			OriginatingSystem:   f.string(5),
			Authorization:       f.string(6),
		}
		f.arity(c, rec, 7)

	case entFileSchema:
		if c.info.Schema != nil {
			c.warn(diag.HdrBadEntity, rec.Span, "repeated FILE_SCHEMA ignored")
			return
		}
		c.info.Schema = &FileSchema{Schemas: f.strings(0)}
		f.arity(c, rec, 1)

	case entFilePopulation:
		c.info.Populations = append(c.info.Populations, FilePopulation{
			GoverningSchema:     f.string(0),
			DeterminationMethod: f.string(1),
			GovernedSections:    f.strings(2),
		})

	case entSectionLanguage:
		if c.info.Language != nil {
			c.warn(diag.HdrBadEntity, rec.Span, "repeated SECTION_LANGUAGE ignored")
			return
		}
		// SECTION_LANGUAGE(language) или SECTION_LANGUAGE(section, language)
		if len(args) >= 2 {
			c.info.Language = &SectionLanguage{Section: f.string(0), Language: f.string(1)}
		} else {
			c.info.Language = &SectionLanguage{Language: f.string(0)}
		}

	case entSectionContext:
		if len(args) >= 2 {
			c.info.Contexts = append(c.info.Contexts, SectionContext{Section: f.string(0), Context: f.strings(1)})
		} else {
			c.info.Contexts = append(c.info.Contexts, SectionContext{Context: f.strings(0)})
		}
	}
}

func (c *classifier) dataSection(s *parser.Section) {
	args, err := value.Parse(c.file, s.ParamsSpan, value.Options{})
	if err != nil {
		c.warn(diag.HdrBadEntity, s.ParamsSpan, fmt.Sprintf("DATA section parameters: %v", err))
		return
	}
	f := fields{name: "DATA", args: args}
	c.info.DataSections = append(c.info.DataSections, DataSection{
		Name:    f.string(0),
		Schemas: f.strings(1),
	})
}

// fields - позиционный доступ к атрибутам заголовочной записи.
// Unset и отсутствующие позиции дают нулевые значения.
type fields struct {
	name string
	args []value.Value
}

func (f fields) string(i int) string {
	if i >= len(f.args) {
		return ""
	}
	s, _ := f.args[i].AsString()
	return s
}

// strings accepts a list of strings or a single string.
func (f fields) strings(i int) []string {
	if i >= len(f.args) {
		return nil
	}
	v := f.args[i]
	if s, ok := v.AsString(); ok {
		return []string{s}
	}
	items, ok := v.AsList()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

func (f fields) arity(c *classifier, rec *parser.RawRecord, want int) {
	if len(f.args) != want {
		c.warn(diag.HdrBadEntity, rec.Span,
			fmt.Sprintf("%s has %d attributes, expected %d", f.name, len(f.args), want))
	}
}
