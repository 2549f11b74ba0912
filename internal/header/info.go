// Package header interprets the positional HEADER records of an exchange file.
package header

import (
	"fmt"
	"strconv"
	"strings"
)

// ImplementationLevel is FILE_DESCRIPTION.implementation_level: "2;1" is a
// file written in edition 2 that an edition 1 reader can read.
type ImplementationLevel struct {
	Raw         string `json:"raw"`
	FileEdition int    `json:"file_edition"`
	MinEdition  int    `json:"min_edition"`
	// Valid is false when Raw has neither the "N;M" nor the "N" form.
	Valid bool `json:"valid"`
}

// ParseImplementationLevel parses "N;M" and "N". Other text is kept in Raw only.
func ParseImplementationLevel(s string) ImplementationLevel {
	lvl := ImplementationLevel{Raw: s}
	text := strings.TrimSpace(s)
	if text == "" {
		return lvl
	}
	file, minimum, two := strings.Cut(text, ";")
	fe, err := strconv.Atoi(file)
	if err != nil || fe < 0 || !isDigits(file) {
		return lvl
	}
	me := fe
	if two {
		me, err = strconv.Atoi(minimum)
		if err != nil || me < 0 || !isDigits(minimum) {
			return lvl
		}
	}
	lvl.FileEdition, lvl.MinEdition, lvl.Valid = fe, me, true
	return lvl
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (l ImplementationLevel) String() string {
	if !l.Valid {
		return l.Raw
	}
	return fmt.Sprintf("Edition %d (min: %d)", l.FileEdition, l.MinEdition)
}

type FileDescription struct {
	Description []string            `json:"description,omitempty"`
	Level       ImplementationLevel `json:"level"`
}

type FileName struct {
	Name                string   `json:"name"`
	TimeStamp           string   `json:"time_stamp"`
	Author              []string `json:"author,omitempty"`
	Organization        []string `json:"organization,omitempty"`
	PreprocessorVersion string   `json:"preprocessor_version"`
	OriginatingSystem   string   `json:"originating_system"`
	Authorization       string   `json:"authorization"`
}

type FileSchema struct {
	Schemas []string `json:"schemas,omitempty"`
}

// FilePopulation (edition 3) names the schema that governs some sections.
type FilePopulation struct {
	GoverningSchema     string   `json:"governing_schema"`
	DeterminationMethod string   `json:"determination_method"`
	GovernedSections    []string `json:"governed_sections,omitempty"`
}

// SectionLanguage (edition 3). Section is empty for the file-wide default.
type SectionLanguage struct {
	Section  string `json:"section"`
	Language string `json:"language"`
}

// SectionContext (edition 3). Section is empty for the file-wide default.
type SectionContext struct {
	Section string   `json:"section"`
	Context []string `json:"context,omitempty"`
}

// Unknown is a header record with a name this package does not interpret.
type Unknown struct {
	Name string `json:"name"`
	Raw  string `json:"raw"`
}

// DataSection holds the edition 3 parameters of one DATA section.
type DataSection struct {
	Name    string   `json:"name"`
	Schemas []string `json:"schemas,omitempty"`
}

// Info is the classified HEADER section. Optional parts are nil or empty
// when the file does not carry them.
type Info struct {
	// Marker is the opening marker text, normally ISO-10303-21.
	Marker      string           `json:"marker"`
	Description *FileDescription `json:"description,omitempty"`
	Name        *FileName        `json:"name,omitempty"`
	Schema      *FileSchema      `json:"schema,omitempty"`
	Populations []FilePopulation `json:"populations,omitempty"`
	Language    *SectionLanguage `json:"language,omitempty"`
	Contexts    []SectionContext `json:"contexts,omitempty"`
	Unknown     []Unknown        `json:"unknown,omitempty"`
	// DataSections has one entry per DATA section that declares parameters.
	DataSections []DataSection `json:"data_sections,omitempty"`
}

// Schemas returns FILE_SCHEMA identifiers, nil when FILE_SCHEMA is missing.
func (i *Info) Schemas() []string {
	if i.Schema == nil {
		return nil
	}
	return i.Schema.Schemas
}
