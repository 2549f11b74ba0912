package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                Code = 1000
	LexUnknownChar         Code = 1001
	LexUnterminatedString  Code = 1002
	LexUnterminatedComment Code = 1003
	LexBadNumber           Code = 1004
	LexTokenTooLong        Code = 1005
	LexBadEnum             Code = 1006
	LexBadBinary           Code = 1007
	LexBadReference        Code = 1008

	// Структура обмена: секции и записи
	RecInfo                Code = 2000
	RecMissingBegin        Code = 2001
	RecMissingEnd          Code = 2002
	RecMissingEquals       Code = 2003
	RecBadInstanceID       Code = 2004
	RecUnbalancedParens    Code = 2005
	RecUnterminatedSection Code = 2006
	RecUnexpectedToken     Code = 2007
	RecUnknownSection      Code = 2008
	RecOutsideSection      Code = 2009
	RecTrailingContent     Code = 2010
	RecEmptyStatement      Code = 2011

	// Значения атрибутов
	AttrInfo        Code = 3000
	AttrParseFailed Code = 3001
	AttrTooDeep     Code = 3002

	// Граф экземпляров
	GraphInfo          Code = 4000
	GraphDuplicateID   Code = 4001
	GraphSkippedEntity Code = 4002

	// HEADER
	HdrInfo                   Code = 5000
	HdrMissingEntity          Code = 5001
	HdrBadEntity              Code = 5002
	HdrUnknownEntity          Code = 5003
	HdrBadImplementationLevel Code = 5004

	// PMI
	PmiInfo            Code = 6000
	PmiDegradedRecord  Code = 6001
	PmiPartialPolyline Code = 6002
	PmiCycle           Code = 6003

	// Ввод-вывод и кэш
	IOInfo       Code = 7000
	IOLoadFailed Code = 7001
	IOCacheError Code = 7002
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	LexInfo:                   "Lexical information",
	LexUnknownChar:            "Unknown character",
	LexUnterminatedString:     "Unterminated string",
	LexUnterminatedComment:    "Unterminated comment",
	LexBadNumber:              "Bad number literal",
	LexTokenTooLong:           "Token too long",
	LexBadEnum:                "Bad enumeration literal",
	LexBadBinary:              "Bad binary literal",
	LexBadReference:           "Bad instance name",
	RecInfo:                   "Exchange structure information",
	RecMissingBegin:           "Missing ISO-10303-21 marker",
	RecMissingEnd:             "Missing END-ISO-10303-21 marker",
	RecMissingEquals:          "Missing '=' after instance name",
	RecBadInstanceID:          "Bad instance name",
	RecUnbalancedParens:       "Unbalanced parentheses",
	RecUnterminatedSection:    "Section not closed by ENDSEC",
	RecUnexpectedToken:        "Unexpected token",
	RecUnknownSection:         "Unknown section",
	RecOutsideSection:         "Statement outside of any section",
	RecTrailingContent:        "Content after END-ISO-10303-21",
	RecEmptyStatement:         "Empty statement",
	AttrInfo:                  "Attribute information",
	AttrParseFailed:           "Attribute list cannot be parsed",
	AttrTooDeep:               "Attribute nesting too deep",
	GraphInfo:                 "Instance graph information",
	GraphDuplicateID:          "Duplicate instance name",
	GraphSkippedEntity:        "Entity skipped",
	HdrInfo:                   "Header information",
	HdrMissingEntity:          "Required header entity missing",
	HdrBadEntity:              "Malformed header entity",
	HdrUnknownEntity:          "Unknown header entity",
	HdrBadImplementationLevel: "Bad implementation level",
	PmiInfo:                   "PMI information",
	PmiDegradedRecord:         "PMI record degraded",
	PmiPartialPolyline:        "Polyline has unresolved points",
	PmiCycle:                  "Reference cycle in presentation tree",
	IOInfo:                    "I/O information",
	IOLoadFailed:              "Cannot load file",
	IOCacheError:              "Report cache error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("REC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ATT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("HDR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PMI%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
