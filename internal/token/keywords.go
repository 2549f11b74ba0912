package token

// Exchange structure markers.
const (
	BeginMarker = "ISO-10303-21"
	EndMarker   = "END-ISO-10303-21"
)

// Section keywords recognized at the top level of an exchange structure.
const (
	SectionHeader    = "HEADER"
	SectionData      = "DATA"
	SectionAnchor    = "ANCHOR"
	SectionReference = "REFERENCE"
	SectionSignature = "SIGNATURE"
	SectionEnd       = "ENDSEC"
)

var sectionKeywords = map[string]struct{}{
	SectionHeader:    {},
	SectionData:      {},
	SectionAnchor:    {},
	SectionReference: {},
	SectionSignature: {},
}

// IsSectionKeyword сообщает, открывает ли ключевое слово известную секцию.
// ENDSEC сюда не входит.
func IsSectionKeyword(name string) bool {
	_, ok := sectionKeywords[name]
	return ok
}
