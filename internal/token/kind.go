package token

// Kind represents the category of a Part 21 token.
type Kind uint8

const (
	// Invalid indicates an erroneous token (unknown character, unterminated literal).
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Keyword is a standard keyword: an upper-case name such as CARTESIAN_POINT or HEADER.
	Keyword
	// UserKeyword is a user defined keyword, '!' followed by a name.
	UserKeyword
	// MarkerBegin is the ISO-10303-21 exchange marker.
	MarkerBegin
	// MarkerEnd is the END-ISO-10303-21 exchange marker.
	MarkerEnd

	// Ref is an entity instance name: #123.
	Ref
	// ValueRef is a value instance name from ANCHOR/REFERENCE sections: @123.
	ValueRef
	// Integer is a signed integer literal.
	Integer
	// Real is a literal with a decimal point or exponent.
	Real
	// String is a quoted literal, escapes left undecoded.
	String
	// Enum is a dot-delimited enumeration literal: .T., .MAXIMUM_MATERIAL_REQUIREMENT.
	Enum
	// Binary is a double-quoted hex literal: "0FF".
	Binary
	// Anchor is an anchor or resource name in angle brackets: <part1>.
	Anchor

	LParen    // (
	RParen    // )
	Comma     // ,
	Semicolon // ;
	Equals    // =
	Dollar    // $
	Star      // *
	Slash     // / (SIGNATURE payloads)
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Keyword:     "Keyword",
	UserKeyword: "UserKeyword",
	MarkerBegin: "MarkerBegin",
	MarkerEnd:   "MarkerEnd",
	Ref:         "Ref",
	ValueRef:    "ValueRef",
	Integer:     "Integer",
	Real:        "Real",
	String:      "String",
	Enum:        "Enum",
	Binary:      "Binary",
	Anchor:      "Anchor",
	LParen:      "LParen",
	RParen:      "RParen",
	Comma:       "Comma",
	Semicolon:   "Semicolon",
	Equals:      "Equals",
	Dollar:      "Dollar",
	Star:        "Star",
	Slash:       "Slash",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
