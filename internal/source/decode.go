package source

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText returns UTF-8 content. Part 21 files are ASCII or UTF-8; older
// exporters sometimes write raw ISO-8859-1 bytes inside strings, so anything
// that is not valid UTF-8 is decoded as Latin-1.
func decodeText(content []byte) ([]byte, bool, error) {
	if utf8.Valid(content) {
		return content, false, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
