package value

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// codePages maps \PA\ .. \PI\ to ISO 8859 parts 1..9.
var codePages = map[byte]*charmap.Charmap{
	'A': charmap.ISO8859_1,
	'B': charmap.ISO8859_2,
	'C': charmap.ISO8859_3,
	'D': charmap.ISO8859_4,
	'E': charmap.ISO8859_5,
	'F': charmap.ISO8859_6,
	'G': charmap.ISO8859_7,
	'H': charmap.ISO8859_8,
	'I': charmap.ISO8859_9,
}

var (
	utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf32be = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
)

// DecodeString turns the body of a Part 21 string literal (without the outer
// quotes) into text. Line breaks inside a literal are not part of the value.
// Escape sequences that do not decode are kept verbatim.
func DecodeString(body string) string {
	if !strings.ContainsAny(body, "'\\\n\r") {
		return body
	}

	var sb strings.Builder
	sb.Grow(len(body))
	page := charmap.ISO8859_1

	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '\'':
			// '' -> '
			sb.WriteByte('\'')
			i++
			if i < len(body) && body[i] == '\'' {
				i++
			}
		case c == '\n' || c == '\r':
			i++
		case c == '\\':
			n := decodeEscape(&sb, body[i:], &page)
			if n == 0 {
				sb.WriteByte('\\')
				n = 1
			}
			i += n
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// decodeEscape декодирует одну управляющую последовательность в начале s
// и возвращает число съеденных байт (0, если последовательность не распознана).
func decodeEscape(sb *strings.Builder, s string, page **charmap.Charmap) int {
	switch {
	case strings.HasPrefix(s, `\\`):
		sb.WriteByte('\\')
		return 2

	case strings.HasPrefix(s, `\X2\`):
		return decodeWide(sb, s, 4, utf16be)

	case strings.HasPrefix(s, `\X4\`):
		return decodeWide(sb, s, 8, utf32be)

	case strings.HasPrefix(s, `\X\`) && len(s) >= 5:
		b, err := hex.DecodeString(s[3:5])
		if err != nil {
			return 0
		}
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(b[0]))
		return 5

	case strings.HasPrefix(s, `\S\`) && len(s) >= 4:
		sb.WriteRune((*page).DecodeByte(s[3] | 0x80))
		return 4

	case len(s) >= 4 && s[1] == 'P' && s[3] == '\\':
		cm, ok := codePages[s[2]]
		if !ok {
			return 0
		}
		*page = cm
		return 4
	}
	return 0
}

// decodeWide handles \X2\hhhh...\X0\ and \X4\hhhhhhhh...\X0\.
func decodeWide(sb *strings.Builder, s string, width int, enc encoding.Encoding) int {
	const terminator = `\X0\`
	end := strings.Index(s[4:], terminator)
	if end < 0 {
		return 0
	}
	digits := s[4 : 4+end]
	if len(digits)%width != 0 {
		return 0
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return 0
	}
	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil || !utf8.Valid(text) {
		return 0
	}
	sb.Write(text)
	return 4 + end + len(terminator)
}
