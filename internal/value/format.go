package value

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// String re-serializes v as Part 21 text. Parsing the result yields an equal Value.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

// Format serializes an attribute list without the outer parentheses.
func Format(values []Value) string {
	var sb strings.Builder
	for i := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		values[i].write(&sb)
	}
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindReal:
		sb.WriteString(formatReal(v.Real))
	case KindString:
		sb.WriteString(EncodeString(v.Text))
	case KindEnum:
		sb.WriteByte('.')
		sb.WriteString(v.Text)
		sb.WriteByte('.')
	case KindBinary:
		sb.WriteByte('"')
		sb.WriteString(v.Text)
		sb.WriteByte('"')
	case KindRef:
		sb.WriteByte('#')
		sb.WriteString(strconv.FormatUint(v.Ref, 10))
	case KindList:
		sb.WriteByte('(')
		for i := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			v.Items[i].write(sb)
		}
		sb.WriteByte(')')
	case KindUnset:
		sb.WriteByte('$')
	case KindDerived:
		sb.WriteByte('*')
	case KindUnparsed:
		sb.WriteString(v.Text)
		sb.WriteByte('(')
		sb.WriteString(v.Raw)
		sb.WriteByte(')')
	}
}

// formatReal always emits a decimal point so the text reads back as Real.
func formatReal(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'G', -1, 64)
	}
	s := strconv.FormatFloat(f, 'G', -1, 64)
	mant, exp, hasExp := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += "."
	}
	if hasExp {
		return mant + "E" + exp
	}
	return mant
}

// EncodeString quotes s as a Part 21 string literal. Characters outside
// printable ASCII are written as \X2\ (or \X4\ beyond the BMP) runs.
func EncodeString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'':
			sb.WriteString("''")
			i++
		case c == '\\':
			sb.WriteString(`\\`)
			i++
		case c >= 0x20 && c < 0x7F:
			sb.WriteByte(c)
			i++
		default:
			j := i
			for j < len(s) && (s[j] < 0x20 || s[j] >= 0x7F) {
				j++
			}
			writeWide(&sb, s[i:j])
			i = j
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeWide(sb *strings.Builder, run string) {
	wide := false
	for _, r := range run {
		if r > 0xFFFF {
			wide = true
			break
		}
	}
	prefix, enc := `\X2\`, utf16be
	if wide {
		prefix, enc = `\X4\`, utf32be
	}
	if !utf8.ValidString(run) {
		run = strings.ToValidUTF8(run, "�")
	}
	raw, err := enc.NewEncoder().String(run)
	if err != nil {
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte(raw))))
	sb.WriteString(`\X0\`)
}
