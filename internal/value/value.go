// Package value models Part 21 attribute values and parses attribute lists.
//
// Attributes are positional: an entity is its type name plus an ordered
// sequence of Values. The parser does not know the EXPRESS schema, so it
// never decides what an attribute means. Consumers interpret positions.
package value

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindReal
	KindString
	KindEnum
	KindBinary
	KindRef
	KindList
	KindUnset
	KindDerived
	// KindUnparsed is a typed wrapper such as LENGTH_MEASURE(2.5) or one
	// partial type of a complex instance. Name and inner text are kept.
	KindUnparsed
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindEnum:
		return "Enumeration"
	case KindBinary:
		return "Binary"
	case KindRef:
		return "Reference"
	case KindList:
		return "List"
	case KindUnset:
		return "Unset"
	case KindDerived:
		return "Derived"
	case KindUnparsed:
		return "Unparsed"
	default:
		return "Invalid"
	}
}

// Value is an immutable attribute value. Only the fields of its Kind are set.
type Value struct {
	Kind Kind
	Int  int64
	Real float64
	// Text is the decoded string, the enumeration tag without dots,
	// the hex digits of a binary, or the type name of an Unparsed value.
	Text  string
	Ref   uint64
	Items []Value
	// Raw is the inner text of an Unparsed value, between its parentheses.
	Raw string
}

func Int(v int64) Value       { return Value{Kind: KindInteger, Int: v} }
func Real(v float64) Value    { return Value{Kind: KindReal, Real: v} }
func Str(s string) Value      { return Value{Kind: KindString, Text: s} }
func Enum(tag string) Value   { return Value{Kind: KindEnum, Text: tag} }
func Binary(hex string) Value { return Value{Kind: KindBinary, Text: hex} }
func Ref(id uint64) Value     { return Value{Kind: KindRef, Ref: id} }
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, Items: items}
}
func Unset() Value   { return Value{Kind: KindUnset} }
func Derived() Value { return Value{Kind: KindDerived} }

// Typed builds an Unparsed wrapper value.
func Typed(name, raw string) Value { return Value{Kind: KindUnparsed, Text: name, Raw: raw} }

func (v Value) IsUnset() bool { return v.Kind == KindUnset }

// AsFloat returns numeric values as float64; Integer is widened.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindReal:
		return v.Real, true
	case KindInteger:
		return float64(v.Int), true
	}
	return 0, false
}

func (v Value) AsInt() (int64, bool) {
	if v.Kind == KindInteger {
		return v.Int, true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) {
	if v.Kind == KindString {
		return v.Text, true
	}
	return "", false
}

func (v Value) AsEnum() (string, bool) {
	if v.Kind == KindEnum {
		return v.Text, true
	}
	return "", false
}

func (v Value) AsRef() (uint64, bool) {
	if v.Kind == KindRef {
		return v.Ref, true
	}
	return 0, false
}

func (v Value) AsList() ([]Value, bool) {
	if v.Kind == KindList {
		return v.Items, true
	}
	return nil, false
}

// Params re-parses the inner text of an Unparsed value.
func (v Value) Params() ([]Value, error) {
	if v.Kind != KindUnparsed {
		return nil, &AttributeParseError{Raw: v.String(), Reason: "value is not a typed wrapper"}
	}
	return ParseText(v.Raw)
}

// Refs collects every instance reference inside v in order, descending into
// lists and typed wrappers. Wrappers that fail to parse contribute nothing.
func (v Value) Refs() []uint64 {
	var out []uint64
	v.appendRefs(&out)
	return out
}

func (v Value) appendRefs(out *[]uint64) {
	switch v.Kind {
	case KindRef:
		*out = append(*out, v.Ref)
	case KindList:
		for i := range v.Items {
			v.Items[i].appendRefs(out)
		}
	case KindUnparsed:
		params, err := v.Params()
		if err != nil {
			return
		}
		for i := range params {
			params[i].appendRefs(out)
		}
	}
}

// Equal reports deep equality. Reals compare with ==.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == other.Int
	case KindReal:
		return v.Real == other.Real
	case KindString, KindEnum, KindBinary:
		return v.Text == other.Text
	case KindRef:
		return v.Ref == other.Ref
	case KindUnparsed:
		return v.Text == other.Text && v.Raw == other.Raw
	case KindList:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
