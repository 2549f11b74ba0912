package value

import "fmt"

// Logical is the EXPRESS LOGICAL/BOOLEAN interpretation of an enumeration.
type Logical uint8

const (
	False Logical = iota
	True
	Unknown
)

func (l Logical) String() string {
	switch l {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Logical interprets .T. .F. .U. and their long spellings. Any other value
// reports ok == false; callers expecting a BOOLEAN decide what that means.
func (v Value) Logical() (Logical, bool) {
	if v.Kind != KindEnum {
		return Unknown, false
	}
	switch v.Text {
	case "T", "TRUE":
		return True, true
	case "F", "FALSE":
		return False, true
	case "U", "UNKNOWN":
		return Unknown, true
	}
	return Unknown, false
}

// Bool is Logical narrowed to BOOLEAN: unknown is not a boolean.
func (v Value) Bool() (bool, bool) {
	l, ok := v.Logical()
	if !ok || l == Unknown {
		return false, false
	}
	return l == True, true
}

func (l Logical) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Logical) UnmarshalText(b []byte) error {
	switch string(b) {
	case "TRUE":
		*l = True
	case "FALSE":
		*l = False
	case "UNKNOWN":
		*l = Unknown
	default:
		return fmt.Errorf("value: bad logical %q", b)
	}
	return nil
}
