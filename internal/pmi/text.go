package pmi

import "fmt"

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("pmi: unknown kind %q", b)
}

func (f Family) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Family) UnmarshalText(b []byte) error {
	for c := FamilyNone; c <= FamilyDatum; c++ {
		if c.String() == string(b) {
			*f = c
			return nil
		}
	}
	return fmt.Errorf("pmi: unknown family %q", b)
}

func (t ToleranceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ToleranceType) UnmarshalText(b []byte) error {
	for c := ToleranceUnknown; c < toleranceTypeCount; c++ {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("pmi: unknown tolerance type %q", b)
}
