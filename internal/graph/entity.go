package graph

import (
	"slices"

	"stepscan/internal/source"
	"stepscan/internal/value"
)

// Entity is one DATA instance with its positional attributes.
type Entity struct {
	ID uint64
	// Type is the entity type name; for complex instances the first partial type.
	Type string
	// Parts lists every partial type of a complex instance, nil otherwise.
	Parts []string
	// Attrs holds the attributes of a simple instance, or one Unparsed value
	// per partial type of a complex instance.
	Attrs []value.Value
	Span  source.Span
}

func (e *Entity) IsComplex() bool { return e.Parts != nil }

// HasType reports whether name is the entity type or one of its partial types.
func (e *Entity) HasType(name string) bool {
	if e.Type == name {
		return true
	}
	return slices.Contains(e.Parts, name)
}

// Attr returns attribute i of a simple instance.
func (e *Entity) Attr(i int) (value.Value, bool) {
	if e.IsComplex() || i < 0 || i >= len(e.Attrs) {
		return value.Value{}, false
	}
	return e.Attrs[i], true
}

// Params returns the attributes that belong to partial type name.
// For a simple instance of that type it is Attrs itself.
func (e *Entity) Params(name string) ([]value.Value, bool, error) {
	if !e.IsComplex() {
		if e.Type != name {
			return nil, false, nil
		}
		return e.Attrs, true, nil
	}
	for i := range e.Parts {
		if e.Parts[i] != name {
			continue
		}
		params, err := e.Attrs[i].Params()
		if err != nil {
			return nil, true, err
		}
		return params, true, nil
	}
	return nil, false, nil
}

// TypeLabel is the printable type: NAME, or (A B C) for complex instances.
func (e *Entity) TypeLabel() string {
	if !e.IsComplex() {
		return e.Type
	}
	n := 2
	for _, p := range e.Parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	buf = append(buf, '(')
	for i, p := range e.Parts {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, p...)
	}
	buf = append(buf, ')')
	return string(buf)
}
