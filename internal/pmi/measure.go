package pmi

import (
	"strings"

	"stepscan/internal/graph"
	"stepscan/internal/value"
)

// measureAttr reads a magnitude attribute: a reference to a measure entity
// or an inline typed measure such as LENGTH_MEASURE(0.05).
func (x *extractor) measureAttr(v value.Value, r *Record) *Measure {
	switch v.Kind {
	case value.KindUnparsed:
		if f, ok := wrappedNumber(v); ok {
			return &Measure{Type: v.Text, Value: f}
		}
	case value.KindRef:
		e, ok := x.resolve(v.Ref, r)
		if !ok {
			return nil
		}
		return x.measureOf(e)
	}
	return nil
}

// measureOf reads (value_component, unit_component) from a
// *MEASURE_WITH_UNIT or measure representation item, simple or complex.
// Attribute positions differ between these types, so the first number is
// the value, the first reference the unit and the first string the label.
func (x *extractor) measureOf(e *graph.Entity) *Measure {
	var attrs []value.Value
	label := ""
	if e.IsComplex() {
		for _, p := range e.Parts {
			if !strings.Contains(p, "MEASURE_WITH_UNIT") {
				continue
			}
			if params, found, err := e.Params(p); found && err == nil && len(params) > 0 {
				attrs = params
				break
			}
		}
		if ri, found, err := e.Params("REPRESENTATION_ITEM"); found && err == nil && len(ri) > 0 {
			label, _ = ri[0].AsString()
		}
	} else if strings.Contains(e.Type, "MEASURE") {
		attrs = e.Attrs
	}
	if len(attrs) == 0 {
		return nil
	}

	m := &Measure{EntityID: e.ID}
	found := false
	for _, a := range attrs {
		switch a.Kind {
		case value.KindUnparsed:
			if f, ok := wrappedNumber(a); ok && !found {
				m.Type, m.Value, found = a.Text, f, true
			}
		case value.KindReal, value.KindInteger:
			if !found {
				m.Value, _ = a.AsFloat()
				found = true
			}
		case value.KindRef:
			if m.UnitID == 0 {
				m.UnitID = a.Ref
			}
		case value.KindString:
			if label == "" {
				label = a.Text
			}
		}
	}
	if !found {
		return nil
	}
	m.Label = label
	if m.UnitID != 0 {
		m.Unit = x.unitLabel(m.UnitID)
	}
	return m
}

// wrappedNumber reads NAME(number).
func wrappedNumber(v value.Value) (float64, bool) {
	params, err := v.Params()
	if err != nil || len(params) != 1 {
		return 0, false
	}
	return params[0].AsFloat()
}

var siPrefixes = map[string]string{
	"EXA": "E", "PETA": "P", "TERA": "T", "GIGA": "G", "MEGA": "M", "KILO": "k",
	"HECTO": "h", "DECA": "da", "DECI": "d", "CENTI": "c", "MILLI": "m",
	"MICRO": "u", "NANO": "n", "PICO": "p", "FEMTO": "f", "ATTO": "a",
}

var siNames = map[string]string{
	"METRE": "m", "GRAM": "g", "SECOND": "s", "RADIAN": "rad", "STERADIAN": "sr",
	"KELVIN": "K", "DEGREE_CELSIUS": "degC", "NEWTON": "N", "PASCAL": "Pa",
	"SQUARE_METRE": "m2", "CUBIC_METRE": "m3", "HERTZ": "Hz",
}

// unitLabel names a unit entity: SI_UNIT as a symbol (mm, rad),
// CONVERSION_BASED_UNIT by its name (INCH, DEGREE). Units are cosmetic, so
// failures give "" without degrading the record.
func (x *extractor) unitLabel(id uint64) string {
	if s, ok := x.units[id]; ok {
		return s
	}
	s := ""
	if u, ok := x.table.Get(id); ok {
		s = unitOf(u)
	}
	x.units[id] = s
	return s
}

func unitOf(u *graph.Entity) string {
	if params, found, err := u.Params("CONVERSION_BASED_UNIT"); found && err == nil && len(params) > 0 {
		name, _ := params[0].AsString()
		return name
	}
	params, found, err := u.Params("SI_UNIT")
	if !found || err != nil {
		return ""
	}
	// SI_UNIT(prefix, name), в простом экземпляре перед ними ещё '*'
	var enums []string
	for _, p := range params {
		if tag, ok := p.AsEnum(); ok {
			enums = append(enums, tag)
		} else if p.IsUnset() {
			enums = append(enums, "")
		}
	}
	if len(enums) == 0 {
		return ""
	}
	name := enums[len(enums)-1]
	prefix := ""
	if len(enums) > 1 {
		prefix = enums[len(enums)-2]
	}
	sym, ok := siNames[name]
	if !ok {
		sym = strings.ToLower(name)
	}
	return siPrefixes[prefix] + sym
}
