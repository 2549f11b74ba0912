package pmi

import (
	"strings"

	"stepscan/internal/graph"
)

// Kind is the closed set of recognized semantic PMI variants. Every family
// has an *Other kind so that unrecognized subtypes are still counted.
type Kind uint8

const (
	KindNone Kind = iota
	KindDimensionalLocation
	KindDimensionalSize
	KindDimensionOther
	KindGeometricTolerance
	KindPlusMinusTolerance
	KindToleranceOther
	KindDatum
	KindDatumFeature
	KindDatumOther
	kindCount
)

var kindNames = [...]string{
	KindNone:                "None",
	KindDimensionalLocation: "DimensionalLocation",
	KindDimensionalSize:     "DimensionalSize",
	KindDimensionOther:      "DimensionOther",
	KindGeometricTolerance:  "GeometricTolerance",
	KindPlusMinusTolerance:  "PlusMinusTolerance",
	KindToleranceOther:      "ToleranceOther",
	KindDatum:               "Datum",
	KindDatumFeature:        "DatumFeature",
	KindDatumOther:          "DatumOther",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "None"
}

// Kinds lists every PMI kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindDimensionalLocation; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

type Family uint8

const (
	FamilyNone Family = iota
	FamilyDimension
	FamilyTolerance
	FamilyDatum
)

func (f Family) String() string {
	switch f {
	case FamilyDimension:
		return "Dimension"
	case FamilyTolerance:
		return "Tolerance"
	case FamilyDatum:
		return "Datum"
	default:
		return "None"
	}
}

func (k Kind) Family() Family {
	switch k {
	case KindDimensionalLocation, KindDimensionalSize, KindDimensionOther:
		return FamilyDimension
	case KindGeometricTolerance, KindPlusMinusTolerance, KindToleranceOther:
		return FamilyTolerance
	case KindDatum, KindDatumFeature, KindDatumOther:
		return FamilyDatum
	default:
		return FamilyNone
	}
}

const (
	typeDimensionalLocation = "DIMENSIONAL_LOCATION"
	typeDimensionalSize     = "DIMENSIONAL_SIZE"
	typeGeometricTolerance  = "GEOMETRIC_TOLERANCE"
	typePlusMinusTolerance  = "PLUS_MINUS_TOLERANCE"
	typeDatum               = "DATUM"
	typeDatumFeature        = "DATUM_FEATURE"
)

// не PMI, хотя имя совпадает с шаблоном семейства
var notDimension = map[string]bool{
	"DIMENSIONAL_CHARACTERISTIC_REPRESENTATION": true,
	"DIMENSIONAL_EXPONENTS":                     true,
}

// звенья системы баз: читаются через допуск, своих записей не дают
var datumHelpers = map[string]bool{
	"DATUM_SYSTEM":                        true,
	"DATUM_REFERENCE":                     true,
	"DATUM_REFERENCE_COMPARTMENT":         true,
	"DATUM_REFERENCE_ELEMENT":             true,
	"DATUM_REFERENCE_MODIFIER_WITH_VALUE": true,
}

// classify maps an entity to its Kind. Exact names win over family
// patterns, dimensions are checked before tolerances and datums.
func classify(e *graph.Entity) Kind {
	types := entityTypes(e)

	for _, t := range types {
		switch t {
		case typeDimensionalLocation:
			return KindDimensionalLocation
		case typeDimensionalSize:
			return KindDimensionalSize
		}
	}
	for _, t := range types {
		if notDimension[t] {
			continue
		}
		if strings.HasPrefix(t, "DIMENSIONAL_") || t == "ANGULAR_LOCATION" || t == "ANGULAR_SIZE" {
			return KindDimensionOther
		}
	}

	for _, t := range types {
		if t == typePlusMinusTolerance {
			return KindPlusMinusTolerance
		}
	}
	for _, t := range types {
		if isGeometricTolerance(t) {
			return KindGeometricTolerance
		}
	}
	for _, t := range types {
		if isOtherTolerance(t) {
			return KindToleranceOther
		}
	}

	for _, t := range types {
		switch t {
		case typeDatum:
			return KindDatum
		case typeDatumFeature:
			return KindDatumFeature
		}
	}
	for _, t := range types {
		if strings.HasPrefix(t, "DATUM_") && !datumHelpers[t] {
			return KindDatumOther
		}
	}
	return KindNone
}

func isGeometricTolerance(t string) bool {
	if _, ok := toleranceTypes[t]; ok {
		return true
	}
	return strings.Contains(t, typeGeometricTolerance) && !strings.HasSuffix(t, "_RELATIONSHIP")
}

// isOtherTolerance: *TOLERANCE* types that carry no PMI of their own
// (TOLERANCE_VALUE, TOLERANCE_ZONE*) are helpers and not records.
func isOtherTolerance(t string) bool {
	if !strings.Contains(t, "TOLERANCE") {
		return false
	}
	if t == "TOLERANCE_VALUE" || strings.HasPrefix(t, "TOLERANCE_ZONE") {
		return false
	}
	if strings.HasSuffix(t, "_RELATIONSHIP") {
		return false
	}
	return true
}

// entityTypes returns the type of a simple entity or the partial types of a complex one.
func entityTypes(e *graph.Entity) []string {
	if e.IsComplex() {
		return e.Parts
	}
	return []string{e.Type}
}
