package pmi

import (
	"strings"

	"stepscan/internal/graph"
	"stepscan/internal/value"
)

// ToleranceType is the geometric characteristic of a geometric tolerance.
type ToleranceType uint8

const (
	ToleranceUnknown ToleranceType = iota
	ToleranceAngularity
	ToleranceCircularRunout
	ToleranceCoaxiality
	ToleranceConcentricity
	ToleranceCylindricity
	ToleranceFlatness
	ToleranceLineProfile
	ToleranceParallelism
	TolerancePerpendicularity
	TolerancePosition
	ToleranceRoundness
	ToleranceStraightness
	ToleranceSurfaceProfile
	ToleranceSymmetry
	ToleranceTotalRunout
	toleranceTypeCount
)

var toleranceTypes = map[string]ToleranceType{
	"ANGULARITY_TOLERANCE":       ToleranceAngularity,
	"CIRCULAR_RUNOUT_TOLERANCE":  ToleranceCircularRunout,
	"COAXIALITY_TOLERANCE":       ToleranceCoaxiality,
	"CONCENTRICITY_TOLERANCE":    ToleranceConcentricity,
	"CYLINDRICITY_TOLERANCE":     ToleranceCylindricity,
	"FLATNESS_TOLERANCE":         ToleranceFlatness,
	"LINE_PROFILE_TOLERANCE":     ToleranceLineProfile,
	"PARALLELISM_TOLERANCE":      ToleranceParallelism,
	"PERPENDICULARITY_TOLERANCE": TolerancePerpendicularity,
	"POSITION_TOLERANCE":         TolerancePosition,
	"ROUNDNESS_TOLERANCE":        ToleranceRoundness,
	"STRAIGHTNESS_TOLERANCE":     ToleranceStraightness,
	"SURFACE_PROFILE_TOLERANCE":  ToleranceSurfaceProfile,
	"SYMMETRY_TOLERANCE":         ToleranceSymmetry,
	"TOTAL_RUNOUT_TOLERANCE":     ToleranceTotalRunout,
}

var toleranceTypeNames = [...]string{
	ToleranceUnknown:          "unknown",
	ToleranceAngularity:       "angularity",
	ToleranceCircularRunout:   "circular_runout",
	ToleranceCoaxiality:       "coaxiality",
	ToleranceConcentricity:    "concentricity",
	ToleranceCylindricity:     "cylindricity",
	ToleranceFlatness:         "flatness",
	ToleranceLineProfile:      "line_profile",
	ToleranceParallelism:      "parallelism",
	TolerancePerpendicularity: "perpendicularity",
	TolerancePosition:         "position",
	ToleranceRoundness:        "roundness",
	ToleranceStraightness:     "straightness",
	ToleranceSurfaceProfile:   "surface_profile",
	ToleranceSymmetry:         "symmetry",
	ToleranceTotalRunout:      "total_runout",
}

func (t ToleranceType) String() string {
	if int(t) < len(toleranceTypeNames) {
		return toleranceTypeNames[t]
	}
	return "unknown"
}

func toleranceTypeOf(e *graph.Entity) ToleranceType {
	for _, t := range entityTypes(e) {
		if tt, ok := toleranceTypes[t]; ok {
			return tt
		}
	}
	return ToleranceUnknown
}

// Modifier tags that have a common short name.
var modifierNames = map[string]string{
	"MAXIMUM_MATERIAL_REQUIREMENT": "MMC",
	"LEAST_MATERIAL_REQUIREMENT":   "LMC",
	"REGARDLESS_OF_FEATURE_SIZE":   "RFS",
	"PROJECTED":                    "PROJECTED",
	"FREE_STATE":                   "FREE_STATE",
	"TANGENT_PLANE":                "TANGENT_PLANE",
}

func modifierName(tag string) string {
	if short, ok := modifierNames[tag]; ok {
		return short
	}
	return tag
}

// enumTags collects enumeration tags from a value or a list of values.
func enumTags(v value.Value) []string {
	if tag, ok := v.AsEnum(); ok {
		return []string{modifierName(tag)}
	}
	items, ok := v.AsList()
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		if tag, ok := it.AsEnum(); ok {
			out = append(out, modifierName(tag))
		}
	}
	return out
}

var precedences = [...]string{"primary", "secondary", "tertiary"}

func precedenceAt(i int) string {
	if i < len(precedences) {
		return precedences[i]
	}
	return "other"
}

// geometricTolerance handles the 15 tolerance types and GEOMETRIC_TOLERANCE
// subtypes, simple or complex. Base attributes are
// (name, description, magnitude, toleranced_shape_aspect).
func (x *extractor) geometricTolerance(e *graph.Entity, r *Record) {
	base := x.partAttrs(e, r, typeGeometricTolerance)
	x.nameDescription(base, r)
	if len(base) > 2 {
		r.Value = x.measureAttr(base[2], r)
	}
	if len(base) > 3 {
		x.geometry(base[3], r)
	}

	det := &ToleranceDetail{Type: toleranceTypeOf(e)}
	r.Tolerance = det

	// атрибуты подтипов: в сложном экземпляре свои части, в простом хвост после базовых четырёх
	var datumSystems, modifiers []value.Value
	if e.IsComplex() {
		if p := x.partAttrs(e, r, "GEOMETRIC_TOLERANCE_WITH_DATUM_REFERENCE"); len(p) > 0 {
			datumSystems = append(datumSystems, p[0])
		}
		if p := x.partAttrs(e, r, "GEOMETRIC_TOLERANCE_WITH_MODIFIERS"); len(p) > 0 {
			modifiers = append(modifiers, p[0])
		}
	} else if len(base) > 4 {
		for _, v := range base[4:] {
			if len(enumTags(v)) > 0 {
				modifiers = append(modifiers, v)
			} else if len(v.Refs()) > 0 {
				datumSystems = append(datumSystems, v)
			}
		}
	}
	for _, v := range modifiers {
		det.Modifiers = append(det.Modifiers, enumTags(v)...)
	}
	for _, v := range datumSystems {
		for _, id := range v.Refs() {
			x.datumSystem(id, det, r)
		}
	}

	if zone, ok := x.zones[e.ID]; ok {
		det.ZoneID = zone.id
		det.ZoneForm = zone.form
	}
}

// datumSystem follows DATUM_SYSTEM -> DATUM_REFERENCE_COMPARTMENT -> DATUM,
// or the older DATUM_REFERENCE(precedence, DATUM).
func (x *extractor) datumSystem(id uint64, det *ToleranceDetail, r *Record) {
	sys, ok := x.resolve(id, r, "DATUM_SYSTEM", "DATUM_REFERENCE")
	if !ok {
		return
	}
	if sys.HasType("DATUM_REFERENCE") {
		ref := DatumRef{Precedence: precedenceAt(len(det.Datums))}
		if d, ok := sys.Attr(1); ok {
			x.datumBase(d, &ref, r)
		}
		det.Datums = append(det.Datums, ref)
		return
	}

	// DATUM_SYSTEM(name, description, of_shape, product_definitional, constituents)
	constituents, ok := sys.Attr(4)
	if !ok {
		x.degrade(r, "datum system #%d has no constituents", id)
		return
	}
	for _, cid := range constituents.Refs() {
		comp, ok := x.resolve(cid, r, "DATUM_REFERENCE_COMPARTMENT")
		if !ok {
			continue
		}
		ref := DatumRef{Precedence: precedenceAt(len(det.Datums)), CompartmentID: cid}
		// (name, description, of_shape, product_definitional, base, modifiers)
		if base, ok := comp.Attr(4); ok {
			x.datumBase(base, &ref, r)
		}
		if mods, ok := comp.Attr(5); ok {
			ref.Modifiers = enumTags(mods)
		}
		det.Datums = append(det.Datums, ref)
	}
}

// datumBase resolves a DATUM, or a common datum given as a list of
// DATUM_REFERENCE_ELEMENTs; labels of a common datum join with "-".
func (x *extractor) datumBase(v value.Value, ref *DatumRef, r *Record) {
	var labels []string
	for _, id := range v.Refs() {
		d, ok := x.resolve(id, r, typeDatum, "DATUM_REFERENCE_ELEMENT")
		if !ok {
			continue
		}
		if d.HasType("DATUM_REFERENCE_ELEMENT") {
			inner, ok := d.Attr(4)
			if !ok {
				continue
			}
			for _, did := range inner.Refs() {
				if dd, ok := x.resolve(did, r, typeDatum); ok {
					ref.DatumIDs = append(ref.DatumIDs, dd.ID)
					labels = append(labels, datumLabel(dd))
				}
			}
			continue
		}
		ref.DatumIDs = append(ref.DatumIDs, d.ID)
		labels = append(labels, datumLabel(d))
	}
	ref.Label = strings.Join(labels, "-")
}

// DATUM(name, description, of_shape, product_definitional, identification)
func datumLabel(d *graph.Entity) string {
	v, _ := d.Attr(4)
	s, _ := v.AsString()
	return s
}

// plusMinus: PLUS_MINUS_TOLERANCE(range, toleranced_dimension).
func (x *extractor) plusMinus(e *graph.Entity, r *Record) {
	attrs := x.partAttrs(e, r, typePlusMinusTolerance)
	det := &ToleranceDetail{}
	r.Tolerance = det
	if len(attrs) > 0 {
		x.toleranceRange(attrs[0], det, r)
	}
	if len(attrs) > 1 {
		if dim, ok := attrs[1].AsRef(); ok {
			det.DimensionID = dim
			if _, ok := x.resolve(dim, r); ok {
				r.Geometry = append(r.Geometry, dim)
			}
		}
	}
}

// toleranceRange reads TOLERANCE_VALUE(lower_bound, upper_bound) or
// LIMITS_AND_FITS(form_variance, zone_variance, grade, source).
func (x *extractor) toleranceRange(v value.Value, det *ToleranceDetail, r *Record) {
	id, ok := v.AsRef()
	if !ok {
		return
	}
	rng, ok := x.resolve(id, r, "TOLERANCE_VALUE", "LIMITS_AND_FITS")
	if !ok {
		return
	}
	if rng.HasType("LIMITS_AND_FITS") {
		form, _ := rng.Attr(0)
		grade, _ := rng.Attr(2)
		f, _ := form.AsString()
		g, _ := grade.AsString()
		det.Fit = f + g
		return
	}
	if lo, ok := rng.Attr(0); ok {
		det.Lower = x.measureAttr(lo, r)
	}
	if hi, ok := rng.Attr(1); ok {
		det.Upper = x.measureAttr(hi, r)
	}
}
