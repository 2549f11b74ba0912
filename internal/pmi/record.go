package pmi

import "stepscan/internal/value"

// Measure is a numeric value with its unit, read from a *_MEASURE_WITH_UNIT
// entity or a measure representation item.
type Measure struct {
	EntityID uint64 `json:"entity_id" msgpack:"entity_id"`
	// Type is the measure wrapper name, e.g. LENGTH_MEASURE.
	Type   string  `json:"type,omitempty" msgpack:"type,omitempty"`
	Value  float64 `json:"value" msgpack:"value"`
	UnitID uint64  `json:"unit_id,omitempty" msgpack:"unit_id,omitempty"`
	// Unit is a short unit label (mm, rad, INCH) when the unit entity resolves.
	Unit string `json:"unit,omitempty" msgpack:"unit,omitempty"`
	// Label is the representation item name, e.g. "nominal value".
	Label string `json:"label,omitempty" msgpack:"label,omitempty"`
}

// DatumRef is one datum of a tolerance's datum system.
type DatumRef struct {
	Label string `json:"label" msgpack:"label"`
	// Precedence is primary, secondary, tertiary or other.
	Precedence    string   `json:"precedence" msgpack:"precedence"`
	DatumIDs      []uint64 `json:"datum_ids" msgpack:"datum_ids"`
	CompartmentID uint64   `json:"compartment_id,omitempty" msgpack:"compartment_id,omitempty"`
	Modifiers     []string `json:"modifiers,omitempty" msgpack:"modifiers,omitempty"`
}

// ToleranceDetail carries the tolerance specific attributes. Geometric
// tolerances fill Type, Modifiers, Datums and the zone; plus-minus
// tolerances fill the bounds.
type ToleranceDetail struct {
	Type      ToleranceType `json:"type" msgpack:"type"`
	Modifiers []string      `json:"modifiers,omitempty" msgpack:"modifiers,omitempty"`
	Datums    []DatumRef    `json:"datums,omitempty" msgpack:"datums,omitempty"`
	ZoneID    uint64        `json:"zone_id,omitempty" msgpack:"zone_id,omitempty"`
	ZoneForm  string        `json:"zone_form,omitempty" msgpack:"zone_form,omitempty"`

	Lower *Measure `json:"lower,omitempty" msgpack:"lower,omitempty"`
	Upper *Measure `json:"upper,omitempty" msgpack:"upper,omitempty"`
	// Fit is the LIMITS_AND_FITS designation, e.g. H7.
	Fit string `json:"fit,omitempty" msgpack:"fit,omitempty"`
	// ToleranceID is the PLUS_MINUS_TOLERANCE attached to a dimension record.
	ToleranceID uint64 `json:"tolerance_id,omitempty" msgpack:"tolerance_id,omitempty"`
	// DimensionID is the dimension a plus-minus tolerance applies to.
	DimensionID uint64 `json:"dimension_id,omitempty" msgpack:"dimension_id,omitempty"`
}

type DatumDetail struct {
	// Label is the DATUM identification, e.g. A.
	Label               string        `json:"label,omitempty" msgpack:"label,omitempty"`
	ShapeID             uint64        `json:"shape_id,omitempty" msgpack:"shape_id,omitempty"`
	ProductDefinitional value.Logical `json:"product_definitional" msgpack:"product_definitional"`
}

// Record is one semantic PMI entity.
type Record struct {
	Kind     Kind   `json:"kind" msgpack:"kind"`
	Family   Family `json:"family" msgpack:"family"`
	EntityID uint64 `json:"entity_id" msgpack:"entity_id"`
	// TypeName is the entity type, (A B C) for complex instances.
	TypeName    string `json:"type_name" msgpack:"type_name"`
	Name        string `json:"name,omitempty" msgpack:"name,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	// Geometry holds the shape aspects or shapes the record applies to.
	Geometry  []uint64         `json:"geometry,omitempty" msgpack:"geometry,omitempty"`
	Value     *Measure         `json:"value,omitempty" msgpack:"value,omitempty"`
	Tolerance *ToleranceDetail `json:"tolerance,omitempty" msgpack:"tolerance,omitempty"`
	Datum     *DatumDetail     `json:"datum,omitempty" msgpack:"datum,omitempty"`
	// Degraded is set when a reference the record needs did not resolve.
	Degraded bool     `json:"degraded,omitempty" msgpack:"degraded,omitempty"`
	Issues   []string `json:"issues,omitempty" msgpack:"issues,omitempty"`
}

type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// AnnotationHint names the annotation occurrence that displays a polyline.
type AnnotationHint struct {
	OccurrenceID uint64 `json:"occurrence_id" msgpack:"occurrence_id"`
	Type         string `json:"type" msgpack:"type"`
	Name         string `json:"name,omitempty" msgpack:"name,omitempty"`
}

// Polyline is one drawn stroke of presentation PMI.
type Polyline struct {
	EntityID uint64 `json:"entity_id" msgpack:"entity_id"`
	// Strip is the line strip index of a TESSELLATED_CURVE_SET, -1 for POLYLINE.
	Strip  int     `json:"strip" msgpack:"strip"`
	Name   string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Points []Point `json:"points" msgpack:"points"`
	// PointIDs are the CARTESIAN_POINT ids of the resolved points; empty for inline coordinates.
	PointIDs []uint64 `json:"point_ids,omitempty" msgpack:"point_ids,omitempty"`
	// Missing counts points that did not resolve. Partial is set when points
	// are missing or the stroke itself could not be read (see Issues).
	Missing    int             `json:"missing,omitempty" msgpack:"missing,omitempty"`
	Partial    bool            `json:"partial,omitempty" msgpack:"partial,omitempty"`
	Issues     []string        `json:"issues,omitempty" msgpack:"issues,omitempty"`
	Annotation *AnnotationHint `json:"annotation,omitempty" msgpack:"annotation,omitempty"`
}

// Association is one DRAUGHTING_MODEL_ITEM_ASSOCIATION: it links a semantic
// PMI definition to the presentation that shows it.
type Association struct {
	EntityID        uint64   `json:"entity_id" msgpack:"entity_id"`
	Name            string   `json:"name,omitempty" msgpack:"name,omitempty"`
	DefinitionID    uint64   `json:"definition_id,omitempty" msgpack:"definition_id,omitempty"`
	DefinitionType  string   `json:"definition_type,omitempty" msgpack:"definition_type,omitempty"`
	ModelID         uint64   `json:"model_id,omitempty" msgpack:"model_id,omitempty"`
	PresentationIDs []uint64 `json:"presentation_ids,omitempty" msgpack:"presentation_ids,omitempty"`
	Degraded        bool     `json:"degraded,omitempty" msgpack:"degraded,omitempty"`
	Issues          []string `json:"issues,omitempty" msgpack:"issues,omitempty"`
}

// Result is everything Extract finds, in DATA file order.
type Result struct {
	Records      []Record      `json:"records" msgpack:"records"`
	Polylines    []Polyline    `json:"polylines" msgpack:"polylines"`
	Associations []Association `json:"associations" msgpack:"associations"`
	// AnnotationCount counts entities with ANNOTATION in a type name.
	AnnotationCount int   `json:"annotation_count" msgpack:"annotation_count"`
	Stats           Stats `json:"stats" msgpack:"stats"`
}
