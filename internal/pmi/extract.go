package pmi

import (
	"fmt"

	"stepscan/internal/graph"
	"stepscan/internal/value"
)

type zoneInfo struct {
	id   uint64
	form string
}

// extractor holds the reverse indexes of one Extract call.
type extractor struct {
	table *graph.Table
	// dimension id -> SHAPE_DIMENSION_REPRESENTATION id
	dimRep map[uint64]uint64
	// dimension id -> PLUS_MINUS_TOLERANCE id
	dimTol map[uint64]uint64
	// tolerance id -> TOLERANCE_ZONE
	zones map[uint64]zoneInfo
	// polyline / curve set id -> first annotation occurrence that reaches it
	hints  map[uint64]*AnnotationHint
	units  map[uint64]string
	cycles int
}

// Extract walks table and returns its semantic and presentation PMI.
func Extract(table *graph.Table) *Result {
	x := &extractor{
		table:  table,
		dimRep: make(map[uint64]uint64),
		dimTol: make(map[uint64]uint64),
		zones:  make(map[uint64]zoneInfo),
		hints:  make(map[uint64]*AnnotationHint),
		units:  make(map[uint64]string),
	}
	x.index()

	res := &Result{
		Records:      []Record{},
		Polylines:    []Polyline{},
		Associations: []Association{},
	}
	for _, e := range table.Entities() {
		if hasAnnotationType(e) {
			res.AnnotationCount++
		}
		if k := classify(e); k != KindNone {
			res.Records = append(res.Records, x.record(e, k))
			continue
		}
		switch {
		case e.HasType("POLYLINE"):
			res.Polylines = append(res.Polylines, x.polyline(e))
		case e.HasType("TESSELLATED_CURVE_SET"):
			res.Polylines = append(res.Polylines, x.curveSet(e)...)
		case isAssociation(e):
			res.Associations = append(res.Associations, x.association(e))
		}
	}
	res.Stats = computeStats(res, x.cycles)
	return res
}

// index строит обратные ссылки, которых нет в самих PMI сущностях.
func (x *extractor) index() {
	var occurrences []*graph.Entity
	for _, e := range x.table.Entities() {
		switch {
		case e.Type == "DIMENSIONAL_CHARACTERISTIC_REPRESENTATION":
			dim, _ := e.Attr(0)
			rep, _ := e.Attr(1)
			d, ok1 := dim.AsRef()
			r, ok2 := rep.AsRef()
			if _, seen := x.dimRep[d]; ok1 && ok2 && !seen {
				x.dimRep[d] = r
			}

		case e.Type == typePlusMinusTolerance:
			dim, _ := e.Attr(1)
			if d, ok := dim.AsRef(); ok {
				if _, seen := x.dimTol[d]; !seen {
					x.dimTol[d] = e.ID
				}
			}

		case e.Type == "TOLERANCE_ZONE":
			// (name, description, of_shape, product_definitional, defining_tolerance, form)
			zone := zoneInfo{id: e.ID}
			if form, ok := e.Attr(5); ok {
				zone.form = x.zoneForm(form)
			}
			defining, _ := e.Attr(4)
			for _, tol := range defining.Refs() {
				if _, seen := x.zones[tol]; !seen {
					x.zones[tol] = zone
				}
			}

		case isOccurrence(e):
			occurrences = append(occurrences, e)
		}
	}
	for _, occ := range occurrences {
		x.annotate(occ)
	}
}

func (x *extractor) zoneForm(v value.Value) string {
	id, ok := v.AsRef()
	if !ok {
		return ""
	}
	f, err := x.table.ResolveTyped(id, "TOLERANCE_ZONE_FORM")
	if err != nil {
		return ""
	}
	name, _ := f.Attr(0)
	s, _ := name.AsString()
	return s
}

// record dispatches to the handler of kind k.
func (x *extractor) record(e *graph.Entity, k Kind) Record {
	r := Record{
		Kind:     k,
		Family:   k.Family(),
		EntityID: e.ID,
		TypeName: e.TypeLabel(),
	}
	switch k {
	case KindDimensionalLocation:
		x.dimensionalLocation(e, &r)
	case KindDimensionalSize:
		x.dimensionalSize(e, &r)
	case KindDimensionOther:
		x.dimensionOther(e, &r)
	case KindGeometricTolerance:
		x.geometricTolerance(e, &r)
	case KindPlusMinusTolerance:
		x.plusMinus(e, &r)
	case KindToleranceOther:
		x.toleranceOther(e, &r)
	case KindDatum:
		x.datum(e, &r)
	case KindDatumFeature:
		x.datumFeature(e, &r)
	case KindDatumOther:
		x.datumOther(e, &r)
	}
	return r
}

// DIMENSIONAL_LOCATION(name, description, relating_shape_aspect, related_shape_aspect)
func (x *extractor) dimensionalLocation(e *graph.Entity, r *Record) {
	attrs := x.partAttrs(e, r, typeDimensionalLocation)
	x.nameDescription(attrs, r)
	for i := 2; i < 4 && i < len(attrs); i++ {
		x.geometry(attrs[i], r)
	}
	x.dimensionValue(e, r)
	x.dimensionTolerance(e, r)
}

// DIMENSIONAL_SIZE(applies_to, name)
func (x *extractor) dimensionalSize(e *graph.Entity, r *Record) {
	attrs := x.partAttrs(e, r, typeDimensionalSize)
	if len(attrs) > 0 {
		x.geometry(attrs[0], r)
	}
	if len(attrs) > 1 {
		r.Name, _ = attrs[1].AsString()
	}
	x.dimensionValue(e, r)
	x.dimensionTolerance(e, r)
}

func (x *extractor) dimensionOther(e *graph.Entity, r *Record) {
	x.generic(e, r)
	x.dimensionValue(e, r)
	x.dimensionTolerance(e, r)
}

// dimensionValue: DIMENSIONAL_CHARACTERISTIC_REPRESENTATION ->
// SHAPE_DIMENSION_REPRESENTATION(name, items, context) -> first measure item.
func (x *extractor) dimensionValue(e *graph.Entity, r *Record) {
	repID, ok := x.dimRep[e.ID]
	if !ok {
		return
	}
	rep, ok := x.resolve(repID, r, "SHAPE_DIMENSION_REPRESENTATION")
	if !ok {
		return
	}
	items, _ := rep.Attr(1)
	for _, id := range items.Refs() {
		it, ok := x.resolve(id, r)
		if !ok {
			continue
		}
		if m := x.measureOf(it); m != nil {
			r.Value = m
			return
		}
	}
}

// dimensionTolerance attaches the bounds of a PLUS_MINUS_TOLERANCE to its dimension.
func (x *extractor) dimensionTolerance(e *graph.Entity, r *Record) {
	tolID, ok := x.dimTol[e.ID]
	if !ok {
		return
	}
	tol, ok := x.resolve(tolID, r)
	if !ok {
		return
	}
	det := &ToleranceDetail{ToleranceID: tolID}
	if rng, ok := tol.Attr(0); ok {
		x.toleranceRange(rng, det, r)
	}
	r.Tolerance = det
}

func (x *extractor) toleranceOther(e *graph.Entity, r *Record) {
	attrs := x.mainAttrs(e, r)
	x.nameDescription(attrs, r)
	if len(attrs) > 2 {
		r.Value = x.measureAttr(attrs[2], r)
	}
	for i := 3; i < len(attrs); i++ {
		if attrs[i].Kind == value.KindRef {
			x.geometry(attrs[i], r)
		}
	}
}

// DATUM(name, description, of_shape, product_definitional, identification)
func (x *extractor) datum(e *graph.Entity, r *Record) {
	attrs := x.partAttrs(e, r, typeDatum)
	r.Datum = x.shapeAspect(attrs, r)
	if len(attrs) > 4 {
		r.Datum.Label, _ = attrs[4].AsString()
	}
}

// DATUM_FEATURE(name, description, of_shape, product_definitional)
func (x *extractor) datumFeature(e *graph.Entity, r *Record) {
	attrs := x.partAttrs(e, r, typeDatumFeature)
	r.Datum = x.shapeAspect(attrs, r)
}

func (x *extractor) datumOther(e *graph.Entity, r *Record) {
	x.generic(e, r)
}

// shapeAspect reads the SHAPE_ASPECT prefix shared by datums and datum features.
func (x *extractor) shapeAspect(attrs []value.Value, r *Record) *DatumDetail {
	d := &DatumDetail{ProductDefinitional: value.Unknown}
	x.nameDescription(attrs, r)
	if len(attrs) > 2 {
		if shape, ok := attrs[2].AsRef(); ok {
			d.ShapeID = shape
			x.geometry(attrs[2], r)
		}
	}
	if len(attrs) > 3 {
		if l, ok := attrs[3].Logical(); ok {
			d.ProductDefinitional = l
		}
	}
	return d
}

// generic handles the *Other kinds: the first string is the name, direct
// references are the geometry.
func (x *extractor) generic(e *graph.Entity, r *Record) {
	attrs := x.mainAttrs(e, r)
	named := false
	for _, a := range attrs {
		if s, ok := a.AsString(); ok && !named {
			r.Name, named = s, true
			continue
		}
		if a.Kind == value.KindRef {
			x.geometry(a, r)
		}
	}
}

// association reads DRAUGHTING_MODEL_ITEM_ASSOCIATION(name, description,
// definition, used_representation, identified_item).
func (x *extractor) association(e *graph.Entity) Association {
	a := Association{EntityID: e.ID}
	attrs := e.Attrs
	if e.IsComplex() {
		for _, p := range e.Parts {
			if !isAssociationType(p) {
				continue
			}
			var err error
			if attrs, _, err = e.Params(p); err != nil {
				a.degrade("%s parameters: %v", p, err)
			}
			break
		}
	}
	if len(attrs) > 0 {
		a.Name, _ = attrs[0].AsString()
	}
	if len(attrs) > 2 {
		if id, ok := attrs[2].AsRef(); ok {
			a.DefinitionID = id
			if def, err := x.table.Resolve(id); err == nil {
				a.DefinitionType = def.TypeLabel()
			} else {
				a.degrade("definition: %v", err)
			}
		}
	}
	if len(attrs) > 3 {
		a.ModelID, _ = attrs[3].AsRef()
	}
	if len(attrs) > 4 {
		for _, id := range attrs[4].Refs() {
			if _, ok := x.table.Get(id); !ok {
				a.degrade("identified item #%d does not resolve", id)
				continue
			}
			a.PresentationIDs = append(a.PresentationIDs, id)
		}
	}
	return a
}

// --- helpers ---

func (a *Association) degrade(format string, args ...any) {
	a.Degraded = true
	a.Issues = append(a.Issues, fmt.Sprintf(format, args...))
}

func (x *extractor) degrade(r *Record, format string, args ...any) {
	r.Degraded = true
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// resolve is ResolveTyped that degrades r instead of returning an error.
func (x *extractor) resolve(id uint64, r *Record, types ...string) (*graph.Entity, bool) {
	e, err := x.table.ResolveTyped(id, types...)
	if err != nil {
		x.degrade(r, "%v", err)
		return nil, false
	}
	return e, true
}

// partAttrs returns the attributes of a simple entity, or the parameters
// of partial type name of a complex one (nil when it has no such part).
func (x *extractor) partAttrs(e *graph.Entity, r *Record, name string) []value.Value {
	if !e.IsComplex() {
		return e.Attrs
	}
	params, found, err := e.Params(name)
	if err != nil {
		x.degrade(r, "#%d %s: %v", e.ID, name, err)
		return nil
	}
	if !found {
		return nil
	}
	return params
}

// mainAttrs: for complex entities the first partial type with parameters.
func (x *extractor) mainAttrs(e *graph.Entity, r *Record) []value.Value {
	if !e.IsComplex() {
		return e.Attrs
	}
	for _, p := range e.Parts {
		if params := x.partAttrs(e, r, p); len(params) > 0 {
			return params
		}
	}
	return nil
}

func (x *extractor) nameDescription(attrs []value.Value, r *Record) {
	if len(attrs) > 0 {
		r.Name, _ = attrs[0].AsString()
	}
	if len(attrs) > 1 {
		r.Description, _ = attrs[1].AsString()
	}
}

// geometry appends every resolvable reference in v.
func (x *extractor) geometry(v value.Value, r *Record) {
	for _, id := range v.Refs() {
		if _, ok := x.resolve(id, r); ok {
			r.Geometry = append(r.Geometry, id)
		}
	}
}
