package pmi

import (
	"fmt"
	"strings"

	"stepscan/internal/graph"
	"stepscan/internal/value"
)

// polyline reads POLYLINE(name, points). Points are CARTESIAN_POINT
// references or, in some exporters, inline coordinate lists.
func (x *extractor) polyline(e *graph.Entity) Polyline {
	p := Polyline{EntityID: e.ID, Strip: -1, Points: []Point{}}
	attrs := e.Attrs
	if e.IsComplex() {
		var err error
		if attrs, _, err = e.Params("POLYLINE"); err != nil {
			p.issue("POLYLINE parameters: %v", err)
		}
	}
	if len(attrs) > 0 {
		p.Name, _ = attrs[0].AsString()
	}
	var items []value.Value
	if len(attrs) > 1 {
		var ok bool
		if items, ok = attrs[1].AsList(); !ok {
			p.issue("points are %s, not a list", attrs[1].Kind)
		}
	} else if len(p.Issues) == 0 {
		p.issue("no points attribute")
	}
	for _, it := range items {
		switch it.Kind {
		case value.KindRef:
			pt, ok := x.cartesianPoint(it.Ref)
			if !ok {
				p.Missing++
				continue
			}
			p.Points = append(p.Points, pt)
			p.PointIDs = append(p.PointIDs, it.Ref)
		case value.KindList:
			pt, ok := coordinates(it)
			if !ok {
				p.Missing++
				continue
			}
			p.Points = append(p.Points, pt)
		default:
			p.Missing++
		}
	}
	p.Partial = p.Missing > 0 || len(p.Issues) > 0
	p.Annotation = x.hints[e.ID]
	return p
}

func (p *Polyline) issue(format string, args ...any) {
	p.Issues = append(p.Issues, fmt.Sprintf(format, args...))
}

// CARTESIAN_POINT(name, coordinates)
func (x *extractor) cartesianPoint(id uint64) (Point, bool) {
	e, err := x.table.ResolveTyped(id, "CARTESIAN_POINT")
	if err != nil {
		return Point{}, false
	}
	coords, ok := e.Attr(1)
	if !ok {
		return Point{}, false
	}
	return coordinates(coords)
}

// coordinates reads a list of 1 to 3 numbers; missing axes are zero.
func coordinates(v value.Value) (Point, bool) {
	items, ok := v.AsList()
	if !ok || len(items) == 0 || len(items) > 3 {
		return Point{}, false
	}
	var xyz [3]float64
	for i, it := range items {
		f, ok := it.AsFloat()
		if !ok {
			return Point{}, false
		}
		xyz[i] = f
	}
	return Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

// curveSet reads TESSELLATED_CURVE_SET(name, coordinates, line_strips):
// one Polyline per strip, indices are 1-based into
// COORDINATES_LIST(name, npoints, position_coords).
func (x *extractor) curveSet(e *graph.Entity) []Polyline {
	hint := x.hints[e.ID]
	// без разобранных полос набор всё равно попадает в результат одной помеченной записью
	broken := func(name string, format string, args ...any) []Polyline {
		p := Polyline{EntityID: e.ID, Strip: -1, Name: name, Points: []Point{}, Partial: true, Annotation: hint}
		p.issue(format, args...)
		return []Polyline{p}
	}

	attrs := e.Attrs
	if e.IsComplex() {
		var err error
		if attrs, _, err = e.Params("TESSELLATED_CURVE_SET"); err != nil {
			return broken("", "TESSELLATED_CURVE_SET parameters: %v", err)
		}
	}
	name := ""
	if len(attrs) > 0 {
		name, _ = attrs[0].AsString()
	}
	var coords []value.Value
	var coordIssue string
	if len(attrs) > 1 {
		if id, ok := attrs[1].AsRef(); ok {
			if list, err := x.table.ResolveTyped(id, "COORDINATES_LIST"); err == nil {
				pos, _ := list.Attr(2)
				coords, _ = pos.AsList()
			} else {
				coordIssue = err.Error()
			}
		}
	}
	if len(attrs) < 3 {
		return broken(name, "no line strips attribute")
	}
	strips, ok := attrs[2].AsList()
	if !ok {
		return broken(name, "line strips are %s, not a list", attrs[2].Kind)
	}

	out := make([]Polyline, 0, len(strips))
	for s, strip := range strips {
		p := Polyline{EntityID: e.ID, Strip: s, Name: name, Points: []Point{}, Annotation: hint}
		if coordIssue != "" {
			p.issue("%s", coordIssue)
		}
		indices, _ := strip.AsList()
		for _, idx := range indices {
			n, ok := idx.AsInt()
			if !ok || n < 1 || n > int64(len(coords)) {
				p.Missing++
				continue
			}
			pt, ok := coordinates(coords[n-1])
			if !ok {
				p.Missing++
				continue
			}
			p.Points = append(p.Points, pt)
		}
		p.Partial = p.Missing > 0 || len(p.Issues) > 0
		out = append(out, p)
	}
	return out
}

func isOccurrenceType(t string) bool {
	return strings.HasSuffix(t, "ANNOTATION_OCCURRENCE") ||
		(strings.HasPrefix(t, "ANNOTATION_") && strings.HasSuffix(t, "_OCCURRENCE"))
}

func isOccurrence(e *graph.Entity) bool {
	for _, t := range entityTypes(e) {
		if isOccurrenceType(t) {
			return true
		}
	}
	return false
}

func hasAnnotationType(e *graph.Entity) bool {
	for _, t := range entityTypes(e) {
		if strings.Contains(t, "ANNOTATION") {
			return true
		}
	}
	return false
}

func isAssociationType(t string) bool {
	return strings.HasPrefix(t, "DRAUGHTING_MODEL_ITEM_ASSOCIATION")
}

func isAssociation(e *graph.Entity) bool {
	for _, t := range entityTypes(e) {
		if isAssociationType(t) {
			return true
		}
	}
	return false
}

// контейнеры, через которые аннотация доходит до своих полилиний
var containerTypes = map[string]bool{
	"GEOMETRIC_CURVE_SET":       true,
	"GEOMETRIC_SET":             true,
	"TESSELLATED_GEOMETRIC_SET": true,
	"ANNOTATION_CURVE":          true,
}

func isContainer(e *graph.Entity) bool {
	for _, t := range entityTypes(e) {
		if containerTypes[t] || isOccurrenceType(t) {
			return true
		}
	}
	return false
}

// annotate walks one annotation occurrence down to the polylines it draws.
// The first occurrence in file order that reaches a polyline names it.
func (x *extractor) annotate(occ *graph.Entity) {
	hint := &AnnotationHint{OccurrenceID: occ.ID, Type: occ.TypeLabel()}
	if occ.IsComplex() {
		if ri, found, err := occ.Params("REPRESENTATION_ITEM"); found && err == nil && len(ri) > 0 {
			hint.Name, _ = ri[0].AsString()
		}
	} else if name, ok := occ.Attr(0); ok {
		hint.Name, _ = name.AsString()
	}
	w := annotationWalk{trail: x.table.NewTrail(), done: make(map[uint64]struct{}), hint: hint}
	x.walk(&w, occ)
}

// annotationWalk: trail ловит циклы, done отсекает уже пройденные общие поддеревья.
type annotationWalk struct {
	trail *graph.Trail
	done  map[uint64]struct{}
	hint  *AnnotationHint
}

func (x *extractor) walk(w *annotationWalk, e *graph.Entity) {
	if _, ok := w.done[e.ID]; ok {
		return
	}
	if err := w.trail.Enter(e.ID); err != nil {
		x.cycles++
		return
	}
	defer func() {
		w.trail.Leave(e.ID)
		w.done[e.ID] = struct{}{}
	}()

	if e.HasType("POLYLINE") || e.HasType("TESSELLATED_CURVE_SET") {
		if _, seen := x.hints[e.ID]; !seen {
			x.hints[e.ID] = w.hint
		}
		return
	}
	if !isContainer(e) {
		return
	}
	for _, child := range childRefs(e) {
		c, ok := x.table.Get(child)
		if !ok {
			continue
		}
		x.walk(w, c)
	}
}

// childRefs: all references except in the leading name attribute.
func childRefs(e *graph.Entity) []uint64 {
	var out []uint64
	if !e.IsComplex() {
		for i := 1; i < len(e.Attrs); i++ {
			out = append(out, e.Attrs[i].Refs()...)
		}
		return out
	}
	for i := range e.Attrs {
		out = append(out, e.Attrs[i].Refs()...)
	}
	return out
}
