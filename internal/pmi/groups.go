package pmi

import (
	"regexp"
	"sort"
	"strings"
)

// groupTypePattern matches names like "Linear Dimension (12)".
var groupTypePattern = regexp.MustCompile(`^([A-Za-z\s]+)\s*\(\d+\)`)

// Group is the set of polylines that share an annotation name.
type Group struct {
	Name string `json:"name"`
	// Type is the name without its "(n)" counter, e.g. "Linear Dimension".
	Type        string   `json:"type"`
	PolylineIDs []uint64 `json:"polyline_ids"`
	Count       int      `json:"count"`
}

// GroupType extracts the annotation type from a polyline name.
func GroupType(name string) string {
	if m := groupTypePattern.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return name
}

func groupName(p *Polyline) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Annotation != nil {
		return p.Annotation.Name
	}
	return ""
}

// Groups groups polylines by name (or by annotation name when the
// polyline has none). Unnamed polylines are left out. Groups are ordered by
// count, larger first, then by first appearance.
func Groups(polylines []Polyline) []Group {
	index := make(map[string]int)
	var out []Group
	for i := range polylines {
		name := groupName(&polylines[i])
		if name == "" {
			continue
		}
		g, ok := index[name]
		if !ok {
			g = len(out)
			index[name] = g
			out = append(out, Group{Name: name, Type: GroupType(name)})
		}
		id := polylines[i].EntityID
		// полосы одного TESSELLATED_CURVE_SET дают один id
		if ids := out[g].PolylineIDs; len(ids) == 0 || ids[len(ids)-1] != id {
			out[g].PolylineIDs = append(out[g].PolylineIDs, id)
		}
		out[g].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

type TypeCount struct {
	Type   string `json:"type"`
	Groups int    `json:"groups"`
}

// GroupTypes counts groups per annotation type, most frequent first.
func GroupTypes(groups []Group) []TypeCount {
	index := make(map[string]int)
	var out []TypeCount
	for _, g := range groups {
		i, ok := index[g.Type]
		if !ok {
			i = len(out)
			index[g.Type] = i
			out = append(out, TypeCount{Type: g.Type})
		}
		out[i].Groups++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Groups > out[j].Groups })
	return out
}
