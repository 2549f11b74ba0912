package pmi

// Stats are the counts a report needs to stay consistent with a full scan.
type Stats struct {
	Kinds    map[string]int `json:"kinds" msgpack:"kinds"`
	Families map[string]int `json:"families" msgpack:"families"`
	Records  int            `json:"records" msgpack:"records"`
	Degraded int            `json:"degraded" msgpack:"degraded"`

	Polylines        int `json:"polylines" msgpack:"polylines"`
	PartialPolylines int `json:"partial_polylines" msgpack:"partial_polylines"`
	SkippedPoints    int `json:"skipped_points" msgpack:"skipped_points"`
	Annotated        int `json:"annotated" msgpack:"annotated"`

	Associations         int `json:"associations" msgpack:"associations"`
	DegradedAssociations int `json:"degraded_associations" msgpack:"degraded_associations"`
	AnnotationCount      int `json:"annotation_count" msgpack:"annotation_count"`
	// Cycles counts reference loops cut while walking annotation trees.
	Cycles int `json:"cycles" msgpack:"cycles"`
}

func computeStats(res *Result, cycles int) Stats {
	s := Stats{
		Kinds:           make(map[string]int),
		Families:        make(map[string]int),
		Records:         len(res.Records),
		Polylines:       len(res.Polylines),
		Associations:    len(res.Associations),
		AnnotationCount: res.AnnotationCount,
		Cycles:          cycles,
	}
	for i := range res.Records {
		r := &res.Records[i]
		s.Kinds[r.Kind.String()]++
		s.Families[r.Family.String()]++
		if r.Degraded {
			s.Degraded++
		}
	}
	for i := range res.Polylines {
		p := &res.Polylines[i]
		if p.Partial {
			s.PartialPolylines++
		}
		s.SkippedPoints += p.Missing
		if p.Annotation != nil {
			s.Annotated++
		}
	}
	for i := range res.Associations {
		if res.Associations[i].Degraded {
			s.DegradedAssociations++
		}
	}
	return s
}

// Count returns the number of records of kind k.
func (s Stats) Count(k Kind) int { return s.Kinds[k.String()] }
