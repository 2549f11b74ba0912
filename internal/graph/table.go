package graph

import (
	"sort"

	"stepscan/internal/source"
)

// Table maps instance ids to entities and keeps DATA file order.
type Table struct {
	file   *source.File
	byID   map[uint64]*Entity
	order  []*Entity
	byType map[string][]*Entity
}

func newTable(file *source.File, size int) *Table {
	return &Table{
		file:   file,
		byID:   make(map[uint64]*Entity, size),
		order:  make([]*Entity, 0, size),
		byType: make(map[string][]*Entity),
	}
}

func (t *Table) add(e *Entity) {
	t.byID[e.ID] = e
	t.order = append(t.order, e)
	if !e.IsComplex() {
		t.byType[e.Type] = append(t.byType[e.Type], e)
		return
	}
	for _, p := range e.Parts {
		t.byType[p] = append(t.byType[p], e)
	}
}

// File returns the file the table was built from.
func (t *Table) File() *source.File { return t.file }

func (t *Table) Len() int { return len(t.order) }

// Get is Resolve without the error value.
func (t *Table) Get(id uint64) (*Entity, bool) {
	e, ok := t.byID[id]
	return e, ok
}

// Entities returns all entities in DATA file order. The slice is shared; do not modify it.
func (t *Table) Entities() []*Entity { return t.order }

// ByType returns the entities of a type, partial types of complex
// instances included, in file order.
func (t *Table) ByType(name string) []*Entity { return t.byType[name] }

type TypeCount struct {
	Type  string `json:"type" msgpack:"type"`
	Count int    `json:"count" msgpack:"count"`
}

// TypeCounts counts entities by Type (first partial type for complex
// instances), most frequent first, ties by name.
func (t *Table) TypeCounts() []TypeCount {
	counts := make(map[string]int)
	for _, e := range t.order {
		counts[e.Type]++
	}
	out := make([]TypeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TypeCount{Type: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}
