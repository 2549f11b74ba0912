package graph

import (
	"fmt"
	"slices"

	"stepscan/internal/value"
)

// Resolve returns the entity with the given id.
func (t *Table) Resolve(id uint64) (*Entity, error) {
	e, ok := t.byID[id]
	if !ok {
		return nil, &DanglingReferenceError{ID: id}
	}
	return e, nil
}

// ResolveTyped resolves id and checks that the entity, or one of its
// partial types, is one of types.
func (t *Table) ResolveTyped(id uint64, types ...string) (*Entity, error) {
	e, err := t.Resolve(id)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 || slices.ContainsFunc(types, e.HasType) {
		return e, nil
	}
	return nil, &TypeMismatchError{ID: id, Actual: e.TypeLabel(), Expected: types}
}

// Deref resolves a Reference attribute value; types are optional.
func (t *Table) Deref(v value.Value, types ...string) (*Entity, error) {
	id, ok := v.AsRef()
	if !ok {
		return nil, fmt.Errorf("attribute %s is %s, not a reference", v.String(), v.Kind)
	}
	return t.ResolveTyped(id, types...)
}

// Trail tracks the ids on the current path of a recursive walk.
// It is not safe for concurrent use; each walk owns its trail.
type Trail struct {
	path   []uint64
	onPath map[uint64]struct{}
}

func (t *Table) NewTrail() *Trail {
	return &Trail{onPath: make(map[uint64]struct{})}
}

// Enter pushes id. If id is already on the path the walk has looped and
// Enter fails with *CyclicReferenceError without pushing.
func (tr *Trail) Enter(id uint64) error {
	if _, ok := tr.onPath[id]; ok {
		cycle := slices.Clone(tr.path)
		cycle = append(cycle, id)
		return &CyclicReferenceError{Path: cycle}
	}
	tr.onPath[id] = struct{}{}
	tr.path = append(tr.path, id)
	return nil
}

// Leave pops id; ids must be left in reverse order of Enter.
func (tr *Trail) Leave(id uint64) {
	n := len(tr.path)
	if n == 0 || tr.path[n-1] != id {
		panic(fmt.Sprintf("graph: Trail.Leave(#%d) out of order", id))
	}
	tr.path = tr.path[:n-1]
	delete(tr.onPath, id)
}

func (tr *Trail) Depth() int { return len(tr.path) }

// Path returns a copy of the current path.
func (tr *Trail) Path() []uint64 { return slices.Clone(tr.path) }
