package graph

import (
	"fmt"
	"strconv"
	"strings"

	"stepscan/internal/source"
)

// DuplicateInstanceIDError: the same instance name is defined twice in DATA.
type DuplicateInstanceIDError struct {
	Path   string
	ID     uint64
	First  source.Span
	Second source.Span
	// Line numbers of both definitions, 1-based.
	FirstLine  uint32
	SecondLine uint32
}

func (e *DuplicateInstanceIDError) Error() string {
	return fmt.Sprintf("%s:%d: duplicate instance #%d (first defined at line %d)", e.Path, e.SecondLine, e.ID, e.FirstLine)
}

// DanglingReferenceError: no entity with this id exists.
type DanglingReferenceError struct {
	ID uint64
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference #%d", e.ID)
}

// TypeMismatchError: the entity exists but is not of any expected type.
type TypeMismatchError struct {
	ID       uint64
	Actual   string
	Expected []string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("#%d is %s, expected %s", e.ID, e.Actual, strings.Join(e.Expected, " or "))
}

// CyclicReferenceError: a walk reached an id that is already on its path.
// Path ends with the repeated id.
type CyclicReferenceError struct {
	Path []uint64
}

func (e *CyclicReferenceError) Error() string {
	var sb strings.Builder
	sb.WriteString("reference cycle: ")
	for i, id := range e.Path {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteByte('#')
		sb.WriteString(strconv.FormatUint(id, 10))
	}
	return sb.String()
}
