package parser

import (
	"fmt"

	"stepscan/internal/diag"
)

// MalformedRecordError reports a structural violation that stops the load.
// Offset is a byte offset into the normalized file content.
type MalformedRecordError struct {
	Path   string
	Offset uint32
	Line   uint32
	Column uint32
	// ID is the instance id of the offending record when known.
	ID     uint64
	Code   diag.Code
	Reason string
}

func (e *MalformedRecordError) Error() string {
	where := fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	if e.ID != 0 {
		return fmt.Sprintf("%s: malformed record #%d: %s (offset %d)", where, e.ID, e.Reason, e.Offset)
	}
	return fmt.Sprintf("%s: malformed exchange structure: %s (offset %d)", where, e.Reason, e.Offset)
}
