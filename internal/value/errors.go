package value

import "fmt"

// AttributeParseError reports an attribute list that cannot be parsed.
// It is recoverable per record: the caller decides whether to skip the entity.
type AttributeParseError struct {
	// ID is the instance id of the owning record, 0 for header records or standalone text.
	ID  uint64
	Raw string
	// Offset is the byte offset of the failure inside the file (or inside Raw for standalone text).
	Offset uint32
	Reason string
	// TooDeep is set when the failure is the nesting limit.
	TooDeep bool
}

func (e *AttributeParseError) Error() string {
	raw := e.Raw
	if len(raw) > 80 {
		raw = raw[:77] + "..."
	}
	if e.ID != 0 {
		return fmt.Sprintf("attribute parse error in #%d at offset %d: %s: (%s)", e.ID, e.Offset, e.Reason, raw)
	}
	return fmt.Sprintf("attribute parse error at offset %d: %s: (%s)", e.Offset, e.Reason, raw)
}
