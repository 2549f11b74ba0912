// Package diag defines the diagnostic model shared by all load phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     the lexer, the record splitter, the attribute parser, the graph builder,
//     the header classifier and the PMI extractor.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// Package diag does no formatting and no IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning, Error.
//   - Code: compact numeric identifier (codes.go) grouped by phase,
//     rendered as LEX1001, REC2005, ATT3001 and so on.
//   - Message: short human text.
//   - Primary: the source.Span the finding points at.
//   - Notes: optional secondary spans.
//
// Fatal structural problems (malformed records, duplicate instance names)
// are returned as typed errors by their phase, not as diagnostics. A Bag
// only ever holds findings the load survived.
//
// # Emitting diagnostics
//
// Phases receive a Reporter. ReportBuilder (ReportError, ReportWarning)
// chains notes before Emit. BagReporter stores into a Bag, which supports
// sorting, deduplication and a size limit.
package diag
