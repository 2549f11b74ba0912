// Package pmi extracts Product Manufacturing Information from a built
// instance table.
//
// Semantic PMI (dimensions, tolerances, datums) becomes Records of a closed
// set of Kinds. Presentation PMI (annotation polylines and tessellated curve
// sets) becomes Polylines with resolved point coordinates.
//
// Extraction is lenient where parsing is strict: a reference that does not
// resolve degrades the one record that needed it and the walk goes on.
// Extract never modifies the table and returns the same result every time.
package pmi
