// Package metrics summarises runs of text.
//
// A Metrics value records the UTF-16 length, the number of line breaks
// and the column counts (and optionally widths) of the first, last and
// longest lines. Summaries combine associatively, which lets the rope
// answer offset and line/column queries from subtree aggregates.
package metrics
