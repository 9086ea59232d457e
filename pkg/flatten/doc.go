// Package flatten turns decoded MARC records into per-record column/value
// multimaps and accumulates the column schema of a run.
//
// # Column keys
//
// A column key is the field tag when subfields are merged, or the tag followed
// by the subfield code when they are kept separate:
//
//	merged:   100 -> "Smith;J."
//	separate: 100a -> "Smith", 100b -> "J."
//
// Control fields (001-009) always use the bare tag and their own value.
//
// # Schema
//
// Flattener.Flatten is a pure function of the record and the options. The
// caller merges each result into a Schema, whose Columns are the sorted union
// of every key seen. Wide output needs the complete Schema before its header
// can be written; see internal/pipeline for the buffered and two-pass
// strategies that provide it.
package flatten
