// Package materialize builds output rows from flattened records.
//
// Wide rows align one cell per schema column; long rows fan out to one
// (identifier, column, value) triple per value occurrence. The identifier of a
// long row comes from an IDGenerator and travels beside the record rather
// than inside it, so no real column can ever be mistaken for it.
package materialize

import "github.com/ajitpratap0/marcflat/pkg/flatten"

// Long header names.
const (
	IdentifierColumn = "random_unique_record_identifier"
	FieldColumn      = "marc_field"
	ValueColumn      = "value"
)

// LongHeader is the fixed header of long output.
var LongHeader = []string{IdentifierColumn, FieldColumn, ValueColumn}

// Wide materializes one row per record against a frozen column list.
type Wide struct {
	Columns []string
}

// NewWide creates a wide materializer over columns, usually Schema.Columns().
func NewWide(columns []string) *Wide {
	return &Wide{Columns: columns}
}

// Header returns the column list.
func (w *Wide) Header() []string {
	return w.Columns
}

// Row returns one cell per column; columns rec lacks are empty strings.
// Keys of rec outside Columns are dropped.
func (w *Wide) Row(rec *flatten.Collapsed) []string {
	row := make([]string, len(w.Columns))
	for i, col := range w.Columns {
		if v, ok := rec.Get(col); ok {
			row[i] = v
		}
	}
	return row
}

// LongRow is one (identifier, column, value) triple.
type LongRow [3]string

// Long materializes one row per value occurrence.
type Long struct {
	IDs IDGenerator
}

// NewLong creates a long materializer. A nil generator uses random UUIDs.
func NewLong(ids IDGenerator) *Long {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &Long{IDs: ids}
}

// Header returns LongHeader.
func (l *Long) Header() []string {
	return LongHeader
}

// Rows draws one identifier for the record and emits its values in key
// insertion order, then encounter order. raw is passed to the generator.
func (l *Long) Rows(rec *flatten.Record, raw []byte) []LongRow {
	id := l.IDs.Next(raw)
	rows := make([]LongRow, 0, rec.ValueCount())
	for _, key := range rec.Keys() {
		for _, value := range rec.Values(key) {
			rows = append(rows, LongRow{id, key, value})
		}
	}
	return rows
}
