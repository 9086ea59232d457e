// Package marc decodes MARC bibliographic records into an in-memory
// record/field/subfield structure.
//
// Two wire formats are supported:
//   - iso2709: the binary exchange format (leader, directory, fields)
//   - marcjson: MARC-in-JSON objects, one after another in the stream
//
// Readers are obtained through Open or NewReader by format name. They hand
// out one *Record per call to Next and return io.EOF once the stream is
// exhausted. Recoverable decoding problems (for example invalid UTF-8 in a
// subfield) are reported through Options.OnWarning and never stop the stream.
package marc

import "strings"

// LeaderTag is the pseudo tag used when the leader is surfaced as a field.
const LeaderTag = "LDR"

// Subfield is a coded value inside a data field.
type Subfield struct {
	Code  string
	Value string
}

// Field is either a control field (Value set, no subfields) or a data field
// (indicators and an ordered list of subfields).
type Field struct {
	Tag        string
	Value      string
	Indicator1 byte
	Indicator2 byte
	Subfields  []Subfield
}

// IsControl reports whether f carries a raw scalar value.
func (f *Field) IsControl() bool {
	return IsControlTag(f.Tag)
}

// SubfieldValues returns the subfield values in occurrence order.
func (f *Field) SubfieldValues() []string {
	values := make([]string, len(f.Subfields))
	for i, sf := range f.Subfields {
		values[i] = sf.Value
	}
	return values
}

// IsControlTag reports whether tag names a control field (001-009).
func IsControlTag(tag string) bool {
	if len(tag) != 3 || !isDigits(tag) {
		return false
	}
	return tag < "010"
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Record is one decoded bibliographic record.
type Record struct {
	Leader string
	Fields []Field
	// Raw holds the bytes the record was decoded from, if the reader kept them.
	Raw []byte
}

// NewRecord creates an empty record with a default leader.
func NewRecord() *Record {
	return &Record{Leader: defaultLeader}
}

// AddControlField appends a control field.
func (r *Record) AddControlField(tag, value string) *Record {
	r.Fields = append(r.Fields, Field{Tag: tag, Value: value})
	return r
}

// AddDataField appends a data field with blank indicators. Pairs are given as
// code, value, code, value, ...; a trailing odd element is ignored.
func (r *Record) AddDataField(tag string, pairs ...string) *Record {
	f := Field{Tag: tag, Indicator1: ' ', Indicator2: ' '}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Subfields = append(f.Subfields, Subfield{Code: pairs[i], Value: pairs[i+1]})
	}
	r.Fields = append(r.Fields, f)
	return r
}

// FieldsByTag returns the fields with the given tag in record order.
func (r *Record) FieldsByTag(tag string) []Field {
	var out []Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// Title is a convenience used in log lines; it returns 245$a or "".
func (r *Record) Title() string {
	for _, f := range r.FieldsByTag("245") {
		for _, sf := range f.Subfields {
			if sf.Code == "a" {
				return strings.TrimSpace(sf.Value)
			}
		}
	}
	return ""
}
