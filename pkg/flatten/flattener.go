package flatten

import (
	"strings"

	"github.com/ajitpratap0/marcflat/pkg/marc"
)

// Default separators.
const (
	DefaultSubfieldSeparator  = ";"
	DefaultDuplicateSeparator = "|"
)

// Options controls key derivation.
type Options struct {
	// SubfieldsAsSeparate keys data fields by tag+code instead of tag.
	SubfieldsAsSeparate bool
	// SubfieldSeparator joins subfield values in merged mode.
	SubfieldSeparator string
	// IncludeLeader adds the leader under marc.LeaderTag.
	IncludeLeader bool
}

// Flattener derives column keys and values from records.
type Flattener struct {
	opts Options
}

// New creates a Flattener. An empty SubfieldSeparator falls back to ";".
func New(opts Options) *Flattener {
	if opts.SubfieldSeparator == "" {
		opts.SubfieldSeparator = DefaultSubfieldSeparator
	}
	return &Flattener{opts: opts}
}

// Flatten converts rec into a Record. Every value is whitespace-trimmed.
func (f *Flattener) Flatten(rec *marc.Record) *Record {
	out := NewRecord()

	if f.opts.IncludeLeader && rec.Leader != "" {
		out.Append(marc.LeaderTag, rec.Leader)
	}

	for i := range rec.Fields {
		field := &rec.Fields[i]

		if field.IsControl() {
			out.Append(field.Tag, strings.TrimSpace(field.Value))
			continue
		}

		if f.opts.SubfieldsAsSeparate {
			for _, sf := range field.Subfields {
				out.Append(field.Tag+sf.Code, strings.TrimSpace(sf.Value))
			}
			continue
		}

		parts := field.SubfieldValues()
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		out.Append(field.Tag, strings.Join(parts, f.opts.SubfieldSeparator))
	}

	return out
}
