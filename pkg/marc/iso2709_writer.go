package marc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// ISO2709Writer encodes records in the binary exchange format.
type ISO2709Writer struct {
	w io.Writer
}

// NewISO2709Writer creates a writer of binary MARC records.
func NewISO2709Writer(w io.Writer) *ISO2709Writer {
	return &ISO2709Writer{w: w}
}

// Write encodes rec and writes it.
func (w *ISO2709Writer) Write(rec *Record) error {
	data, err := EncodeISO2709(rec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write record")
	}
	return nil
}

// EncodeISO2709 renders rec with a 4500 entry map. The leader's length and
// base address are recomputed; its other positions are kept when it has the
// standard 24 characters.
func EncodeISO2709(rec *Record) ([]byte, error) {
	var directory, body bytes.Buffer

	for _, f := range rec.Fields {
		if len(f.Tag) != 3 {
			return nil, errors.Newf(errors.ErrorTypeData, "field tag %q must have 3 characters", f.Tag)
		}

		start := body.Len()
		if f.IsControl() {
			body.WriteString(f.Value)
		} else {
			body.WriteByte(indicator(f.Indicator1))
			body.WriteByte(indicator(f.Indicator2))
			for _, sf := range f.Subfields {
				if len(sf.Code) != 1 {
					return nil, errors.Newf(errors.ErrorTypeData, "field %s: subfield code %q must be one byte", f.Tag, sf.Code)
				}
				body.WriteByte(subfieldDelimiter)
				body.WriteString(sf.Code)
				body.WriteString(sf.Value)
			}
		}
		body.WriteByte(fieldTerminator)

		length := body.Len() - start
		if length > 9999 || start > 99999 {
			return nil, errors.Newf(errors.ErrorTypeData, "field %s does not fit the directory", f.Tag)
		}
		fmt.Fprintf(&directory, "%s%04d%05d", f.Tag, length, start)
	}
	directory.WriteByte(fieldTerminator)
	body.WriteByte(recordTerminator)

	base := leaderLength + directory.Len()
	total := base + body.Len()
	if total > 99999 {
		return nil, errors.Newf(errors.ErrorTypeData, "record of %d bytes exceeds the ISO 2709 limit", total)
	}

	leader := []byte(defaultLeader)
	if len(rec.Leader) == leaderLength {
		leader = []byte(rec.Leader)
	}
	copy(leader[0:5], fmt.Sprintf("%05d", total))
	leader[10], leader[11] = '2', '2'
	copy(leader[12:17], fmt.Sprintf("%05d", base))
	copy(leader[20:24], "4500")

	out := make([]byte, 0, total)
	out = append(out, leader...)
	out = append(out, directory.Bytes()...)
	out = append(out, body.Bytes()...)
	return out, nil
}

func indicator(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}
