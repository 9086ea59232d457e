package marc

import (
	"bufio"
	stderrors "errors"
	"io"
	"strconv"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// ISO 2709 structural characters.
const (
	subfieldDelimiter = 0x1F
	fieldTerminator   = 0x1E
	recordTerminator  = 0x1D

	leaderLength  = 24
	defaultLeader = "00000nam a2200000   4500"
)

func init() {
	_ = RegisterFormat("iso2709", NewISO2709Reader)
}

// ISO2709Reader decodes binary MARC records.
type ISO2709Reader struct {
	r       *bufio.Reader
	opts    Options
	records int
}

// NewISO2709Reader creates a reader of binary MARC records.
func NewISO2709Reader(r io.Reader, opts Options) Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ISO2709Reader{r: br, opts: opts}
}

// Next decodes the next record.
func (d *ISO2709Reader) Next() (*Record, error) {
	if err := d.skipSeparators(); err != nil {
		return nil, err
	}

	d.records++

	head := make([]byte, 5)
	if _, err := io.ReadFull(d.r, head); err != nil {
		return nil, d.readError(err, "record length truncated")
	}
	length, err := strconv.Atoi(string(head))
	if err != nil || length < leaderLength+1 {
		return nil, errors.Newf(errors.ErrorTypeDecoding, "record %d: invalid record length %q", d.records, head).
			WithDetail("record", d.records)
	}

	raw := make([]byte, length)
	copy(raw, head)
	if _, err := io.ReadFull(d.r, raw[5:]); err != nil {
		return nil, d.readError(err, "record body truncated")
	}

	rec, err := decodeISO2709(raw, d.records, d.opts)
	if err != nil {
		return nil, err
	}
	if d.opts.KeepRaw {
		rec.Raw = raw
	}
	return rec, nil
}

// Close is a no-op; the opener owns the stream.
func (d *ISO2709Reader) Close() error {
	return nil
}

// skipSeparators drops line breaks some exporters put between records.
func (d *ISO2709Reader) skipSeparators() error {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return errors.Wrap(err, errors.ErrorTypeSourceOpen, "cannot read input")
		}
		if b != '\n' && b != '\r' {
			return d.r.UnreadByte()
		}
	}
}

func (d *ISO2709Reader) readError(err error, msg string) error {
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeDecoding, msg).
			WithDetail("record", d.records)
	}
	return errors.Wrap(err, errors.ErrorTypeSourceOpen, "cannot read input")
}

func decodeISO2709(raw []byte, n int, opts Options) (*Record, error) {
	fail := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ErrorTypeDecoding, "record %d: "+format, append([]interface{}{n}, args...)...).
			WithDetail("record", n)
	}

	if raw[len(raw)-1] != recordTerminator {
		opts.warn(Warning{Record: n, Message: "missing record terminator"})
	}

	leader := raw[:leaderLength]
	base, err := strconv.Atoi(string(leader[12:17]))
	if err != nil || base <= leaderLength || base > len(raw) {
		return nil, fail("invalid base address %q", leader[12:17])
	}

	lenOfLength, lenOfStart := 4, 5
	if v := int(leader[20] - '0'); v > 0 && v <= 9 {
		lenOfLength = v
	}
	if v := int(leader[21] - '0'); v > 0 && v <= 9 {
		lenOfStart = v
	}
	entrySize := 3 + lenOfLength + lenOfStart

	unicode := leader[9] == 'a'
	rec := &Record{Leader: string(leader)}

	directory := raw[leaderLength : base-1]
	for i := 0; i+entrySize <= len(directory); i += entrySize {
		entry := directory[i : i+entrySize]
		tag := string(entry[:3])

		length, err := strconv.Atoi(string(entry[3 : 3+lenOfLength]))
		if err != nil {
			return nil, fail("field %s: invalid length %q", tag, entry[3:3+lenOfLength])
		}
		start, err := strconv.Atoi(string(entry[3+lenOfLength:]))
		if err != nil {
			return nil, fail("field %s: invalid offset %q", tag, entry[3+lenOfLength:])
		}

		from, to := base+start, base+start+length
		if start < 0 || length < 0 || from < base || to > len(raw) {
			return nil, fail("field %s: data [%d:%d] outside record of %d bytes", tag, from, to, len(raw))
		}
		data := raw[from:to]
		if len(data) > 0 && data[len(data)-1] == fieldTerminator {
			data = data[:len(data)-1]
		}

		text := func(b []byte) string {
			s, msg := decodeText(b, unicode)
			if msg != "" {
				opts.warn(Warning{Record: n, Tag: tag, Message: msg})
			}
			return s
		}

		if IsControlTag(tag) {
			rec.Fields = append(rec.Fields, Field{Tag: tag, Value: text(data)})
			continue
		}

		f := Field{Tag: tag, Indicator1: ' ', Indicator2: ' '}
		if len(data) >= 2 && data[0] != subfieldDelimiter {
			f.Indicator1, f.Indicator2 = data[0], data[1]
			data = data[2:]
		}
		for _, chunk := range splitSubfields(data) {
			if len(chunk) == 0 {
				continue
			}
			f.Subfields = append(f.Subfields, Subfield{Code: string(chunk[:1]), Value: text(chunk[1:])})
		}
		rec.Fields = append(rec.Fields, f)
	}

	return rec, nil
}

// splitSubfields returns the chunks that follow each subfield delimiter.
// Bytes before the first delimiter are dropped.
func splitSubfields(data []byte) [][]byte {
	var chunks [][]byte
	start := -1
	for i, b := range data {
		if b != subfieldDelimiter {
			continue
		}
		if start >= 0 {
			chunks = append(chunks, data[start:i])
		}
		start = i + 1
	}
	if start >= 0 {
		chunks = append(chunks, data[start:])
	}
	return chunks
}
