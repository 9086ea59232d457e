package marc

import (
	"bufio"
	stderrors "errors"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

func init() {
	_ = RegisterFormat("marcjson", NewJSONReader)
}

// jsonRecord mirrors the MARC-in-JSON layout:
//
//	{"leader": "...", "fields": [{"001": "ocm1"}, {"245": {"ind1": "1", "ind2": "0",
//	  "subfields": [{"a": "Title"}]}}]}
type jsonRecord struct {
	Leader string                          `json:"leader"`
	Fields []map[string]gojson.RawMessage `json:"fields"`
}

type jsonDataField struct {
	Ind1      string              `json:"ind1"`
	Ind2      string              `json:"ind2"`
	Subfields []map[string]string `json:"subfields"`
}

// JSONReader decodes a stream of MARC-in-JSON objects. Objects may be
// newline delimited or simply concatenated.
type JSONReader struct {
	dec     *gojson.Decoder
	opts    Options
	records int
}

// NewJSONReader creates a reader of MARC-in-JSON records.
func NewJSONReader(r io.Reader, opts Options) Reader {
	if _, ok := r.(*bufio.Reader); !ok {
		r = bufio.NewReader(r)
	}
	return &JSONReader{dec: gojson.NewDecoder(r), opts: opts}
}

// Next decodes the next record.
func (j *JSONReader) Next() (*Record, error) {
	var raw gojson.RawMessage
	if err := j.dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		j.records++
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrap(err, errors.ErrorTypeDecoding, "record truncated").WithDetail("record", j.records)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeDecoding, "invalid MARC-in-JSON record").WithDetail("record", j.records)
	}
	j.records++

	var doc jsonRecord
	if err := gojson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecoding, "invalid MARC-in-JSON record").WithDetail("record", j.records)
	}

	rec := &Record{Leader: doc.Leader}
	if j.opts.KeepRaw {
		rec.Raw = []byte(raw)
	}

	for _, entry := range doc.Fields {
		if len(entry) != 1 {
			j.opts.warn(Warning{Record: j.records, Message: "field object must hold exactly one tag, skipped"})
			continue
		}
		for tag, body := range entry {
			f, err := j.decodeField(tag, body)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, f)
		}
	}
	return rec, nil
}

func (j *JSONReader) decodeField(tag string, body gojson.RawMessage) (Field, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, `"`) {
		var value string
		if err := gojson.Unmarshal(body, &value); err != nil {
			return Field{}, errors.Wrap(err, errors.ErrorTypeDecoding, "invalid control field").
				WithDetail("record", j.records).WithDetail("tag", tag)
		}
		if !IsControlTag(tag) {
			j.opts.warn(Warning{Record: j.records, Tag: tag, Message: "scalar value on a data field tag"})
		}
		return Field{Tag: tag, Value: value}, nil
	}

	var df jsonDataField
	if err := gojson.Unmarshal(body, &df); err != nil {
		return Field{}, errors.Wrap(err, errors.ErrorTypeDecoding, "invalid data field").
			WithDetail("record", j.records).WithDetail("tag", tag)
	}

	f := Field{Tag: tag, Indicator1: firstByte(df.Ind1), Indicator2: firstByte(df.Ind2)}
	for _, sf := range df.Subfields {
		if len(sf) != 1 {
			j.opts.warn(Warning{Record: j.records, Tag: tag, Message: "subfield object must hold exactly one code, skipped"})
			continue
		}
		for code, value := range sf {
			f.Subfields = append(f.Subfields, Subfield{Code: code, Value: value})
		}
	}
	return f, nil
}

// Close is a no-op; the opener owns the stream.
func (j *JSONReader) Close() error {
	return nil
}

func firstByte(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}
