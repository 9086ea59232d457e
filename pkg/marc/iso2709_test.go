package marc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

func sampleRecord() *Record {
	return NewRecord().
		AddControlField("001", "ocm00012345").
		AddDataField("100", "a", "Smith, J.", "d", "1900-1980").
		AddDataField("245", "a", "A title /", "c", "by J. Smith.").
		AddDataField("650", "a", "Cats").
		AddDataField("650", "a", "Dogs")
}

func encode(t *testing.T, recs ...*Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewISO2709Writer(&buf)
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	return buf.Bytes()
}

func readAll(t *testing.T, r Reader) []*Record {
	t.Helper()
	var out []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestISO2709RoundTrip(t *testing.T) {
	data := encode(t, sampleRecord(), NewRecord().AddControlField("001", "second"))

	r, err := NewReader(bytes.NewReader(data), "iso2709", Options{})
	require.NoError(t, err)
	recs := readAll(t, r)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "A title /", first.Title())
	require.Len(t, first.Fields, 5)
	assert.Equal(t, "001", first.Fields[0].Tag)
	assert.Equal(t, "ocm00012345", first.Fields[0].Value)
	assert.True(t, first.Fields[0].IsControl())

	author := first.Fields[1]
	assert.Equal(t, "100", author.Tag)
	assert.Equal(t, []string{"Smith, J.", "1900-1980"}, author.SubfieldValues())
	assert.Equal(t, byte(' '), author.Indicator1)
	assert.Len(t, first.FieldsByTag("650"), 2)

	assert.Len(t, first.Leader, leaderLength)
	assert.Equal(t, "4500", first.Leader[20:24])
	assert.Equal(t, "second", recs[1].Fields[0].Value)
}

func TestISO2709LeaderLengthAndBase(t *testing.T) {
	data, err := EncodeISO2709(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, byte(recordTerminator), data[len(data)-1])
	assert.Equal(t, len(data), atoi(t, string(data[0:5])))
	base := atoi(t, string(data[12:17]))
	assert.Equal(t, byte(fieldTerminator), data[base-1])
	// 5 fields, 12 bytes per directory entry, plus the terminator
	assert.Equal(t, leaderLength+5*12+1, base)
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		require.True(t, c >= '0' && c <= '9', "not a number: %q", s)
		n = n*10 + int(c-'0')
	}
	return n
}

func TestISO2709KeepRaw(t *testing.T) {
	data := encode(t, sampleRecord())

	r, err := NewReader(bytes.NewReader(data), "iso2709", Options{KeepRaw: true})
	require.NoError(t, err)
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, data, rec.Raw)
}

func TestISO2709SkipsLineBreaksBetweenRecords(t *testing.T) {
	one := encode(t, sampleRecord())
	data := append(append(append([]byte{}, one...), '\r', '\n'), one...)
	data = append(data, '\n')

	r, err := NewReader(bytes.NewReader(data), "iso2709", Options{})
	require.NoError(t, err)
	assert.Len(t, readAll(t, r), 2)
}

func TestISO2709Truncated(t *testing.T) {
	data := encode(t, sampleRecord())

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short length", data: data[:3]},
		{name: "short body", data: data[:len(data)-10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data), "iso2709", Options{})
			require.NoError(t, err)
			_, err = r.Next()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestISO2709InvalidStructure(t *testing.T) {
	t.Run("non numeric length", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("abcde"+strings.Repeat("x", 30)), "iso2709", Options{})
		require.NoError(t, err)
		_, err = r.Next()
		assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
	})

	t.Run("field outside record", func(t *testing.T) {
		data := encode(t, NewRecord().AddControlField("001", "x"))
		// Directory entry length 0002 -> 0099.
		copy(data[leaderLength+3:leaderLength+7], "0099")
		r, err := NewReader(bytes.NewReader(data), "iso2709", Options{})
		require.NoError(t, err)
		_, err = r.Next()
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
		assert.Contains(t, err.Error(), "field 001")
	})

	t.Run("negative field offset", func(t *testing.T) {
		data := encode(t, NewRecord().AddControlField("001", "x"))
		// Directory entry offset 00000 -> -9999.
		copy(data[leaderLength+7:leaderLength+12], "-9999")
		r, err := NewReader(bytes.NewReader(data), "iso2709", Options{})
		require.NoError(t, err)
		assert.NotPanics(t, func() { _, err = r.Next() })
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
		assert.Contains(t, err.Error(), "field 001")
	})

	t.Run("negative field length", func(t *testing.T) {
		data := encode(t, NewRecord().AddControlField("001", "x"))
		copy(data[leaderLength+3:leaderLength+7], "-002")
		r, err := NewReader(bytes.NewReader(data), "iso2709", Options{})
		require.NoError(t, err)
		assert.NotPanics(t, func() { _, err = r.Next() })
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
	})
}

func TestISO2709InvalidUTF8Warns(t *testing.T) {
	rec := NewRecord().AddDataField("245", "a", "bad \xff byte")
	rec.Leader = "00000nam a2200000 a 4500"
	data := encode(t, rec)

	var warnings []Warning
	r, err := NewReader(bytes.NewReader(data), "iso2709", Options{
		OnWarning: func(w Warning) { warnings = append(warnings, w) },
	})
	require.NoError(t, err)

	got, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bad \uFFFD byte", got.Fields[0].Subfields[0].Value)

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Record)
	assert.Equal(t, "245", warnings[0].Tag)
	assert.Equal(t, "record 1, field 245: invalid UTF-8 replaced", warnings[0].String())
}

func TestISO2709MARC8FallsBackToLatin1(t *testing.T) {
	rec := NewRecord().AddDataField("245", "a", "caf\xe9")
	rec.Leader = "00000nam  2200000   4500"
	data := encode(t, rec)

	var warnings []Warning
	r, err := NewReader(bytes.NewReader(data), "iso2709", Options{
		OnWarning: func(w Warning) { warnings = append(warnings, w) },
	})
	require.NoError(t, err)

	got, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "café", got.Fields[0].Subfields[0].Value)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "ISO-8859-1")
}

func TestEncodeISO2709Rejects(t *testing.T) {
	_, err := EncodeISO2709(NewRecord().AddControlField("01", "x"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	_, err = EncodeISO2709(NewRecord().AddDataField("245", "ab", "x"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestSplitSubfields(t *testing.T) {
	data := []byte("junk\x1faone\x1fbtwo\x1f")
	chunks := splitSubfields(data)
	require.Len(t, chunks, 3)
	assert.Equal(t, "aone", string(chunks[0]))
	assert.Equal(t, "btwo", string(chunks[1]))
	assert.Empty(t, chunks[2])
}
