package marc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"iso2709", "marcjson"}, Formats())

	err := RegisterFormat("iso2709", NewISO2709Reader)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewReaderUnknownFormat(t *testing.T) {
	_, err := NewReader(nil, "marcxml", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.mrc")
	require.NoError(t, os.WriteFile(path, encode(t, sampleRecord()), 0o600))

	r, err := Open(path, "iso2709", Options{})
	require.NoError(t, err)
	recs := readAll(t, r)
	assert.Len(t, recs, 1)
	assert.NoError(t, r.Close())
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mrc")

	_, err := Open(path, "iso2709", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceOpen))
	assert.Contains(t, err.Error(), `cannot open "`+path+`"`)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsControlTag(t *testing.T) {
	assert.True(t, IsControlTag("001"))
	assert.True(t, IsControlTag("009"))
	assert.False(t, IsControlTag("010"))
	assert.False(t, IsControlTag("LDR"))
	assert.False(t, IsControlTag("00"))
}
