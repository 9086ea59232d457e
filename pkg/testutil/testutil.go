// Package testutil provides testing utilities for marcflat
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/marcflat/pkg/marc"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SampleRecords returns three small bibliographic records:
//
//	1: 001, 100 (a,d), 245 (a,c), 650 x2
//	2: 001, 245 (a), 020 (a)
//	3: 001, 100 (a), 650 x3 with padded values
func SampleRecords() []*marc.Record {
	return []*marc.Record{
		marc.NewRecord().
			AddControlField("001", "rec1").
			AddDataField("100", "a", "Smith, J.", "d", "1900-1980").
			AddDataField("245", "a", "A title /", "c", "by J. Smith.").
			AddDataField("650", "a", "Cats").
			AddDataField("650", "a", "Dogs"),
		marc.NewRecord().
			AddControlField("001", "rec2").
			AddDataField("245", "a", `Say "hi"`).
			AddDataField("020", "a", "0123456789"),
		marc.NewRecord().
			AddControlField("001", "rec3").
			AddDataField("100", "a", "Doe, A.").
			AddDataField("650", "a", "  Birds ").
			AddDataField("650", "a", "Fish").
			AddDataField("650", "a", "Frogs\t"),
	}
}

// EncodeISO2709 encodes recs into one binary MARC stream.
func EncodeISO2709(t *testing.T, recs ...*marc.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := marc.NewISO2709Writer(&buf)
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	return buf.Bytes()
}

// WriteISO2709 writes recs to dir/name and returns the path.
func WriteISO2709(t *testing.T, dir, name string, recs ...*marc.Record) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, EncodeISO2709(t, recs...), 0o600))
	return path
}

// MemorySink collects output in memory and records whether it was closed.
type MemorySink struct {
	bytes.Buffer
	Closed bool
}

// Close implements io.Closer.
func (m *MemorySink) Close() error {
	m.Closed = true
	return nil
}
