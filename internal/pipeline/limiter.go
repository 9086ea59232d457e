package pipeline

import (
	"io"

	"github.com/ajitpratap0/marcflat/pkg/marc"
)

// Limiter stops a reader after a fixed number of records.
type Limiter struct {
	marc.Reader
	limit  int
	count  int
	closed bool
}

// NewLimiter wraps r. A limit <= 0 is unbounded.
func NewLimiter(r marc.Reader, limit int) *Limiter {
	return &Limiter{Reader: r, limit: limit}
}

// Next returns io.EOF once the limit is reached without touching the
// underlying reader.
func (l *Limiter) Next() (*marc.Record, error) {
	if l.limit > 0 && l.count >= l.limit {
		return nil, io.EOF
	}
	rec, err := l.Reader.Next()
	if err != nil {
		return nil, err
	}
	l.count++
	return rec, nil
}

// Count is the number of records handed out so far.
func (l *Limiter) Count() int {
	return l.count
}

// Close closes the underlying reader once; later calls return nil.
func (l *Limiter) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.Reader.Close()
}
