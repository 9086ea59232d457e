// Package tabular serializes rows to quoted CSV and owns the output sink.
//
// Every field is wrapped in double quotes. A quote or escape character inside a
// field is preceded by the escape character instead of being doubled:
//
//	a"b\c  ->  "a\"b\\c"
//
// Fields are separated by a comma and lines end with a single "\n" on every
// platform.
package tabular

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

const (
	quote     = '"'
	separator = ','
	newline   = '\n'

	// DefaultEscapeChar precedes quotes inside fields.
	DefaultEscapeChar = '\\'
)

// Options tune a Writer.
type Options struct {
	// EscapeChar escapes quotes and itself; 0 means DefaultEscapeChar.
	EscapeChar rune
	// SuppressHeader turns WriteHeader into a no-op.
	SuppressHeader bool
}

// Writer writes quoted CSV rows to an underlying stream.
type Writer struct {
	w              *bufio.Writer
	escape         rune
	suppressHeader bool
	headerWritten  bool
	rows           int64
	line           []byte
}

// NewWriter creates a Writer. Output is buffered until Flush.
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.EscapeChar == 0 {
		opts.EscapeChar = DefaultEscapeChar
	}
	return &Writer{
		w:              bufio.NewWriterSize(w, 64*1024),
		escape:         opts.EscapeChar,
		suppressHeader: opts.SuppressHeader,
	}
}

// WriteHeader writes columns as the first line. It does nothing when the
// header is suppressed or was already written.
func (w *Writer) WriteHeader(columns []string) error {
	if w.suppressHeader || w.headerWritten {
		return nil
	}
	w.headerWritten = true
	return w.writeLine(columns)
}

// WriteRow writes one data line.
func (w *Writer) WriteRow(fields []string) error {
	if err := w.writeLine(fields); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data lines written.
func (w *Writer) Rows() int64 {
	return w.rows
}

// HeaderWritten reports whether a header line was emitted.
func (w *Writer) HeaderWritten() bool {
	return w.headerWritten && !w.suppressHeader
}

// Flush writes buffered lines to the underlying stream.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush output")
	}
	return nil
}

func (w *Writer) writeLine(fields []string) error {
	line := w.line[:0]
	for i, field := range fields {
		if i > 0 {
			line = append(line, separator)
		}
		line = AppendQuoted(line, field, w.escape)
	}
	line = append(line, newline)
	w.line = line

	if _, err := w.w.Write(line); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write row")
	}
	return nil
}

// AppendQuoted appends field to dst, quoted and escaped with escape.
func AppendQuoted(dst []byte, field string, escape rune) []byte {
	dst = append(dst, quote)
	for _, r := range field {
		if r == quote || r == escape {
			dst = utf8.AppendRune(dst, escape)
		}
		dst = utf8.AppendRune(dst, r)
	}
	return append(dst, quote)
}
