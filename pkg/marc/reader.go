package marc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// Reader yields decoded records one at a time.
type Reader interface {
	// Next returns the next record, or io.EOF when the stream is exhausted.
	Next() (*Record, error)
	// Close releases the underlying input.
	Close() error
}

// Warning is a non-fatal decoding problem. The record is still returned with
// a best-effort value for the affected field.
type Warning struct {
	Record  int // 1-based position of the record in the stream
	Tag     string
	Message string
}

func (w Warning) String() string {
	if w.Tag == "" {
		return fmt.Sprintf("record %d: %s", w.Record, w.Message)
	}
	return fmt.Sprintf("record %d, field %s: %s", w.Record, w.Tag, w.Message)
}

// WarningHandler receives decoding warnings.
type WarningHandler func(Warning)

// Options tune a reader.
type Options struct {
	// OnWarning is called for every recoverable decoding problem. Nil drops them.
	OnWarning WarningHandler
	// KeepRaw stores the encoded bytes of each record in Record.Raw.
	KeepRaw bool
	// BufferSize of the buffered input reader; 0 uses 64KB.
	BufferSize int
}

func (o Options) warn(w Warning) {
	if o.OnWarning != nil {
		o.OnWarning(w)
	}
}

// Factory builds a Reader over an already opened stream.
type Factory func(r io.Reader, opts Options) Reader

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]Factory)
)

// RegisterFormat makes a reader available by name.
func RegisterFormat(name string, factory Factory) error {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if _, exists := formats[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "record format %s already registered", name)
	}
	formats[name] = factory
	return nil
}

// Formats lists the registered format names, sorted.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewReader wraps an open stream with the reader of the given format.
func NewReader(r io.Reader, format string, opts Options) (Reader, error) {
	formatsMu.RLock()
	factory, ok := formats[format]
	formatsMu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "record format %s not found", format)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64 * 1024
	}
	return factory(bufio.NewReaderSize(r, opts.BufferSize), opts), nil
}

// Open opens path ("-" for standard input) and returns a reader for format.
// Failures are reported as source_open errors.
func Open(path, format string, opts Options) (Reader, error) {
	var (
		in     io.Reader
		closer io.Closer
	)
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // G304: input path comes from the command line
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSourceOpen, fmt.Sprintf("cannot open %q", path)).
				WithDetail("path", path)
		}
		in, closer = f, f
	}

	r, err := NewReader(in, format, opts)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return &fileReader{Reader: r, closer: closer}, nil
}

type fileReader struct {
	Reader
	closer io.Closer
}

func (f *fileReader) Close() error {
	err := f.Reader.Close()
	if f.closer != nil {
		if cerr := f.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
