package tabular

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ajitpratap0/marcflat/pkg/compression"
	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// SinkOptions describe where output goes.
type SinkOptions struct {
	// Path of the output file; "" or "-" is standard output.
	Path string
	// Append opens an existing file for appending instead of truncating it.
	Append bool
	// Compression wraps the stream; None writes plain text.
	Compression compression.Algorithm
	Level       compression.Level
}

// Sink is an opened output stream.
type Sink struct {
	path     string
	file     *os.File
	codec    io.WriteCloser
	existing bool
}

// OpenSink opens the output described by opts. A compressed file sink gets the
// algorithm's extension unless the path already ends with it. Failures are
// reported as sink_open errors.
func OpenSink(opts SinkOptions) (*Sink, error) {
	s := &Sink{path: opts.Path}

	var out io.Writer
	if opts.Path == "" || opts.Path == "-" {
		s.path = "-"
		out = os.Stdout
	} else {
		if ext := opts.Compression.Extension(); ext != "" && !strings.HasSuffix(s.path, ext) {
			s.path += ext
		}

		flags := os.O_CREATE | os.O_WRONLY
		if opts.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}

		f, err := os.OpenFile(s.path, flags, 0o644) //nolint:gosec // G302,G304: output path comes from the command line
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSinkOpen, fmt.Sprintf("cannot open output %q", s.path)).
				WithDetail("path", s.path).
				WithDetail("append", opts.Append)
		}
		if opts.Append {
			if st, err := f.Stat(); err == nil && st.Size() > 0 {
				s.existing = true
			}
		}
		s.file = f
		out = f
	}

	codec, err := compression.NewWriter(out, opts.Compression, opts.Level)
	if err != nil {
		if s.file != nil {
			_ = s.file.Close()
		}
		return nil, errors.Wrap(err, errors.ErrorTypeSinkOpen, "cannot initialize compression").
			WithDetail("compression", string(opts.Compression))
	}
	s.codec = codec
	return s, nil
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.codec.Write(p)
}

// Path is the resolved output path, "-" for standard output.
func (s *Sink) Path() string {
	return s.path
}

// Existing reports whether an appended file already held data.
func (s *Sink) Existing() bool {
	return s.existing
}

// Close flushes the codec and closes the file. Standard output stays open.
func (s *Sink) Close() error {
	err := s.codec.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output").WithDetail("path", s.path)
	}
	return nil
}
