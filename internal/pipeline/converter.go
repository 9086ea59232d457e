package pipeline

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/marcflat/pkg/config"
	"github.com/ajitpratap0/marcflat/pkg/errors"
	"github.com/ajitpratap0/marcflat/pkg/flatten"
	"github.com/ajitpratap0/marcflat/pkg/marc"
	"github.com/ajitpratap0/marcflat/pkg/materialize"
	"github.com/ajitpratap0/marcflat/pkg/metrics"
	"github.com/ajitpratap0/marcflat/pkg/tabular"
)

// Opener opens a fresh reader positioned at the first record. Two-pass
// discovery calls it twice.
type Opener func(opts marc.Options) (marc.Reader, error)

// SinkOpener opens the output. It is called once, after the source has been
// opened and, for buffered runs, fully read.
type SinkOpener func() (io.WriteCloser, error)

// FileOpener opens path ("-" for standard input) in the given format.
func FileOpener(path, format string) Opener {
	return func(opts marc.Options) (marc.Reader, error) {
		return marc.Open(path, format, opts)
	}
}

// Converter executes one conversion run.
type Converter struct {
	cfg       *config.Config
	source    Opener
	sink      SinkOpener
	flattener *flatten.Flattener
	ids       materialize.IDGenerator
	schema    *flatten.Schema
	collector *metrics.Collector
	logger    *zap.Logger
	startTime time.Time
}

// NewConverter validates cfg and prepares a run.
func NewConverter(cfg *config.Config, source Opener, sink SinkOpener, logger *zap.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ids, err := materialize.NewIDGenerator(string(cfg.Identifier.Strategy), cfg.Identifier.Prefix)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Converter{
		cfg:    cfg,
		source: source,
		sink:   sink,
		flattener: flatten.New(flatten.Options{
			SubfieldsAsSeparate: cfg.Flatten.SubfieldsAsSeparate,
			SubfieldSeparator:   cfg.Flatten.SubfieldSeparator,
			IncludeLeader:       cfg.Flatten.IncludeLeader,
		}),
		ids:       ids,
		schema:    flatten.NewSchema(),
		collector: metrics.NewCollector(string(cfg.Output.Shape)),
		logger:    logger.With(zap.String("component", "converter")),
	}, nil
}

// Run reads the source and writes the table. Any error aborts the run;
// output already flushed to the sink stays there.
func (c *Converter) Run(ctx context.Context) error {
	c.startTime = time.Now()
	fields := []zap.Field{
		zap.String("input", c.cfg.Input.Path),
		zap.String("format", c.cfg.Input.Format),
		zap.String("shape", string(c.cfg.Output.Shape)),
		zap.String("schema_strategy", string(c.cfg.Schema.Strategy)),
	}
	if !c.cfg.Input.Unbounded() {
		fields = append(fields, zap.Int("limit", c.cfg.Input.Limit))
	}
	if c.cfg.Output.IsCompressed() {
		fields = append(fields, zap.String("compression", c.cfg.Output.Compression))
	}
	c.logger.Info("starting conversion", fields...)

	if c.cfg.Flatten.SubfieldsAsSeparate {
		c.logger.Debug("subfields written as separate columns")
	} else {
		c.logger.Debug("subfields merged", zap.String("separator", c.cfg.Flatten.SubfieldSeparator))
	}
	if c.cfg.Output.SuppressHeader {
		c.logger.Debug("header row suppressed")
	}

	var err error
	long := c.cfg.Output.Shape == config.ShapeLong
	twoPass := c.cfg.Schema.Strategy == config.StrategyTwoPass
	switch {
	case long && twoPass:
		err = c.streamLong(ctx)
	case long:
		err = c.bufferedLong(ctx)
	case twoPass:
		err = c.twoPassWide(ctx)
	default:
		err = c.bufferedWide(ctx)
	}
	if err != nil {
		return err
	}

	all := c.collector.GetAll()
	c.logger.Info("conversion completed",
		zap.Any("records_read", all["records_read"]),
		zap.Any("rows_written", all["rows_written"]),
		zap.Any("decoding_warnings", all["decoding_warnings"]),
		zap.Int("columns", c.schema.Len()),
		zap.Duration("duration", time.Since(c.startTime)))
	return nil
}

// Schema returns the columns discovered so far.
func (c *Converter) Schema() *flatten.Schema {
	return c.schema
}

// Collector returns the run's metrics.
func (c *Converter) Collector() *metrics.Collector {
	return c.collector
}

// Metrics returns the run's counters keyed by name.
func (c *Converter) Metrics() map[string]interface{} {
	m := c.collector.GetAll()
	if !c.startTime.IsZero() {
		m["duration"] = time.Since(c.startTime).Seconds()
	}
	return m
}

func (c *Converter) bufferedWide(ctx context.Context) error {
	reader, err := c.open(true)
	if err != nil {
		return err
	}

	var rows []*flatten.Collapsed
	timer := metrics.NewTimer("scan")
	err = c.each(ctx, reader, true, func(rec *marc.Record) error {
		flat := c.flattener.Flatten(rec)
		c.observe(flat)
		rows = append(rows, flatten.Collapse(flat, c.cfg.Flatten.DuplicateSeparator))
		return nil
	})
	timer.ObserveInto(c.collector)
	if err != nil {
		return err
	}

	return c.writeWide(func(emit func(*flatten.Collapsed) error) error {
		for _, row := range rows {
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Converter) twoPassWide(ctx context.Context) error {
	reader, err := c.open(true)
	if err != nil {
		return err
	}
	timer := metrics.NewTimer("scan")
	err = c.each(ctx, reader, false, func(rec *marc.Record) error {
		c.observe(c.flattener.Flatten(rec))
		return nil
	})
	timer.ObserveInto(c.collector)
	if err != nil {
		return err
	}
	c.logger.Debug("schema discovered", zap.Int("columns", c.schema.Len()))

	reader, err = c.open(false)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()
	return c.writeWide(func(emit func(*flatten.Collapsed) error) error {
		return c.each(ctx, reader, true, func(rec *marc.Record) error {
			flat := c.flattener.Flatten(rec)
			for _, key := range flat.Keys() {
				if !c.schema.Contains(key) {
					return errors.Newf(errors.ErrorTypeData,
						"column %s was not seen in the first pass; the input changed between passes", key)
				}
			}
			return emit(flatten.Collapse(flat, c.cfg.Flatten.DuplicateSeparator))
		})
	})
}

func (c *Converter) bufferedLong(ctx context.Context) error {
	reader, err := c.open(true)
	if err != nil {
		return err
	}

	long := materialize.NewLong(c.ids)
	var rows []materialize.LongRow
	timer := metrics.NewTimer("scan")
	err = c.each(ctx, reader, true, func(rec *marc.Record) error {
		flat := c.flattener.Flatten(rec)
		c.observe(flat)
		rows = append(rows, long.Rows(flat, rec.Raw)...)
		return nil
	})
	timer.ObserveInto(c.collector)
	if err != nil {
		return err
	}

	return c.write(long.Header(), func(w *tabular.Writer) error {
		for _, row := range rows {
			if err := w.WriteRow(row[:]); err != nil {
				return err
			}
		}
		c.collector.RowsWritten(len(rows))
		return nil
	})
}

func (c *Converter) streamLong(ctx context.Context) error {
	reader, err := c.open(true)
	if err != nil {
		return err
	}

	defer func() { _ = reader.Close() }()

	long := materialize.NewLong(c.ids)
	return c.write(long.Header(), func(w *tabular.Writer) error {
		return c.each(ctx, reader, true, func(rec *marc.Record) error {
			flat := c.flattener.Flatten(rec)
			c.observe(flat)
			rows := long.Rows(flat, rec.Raw)
			for _, row := range rows {
				if err := w.WriteRow(row[:]); err != nil {
					return err
				}
			}
			c.collector.RowsWritten(len(rows))
			return nil
		})
	})
}

// open opens the source. Warnings are reported only on the first read of the
// input so two-pass runs do not log them twice.
func (c *Converter) open(report bool) (*Limiter, error) {
	opts := marc.Options{KeepRaw: materialize.NeedsRaw(c.ids)}
	if report {
		opts.OnWarning = c.onWarning
	}
	reader, err := c.source(opts)
	if err != nil {
		return nil, err
	}
	return NewLimiter(reader, c.cfg.Input.Limit), nil
}

// each hands every record within the limit to fn and closes reader. count
// selects the pass whose records are reported as read.
func (c *Converter) each(ctx context.Context, reader *Limiter, count bool, fn func(*marc.Record) error) error {
	defer func() {
		if err := reader.Close(); err != nil {
			c.logger.Warn("failed to close input", zap.Error(err))
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "conversion cancelled")
		}
		rec, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if count {
			c.collector.RecordRead()
			c.logger.Debug("processing record",
				zap.Int("record", reader.Count()),
				zap.String("title", rec.Title()))
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func (c *Converter) observe(flat *flatten.Record) {
	if c.schema.Merge(flat) > 0 {
		c.collector.SetSchemaColumns(c.schema.Len())
	}
}

func (c *Converter) onWarning(w marc.Warning) {
	c.logger.Warn("decoding warning",
		zap.Int("record", w.Record),
		zap.String("tag", w.Tag),
		zap.String("message", w.Message))
	c.collector.DecodingWarning(w.Tag)
}

func (c *Converter) writeWide(produce func(emit func(*flatten.Collapsed) error) error) error {
	wide := materialize.NewWide(c.schema.Columns())
	return c.write(wide.Header(), func(w *tabular.Writer) error {
		return produce(func(rec *flatten.Collapsed) error {
			if err := w.WriteRow(wide.Row(rec)); err != nil {
				return err
			}
			c.collector.RowsWritten(1)
			return nil
		})
	})
}

// write opens the sink, writes the header and hands the writer to body. The
// sink is flushed and closed whatever body returns.
func (c *Converter) write(header []string, body func(*tabular.Writer) error) error {
	sink, err := c.sink()
	if err != nil {
		return err
	}

	timer := metrics.NewTimer("write")
	defer timer.ObserveInto(c.collector)

	w := tabular.NewWriter(sink, tabular.Options{
		EscapeChar:     []rune(c.cfg.Output.EscapeChar)[0],
		SuppressHeader: c.cfg.Output.SuppressHeader,
	})
	err = w.WriteHeader(header)
	if err == nil {
		err = body(w)
	}

	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	c.logger.Debug("output written",
		zap.Int64("rows", w.Rows()),
		zap.Bool("header", w.HeaderWritten()))
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	return err
}
