// Package metrics counts what a conversion run did using Prometheus
// collectors registered on a per-run registry.
//
// # Basic Usage
//
//	c := metrics.NewCollector("wide")
//	c.RecordRead()
//	c.RowsWritten(3)
//	c.SetSchemaColumns(schema.Len())
//	_ = c.WriteToTextfile("/var/lib/node_exporter/marcflat.prom")
//
// The textfile format is the one read by the node_exporter textfile
// collector, so batch runs can be scraped after they exit.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/marcflat/pkg/errors"
)

const namespace = "marcflat"

// Collector holds the metrics of one run. It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry
	shape    string

	recordsRead      prometheus.Counter
	rowsWritten      *prometheus.CounterVec
	decodingWarnings *prometheus.CounterVec
	schemaColumns    prometheus.Gauge
	phaseDuration    *prometheus.HistogramVec

	records  atomic.Int64
	rows     atomic.Int64
	warnings atomic.Int64
	columns  atomic.Int64

	startTime time.Time
}

// NewCollector creates a collector for a run writing the given output shape.
func NewCollector(shape string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		shape:    shape,
		recordsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Records consumed from the source",
		}),
		rowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Data rows written to the sink",
		}, []string{"shape"}),
		decodingWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decoding_warnings_total",
			Help:      "Recoverable decoding problems, by field tag",
		}, []string{"tag"}),
		schemaColumns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_columns",
			Help:      "Distinct column keys discovered",
		}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of each run phase",
			Buckets:   prometheus.ExponentialBuckets(0.001, 10, 7),
		}, []string{"phase"}),
		startTime: time.Now(),
	}
}

// RecordRead counts one consumed record.
func (c *Collector) RecordRead() {
	c.recordsRead.Inc()
	c.records.Add(1)
}

// RowsWritten counts n written data rows.
func (c *Collector) RowsWritten(n int) {
	c.rowsWritten.WithLabelValues(c.shape).Add(float64(n))
	c.rows.Add(int64(n))
}

// DecodingWarning counts one warning for tag; "" is recorded as "record".
func (c *Collector) DecodingWarning(tag string) {
	if tag == "" {
		tag = "record"
	}
	c.decodingWarnings.WithLabelValues(tag).Inc()
	c.warnings.Add(1)
}

// SetSchemaColumns records the current schema size.
func (c *Collector) SetSchemaColumns(n int) {
	c.schemaColumns.Set(float64(n))
	c.columns.Store(int64(n))
}

// ObservePhase records how long a phase took.
func (c *Collector) ObservePhase(phase string, d time.Duration) {
	c.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// GetAll returns the current values keyed by name.
func (c *Collector) GetAll() map[string]interface{} {
	return map[string]interface{}{
		"shape":             c.shape,
		"records_read":      c.records.Load(),
		"rows_written":      c.rows.Load(),
		"decoding_warnings": c.warnings.Load(),
		"schema_columns":    c.columns.Load(),
		"uptime":            time.Since(c.startTime).Seconds(),
	}
}

// WriteToTextfile writes the registry in the Prometheus text format. The file
// is replaced atomically.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics file").WithDetail("path", path)
	}
	return nil
}

// Timer measures the duration of one operation.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's label.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed time since creation. It may be called repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveInto stops the timer and records it as a phase of c.
func (t *Timer) ObserveInto(c *Collector) time.Duration {
	d := t.Stop()
	c.ObservePhase(t.name, d)
	return d
}
