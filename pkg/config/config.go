package config

import (
	"github.com/ajitpratap0/marcflat/pkg/compression"
	"github.com/ajitpratap0/marcflat/pkg/errors"
)

// Shape selects the table layout.
type Shape string

const (
	// ShapeWide writes one row per record and one column per column key
	ShapeWide Shape = "wide"
	// ShapeLong writes one row per value occurrence
	ShapeLong Shape = "long"
)

// SchemaStrategy selects how the wide-mode header is discovered.
type SchemaStrategy string

const (
	// StrategyBuffered keeps every flattened record in memory until the stream ends
	StrategyBuffered SchemaStrategy = "buffered"
	// StrategyTwoPass reads the source once for the schema and again for the rows
	StrategyTwoPass SchemaStrategy = "two-pass"
)

// IDStrategy selects the long-mode record identifier generator.
type IDStrategy string

const (
	// IDUUID generates random version 4 UUIDs
	IDUUID IDStrategy = "uuid"
	// IDSequence generates 1, 2, 3, ...
	IDSequence IDStrategy = "sequence"
	// IDXXH3 hashes the raw record bytes
	IDXXH3 IDStrategy = "xxh3"
)

// Config is the complete configuration of one run.
type Config struct {
	Input      InputConfig      `yaml:"input" json:"input" mapstructure:"input"`
	Flatten    FlattenConfig    `yaml:"flatten" json:"flatten" mapstructure:"flatten"`
	Output     OutputConfig     `yaml:"output" json:"output" mapstructure:"output"`
	Schema     SchemaConfig     `yaml:"schema" json:"schema" mapstructure:"schema"`
	Identifier IdentifierConfig `yaml:"identifier" json:"identifier" mapstructure:"identifier"`
	Log        LogConfig        `yaml:"log" json:"log" mapstructure:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// InputConfig describes the record source.
type InputConfig struct {
	// Path of the MARC file; "-" reads standard input
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Format of the input (iso2709, marcjson)
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Limit is the maximum number of records to read; 0 means unbounded
	Limit int `yaml:"limit" json:"limit" mapstructure:"limit"`
}

// FlattenConfig controls column-key derivation and value joining.
type FlattenConfig struct {
	// SubfieldsAsSeparate keys columns by tag+subfield code instead of tag
	SubfieldsAsSeparate bool `yaml:"subfields_as_separate" json:"subfields_as_separate" mapstructure:"subfields_as_separate"`
	// SubfieldSeparator joins subfield values when subfields are merged
	SubfieldSeparator string `yaml:"subfield_separator" json:"subfield_separator" mapstructure:"subfield_separator"`
	// DuplicateSeparator joins repeated values of one column in wide mode
	DuplicateSeparator string `yaml:"duplicate_separator" json:"duplicate_separator" mapstructure:"duplicate_separator"`
	// IncludeLeader adds the record leader as an LDR column
	IncludeLeader bool `yaml:"include_leader" json:"include_leader" mapstructure:"include_leader"`
}

// OutputConfig describes the table and its sink.
type OutputConfig struct {
	// Path of the output file; empty writes to standard output
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Append opens an existing file for appending instead of truncating it
	Append bool `yaml:"append" json:"append" mapstructure:"append"`
	// Shape is wide or long
	Shape Shape `yaml:"shape" json:"shape" mapstructure:"shape"`
	// SuppressHeader omits the header line
	SuppressHeader bool `yaml:"suppress_header" json:"suppress_header" mapstructure:"suppress_header"`
	// EscapeChar escapes quote characters inside quoted fields
	EscapeChar string `yaml:"escape_char" json:"escape_char" mapstructure:"escape_char"`
	// Compression wraps the sink (none, gzip, zstd, snappy, s2, lz4, deflate)
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// CompressionLevel is 1 (fastest) to 9 (best); 0 picks the algorithm default
	CompressionLevel int `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`
}

// SchemaConfig selects the schema discovery strategy.
type SchemaConfig struct {
	Strategy SchemaStrategy `yaml:"strategy" json:"strategy" mapstructure:"strategy"`
}

// IdentifierConfig selects the long-mode identifier generator.
type IdentifierConfig struct {
	Strategy IDStrategy `yaml:"strategy" json:"strategy" mapstructure:"strategy"`
	// Prefix is prepended to sequence identifiers
	Prefix string `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `yaml:"level" json:"level" mapstructure:"level"`
	Encoding string `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
}

// MetricsConfig configures the metrics export.
type MetricsConfig struct {
	// File receives the run metrics in Prometheus text format; empty disables export
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// Default returns the configuration used when no file, environment or flag
// overrides anything.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Format: "iso2709",
		},
		Flatten: FlattenConfig{
			SubfieldSeparator:  ";",
			DuplicateSeparator: "|",
		},
		Output: OutputConfig{
			Shape:       ShapeWide,
			EscapeChar:  `\`,
			Compression: "none",
		},
		Schema: SchemaConfig{
			Strategy: StrategyBuffered,
		},
		Identifier: IdentifierConfig{
			Strategy: IDUUID,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Validate checks the configuration before any I/O happens.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return errors.New(errors.ErrorTypeConfig, "input path is required")
	}
	if c.Input.Limit < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "record limit must not be negative, got %d", c.Input.Limit)
	}
	switch c.Input.Format {
	case "iso2709", "marcjson":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown input format %q", c.Input.Format)
	}

	switch c.Output.Shape {
	case ShapeWide, ShapeLong:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown output shape %q", c.Output.Shape)
	}
	if len([]rune(c.Output.EscapeChar)) != 1 {
		return errors.Newf(errors.ErrorTypeConfig, "escape char must be a single character, got %q", c.Output.EscapeChar)
	}
	if c.Output.EscapeChar == `"` {
		return errors.New(errors.ErrorTypeConfig, "escape char must differ from the quote character")
	}
	if c.Output.Append && c.Output.Path == "" {
		return errors.New(errors.ErrorTypeConfig, "append mode requires an output file")
	}
	if _, err := compression.ParseAlgorithm(c.Output.Compression); err != nil {
		return err
	}
	if c.Output.CompressionLevel < 0 || c.Output.CompressionLevel > 9 {
		return errors.Newf(errors.ErrorTypeConfig, "compression level must be between 0 and 9, got %d", c.Output.CompressionLevel)
	}

	switch c.Schema.Strategy {
	case StrategyBuffered:
	case StrategyTwoPass:
		if c.Input.Path == "-" {
			return errors.New(errors.ErrorTypeConfig, "two-pass schema discovery cannot reread standard input")
		}
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown schema strategy %q", c.Schema.Strategy)
	}

	switch c.Identifier.Strategy {
	case IDUUID, IDSequence, IDXXH3:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown identifier strategy %q", c.Identifier.Strategy)
	}
	return nil
}

// Unbounded reports whether every record of the input is read.
func (i *InputConfig) Unbounded() bool {
	return i.Limit <= 0
}

// IsCompressed reports whether the sink is wrapped by a compressor.
func (o *OutputConfig) IsCompressed() bool {
	return o.Compression != "" && o.Compression != "none"
}
