package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ajitpratap0/marcflat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Input.Path = "records.mrc"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults with input", mutate: func(*Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.Input.Path = "" }, wantErr: true},
		{name: "negative limit", mutate: func(c *Config) { c.Input.Limit = -1 }, wantErr: true},
		{name: "unknown format", mutate: func(c *Config) { c.Input.Format = "marcxml" }, wantErr: true},
		{name: "long shape", mutate: func(c *Config) { c.Output.Shape = ShapeLong }},
		{name: "unknown shape", mutate: func(c *Config) { c.Output.Shape = "tall" }, wantErr: true},
		{name: "two char escape", mutate: func(c *Config) { c.Output.EscapeChar = `\\` }, wantErr: true},
		{name: "quote as escape", mutate: func(c *Config) { c.Output.EscapeChar = `"` }, wantErr: true},
		{name: "append to stdout", mutate: func(c *Config) { c.Output.Append = true }, wantErr: true},
		{name: "append to file", mutate: func(c *Config) { c.Output.Append = true; c.Output.Path = "out.csv" }},
		{name: "zstd", mutate: func(c *Config) { c.Output.Compression = "zstd"; c.Output.CompressionLevel = 9 }},
		{name: "unknown compression", mutate: func(c *Config) { c.Output.Compression = "brotli" }, wantErr: true},
		{name: "level too high", mutate: func(c *Config) { c.Output.CompressionLevel = 12 }, wantErr: true},
		{name: "two-pass from file", mutate: func(c *Config) { c.Schema.Strategy = StrategyTwoPass }},
		{name: "two-pass from stdin", mutate: func(c *Config) { c.Schema.Strategy = StrategyTwoPass; c.Input.Path = "-" }, wantErr: true},
		{name: "sequence ids", mutate: func(c *Config) { c.Identifier.Strategy = IDSequence }},
		{name: "unknown ids", mutate: func(c *Config) { c.Identifier.Strategy = "snowflake" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("MARCFLAT_TEST_OUT", "/tmp/exports")

	path := filepath.Join(t.TempDir(), "marcflat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  limit: 25
output:
  path: ${MARCFLAT_TEST_OUT}/catalog.csv
  shape: long
flatten:
  subfields_as_separate: true
`), 0o600))

	cfg := Default()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, 25, cfg.Input.Limit)
	assert.Equal(t, "/tmp/exports/catalog.csv", cfg.Output.Path)
	assert.Equal(t, ShapeLong, cfg.Output.Shape)
	assert.True(t, cfg.Flatten.SubfieldsAsSeparate)
	// untouched keys keep their defaults
	assert.Equal(t, ";", cfg.Flatten.SubfieldSeparator)
	assert.Equal(t, "|", cfg.Flatten.DuplicateSeparator)
	assert.Equal(t, "iso2709", cfg.Input.Format)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), Default())
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Compression = "gzip"
	cfg.Identifier.Strategy = IDSequence
	cfg.Identifier.Prefix = "run7-"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded := Default()
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestLimitAndCompressionHelpers(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Input.Unbounded())
	assert.False(t, cfg.Output.IsCompressed())

	cfg.Input.Limit = 10
	cfg.Output.Compression = "zstd"
	assert.False(t, cfg.Input.Unbounded())
	assert.True(t, cfg.Output.IsCompressed())

	cfg.Output.Compression = ""
	assert.False(t, cfg.Output.IsCompressed())
}
