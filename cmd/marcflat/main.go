package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/marcflat/internal/pipeline"
	"github.com/ajitpratap0/marcflat/pkg/compression"
	"github.com/ajitpratap0/marcflat/pkg/config"
	"github.com/ajitpratap0/marcflat/pkg/logger"
	"github.com/ajitpratap0/marcflat/pkg/marc"
	"github.com/ajitpratap0/marcflat/pkg/tabular"
)

var version = "0.1.0"

const envPrefix = "MARCFLAT"

// flagKeys binds command line flags to configuration keys. Flags not listed
// here (long output, verbose) map onto a key with a fixed value.
var flagKeys = map[string]string{
	"output-file":                      "output.path",
	"append-to-output-file":            "output.append",
	"suppress-header-row":              "output.suppress_header",
	"escape-char":                      "output.escape_char",
	"compression":                      "output.compression",
	"compression-level":                "output.compression_level",
	"subfields-as-separate":            "flatten.subfields_as_separate",
	"subfield-separator":               "flatten.subfield_separator",
	"duplicate-separator":              "flatten.duplicate_separator",
	"include-leader":                   "flatten.include_leader",
	"max-number-of-records-to-process": "input.limit",
	"input-format":                     "input.format",
	"schema-strategy":                  "schema.strategy",
	"id-strategy":                      "identifier.strategy",
	"id-prefix":                        "identifier.prefix",
	"log-format":                       "log.encoding",
	"metrics-file":                     "metrics.file",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newRootCommand() *cobra.Command {
	var (
		configFile  string
		longData    bool
		verbose     bool
		printConfig bool
	)

	root := &cobra.Command{
		Use:   "marcflat [flags] FILE",
		Short: "Flatten MARC records into a wide or long CSV table",
		Long: `marcflat reads MARC bibliographic records and writes them as CSV.

Wide output (default) has one row per record and one column per field tag,
or per tag and subfield code with --subfields-as-separate. Repeated values
share a cell, joined by the duplicate separator. Long output has one row per
value: record identifier, column key, value.

FILE is a path, or - for standard input.`,
		Example: `  marcflat records.mrc > records.csv
  marcflat -l -o subjects.csv --id-strategy sequence records.mrc
  marcflat --schema-strategy two-pass --compression zstd -o big.csv big.mrc`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), configFile, args)
			if err != nil {
				return err
			}
			if longData {
				cfg.Output.Shape = config.ShapeLong
			}
			if verbose {
				cfg.Log.Level = "debug"
			}

			if printConfig {
				data, err := config.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("marcflat v{{.Version}}\nGo version: %s\nOS/Arch: %s/%s\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH))

	defaults := config.Default()
	flags := root.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "YAML configuration file; flags and MARCFLAT_* variables override it")
	flags.BoolVar(&printConfig, "print-config", false, "Print the effective configuration as YAML and exit")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every record at debug level")
	flags.BoolVarP(&longData, "output-long-data", "l", false, "Write long output: identifier, column key, value")

	flags.StringP("output-file", "o", "", "Output file (default standard output)")
	flags.BoolP("append-to-output-file", "a", false, "Append to the output file instead of overwriting it")
	flags.Bool("suppress-header-row", false, "Do not write the header line")
	flags.String("escape-char", defaults.Output.EscapeChar, "Character escaping quotes inside fields")
	flags.String("compression", defaults.Output.Compression,
		"Compress the output ("+strings.Join(algorithmNames(), ", ")+")")
	flags.Int("compression-level", 0, "Compression level 1 (fastest) to 9 (best); 0 uses the default")
	flags.Bool("subfields-as-separate", false, "One column per tag and subfield code")
	flags.StringP("subfield-separator", "s", defaults.Flatten.SubfieldSeparator, "Joins subfield values of one field")
	flags.StringP("duplicate-separator", "d", defaults.Flatten.DuplicateSeparator, "Joins repeated values of one column (wide output)")
	flags.Bool("include-leader", false, "Add the record leader as an LDR column")
	flags.IntP("max-number-of-records-to-process", "n", 0, "Stop after this many records; 0 reads everything")
	flags.StringP("input-format", "f", defaults.Input.Format,
		"Input format ("+strings.Join(marc.Formats(), ", ")+")")
	flags.String("schema-strategy", string(defaults.Schema.Strategy), "Wide header discovery: buffered or two-pass")
	flags.String("id-strategy", string(defaults.Identifier.Strategy), "Long output identifiers: uuid, sequence or xxh3")
	flags.String("id-prefix", "", "Prefix for sequence identifiers")
	flags.String("log-format", defaults.Log.Encoding, "Log encoding: console or json")
	flags.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")

	return root
}

// resolveConfig layers defaults, the YAML file, MARCFLAT_* environment
// variables and changed flags, in increasing priority.
func resolveConfig(flags *pflag.FlagSet, configFile string, args []string) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}

	base, err := config.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("failed to layer configuration: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if len(args) == 1 {
		cfg.Input.Path = args[0]
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return err
	}
	log := logger.With(zap.String("version", version))

	algorithm, err := compression.ParseAlgorithm(cfg.Output.Compression)
	if err != nil {
		return err
	}
	sinkOpener := func() (io.WriteCloser, error) {
		sink, err := tabular.OpenSink(tabular.SinkOptions{
			Path:        cfg.Output.Path,
			Append:      cfg.Output.Append,
			Compression: algorithm,
			Level:       compression.LevelOf(cfg.Output.CompressionLevel),
		})
		if err != nil {
			return nil, err
		}
		if sink.Existing() {
			log.Debug("appending to existing output; header is not checked against it", zap.String("path", sink.Path()))
		}
		return sink, nil
	}

	converter, err := pipeline.NewConverter(cfg, pipeline.FileOpener(cfg.Input.Path, cfg.Input.Format), sinkOpener, log)
	if err != nil {
		return err
	}

	runErr := converter.Run(cmd.Context())

	if cfg.Metrics.File != "" {
		if err := converter.Collector().WriteToTextfile(cfg.Metrics.File); err != nil {
			if runErr == nil {
				return err
			}
			log.Warn("failed to write metrics file", zap.Error(err))
		}
	}
	return runErr
}

func algorithmNames() []string {
	names := make([]string, len(compression.Algorithms))
	for i, a := range compression.Algorithms {
		names[i] = string(a)
	}
	return names
}
