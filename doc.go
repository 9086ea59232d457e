// Package marcflat flattens MARC bibliographic records into CSV tables that
// spreadsheet and data tools can load directly.
//
// Every record becomes either one wide row, with one column per field key
// seen anywhere in the input, or a group of long rows holding one value
// occurrence each and sharing a record identifier.
//
// # Quick Start
//
// Convert a binary MARC file into a wide table:
//
//	marcflat records.mrc -o records.csv
//
// Key columns by tag and subfield code, and write a long table keyed by
// content hashes:
//
//	marcflat records.mrc --subfields-as-separate -l --id-strategy xxh3 -o records.csv
//
// The same conversion from Go:
//
//	import (
//	    "context"
//	    "io"
//
//	    "github.com/ajitpratap0/marcflat/internal/pipeline"
//	    "github.com/ajitpratap0/marcflat/pkg/config"
//	    "github.com/ajitpratap0/marcflat/pkg/logger"
//	    "github.com/ajitpratap0/marcflat/pkg/tabular"
//	)
//
//	cfg := config.Default()
//	cfg.Input.Path = "records.mrc"
//	cfg.Output.Path = "records.csv"
//
//	sink := func() (io.WriteCloser, error) {
//	    return tabular.OpenSink(tabular.SinkOptions{Path: cfg.Output.Path})
//	}
//	conv, err := pipeline.NewConverter(cfg, pipeline.FileOpener(cfg.Input.Path, cfg.Input.Format), sink, logger.Get())
//	if err != nil {
//	    return err
//	}
//	err = conv.Run(context.Background())
//
// # Key Packages
//
//	pkg/marc         - ISO 2709 and MARC-in-JSON record readers
//	pkg/flatten      - Column keys, schema discovery and value collapsing
//	pkg/materialize  - Wide and long row builders, record identifiers
//	pkg/tabular      - Quoted CSV writer and output sinks
//	pkg/compression  - Stream compressors for the output file
//	pkg/config       - Defaults, YAML files and validation
//	pkg/errors       - Typed errors
//	pkg/logger       - Structured logging
//	pkg/metrics      - Per-run Prometheus metrics
//	internal/pipeline - Read, flatten and write orchestration
//
// # Configuration
//
// Settings are resolved from defaults, an optional YAML file given with
// --config, MARCFLAT_ environment variables and command line flags, in
// increasing priority. YAML values may reference the environment with
// ${VAR_NAME} syntax. A .env file in the working directory is loaded first.
//
// Run tests:
//
//	go test ./...
package marcflat
