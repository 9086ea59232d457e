// Package config provides the configuration of a marcflat conversion run.
//
// A single Config structure carries every knob of the run, organized into
// logical sections:
//   - Input: where records come from and how many are read
//   - Flatten: how fields and subfields become column keys and values
//   - Output: table shape, header, sink mode and compression
//   - Schema: how the wide-mode header is discovered
//   - Identifier: how long-mode record identifiers are generated
//   - Log and Metrics: ambient observability
//
// # Usage
//
//	cfg := config.Default()
//	if err := config.Load("marcflat.yaml", cfg); err != nil {
//		log.Fatal(err)
//	}
//	cfg.Input.Path = "records.mrc"
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Substitution
//
//	# marcflat.yaml
//	output:
//	  path: ${EXPORT_DIR}/catalog.csv
//	  shape: long
//
// The command line layers configuration as defaults, then the YAML file,
// then MARCFLAT_* environment variables, then flags. Config carries both
// yaml and mapstructure tags so the same structure serves the loader here
// and viper in the command.
package config
