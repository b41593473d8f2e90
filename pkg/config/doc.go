// Package config provides configuration management for the petab tool.
//
// Configuration lives in a YAML file (petab.yaml by convention) with
// environment variable overrides:
//
//	cfg, err := config.LoadConfig("petab.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("petab.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PETAB_SECTION_FIELD:
//
//   - PETAB_LINT_WORKERS overrides lint.workers
//   - PETAB_STORE_BACKEND overrides store.backend
//   - PETAB_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Values are applied in this order, later overriding earlier: defaults,
// the YAML file, environment variables. Validation runs last and reports
// every problem at once:
//
//	configuration validation failed with 2 errors:
//	  - sampling.count: count must be positive
//	  - store.backend: invalid backend "s3": must be 'memory' or 'sqlite'
//
// # Example Configuration
//
//	lint:
//	  workers: 8
//	  strict: true
//	  model_symbols_file: model_ids.txt
//
//	sampling:
//	  seed: 42
//	  count: 5000
//
//	store:
//	  backend: sqlite
//	  path: data/samples.db
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    textfile: /var/lib/node_exporter/petab.prom
//
// # Singleton
//
// Commands call Initialize once at startup and read the result with
// GetConfig. Library code takes explicit values instead.
package config
