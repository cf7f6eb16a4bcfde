// Package config provides configuration management for gatekeep.
//
// Configuration is read from a YAML file, overridden by environment
// variables, filled with defaults, and validated. Every field has a
// working default, so an empty file (or no file at all) yields a runnable
// configuration that evaluates ./rules.yaml under the standard guardrails.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("gatekeep.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("gatekeep.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GATEKEEP_SECTION_FIELD
// and are bound with struct tags:
//
//   - GATEKEEP_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GATEKEEP_RULES_GIT_AUTH_TOKEN overrides rules.git.auth.token
//   - GATEKEEP_GUARDRAILS_TIME_BUDGET overrides guardrails.time_budget
//   - GATEKEEP_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A .env file in the working directory is loaded before the environment is
// read. Variables already present in the process environment win.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Process-wide Access
//
//	if err := config.Initialize("gatekeep.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.Get()
//
// Library packages never call Get; they receive the sections they need as
// arguments.
package config
