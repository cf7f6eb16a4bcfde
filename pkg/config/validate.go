package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateGuardrails(&cfg.Guardrails)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	durations := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(cfg.ReadTimeout)},
		{"server.write_timeout", int64(cfg.WriteTimeout)},
		{"server.idle_timeout", int64(cfg.IdleTimeout)},
		{"server.shutdown_timeout", int64(cfg.ShutdownTimeout)},
		{"server.request_timeout", int64(cfg.RequestTimeout)},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{Field: d.field, Message: "timeout must be positive"})
		}
	}

	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}
	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	switch cfg.Source {
	case "file":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "rules.path",
				Message: "rules path is required when source is 'file'",
			})
		}
	case "git":
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "rules.git.repository",
				Message: "repository is required when source is 'git'",
			})
		}
		if cfg.Git.Path == "" {
			errs = append(errs, FieldError{
				Field:   "rules.git.path",
				Message: "path is required when source is 'git'",
			})
		}
		if cfg.Watch && cfg.Git.PollInterval <= 0 {
			errs = append(errs, FieldError{
				Field:   "rules.git.poll_interval",
				Message: "poll interval must be positive when watching",
			})
		}
		errs = append(errs, validateGitAuth(&cfg.Git.Auth)...)
	default:
		errs = append(errs, FieldError{
			Field:   "rules.source",
			Message: fmt.Sprintf("invalid rules source %q: must be 'file' or 'git'", cfg.Source),
		})
	}

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "rules.debounce", Message: "debounce must be non-negative"})
	}

	if cfg.Store.Enabled {
		if cfg.Store.Driver != "sqlite" && cfg.Store.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "rules.store.driver",
				Message: fmt.Sprintf("invalid store driver %q: must be 'sqlite' or 'sqlite3'", cfg.Store.Driver),
			})
		}
		if cfg.Store.Path == "" {
			errs = append(errs, FieldError{
				Field:   "rules.store.path",
				Message: "store path is required when the store is enabled",
			})
		}
		if cfg.Store.Keep < 1 {
			errs = append(errs, FieldError{
				Field:   "rules.store.keep",
				Message: "keep must be at least 1",
			})
		}
	}
	return errs
}

func validateGitAuth(cfg *GitAuthConfig) []FieldError {
	switch cfg.Type {
	case "none", "":
	case "token":
		if cfg.Token == "" {
			return []FieldError{{Field: "rules.git.auth.token", Message: "token auth requires a token"}}
		}
	case "ssh":
		if cfg.SSHKeyPath == "" {
			return []FieldError{{Field: "rules.git.auth.ssh_key_path", Message: "ssh auth requires ssh_key_path"}}
		}
	default:
		return []FieldError{{
			Field:   "rules.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'token', 'ssh' or 'none'", cfg.Type),
		}}
	}
	return nil
}

func validateGuardrails(cfg *GuardrailsConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRules <= 0 {
		errs = append(errs, FieldError{Field: "guardrails.max_rules", Message: "max rules must be positive"})
	}
	if cfg.MaxRegexRules < 0 {
		errs = append(errs, FieldError{Field: "guardrails.max_regex_rules", Message: "max regex rules cannot be negative"})
	}
	if cfg.TimeBudget <= 0 {
		errs = append(errs, FieldError{Field: "guardrails.time_budget", Message: "time budget must be positive"})
	}
	if cfg.MaxDepth <= 0 {
		errs = append(errs, FieldError{Field: "guardrails.max_depth", Message: "max depth must be positive"})
	}
	if cfg.RegexCacheSize < 0 {
		errs = append(errs, FieldError{Field: "guardrails.regex_cache_size", Message: "regex cache size cannot be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: "pattern is required",
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never' or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{Field: "telemetry.health.liveness_path", Message: "path must start with '/'"})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{Field: "telemetry.health.readiness_path", Message: "path must start with '/'"})
	}
	return errs
}
