package config

import "time"

// Config is the root configuration structure for gatekeep.
// It contains all configuration sections for the HTTP service, the rules
// lifecycle, the evaluation guardrails, and telemetry.
type Config struct {
	// Server contains HTTP service configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Rules contains configuration for loading, watching, and storing rules
	// configurations.
	Rules RulesConfig `yaml:"rules" envPrefix:"RULES_"`

	// Guardrails bounds the cost of every evaluation pass.
	Guardrails GuardrailsConfig `yaml:"guardrails" envPrefix:"GUARDRAILS_"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// ServerConfig contains configuration for the HTTP service.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// RequestTimeout bounds the handling of a single request.
	// Default: 5s
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	// MaxBodyBytes limits the size of request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// RulesConfig configures where rules come from and how they are kept.
type RulesConfig struct {
	// Source specifies how rules are loaded.
	// Options: "file" (local file), "git" (Git repository)
	// Default: "file"
	Source string `yaml:"source" env:"SOURCE"`

	// Path is the rules file when Source is "file". The format is chosen by
	// extension: .json, .yaml or .yml.
	// Default: "./rules.yaml"
	Path string `yaml:"path" env:"PATH"`

	// Watch enables automatic reloading when the rules change. File sources
	// use filesystem notifications; Git sources poll.
	// Default: false
	Watch bool `yaml:"watch" env:"WATCH"`

	// Debounce coalesces bursts of file events into one reload.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`

	// Strict rejects configurations with lint warnings, not only errors.
	// Default: false
	Strict bool `yaml:"strict" env:"STRICT"`

	// Git contains Git repository configuration.
	// Used when Source is "git".
	Git GitRulesConfig `yaml:"git" envPrefix:"GIT_"`

	// Store configures the rules version history.
	Store StoreConfig `yaml:"store" envPrefix:"STORE_"`
}

// GitRulesConfig configures Git-based rules loading.
type GitRulesConfig struct {
	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/checkout-rules.git"
	Repository string `yaml:"repository" env:"REPOSITORY"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch" env:"BRANCH"`

	// Path of the rules file within the repository.
	// Default: "rules.yaml"
	Path string `yaml:"path" env:"PATH"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth" envPrefix:"AUTH_"`

	// PollInterval between fetches when watching.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`

	// Timeout for Git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth" env:"DEPTH"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path" env:"LOCAL_PATH"`

	// CleanOnStart removes the local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start" env:"CLEAN_ON_START"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type" env:"TYPE"`

	// Token for HTTPS authentication.
	// Required when Type is "token".
	Token string `yaml:"token" env:"TOKEN"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path" env:"SSH_KEY_PATH"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase" env:"SSH_KEY_PASSPHRASE"`
}

// StoreConfig configures the SQLite rules version store.
type StoreConfig struct {
	// Enabled controls whether activated configurations are recorded.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Driver selects the SQLite driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver" env:"DRIVER"`

	// Path is the database file.
	// Default: "data/rules.db"
	Path string `yaml:"path" env:"PATH"`

	// Keep is the number of versions retained by pruning.
	// Default: 50
	Keep int `yaml:"keep" env:"KEEP"`

	// PruneSchedule is a standard cron expression for pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule" env:"PRUNE_SCHEDULE"`
}

// GuardrailsConfig mirrors engine.Guardrails for configuration files.
type GuardrailsConfig struct {
	// MaxRules is the number of rules evaluated per pass.
	// Default: 100
	MaxRules int `yaml:"max_rules" env:"MAX_RULES"`

	// MaxRegexRules is the number of regex-using rules evaluated per pass.
	// Default: 30
	MaxRegexRules int `yaml:"max_regex_rules" env:"MAX_REGEX_RULES"`

	// TimeBudget is the wall-clock budget checked between rules.
	// Default: 4ms
	TimeBudget time.Duration `yaml:"time_budget" env:"TIME_BUDGET"`

	// MaxDepth is the deepest condition group evaluated.
	// Default: 32
	MaxDepth int `yaml:"max_depth" env:"MAX_DEPTH"`

	// RegexCacheSize bounds the number of compiled ad hoc patterns kept.
	// Default: 256
	RegexCacheSize int `yaml:"regex_cache_size" env:"REGEX_CACHE_SIZE"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health" envPrefix:"HEALTH_"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`

	// RedactPII masks emails, phone numbers, card numbers and credentials in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii" env:"REDACT_PII"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" env:"PATH"`

	// Namespace is the metric name prefix.
	// Default: "gatekeep"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// DurationBuckets defines histogram buckets for pass duration (seconds).
	// Default: [0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.004, 0.008]
	DurationBuckets []float64 `yaml:"duration_buckets" env:"DURATION_BUCKETS"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler" env:"SAMPLER"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// ServiceName is the service name in traces.
	// Default: "gatekeep"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path" env:"LIVENESS_PATH"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path" env:"READINESS_PATH"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout" env:"CHECK_TIMEOUT"`
}
