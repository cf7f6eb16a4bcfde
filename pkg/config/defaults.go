package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultMaxBodyBytes    = int64(1048576) // 1MB

	// Rules defaults
	DefaultRulesSource     = "file"
	DefaultRulesPath       = "./rules.yaml"
	DefaultRulesDebounce   = 100 * time.Millisecond
	DefaultGitBranch       = "main"
	DefaultGitPath         = "rules.yaml"
	DefaultGitAuthType     = "none"
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitTimeout      = 10 * time.Second
	DefaultGitDepth        = 1

	// Store defaults
	DefaultStoreDriver        = "sqlite"
	DefaultStorePath          = "data/rules.db"
	DefaultStoreKeep          = 50
	DefaultStorePruneSchedule = "0 3 * * *"

	// Guardrail defaults
	DefaultMaxRules       = 100
	DefaultMaxRegexRules  = 30
	DefaultTimeBudget     = 4 * time.Millisecond
	DefaultMaxDepth       = 32
	DefaultRegexCacheSize = 256

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "gatekeep"
	DefaultMetricsSubsystem   = "engine"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "gatekeep"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 2 * time.Second
)

// DefaultDurationBuckets are histogram buckets sized around the 4ms budget.
var DefaultDurationBuckets = []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.004, 0.008}

// Default returns a configuration with every default applied, including
// the boolean fields whose default is true.
func Default() *Config {
	cfg := &Config{}
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Boolean
// fields are left alone; a zero bool is indistinguishable from an explicit
// false, so true defaults come from Default.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Rules defaults
	if cfg.Rules.Source == "" {
		cfg.Rules.Source = DefaultRulesSource
	}
	if cfg.Rules.Path == "" {
		cfg.Rules.Path = DefaultRulesPath
	}
	if cfg.Rules.Debounce == 0 {
		cfg.Rules.Debounce = DefaultRulesDebounce
	}
	applyGitDefaults(&cfg.Rules.Git)
	applyStoreDefaults(&cfg.Rules.Store)

	// Guardrail defaults
	if cfg.Guardrails.MaxRules == 0 {
		cfg.Guardrails.MaxRules = DefaultMaxRules
	}
	if cfg.Guardrails.MaxRegexRules == 0 {
		cfg.Guardrails.MaxRegexRules = DefaultMaxRegexRules
	}
	if cfg.Guardrails.TimeBudget == 0 {
		cfg.Guardrails.TimeBudget = DefaultTimeBudget
	}
	if cfg.Guardrails.MaxDepth == 0 {
		cfg.Guardrails.MaxDepth = DefaultMaxDepth
	}
	if cfg.Guardrails.RegexCacheSize == 0 {
		cfg.Guardrails.RegexCacheSize = DefaultRegexCacheSize
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyGitDefaults(cfg *GitRulesConfig) {
	if cfg.Branch == "" {
		cfg.Branch = DefaultGitBranch
	}
	if cfg.Path == "" {
		cfg.Path = DefaultGitPath
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = DefaultGitAuthType
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultGitPollInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultGitTimeout
	}
	if cfg.Depth == 0 {
		cfg.Depth = DefaultGitDepth
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Driver == "" {
		cfg.Driver = DefaultStoreDriver
	}
	if cfg.Path == "" {
		cfg.Path = DefaultStorePath
	}
	if cfg.Keep == 0 {
		cfg.Keep = DefaultStoreKeep
	}
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = DefaultStorePruneSchedule
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 && cfg.Tracing.Sampler == "ratio" {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
