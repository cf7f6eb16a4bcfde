package telemetry

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/telemetry/health"
	"mercator-hq/gatekeep/pkg/telemetry/logging"
	"mercator-hq/gatekeep/pkg/telemetry/metrics"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Telemetry owns the logger, metrics collector, tracer and health checker.
type Telemetry struct {
	config  *config.TelemetryConfig
	build   BuildInfo
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
}

// New builds every telemetry component from configuration.
func New(cfg *config.TelemetryConfig, build BuildInfo) (*Telemetry, error) {
	if cfg == nil {
		return nil, errors.New("telemetry config is nil")
	}

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, tracing.WithServiceVersion(build.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return &Telemetry{
		config:  cfg,
		build:   build,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
		health:  health.New(cfg.Health.CheckTimeout),
	}, nil
}

// Logger returns the structured logger.
func (t *Telemetry) Logger() *logging.Logger { return t.logger }

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker { return t.health }

// Build returns the build information.
func (t *Telemetry) Build() BuildInfo { return t.build }

// Config returns the telemetry configuration.
func (t *Telemetry) Config() *config.TelemetryConfig { return t.config }

// Shutdown flushes the tracer and the logger.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.tracer.Shutdown(ctx), t.logger.Shutdown())
}
