package telemetry

import (
	"context"
	"testing"

	"mercator-hq/gatekeep/pkg/config"
)

func TestNew(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Tracing.Enabled = false

	tel, err := New(&cfg, BuildInfo{Version: "1.0.0"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tel.Shutdown(context.Background())

	if tel.Logger() == nil || tel.Metrics() == nil || tel.Tracer() == nil || tel.Health() == nil {
		t.Fatal("component missing")
	}
	if !tel.Metrics().Enabled() {
		t.Error("metrics should be enabled by default")
	}
	if tel.Tracer().Enabled() {
		t.Error("tracing should be disabled")
	}
	if tel.Build().Version != "1.0.0" {
		t.Errorf("Build() = %+v", tel.Build())
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, BuildInfo{}); err == nil {
		t.Error("nil config should fail")
	}

	cfg := config.Default().Telemetry
	cfg.Logging.Level = "loud"
	if _, err := New(&cfg, BuildInfo{}); err == nil {
		t.Error("invalid log level should fail")
	}
}
