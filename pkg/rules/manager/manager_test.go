package manager

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/store"
	"mercator-hq/gatekeep/pkg/telemetry/metrics"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

// TestNew tests constructor validation.
func TestNew(t *testing.T) {
	src := newMemorySource(t, rulesYAML("v1", 100))

	if _, err := New(nil, newTestValidator()); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := New(src, nil); err == nil {
		t.Error("expected error for nil validator")
	}

	m, err := New(src, newTestValidator())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.Current() != nil || m.Config() != nil {
		t.Error("no snapshot should be active before Reload")
	}
	if err := m.HealthCheck(context.Background()); !errors.Is(err, ErrNoRules) {
		t.Errorf("HealthCheck() = %v, want ErrNoRules", err)
	}
}

// TestReload_Success tests activation and snapshot contents.
func TestReload_Success(t *testing.T) {
	m, _ := New(newMemorySource(t, rulesYAML("v1", 100)), newTestValidator())

	snap, err := m.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if m.Current() != snap {
		t.Error("Current() should return the activated snapshot")
	}
	if snap.Version() != "v1" || snap.Source != "memory" {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := snap.Stats(); got != (Stats{Total: 2, Enabled: 2, Regex: 1}) {
		t.Errorf("Stats() = %+v", got)
	}
	if err := m.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}

	st := m.Status()
	if st.Reloads != 1 || st.Failures != 0 || st.LastError != nil {
		t.Errorf("Status() = %+v", st)
	}
}

// TestReload_KeepsPreviousOnFailure tests that load and lint failures never
// replace the active snapshot.
func TestReload_KeepsPreviousOnFailure(t *testing.T) {
	src := newMemorySource(t, rulesYAML("v1", 100))
	m, _ := New(src, newTestValidator())
	ctx := context.Background()

	good, err := m.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Lint failure.
	if err := src.Set([]byte(invalidYAML), source.FormatYAML); err != nil {
		t.Fatal(err)
	}
	_, err = m.Reload(ctx)
	var rerr *ReloadError
	if !errors.As(err, &rerr) || rerr.Stage != StageValidate || rerr.Report == nil {
		t.Fatalf("Reload() error = %v, want validate ReloadError", err)
	}
	if m.Current() != good {
		t.Error("failed lint replaced the active snapshot")
	}

	// Load failure.
	boom := errors.New("disk on fire")
	src.Fail(boom)
	_, err = m.Reload(ctx)
	if !errors.As(err, &rerr) || rerr.Stage != StageLoad || !errors.Is(err, boom) {
		t.Fatalf("Reload() error = %v, want load ReloadError", err)
	}
	if m.Current() != good {
		t.Error("failed load replaced the active snapshot")
	}

	st := m.Status()
	if st.Failures != 2 || !errors.Is(st.LastError, boom) {
		t.Errorf("Status() = %+v", st)
	}
}

// TestReload_Strict tests that warnings reject only in strict mode.
func TestReload_Strict(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		wantErr bool
	}{
		{"lenient accepts warnings", false, false},
		{"strict rejects warnings", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := New(newMemorySource(t, warningYAML), newTestValidator(), WithStrict(tt.strict))
			snap, err := m.Reload(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(snap.Warnings) == 0 {
				t.Error("accepted snapshot should carry its warnings")
			}
		})
	}
}

// TestReload_Unchanged tests that reloading identical content keeps the
// snapshot.
func TestReload_Unchanged(t *testing.T) {
	m, _ := New(newMemorySource(t, rulesYAML("v1", 100)), newTestValidator())
	ctx := context.Background()

	first, _ := m.Reload(ctx)
	second, err := m.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical content should keep the existing snapshot")
	}
}

// TestReload_StoreAndRollback tests version recording and rollback.
func TestReload_StoreAndRollback(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(store.Options{Path: filepath.Join(t.TempDir(), "rules.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	src := newMemorySource(t, rulesYAML("v1", 100))
	m, _ := New(src, newTestValidator(), WithStore(st))

	v1, err := m.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v1.StoreID == "" {
		t.Fatal("snapshot should reference its store row")
	}

	if err := src.Set([]byte(rulesYAML("v2", 200)), source.FormatYAML); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	versions, err := m.Versions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 || versions[0].Version != "v2" {
		t.Fatalf("Versions() = %+v", versions)
	}

	rolled, err := m.Rollback(ctx, v1.StoreID)
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if rolled.Version() != "v1" || !strings.HasPrefix(rolled.Source, "store:") {
		t.Errorf("rolled back snapshot = %+v", rolled)
	}
	if m.Current().Version() != "v1" {
		t.Error("rollback did not activate v1")
	}

	if _, err := m.Rollback(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Rollback(missing) error = %v", err)
	}
}

// TestRollback_NoStore tests store-backed operations without a store.
func TestRollback_NoStore(t *testing.T) {
	m, _ := New(newMemorySource(t, rulesYAML("v1", 100)), newTestValidator())
	if _, err := m.Rollback(context.Background(), "x"); !errors.Is(err, ErrStoreDisabled) {
		t.Errorf("Rollback() error = %v", err)
	}
	if _, err := m.Versions(context.Background(), 10); !errors.Is(err, ErrStoreDisabled) {
		t.Errorf("Versions() error = %v", err)
	}
}

// TestReload_Telemetry tests metrics and tracing of reloads.
func TestReload_Telemetry(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, registry)

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     tracing.SamplerAlways,
		SampleRatio: 1,
		ServiceName: "gatekeep-test",
	}, tracing.WithExporter(exporter))
	if err != nil {
		t.Fatal(err)
	}
	defer tracer.Shutdown(context.Background())

	src := newMemorySource(t, rulesYAML("v1", 100))
	m, _ := New(src, newTestValidator(), WithMetrics(collector), WithTracer(tracer))
	ctx := context.Background()

	if _, err := m.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	src.Fail(errors.New("gone"))
	m.Reload(ctx)

	n, err := testutil.GatherAndCount(registry, "test_engine_rules_reloads_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("reload series = %d, want 2 (success and failure)", n)
	}

	if err := tracer.ForceFlush(ctx); err != nil {
		t.Fatal(err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 || spans[0].Name != "rules.reload" {
		t.Fatalf("spans = %v", spans)
	}
}
