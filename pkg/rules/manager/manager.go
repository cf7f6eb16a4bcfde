package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/store"
	"mercator-hq/gatekeep/pkg/rules/validator"
	"mercator-hq/gatekeep/pkg/telemetry/metrics"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

// VersionStore records activated configurations. *store.Store implements
// it.
type VersionStore interface {
	Save(ctx context.Context, v store.Version) (*store.Version, bool, error)
	Get(ctx context.Context, id string) (*store.Version, error)
	List(ctx context.Context, limit int) ([]store.Version, error)
}

// Status reports the manager state for introspection endpoints.
type Status struct {
	Active      *Snapshot
	LastAttempt time.Time
	LastError   error
	Reloads     int64
	Failures    int64
}

// Manager publishes the active rules configuration.
type Manager struct {
	source    source.Source
	validator *validator.Validator
	store     VersionStore
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
	strict    bool
	debounce  time.Duration
	poll      time.Duration

	current atomic.Pointer[Snapshot]

	// reloadMu serializes reloads so snapshots are published in order.
	reloadMu sync.Mutex

	stateMu     sync.RWMutex
	lastAttempt time.Time
	lastErr     error
	reloads     int64
	failures    int64

	watching atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore records every activated configuration.
func WithStore(s VersionStore) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithMetrics reports reloads and active rule counts.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Manager) {
		m.metrics = c
	}
}

// WithTracer traces reloads.
func WithTracer(t *tracing.Tracer) Option {
	return func(m *Manager) {
		m.tracer = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStrict rejects configurations that have lint warnings.
func WithStrict(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// WithDebounce sets the file event debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// WithPollInterval sets the poll interval for refreshable sources. It
// overrides the source's own interval.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.poll = d
		}
	}
}

// New creates a Manager. No configuration is active until Reload succeeds.
func New(src source.Source, v *validator.Validator, opts ...Option) (*Manager, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if v == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}

	m := &Manager{
		source:    src,
		validator: v,
		logger:    slog.Default(),
		debounce:  config.DefaultRulesDebounce,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "rules.manager")
	return m, nil
}

// Current returns the active snapshot, or nil before the first successful
// reload.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Config returns the active configuration, or nil.
func (m *Manager) Config() *ast.RulesConfig {
	if s := m.current.Load(); s != nil {
		return s.Config
	}
	return nil
}

// Source returns the configured source.
func (m *Manager) Source() source.Source {
	return m.source
}

// Status returns the active snapshot and reload bookkeeping.
func (m *Manager) Status() Status {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return Status{
		Active:      m.current.Load(),
		LastAttempt: m.lastAttempt,
		LastError:   m.lastErr,
		Reloads:     m.reloads,
		Failures:    m.failures,
	}
}

// HealthCheck fails until a configuration is active. It matches
// health.CheckFunc.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.current.Load() == nil {
		return ErrNoRules
	}
	return nil
}

// Reload loads, lints and activates the source's current configuration.
// On failure the previous snapshot stays active and a *ReloadError is
// returned.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	ctx, span := m.startSpan(ctx, "rules.reload")
	defer span.End()

	start := time.Now()
	doc, err := m.source.Load(ctx)
	if err != nil {
		rerr := &ReloadError{Source: m.source.Describe(), Stage: StageLoad, Cause: err}
		m.finish(span, start, nil, rerr)
		return nil, rerr
	}

	snap, err := m.activate(ctx, doc, m.source.Describe())
	m.finish(span, start, snap, err)
	return snap, err
}

// Rollback activates a configuration recorded in the store. The next
// reload from the source replaces it again.
func (m *Manager) Rollback(ctx context.Context, id string) (*Snapshot, error) {
	if m.store == nil {
		return nil, ErrStoreDisabled
	}

	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	ctx, span := m.startSpan(ctx, "rules.rollback")
	defer span.End()

	start := time.Now()
	origin := "store:" + id

	v, err := m.store.Get(ctx, id)
	if err != nil {
		rerr := &ReloadError{Source: origin, Stage: StageLoad, Cause: err}
		m.finish(span, start, nil, rerr)
		return nil, rerr
	}

	doc, err := source.NewDocument(v.Body, source.Format(v.Format), origin)
	if err != nil {
		rerr := &ReloadError{Source: origin, Stage: StageLoad, Cause: err}
		m.finish(span, start, nil, rerr)
		return nil, rerr
	}
	doc.Revision = v.Revision

	snap, err := m.activate(ctx, doc, origin)
	m.finish(span, start, snap, err)
	return snap, err
}

// Versions lists stored versions, newest first.
func (m *Manager) Versions(ctx context.Context, limit int) ([]store.Version, error) {
	if m.store == nil {
		return nil, ErrStoreDisabled
	}
	return m.store.List(ctx, limit)
}

// activate lints doc and publishes it. Caller holds reloadMu.
func (m *Manager) activate(ctx context.Context, doc *source.Document, origin string) (*Snapshot, error) {
	report := m.validator.Validate(doc.Config)
	if err := report.ToError(m.strict); err != nil {
		return nil, &ReloadError{Source: origin, Stage: StageValidate, Report: report, Cause: err}
	}

	prev := m.current.Load()
	if prev != nil && prev.Checksum == doc.Checksum && prev.Revision == doc.Revision {
		m.logger.Debug("rules unchanged", "revision", doc.Revision)
		return prev, nil
	}

	snap := &Snapshot{
		Config:   doc.Config,
		Body:     doc.Body,
		Format:   doc.Format,
		Checksum: doc.Checksum,
		Revision: doc.Revision,
		Source:   origin,
		LoadedAt: doc.LoadedAt,
		Warnings: report.Warnings(),
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now()
	}

	if m.store != nil {
		stats := snap.Stats()
		saved, created, err := m.store.Save(ctx, store.Version{
			Version:   doc.Config.Version,
			Checksum:  doc.Checksum,
			Revision:  doc.Revision,
			Source:    origin,
			Format:    string(doc.Format),
			RuleCount: stats.Total,
			Body:      doc.Body,
		})
		if err != nil {
			// History is best effort; the configuration itself is valid.
			m.logger.Warn("failed to record rules version", "error", err)
		} else {
			snap.StoreID = saved.ID
			if created {
				m.logger.Debug("rules version recorded", "store_id", saved.ID)
			}
		}
	}

	m.current.Store(snap)

	for _, w := range snap.Warnings {
		m.logger.Warn("rules lint warning",
			"rule_id", w.RuleID,
			"path", w.Path,
			"message", w.Message,
		)
	}
	return snap, nil
}

// finish records the outcome of a reload attempt.
func (m *Manager) finish(span trace.Span, start time.Time, snap *Snapshot, err error) {
	duration := time.Since(start)
	kind := m.source.Kind()

	m.stateMu.Lock()
	m.lastAttempt = time.Now()
	m.lastErr = err
	m.reloads++
	if err != nil {
		m.failures++
	}
	m.stateMu.Unlock()

	m.metrics.RecordReload(kind, err, duration)

	if err != nil {
		tracing.SetReloadAttributes(span, kind, "", 0, err)

		attrs := []any{"source", m.source.Describe(), "error", err, "duration", duration}
		if prev := m.current.Load(); prev != nil {
			attrs = append(attrs, "active_version", prev.Version(), "active_revision", prev.Revision)
		}
		var rerr *ReloadError
		if errors.As(err, &rerr) && rerr.Report != nil {
			attrs = append(attrs, "errors", len(rerr.Report.Errors()), "warnings", len(rerr.Report.Warnings()))
		}
		m.logger.Error("rules reload failed, keeping previous rules", attrs...)
		return
	}

	stats := snap.Stats()
	m.metrics.UpdateActiveRules(stats.Total, stats.Enabled, stats.Regex)
	tracing.SetReloadAttributes(span, kind, snap.Version(), stats.Total, nil)

	m.logger.Info("rules activated",
		"source", snap.Source,
		"version", snap.Version(),
		"revision", snap.Revision,
		"rules", stats.Total,
		"enabled", stats.Enabled,
		"regex", stats.Regex,
		"warnings", len(snap.Warnings),
		"duration", duration,
	)
}

func (m *Manager) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if m.tracer == nil {
		// A non-recording span; ending it must not end the caller's span.
		return ctx, trace.SpanFromContext(context.Background())
	}
	return m.tracer.Start(ctx, name)
}
