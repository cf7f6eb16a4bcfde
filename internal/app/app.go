// Package app assembles the gatekeep components from configuration. Both
// the HTTP service and the CLI commands build on it so a command sees the
// same evaluator, validator and rules lifecycle as the running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/manager"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/store"
	"mercator-hq/gatekeep/pkg/rules/validator"
	"mercator-hq/gatekeep/pkg/telemetry"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Telemetry  *telemetry.Telemetry
	Patterns   *patterns.Library
	Guardrails *engine.Guardrails
	Evaluator  *engine.Evaluator
	Validator  *validator.Validator
	Source     source.Source
	Store      *store.Store
	Scheduler  *store.Scheduler
	Manager    *manager.Manager
}

// GuardrailsFromConfig maps the guardrails section onto engine guardrails.
// Zero values fall back to the engine defaults.
func GuardrailsFromConfig(cfg config.GuardrailsConfig) *engine.Guardrails {
	g := engine.DefaultGuardrails()
	if cfg.MaxRules > 0 {
		g.WithMaxRules(cfg.MaxRules)
	}
	if cfg.MaxRegexRules > 0 {
		g.WithMaxRegexRules(cfg.MaxRegexRules)
	}
	if cfg.TimeBudget > 0 {
		g.WithTimeBudget(cfg.TimeBudget)
	}
	if cfg.MaxDepth > 0 {
		g.WithMaxDepth(cfg.MaxDepth)
	}
	return g
}

// NewEngine builds the pattern library, evaluator and validator only. It is
// what offline commands need.
func NewEngine(cfg *config.Config, logger *slog.Logger, observer engine.Observer) (*patterns.Library, *engine.Evaluator, *validator.Validator, error) {
	lib, err := patterns.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build pattern library: %w", err)
	}

	guardrails := GuardrailsFromConfig(cfg.Guardrails)
	cacheSize := cfg.Guardrails.RegexCacheSize
	if cacheSize == 0 {
		cacheSize = engine.DefaultRegexCacheSize
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRegexCacheSize(cacheSize),
	}
	if observer != nil {
		opts = append(opts, engine.WithObserver(observer))
	}

	eval, err := engine.NewEvaluator(lib, guardrails, opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	return lib, eval, validator.New(lib, guardrails), nil
}

// NewSource builds the configured rules source. Git sources are cloned
// before they are returned.
func NewSource(ctx context.Context, cfg config.RulesConfig, logger *slog.Logger) (source.Source, error) {
	switch cfg.Source {
	case "", "file":
		return source.NewFileSource(cfg.Path, logger)
	case "git":
		src, err := source.NewGitSource(cfg.Git, logger)
		if err != nil {
			return nil, err
		}
		if err := src.Clone(ctx); err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown rules source %q", cfg.Source)
	}
}

// New wires every component. No rules are active until the caller reloads
// the manager.
func New(ctx context.Context, cfg *config.Config, build telemetry.BuildInfo) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	tel, err := telemetry.New(&cfg.Telemetry, build)
	if err != nil {
		return nil, err
	}
	logger := tel.Logger().Slog()

	a := &App{Config: cfg, Telemetry: tel}

	a.Patterns, a.Evaluator, a.Validator, err = NewEngine(cfg, logger, tel.Metrics())
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Guardrails = GuardrailsFromConfig(cfg.Guardrails)

	a.Source, err = NewSource(ctx, cfg.Rules, logger)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to create rules source: %w", err)
	}

	opts := []manager.Option{
		manager.WithMetrics(tel.Metrics()),
		manager.WithTracer(tel.Tracer()),
		manager.WithLogger(logger),
		manager.WithStrict(cfg.Rules.Strict),
		manager.WithDebounce(cfg.Rules.Debounce),
		manager.WithPollInterval(cfg.Rules.Git.PollInterval),
	}

	if cfg.Rules.Store.Enabled {
		a.Store, err = store.Open(store.OptionsFromConfig(cfg.Rules.Store, logger))
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to open rules store: %w", err)
		}
		a.Scheduler = store.NewScheduler(a.Store, cfg.Rules.Store.Keep, cfg.Rules.Store.PruneSchedule, logger)
		opts = append(opts, manager.WithStore(a.Store))
	}

	a.Manager, err = manager.New(a.Source, a.Validator, opts...)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Close stops the scheduler, closes the store and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Telemetry != nil {
		errs = append(errs, a.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
