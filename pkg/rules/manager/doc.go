// Package manager owns the active rules configuration.
//
// A Manager loads a configuration from a source.Source, lints it with the
// validator and publishes it as an immutable Snapshot through an atomic
// pointer. Evaluations read the current snapshot without locking. A reload
// that fails to load or lint leaves the previous snapshot active.
//
// Watch keeps the snapshot current: file sources are watched with fsnotify
// and reloaded after a debounce interval; sources implementing
// source.Refresher (Git) are polled.
//
// Successful reloads are optionally recorded in a store.Store, reported to
// the metrics collector and traced.
//
// Basic usage:
//
//	src, _ := source.NewFileSource("rules.yaml", logger)
//	m, _ := manager.New(src, validator.New(lib, nil), manager.WithLogger(logger))
//	if _, err := m.Reload(ctx); err != nil {
//	    return err
//	}
//	go m.Watch(ctx)
//	result := evaluator.EvaluateRules(m.Current().Config, rec)
package manager
