package manager

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/source"
)

// Watch keeps the active snapshot current until ctx is cancelled. File
// sources are watched with fsnotify; refreshable sources are polled.
// Reload failures are logged and the previous snapshot stays active.
func (m *Manager) Watch(ctx context.Context) error {
	if !m.watching.CompareAndSwap(false, true) {
		return ErrWatchRunning
	}
	defer m.watching.Store(false)

	reload := func() {
		// Errors are logged by Reload.
		_, _ = m.Reload(ctx)
	}

	switch src := m.source.(type) {
	case *source.FileSource:
		fw, err := NewFileWatcher(src.Path(), m.debounce, m.logger)
		if err != nil {
			return err
		}
		defer fw.Stop()
		return fw.Watch(ctx, reload)

	case source.Refresher:
		interval := m.poll
		if interval <= 0 {
			interval = config.DefaultGitPollInterval
			if p, ok := src.(interface{ PollInterval() time.Duration }); ok && p.PollInterval() > 0 {
				interval = p.PollInterval()
			}
		}
		NewPoller(src, interval, 0, m.logger).Run(ctx, reload)
		return nil

	default:
		return fmt.Errorf("source %s does not support watching", m.source.Describe())
	}
}
