package manager

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/gatekeep/pkg/rules/source"
)

// Poller refreshes a source on an interval and calls onChange when the
// refresh reports new content.
type Poller struct {
	source   source.Refresher
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller. timeout bounds each refresh; zero means the
// interval.
func NewPoller(src source.Refresher, interval, timeout time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &Poller{
		source:   src,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context, onChange func()) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("rules poller started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("rules poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx, onChange)
		}
	}
}

func (p *Poller) poll(ctx context.Context, onChange func()) {
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	changed, err := p.source.Refresh(pollCtx)
	if err != nil {
		// Keep polling; the next tick may succeed.
		p.logger.Warn("rules refresh failed", "error", err)
		return
	}
	if changed {
		onChange()
	}
}
