package usecase

import (
	"context"
	"time"

	"SignalDesk/pkg/logger"
)

// TickDriver advances the signal lifecycle on a fixed interval.
type TickDriver struct {
	lifecycle *SignalLifecycle
	interval  time.Duration
	clock     Clock
	logger    *logger.Logger
}

func NewTickDriver(lifecycle *SignalLifecycle, interval time.Duration, clock Clock, log *logger.Logger) *TickDriver {
	if interval <= 0 {
		interval = time.Second
	}
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TickDriver{lifecycle: lifecycle, interval: interval, clock: clock, logger: log}
}

// Run ticks until ctx is done.
func (d *TickDriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	d.logger.Info("tick driver started", logger.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("tick driver stopped")
			return
		case <-ticker.C:
			d.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single tick at the driver's clock time.
func (d *TickDriver) RunOnce(ctx context.Context) TickReport {
	report := d.lifecycle.Tick(ctx, d.clock())
	if n := len(report.Expired) + len(report.Settled); n > 0 {
		d.logger.Debug("tick",
			logger.Int("expired", len(report.Expired)),
			logger.Int("settled", len(report.Settled)),
			logger.Int("errors", len(report.Errors)),
		)
	}
	return report
}
