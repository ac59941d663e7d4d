package usecase

import (
	"context"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/logger"
)

// SettlementCollector feeds outcomes from a settlement source into the lifecycle queue.
type SettlementCollector struct {
	source    drepo.SettlementSource
	lifecycle *SignalLifecycle
	metrics   drepo.Metrics
	logger    *logger.Logger
}

func NewSettlementCollector(source drepo.SettlementSource, lifecycle *SignalLifecycle, metrics drepo.Metrics, log *logger.Logger) *SettlementCollector {
	if log == nil {
		log = logger.Nop()
	}
	return &SettlementCollector{source: source, lifecycle: lifecycle, metrics: metrics, logger: log}
}

// IsConnected returns true if the settlement source is connected.
func (c *SettlementCollector) IsConnected() bool {
	return c.source.IsConnected()
}

func (c *SettlementCollector) Start(ctx context.Context) error {
	if err := c.source.Connect(ctx); err != nil {
		return err
	}
	go c.consume(ctx)
	return nil
}

func (c *SettlementCollector) consume(ctx context.Context) {
	for {
		setCh, errCh := c.source.Read(ctx)
		if !c.drain(ctx, setCh, errCh) {
			return
		}
		if err := c.source.Reconnect(ctx); err != nil {
			c.metrics.RecordError("settlement_reconnect")
			c.logger.Warn("settlement reconnect failed", logger.Error(err))
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// drain forwards settlements until the stream fails. It returns false once ctx is done.
func (c *SettlementCollector) drain(ctx context.Context, setCh <-chan models.Settlement, errCh <-chan error) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case err, ok := <-errCh:
			if !ok {
				return ctx.Err() == nil
			}
			c.metrics.RecordError("settlement_stream")
			c.logger.Warn("settlement stream error", logger.Error(err))
			return ctx.Err() == nil
		case s, ok := <-setCh:
			if !ok {
				return ctx.Err() == nil
			}
			if !s.Outcome.Valid() {
				c.logger.Warn("settlement dropped", logger.Int64("signal_id", s.SignalID), logger.String("outcome", string(s.Outcome)))
				continue
			}
			c.lifecycle.Enqueue(s)
		}
	}
}

func (c *SettlementCollector) Stop() error { return c.source.Close() }
