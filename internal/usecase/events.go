package usecase

import (
	"context"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/logger"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// eventSink publishes lifecycle events; failures are logged and counted, never returned.
type eventSink struct {
	pub     drepo.EventPublisher
	metrics drepo.Metrics
	logger  *logger.Logger
}

func (s eventSink) emit(ctx context.Context, sig models.Signal, at time.Time) {
	if s.pub == nil {
		return
	}
	evt := models.LifecycleEvent{
		ID:         uuid.NewString(),
		Type:       models.EventTypeFor(sig.Status),
		Signal:     sig,
		OccurredAt: at,
	}
	if err := s.pub.Publish(ctx, evt); err != nil {
		s.metrics.RecordError("publish")
		s.logger.Warn("publish lifecycle event failed",
			logger.String("type", string(evt.Type)),
			logger.Int64("signal_id", sig.ID),
			logger.Error(err),
		)
	}
}
