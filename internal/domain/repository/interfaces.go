package repository

import (
	"context"

	"SignalDesk/internal/domain/models"
)

// EventPublisher ships lifecycle events to an external consumer.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.LifecycleEvent) error
	Close() error
}

// SettlementSource streams external outcomes for signals.
type SettlementSource interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.Settlement, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Metrics interface {
	RecordAnalysis(result string, seconds float64)
	RecordTransition(to models.Status)
	RecordActiveSignals(n int)
	RecordError(kind string)
}
