package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
)

// TickReport describes what one tick changed.
type TickReport struct {
	Expired []int64
	Settled []int64
	Errors  []error
}

// SignalLifecycle advances signals held in a SignalHistory through
// active -> expired | won | lost.
type SignalLifecycle struct {
	history *SignalHistory
	sink    eventSink
	metrics drepo.Metrics
	logger  *logger.Logger

	mu      sync.Mutex
	pending []models.Settlement
}

// LifecycleOption configures SignalLifecycle.
type LifecycleOption func(*SignalLifecycle)

func WithLifecycleLogger(l *logger.Logger) LifecycleOption {
	return func(lc *SignalLifecycle) { lc.logger = l }
}

func WithLifecycleMetrics(m drepo.Metrics) LifecycleOption {
	return func(lc *SignalLifecycle) { lc.metrics = m }
}

func WithLifecyclePublisher(p drepo.EventPublisher) LifecycleOption {
	return func(lc *SignalLifecycle) { lc.sink.pub = p }
}

func NewSignalLifecycle(history *SignalHistory, opts ...LifecycleOption) *SignalLifecycle {
	lc := &SignalLifecycle{
		history: history,
		metrics: metrics.Noop{},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(lc)
	}
	lc.sink.metrics = lc.metrics
	lc.sink.logger = lc.logger
	return lc
}

// Enqueue queues a settlement to be applied on the next tick.
func (lc *SignalLifecycle) Enqueue(s models.Settlement) {
	lc.mu.Lock()
	lc.pending = append(lc.pending, s)
	lc.mu.Unlock()
}

// Pending returns the number of queued settlements.
func (lc *SignalLifecycle) Pending() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.pending)
}

// Tick applies queued settlements, then expires every active signal whose expiry has been reached.
// Terminal signals are left untouched. Settlement failures are reported, never fatal.
func (lc *SignalLifecycle) Tick(ctx context.Context, now time.Time) TickReport {
	lc.mu.Lock()
	queued := lc.pending
	lc.pending = nil
	lc.mu.Unlock()

	var (
		report  TickReport
		changed []models.Signal
		active  int
	)
	lc.history.update(func(items []models.Signal) {
		for _, s := range queued {
			sig, err := settle(items, s.SignalID, s.Outcome, now, &changed)
			if err != nil {
				report.Errors = append(report.Errors, err)
				continue
			}
			report.Settled = append(report.Settled, sig.ID)
		}
		for i := range items {
			sig := &items[i]
			if sig.Status != models.StatusActive || !sig.Expired(now) {
				continue
			}
			if err := transition(sig, models.StatusExpired, now); err != nil {
				report.Errors = append(report.Errors, err)
				continue
			}
			report.Expired = append(report.Expired, sig.ID)
			changed = append(changed, sig.Clone())
		}
		for i := range items {
			if items[i].Status == models.StatusActive {
				active++
			}
		}
	})

	for _, err := range report.Errors {
		lc.report(err)
	}
	lc.announce(ctx, changed, now)
	lc.metrics.RecordActiveSignals(active)
	return report
}

// Settle resolves an active signal against the observed market outcome.
func (lc *SignalLifecycle) Settle(ctx context.Context, id int64, outcome models.Direction, now time.Time) (models.Signal, error) {
	var (
		sig     models.Signal
		err     error
		changed []models.Signal
	)
	lc.history.update(func(items []models.Signal) {
		sig, err = settle(items, id, outcome, now, &changed)
	})
	if err != nil {
		lc.report(err)
	}
	lc.announce(ctx, changed, now)
	return sig, err
}

func (lc *SignalLifecycle) announce(ctx context.Context, changed []models.Signal, now time.Time) {
	if len(changed) == 0 {
		return
	}
	lc.history.sequenced(func() { lc.publish(ctx, changed, now) })
}

func (lc *SignalLifecycle) publish(ctx context.Context, changed []models.Signal, now time.Time) {
	for _, sig := range changed {
		lc.metrics.RecordTransition(sig.Status)
		lc.logger.Info("signal transitioned",
			logger.Int64("signal_id", sig.ID),
			logger.String("asset", sig.Asset),
			logger.String("status", string(sig.Status)),
		)
		lc.sink.emit(ctx, sig, now)
	}
}

func (lc *SignalLifecycle) report(err error) {
	kind := "settlement"
	switch {
	case errors.Is(err, ErrStaleSettlement):
		kind = "stale_settlement"
	case errors.Is(err, ErrIllegalTransition):
		kind = "illegal_transition"
	case errors.Is(err, ErrSignalNotFound):
		kind = "signal_not_found"
	}
	lc.metrics.RecordError(kind)
	lc.logger.Warn("lifecycle transition rejected", logger.String("kind", kind), logger.Error(err))
}

// settle applies one settlement to items. Signals that change are appended to changed.
func settle(items []models.Signal, id int64, outcome models.Direction, now time.Time, changed *[]models.Signal) (models.Signal, error) {
	idx := indexOf(items, id)
	if idx < 0 {
		return models.Signal{}, fmt.Errorf("%w: %d", ErrSignalNotFound, id)
	}
	sig := &items[idx]

	to := models.StatusLost
	if outcome == sig.Direction {
		to = models.StatusWon
	}

	switch {
	case sig.Status == models.StatusExpired:
		return sig.Clone(), &TransitionError{SignalID: id, From: sig.Status, To: to, Err: ErrStaleSettlement}
	case sig.Status.Terminal():
		return sig.Clone(), transition(sig, to, now)
	case sig.Expired(now):
		// Expiry wins over a late settlement.
		if err := transition(sig, models.StatusExpired, now); err != nil {
			return sig.Clone(), err
		}
		*changed = append(*changed, sig.Clone())
		return sig.Clone(), &TransitionError{SignalID: id, From: models.StatusExpired, To: to, Err: ErrStaleSettlement}
	}

	if err := transition(sig, to, now); err != nil {
		return sig.Clone(), err
	}
	*changed = append(*changed, sig.Clone())
	return sig.Clone(), nil
}

// transition moves sig from active to a terminal status.
func transition(sig *models.Signal, to models.Status, now time.Time) error {
	if sig.Status != models.StatusActive || !to.Terminal() {
		return &TransitionError{SignalID: sig.ID, From: sig.Status, To: to, Err: ErrIllegalTransition}
	}
	sig.Status = to
	at := now
	sig.SettledAt = &at
	return nil
}
