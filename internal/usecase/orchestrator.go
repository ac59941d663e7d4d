package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/domain/service"
	"SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
)

// AssetResolver looks up assets by id.
type AssetResolver interface {
	Resolve(id string) (models.Asset, error)
}

// AnalysisResult is the outcome of one analysis run.
type AnalysisResult struct {
	Signal models.Signal
	Err    error
}

// AnalysisOrchestrator runs user-initiated analyses, one at a time.
type AnalysisOrchestrator struct {
	assets     AssetResolver
	scorer     service.ConfidenceScorer
	history    *SignalHistory
	timeframes drepo.TimeframePolicy
	clock      Clock
	metrics    drepo.Metrics
	logger     *logger.Logger
	sink       eventSink

	inFlight atomic.Bool
	nextID   atomic.Int64

	mu      sync.RWMutex
	current *models.Signal
}

type OrchestratorOption func(*AnalysisOrchestrator)

func WithClock(c Clock) OrchestratorOption {
	return func(o *AnalysisOrchestrator) { o.clock = c }
}

func WithLogger(l *logger.Logger) OrchestratorOption {
	return func(o *AnalysisOrchestrator) { o.logger = l }
}

func WithMetrics(m drepo.Metrics) OrchestratorOption {
	return func(o *AnalysisOrchestrator) { o.metrics = m }
}

func WithPublisher(p drepo.EventPublisher) OrchestratorOption {
	return func(o *AnalysisOrchestrator) { o.sink.pub = p }
}

func NewAnalysisOrchestrator(
	assets AssetResolver,
	scorer service.ConfidenceScorer,
	history *SignalHistory,
	timeframes drepo.TimeframePolicy,
	opts ...OrchestratorOption,
) *AnalysisOrchestrator {
	o := &AnalysisOrchestrator{
		assets:     assets,
		scorer:     scorer,
		history:    history,
		timeframes: timeframes,
		clock:      time.Now,
		metrics:    metrics.Noop{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.sink.metrics = o.metrics
	o.sink.logger = o.logger
	return o
}

// Submit validates req, takes the in-flight guard and starts the run.
// The returned channel receives exactly one result and is then closed.
// The run does not observe ctx cancellation.
func (o *AnalysisOrchestrator) Submit(ctx context.Context, req models.AnalysisRequest) (<-chan AnalysisResult, error) {
	asset, err := o.assets.Resolve(req.AssetID)
	if err != nil {
		o.metrics.RecordAnalysis("invalid_asset", 0)
		return nil, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	timeframe, ok := o.timeframes.Resolve(req.TimeframeMinutes)
	if !ok {
		o.metrics.RecordAnalysis("invalid_timeframe", 0)
		return nil, fmt.Errorf("%w: %d", ErrInvalidTimeframe, req.TimeframeMinutes)
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		o.metrics.RecordAnalysis("in_progress", 0)
		return nil, ErrAnalysisInProgress
	}

	out := make(chan AnalysisResult, 1)
	go func() {
		var res AnalysisResult
		defer func() {
			if r := recover(); r != nil {
				o.metrics.RecordAnalysis("failed", 0)
				o.metrics.RecordError("analysis_panic")
				o.logger.Error("analysis panicked",
					logger.String("asset_id", asset.ID),
					logger.Any("panic", r),
				)
				res = AnalysisResult{Err: fmt.Errorf("%w: panic: %v", ErrAnalysisFailed, r)}
			}
			o.inFlight.Store(false)
			out <- res
			close(out)
		}()
		sig, err := o.run(context.WithoutCancel(ctx), asset, timeframe)
		res = AnalysisResult{Signal: sig, Err: err}
	}()
	return out, nil
}

// Analyze submits req and waits for the result. If ctx ends first it returns
// ctx.Err(); the run still completes and is recorded.
func (o *AnalysisOrchestrator) Analyze(ctx context.Context, req models.AnalysisRequest) (models.Signal, error) {
	out, err := o.Submit(ctx, req)
	if err != nil {
		return models.Signal{}, err
	}
	select {
	case res := <-out:
		return res.Signal, res.Err
	case <-ctx.Done():
		return models.Signal{}, ctx.Err()
	}
}

func (o *AnalysisOrchestrator) run(ctx context.Context, asset models.Asset, timeframe int) (models.Signal, error) {
	start := time.Now()
	log := o.logger.With(logger.String("asset_id", asset.ID), logger.Int("timeframe", timeframe))

	score, err := o.scorer.Score(ctx, asset, timeframe)
	if err == nil {
		if verr := score.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", service.ErrScoringUnavailable, verr)
		}
	}
	if err != nil {
		o.metrics.RecordAnalysis("failed", time.Since(start).Seconds())
		o.metrics.RecordError("scoring")
		log.Error("analysis failed", logger.Error(err))
		return models.Signal{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	now := o.clock()
	direction := models.DirectionFor(score.Call, score.Put)
	sig := models.Signal{
		ID:               o.nextID.Add(1),
		AssetID:          asset.ID,
		Asset:            asset.Name,
		CallPercent:      score.Call,
		PutPercent:       score.Put,
		Direction:        direction,
		TimeframeMinutes: timeframe,
		CreatedAt:        now,
		ExpiresAt:        now.Add(drepo.Duration(timeframe)),
		Status:           models.StatusActive,
	}
	sig.Strength = models.ClassifyStrength(sig.Confidence())

	// signal.created must go out before any transition event for the same signal.
	var evicted []models.Signal
	o.history.sequenced(func() {
		evicted = o.history.Record(sig)

		o.mu.Lock()
		cur := sig.Clone()
		o.current = &cur
		o.mu.Unlock()

		o.sink.emit(ctx, sig, now)
	})

	o.metrics.RecordAnalysis("success", time.Since(start).Seconds())
	log.Info("signal created",
		logger.Int64("signal_id", sig.ID),
		logger.String("direction", string(sig.Direction)),
		logger.Int("call_percent", sig.CallPercent),
		logger.String("strength", string(sig.Strength)),
		logger.Time("expires_at", sig.ExpiresAt),
		logger.Int("evicted", len(evicted)),
	)
	return sig, nil
}

// Current returns the latest successful signal with its live status.
func (o *AnalysisOrchestrator) Current() (models.Signal, bool) {
	o.mu.RLock()
	cur := o.current
	o.mu.RUnlock()
	if cur == nil {
		return models.Signal{}, false
	}
	if live, ok := o.history.Get(cur.ID); ok {
		return live, true
	}
	return cur.Clone(), true
}

// Timeframes returns the timeframe policy requests are checked against.
func (o *AnalysisOrchestrator) Timeframes() drepo.TimeframePolicy { return o.timeframes }

// InProgress reports whether an analysis run is in flight.
func (o *AnalysisOrchestrator) InProgress() bool { return o.inFlight.Load() }

// IsRejection reports whether err was a request rejected before any run started.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidAsset) || errors.Is(err, ErrInvalidTimeframe) || errors.Is(err, ErrAnalysisInProgress)
}
