package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	orch    *AnalysisOrchestrator
	history *SignalHistory
	clock   *fakeClock
	pub     *recordingPublisher
}

func newOrchestrator(t *testing.T, scorer service.ConfidenceScorer, policy drepo.TimeframePolicy) orchestratorFixture {
	t.Helper()
	f := orchestratorFixture{
		history: NewSignalHistory(5),
		clock:   newFakeClock(),
		pub:     &recordingPublisher{},
	}
	f.orch = NewAnalysisOrchestrator(testCatalog(t), scorer, f.history, policy,
		WithClock(f.clock.Now),
		WithPublisher(f.pub),
	)
	return f
}

func TestAnalyzeCreatesActiveSignal(t *testing.T) {
	f := newOrchestrator(t, fixedScorer(70), defaultPolicy())

	sig, err := f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sig.ID)
	assert.Equal(t, "EUR/USD", sig.Asset)
	assert.Equal(t, "eur_usd", sig.AssetID)
	assert.Equal(t, 70, sig.CallPercent)
	assert.Equal(t, 30, sig.PutPercent)
	assert.Equal(t, models.DirectionCall, sig.Direction)
	assert.Equal(t, models.StrengthModerate, sig.Strength)
	assert.Equal(t, models.StatusActive, sig.Status)
	assert.Equal(t, t0, sig.CreatedAt)
	assert.Equal(t, t0.Add(3*time.Minute), sig.ExpiresAt)

	recent := f.history.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, sig, recent[0])

	cur, ok := f.orch.Current()
	require.True(t, ok)
	assert.Equal(t, sig, cur)
	assert.False(t, f.orch.InProgress())
	assert.Equal(t, []models.EventType{models.EventSignalCreated}, f.pub.Types())
}

func TestAnalyzeDirectionAndStrength(t *testing.T) {
	tests := []struct {
		call     int
		dir      models.Direction
		strength models.Strength
	}{
		{50, models.DirectionPut, models.StrengthWeak},
		{51, models.DirectionCall, models.StrengthWeak},
		{35, models.DirectionPut, models.StrengthModerate},
		{80, models.DirectionCall, models.StrengthStrong},
		{6, models.DirectionPut, models.StrengthStrong},
	}
	for _, tt := range tests {
		f := newOrchestrator(t, fixedScorer(tt.call), defaultPolicy())
		sig, err := f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "btc_usd", TimeframeMinutes: 1})
		require.NoError(t, err)
		assert.Equal(t, tt.dir, sig.Direction, "call=%d", tt.call)
		assert.Equal(t, tt.strength, sig.Strength, "call=%d", tt.call)
		assert.Equal(t, 100, sig.CallPercent+sig.PutPercent)
	}
}

func TestAnalyzeHistoryStaysBounded(t *testing.T) {
	f := newOrchestrator(t, fixedScorer(60), defaultPolicy())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		f.clock.Advance(time.Second)
		_, err := f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "gbp_usd", TimeframeMinutes: 5})
		require.NoError(t, err)
	}

	assert.Equal(t, 5, f.history.Len())
	assert.Equal(t, []int64{6, 5, 4, 3, 2}, ids(f.history.Recent(5)))
}

func TestAnalyzeRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  models.AnalysisRequest
		want error
	}{
		{"unknown asset", models.AnalysisRequest{AssetID: "doge_usd", TimeframeMinutes: 3}, ErrInvalidAsset},
		{"empty asset", models.AnalysisRequest{TimeframeMinutes: 3}, ErrInvalidAsset},
		{"timeframe not offered", models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 4}, ErrInvalidTimeframe},
		{"zero timeframe", models.AnalysisRequest{AssetID: "eur_usd"}, ErrInvalidTimeframe},
		{"asset checked first", models.AnalysisRequest{AssetID: "nope", TimeframeMinutes: 4}, ErrInvalidAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestrator(t, fixedScorer(70), defaultPolicy())
			_, err := f.orch.Analyze(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRejection(err))
			assert.Zero(t, f.history.Len())
			assert.False(t, f.orch.InProgress())
			_, ok := f.orch.Current()
			assert.False(t, ok)
		})
	}
}

func TestAnalyzeIgnoresTimeframeWhenSelectionDisabled(t *testing.T) {
	policy := drepo.NewTimeframePolicy(false, drepo.DefaultTimeframes, drepo.DefaultTimeframe())
	f := newOrchestrator(t, fixedScorer(70), policy)

	sig, err := f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 42})
	require.NoError(t, err)
	assert.Equal(t, 3, sig.TimeframeMinutes)
	assert.Equal(t, t0.Add(3*time.Minute), sig.ExpiresAt)
}

func TestAnalyzeRejectsConcurrentRequest(t *testing.T) {
	scorer := newBlockingScorer(70)
	f := newOrchestrator(t, scorer, defaultPolicy())
	ctx := context.Background()

	first, err := f.orch.Submit(ctx, models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
	require.NoError(t, err)
	<-scorer.started
	assert.True(t, f.orch.InProgress())

	_, err = f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "gbp_usd", TimeframeMinutes: 3})
	require.ErrorIs(t, err, ErrAnalysisInProgress)

	close(scorer.release)
	res := <-first
	require.NoError(t, res.Err)
	_, open := <-first
	assert.False(t, open)

	assert.Equal(t, 1, f.history.Len())
	assert.Equal(t, "EUR/USD", f.history.Recent(1)[0].Asset)
	assert.False(t, f.orch.InProgress())

	_, err = f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "gbp_usd", TimeframeMinutes: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, f.history.Len())
}

func TestAnalyzeScorerFailure(t *testing.T) {
	tests := []struct {
		name   string
		scorer service.ConfidenceScorer
	}{
		{"unavailable", service.ScorerFunc(func(context.Context, models.Asset, int) (models.Score, error) {
			return models.Score{}, service.ErrScoringUnavailable
		})},
		{"invalid split", service.ScorerFunc(func(context.Context, models.Asset, int) (models.Score, error) {
			return models.Score{Call: 70, Put: 40}, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestrator(t, tt.scorer, defaultPolicy())
			_, err := f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
			require.ErrorIs(t, err, ErrAnalysisFailed)
			assert.ErrorIs(t, err, service.ErrScoringUnavailable)
			assert.False(t, IsRejection(err))
			assert.Zero(t, f.history.Len())
			assert.False(t, f.orch.InProgress())
			assert.Empty(t, f.pub.Types())
		})
	}
}

func TestAnalyzeCallerCancellationStillRecords(t *testing.T) {
	scorer := newBlockingScorer(40)
	f := newOrchestrator(t, scorer, defaultPolicy())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 2})
		done <- err
	}()
	<-scorer.started
	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))

	close(scorer.release)
	require.Eventually(t, func() bool { return !f.orch.InProgress() }, time.Second, time.Millisecond)
	assert.Equal(t, 1, f.history.Len())
}

func TestCurrentTracksLiveStatus(t *testing.T) {
	f := newOrchestrator(t, fixedScorer(90), defaultPolicy())
	lc := NewSignalLifecycle(f.history)
	ctx := context.Background()

	sig, err := f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 1})
	require.NoError(t, err)

	lc.Tick(ctx, sig.ExpiresAt)
	cur, ok := f.orch.Current()
	require.True(t, ok)
	assert.Equal(t, models.StatusExpired, cur.Status)

	// evicted from history: last snapshot is still reported
	for i := 0; i < 5; i++ {
		f.history.Record(activeSignal(int64(100+i), models.DirectionPut, t0, 1))
	}
	cur, ok = f.orch.Current()
	require.True(t, ok)
	assert.Equal(t, sig.ID, cur.ID)
}

func TestSignalIDsAreMonotonic(t *testing.T) {
	f := newOrchestrator(t, fixedScorer(70), defaultPolicy())
	ctx := context.Background()
	var last int64
	for i := 0; i < 3; i++ {
		sig, err := f.orch.Analyze(ctx, models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 1})
		require.NoError(t, err)
		assert.Greater(t, sig.ID, last)
		last = sig.ID
	}
}

func TestAnalyzeScorerPanicFailsRun(t *testing.T) {
	panicking := service.ScorerFunc(func(context.Context, models.Asset, int) (models.Score, error) {
		panic("model backend blew up")
	})
	f := newOrchestrator(t, panicking, defaultPolicy())

	_, err := f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
	require.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "model backend blew up")
	assert.False(t, f.orch.InProgress())
	assert.Zero(t, f.history.Len())

	// the guard is free again
	f.orch.scorer = fixedScorer(70)
	_, err = f.orch.Analyze(context.Background(), models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
	assert.NoError(t, err)
}

// gatedPublisher holds the first signal.created event until release is closed.
type gatedPublisher struct {
	recordingPublisher
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPublisher) Publish(ctx context.Context, evt models.LifecycleEvent) error {
	if evt.Type == models.EventSignalCreated {
		p.once.Do(func() {
			close(p.entered)
			<-p.release
		})
	}
	return p.recordingPublisher.Publish(ctx, evt)
}

func TestCreatedEventPrecedesSettlementEvent(t *testing.T) {
	history := NewSignalHistory(5)
	clock := newFakeClock()
	pub := &gatedPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	orch := NewAnalysisOrchestrator(testCatalog(t), fixedScorer(70), history, defaultPolicy(),
		WithClock(clock.Now),
		WithPublisher(pub),
	)
	lc := NewSignalLifecycle(history, WithLifecyclePublisher(pub))
	ctx := context.Background()

	out, err := orch.Submit(ctx, models.AnalysisRequest{AssetID: "eur_usd", TimeframeMinutes: 3})
	require.NoError(t, err)
	<-pub.entered

	settled := make(chan error, 1)
	go func() {
		_, err := lc.Settle(ctx, 1, models.DirectionCall, t0.Add(time.Minute))
		settled <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(pub.release)

	res := <-out
	require.NoError(t, res.Err)
	require.NoError(t, <-settled)
	assert.Equal(t, []models.EventType{models.EventSignalCreated, models.EventSignalWon}, pub.Types())
}
