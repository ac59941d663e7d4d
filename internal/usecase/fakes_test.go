package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/domain/service"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt models.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixedScorer always returns the same split.
func fixedScorer(call int) service.ConfidenceScorer {
	return service.ScorerFunc(func(context.Context, models.Asset, int) (models.Score, error) {
		return models.Score{Call: call, Put: 100 - call}, nil
	})
}

// blockingScorer holds every call until release is closed.
type blockingScorer struct {
	started chan struct{}
	release chan struct{}
	call    int
}

func newBlockingScorer(call int) *blockingScorer {
	return &blockingScorer{started: make(chan struct{}, 16), release: make(chan struct{}), call: call}
}

func (s *blockingScorer) Score(context.Context, models.Asset, int) (models.Score, error) {
	s.started <- struct{}{}
	<-s.release
	return models.Score{Call: s.call, Put: 100 - s.call}, nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		models.Asset{ID: "eur_usd", Name: "EUR/USD", Category: "forex"},
		models.Asset{ID: "gbp_usd", Name: "GBP/USD", Category: "forex"},
		models.Asset{ID: "btc_usd", Name: "Bitcoin", Category: "crypto"},
	)
	require.NoError(t, err)
	return c
}

func defaultPolicy() drepo.TimeframePolicy {
	return drepo.NewTimeframePolicy(true, drepo.DefaultTimeframes, drepo.DefaultTimeframe())
}

func activeSignal(id int64, dir models.Direction, created time.Time, minutes int) models.Signal {
	call := 70
	if dir == models.DirectionPut {
		call = 30
	}
	return models.Signal{
		ID:               id,
		AssetID:          "eur_usd",
		Asset:            "EUR/USD",
		CallPercent:      call,
		PutPercent:       100 - call,
		Direction:        dir,
		Strength:         models.StrengthModerate,
		TimeframeMinutes: minutes,
		CreatedAt:        created,
		ExpiresAt:        created.Add(time.Duration(minutes) * time.Minute),
		Status:           models.StatusActive,
	}
}
