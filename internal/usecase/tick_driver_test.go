package usecase

import (
	"context"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickDriverRunOnceUsesClock(t *testing.T) {
	h := NewSignalHistory(5)
	h.Record(activeSignal(1, models.DirectionCall, t0, 1))
	clock := newFakeClock()
	d := NewTickDriver(NewSignalLifecycle(h), time.Second, clock.Now, nil)
	ctx := context.Background()

	assert.Empty(t, d.RunOnce(ctx).Expired)

	clock.Advance(time.Minute)
	assert.Equal(t, []int64{1}, d.RunOnce(ctx).Expired)
}

func TestTickDriverRunStopsOnCancel(t *testing.T) {
	h := NewSignalHistory(5)
	h.Record(activeSignal(1, models.DirectionCall, t0, 1))
	clock := newFakeClock()
	clock.Advance(time.Hour)
	d := NewTickDriver(NewSignalLifecycle(h), 5*time.Millisecond, clock.Now, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		sig, _ := h.Get(1)
		return sig.Status == models.StatusExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}
