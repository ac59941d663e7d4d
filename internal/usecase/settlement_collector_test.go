package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource serves one stream per Read call.
type scriptedSource struct {
	mu         sync.Mutex
	streams    []chan models.Settlement
	errs       []chan error
	reads      int
	reconnects int
	connected  bool
}

func newScriptedSource(n int) *scriptedSource {
	s := &scriptedSource{}
	for i := 0; i < n; i++ {
		s.streams = append(s.streams, make(chan models.Settlement, 8))
		s.errs = append(s.errs, make(chan error, 1))
	}
	return s
}

func (s *scriptedSource) Connect(context.Context) error {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *scriptedSource) Read(context.Context) (<-chan models.Settlement, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reads
	s.reads++
	if i >= len(s.streams) {
		return make(chan models.Settlement), make(chan error)
	}
	return s.streams[i], s.errs[i]
}

func (s *scriptedSource) Reconnect(context.Context) error {
	s.mu.Lock()
	s.reconnects++
	s.mu.Unlock()
	return nil
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

func (s *scriptedSource) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *scriptedSource) Reconnects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

func TestSettlementCollectorEnqueuesAndReconnects(t *testing.T) {
	src := newScriptedSource(2)
	lc := NewSignalLifecycle(NewSignalHistory(5))
	c := NewSettlementCollector(src, lc, metrics.Noop{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.IsConnected())

	src.streams[0] <- models.Settlement{SignalID: 1, Outcome: models.DirectionCall}
	src.streams[0] <- models.Settlement{SignalID: 2, Outcome: "SIDEWAYS"}
	require.Eventually(t, func() bool { return lc.Pending() == 1 }, time.Second, time.Millisecond)

	src.errs[0] <- errors.New("connection reset")
	require.Eventually(t, func() bool { return src.Reconnects() == 1 }, time.Second, time.Millisecond)

	src.streams[1] <- models.Settlement{SignalID: 3, Outcome: models.DirectionPut}
	require.Eventually(t, func() bool { return lc.Pending() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, c.Stop())
	assert.False(t, c.IsConnected())
}
