package scoring

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/pkg/config"
)

// RandomScorer draws the CALL percentage uniformly from [min,max].
type RandomScorer struct {
	min, max int
	latency  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

type RandomOption func(*RandomScorer)

// WithSeed makes the draws reproducible.
func WithSeed(seed int64) RandomOption {
	return func(s *RandomScorer) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLatency overrides the simulated compute time.
func WithLatency(d time.Duration) RandomOption {
	return func(s *RandomScorer) { s.latency = d }
}

// NewRandomScorer builds a scorer for the band [minCall,maxCall].
func NewRandomScorer(minCall, maxCall int, opts ...RandomOption) (*RandomScorer, error) {
	if minCall < 0 || maxCall > 100 || minCall > maxCall {
		return nil, fmt.Errorf("invalid call band [%d,%d]", minCall, maxCall)
	}
	s := &RandomScorer{
		min: minCall,
		max: maxCall,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func NewRandomScorerFromConfig(cfg *config.Config) (*RandomScorer, error) {
	return NewRandomScorer(cfg.Scorer.MinCall, cfg.Scorer.MaxCall, WithLatency(cfg.Scorer.Latency))
}

func (s *RandomScorer) Score(ctx context.Context, _ models.Asset, _ int) (models.Score, error) {
	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return models.Score{}, fmt.Errorf("%w: %w", domsvc.ErrScoringUnavailable, ctx.Err())
		}
	}
	s.mu.Lock()
	call := s.min + s.rng.Intn(s.max-s.min+1)
	s.mu.Unlock()
	return models.Score{Call: call, Put: 100 - call}, nil
}

var _ domsvc.ConfidenceScorer = (*RandomScorer)(nil)
