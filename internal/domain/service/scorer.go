package service

import (
	"context"
	"errors"

	"SignalDesk/internal/domain/models"
)

// ErrScoringUnavailable is returned by a scorer that cannot produce a score.
var ErrScoringUnavailable = errors.New("scoring unavailable")

// ConfidenceScorer produces a directional confidence split for an asset and timeframe.
type ConfidenceScorer interface {
	Score(ctx context.Context, asset models.Asset, timeframeMinutes int) (models.Score, error)
}

// ScorerFunc adapts a plain function to ConfidenceScorer.
type ScorerFunc func(ctx context.Context, asset models.Asset, timeframeMinutes int) (models.Score, error)

func (f ScorerFunc) Score(ctx context.Context, asset models.Asset, timeframeMinutes int) (models.Score, error) {
	return f(ctx, asset, timeframeMinutes)
}
