package scoring

import (
	"context"
	"fmt"

	"SignalDesk/internal/domain/models"
	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/pkg/config"
)

// HTTPScorer asks an external scoring service for the CALL percentage.
type HTTPScorer struct {
	base     *HTTPServiceBase
	attempts int
}

func NewHTTPScorer(cfg *config.Config) *HTTPScorer {
	return &HTTPScorer{
		base:     NewHTTPServiceBase(cfg.Scorer.ServiceURL, cfg.Scorer.Timeout),
		attempts: cfg.Scorer.RetryAttempts,
	}
}

type scoreReq struct {
	AssetID   string `json:"asset_id"`
	Asset     string `json:"asset"`
	Timeframe int    `json:"timeframe"`
}

type scoreResp struct {
	CallPercent *int `json:"call_percent"`
}

func (s *HTTPScorer) Score(ctx context.Context, asset models.Asset, timeframeMinutes int) (models.Score, error) {
	var sr scoreResp
	err := s.base.PostJSONWithRetry(ctx, "/score", scoreReq{AssetID: asset.ID, Asset: asset.Name, Timeframe: timeframeMinutes}, &sr, s.attempts)
	if err != nil {
		return models.Score{}, fmt.Errorf("%w: %w", domsvc.ErrScoringUnavailable, err)
	}
	if sr.CallPercent == nil {
		return models.Score{}, fmt.Errorf("%w: response missing call_percent", domsvc.ErrScoringUnavailable)
	}
	score := models.Score{Call: *sr.CallPercent, Put: 100 - *sr.CallPercent}
	if err := score.Validate(); err != nil {
		return models.Score{}, fmt.Errorf("%w: %w", domsvc.ErrScoringUnavailable, err)
	}
	return score, nil
}

var _ domsvc.ConfidenceScorer = (*HTTPScorer)(nil)
