package scoring

import (
	"fmt"

	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/pkg/config"
)

// New returns the scorer selected by cfg.Scorer.Type.
func New(cfg *config.Config) (domsvc.ConfidenceScorer, error) {
	switch cfg.Scorer.Type {
	case "http":
		return NewHTTPScorer(cfg), nil
	case "random", "":
		return NewRandomScorerFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown scorer type %q", cfg.Scorer.Type)
	}
}
