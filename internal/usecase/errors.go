package usecase

import (
	"errors"
	"fmt"

	"SignalDesk/internal/domain/models"
)

var (
	ErrInvalidAsset       = errors.New("invalid asset")
	ErrInvalidTimeframe   = errors.New("invalid timeframe")
	ErrAnalysisInProgress = errors.New("analysis in progress")
	ErrAnalysisFailed     = errors.New("analysis failed")
	ErrIllegalTransition  = errors.New("illegal transition")
	ErrStaleSettlement    = errors.New("stale settlement")
	ErrSignalNotFound     = errors.New("signal not found")
)

// TransitionError reports a rejected status change of one signal.
type TransitionError struct {
	SignalID int64
	From     models.Status
	To       models.Status
	Err      error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("signal %d: %s -> %s: %v", e.SignalID, e.From, e.To, e.Err)
}

// Unwrap returns the sentinel (ErrIllegalTransition or ErrStaleSettlement).
func (e *TransitionError) Unwrap() error { return e.Err }
