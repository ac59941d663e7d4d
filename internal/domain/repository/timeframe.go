package repository

import "time"

// DefaultTimeframes are the timeframe choices offered to users, in minutes.
var DefaultTimeframes = []int{1, 2, 3, 5, 10, 15}

// DefaultTimeframe returns the timeframe used when selection is disabled.
func DefaultTimeframe() int { return 3 }

// TimeframePolicy decides which timeframe an analysis runs with.
type TimeframePolicy struct {
	Selectable bool
	Allowed    []int
	Default    int
}

// NewTimeframePolicy builds a policy, falling back to package defaults for empty values.
func NewTimeframePolicy(selectable bool, allowed []int, def int) TimeframePolicy {
	if len(allowed) == 0 {
		allowed = DefaultTimeframes
	}
	if def <= 0 {
		def = DefaultTimeframe()
	}
	return TimeframePolicy{Selectable: selectable, Allowed: append([]int(nil), allowed...), Default: def}
}

// IsValid returns true if minutes is one of the allowed timeframes.
func (p TimeframePolicy) IsValid(minutes int) bool {
	for _, m := range p.Allowed {
		if m == minutes {
			return true
		}
	}
	return false
}

// Resolve returns the timeframe to use for a requested value.
// When selection is disabled the request value is ignored.
func (p TimeframePolicy) Resolve(requested int) (int, bool) {
	if !p.Selectable {
		return p.Default, true
	}
	if !p.IsValid(requested) {
		return 0, false
	}
	return requested, true
}

// Duration converts timeframe minutes to a time.Duration.
func Duration(minutes int) time.Duration { return time.Duration(minutes) * time.Minute }
