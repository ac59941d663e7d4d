package models

import "time"

// Direction is the recommended side of a signal.
type Direction string

const (
	DirectionCall Direction = "CALL"
	DirectionPut  Direction = "PUT"
)

// Valid reports whether d is CALL or PUT.
func (d Direction) Valid() bool {
	return d == DirectionCall || d == DirectionPut
}

// Status is the lifecycle state of a signal.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusWon || s == StatusLost
}

// Strength buckets the winning-side confidence of a signal.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

const (
	moderateThreshold = 65
	strongThreshold   = 80
)

// ClassifyStrength maps a winning-side percent to a Strength.
func ClassifyStrength(confidence int) Strength {
	switch {
	case confidence >= strongThreshold:
		return StrengthStrong
	case confidence >= moderateThreshold:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// DirectionFor returns CALL only on a strict CALL majority; a 50/50 split is PUT.
func DirectionFor(callPercent, putPercent int) Direction {
	if callPercent > putPercent {
		return DirectionCall
	}
	return DirectionPut
}

// Signal is one generated recommendation tied to an asset and timeframe.
type Signal struct {
	ID               int64      `json:"id"`
	AssetID          string     `json:"asset_id"`
	Asset            string     `json:"asset"`
	CallPercent      int        `json:"call_percent"`
	PutPercent       int        `json:"put_percent"`
	Direction        Direction  `json:"direction"`
	Strength         Strength   `json:"strength"`
	TimeframeMinutes int        `json:"timeframe"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Status           Status     `json:"status"`
	SettledAt        *time.Time `json:"settled_at,omitempty"`
}

// Confidence is the percent of the recommended side.
func (s Signal) Confidence() int {
	if s.Direction == DirectionCall {
		return s.CallPercent
	}
	return s.PutPercent
}

// Expired reports whether now has reached the signal's expiry.
func (s Signal) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Clone returns a copy that shares no pointers with s.
func (s Signal) Clone() Signal {
	if s.SettledAt != nil {
		t := *s.SettledAt
		s.SettledAt = &t
	}
	return s
}

// DashboardStats summarizes signals currently held in history.
type DashboardStats struct {
	Total   int     `json:"total"`
	Active  int     `json:"active"`
	Expired int     `json:"expired"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	WinRate float64 `json:"win_rate"`
}
