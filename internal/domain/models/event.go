package models

import "time"

// EventType names a lifecycle event.
type EventType string

const (
	EventSignalCreated EventType = "signal.created"
	EventSignalExpired EventType = "signal.expired"
	EventSignalWon     EventType = "signal.won"
	EventSignalLost    EventType = "signal.lost"
)

// EventTypeFor returns the event emitted when a signal enters status.
func EventTypeFor(status Status) EventType {
	switch status {
	case StatusExpired:
		return EventSignalExpired
	case StatusWon:
		return EventSignalWon
	case StatusLost:
		return EventSignalLost
	default:
		return EventSignalCreated
	}
}

// LifecycleEvent is published whenever a signal is created or changes status.
type LifecycleEvent struct {
	ID         string    `json:"event_id"`
	Type       EventType `json:"type"`
	Signal     Signal    `json:"signal"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Settlement is an external outcome for a signal: the direction the market actually moved.
type Settlement struct {
	SignalID int64     `json:"signal_id"`
	Outcome  Direction `json:"outcome"`
}
