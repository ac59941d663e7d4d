package usecase

import (
	"sync"

	"SignalDesk/internal/domain/models"
)

// SignalHistory is a bounded, most-recent-first list of signals.
// All reads return copies; mutation goes through Record or the lifecycle.
type SignalHistory struct {
	mu       sync.RWMutex
	events   sync.Mutex
	capacity int
	items    []models.Signal
}

// NewSignalHistory creates a history holding at most capacity signals (minimum 1).
func NewSignalHistory(capacity int) *SignalHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &SignalHistory{capacity: capacity, items: make([]models.Signal, 0, capacity)}
}

// Record prepends sig and evicts from the tail until the capacity holds.
// It returns the evicted signals, oldest last.
func (h *SignalHistory) Record(sig models.Signal) []models.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := make([]models.Signal, 0, h.capacity)
	items = append(items, sig.Clone())
	items = append(items, h.items...)

	var evicted []models.Signal
	if len(items) > h.capacity {
		evicted = append(evicted, items[h.capacity:]...)
		items = items[:h.capacity]
	}
	h.items = items
	return evicted
}

// Recent returns up to n signals, most recent first.
func (h *SignalHistory) Recent(n int) []models.Signal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 {
		return []models.Signal{}
	}
	if n > len(h.items) {
		n = len(h.items)
	}
	out := make([]models.Signal, 0, n)
	for _, s := range h.items[:n] {
		out = append(out, s.Clone())
	}
	return out
}

// Get returns the signal with id if it is still held.
func (h *SignalHistory) Get(id int64) (models.Signal, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i := indexOf(h.items, id); i >= 0 {
		return h.items[i].Clone(), true
	}
	return models.Signal{}, false
}

// Active returns the active signals in history order.
func (h *SignalHistory) Active() []models.Signal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.Signal, 0, len(h.items))
	for _, s := range h.items {
		if s.Status == models.StatusActive {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Stats counts held signals per status.
func (h *SignalHistory) Stats() models.DashboardStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := models.DashboardStats{Total: len(h.items)}
	for _, s := range h.items {
		switch s.Status {
		case models.StatusActive:
			st.Active++
		case models.StatusExpired:
			st.Expired++
		case models.StatusWon:
			st.Won++
		case models.StatusLost:
			st.Lost++
		}
	}
	if settled := st.Won + st.Lost; settled > 0 {
		st.WinRate = float64(st.Won) / float64(settled)
	}
	return st
}

func (h *SignalHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

func (h *SignalHistory) Capacity() int { return h.capacity }

// update runs fn with exclusive access to the stored signals.
// fn may change signals in place but must not reorder, add or remove them.
func (h *SignalHistory) update(fn func(items []models.Signal)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.items)
}

// sequenced runs fn while holding the event ordering lock.
// Never call it with mu held.
func (h *SignalHistory) sequenced(fn func()) {
	h.events.Lock()
	defer h.events.Unlock()
	fn()
}

func indexOf(items []models.Signal, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
