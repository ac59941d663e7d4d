package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("expected burst of 2")
	}
	if l.Allow("a") {
		t.Fatalf("expected third call to be limited")
	}
	if got := l.RetryAfter("a"); got != time.Second {
		t.Fatalf("unexpected retry after %v", got)
	}
	if !l.Allow("b") {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected refill after 1.5s")
	}
	if l.Allow("a") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiterCapsAtCapacity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 10)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Hour)
	if !l.Allow("a") {
		t.Fatalf("expected token")
	}
	if l.Allow("a") {
		t.Fatalf("bucket must not exceed capacity")
	}
}

func TestLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1) // full refill after 2s
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.Allow(ip)
	}
	if got := l.Len(); got != 3 {
		t.Fatalf("expected 3 buckets, got %d", got)
	}

	now = now.Add(time.Second)
	l.Allow("10.0.0.1")
	now = now.Add(1500 * time.Millisecond)
	l.Allow("10.0.0.4")

	// .2 and .3 were idle for 2.5s and are gone; .1 was touched 1.5s ago
	if got := l.Len(); got != 2 {
		t.Fatalf("expected 2 buckets after sweep, got %d", got)
	}
	if l.RetryAfter("10.0.0.2") != 0 {
		t.Fatalf("evicted key must start fresh")
	}
}
