package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a per-user cap of max events within a sliding window.
// A max <= 0 disables the limiter (Allow always succeeds).
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	events map[int64][]time.Time
}

// NewLimiter creates a Limiter allowing max events per window per user.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		events: make(map[int64][]time.Time),
	}
}

// Allow reports whether the user may perform another event at time now, and
// records it when allowed. Events older than the window are forgotten.
func (l *Limiter) Allow(userID int64, now time.Time) bool {
	if l.max <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	recent := l.events[userID][:0]
	for _, t := range l.events[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.events[userID] = recent
		return false
	}
	l.events[userID] = append(recent, now)
	return true
}
