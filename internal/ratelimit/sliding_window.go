// Package ratelimit keeps per-client sliding windows of recent writes.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string][]time.Time
	calls   int
}

// NewLimiter allows limit events per window for each key. A limit of zero
// or less allows everything.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: map[string][]time.Time{},
	}
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

func (l *Limiter) Allow(key string, now time.Time) Result {
	if !l.Enabled() {
		return Result{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%1024 == 0 {
		l.sweep(now)
	}

	history := trim(l.buckets[key], now.Add(-l.window))
	result := Result{
		Allowed: len(history) < l.limit,
		Limit:   l.limit,
	}
	if result.Allowed {
		history = append(history, now)
		result.Remaining = l.limit - len(history)
	}
	result.ResetAt = history[0].Add(l.window)
	l.buckets[key] = history
	return result
}

// sweep drops keys whose whole window has expired.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for key, history := range l.buckets {
		if len(trim(history, cutoff)) == 0 {
			delete(l.buckets, key)
		}
	}
}

func trim(history []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(history) && history[i].Before(cutoff) {
		i++
	}
	return history[i:]
}
