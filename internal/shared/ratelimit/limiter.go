// Package ratelimit throttles clients per IP with fixed windows, one per
// second and one per minute. The limiter is injected into the middleware
// so tests and deployments choose the backing store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limits caps requests per client within the two windows. Zero disables a
// window.
type Limits struct {
	PerSecond int
	PerMinute int
}

// DefaultLimits mirror the production defaults.
var DefaultLimits = Limits{PerSecond: 10, PerMinute: 100}

// Limiter decides whether a client may proceed. retryAfter is the wait
// until the earliest exhausted window resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type window struct {
	start time.Time
	count int
}

// MemoryLimiter is a per-process fixed window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	limits  Limits
	seconds map[string]*window
	minutes map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(limits Limits) *MemoryLimiter {
	return &MemoryLimiter{
		limits:  limits,
		seconds: make(map[string]*window),
		minutes: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock fixes the clock, for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if retryAfter, ok := exceed(l.seconds, key, now, time.Second, l.limits.PerSecond); ok {
		return false, retryAfter, nil
	}
	if retryAfter, ok := exceed(l.minutes, key, now, time.Minute, l.limits.PerMinute); ok {
		// Undo the second-window count so a rejected request does not
		// consume budget. The window is absent when PerSecond is zero.
		if w := l.seconds[key]; w != nil {
			w.count--
		}
		return false, retryAfter, nil
	}
	l.dropStale(now)
	return true, 0, nil
}

func exceed(windows map[string]*window, key string, now time.Time, span time.Duration, limit int) (time.Duration, bool) {
	if limit <= 0 {
		return 0, false
	}
	w, ok := windows[key]
	if !ok || now.Sub(w.start) >= span {
		windows[key] = &window{start: now, count: 1}
		return 0, false
	}
	if w.count >= limit {
		return w.start.Add(span).Sub(now), true
	}
	w.count++
	return 0, false
}

// dropStale evicts idle windows so long-running processes do not grow a
// map entry per client forever.
func (l *MemoryLimiter) dropStale(now time.Time) {
	if len(l.minutes) < 10000 {
		return
	}
	for key, w := range l.minutes {
		if now.Sub(w.start) >= 2*time.Minute {
			delete(l.minutes, key)
			delete(l.seconds, key)
		}
	}
}
