package memory

import (
	"context"
	"sync"
	"time"
)

// Limiter is a fixed-window request counter keyed by caller.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]window
}

type window struct {
	start time.Time
	count int
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return NewLimiterWithClock(limit, window, time.Now)
}

// NewLimiterWithClock is test-only for deterministic windows.
func NewLimiterWithClock(limit int, win time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  win,
		now:     now,
		windows: make(map[string]window),
	}
}

// Allow counts one request for key and reports whether it fits in the current window.
func (l *Limiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = window{start: now}
	}
	w.count++
	l.windows[key] = w

	// opportunistic sweep so idle callers don't pile up
	if len(l.windows) > 1024 {
		for k, other := range l.windows {
			if now.Sub(other.start) >= l.window {
				delete(l.windows, k)
			}
		}
	}
	return w.count <= l.limit, nil
}
