package usecase

import (
	"sync"
	"time"
)

type rateWindow struct {
	windowStart time.Time
	count       int
}

// HourlyLimiter counts requests per key within the current clock hour.
// The counter resets lazily when a request arrives in a new hour; Flush
// drops windows that have gone stale so the map does not grow unbounded.
// State is in-process only and lost on restart.
type HourlyLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewHourlyLimiter() *HourlyLimiter {
	return &HourlyLimiter{windows: make(map[string]*rateWindow)}
}

// Allow records one request for keyID and reports whether it fits within
// limit for the hour containing now. A non-positive limit disables the
// check.
func (l *HourlyLimiter) Allow(keyID string, limit int, now time.Time) bool {
	if limit <= 0 {
		return true
	}

	hour := now.UTC().Truncate(time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[keyID]
	if !ok || !w.windowStart.Equal(hour) {
		w = &rateWindow{windowStart: hour}
		l.windows[keyID] = w
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many requests keyID may still make this hour.
func (l *HourlyLimiter) Remaining(keyID string, limit int, now time.Time) int {
	if limit <= 0 {
		return limit
	}
	hour := now.UTC().Truncate(time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[keyID]
	if !ok || !w.windowStart.Equal(hour) {
		return limit
	}
	if w.count >= limit {
		return 0
	}
	return limit - w.count
}

// Flush removes windows older than the hour containing now.
func (l *HourlyLimiter) Flush(now time.Time) {
	hour := now.UTC().Truncate(time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if w.windowStart.Before(hour) {
			delete(l.windows, key)
		}
	}
}
