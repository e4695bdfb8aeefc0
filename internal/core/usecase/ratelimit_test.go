package usecase

import (
	"testing"
	"time"
)

func TestHourlyLimiterAllow(t *testing.T) {
	l := NewHourlyLimiter()
	now := time.Date(2026, 3, 14, 10, 15, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !l.Allow("key-1", 3, now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("key-1", 3, now) {
		t.Fatal("fourth request should be denied")
	}
	if !l.Allow("key-2", 3, now) {
		t.Fatal("a different key should have its own window")
	}
}

func TestHourlyLimiterZeroLimitDisablesCheck(t *testing.T) {
	l := NewHourlyLimiter()
	now := time.Now()

	for i := 0; i < 100; i++ {
		if !l.Allow("key-1", 0, now) {
			t.Fatal("limit of zero should never deny")
		}
	}
}

func TestHourlyLimiterResetsOnNewHour(t *testing.T) {
	l := NewHourlyLimiter()
	now := time.Date(2026, 3, 14, 10, 59, 0, 0, time.UTC)

	if !l.Allow("key-1", 1, now) {
		t.Fatal("first request should pass")
	}
	if l.Allow("key-1", 1, now) {
		t.Fatal("second request in the same hour should be denied")
	}

	next := now.Add(2 * time.Minute)
	if !l.Allow("key-1", 1, next) {
		t.Fatal("new hour should start a fresh window")
	}
}

func TestHourlyLimiterRemaining(t *testing.T) {
	l := NewHourlyLimiter()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if got := l.Remaining("key-1", 5, now); got != 5 {
		t.Fatalf("untouched key remaining = %d, want 5", got)
	}

	l.Allow("key-1", 5, now)
	l.Allow("key-1", 5, now)

	if got := l.Remaining("key-1", 5, now); got != 3 {
		t.Fatalf("remaining = %d, want 3", got)
	}

	for i := 0; i < 10; i++ {
		l.Allow("key-1", 5, now)
	}
	if got := l.Remaining("key-1", 5, now); got != 0 {
		t.Fatalf("exhausted key remaining = %d, want 0", got)
	}
}

func TestHourlyLimiterFlush(t *testing.T) {
	l := NewHourlyLimiter()
	earlier := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	l.Allow("stale", 10, earlier)
	l.Allow("fresh", 10, now)

	l.Flush(now)

	if _, ok := l.windows["stale"]; ok {
		t.Fatal("stale window should have been flushed")
	}
	if _, ok := l.windows["fresh"]; !ok {
		t.Fatal("current window should survive a flush")
	}
}
