package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", burst: 2, calls: 5, wantPass: 2},
		{name: "single token", burst: 1, calls: 4, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(1, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("203.0.113.7") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

// frozen pins the limiter's clock and returns a function that advances it.
func frozen(rl *KeyedRateLimiter) func(time.Duration) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestCheck_ReportsRetryAfter(t *testing.T) {
	rl := PerMinute(2)
	defer rl.Stop()
	advance := frozen(rl)

	ok, wait := rl.Check("198.51.100.1")
	assert.True(t, ok)
	assert.Zero(t, wait)
	ok, _ = rl.Check("198.51.100.1")
	assert.True(t, ok)

	ok, wait = rl.Check("198.51.100.1")
	assert.False(t, ok)
	assert.InDelta(t, 30*time.Second, wait, float64(time.Millisecond), "two per minute refills one token every 30s")

	advance(10 * time.Second)
	ok, wait = rl.Check("198.51.100.1")
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, wait, float64(time.Millisecond), "rejected checks do not push the refill back")

	advance(20 * time.Second)
	ok, _ = rl.Check("198.51.100.1")
	assert.True(t, ok)
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	rl.Allow("key1")
	assert.False(t, rl.Allow("key1"))
	assert.True(t, rl.Allow("key2"))
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(3)
	defer rl.Stop()

	for i := range 3 {
		assert.True(t, rl.Allow("198.51.100.1"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("198.51.100.1"), "fourth attempt within a minute")
}

func TestPerMinute_ClampsToOne(t *testing.T) {
	rl := PerMinute(0)
	defer rl.Stop()

	assert.True(t, rl.Allow("k"))
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()
	advance := frozen(rl)

	rl.Allow("old")
	advance(5 * time.Minute)
	rl.Allow("fresh")
	advance(6 * time.Minute)

	assert.Equal(t, 1, rl.sweep())
	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("old"), "an evicted key starts over with a full bucket")
}

func TestStop_Idempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
