// Package server implements a token bucket rate limiter for per-connection
// throttling that protects the fan-out core from abusive senders.
package server

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket sized for one connection: the configured
// burst is the bucket capacity, and a full burst of tokens refills over one
// interval. Refill is continuous rather than in whole-interval steps.
type rateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	perSecond  float64
	lastRefill time.Time
}

func newRateLimiter(burst int, interval time.Duration) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &rateLimiter{
		tokens:     float64(burst),
		burst:      float64(burst),
		perSecond:  float64(burst) / interval.Seconds(),
		lastRefill: time.Now(),
	}
}

// allow consumes one token if available and reports whether the caller may
// proceed.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())

	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// refill credits the bucket for the time elapsed since the previous refill,
// capped at the burst capacity. Callers must hold rl.mu.
func (rl *rateLimiter) refill(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	if elapsed <= 0 {
		return
	}
	rl.tokens += elapsed * rl.perSecond
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
}
