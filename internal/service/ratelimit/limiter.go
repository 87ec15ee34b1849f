package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-key token bucket. Buckets are created on first use
// with the capacity and refill rate the caller passes to Allow, so one
// limiter can serve routes with different rates.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	capacity float64
	refill   float64 // tokens per second
	touched  time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*tokenBucket)}
}

// Allow consumes one token for key, returning false when the bucket
// is empty.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: capacity, capacity: capacity, refill: refillPerSec, touched: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.touched).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refill
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.touched = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
