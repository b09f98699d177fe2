package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucketTTL is how long an idle key keeps its bucket before eviction.
const bucketTTL = 10 * time.Minute

// bucket tracks the spendable tokens for one key.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// MemoryLimiter is an in-process token bucket limiter, one bucket per key.
// Each chat request costs one generation-backend call, so the sustained
// rate is deliberately low and the burst small. State lives in this
// process only; a multi-instance deployment would need a shared store
// behind the Limiter interface.
type MemoryLimiter struct {
	rate  float64 // tokens refilled per second
	burst float64 // bucket capacity

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryLimiter creates a limiter refilling rate tokens per second per
// key, up to burst. A janitor goroutine drops keys idle longer than
// bucketTTL; Close stops it.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	m := &MemoryLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Allow spends one token from key's bucket, reporting whether one was
// available.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b, ok := m.buckets[key]
	if !ok {
		// A new key starts full, minus the token this request spends.
		m.buckets[key] = &bucket{tokens: m.burst - 1, lastSeen: now}
		return true, nil
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * m.rate
	if b.tokens > m.burst {
		b.tokens = m.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Close stops the janitor goroutine. Safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.stopOnce.Do(func() { close(m.done) })
	return nil
}

// janitor evicts idle buckets once a minute so the map stays bounded by
// the number of recently active clients.
func (m *MemoryLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			cutoff := time.Now().Add(-bucketTTL)
			for key, b := range m.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(m.buckets, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
