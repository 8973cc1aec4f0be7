package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps a token bucket per key in process. It is used when no Redis
// address is configured.
type MemoryLimiter struct {
	policy Policy

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{policy: policy, visitors: make(map[string]*visitor)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if !l.policy.Enabled() {
		return true, nil
	}
	return l.getLimiter(key).Allow(), nil
}

func (l *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	every := rate.Every(l.policy.Window / time.Duration(l.policy.Requests))
	v := &visitor{limiter: rate.NewLimiter(every, l.policy.Requests), lastSeen: now}
	l.visitors[key] = v
	return v.limiter
}

// Sweep forgets keys idle for longer than maxIdle and returns how many were dropped.
func (l *MemoryLimiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	dropped := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(interval)
		}
	}
}
