// Package ratelimit limits requests per client key (the client IP for auth routes).
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result contains the result of a rate limit check
type Result struct {
	Allowed   bool          // Whether the action is allowed
	Remaining int           // Remaining actions in the window
	ResetIn   time.Duration // Time until another action is allowed
	Limit     int           // The limit for this action
}

// Limiter is implemented by the in-process limiter below and by the Redis limiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a token-bucket limiter per key, held in process memory. Each key may
// spend limit tokens at once and regains them evenly over window.
type Memory struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	every     rate.Limit
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Memory{
		visitors:  make(map[string]*visitor),
		limit:     limit,
		window:    window,
		every:     rate.Every(window / time.Duration(limit)),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.every, m.limit)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &Result{Allowed: false, Remaining: 0, ResetIn: delay, Limit: m.limit}, nil
	}

	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   true,
		Remaining: remaining,
		ResetIn:   m.window,
		Limit:     m.limit,
	}, nil
}

// sweep drops keys idle for a full window; their buckets would be full again anyway.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.window {
		return
	}
	for k, v := range m.visitors {
		if now.Sub(v.lastSeen) >= m.window {
			delete(m.visitors, k)
		}
	}
	m.lastSweep = now
}

// Len reports how many keys are tracked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}
