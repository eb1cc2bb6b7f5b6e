package redis

import (
	"context"
	"fmt"
	"time"

	"travelwise/internal/ratelimit"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every API instance. Counters
// live under ratelimit:{ip}:auth and expire with their window.
type RateLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

var _ ratelimit.Limiter = (*RateLimiter)(nil)

// NewRateLimiter raises a limit below 1 to 1 and replaces a window shorter than
// one second with one minute. EXPIRE with zero seconds deletes the counter.
func NewRateLimiter(client *goredis.Client, limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window < time.Second {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// KEYS[1] counter, ARGV[1] limit, ARGV[2] window seconds.
// Returns {allowed, remaining, ttl}.
var fixedWindowScript = goredis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	local ttl = redis.call('TTL', KEYS[1])
	if ttl < 0 then
		redis.call('EXPIRE', KEYS[1], ARGV[2])
		ttl = tonumber(ARGV[2])
	end
	local limit = tonumber(ARGV[1])
	if count > limit then
		return {0, 0, ttl}
	end
	return {1, limit - count, ttl}
`)

// Allow counts an auth attempt from ip against the current window.
func (r *RateLimiter) Allow(ctx context.Context, ip string) (*ratelimit.Result, error) {
	key := fmt.Sprintf("ratelimit:%s:auth", ip)
	raw, err := fixedWindowScript.Run(ctx, r.client, []string{key}, r.limit, int(r.window.Seconds())).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit check failed: got %d values, want 3", len(raw))
	}

	return &ratelimit.Result{
		Allowed:   raw[0] == 1,
		Remaining: int(raw[1]),
		ResetIn:   time.Duration(raw[2]) * time.Second,
		Limit:     r.limit,
	}, nil
}
