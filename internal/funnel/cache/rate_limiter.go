package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a sliding-window limit using a Redis sorted set per identifier
type RateLimiter struct {
	redis       redis.Cmdable
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// RateDecision is the outcome of one Allow call
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client redis.Cmdable, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records one request for identifier and reports whether it fits the window
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (RateDecision, error) {
	key := fmt.Sprintf("funnel:ratelimit:%s", identifier)
	now := rl.now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return RateDecision{}, fmt.Errorf("rate limit: %w", err)
	}

	count := int(countCmd.Val())
	remaining := rl.maxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return RateDecision{
		Allowed:   count < rl.maxRequests,
		Limit:     rl.maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(rl.window),
	}, nil
}
