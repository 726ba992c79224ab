package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limit struct {
	Window time.Duration // e.g., 1 minute, 1 hour
	Max    int           // max events per window
}

type Config struct {
	Name  string
	Limit Limit
}

// SlidingWindowLimiter is a redis-backed sliding window counter. It
// throttles login attempts per IP and can back any per-identifier
// quota.
type SlidingWindowLimiter struct {
	redis  *redis.Client
	config Config
}

func NewSlidingWindowLimiter(redis *redis.Client, config Config) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		config: config,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", l.config.Name, identifier)

	pipe := l.redis.Pipeline()
	now := time.Now()
	windowStart := now.Unix() - int64(l.config.Limit.Window.Seconds())

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Members must be unique per attempt, so use nanoseconds
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})

	// Count current window including this attempt
	pipe.ZCard(ctx, key)

	// Set expiration
	pipe.Expire(ctx, key, l.config.Limit.Window*2)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	count := results[2].(*redis.IntCmd).Val()
	return count <= int64(l.config.Limit.Max), nil
}
