package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Fixed window counter: the first hit in a window sets the expiry.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

type RedisLimiter struct {
	client   redis.UniversalClient
	limit    int
	window   time.Duration
	prefix   string
	fallback Limiter
}

// NewRedis returns a limiter backed by client. When Redis is unreachable the
// decision is taken by a LocalLimiter with the same limit and window.
func NewRedis(client redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		window:   window,
		prefix:   "station:rl:",
		fallback: NewLocal(limit, window),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	if l.client == nil {
		return l.fallback.Allow(ctx, key)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		zap.S().Warnw("redis rate limiter unavailable, using local fallback", "error", err)
		return l.fallback.Allow(ctx, key)
	}

	count, ttlMs := int(res[0]), res[1]
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: count <= l.limit, Limit: l.limit, Remaining: remaining}
	if !d.Allowed {
		d.RetryAfter = time.Duration(ttlMs) * time.Millisecond
	}
	return d
}
