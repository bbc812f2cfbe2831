// middleware/ratelimit.go
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"habitxp/logger"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefillTime = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex

	maxRequests int
	window      time.Duration
}

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		buckets:     make(map[string]*TokenBucket),
		maxRequests: maxRequests,
		window:      window,
	}
}

func (rl *MemoryLimiter) getBucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / rl.window.Seconds()
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate)
		rl.buckets[key] = bucket
	}
	return bucket
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return rl.getBucket(key).Allow(), nil
}

// Cleanup drops buckets idle for longer than idle.
func (rl *MemoryLimiter) Cleanup(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	now := time.Now()
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefillTime) > idle {
			delete(rl.buckets, key)
			removed++
		}
		bucket.mu.Unlock()
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (rl *MemoryLimiter) RunCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(idle)
		}
	}
}

// RedisLimiter is a sliding-window log shared by every instance that
// points at the same Redis.
type RedisLimiter struct {
	rdb         *redis.Client
	prefix      string
	maxRequests int
	window      time.Duration
}

func NewRedisLimiter(rdb *redis.Client, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, maxRequests: maxRequests, window: window}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := rl.prefix + key
	member, err := requestMember(now)
	if err != nil {
		return false, err
	}

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%d", now.Add(-rl.window).UnixMicro()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, redisKey, rl.window+time.Minute)
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}
	return count.Val() <= int64(rl.maxRequests), nil
}

func requestMember(t time.Time) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s", t.UnixNano(), hex.EncodeToString(b)), nil
}

// NewLimiter prefers Redis when a client is given.
func NewLimiter(rdb *redis.Client, prefix string, maxRequests int, window time.Duration) Limiter {
	if rdb != nil {
		return NewRedisLimiter(rdb, prefix, maxRequests, window)
	}
	return NewMemoryLimiter(maxRequests, window)
}

// RateLimit rejects requests over the limit with 429. Limiter errors
// are logged and the request goes through.
func RateLimit(l Limiter, log *logger.Logger, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/health" || path == "/api/health" {
			return c.Next()
		}

		ok, err := l.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.Warn("rate limiter unavailable", "error", err, "path", path)
			return c.Next()
		}
		if !ok {
			return utils.JSONError(c, fiber.StatusTooManyRequests, message)
		}
		return c.Next()
	}
}

// Disabled passes every request through.
func Disabled(c *fiber.Ctx) error {
	return c.Next()
}

// LimiterKeyPrefix builds the Redis key prefix for a named limiter.
func LimiterKeyPrefix(name string) string {
	return "habitxp:ratelimit:" + strings.ToLower(name) + ":"
}
