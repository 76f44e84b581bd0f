package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go-insumos-ws/internal/apierror"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// counter counts hits per key inside a fixed window.
type counter interface {
	hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	rdb *redis.Client
}

func (r redisCounter) hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

type memoryEntry struct {
	count     int64
	windowEnd time.Time
}

// memoryCounter serves single-instance deployments without Redis.
type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{entries: map[string]*memoryEntry{}, now: time.Now}
}

func (m *memoryCounter) hit(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.After(e.windowEnd) {
			delete(m.entries, k)
		}
	}
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{windowEnd: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// LoginRateLimiter allows limit login attempts per minute per IP. The counters live in
// Redis when rdb is set so every instance shares them; otherwise they are kept in memory.
func LoginRateLimiter(rdb *redis.Client, limit int) fiber.Handler {
	var c counter = newMemoryCounter()
	if rdb != nil {
		c = redisCounter{rdb: rdb}
	}
	return rateLimit(c, "ratelimit:login:", limit, time.Minute)
}

func rateLimit(cnt counter, prefix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit <= 0 {
			return c.Next()
		}
		n, err := cnt.hit(c.UserContext(), prefix+c.IP(), window)
		if err != nil {
			// an unavailable limiter must not lock users out
			log.Warn().Err(err).Str("request_id", requestID(c)).Msg("rate limiter unavailable")
			return c.Next()
		}
		if n > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(apierror.Response{
				Error: "too many login attempts, try again in a minute",
			})
		}
		return c.Next()
	}
}
