package middleware

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map.
const maxTrackedClients = 10000

// limiterCache keeps one limiter per client. When full, limiters that have
// refilled their whole burst are evicted since they hold no throttling state.
// If every tracked client is still throttled, new clients share the overflow
// limiter until room frees up.
type limiterCache struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	overflow *rate.Limiter
	limit    rate.Limit
	burst    int
	max      int
	now      func() time.Time
}

func newLimiterCache(perMinute int) *limiterCache {
	if perMinute <= 0 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		overflow: rate.NewLimiter(limit, perMinute),
		limit:    limit,
		burst:    perMinute,
		max:      maxTrackedClients,
		now:      time.Now,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if l, ok := lc.limiters[key]; ok {
		return l
	}
	if len(lc.limiters) >= lc.max {
		lc.evictIdle()
		if len(lc.limiters) >= lc.max {
			return lc.overflow
		}
	}
	l := rate.NewLimiter(lc.limit, lc.burst)
	lc.limiters[key] = l
	return l
}

// evictIdle drops limiters whose bucket is full again. Callers hold mu.
func (lc *limiterCache) evictIdle() {
	now := lc.now()
	for key, l := range lc.limiters {
		if l.TokensAt(now) >= float64(lc.burst) {
			delete(lc.limiters, key)
		}
	}
}

// LoginRateLimiter allows perMinute login attempts per client IP.
func LoginRateLimiter(perMinute int) fiber.Handler {
	cache := newLimiterCache(perMinute)

	return func(c *fiber.Ctx) error {
		if !cache.get(c.IP()).Allow() {
			log.Printf("[Admin] login rate limit hit for %s", c.IP())
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(fiber.StatusTooManyRequests, "trop de tentatives, réessayez dans une minute")
		}
		return c.Next()
	}
}
