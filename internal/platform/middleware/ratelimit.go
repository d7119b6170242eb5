package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// MsgRateLimited is sent with every 429.
const MsgRateLimited = "Too many requests. Please try again later."

// RateLimitConfig sizes the per-client token bucket. A non-positive rate
// disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	max      float64
	rate     float64
	lastFill time.Time
}

func newBucket(rate float64, burst int, now time.Time) *bucket {
	if burst < 1 {
		burst = 1
	}
	return &bucket{tokens: float64(burst), max: float64(burst), rate: rate, lastFill: now}
}

// take consumes a token if one is available. Otherwise it reports how many
// whole seconds until the next one.
func (b *bucket) take(now time.Time) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(b.max, b.tokens+now.Sub(b.lastFill).Seconds()*b.rate)
	b.lastFill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.rate <= 0 {
		return false, 1
	}
	return false, int(math.Ceil((1 - b.tokens) / b.rate))
}

// defaultIdleTTL is how long a client bucket may sit unused before it is
// dropped.
const defaultIdleTTL = 10 * time.Minute

type limiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	buckets   map[string]*bucket
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig, now func() time.Time) *limiter {
	ttl := defaultIdleTTL
	// A bucket is only dropped once it would have refilled completely, so
	// eviction never hands a client extra tokens.
	if cfg.RequestsPerSecond > 0 && cfg.Burst > 0 {
		if full := time.Duration(float64(cfg.Burst) / cfg.RequestsPerSecond * float64(time.Second)); full > ttl {
			ttl = full
		}
	}
	return &limiter{
		cfg:       cfg,
		buckets:   make(map[string]*bucket),
		now:       now,
		idleTTL:   ttl,
		lastSweep: now(),
	}
}

func (l *limiter) bucketFor(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(l.cfg.RequestsPerSecond, l.cfg.Burst, now)
		l.buckets[key] = b
	}
	return b
}

// sweep drops buckets idle for at least idleTTL. Callers hold l.mu.
func (l *limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastFill)
		b.mu.Unlock()
		if idle >= l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles requests per client IP. Buckets for clients that have
// gone quiet are evicted so the table stays bounded by recent traffic.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	l := newLimiter(cfg, time.Now)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if cfg.RequestsPerSecond <= 0 {
			return next
		}
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			now := l.now()
			ok, retry := l.bucketFor(c.RealIP(), now).take(now)
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retry))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, MsgRateLimited)
			}
			return next(c)
		}
	}
}
