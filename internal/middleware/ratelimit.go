package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iliyamo/tour-booking/internal/config"
)

// tokenBucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
  tokens = math.min(capacity, tokens + intervals * refill_tokens)
  last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return {allowed, tokens, retry_after_ms}
`)

// decision is the outcome of taking one token.
type decision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

type limiter interface {
	take(ctx context.Context, key string) (decision, error)
}

type redisLimiter struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (l *redisLimiter) take(ctx context.Context, key string) (decision, error) {
	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{key},
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, redis.Nil
	}
	return decision{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// localLimiter keeps one x/time/rate limiter per key in process.  Keys
// idle for longer than ttl are swept on the next take after a ttl has
// passed.
type localLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	buckets   map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
	perSecond := float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()
	return &localLimiter{
		limit:     rate.Limit(perSecond),
		burst:     cfg.Capacity,
		ttl:       cfg.TTL,
		buckets:   make(map[string]*localBucket),
		lastSweep: time.Now(),
	}
}

func (l *localLimiter) take(_ context.Context, key string) (decision, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return decision{retry: delay}, nil
	}
	return decision{allowed: true, remaining: int64(b.lim.TokensAt(now))}, nil
}

// NewTokenBucket limits requests per key with a token bucket.  With a
// Redis client the bucket is shared by every instance; without one each
// instance limits on its own.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var lim limiter
	if rdb != nil {
		lim = &redisLimiter{rdb: rdb, cfg: cfg}
	} else {
		lim = newLocalLimiter(cfg)
		log.Info("rate limiter running in-process")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			d, err := lim.take(c.Request().Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if !d.allowed {
				secs := int(math.Ceil(d.retry.Seconds()))
				h.Set("Retry-After", strconv.Itoa(secs))
				log.Debug("rate limited", zap.String("key", key), zap.Int("retry_after", secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userKey(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
