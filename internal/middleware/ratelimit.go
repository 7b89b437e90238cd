package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/festival-registration/internal/config"
)

// bucketStore consumes one token for key.  It reports whether the request may
// proceed, the tokens left and, when blocked, how long until the next token.
type bucketStore interface {
    take(ctx context.Context, key string, now time.Time) (ok bool, remaining int, retry time.Duration, err error)
}

// NewTokenBucket limits the public form endpoints.  With Redis the buckets
// are shared by every instance; without it each process keeps its own
// x/time/rate limiters with the same capacity and refill rate.  Redis errors
// fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var store bucketStore
    if rdb != nil {
        store = &redisBuckets{cfg: cfg, rdb: rdb}
    } else {
        store = newMemoryLimiter(cfg)
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            ok, remaining, retry, err := store.take(c.Request().Context(), key, time.Now())
            if err != nil {
                c.Logger().Warnf("ratelimit %s: %v", key, err)
                return next(c)
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !ok {
                return tooManyRequests(c, retry)
            }
            return next(c)
        }
    }
}

// tokenBucketScript refills KEYS[1] in whole intervals, then tries to take a
// token.  ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed, tokens_left, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local cap = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local st = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(st[1]) or cap
local ts = tonumber(st[2]) or now

local steps = math.floor(math.max(0, now - ts) / interval)
if steps > 0 then
    tokens = math.min(cap, tokens + steps * refill)
    ts = ts + steps * interval
end

local allowed, retry = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry = math.max(0, interval - (now - ts))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {allowed, tokens, retry}
`)

type redisBuckets struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (r *redisBuckets) take(ctx context.Context, key string, now time.Time) (bool, int, time.Duration, error) {
    res, err := tokenBucketScript.Run(ctx, r.rdb, []string{key},
        now.UnixMilli(),
        r.cfg.Capacity,
        r.cfg.RefillTokens,
        r.cfg.RefillInterval.Milliseconds(),
        int64(r.cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return false, 0, 0, err
    }
    if len(res) != 3 {
        return false, 0, 0, fmt.Errorf("unexpected limiter reply %v", res)
    }
    return res[0] == 1, int(res[1]), time.Duration(res[2]) * time.Millisecond, nil
}

// buildRateKey joins the prefix with the parts named by KeyStrategy.  Public
// visitors all share the "anon" identity, so ip-based strategies are the
// useful ones for the form endpoints.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", identityKey(c))
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", identityKey(c), "route", route)
    }
    return strings.Join(parts, ":")
}

func tooManyRequests(c echo.Context, retry time.Duration) error {
    secs := int(math.Ceil(retry.Seconds()))
    if secs < 1 {
        secs = 1
    }
    c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
    return c.JSON(http.StatusTooManyRequests, echo.Map{
        "error":       "Too many requests",
        "retry_after": secs,
    })
}

// memoryLimiter is the per-process fallback used when Redis is unavailable.
type memoryLimiter struct {
    cfg       config.RateLimitConfig
    mu        sync.Mutex
    buckets   map[string]*memoryBucket
    lastPrune time.Time
}

type memoryBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

func newMemoryLimiter(cfg config.RateLimitConfig) *memoryLimiter {
    return &memoryLimiter{cfg: cfg, buckets: map[string]*memoryBucket{}, lastPrune: time.Now()}
}

func (m *memoryLimiter) take(_ context.Context, key string, now time.Time) (bool, int, time.Duration, error) {
    m.mu.Lock()
    defer m.mu.Unlock()

    // Idle buckets are full again after TTL, so dropping them loses nothing.
    if now.Sub(m.lastPrune) > m.cfg.TTL {
        for k, b := range m.buckets {
            if now.Sub(b.seen) > m.cfg.TTL {
                delete(m.buckets, k)
            }
        }
        m.lastPrune = now
    }

    b, ok := m.buckets[key]
    if !ok {
        b = &memoryBucket{lim: rate.NewLimiter(rate.Every(m.cfg.RefillEvery()), m.cfg.Capacity)}
        m.buckets[key] = b
    }
    b.seen = now
    if b.lim.AllowN(now, 1) {
        return true, int(b.lim.TokensAt(now)), 0, nil
    }
    r := b.lim.ReserveN(now, 1)
    delay := r.DelayFrom(now)
    r.CancelAt(now)
    return false, 0, delay, nil
}
