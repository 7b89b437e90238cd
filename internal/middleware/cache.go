package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/festival-registration/internal/config"
)

// cachedResponse is the Redis value for one cached admin response.
type cachedResponse struct {
    Status      int    `json:"s"`
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

// bodyRecorder tees the handler output into a bounded buffer.  Once the body
// outgrows the limit the response is still streamed but no longer cached.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheKey hashes the parts selected by KeyStrategy.  The caller's role is
// always included so ADMIN and STAFF never share an entry.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    req := c.Request()
    parts := []string{"role", Role(c)}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, c.Path())
    case "method_route":
        parts = append(parts, req.Method, c.Path())
    case "method_route_query":
        parts = append(parts, req.Method, c.Path(), req.URL.RawQuery)
    default: // route_query
        parts = append(parts, c.Path(), req.URL.RawQuery)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, "|")))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache caches 200 responses of the admin analytics endpoint in
// Redis for cfg.TTL and marks responses with X-Cache HIT or MISS.  Without
// Redis, or when disabled, it is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg, c)
            resp := c.Response()

            if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    resp.Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            } else if err != redis.Nil {
                c.Logger().Warnf("cache get %s: %v", key, err)
            }

            rec := &bodyRecorder{ResponseWriter: resp.Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            resp.Writer = rec
            resp.Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }

            if rec.status != http.StatusOK || rec.overflow || resp.Header().Get(echo.HeaderSetCookie) != "" {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      rec.status,
                ContentType: resp.Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
            })
            if err == nil {
                // The request context may already be cancelled once the body is flushed.
                err = rdb.Set(context.WithoutCancel(c.Request().Context()), key, payload, ttl).Err()
            }
            if err != nil {
                c.Logger().Warnf("cache set %s: %v", key, err)
            }
            return nil
        }
    }
}
