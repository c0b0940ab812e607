package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/sports-complex/internal/config"
)

// tokenBucketScript refills whole intervals since the last call, takes one
// token when available, and reports the wait until the next refill otherwise.
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

    if interval_ms > 0 and refill_tokens > 0 then
        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
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
    return { allowed, tokens, retry_after_ms }
`)

// bucket is one Redis-backed token bucket configuration.
type bucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
    now func() time.Time
}

type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func (b bucket) take(ctx context.Context, key string) (decision, error) {
    args := []any{
        b.now().UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL / time.Second),
    }
    vals, err := tokenBucketScript.Run(ctx, b.rdb, []string{key}, args...).Int64Slice()
    if err != nil {
        return decision{}, err
    }
    if len(vals) != 3 {
        return decision{}, fmt.Errorf("unexpected limiter result %v", vals)
    }
    return decision{allowed: vals[0] == 1, remaining: vals[1], retry: time.Duration(vals[2]) * time.Millisecond}, nil
}

// NewTokenBucket limits requests per key (see buildRateKey) with a Redis
// token bucket.  It passes everything through when disabled, when Redis is
// not configured, and when a Redis call fails.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    b := bucket{cfg: cfg, rdb: rdb, now: time.Now}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := b.take(c.Request().Context(), key)
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s retry=%s", key, d.retry)
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "message":    "too many requests, try again later",
                    "retryAfter": secs,
                })
            }
            return next(c)
        }
    }
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
