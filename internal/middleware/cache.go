package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/sports-complex/internal/config"
)

// CacheScopeTaxonomy groups cached sports and qualification listings.
const CacheScopeTaxonomy = "taxonomy"

// captureWriter tees the response body (up to limit bytes) while writing it
// to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    room := cw.limit - int64(cw.buf.Len())
    switch {
    case cw.limit <= 0:
        cw.buf.Write(b)
    case room > 0 && int64(len(b)) <= room:
        cw.buf.Write(b)
    case room > 0:
        cw.buf.Write(b[:room])
    }
    return cw.ResponseWriter.Write(b)
}

func scopePrefix(cfg config.CacheConfig, scope string) string {
    return cfg.Prefix + ":" + scope
}

// cacheKeyFrom hashes the request identity under <prefix>:<scope>.
func cacheKeyFrom(cfg config.CacheConfig, scope string, c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "method_route":
        parts = []string{"method", r.Method, "route", c.Path()}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
    default: // route_query
        parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", scopePrefix(cfg, scope), sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    copy(out[8:], hdr)
    copy(out[8+len(hdr):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache serves repeated reads in scope from Redis.  Only 200
// responses to cfg.Methods are stored; a truncated body (over
// MaxBodyBytes) is never stored.  Writes that change what the scope
// returns must call CachePurger.Purge.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, scope string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, scope, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(status, c.Response().Header().Get(echo.HeaderContentType), body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (maxBody > 0 && c.Response().Size > maxBody) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                _ = rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

// CachePurger drops every cached response of one scope.  It implements
// service.Purger; a nil Redis client makes it a no-op.
type CachePurger struct {
    rdb    *redis.Client
    prefix string
}

func NewCachePurger(cfg config.CacheConfig, rdb *redis.Client, scope string) *CachePurger {
    return &CachePurger{rdb: rdb, prefix: scopePrefix(cfg, scope) + ":"}
}

// Purge scans the scope's keys and deletes them in batches.  Failures are
// logged; stale entries then expire with the TTL.
func (p *CachePurger) Purge(ctx context.Context) {
    if p == nil || p.rdb == nil {
        return
    }
    ctx = context.WithoutCancel(ctx)
    iter := p.rdb.Scan(ctx, 0, p.prefix+"*", 100).Iterator()
    batch := make([]string, 0, 100)
    flush := func() {
        if len(batch) == 0 {
            return
        }
        if err := p.rdb.Del(ctx, batch...).Err(); err != nil {
            log.Printf("cache: purge %s failed: %v", p.prefix, err)
        }
        batch = batch[:0]
    }
    for iter.Next(ctx) {
        batch = append(batch, iter.Val())
        if len(batch) == cap(batch) {
            flush()
        }
    }
    if err := iter.Err(); err != nil {
        log.Printf("cache: scan %s failed: %v", p.prefix, err)
    }
    flush()
}
