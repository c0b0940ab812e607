package config

// Redis backs two optional features: the token-bucket limiter on the auth
// endpoints and the taxonomy response cache.  Both degrade to pass-through
// when NewRedisClient returns nil, so a missing Redis never blocks startup.

import (
    "context"
    "crypto/tls"
    "log"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings read from REDIS_* variables.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig builds a RedisConfig.  REDIS_HOST and REDIS_PORT take
// precedence over the REDIS_ADDR shorthand; the default is localhost:6379.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    tlsEnv := envStr("REDIS_TLS", "")
    return RedisConfig{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
        TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
    }
}

// NewRedisClient connects and pings with a short timeout.  It returns nil
// when the server is unreachable.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: %s unreachable (%v); cache and rate limiting disabled", cfg.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}
