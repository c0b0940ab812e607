package config

import (
    "log"
    "strings"
    "time"
)

// RateLimitKeyStrategies are the accepted RATE_LIMIT_KEY_STRATEGY values.
// Credential endpoints are anonymous, so the default buckets per client IP
// and route.
var RateLimitKeyStrategies = []string{"ip", "user", "route", "ip_user", "ip_route", "user_route", "ip_user_route"}

const defaultRateLimitStrategy = "ip_route"

// RateLimitConfig configures the Redis token bucket placed in front of the
// unauthenticated credential endpoints (login, forgot/reset password).
// A bucket holds Capacity tokens and regains RefillTokens every
// RefillInterval; idle buckets expire after TTL.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  The defaults allow a
// burst of 10 attempts and one more every 6 seconds.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", defaultRateLimitStrategy),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }.normalized()
}

// normalized clamps the bucket to something the limiter script can run.
// TTL never drops below five refill intervals, otherwise a bucket could
// expire mid-window and hand out a fresh burst.
func (c RateLimitConfig) normalized() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)

    c.KeyStrategy = strings.ToLower(c.KeyStrategy)
    if !validStrategy(c.KeyStrategy) {
        log.Printf("config: unknown rate limit key strategy %q, using %s", c.KeyStrategy, defaultRateLimitStrategy)
        c.KeyStrategy = defaultRateLimitStrategy
    }
    return c
}

func validStrategy(s string) bool {
    for _, k := range RateLimitKeyStrategies {
        if k == s {
            return true
        }
    }
    return false
}
