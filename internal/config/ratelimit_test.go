package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 6*time.Second, cfg.RefillInterval)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigFromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "30s")
	t.Setenv("RATE_LIMIT_KEY_STRATEGY", " IP ")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
	assert.Equal(t, 5*time.Minute, cfg.TTL, "ttl is raised to five refill intervals")
	assert.Equal(t, "ip", cfg.KeyStrategy)
}

func TestRateLimitUnknownStrategyFallsBack(t *testing.T) {
	cfg := RateLimitConfig{KeyStrategy: "cookie", RefillInterval: -time.Second}.normalized()
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 1, cfg.RefillTokens)
}

func TestEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("SC_TEST_INT", "ten")
	t.Setenv("SC_TEST_DUR", "soon")
	t.Setenv("SC_TEST_BOOL", "maybe")
	assert.Equal(t, 3, envInt("SC_TEST_INT", 3))
	assert.Equal(t, time.Hour, envDur("SC_TEST_DUR", time.Hour))
	assert.True(t, envBool("SC_TEST_BOOL", true))
	assert.Equal(t, "fallback", envStr("SC_TEST_UNSET", "fallback"))
}
