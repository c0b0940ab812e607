package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

// Optional variables fall back to a default.  A value that is present but
// malformed is logged so a typo in the deployment does not go unnoticed.

func envStr(key, def string) string {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        return v
    }
    return def
}

func envBool(key string, def bool) bool {
    v := strings.ToLower(envStr(key, ""))
    switch v {
    case "":
        return def
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    log.Printf("config: %s=%q is not a boolean, using %t", key, v, def)
    return def
}

func envInt(key string, def int) int {
    v := envStr(key, "")
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
        return def
    }
    return n
}

func envDur(key string, def time.Duration) time.Duration {
    v := envStr(key, "")
    if v == "" {
        return def
    }
    d, err := time.ParseDuration(v)
    if err != nil {
        log.Printf("config: %s=%q is not a duration, using %s", key, v, def)
        return def
    }
    return d
}
