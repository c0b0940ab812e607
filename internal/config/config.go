package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // godotenv loads a local .env file during development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign JWTs
    AccessTTLMin    int    // access token time-to-live in minutes
    BcryptCost      int    // bcrypt cost for password hashing
    ResetTTLMin     int    // password reset token lifetime in minutes
    BaseURL         string // public URL of the web client, used in reset links
    MigrateOnStart  bool   // apply the embedded schema before serving
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    _ = godotenv.Load() // .env is optional; real environments set variables directly
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        ResetTTLMin:    envInt("RESET_TOKEN_TTL_MIN", 60),
        BaseURL:        envStr("APP_BASE_URL", "http://localhost:5173"),
        MigrateOnStart: envBool("DB_MIGRATE_ON_START", false),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
