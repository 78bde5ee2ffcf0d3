package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// timeouts and TTLs.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    DBUser          string        // database username
    DBPass          string        // database password (optional)
    DBHost          string        // database host address
    DBPort          string        // database port number
    DBName          string        // database name
    JWTSecret       string        // secret used to sign JWTs
    RabbitURL       string        // AMQP broker URL for the settlement audit queue (optional)
    AccessTTLMin    int           // access token time‑to‑live in minutes
    BcryptCost      int           // bcrypt cost for password hashing
    HoldTTL         time.Duration // how long a pending transaction may hold its seats
    SweepInterval   time.Duration // how often the expiry sweeper scans for stale holds
    SimulatedSettle time.Duration // delay before the simulated payment confirmation fires (0 disables)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Durations use Go's
// duration syntax (e.g. "5m", "30s").
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),                         // environment (dev/test/prod)
        Port:            must("APP_PORT"),                        // port to bind the HTTP server
        DBUser:          must("DB_USER"),                         // database user
        DBPass:          os.Getenv("DB_PASS"),                    // database password (empty allowed)
        DBHost:          must("DB_HOST"),                         // database host
        DBPort:          must("DB_PORT"),                         // database port
        DBName:          must("DB_NAME"),                         // database name
        JWTSecret:       must("JWT_SECRET"),                      // secret used for signing JWTs
        RabbitURL:       os.Getenv("RABBITMQ_URL"),               // empty falls back to the local broker default
        AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),         // TTL for access tokens in minutes
        BcryptCost:      mustInt("BCRYPT_COST"),                  // bcrypt cost factor
        HoldTTL:         dur("HOLD_TTL", 5*time.Minute),          // seat hold TTL before automatic release
        SweepInterval:   dur("HOLD_SWEEP_INTERVAL", time.Minute), // sweeper tick interval
        SimulatedSettle: dur("SIMULATED_SETTLE_DELAY", 0),        // simulated gateway delay; unset means disabled
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// dur reads an optional duration variable, falling back to def when the
// variable is unset.  A malformed value is fatal so misconfiguration is
// caught at startup rather than surfacing as a zero TTL at runtime.
func dur(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}
