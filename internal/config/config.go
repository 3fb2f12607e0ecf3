// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps the size of incoming request bodies. Defaults to
	// 1 MiB, enough for a bus with hundreds of stops.
	MaxBodyBytes int64

	// TransferPenaltyMinutes is the route search's cost surcharge per
	// vehicle change. Defaults to 30.
	TransferPenaltyMinutes float64

	// PruneFactor is the route search's per-location pruning multiple.
	// Defaults to 1.5.
	PruneFactor float64

	// GraphMaxAge bounds how long a cached route graph is served before a
	// rebuild, as a Go duration string. Defaults to 1h.
	GraphMaxAge time.Duration

	// GraphWarmupDelay is how long after startup the graph warmup kicks
	// off, as a Go duration string. Defaults to 5s.
	GraphWarmupDelay time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable whose value does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MaxBodyBytes, err = getEnvInt64("MAX_BODY_BYTES", 1<<20); err != nil {
		return Config{}, err
	}
	if cfg.TransferPenaltyMinutes, err = getEnvFloat("ROUTE_TRANSFER_PENALTY_MIN", 30); err != nil {
		return Config{}, err
	}
	if cfg.PruneFactor, err = getEnvFloat("ROUTE_PRUNE_FACTOR", 1.5); err != nil {
		return Config{}, err
	}
	if cfg.GraphMaxAge, err = getEnvDuration("ROUTE_GRAPH_MAX_AGE", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.GraphWarmupDelay, err = getEnvDuration("ROUTE_GRAPH_WARMUP_DELAY", 5*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt64 parses the environment variable named by key as an integer,
// or returns fallback if the variable is not set or is empty.
func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// getEnvFloat parses the environment variable named by key as a float,
// or returns fallback if the variable is not set or is empty.
func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

// getEnvDuration parses the environment variable named by key as a Go
// duration ("90s", "1h30m"), or returns fallback if the variable is not set
// or is empty.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30m or 1h, got %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
