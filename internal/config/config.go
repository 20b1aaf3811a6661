// Package config centralizes process configuration: environment variables,
// optionally loaded from a .env file via godotenv, resolved once at
// startup into an immutable Config value. Nothing downstream reads
// os.Getenv directly — this is the one place that does.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ska-sa/obssched/internal/proposal"
)

// Observer site coordinates (spec §6): SKA core, Karoo, South Africa.
const (
	defaultLatitudeDeg  = -30 - 42.0/60 - 39.8/3600
	defaultLongitudeDeg = 21 + 26.0/60 + 38.0/3600
)

// Config is the fully-resolved process configuration.
type Config struct {
	// ListenAddr is the HTTP API's bind address, e.g. ":8080".
	ListenAddr string

	// RedisURL is optional: when empty the cache layer degrades to a
	// no-op (in-process only), never failing startup.
	RedisURL string

	Site proposal.ObserverSite

	// Optimizer defaults used by the HTTP API. Requests cannot override
	// them, and the CLI takes its own flags instead of reading this config.
	DefaultPopulationSize int
	DefaultGenerations    int
	DefaultGenomeLength   int

	RequestTimeout time.Duration

	CORSAllowedOrigins []string
}

// Load resolves configuration from the process environment, optionally
// seeded by a .env file in the working directory (absence is not an
// error — godotenv.Load silently no-ops when the file is missing in
// production deployments).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr: getEnv("OBSSCHED_LISTEN_ADDR", ":8080"),
		RedisURL:   os.Getenv("REDIS_URL"),
		Site: proposal.ObserverSite{
			LatitudeDeg:  getEnvFloat("OBSSCHED_SITE_LATITUDE_DEG", defaultLatitudeDeg),
			LongitudeDeg: getEnvFloat("OBSSCHED_SITE_LONGITUDE_DEG", defaultLongitudeDeg),
		},
		DefaultPopulationSize: getEnvInt("OBSSCHED_DEFAULT_POPULATION_SIZE", 100),
		DefaultGenerations:    getEnvInt("OBSSCHED_DEFAULT_GENERATIONS", 200),
		DefaultGenomeLength:   getEnvInt("OBSSCHED_DEFAULT_GENOME_LENGTH", 8),
		RequestTimeout:        getEnvDuration("OBSSCHED_REQUEST_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins:    []string{getEnv("OBSSCHED_CORS_ORIGIN", "*")},
	}

	if cfg.DefaultPopulationSize < 1 {
		return Config{}, fmt.Errorf("OBSSCHED_DEFAULT_POPULATION_SIZE must be >= 1, got %d", cfg.DefaultPopulationSize)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
