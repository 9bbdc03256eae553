// Package config loads application configuration, layering environment
// variables over an optional config file over defaults, using viper the
// way it's used across the example pack's services. Command-line flags are
// layered on top by cmd/transitcat.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration. Fields are flat, the way the
// teacher's hand-rolled Config was, rather than grouped into nested
// structs — this repo has few enough knobs that grouping would only add
// indirection.
type Config struct {
	// Ingest
	IngestPath string // path to a JSON request envelope or a stops CSV file
	IngestKind string // "json" or "csv"

	// Default routing settings, used when an ingested envelope doesn't
	// carry its own routing_settings block.
	DefaultBusWaitTime int
	DefaultBusVelocity float64

	// Audit storage
	DBPath string

	// Optional HTTP query API
	HTTPEnabled bool
	HTTPPort    int

	// Optional Redis read-through cache for query responses
	CacheEnabled bool
	CacheAddr    string
	CacheTTL     time.Duration
}

// Load reads configuration from TRANSITCAT_*-prefixed environment
// variables, an optional ./transitcat.env file, then defaults, in that
// precedence order. It does not read command-line flags.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("transitcat")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.SetEnvPrefix("TRANSITCAT")
	v.AutomaticEnv()

	v.SetDefault("INGEST_PATH", "")
	v.SetDefault("INGEST_KIND", "json")
	v.SetDefault("DEFAULT_BUS_WAIT_TIME", 6)
	v.SetDefault("DEFAULT_BUS_VELOCITY", 40.0)
	v.SetDefault("DB_PATH", "./transitcat.db")
	v.SetDefault("HTTP_ENABLED", false)
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_ADDR", "localhost:6379")
	v.SetDefault("CACHE_TTL", "10m")

	// A missing config file is fine — env vars and defaults cover it, the
	// same tolerance the teacher's config shows for a missing .env.
	_ = v.ReadInConfig()

	return &Config{
		IngestPath:         v.GetString("INGEST_PATH"),
		IngestKind:         v.GetString("INGEST_KIND"),
		DefaultBusWaitTime: v.GetInt("DEFAULT_BUS_WAIT_TIME"),
		DefaultBusVelocity: v.GetFloat64("DEFAULT_BUS_VELOCITY"),
		DBPath:             v.GetString("DB_PATH"),
		HTTPEnabled:        v.GetBool("HTTP_ENABLED"),
		HTTPPort:           v.GetInt("HTTP_PORT"),
		CacheEnabled:       v.GetBool("CACHE_ENABLED"),
		CacheAddr:          v.GetString("CACHE_ADDR"),
		CacheTTL:           v.GetDuration("CACHE_TTL"),
	}, nil
}
