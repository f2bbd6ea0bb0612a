// Package config assembles runtime configuration from the environment so
// main stays lean. Absent optional backends (postgres, redis) leave their
// settings empty and the wiring falls back to in-memory stores.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures the process-level configuration.
type Server struct {
	Addr        string
	PostgresDSN string
	Redis       RedisConfig

	// CacheTTL bounds staleness of cached quarter summaries.
	CacheTTL time.Duration

	// AuditBuffer sizes the audit pipeline inbox.
	AuditBuffer int
}

// RedisConfig holds redis connection settings. An empty URL disables the
// summary cache entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from WHEREABOUTS_* environment variables.
func FromEnv() Server {
	addr := os.Getenv("WHEREABOUTS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("WHEREABOUTS_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("WHEREABOUTS_REDIS_URL"),
			PoolSize:     intEnv("WHEREABOUTS_REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("WHEREABOUTS_REDIS_MIN_IDLE", 2),
			DialTimeout:  durationEnv("WHEREABOUTS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("WHEREABOUTS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("WHEREABOUTS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		CacheTTL:    durationEnv("WHEREABOUTS_CACHE_TTL", 5*time.Minute),
		AuditBuffer: intEnv("WHEREABOUTS_AUDIT_BUFFER", 256),
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
