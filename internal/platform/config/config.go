package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	PostgresDSN string
	Redis       RedisConfig
	// EligibilityCacheTTL bounds how long a cached eligibility verdict may
	// be served.
	EligibilityCacheTTL time.Duration
}

// RedisConfig configures the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Empty PostgresDSN or Redis URL means the corresponding backend is
// not configured and in-memory fallbacks are used.
func FromEnv() Server {
	addr := os.Getenv("FIDLINK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ttl := 5 * time.Minute
	if raw := os.Getenv("FIDLINK_ELIGIBILITY_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("FIDLINK_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("FIDLINK_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		EligibilityCacheTTL: ttl,
	}
}
