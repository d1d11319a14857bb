package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it so main
// stays lean; optional backends (postgres, redis, kafka) fall back to
// in-memory implementations when their variables are unset.
type Server struct {
	Addr          string
	PostgresDSN   string
	Redis         RedisConfig
	KafkaBrokers  []string
	JWTSigningKey string
	FrontendURL   string
	MagicLinkTTL  time.Duration
	SweepInterval time.Duration
}

// RedisConfig holds connection tuning for the optional redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("ATTEST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("ATTEST_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	frontendURL := os.Getenv("ATTEST_FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("ATTEST_POSTGRES_DSN"),
		Redis:         redisFromEnv(),
		KafkaBrokers:  splitList(os.Getenv("ATTEST_KAFKA_BROKERS")),
		JWTSigningKey: jwtSigningKey,
		FrontendURL:   frontendURL,
		MagicLinkTTL:  durationEnv("ATTEST_MAGIC_LINK_TTL", 14*24*time.Hour),
		SweepInterval: durationEnv("ATTEST_SWEEP_INTERVAL", time.Hour),
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("ATTEST_REDIS_URL"),
		PoolSize:     intEnv("ATTEST_REDIS_POOL_SIZE", 10),
		MinIdleConns: intEnv("ATTEST_REDIS_MIN_IDLE", 2),
		DialTimeout:  durationEnv("ATTEST_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationEnv("ATTEST_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationEnv("ATTEST_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
