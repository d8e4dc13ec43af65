package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything auth-behavioral
// (provider enabled, fallback policy) is resolved here once and handed to
// the orchestrator as a fixed options struct; nothing re-reads the
// environment mid-flow.
type Config struct {
	Addr string

	ProviderTokenURL    string
	ProviderClientID    string
	ProviderGroupsClaim string
	ProviderEnabled     bool
	LegacyFallback      bool

	ProfileBaseURL string
	LegacyBaseURL  string

	CallTimeout time.Duration

	Redis        RedisConfig
	PostgresDSN  string
	AuditBrokers []string
	AuditTopic   string
}

// RedisConfig tunes the optional Redis-backed session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr: getEnv("PASSAGE_ADDR", ":8080"),

		ProviderTokenURL:    os.Getenv("PASSAGE_PROVIDER_TOKEN_URL"),
		ProviderClientID:    os.Getenv("PASSAGE_PROVIDER_CLIENT_ID"),
		ProviderGroupsClaim: os.Getenv("PASSAGE_PROVIDER_GROUPS_CLAIM"),
		ProviderEnabled:     getBool("PASSAGE_PROVIDER_ENABLED", true),
		LegacyFallback:      getBool("PASSAGE_LEGACY_FALLBACK", false),

		ProfileBaseURL: os.Getenv("PASSAGE_PROFILE_URL"),
		LegacyBaseURL:  os.Getenv("PASSAGE_LEGACY_URL"),

		CallTimeout: getDuration("PASSAGE_CALL_TIMEOUT", 10*time.Second),

		Redis: RedisConfig{
			URL:          os.Getenv("PASSAGE_REDIS_URL"),
			PoolSize:     getInt("PASSAGE_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("PASSAGE_REDIS_MIN_IDLE", 2),
			DialTimeout:  getDuration("PASSAGE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("PASSAGE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("PASSAGE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		PostgresDSN:  os.Getenv("PASSAGE_POSTGRES_DSN"),
		AuditBrokers: getList("PASSAGE_AUDIT_BROKERS"),
		AuditTopic:   os.Getenv("PASSAGE_AUDIT_TOPIC"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
