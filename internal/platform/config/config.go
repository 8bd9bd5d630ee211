package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all process configuration so main stays lean.
type Config struct {
	Server      Server
	Data        Data
	Redis       RedisConfig
	Kafka       KafkaConfig
	Diagnostics Diagnostics
	Auth        Auth
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Data selects the record source. When DatabaseURL is set the Postgres source
// is used; otherwise tables are read as CSV from Dir.
type Data struct {
	Dir         string
	DatabaseURL string
}

// RedisConfig configures the optional report cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ReportTTL    time.Duration
}

// KafkaConfig configures the optional run-completed event stream. No brokers
// means no publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Diagnostics gates evidence-table output. Files are only written when Dir is
// set and the per-category flag is on.
type Diagnostics struct {
	Dir            string
	WriteConflicts bool
	WriteRange     bool
	WriteErrors    bool
}

// Auth holds the bearer-token guard settings. An empty signing key disables
// the guard (development default).
type Auth struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envOr("HEMICYCLE_ADDR", ":8080"),
		},
		Data: Data{
			Dir:         envOr("LEDGER_DATA_DIR", "data"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ReportTTL:    envDuration("REPORT_CACHE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_RUN_TOPIC", "ledger.validation.runs"),
		},
		Diagnostics: Diagnostics{
			Dir:            os.Getenv("DIAGNOSTICS_DIR"),
			WriteConflicts: envBool("WRITE_CONFLICTS", true),
			WriteRange:     envBool("WRITE_RANGE_VIOLATIONS", true),
			WriteErrors:    envBool("WRITE_ROW_ERRORS", true),
		},
		Auth: Auth{
			JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
			Issuer:        envOr("JWT_ISSUER", "hemicycle"),
			Audience:      envOr("JWT_AUDIENCE", "hemicycle-api"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
