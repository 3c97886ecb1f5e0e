package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	OwnershipCacheTTL  time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "loanbook"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-development-secret"
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "loanbook"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: brokers,

		JWTSecret:  secret,
		JWTIssuer:  issuer,
		AccessTTL:  envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		OwnershipCacheTTL:  envDuration("OWNERSHIP_CACHE_TTL", 5*time.Minute),
		OutboxPollInterval: envDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		OutboxBatchSize:    100,
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
