package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

var ErrMongoURIRequired = errors.New("config: MONGO_URI is required for mongo storage")

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	Storage            string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaKYCTopic      string
	KafkaGroupID       string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	ServiceFeeBps      int64
	BlackoutHorizon    time.Duration
	ListingCacheTTL    time.Duration
	ListingCacheSize   int64
	RoutingURL         string
	RoutingTimeout     time.Duration
	ListingsFixtures   string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		Storage:          strings.ToLower(getEnv("STORAGE", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "rentbook"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaKYCTopic:    os.Getenv("KAFKA_KYC_TOPIC"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "rentbook-kyc"),
		RoutingURL:       os.Getenv("ROUTING_URL"),
		ListingsFixtures: os.Getenv("LISTINGS_FIXTURES"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.BlackoutHorizon, err = parseDurationEnv("BLACKOUT_HORIZON", 2*365*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ListingCacheTTL, err = parseDurationEnv("LISTING_CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RoutingTimeout, err = parseDurationEnv("ROUTING_TIMEOUT", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ServiceFeeBps, err = parseIntEnv("SERVICE_FEE_BPS", 1000); err != nil {
		return Config{}, err
	}
	if cfg.ListingCacheSize, err = parseIntEnv("LISTING_CACHE_SIZE", 1000); err != nil {
		return Config{}, err
	}
	if cfg.RetryBackoff, err = parseDurationList("RETRY_BACKOFF", "1s,5s,30s"); err != nil {
		return Config{}, err
	}

	switch cfg.Storage {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, ErrMongoURIRequired
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE %q", cfg.Storage)
	}
	if cfg.ServiceFeeBps < 0 || cfg.ServiceFeeBps > 10000 {
		return Config{}, fmt.Errorf("config: SERVICE_FEE_BPS out of range: %d", cfg.ServiceFeeBps)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseDurationList(key, def string) ([]time.Duration, error) {
	var out []time.Duration
	for _, raw := range strings.Split(getEnv(key, def), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %q: %w", key, raw, err)
		}
		out = append(out, d)
	}
	return out, nil
}
