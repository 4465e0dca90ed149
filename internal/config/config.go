package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Storage backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort             int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	RequestTimeoutSecs   int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	StreamHeartbeatSecs  int `env:"STREAM_HEARTBEAT_SECONDS" envDefault:"25"`
	CatalogCacheMaxAge   int `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`
	ShutdownTimeoutSecs  int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
	SubscriberBufferSize int `env:"SUBSCRIBER_BUFFER_SIZE" envDefault:"16"`
	HealthTimeoutSecs    int `env:"HEALTH_CHECK_TIMEOUT_SECONDS" envDefault:"3"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Catalog upstream
	CatalogBaseURL     string `env:"CATALOG_BASE_URL" envDefault:"https://fakestoreapi.com"`
	CatalogTimeoutSecs int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"10"`
	CatalogMaxRetries  int    `env:"CATALOG_MAX_RETRIES" envDefault:"0"`
	DiscountSeed       string `env:"DISCOUNT_SEED" envDefault:""`

	// Circuit breaker
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Storage
	StorageBackend       string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisAddr            string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass            string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	SlowCommandThreshold int    `env:"REDIS_SLOW_COMMAND_MS" envDefault:"50"`
	KeyPrefix            string `env:"KEY_PREFIX" envDefault:"storefront"`

	// Collection TTL in hours, 0 keeps collections forever.
	CollectionTTLHours int `env:"COLLECTION_TTL_HOURS" envDefault:"0"`

	// Domain
	MaxQuantity int `env:"MAX_QUANTITY" envDefault:"5"`
	PageSize    int `env:"PRODUCT_PAGE_SIZE" envDefault:"8"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CollectionTTL is the expiry applied to stored collections.
func (c *Config) CollectionTTL() time.Duration {
	return time.Duration(c.CollectionTTLHours) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend %q: must be %q or %q", c.StorageBackend, BackendRedis, BackendMemory)
	}
	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid catalog base URL: %q", c.CatalogBaseURL)
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("key prefix must not be empty")
	}
	if c.MaxQuantity < 1 {
		return fmt.Errorf("invalid max quantity: %d", c.MaxQuantity)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", c.PageSize)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("invalid catalog max retries: %d", c.CatalogMaxRetries)
	}
	if c.CollectionTTLHours < 0 {
		return fmt.Errorf("invalid collection TTL: %d hours", c.CollectionTTLHours)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("invalid OTEL sample rate: %v", c.OTELSampleRate)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("events enabled but no Kafka brokers configured")
	}
	return nil
}
