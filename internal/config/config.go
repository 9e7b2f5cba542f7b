package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/litreads/pkg/config"
)

// Storage backends for the per-visitor key-value namespace.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogPostgres = "postgres"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Visitor key-value storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	// Idle visitor state expires after this many hours (default: 30 days). Zero keeps it forever.
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"720"`

	// Catalog
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	DatabaseURL   string `env:"DATABASE_URL"`

	// Cart events
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Form submissions per client IP
	FormRateLimitRPS   float64 `env:"FORM_RATE_LIMIT_RPS" envDefault:"2"`
	FormRateLimitBurst int     `env:"FORM_RATE_LIMIT_BURST" envDefault:"5"`
	// Key the limiter on X-Forwarded-For; only behind a trusted proxy.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	VisitorCookieSecure bool     `env:"VISITOR_COOKIE_SECURE" envDefault:"false"`
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
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

// CartTTLDuration returns the visitor state expiry, or zero for none.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageBackend)
	}
	switch c.CatalogSource {
	case CatalogEmbedded:
	case CatalogPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=%s", CatalogPostgres)
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogEmbedded, CatalogPostgres, c.CatalogSource)
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("CART_TTL_HOURS must not be negative: %d", c.CartTTL)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.FormRateLimitRPS <= 0 || c.FormRateLimitBurst < 1 {
		return fmt.Errorf("form rate limit must be positive (rps=%v, burst=%d)", c.FormRateLimitRPS, c.FormRateLimitBurst)
	}
	return nil
}
