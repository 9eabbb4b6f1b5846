package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	AccountID   string `default:"demo-account" usage:"Account whose saved addresses the address book serves" flag:"account-id"`
	Pricing     PricingConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// PricingConfig holds the storefront's money knobs as decimal strings so
// they survive env/YAML round-trips without float drift.
type PricingConfig struct {
	FlatShippingFee  string `default:"25"   usage:"Flat shipping fee charged below the free threshold" flag:"flat-shipping-fee"`
	FreeShippingOver string `default:"500"  usage:"Subtotal strictly above which shipping is free" flag:"free-shipping-over"`
	TaxRate          string `default:"0.15" usage:"Tax rate applied to the discounted subtotal" flag:"tax-rate"`
}

// Policy parses the shipping policy and tax rate.
func (c PricingConfig) Policy() (pricing.ShippingPolicy, decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.FlatShippingFee)
	if err != nil {
		return pricing.ShippingPolicy{}, decimal.Zero, errors.Wrap(err, "flat shipping fee")
	}
	threshold, err := decimal.NewFromString(c.FreeShippingOver)
	if err != nil {
		return pricing.ShippingPolicy{}, decimal.Zero, errors.Wrap(err, "free shipping threshold")
	}
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return pricing.ShippingPolicy{}, decimal.Zero, errors.Wrap(err, "tax rate")
	}
	return pricing.ShippingPolicy{FlatFee: fee, FreeThreshold: threshold}, rate, nil
}

// SessionConfig controls session lifetime in the in-memory registry.
type SessionConfig struct {
	IdleTTL         time.Duration `default:"30m" usage:"Idle time after which a session is evicted" flag:"session-idle-ttl"`
	CleanupInterval time.Duration `default:"1m"  usage:"How often idle sessions are swept" flag:"session-cleanup-interval"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STOREFRONT_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
