package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Stripe
	StripeSecretKey            string
	StripeWebhookSecret        string
	StripeConnectWebhookSecret string

	// Plan checkout prices in cents, keyed in code by tier.
	PremiumPriceCents int64
	DeluxePriceCents  int64

	// Server
	Port        string
	CORSOrigins string

	// Public surface
	BaseDomain    string // weddings served from <slug>.<BaseDomain>
	PublicBaseURL string // absolute URL of this API, used for Stripe return URLs
	UpgradeURL    string // human-facing upgrade page, sent with plan denials

	// Plan catalog
	PlanCatalogPath string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "everafter_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		StripeSecretKey:            getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:        getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeConnectWebhookSecret: getEnv("STRIPE_CONNECT_WEBHOOK_SECRET", ""),

		PremiumPriceCents: 4900,
		DeluxePriceCents:  9900,

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		BaseDomain:    getEnv("BASE_DOMAIN", "everafter.site"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		UpgradeURL:    getEnv("UPGRADE_URL", "https://everafter.site/upgrade"),

		PlanCatalogPath: getEnv("PLAN_CATALOG_PATH", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}
