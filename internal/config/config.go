package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all runtime configuration, read once at startup.
type Config struct {
	Port   string
	AppURL string

	// DatabaseDriver is "postgres" or "sqlite".
	DatabaseDriver string
	DatabaseURL    string

	ShopifyAPIKey        string
	ShopifyAPISecret     string
	ShopifyWebhookSecret string
	Scopes               []string

	// EncryptionKey is base64 and must decode to 32 bytes.
	// Access tokens are stored encrypted with it.
	EncryptionKey string

	// RedisURL enables the analytics cache when set.
	RedisURL string

	// FrontendDist is the directory holding the built dashboard SPA.
	// Empty disables static serving.
	FrontendDist string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		AppURL:               getEnv("APP_URL", "http://localhost:8080"),
		DatabaseDriver:       getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:          getEnv("DATABASE_URL", "file:shopdash.db?_pragma=busy_timeout(5000)"),
		ShopifyAPIKey:        os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret:     os.Getenv("SHOPIFY_API_SECRET"),
		ShopifyWebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		EncryptionKey:        os.Getenv("ENCRYPTION_KEY"),
		RedisURL:             os.Getenv("REDIS_URL"),
		FrontendDist:         os.Getenv("FRONTEND_DIST"),
	}

	scopes := getEnv("SCOPES", "read_products,read_orders")
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.Scopes = append(cfg.Scopes, s)
		}
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (expected postgres or sqlite)", cfg.DatabaseDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
