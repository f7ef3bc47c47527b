// Package config loads client and mock-backend settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// baseURLs maps STOREFRONT_ENV to the backend origin. Real devices cannot
// reach localhost, so on-device testing must run against prod.
var baseURLs = map[string]string{
	EnvDev:  "http://localhost:8000",
	EnvProd: "https://www.santaikeji.top",
}

type Config struct {
	Env      string
	BaseURL  string
	LogLevel string

	// Timeout is handed to the HTTP transport; the client imposes none of its own.
	Timeout time.Duration

	SessionDBPath string

	// MaxConcurrentOrders caps the checkout fan-out. Zero means unlimited.
	MaxConcurrentOrders int

	MockAddr    string
	MetricsAddr string
}

func Load() Config {
	env := getEnv("STOREFRONT_ENV", EnvProd)
	base, ok := baseURLs[env]
	if !ok {
		env = EnvProd
		base = baseURLs[EnvProd]
	}

	return Config{
		Env:                 env,
		BaseURL:             getEnv("STOREFRONT_BASE_URL", base),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Timeout:             getEnvDuration("STOREFRONT_TIMEOUT", 30*time.Second),
		SessionDBPath:       getEnv("STOREFRONT_SESSION_DB", "./data/session.db"),
		MaxConcurrentOrders: getEnvInt("STOREFRONT_MAX_CONCURRENT_ORDERS", 0),
		MockAddr:            getEnv("MOCK_ADDR", ":8000"),
		MetricsAddr:         getEnv("METRICS_ADDR", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
