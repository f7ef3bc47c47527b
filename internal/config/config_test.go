package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "")
	t.Setenv("STOREFRONT_BASE_URL", "")
	t.Setenv("STOREFRONT_TIMEOUT", "")

	cfg := Load()
	if cfg.Env != EnvProd {
		t.Errorf("Env = %s, want %s", cfg.Env, EnvProd)
	}
	if cfg.BaseURL != baseURLs[EnvProd] {
		t.Errorf("BaseURL = %s, want %s", cfg.BaseURL, baseURLs[EnvProd])
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxConcurrentOrders != 0 {
		t.Errorf("MaxConcurrentOrders = %d, want 0", cfg.MaxConcurrentOrders)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "dev")
	t.Setenv("STOREFRONT_TIMEOUT", "5s")
	t.Setenv("STOREFRONT_MAX_CONCURRENT_ORDERS", "4")

	cfg := Load()
	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %s, want dev URL", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxConcurrentOrders != 4 {
		t.Errorf("MaxConcurrentOrders = %d, want 4", cfg.MaxConcurrentOrders)
	}

	t.Setenv("STOREFRONT_BASE_URL", "http://10.0.0.2:8000")
	if got := Load().BaseURL; got != "http://10.0.0.2:8000" {
		t.Errorf("BaseURL override = %s", got)
	}
}

func TestLoad_UnknownEnvFallsBackToProd(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "staging")
	t.Setenv("STOREFRONT_BASE_URL", "")
	t.Setenv("STOREFRONT_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.Env != EnvProd || cfg.BaseURL != baseURLs[EnvProd] {
		t.Errorf("got env=%s base=%s, want prod", cfg.Env, cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default on parse error", cfg.Timeout)
	}
}
