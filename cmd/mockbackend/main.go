package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/storefront/internal/config"
	"github.com/mmynk/storefront/internal/metrics"
	"github.com/mmynk/storefront/internal/mockbackend"
	"github.com/mmynk/storefront/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := mockbackend.New(ctx, mockbackend.Config{
		JWTSecret: getEnv("MOCK_JWT_SECRET", ""),
		Seed:      getEnv("MOCK_SEED", "true") == "true",
	})
	if err != nil {
		slog.Error("Failed to initialize mock backend", "error", err)
		os.Exit(1)
	}
	slog.Info("Mock backend initialized", "demo_user", mockbackend.DemoUsername)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
			slog.Info("Metrics server starting", "address", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Mock backend starting", "address", cfg.MockAddr, "url", "http://localhost"+cfg.MockAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Mock backend stopped")
}
