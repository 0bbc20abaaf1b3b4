package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/api"
	"github.com/tendant/simple-share/pkg/simpleshare/config"
)

// ServerConfig is read from the environment (and an optional .env file)
type ServerConfig struct {
	Port         string        `env:"PORT" env-default:"8090"`
	NativeURL    string        `env:"NATIVE_URL" env-default:"memory"`
	HandleTTL    time.Duration `env:"HANDLE_TTL" env-default:"0s"`
	Capabilities string        `env:"CAPABILITIES" env-default:"all"`
	LinkBaseURL  string        `env:"LINK_BASE_URL" env-default:"https://share.local"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" env-default:"1048576"`
}

func main() {
	_ = godotenv.Load()

	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read server configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	nativeType := config.NativeMemory
	nativeURL := ""
	if cfg.NativeURL != "" && cfg.NativeURL != config.NativeMemory {
		nativeType = config.NativePostgres
		nativeURL = cfg.NativeURL
	}

	clientConfig, err := config.Load(
		config.WithNative(nativeType, nativeURL),
		config.WithHandleTTL(cfg.HandleTTL),
		config.WithCapabilities(config.ParseCapabilities(cfg.Capabilities)...),
		config.WithLinkBaseURL(cfg.LinkBaseURL),
		config.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Invalid native configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	native, err := clientConfig.BuildNative(ctx)
	if err != nil {
		logger.Error("Failed to build native boundary", "native", nativeType, "error", err)
		os.Exit(1)
	}

	metrics := simpleshare.NewMetrics(prometheus.DefaultRegisterer)
	if err := metrics.Register(); err != nil {
		logger.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}
	native = simpleshare.NewMetricsNative(native, metrics)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(api.RequestIDMiddleware)
	r.Use(api.LoggingMiddleware(logger))
	r.Use(api.RecoveryMiddleware(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/v1", api.Chain(
		api.NewNativeHandler(native, logger).Routes(),
		api.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Native boundary server starting", "port", cfg.Port, "native", nativeType, "handle_ttl", cfg.HandleTTL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
