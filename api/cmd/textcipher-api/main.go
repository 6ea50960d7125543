package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/irgordon/textcipher/api/internal/api/handlers"
	"github.com/irgordon/textcipher/api/internal/api/middleware"
	"github.com/irgordon/textcipher/api/internal/api/router"
	"github.com/irgordon/textcipher/api/internal/config"
	"github.com/irgordon/textcipher/api/internal/core/services"
	deliveryhttp "github.com/irgordon/textcipher/api/internal/delivery/http"
	"github.com/irgordon/textcipher/api/internal/infrastructure/crypto"
	"github.com/irgordon/textcipher/api/internal/logging"
	"github.com/irgordon/textcipher/api/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// --- 1. Core Telemetry & Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("FATAL: configuration rejected", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	logger.Info("🚀 Booting text cipher API...", "version", version, "env", cfg.Environment)

	// --- 2. Managed Key ---
	algorithm, err := crypto.ParseAlgorithm(cfg.ManagedKeyCipher)
	if err != nil {
		logger.Error("FATAL: managed key cipher rejected", "error", err)
		os.Exit(1)
	}

	var key []byte
	if cfg.ManagedKeyHex != "" {
		key, err = hex.DecodeString(cfg.ManagedKeyHex)
	} else {
		// 🛡️ Ephemeral key: tokens issued by this process die with it
		key, err = crypto.GenerateKey()
		logger.Warn("MANAGED_KEY not set; generated a process-lifetime key. managed-key tokens will not survive a restart.")
	}
	if err != nil {
		logger.Error("FATAL: managed key unavailable", "error", err)
		os.Exit(1)
	}

	cryptoService, err := crypto.NewCryptoService(key, algorithm)
	if err != nil {
		logger.Error("FATAL: crypto service failed", "error", err)
		os.Exit(1)
	}

	// --- 3. Dependency Injection ---

	// 🛡️ Global Telemetry Hub (Memory Bus)
	telemetryHub := telemetry.NewHub()
	observers := []services.TransformObserver{telemetryHub}

	var metrics *telemetry.Metrics
	if cfg.MetricsEnabled {
		metrics = telemetry.NewMetrics()
		telemetryHub.OnDrop(metrics.EventsDropped.Inc)
		observers = append(observers, metrics)
	}

	transformService := services.NewTransformService(cryptoService, logger, observers...)

	transformHandler := handlers.NewTransformHandler(transformService, logger, version)
	eventsHandler := handlers.NewEventsHandler(telemetryHub, logger)
	wsHandler := handlers.NewWebSocketHandler(transformService, logger, cfg.MaxBodyBytes, router.OriginPolicy(cfg.AllowedOrigins))
	healthHandler := deliveryhttp.NewHealthHandler(cryptoService, string(cryptoService.Algorithm()))

	// --- 4. Background Workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// Evicts idle per-client buckets
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(workerCtx)

	// --- 5. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		MaxBodyBytes:     cfg.MaxBodyBytes,
		TransformHandler: transformHandler,
		EventsHandler:    eventsHandler,
		WSHandler:        wsHandler,
		HealthHandler:    healthHandler,
		RateLimiter:      limiter,
		Metrics:          metrics,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// --- 6. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("🌐 Text cipher API active", "port", cfg.Port, "cipher", string(algorithm))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("🛑 Shutting down...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	logger.Info("✅ Text cipher API shutdown complete.")
}
