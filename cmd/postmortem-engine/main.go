package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postmortemhq/postmortem-engine/internal/api"
	"github.com/postmortemhq/postmortem-engine/internal/config"
	"github.com/postmortemhq/postmortem-engine/internal/engine"
	"github.com/postmortemhq/postmortem-engine/internal/llm"
	"github.com/postmortemhq/postmortem-engine/internal/metrics"
	"github.com/postmortemhq/postmortem-engine/internal/ratelimit"
	"github.com/postmortemhq/postmortem-engine/internal/repo"
	"github.com/postmortemhq/postmortem-engine/internal/services"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	// Local deployments keep secrets in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, utils.LogFileConfig{
		Path:       cfg.Logging.File.Path,
		MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
		MaxBackups: cfg.Logging.File.MaxBackups,
		MaxAgeDays: cfg.Logging.File.MaxAgeDays,
	})
	logger.Info("starting postmortem-engine",
		slog.String("address", cfg.Server.Address),
		slog.String("provider", cfg.Generation.Provider),
		slog.String("model", cfg.Generation.Model),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	policy, err := engine.NewStaticPolicy(cfg.Generation.Provider, cfg.Generation.Model)
	if err != nil {
		logger.Error("failed to build routing policy", slog.Any("error", err))
		os.Exit(1)
	}

	generator, err := llm.New(llm.Config{
		Provider: cfg.Generation.Provider,
		APIKey:   cfg.Generation.APIKey,
		BaseURL:  cfg.Generation.BaseURL,
		Timeout:  cfg.Generation.Timeout,
	})
	if err != nil {
		logger.Error("failed to build generation client", slog.Any("error", err))
		os.Exit(1)
	}

	store := repo.NewIncidentStore(cfg.Data.Dir, logger)
	pipeline := engine.NewPipeline(logger, policy, generator)
	service := services.NewAnalysisService(logger, store, pipeline)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	handler := api.NewHandler(logger, service, limiter)
	server := api.NewServer(cfg.Server, cfg.CORS, handler.Routes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Data.Watch {
		go func() {
			if err := store.Watch(ctx); err != nil {
				logger.Warn("incident watcher stopped", slog.Any("error", err))
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("api server listening", slog.String("address", server.Address()))
		if serveErr := server.Start(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("api server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("postmortem-engine stopped")
}
