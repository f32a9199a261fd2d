package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credit_oracle/internal/api"
	"credit_oracle/internal/config"
	"credit_oracle/internal/processor"
	"credit_oracle/internal/report"
	"credit_oracle/internal/repository/memory"
	"credit_oracle/internal/risk"
	"credit_oracle/pkg/crypto"
	"credit_oracle/pkg/metrics"
)

const (
	appName = "credit_oracle"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(env.LogLevel)
	logger.Info("Starting application",
		slog.String("name", appName))

	proc, metricsCollector, err := setupProcessor(env, logger)
	if err != nil {
		logger.Error("Failed to initialise scoring", slog.String("error", err.Error()))
		os.Exit(1)
	}

	apiHandler := api.NewAPIHandler(proc, metricsCollector, logger)
	metricsServer := metricsCollector.StartMetricsServer(env.MetricsAddr)
	httpServer := startHTTPServer(env.Addr, apiHandler, logger)
	waitForShutdown(logger, httpServer, metricsServer, metricsCollector)
	logger.Info("Application shutdown complete")
}

func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupProcessor(env *config.Env, logger *slog.Logger) (*processor.ScoreProcessor, *metrics.MetricsCollector, error) {
	cfg, err := env.LoadScoring()
	if err != nil {
		return nil, nil, err
	}
	compiled, err := config.Compile(cfg)
	if err != nil {
		return nil, nil, err
	}
	mapper, err := risk.FromConfig(cfg.Scoring)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Scoring parameters loaded",
		slog.String("path", env.ConfigPath),
		slog.Int("tiers", len(cfg.Tiers)))

	metricsCollector := metrics.NewMetricsCollector(logger)
	signer := crypto.NewSigner(env.SigningKey, logger)
	results := memory.NewResultRepository(env.ResultCapacity)

	proc := processor.NewScoreProcessor(compiled, mapper, results, signer, metricsCollector, env.Workers, logger).
		WithToken(report.Token{Symbol: env.TokenSymbol, Rate: env.TokenRate})
	return proc, metricsCollector, nil
}

func startHTTPServer(addr string, apiHandler *api.APIHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	logger *slog.Logger,
	httpServer *http.Server,
	metricsServer *http.Server,
	metricsCollector *metrics.MetricsCollector,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if err := metricsCollector.Shutdown(ctx, metricsServer); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}
}
