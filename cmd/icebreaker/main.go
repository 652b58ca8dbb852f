// cmd/icebreaker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"icebreaker-service/internal/common/cache"
	"icebreaker-service/internal/common/config"
	"icebreaker-service/internal/common/logger"
	"icebreaker-service/internal/enrich"
	"icebreaker-service/internal/genai"
	"icebreaker-service/internal/lookup"
	"icebreaker-service/internal/pipeline"
	"icebreaker-service/internal/server"
	"icebreaker-service/internal/synthesis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New("info", "console")
		bootstrapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting icebreaker service",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	// --- Raw profile cache (optional) ---
	var cacheClient *cache.Client
	if cfg.Cache.Enabled {
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			zapLog.Fatal("cache init failed", zap.Error(err))
		}
		defer cacheClient.Close()

		if err := cacheClient.Ping(context.Background()); err != nil {
			// Cache problems degrade to live fetches, so a dead cache at
			// startup is not fatal.
			zapLog.Warn("cache unreachable at startup", zap.Error(err))
		} else {
			zapLog.Info("cache connected", zap.String("address", cfg.Cache.Address))
		}
	}

	// --- Pipeline stages ---
	resolver := lookup.NewResolver(&lookup.Config{
		BaseURL:    cfg.APIs.WebSearch.BaseURL,
		APIKey:     cfg.APIs.WebSearch.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.WebSearch.Timeout),
		MaxResults: cfg.APIs.WebSearch.MaxResults,
	}, log)

	fetcher := enrich.NewFetcher(&enrich.Config{
		BaseURL:  cfg.APIs.Enrichment.BaseURL,
		APIKey:   cfg.APIs.Enrichment.APIKey,
		Timeout:  config.GetDuration(cfg.APIs.Enrichment.Timeout),
		CacheTTL: config.GetDuration(cfg.Cache.TTL * 60 * 1000),
	}, cacheClient, log)

	generator, err := genai.NewLangChainGenerator(&genai.Config{
		BaseURL:     cfg.APIs.GenAI.BaseURL,
		APIKey:      cfg.APIs.GenAI.APIKey,
		Model:       cfg.APIs.GenAI.Model,
		Temperature: cfg.APIs.GenAI.Temperature,
		MaxTokens:   cfg.APIs.GenAI.MaxTokens,
		MaxRetries:  cfg.APIs.GenAI.MaxRetries,
		Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
	}, log)
	if err != nil {
		zapLog.Fatal("generation client init failed", zap.Error(err))
	}

	synthesizer := synthesis.NewSynthesizer(generator, log)

	orchestrator := pipeline.NewOrchestrator(&pipeline.Config{
		Timeout:          config.GetDuration(cfg.Pipeline.Timeout),
		RequesterFixture: cfg.Pipeline.RequesterFixture,
	}, resolver, fetcher, synthesizer, enrich.Fixture, log)

	// --- HTTP server ---
	srv := server.New(cfg, orchestrator, cacheClient, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("icebreaker service stopped gracefully")
}
