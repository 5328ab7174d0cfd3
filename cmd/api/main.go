package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/api"
	"github.com/wonny/stockspider/internal/domain/spider"
	"github.com/wonny/stockspider/internal/infra/database/postgres"
	spiderrepo "github.com/wonny/stockspider/internal/infra/database/postgres/spider"
	"github.com/wonny/stockspider/internal/infra/external/jqka"
	"github.com/wonny/stockspider/internal/infra/external/tushare"
	"github.com/wonny/stockspider/internal/pkg/config"
	"github.com/wonny/stockspider/internal/pkg/logger"
	spidersvc "github.com/wonny/stockspider/internal/service/spider"
)

const (
	serviceName    = "stockspider-api"
	serviceVersion = "1.0.0"
)

func main() {
	// Report dates and fetch-log windows follow the exchange calendar
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}
	time.Local = loc

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("version", serviceVersion).
		Msg("Starting stock spider API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fetch log (optional)
	var (
		dbPool       *postgres.Pool
		fetchLogRepo spider.FetchLogRepository
	)
	if cfg.Database.Enabled() {
		dbPool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		repo := spiderrepo.NewFetchLogRepository(dbPool.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare fetch log schema")
		}
		fetchLogRepo = repo
		log.Info().Msg("Fetch log enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set, fetch log disabled")
	}

	// Upstream clients
	jqkaClient := jqka.NewClient(
		jqka.WithBaseURL(cfg.JQKA.BaseURL),
		jqka.WithTimeout(cfg.JQKA.Timeout),
		jqka.WithRateLimit(cfg.JQKA.RateLimit),
	)

	var reference spider.ReferenceTableAPI
	if cfg.Tushare.Token != "" {
		reference = tushare.NewClient(cfg.Tushare.Token,
			tushare.WithBaseURL(cfg.Tushare.BaseURL),
			tushare.WithTimeout(cfg.Tushare.Timeout),
			tushare.WithRateLimit(cfg.Tushare.RateLimit),
		)
	} else {
		log.Warn().Msg("TUSHARE_TOKEN not set, company lookups unavailable")
	}

	svc := spidersvc.NewService(jqkaClient, reference, fetchLogRepo)
	router := api.NewRouter(cfg, dbPool, svc, serviceVersion)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", addr).
			Msg("API server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("API server stopped")
}
