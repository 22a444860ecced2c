package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/solardesk/profit-forecast/internal/logging"
	"github.com/solardesk/profit-forecast/internal/server"
	"github.com/solardesk/profit-forecast/internal/store"
	"github.com/solardesk/profit-forecast/internal/tracing"
	"github.com/solardesk/profit-forecast/pkg/constants"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracing, err := tracing.Init(startCtx, logger, cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Fatal("failed to initialize tracing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// A nil store leaves the persistence endpoints disabled
	var analyses server.AnalysisStore
	if cfg.Database.URL != "" {
		pool, err := store.Connect(startCtx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer pool.Close()

		repo := store.NewRepository(pool, logger)
		if err := repo.EnsureSchema(startCtx); err != nil {
			logger.Fatal("failed to prepare database schema",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		analyses = repo
	} else {
		logger.Info("no database configured; persistence endpoints disabled",
			zap.String("op", "main"),
		)
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.BodySizeBytes(), version, analyses),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
