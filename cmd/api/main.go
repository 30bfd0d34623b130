package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vyrlo/listing-browser/internal/backend"
	"github.com/vyrlo/listing-browser/internal/browse"
	"github.com/vyrlo/listing-browser/internal/catalog"
	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/database"
	apihttp "github.com/vyrlo/listing-browser/internal/http"
	"github.com/vyrlo/listing-browser/internal/repository"
	"github.com/vyrlo/listing-browser/internal/scheduler"
	"github.com/vyrlo/listing-browser/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open sqlite", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplyMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	client := backend.NewClient(backend.Options{
		BaseURL:       cfg.BackendBaseURL,
		Timeout:       cfg.BackendTimeout,
		RatePerSecond: cfg.BackendRatePerSecond,
		Logger:        logger,
	})
	listingCatalog := catalog.New(client, logger)

	var listingSource suggest.ListingSource = listingCatalog
	var categorySource suggest.CategorySource = listingCatalog
	if cfg.SuggestSource == config.SuggestSourceRemote {
		listingSource = listingCatalog.WithRemoteSearch(client)
	}
	aggregator := suggest.NewAggregator(listingSource, categorySource, cfg.Tuning, logger)

	sessions := repository.NewSessionRepository(db)
	service := browse.NewService(listingCatalog, sessions, aggregator, logger)

	if cfg.CatalogPreload {
		preloadCtx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout)
		if err := listingCatalog.Ensure(preloadCtx); err != nil {
			slog.Warn("catalog preload failed; will retry on first request", "error", err)
		}
		cancel()
	}

	app := apihttp.NewServer(cfg, apihttp.Dependencies{
		DB:      db,
		Catalog: listingCatalog,
		Status:  listingCatalog,
		Backend: client,
		Browse:  service,
	})

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	janitor := scheduler.NewJanitor(sessions, scheduler.JanitorConfig{
		TTL:      cfg.SessionTTL,
		OnPurged: service.Forget,
	}, logger)
	janitor.Start(janitorCtx)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment, "suggest_source", cfg.SuggestSource)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	janitorCancel()
	janitor.StopWait(2 * time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
