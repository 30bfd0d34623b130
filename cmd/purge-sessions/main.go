package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/vyrlo/listing-browser/internal/config"
	"github.com/vyrlo/listing-browser/internal/database"
	"github.com/vyrlo/listing-browser/internal/repository"
)

type sessionPurger interface {
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
	Delete(ctx context.Context, ids []string) (int64, error)
}

type purgeOutcome struct {
	Cutoff  time.Time
	Idle    []string
	Deleted int64
}

func main() {
	var (
		apply     bool
		olderThan time.Duration
	)
	flag.BoolVar(&apply, "apply", false, "Delete the idle sessions. Without this flag, the command is a dry-run preview.")
	flag.DurationVar(&olderThan, "older-than", 0, "Idle time after which a session is purged (0 = SESSION_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
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

	if olderThan <= 0 {
		olderThan = cfg.SessionTTL
	}

	outcome, err := purge(context.Background(), repository.NewSessionRepository(db), time.Now().UTC().Add(-olderThan), apply)
	if err != nil {
		slog.Error("failed to purge sessions", "error", err)
		os.Exit(1)
	}

	if len(outcome.Idle) == 0 {
		slog.Info("no idle sessions found; nothing to purge", "cutoff", outcome.Cutoff.Format(time.RFC3339))
		return
	}

	if !apply {
		for _, id := range outcome.Idle {
			slog.Info("idle session will be purged", "session_id", id)
		}
		slog.Info("dry-run complete", "idle_sessions", len(outcome.Idle), "cutoff", outcome.Cutoff.Format(time.RFC3339))
		return
	}

	slog.Info(
		"purge completed",
		"idle_sessions", len(outcome.Idle),
		"deleted_sessions", outcome.Deleted,
		"cutoff", outcome.Cutoff.Format(time.RFC3339),
	)
}

func purge(ctx context.Context, repo sessionPurger, cutoff time.Time, apply bool) (purgeOutcome, error) {
	outcome := purgeOutcome{Cutoff: cutoff}

	idle, err := repo.ListIdleSince(ctx, cutoff)
	if err != nil {
		return purgeOutcome{}, err
	}
	outcome.Idle = idle
	if !apply || len(idle) == 0 {
		return outcome, nil
	}

	deleted, err := repo.Delete(ctx, idle)
	if err != nil {
		return purgeOutcome{}, err
	}
	outcome.Deleted = deleted
	return outcome, nil
}
