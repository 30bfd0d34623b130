package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vyrlo/listing-browser/internal/database"
	"github.com/vyrlo/listing-browser/internal/models"
	"github.com/vyrlo/listing-browser/internal/repository"
)

func TestPurgeDryRunKeepsSessions(t *testing.T) {
	repo := seededRepository(t)
	cutoff := time.Now().UTC().Add(-time.Hour)

	outcome, err := purge(context.Background(), repo, cutoff, false)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if len(outcome.Idle) != 1 || outcome.Idle[0] != "stale" || outcome.Deleted != 0 {
		t.Fatalf("unexpected dry-run outcome %+v", outcome)
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("dry-run must not delete, got %d sessions", count)
	}
}

func TestPurgeApplyDeletesIdleSessions(t *testing.T) {
	repo := seededRepository(t)
	cutoff := time.Now().UTC().Add(-time.Hour)

	outcome, err := purge(context.Background(), repo, cutoff, true)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if outcome.Deleted != 1 {
		t.Fatalf("expected 1 deleted session, got %d", outcome.Deleted)
	}

	remaining, err := repo.Get(context.Background(), "fresh")
	if err != nil || remaining == nil {
		t.Fatalf("expected fresh session to survive, err=%v", err)
	}
}

func seededRepository(t *testing.T) *repository.SessionRepository {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "browse.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.ApplyMigrations(db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	repo := repository.NewSessionRepository(db)
	now := time.Now().UTC()
	for id, updatedAt := range map[string]time.Time{"stale": now.Add(-48 * time.Hour), "fresh": now} {
		session := models.Session{
			ID:         id,
			Filter:     models.DefaultFilterState(),
			Pagination: models.PaginationState{Page: 1, ItemsPerPage: 12, LoadedIDs: map[string]struct{}{}, HasMore: true},
			CreatedAt:  updatedAt,
			UpdatedAt:  updatedAt,
		}
		if err := repo.Create(context.Background(), session); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	return repo
}
