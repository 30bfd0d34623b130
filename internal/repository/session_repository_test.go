package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/vyrlo/listing-browser/internal/database"
	"github.com/vyrlo/listing-browser/internal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "browse.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.ApplyMigrations(db, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func newSession(id string, updatedAt time.Time) models.Session {
	return models.Session{
		ID: id,
		Filter: models.FilterState{
			Name:        "cafe",
			Location:    "Lisbon",
			CategoryID:  "food",
			QuickFilter: models.QuickFilterRating,
		},
		Pagination: models.PaginationState{
			Page:         2,
			ItemsPerPage: 12,
			LoadedIDs:    map[string]struct{}{"a": {}, "b": {}},
			HasMore:      true,
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := repo.Create(ctx, newSession("s1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected session")
	}
	if got.Filter.QuickFilter != models.QuickFilterRating || got.Filter.Location != "Lisbon" || got.Filter.CategoryID != "food" {
		t.Fatalf("unexpected filter: %+v", got.Filter)
	}
	if got.Pagination.Page != 2 || !got.Pagination.HasMore || len(got.Pagination.LoadedIDs) != 2 {
		t.Fatalf("unexpected pagination: %+v", got.Pagination)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, got.UpdatedAt)
	}

	missing, err := repo.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing session")
	}
}

func TestSessionRepositoryColumnDefaultsMatchDefaultFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	now := time.Now().UTC().UnixMilli()
	if _, err := db.Exec(`INSERT INTO browse_sessions (id, created_at, updated_at) VALUES ('bare', ?, ?)`, now, now); err != nil {
		t.Fatalf("insert bare session: %v", err)
	}

	session, err := repo.Get(context.Background(), "bare")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session == nil {
		t.Fatalf("expected bare session")
	}
	if session.Filter != models.DefaultFilterState() {
		t.Fatalf("expected default filter, got %+v", session.Filter)
	}
	if session.Pagination.Page != 1 || !session.Pagination.HasMore || session.NoticeShown {
		t.Fatalf("unexpected default pagination %+v", session.Pagination)
	}
}

func TestSessionRepositorySaveReplacesLoadedIDs(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	session := newSession("s1", now)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	session.Filter.QuickFilter = models.QuickFilterAll
	session.NoticeShown = true
	session.Pagination = models.PaginationState{Page: 1, ItemsPerPage: 12, LoadedIDs: map[string]struct{}{}, HasMore: true}
	saved, err := repo.Save(ctx, session)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved {
		t.Fatalf("expected save to report an update")
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Pagination.LoadedIDs) != 0 || got.Pagination.Page != 1 || !got.NoticeShown {
		t.Fatalf("unexpected session after save: %+v", got)
	}

	many := make(map[string]struct{}, 450)
	for i := 0; i < 450; i++ {
		many[fmt.Sprintf("listing-%03d", i)] = struct{}{}
	}
	session.Pagination.LoadedIDs = many
	if _, err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save many: %v", err)
	}
	got, err = repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Pagination.LoadedIDs) != 450 {
		t.Fatalf("expected 450 loaded ids, got %d", len(got.Pagination.LoadedIDs))
	}

	saved, err = repo.Save(ctx, newSession("ghost", now))
	if err != nil {
		t.Fatalf("save ghost: %v", err)
	}
	if saved {
		t.Fatalf("expected save of unknown session to report false")
	}
}

func TestSessionRepositoryPurgeIdle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Create(ctx, newSession("old", now.Add(-48*time.Hour))); err != nil {
		t.Fatalf("create old: %v", err)
	}
	if err := repo.Create(ctx, newSession("fresh", now)); err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	ids, err := repo.ListIdleSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("list idle: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Fatalf("expected [old], got %v", ids)
	}

	deleted, err := repo.Delete(ctx, ids)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	var orphaned int
	if err := db.QueryRow(`SELECT COUNT(1) FROM browse_session_loaded_ids WHERE session_id = 'old'`).Scan(&orphaned); err != nil {
		t.Fatalf("count loaded ids: %v", err)
	}
	if orphaned != 0 {
		t.Fatalf("expected loaded ids to cascade, got %d", orphaned)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining session, got %d", count)
	}
}

func TestSQLValueTuples(t *testing.T) {
	if got := sqlValueTuples(2, 2); got != "(?,?),(?,?)" {
		t.Fatalf("unexpected tuples %q", got)
	}
	if got := sqlValueTuples(0, 2); got != "" {
		t.Fatalf("expected empty tuples, got %q", got)
	}
	if got := sqlPlaceholders(3); got != "?,?,?" {
		t.Fatalf("unexpected placeholders %q", got)
	}
}
