package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/vyrlo/listing-browser/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO browse_sessions (
			id, filter_name, filter_location, filter_category_id, quick_filter,
			page, items_per_page, has_more, notice_shown, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.Filter.Name,
		session.Filter.Location,
		session.Filter.CategoryID,
		string(session.Filter.QuickFilter),
		session.Pagination.Page,
		session.Pagination.ItemsPerPage,
		session.Pagination.HasMore,
		session.NoticeShown,
		session.CreatedAt.UnixMilli(),
		session.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}

	if err := replaceLoadedIDs(ctx, tx, session.ID, session.Pagination.LoadedIDs); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// Get returns nil without error when no session has the id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, filter_name, filter_location, filter_category_id, quick_filter,
			page, items_per_page, has_more, notice_shown, created_at, updated_at
		FROM browse_sessions
		WHERE id = ?
	`, id)

	var (
		item        models.Session
		quickFilter string
		createdAt   int64
		updatedAt   int64
	)
	if err := row.Scan(
		&item.ID,
		&item.Filter.Name,
		&item.Filter.Location,
		&item.Filter.CategoryID,
		&quickFilter,
		&item.Pagination.Page,
		&item.Pagination.ItemsPerPage,
		&item.Pagination.HasMore,
		&item.NoticeShown,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	item.Filter.QuickFilter = models.ParseQuickFilter(quickFilter)
	item.CreatedAt = time.UnixMilli(createdAt).UTC()
	item.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	loaded, err := r.loadedIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Pagination.LoadedIDs = loaded

	return &item, nil
}

// Save overwrites the stored filter, pagination and loaded ids. It reports
// false when the session does not exist.
func (r *SessionRepository) Save(ctx context.Context, session models.Session) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin save session tx: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE browse_sessions
		SET
			filter_name = ?,
			filter_location = ?,
			filter_category_id = ?,
			quick_filter = ?,
			page = ?,
			items_per_page = ?,
			has_more = ?,
			notice_shown = ?,
			updated_at = ?
		WHERE id = ?
	`,
		session.Filter.Name,
		session.Filter.Location,
		session.Filter.CategoryID,
		string(session.Filter.QuickFilter),
		session.Pagination.Page,
		session.Pagination.ItemsPerPage,
		session.Pagination.HasMore,
		session.NoticeShown,
		session.UpdatedAt.UnixMilli(),
		session.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("session update rows affected: %w", err)
	}
	if rowsAffected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	if err := replaceLoadedIDs(ctx, tx, session.ID, session.Pagination.LoadedIDs); err != nil {
		_ = tx.Rollback()
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit save session: %w", err)
	}
	return true, nil
}

// ListIdleSince returns the ids of sessions not updated since cutoff, oldest
// first.
func (r *SessionRepository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id
		FROM browse_sessions
		WHERE updated_at < ?
		ORDER BY updated_at ASC, id ASC
	`, cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan idle session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate idle sessions: %w", err)
	}
	return ids, nil
}

// Delete removes the sessions and, through the foreign key, their loaded ids.
func (r *SessionRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`DELETE FROM browse_sessions WHERE id IN (%s)`, sqlPlaceholders(len(ids)))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("session delete rows affected: %w", err)
	}
	return rowsAffected, nil
}

func (r *SessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM browse_sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) loadedIDs(ctx context.Context, sessionID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT listing_id
		FROM browse_session_loaded_ids
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list loaded ids: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]struct{})
	for rows.Next() {
		var listingID string
		if err := rows.Scan(&listingID); err != nil {
			return nil, fmt.Errorf("scan loaded id: %w", err)
		}
		loaded[listingID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loaded ids: %w", err)
	}
	return loaded, nil
}

func replaceLoadedIDs(ctx context.Context, tx *sql.Tx, sessionID string, loaded map[string]struct{}) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM browse_session_loaded_ids WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear loaded ids: %w", err)
	}
	if len(loaded) == 0 {
		return nil
	}

	ids := make([]string, 0, len(loaded))
	for id := range loaded {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for start := 0; start < len(ids); start += loadedIDBatchSize {
		end := min(start+loadedIDBatchSize, len(ids))
		batch := ids[start:end]

		args := make([]any, 0, len(batch)*2)
		for _, id := range batch {
			args = append(args, sessionID, id)
		}
		query := fmt.Sprintf(
			`INSERT OR IGNORE INTO browse_session_loaded_ids (session_id, listing_id) VALUES %s`,
			sqlValueTuples(len(batch), 2),
		)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert loaded ids: %w", err)
		}
	}
	return nil
}
