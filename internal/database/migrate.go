package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vyrlo/listing-browser/migrations"
)

// ApplyMigrations runs the .sql files found in migrationsPath. When the
// directory does not exist the schema embedded in the binary is used.
func ApplyMigrations(db *sql.DB, migrationsPath string) error {
	trimmed := strings.TrimSpace(migrationsPath)
	if trimmed != "" {
		info, err := os.Stat(trimmed)
		switch {
		case err == nil && info.IsDir():
			return ApplyMigrationsFS(db, os.DirFS(trimmed))
		case err != nil && !os.IsNotExist(err):
			return fmt.Errorf("stat migrations dir: %w", err)
		}
	}
	return ApplyMigrationsFS(db, migrations.Files)
}

// ApplyMigrationsFS applies every not yet recorded .sql file at the root of
// fsys in name order, each in its own transaction.
func ApplyMigrationsFS(db *sql.DB, fsys fs.FS) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	migrationFiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if path.Ext(entry.Name()) == ".sql" {
			migrationFiles = append(migrationFiles, entry.Name())
		}
	}
	sort.Strings(migrationFiles)

	for _, fileName := range migrationFiles {
		applied, err := migrationApplied(db, fileName)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(fsys, fileName)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fileName, err)
		}

		if err := applyMigration(db, fileName, string(content)); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(db *sql.DB, fileName string, content string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}

	if _, err := tx.Exec(content); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", fileName, err)
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, fileName); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", fileName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", fileName, err)
	}
	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func migrationApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return count > 0, nil
}
