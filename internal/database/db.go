package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var pragmas = []struct {
	statement string
	label     string
}{
	{statement: `PRAGMA journal_mode = WAL;`, label: "set sqlite WAL"},
	{statement: `PRAGMA foreign_keys = ON;`, label: "enable sqlite foreign keys"},
	{statement: `PRAGMA busy_timeout = 5000;`, label: "set sqlite busy timeout"},
}

// Open opens the session store at sqlitePath, creating its directory.
func Open(sqlitePath string) (*sql.DB, error) {
	dir := filepath.Dir(sqlitePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// PRAGMAs are per connection; one connection keeps them applied.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma.statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma.label, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
