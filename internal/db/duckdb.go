package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbPath     string
	dbOnce     sync.Once
	dbErr      error
)

// GetDB returns a singleton DuckDB connection to the database file at path.
// Only the first call opens the database; later calls must use the same path.
func GetDB(path string) (*sql.DB, error) {
	dbOnce.Do(func() {
		dbPath = path
		dbInstance, dbErr = Open(path)
	})
	if dbErr == nil && path != dbPath {
		return nil, fmt.Errorf("database already open at %s", dbPath)
	}
	return dbInstance, dbErr
}

// Open opens a DuckDB database file, creating its directory and schema.
// An empty path opens an in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS races (
			id VARCHAR PRIMARY KEY,
			source VARCHAR NOT NULL,
			target VARCHAR NOT NULL,
			words INTEGER NOT NULL,
			wpm DOUBLE NOT NULL,
			score BIGINT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create races table: %w", err)
	}
	return nil
}
