// Package history records completed races and aggregates them into the
// totals that seed progression between runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/strrl/typerace/internal/db"
	"github.com/strrl/typerace/pkg/models"
)

// ErrNoDatabase is returned by a Store without a database handle.
var ErrNoDatabase = errors.New("history database is not open")

// DefaultRecentLimit is how many races Recent returns when limit is not positive.
const DefaultRecentLimit = 20

// Store reads and writes race results in DuckDB.
type Store struct {
	database *sql.DB
}

// NewStore wraps an open database whose schema has been migrated by db.Open.
func NewStore(database *sql.DB) *Store {
	return &Store{database: database}
}

// Open opens the history database at path.
func Open(path string) (*Store, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStore(database), nil
}

// OpenShared opens the process-wide history database at path.
func OpenShared(path string) (*Store, error) {
	database, err := db.GetDB(path)
	if err != nil {
		return nil, err
	}
	return NewStore(database), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.database == nil {
		return nil
	}
	return s.database.Close()
}

// Save inserts a race result and returns its ID. A missing ID is generated.
func (s *Store) Save(ctx context.Context, result models.RaceResult) (string, error) {
	if s.database == nil {
		return "", ErrNoDatabase
	}
	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	_, err := s.database.ExecContext(ctx, `
		INSERT INTO races (id, source, target, words, wpm, score, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		result.Source,
		result.Target,
		result.Words,
		result.WPM,
		int64(result.Score),
		result.StartedAt.UTC(),
		result.EndedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save race result: %w", err)
	}
	return result.ID, nil
}

const recentQuery = `
	SELECT id, source, target, words, wpm, score, started_at, ended_at
	FROM races
	ORDER BY ended_at DESC
	LIMIT ?
`

const statsQuery = `
	SELECT
		COUNT(*) AS races,
		CAST(COALESCE(SUM(score), 0) AS BIGINT) AS total_score,
		COALESCE(MAX(wpm), 0) AS best_wpm,
		COALESCE(AVG(wpm), 0) AS average_wpm,
		MAX(ended_at) AS last_played
	FROM races
`

// Recent returns the latest races, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.RaceResult, error) {
	if s.database == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.database.QueryContext(ctx, recentQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute recent races query: %w", err)
	}
	defer rows.Close()

	var results []models.RaceResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent races: %w", err)
	}
	return results, nil
}

// Stats aggregates every recorded race.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	if s.database == nil {
		return models.Stats{}, ErrNoDatabase
	}

	var (
		stats      models.Stats
		totalScore int64
		lastPlayed sql.NullTime
	)
	err := s.database.QueryRowContext(ctx, statsQuery).Scan(
		&stats.Races,
		&totalScore,
		&stats.BestWPM,
		&stats.AverageWPM,
		&lastPlayed,
	)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to execute stats query: %w", err)
	}

	if totalScore > 0 {
		stats.TotalScore = uint64(totalScore)
	}
	if lastPlayed.Valid {
		stats.LastPlayed = lastPlayed.Time.Local()
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.RaceResult, error) {
	var (
		r     models.RaceResult
		score int64
	)
	if err := row.Scan(&r.ID, &r.Source, &r.Target, &r.Words, &r.WPM, &score, &r.StartedAt, &r.EndedAt); err != nil {
		return models.RaceResult{}, fmt.Errorf("failed to scan race row: %w", err)
	}
	if score > 0 {
		r.Score = uint64(score)
	}
	r.StartedAt = r.StartedAt.Local()
	r.EndedAt = r.EndedAt.Local()
	return r, nil
}
