package history

import (
	"context"
	"time"

	"github.com/strrl/typerace/pkg/models"
)

// LoadingState represents the state of an async history operation
type LoadingState int

const (
	StateIdle LoadingState = iota
	StateLoadingRecent
	StateError
)

// queryTimeout bounds a single history query
const queryTimeout = 15 * time.Second

// AsyncQueryResult wraps query results with metadata
type AsyncQueryResult struct {
	Stats   models.Stats
	Results []models.RaceResult
	ID      string
	Error   error
}

// ExecuteStatsAsync aggregates history in a goroutine
func ExecuteStatsAsync(ctx context.Context, store *Store) <-chan AsyncQueryResult {
	resultChan := make(chan AsyncQueryResult, 1)

	go func() {
		defer close(resultChan)

		queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		stats, err := store.Stats(queryCtx)
		select {
		case resultChan <- AsyncQueryResult{Stats: stats, Error: err}:
		case <-ctx.Done():
		}
	}()

	return resultChan
}

// ExecuteRecentAsync loads recent races in a goroutine
func ExecuteRecentAsync(ctx context.Context, store *Store, limit int) <-chan AsyncQueryResult {
	resultChan := make(chan AsyncQueryResult, 1)

	go func() {
		defer close(resultChan)

		queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		results, err := store.Recent(queryCtx, limit)
		select {
		case resultChan <- AsyncQueryResult{Results: results, Error: err}:
		case <-ctx.Done():
		}
	}()

	return resultChan
}

// ExecuteSaveAsync records a race result in a goroutine
func ExecuteSaveAsync(ctx context.Context, store *Store, result models.RaceResult) <-chan AsyncQueryResult {
	resultChan := make(chan AsyncQueryResult, 1)

	go func() {
		defer close(resultChan)

		queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		id, err := store.Save(queryCtx, result)
		select {
		case resultChan <- AsyncQueryResult{ID: id, Error: err}:
		case <-ctx.Done():
		}
	}()

	return resultChan
}

// FetchStatsAsync waits for ExecuteStatsAsync or cancellation
func FetchStatsAsync(ctx context.Context, store *Store) (models.Stats, error) {
	select {
	case result, ok := <-ExecuteStatsAsync(ctx, store):
		if !ok {
			return models.Stats{}, ctx.Err()
		}
		return result.Stats, result.Error
	case <-ctx.Done():
		return models.Stats{}, ctx.Err()
	}
}

// FetchRecentAsync waits for ExecuteRecentAsync or cancellation
func FetchRecentAsync(ctx context.Context, store *Store, limit int) ([]models.RaceResult, error) {
	select {
	case result, ok := <-ExecuteRecentAsync(ctx, store, limit):
		if !ok {
			return nil, ctx.Err()
		}
		return result.Results, result.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
