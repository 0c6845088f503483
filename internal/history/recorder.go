package history

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/strrl/typerace/pkg/models"
)

// Recorder saves race results in the background so callers on the input
// path never wait on the database.
type Recorder struct {
	store *Store
	wg    sync.WaitGroup

	mu      sync.Mutex
	lastErr error
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Record starts saving result. Failures are logged and kept for LastError.
func (r *Recorder) Record(result models.RaceResult) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		res, ok := <-ExecuteSaveAsync(context.Background(), r.store, result)
		if !ok {
			return
		}
		if res.Error != nil {
			log.Error().Err(res.Error).Str("source", result.Source).Msg("failed to record race")
			r.mu.Lock()
			r.lastErr = res.Error
			r.mu.Unlock()
			return
		}
		log.Debug().Str("id", res.ID).Uint64("score", result.Score).Msg("race recorded")
	}()
}

// Wait blocks until every pending Record has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// LastError returns the most recent save failure, if any.
func (r *Recorder) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
