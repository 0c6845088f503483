package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/strrl/typerace/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.duckdb"))
	if err != nil {
		t.Skipf("Skipping test, DuckDB unavailable: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func result(source string, wpm float64, score uint64, endedAt time.Time) models.RaceResult {
	return models.RaceResult{
		Source:    source,
		Target:    "some target text",
		Words:     3,
		WPM:       wpm,
		Score:     score,
		StartedAt: endedAt.Add(-10 * time.Second),
		EndedAt:   endedAt,
	}
}

func TestSaveAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first, err := store.Save(ctx, result("Corpus", 30, 600, base))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first == "" {
		t.Fatal("Save() should generate an ID")
	}

	withID := result("Random", 45.5, 910, base.Add(time.Minute))
	withID.ID = "fixed-id"
	second, err := store.Save(ctx, withID)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if second != "fixed-id" {
		t.Errorf("Save() id = %q, want %q", second, "fixed-id")
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d races, want 2", len(recent))
	}

	newest := recent[0]
	if newest.ID != "fixed-id" || newest.Source != "Random" {
		t.Errorf("newest race = %+v, want fixed-id from Random", newest)
	}
	if newest.Score != 910 || newest.WPM != 45.5 || newest.Words != 3 {
		t.Errorf("newest race values = %+v", newest)
	}
	if !newest.EndedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("EndedAt = %v, want %v", newest.EndedAt, base.Add(time.Minute))
	}
	if newest.Duration() != 10*time.Second {
		t.Errorf("Duration() = %v, want 10s", newest.Duration())
	}
	if recent[1].ID != first {
		t.Errorf("older race id = %q, want %q", recent[1].ID, first)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := store.Save(ctx, result("Corpus", float64(i), uint64(i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent(3) returned %d races", len(recent))
	}
	if recent[0].Score != 4 {
		t.Errorf("newest score = %d, want 4", recent[0].Score)
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty store error = %v", err)
	}
	if empty.Races != 0 || empty.TotalScore != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Stats() on empty store = %+v", empty)
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, wpm := range []float64{10, 20, 60} {
		if _, err := store.Save(ctx, result("Corpus", wpm, uint64(wpm*20), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Races != 3 {
		t.Errorf("Races = %d, want 3", stats.Races)
	}
	if stats.TotalScore != 1800 {
		t.Errorf("TotalScore = %d, want 1800", stats.TotalScore)
	}
	if stats.BestWPM != 60 {
		t.Errorf("BestWPM = %v, want 60", stats.BestWPM)
	}
	if stats.AverageWPM != 30 {
		t.Errorf("AverageWPM = %v, want 30", stats.AverageWPM)
	}
	if !stats.LastPlayed.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("LastPlayed = %v, want %v", stats.LastPlayed, base.Add(2*time.Hour))
	}
}

func TestAsyncQueries(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved := <-ExecuteSaveAsync(ctx, store, result("Corpus", 12, 240, time.Now()))
	if saved.Error != nil {
		t.Fatalf("ExecuteSaveAsync() error = %v", saved.Error)
	}

	stats, err := FetchStatsAsync(ctx, store)
	if err != nil {
		t.Fatalf("FetchStatsAsync() error = %v", err)
	}
	if stats.Races != 1 || stats.TotalScore != 240 {
		t.Errorf("FetchStatsAsync() = %+v", stats)
	}

	recent, err := FetchRecentAsync(ctx, store, 5)
	if err != nil {
		t.Fatalf("FetchRecentAsync() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ID != saved.ID {
		t.Errorf("FetchRecentAsync() = %+v, want race %q", recent, saved.ID)
	}
}

func TestAsyncCancellation(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		_, _ = FetchStatsAsync(ctx, store)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("FetchStatsAsync did not return after cancellation")
	}
}

func TestClosedStore(t *testing.T) {
	var store Store
	if _, err := store.Save(context.Background(), models.RaceResult{}); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Save() error = %v, want ErrNoDatabase", err)
	}
	if _, err := store.Recent(context.Background(), 1); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Recent() error = %v, want ErrNoDatabase", err)
	}
	if _, err := store.Stats(context.Background()); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Stats() error = %v, want ErrNoDatabase", err)
	}
}

func TestRecorderSavesInBackground(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store)

	for i := 0; i < 3; i++ {
		rec.Record(result("Corpus", 30, uint64(100*(i+1)), time.Date(2024, 1, 1, 10, i, 0, 0, time.UTC)))
	}
	rec.Wait()

	if err := rec.LastError(); err != nil {
		t.Fatalf("LastError() = %v", err)
	}
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Races != 3 || stats.TotalScore != 600 {
		t.Errorf("Stats() = %+v, want 3 races totalling 600", stats)
	}
}

func TestRecorderKeepsLastError(t *testing.T) {
	rec := NewRecorder(NewStore(nil))
	rec.Record(models.RaceResult{Source: "Random"})
	rec.Wait()

	if !errors.Is(rec.LastError(), ErrNoDatabase) {
		t.Errorf("LastError() = %v, want ErrNoDatabase", rec.LastError())
	}
}
