package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/strrl/typerace/internal/game"
	"github.com/strrl/typerace/internal/history"
	"github.com/strrl/typerace/pkg/models"
)

// Message types for async operations
type (
	// TextLoadedMsg carries the target line for a new round
	TextLoadedMsg struct {
		RequestID int
		Text      models.Text
	}

	// StatsLoadedMsg contains aggregated history
	StatsLoadedMsg struct {
		Stats models.Stats
		Error error
	}

	// RecentLoadedMsg contains the latest recorded races
	RecentLoadedMsg struct {
		Results []models.RaceResult
		Error   error
	}

	// TickMsg is sent periodically for the spinner and live WPM
	TickMsg time.Time
)

// Commands for async operations

// fetchTextCmd asks the provider for a target line. The controller's
// provider never fails, so the message always carries a line.
func fetchTextCmd(ctx context.Context, g *game.Controller, timeout time.Duration, requestID int) tea.Cmd {
	return func() tea.Msg {
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return TextLoadedMsg{
			RequestID: requestID,
			Text:      g.Fetch(fetchCtx),
		}
	}
}

// loadStatsCmd aggregates history asynchronously
func loadStatsCmd(ctx context.Context, store *history.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := history.FetchStatsAsync(ctx, store)
		return StatsLoadedMsg{
			Stats: stats,
			Error: err,
		}
	}
}

// loadRecentCmd loads recent races once pending saves have landed
func loadRecentCmd(ctx context.Context, store *history.Store, recorder *history.Recorder, limit int) tea.Cmd {
	return func() tea.Msg {
		if recorder != nil {
			recorder.Wait()
		}
		results, err := history.FetchRecentAsync(ctx, store, limit)
		return RecentLoadedMsg{
			Results: results,
			Error:   err,
		}
	}
}

// tickCmd creates a ticker for animation and the live WPM readout
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
