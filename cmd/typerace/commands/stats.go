package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strrl/typerace/internal/level"
)

// NewStatsCommand creates the stats command
func NewStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level and totals from race history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return runStats(cmd, a)
		},
	}
}

func runStats(cmd *cobra.Command, a *app) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	levels, err := level.New(a.cfg.Milestones)
	if err != nil {
		return err
	}
	levels.AddExperience(stats.TotalScore)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Races: %d\n", stats.Races)
	fmt.Fprintf(out, "Total score: %d\n", stats.TotalScore)
	fmt.Fprintf(out, "Best WPM: %.1f\n", stats.BestWPM)
	fmt.Fprintf(out, "Average WPM: %.1f\n", stats.AverageWPM)
	if stats.LastPlayed.IsZero() {
		fmt.Fprintln(out, "Last played: never")
	} else {
		fmt.Fprintf(out, "Last played: %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(out, "Level: %d\n", levels.Level())
	if next, ok := levels.NextMilestone(); ok {
		bar := level.Progress(levels)
		fmt.Fprintf(out, "Next milestone: %d (%d/%d, %.0f%%)\n", next, bar.Value, bar.Max, bar.Percent())
	} else {
		fmt.Fprintln(out, "Next milestone: all milestones reached")
	}

	return nil
}
