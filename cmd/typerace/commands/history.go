package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strrl/typerace/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent races without the TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return runHistory(cmd, a, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultRecentLimit, "Number of races to show")

	return cmd
}

func runHistory(cmd *cobra.Command, a *app, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to fetch races: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No races recorded yet")
		return nil
	}

	fmt.Fprintln(out, "Recent races:")
	fmt.Fprintln(out, "=============")
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s\n", i+1, r.EndedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "   Source: %s\n", r.Source)
		fmt.Fprintf(out, "   WPM: %.1f  Score: %d  Time: %.1fs\n", r.WPM, r.Score, r.Duration().Seconds())
		fmt.Fprintf(out, "   Text: %s\n", r.Target)
		fmt.Fprintln(out)
	}

	return nil
}
