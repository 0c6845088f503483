package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strrl/typerace/internal/text"
)

// NewTextCommand creates the text command
func NewTextCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "text",
		Short: "Fetch and print one target line",
		Long: `Fetch one line from the configured provider and print it after normalization,
exactly as a race would present it. Provider failures fall back to a fixed line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return runText(cmd, a)
		},
	}
}

func runText(cmd *cobra.Command, a *app) error {
	provider, err := text.NewProvider(a.cfg.TextOptions())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.FetchTimeout)
	defer cancel()

	t, err := provider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch text: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source: %s\n", t.Source)
	fmt.Fprintf(out, "Words: %d\n", len(strings.Fields(t.Body)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Body)
	return nil
}
