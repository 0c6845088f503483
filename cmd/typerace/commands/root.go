package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strrl/typerace/internal/config"
	"github.com/strrl/typerace/internal/game"
	"github.com/strrl/typerace/internal/history"
	"github.com/strrl/typerace/internal/level"
	"github.com/strrl/typerace/internal/logging"
	"github.com/strrl/typerace/internal/text"
	"github.com/strrl/typerace/internal/tui"
)

// app holds flag values and the state loaded before any command runs
type app struct {
	configPath string
	provider   string
	corpusFile string
	logLevel   string
	noHistory  bool

	cfg       *config.Config
	logCloser io.Closer
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "typerace",
		Short: "Practice typing speed against short lines of text",
		Long: `typerace shows a line of text and times how quickly you type it.
Only correct keystrokes are accepted. Scores add up to levels across games.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: a.runTUI,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/typerace/config.toml)")
	flags.StringVar(&a.provider, "provider", "", "Text provider: wikipedia, corpus or static")
	flags.StringVar(&a.corpusFile, "corpus", "", "File of lines for the corpus provider")
	flags.BoolVar(&a.noHistory, "no-history", false, "Do not read or record race history")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(NewHistoryCommand(a))
	rootCmd.AddCommand(NewStatsCommand(a))
	rootCmd.AddCommand(NewTextCommand(a))

	return rootCmd
}

// Run executes the root command and returns the process exit code
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the root command
func Execute() {
	os.Exit(Run())
}

func (a *app) load(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.CorpusFile = a.corpusFile
		if !flags.Changed("provider") {
			cfg.Provider = text.ProviderCorpus
		}
	}
	if flags.Changed("provider") {
		cfg.Provider = a.provider
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if a.noHistory {
		cfg.History.Enabled = false
	}

	closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	a.logCloser = closer
	a.cfg = cfg

	log.Debug().
		Str("command", cmd.Name()).
		Str("provider", cfg.Provider).
		Bool("history", cfg.History.Enabled).
		Msg("configuration loaded")
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

func (a *app) openHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, errors.New("history is disabled")
	}
	store, err := history.OpenShared(a.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	defer a.close()

	provider, err := text.NewProvider(a.cfg.TextOptions())
	if err != nil {
		return err
	}
	levels, err := level.New(a.cfg.Milestones)
	if err != nil {
		return err
	}

	gameOpts := []game.Option{game.WithLevels(levels)}
	tuiOpts := tui.Options{FetchTimeout: a.cfg.FetchTimeout}

	if a.cfg.History.Enabled {
		store, err := a.openHistory()
		if err != nil {
			// play on without history
			log.Error().Err(err).Msg("history unavailable")
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		} else {
			defer store.Close()
			recorder := history.NewRecorder(store)
			defer recorder.Wait()

			gameOpts = append(gameOpts, game.WithRecorder(recorder))
			tuiOpts.Store = store
			tuiOpts.Recorder = recorder
		}
	}

	tuiOpts.Game = game.New(provider, gameOpts...)
	if err := tui.Run(cmd.Context(), tuiOpts); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
