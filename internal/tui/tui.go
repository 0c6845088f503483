// Package tui is the interactive typing game built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog/log"
	"github.com/strrl/typerace/internal/game"
	"github.com/strrl/typerace/internal/history"
	"github.com/strrl/typerace/internal/race"
	"github.com/strrl/typerace/pkg/models"
)

const (
	defaultFetchTimeout = 5 * time.Second
	levelBarWidth       = 20
	defaultTextWidth    = 60
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63"))
	typedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Underline(true)
	remainingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	valueStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Options configures the interactive game.
type Options struct {
	Game *game.Controller
	// Store and Recorder are nil when history is disabled.
	Store        *history.Store
	Recorder     *history.Recorder
	FetchTimeout time.Duration
	RecentLimit  int
}

type model struct {
	ctx  context.Context
	game *game.Controller

	store        *history.Store
	recorder     *history.Recorder
	fetchTimeout time.Duration
	recentLimit  int

	// Loading state for the next target line
	loading   bool
	requestID int
	indicator *LoadingIndicator

	// History pane
	showHistory  bool
	loadingState history.LoadingState
	recent       []models.RaceResult
	viewport     viewport.Model
	ready        bool

	misses int
	status string
	err    error
	width  int
	height int
}

func initialModel(ctx context.Context, opts Options) model {
	g := opts.Game
	if g == nil {
		g = game.New(nil)
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return model{
		ctx:          ctx,
		game:         g,
		store:        opts.Store,
		recorder:     opts.Recorder,
		fetchTimeout: timeout,
		recentLimit:  opts.RecentLimit,
		indicator:    NewLoadingIndicator("Fetching text..."),
		loadingState: history.StateIdle,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.store != nil {
		cmds = append(cmds, loadStatsCmd(m.ctx, m.store))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.updateViewport()
		return m, nil

	case TickMsg:
		if m.loading {
			m.indicator.Tick()
		}
		return m, tickCmd()

	case TextLoadedMsg:
		if !m.loading || msg.RequestID != m.requestID {
			// cancelled or superseded
			return m, nil
		}
		m.loading = false
		m.misses = 0
		m.status = ""
		m.game.Begin(msg.Text)
		m.afterInput()
		return m, nil

	case StatsLoadedMsg:
		if msg.Error != nil {
			log.Warn().Err(msg.Error).Msg("failed to load history stats")
			m.err = msg.Error
			return m, nil
		}
		// rounds played this run already count toward the controller's totals
		if m.game.PlayCount() == 0 {
			m.game.Restore(msg.Stats)
		}
		return m, nil

	case RecentLoadedMsg:
		m.loadingState = history.StateIdle
		if msg.Error != nil {
			log.Warn().Err(msg.Error).Msg("failed to load recent races")
			m.err = msg.Error
			m.loadingState = history.StateError
		} else {
			m.err = nil
			m.recent = msg.Results
		}
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHistory {
		switch msg.String() {
		case "esc", "h", "q":
			m.showHistory = false
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.loading {
		if msg.Type == tea.KeyEsc {
			m.loading = false
			m.requestID++
		}
		return m, nil
	}

	if m.game.State() == game.StateRunning {
		return m.handleTyping(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "s":
		return m.startRound()
	case "h":
		return m.openHistory()
	}
	return m, nil
}

func (m model) handleTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.game.Abandon()
		m.status = "Race abandoned"
		return m, nil
	case tea.KeySpace:
		m.insert(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if m.game.State() != game.StateRunning {
				break
			}
			m.insert(r)
		}
	}
	m.afterInput()
	return m, nil
}

func (m *model) insert(r rune) {
	if !m.game.Insert(r) {
		m.misses++
	}
}

func (m *model) afterInput() {
	if m.game.State() != game.StateComplete {
		return
	}
	if result, ok := m.game.LastResult(); ok {
		m.status = fmt.Sprintf("Finished: %.1f WPM, %d points", result.WPM, result.Score)
	}
}

func (m model) startRound() (tea.Model, tea.Cmd) {
	m.loading = true
	m.requestID++
	m.indicator.SetMessage("Fetching text...")
	return m, fetchTextCmd(m.ctx, m.game, m.fetchTimeout, m.requestID)
}

func (m model) openHistory() (tea.Model, tea.Cmd) {
	m.showHistory = true
	if m.store == nil {
		m.status = "History is disabled"
		m.updateViewport()
		return m, nil
	}
	m.loadingState = history.StateLoadingRecent
	m.updateViewport()
	return m, loadRecentCmd(m.ctx, m.store, m.recorder, m.recentLimit)
}

func (m *model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
}

func (m model) renderHistory() string {
	if m.store == nil {
		return helpStyle.Render("History is disabled.")
	}
	if m.loadingState == history.StateLoadingRecent {
		return helpStyle.Render("Loading recent races...")
	}
	if m.loadingState == history.StateError && m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if len(m.recent) == 0 {
		return helpStyle.Render("No races recorded yet.")
	}

	var content strings.Builder
	for _, r := range m.recent {
		content.WriteString(fmt.Sprintf("%s  %7.1f wpm  %6d pts  %s\n",
			r.EndedAt.Format("2006-01-02 15:04"),
			r.WPM,
			r.Score,
			truncate(r.Source, 40)))
	}
	return content.String()
}

func (m model) View() string {
	header := headerStyle.Render(" typerace ")
	footer := helpStyle.Render(m.helpLine())

	if m.showHistory {
		body := m.renderHistory()
		if m.ready {
			body = m.viewport.View()
		}
		return fmt.Sprintf("%s\n%s\n%s", header, body, footer)
	}

	if m.loading {
		height := m.height - 4
		if height < 1 {
			height = 1
		}
		return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.renderLevel(), LoadingOverlay(m.width, height, m.indicator), footer)
	}

	var body string
	switch m.game.State() {
	case game.StateRunning:
		body = m.renderRace(m.game.Current())
	case game.StateComplete:
		body = m.renderResult(m.game.Previous())
	default:
		body = m.renderMenu()
	}

	lines := []string{header, m.renderLevel(), "", body, ""}
	if m.status != "" {
		lines = append(lines, labelStyle.Render(m.status))
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.recorder != nil {
		if err := m.recorder.LastError(); err != nil {
			lines = append(lines, errorStyle.Render(fmt.Sprintf("Error saving race: %v", err)))
		}
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n")
}

func (m model) renderLevel() string {
	return fmt.Sprintf("%s %s  %s  %s %s  %s %s",
		labelStyle.Render("Level"),
		valueStyle.Render(fmt.Sprint(m.game.Level())),
		renderLevelBar(m.game.Progress(), levelBarWidth),
		labelStyle.Render("Total"),
		valueStyle.Render(fmt.Sprint(m.game.TotalScore())),
		labelStyle.Render("Games"),
		valueStyle.Render(fmt.Sprint(m.game.PlayCount())))
}

func (m model) renderMenu() string {
	return labelStyle.Render("Press enter to start a race.")
}

func (m model) textWidth() int {
	if m.width > 4 {
		return m.width - 2
	}
	return defaultTextWidth
}

func (m model) renderRace(s *race.Session) string {
	if s == nil {
		return m.renderMenu()
	}

	text := typedStyle.Render(s.Typed())
	remaining := []rune(s.Remaining())
	if len(remaining) > 0 {
		text += cursorStyle.Render(string(remaining[0]))
		text += remainingStyle.Render(string(remaining[1:]))
	}

	stats := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("WPM"),
		valueStyle.Render(fmt.Sprintf("%.1f", s.WordsPerMinute())),
		labelStyle.Render("Score"),
		valueStyle.Render(fmt.Sprint(s.Score())),
		labelStyle.Render("Time"),
		valueStyle.Render(fmt.Sprintf("%.1fs", s.Elapsed().Seconds())),
		labelStyle.Render("Misses"),
		valueStyle.Render(fmt.Sprint(m.misses)))

	return strings.Join([]string{
		sourceStyle.Render(s.Source()),
		wordwrap.String(text, m.textWidth()),
		"",
		stats,
	}, "\n")
}

func (m model) renderResult(s *race.Session) string {
	if s == nil {
		return m.renderMenu()
	}

	r := s.Result()
	return strings.Join([]string{
		sourceStyle.Render(r.Source),
		typedStyle.Render(wordwrap.String(r.Target, m.textWidth())),
		"",
		fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
			labelStyle.Render("WPM"),
			valueStyle.Render(fmt.Sprintf("%.1f", r.WPM)),
			labelStyle.Render("Score"),
			valueStyle.Render(fmt.Sprint(r.Score)),
			labelStyle.Render("Time"),
			valueStyle.Render(fmt.Sprintf("%.1fs", r.Duration().Seconds())),
			labelStyle.Render("Misses"),
			valueStyle.Render(fmt.Sprint(m.misses))),
	}, "\n")
}

func (m model) helpLine() string {
	switch {
	case m.showHistory:
		return "↑/↓: scroll • esc: back • ctrl+c: quit"
	case m.loading:
		return "esc: cancel • ctrl+c: quit"
	case m.game.State() == game.StateRunning:
		return "type the text • esc: abandon • ctrl+c: quit"
	case m.game.State() == game.StateComplete:
		return "enter: play again • h: history • q: quit"
	default:
		return "enter: start • h: history • q: quit"
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Run starts the interactive game and blocks until the player quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(
		initialModel(ctx, opts),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
