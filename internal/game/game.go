// Package game ties race sessions to progression: it starts rounds, feeds
// keystrokes to the active session and banks the score when a round ends.
package game

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/strrl/typerace/internal/level"
	"github.com/strrl/typerace/internal/race"
	"github.com/strrl/typerace/internal/text"
	"github.com/strrl/typerace/pkg/models"
)

// State is the screen the game is on.
type State int

const (
	StateMenu State = iota
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Recorder persists finished races. Record must not block.
type Recorder interface {
	Record(result models.RaceResult)
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder records every completed race.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithClock sets the time source handed to each session.
func WithClock(clock race.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLevels replaces the default milestone table.
func WithLevels(s *level.System) Option {
	return func(c *Controller) {
		if s != nil {
			c.levels = s
		}
	}
}

// Controller owns at most one running session and the cumulative progress
// across rounds. It is driven from a single goroutine.
type Controller struct {
	provider text.Provider
	recorder Recorder
	clock    race.Clock
	levels   *level.System

	current  *race.Session
	previous *race.Session

	totalScore uint64
	playCount  int
	state      State
}

// New creates a Controller in the menu state. The provider is wrapped with
// text.WithFallback so starting a round never fails.
func New(provider text.Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: text.WithFallback(provider),
		levels:   level.Default(),
		state:    StateMenu,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch asks the provider for the next target line. It does not touch the
// controller's state and may run on another goroutine.
func (c *Controller) Fetch(ctx context.Context) models.Text {
	t, _ := c.provider.Fetch(ctx)
	return t
}

// Begin starts a round on t, replacing any session in progress.
func (c *Controller) Begin(t models.Text) {
	var opts []race.Option
	if c.clock != nil {
		opts = append(opts, race.WithClock(c.clock))
	}

	c.current = race.New(t.Body, t.Source, opts...)
	c.playCount++
	c.state = StateRunning
	log.Debug().Str("source", t.Source).Int("length", len(t.Body)).Msg("round started")

	if c.current.Completed() {
		c.complete()
	}
}

// Start fetches a target line and begins a round on it.
func (c *Controller) Start(ctx context.Context) {
	c.Begin(c.Fetch(ctx))
}

// Insert feeds one keystroke to the running session. It reports whether the
// character was accepted; without a running session nothing is accepted.
func (c *Controller) Insert(r rune) bool {
	if c.current == nil {
		return false
	}
	if !c.current.Insert(r) {
		return false
	}
	if c.current.Completed() {
		c.complete()
	}
	return true
}

func (c *Controller) complete() {
	session := c.current
	score := session.Score()

	c.totalScore = saturatingAdd(c.totalScore, score)
	c.levels.AddExperience(score)

	result := session.Result()
	if c.recorder != nil {
		c.recorder.Record(result)
	}
	log.Info().
		Str("source", result.Source).
		Float64("wpm", result.WPM).
		Uint64("score", score).
		Uint64("level", c.levels.Level()).
		Msg("round complete")

	c.previous = session
	c.current = nil
	c.state = StateComplete
}

// Abandon drops the running session without scoring it.
func (c *Controller) Abandon() {
	if c.current != nil {
		log.Debug().Str("source", c.current.Source()).Msg("round abandoned")
	}
	c.current = nil
	c.state = StateMenu
}

// Restore seeds progress from persisted history.
func (c *Controller) Restore(stats models.Stats) {
	levels, err := level.New(c.levels.Milestones())
	if err != nil {
		levels = level.Default()
	}
	levels.AddExperience(stats.TotalScore)

	c.levels = levels
	c.totalScore = stats.TotalScore
	c.playCount = stats.Races
}

// Current returns the running session, or nil.
func (c *Controller) Current() *race.Session { return c.current }

// Previous returns the most recently completed session, or nil.
func (c *Controller) Previous() *race.Session { return c.previous }

// LastResult returns the result of the most recently completed round.
func (c *Controller) LastResult() (models.RaceResult, bool) {
	if c.previous == nil {
		return models.RaceResult{}, false
	}
	return c.previous.Result(), true
}

// State returns the current screen.
func (c *Controller) State() State { return c.state }

// TotalScore is the score banked across all completed rounds.
func (c *Controller) TotalScore() uint64 { return c.totalScore }

// PlayCount is the number of rounds started, including restored ones.
func (c *Controller) PlayCount() int { return c.playCount }

// Level returns the current level.
func (c *Controller) Level() uint64 { return c.levels.Level() }

// Experience returns accumulated experience.
func (c *Controller) Experience() uint64 { return c.levels.Experience() }

// Progress returns the bar toward the next milestone.
func (c *Controller) Progress() level.ProgressBar { return level.Progress(c.levels) }

func saturatingAdd(a, b uint64) uint64 {
	if a+b < a {
		return ^uint64(0)
	}
	return a + b
}
