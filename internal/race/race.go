// Package race implements a single typing round: keystroke validation against a
// target line, timing, and the WPM and score derived from it.
//
// A Session moves through three states. It starts New with no input, becomes
// Running once the first correct character is accepted, and ends Completed when
// the typed input equals the target. Completed is terminal; a new round needs a
// new Session.
//
// A Session is owned by exactly one caller and is not safe for concurrent use.
package race

import (
	"strings"
	"time"

	"github.com/strrl/typerace/pkg/models"
)

// ScoreMultiplier converts the WPM value into score points.
const ScoreMultiplier = 20

// State is the lifecycle position of a Session.
type State int

const (
	StateNew State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Option configures a Session at creation.
type Option func(*Session)

// WithClock replaces time.Now as the session's time source.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Session is one round of typing practice.
type Session struct {
	target []rune
	source string
	typed  []rune

	startedAt *time.Time
	endedAt   *time.Time

	now Clock
}

// New creates a session for targetText in state New. An empty target has
// nothing left to type, so the session is Completed as soon as it exists.
func New(targetText, sourceLabel string, opts ...Option) *Session {
	s := &Session{
		target: []rune(targetText),
		source: sourceLabel,
		typed:  make([]rune, 0, len(targetText)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.target) == 0 {
		end := s.now()
		s.endedAt = &end
	}
	return s
}

// Insert offers the next character. It returns true and appends c when c is
// the next expected character of the target; otherwise nothing changes.
// Calls on a session whose input already fills the target are rejected.
func (s *Session) Insert(c rune) bool {
	if len(s.typed) >= len(s.target) {
		return false
	}
	if s.target[len(s.typed)] != c {
		return false
	}

	now := s.now()
	if s.startedAt == nil {
		start := now
		s.startedAt = &start
	}

	s.typed = append(s.typed, c)

	if len(s.typed) == len(s.target) {
		end := now
		// the end of a round never precedes its start, even if the clock stepped back
		if end.Before(*s.startedAt) {
			end = *s.startedAt
		}
		s.endedAt = &end
	}
	return true
}

// Completed reports whether the whole target has been typed.
func (s *Session) Completed() bool {
	return s.endedAt != nil
}

// State reports where the session is in its lifecycle.
func (s *Session) State() State {
	switch {
	case s.endedAt != nil:
		return StateCompleted
	case s.startedAt != nil:
		return StateRunning
	default:
		return StateNew
	}
}

// Elapsed is the time between the first accepted character and completion,
// or now while the session is still running. It is never negative.
func (s *Session) Elapsed() time.Duration {
	if s.startedAt == nil {
		return 0
	}

	end := s.now()
	if s.endedAt != nil {
		end = *s.endedAt
	}

	elapsed := end.Sub(*s.startedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// WordsPerMinute returns the number of whitespace-delimited words typed so far
// multiplied by the elapsed seconds. The value grows while the session runs
// and freezes at completion.
//
// Despite the name this is not a per-minute rate: the product grows the longer
// a round takes. Existing scores depend on it, so changing the formula has to be
// a deliberate migration, not a drive-by fix.
func (s *Session) WordsPerMinute() float64 {
	if s.startedAt == nil {
		return 0
	}
	return float64(s.WordCount()) * s.Elapsed().Seconds()
}

// Score is WordsPerMinute scaled by ScoreMultiplier and truncated. It is
// evaluated against the current state on every call.
func (s *Session) Score() uint64 {
	return uint64(s.WordsPerMinute() * ScoreMultiplier)
}

// WordCount counts whitespace-delimited words in the typed input.
func (s *Session) WordCount() int {
	return len(strings.Fields(string(s.typed)))
}

// Target returns the full line to reproduce.
func (s *Session) Target() string { return string(s.target) }

// Source returns the provenance label of the target.
func (s *Session) Source() string { return s.source }

// Typed returns the accepted input so far. It is always a prefix of Target.
func (s *Session) Typed() string { return string(s.typed) }

// Remaining returns the part of the target still to be typed.
func (s *Session) Remaining() string { return string(s.target[len(s.typed):]) }

// Next returns the next expected character, or false when nothing is left.
func (s *Session) Next() (rune, bool) {
	if len(s.typed) >= len(s.target) {
		return 0, false
	}
	return s.target[len(s.typed)], true
}

// Progress is the fraction of the target typed, in [0, 1].
func (s *Session) Progress() float64 {
	if len(s.target) == 0 {
		return 1
	}
	return float64(len(s.typed)) / float64(len(s.target))
}

// StartedAt returns when the first character was accepted.
func (s *Session) StartedAt() (time.Time, bool) {
	if s.startedAt == nil {
		return time.Time{}, false
	}
	return *s.startedAt, true
}

// EndedAt returns when the target was completed.
func (s *Session) EndedAt() (time.Time, bool) {
	if s.endedAt == nil {
		return time.Time{}, false
	}
	return *s.endedAt, true
}

// Result snapshots the session as plain data. ID is left for the recorder.
func (s *Session) Result() models.RaceResult {
	r := models.RaceResult{
		Source: s.source,
		Target: string(s.target),
		Words:  s.WordCount(),
		WPM:    s.WordsPerMinute(),
		Score:  s.Score(),
	}
	if start, ok := s.StartedAt(); ok {
		r.StartedAt = start
	}
	if end, ok := s.EndedAt(); ok {
		r.EndedAt = end
	}
	return r
}
