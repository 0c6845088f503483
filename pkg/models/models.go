package models

import "time"

// Text is a target line together with where it came from
type Text struct {
	Source string // Human readable provenance, display only
	Body   string
}

// RaceResult is a plain-data snapshot of a completed race
type RaceResult struct {
	ID        string
	Source    string
	Target    string
	Words     int
	WPM       float64
	Score     uint64
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the race took from first keystroke to completion
func (r RaceResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Stats aggregates all recorded races
type Stats struct {
	Races      int
	TotalScore uint64
	BestWPM    float64
	AverageWPM float64
	LastPlayed time.Time
}
