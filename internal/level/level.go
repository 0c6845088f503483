// Package level turns accumulated score into a level and progress toward the
// next milestone.
package level

import (
	"errors"
	"fmt"
)

// DefaultMilestones are the cumulative score thresholds of each level boundary.
var DefaultMilestones = []uint64{100, 10000, 20000, 30000}

// ErrNoMilestones is returned when a milestone table is empty.
var ErrNoMilestones = errors.New("milestone table is empty")

// System tracks experience against an ascending milestone table.
type System struct {
	experience uint64
	milestones []uint64
}

// New creates a System with zero experience. Milestones must be strictly ascending.
func New(milestones []uint64) (*System, error) {
	if len(milestones) == 0 {
		return nil, ErrNoMilestones
	}
	for i := 1; i < len(milestones); i++ {
		if milestones[i] <= milestones[i-1] {
			return nil, fmt.Errorf("milestones must be strictly ascending: %d follows %d", milestones[i], milestones[i-1])
		}
	}

	table := make([]uint64, len(milestones))
	copy(table, milestones)
	return &System{milestones: table}, nil
}

// Default creates a System using DefaultMilestones.
func Default() *System {
	s, _ := New(DefaultMilestones)
	return s
}

// Current returns a default System seeded with score.
func Current(score uint64) *System {
	s := Default()
	s.AddExperience(score)
	return s
}

// AddExperience adds amount, saturating instead of wrapping around.
func (s *System) AddExperience(amount uint64) {
	if s.experience+amount < s.experience {
		s.experience = ^uint64(0)
		return
	}
	s.experience += amount
}

// Experience returns the accumulated experience.
func (s *System) Experience() uint64 { return s.experience }

// Level is the number of milestones already reached.
func (s *System) Level() uint64 {
	var n uint64
	for _, m := range s.milestones {
		if s.experience < m {
			break
		}
		n++
	}
	return n
}

// NextMilestone returns the first milestone not yet reached, or false once
// every milestone has been passed.
func (s *System) NextMilestone() (uint64, bool) {
	for _, m := range s.milestones {
		if s.experience < m {
			return m, true
		}
	}
	return 0, false
}

// Milestones returns a copy of the milestone table.
func (s *System) Milestones() []uint64 {
	out := make([]uint64, len(s.milestones))
	copy(out, s.milestones)
	return out
}

// ProgressBar is the progress toward the next milestone.
type ProgressBar struct {
	Max   uint64 // next milestone, 0 when all are passed
	Value uint64
}

// Progress builds the bar for the current experience.
func Progress(s *System) ProgressBar {
	next, _ := s.NextMilestone()
	return ProgressBar{Max: next, Value: s.Experience()}
}

// Fraction is Value/Max clamped to [0, 1]. A bar without a next milestone is full.
func (p ProgressBar) Fraction() float64 {
	if p.Max == 0 {
		return 1
	}
	f := float64(p.Value) / float64(p.Max)
	if f > 1 {
		return 1
	}
	return f
}

// Percent is Fraction scaled to [0, 100].
func (p ProgressBar) Percent() float64 {
	return p.Fraction() * 100
}
