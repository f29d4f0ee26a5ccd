package srs

import (
	"math"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
)

// State is the scheduling state of one item. DueCycle is only written by
// grading.
type State struct {
	Repetitions    int     `yaml:"repetitions" json:"repetitions" db:"repetitions"`
	Interval       float64 `yaml:"interval" json:"interval" db:"interval_cycles"`
	EasinessFactor float64 `yaml:"easiness_factor" json:"easinessFactor" db:"ease_factor"`
	DueCycle       float64 `yaml:"due_cycle" json:"dueCycle" db:"due_cycle"`
	// Lapsed is set when the last grade was incorrect.
	Lapsed bool `yaml:"lapsed,omitempty" json:"lapsed,omitempty" db:"lapsed"`
}

// NewState returns the state of an item that was never reviewed. It is due
// immediately.
func NewState() State {
	return State{
		EasinessFactor: DefaultEasinessFactor,
	}
}

// Valid reports whether the state could have been produced by grading.
func (s State) Valid() bool {
	for _, v := range []float64{s.Interval, s.EasinessFactor, s.DueCycle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.Repetitions >= 0 &&
		s.Interval >= 0 &&
		s.EasinessFactor >= MinEasinessFactor
}

// Tally holds the cumulative counters of an item.
type Tally struct {
	Right int `yaml:"right" json:"right" db:"right_count"`
	Wrong int `yaml:"wrong" json:"wrong" db:"wrong_count"`
}

func (t *Tally) record(correct bool) {
	if correct {
		t.Right++
	} else {
		t.Wrong++
	}
}

// Item is a catalog entry with its review state.
type Item struct {
	Entry catalog.Entry
	State State
	Tally Tally
}

func NewItem(entry catalog.Entry) *Item {
	return &Item{
		Entry: entry,
		State: NewState(),
	}
}

func (i *Item) ID() string {
	return i.Entry.ID
}
