package session

import (
	"slices"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

type State string

const (
	// StateNoSelection is shown instead of a card when the pool is empty.
	StateNoSelection State = "no_selection"
	StateAsking      State = "asking"
	// StateRevealing means a reveal is scheduled but not displayed yet.
	StateRevealing State = "revealing"
	StateRevealed  State = "revealed"
)

type Card struct {
	Entry catalog.Entry
	State srs.State
	Tally srs.Tally
}

// Outcome is the last graded answer.
type Outcome struct {
	Entry   catalog.Entry
	Correct bool
}

type View struct {
	App       string
	Mode      string
	State     State
	Card      *Card
	Previous  *Outcome
	Cycle     int
	Stats     progress.Stats
	Selection []string
	PoolSize  int
}

func (v View) Accuracy() int {
	return v.Stats.Accuracy()
}

func (s *Session) view() View {
	view := View{
		App:       s.source.App(),
		Mode:      s.catalog.Mode,
		State:     s.state(),
		Cycle:     s.cycle,
		Stats:     s.stats,
		Selection: slices.Clone(s.selection),
		PoolSize:  s.store.ActiveLen(),
	}
	if s.current != nil {
		view.Card = &Card{
			Entry: s.current.Entry,
			State: s.current.State,
			Tally: s.current.Tally,
		}
	}
	if s.previous != nil {
		previous := *s.previous
		view.Previous = &previous
	}
	return view
}

func (s *Session) state() State {
	switch {
	case s.current == nil:
		return StateNoSelection
	case s.revealed:
		return StateRevealed
	case s.cancelReveal != nil:
		return StateRevealing
	default:
		return StateAsking
	}
}

// Reveal schedules the display of the answer after the reveal delay.
// Calling it again before the answer is shown, or after, does nothing.
func (s *Session) Reveal() View {
	s.mu.Lock()
	if s.current == nil || s.revealed || s.cancelReveal != nil {
		defer s.mu.Unlock()
		return s.view()
	}
	if s.revealDelay <= 0 {
		s.revealed = true
		view := s.view()
		hook := s.onReveal
		s.mu.Unlock()
		if hook != nil {
			hook(view)
		}
		return view
	}

	generation := s.generation
	s.cancelReveal = s.deferFunc(s.revealDelay, func() {
		s.completeReveal(generation)
	})
	defer s.mu.Unlock()
	return s.view()
}

// completeReveal drops callbacks scheduled for an item that is no longer
// displayed.
func (s *Session) completeReveal(generation uint64) {
	s.mu.Lock()
	if generation != s.generation || s.revealed {
		s.mu.Unlock()
		return
	}
	s.revealed = true
	s.cancelReveal = nil
	view := s.view()
	hook := s.onReveal
	s.mu.Unlock()

	if hook != nil {
		hook(view)
	}
}
