// Package progress persists review progress per app.
package progress

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/deck"
)

// Stats are the session counters shown next to the card.
type Stats struct {
	Right      int `yaml:"right" json:"right" db:"right_count"`
	Wrong      int `yaml:"wrong" json:"wrong" db:"wrong_count"`
	Streak     int `yaml:"streak" json:"streak" db:"streak"`
	BestStreak int `yaml:"best_streak" json:"bestStreak" db:"best_streak"`
}

func (s *Stats) Record(correct bool) {
	if correct {
		s.Right++
		s.Streak++
		s.BestStreak = max(s.BestStreak, s.Streak)
		return
	}
	s.Wrong++
	s.Streak = 0
}

func (s Stats) Total() int {
	return s.Right + s.Wrong
}

// Accuracy returns the rounded percentage of right answers, 0 without answers.
func (s Stats) Accuracy() int {
	if s.Total() == 0 {
		return 0
	}
	return int(math.Round(float64(s.Right) / float64(s.Total()) * 100))
}

// Snapshot is everything persisted for one app. A nil Selection means no
// selection was saved; an empty one means every row was deselected.
type Snapshot struct {
	App       string                 `yaml:"app"`
	Mode      string                 `yaml:"mode"`
	Cycle     int                    `yaml:"cycle"`
	Stats     Stats                  `yaml:"stats"`
	Selection []string               `yaml:"selection"`
	Items     map[string]deck.Record `yaml:"items"`
	UpdatedAt time.Time              `yaml:"updated_at"`
}

// Empty reports whether nothing was saved for the app.
func (s Snapshot) Empty() bool {
	return s.App == ""
}

//go:generate mockgen -source=progress.go -destination=../mocks/progress/mock_progress.go -package=mock_progress Repository
type Repository interface {
	// Load returns an empty snapshot when nothing was saved or the saved data
	// is unreadable.
	Load(ctx context.Context, app string) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Delete(ctx context.Context, app string) error
}

// Sanitize drops invalid item records and clamps negative counters. It
// returns the ids of the dropped records.
func Sanitize(snapshot Snapshot) (Snapshot, []string) {
	snapshot.Cycle = max(snapshot.Cycle, 0)
	snapshot.Stats = Stats{
		Right:      max(snapshot.Stats.Right, 0),
		Wrong:      max(snapshot.Stats.Wrong, 0),
		Streak:     max(snapshot.Stats.Streak, 0),
		BestStreak: max(snapshot.Stats.BestStreak, snapshot.Stats.Streak, 0),
	}

	var dropped []string
	items := make(map[string]deck.Record, len(snapshot.Items))
	for id, record := range snapshot.Items {
		if id == "" || !record.State.Valid() {
			dropped = append(dropped, id)
			continue
		}
		record.Tally.Right = max(record.Tally.Right, 0)
		record.Tally.Wrong = max(record.Tally.Wrong, 0)
		items[id] = record
	}
	snapshot.Items = items
	return snapshot, dropped
}

func validateApp(app string) error {
	if app == "" || strings.HasPrefix(app, ".") || filepath.Base(app) != app {
		return fmt.Errorf("invalid app name %q", app)
	}
	return nil
}
