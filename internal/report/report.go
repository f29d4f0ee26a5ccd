// Package report summarizes the saved progress of an app.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/deck"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// MatureInterval is the interval, in review cycles, from which an SM-2 item
// counts as mature.
const MatureInterval = 21.0

const mostMissedLimit = 10

type Counts struct {
	Total    int
	New      int
	Learning int
	Mature   int
	// Retired counts items mastered under the drill policy.
	Retired int
	Due     int
	Right   int
	Wrong   int
}

func (c Counts) Accuracy() int {
	stats := progress.Stats{Right: c.Right, Wrong: c.Wrong}
	return stats.Accuracy()
}

type RowReport struct {
	ID      string
	Label   string
	Enabled bool
	Counts
}

type ItemReport struct {
	Entry catalog.Entry
	Right int
	Wrong int
}

type Report struct {
	App        string
	Mode       string
	Policy     string
	Cycle      int
	Stats      progress.Stats
	UpdatedAt  time.Time
	Counts     Counts
	Rows       []RowReport
	MostMissed []ItemReport
}

// Calculate classifies every entry of the catalog by its saved state. Due
// counts only include enabled rows.
func Calculate(snapshot progress.Snapshot, cat catalog.Catalog, cfg srs.Config) Report {
	snapshot, _ = progress.Sanitize(snapshot)
	epsilon := cfg.Epsilon
	if epsilon <= 0 {
		epsilon = srs.DefaultEpsilon
	}
	threshold := cfg.MasteryThreshold
	if threshold <= 0 {
		threshold = srs.DefaultMasteryThreshold
	}
	classifier := classifier{
		drill:     cfg.Policy == srs.PolicyDrill,
		threshold: threshold,
		dueBefore: float64(snapshot.Cycle) + epsilon,
	}

	enabled := make(map[string]struct{})
	if snapshot.Selection == nil {
		for _, id := range cat.DefaultRows {
			enabled[id] = struct{}{}
		}
	} else {
		for _, id := range snapshot.Selection {
			enabled[id] = struct{}{}
		}
	}

	policy := srs.PolicySM2
	if classifier.drill {
		policy = srs.PolicyDrill
	}
	report := Report{
		App:       cat.App,
		Mode:      cat.Mode,
		Policy:    policy,
		Cycle:     snapshot.Cycle,
		Stats:     snapshot.Stats,
		UpdatedAt: snapshot.UpdatedAt,
	}

	counted := make(map[string]struct{})
	dueCounted := make(map[string]struct{})
	for _, row := range cat.Rows() {
		_, on := enabled[row.ID]
		rowReport := RowReport{ID: row.ID, Label: row.Label, Enabled: on}
		for _, entry := range row.Entries {
			record, saved := snapshot.Items[entry.ID]
			due := classifier.add(&rowReport.Counts, record, saved)
			if on && due {
				rowReport.Due++
				if _, ok := dueCounted[entry.ID]; !ok {
					dueCounted[entry.ID] = struct{}{}
					report.Counts.Due++
				}
			}

			if _, ok := counted[entry.ID]; ok {
				continue
			}
			counted[entry.ID] = struct{}{}
			classifier.add(&report.Counts, record, saved)
			if saved && record.Wrong > 0 {
				report.MostMissed = append(report.MostMissed, ItemReport{Entry: entry, Right: record.Right, Wrong: record.Wrong})
			}
		}
		report.Rows = append(report.Rows, rowReport)
	}

	slices.SortStableFunc(report.MostMissed, func(a, b ItemReport) int {
		if c := cmp.Compare(b.Wrong, a.Wrong); c != 0 {
			return c
		}
		return cmp.Compare(a.Right, b.Right)
	})
	if len(report.MostMissed) > mostMissedLimit {
		report.MostMissed = report.MostMissed[:mostMissedLimit]
	}
	return report
}

type classifier struct {
	drill     bool
	threshold int
	dueBefore float64
}

// add counts one item and reports whether it is due.
func (c classifier) add(counts *Counts, record deck.Record, saved bool) bool {
	counts.Total++
	if !saved {
		record = deck.Record{State: srs.NewState()}
	}
	counts.Right += record.Right
	counts.Wrong += record.Wrong

	switch {
	case record.State == srs.NewState() && record.Tally == (srs.Tally{}):
		counts.New++
	case c.drill && record.Repetitions >= c.threshold:
		counts.Retired++
	case !c.drill && record.Interval >= MatureInterval:
		counts.Mature++
	default:
		counts.Learning++
	}

	return record.DueCycle <= c.dueBefore
}
