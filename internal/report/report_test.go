package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/deck"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/testutil"
)

func testSnapshot() progress.Snapshot {
	return progress.Snapshot{
		App:       "test",
		Mode:      "one",
		Cycle:     10,
		Stats:     progress.Stats{Right: 4, Wrong: 3, Streak: 1, BestStreak: 3},
		Selection: []string{"r1", "r2"},
		UpdatedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		Items: map[string]deck.Record{
			"a": {State: srs.State{Repetitions: 3, Interval: 25, EasinessFactor: 2.5, DueCycle: 30}, Tally: srs.Tally{Right: 3}},
			"b": {State: srs.State{Repetitions: 1, Interval: 1, EasinessFactor: 2.2, DueCycle: 5}, Tally: srs.Tally{Right: 1, Wrong: 2}},
			"c": {State: srs.State{Interval: 1, EasinessFactor: 2.18, DueCycle: 12, Lapsed: true}, Tally: srs.Tally{Wrong: 1}},
		},
	}
}

func TestCalculate(t *testing.T) {
	cat, err := testutil.NewSource().Build("one")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		snapshot func() progress.Snapshot
		cfg      srs.Config
		want     Counts
		wantRows []RowReport
	}{
		{
			name:     "sm2",
			snapshot: testSnapshot,
			cfg:      srs.DefaultConfig(),
			want:     Counts{Total: 5, New: 2, Learning: 2, Mature: 1, Due: 2, Right: 4, Wrong: 3},
			wantRows: []RowReport{
				{ID: "r1", Label: "row r1", Enabled: true, Counts: Counts{Total: 2, Learning: 1, Mature: 1, Due: 1, Right: 4, Wrong: 2}},
				{ID: "r2", Label: "row r2", Enabled: true, Counts: Counts{Total: 2, New: 1, Learning: 1, Due: 1, Wrong: 1}},
				{ID: "r3", Label: "row r3", Counts: Counts{Total: 1, New: 1}},
			},
		},
		{
			name:     "drill",
			snapshot: testSnapshot,
			cfg:      srs.Config{Policy: srs.PolicyDrill, MasteryThreshold: 3},
			want:     Counts{Total: 5, New: 2, Learning: 2, Retired: 1, Due: 2, Right: 4, Wrong: 3},
		},
		{
			name: "default selection and invalid records",
			snapshot: func() progress.Snapshot {
				snapshot := testSnapshot()
				snapshot.Selection = nil
				snapshot.Items["a"] = deck.Record{State: srs.State{EasinessFactor: 1.0}}
				return snapshot
			},
			cfg:  srs.DefaultConfig(),
			want: Counts{Total: 5, New: 3, Learning: 2, Due: 2, Right: 1, Wrong: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.snapshot(), cat, tc.cfg)
			assert.Equal(t, tc.want, got.Counts)
			assert.Equal(t, 10, got.Cycle)
			if tc.wantRows != nil {
				assert.Equal(t, tc.wantRows, got.Rows)
			}
		})
	}
}

func TestCalculate_MostMissed(t *testing.T) {
	cat, err := testutil.NewSource().Build("one")
	require.NoError(t, err)

	got := Calculate(testSnapshot(), cat, srs.DefaultConfig())
	require.Len(t, got.MostMissed, 2)
	assert.Equal(t, "b", got.MostMissed[0].Entry.ID)
	assert.Equal(t, 2, got.MostMissed[0].Wrong)
	assert.Equal(t, "c", got.MostMissed[1].Entry.ID)
	assert.Equal(t, 57, got.Counts.Accuracy())
}

func TestWriteMarkdown(t *testing.T) {
	cat, err := testutil.NewSource().Build("one")
	require.NoError(t, err)
	report := Calculate(testSnapshot(), cat, srs.DefaultConfig())

	t.Run("embedded template", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteMarkdown(&buf, "", report))
		out := buf.String()
		assert.Contains(t, out, "# test progress")
		assert.Contains(t, out, "- Last studied: 2026-10-01 09:30")
		assert.Contains(t, out, "| 4 | 3 | 57% | 1 | 3 |")
		assert.Contains(t, out, "| row r1 | yes | 2 | 0 | 1 | 1 | 1 | 67% |")
		assert.Contains(t, out, "| row r3 | no | 1 | 1 | 0 | 0 | 0 | 0% |")
		assert.Contains(t, out, "| prompt-b | answer-b | 1 | 2 |")
	})

	t.Run("custom template", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "custom.md.tmpl", "{{ .App }}: {{ .Counts.Total }}")
		var buf bytes.Buffer
		require.NoError(t, WriteMarkdown(&buf, path, report))
		assert.Equal(t, "test: 5", buf.String())
	})

	t.Run("broken custom template falls back", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "broken.md.tmpl", "{{ .App ")
		var buf bytes.Buffer
		require.NoError(t, WriteMarkdown(&buf, path, report))
		assert.Contains(t, buf.String(), "# test progress")
	})
}

func TestExport(t *testing.T) {
	cat, err := testutil.NewSource().Build("one")
	require.NoError(t, err)
	report := Calculate(testSnapshot(), cat, srs.DefaultConfig())
	dir := filepath.Join(t.TempDir(), "reports")
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	paths, err := Export(dir, "", report, now, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "test-20261019.md")}, paths)

	paths, err = Export(dir, "", report, now, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	info, err := os.Stat(paths[1])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
