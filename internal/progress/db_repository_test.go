package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/deck"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

var (
	snapshotColumns = []string{"app", "mode", "review_cycle", "right_count", "wrong_count", "streak", "best_streak", "selection", "updated_at"}
	itemRowColumns  = []string{"item_id", "repetitions", "interval_cycles", "ease_factor", "due_cycle", "lapsed", "right_count", "wrong_count"}
)

func TestDBRepository_Load(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      Snapshot
		wantErr   bool
	}{
		{
			name: "returns snapshot with items",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT app, mode, review_cycle, .* FROM progress_snapshots WHERE app = \\?").
					WithArgs("kana").
					WillReturnRows(sqlmock.NewRows(snapshotColumns).
						AddRow("kana", "hiragana", 7, 5, 2, 1, 4, `["a","k"]`, now))
				mock.ExpectQuery("SELECT item_id, .* FROM progress_items WHERE app = \\? ORDER BY item_id").
					WithArgs("kana").
					WillReturnRows(sqlmock.NewRows(itemRowColumns).
						AddRow("あ", 1, 1.0, 2.6, 7.5, false, 1, 0).
						AddRow("か", 0, 1.0, 1.0, 3.0, true, 0, 2))
			},
			want: Snapshot{
				App:       "kana",
				Mode:      "hiragana",
				Cycle:     7,
				Stats:     Stats{Right: 5, Wrong: 2, Streak: 1, BestStreak: 4},
				Selection: []string{"a", "k"},
				Items: map[string]deck.Record{
					"あ": record(srs.State{Repetitions: 1, Interval: 1, EasinessFactor: 2.6, DueCycle: 7.5}, 1, 0),
				},
				UpdatedAt: now,
			},
		},
		{
			name: "unreadable selection falls back to nil",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM progress_snapshots").
					WithArgs("kana").
					WillReturnRows(sqlmock.NewRows(snapshotColumns).
						AddRow("kana", "hiragana", 1, 0, 0, 0, 0, `not json`, now))
				mock.ExpectQuery("FROM progress_items").
					WithArgs("kana").
					WillReturnRows(sqlmock.NewRows(itemRowColumns))
			},
			want: Snapshot{
				App:       "kana",
				Mode:      "hiragana",
				Cycle:     1,
				Items:     map[string]deck.Record{},
				UpdatedAt: now,
			},
		},
		{
			name: "nothing saved",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM progress_snapshots").
					WithArgs("kana").
					WillReturnRows(sqlmock.NewRows(snapshotColumns))
			},
			want: Snapshot{},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM progress_snapshots").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, database.DriverMySQL))
			tt.setupMock(mock)

			got, err := repo.Load(context.Background(), "kana")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Save(t *testing.T) {
	snapshot := testSnapshot()

	tests := []struct {
		name      string
		snapshot  Snapshot
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name:     "replaces snapshot and items",
			snapshot: snapshot,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM progress_items WHERE app = \\?").WithArgs("kana").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("DELETE FROM progress_snapshots WHERE app = \\?").WithArgs("kana").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO progress_snapshots").
					WithArgs("kana", "mixed", 12, 9, 3, 2, 5, `["a","k"]`, snapshot.UpdatedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO progress_items \\(app, item_id, repetitions, interval_cycles, ease_factor, due_cycle, lapsed, right_count, wrong_count\\) VALUES \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?, \\?, \\?\\), \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?, \\?, \\?\\)$").
					WithArgs(
						"kana", "あ", 2, 6.0, 2.7, 17.4, false, 2, 0,
						"kana", "ア", 0, 1.0, 2.18, 12.9, true, 0, 1,
					).
					WillReturnResult(sqlmock.NewResult(1, 2))
				mock.ExpectCommit()
			},
		},
		{
			name:     "snapshot without items",
			snapshot: Snapshot{App: "numbers", Mode: "0-10", UpdatedAt: snapshot.UpdatedAt},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM progress_items").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM progress_snapshots").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO progress_snapshots").
					WithArgs("numbers", "0-10", 0, 0, 0, 0, 0, "null", snapshot.UpdatedAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:     "db error rolls back",
			snapshot: snapshot,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM progress_items").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM progress_snapshots").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO progress_snapshots").WillReturnError(fmt.Errorf("disk full"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name:      "invalid app",
			snapshot:  Snapshot{App: "../kana"},
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, database.DriverMySQL))
			tt.setupMock(mock)

			err = repo.Save(context.Background(), tt.snapshot)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(ctx, db))

	repo := NewDBRepository(db)

	want := testSnapshot()
	// More items than a single insert holds
	for i := 0; i < 250; i++ {
		want.Items[strconv.Itoa(i)] = record(srs.State{Repetitions: i % 4, Interval: 1, EasinessFactor: 2.5, DueCycle: float64(i)}, i, 0)
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx, "kana")
	require.NoError(t, err)
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Cycle, got.Cycle)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.Selection, got.Selection)
	assert.Equal(t, want.Items, got.Items)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	// Saving again replaces the previous rows
	want.Items = map[string]deck.Record{"あ": want.Items["あ"]}
	require.NoError(t, repo.Save(ctx, want))
	got, err = repo.Load(ctx, "kana")
	require.NoError(t, err)
	assert.Equal(t, want.Items, got.Items)

	require.NoError(t, repo.Delete(ctx, "kana"))
	got, err = repo.Load(ctx, "kana")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
