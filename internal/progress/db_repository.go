package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/deck"
)

// itemsPerInsert keeps an insert below SQLite's 999 variable limit.
const itemsPerInsert = 100

var itemColumns = []string{
	"app", "item_id", "repetitions", "interval_cycles", "ease_factor", "due_cycle", "lapsed", "right_count", "wrong_count",
}

type snapshotRow struct {
	App       string    `db:"app"`
	Mode      string    `db:"mode"`
	Cycle     int       `db:"review_cycle"`
	Selection string    `db:"selection"`
	UpdatedAt time.Time `db:"updated_at"`
	Stats
}

type itemRow struct {
	ItemID string `db:"item_id"`
	deck.Record
}

// DBRepository implements Repository on MySQL or SQLite.
type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

func (r *DBRepository) Load(ctx context.Context, app string) (Snapshot, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row,
		"SELECT app, mode, review_cycle, right_count, wrong_count, streak, best_streak, selection, updated_at FROM progress_snapshots WHERE app = ?",
		app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("load progress snapshot: %w", err)
	}

	var items []itemRow
	if err := r.db.SelectContext(ctx, &items,
		"SELECT item_id, repetitions, interval_cycles, ease_factor, due_cycle, lapsed, right_count, wrong_count FROM progress_items WHERE app = ? ORDER BY item_id",
		app); err != nil {
		return Snapshot{}, fmt.Errorf("load progress items: %w", err)
	}

	snapshot := Snapshot{
		App:       row.App,
		Mode:      row.Mode,
		Cycle:     row.Cycle,
		Stats:     row.Stats,
		UpdatedAt: row.UpdatedAt,
		Items:     make(map[string]deck.Record, len(items)),
	}
	if err := json.Unmarshal([]byte(row.Selection), &snapshot.Selection); err != nil {
		slog.Default().Warn("discard unreadable row selection",
			slog.String("app", app),
			slog.Any("error", err),
		)
		snapshot.Selection = nil
	}
	for _, item := range items {
		snapshot.Items[item.ItemID] = item.Record
	}

	snapshot, dropped := Sanitize(snapshot)
	if len(dropped) > 0 {
		slog.Default().Warn("reset corrupt item states",
			slog.String("app", app),
			slog.Any("items", dropped),
		)
	}
	return snapshot, nil
}

// Save replaces everything stored for the snapshot's app in one transaction.
func (r *DBRepository) Save(ctx context.Context, snapshot Snapshot) error {
	if err := validateApp(snapshot.App); err != nil {
		return err
	}
	selection, err := json.Marshal(snapshot.Selection)
	if err != nil {
		return fmt.Errorf("json.Marshal(selection) > %w", err)
	}
	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	ids := make([]string, 0, len(snapshot.Items))
	for id := range snapshot.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := deleteApp(ctx, tx, snapshot.App); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO progress_snapshots (app, mode, review_cycle, right_count, wrong_count, streak, best_streak, selection, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			snapshot.App, snapshot.Mode, snapshot.Cycle,
			snapshot.Stats.Right, snapshot.Stats.Wrong, snapshot.Stats.Streak, snapshot.Stats.BestStreak,
			string(selection), updatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert progress snapshot: %w", err)
		}

		for start := 0; start < len(ids); start += itemsPerInsert {
			chunk := ids[start:min(start+itemsPerInsert, len(ids))]
			query := database.BuildMultiRowInsert("progress_items", itemColumns, len(chunk))

			args := make([]interface{}, 0, len(chunk)*len(itemColumns))
			for _, id := range chunk {
				record := snapshot.Items[id]
				args = append(args, snapshot.App, id,
					record.State.Repetitions, record.State.Interval, record.State.EasinessFactor, record.State.DueCycle, record.State.Lapsed,
					record.Tally.Right, record.Tally.Wrong)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert progress items: %w", err)
			}
		}
		return nil
	})
}

func (r *DBRepository) Delete(ctx context.Context, app string) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return deleteApp(ctx, tx, app)
	})
}

func deleteApp(ctx context.Context, tx *sqlx.Tx, app string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM progress_items WHERE app = ?", app); err != nil {
		return fmt.Errorf("delete progress items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM progress_snapshots WHERE app = ?", app); err != nil {
		return fmt.Errorf("delete progress snapshot: %w", err)
	}
	return nil
}
