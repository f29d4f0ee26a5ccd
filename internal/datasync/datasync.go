// Package datasync copies saved progress from one backend to another, e.g.
// from the YAML files of the CLI into the database used by the server.
package datasync

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/at-ishikawa/flashdeck/internal/deck"
	"github.com/at-ishikawa/flashdeck/internal/progress"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	AppsNew      int
	AppsMerged   int
	AppsSkipped  int
	ItemsNew     int
	ItemsUpdated int
	ItemsSkipped int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
	// UpdateExisting overwrites items and counters already present in the
	// target. Otherwise only missing items are added.
	UpdateExisting bool
}

type Importer struct {
	source progress.Repository
	target progress.Repository
	writer io.Writer
}

func NewImporter(source, target progress.Repository, writer io.Writer) *Importer {
	return &Importer{
		source: source,
		target: target,
		writer: writer,
	}
}

// Import copies the progress of each app. An app without saved progress in
// the source is skipped.
func (imp *Importer) Import(ctx context.Context, apps []string, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	for _, app := range apps {
		src, err := imp.source.Load(ctx, app)
		if err != nil {
			return nil, fmt.Errorf("load source progress(%s): %w", app, err)
		}
		src, dropped := progress.Sanitize(src)
		slices.Sort(dropped)
		for _, id := range dropped {
			_, _ = fmt.Fprintf(imp.writer, "  [INVALID]  %s/%s\n", app, id)
		}
		if src.Empty() {
			_, _ = fmt.Fprintf(imp.writer, "  [SKIP]  %s (nothing saved)\n", app)
			result.AppsSkipped++
			continue
		}

		dst, err := imp.target.Load(ctx, app)
		if err != nil {
			return nil, fmt.Errorf("load target progress(%s): %w", app, err)
		}

		var merged progress.Snapshot
		if dst.Empty() {
			merged = src
			result.AppsNew++
			result.ItemsNew += len(src.Items)
			_, _ = fmt.Fprintf(imp.writer, "  [NEW]  %s (%d items)\n", app, len(src.Items))
		} else {
			merged = imp.merge(app, src, dst, opts, &result)
			result.AppsMerged++
		}

		if opts.DryRun {
			continue
		}
		if err := imp.target.Save(ctx, merged); err != nil {
			return nil, fmt.Errorf("save target progress(%s): %w", app, err)
		}
	}
	return &result, nil
}

func (imp *Importer) merge(app string, src, dst progress.Snapshot, opts ImportOptions, result *ImportResult) progress.Snapshot {
	merged := dst
	merged.Items = maps.Clone(dst.Items)
	if merged.Items == nil {
		merged.Items = make(map[string]deck.Record, len(src.Items))
	}
	if opts.UpdateExisting {
		merged.Mode = src.Mode
		merged.Stats = src.Stats
		merged.Selection = slices.Clone(src.Selection)
		merged.UpdatedAt = src.UpdatedAt
	}
	merged.Cycle = max(src.Cycle, dst.Cycle)

	for _, id := range slices.Sorted(maps.Keys(src.Items)) {
		record := src.Items[id]
		if _, ok := merged.Items[id]; !ok {
			merged.Items[id] = record
			result.ItemsNew++
			_, _ = fmt.Fprintf(imp.writer, "  [NEW]  %s/%s\n", app, id)
			continue
		}
		if opts.UpdateExisting {
			merged.Items[id] = record
			result.ItemsUpdated++
			_, _ = fmt.Fprintf(imp.writer, "  [UPDATE]  %s/%s\n", app, id)
			continue
		}
		result.ItemsSkipped++
		_, _ = fmt.Fprintf(imp.writer, "  [SKIP]  %s/%s\n", app, id)
	}
	return merged
}
