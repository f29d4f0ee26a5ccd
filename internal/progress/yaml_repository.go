package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/flashdeck/internal/deck"
)

// YAMLRepository stores one <app>.yml file per app in a directory.
type YAMLRepository struct {
	directory string
}

func NewYAMLRepository(directory string) *YAMLRepository {
	return &YAMLRepository{directory: directory}
}

func (r *YAMLRepository) path(app string) string {
	return filepath.Join(r.directory, app+".yml")
}

func (r *YAMLRepository) Load(_ context.Context, app string) (Snapshot, error) {
	if err := validateApp(app); err != nil {
		return Snapshot{}, err
	}

	path := r.path(app)
	document, err := readYamlFile[snapshotDocument](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, io.EOF) {
			return Snapshot{}, nil
		}
		slog.Default().Warn("discard unreadable progress file",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return Snapshot{}, nil
	}
	if document.App != app {
		slog.Default().Warn("discard progress file of another app",
			slog.String("path", path),
			slog.String("app", document.App),
		)
		return Snapshot{}, nil
	}

	snapshot, malformed := document.snapshot()
	if len(malformed) > 0 {
		slog.Default().Warn("reset malformed progress fields",
			slog.String("path", path),
			slog.Any("fields", malformed),
		)
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

// Save writes to a temporary file first so a crash never leaves a truncated
// progress file.
func (r *YAMLRepository) Save(_ context.Context, snapshot Snapshot) error {
	if err := validateApp(snapshot.App); err != nil {
		return err
	}
	if err := os.MkdirAll(r.directory, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", r.directory, err)
	}

	path := r.path(snapshot.App)
	tmp := path + ".tmp"
	if err := WriteYamlFile(tmp, snapshot); err != nil {
		return fmt.Errorf("WriteYamlFile(%s) > %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", path, err)
	}
	return nil
}

func (r *YAMLRepository) Delete(_ context.Context, app string) error {
	if err := validateApp(app); err != nil {
		return err
	}
	if err := os.Remove(r.path(app)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove(%s) > %w", r.path(app), err)
	}
	return nil
}

// snapshotDocument is the file form of a Snapshot. Fields and item records
// are decoded one by one, so a malformed value only resets itself.
type snapshotDocument struct {
	App       string    `yaml:"app"`
	Mode      string    `yaml:"mode"`
	Cycle     yaml.Node `yaml:"cycle"`
	Stats     yaml.Node `yaml:"stats"`
	Selection yaml.Node `yaml:"selection"`
	Items     yaml.Node `yaml:"items"`
	UpdatedAt yaml.Node `yaml:"updated_at"`
}

// snapshot returns the decoded snapshot and the names of the fields that
// were reset to their zero value.
func (d snapshotDocument) snapshot() (Snapshot, []string) {
	var malformed []string
	field := func(name string, ok bool) {
		if !ok {
			malformed = append(malformed, name)
		}
	}

	snapshot := Snapshot{App: d.App, Mode: d.Mode}
	var ok bool
	snapshot.Cycle, ok = decodeNode[int](d.Cycle)
	field("cycle", ok)
	snapshot.Stats, ok = decodeNode[Stats](d.Stats)
	field("stats", ok)
	snapshot.Selection, ok = decodeNode[[]string](d.Selection)
	field("selection", ok)
	snapshot.UpdatedAt, ok = decodeNode[time.Time](d.UpdatedAt)
	field("updated_at", ok)
	items, ok := decodeNode[map[string]yaml.Node](d.Items)
	field("items", ok)

	snapshot.Items = make(map[string]deck.Record, len(items))
	for _, id := range slices.Sorted(maps.Keys(items)) {
		record, ok := decodeNode[deck.Record](items[id])
		if !ok {
			malformed = append(malformed, "items."+id)
			continue
		}
		snapshot.Items[id] = record
	}
	return snapshot, malformed
}

// decodeNode returns the zero value and false when the node holds a value
// of the wrong type. A missing node decodes to the zero value.
func decodeNode[T any](node yaml.Node) (T, bool) {
	var value T
	if node.Kind == 0 {
		return value, true
	}
	if err := node.Decode(&value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return result, nil
}

func WriteYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}

	encoder := yaml.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.Encoder.Encode() > %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.Encoder.Close() > %w", err)
	}
	return file.Close()
}
