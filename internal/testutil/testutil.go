// Package testutil provides shared test helpers for config files, catalogs and progress.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/progress"
)

const vocabFixture = `- {id: neko, type: word, kana: ねこ, romaji: neko, kanji: 猫, english: cat}
- {id: inu, type: word, kana: いぬ, romaji: inu, kanji: 犬, english: dog}
- {id: tori, type: word, kana: とり, romaji: tori, kanji: 鳥, english: bird}
`

const phrasesFixture = `id,type,kana,romaji,kanji,english
ohayou,phrase,おはよう,ohayou,,good morning
arigatou,phrase,ありがとう,arigatou,,thank you
`

// SetupTestConfig creates a config file whose directories all live under
// tmpDir, with small vocab and phrase lists. It returns the config path.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	for _, d := range []string{"progress", "audio", "reports", "lists"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}
	vocabPath := WriteFile(t, filepath.Join(tmpDir, "lists"), "vocab.yml", vocabFixture)
	phrasesPath := WriteFile(t, filepath.Join(tmpDir, "lists"), "phrases.csv", phrasesFixture)

	configContent := fmt.Sprintf(`progress:
  backend: yaml
  directory: %s
study:
  reveal_delay: 0s
apps:
  vocab:
    batch_size: 2
    files:
      - path: %s
  phrases:
    batch_size: 2
    files:
      - path: %s
        kind: phrase
media:
  cache_directory: %s
outputs:
  report_directory: %s
`,
		filepath.Join(tmpDir, "progress"),
		vocabPath,
		phrasesPath,
		filepath.Join(tmpDir, "audio"),
		filepath.Join(tmpDir, "reports"),
	)

	return WriteFile(t, tmpDir, "config.yml", configContent)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Source is an in-memory catalog.Source.
type Source struct {
	AppName  string
	Catalogs map[string]catalog.Catalog
	// ModeOrder lists the modes; the first one is the default.
	ModeOrder []string
}

func (s *Source) App() string {
	return s.AppName
}

func (s *Source) Modes() []string {
	return slices.Clone(s.ModeOrder)
}

func (s *Source) DefaultMode() string {
	return s.ModeOrder[0]
}

func (s *Source) Build(mode string) (catalog.Catalog, error) {
	if mode == "" {
		mode = s.DefaultMode()
	}
	cat, ok := s.Catalogs[mode]
	if !ok {
		return catalog.Catalog{}, fmt.Errorf("unknown mode %q", mode)
	}
	return cat, nil
}

// Entry builds an entry whose answer, reading and audio key derive from id.
func Entry(id string) catalog.Entry {
	return catalog.Entry{
		ID:       id,
		Kind:     catalog.KindWord,
		Prompt:   "prompt-" + id,
		Answer:   "answer-" + id,
		Reading:  id,
		AudioKey: "audio-" + id,
	}
}

// Row builds a word row with one entry per id.
func Row(id string, entryIDs ...string) catalog.Row {
	row := catalog.Row{ID: id, Label: "row " + id, Kind: catalog.KindWord}
	for _, entryID := range entryIDs {
		row.Entries = append(row.Entries, Entry(entryID))
	}
	return row
}

// NewSource returns the "test" app with two modes:
//
//	one: r1{a b} r2{c d} r3{e}, default r1
//	two: r1{a x} r4{y}, default r4
func NewSource() *Source {
	return &Source{
		AppName:   "test",
		ModeOrder: []string{"one", "two"},
		Catalogs: map[string]catalog.Catalog{
			"one": {
				App:  "test",
				Mode: "one",
				Sections: []catalog.Section{{
					Label: "words",
					Rows:  []catalog.Row{Row("r1", "a", "b"), Row("r2", "c", "d"), Row("r3", "e")},
				}},
				DefaultRows: []string{"r1"},
			},
			"two": {
				App:  "test",
				Mode: "two",
				Sections: []catalog.Section{{
					Label: "words",
					Rows:  []catalog.Row{Row("r1", "a", "x"), Row("r4", "y")},
				}},
				DefaultRows: []string{"r4"},
			},
		},
	}
}

// MemoryRepository is a progress.Repository kept in memory.
type MemoryRepository struct {
	mu        sync.Mutex
	snapshots map[string]progress.Snapshot
	Saves     int
}

func NewMemoryRepository(snapshots ...progress.Snapshot) *MemoryRepository {
	r := &MemoryRepository{snapshots: make(map[string]progress.Snapshot)}
	for _, snapshot := range snapshots {
		r.snapshots[snapshot.App] = snapshot
	}
	return r
}

func (r *MemoryRepository) Load(_ context.Context, app string) (progress.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[app], nil
}

func (r *MemoryRepository) Save(_ context.Context, snapshot progress.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.App] = snapshot
	r.Saves++
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, app string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, app)
	return nil
}

// Snapshot returns the last saved snapshot of app.
func (r *MemoryRepository) Snapshot(app string) progress.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[app]
}

// FixedRand always picks the first candidate and draws no jitter.
type FixedRand struct{}

func (FixedRand) IntN(int) int {
	return 0
}

func (FixedRand) Float64() float64 {
	return 0.5
}
