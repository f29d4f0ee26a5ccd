// Package study wires the configured apps into sessions.
package study

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/media"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/session"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// Apps lists every study app in menu order.
var Apps = []string{catalog.AppKana, catalog.AppNumbers, catalog.AppVocab, catalog.AppPhrases}

var ErrUnknownApp = errors.New("unknown app")

type App struct {
	Source    catalog.Source
	Scheduler srs.Config
}

// Registry builds the catalog source of each app once, on first use.
type Registry struct {
	cfg *config.Config

	mu   sync.Mutex
	apps map[string]App
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		cfg:  cfg,
		apps: make(map[string]App),
	}
}

func (r *Registry) App(name string) (App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app, ok := r.apps[name]; ok {
		return app, nil
	}
	app, err := r.newApp(name)
	if err != nil {
		return App{}, err
	}
	r.apps[name] = app
	return app, nil
}

func (r *Registry) newApp(name string) (App, error) {
	apps := r.cfg.Apps
	switch name {
	case catalog.AppKana:
		source, err := catalog.NewKanaSource(apps.Kana.DefaultRows)
		if err != nil {
			return App{}, fmt.Errorf("catalog.NewKanaSource > %w", err)
		}
		return App{Source: modeDefault{Source: source, mode: apps.Kana.Mode}, Scheduler: apps.Kana.Scheduler.SRSConfig()}, nil
	case catalog.AppNumbers:
		source, err := catalog.NewNumbersSource(apps.Numbers.Range)
		if err != nil {
			return App{}, fmt.Errorf("catalog.NewNumbersSource > %w", err)
		}
		return App{Source: source, Scheduler: apps.Numbers.Scheduler.SRSConfig()}, nil
	case catalog.AppVocab:
		return newWordListApp(name, apps.Vocab)
	case catalog.AppPhrases:
		return newWordListApp(name, apps.Phrases)
	default:
		return App{}, fmt.Errorf("%w: %s", ErrUnknownApp, name)
	}
}

func newWordListApp(name string, cfg config.WordListConfig) (App, error) {
	files := make([]catalog.WordListFile, 0, len(cfg.Files))
	for _, file := range cfg.Files {
		files = append(files, catalog.WordListFile{Path: file.Path, Kind: file.Kind})
	}
	source, err := catalog.NewWordListSource(name, files, cfg.BatchSize)
	if err != nil {
		return App{}, fmt.Errorf("catalog.NewWordListSource(%s) > %w", name, err)
	}
	return App{Source: source, Scheduler: cfg.Scheduler.SRSConfig()}, nil
}

// modeDefault overrides the default mode of a source with the configured one.
type modeDefault struct {
	catalog.Source
	mode string
}

func (s modeDefault) DefaultMode() string {
	if s.mode != "" && slices.Contains(s.Source.Modes(), s.mode) {
		return s.mode
	}
	return s.Source.DefaultMode()
}

func (s modeDefault) Build(mode string) (catalog.Catalog, error) {
	if mode == "" {
		mode = s.DefaultMode()
	}
	return s.Source.Build(mode)
}

type SessionOptions struct {
	App        string
	Mode       string
	Repository progress.Repository
	Preloader  media.Preloader
	OnReveal   func(session.View)
	// Rand defaults to a randomly seeded source.
	Rand srs.Rand
}

// NewSession starts a session of an app with its configured policy and
// reveal delay.
func (r *Registry) NewSession(ctx context.Context, opts SessionOptions) (*session.Session, error) {
	app, err := r.App(opts.App)
	if err != nil {
		return nil, err
	}
	rng := opts.Rand
	if rng == nil {
		rng = srs.NewRand()
	}
	policy, err := srs.NewPolicy(app.Scheduler, rng)
	if err != nil {
		return nil, fmt.Errorf("srs.NewPolicy > %w", err)
	}

	s, err := session.New(ctx, session.Options{
		Source:                    app.Source,
		Mode:                      opts.Mode,
		Repository:                opts.Repository,
		Policy:                    policy,
		ResetCycleOnCatalogChange: app.Scheduler.ResetCycleOnCatalogChange,
		Preloader:                 opts.Preloader,
		RevealDelay:               r.cfg.Study.RevealDelay,
		OnReveal:                  opts.OnReveal,
	})
	if err != nil {
		return nil, fmt.Errorf("session.New(%s) > %w", opts.App, err)
	}
	return s, nil
}

// AudioKeys returns the audio keys of every mode of an app.
func (r *Registry) AudioKeys(name string) ([]string, error) {
	app, err := r.App(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var keys []string
	for _, mode := range app.Source.Modes() {
		cat, err := app.Source.Build(mode)
		if err != nil {
			return nil, fmt.Errorf("source.Build(%s) > %w", mode, err)
		}
		for _, entry := range cat.Entries() {
			if entry.AudioKey == "" {
				continue
			}
			if _, ok := seen[entry.AudioKey]; ok {
				continue
			}
			seen[entry.AudioKey] = struct{}{}
			keys = append(keys, entry.AudioKey)
		}
	}
	return keys, nil
}
