package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/study"
)

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// appArgs accepts exactly one app name.
var appArgs = cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)

// appEnvironment is what every per-app command needs: the configuration,
// the app and its progress backend.
type appEnvironment struct {
	cfg             *config.Config
	registry        *study.Registry
	app             study.App
	repository      progress.Repository
	closeRepository func() error
}

func openAppEnvironment(ctx context.Context, name string) (*appEnvironment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	registry := study.NewRegistry(cfg)
	app, err := registry.App(name)
	if err != nil {
		return nil, fmt.Errorf("registry.App(%s) > %w", name, err)
	}
	repository, closeRepository, err := study.OpenRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("study.OpenRepository > %w", err)
	}
	return &appEnvironment{
		cfg:             cfg,
		registry:        registry,
		app:             app,
		repository:      repository,
		closeRepository: closeRepository,
	}, nil
}

func (env *appEnvironment) Close() error {
	return env.closeRepository()
}

// savedState loads the progress of the app and the catalog it was saved
// with. mode overrides the saved mode.
func (env *appEnvironment) savedState(ctx context.Context, mode string) (progress.Snapshot, catalog.Catalog, error) {
	snapshot, err := env.repository.Load(ctx, env.app.Source.App())
	if err != nil {
		return progress.Snapshot{}, catalog.Catalog{}, fmt.Errorf("repository.Load > %w", err)
	}
	if mode == "" {
		mode = snapshot.Mode
	}
	if mode == "" {
		mode = env.app.Source.DefaultMode()
	}
	cat, err := env.app.Source.Build(mode)
	if err != nil {
		return progress.Snapshot{}, catalog.Catalog{}, fmt.Errorf("source.Build(%s) > %w", mode, err)
	}
	if snapshot.Mode != "" && snapshot.Mode != cat.Mode && env.app.Scheduler.ResetCycleOnCatalogChange {
		// a session in another mode would start over
		snapshot = progress.Snapshot{App: snapshot.App, Mode: cat.Mode}
	}
	return snapshot, cat, nil
}
