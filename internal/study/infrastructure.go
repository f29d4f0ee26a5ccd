package study

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/media"
	"github.com/at-ishikawa/flashdeck/internal/progress"
)

// OpenRepository opens the configured progress backend. SQL schemas are
// migrated before use. The returned function releases the backend.
func OpenRepository(ctx context.Context, cfg *config.Config) (progress.Repository, func() error, error) {
	location := cfg.Progress.Directory
	if cfg.Progress.Backend == config.ProgressBackendSQLite {
		location = cfg.Progress.SQLitePath
	}
	return OpenBackend(ctx, cfg.Progress.Backend, location, cfg.Database)
}

// OpenBackend opens a progress backend by name. location is the YAML
// directory or the SQLite file; MySQL is reached through dbConfig.
func OpenBackend(ctx context.Context, backend, location string, dbConfig config.DatabaseConfig) (progress.Repository, func() error, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch backend {
	case "", config.ProgressBackendYAML:
		return progress.NewYAMLRepository(location), func() error { return nil }, nil
	case config.ProgressBackendSQLite:
		db, err = database.OpenSQLite(location)
	case config.ProgressBackendMySQL:
		db, err = database.Open(dbConfig)
	default:
		return nil, nil, fmt.Errorf("unknown progress backend %q", backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s > %w", backend, err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database.Migrate > %w", err)
	}
	return progress.NewDBRepository(db), db.Close, nil
}

// Media bundles the audio collaborators built from the media config.
type Media struct {
	Library   *media.Library
	Preloader *media.AudioPreloader
	Player    media.Player
	Warmer    *media.Warmer
}

// NewMedia works offline when no base URL is configured: only cached files
// can be played.
func NewMedia(ctx context.Context, cfg config.MediaConfig) *Media {
	var downloader media.Downloader
	if cfg.BaseURL != "" {
		downloader = media.NewFetcher(cfg.BaseURL, cfg.Extension, cfg.Timeout, cfg.RetryAttempts)
	}
	library := media.NewLibrary(media.NewFileCache(cfg.CacheDirectory, cfg.Extension), downloader)

	var player media.Player = media.NopPlayer{}
	if len(cfg.PlayerCommand) > 0 {
		player = media.NewCommandPlayer(library, cfg.PlayerCommand)
	}
	return &Media{
		Library:   library,
		Preloader: media.NewAudioPreloader(ctx, library, cfg.Concurrency),
		Player:    player,
		Warmer:    media.NewWarmer(library, cfg.Concurrency),
	}
}
