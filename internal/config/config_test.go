package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/srs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	wordsFile := filepath.Join(t.TempDir(), "words.yml")
	require.NoError(t, os.WriteFile(wordsFile, []byte("- {id: w1, kana: ねこ, english: cat}\n"), 0644))

	tests := []struct {
		name              string
		configContent     string
		wantErr           bool
		wantErrorContains []string
		check             func(t *testing.T, cfg *Config)
	}{
		{
			name: "unknown keys use defaults",
			configContent: `wrong_key:
  some_value: test
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ProgressConfig{
					Backend:    ProgressBackendYAML,
					Directory:  filepath.Join("data", "progress"),
					SQLitePath: filepath.Join("data", "flashdeck.db"),
				}, cfg.Progress)
				assert.Equal(t, time.Second, cfg.Study.RevealDelay)
				assert.Equal(t, "hiragana", cfg.Apps.Kana.Mode)
				assert.Equal(t, []string{"a"}, cfg.Apps.Kana.DefaultRows)
				assert.Equal(t, srs.DefaultConfig(), cfg.Apps.Kana.Scheduler.SRSConfig())
				assert.Equal(t, srs.Config{
					Policy:                    srs.PolicyDrill,
					JitterRange:               srs.DefaultJitterRange,
					Epsilon:                   srs.DefaultEpsilon,
					ResetCycleOnCatalogChange: true,
					MasteryThreshold:          srs.DefaultMasteryThreshold,
				}, cfg.Apps.Numbers.Scheduler.SRSConfig())
				assert.Equal(t, 20, cfg.Apps.Vocab.BatchSize)
				assert.Equal(t, ".mp3", cfg.Media.Extension)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 3306, cfg.Database.Port)
			},
		},
		{
			name: "custom values",
			configContent: `progress:
  backend: sqlite
  sqlite_path: /tmp/progress.db
study:
  reveal_delay: 1500ms
apps:
  kana:
    mode: mixed
    default_rows: [a, k]
    scheduler:
      jitter_range: 0
  vocab:
    batch_size: 10
    files:
      - path: ` + wordsFile + `
        kind: word
media:
  base_url: https://example.com/audio
  player_command: [sh, -c, "true"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ProgressBackendSQLite, cfg.Progress.Backend)
				assert.Equal(t, "/tmp/progress.db", cfg.Progress.SQLitePath)
				assert.Equal(t, 1500*time.Millisecond, cfg.Study.RevealDelay)
				assert.Equal(t, "mixed", cfg.Apps.Kana.Mode)
				assert.Equal(t, []string{"a", "k"}, cfg.Apps.Kana.DefaultRows)
				assert.Equal(t, 0.0, cfg.Apps.Kana.Scheduler.JitterRange)
				assert.Equal(t, srs.PolicySM2, cfg.Apps.Kana.Scheduler.Policy)
				assert.Equal(t, []WordListFileConfig{{Path: wordsFile, Kind: "word"}}, cfg.Apps.Vocab.Files)
				assert.Equal(t, 10, cfg.Apps.Vocab.BatchSize)
				assert.Equal(t, "https://example.com/audio", cfg.Media.BaseURL)
				assert.Equal(t, []string{"sh", "-c", "true"}, cfg.Media.PlayerCommand)
			},
		},
		{
			name: "invalid YAML format",
			configContent: `progress:
  backend: yaml
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown progress backend",
			configContent: `progress:
  backend: postgres
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"backend must be one of [yaml mysql sqlite]",
			},
		},
		{
			name: "missing word list file",
			configContent: `apps:
  phrases:
    files:
      - path: /nonexistent/phrases.csv
`,
			wantErr: true,
			wantErrorContains: []string{
				"must be an existing and readable file",
			},
		},
		{
			name: "player command not found",
			configContent: `media:
  player_command: [definitely-not-a-player-binary]
`,
			wantErr: true,
			wantErrorContains: []string{
				"media.player_command must start with an executable found in PATH",
			},
		},
		{
			name: "unknown scheduling policy",
			configContent: `apps:
  numbers:
    scheduler:
      policy: leitner
`,
			wantErr: true,
			wantErrorContains: []string{
				"policy must be one of [sm2 drill]",
			},
		},
		{
			name: "zero epsilon",
			configContent: `apps:
  kana:
    scheduler:
      epsilon: 0
`,
			wantErr: true,
			wantErrorContains: []string{
				"epsilon must be greater than 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewConfigLoader(writeConfig(t, tt.configContent))
			require.NoError(t, err)

			got, err := loader.Load()
			if tt.wantErr {
				require.Error(t, err)
				for _, want := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("FLASHDECK_MEDIA_BASE_URL", "https://cdn.example.com/audio")

	loader, err := NewConfigLoader(writeConfig(t, "database:\n  password: from-file\n"))
	require.NoError(t, err)
	got, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", got.Database.Password)
	assert.Equal(t, "https://cdn.example.com/audio", got.Media.BaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	loader, err := NewConfigLoader(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	_, err = loader.Load()
	assert.Error(t, err)
}
