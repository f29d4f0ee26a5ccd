package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(tmpDir, "missing.env")))
	})

	t.Run("exported variables are read by the loader", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "from-environment")
		envPath := filepath.Join(tmpDir, "test.env")
		require.NoError(t, os.WriteFile(envPath, []byte("DB_PASSWORD=from-file\nFLASHDECK_MEDIA_BASE_URL=https://cdn.example.com/audio\n"), 0644))
		t.Cleanup(func() {
			_ = os.Unsetenv("FLASHDECK_MEDIA_BASE_URL")
		})
		require.NoError(t, LoadDotEnv(envPath))

		configPath := filepath.Join(tmpDir, "config.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("media:\n  cache_directory: "+tmpDir+"\n"), 0644))
		loader, err := NewConfigLoader(configPath)
		require.NoError(t, err)
		cfg, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/audio", cfg.Media.BaseURL)
		assert.Equal(t, "from-environment", cfg.Database.Password)
	})
}
